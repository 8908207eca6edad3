package codec

import (
	"errors"
	"fmt"
	"io"
)

var fixedIntKinds = map[int][2]Kind{
	8:  {KindUint8, KindInt8},
	16: {KindUint16, KindInt16},
	32: {KindUint32, KindInt32},
	64: {KindUint64, KindInt64},
}

// NewFixedInt builds a fixed-width integer codec. Width is in bits and must
// be 8, 16, 32 or 64.
func NewFixedInt(width int, signed bool, endian Endianness) (*Codec, error) {
	kinds, ok := fixedIntKinds[width]
	if !ok {
		return nil, fmt.Errorf("%w: integer width must be 8, 16, 32 or 64 bits, got %d", ErrConfiguration, width)
	}
	kind := kinds[0]
	if signed {
		kind = kinds[1]
	}
	return newFixedInt(kind, width, signed, endian)
}

func newFixedInt(kind Kind, width int, signed bool, endian Endianness) (*Codec, error) {
	if endian > Little {
		return nil, fmt.Errorf("%w: unknown endianness %v", ErrConfiguration, endian)
	}
	return &Codec{
		kind:   kind,
		fixed:  true,
		size:   width / 8,
		endian: endian.Resolve(),
		width:  width,
		signed: signed,
	}, nil
}

// NewVarint builds a base-128 variable-length integer codec.
func NewVarint(endian Endianness) (*Codec, error) {
	return newVarint(endian)
}

func newVarint(endian Endianness) (*Codec, error) {
	if endian > Little {
		return nil, fmt.Errorf("%w: unknown endianness %v", ErrConfiguration, endian)
	}
	return &Codec{
		kind:   KindVarint,
		endian: endian.Resolve(),
	}, nil
}

func (c *Codec) decodeFixedInt(r io.Reader) (any, error) {
	var buf [8]byte
	b := buf[:c.size]
	if n, err := io.ReadFull(r, b); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: %v needs %d bytes, got %d", ErrTruncatedInput, c.kind, c.size, n)
		}
		return nil, err
	}

	var u uint64
	order := c.endian.byteOrder()
	switch c.width {
	case 8:
		u = uint64(b[0])
	case 16:
		u = uint64(order.Uint16(b))
	case 32:
		u = uint64(order.Uint32(b))
	case 64:
		u = order.Uint64(b)
	}

	switch c.kind {
	case KindUint8:
		return uint8(u), nil
	case KindUint16:
		return uint16(u), nil
	case KindUint32:
		return uint32(u), nil
	case KindUint64:
		return u, nil
	case KindInt8:
		return int8(u), nil
	case KindInt16:
		return int16(u), nil
	case KindInt32:
		return int32(u), nil
	default:
		return int64(u), nil
	}
}

func (c *Codec) encodeFixedInt(w io.Writer, value any) error {
	bits, err := c.fixedIntBits(value)
	if err != nil {
		return err
	}

	var buf [8]byte
	b := buf[:c.size]
	order := c.endian.byteOrder()
	switch c.width {
	case 8:
		b[0] = byte(bits)
	case 16:
		order.PutUint16(b, uint16(bits))
	case 32:
		order.PutUint32(b, uint32(bits))
	case 64:
		order.PutUint64(b, bits)
	}
	_, err = w.Write(b)
	return err
}

// fixedIntBits returns the width-bit two's complement pattern of value, or
// ErrValueOutOfRange if value is not representable.
func (c *Codec) fixedIntBits(value any) (uint64, error) {
	n, unsigned, err := toInteger(value)
	if err != nil {
		return 0, err
	}

	mask := ^uint64(0) >> (64 - c.width)
	outOfRange := fmt.Errorf("%w: %v does not fit %v", ErrValueOutOfRange, value, c.kind)
	if c.signed {
		limit := mask >> 1
		switch {
		case unsigned && n.u > limit:
			return 0, outOfRange
		case !unsigned && n.i >= 0 && uint64(n.i) > limit:
			return 0, outOfRange
		case !unsigned && n.i < 0 && uint64(-(n.i+1)) > limit:
			return 0, outOfRange
		}
		if unsigned {
			return n.u, nil
		}
		return uint64(n.i) & mask, nil
	}

	if !unsigned {
		if n.i < 0 {
			return 0, outOfRange
		}
		n.u = uint64(n.i)
	}
	if n.u > mask {
		return 0, outOfRange
	}
	return n.u, nil
}

func (c *Codec) decodeVarint(r io.Reader) (any, error) {
	var (
		result uint64
		shift  uint
	)
	for {
		b, err := readByte(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: varint ended before its final byte", ErrTruncatedInput)
			}
			return nil, err
		}

		if c.endian == Little {
			if shift >= 64 || (shift == 63 && b&0x7f > 1) {
				return nil, fmt.Errorf("%w: varint overflows 64 bits", ErrValueOutOfRange)
			}
			result |= uint64(b&0x7f) << shift
			shift += 7
		} else {
			if result > ^uint64(0)>>7 {
				return nil, fmt.Errorf("%w: varint overflows 64 bits", ErrValueOutOfRange)
			}
			result = result<<7 | uint64(b&0x7f)
		}

		if b&0x80 == 0 {
			return result, nil
		}
	}
}

func (c *Codec) encodeVarint(w io.Writer, value any) error {
	n, unsigned, err := toInteger(value)
	if err != nil {
		return err
	}
	v := n.u
	if !unsigned {
		if n.i < 0 {
			return fmt.Errorf("%w: varint cannot encode negative value %d", ErrValueOutOfRange, n.i)
		}
		v = uint64(n.i)
	}

	var buf [10]byte
	i := 0
	if c.endian == Little {
		for {
			b := byte(v & 0x7f)
			v >>= 7
			if v > 0 {
				b |= 0x80
			}
			buf[i] = b
			i++
			if v == 0 {
				break
			}
		}
		_, err = w.Write(buf[:i])
		return err
	}

	// Groups are peeled least significant first and emitted in reverse, so
	// every group but the least significant carries the continuation bit.
	end := len(buf)
	i = end
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if i != end {
			b |= 0x80
		}
		i--
		buf[i] = b
		if v == 0 {
			break
		}
	}
	_, err = w.Write(buf[i:])
	return err
}

type integer struct {
	i int64
	u uint64
}

// toInteger normalizes any Go integer. unsigned reports which field of the
// result holds the value.
func toInteger(value any) (n integer, unsigned bool, err error) {
	switch v := value.(type) {
	case int:
		return integer{i: int64(v)}, false, nil
	case int8:
		return integer{i: int64(v)}, false, nil
	case int16:
		return integer{i: int64(v)}, false, nil
	case int32:
		return integer{i: int64(v)}, false, nil
	case int64:
		return integer{i: v}, false, nil
	case uint:
		return integer{u: uint64(v)}, true, nil
	case uint8:
		return integer{u: uint64(v)}, true, nil
	case uint16:
		return integer{u: uint64(v)}, true, nil
	case uint32:
		return integer{u: uint64(v)}, true, nil
	case uint64:
		return integer{u: v}, true, nil
	default:
		return integer{}, false, fmt.Errorf("%w: expected an integer, got %T", ErrInvalidValue, value)
	}
}

// readByte reads a single byte without reading ahead of it.
func readByte(r io.Reader) (byte, error) {
	if br, ok := r.(io.ByteReader); ok {
		return br.ReadByte()
	}
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, io.EOF
		}
		return 0, err
	}
	return b[0], nil
}
