package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// NewSizedString builds a string codec that always occupies size bytes,
// padding short values with padding.
func NewSizedString(size int, padding byte) (*Codec, error) {
	return newString(KindFixedString, Options{Size: size, Padding: padding})
}

// NewTerminatedString builds a string codec delimited by a literal
// terminator.
func NewTerminatedString(terminator []byte) (*Codec, error) {
	return newString(KindString, Options{Terminator: terminator})
}

// NewCString builds a null-terminated string codec.
func NewCString() (*Codec, error) {
	return newString(KindCString, Options{Terminator: []byte{0}})
}

func newString(kind Kind, opts Options) (*Codec, error) {
	hasSize := opts.Size != 0
	hasTerminator := opts.Terminator != nil || opts.Until != nil
	switch {
	case hasSize == hasTerminator:
		return nil, fmt.Errorf("%w: exactly one of size or terminator must be set for %v", ErrConfiguration, kind)
	case opts.Size < 0:
		return nil, fmt.Errorf("%w: size must be positive, got %d", ErrConfiguration, opts.Size)
	case opts.Terminator != nil && opts.Until != nil:
		return nil, fmt.Errorf("%w: terminator must be either literal bytes or a predicate", ErrConfiguration)
	case opts.Terminator != nil && len(opts.Terminator) == 0:
		return nil, fmt.Errorf("%w: literal terminator is empty", ErrConfiguration)
	case opts.Until != nil && opts.Write == nil:
		return nil, fmt.Errorf("%w: predicate terminator requires a write function", ErrConfiguration)
	}

	c := &Codec{
		kind:    kind,
		fixed:   hasSize,
		size:    opts.Size,
		padding: opts.Padding,
		until:   opts.Until,
		write:   opts.Write,
	}
	if opts.Terminator != nil {
		c.terminator = bytes.Clone(opts.Terminator)
	}
	return c, nil
}

func (c *Codec) decodeString(r io.Reader) (any, error) {
	if c.fixed {
		b := make([]byte, c.size)
		n, err := io.ReadFull(r, b)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, err
		}
		return string(b[:n]), nil
	}

	var buf []byte
	for {
		b, err := readByte(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return string(buf), nil
			}
			return nil, err
		}
		if c.until != nil {
			if c.until(b) {
				return string(buf), nil
			}
			buf = append(buf, b)
			continue
		}
		buf = append(buf, b)
		if bytes.HasSuffix(buf, c.terminator) {
			return string(buf[:len(buf)-len(c.terminator)]), nil
		}
	}
}

func (c *Codec) encodeString(w io.Writer, value any) error {
	if c.write != nil {
		return c.write(w, value)
	}

	var s []byte
	switch v := value.(type) {
	case string:
		s = []byte(v)
	case []byte:
		s = v
	default:
		return fmt.Errorf("%w: expected a string, got %T", ErrInvalidValue, value)
	}

	if !c.fixed {
		out := make([]byte, 0, len(s)+len(c.terminator))
		out = append(append(out, s...), c.terminator...)
		_, err := w.Write(out)
		return err
	}

	out := make([]byte, c.size)
	n := copy(out, s)
	if c.padding != 0 {
		for i := n; i < len(out); i++ {
			out[i] = c.padding
		}
	}
	_, err := w.Write(out)
	return err
}
