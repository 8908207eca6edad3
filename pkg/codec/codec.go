package codec

import (
	"fmt"
	"io"
	"strings"
)

// Kind identifies one of the closed set of field codec variants.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindVarint
	KindString
	KindCString
	KindFixedString
	KindCustom
)

var kindNames = map[Kind]string{
	KindUint8:       "uint8",
	KindUint16:      "uint16",
	KindUint32:      "uint32",
	KindUint64:      "uint64",
	KindInt8:        "int8",
	KindInt16:       "int16",
	KindInt32:       "int32",
	KindInt64:       "int64",
	KindVarint:      "varint",
	KindString:      "string",
	KindCString:     "cstring",
	KindFixedString: "fixed_string",
	KindCustom:      "custom",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind parses a kind name as printed by Kind.String. "base128" is
// accepted as an alias for "varint".
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "base128" {
		return KindVarint, nil
	}
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return KindInvalid, fmt.Errorf("%w: unknown codec kind %q", ErrConfiguration, s)
}

// ReadFunc decodes one value from r.
type ReadFunc func(r io.Reader) (any, error)

// WriteFunc encodes value to w.
type WriteFunc func(w io.Writer, value any) error

// Options configures a codec. Only the options relevant to the kind are
// consulted; see New for the rules each kind enforces.
type Options struct {
	// Endian applies to the integer kinds. The zero value is Native.
	Endian Endianness

	// Size is the byte length of a size-delimited string. Zero means unset.
	Size int

	// Terminator is the literal byte sequence ending a terminated string.
	Terminator []byte

	// Until ends a terminated string at the first byte for which it
	// returns true. The byte is consumed but not included in the value.
	Until func(b byte) bool

	// Padding fills size-delimited strings shorter than Size. The zero
	// value is the null byte.
	Padding byte

	// Read and Write are the custom codec functions. Write also overrides
	// the encoder of any string codec.
	Read  ReadFunc
	Write WriteFunc
}

// Codec encodes and decodes one field value. A Codec is immutable once
// constructed and safe for concurrent use.
type Codec struct {
	kind   Kind
	fixed  bool
	size   int
	endian Endianness

	width  int
	signed bool

	padding    byte
	terminator []byte
	until      func(byte) bool

	read  ReadFunc
	write WriteFunc
}

// New builds a codec of the given kind. Invalid or contradictory options
// fail with ErrConfiguration.
func New(kind Kind, opts Options) (*Codec, error) {
	if err := checkOptions(kind, opts); err != nil {
		return nil, err
	}
	switch kind {
	case KindUint8, KindInt8:
		return newFixedInt(kind, 8, kind == KindInt8, opts.Endian)
	case KindUint16, KindInt16:
		return newFixedInt(kind, 16, kind == KindInt16, opts.Endian)
	case KindUint32, KindInt32:
		return newFixedInt(kind, 32, kind == KindInt32, opts.Endian)
	case KindUint64, KindInt64:
		return newFixedInt(kind, 64, kind == KindInt64, opts.Endian)
	case KindVarint:
		return newVarint(opts.Endian)
	case KindString:
		return newString(KindString, opts)
	case KindCString:
		if opts.Terminator == nil && opts.Until == nil {
			opts.Terminator = []byte{0}
		}
		return newString(KindCString, opts)
	case KindFixedString:
		if opts.Size == 0 {
			return nil, fmt.Errorf("%w: fixed_string requires a size", ErrConfiguration)
		}
		return newString(KindFixedString, opts)
	case KindCustom:
		return newCustom(opts.Read, opts.Write)
	default:
		return nil, fmt.Errorf("%w: unsupported codec kind %v", ErrConfiguration, kind)
	}
}

// checkOptions rejects options that have no meaning for kind.
func checkOptions(kind Kind, opts Options) error {
	var unused []string
	switch kind {
	case KindUint8, KindUint16, KindUint32, KindUint64,
		KindInt8, KindInt16, KindInt32, KindInt64, KindVarint:
		unused = setOptions(opts, "size", "terminator", "until", "padding", "read", "write")
	case KindString, KindCString, KindFixedString:
		unused = setOptions(opts, "endian", "read")
		if opts.Padding != 0 && opts.Size == 0 {
			unused = append(unused, "padding")
		}
	case KindCustom:
		unused = setOptions(opts, "endian", "size", "terminator", "until", "padding")
	}
	if len(unused) > 0 {
		return fmt.Errorf("%w: %v does not accept %s", ErrConfiguration, kind, strings.Join(unused, ", "))
	}
	return nil
}

// setOptions returns which of the named options are set in opts.
func setOptions(opts Options, names ...string) []string {
	var set []string
	for _, name := range names {
		var ok bool
		switch name {
		case "endian":
			ok = opts.Endian != Native
		case "size":
			ok = opts.Size != 0
		case "terminator":
			ok = opts.Terminator != nil
		case "until":
			ok = opts.Until != nil
		case "padding":
			ok = opts.Padding != 0
		case "read":
			ok = opts.Read != nil
		case "write":
			ok = opts.Write != nil
		}
		if ok {
			set = append(set, name)
		}
	}
	return set
}

// MustNew is like New but panics on error. It is intended for package-level
// declarations.
func MustNew(kind Kind, opts Options) *Codec {
	c, err := New(kind, opts)
	if err != nil {
		panic(err)
	}
	return c
}

// Kind returns the codec variant.
func (c *Codec) Kind() Kind { return c.kind }

// FixedSize reports whether the encoded length is independent of the data.
func (c *Codec) FixedSize() bool { return c.fixed }

// StaticSize returns the encoded length in bytes, or ErrDynamicSize when the
// length depends on the data.
func (c *Codec) StaticSize() (int, error) {
	if !c.fixed {
		return 0, fmt.Errorf("%w: %v", ErrDynamicSize, c.kind)
	}
	return c.size, nil
}

// Endianness returns the resolved byte order of an integer codec. It never
// returns Native.
func (c *Codec) Endianness() Endianness { return c.endian }

// Decode reads one value from r.
func (c *Codec) Decode(r io.Reader) (any, error) {
	switch c.kind {
	case KindUint8, KindUint16, KindUint32, KindUint64,
		KindInt8, KindInt16, KindInt32, KindInt64:
		return c.decodeFixedInt(r)
	case KindVarint:
		return c.decodeVarint(r)
	case KindString, KindCString, KindFixedString:
		return c.decodeString(r)
	case KindCustom:
		return c.read(r)
	default:
		return nil, fmt.Errorf("%w: unsupported codec kind %v", ErrConfiguration, c.kind)
	}
}

// Encode writes value to w.
func (c *Codec) Encode(w io.Writer, value any) error {
	switch c.kind {
	case KindUint8, KindUint16, KindUint32, KindUint64,
		KindInt8, KindInt16, KindInt32, KindInt64:
		return c.encodeFixedInt(w, value)
	case KindVarint:
		return c.encodeVarint(w, value)
	case KindString, KindCString, KindFixedString:
		return c.encodeString(w, value)
	case KindCustom:
		return c.write(w, value)
	default:
		return fmt.Errorf("%w: unsupported codec kind %v", ErrConfiguration, c.kind)
	}
}

func (c *Codec) String() string {
	switch {
	case c.kind == KindVarint || c.width > 0:
		return fmt.Sprintf("%v(%v)", c.kind, c.endian)
	case c.fixed:
		return fmt.Sprintf("%v[%d]", c.kind, c.size)
	case c.terminator != nil:
		return fmt.Sprintf("%v(%q)", c.kind, c.terminator)
	default:
		return c.kind.String()
	}
}
