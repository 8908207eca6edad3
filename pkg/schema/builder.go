package schema

import (
	"fmt"

	"github.com/ssargent/byteparser/pkg/codec"
)

// Declaration describes one field: its name, codec kind and options.
type Declaration struct {
	Name    string
	Kind    codec.Kind
	Options codec.Options
}

// New builds a schema from declarations in order.
func New(name string, decls ...Declaration) (*Schema, error) {
	b := NewBuilder(name)
	for _, d := range decls {
		b.Add(d.Name, d.Kind, d.Options)
	}
	return b.Build()
}

// MustNew is like New but panics on error.
func MustNew(name string, decls ...Declaration) *Schema {
	s, err := New(name, decls...)
	if err != nil {
		panic(err)
	}
	return s
}

// Builder accumulates field declarations. The first error is kept and
// reported by Build; later calls are ignored once an error has occurred.
type Builder struct {
	name   string
	fields []Field
	index  map[string]int
	err    error
}

// NewBuilder starts a schema called name.
func NewBuilder(name string) *Builder {
	return &Builder{
		name:  name,
		index: make(map[string]int),
	}
}

// Add declares a field with a codec constructed from kind and opts.
func (b *Builder) Add(name string, kind codec.Kind, opts codec.Options) *Builder {
	if b.err != nil {
		return b
	}
	c, err := codec.New(kind, opts)
	if err != nil {
		b.err = fmt.Errorf("field %q: %w", name, err)
		return b
	}
	return b.Field(name, c)
}

// Field declares a field with an already constructed codec.
func (b *Builder) Field(name string, c *codec.Codec) *Builder {
	if b.err != nil {
		return b
	}
	switch {
	case name == "":
		b.err = fmt.Errorf("%w: field %d has no name", codec.ErrConfiguration, len(b.fields))
	case c == nil:
		b.err = fmt.Errorf("%w: field %q has no codec", codec.ErrConfiguration, name)
	default:
		if _, ok := b.index[name]; ok {
			b.err = fmt.Errorf("%w: %q", ErrDuplicateField, name)
			return b
		}
		b.index[name] = len(b.fields)
		b.fields = append(b.fields, Field{Name: name, Codec: c})
	}
	return b
}

// Uint8 through Int64 declare fixed-width integer fields.
func (b *Builder) Uint8(name string) *Builder { return b.Add(name, codec.KindUint8, codec.Options{}) }

func (b *Builder) Uint16(name string, endian codec.Endianness) *Builder {
	return b.Add(name, codec.KindUint16, codec.Options{Endian: endian})
}

func (b *Builder) Uint32(name string, endian codec.Endianness) *Builder {
	return b.Add(name, codec.KindUint32, codec.Options{Endian: endian})
}

func (b *Builder) Uint64(name string, endian codec.Endianness) *Builder {
	return b.Add(name, codec.KindUint64, codec.Options{Endian: endian})
}

func (b *Builder) Int8(name string) *Builder { return b.Add(name, codec.KindInt8, codec.Options{}) }

func (b *Builder) Int16(name string, endian codec.Endianness) *Builder {
	return b.Add(name, codec.KindInt16, codec.Options{Endian: endian})
}

func (b *Builder) Int32(name string, endian codec.Endianness) *Builder {
	return b.Add(name, codec.KindInt32, codec.Options{Endian: endian})
}

func (b *Builder) Int64(name string, endian codec.Endianness) *Builder {
	return b.Add(name, codec.KindInt64, codec.Options{Endian: endian})
}

// Varint declares a base-128 integer field.
func (b *Builder) Varint(name string, endian codec.Endianness) *Builder {
	return b.Add(name, codec.KindVarint, codec.Options{Endian: endian})
}

// CString declares a null-terminated string field.
func (b *Builder) CString(name string) *Builder {
	return b.Add(name, codec.KindCString, codec.Options{})
}

// FixedString declares a string field of size bytes padded with nulls.
func (b *Builder) FixedString(name string, size int) *Builder {
	return b.Add(name, codec.KindFixedString, codec.Options{Size: size})
}

// Custom declares a field read and written by caller-supplied functions.
func (b *Builder) Custom(name string, read codec.ReadFunc, write codec.WriteFunc) *Builder {
	return b.Add(name, codec.KindCustom, codec.Options{Read: read, Write: write})
}

// Build returns the finished schema, or the first declaration error.
func (b *Builder) Build() (*Schema, error) {
	if b.err != nil {
		return nil, fmt.Errorf("schema %q: %w", b.name, b.err)
	}
	if len(b.fields) == 0 {
		return nil, fmt.Errorf("schema %q: %w: no fields declared", b.name, codec.ErrConfiguration)
	}

	s := &Schema{
		name:   b.name,
		fields: make([]Field, len(b.fields)),
		index:  make(map[string]int, len(b.fields)),
		fixed:  true,
	}
	copy(s.fields, b.fields)
	for i, f := range s.fields {
		s.index[f.Name] = i
		size, err := f.Codec.StaticSize()
		if err != nil {
			s.fixed = false
			continue
		}
		s.size += size
	}
	if !s.fixed {
		s.size = 0
	}
	return s, nil
}
