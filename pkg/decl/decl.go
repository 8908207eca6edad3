// Package decl loads record schemas declared in YAML or HCL files.
//
// A YAML declaration file lists records and their fields in order:
//
//	records:
//	  - name: header
//	    fields:
//	      - name: fourcc
//	        type: uint32
//	        endian: big
//	      - name: name
//	        type: cstring
//
// The HCL form uses one block per record and field. The variables big,
// little, native and nul are predefined:
//
//	record "header" {
//	  field "fourcc" {
//	    type   = "uint32"
//	    endian = big
//	  }
//	  field "name" {
//	    type       = "string"
//	    terminator = nul
//	  }
//	}
//
// Custom codecs and predicate terminators cannot be expressed in a file.
// They are registered by name with WithCustom and WithPredicate and
// referenced through the codec and until attributes.
package decl

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ssargent/byteparser/pkg/codec"
	"github.com/ssargent/byteparser/pkg/schema"
)

// Errors
var (
	ErrUnknownRecord   = errors.New("unknown record")
	ErrDuplicateRecord = errors.New("duplicate record name")
)

// File is the decoded form of a declaration file.
type File struct {
	Records []Record `yaml:"records" hcl:"record,block"`
}

// Record declares one schema.
type Record struct {
	Name   string  `yaml:"name" hcl:"name,label"`
	Fields []Field `yaml:"fields" hcl:"field,block"`
}

// Field declares one field of a record.
type Field struct {
	Name       string `yaml:"name" hcl:"name,label"`
	Type       string `yaml:"type" hcl:"type"`
	Endian     string `yaml:"endian,omitempty" hcl:"endian,optional"`
	Size       int    `yaml:"size,omitempty" hcl:"size,optional"`
	Terminator string `yaml:"terminator,omitempty" hcl:"terminator,optional"`
	Padding    string `yaml:"padding,omitempty" hcl:"padding,optional"`
	Codec      string `yaml:"codec,omitempty" hcl:"codec,optional"`
	Until      string `yaml:"until,omitempty" hcl:"until,optional"`
}

type customFuncs struct {
	read  codec.ReadFunc
	write codec.WriteFunc
}

type predicate struct {
	until func(byte) bool
	write codec.WriteFunc
}

type compiler struct {
	customs    map[string]customFuncs
	predicates map[string]predicate
}

// Option registers functions that declarations can refer to by name.
type Option func(*compiler)

// WithCustom registers a custom codec for fields with type custom and
// codec = name.
func WithCustom(name string, read codec.ReadFunc, write codec.WriteFunc) Option {
	return func(c *compiler) {
		c.customs[name] = customFuncs{read: read, write: write}
	}
}

// WithPredicate registers a predicate terminator for string fields with
// until = name. write encodes values for those fields.
func WithPredicate(name string, until func(byte) bool, write codec.WriteFunc) Option {
	return func(c *compiler) {
		c.predicates[name] = predicate{until: until, write: write}
	}
}

// Catalog holds the schemas compiled from a declaration file.
type Catalog struct {
	schemas map[string]*schema.Schema
	names   []string
}

// Compile builds a schema for every record in f.
func Compile(f *File, opts ...Option) (*Catalog, error) {
	c := &compiler{
		customs:    make(map[string]customFuncs),
		predicates: make(map[string]predicate),
	}
	for _, opt := range opts {
		opt(c)
	}

	cat := &Catalog{schemas: make(map[string]*schema.Schema, len(f.Records))}
	for _, rec := range f.Records {
		if _, ok := cat.schemas[rec.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateRecord, rec.Name)
		}
		s, err := c.compileRecord(rec)
		if err != nil {
			return nil, err
		}
		cat.schemas[rec.Name] = s
		cat.names = append(cat.names, rec.Name)
	}
	return cat, nil
}

func (c *compiler) compileRecord(rec Record) (*schema.Schema, error) {
	if rec.Name == "" {
		return nil, fmt.Errorf("%w: record has no name", codec.ErrConfiguration)
	}
	b := schema.NewBuilder(rec.Name)
	for _, f := range rec.Fields {
		kind, opts, err := c.fieldOptions(f)
		if err != nil {
			return nil, fmt.Errorf("schema %q: field %q: %w", rec.Name, f.Name, err)
		}
		b.Add(f.Name, kind, opts)
	}
	return b.Build()
}

func (c *compiler) fieldOptions(f Field) (codec.Kind, codec.Options, error) {
	var opts codec.Options

	kind, err := codec.ParseKind(f.Type)
	if err != nil {
		return kind, opts, err
	}
	if opts.Endian, err = codec.ParseEndianness(f.Endian); err != nil {
		return kind, opts, err
	}
	opts.Size = f.Size
	if f.Terminator != "" {
		opts.Terminator = []byte(f.Terminator)
	}

	switch len(f.Padding) {
	case 0:
	case 1:
		opts.Padding = f.Padding[0]
	default:
		return kind, opts, fmt.Errorf("%w: padding must be a single byte, got %q", codec.ErrConfiguration, f.Padding)
	}

	if f.Until != "" {
		p, ok := c.predicates[f.Until]
		if !ok {
			return kind, opts, fmt.Errorf("%w: no predicate registered as %q", codec.ErrConfiguration, f.Until)
		}
		opts.Until = p.until
		opts.Write = p.write
	}

	if kind == codec.KindCustom {
		fn, ok := c.customs[f.Codec]
		if !ok {
			return kind, opts, fmt.Errorf("%w: no custom codec registered as %q", codec.ErrConfiguration, f.Codec)
		}
		opts.Read = fn.read
		opts.Write = fn.write
	}
	return kind, opts, nil
}

// Lookup returns the schema declared as name.
func (c *Catalog) Lookup(name string) (*schema.Schema, error) {
	s, ok := c.schemas[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRecord, name)
	}
	return s, nil
}

// Names returns the record names in declaration order.
func (c *Catalog) Names() []string {
	return slices.Clone(c.names)
}

// Len returns the number of schemas.
func (c *Catalog) Len() int {
	return len(c.names)
}
