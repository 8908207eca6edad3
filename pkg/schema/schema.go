package schema

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ssargent/byteparser/pkg/codec"
)

// Field pairs a field name with the codec that reads and writes it.
type Field struct {
	Name  string
	Codec *codec.Codec
}

// Schema is an ordered, immutable list of fields. It is safe for
// concurrent use; each Read or Write drives its own stream and record.
type Schema struct {
	name   string
	fields []Field
	index  map[string]int
	fixed  bool
	size   int
}

// Name returns the schema name given to the builder.
func (s *Schema) Name() string { return s.name }

// Len returns the number of fields.
func (s *Schema) Len() int { return len(s.fields) }

// Fields returns the fields in declaration order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field looks up a field by name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// FixedSize reports whether every field has a static size.
func (s *Schema) FixedSize() bool { return s.fixed }

// StaticSize returns the total encoded size of a record, or
// codec.ErrDynamicSize if any field's size depends on the data.
func (s *Schema) StaticSize() (int, error) {
	if !s.fixed {
		return 0, fmt.Errorf("%w: schema %q has variable-size fields", codec.ErrDynamicSize, s.name)
	}
	return s.size, nil
}

// Read decodes one record from r, field by field in declaration order.
// On error no record is returned.
func (s *Schema) Read(r io.Reader) (*Record, error) {
	if s.fixed && s.size > 0 {
		// A single read for the whole block. If the stream comes up short
		// the fields are decoded from what was read, so the per-field
		// end-of-stream rules still apply.
		buf := make([]byte, s.size)
		n, err := io.ReadFull(r, buf)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			// The block spans every field, so the failure belongs to the record.
			return nil, fmt.Errorf("failed to read %s record: %w", s.name, err)
		}
		r = bytes.NewReader(buf[:n])
	}

	rec := &Record{
		names:  make([]string, 0, len(s.fields)),
		values: make(map[string]any, len(s.fields)),
	}
	for _, f := range s.fields {
		v, err := f.Codec.Decode(r)
		if err != nil {
			return nil, &FieldError{Schema: s.name, Field: f.Name, Op: "read", Err: err}
		}
		rec.names = append(rec.names, f.Name)
		rec.values[f.Name] = v
	}
	return rec, nil
}

// Write encodes rec to w in declaration order. Every schema field must be
// present in rec; extra record fields are ignored. The record is encoded in
// full before anything is written, so a failing field leaves w untouched.
func (s *Schema) Write(w io.Writer, rec *Record) error {
	data, err := s.Encode(rec)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write %s record: %w", s.name, err)
	}
	return nil
}

// Encode returns the binary form of rec.
func (s *Schema) Encode(rec *Record) ([]byte, error) {
	if rec == nil {
		rec = NewRecord()
	}
	var buf bytes.Buffer
	if s.fixed {
		buf.Grow(s.size)
	}
	for _, f := range s.fields {
		v, ok := rec.Get(f.Name)
		if !ok {
			return nil, &FieldError{Schema: s.name, Field: f.Name, Op: "write", Err: ErrMissingField}
		}
		if err := f.Codec.Encode(&buf, v); err != nil {
			return nil, &FieldError{Schema: s.name, Field: f.Name, Op: "write", Err: err}
		}
	}
	return buf.Bytes(), nil
}

// Decode reads one record from data. Trailing bytes are ignored.
func (s *Schema) Decode(data []byte) (*Record, error) {
	return s.Read(bytes.NewReader(data))
}

// ReadAll reads consecutive records from r until it is exhausted, calling
// fn for each. Reaching the end of r between records ends the sequence
// cleanly; any other error, including one returned by fn, stops it. A
// record that consumes no input fails with ErrNoProgress.
func (s *Schema) ReadAll(r io.Reader, fn func(*Record) error) error {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	cr := &countingReader{r: br}
	for {
		if _, err := br.Peek(1); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		start := cr.n
		rec, err := s.Read(cr)
		if err != nil {
			return err
		}
		if cr.n == start {
			return fmt.Errorf("%w: schema %q", ErrNoProgress, s.name)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}

// countingReader counts bytes taken from a buffered reader. It keeps
// ReadByte so codecs still read single bytes without extra copies.
type countingReader struct {
	r *bufio.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func (c *countingReader) ReadByte() (byte, error) {
	b, err := c.r.ReadByte()
	if err == nil {
		c.n++
	}
	return b, err
}

func (s *Schema) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s{", s.name)
	for i, f := range s.fields {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%s %v", f.Name, f.Codec)
	}
	buf.WriteByte('}')
	return buf.String()
}
