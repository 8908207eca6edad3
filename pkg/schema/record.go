package schema

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"slices"
	"unicode/utf8"
)

// JSONBytesKey names the single key of the object MarshalJSON writes for
// binary values: {"base64": "<standard base64>"}.
const JSONBytesKey = "base64"

// Record holds one value per field name. It keeps the order in which
// fields were first set; records produced by Schema.Read follow the
// schema's field order.
type Record struct {
	names  []string
	values map[string]any
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]any)}
}

// Set stores value under name and returns the record for chaining.
func (r *Record) Set(name string, value any) *Record {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[name]; !ok {
		r.names = append(r.names, name)
	}
	r.values[name] = value
	return r
}

// Get returns the value stored under name.
func (r *Record) Get(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Delete removes name from the record.
func (r *Record) Delete(name string) {
	if _, ok := r.values[name]; !ok {
		return
	}
	delete(r.values, name)
	r.names = slices.DeleteFunc(r.names, func(n string) bool { return n == name })
}

// Fields returns the field names in order.
func (r *Record) Fields() []string {
	return slices.Clone(r.names)
}

// Len returns the number of fields set.
func (r *Record) Len() int {
	return len(r.names)
}

// Value returns the value of name converted to T.
func Value[T any](r *Record, name string) (T, error) {
	var zero T
	v, ok := r.Get(name)
	if !ok {
		return zero, fmt.Errorf("%w: %q", ErrMissingField, name)
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("field %q holds %T, not %T", name, v, zero)
	}
	return t, nil
}

// MarshalJSON encodes the record as a JSON object with keys in field order.
// Strings that are not valid UTF-8 and []byte values are written as
// {"base64": ...} objects so their bytes survive the round trip.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(jsonValue(r.values[name]))
		if err != nil {
			return nil, fmt.Errorf("failed to marshal field %q: %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func jsonValue(v any) any {
	switch v := v.(type) {
	case string:
		if !utf8.ValidString(v) {
			return map[string]string{JSONBytesKey: base64.StdEncoding.EncodeToString([]byte(v))}
		}
	case []byte:
		return map[string]string{JSONBytesKey: base64.StdEncoding.EncodeToString(v)}
	}
	return v
}

func (r *Record) String() string {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.names {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%s: %#v", name, r.values[name])
	}
	buf.WriteByte('}')
	return buf.String()
}
