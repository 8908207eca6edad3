package schema

import (
	"errors"
	"fmt"
)

// Errors
var (
	ErrDuplicateField = errors.New("duplicate field name")
	ErrMissingField   = errors.New("missing field")
	ErrNoProgress     = errors.New("record consumed no input")
)

// FieldError reports which field of which schema failed to read or write.
type FieldError struct {
	Schema string
	Field  string
	Op     string // "read" or "write"
	Err    error
}

func (e *FieldError) Error() string {
	if e.Schema == "" {
		return fmt.Sprintf("%s field %q: %v", e.Op, e.Field, e.Err)
	}
	return fmt.Sprintf("%s %s.%s: %v", e.Op, e.Schema, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
