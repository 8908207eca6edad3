package codec

import "errors"

// Errors
var (
	// ErrConfiguration reports invalid or contradictory codec options. It is
	// always returned by a constructor, never by Decode or Encode.
	ErrConfiguration = errors.New("invalid codec configuration")

	// ErrTruncatedInput reports that the stream ended before a fixed-width or
	// varint codec could read all of its bytes.
	ErrTruncatedInput = errors.New("truncated input")

	// ErrDynamicSize is returned by StaticSize on a codec whose encoded
	// length depends on the data.
	ErrDynamicSize = errors.New("codec has no static size")

	// ErrValueOutOfRange reports a value that does not fit the encoding.
	ErrValueOutOfRange = errors.New("value out of range")

	// ErrInvalidValue reports a value of a Go type the codec cannot encode.
	ErrInvalidValue = errors.New("invalid value type")
)
