package codec

import "fmt"

// NewCustom builds a codec that delegates to caller-supplied functions.
// Its size is always reported as dynamic since the functions cannot be
// inspected. Errors returned by read and write are passed through as is.
func NewCustom(read ReadFunc, write WriteFunc) (*Codec, error) {
	return newCustom(read, write)
}

func newCustom(read ReadFunc, write WriteFunc) (*Codec, error) {
	if read == nil || write == nil {
		return nil, fmt.Errorf("%w: custom codec requires both read and write functions", ErrConfiguration)
	}
	return &Codec{
		kind:  KindCustom,
		read:  read,
		write: write,
	}, nil
}
