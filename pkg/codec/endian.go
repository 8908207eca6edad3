package codec

import (
	"encoding/binary"
	"fmt"
	"strings"
	"sync"
	"unsafe"
)

// Endianness selects the byte order of multi-byte encodings. Native is only
// an input value: constructors resolve it to Big or Little, and a built
// codec never reports Native.
type Endianness uint8

const (
	Native Endianness = iota
	Big
	Little
)

var nativeEndianness = sync.OnceValue(func() Endianness {
	const probe uint32 = 0x12345678
	v := probe
	host := (*[4]byte)(unsafe.Pointer(&v))
	if binary.BigEndian.Uint32(host[:]) == probe {
		return Big
	}
	return Little
})

// HostEndianness returns the byte order of the running process. It is
// probed once and cached.
func HostEndianness() Endianness {
	return nativeEndianness()
}

// Resolve maps Native to the host byte order and returns Big and Little
// unchanged.
func (e Endianness) Resolve() Endianness {
	if e == Native {
		return HostEndianness()
	}
	return e
}

func (e Endianness) byteOrder() binary.ByteOrder {
	if e.Resolve() == Big {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (e Endianness) String() string {
	switch e {
	case Native:
		return "native"
	case Big:
		return "big"
	case Little:
		return "little"
	default:
		return fmt.Sprintf("Endianness(%d)", uint8(e))
	}
}

// ParseEndianness parses "big", "little" or "native". The empty string
// parses as Native.
func ParseEndianness(s string) (Endianness, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "native":
		return Native, nil
	case "big", "be":
		return Big, nil
	case "little", "le":
		return Little, nil
	default:
		return Native, fmt.Errorf("%w: unknown endianness %q", ErrConfiguration, s)
	}
}
