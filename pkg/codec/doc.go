// Package codec provides the primitive field codecs used to read and write
// binary records.
//
// A Codec converts between a single Go value and its byte representation at
// the current position of a stream. Codecs form a closed set of kinds:
//
//   - Fixed-width integers: uint8, uint16, uint32, uint64 and their signed
//     counterparts, in big, little or native byte order.
//   - Base-128 varints: 7 data bits per byte plus a continuation bit.
//   - Strings delimited by a fixed size, a literal terminator or a
//     predicate over the bytes read.
//   - Custom codecs wrapping caller-supplied read and write functions.
//
// # Usage
//
//	u32, err := codec.New(codec.KindUint32, codec.Options{Endian: codec.Big})
//	if err != nil {
//	    return err
//	}
//
//	v, err := u32.Decode(bytes.NewReader([]byte{0x01, 0x02, 0x03, 0x04}))
//	// v == uint32(0x01020304)
//
// # Varints
//
// The two byte orders are distinct encodings rather than mirror images.
// Little-endian varints emit the least significant 7-bit group first and set
// the continuation bit on every byte but the last. Big-endian varints emit
// the most significant group first; every byte but the final (least
// significant) one carries the continuation bit.
//
// # Sizes
//
// Integers and size-delimited strings have a static size, available from
// StaticSize. Varints, terminated strings and custom codecs depend on the
// data; StaticSize returns ErrDynamicSize for them.
//
// # Error Handling
//
// Invalid options are rejected by the constructors with ErrConfiguration.
// Decoding fails with ErrTruncatedInput when integers run out of input,
// while strings tolerate an early end of stream and return the bytes read.
// Encoding a value that does not fit fails with ErrValueOutOfRange; values
// are never truncated.
//
// # Thread Safety
//
// Codecs are immutable after construction and safe for concurrent use on
// independent streams.
package codec
