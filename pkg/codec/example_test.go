package codec_test

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/ssargent/byteparser/pkg/codec"
)

// ExampleNew demonstrates decoding and encoding a big-endian integer
func ExampleNew() {
	u32, err := codec.New(codec.KindUint32, codec.Options{Endian: codec.Big})
	if err != nil {
		log.Fatal(err)
	}

	v, err := u32.Decode(bytes.NewReader([]byte{0x01, 0x02, 0x03, 0x04}))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("decoded: %#x\n", v)

	var buf bytes.Buffer
	if err := u32.Encode(&buf, 0xcafe); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("encoded: % x\n", buf.Bytes())

	// Output:
	// decoded: 0x1020304
	// encoded: 00 00 ca fe
}

// ExampleNewVarint shows that the two varint byte orders differ
func ExampleNewVarint() {
	for _, endian := range []codec.Endianness{codec.Little, codec.Big} {
		c, err := codec.NewVarint(endian)
		if err != nil {
			log.Fatal(err)
		}
		var buf bytes.Buffer
		if err := c.Encode(&buf, 300); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%s: % x\n", endian, buf.Bytes())
	}

	// Output:
	// little: ac 02
	// big: 82 2c
}

// ExampleOptions_until demonstrates a predicate-terminated string
func ExampleOptions_until() {
	digits, err := codec.New(codec.KindString, codec.Options{
		Until: func(b byte) bool { return (b-'0')%3 == 0 },
		Write: func(w io.Writer, v any) error {
			_, err := fmt.Fprintf(w, "%s0", v)
			return err
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	v, err := digits.Decode(strings.NewReader("1524875912452"))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(v)

	// Output:
	// 1524875
}
