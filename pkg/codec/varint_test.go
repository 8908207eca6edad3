package codec

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarint_Encode(t *testing.T) {
	testCases := []struct {
		name   string
		endian Endianness
		value  any
		want   []byte
	}{
		{"zero little", Little, 0, []byte{0x00}},
		{"zero big", Big, 0, []byte{0x00}},
		{"one byte little", Little, 0x7f, []byte{0x7f}},
		{"one byte big", Big, 0x7f, []byte{0x7f}},
		{"300 little", Little, 300, []byte{0xac, 0x02}},
		{"300 big", Big, 300, []byte{0x82, 0x2c}},
		{"16384 little", Little, uint32(16384), []byte{0x80, 0x80, 0x01}},
		{"16384 big", Big, uint32(16384), []byte{0x81, 0x80, 0x00}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := NewVarint(tc.endian)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, c.Encode(&buf, tc.value))
			assert.Equal(t, tc.want, buf.Bytes())
		})
	}
}

func TestVarint_Decode(t *testing.T) {
	testCases := []struct {
		name   string
		endian Endianness
		input  []byte
		want   uint64
		rest   int
	}{
		{"300 little", Little, []byte{0xac, 0x02, 0xff}, 300, 1},
		{"300 big", Big, []byte{0x82, 0x2c, 0xff}, 300, 1},
		{"single byte", Little, []byte{0x05}, 5, 0},
		{"redundant continuation big", Big, []byte{0x80, 0x80, 0x01}, 1, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := NewVarint(tc.endian)
			require.NoError(t, err)

			r := bytes.NewReader(tc.input)
			got, err := c.Decode(r)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.rest, r.Len())
		})
	}
}

func TestVarint_RoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 255, 256, 16383, 16384, 1 << 21, 1<<28 - 1, 1 << 28, math.MaxUint32 - 1, math.MaxUint32, 1 << 40, math.MaxUint64}
	for v := uint64(1); v < math.MaxUint32; v = v*3 + 1 {
		values = append(values, v)
	}

	for _, endian := range []Endianness{Big, Little} {
		c, err := NewVarint(endian)
		require.NoError(t, err)

		for _, v := range values {
			var buf bytes.Buffer
			require.NoError(t, c.Encode(&buf, v))

			got, err := c.Decode(&buf)
			require.NoError(t, err)
			assert.Equal(t, v, got, "%v %d", endian, v)
			assert.Zero(t, buf.Len(), "decode consumes exactly the encoded bytes")
		}
	}
}

func TestVarint_Truncated(t *testing.T) {
	for _, endian := range []Endianness{Big, Little} {
		c, err := NewVarint(endian)
		require.NoError(t, err)

		_, err = c.Decode(bytes.NewReader([]byte{0x81, 0x82}))
		assert.ErrorIs(t, err, ErrTruncatedInput)

		_, err = c.Decode(bytes.NewReader(nil))
		assert.ErrorIs(t, err, ErrTruncatedInput)
	}
}

func TestVarint_Overflow(t *testing.T) {
	input := append(bytes.Repeat([]byte{0xff}, 10), 0x01)
	for _, endian := range []Endianness{Big, Little} {
		c, err := NewVarint(endian)
		require.NoError(t, err)

		_, err = c.Decode(bytes.NewReader(input))
		assert.ErrorIs(t, err, ErrValueOutOfRange)
	}
}

func TestVarint_Negative(t *testing.T) {
	c, err := NewVarint(Little)
	require.NoError(t, err)

	err = c.Encode(&bytes.Buffer{}, -1)
	assert.ErrorIs(t, err, ErrValueOutOfRange)
}

func TestVarint_DynamicSize(t *testing.T) {
	c, err := New(KindVarint, Options{})
	require.NoError(t, err)

	assert.False(t, c.FixedSize())
	size, err := c.StaticSize()
	assert.ErrorIs(t, err, ErrDynamicSize)
	assert.Zero(t, size)
	assert.NotEqual(t, Native, c.Endianness())
}
