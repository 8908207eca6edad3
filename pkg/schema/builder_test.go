package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/byteparser/pkg/codec"
)

func TestBuilder_DuplicateFieldName(t *testing.T) {
	s, err := NewBuilder("dup").
		Uint8("a").
		Uint16("b", codec.Big).
		Uint8("a").
		Build()
	assert.Nil(t, s)
	require.ErrorIs(t, err, ErrDuplicateField)
	assert.Contains(t, err.Error(), `"a"`)
}

func TestBuilder_ConfigurationErrors(t *testing.T) {
	testCases := []struct {
		name  string
		build func(*Builder) *Builder
	}{
		{"string without size or terminator", func(b *Builder) *Builder {
			return b.Add("s", codec.KindString, codec.Options{})
		}},
		{"fixed string without size", func(b *Builder) *Builder {
			return b.FixedString("s", 0)
		}},
		{"custom without functions", func(b *Builder) *Builder {
			return b.Custom("c", nil, nil)
		}},
		{"empty field name", func(b *Builder) *Builder {
			return b.Uint8("")
		}},
		{"nil codec", func(b *Builder) *Builder {
			return b.Field("x", nil)
		}},
		{"unknown kind", func(b *Builder) *Builder {
			return b.Add("x", codec.Kind(200), codec.Options{})
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := tc.build(NewBuilder("bad").Uint8("ok")).Build()
			assert.Nil(t, s)
			assert.ErrorIs(t, err, codec.ErrConfiguration)
		})
	}
}

func TestBuilder_RejectsEmptySchema(t *testing.T) {
	s, err := NewBuilder("empty").Build()
	assert.Nil(t, s)
	assert.ErrorIs(t, err, codec.ErrConfiguration)

	_, err = New("empty")
	assert.ErrorIs(t, err, codec.ErrConfiguration)
}

func TestBuilder_FirstErrorWins(t *testing.T) {
	_, err := NewBuilder("first").
		FixedString("s", 0).
		Uint8("a").
		Uint8("a").
		Build()
	assert.ErrorIs(t, err, codec.ErrConfiguration)
	assert.False(t, errors.Is(err, ErrDuplicateField))
}

func TestBuilder_AllHelpers(t *testing.T) {
	s, err := NewBuilder("all").
		Uint8("u8").
		Uint16("u16", codec.Big).
		Uint32("u32", codec.Little).
		Uint64("u64", codec.Native).
		Int8("i8").
		Int16("i16", codec.Big).
		Int32("i32", codec.Little).
		Int64("i64", codec.Big).
		Varint("v", codec.Little).
		CString("c").
		FixedString("f", 3).
		Build()
	require.NoError(t, err)

	var kinds []codec.Kind
	for _, f := range s.Fields() {
		kinds = append(kinds, f.Codec.Kind())
	}
	assert.Equal(t, []codec.Kind{
		codec.KindUint8, codec.KindUint16, codec.KindUint32, codec.KindUint64,
		codec.KindInt8, codec.KindInt16, codec.KindInt32, codec.KindInt64,
		codec.KindVarint, codec.KindCString, codec.KindFixedString,
	}, kinds)

	rec := NewRecord().
		Set("u8", 1).Set("u16", 2).Set("u32", 3).Set("u64", 4).
		Set("i8", -1).Set("i16", -2).Set("i32", -3).Set("i64", -4).
		Set("v", 1000).Set("c", "cs").Set("f", "fixed")
	data, err := s.Encode(rec)
	require.NoError(t, err)

	got, err := s.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), mustValue[uint64](t, got, "v"))
	assert.Equal(t, int64(-4), mustValue[int64](t, got, "i64"))
	assert.Equal(t, "fix", mustValue[string](t, got, "f"))
}

func TestBuilder_DoesNotAliasBuiltSchema(t *testing.T) {
	b := NewBuilder("alias").Uint8("a")
	s, err := b.Build()
	require.NoError(t, err)

	b.Uint8("b")
	assert.Equal(t, 1, s.Len())
}

func TestMustNew_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustNew("bad", Declaration{Name: "s", Kind: codec.KindString})
	})
}

func mustValue[T any](t *testing.T, rec *Record, name string) T {
	t.Helper()
	v, err := Value[T](rec, name)
	require.NoError(t, err)
	return v
}
