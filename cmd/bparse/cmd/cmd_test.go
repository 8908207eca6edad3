package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/byteparser/pkg/codec"
	"github.com/ssargent/byteparser/pkg/config"
	"github.com/ssargent/byteparser/pkg/decl"
	"github.com/ssargent/byteparser/pkg/metrics"
	"github.com/ssargent/byteparser/pkg/schema"
	"github.com/ssargent/byteparser/pkg/storage"
)

func headerSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.NewBuilder("header").
		Uint32("magic", codec.Big).
		Uint16("version", codec.Little).
		CString("name").
		Build()
	require.NoError(t, err)
	return s
}

var headerBytes = []byte{
	0x46, 0x52, 0x45, 0x59, 0x01, 0x00, 'd', 'e', 'm', 'o', 0x00,
	0x46, 0x52, 0x45, 0x59, 0x02, 0x00, 'x', 0x00,
}

func TestDecodeStream(t *testing.T) {
	s := headerSchema(t)
	m := metrics.NewMetrics()

	var out bytes.Buffer
	n, err := decodeStream(s, bytes.NewReader(headerBytes), &out, m)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t,
		`{"magic":1179796825,"version":1,"name":"demo"}`+"\n"+
			`{"magic":1179796825,"version":2,"name":"x"}`+"\n",
		out.String())
}

func TestDecodeStream_Truncated(t *testing.T) {
	s := headerSchema(t)

	var out bytes.Buffer
	n, err := decodeStream(s, bytes.NewReader(headerBytes[:14]), &out, metrics.NewMetrics())
	require.Error(t, err)
	assert.ErrorIs(t, err, codec.ErrTruncatedInput)
	assert.Equal(t, 1, n)
}

func TestEncodeStream(t *testing.T) {
	s := headerSchema(t)

	in := strings.NewReader(`{"magic":1179796825,"version":1,"name":"demo"}
{"name":"x","version":2,"magic":1179796825,"ignored":true}`)
	var out bytes.Buffer
	n, err := encodeStream(s, in, &out, metrics.NewMetrics())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, headerBytes, out.Bytes())
}

func TestEncodeStream_Errors(t *testing.T) {
	s := headerSchema(t)

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"missing field", `{"magic":1,"name":"a"}`, schema.ErrMissingField},
		{"out of range", `{"magic":1,"version":70000,"name":"a"}`, codec.ErrValueOutOfRange},
		{"wrong type", `{"magic":"one","version":1,"name":"a"}`, codec.ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			n, err := encodeStream(s, strings.NewReader(tt.input), &out, metrics.NewMetrics())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 0, n)
			assert.Empty(t, out.Bytes())
		})
	}

	t.Run("invalid json", func(t *testing.T) {
		var out bytes.Buffer
		_, err := encodeStream(s, strings.NewReader(`{"magic":`), &out, metrics.NewMetrics())
		assert.Error(t, err)
	})
}

func TestJSONValue(t *testing.T) {
	s := schema.MustNew("big", schema.Declaration{Name: "n", Kind: codec.KindUint64, Options: codec.Options{Endian: codec.Big}})

	var out bytes.Buffer
	_, err := encodeStream(s, strings.NewReader(`{"n":18446744073709551615}`), &out, metrics.NewMetrics())
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{0xff}, 8), out.Bytes())

	_, err = encodeStream(s, strings.NewReader(`{"n":1.5}`), &out, metrics.NewMetrics())
	assert.Error(t, err)
}

func TestDescribeSchema(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, describeSchema(&out, headerSchema(t)))

	text := out.String()
	assert.Contains(t, text, "Record:  header")
	assert.Contains(t, text, "Size:    variable")
	assert.Contains(t, text, "FIELD")
	assert.Contains(t, text, "magic")
	assert.Contains(t, text, "cstring")

	fixed := schema.MustNew("pair",
		schema.Declaration{Name: "a", Kind: codec.KindUint8},
		schema.Declaration{Name: "b", Kind: codec.KindInt32, Options: codec.Options{Endian: codec.Little}},
	)
	out.Reset()
	require.NoError(t, describeSchema(&out, fixed))
	assert.Contains(t, out.String(), "5 bytes")
}

func TestArchiveStreamAndList(t *testing.T) {
	s := headerSchema(t)
	arc, err := storage.Open(storage.Options{Path: filepath.Join(t.TempDir(), "archive")})
	require.NoError(t, err)
	defer arc.Close()

	var ids bytes.Buffer
	n, err := archiveStream(arc, s, bytes.NewReader(headerBytes), &ids)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	lines := strings.Fields(ids.String())
	require.Len(t, lines, 2)
	for _, line := range lines {
		id, err := ksuid.Parse(line)
		require.NoError(t, err)
		_, err = arc.Get(s, id)
		assert.NoError(t, err)
	}

	var table bytes.Buffer
	require.NoError(t, listArchive(arc, s, &table))
	assert.Contains(t, table.String(), "ID")
	assert.Contains(t, table.String(), `"name":"demo"`)
	assert.Contains(t, table.String(), `"name":"x"`)
}

func TestRootCommand_DecodeAndDescribe(t *testing.T) {
	dir := t.TempDir()
	schemas := filepath.Join(dir, "schemas.yaml")
	require.NoError(t, sampleDeclarations.Save(schemas))

	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := config.DefaultConfig()
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.Schemas = schemas
	cfg.Metrics.File = filepath.Join(dir, "metrics.prom")
	require.NoError(t, config.SaveConfig(cfg, cfgPath))

	input := filepath.Join(dir, "header.bin")
	require.NoError(t, os.WriteFile(input, headerBytes, 0600))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"--config", cfgPath, "decode", "header", input})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), `"magic":1179796825`)
	assert.FileExists(t, cfg.Metrics.File)

	out.Reset()
	rootCmd.SetArgs([]string{"--config", cfgPath, "describe", "entry"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "fixed_string")
	assert.Contains(t, out.String(), "varint")
}

func TestSampleDeclarationsCompile(t *testing.T) {
	cat, err := decl.Compile(&sampleDeclarations)
	require.NoError(t, err)
	assert.Equal(t, []string{"header", "entry"}, cat.Names())
}

func TestLookupValue(t *testing.T) {
	s := headerSchema(t)
	magic, _ := s.Field("magic")
	name, _ := s.Field("name")

	assert.Equal(t, int64(42), lookupValue(magic, "42"))
	assert.Equal(t, uint64(18446744073709551615), lookupValue(magic, "18446744073709551615"))
	assert.Equal(t, "42", lookupValue(name, "42"))
}

func TestListRecords(t *testing.T) {
	s := headerSchema(t)
	arc, err := storage.Open(storage.Options{Path: filepath.Join(t.TempDir(), "archive")})
	require.NoError(t, err)
	defer arc.Close()

	_, err = archiveStream(arc, s, bytes.NewReader(headerBytes), &bytes.Buffer{})
	require.NoError(t, err)

	name, _ := s.Field("name")
	ids, err := arc.FindRange(s, "name", lookupValue(name, "x"), lookupValue(name, "x"))
	require.NoError(t, err)
	require.Len(t, ids, 1)

	var table bytes.Buffer
	require.NoError(t, listRecords(arc, s, ids, &table))
	assert.Contains(t, table.String(), `"name":"x"`)
	assert.NotContains(t, table.String(), `"name":"demo"`)
}

func TestDecodeEncode_BinaryStringsRoundTrip(t *testing.T) {
	s := schema.MustNew("raw",
		schema.Declaration{Name: "s", Kind: codec.KindFixedString, Options: codec.Options{Size: 2}},
		schema.Declaration{Name: "t", Kind: codec.KindCString},
	)
	input := []byte{0xff, 0xfe, 'o', 'k', 0x00}

	var lines bytes.Buffer
	_, err := decodeStream(s, bytes.NewReader(input), &lines, metrics.NewMetrics())
	require.NoError(t, err)
	assert.Equal(t, `{"s":{"base64":"//4="},"t":"ok"}`+"\n", lines.String())

	var out bytes.Buffer
	_, err = encodeStream(s, &lines, &out, metrics.NewMetrics())
	require.NoError(t, err)
	assert.Equal(t, input, out.Bytes())

	_, err = encodeStream(s, strings.NewReader(`{"s":{"base64":"!!"},"t":"x"}`), &out, metrics.NewMetrics())
	assert.Error(t, err)
}
