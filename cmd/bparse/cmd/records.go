/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/ssargent/byteparser/pkg/metrics"
	"github.com/ssargent/byteparser/pkg/schema"
)

// countingReader counts the bytes read through it
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// countingWriter counts the bytes written through it
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// recordFromJSON converts a decoded JSON object into a record. Fields of s
// come first in declaration order, followed by any extra keys in sorted
// order. Numbers must have been decoded with json.Decoder.UseNumber.
func recordFromJSON(s *schema.Schema, obj map[string]any) (*schema.Record, error) {
	rec := schema.NewRecord()
	for _, f := range s.Fields() {
		v, ok := obj[f.Name]
		if !ok {
			continue
		}
		cv, err := jsonValue(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		rec.Set(f.Name, cv)
	}

	extra := make([]string, 0, len(obj))
	for k := range obj {
		if _, ok := s.Field(k); !ok {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		cv, err := jsonValue(obj[k])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		rec.Set(k, cv)
	}
	return rec, nil
}

// jsonValue maps JSON numbers onto int64, or uint64 when they exceed it,
// and {"base64": ...} objects onto []byte. Other values are passed through
// and left to the field codec to accept.
func jsonValue(v any) (any, error) {
	switch v := v.(type) {
	case json.Number:
		if i, err := strconv.ParseInt(v.String(), 10, 64); err == nil {
			return i, nil
		}
		u, err := strconv.ParseUint(v.String(), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s is not a 64-bit integer", v)
		}
		return u, nil
	case map[string]any:
		enc, ok := v[schema.JSONBytesKey].(string)
		if !ok || len(v) != 1 {
			return v, nil
		}
		b, err := base64.StdEncoding.DecodeString(enc)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value: %w", schema.JSONBytesKey, err)
		}
		return b, nil
	default:
		return v, nil
	}
}

// decodeStream reads binary records of s from r and writes them to w as
// JSON lines. It returns the number of records written.
func decodeStream(s *schema.Schema, r io.Reader, w io.Writer, m *metrics.Metrics) (int, error) {
	cr := &countingReader{r: r}
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)

	count := 0
	err := s.ReadAll(cr, func(rec *schema.Record) error {
		if err := enc.Encode(rec); err != nil {
			return err
		}
		m.RecordRecord(s.Name(), metrics.DirectionRead, nil)
		count++
		return nil
	})
	m.RecordBytes(s.Name(), metrics.DirectionRead, cr.n)
	if err != nil {
		m.RecordRecord(s.Name(), metrics.DirectionRead, err)
		return count, err
	}
	return count, bw.Flush()
}

// encodeStream reads JSON objects from r and writes them to w as binary
// records of s. It returns the number of records written.
func encodeStream(s *schema.Schema, r io.Reader, w io.Writer, m *metrics.Metrics) (int, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)
	dec := json.NewDecoder(r)
	dec.UseNumber()

	count := 0
	for {
		var obj map[string]any
		err := dec.Decode(&obj)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return count, fmt.Errorf("record %d: invalid JSON: %w", count+1, err)
		}

		rec, err := recordFromJSON(s, obj)
		if err == nil {
			err = s.Write(bw, rec)
		}
		m.RecordRecord(s.Name(), metrics.DirectionWrite, err)
		if err != nil {
			return count, fmt.Errorf("record %d: %w", count+1, err)
		}
		count++
	}

	err := bw.Flush()
	m.RecordBytes(s.Name(), metrics.DirectionWrite, cw.n)
	return count, err
}

// openInput opens path for reading, or returns stdin for "" and "-"
func openInput(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	return f, nil
}

// openOutput creates path for writing, or returns stdout for "" and "-"
func openOutput(path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output: %w", err)
	}
	return f, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
