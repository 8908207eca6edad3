package storage

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/byteparser/pkg/codec"
	"github.com/ssargent/byteparser/pkg/schema"
)

// ErrUnknownField is returned when a lookup names a field the schema does
// not declare.
var ErrUnknownField = errors.New("unknown field")

// Index value type markers. Negative integers sort before non-negative
// ones, and all integers before strings.
const (
	markerNegative byte = 0x01
	markerInteger  byte = 0x02
	markerString   byte = 0x03
)

// Find returns the ids of records of s whose field holds value, ordered
// by id. Integers match regardless of their Go type.
func (a *Archive) Find(s *schema.Schema, field string, value any) ([]ksuid.KSUID, error) {
	start := time.Now()
	ids, err := a.find(s, field, value, value)
	a.observe("find", err, start)
	return ids, err
}

// FindRange returns the ids of records of s whose field lies in [lo, hi],
// ordered by field value and then id. lo and hi must both be integers or
// both be strings.
func (a *Archive) FindRange(s *schema.Schema, field string, lo, hi any) ([]ksuid.KSUID, error) {
	start := time.Now()
	ids, err := a.find(s, field, lo, hi)
	a.observe("find", err, start)
	return ids, err
}

func (a *Archive) find(s *schema.Schema, field string, lo, hi any) ([]ksuid.KSUID, error) {
	if _, ok := s.Field(field); !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, s.Name(), field)
	}
	loKey, ok := indexValue(lo)
	if !ok {
		return nil, fmt.Errorf("%w: cannot look up %T values", codec.ErrInvalidValue, lo)
	}
	hiKey, ok := indexValue(hi)
	if !ok {
		return nil, fmt.Errorf("%w: cannot look up %T values", codec.ErrInvalidValue, hi)
	}
	if (loKey[0] == markerString) != (hiKey[0] == markerString) {
		return nil, fmt.Errorf("%w: range bounds %T and %T are not comparable", codec.ErrInvalidValue, lo, hi)
	}
	if bytes.Compare(loKey, hiKey) > 0 {
		return nil, nil
	}

	base := indexPrefix(s, field)
	iter, err := a.db.NewIter(&pebble.IterOptions{
		LowerBound: append(bytes.Clone(base), loKey...),
		UpperBound: prefixUpperBound(append(bytes.Clone(base), hiKey...)),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var ids []ksuid.KSUID
	for iter.First(); iter.Valid(); iter.Next() {
		key := iter.Key()
		id, err := ksuid.FromBytes(key[len(key)-ksuidLen:])
		if err != nil {
			return nil, fmt.Errorf("invalid index key %q: %w", key, err)
		}
		ids = append(ids, id)
	}
	return ids, iter.Error()
}

const ksuidLen = 20

// indexKeys returns an index key for every indexable field of rec
func indexKeys(s *schema.Schema, rec *schema.Record, id ksuid.KSUID) [][]byte {
	var keys [][]byte
	for _, f := range s.Fields() {
		v, ok := rec.Get(f.Name)
		if !ok {
			continue
		}
		enc, ok := indexValue(v)
		if !ok {
			continue
		}
		key := indexPrefix(s, f.Name)
		key = append(key, enc...)
		key = append(key, id.Bytes()...)
		keys = append(keys, key)
	}
	return keys
}

// indexPrefix is "\x00i<schema>\x00<field>\x00". The leading zero byte
// keeps index keys apart from record keys.
func indexPrefix(s *schema.Schema, field string) []byte {
	key := make([]byte, 0, 4+len(s.Name())+len(field))
	key = append(key, 0, 'i')
	key = append(key, s.Name()...)
	key = append(key, 0)
	key = append(key, field...)
	return append(key, 0)
}

// indexValue encodes v so that byte order matches value order
func indexValue(v any) ([]byte, bool) {
	var buf [9]byte
	switch v := v.(type) {
	case string:
		return stringValue([]byte(v)), true
	case []byte:
		return stringValue(v), true
	case int, int8, int16, int32, int64:
		i := toInt64(v)
		if i < 0 {
			buf[0] = markerNegative
			binary.BigEndian.PutUint64(buf[1:], uint64(i)^(1<<63))
			return buf[:], true
		}
		buf[0] = markerInteger
		binary.BigEndian.PutUint64(buf[1:], uint64(i))
		return buf[:], true
	case uint, uint8, uint16, uint32, uint64:
		buf[0] = markerInteger
		binary.BigEndian.PutUint64(buf[1:], toUint64(v))
		return buf[:], true
	default:
		return nil, false
	}
}

// stringValue escapes 0x00 as 0x00 0xff and ends with 0x00 0x01, so no
// encoded string is a prefix of another and byte order is string order.
func stringValue(b []byte) []byte {
	out := make([]byte, 0, len(b)+3)
	out = append(out, markerString)
	for _, c := range b {
		if c == 0 {
			out = append(out, 0, 0xff)
			continue
		}
		out = append(out, c)
	}
	return append(out, 0, 1)
}

func toInt64(v any) int64 {
	switch v := v.(type) {
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	}
	return math.MinInt64
}

func toUint64(v any) uint64 {
	switch v := v.(type) {
	case uint:
		return uint64(v)
	case uint8:
		return uint64(v)
	case uint16:
		return uint64(v)
	case uint32:
		return uint64(v)
	case uint64:
		return v
	}
	return 0
}
