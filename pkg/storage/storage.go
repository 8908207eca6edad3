// Package storage archives schema records in a Pebble database.
//
// Each record is stored in its binary form, as produced by the record's
// schema, under the key "<schema name>/<ksuid>". Records can only be read
// back with a schema of the same name; keys sort by creation time within a
// schema.
//
// Integer and string fields are indexed on Put, so records can be found by
// field value with Find and FindRange.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/byteparser/pkg/metrics"
	"github.com/ssargent/byteparser/pkg/schema"
)

// ErrNotFound is returned when no record exists under an id.
var ErrNotFound = errors.New("record not found")

// Options configures an Archive
type Options struct {
	Path      string
	CacheSize int64
	Sync      bool
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
}

// Archive stores encoded records keyed by ksuid
type Archive struct {
	db      *pebble.DB
	sync    bool
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Open opens or creates the archive at opts.Path
func Open(opts Options) (*Archive, error) {
	pebbleOpts := &pebble.Options{}
	if opts.CacheSize > 0 {
		cache := pebble.NewCache(opts.CacheSize)
		defer cache.Unref()
		pebbleOpts.Cache = cache
	}

	db, err := pebble.Open(opts.Path, pebbleOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("archive opened", "path", opts.Path)

	return &Archive{
		db:      db,
		sync:    opts.Sync,
		logger:  logger,
		metrics: opts.Metrics,
	}, nil
}

// Put encodes rec with s and stores it under a new id
func (a *Archive) Put(s *schema.Schema, rec *schema.Record) (ksuid.KSUID, error) {
	start := time.Now()
	id, err := a.put(s, rec)
	a.observe("put", err, start)
	return id, err
}

func (a *Archive) put(s *schema.Schema, rec *schema.Record) (ksuid.KSUID, error) {
	data, err := s.Encode(rec)
	if err != nil {
		return ksuid.Nil, err
	}
	// Index what a later Get returns, not what the caller passed in.
	stored, err := s.Decode(data)
	if err != nil {
		return ksuid.Nil, err
	}

	id := ksuid.New()
	batch := a.db.NewBatch()
	defer batch.Close()

	if err := batch.Set(recordKey(s, id), data, nil); err != nil {
		return ksuid.Nil, err
	}
	for _, key := range indexKeys(s, stored, id) {
		if err := batch.Set(key, nil, nil); err != nil {
			return ksuid.Nil, err
		}
	}
	if err := batch.Commit(a.writeOptions()); err != nil {
		return ksuid.Nil, fmt.Errorf("failed to store record: %w", err)
	}
	return id, nil
}

// Get reads and decodes the record stored under id
func (a *Archive) Get(s *schema.Schema, id ksuid.KSUID) (*schema.Record, error) {
	start := time.Now()
	rec, err := a.get(s, id)
	a.observe("get", err, start)
	return rec, err
}

func (a *Archive) get(s *schema.Schema, id ksuid.KSUID) (*schema.Record, error) {
	data, closer, err := a.db.Get(recordKey(s, id))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, s.Name(), id)
		}
		return nil, err
	}
	defer closer.Close()

	return s.Decode(data)
}

// Delete removes the record stored under id along with its index entries
func (a *Archive) Delete(s *schema.Schema, id ksuid.KSUID) error {
	start := time.Now()
	err := a.delete(s, id)
	a.observe("delete", err, start)
	return err
}

func (a *Archive) delete(s *schema.Schema, id ksuid.KSUID) error {
	key := recordKey(s, id)
	data, closer, err := a.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return fmt.Errorf("%w: %s/%s", ErrNotFound, s.Name(), id)
		}
		return err
	}
	rec, decodeErr := s.Decode(data)
	closer.Close()

	batch := a.db.NewBatch()
	defer batch.Close()

	if err := batch.Delete(key, nil); err != nil {
		return err
	}
	if decodeErr != nil {
		a.logger.Warn("deleting undecodable record, index entries left behind", "schema", s.Name(), "id", id.String(), "error", decodeErr)
	} else {
		for _, ik := range indexKeys(s, rec, id) {
			if err := batch.Delete(ik, nil); err != nil {
				return err
			}
		}
	}
	return batch.Commit(a.writeOptions())
}

// Scan calls fn for every record of s in id order. A record that fails to
// decode stops the scan with its error.
func (a *Archive) Scan(s *schema.Schema, fn func(id ksuid.KSUID, rec *schema.Record) error) error {
	start := time.Now()
	err := a.scan(s, fn)
	a.observe("scan", err, start)
	return err
}

func (a *Archive) scan(s *schema.Schema, fn func(id ksuid.KSUID, rec *schema.Record) error) error {
	prefix := schemaPrefix(s)
	iter, err := a.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		id, err := ksuid.FromBytes(bytes.TrimPrefix(iter.Key(), prefix))
		if err != nil {
			return fmt.Errorf("invalid archive key %q: %w", iter.Key(), err)
		}
		rec, err := s.Decode(iter.Value())
		if err != nil {
			a.logger.Warn("failed to decode archived record", "schema", s.Name(), "id", id.String(), "error", err)
			return err
		}
		if err := fn(id, rec); err != nil {
			return err
		}
	}
	return iter.Error()
}

// Close closes the underlying database
func (a *Archive) Close() error {
	a.logger.Debug("archive closed")
	return a.db.Close()
}

func (a *Archive) writeOptions() *pebble.WriteOptions {
	if a.sync {
		return pebble.Sync
	}
	return pebble.NoSync
}

func (a *Archive) observe(operation string, err error, start time.Time) {
	if a.metrics != nil {
		a.metrics.RecordArchiveOperation(operation, err == nil, time.Since(start))
	}
}

func schemaPrefix(s *schema.Schema) []byte {
	return append([]byte(s.Name()), '/')
}

func recordKey(s *schema.Schema, id ksuid.KSUID) []byte {
	return append(schemaPrefix(s), id.Bytes()...)
}

// prefixUpperBound returns the smallest key greater than every key with
// the given prefix.
func prefixUpperBound(prefix []byte) []byte {
	end := bytes.Clone(prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
