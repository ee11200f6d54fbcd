// Package validatecache persists Validate results on disk, keyed by a
// content hash of the archive stream that produced them, so re-validating
// an unchanged archive skips re-parsing and re-checksumming entirely.
// Backed by pebble, compressing stored records with zstd before they hit
// the LSM tree (both listed directly in the teacher's go.mod but unused
// there; adapted here for their natural fit).
package validatecache

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"

	"github.com/DataDog/zstd"
	"github.com/cockroachdb/pebble/v2"
)

// EntryResult mirrors one entry's checksum outcome from a Validate pass.
type EntryResult struct {
	Name       string
	HeaderOK   bool
	JSONOK     bool
	ContentOK  bool
}

// Result is the full outcome of one Validate call, as stored in the cache.
type Result struct {
	OK      bool
	Entries []EntryResult
}

// Cache is an on-disk cache of Result values. Callers own its lifetime and
// must call Close when done.
type Cache struct {
	db *pebble.DB
}

// Open opens (creating if necessary) a validate-result cache rooted at dir.
func Open(dir string) (*Cache, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("validatecache: open %s: %w", dir, err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying pebble instance.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Lookup returns the cached Result for key, if present.
func (c *Cache) Lookup(key string) (Result, bool) {
	if c == nil || c.db == nil {
		return Result{}, false
	}
	compressed, closer, err := c.db.Get([]byte(key))
	if err != nil {
		return Result{}, false
	}
	defer closer.Close()

	raw, err := zstd.Decompress(nil, compressed)
	if err != nil {
		return Result{}, false
	}
	var r Result
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&r); err != nil {
		return Result{}, false
	}
	return r, true
}

// Store persists r under key, overwriting any prior entry.
func (c *Cache) Store(key string, r Result) error {
	if c == nil || c.db == nil {
		return errors.New("validatecache: cache not open")
	}
	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(r); err != nil {
		return err
	}
	compressed, err := zstd.Compress(nil, raw.Bytes())
	if err != nil {
		return err
	}
	return c.db.Set([]byte(key), compressed, pebble.Sync)
}
