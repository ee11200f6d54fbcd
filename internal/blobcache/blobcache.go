// Package blobcache caches decompressed record content across repeated
// Repack passes over the same archive stream, so content is decompressed
// at most once per process per stream offset while it stays cached. List
// and Validate do not use it. Adapted from the teacher's internal/decompressioncache,
// keyed the way internal/fileid keys file identity: an xxhash of the
// caller-supplied stream identity plus the record's byte offset.
package blobcache

import (
	"context"
	"encoding/binary"

	"github.com/allegro/bigcache/v3"
	"github.com/cespare/xxhash/v2"
)

// Cache wraps a bigcache instance. The zero value is not usable; construct
// with New.
type Cache struct {
	bc *bigcache.BigCache
}

// New creates a cache with a hard cap of hardMaxMB megabytes.
func New(hardMaxMB int) (*Cache, error) {
	if hardMaxMB <= 0 {
		hardMaxMB = 256
	}
	bc, err := bigcache.New(context.Background(), bigcache.Config{
		HardMaxCacheSize: hardMaxMB,
		Shards:           256,
		MaxEntrySize:     1024,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{bc: bc}, nil
}

// Key derives a cache key from a stream identity (e.g. a hash of the
// stream's first few bytes, or a caller-assigned id) and a record's byte
// offset within that stream.
func Key(streamID uint64, offset int64) string {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], streamID)
	binary.BigEndian.PutUint64(buf[8:], uint64(offset))
	h := xxhash.Sum64(buf[:])
	return string(binary.BigEndian.AppendUint64(nil, h))
}

// Get returns the cached decompressed content for key, if present.
func (c *Cache) Get(key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	b, err := c.bc.Get(key)
	if err != nil {
		return nil, false
	}
	return b, true
}

// Set stores the decompressed content for key.
func (c *Cache) Set(key string, content []byte) {
	if c == nil {
		return
	}
	_ = c.bc.Set(key, content)
}
