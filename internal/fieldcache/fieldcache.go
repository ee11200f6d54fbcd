// Package fieldcache interns repeated record-header strings (owner name,
// group name, encoding) so parsing a large archive does not allocate a new
// string per record for values that are almost always shared across many
// entries.
package fieldcache

import (
	"hash/maphash"

	"github.com/dgryski/go-tinylfu"
)

var seed = maphash.MakeSeed()

// Cache is a bounded admission cache of interned strings, keyed by their
// own value. It is safe to share across sequential Parse/List/Validate
// calls within one process.
type Cache struct {
	t *tinylfu.T[string, string]
}

// New creates a cache admitting at most n strings into its protected
// segment (the window segment is sized n/10, matching the teacher's
// internal/spinner ratio).
func New(n int) *Cache {
	if n <= 0 {
		n = 256
	}
	return &Cache{t: tinylfu.New[string, string](n/10+1, n, hashString)}
}

// Intern returns the cached copy of s if one is resident, admitting s
// otherwise and returning it unchanged.
func (c *Cache) Intern(s string) string {
	if c == nil || c.t == nil {
		return s
	}
	if got, ok := c.t.Get(s); ok {
		return got
	}
	c.t.Add(s, s)
	return s
}

func hashString(k string) uint64 {
	return maphash.String(seed, k)
}
