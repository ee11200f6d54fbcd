package fieldcache

import "testing"

func TestInternReturnsSameValue(t *testing.T) {
	c := New(64)
	a := c.Intern("root")
	b := c.Intern("root")
	if a != b {
		t.Fatalf("got %q and %q", a, b)
	}
}

func TestInternNilCachePassesThrough(t *testing.T) {
	var c *Cache
	if got := c.Intern("root"); got != "root" {
		t.Fatalf("got %q", got)
	}
}
