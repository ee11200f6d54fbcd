package blobcache

import (
	"bytes"
	"testing"
)

func TestSetGetRoundTrip(t *testing.T) {
	c, err := New(8)
	if err != nil {
		t.Fatal(err)
	}
	key := Key(42, 100)
	c.Set(key, []byte("hello"))
	got, ok := c.Get(key)
	if !ok || !bytes.Equal(got, []byte("hello")) {
		t.Fatalf("got %q, %v", got, ok)
	}
}

func TestGetMissOnUnsetKey(t *testing.T) {
	c, err := New(8)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get(Key(1, 2)); ok {
		t.Fatal("expected miss")
	}
}

func TestNilCacheIsSafe(t *testing.T) {
	var c *Cache
	if _, ok := c.Get("x"); ok {
		t.Fatal("expected miss on nil cache")
	}
	c.Set("x", []byte("y")) // must not panic
}
