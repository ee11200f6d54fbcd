package validatecache

import "testing"

func TestStoreLookupRoundTrip(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	want := Result{
		OK: true,
		Entries: []EntryResult{
			{Name: "./hello.txt", HeaderOK: true, JSONOK: true, ContentOK: true},
		},
	}
	if err := c.Store("abc123", want); err != nil {
		t.Fatal(err)
	}

	got, ok := c.Lookup("abc123")
	if !ok {
		t.Fatal("expected hit")
	}
	if got.OK != want.OK || len(got.Entries) != 1 || got.Entries[0].Name != "./hello.txt" {
		t.Fatalf("got %+v", got)
	}
}

func TestLookupMissOnUnknownKey(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, ok := c.Lookup("nope"); ok {
		t.Fatal("expected miss")
	}
}
