package wire

import (
	"bytes"
	"testing"

	"github.com/tjpalmer/neofile/internal/bytestream"
)

func TestHexRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 15, 16, 255, 1 << 32, 1<<63 - 1}
	for _, n := range cases {
		got, err := DecodeHex(EncodeHex(n))
		if err != nil {
			t.Fatalf("decode(%d): %v", n, err)
		}
		if got != n {
			t.Fatalf("round trip %d -> %q -> %d", n, EncodeHex(n), got)
		}
	}
}

func TestDecodeHexEmptyIsZero(t *testing.T) {
	v, err := DecodeHex("")
	if err != nil || v != 0 {
		t.Fatalf("got %d %v", v, err)
	}
}

func TestDecodeHexCaseInsensitive(t *testing.T) {
	v, err := DecodeHex("1A")
	if err != nil || v != 0x1a {
		t.Fatalf("got %d %v", v, err)
	}
}

func TestFieldRoundTrip(t *testing.T) {
	delim := []byte{0x00}
	var buf bytes.Buffer
	if err := WriteFieldString(&buf, "hello", delim); err != nil {
		t.Fatal(err)
	}
	if err := WriteFieldString(&buf, "", delim); err != nil {
		t.Fatal(err)
	}
	if err := WriteFieldString(&buf, "world", delim); err != nil {
		t.Fatal(err)
	}

	s := bytestream.NewMemStream(buf.Bytes())
	for _, want := range []string{"hello", "", "world"} {
		got, err := ReadField(s, delim)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("got %q want %q", got, want)
		}
	}
}

func TestFieldStraddlingChunkBoundary(t *testing.T) {
	delim := []byte{0x00}
	payload := bytes.Repeat([]byte("x"), scanChunk*3+5)
	var buf bytes.Buffer
	buf.Write(payload)
	buf.Write(delim)
	buf.WriteString("next")
	buf.Write(delim)

	s := bytestream.NewMemStream(buf.Bytes())
	got, err := ReadField(s, delim)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(payload) {
		t.Fatalf("length got %d want %d", len(got), len(payload))
	}
	next, err := ReadField(s, delim)
	if err != nil || next != "next" {
		t.Fatalf("got %q %v", next, err)
	}
}

func TestWriteFieldRejectsDelimiterInPayload(t *testing.T) {
	var buf bytes.Buffer
	err := WriteFieldString(&buf, "a\x00b", []byte{0x00})
	if err != ErrDelimiterInPayload {
		t.Fatalf("got %v", err)
	}
}

func TestDecodeEscapes(t *testing.T) {
	cases := map[string][]byte{
		`\x00`:   {0x00},
		`\n`:     {'\n'},
		`\t`:     {'\t'},
		`\\`:     {'\\'},
		`\'`:     {'\''},
		`\"`:     {'"'},
		`\0`:     {0},
		`plain`:  []byte("plain"),
		`\x41BC`: append([]byte{0x41}, "BC"...),
	}
	for in, want := range cases {
		got, err := DecodeEscapes(in)
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("%q: got %v want %v", in, got, want)
		}
	}
}

func TestListRoundTrip(t *testing.T) {
	delim := []byte{0x00}
	var buf bytes.Buffer
	items := []string{"a", "bb", "", "ccc"}
	if err := WriteList(&buf, items, delim); err != nil {
		t.Fatal(err)
	}
	got, err := ReadList(bytestream.NewMemStream(buf.Bytes()), len(items), delim)
	if err != nil {
		t.Fatal(err)
	}
	for i := range items {
		if got[i] != items[i] {
			t.Fatalf("index %d: got %q want %q", i, got[i], items[i])
		}
	}
}
