package format

import (
	"bytes"
	"testing"

	"github.com/tjpalmer/neofile/internal/bytestream"
)

func testSpec() Spec {
	return Spec{Magic: "NeoFile", VersionDigits: "001", Delimiter: []byte{0x00}}
}

func TestGlobalHeaderRoundTrip(t *testing.T) {
	spec := testSpec()
	hdr := GlobalHeader{
		Encoding:     "UTF-8",
		OSTag:        "linux",
		NumFiles:     3,
		Extras:       []string{"a", "bb"},
		ChecksumAlgo: "sha256",
	}
	var buf bytes.Buffer
	if err := WriteGlobalHeader(&buf, spec, hdr); err != nil {
		t.Fatal(err)
	}

	got, err := ReadGlobalHeader(bytestream.NewMemStream(buf.Bytes()), spec)
	if err != nil {
		t.Fatal(err)
	}
	if got.Encoding != hdr.Encoding || got.OSTag != hdr.OSTag || got.NumFiles != hdr.NumFiles {
		t.Fatalf("got %+v", got)
	}
	if len(got.Extras) != 2 || got.Extras[0] != "a" || got.Extras[1] != "bb" {
		t.Fatalf("extras mismatch: %+v", got.Extras)
	}
	if got.ChecksumAlgo != "sha256" || len(got.ChecksumValue) != 64 {
		t.Fatalf("checksum mismatch: %+v", got)
	}
}

func TestGlobalHeaderChecksumNone(t *testing.T) {
	spec := testSpec()
	hdr := GlobalHeader{Encoding: "UTF-8", OSTag: "linux", ChecksumAlgo: "none"}
	var buf bytes.Buffer
	if err := WriteGlobalHeader(&buf, spec, hdr); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("NeoFile001\x00")) {
		t.Fatalf("missing magic prefix: %q", buf.Bytes())
	}
	got, err := ReadGlobalHeader(bytestream.NewMemStream(buf.Bytes()), spec)
	if err != nil {
		t.Fatal(err)
	}
	if got.ChecksumValue != "0" {
		t.Fatalf("got %q", got.ChecksumValue)
	}
}
