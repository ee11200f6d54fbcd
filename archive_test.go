package neofile

import (
	"bytes"
	"strings"
	"testing"
)

func TestPackEmptyArchive(t *testing.T) {
	var buf bytes.Buffer
	if err := Pack(&buf, SliceSource(nil), PackOptions{GlobalChecksumAlgo: "none"}); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("NeoFile001\x00")) {
		t.Fatalf("missing magic prefix: %q", buf.Bytes())
	}
	if !bytes.HasSuffix(buf.Bytes(), []byte("0\x000\x00")) {
		t.Fatalf("missing sentinel: %q", buf.Bytes())
	}

	res, err := Parse(bytes.NewReader(buf.Bytes()), ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Entries) != 0 {
		t.Fatalf("expected zero entries, got %d", len(res.Entries))
	}
}

func TestPackSingleFileCRC32RoundTrip(t *testing.T) {
	entries := []Entry{
		{Name: "hello.txt", Type: TypeFile, Content: []byte("Hello\n")},
	}
	var buf bytes.Buffer
	if err := Pack(&buf, SliceSource(entries), PackOptions{ChecksumAlgo: "crc32", Compression: "none"}); err != nil {
		t.Fatal(err)
	}

	res, err := Parse(bytes.NewReader(buf.Bytes()), ParseOptions{Uncompress: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(res.Entries))
	}
	e := res.Entries[0]
	if e.Name != "./hello.txt" {
		t.Fatalf("name not normalized: %q", e.Name)
	}
	if !bytes.Equal(e.Content, []byte("Hello\n")) {
		t.Fatalf("content mismatch: %q", e.Content)
	}
	if e.Checksums.ContentValue != "1d4a36d3" {
		t.Fatalf("expected crc32 1d4a36d3, got %q", e.Checksums.ContentValue)
	}
}

func TestPackDirectoryEntry(t *testing.T) {
	entries := []Entry{{Name: "docs/", Type: TypeDirectory}}
	var buf bytes.Buffer
	if err := Pack(&buf, SliceSource(entries), PackOptions{}); err != nil {
		t.Fatal(err)
	}
	res, err := Parse(bytes.NewReader(buf.Bytes()), ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(res.Entries))
	}
	e := res.Entries[0]
	if e.Name != "./docs/" {
		t.Fatalf("got %q", e.Name)
	}
	if e.Size != 0 || e.StoredSize != 0 {
		t.Fatalf("expected zero sizes, got size=%d storedsize=%d", e.Size, e.StoredSize)
	}
}

func TestPackAutoCompressionZlibForMidSizedContent(t *testing.T) {
	content := bytes.Repeat([]byte{'a'}, 32*1024)
	entries := []Entry{{Name: "big.bin", Type: TypeFile, Content: content}}
	var buf bytes.Buffer
	if err := Pack(&buf, SliceSource(entries), PackOptions{Compression: "auto"}); err != nil {
		t.Fatal(err)
	}
	res, err := Parse(bytes.NewReader(buf.Bytes()), ParseOptions{Uncompress: true})
	if err != nil {
		t.Fatal(err)
	}
	e := res.Entries[0]
	if e.Compression != "zlib" {
		t.Fatalf("expected zlib, got %q", e.Compression)
	}
	if e.StoredSize >= e.Size {
		t.Fatalf("expected compressed stored size < logical size: stored=%d size=%d", e.StoredSize, e.Size)
	}
	if !bytes.Equal(e.Content, content) {
		t.Fatal("content mismatch after decompression")
	}
}

func TestValidateDetectsFlippedContentByte(t *testing.T) {
	entries := []Entry{{Name: "hello.txt", Type: TypeFile, Content: []byte("Hello\n")}}
	var buf bytes.Buffer
	if err := Pack(&buf, SliceSource(entries), PackOptions{ChecksumAlgo: "crc32", Compression: "none"}); err != nil {
		t.Fatal(err)
	}
	raw := buf.Bytes()
	idx := bytes.LastIndex(raw, []byte("Hello\n")) + len("Hello\n") - 1
	raw[idx] ^= 0xff

	ok, _, err := Validate(bytes.NewReader(raw), ValidateOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected validation failure after byte flip")
	}
}

func TestListEqualsParseNameProjection(t *testing.T) {
	entries := []Entry{
		{Name: "a.txt", Type: TypeFile, Content: []byte("a")},
		{Name: "dir/", Type: TypeDirectory},
		{Name: "dir/c.txt", Type: TypeFile, Content: []byte("c")},
	}
	var buf bytes.Buffer
	if err := Pack(&buf, SliceSource(entries), PackOptions{}); err != nil {
		t.Fatal(err)
	}

	names, err := List(bytes.NewReader(buf.Bytes()), ListOptions{IncludeDirs: true})
	if err != nil {
		t.Fatal(err)
	}
	res, err := Parse(bytes.NewReader(buf.Bytes()), ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != len(res.Entries) {
		t.Fatalf("length mismatch: %d vs %d", len(names), len(res.Entries))
	}
	for i, e := range res.Entries {
		if names[i] != e.Name {
			t.Fatalf("index %d: list %q vs parse %q", i, names[i], e.Name)
		}
	}
}

func TestPackGlobFilteredInclude(t *testing.T) {
	entries := []Entry{
		{Name: "a.txt", Type: TypeFile, Content: []byte("a")},
		{Name: "b.bin", Type: TypeFile, Content: []byte("b")},
		{Name: "dir/c.txt", Type: TypeFile, Content: []byte("c")},
	}
	var buf bytes.Buffer
	opts := PackOptions{Include: []string{"*.txt"}}
	if err := Pack(&buf, SliceSource(entries), opts); err != nil {
		t.Fatal(err)
	}
	names, err := List(bytes.NewReader(buf.Bytes()), ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "./a.txt" || names[1] != "./dir/c.txt" {
		t.Fatalf("got %v", names)
	}
}

func TestRepackSameAlgoByteIdenticalStoredRegion(t *testing.T) {
	entries := []Entry{{Name: "hello.txt", Type: TypeFile, Content: []byte("Hello\n")}}
	var src bytes.Buffer
	if err := Pack(&src, SliceSource(entries), PackOptions{Compression: "none"}); err != nil {
		t.Fatal(err)
	}

	var dst bytes.Buffer
	if err := Repack(bytes.NewReader(src.Bytes()), &dst, RepackOptions{}); err != nil {
		t.Fatal(err)
	}

	res, err := Parse(bytes.NewReader(dst.Bytes()), ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Entries) != 1 || !bytes.Equal(res.Entries[0].Content, []byte("Hello\n")) {
		t.Fatalf("repack round trip failed: %+v", res.Entries)
	}
}

func TestUnpackReturnsNameToBytesMap(t *testing.T) {
	entries := []Entry{
		{Name: "a.txt", Type: TypeFile, Content: []byte("a")},
		{Name: "dir/", Type: TypeDirectory},
	}
	var buf bytes.Buffer
	if err := Pack(&buf, SliceSource(entries), PackOptions{}); err != nil {
		t.Fatal(err)
	}
	m, err := Unpack(bytes.NewReader(buf.Bytes()), UnpackOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if string(m["./a.txt"]) != "a" {
		t.Fatalf("got %q", m["./a.txt"])
	}
	if v, ok := m["./dir/"]; !ok || v != nil {
		t.Fatalf("expected nil bytes for directory entry, got %v ok=%v", v, ok)
	}
}

func TestPackDeviceNodeRoundTrip(t *testing.T) {
	e := NewDeviceEntry("console", false, 5, 1)
	var buf bytes.Buffer
	if err := Pack(&buf, SliceSource([]Entry{e}), PackOptions{}); err != nil {
		t.Fatal(err)
	}
	res, err := Parse(bytes.NewReader(buf.Bytes()), ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(res.Entries))
	}
	got := res.Entries[0]
	if got.DevMajor != 5 || got.DevMinor != 1 {
		t.Fatalf("got major=%d minor=%d", got.DevMajor, got.DevMinor)
	}
	if got.Type != TypeCharDevice {
		t.Fatalf("expected char device, got %v", got.Type)
	}
}

func TestMapSourceSortsNames(t *testing.T) {
	src := MapSource(map[string][]byte{"z.txt": []byte("z"), "a.txt": []byte("a")})
	var buf bytes.Buffer
	if err := Pack(&buf, src, PackOptions{}); err != nil {
		t.Fatal(err)
	}
	names, err := List(bytes.NewReader(buf.Bytes()), ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(names[0], "./a") {
		t.Fatalf("expected sorted order, got %v", names)
	}
}
