package compress

import (
	"bytes"
	"testing"
)

func TestNormalizeAliases(t *testing.T) {
	cases := map[string]string{
		"":       None,
		"gz":     Gzip,
		"gzip":   Gzip,
		"bz":     Bz2,
		"bzip":   Bz2,
		"bzip2":  Bz2,
		"bz2":    Bz2,
		"z":      Zlib,
		"zlib":   Zlib,
		"xz":     Lzma,
		"lzma":   Lzma,
		"NONE":   None,
		"ZLIB":   Zlib,
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q) = %q want %q", in, got, want)
		}
	}
}

func TestAutoAlgorithmThresholds(t *testing.T) {
	if algo, _ := AutoAlgorithm(100); algo != None {
		t.Fatalf("got %q", algo)
	}
	if algo, lvl := AutoAlgorithm(20 * 1024); algo != Zlib || lvl != 6 {
		t.Fatalf("got %q %d", algo, lvl)
	}
	if algo, lvl := AutoAlgorithm(300 * 1024); algo != Bz2 || lvl != 9 {
		t.Fatalf("got %q %d", algo, lvl)
	}
}

func TestRoundTripEachAlgorithm(t *testing.T) {
	raw := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 200)
	for _, algo := range []string{None, Zlib, Gzip, Bz2} {
		stored, canon, err := Compress(raw, algo, 0)
		if err != nil {
			t.Fatalf("%s: compress: %v", algo, err)
		}
		if canon != algo {
			t.Fatalf("%s: canonical name changed to %q", algo, canon)
		}
		got, err := Decompress(stored, canon)
		if err != nil {
			t.Fatalf("%s: decompress: %v", algo, err)
		}
		if !bytes.Equal(got, raw) {
			t.Fatalf("%s: round trip mismatch", algo)
		}
	}
}

func TestLzmaAlwaysUnsupported(t *testing.T) {
	if _, _, err := Compress([]byte("x"), "lzma", 0); err == nil {
		t.Fatal("expected error")
	}
	if _, err := Decompress([]byte("x"), "xz"); err == nil {
		t.Fatal("expected error")
	}
}

func TestCompressWithFallback(t *testing.T) {
	raw := []byte("hello")
	out, algo, fellBack, err := CompressWithFallback(raw, "lzma", 0)
	if err != nil {
		t.Fatal(err)
	}
	if !fellBack || algo != Zlib {
		t.Fatalf("got algo=%q fellBack=%v", algo, fellBack)
	}
	got, err := Decompress(out, algo)
	if err != nil || !bytes.Equal(got, raw) {
		t.Fatalf("got %q %v", got, err)
	}
}
