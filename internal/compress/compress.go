// Package compress implements the symmetric compression engine: name
// normalization, {none, zlib, gzip, bz2} compress/decompress, a rejected
// lzma algorithm, and the size-based auto policy used by the pack path.
package compress

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"strings"

	"github.com/dsnet/compress/bzip2"
)

// UnsupportedCompressionError reports an algorithm this engine cannot
// handle, notably "lzma" which is recognized but never supported.
type UnsupportedCompressionError struct {
	Name string
}

func (e *UnsupportedCompressionError) Error() string {
	return fmt.Sprintf("compress: unsupported algorithm %q", e.Name)
}

const (
	None  = "none"
	Zlib  = "zlib"
	Gzip  = "gzip"
	Bz2   = "bz2"
	Lzma  = "lzma"
	level = 0 // sentinel meaning "use the algorithm's default level"
)

// Auto-policy size thresholds (spec §4.4).
const (
	autoZlibThreshold = 16 * 1024
	autoBz2Threshold  = 256 * 1024
)

// Normalize maps aliases to their canonical algorithm name: gz->gzip,
// bz|bzip|bzip2->bz2, z->zlib, xz->lzma, empty->none.
func Normalize(algo string) string {
	switch strings.ToLower(strings.TrimSpace(algo)) {
	case "", "none":
		return None
	case "z", "zlib":
		return Zlib
	case "gz", "gzip":
		return Gzip
	case "bz", "bzip", "bzip2", "bz2":
		return Bz2
	case "xz", "lzma":
		return Lzma
	default:
		return strings.ToLower(algo)
	}
}

// AutoAlgorithm picks {none, zlib, bz2} and a compression level for size
// raw bytes, per the write-path auto policy.
func AutoAlgorithm(size int) (algo string, lvl int) {
	switch {
	case size < autoZlibThreshold:
		return None, 0
	case size < autoBz2Threshold:
		return Zlib, 6
	default:
		return Bz2, 9
	}
}

// Compress returns the compressed bytes and the canonical algorithm name
// actually used. If algo fails (unsupported, or the library reports an
// error) the caller is expected to fall back per spec §4.4; Compress itself
// returns UnsupportedCompressionError for lzma and for unrecognized names,
// and wraps any encoder error with the algorithm name.
func Compress(raw []byte, algo string, lvl int) ([]byte, string, error) {
	canon := Normalize(algo)
	switch canon {
	case None:
		return raw, None, nil
	case Zlib:
		var buf bytes.Buffer
		w, err := zlib.NewWriterLevel(&buf, normalizeLevel(lvl, zlib.DefaultCompression))
		if err != nil {
			return nil, "", fmt.Errorf("compress: zlib writer: %w", err)
		}
		if _, err := w.Write(raw); err != nil {
			return nil, "", fmt.Errorf("compress: zlib write: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, "", fmt.Errorf("compress: zlib close: %w", err)
		}
		return buf.Bytes(), Zlib, nil
	case Gzip:
		var buf bytes.Buffer
		w, err := gzip.NewWriterLevel(&buf, normalizeLevel(lvl, gzip.DefaultCompression))
		if err != nil {
			return nil, "", fmt.Errorf("compress: gzip writer: %w", err)
		}
		if _, err := w.Write(raw); err != nil {
			return nil, "", fmt.Errorf("compress: gzip write: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, "", fmt.Errorf("compress: gzip close: %w", err)
		}
		return buf.Bytes(), Gzip, nil
	case Bz2:
		var buf bytes.Buffer
		bzLevel := lvl
		if bzLevel <= 0 {
			bzLevel = 9
		}
		w, err := bzip2.NewWriter(&buf, &bzip2.WriterConfig{Level: bzLevel})
		if err != nil {
			return nil, "", fmt.Errorf("compress: bz2 writer: %w", err)
		}
		if _, err := w.Write(raw); err != nil {
			return nil, "", fmt.Errorf("compress: bz2 write: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, "", fmt.Errorf("compress: bz2 close: %w", err)
		}
		return buf.Bytes(), Bz2, nil
	case Lzma:
		return nil, "", &UnsupportedCompressionError{Name: algo}
	default:
		return nil, "", &UnsupportedCompressionError{Name: algo}
	}
}

// CompressWithFallback implements the write-path policy: try algo/lvl, and
// if it fails, fall back to zlib level 6, returning the canonical algorithm
// actually used and whether a fallback occurred.
func CompressWithFallback(raw []byte, algo string, lvl int) (out []byte, usedAlgo string, fellBack bool, err error) {
	out, usedAlgo, err = Compress(raw, algo, lvl)
	if err == nil {
		return out, usedAlgo, false, nil
	}
	out, usedAlgo, err = Compress(raw, Zlib, 6)
	if err != nil {
		return nil, "", true, fmt.Errorf("compress: fallback to zlib also failed: %w", err)
	}
	return out, usedAlgo, true, nil
}

// Decompress reverses Compress. lzma always fails with
// UnsupportedCompressionError, matching the write-side restriction.
func Decompress(stored []byte, algo string) ([]byte, error) {
	switch Normalize(algo) {
	case None, "":
		return stored, nil
	case Zlib:
		r, err := zlib.NewReader(bytes.NewReader(stored))
		if err != nil {
			return nil, fmt.Errorf("compress: zlib reader: %w", err)
		}
		defer r.Close()
		return io.ReadAll(r)
	case Gzip:
		r, err := gzip.NewReader(bytes.NewReader(stored))
		if err != nil {
			return nil, fmt.Errorf("compress: gzip reader: %w", err)
		}
		defer r.Close()
		return io.ReadAll(r)
	case Bz2:
		r, err := bzip2.NewReader(bytes.NewReader(stored), nil)
		if err != nil {
			return nil, fmt.Errorf("compress: bz2 reader: %w", err)
		}
		defer r.Close()
		return io.ReadAll(r)
	case Lzma:
		return nil, &UnsupportedCompressionError{Name: algo}
	default:
		return nil, &UnsupportedCompressionError{Name: algo}
	}
}

func normalizeLevel(lvl, def int) int {
	if lvl <= 0 {
		return def
	}
	if lvl > 9 {
		return 9
	}
	return lvl
}
