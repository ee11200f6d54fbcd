package neofile

import (
	"bytes"
	"fmt"
	"io"

	"github.com/tjpalmer/neofile/internal/blobcache"
	"github.com/tjpalmer/neofile/internal/bytestream"
	"github.com/tjpalmer/neofile/internal/compress"
	"github.com/tjpalmer/neofile/internal/format"
)

// RepackOptions controls Repack's behavior.
type RepackOptions struct {
	Spec *FormatSpec

	// DestCompression, when non-empty, is the compression algorithm every
	// entry is re-encoded with; empty means "keep each entry's source
	// algorithm" (always a verbatim stored-bytes copy in that case).
	DestCompression string
	DestLevel       int

	// ReuseBlobCache, when true and BlobCache is non-nil, caches each
	// entry's decompressed content keyed by StreamID and record offset, so
	// a later Repack of the same stream with the same cache and StreamID
	// avoids a redundant decompression. Only Repack reads or fills the
	// cache; List and Validate do not use it.
	ReuseBlobCache bool
	BlobCache      *blobcache.Cache
	StreamID       uint64
}

// Repack parses archive r retaining stored (possibly compressed) bytes —
// no decompression unless re-encoding demands it — and re-emits to w. When
// an entry's destination algorithm equals its source algorithm, the stored
// bytes are copied verbatim; otherwise they are decompressed then
// recompressed (spec §4.8).
func Repack(r io.Reader, w io.Writer, opts RepackOptions) error {
	spec := ResolveFormatSpec(opts.Spec)
	wireSpec := toFormatSpec(spec)
	s := bytestream.NewReaderStream(r)

	hdr, err := format.ReadGlobalHeader(s, wireSpec)
	if err != nil {
		return fmt.Errorf("neofile: repack: %w", ErrMalformedHeader)
	}

	var body bytes.Buffer
	numFiles := 0
	for {
		offset, _ := s.Tell()
		rr, err := format.ReadRecord(s, wireSpec, format.ReadOptions{})
		if err != nil {
			return fmt.Errorf("neofile: repack: %w", err)
		}
		if rr.Sentinel {
			break
		}

		if err := repackEntry(&body, wireSpec, rr, opts, offset); err != nil {
			return fmt.Errorf("neofile: repack: entry %q: %w", rr.Fields.Name, err)
		}
		numFiles++
	}
	if err := format.WriteSentinel(&body, wireSpec); err != nil {
		return err
	}

	var out bytes.Buffer
	newHdr := format.GlobalHeader{
		Encoding:     hdr.Encoding,
		OSTag:        hdr.OSTag,
		NumFiles:     uint64(numFiles),
		Extras:       hdr.Extras,
		ChecksumAlgo: hdr.ChecksumAlgo,
	}
	if err := format.WriteGlobalHeader(&out, wireSpec, newHdr); err != nil {
		return err
	}
	out.Write(body.Bytes())

	_, err = w.Write(out.Bytes())
	return err
}

func repackEntry(dst *bytes.Buffer, wireSpec format.Spec, rr format.RecordReadResult, opts RepackOptions, offset int64) error {
	f := rr.Fields
	srcAlgo := compress.Normalize(f.Compression)
	destAlgo := srcAlgo
	if opts.DestCompression != "" {
		destAlgo = compress.Normalize(opts.DestCompression)
	}

	stored := rr.Content
	if destAlgo != srcAlgo {
		raw, err := decompressWithCache(rr.Content, srcAlgo, opts, offset)
		if err != nil {
			return fmt.Errorf("decompress for repack: %w", err)
		}
		recompressed, usedAlgo, _, err := compress.CompressWithFallback(raw, destAlgo, opts.DestLevel)
		if err != nil {
			return fmt.Errorf("recompress: %w", err)
		}
		stored = recompressed
		destAlgo = usedAlgo
		f.StoredSize = uint64(len(stored))
	}
	f.Compression = destAlgo

	return format.WriteRecord(dst, wireSpec, f, rr.JSON, stored)
}

func decompressWithCache(stored []byte, algo string, opts RepackOptions, offset int64) ([]byte, error) {
	if algo == "" || algo == "none" {
		return stored, nil
	}
	if opts.ReuseBlobCache && opts.BlobCache != nil {
		key := blobcache.Key(opts.StreamID, offset)
		if cached, ok := opts.BlobCache.Get(key); ok {
			return cached, nil
		}
		raw, err := compress.Decompress(stored, algo)
		if err != nil {
			return nil, err
		}
		opts.BlobCache.Set(key, raw)
		return raw, nil
	}
	return compress.Decompress(stored, algo)
}
