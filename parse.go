package neofile

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/tjpalmer/neofile/internal/bytestream"
	"github.com/tjpalmer/neofile/internal/compress"
	"github.com/tjpalmer/neofile/internal/fieldcache"
	"github.com/tjpalmer/neofile/internal/format"
)

// ParseOptions controls how much of an archive Parse actually decodes.
type ParseOptions struct {
	Spec *FormatSpec // nil uses DefaultFormatSpec

	ListOnly     bool // skip reading stored content bytes
	SkipJSON     bool // skip reading JSON sidecar bytes
	SkipChecksum bool // skip JSON/content checksum verification
	Uncompress   bool // decompress stored content into Entry.Content
}

// ParseResult is the outcome of a full archive parse.
type ParseResult struct {
	Header  format.GlobalHeader
	Entries []Entry
}

// Parse reads an entire archive from r, honoring opts, and streams through
// without loading the whole archive at once beyond accumulating the result
// slice the caller asked for (spec §4.8).
func Parse(r io.Reader, opts ParseOptions) (ParseResult, error) {
	spec := ResolveFormatSpec(opts.Spec)
	wireSpec := toFormatSpec(spec)
	s := bytestream.NewReaderStream(r)

	var res ParseResult
	hdr, err := format.ReadGlobalHeader(s, wireSpec)
	if err != nil {
		return res, fmt.Errorf("neofile: parse: %w", ErrMalformedHeader)
	}
	res.Header = hdr

	readOpts := format.ReadOptions{ListOnly: opts.ListOnly, SkipJSON: opts.SkipJSON, SkipChecksum: opts.SkipChecksum}
	fc := fieldcache.New(256)
	for {
		rr, err := format.ReadRecord(s, wireSpec, readOpts)
		if err != nil {
			return res, fmt.Errorf("neofile: parse: %w", err)
		}
		if rr.Sentinel {
			break
		}

		e, err := recordFieldsToEntry(rr.Fields, rr.JSON, fc)
		if err != nil {
			return res, err
		}
		if !opts.SkipChecksum {
			if rr.JSONChecksum.Checked && !rr.JSONChecksum.OK {
				return res, &ChecksumError{Scope: "json", Entry: e.Name}
			}
			if rr.ContentChecksum.Checked && !rr.ContentChecksum.OK {
				return res, &ChecksumError{Scope: "content", Entry: e.Name}
			}
		}

		if rr.Content != nil {
			if opts.Uncompress && e.Compression != "" && e.Compression != "none" {
				decoded, derr := compress.Decompress(rr.Content, e.Compression)
				if derr != nil {
					slog.Warn("neofile: decompress failed, retaining stored bytes", "entry", e.Name, "algo", e.Compression, "error", derr)
					e.Content = rr.Content
					e.Decompressed = false
				} else {
					e.Content = decoded
					e.Decompressed = true
				}
			} else {
				e.Content = rr.Content
				e.Decompressed = e.Compression == "" || e.Compression == "none"
			}
		}

		res.Entries = append(res.Entries, e)
	}
	return res, nil
}
