package neofile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/tjpalmer/neofile/internal/checksum"
	"github.com/tjpalmer/neofile/internal/compress"
	"github.com/tjpalmer/neofile/internal/format"
)

// EntrySource yields entries one at a time, modeling the sum-type
// "iterator of entry descriptors or mapping name→bytes" entries source of
// spec §4.8 (Design Note "Iterator exhaustion on pack"): Pack never asks a
// source for its length up front, it drains Next until ok is false and
// relies on the end-of-archive sentinel, not a declared count, to mark
// termination on read.
type EntrySource interface {
	Next() (e Entry, ok bool, err error)
}

// sliceSource adapts a pre-built []Entry.
type sliceSource struct {
	entries []Entry
	i       int
}

func (s *sliceSource) Next() (Entry, bool, error) {
	if s.i >= len(s.entries) {
		return Entry{}, false, nil
	}
	e := s.entries[s.i]
	s.i++
	return e, true, nil
}

// SliceSource returns an EntrySource over an already-built slice. Pack
// assigns ID/Inode to the 0-based sequence position for any entry that
// does not already set one explicitly (spec §5: "fid/finode default to the
// 0-based sequence number at pack time").
func SliceSource(entries []Entry) EntrySource {
	return &sliceSource{entries: entries}
}

// MapSource builds an EntrySource of plain file entries from a name→bytes
// mapping, in sorted-name order for determinism.
func MapSource(m map[string][]byte) EntrySource {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	entries := make([]Entry, len(names))
	for i, name := range names {
		entries[i] = Entry{Name: NormalizeName(name), Type: TypeFile, Content: m[name], Size: uint64(len(m[name]))}
	}
	return &sliceSource{entries: entries}
}

// PackOptions controls Pack's behavior.
type PackOptions struct {
	Spec *FormatSpec // nil uses DefaultFormatSpec

	// ChecksumAlgo applies to header, content, and JSON scopes for entries
	// that do not set Entry.Checksums.*Algo explicitly. Defaults to crc32.
	ChecksumAlgo string

	// Compression, when non-empty, overrides Entry.Compression for every
	// entry; "auto" selects the size-based policy of spec §4.4. An empty
	// Entry.Compression with this field also empty defaults to "auto".
	Compression      string
	CompressionLevel int

	// Include/Exclude are doublestar glob patterns matched against each
	// entry's normalized Name (spec §3 supplement). An entry failing a
	// non-empty Include, or matching any Exclude, is skipped entirely —
	// this is filtering over whatever entries the caller already supplied,
	// not filesystem walking (which remains out of scope).
	Include []string
	Exclude []string

	GlobalChecksumAlgo string // checksum_algo for the global header; default crc32
	OSTag              string // default "unix"
}

// Pack serializes src's entries to w as one archive, per spec §4.8/§4.6.
// Entry content is staged through the compression engine, framed via the
// record codec, and terminated with the two-"0" sentinel.
func Pack(w io.Writer, src EntrySource, opts PackOptions) error {
	spec := ResolveFormatSpec(opts.Spec)
	wireSpec := toFormatSpec(spec)

	checksumAlgo := opts.ChecksumAlgo
	if checksumAlgo == "" {
		checksumAlgo = "crc32"
	}
	globalAlgo := opts.GlobalChecksumAlgo
	if globalAlgo == "" {
		globalAlgo = "crc32"
	}
	osTag := opts.OSTag
	if osTag == "" {
		osTag = "unix"
	}

	var body bytes.Buffer
	numFiles := 0
	seq := uint64(0)
	for {
		e, ok, err := src.Next()
		if err != nil {
			return fmt.Errorf("neofile: pack: entry source: %w", err)
		}
		if !ok {
			break
		}
		e.Name = NormalizeName(e.Name)
		if !matchesFilters(e.Name, opts.Include, opts.Exclude) {
			continue
		}
		if e.ID == 0 && e.Inode == 0 {
			e.ID, e.Inode = seq, seq
		}
		seq++

		if err := writeEntry(&body, wireSpec, e, opts, checksumAlgo); err != nil {
			return fmt.Errorf("neofile: pack: entry %q: %w", e.Name, err)
		}
		numFiles++
	}
	if err := format.WriteSentinel(&body, wireSpec); err != nil {
		return fmt.Errorf("neofile: pack: sentinel: %w", err)
	}

	var out bytes.Buffer
	hdr := format.GlobalHeader{
		Encoding:     "UTF-8",
		OSTag:        osTag,
		NumFiles:     uint64(numFiles),
		ChecksumAlgo: globalAlgo,
	}
	if err := format.WriteGlobalHeader(&out, wireSpec, hdr); err != nil {
		return fmt.Errorf("neofile: pack: global header: %w", err)
	}
	out.Write(body.Bytes())

	if _, err := w.Write(out.Bytes()); err != nil {
		return fmt.Errorf("neofile: pack: write: %w", err)
	}
	return nil
}

func writeEntry(dst *bytes.Buffer, wireSpec format.Spec, e Entry, opts PackOptions, checksumAlgo string) error {
	jsonBytes, err := marshalSidecar(e.JSON)
	if err != nil {
		return err
	}
	jsonChecksumAlgo := e.Checksums.JSONAlgo
	if jsonChecksumAlgo == "" {
		jsonChecksumAlgo = checksumAlgo
	}
	headerAlgo := e.Checksums.HeaderAlgo
	if headerAlgo == "" {
		headerAlgo = checksumAlgo
	}
	contentAlgo := e.Checksums.ContentAlgo
	if contentAlgo == "" {
		contentAlgo = checksumAlgo
	}
	jsonChecksumValue, err := checksum.Digest(jsonBytes, jsonChecksumAlgo)
	if err != nil {
		return err
	}

	stored, usedCompression, err := stageContent(e, opts)
	if err != nil {
		return err
	}

	e.Size = uint64(len(e.Content))
	if usedCompression == "none" {
		e.StoredSize = 0
	} else {
		e.StoredSize = uint64(len(stored))
	}
	e.Compression = usedCompression
	if e.Type == TypeDirectory {
		e.Size, e.StoredSize = 0, 0
		stored = nil
	}
	e.SeekNext = format.SeekNextHint(wireSpec.Delimiter)

	f, err := entryToRecordFields(e, jsonBytes, jsonChecksumAlgo, headerAlgo, contentAlgo)
	if err != nil {
		return err
	}
	f.JSONChecksumValue = jsonChecksumValue

	return format.WriteRecord(dst, wireSpec, f, jsonBytes, stored)
}

// stageContent compresses e.Content per opts.Compression (or e.Compression,
// or the size-based auto policy), returning the stored bytes and the
// canonical algorithm actually used.
func stageContent(e Entry, opts PackOptions) ([]byte, string, error) {
	if e.Type == TypeDirectory {
		return nil, "none", nil
	}
	requested := opts.Compression
	if requested == "" {
		requested = e.Compression
	}
	if requested == "" {
		requested = "auto"
	}

	algo := requested
	level := opts.CompressionLevel
	if requested == "auto" {
		algo, level = compress.AutoAlgorithm(len(e.Content))
	}

	stored, usedAlgo, fellBack, err := compress.CompressWithFallback(e.Content, algo, level)
	if err != nil {
		return nil, "", fmt.Errorf("compress entry: %w", err)
	}
	if fellBack {
		slog.Warn("neofile: compression fell back to zlib", "entry", e.Name, "requested", algo, "used", usedAlgo)
	}
	return stored, usedAlgo, nil
}

func marshalSidecar(obj map[string]any) ([]byte, error) {
	if obj == nil {
		obj = map[string]any{}
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("marshal json sidecar: %w", err)
	}
	return b, nil
}

// matchesFilters checks name (an Entry.Name, normalized to start with "./"
// or "/") against doublestar glob patterns. Each pattern is tried both
// against the full relative path (so "dir/*.txt" scopes to one directory)
// and against the base name alone (so "*.txt" reaches every depth, as a
// plain extension filter would).
func matchesFilters(name string, include, exclude []string) bool {
	rel := strings.TrimPrefix(strings.TrimPrefix(name, "./"), "/")
	base := path.Base(rel)

	matches := func(pat string) bool {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
		ok, _ := doublestar.Match(pat, base)
		return ok
	}

	for _, pat := range exclude {
		if matches(pat) {
			return false
		}
	}
	if len(include) == 0 {
		return true
	}
	for _, pat := range include {
		if matches(pat) {
			return true
		}
	}
	return false
}
