package neofile

import (
	"encoding/json"
	"fmt"

	"github.com/tjpalmer/neofile/internal/fieldcache"
	"github.com/tjpalmer/neofile/internal/format"
)

// toFormatSpec narrows a FormatSpec to the wire codec's subset.
func toFormatSpec(spec FormatSpec) format.Spec {
	return format.Spec{Magic: spec.Magic, VersionDigits: spec.VersionDigits, Delimiter: spec.Delimiter}
}

// entryToRecordFields builds the wire-level field struct and the raw JSON
// bytes for one entry, given the already-staged (possibly compressed)
// content and the checksum algorithms to use. Checksum *values* are left
// for WriteRecord to compute internally for content; the json/header
// algorithm names are carried through so WriteRecord can compute their
// values too.
func entryToRecordFields(e Entry, jsonBytes []byte, jsonChecksum string, headerAlgo, contentAlgo string) (format.RecordFields, error) {
	f := format.RecordFields{
		Type:            uint8(e.Type),
		Encoding:        orDefault(e.Encoding, "UTF-8"),
		ContentEncoding: orDefault(e.ContentEncoding, "UTF-8"),
		Name:            e.Name,
		LinkName:        e.LinkName,
		Size:            e.Size,
		AccessTime:      e.AccessTime,
		ModTime:         e.ModTime,
		ChangeTime:      e.ChangeTime,
		BirthTime:       e.BirthTime,
		Mode:            e.Mode,
		WinAttributes:   e.WinAttributes,
		Compression:     orDefault(e.Compression, "none"),
		StoredSize:      e.StoredSize,
		UID:             e.UID,
		UName:           e.UName,
		GID:             e.GID,
		GName:           e.GName,
		ID:              e.ID,
		Inode:           e.Inode,
		LinkCount:       e.LinkCount,
		Dev:             e.Dev,
		DevMinor:        e.DevMinor,
		DevMajor:        e.DevMajor,
		SeekNext:        e.SeekNext,

		JSONType:         "object",
		JSONLen:           uint64(len(e.JSON)),
		JSONSize:          uint64(len(jsonBytes)),
		JSONChecksumAlgo:  jsonChecksum,

		HeaderChecksumAlgo:  headerAlgo,
		ContentChecksumAlgo: contentAlgo,
	}
	return f, nil
}

// recordFieldsToEntry converts a read RecordFields (plus the decoded JSON
// bytes) back into an Entry. Content is attached separately by the caller,
// since whether it is present/decompressed depends on read options. fc, when
// non-nil, interns the handful of string fields (owner/group names,
// encodings, algorithm names) that repeat across nearly every record in an
// archive, so a large archive does not allocate a fresh string per record
// for values shared by all its entries.
func recordFieldsToEntry(f format.RecordFields, jsonBytes []byte, fc *fieldcache.Cache) (Entry, error) {
	e := Entry{
		ID:              f.ID,
		Inode:           f.Inode,
		Name:            NormalizeName(f.Name),
		LinkName:        f.LinkName,
		Type:            EntryType(f.Type),
		Size:            f.Size,
		StoredSize:      f.StoredSize,
		AccessTime:      f.AccessTime,
		ModTime:         f.ModTime,
		ChangeTime:      f.ChangeTime,
		BirthTime:       f.BirthTime,
		Mode:            f.Mode,
		WinAttributes:   f.WinAttributes,
		UID:             f.UID,
		UName:           fc.Intern(f.UName),
		GID:             f.GID,
		GName:           fc.Intern(f.GName),
		LinkCount:       f.LinkCount,
		Dev:             f.Dev,
		DevMinor:        f.DevMinor,
		DevMajor:        f.DevMajor,
		Compression:     fc.Intern(f.Compression),
		Encoding:        fc.Intern(f.Encoding),
		ContentEncoding: fc.Intern(f.ContentEncoding),
		SeekNext:        f.SeekNext,
		Checksums: ChecksumTriple{
			HeaderAlgo:   fc.Intern(f.HeaderChecksumAlgo),
			HeaderValue:  f.HeaderChecksumValue,
			ContentAlgo:  fc.Intern(f.ContentChecksumAlgo),
			ContentValue: f.ContentChecksumValue,
			JSONAlgo:     fc.Intern(f.JSONChecksumAlgo),
			JSONValue:    f.JSONChecksumValue,
		},
	}
	if len(jsonBytes) > 0 {
		var obj map[string]any
		if err := json.Unmarshal(jsonBytes, &obj); err != nil {
			return e, fmt.Errorf("neofile: decode json sidecar for %q: %w", e.Name, err)
		}
		e.JSON = obj
	}
	return e, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
