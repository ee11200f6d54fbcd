package neofile

import "strings"

// EntryType is the closed enum backing the wire format's ftype field
// (spec §3, §6.3).
type EntryType uint8

const (
	TypeFile EntryType = iota
	TypeHardlink
	TypeSymlink
	TypeCharDevice
	TypeBlockDevice
	TypeDirectory
	TypeFifo
)

func (t EntryType) String() string {
	switch t {
	case TypeFile:
		return "file"
	case TypeHardlink:
		return "hardlink"
	case TypeSymlink:
		return "symlink"
	case TypeCharDevice:
		return "char-device"
	case TypeBlockDevice:
		return "block-device"
	case TypeDirectory:
		return "directory"
	case TypeFifo:
		return "fifo"
	default:
		return "unknown"
	}
}

// ChecksumTriple holds the independent algorithm/value pair for each of the
// header, content, and JSON-sidecar checksum scopes.
type ChecksumTriple struct {
	HeaderAlgo  string
	HeaderValue string
	ContentAlgo string
	ContentValue string
	JSONAlgo    string
	JSONValue   string
}

// Entry is the normalized in-memory representation of one archive record.
type Entry struct {
	// Identity
	ID    uint64
	Inode uint64

	// Naming
	Name     string // normalized to start with "./" or "/"
	LinkName string // empty for files/dirs

	Type EntryType

	// Sizes
	Size       uint64 // logical byte count of raw content
	StoredSize uint64 // byte count of stored, possibly-compressed content

	// Times (integer seconds)
	AccessTime int64
	ModTime    int64
	ChangeTime int64
	BirthTime  int64

	// Permissions
	Mode           uint32
	WinAttributes  uint32

	// Ownership
	UID   uint32
	UName string
	GID   uint32
	GName string

	// Links and device identity
	LinkCount  uint32
	Dev        uint32
	DevMinor   uint32
	DevMajor   uint32

	// Compression
	Compression string // one of {none, zlib, gzip, bz2}; lzma recognized, unsupported

	// Encoding
	Encoding         string // usually "UTF-8"
	ContentEncoding  string // usually "UTF-8"

	// SeekNext is the opaque seek hint emitted verbatim as "+" + delimiter
	// length on write and never consulted on read (spec §9 open question).
	SeekNext string

	// JSON sidecar: a decoded object, or an empty map when absent.
	JSON map[string]any

	// Content is the logical bytes after decompression, or nil when the
	// caller requested listing-only.
	Content []byte

	// Decompressed reports whether Content (when non-nil) has already been
	// decompressed from the stored representation; false with Compression
	// set to a non-none algorithm means Content holds the raw stored bytes
	// (a DecompressFailed fallback occurred).
	Decompressed bool

	Checksums ChecksumTriple
}

// NormalizeName prepends "./" to name if it does not already start with
// "./" or "/" (spec invariant 6).
func NormalizeName(name string) string {
	if strings.HasPrefix(name, "./") || strings.HasPrefix(name, "/") {
		return name
	}
	return "./" + name
}
