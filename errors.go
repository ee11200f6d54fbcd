package neofile

import "fmt"

// Sentinel errors for conditions with no interesting payload beyond "this
// happened" (spec §7).
var (
	ErrMalformedHeader = fmt.Errorf("neofile: malformed global header")
	ErrMalformedRecord = fmt.Errorf("neofile: malformed record header")
)

// ChecksumError reports a checksum mismatch in one of the header, json, or
// content scopes, optionally naming the offending entry.
type ChecksumError struct {
	Scope string // "header", "json", or "content"
	Entry string // entry name, empty for the global header
}

func (e *ChecksumError) Error() string {
	if e.Entry == "" {
		return fmt.Sprintf("neofile: checksum mismatch in %s", e.Scope)
	}
	return fmt.Sprintf("neofile: checksum mismatch in %s for entry %q", e.Scope, e.Entry)
}

// UnsupportedChecksumError reports an unknown checksum algorithm name used
// on write, or required for verification on read.
type UnsupportedChecksumError struct {
	Name string
}

func (e *UnsupportedChecksumError) Error() string {
	return fmt.Sprintf("neofile: unsupported checksum algorithm %q", e.Name)
}

// UnsupportedCompressionError reports an unknown or deliberately
// unsupported compression algorithm (always returned for lzma).
type UnsupportedCompressionError struct {
	Name string
}

func (e *UnsupportedCompressionError) Error() string {
	return fmt.Sprintf("neofile: unsupported compression algorithm %q", e.Name)
}

// DecompressError reports a failed decompression attempt on read. It is
// non-fatal when the caller requested best-effort decompression via
// ParseOptions.Uncompress: the entry retains its stored (compressed) bytes
// and Entry.Decompressed is left false.
type DecompressError struct {
	Algo  string
	Entry string
	Err   error
}

func (e *DecompressError) Error() string {
	return fmt.Sprintf("neofile: decompress failed for entry %q (%s): %v", e.Entry, e.Algo, e.Err)
}

func (e *DecompressError) Unwrap() error {
	return e.Err
}

// MalformedRecordError reports a record whose fixed-prefix field count is
// below 25, or whose hex fields fail to parse.
type MalformedRecordError struct {
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("neofile: malformed record: %s", e.Reason)
}
