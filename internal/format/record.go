package format

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/tjpalmer/neofile/internal/bytestream"
	"github.com/tjpalmer/neofile/internal/checksum"
	"github.com/tjpalmer/neofile/internal/wire"
)

// RecordFields is the full fixed-prefix-plus-descriptor shape of one
// record header (spec §4.6), independent of the higher-level Entry model.
type RecordFields struct {
	Type          uint8
	Encoding      string
	ContentEncoding string
	Name          string
	LinkName      string
	Size          uint64
	AccessTime    int64
	ModTime       int64
	ChangeTime    int64
	BirthTime     int64
	Mode          uint32
	WinAttributes uint32
	Compression   string
	StoredSize    uint64
	UID           uint32
	UName         string
	GID           uint32
	GName         string
	ID            uint64
	Inode         uint64
	LinkCount     uint32
	Dev           uint32
	DevMinor      uint32
	DevMajor      uint32
	SeekNext      string

	JSONType      string
	JSONNewStyle  bool // read-only: whether the wire used the 5-field form
	JSONLen       uint64
	JSONSize      uint64
	JSONChecksumAlgo  string
	JSONChecksumValue string

	Extras []string

	HeaderChecksumAlgo    string
	ContentChecksumAlgo   string
	HeaderChecksumValue   string
	ContentChecksumValue  string
}

// WriteSentinel writes the two-field "0"/"0" end-of-archive marker.
func WriteSentinel(dst *bytes.Buffer, spec Spec) error {
	if err := wire.WriteFieldString(dst, "0", spec.Delimiter); err != nil {
		return err
	}
	return wire.WriteFieldString(dst, "0", spec.Delimiter)
}

// WriteRecord serializes one record: header fields, JSON bytes, stored
// content bytes, each region delimiter-terminated per spec §4.6. Writers
// always use the 5-field (new-style) JSON descriptor, per spec.
//
// jsonBytes and content must already be exactly JSONSize and StoredSize (or
// Size, when uncompressed) bytes respectively; the caller (the entry model
// / driver) is responsible for compression staging before calling this.
// The JSON, header, and content checksum values are computed here from
// f's algorithm names; any JSONChecksumValue already set in f is replaced.
func WriteRecord(dst *bytes.Buffer, spec Spec, f RecordFields, jsonBytes []byte, content []byte) error {
	delim := spec.Delimiter

	jsonValue, err := checksum.Digest(jsonBytes, f.JSONChecksumAlgo)
	if err != nil {
		return err
	}
	f.JSONChecksumValue = jsonValue

	headerValueWidth, err := checksum.HexWidth(f.HeaderChecksumAlgo)
	if err != nil {
		return err
	}
	contentValueWidth, err := checksum.HexWidth(f.ContentChecksumAlgo)
	if err != nil {
		return err
	}

	fieldsCount := fixedFieldCount + 5 /*json desc*/ + 2 /*extras_size,extras_count*/ + len(f.Extras) + 2 /*algo names*/ + 2 /*values*/

	var rest bytes.Buffer // everything after fields_count_hex's own delimiter
	if err := writeFieldsCountAndFixed(&rest, spec, f, fieldsCount); err != nil {
		return err
	}
	if err := writeJSONDescriptor(&rest, spec, f); err != nil {
		return err
	}
	if err := writeExtras(&rest, spec, f.Extras); err != nil {
		return err
	}
	if err := wire.WriteFieldString(&rest, f.HeaderChecksumAlgo, delim); err != nil {
		return err
	}
	if err := wire.WriteFieldString(&rest, f.ContentChecksumAlgo, delim); err != nil {
		return err
	}
	headerValuePlaceholder := bytes.Repeat([]byte{'0'}, headerValueWidth)
	if err := wire.WriteField(&rest, headerValuePlaceholder, delim); err != nil {
		return err
	}
	contentValue, err := checksum.Digest(content, f.ContentChecksumAlgo)
	if err != nil {
		return err
	}
	if len(contentValue) != contentValueWidth {
		return fmt.Errorf("format: content checksum width mismatch for %q", f.ContentChecksumAlgo)
	}
	if err := wire.WriteFieldString(&rest, contentValue, delim); err != nil {
		return err
	}

	headerSize := rest.Len() - len(delim)
	headerSizeHex := wire.EncodeHex(uint64(headerSize))

	// Header checksum covers headersize_hex + delim + everything through
	// content_checksum_algo's delimiter (spec §4.6), which is rest minus
	// the two placeholder/real value fields and their trailing delimiters.
	coveredTail := rest.Len() - headerValueWidth - len(delim) - contentValueWidth - len(delim)
	var checksumInput bytes.Buffer
	if err := wire.WriteFieldString(&checksumInput, headerSizeHex, delim); err != nil {
		return err
	}
	checksumInput.Write(rest.Bytes()[:coveredTail])
	headerValue, err := checksum.Digest(checksumInput.Bytes(), f.HeaderChecksumAlgo)
	if err != nil {
		return err
	}
	if len(headerValue) != headerValueWidth {
		return fmt.Errorf("format: header checksum width mismatch for %q", f.HeaderChecksumAlgo)
	}

	if err := wire.WriteFieldString(dst, headerSizeHex, delim); err != nil {
		return err
	}
	dst.Write(rest.Bytes()[:coveredTail])
	if err := wire.WriteFieldString(dst, headerValue, delim); err != nil {
		return err
	}
	dst.Write(rest.Bytes()[rest.Len()-contentValueWidth-len(delim):])

	if err := wire.WriteField(dst, jsonBytes, delim); err != nil {
		return err
	}
	if err := wire.WriteField(dst, content, delim); err != nil {
		return err
	}
	return nil
}

func writeFieldsCountAndFixed(rest *bytes.Buffer, spec Spec, f RecordFields, fieldsCount int) error {
	delim := spec.Delimiter
	if err := wire.WriteFieldString(rest, wire.EncodeHex(uint64(fieldsCount)), delim); err != nil {
		return err
	}
	vals := []string{
		wire.EncodeHex(uint64(f.Type)),
		f.Encoding,
		f.ContentEncoding,
		f.Name,
		f.LinkName,
		wire.EncodeHex(f.Size),
		wire.EncodeHex(uint64(f.AccessTime)),
		wire.EncodeHex(uint64(f.ModTime)),
		wire.EncodeHex(uint64(f.ChangeTime)),
		wire.EncodeHex(uint64(f.BirthTime)),
		wire.EncodeHex(uint64(f.Mode)),
		wire.EncodeHex(uint64(f.WinAttributes)),
		f.Compression,
		wire.EncodeHex(f.StoredSize),
		wire.EncodeHex(uint64(f.UID)),
		f.UName,
		wire.EncodeHex(uint64(f.GID)),
		f.GName,
		wire.EncodeHex(f.ID),
		wire.EncodeHex(f.Inode),
		wire.EncodeHex(uint64(f.LinkCount)),
		wire.EncodeHex(uint64(f.Dev)),
		wire.EncodeHex(uint64(f.DevMinor)),
		wire.EncodeHex(uint64(f.DevMajor)),
		f.SeekNext,
	}
	return wire.WriteList(rest, vals, delim)
}

func writeJSONDescriptor(rest *bytes.Buffer, spec Spec, f RecordFields) error {
	delim := spec.Delimiter
	if err := wire.WriteFieldString(rest, f.JSONType, delim); err != nil {
		return err
	}
	if err := wire.WriteFieldString(rest, wire.EncodeHex(f.JSONLen), delim); err != nil {
		return err
	}
	if err := wire.WriteFieldString(rest, wire.EncodeHex(f.JSONSize), delim); err != nil {
		return err
	}
	if err := wire.WriteFieldString(rest, f.JSONChecksumAlgo, delim); err != nil {
		return err
	}
	return wire.WriteFieldString(rest, f.JSONChecksumValue, delim)
}

func writeExtras(rest *bytes.Buffer, spec Spec, extras []string) error {
	delim := spec.Delimiter
	var blob bytes.Buffer
	if err := wire.WriteList(&blob, extras, delim); err != nil {
		return err
	}
	if err := wire.WriteFieldString(rest, wire.EncodeHex(uint64(blob.Len())), delim); err != nil {
		return err
	}
	if err := wire.WriteFieldString(rest, wire.EncodeHex(uint64(len(extras))), delim); err != nil {
		return err
	}
	rest.Write(blob.Bytes())
	return nil
}

// ReadOptions controls how much of a record ReadRecord actually consumes
// versus skips.
type ReadOptions struct {
	ListOnly     bool // skip reading the stored content region
	SkipJSON     bool // skip reading the JSON sidecar region
	SkipChecksum bool
}

// ChecksumResult reports whether a scope's checksum was checked, and if so
// whether it matched.
type ChecksumResult struct {
	Checked bool
	OK      bool
}

// RecordReadResult is the outcome of one ReadRecord call.
type RecordReadResult struct {
	Sentinel bool // true: end of archive, no other field is meaningful

	Fields  RecordFields
	JSON    []byte // nil if skipped
	Content []byte // nil if skipped/list-only; raw stored bytes (possibly compressed)

	JSONChecksum    ChecksumResult
	ContentChecksum ChecksumResult
}

// ReadRecord reads one record or the end-of-archive sentinel, following
// spec §4.6's algorithm.
func ReadRecord(s bytestream.Stream, spec Spec, opts ReadOptions) (RecordReadResult, error) {
	delim := spec.Delimiter
	var res RecordReadResult

	first, err := wire.ReadField(s, delim)
	if err != nil {
		return res, fmt.Errorf("format: read record: %w", err)
	}
	if first == "0" {
		second, err := wire.ReadField(s, delim)
		if err != nil {
			return res, fmt.Errorf("format: read sentinel: %w", err)
		}
		if second == "0" {
			res.Sentinel = true
			return res, nil
		}
		// Not actually a sentinel: treat first="0" as headersize_hex=0 and
		// second as fields_count_hex, per the read algorithm.
		return readRecordBody(s, spec, opts, first, second)
	}

	fieldsCountHex, err := wire.ReadField(s, delim)
	if err != nil {
		return res, fmt.Errorf("format: read fields_count_hex: %w", err)
	}
	return readRecordBody(s, spec, opts, first, fieldsCountHex)
}

func readRecordBody(s bytestream.Stream, spec Spec, opts ReadOptions, headerSizeHex, fieldsCountHex string) (RecordReadResult, error) {
	delim := spec.Delimiter
	var res RecordReadResult

	fieldsCount, err := wire.DecodeHex(fieldsCountHex)
	if err != nil {
		return res, &MalformedError{Reason: "bad fields_count_hex: " + err.Error()}
	}
	if fieldsCount < fixedFieldCount {
		return res, &MalformedError{Reason: fmt.Sprintf("fields_count %d below minimum %d", fieldsCount, fixedFieldCount)}
	}

	values, err := wire.ReadList(s, int(fieldsCount), delim)
	if err != nil {
		return res, fmt.Errorf("format: read record fields: %w", err)
	}

	f, err := parseFixedFields(values[:fixedFieldCount])
	if err != nil {
		return res, err
	}

	jd, err := resolveJSONDescriptor(values)
	if err != nil {
		return res, err
	}
	f.JSONType = jd.Type
	f.JSONNewStyle = jd.NewStyle
	f.JSONLen = jd.Len
	f.JSONSize = jd.Size
	f.JSONChecksumAlgo = jd.ChecksumAlgo
	f.JSONChecksumValue = jd.ChecksumValue

	extras, next, err := resolveExtras(values, jd.nextIndex)
	if err != nil {
		return res, err
	}
	f.Extras = extras

	if len(values) < next+4 {
		return res, &MalformedError{Reason: "record truncated before checksum trailer"}
	}
	f.HeaderChecksumAlgo = values[next]
	f.ContentChecksumAlgo = values[next+1]
	f.HeaderChecksumValue = values[next+2]
	f.ContentChecksumValue = values[next+3]

	_ = headerSizeHex // informational only, per spec §4.6 step 1

	res.Fields = f

	// JSON region
	if opts.SkipJSON {
		if err := s.Skip(int64(f.JSONSize)); err != nil {
			return res, fmt.Errorf("format: skip json: %w", err)
		}
	} else {
		b, err := s.Read(int(f.JSONSize))
		if err != nil {
			return res, fmt.Errorf("format: read json: %w", err)
		}
		res.JSON = b
		if !opts.SkipChecksum {
			ok, err := checksum.Verify(b, f.JSONChecksumAlgo, f.JSONChecksumValue)
			if err != nil {
				return res, err
			}
			res.JSONChecksum = ChecksumResult{Checked: true, OK: ok}
		}
	}
	if err := consumeDelimiter(s, delim); err != nil {
		return res, fmt.Errorf("format: json trailing delimiter: %w", err)
	}

	// Content region
	storedLen := f.Size
	if notNoneCompression(f.Compression) && f.StoredSize > 0 {
		storedLen = f.StoredSize
	}
	if opts.ListOnly {
		if err := s.Skip(int64(storedLen)); err != nil {
			return res, fmt.Errorf("format: skip content: %w", err)
		}
	} else {
		b, err := s.Read(int(storedLen))
		if err != nil {
			return res, fmt.Errorf("format: read content: %w", err)
		}
		res.Content = b
		if !opts.SkipChecksum {
			ok, err := checksum.Verify(b, f.ContentChecksumAlgo, f.ContentChecksumValue)
			if err != nil {
				return res, err
			}
			res.ContentChecksum = ChecksumResult{Checked: true, OK: ok}
		}
	}
	if err := consumeDelimiter(s, delim); err != nil {
		return res, fmt.Errorf("format: content trailing delimiter: %w", err)
	}

	return res, nil
}

func notNoneCompression(algo string) bool {
	switch algo {
	case "", "none":
		return false
	default:
		return true
	}
}

func consumeDelimiter(s bytestream.Stream, delim []byte) error {
	got, err := s.Read(len(delim))
	if err != nil {
		return err
	}
	if !bytes.Equal(got, delim) {
		return &MalformedError{Reason: "expected trailing delimiter"}
	}
	return nil
}

func parseFixedFields(v []string) (RecordFields, error) {
	var f RecordFields
	var err error
	hex := func(s string) uint64 {
		if err != nil {
			return 0
		}
		var n uint64
		n, err = wire.DecodeHex(s)
		return n
	}

	typeVal := hex(v[0])
	f.Encoding = v[1]
	f.ContentEncoding = v[2]
	f.Name = v[3]
	f.LinkName = v[4]
	f.Size = hex(v[5])
	f.AccessTime = int64(hex(v[6]))
	f.ModTime = int64(hex(v[7]))
	f.ChangeTime = int64(hex(v[8]))
	f.BirthTime = int64(hex(v[9]))
	f.Mode = uint32(hex(v[10]))
	f.WinAttributes = uint32(hex(v[11]))
	f.Compression = v[12]
	f.StoredSize = hex(v[13])
	f.UID = uint32(hex(v[14]))
	f.UName = v[15]
	f.GID = uint32(hex(v[16]))
	f.GName = v[17]
	f.ID = hex(v[18])
	f.Inode = hex(v[19])
	f.LinkCount = uint32(hex(v[20]))
	f.Dev = uint32(hex(v[21]))
	f.DevMinor = uint32(hex(v[22]))
	f.DevMajor = uint32(hex(v[23]))
	f.SeekNext = v[24]

	if err != nil {
		return f, &MalformedError{Reason: "non-hex value in fixed field: " + err.Error()}
	}
	if typeVal > 255 {
		return f, &MalformedError{Reason: "ftype out of range"}
	}
	f.Type = uint8(typeVal)
	return f, nil
}

// SeekNextHint renders the fseeknext field's literal value, "+" followed
// by the delimiter length, emitted verbatim for wire compatibility and
// never consulted on read (spec §9).
func SeekNextHint(delim []byte) string {
	return "+" + strconv.Itoa(len(delim))
}
