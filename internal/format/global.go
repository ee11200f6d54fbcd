package format

import (
	"bytes"
	"fmt"

	"github.com/tjpalmer/neofile/internal/bytestream"
	"github.com/tjpalmer/neofile/internal/checksum"
	"github.com/tjpalmer/neofile/internal/wire"
)

// GlobalHeader is the archive preamble (spec §3, §4.5).
type GlobalHeader struct {
	Encoding      string
	OSTag         string
	NumFiles      uint64
	Extras        []string
	ChecksumAlgo  string
	ChecksumValue string
}

// headersize_hex describes the byte length of everything from
// body_scratch_hex through checksum_value inclusive, minus the final
// trailing delimiter. It deliberately excludes magic+version and itself,
// the same convention used for the record codec's headersize_hex (see
// WriteRecord in record.go).
func WriteGlobalHeader(dst *bytes.Buffer, spec Spec, hdr GlobalHeader) error {
	delim := spec.Delimiter

	valueWidth, err := checksum.HexWidth(hdr.ChecksumAlgo)
	if err != nil {
		return err
	}

	var extrasBlob bytes.Buffer
	if err := wire.WriteList(&extrasBlob, hdr.Extras, delim); err != nil {
		return err
	}

	bodyScratch := 3 + 5 + len(hdr.Extras) + 1

	var rest bytes.Buffer
	if err := wire.WriteFieldString(&rest, wire.EncodeHex(uint64(bodyScratch)), delim); err != nil {
		return err
	}
	if err := wire.WriteFieldString(&rest, hdr.Encoding, delim); err != nil {
		return err
	}
	if err := wire.WriteFieldString(&rest, hdr.OSTag, delim); err != nil {
		return err
	}
	if err := wire.WriteFieldString(&rest, wire.EncodeHex(hdr.NumFiles), delim); err != nil {
		return err
	}
	if err := wire.WriteFieldString(&rest, wire.EncodeHex(uint64(extrasBlob.Len())), delim); err != nil {
		return err
	}
	if err := wire.WriteFieldString(&rest, wire.EncodeHex(uint64(len(hdr.Extras))), delim); err != nil {
		return err
	}
	rest.Write(extrasBlob.Bytes())
	if err := wire.WriteFieldString(&rest, hdr.ChecksumAlgo, delim); err != nil {
		return err
	}
	placeholder := make([]byte, valueWidth)
	for i := range placeholder {
		placeholder[i] = '0'
	}
	if err := wire.WriteField(&rest, placeholder, delim); err != nil {
		return err
	}

	headerSize := rest.Len() - len(delim) // minus the final trailing delimiter
	headerSizeHex := wire.EncodeHex(uint64(headerSize))

	var checksumInput bytes.Buffer
	checksumInput.WriteString(spec.Magic)
	checksumInput.WriteString(spec.VersionDigits)
	checksumInput.Write(delim)
	if err := wire.WriteFieldString(&checksumInput, headerSizeHex, delim); err != nil {
		return err
	}
	// rest, minus the placeholder checksum value and its trailing
	// delimiter, forms the remainder of the checksum-covered region.
	checksumInput.Write(rest.Bytes()[:rest.Len()-valueWidth-len(delim)])
	checksumValue, err := checksum.Digest(checksumInput.Bytes(), hdr.ChecksumAlgo)
	if err != nil {
		return err
	}
	if len(checksumValue) != valueWidth {
		return fmt.Errorf("format: checksum width mismatch for %q: got %d want %d", hdr.ChecksumAlgo, len(checksumValue), valueWidth)
	}

	dst.WriteString(spec.Magic)
	dst.WriteString(spec.VersionDigits)
	dst.Write(delim)
	if err := wire.WriteFieldString(dst, headerSizeHex, delim); err != nil {
		return err
	}
	dst.Write(rest.Bytes()[:rest.Len()-valueWidth-len(delim)])
	if err := wire.WriteFieldString(dst, checksumValue, delim); err != nil {
		return err
	}

	hdr.ChecksumValue = checksumValue
	return nil
}

// ReadGlobalHeader parses the archive preamble. The trailing checksum is
// read but its own verification is left to the caller (driver), matching
// spec §4.5's "validators MAY enforce it".
func ReadGlobalHeader(s bytestream.Stream, spec Spec) (GlobalHeader, error) {
	var hdr GlobalHeader

	magicVersion, err := wire.ReadField(s, spec.Delimiter)
	if err != nil {
		return hdr, fmt.Errorf("format: read magic/version: %w", err)
	}
	want := spec.Magic + spec.VersionDigits
	if magicVersion != want {
		return hdr, fmt.Errorf("format: bad magic: got %q want %q", magicVersion, want)
	}

	if _, err := wire.ReadField(s, spec.Delimiter); err != nil { // headersize_hex, informational
		return hdr, fmt.Errorf("format: read header size: %w", err)
	}
	if _, err := wire.ReadField(s, spec.Delimiter); err != nil { // body_scratch_hex, opaque
		return hdr, fmt.Errorf("format: read body scratch: %w", err)
	}

	hdr.Encoding, err = wire.ReadField(s, spec.Delimiter)
	if err != nil {
		return hdr, err
	}
	hdr.OSTag, err = wire.ReadField(s, spec.Delimiter)
	if err != nil {
		return hdr, err
	}
	numFilesHex, err := wire.ReadField(s, spec.Delimiter)
	if err != nil {
		return hdr, err
	}
	hdr.NumFiles, err = wire.DecodeHex(numFilesHex)
	if err != nil {
		return hdr, fmt.Errorf("format: bad num_files: %w", err)
	}

	if _, err := wire.ReadField(s, spec.Delimiter); err != nil { // extras_size_hex, informational
		return hdr, err
	}
	extrasCountHex, err := wire.ReadField(s, spec.Delimiter)
	if err != nil {
		return hdr, err
	}
	extrasCount, err := wire.DecodeHex(extrasCountHex)
	if err != nil {
		return hdr, fmt.Errorf("format: bad extras count: %w", err)
	}
	hdr.Extras, err = wire.ReadList(s, int(extrasCount), spec.Delimiter)
	if err != nil {
		return hdr, err
	}

	hdr.ChecksumAlgo, err = wire.ReadField(s, spec.Delimiter)
	if err != nil {
		return hdr, err
	}
	hdr.ChecksumValue, err = wire.ReadField(s, spec.Delimiter)
	if err != nil {
		return hdr, err
	}

	return hdr, nil
}
