package format

import (
	"fmt"

	"github.com/tjpalmer/neofile/internal/checksum"
	"github.com/tjpalmer/neofile/internal/wire"
)

// fixedFieldCount is the number of fields in the record's fixed prefix
// (ftype through fseeknext, spec §4.6).
const fixedFieldCount = 25

// jsonDescriptor holds the resolved JSON-sidecar descriptor, whichever of
// the new-style (5-field) or legacy (4-field) shapes was present on the
// wire, plus the index in the field vector immediately following it.
type jsonDescriptor struct {
	Type          string
	NewStyle      bool
	Len           uint64 // number of keys; 0 and meaningless when !NewStyle
	Size          uint64
	ChecksumAlgo  string
	ChecksumValue string
	nextIndex     int
}

// resolveJSONDescriptor implements the schema-drift heuristic of spec
// §4.7: at fields[25] sits json_type; the following triplet is either
// (json_len, json_size, json_cs_algo) [new style] or
// (json_size, json_cs_algo, json_cs_value) [legacy]. The decision inspects
// fields[26] and fields[27] for "looks like hex" and fields[28] for
// "names a known checksum algorithm".
func resolveJSONDescriptor(fields []string) (jsonDescriptor, error) {
	if len(fields) < fixedFieldCount+1 {
		return jsonDescriptor{}, &MalformedError{Reason: fmt.Sprintf("record has only %d fields, need at least %d", len(fields), fixedFieldCount+1)}
	}
	var d jsonDescriptor
	d.Type = fields[fixedFieldCount]

	base := fixedFieldCount + 1 // index of the field right after json_type
	if len(fields) < base+4 {
		return jsonDescriptor{}, &MalformedError{Reason: "record truncated before JSON descriptor"}
	}

	a, b, c := fields[base], fields[base+1], fields[base+2]
	if wire.IsHex(a) && wire.IsHex(b) && checksum.KnownAlgorithm(c) {
		// New style: (json_len, json_size, json_cs_algo, json_cs_value)
		if len(fields) < base+4 {
			return jsonDescriptor{}, &MalformedError{Reason: "record truncated in new-style JSON descriptor"}
		}
		jsonLen, err := wire.DecodeHex(a)
		if err != nil {
			return jsonDescriptor{}, &MalformedError{Reason: "bad json_len: " + err.Error()}
		}
		jsonSize, err := wire.DecodeHex(b)
		if err != nil {
			return jsonDescriptor{}, &MalformedError{Reason: "bad json_size: " + err.Error()}
		}
		d.NewStyle = true
		d.Len = jsonLen
		d.Size = jsonSize
		d.ChecksumAlgo = c
		d.ChecksumValue = fields[base+3]
		d.nextIndex = base + 4
		return d, nil
	}

	// Legacy: (json_size, json_cs_algo, json_cs_value)
	jsonSize, err := wire.DecodeHex(a)
	if err != nil {
		return jsonDescriptor{}, &MalformedError{Reason: "bad legacy json_size: " + err.Error()}
	}
	d.NewStyle = false
	d.Size = jsonSize
	d.ChecksumAlgo = b
	d.ChecksumValue = c
	d.nextIndex = base + 3
	return d, nil
}

// resolveExtras reads extras_size (informational), extras_count, and that
// many extra strings starting at fields[start].
func resolveExtras(fields []string, start int) (extras []string, nextIndex int, err error) {
	if len(fields) < start+2 {
		return nil, 0, &MalformedError{Reason: "record truncated before extras block"}
	}
	// fields[start] is extras_size_hex, informational only.
	countHex := fields[start+1]
	count, err := wire.DecodeHex(countHex)
	if err != nil {
		return nil, 0, &MalformedError{Reason: "bad extras_count: " + err.Error()}
	}
	i := start + 2
	if len(fields) < i+int(count) {
		return nil, 0, &MalformedError{Reason: "record truncated in extras list"}
	}
	extras = append(extras, fields[i:i+int(count)]...)
	return extras, i + int(count), nil
}
