// Package format implements the global header codec, the record codec, and
// the schema resolver: the on-wire framing described in spec §4.5-§4.7 and
// §6.1. It knows nothing about the higher-level Entry model; callers map
// to/from its field structs.
package format

// Spec carries the wire-level knobs the codec needs: the record/global
// header codecs never see the full neofile.FormatSpec, only this subset.
type Spec struct {
	Magic         string
	VersionDigits string
	Delimiter     []byte
}
