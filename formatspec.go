package neofile

import "github.com/tjpalmer/neofile/internal/wire"

// FormatSpec is the resolved archive configuration threaded explicitly
// through every call. There is no package-level mutable cache (see the
// "Global INI cache" design note in SPEC_FULL.md §9); callers needing a distinct
// configuration construct their own FormatSpec value.
type FormatSpec struct {
	Magic         string
	VersionDigits string
	Delimiter     []byte
	NewStyle      bool
}

// DefaultFormatSpec returns the package default: magic "NeoFile", version
// "001", a single NUL delimiter, new-style records.
func DefaultFormatSpec() FormatSpec {
	return FormatSpec{
		Magic:         "NeoFile",
		VersionDigits: "001",
		Delimiter:     []byte{0x00},
		NewStyle:      true,
	}
}

// ResolveFormatSpec merges a caller-supplied partial override over the
// default. A nil override returns the default unchanged. Unset string
// fields in override ("") and a nil Delimiter fall back to the default;
// NewStyle is taken from override whenever override is non-nil (it has no
// meaningful "unset" zero value to distinguish from explicit false).
func ResolveFormatSpec(override *FormatSpec) FormatSpec {
	spec := DefaultFormatSpec()
	if override == nil {
		return spec
	}
	if override.Magic != "" {
		spec.Magic = override.Magic
	}
	if override.VersionDigits != "" {
		spec.VersionDigits = digitsOrFallback(override.VersionDigits, spec.VersionDigits)
	}
	if len(override.Delimiter) > 0 {
		spec.Delimiter = override.Delimiter
	}
	spec.NewStyle = override.NewStyle
	return spec
}

// digitsOrFallback keeps only the decimal digits of s; if none remain, it
// returns fallback, matching the source format's "fallback 001 if source
// yields none" rule for the version string.
func digitsOrFallback(s, fallback string) string {
	var out []byte
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			out = append(out, s[i])
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return string(out)
}

// ParseDelimiter decodes an externally configured delimiter expressed with
// C-style escapes (\xNN, \0, \n, ...), as FormatSpec.Delimiter itself is
// always raw bytes.
func ParseDelimiter(s string) ([]byte, error) {
	return wire.DecodeEscapes(s)
}
