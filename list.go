package neofile

import "io"

// ListOptions controls List's behavior. Zero value matches spec §4.8's
// stated defaults for listing: skip content and JSON bytes for speed.
type ListOptions struct {
	Spec        *FormatSpec
	IncludeDirs bool // when false, directory entries are omitted from the result
}

// List returns the ordered fname projection of an archive's entries,
// reading with list_only=true, uncompress=false, skip_json=true (spec
// §4.8's stated defaults for List).
func List(r io.Reader, opts ListOptions) ([]string, error) {
	res, err := Parse(r, ParseOptions{Spec: opts.Spec, ListOnly: true, SkipJSON: true, SkipChecksum: true})
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(res.Entries))
	for _, e := range res.Entries {
		if !opts.IncludeDirs && e.Type == TypeDirectory {
			continue
		}
		names = append(names, e.Name)
	}
	return names, nil
}

// ListDetails is like List but returns full Entry values (still with
// Content/JSON nil, per the list_only/skip_json defaults).
func ListDetails(r io.Reader, opts ListOptions) ([]Entry, error) {
	res, err := Parse(r, ParseOptions{Spec: opts.Spec, ListOnly: true, SkipJSON: true, SkipChecksum: true})
	if err != nil {
		return nil, err
	}
	if opts.IncludeDirs {
		return res.Entries, nil
	}
	out := make([]Entry, 0, len(res.Entries))
	for _, e := range res.Entries {
		if e.Type == TypeDirectory {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
