package neofile

import "io"

// FileSink is the thin interface through which Unpack hands reconstructed
// entries to an external collaborator that knows how to materialize them
// on a real filesystem (permissions, ownership, symlink/device creation) —
// that materialization is deliberately out of scope for this package (spec
// §1 Non-goals); Unpack only decodes the archive and stages content.
type FileSink interface {
	WriteEntry(e Entry) error
}

// UnpackOptions controls Unpack's behavior.
type UnpackOptions struct {
	Spec *FormatSpec

	// Sink, when non-nil, receives every entry via WriteEntry and Unpack
	// returns a nil map. When nil, Unpack behaves as if outdir were null or
	// "-": it returns a name→bytes mapping (nil bytes for directories).
	Sink FileSink
}

// Unpack parses archive r and either hands each entry to opts.Sink, or (when
// Sink is nil) returns a name→bytes map, per spec §4.8.
func Unpack(r io.Reader, opts UnpackOptions) (map[string][]byte, error) {
	res, err := Parse(r, ParseOptions{Spec: opts.Spec, Uncompress: true})
	if err != nil {
		return nil, err
	}

	if opts.Sink != nil {
		for _, e := range res.Entries {
			if err := opts.Sink.WriteEntry(e); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	out := make(map[string][]byte, len(res.Entries))
	for _, e := range res.Entries {
		if e.Type == TypeDirectory {
			out[e.Name] = nil
			continue
		}
		out[e.Name] = e.Content
	}
	return out, nil
}
