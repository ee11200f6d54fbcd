package wire

import (
	"bytes"

	"github.com/tjpalmer/neofile/internal/bytestream"
)

// WriteList encodes an ordered sequence of strings as the concatenation of
// each payload plus the delimiter (the "null-byte list" primitive).
func WriteList(dst *bytes.Buffer, items []string, delim []byte) error {
	for _, item := range items {
		if err := WriteFieldString(dst, item, delim); err != nil {
			return err
		}
	}
	return nil
}

// ReadList reads exactly count delimited strings from s.
func ReadList(s bytestream.Stream, count int, delim []byte) ([]string, error) {
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		v, err := ReadField(s, delim)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
