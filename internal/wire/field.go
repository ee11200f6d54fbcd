package wire

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/tjpalmer/neofile/internal/bytestream"
)

// ErrDelimiterInPayload is returned when a caller attempts to write a field
// whose payload contains the configured delimiter; the wire format has no
// escaping mechanism for it (see spec §4.2).
var ErrDelimiterInPayload = errors.New("wire: payload contains delimiter byte")

// WriteField appends payload followed by delim to dst.
func WriteField(dst *bytes.Buffer, payload []byte, delim []byte) error {
	if len(delim) > 0 && bytes.Contains(payload, delim) {
		return ErrDelimiterInPayload
	}
	dst.Write(payload)
	dst.Write(delim)
	return nil
}

// WriteFieldString is a convenience wrapper around WriteField for string
// payloads.
func WriteFieldString(dst *bytes.Buffer, payload string, delim []byte) error {
	return WriteField(dst, []byte(payload), delim)
}

// scanChunk is the unit the field scanner reads ahead by; it is larger than
// any realistic delimiter so a match is usually found within one chunk.
const scanChunk = 32

// ReadField scans s for the next delimiter-terminated field, returning the
// payload with the delimiter consumed. It reads ahead in chunks and returns
// any overread past the delimiter to s via Unread, so a delimiter straddling
// a chunk boundary never loses bytes.
func ReadField(s bytestream.Stream, delim []byte) (string, error) {
	if len(delim) == 0 {
		return "", errors.New("wire: empty delimiter")
	}
	var buf bytes.Buffer
	carry := make([]byte, 0, len(delim)-1)
	for {
		chunk, err := s.Read(scanChunk)
		window := append(append([]byte{}, carry...), chunk...)
		if i := bytes.Index(window, delim); i >= 0 {
			buf.Write(window[:i])
			overread := window[i+len(delim):]
			if len(overread) > 0 {
				if uerr := s.Unread(overread); uerr != nil {
					return "", fmt.Errorf("wire: read field: %w", uerr)
				}
			}
			return buf.String(), nil
		}
		if err != nil {
			return "", fmt.Errorf("wire: read field: %w", err)
		}
		// No match yet: everything except a delimiter-length-1 tail is
		// safe to commit to the payload; the tail might be a delimiter
		// prefix split across chunks.
		keep := len(delim) - 1
		if keep < 0 {
			keep = 0
		}
		if len(window) > keep {
			buf.Write(window[:len(window)-keep])
			carry = append(carry[:0], window[len(window)-keep:]...)
		} else {
			carry = append(carry[:0], window...)
		}
	}
}

// SkipField discards the next delimiter-terminated field. It reads the
// field through ReadField and drops the payload.
func SkipField(s bytestream.Stream, delim []byte) error {
	_, err := ReadField(s, delim)
	return err
}
