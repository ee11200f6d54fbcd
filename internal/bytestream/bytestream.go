// Package bytestream provides a uniform sequential reader over either an
// in-memory byte slice or a file-like handle, with chunked buffering and a
// bounded pushback window so callers scanning for a delimiter can return a
// short overread to the stream.
package bytestream

import (
	"bufio"
	"errors"
	"io"
)

// ErrNotSeekable is returned by Seek on a Stream built over a plain
// io.Reader with no random access, for anything but forward io.SeekCurrent
// motion. Tell still reports the position on such a Stream.
var ErrNotSeekable = errors.New("bytestream: underlying reader is not seekable")

// maxLookback bounds how many bytes Unread will hold at once. A delimiter
// is never more than a handful of bytes, so this is generous headroom.
const maxLookback = 64

// Stream is a sequential byte source. Read(n) returns fewer than n bytes
// only once the source is exhausted, in which case it also returns io.EOF.
type Stream interface {
	Read(n int) ([]byte, error)
	Skip(n int64) error
	Seek(offset int64, whence int) (int64, error)
	Tell() (int64, error)
	Unread(b []byte) error
}

type stream struct {
	rs       io.ReadSeeker // nil when built over a plain io.Reader
	r        *bufio.Reader
	pos      int64
	pushback []byte
}

// NewMemStream wraps an in-memory byte slice.
func NewMemStream(b []byte) Stream {
	return NewFileStream(newBytesReaderAt(b), len(b))
}

// NewFileStream wraps a seekable handle (typically *os.File) with chunked
// buffering. chunkSize controls the bufio.Reader size; 0 selects a default.
func NewFileStream(rs io.ReadSeeker, chunkSize int) Stream {
	if chunkSize <= 0 {
		chunkSize = 64 * 1024
	}
	return &stream{
		rs: rs,
		r:  bufio.NewReaderSize(rs, chunkSize),
	}
}

// NewReaderStream adapts a non-seekable io.Reader. Skip reads and discards;
// Seek supports only forward io.SeekCurrent motion.
func NewReaderStream(r io.Reader) Stream {
	return &stream{r: bufio.NewReaderSize(r, 64*1024)}
}

func (s *stream) Read(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	out := make([]byte, 0, n)
	if len(s.pushback) > 0 {
		take := len(s.pushback)
		if take > n {
			take = n
		}
		out = append(out, s.pushback[:take]...)
		s.pushback = s.pushback[take:]
		n -= take
	}
	if n > 0 {
		buf := make([]byte, n)
		read, err := io.ReadFull(s.r, buf)
		out = append(out, buf[:read]...)
		s.pos += int64(read)
		if err != nil {
			if err == io.ErrUnexpectedEOF {
				err = io.EOF
			}
			return out, err
		}
		return out, nil
	}
	s.pos += int64(len(out))
	return out, nil
}

func (s *stream) Skip(n int64) error {
	if n <= 0 {
		return nil
	}
	if len(s.pushback) > 0 {
		drop := int64(len(s.pushback))
		if drop > n {
			drop = n
		}
		s.pushback = s.pushback[drop:]
		n -= drop
	}
	if n == 0 {
		return nil
	}
	written, err := io.CopyN(io.Discard, s.r, n)
	s.pos += written
	return err
}

func (s *stream) Seek(offset int64, whence int) (int64, error) {
	if s.rs == nil {
		if whence == io.SeekCurrent && offset >= 0 {
			if err := s.Skip(offset); err != nil {
				return s.pos, err
			}
			return s.pos, nil
		}
		return 0, ErrNotSeekable
	}
	s.pushback = nil
	pos, err := s.rs.Seek(offset, whence)
	if err != nil {
		return pos, err
	}
	// Seeking the underlying handle invalidates anything buffered, so swap
	// in a fresh bufio.Reader sized the same as before.
	s.r = bufio.NewReaderSize(s.rs, s.r.Size())
	s.pos = pos
	return pos, nil
}

func (s *stream) Tell() (int64, error) {
	return s.pos, nil
}

func (s *stream) Unread(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if len(s.pushback)+len(b) > maxLookback {
		return errors.New("bytestream: pushback exceeds bounded lookback window")
	}
	combined := make([]byte, 0, len(b)+len(s.pushback))
	combined = append(combined, b...)
	combined = append(combined, s.pushback...)
	s.pushback = combined
	s.pos -= int64(len(b))
	return nil
}

// newBytesReaderAt adapts a byte slice to io.ReadSeeker using the minimal
// in-package sliceReader below.
func newBytesReaderAt(b []byte) io.ReadSeeker {
	return &sliceReader{b: b}
}

type sliceReader struct {
	b   []byte
	pos int64
}

func (s *sliceReader) Read(p []byte) (int, error) {
	if s.pos >= int64(len(s.b)) {
		return 0, io.EOF
	}
	n := copy(p, s.b[s.pos:])
	s.pos += int64(n)
	return n, nil
}

func (s *sliceReader) Seek(offset int64, whence int) (int64, error) {
	var np int64
	switch whence {
	case io.SeekStart:
		np = offset
	case io.SeekCurrent:
		np = s.pos + offset
	case io.SeekEnd:
		np = int64(len(s.b)) + offset
	default:
		return 0, errors.New("bytestream: invalid whence")
	}
	if np < 0 {
		return 0, errors.New("bytestream: negative position")
	}
	s.pos = np
	return np, nil
}
