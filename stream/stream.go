// Package stream defines the forward-and-seekable byte stream abstraction
// every codec and container package in this module reads and writes
// through, plus the sub-stream machinery that lets a handler operate on an
// embedded region of a larger container without knowing it is embedded.
package stream

import (
	"bytes"
	"io"

	"github.com/SwitchKaze/puyotools/errs"
)

// Stream is the minimal surface every handler needs: sequential read/write,
// absolute and relative seeking, and a known length. All offsets accepted
// and returned by this package are relative to the stream's own origin
// (see SubStream), not necessarily the origin of whatever backs it.
type Stream interface {
	io.Reader
	io.Writer
	io.Seeker
	io.ReaderAt

	// Len returns the total number of bytes in the stream.
	Len() int64
	// Pos returns the current cursor position, equivalent to Seek(0, io.SeekCurrent)
	// but guaranteed not to fail.
	Pos() int64
}

// NewBytes wraps an in-memory byte slice as a growable Stream. Reads see the
// initial contents; writes past the current length grow the buffer, mirroring
// the semantics a caller gets from a backing temp file.
func NewBytes(b []byte) Stream {
	buf := make([]byte, len(b))
	copy(buf, b)
	return &memStream{buf: buf}
}

// NewFile wraps an io.ReadWriteSeeker (typically *os.File) as a Stream.
func NewFile(rw io.ReadWriteSeeker) (Stream, error) {
	cur, err := rw.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, errs.Wrapf(err, "stream: determine current offset")
	}
	end, err := rw.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, errs.Wrapf(err, "stream: determine length")
	}
	if _, err := rw.Seek(cur, io.SeekStart); err != nil {
		return nil, errs.Wrapf(err, "stream: restore offset")
	}
	return &fileStream{rw: rw, length: end}, nil
}

type memStream struct {
	buf  []byte
	pos  int64
}

func (m *memStream) Len() int64 { return int64(len(m.buf)) }
func (m *memStream) Pos() int64 { return m.pos }

func (m *memStream) Read(p []byte) (int, error) {
	if m.pos >= int64(len(m.buf)) {
		return 0, io.EOF
	}
	n := copy(p, m.buf[m.pos:])
	m.pos += int64(n)
	return n, nil
}

func (m *memStream) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errs.Newf(errs.CodeInvalidArgument, "stream: negative offset %d", off)
	}
	if off >= int64(len(m.buf)) {
		return 0, io.EOF
	}
	n := copy(p, m.buf[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *memStream) Write(p []byte) (int, error) {
	end := m.pos + int64(len(p))
	if end > int64(len(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	n := copy(m.buf[m.pos:end], p)
	m.pos = end
	return n, nil
}

func (m *memStream) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = m.pos
	case io.SeekEnd:
		base = int64(len(m.buf))
	default:
		return 0, errs.Newf(errs.CodeInvalidArgument, "stream: unknown whence %d", whence)
	}
	newPos := base + offset
	if newPos < 0 {
		return 0, errs.Newf(errs.CodeInvalidArgument, "stream: seek before start")
	}
	m.pos = newPos
	return newPos, nil
}

// Bytes returns the current backing contents. The returned slice aliases
// the stream's internal buffer and must not be mutated by the caller.
func (m *memStream) Bytes() []byte { return m.buf }

type fileStream struct {
	rw     io.ReadWriteSeeker
	length int64
}

func (f *fileStream) Len() int64 { return f.length }

func (f *fileStream) Pos() int64 {
	p, _ := f.rw.Seek(0, io.SeekCurrent)
	return p
}

func (f *fileStream) Read(p []byte) (int, error)  { return f.rw.Read(p) }
func (f *fileStream) Write(p []byte) (int, error) {
	n, err := f.rw.Write(p)
	if end := f.Pos(); end > f.length {
		f.length = end
	}
	return n, err
}

func (f *fileStream) Seek(offset int64, whence int) (int64, error) {
	return f.rw.Seek(offset, whence)
}

func (f *fileStream) ReadAt(p []byte, off int64) (int, error) {
	ra, ok := f.rw.(io.ReaderAt)
	if ok {
		return ra.ReadAt(p, off)
	}
	cur := f.Pos()
	defer f.rw.Seek(cur, io.SeekStart)
	if _, err := f.rw.Seek(off, io.SeekStart); err != nil {
		return 0, err
	}
	return io.ReadFull(f.rw, p)
}

// SubStream presents a window [base, base+length) of a parent Stream as an
// independent Stream whose own offset 0 maps to the parent's base. This is
// the "archiveOffset snapshot taken at open time" of the data model: a
// texture or PRS handler embedded inside an AFS entry gets a SubStream and
// never has to know it isn't the whole file.
type SubStream struct {
	parent Stream
	base   int64
	length int64
	pos    int64
}

func NewSubStream(parent Stream, base, length int64) *SubStream {
	return &SubStream{parent: parent, base: base, length: length}
}

func (s *SubStream) Len() int64 { return s.length }
func (s *SubStream) Pos() int64 { return s.pos }

func (s *SubStream) Read(p []byte) (int, error) {
	if s.pos >= s.length {
		return 0, io.EOF
	}
	max := s.length - s.pos
	if int64(len(p)) > max {
		p = p[:max]
	}
	n, err := s.parent.ReadAt(p, s.base+s.pos)
	s.pos += int64(n)
	return n, err
}

func (s *SubStream) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= s.length {
		return 0, io.EOF
	}
	max := s.length - off
	if int64(len(p)) > max {
		p = p[:max]
	}
	return s.parent.ReadAt(p, s.base+off)
}

func (s *SubStream) Write(p []byte) (int, error) {
	if _, err := s.parent.Seek(s.base+s.pos, io.SeekStart); err != nil {
		return 0, err
	}
	n, err := s.parent.Write(p)
	s.pos += int64(n)
	if s.pos > s.length {
		s.length = s.pos
	}
	return n, err
}

func (s *SubStream) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = s.pos
	case io.SeekEnd:
		base = s.length
	default:
		return 0, errs.Newf(errs.CodeInvalidArgument, "stream: unknown whence %d", whence)
	}
	newPos := base + offset
	if newPos < 0 {
		return 0, errs.Newf(errs.CodeInvalidArgument, "stream: seek before start")
	}
	s.pos = newPos
	return newPos, nil
}

// ReadAll drains s from its current position to end, restoring nothing (the
// cursor ends at Len()).
func ReadAll(s Stream) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
