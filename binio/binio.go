// Package binio implements the little-endian integer and fixed-width string
// helpers shared by every container and codec in this module. Every helper
// restores the caller's cursor unless its name implies advancement (Read*/
// Write* advance; Peek*/Contains* do not).
package binio

import (
	"encoding/binary"
	"io"

	"github.com/SwitchKaze/puyotools/errs"
	"github.com/SwitchKaze/puyotools/stream"
)

func ReadU8(s stream.Stream) (uint8, error) {
	var b [1]byte
	if _, err := io.ReadFull(s, b[:]); err != nil {
		return 0, truncated(err)
	}
	return b[0], nil
}

func WriteU8(s stream.Stream, v uint8) error {
	_, err := s.Write([]byte{v})
	return err
}

func ReadU16LE(s stream.Stream) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(s, b[:]); err != nil {
		return 0, truncated(err)
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func WriteU16LE(s stream.Stream, v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	_, err := s.Write(b[:])
	return err
}

func ReadU16BE(s stream.Stream) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(s, b[:]); err != nil {
		return 0, truncated(err)
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

func WriteU16BE(s stream.Stream, v uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	_, err := s.Write(b[:])
	return err
}

func ReadU32LE(s stream.Stream) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(s, b[:]); err != nil {
		return 0, truncated(err)
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func WriteU32LE(s stream.Stream, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := s.Write(b[:])
	return err
}

func ReadU32BE(s stream.Stream) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(s, b[:]); err != nil {
		return 0, truncated(err)
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func WriteU32BE(s stream.Stream, v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	_, err := s.Write(b[:])
	return err
}

func ReadI16LE(s stream.Stream) (int16, error) {
	v, err := ReadU16LE(s)
	return int16(v), err
}

func WriteI16LE(s stream.Stream, v int16) error {
	return WriteU16LE(s, uint16(v))
}

func ReadI32LE(s stream.Stream) (int32, error) {
	v, err := ReadU32LE(s)
	return int32(v), err
}

func WriteI32LE(s stream.Stream, v int32) error {
	return WriteU32LE(s, uint32(v))
}

// ReadCString reads a fixed-width field of exactly width bytes and returns
// the content up to (not including) the first NUL byte. It never reads past
// the field even if no NUL is present.
func ReadCString(s stream.Stream, width int) (string, error) {
	buf := make([]byte, width)
	if _, err := io.ReadFull(s, buf); err != nil {
		return "", truncated(err)
	}
	n := 0
	for n < width && buf[n] != 0 {
		n++
	}
	return string(buf[:n]), nil
}

// WriteCString writes v into a zero-padded fixed-width field. v is
// truncated if it does not fit in width bytes.
func WriteCString(s stream.Stream, v string, width int) error {
	buf := make([]byte, width)
	copy(buf, v)
	_, err := s.Write(buf)
	return err
}

// CopyPadded copies all of src to dst, then emits
// (block - len(src)%block) mod block bytes of padByte so the total
// written is a multiple of block.
func CopyPadded(dst stream.Stream, src []byte, block int, padByte byte) error {
	if _, err := dst.Write(src); err != nil {
		return err
	}
	if block <= 0 {
		return nil
	}
	rem := len(src) % block
	if rem == 0 {
		return nil
	}
	pad := make([]byte, block-rem)
	if padByte != 0 {
		for i := range pad {
			pad[i] = padByte
		}
	}
	_, err := dst.Write(pad)
	return err
}

// RoundUp rounds n up to the next multiple of block. block <= 1 is a no-op.
func RoundUp(n, block int64) int64 {
	if block <= 1 {
		return n
	}
	rem := n % block
	if rem == 0 {
		return n
	}
	return n + (block - rem)
}

// ContainsAt reports whether pattern appears at the given absolute offset
// in s, without disturbing the caller's cursor.
func ContainsAt(s stream.Stream, offset int64, pattern []byte) bool {
	buf := make([]byte, len(pattern))
	n, err := s.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return false
	}
	if n < len(pattern) {
		return false
	}
	for i := range pattern {
		if buf[i] != pattern[i] {
			return false
		}
	}
	return true
}

// PeekAt reads n bytes at offset without disturbing the caller's cursor,
// used by format probes.
func PeekAt(s stream.Stream, offset int64, n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := s.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return buf[:read], nil
}

func truncated(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errs.ErrTruncated
	}
	return errs.Wrapf(err, "binio: read")
}
