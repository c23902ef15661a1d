// Package prs implements the PRS LZ compression codec described by the
// texture/archive pipeline: a headerless bitstream of literal and
// back-reference ("copy") instructions selected by a flag bit reservoir,
// terminated by a long-copy end-of-stream marker. It has no container
// framing of its own, mirroring media/codec/h264parser's bare NALU parsing
// in the teacher codebase: manual bit-level field extraction, explicit
// failure returns, no hidden allocation tricks.
package prs

import (
	"bufio"
	"io"

	"github.com/SwitchKaze/puyotools/errs"
	"github.com/SwitchKaze/puyotools/obslog"
)

var log = obslog.For("prs")

const (
	windowSize   = 8192
	maxShortLen  = 5
	maxLongLen   = 256
	shortOffMin  = -256
)

// Decode reads a PRS bitstream from src until it reaches the end-of-stream
// marker and returns the decompressed bytes. It is streaming: src need not
// have a known total length, and Decode stops as soon as the EOS marker is
// read rather than requiring io.EOF.
func Decode(src io.Reader) ([]byte, error) {
	br, ok := src.(io.ByteReader)
	var rdr io.ByteReader
	if ok {
		rdr = br
	} else {
		rdr = bufio.NewReader(src)
	}

	res := &bitReservoir{r: rdr}
	out := make([]byte, 0, 256)

	for {
		flag, err := res.next()
		if err != nil {
			return nil, err
		}

		if flag == 1 {
			b, err := rdr.ReadByte()
			if err != nil {
				return nil, truncated(err)
			}
			out = append(out, b)
			continue
		}

		second, err := res.next()
		if err != nil {
			return nil, err
		}

		if second == 0 {
			// short copy
			l1, err := res.next()
			if err != nil {
				return nil, err
			}
			l2, err := res.next()
			if err != nil {
				return nil, err
			}
			length := int((l1<<1)|l2) + 2

			offByte, err := rdr.ReadByte()
			if err != nil {
				return nil, truncated(err)
			}
			offset := int(int32(offByte) | int32(-256))

			out, err = applyCopy(out, offset, length)
			if err != nil {
				return nil, err
			}
			continue
		}

		// long copy
		lo, err := rdr.ReadByte()
		if err != nil {
			return nil, truncated(err)
		}
		hi, err := rdr.ReadByte()
		if err != nil {
			return nil, truncated(err)
		}
		w := uint16(lo) | uint16(hi)<<8
		lengthField := w & 7
		offset := int(int32(int16(w>>3)) | int32(-8192))
		if lengthField != 0 {
			length := int(lengthField) + 2
			out, err = applyCopy(out, offset, length)
			if err != nil {
				return nil, err
			}
			continue
		}

		b, err := rdr.ReadByte()
		if err != nil {
			return nil, truncated(err)
		}
		if b == 0 {
			log.Debug().Int("decoded_len", len(out)).Msg("prs: eos")
			return out, nil
		}
		length := int(b) + 1
		out, err = applyCopy(out, offset, length)
		if err != nil {
			return nil, err
		}
	}
}

func applyCopy(out []byte, offset, length int) ([]byte, error) {
	srcPos := len(out) + offset
	if srcPos < 0 {
		return nil, errs.ErrInvalidBackref
	}
	for i := 0; i < length; i++ {
		out = append(out, out[srcPos+i])
	}
	return out, nil
}

func truncated(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errs.ErrTruncated
	}
	return errs.Wrapf(err, "prs: read")
}

// bitReservoir pulls MSB-first flag bits from a byte stream, refilling from
// a fresh byte every 8 flags.
type bitReservoir struct {
	r       io.ByteReader
	cur     byte
	nbits   uint
}

func (b *bitReservoir) next() (byte, error) {
	if b.nbits == 0 {
		c, err := b.r.ReadByte()
		if err != nil {
			return 0, truncated(err)
		}
		b.cur = c
		b.nbits = 8
	}
	bit := (b.cur >> 7) & 1
	b.cur <<= 1
	b.nbits--
	return bit, nil
}
