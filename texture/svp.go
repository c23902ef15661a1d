package texture

import (
	"github.com/SwitchKaze/puyotools/binio"
	"github.com/SwitchKaze/puyotools/errs"
	"github.com/SwitchKaze/puyotools/pixel"
	"github.com/SwitchKaze/puyotools/stream"
)

// decodeEmbeddedPalette reads exactly count palette entries, pixel-encoded
// with pc, from the front of p: the headerless shape a palette takes when
// it is embedded directly after a PVRT/GVRT chunk header.
func decodeEmbeddedPalette(p stream.Stream, pc pixel.Codec, count int) ([]pixel.RGBA8, error) {
	need := count * pc.BytesPerPixel()
	buf := make([]byte, need)
	if _, err := readFull(p, buf); err != nil {
		return nil, errs.ErrTruncated
	}
	return pc.DecodePalette(buf, count)
}

// encodeEmbeddedPalette writes count entries of palette (zero-padded beyond
// len(palette)), pixel-encoded with pc, to w, headerless.
func encodeEmbeddedPalette(w stream.Stream, palette []pixel.RGBA8, pc pixel.Codec, count int) error {
	_, err := w.Write(pc.EncodePalette(palette, count))
	return err
}

// decodePaletteFile reads a standalone SVP/GVP companion palette: a
// two-byte entry count followed by that many pixel-encoded entries.
func decodePaletteFile(p stream.Stream, pc pixel.Codec) ([]pixel.RGBA8, error) {
	count, err := binio.ReadU16LE(p)
	if err != nil {
		return nil, err
	}
	return decodeEmbeddedPalette(p, pc, int(count))
}

// encodePaletteFile writes a standalone SVP/GVP companion palette.
func encodePaletteFile(w stream.Stream, palette []pixel.RGBA8, pc pixel.Codec, count int) error {
	if err := binio.WriteU16LE(w, uint16(count)); err != nil {
		return err
	}
	return encodeEmbeddedPalette(w, palette, pc, count)
}

func readFull(s stream.Stream, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := s.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			break
		}
	}
	if total < len(buf) {
		return total, errs.ErrTruncated
	}
	return total, nil
}
