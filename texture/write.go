package texture

import (
	"github.com/SwitchKaze/puyotools/binio"
	"github.com/SwitchKaze/puyotools/errs"
	"github.com/SwitchKaze/puyotools/pixel"
	"github.com/SwitchKaze/puyotools/stream"
	"github.com/SwitchKaze/puyotools/texdata"
)

// WriteOptions picks everything about a new container that isn't implied
// by the bitmap: the header family and optional global index, the pixel
// codec, and the data layout. For indexed formats in the Svr family, the
// Square/Rect choice is auto-refined from the bitmap's dimensions rather
// than taken from DataFormat, mirroring the real SVR encoder's habit of
// picking the tiled variant only for square textures.
type WriteOptions struct {
	Family         Family
	HasGlobalIndex bool
	GlobalIndex    uint32
	PixelFormat    pixel.Format
	DataFormat     texdata.Format

	// ExternalPalette requests that an indexed format's palette not be
	// embedded in the chunk; the caller writes it separately (see
	// EncodePaletteFile) and the GVRT low nibble records the flag. Svr
	// family textures always embed their palette and ignore this.
	ExternalPalette bool
}

func refineSvrLayout(df texdata.Format, width, height int) texdata.Format {
	if !df.IsIndexed() {
		return df
	}
	square := width == height
	switch df.Palette {
	case texdata.Index4:
		if square {
			return texdata.Index4Square
		}
		return texdata.Index4Rect
	case texdata.Index8:
		if square {
			return texdata.Index8Square
		}
		return texdata.Index8Rect
	default:
		return df
	}
}

// Encode writes bmp as a full GBIX/GCIX + PVRT/GVRT container to w per
// opts, and returns the palette it built (for indexed formats) so the
// caller can write it to a companion file when ExternalPalette is set.
func Encode(w stream.Stream, bmp texdata.Bitmap, opts WriteOptions) ([]pixel.RGBA8, error) {
	pc, err := pixel.Get(opts.PixelFormat)
	if err != nil {
		return nil, err
	}
	if !pc.CanEncode() {
		return nil, errs.Newf(errs.CodeUnsupportedPixelFormat, "texture: %s cannot encode", opts.PixelFormat)
	}

	df := opts.DataFormat
	if opts.Family == Svr {
		df = refineSvrLayout(df, bmp.Width, bmp.Height)
	}

	data, palette, err := df.Encode(bmp, pc)
	if err != nil {
		return nil, err
	}

	externalPalette := opts.ExternalPalette && opts.Family == Gvr && df.IsIndexed()

	pixelFormatByte, err := pixelFormatToByte(opts.PixelFormat)
	if err != nil {
		return nil, err
	}
	dataFormatByte, err := dataFormatToByte(df)
	if err != nil {
		return nil, err
	}

	var paletteBytes []byte
	if df.IsIndexed() && !externalPalette {
		paletteBytes = pc.EncodePalette(palette, df.PaletteEntries())
	}

	if opts.HasGlobalIndex {
		if err := writeGlobalIndexChunk(w, opts.Family, opts.GlobalIndex); err != nil {
			return nil, err
		}
	}

	bodyLen := uint32(8 + len(paletteBytes) + len(data))

	if opts.Family == Svr {
		if _, err := w.Write([]byte("PVRT")); err != nil {
			return nil, err
		}
		if err := binio.WriteU32LE(w, bodyLen); err != nil {
			return nil, err
		}
		if err := binio.WriteU8(w, pixelFormatByte); err != nil {
			return nil, err
		}
		if err := binio.WriteU8(w, dataFormatByte); err != nil {
			return nil, err
		}
		if err := binio.WriteU16LE(w, 0); err != nil {
			return nil, err
		}
		if err := binio.WriteU16LE(w, uint16(bmp.Width)); err != nil {
			return nil, err
		}
		if err := binio.WriteU16LE(w, uint16(bmp.Height)); err != nil {
			return nil, err
		}
	} else {
		if _, err := w.Write([]byte("GVRT")); err != nil {
			return nil, err
		}
		if err := binio.WriteU32BE(w, bodyLen); err != nil {
			return nil, err
		}
		if err := binio.WriteU16BE(w, 0); err != nil {
			return nil, err
		}
		pfFlags := pixelFormatByte << 4
		if externalPalette {
			pfFlags |= dataFlagExternalPalette
		}
		if err := binio.WriteU8(w, pfFlags); err != nil {
			return nil, err
		}
		if err := binio.WriteU8(w, dataFormatByte); err != nil {
			return nil, err
		}
		if err := binio.WriteU16BE(w, uint16(bmp.Width)); err != nil {
			return nil, err
		}
		if err := binio.WriteU16BE(w, uint16(bmp.Height)); err != nil {
			return nil, err
		}
	}

	if len(paletteBytes) > 0 {
		if _, err := w.Write(paletteBytes); err != nil {
			return nil, err
		}
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}

	log.Debug().
		Str("pixel_format", opts.PixelFormat.String()).
		Str("data_format", df.Name).
		Int("width", bmp.Width).Int("height", bmp.Height).
		Bool("external_palette", externalPalette).
		Msg("texture: encoded")

	return palette, nil
}

func writeGlobalIndexChunk(w stream.Stream, family Family, globalIndex uint32) error {
	if family == Gvr {
		if _, err := w.Write([]byte("GCIX")); err != nil {
			return err
		}
		if err := binio.WriteU32BE(w, 8); err != nil {
			return err
		}
		if err := binio.WriteU32BE(w, globalIndex); err != nil {
			return err
		}
		return binio.WriteU32BE(w, 0)
	}
	if _, err := w.Write([]byte("GBIX")); err != nil {
		return err
	}
	if err := binio.WriteU32LE(w, 8); err != nil {
		return err
	}
	if err := binio.WriteU32LE(w, globalIndex); err != nil {
		return err
	}
	return binio.WriteU32LE(w, 0)
}

// EncodePaletteFile writes a standalone SVP/GVP companion palette (the
// counterpart to SetPalette): a two-byte entry count followed by count
// entries, pixel-encoded with pc.
func EncodePaletteFile(w stream.Stream, palette []pixel.RGBA8, pc pixel.Codec, count int) error {
	return encodePaletteFile(w, palette, pc, count)
}

// DecodePaletteFile reads a standalone SVP/GVP companion palette, the
// counterpart to EncodePaletteFile.
func DecodePaletteFile(p stream.Stream, pc pixel.Codec) ([]pixel.RGBA8, error) {
	return decodePaletteFile(p, pc)
}
