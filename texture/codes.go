package texture

import (
	"github.com/SwitchKaze/puyotools/errs"
	"github.com/SwitchKaze/puyotools/pixel"
	"github.com/SwitchKaze/puyotools/texdata"
)

// On-disk byte codes for pixel_format and data_format. The spec names the
// enum members but not their numeric encodings, so these are this
// implementation's own assignment (iota-sequential, stable once written),
// not a claim of bit-compatibility with any particular existing file.

const (
	pfArgb1555 byte = iota
	pfRgb565
	pfArgb4444
	pfRgb5a3
	pfArgb8888
)

func pixelFormatToByte(f pixel.Format) (byte, error) {
	switch f {
	case pixel.Argb1555:
		return pfArgb1555, nil
	case pixel.Rgb565:
		return pfRgb565, nil
	case pixel.Argb4444:
		return pfArgb4444, nil
	case pixel.Rgb5a3:
		return pfRgb5a3, nil
	case pixel.Argb8888:
		return pfArgb8888, nil
	default:
		return 0, errs.Newf(errs.CodeUnsupportedPixelFormat, "texture: unsupported pixel format %d", int(f))
	}
}

func byteToPixelFormat(b byte) (pixel.Format, error) {
	switch b {
	case pfArgb1555:
		return pixel.Argb1555, nil
	case pfRgb565:
		return pixel.Rgb565, nil
	case pfArgb4444:
		return pixel.Argb4444, nil
	case pfRgb5a3:
		return pixel.Rgb5a3, nil
	case pfArgb8888:
		return pixel.Argb8888, nil
	default:
		return 0, errs.Newf(errs.CodeUnsupportedPixelFormat, "texture: unrecognized pixel_format byte 0x%02x", b)
	}
}

const (
	dfSquareTwiddledTruecolor byte = iota
	dfRectTruecolor
	dfIndex4Square
	dfIndex4Rect
	dfIndex8Square
	dfIndex8Rect
)

func dataFormatToByte(f texdata.Format) (byte, error) {
	switch f {
	case texdata.SquareTwiddledTruecolor:
		return dfSquareTwiddledTruecolor, nil
	case texdata.RectTruecolor:
		return dfRectTruecolor, nil
	case texdata.Index4Square:
		return dfIndex4Square, nil
	case texdata.Index4Rect:
		return dfIndex4Rect, nil
	case texdata.Index8Square:
		return dfIndex8Square, nil
	case texdata.Index8Rect:
		return dfIndex8Rect, nil
	default:
		return 0, errs.Newf(errs.CodeUnsupportedDataFormat, "texture: unsupported data format %q", f.Name)
	}
}

func byteToDataFormat(b byte) (texdata.Format, error) {
	switch b {
	case dfSquareTwiddledTruecolor:
		return texdata.SquareTwiddledTruecolor, nil
	case dfRectTruecolor:
		return texdata.RectTruecolor, nil
	case dfIndex4Square:
		return texdata.Index4Square, nil
	case dfIndex4Rect:
		return texdata.Index4Rect, nil
	case dfIndex8Square:
		return texdata.Index8Square, nil
	case dfIndex8Rect:
		return texdata.Index8Rect, nil
	default:
		return texdata.Format{}, errs.Newf(errs.CodeUnsupportedDataFormat, "texture: unrecognized data_format byte 0x%02x", b)
	}
}

// dataFlagExternalPalette marks, in GVRT's low nibble, that the palette for
// an indexed texture is not embedded in this chunk. Modeled on the real GVR
// format's use of that nibble for out-of-band flags (mipmaps being the
// other well-known one, which this toolkit does not implement).
const dataFlagExternalPalette = 0x1
