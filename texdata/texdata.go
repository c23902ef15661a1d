// Package texdata implements the data-format codecs that tile/swizzle or
// linearize raw pixel words or palette indices between bitmap order and
// on-device order. It sits directly on top of package pixel: texdata never
// interprets color bits itself, only the positions bytes occupy.
package texdata

import (
	"github.com/SwitchKaze/puyotools/errs"
	"github.com/SwitchKaze/puyotools/pixel"
)

// Layout is the on-disk arrangement of pixel words or indices.
type Layout int

const (
	// Linear stores truecolor pixel words in simple row-major order.
	Linear Layout = iota
	// SquareTiled divides the image into BlockSize x BlockSize blocks,
	// stored block-by-block in raster order, each block's contents in
	// raster order within the block.
	SquareTiled
	// RectIndexed stores palette indices in simple row-major order
	// (spec's "Rectangle" indexed layout, as opposed to SquareTiled).
	RectIndexed
)

// PaletteMode is the indexing scheme, if any, this format uses.
type PaletteMode int

const (
	NoPalette PaletteMode = iota
	Index4
	Index8
)

// Format fully describes one data format's storage shape. Predefined
// values below cover the square/rectangle x no-palette/Index4/Index8
// matrix named by the container spec; texture.go composes these with a
// pixel.Format chosen independently.
type Format struct {
	Name      string
	Layout    Layout
	Palette   PaletteMode
	BlockSize int // tile edge length for SquareTiled, 0 otherwise
}

func (f Format) PaletteEntries() int {
	switch f.Palette {
	case Index4:
		return 16
	case Index8:
		return 256
	default:
		return 0
	}
}

func (f Format) IsIndexed() bool { return f.Palette != NoPalette }

var (
	// SquareTwiddledTruecolor is the common PVR/GVR "twiddled" truecolor
	// layout: 4x4 raster blocks (block size is a pure storage convention
	// here, not a color concern).
	SquareTwiddledTruecolor = Format{Name: "SquareTwiddledTruecolor", Layout: SquareTiled, Palette: NoPalette, BlockSize: 4}
	// RectTruecolor is plain row-major truecolor storage.
	RectTruecolor = Format{Name: "RectTruecolor", Layout: Linear, Palette: NoPalette}

	Index4Square = Format{Name: "Index4Square", Layout: SquareTiled, Palette: Index4, BlockSize: 8}
	Index4Rect   = Format{Name: "Index4Rect", Layout: RectIndexed, Palette: Index4}
	Index8Square = Format{Name: "Index8Square", Layout: SquareTiled, Palette: Index8, BlockSize: 8}
	Index8Rect   = Format{Name: "Index8Rect", Layout: RectIndexed, Palette: Index8}
)

// Bitmap is a decoded truecolor image, row-major, Pix[y*Width+x].
type Bitmap struct {
	Width, Height int
	Pix           []pixel.RGBA8
}

func NewBitmap(width, height int) Bitmap {
	return Bitmap{Width: width, Height: height, Pix: make([]pixel.RGBA8, width*height)}
}

func (b Bitmap) At(x, y int) pixel.RGBA8 { return b.Pix[y*b.Width+x] }
func (b Bitmap) Set(x, y int, v pixel.RGBA8) { b.Pix[y*b.Width+x] = v }

// order returns the (x,y) visitation sequence disk bytes correspond to.
func (f Format) order(width, height int) ([][2]int, error) {
	switch f.Layout {
	case Linear, RectIndexed:
		out := make([][2]int, 0, width*height)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				out = append(out, [2]int{x, y})
			}
		}
		return out, nil
	case SquareTiled:
		n := f.BlockSize
		if n <= 0 {
			return nil, errs.Newf(errs.CodeInvalidArgument, "texdata: square format with no block size")
		}
		if width%n != 0 || height%n != 0 {
			return nil, errs.Newf(errs.CodeInvalidArgument,
				"texdata: %dx%d not a multiple of tile size %d", width, height, n)
		}
		out := make([][2]int, 0, width*height)
		for by := 0; by < height; by += n {
			for bx := 0; bx < width; bx += n {
				for y := 0; y < n; y++ {
					for x := 0; x < n; x++ {
						out = append(out, [2]int{bx + x, by + y})
					}
				}
			}
		}
		return out, nil
	default:
		return nil, errs.Newf(errs.CodeInvalidArgument, "texdata: unknown layout %d", int(f.Layout))
	}
}

// Decode turns on-disk bytes into a bitmap. For indexed formats, palette
// must already be resolved (internal or external) by the caller.
func (f Format) Decode(data []byte, width, height int, pc pixel.Codec, palette []pixel.RGBA8) (Bitmap, error) {
	order, err := f.order(width, height)
	if err != nil {
		return Bitmap{}, err
	}
	bmp := NewBitmap(width, height)

	if !f.IsIndexed() {
		bpp := pc.BytesPerPixel()
		need := len(order) * bpp
		if len(data) < need {
			return Bitmap{}, errs.ErrTruncated
		}
		for i, xy := range order {
			bmp.Set(xy[0], xy[1], pc.DecodePixel(data[i*bpp:]))
		}
		return bmp, nil
	}

	indices, err := decodeIndices(data, f.Palette, len(order))
	if err != nil {
		return Bitmap{}, err
	}
	for i, xy := range order {
		idx := int(indices[i])
		if idx >= len(palette) {
			return Bitmap{}, errs.Newf(errs.CodeInvalidArgument, "texdata: index %d out of palette range %d", idx, len(palette))
		}
		bmp.Set(xy[0], xy[1], palette[idx])
	}
	return bmp, nil
}

// Encode turns a bitmap into on-disk bytes. For indexed formats it builds
// an exact-color palette (in first-seen storage order, which for square
// tiled formats is tile by tile) and fails with
// PaletteOverflow if the bitmap uses more distinct colors than the format
// allows; the resulting palette is returned alongside the index bytes.
func (f Format) Encode(bmp Bitmap, pc pixel.Codec) (data []byte, palette []pixel.RGBA8, err error) {
	order, err := f.order(bmp.Width, bmp.Height)
	if err != nil {
		return nil, nil, err
	}

	if !f.IsIndexed() {
		out := make([]byte, 0, len(order)*pc.BytesPerPixel())
		for _, xy := range order {
			out = append(out, pc.EncodePixel(bmp.At(xy[0], xy[1]))...)
		}
		return out, nil, nil
	}

	capEntries := f.PaletteEntries()
	colorIndex := make(map[pixel.RGBA8]int)
	pal := make([]pixel.RGBA8, 0, capEntries)
	indices := make([]byte, len(order))
	for i, xy := range order {
		c := bmp.At(xy[0], xy[1])
		idx, ok := colorIndex[c]
		if !ok {
			if len(pal) >= capEntries {
				return nil, nil, errs.Newf(errs.CodePaletteOverflow,
					"texdata: bitmap uses more than %d distinct colors", capEntries)
			}
			idx = len(pal)
			colorIndex[c] = idx
			pal = append(pal, c)
		}
		indices[i] = byte(idx)
	}

	out, err := encodeIndices(indices, f.Palette)
	if err != nil {
		return nil, nil, err
	}
	return out, pal, nil
}

func decodeIndices(data []byte, mode PaletteMode, count int) ([]byte, error) {
	switch mode {
	case Index8:
		if len(data) < count {
			return nil, errs.ErrTruncated
		}
		out := make([]byte, count)
		copy(out, data[:count])
		return out, nil
	case Index4:
		need := (count + 1) / 2
		if len(data) < need {
			return nil, errs.ErrTruncated
		}
		out := make([]byte, count)
		for i := 0; i < count; i++ {
			b := data[i/2]
			if i%2 == 0 {
				out[i] = b & 0x0F
			} else {
				out[i] = (b >> 4) & 0x0F
			}
		}
		return out, nil
	default:
		return nil, errs.Newf(errs.CodeInvalidArgument, "texdata: not an indexed palette mode")
	}
}

func encodeIndices(indices []byte, mode PaletteMode) ([]byte, error) {
	switch mode {
	case Index8:
		return indices, nil
	case Index4:
		out := make([]byte, (len(indices)+1)/2)
		for i, v := range indices {
			if i%2 == 0 {
				out[i/2] |= v & 0x0F
			} else {
				out[i/2] |= (v & 0x0F) << 4
			}
		}
		return out, nil
	default:
		return nil, errs.Newf(errs.CodeInvalidArgument, "texdata: not an indexed palette mode")
	}
}
