package texdata

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SwitchKaze/puyotools/errs"
	"github.com/SwitchKaze/puyotools/pixel"
)

func solidBitmap(w, h int, c pixel.RGBA8) Bitmap {
	bmp := NewBitmap(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			bmp.Set(x, y, c)
		}
	}
	return bmp
}

func TestTruecolorRoundTripLinear(t *testing.T) {
	pc, err := pixel.Get(pixel.Argb8888)
	require.Nil(t, err)
	bmp := solidBitmap(4, 4, pixel.RGBA8{R: 10, G: 20, B: 30, A: 255})
	data, pal, err := RectTruecolor.Encode(bmp, pc)
	require.Nil(t, err)
	require.Nil(t, pal)
	require.Equal(t, 4*4*4, len(data))

	out, err := RectTruecolor.Decode(data, 4, 4, pc, nil)
	require.Nil(t, err)
	require.Equal(t, bmp.Pix, out.Pix)
}

func TestTruecolorRoundTripSquareTiled(t *testing.T) {
	pc, err := pixel.Get(pixel.Rgb565)
	require.Nil(t, err)
	bmp := NewBitmap(8, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			bmp.Set(x, y, pixel.RGBA8{R: uint8(x * 20), G: uint8(y * 20), B: 100, A: 255})
		}
	}
	// round through the codec's own channel reduction first, since RGB565
	// is lossy and the invariant is decode(encode(x))==x only up to that.
	reduced := NewBitmap(8, 8)
	for i, p := range bmp.Pix {
		reduced.Pix[i] = pc.DecodePixel(pc.EncodePixel(p))
	}

	data, _, err := SquareTwiddledTruecolor.Encode(reduced, pc)
	require.Nil(t, err)
	out, err := SquareTwiddledTruecolor.Decode(data, 8, 8, pc, nil)
	require.Nil(t, err)
	require.Equal(t, reduced.Pix, out.Pix)
}

func TestIndexedRoundTrip(t *testing.T) {
	pc, err := pixel.Get(pixel.Rgb5a3)
	require.Nil(t, err)
	bmp := NewBitmap(4, 4)
	colors := []pixel.RGBA8{
		{R: 255, A: 255}, {G: 255, A: 255}, {B: 255, A: 255},
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			bmp.Set(x, y, colors[(x+y)%len(colors)])
		}
	}

	data, pal, err := Index4Rect.Encode(bmp, pc)
	require.Nil(t, err)
	require.LessOrEqual(t, len(pal), Index4Rect.PaletteEntries())

	out, err := Index4Rect.Decode(data, 4, 4, pc, pal)
	require.Nil(t, err)
	require.Equal(t, bmp.Pix, out.Pix)
}

func TestPaletteOverflow(t *testing.T) {
	pc, err := pixel.Get(pixel.Argb8888)
	require.Nil(t, err)
	bmp := NewBitmap(5, 5)
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			bmp.Set(x, y, pixel.RGBA8{R: uint8(x), G: uint8(y), B: 0, A: 255})
		}
	}
	_, _, err = Index4Rect.Encode(bmp, pc)
	require.NotNil(t, err)
	require.Equal(t, int32(errs.CodePaletteOverflow), errs.Code(err))
}
