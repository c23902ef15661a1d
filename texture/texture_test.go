package texture

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SwitchKaze/puyotools/pixel"
	"github.com/SwitchKaze/puyotools/stream"
	"github.com/SwitchKaze/puyotools/texdata"
)

func checker(w, h int) texdata.Bitmap {
	bmp := texdata.NewBitmap(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				bmp.Set(x, y, pixel.RGBA8{R: 255, G: 0, B: 0, A: 255})
			} else {
				bmp.Set(x, y, pixel.RGBA8{R: 0, G: 0, B: 255, A: 255})
			}
		}
	}
	return bmp
}

func TestSvrTruecolorRoundTrip(t *testing.T) {
	bmp := checker(4, 4)
	w := stream.NewBytes(nil)
	_, err := Encode(w, bmp, WriteOptions{
		Family:      Svr,
		PixelFormat: pixel.Argb8888,
		DataFormat:  texdata.RectTruecolor,
	})
	require.Nil(t, err)

	require.Equal(t, int64(0), mustSeek(t, w, 0))
	tex, err := Read(w)
	require.Nil(t, err)
	require.Equal(t, StateInitialized, tex.State())

	width, err := tex.Width()
	require.Nil(t, err)
	require.Equal(t, 4, width)

	out, err := tex.Decode()
	require.Nil(t, err)
	require.Equal(t, bmp.Pix, out.Pix)
}

func TestGvrIndexedRoundTripWithGlobalIndex(t *testing.T) {
	bmp := checker(8, 8)
	w := stream.NewBytes(nil)
	_, err := Encode(w, bmp, WriteOptions{
		Family:         Gvr,
		HasGlobalIndex: true,
		GlobalIndex:    42,
		PixelFormat:    pixel.Rgb5a3,
		DataFormat:     texdata.Index4Square,
	})
	require.Nil(t, err)

	mustSeek(t, w, 0)
	tex, err := Read(w)
	require.Nil(t, err)

	hasGI, err := tex.HasGlobalIndex()
	require.Nil(t, err)
	require.True(t, hasGI)
	gi, err := tex.GlobalIndex()
	require.Nil(t, err)
	require.Equal(t, uint32(42), gi)

	require.False(t, tex.NeedsExternalPalette())
	out, err := tex.Decode()
	require.Nil(t, err)
	require.Equal(t, bmp.Pix, out.Pix)
}

func TestGvrExternalPaletteRoundTrip(t *testing.T) {
	bmp := checker(5, 5) // non-square; Svr refine isn't in play here (Gvr family), so Index4Rect stays as given
	pc, err := pixel.Get(pixel.Rgb5a3)
	require.Nil(t, err)

	w := stream.NewBytes(nil)
	palette, err := Encode(w, bmp, WriteOptions{
		Family:          Gvr,
		PixelFormat:     pixel.Rgb5a3,
		DataFormat:      texdata.Index4Rect,
		ExternalPalette: true,
	})
	require.Nil(t, err)
	require.NotNil(t, palette)

	paletteFile := stream.NewBytes(nil)
	require.Nil(t, EncodePaletteFile(paletteFile, palette, pc, texdata.Index4Rect.PaletteEntries()))
	mustSeek(t, paletteFile, 0)

	mustSeek(t, w, 0)
	tex, err := Read(w)
	require.Nil(t, err)
	require.True(t, tex.NeedsExternalPalette())

	_, err = tex.Decode()
	require.NotNil(t, err)

	require.Nil(t, tex.SetPalette(paletteFile))
	require.False(t, tex.NeedsExternalPalette())

	out, err := tex.Decode()
	require.Nil(t, err)
	require.Equal(t, bmp.Pix, out.Pix)
}

func TestSvrAutoRefineSquareVsRect(t *testing.T) {
	square := checker(8, 8)
	wSquare := stream.NewBytes(nil)
	_, err := Encode(wSquare, square, WriteOptions{
		Family:      Svr,
		PixelFormat: pixel.Argb1555,
		DataFormat:  texdata.Index8Rect, // deliberately wrong shape; Svr refine should fix it
	})
	require.Nil(t, err)
	mustSeek(t, wSquare, 0)
	texSquare, err := Read(wSquare)
	require.Nil(t, err)
	dfSquare, err := texSquare.DataFormat()
	require.Nil(t, err)
	require.Equal(t, texdata.Index8Square, dfSquare)

	rect := checker(8, 4)
	wRect := stream.NewBytes(nil)
	_, err = Encode(wRect, rect, WriteOptions{
		Family:      Svr,
		PixelFormat: pixel.Argb1555,
		DataFormat:  texdata.Index8Square, // deliberately wrong shape; Svr refine should fix it
	})
	require.Nil(t, err)
	mustSeek(t, wRect, 0)
	texRect, err := Read(wRect)
	require.Nil(t, err)
	dfRect, err := texRect.DataFormat()
	require.Nil(t, err)
	require.Equal(t, texdata.Index8Rect, dfRect)
}

func TestUninitializedAccessorsFail(t *testing.T) {
	tex := &Texture{}
	_, err := tex.Width()
	require.NotNil(t, err)
}

func mustSeek(t *testing.T, s stream.Stream, off int64) int64 {
	t.Helper()
	n, err := s.Seek(off, 0)
	require.Nil(t, err)
	return n
}
