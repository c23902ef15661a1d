// Package texture implements the GBIX/GCIX + PVRT/GVRT texture container:
// parsing and emitting the chunk wrappers, and orchestrating the pixel
// codec (package pixel) and data codec (package texdata) across both the
// internal-palette and external-palette-file cases. It mirrors the
// staged muxer/demuxer pairing of the teacher's media/container/flv
// package, generalized from a streamed FLV tag sequence to a single-shot
// chunked container, and media/av/avutil.HandlerMuxer's small integer
// "stage" field becomes this package's explicit State machine.
package texture

import (
	"github.com/SwitchKaze/puyotools/errs"
	"github.com/SwitchKaze/puyotools/obslog"
	"github.com/SwitchKaze/puyotools/pixel"
	"github.com/SwitchKaze/puyotools/stream"
	"github.com/SwitchKaze/puyotools/texdata"
)

var log = obslog.For("texture")

// Family distinguishes the two header/endianness conventions named by the
// data model: Gvr (GameCube, big-endian dimensions) and Svr/Pvr
// (Dreamcast/PS2 era, little-endian dimensions).
type Family int

const (
	Gvr Family = iota
	Svr
)

// HeaderVariant is the optional global-index chunk preceding the data chunk.
type HeaderVariant int

const (
	HeaderNone HeaderVariant = iota
	HeaderGbix
	HeaderGcix
)

// ChunkType is the data chunk's own magic.
type ChunkType int

const (
	ChunkPvrt ChunkType = iota
	ChunkGvrt
)

// State is the texture handle's lifecycle: Uninitialized -> Initialized ->
// {Decoded|Failed}. Encode writes a container without creating a handle, so
// StateEncoded is declared but no handle ever enters it.
type State int

const (
	StateUninitialized State = iota
	StateInitialized
	StateDecoded
	StateEncoded
	StateFailed
)

// Texture is a parsed (or about-to-be-written) container handle.
type Texture struct {
	state State

	family Family
	header HeaderVariant
	chunk  ChunkType

	hasGlobalIndex bool
	globalIndex    uint32

	width, height int
	pixelFormat   pixel.Format
	dataFormat    texdata.Format

	paletteInternal bool
	palette         []pixel.RGBA8

	pixelDataOff int64
	src          stream.Stream

	bitmap texdata.Bitmap
	err    error
}

func (t *Texture) fail(err error) error {
	t.state = StateFailed
	t.err = err
	return err
}

func (t *Texture) requireInitialized() error {
	if t.state == StateUninitialized {
		return errs.ErrNotInitialized
	}
	return nil
}

func (t *Texture) HasGlobalIndex() (bool, error) {
	if err := t.requireInitialized(); err != nil {
		return false, err
	}
	return t.hasGlobalIndex, nil
}

func (t *Texture) GlobalIndex() (uint32, error) {
	if err := t.requireInitialized(); err != nil {
		return 0, err
	}
	return t.globalIndex, nil
}

func (t *Texture) Width() (int, error) {
	if err := t.requireInitialized(); err != nil {
		return 0, err
	}
	return t.width, nil
}

func (t *Texture) Height() (int, error) {
	if err := t.requireInitialized(); err != nil {
		return 0, err
	}
	return t.height, nil
}

func (t *Texture) PixelFormat() (pixel.Format, error) {
	if err := t.requireInitialized(); err != nil {
		return 0, err
	}
	return t.pixelFormat, nil
}

func (t *Texture) DataFormat() (texdata.Format, error) {
	if err := t.requireInitialized(); err != nil {
		return texdata.Format{}, err
	}
	return t.dataFormat, nil
}

func (t *Texture) State() State { return t.state }

// NeedsExternalPalette reports whether Decode will fail with
// NeedsExternalPalette until SetPalette is called: the format is indexed
// and no internal palette was present in the chunk.
func (t *Texture) NeedsExternalPalette() bool {
	return t.state == StateInitialized && t.dataFormat.IsIndexed() && t.palette == nil
}

// SetPalette reads a companion SVP/GVP palette file (a two-byte entry
// count followed by that many pixel-encoded entries) from p, and
// relinquishes p: the contract is read-once, the same "caller-owned
// handle, treated as read-once for decode" resource rule the spec applies
// to every palette stream.
func (t *Texture) SetPalette(p stream.Stream) error {
	if err := t.requireInitialized(); err != nil {
		return err
	}
	pc, err := pixel.Get(t.pixelFormat)
	if err != nil {
		return t.fail(err)
	}
	palette, err := decodePaletteFile(p, pc)
	if err != nil {
		return t.fail(err)
	}
	if want := t.dataFormat.PaletteEntries(); len(palette) != want {
		return t.fail(errs.Newf(errs.CodeInvalidArgument,
			"texture: palette file has %d entries, format needs %d", len(palette), want))
	}
	t.palette = palette
	return nil
}

// Decode runs the data codec against the resolved pixel data and (for
// indexed formats) palette, producing the bitmap. It requires the texture
// to be Initialized; on success the state becomes Decoded.
func (t *Texture) Decode() (texdata.Bitmap, error) {
	if err := t.requireInitialized(); err != nil {
		return texdata.Bitmap{}, err
	}
	if t.dataFormat.IsIndexed() && t.palette == nil {
		return texdata.Bitmap{}, errs.ErrNeedsExternalPalette
	}

	pc, err := pixel.Get(t.pixelFormat)
	if err != nil {
		return texdata.Bitmap{}, t.fail(err)
	}

	if _, err := t.src.Seek(t.pixelDataOff, 0); err != nil {
		return texdata.Bitmap{}, t.fail(errs.Wrapf(err, "texture: seek to pixel data"))
	}
	data, err := stream.ReadAll(t.src)
	if err != nil {
		return texdata.Bitmap{}, t.fail(errs.ErrTruncated)
	}

	bmp, err := t.dataFormat.Decode(data, t.width, t.height, pc, t.palette)
	if err != nil {
		return texdata.Bitmap{}, t.fail(err)
	}

	t.bitmap = bmp
	t.state = StateDecoded
	log.Debug().Int("width", t.width).Int("height", t.height).Str("pixel_format", t.pixelFormat.String()).Msg("texture: decoded")
	return bmp, nil
}
