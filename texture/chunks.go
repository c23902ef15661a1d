package texture

import (
	"github.com/SwitchKaze/puyotools/binio"
	"github.com/SwitchKaze/puyotools/errs"
	"github.com/SwitchKaze/puyotools/pixel"
	"github.com/SwitchKaze/puyotools/stream"
)

var (
	magicGbix = []byte("GBIX")
	magicGcix = []byte("GCIX")
	magicPvrt = []byte("PVRT")
	magicGvrt = []byte("GVRT")
)

// Read parses the GBIX/GCIX + PVRT/GVRT chunk sequence from s, resolving an
// internal palette immediately if the format carries one, and leaves the
// cursor positioned so Decode can stream the pixel data. It never decodes
// pixels itself: that is Decode's job, once any external palette has been
// supplied via SetPalette.
func Read(s stream.Stream) (*Texture, error) {
	t := &Texture{}

	pos := int64(0)
	head, err := binio.PeekAt(s, 0, 4)
	if err != nil || len(head) < 4 {
		return nil, t.fail(errs.ErrTruncated)
	}

	switch {
	case bytesEqual(head, magicGbix):
		t.header = HeaderGbix
	case bytesEqual(head, magicGcix):
		t.header = HeaderGcix
	}

	if t.header != HeaderNone {
		if _, err := s.Seek(4, 0); err != nil {
			return nil, t.fail(errs.Wrapf(err, "texture: seek past global index magic"))
		}
		var length uint32
		var globalIndex uint32
		if t.header == HeaderGcix {
			length, err = binio.ReadU32BE(s)
			if err == nil {
				globalIndex, err = binio.ReadU32BE(s)
			}
		} else {
			length, err = binio.ReadU32LE(s)
			if err == nil {
				globalIndex, err = binio.ReadU32LE(s)
			}
		}
		if err != nil {
			return nil, t.fail(err)
		}
		t.hasGlobalIndex = true
		t.globalIndex = globalIndex
		pos = 4 + 4 + int64(length)
		if _, err := s.Seek(pos, 0); err != nil {
			return nil, t.fail(errs.Wrapf(err, "texture: seek to data chunk"))
		}
	}

	dataHead, err := binio.PeekAt(s, pos, 4)
	if err != nil || len(dataHead) < 4 {
		return nil, t.fail(errs.ErrTruncated)
	}

	switch {
	case bytesEqual(dataHead, magicPvrt):
		t.chunk = ChunkPvrt
		t.family = Svr
	case bytesEqual(dataHead, magicGvrt):
		t.chunk = ChunkGvrt
		t.family = Gvr
	default:
		return nil, t.fail(errs.ErrBadMagic)
	}

	if _, err := s.Seek(pos+4, 0); err != nil {
		return nil, t.fail(errs.Wrapf(err, "texture: seek past data chunk magic"))
	}

	var pixelFormatByte, dataFormatByte byte
	var width, height uint16
	externalPalette := false

	if t.family == Svr {
		if _, err := binio.ReadU32LE(s); err != nil { // body_length, unused on read
			return nil, t.fail(err)
		}
		if pixelFormatByte, err = binio.ReadU8(s); err != nil {
			return nil, t.fail(err)
		}
		if dataFormatByte, err = binio.ReadU8(s); err != nil {
			return nil, t.fail(err)
		}
		if _, err := binio.ReadU16LE(s); err != nil { // reserved
			return nil, t.fail(err)
		}
		if width, err = binio.ReadU16LE(s); err != nil {
			return nil, t.fail(err)
		}
		if height, err = binio.ReadU16LE(s); err != nil {
			return nil, t.fail(err)
		}
	} else {
		if _, err := binio.ReadU32BE(s); err != nil { // body_length, unused on read
			return nil, t.fail(err)
		}
		if _, err := binio.ReadU16BE(s); err != nil { // reserved
			return nil, t.fail(err)
		}
		pfFlags, err := binio.ReadU8(s)
		if err != nil {
			return nil, t.fail(err)
		}
		pixelFormatByte = pfFlags >> 4
		externalPalette = pfFlags&dataFlagExternalPalette != 0
		if dataFormatByte, err = binio.ReadU8(s); err != nil {
			return nil, t.fail(err)
		}
		if width, err = binio.ReadU16BE(s); err != nil {
			return nil, t.fail(err)
		}
		if height, err = binio.ReadU16BE(s); err != nil {
			return nil, t.fail(err)
		}
	}

	pixelFormat, err := byteToPixelFormat(pixelFormatByte)
	if err != nil {
		return nil, t.fail(err)
	}
	dataFormat, err := byteToDataFormat(dataFormatByte)
	if err != nil {
		return nil, t.fail(err)
	}

	t.pixelFormat = pixelFormat
	t.dataFormat = dataFormat
	t.width = int(width)
	t.height = int(height)
	t.src = s

	if dataFormat.IsIndexed() && t.family == Svr {
		externalPalette = false // PVRT/SVR always embeds its palette inline
	}

	if dataFormat.IsIndexed() && !externalPalette {
		pc, err := pixel.Get(pixelFormat)
		if err != nil {
			return nil, t.fail(err)
		}
		palette, err := decodeEmbeddedPalette(s, pc, dataFormat.PaletteEntries())
		if err != nil {
			return nil, t.fail(err)
		}
		t.palette = palette
		t.paletteInternal = true
	}

	current, err := s.Seek(0, 1)
	if err != nil {
		return nil, t.fail(errs.Wrapf(err, "texture: locate pixel data"))
	}
	t.pixelDataOff = current
	t.state = StateInitialized
	log.Debug().
		Str("pixel_format", pixelFormat.String()).
		Str("data_format", dataFormat.Name).
		Int("width", t.width).Int("height", t.height).
		Msg("texture: parsed header")
	return t, nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
