// Package pixel implements per-pixel-format color codecs: the device color
// words (RGB565, ARGB1555, ARGB4444, RGB5A3, ARGB8888, ...) that a data
// codec (package texdata) arranges into tiled or linear bitmaps. Each
// format is a constant entry in a compile-time table, the same
// value-table-over-interface-method approach the format registry uses for
// container handlers, scaled down to a dense enum key.
package pixel

import (
	"github.com/SwitchKaze/puyotools/errs"
)

// RGBA8 is a fully expanded 8-bit-per-channel color, the bitmap's native
// representation regardless of the on-device pixel format.
type RGBA8 struct {
	R, G, B, A uint8
}

// Format identifies a device pixel layout.
type Format int

const (
	Argb1555 Format = iota
	Rgb565
	Argb4444
	Rgb5a3
	Argb8888
)

func (f Format) String() string {
	if c, ok := table[f]; ok {
		return c.name
	}
	return "unknown"
}

// Codec is a value-table entry: pure functions over byte slices, no
// internal state, safe to share across goroutines.
type Codec struct {
	name          string
	bytesPerPixel int
	canDecode     bool
	canEncode     bool
	decode        func([]byte) RGBA8
	encode        func(RGBA8) []byte
}

func (c Codec) Name() string        { return c.name }
func (c Codec) BytesPerPixel() int  { return c.bytesPerPixel }
func (c Codec) CanDecode() bool     { return c.canDecode }
func (c Codec) CanEncode() bool     { return c.canEncode }

// DecodePixel decodes a single pixel's raw bytes (len >= BytesPerPixel())
// starting at index 0.
func (c Codec) DecodePixel(b []byte) RGBA8 { return c.decode(b) }

// EncodePixel encodes one color to its raw byte representation.
func (c Codec) EncodePixel(v RGBA8) []byte { return c.encode(v) }

// DecodePalette decodes count consecutive palette entries from b.
func (c Codec) DecodePalette(b []byte, count int) ([]RGBA8, error) {
	need := count * c.bytesPerPixel
	if len(b) < need {
		return nil, errs.ErrTruncated
	}
	out := make([]RGBA8, count)
	for i := 0; i < count; i++ {
		out[i] = c.decode(b[i*c.bytesPerPixel:])
	}
	return out, nil
}

// EncodePalette encodes up to count palette entries (zero-filled beyond
// len(palette)) into a contiguous byte slice.
func (c Codec) EncodePalette(palette []RGBA8, count int) []byte {
	out := make([]byte, 0, count*c.bytesPerPixel)
	for i := 0; i < count; i++ {
		var v RGBA8
		if i < len(palette) {
			v = palette[i]
		}
		out = append(out, c.encode(v)...)
	}
	return out
}

var table = map[Format]Codec{
	Argb1555: {
		name: "ARGB1555", bytesPerPixel: 2, canDecode: true, canEncode: true,
		decode: decodeArgb1555, encode: encodeArgb1555,
	},
	Rgb565: {
		name: "RGB565", bytesPerPixel: 2, canDecode: true, canEncode: true,
		decode: decodeRgb565, encode: encodeRgb565,
	},
	Argb4444: {
		name: "ARGB4444", bytesPerPixel: 2, canDecode: true, canEncode: true,
		decode: decodeArgb4444, encode: encodeArgb4444,
	},
	Rgb5a3: {
		name: "RGB5A3", bytesPerPixel: 2, canDecode: true, canEncode: true,
		decode: decodeRgb5a3, encode: encodeRgb5a3,
	},
	Argb8888: {
		name: "ARGB8888", bytesPerPixel: 4, canDecode: true, canEncode: true,
		decode: decodeArgb8888, encode: encodeArgb8888,
	},
}

// Get looks up the codec for f. Unknown formats surface as
// UnsupportedPixelFormat rather than a zero-value Codec.
func Get(f Format) (Codec, error) {
	c, ok := table[f]
	if !ok {
		return Codec{}, errs.Newf(errs.CodeUnsupportedPixelFormat, "pixel: unsupported format %d", int(f))
	}
	return c, nil
}

// expand5 widens a 5-bit channel to 8 bits: (v<<3)|(v>>2).
func expand5(v uint8) uint8 { return (v << 3) | (v >> 2) }

// expand6 widens a 6-bit channel to 8 bits: (v<<2)|(v>>4).
func expand6(v uint8) uint8 { return (v << 2) | (v >> 4) }

// expand4 widens a 4-bit channel to 8 bits: (v<<4)|v.
func expand4(v uint8) uint8 { return (v << 4) | v }

// expand3 widens a 3-bit channel (RGB5A3's translucent alpha) to 8 bits by
// bit replication. The spec's (v<<(8-N))|(v>>(2N-8)) formula is undefined
// for N<4 (2N-8 goes negative); replication is the conventional extension
// used by every GameCube-family decoder for this one 3-bit field.
func expand3(v uint8) uint8 { return (v << 5) | (v << 2) | (v >> 1) }

func narrow(v uint8, bits int) uint8 { return v >> uint(8-bits) }

func decodeArgb1555(b []byte) RGBA8 {
	v := uint16(b[0]) | uint16(b[1])<<8
	a := uint8(0)
	if v&0x8000 != 0 {
		a = 0xFF
	}
	r := expand5(uint8((v >> 10) & 0x1F))
	g := expand5(uint8((v >> 5) & 0x1F))
	bl := expand5(uint8(v & 0x1F))
	return RGBA8{R: r, G: g, B: bl, A: a}
}

func encodeArgb1555(c RGBA8) []byte {
	var v uint16
	if c.A >= 0x80 {
		v |= 0x8000
	}
	v |= uint16(narrow(c.R, 5)) << 10
	v |= uint16(narrow(c.G, 5)) << 5
	v |= uint16(narrow(c.B, 5))
	return []byte{byte(v), byte(v >> 8)}
}

func decodeRgb565(b []byte) RGBA8 {
	v := uint16(b[0]) | uint16(b[1])<<8
	r := expand5(uint8((v >> 11) & 0x1F))
	g := expand6(uint8((v >> 5) & 0x3F))
	bl := expand5(uint8(v & 0x1F))
	return RGBA8{R: r, G: g, B: bl, A: 0xFF}
}

func encodeRgb565(c RGBA8) []byte {
	var v uint16
	v |= uint16(narrow(c.R, 5)) << 11
	v |= uint16(narrow(c.G, 6)) << 5
	v |= uint16(narrow(c.B, 5))
	return []byte{byte(v), byte(v >> 8)}
}

func decodeArgb4444(b []byte) RGBA8 {
	v := uint16(b[0]) | uint16(b[1])<<8
	a := expand4(uint8((v >> 12) & 0xF))
	r := expand4(uint8((v >> 8) & 0xF))
	g := expand4(uint8((v >> 4) & 0xF))
	bl := expand4(uint8(v & 0xF))
	return RGBA8{R: r, G: g, B: bl, A: a}
}

func encodeArgb4444(c RGBA8) []byte {
	var v uint16
	v |= uint16(narrow(c.A, 4)) << 12
	v |= uint16(narrow(c.R, 4)) << 8
	v |= uint16(narrow(c.G, 4)) << 4
	v |= uint16(narrow(c.B, 4))
	return []byte{byte(v), byte(v >> 8)}
}

// decodeRgb5a3 implements the GameCube-family dual-mode 16-bit format: the
// high bit selects between opaque RGB555 and translucent ARGB3444.
func decodeRgb5a3(b []byte) RGBA8 {
	v := uint16(b[0]) | uint16(b[1])<<8
	if v&0x8000 != 0 {
		r := expand5(uint8((v >> 10) & 0x1F))
		g := expand5(uint8((v >> 5) & 0x1F))
		bl := expand5(uint8(v & 0x1F))
		return RGBA8{R: r, G: g, B: bl, A: 0xFF}
	}
	a := expand3(uint8((v >> 12) & 0x7))
	r := expand4(uint8((v >> 8) & 0xF))
	g := expand4(uint8((v >> 4) & 0xF))
	bl := expand4(uint8(v & 0xF))
	return RGBA8{R: r, G: g, B: bl, A: a}
}

func encodeRgb5a3(c RGBA8) []byte {
	var v uint16
	if c.A >= 0xE0 {
		v = 0x8000
		v |= uint16(narrow(c.R, 5)) << 10
		v |= uint16(narrow(c.G, 5)) << 5
		v |= uint16(narrow(c.B, 5))
	} else {
		v |= uint16(narrow(c.A, 3)) << 12
		v |= uint16(narrow(c.R, 4)) << 8
		v |= uint16(narrow(c.G, 4)) << 4
		v |= uint16(narrow(c.B, 4))
	}
	return []byte{byte(v), byte(v >> 8)}
}

func decodeArgb8888(b []byte) RGBA8 {
	return RGBA8{A: b[0], R: b[1], G: b[2], B: b[3]}
}

func encodeArgb8888(c RGBA8) []byte {
	return []byte{c.A, c.R, c.G, c.B}
}
