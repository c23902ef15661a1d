package texture

import (
	"github.com/SwitchKaze/puyotools/binio"
	"github.com/SwitchKaze/puyotools/registry"
	"github.com/SwitchKaze/puyotools/stream"
)

// pvrHandler and gvrHandler adapt the two container families to
// registry.Handler, the same small-value-implementing-an-interface
// registration idiom the teacher's media/av/avutil package uses for its
// format table.
type pvrHandler struct{}
type gvrHandler struct{}

func (pvrHandler) Name() string      { return "PVR/SVR Texture" }
func (pvrHandler) Extension() string { return ".pvr" }
func (pvrHandler) CanRead() bool     { return true }
func (pvrHandler) CanWrite() bool    { return true }
func (pvrHandler) HasMagic() bool    { return true }
func (pvrHandler) SignatureStrength() int { return 100 }

func (pvrHandler) Probe(s stream.Stream, filename string) bool {
	return probeDataChunk(s, magicPvrt)
}

func (gvrHandler) Name() string      { return "GVR Texture" }
func (gvrHandler) Extension() string { return ".gvr" }
func (gvrHandler) CanRead() bool     { return true }
func (gvrHandler) CanWrite() bool    { return true }
func (gvrHandler) HasMagic() bool    { return true }
func (gvrHandler) SignatureStrength() int { return 100 }

func (gvrHandler) Probe(s stream.Stream, filename string) bool {
	return probeDataChunk(s, magicGvrt)
}

// probeDataChunk checks for the data chunk's magic either at offset 0 or,
// if a GBIX/GCIX chunk comes first, immediately after it.
func probeDataChunk(s stream.Stream, want []byte) bool {
	if binio.ContainsAt(s, 0, want) {
		return true
	}
	head, err := binio.PeekAt(s, 0, 4)
	if err != nil || len(head) < 4 {
		return false
	}
	isGbix := bytesEqual(head, magicGbix)
	isGcix := bytesEqual(head, magicGcix)
	if !isGbix && !isGcix {
		return false
	}
	lenBytes, err := binio.PeekAt(s, 4, 4)
	if err != nil || len(lenBytes) < 4 {
		return false
	}
	var length uint32
	if isGcix {
		length = beU32(lenBytes)
	} else {
		length = leU32(lenBytes)
	}
	return binio.ContainsAt(s, 8+int64(length), want)
}

func beU32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func leU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func init() {
	registry.Register(pvrHandler{})
	registry.Register(gvrHandler{})
}
