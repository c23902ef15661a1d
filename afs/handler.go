package afs

import (
	"github.com/SwitchKaze/puyotools/binio"
	"github.com/SwitchKaze/puyotools/registry"
	"github.com/SwitchKaze/puyotools/stream"
)

type afsHandler struct{}

func (afsHandler) Name() string           { return "AFS Archive" }
func (afsHandler) Extension() string      { return ".afs" }
func (afsHandler) CanRead() bool          { return true }
func (afsHandler) CanWrite() bool         { return true }
func (afsHandler) HasMagic() bool         { return true }
func (afsHandler) SignatureStrength() int { return 100 }

func (afsHandler) Probe(s stream.Stream, filename string) bool {
	return binio.ContainsAt(s, 0, magic)
}

func init() {
	registry.Register(afsHandler{})
}
