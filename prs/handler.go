package prs

import (
	"io"

	"github.com/SwitchKaze/puyotools/errs"
	"github.com/SwitchKaze/puyotools/registry"
	"github.com/SwitchKaze/puyotools/stream"
)

// prsHandler adapts the PRS codec to registry.Handler. PRS carries no magic
// (§4.C/§9): HasMagic reports false, which forces the registry to require
// the ".prs" extension match before even calling Probe, and Probe itself
// runs a bounded dry-run decode as the extra heuristic tolerance §9
// suggests for a format with no signature of its own.
type prsHandler struct{}

func (prsHandler) Name() string           { return "PRS Compressed" }
func (prsHandler) Extension() string      { return ".prs" }
func (prsHandler) CanRead() bool          { return true }
func (prsHandler) CanWrite() bool         { return true }
func (prsHandler) HasMagic() bool         { return false }
func (prsHandler) SignatureStrength() int { return 0 }

// dryRunLimit bounds how much of the stream the heuristic probe will
// attempt to decode before giving up and calling the file a PRS stream
// anyway: enough to catch a grossly malformed input without paying for a
// full decode of a large archive member just to identify it.
const dryRunLimit = 4096

// Probe peeks at most dryRunLimit bytes and attempts a dry-run decode.
// A clean decode, or one that simply runs out of the bounded window before
// reaching EOS, both count as a plausible PRS stream; an InvalidBackref
// failure within the window does not. This never advances s's cursor.
func (prsHandler) Probe(s stream.Stream, filename string) bool {
	pos := s.Pos()
	defer s.Seek(pos, 0)

	if _, err := s.Seek(0, 0); err != nil {
		return false
	}
	limited := io.LimitReader(s, dryRunLimit)
	_, err := Decode(limited)
	if err == nil {
		return true
	}
	// Running out of the bounded window (truncated) is expected for any
	// PRS stream longer than dryRunLimit; only a structurally invalid
	// back-reference disqualifies the file.
	return !errs.Is(err, errs.CodeInvalidBackref)
}

func init() {
	registry.Register(prsHandler{})
}
