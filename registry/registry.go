// Package registry identifies the format handler responsible for a given
// input stream, the way media/av/avutil.Handlers picks a demuxer/muxer by
// extension-then-probe in the teacher codebase. Unlike avutil's handler
// table (built incrementally by each container package's init-time
// registration), this one also enforces the "at most one handler may claim
// a given (signature, extension) pair" ambiguity policy from the format
// registry spec.
package registry

import (
	"path/filepath"
	"strings"

	"github.com/SwitchKaze/puyotools/errs"
	"github.com/SwitchKaze/puyotools/stream"
)

// Handler describes one file format this module understands: a human name,
// a canonical extension, read/write capability, and a signature probe over
// the first bytes of a stream. Probe must not consume the stream — it
// should read through Stream.ReadAt or otherwise restore the cursor.
type Handler interface {
	Name() string
	Extension() string
	CanRead() bool
	CanWrite() bool

	// HasMagic reports whether this format carries a reliable byte
	// signature. PRS does not (§4.C/§9): for such handlers the filename
	// extension is a required part of the match, not just a tiebreaker.
	HasMagic() bool

	// SignatureStrength orders candidates when more than one handler's
	// Probe matches the same input: larger wins, equal is an ambiguity
	// error. Handlers with HasMagic() == false report 0.
	SignatureStrength() int

	// Probe inspects s (and may use filename as a hint) and reports
	// whether this handler can open it. Must not move the caller's
	// cursor.
	Probe(s stream.Stream, filename string) bool
}

// Registry holds the compile-time-fixed set of known handlers. Nothing
// about a Registry's contents changes at runtime once handlers are
// registered; Default is populated from each format package's init().
type Registry struct {
	handlers []Handler
}

func New() *Registry {
	return &Registry{}
}

// Default is the module-wide registry that the prs, texture, and afs
// packages register themselves into. Callers that want an isolated
// registry (e.g. tests restricting format support) can build their own
// with New() and Register() instead.
var Default = New()

func (r *Registry) Register(h Handler) {
	r.handlers = append(r.handlers, h)
}

// Get looks up a handler by its exact Name().
func (r *Registry) Get(name string) (Handler, bool) {
	for _, h := range r.handlers {
		if h.Name() == name {
			return h, true
		}
	}
	return nil, false
}

// Identify finds the handler matching s and filename. Handlers with a
// reliable magic (HasMagic() == true) are selected by Probe alone; handlers
// without one require the extension to also match. If more than one
// handler matches, the one with the strictest (highest) SignatureStrength
// wins; an exact tie is an error.
func (r *Registry) Identify(s stream.Stream, filename string) (Handler, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	var candidates []Handler
	for _, h := range r.handlers {
		if !h.CanRead() {
			continue
		}
		if !h.HasMagic() {
			if !strings.EqualFold(h.Extension(), ext) {
				continue
			}
		}
		if h.Probe(s, filename) {
			candidates = append(candidates, h)
		}
	}

	switch len(candidates) {
	case 0:
		return nil, errs.Wrapf(errs.ErrBadMagic, "registry: no handler for %q", filename)
	case 1:
		return candidates[0], nil
	default:
		best := candidates[0]
		for _, c := range candidates[1:] {
			if c.SignatureStrength() > best.SignatureStrength() {
				best = c
			}
		}
		tieCount := 0
		for _, c := range candidates {
			if c.SignatureStrength() == best.SignatureStrength() {
				tieCount++
			}
		}
		if tieCount > 1 {
			return nil, errs.Newf(errs.CodeInvalidArgument,
				"registry: ambiguous handlers for %q: %d candidates tie at strength %d",
				filename, tieCount, best.SignatureStrength())
		}
		return best, nil
	}
}

func Identify(s stream.Stream, filename string) (Handler, error) {
	return Default.Identify(s, filename)
}

func Get(name string) (Handler, bool) {
	return Default.Get(name)
}

func Register(h Handler) {
	Default.Register(h)
}
