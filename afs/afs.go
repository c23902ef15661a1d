// Package afs implements the AFS archive container: a flat, block-aligned
// table of named entries with an optional timestamp footer. It follows the
// same read-then-lazily-materialize shape as the teacher's
// media/container/flv demuxer, generalized from a streamed tag sequence to
// a single up-front entry table.
package afs

import (
	"github.com/SwitchKaze/puyotools/binio"
	"github.com/SwitchKaze/puyotools/errs"
	"github.com/SwitchKaze/puyotools/obslog"
	"github.com/SwitchKaze/puyotools/stream"
)

var log = obslog.For("afs")

var magic = []byte("AFS\x00")

// Version selects where the metadata offset/length pair is written
// relative to the entry table; both produce identical entry and footer
// regions (§4.G).
type Version int

const (
	V1 Version = iota
	V2
)

// Settings configures archive layout. Zero-value Settings is not usable
// directly; use DefaultSettings and override as needed.
type Settings struct {
	BlockSize     int64
	Version       Version
	HasTimestamps bool
}

func DefaultSettings() Settings {
	return Settings{BlockSize: 2048, Version: V1, HasTimestamps: true}
}

// Timestamp is the six-field footer timestamp, each a 16-bit value.
type Timestamp struct {
	Year, Month, Day, Hour, Minute, Second int16
}

// Entry describes one archive member as read from (or about to be
// written to) the container: its name, absolute data region, and footer
// metadata.
type Entry struct {
	Name      string
	Offset    int64
	Length    int64
	Timestamp Timestamp
	// Tag is the 4-byte per-entry "duplicate" footer field. On read it
	// is captured verbatim so re-encoding a parsed archive reproduces
	// it exactly; on a freshly built archive it defaults to the
	// entry's own Offset (see DESIGN.md for why).
	Tag uint32
}

// Archive is a parsed AFS container: the entry table plus enough state to
// materialize any entry's content on demand.
type Archive struct {
	settings Settings
	entries  []Entry
	src      stream.Stream
}

func (a *Archive) Settings() Settings { return a.settings }
func (a *Archive) Entries() []Entry   { return a.entries }

// Entry returns a read-only Stream over entry i's content region.
func (a *Archive) Entry(i int) (stream.Stream, error) {
	if i < 0 || i >= len(a.entries) {
		return nil, errs.Newf(errs.CodeInvalidArgument, "afs: entry index %d out of range", i)
	}
	e := a.entries[i]
	return stream.NewSubStream(a.src, e.Offset, e.Length), nil
}

const footerEntrySize = 32 + 6*2 + 4 // name + six i16 timestamp fields + u32 tag

// Read parses an AFS archive's entry table and footer from s. Entry
// content is not read eagerly; call Entry(i) to obtain a stream over it.
func Read(s stream.Stream) (*Archive, error) {
	head, err := binio.PeekAt(s, 0, 4)
	if err != nil || len(head) < 4 || !bytesEqual(head, magic) {
		return nil, errs.ErrBadMagic
	}

	if _, err := s.Seek(4, 0); err != nil {
		return nil, errs.Wrapf(err, "afs: seek past magic")
	}
	n32, err := binio.ReadU32LE(s)
	if err != nil {
		return nil, err
	}
	n := int(n32)

	type rawEntry struct{ offset, length uint32 }
	raw := make([]rawEntry, n)
	for i := 0; i < n; i++ {
		off, err := binio.ReadU32LE(s)
		if err != nil {
			return nil, err
		}
		length, err := binio.ReadU32LE(s)
		if err != nil {
			return nil, err
		}
		raw[i] = rawEntry{off, length}
	}

	version := V2
	metaOff, err := binio.ReadU32LE(s)
	if err != nil {
		return nil, err
	}
	if metaOff == 0 {
		// V1 convention: the metadata offset lives 8 bytes before the
		// first entry's data (not the entry table, the actual content
		// position already recorded as raw[0].offset).
		version = V1
		if n == 0 {
			return nil, errs.Newf(errs.CodeInvalidArgument, "afs: V1 archive with zero entries has no metadata anchor")
		}
		b, err := binio.PeekAt(s, int64(raw[0].offset)-8, 4)
		if err != nil || len(b) < 4 {
			return nil, errs.ErrTruncated
		}
		metaOff = leU32(b)
	}

	entries := make([]Entry, n)
	for i, re := range raw {
		entryOff := int64(metaOff) + int64(i)*footerEntrySize
		if _, err := s.Seek(entryOff, 0); err != nil {
			return nil, errs.Wrapf(err, "afs: seek to footer entry %d", i)
		}
		name, err := binio.ReadCString(s, 32)
		if err != nil {
			return nil, err
		}
		var ts [6]int16
		for j := range ts {
			ts[j], err = binio.ReadI16LE(s)
			if err != nil {
				return nil, err
			}
		}
		tag, err := binio.ReadU32LE(s)
		if err != nil {
			return nil, err
		}
		entries[i] = Entry{
			Name:   name,
			Offset: int64(re.offset),
			Length: int64(re.length),
			Timestamp: Timestamp{
				Year: ts[0], Month: ts[1], Day: ts[2],
				Hour: ts[3], Minute: ts[4], Second: ts[5],
			},
			Tag: tag,
		}
	}

	// BlockSize and HasTimestamps aren't recoverable from the container
	// itself (the footer is always present at fixed size whether or not
	// timestamps were meaningful); Settings on a parsed archive reports
	// the common defaults, not a guaranteed-faithful reconstruction.
	a := &Archive{
		settings: Settings{BlockSize: 2048, Version: version, HasTimestamps: true},
		entries:  entries,
		src:      s,
	}
	log.Debug().Int("entries", n).Str("version", versionName(version)).Msg("afs: parsed archive")
	return a, nil
}

func versionName(v Version) string {
	if v == V1 {
		return "V1"
	}
	return "V2"
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

func leU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
