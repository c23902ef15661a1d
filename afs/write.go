package afs

import (
	"io"
	"os"

	"github.com/SwitchKaze/puyotools/binio"
	"github.com/SwitchKaze/puyotools/errs"
	"github.com/SwitchKaze/puyotools/stream"
)

// WriteEntry is one archive member to emit. Source provides the content;
// exactly Length bytes are read from it.
type WriteEntry struct {
	Name    string
	Source  io.Reader
	Length  int64
	// ModTime, if set, overrides the footer timestamp outright. If nil
	// and SourcePath names a file that exists, Write stats it for the
	// "real mtime if the source file exists" footer value (§4.G step 5);
	// otherwise the footer timestamp is zero, matching the data model's
	// "optional" source path.
	ModTime    *Timestamp
	SourcePath string
	// Tag overrides the footer "duplicate" field's default (the
	// entry's own on-disk offset); set it when re-encoding entries
	// read from an existing archive, to reproduce them bit-for-bit.
	Tag *uint32
}

func statTimestamp(path string) (Timestamp, bool) {
	if path == "" {
		return Timestamp{}, false
	}
	fi, err := os.Stat(path)
	if err != nil {
		return Timestamp{}, false
	}
	t := fi.ModTime().UTC()
	return Timestamp{
		Year: int16(t.Year()), Month: int16(t.Month()), Day: int16(t.Day()),
		Hour: int16(t.Hour()), Minute: int16(t.Minute()), Second: int16(t.Second()),
	}, true
}

// Hook observes archive writing for progress reporting, mirroring the
// teacher's pusher.Hook single-callback-interface shape.
type Hook interface {
	OnEntryWritten(index int, entry WriteEntry, offset, paddedLength int64) error
}

// Write emits entries as a complete AFS archive to w per settings. hook
// may be nil. w must support seeking (every stream.Stream does): the V1
// layout backfills the metadata offset behind the entry table.
func Write(w stream.Stream, entries []WriteEntry, settings Settings, hook Hook) error {
	block := settings.BlockSize
	if block <= 0 {
		block = 1
	}
	n := int64(len(entries))

	if _, err := w.Write(magic); err != nil {
		return err
	}
	if err := binio.WriteU32LE(w, uint32(n)); err != nil {
		return err
	}

	firstEntryOffset := binio.RoundUp(12+n*8, block)

	offsets := make([]int64, len(entries))
	cursor := firstEntryOffset
	for i, e := range entries {
		offsets[i] = cursor
		if err := binio.WriteU32LE(w, uint32(cursor)); err != nil {
			return err
		}
		if err := binio.WriteU32LE(w, uint32(e.Length)); err != nil {
			return err
		}
		cursor += binio.RoundUp(e.Length, block)
	}

	metaOffset := cursor
	metaLength := n * footerEntrySize

	if settings.Version == V1 {
		if _, err := w.Seek(firstEntryOffset-8, 0); err != nil {
			return err
		}
		if err := binio.WriteU32LE(w, uint32(metaOffset)); err != nil {
			return err
		}
		if err := binio.WriteU32LE(w, uint32(metaLength)); err != nil {
			return err
		}
		if _, err := w.Seek(firstEntryOffset, 0); err != nil {
			return err
		}
	} else {
		if err := binio.WriteU32LE(w, uint32(metaOffset)); err != nil {
			return err
		}
		if err := binio.WriteU32LE(w, uint32(metaLength)); err != nil {
			return err
		}
		if _, err := w.Seek(firstEntryOffset, 0); err != nil {
			return err
		}
	}

	for i, e := range entries {
		if _, err := w.Seek(offsets[i], 0); err != nil {
			return err
		}
		n64, err := io.CopyN(w, e.Source, e.Length)
		if err == io.EOF || err == io.ErrUnexpectedEOF || n64 < e.Length {
			return errs.ErrTruncated
		}
		if err != nil {
			return errs.Wrapf(err, "afs: write entry %d", i)
		}
		padded := binio.RoundUp(e.Length, block)
		if err := writeZeros(w, padded-e.Length); err != nil {
			return err
		}
		if hook != nil {
			if err := hook.OnEntryWritten(i, e, offsets[i], padded); err != nil {
				return err
			}
		}
	}

	if _, err := w.Seek(metaOffset, 0); err != nil {
		return err
	}
	for i, e := range entries {
		if err := binio.WriteCString(w, e.Name, 32); err != nil {
			return err
		}
		var ts Timestamp
		if settings.HasTimestamps {
			switch {
			case e.ModTime != nil:
				ts = *e.ModTime
			default:
				if stat, ok := statTimestamp(e.SourcePath); ok {
					ts = stat
				}
			}
		}
		for _, v := range []int16{ts.Year, ts.Month, ts.Day, ts.Hour, ts.Minute, ts.Second} {
			if err := binio.WriteI16LE(w, v); err != nil {
				return err
			}
		}
		tag := uint32(offsets[i])
		if e.Tag != nil {
			tag = *e.Tag
		}
		if err := binio.WriteU32LE(w, tag); err != nil {
			return err
		}
	}

	return nil
}

func writeZeros(w stream.Stream, n int64) error {
	if n <= 0 {
		return nil
	}
	buf := make([]byte, n)
	_, err := w.Write(buf)
	return err
}
