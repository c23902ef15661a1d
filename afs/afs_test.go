package afs

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/SwitchKaze/puyotools/stream"
)

func TestWriteV1OneEntryMatchesSpecExample(t *testing.T) {
	w := stream.NewBytes(nil)
	entries := []WriteEntry{
		{Name: "hi.dat", Source: bytes.NewReader([]byte("hello")), Length: 5},
	}
	settings := Settings{BlockSize: 2048, Version: V1, HasTimestamps: false}
	require.Nil(t, Write(w, entries, settings, nil))

	require.Equal(t, int64(4144), w.Len())

	mustSeek(t, w, 0)
	a, err := Read(w)
	require.Nil(t, err)
	require.Len(t, a.Entries(), 1)
	e := a.Entries()[0]
	require.Equal(t, "hi.dat", e.Name)
	require.Equal(t, int64(2048), e.Offset)
	require.Equal(t, int64(5), e.Length)

	content, err := a.Entry(0)
	require.Nil(t, err)
	data, err := stream.ReadAll(content)
	require.Nil(t, err)
	require.Equal(t, []byte("hello"), data)
}

func TestV1AndV2ProduceIdenticalPayloadRegions(t *testing.T) {
	mk := func(v Version) stream.Stream {
		w := stream.NewBytes(nil)
		entries := []WriteEntry{
			{Name: "a.txt", Source: bytes.NewReader([]byte("AAAA")), Length: 4},
			{Name: "b.txt", Source: bytes.NewReader([]byte("BBBBBBBB")), Length: 8},
		}
		settings := Settings{BlockSize: 64, Version: v, HasTimestamps: false}
		require.Nil(t, Write(w, entries, settings, nil))
		return w
	}
	v1 := mk(V1)
	v2 := mk(V2)
	require.Equal(t, v1.Len(), v2.Len())

	mustSeek(t, v1, 0)
	a1, err := Read(v1)
	require.Nil(t, err)
	mustSeek(t, v2, 0)
	a2, err := Read(v2)
	require.Nil(t, err)

	require.Equal(t, len(a1.Entries()), len(a2.Entries()))
	for i := range a1.Entries() {
		require.Equal(t, a1.Entries()[i].Name, a2.Entries()[i].Name)
		require.Equal(t, a1.Entries()[i].Offset, a2.Entries()[i].Offset)
		require.Equal(t, a1.Entries()[i].Length, a2.Entries()[i].Length)

		c1, err := a1.Entry(i)
		require.Nil(t, err)
		d1, err := stream.ReadAll(c1)
		require.Nil(t, err)

		c2, err := a2.Entry(i)
		require.Nil(t, err)
		d2, err := stream.ReadAll(c2)
		require.Nil(t, err)

		require.Equal(t, d1, d2)
	}
}

type recordingHook struct {
	written []int
}

func (h *recordingHook) OnEntryWritten(index int, entry WriteEntry, offset, paddedLength int64) error {
	h.written = append(h.written, index)
	return nil
}

func TestWriteFiresEntryWrittenHook(t *testing.T) {
	w := stream.NewBytes(nil)
	entries := []WriteEntry{
		{Name: "one", Source: bytes.NewReader([]byte("x")), Length: 1},
		{Name: "two", Source: bytes.NewReader([]byte("yy")), Length: 2},
	}
	hook := &recordingHook{}
	require.Nil(t, Write(w, entries, Settings{BlockSize: 32, Version: V2, HasTimestamps: false}, hook))
	require.Equal(t, []int{0, 1}, hook.written)
}

func TestTagDefaultsToEntryOffset(t *testing.T) {
	w := stream.NewBytes(nil)
	entries := []WriteEntry{
		{Name: "a", Source: bytes.NewReader([]byte("z")), Length: 1},
	}
	require.Nil(t, Write(w, entries, Settings{BlockSize: 16, Version: V2, HasTimestamps: false}, nil))
	mustSeek(t, w, 0)
	a, err := Read(w)
	require.Nil(t, err)
	require.Equal(t, uint32(a.Entries()[0].Offset), a.Entries()[0].Tag)
}

func TestFooterTimestampFromSourcePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "entry.bin")
	require.Nil(t, os.WriteFile(path, []byte("z"), 0o644))
	mtime := time.Date(2019, time.March, 4, 5, 6, 7, 0, time.UTC)
	require.Nil(t, os.Chtimes(path, mtime, mtime))

	w := stream.NewBytes(nil)
	entries := []WriteEntry{
		{Name: "entry.bin", Source: bytes.NewReader([]byte("z")), Length: 1, SourcePath: path},
	}
	require.Nil(t, Write(w, entries, Settings{BlockSize: 16, Version: V2, HasTimestamps: true}, nil))

	mustSeek(t, w, 0)
	a, err := Read(w)
	require.Nil(t, err)
	ts := a.Entries()[0].Timestamp
	require.Equal(t, int16(2019), ts.Year)
	require.Equal(t, int16(3), ts.Month)
	require.Equal(t, int16(4), ts.Day)
}

func TestFooterTimestampZeroWithoutSourcePath(t *testing.T) {
	w := stream.NewBytes(nil)
	entries := []WriteEntry{
		{Name: "missing.bin", Source: bytes.NewReader([]byte("z")), Length: 1},
	}
	require.Nil(t, Write(w, entries, Settings{BlockSize: 16, Version: V2, HasTimestamps: true}, nil))

	mustSeek(t, w, 0)
	a, err := Read(w)
	require.Nil(t, err)
	require.Equal(t, Timestamp{}, a.Entries()[0].Timestamp)
}

func TestWrongMagicFails(t *testing.T) {
	w := stream.NewBytes([]byte("XXXX"))
	_, err := Read(w)
	require.NotNil(t, err)
}

func TestDescribeJSON(t *testing.T) {
	w := stream.NewBytes(nil)
	entries := []WriteEntry{
		{Name: "a", Source: bytes.NewReader([]byte("z")), Length: 1},
	}
	require.Nil(t, Write(w, entries, Settings{BlockSize: 16, Version: V2, HasTimestamps: false}, nil))
	mustSeek(t, w, 0)
	a, err := Read(w)
	require.Nil(t, err)
	b, err := a.DescribeJSON()
	require.Nil(t, err)
	require.Contains(t, string(b), `"name":"a"`)
}

func mustSeek(t *testing.T, s stream.Stream, off int64) int64 {
	t.Helper()
	n, err := s.Seek(off, 0)
	require.Nil(t, err)
	return n
}
