package binio

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SwitchKaze/puyotools/stream"
)

func TestReadWriteRoundTrip(t *testing.T) {
	s := stream.NewBytes(nil)
	require.Nil(t, WriteU32LE(s, 0xdeadbeef))
	require.Nil(t, WriteU16BE(s, 0x0102))
	require.Nil(t, WriteCString(s, "hi.dat", 32))

	s.Seek(0, 0)
	v32, err := ReadU32LE(s)
	require.Nil(t, err)
	require.Equal(t, uint32(0xdeadbeef), v32)

	v16, err := ReadU16BE(s)
	require.Nil(t, err)
	require.Equal(t, uint16(0x0102), v16)

	name, err := ReadCString(s, 32)
	require.Nil(t, err)
	require.Equal(t, "hi.dat", name)
}

func TestCopyPadded(t *testing.T) {
	s := stream.NewBytes(nil)
	require.Nil(t, CopyPadded(s, []byte("hello"), 2048, 0))
	require.Equal(t, int64(2048), s.Len())
}

func TestRoundUp(t *testing.T) {
	require.Equal(t, int64(2048), RoundUp(5, 2048))
	require.Equal(t, int64(2048), RoundUp(2048, 2048))
	require.Equal(t, int64(4096), RoundUp(2049, 2048))
}

func TestContainsAt(t *testing.T) {
	s := stream.NewBytes([]byte("XXXXAFS\x00XXXX"))
	require.True(t, ContainsAt(s, 4, []byte("AFS\x00")))
	require.False(t, ContainsAt(s, 0, []byte("AFS\x00")))
	// cursor must be untouched
	require.Equal(t, int64(0), s.Pos())
}
