package prs

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SwitchKaze/puyotools/registry"
	"github.com/SwitchKaze/puyotools/stream"
)

func TestRoundTripSimple(t *testing.T) {
	cases := [][]byte{
		nil,
		{},
		[]byte("\x00"),
		[]byte("A"),
		[]byte("ABABAB"),
		[]byte("ABABABABABABABABABABABABABABABAB"),
		bytes.Repeat([]byte("hello world "), 50),
		bytes.Repeat([]byte{0}, 10000),
	}
	for _, c := range cases {
		enc := Encode(c)
		dec, err := Decode(bytes.NewReader(enc))
		require.Nil(t, err)
		require.True(t, bytes.Equal(c, dec), "round trip of %d bytes", len(c))
	}
}

func TestRoundTripRandom(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		n := r.Intn(4000)
		buf := make([]byte, n)
		r.Read(buf)
		enc := Encode(buf)
		dec, err := Decode(bytes.NewReader(enc))
		require.Nil(t, err)
		require.Equal(t, buf, dec)
	}
}

func TestBoundedExpansion(t *testing.T) {
	// Literal-heavy, low-redundancy input stresses the expansion bound.
	r := rand.New(rand.NewSource(7))
	buf := make([]byte, 5000)
	r.Read(buf)
	enc := Encode(buf)
	require.LessOrEqual(t, len(enc), len(buf)+len(buf)/8+16)
}

func TestTruncatedInputFails(t *testing.T) {
	enc := Encode([]byte("hello"))
	_, err := Decode(bytes.NewReader(enc[:len(enc)-1]))
	require.NotNil(t, err)
}

func TestRegistryIdentifiesByExtension(t *testing.T) {
	enc := Encode([]byte("hello hello hello"))
	s := stream.NewBytes(enc)

	h, err := registry.Identify(s, "model.prs")
	require.Nil(t, err)
	require.Equal(t, "PRS Compressed", h.Name())
	require.Equal(t, int64(0), s.Pos())

	_, err = registry.Identify(s, "model.bin")
	require.NotNil(t, err)
}

func TestInvalidBackrefFails(t *testing.T) {
	// flag=0 (copy), flag=0 (short copy), length bits 00 -> length 2,
	// offset byte 0xFF -> offset -1, but output is empty so -1 is before
	// the start of the buffer.
	bad := []byte{0b00000000, 0xFF}
	_, err := Decode(bytes.NewReader(bad))
	require.NotNil(t, err)
}
