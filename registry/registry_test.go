package registry

import (
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/SwitchKaze/puyotools/stream"
)

// TestIdentifyIOErrorYieldsNoMatch exercises a backing store that fails with
// a genuine I/O error (not truncation) rather than one stream.NewBytes can
// express by slicing: the handler's signature probe here reads through
// ReaderAt, and a hard read error there must be treated the same as "no
// signature" rather than panicking or returning a stale match.
func TestIdentifyIOErrorYieldsNoMatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ms := stream.NewMockStream(ctrl)
	ms.EXPECT().ReadAt(gomock.Any(), gomock.Any()).
		Return(0, errors.New("disk offline")).AnyTimes()

	r := New()
	r.Register(afsLikeHandler{})

	_, err := r.Identify(ms, "broken.afs")
	require.NotNil(t, err)
}

// afsLikeHandler stands in for package afs's own handler without importing
// package afs (which would create an import cycle back into registry);
// it exercises the same HasMagic/Probe-via-ReadAt path.
type afsLikeHandler struct{}

func (afsLikeHandler) Name() string           { return "AFS Archive" }
func (afsLikeHandler) Extension() string      { return ".afs" }
func (afsLikeHandler) CanRead() bool          { return true }
func (afsLikeHandler) CanWrite() bool         { return true }
func (afsLikeHandler) HasMagic() bool         { return true }
func (afsLikeHandler) SignatureStrength() int { return 100 }

func (afsLikeHandler) Probe(s stream.Stream, filename string) bool {
	buf := make([]byte, 4)
	n, err := s.ReadAt(buf, 0)
	if err != nil || n < 4 {
		return false
	}
	return string(buf) == "AFS\x00"
}
