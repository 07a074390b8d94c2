package errors

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEBuildsChain(t *testing.T) {
	cause := Str("disk full")
	err := E("storageserver.Write", IO, cause)
	require.True(t, Is(IO, err))
	require.Equal(t, IO, KindOf(err))
	require.Contains(t, err.Error(), "storageserver.Write")
	require.Contains(t, err.Error(), "disk full")
}

func TestEInheritsKindFromCause(t *testing.T) {
	inner := E("tree.getChildNode", NotFound, Str("no such child"))
	outer := E("namingserver.List", inner)
	require.Equal(t, NotFound, KindOf(outer))
}

func TestWireRoundTrip(t *testing.T) {
	orig := E("storageserver.Read", OutOfBounds, Str("offset past end of file"))
	w := ToWire(orig)
	require.NotNil(t, w)
	got := FromWire(w)
	require.True(t, Is(OutOfBounds, got))
	require.Equal(t, orig.Error(), got.Error())
}

func TestWireRoundTripPlainError(t *testing.T) {
	w := ToWire(Str("boom"))
	got := FromWire(w)
	require.EqualError(t, got, "boom")
}

func TestNilIsNil(t *testing.T) {
	require.Nil(t, E())
	require.Nil(t, ToWire(nil))
	require.Nil(t, FromWire(nil))
}
