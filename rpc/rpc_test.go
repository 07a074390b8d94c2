package rpc

import (
	"reflect"
	"sync"
	"testing"

	"github.com/brisk-labs/brisk/errors"
	"github.com/stretchr/testify/require"
)

// echoer is a tiny remote interface used to exercise the stub/skeleton
// round trip without pulling in a whole domain package.
type echoer interface {
	Echo(s string) (string, error)
	Fail(kind string) (string, error)
}

type echoTarget struct {
	mu    sync.Mutex
	calls int
}

func (t *echoTarget) Echo(s string) (string, error) {
	t.mu.Lock()
	t.calls++
	t.mu.Unlock()
	return s, nil
}

func (t *echoTarget) Fail(kind string) (string, error) {
	var k errors.Kind
	if kind == "out-of-bounds" {
		k = errors.OutOfBounds
	}
	return "", errors.E("echoTarget.Fail", k, errors.Str("boom"))
}

var echoerType = reflect.TypeOf((*echoer)(nil)).Elem()

func startEchoSkeleton(t *testing.T) (*Skeleton, *echoTarget) {
	t.Helper()
	target := &echoTarget{}
	sk := NewSkeleton(echoerType, target, "127.0.0.1:0")
	require.NoError(t, sk.Start())
	t.Cleanup(sk.Stop)
	return sk, target
}

func callEcho(t *testing.T, s *Stub, in string) (string, error) {
	t.Helper()
	v, err := s.Call("Echo", []string{"string"}, []interface{}{in})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func TestEchoRoundTrip(t *testing.T) {
	sk, _ := startEchoSkeleton(t)
	stub := NewStub(echoerType, sk.Addr())

	for _, in := range []string{"hello", "", "héllo wörld 日本語", "a\nb\tc"} {
		got, err := callEcho(t, stub, in)
		require.NoError(t, err)
		require.Equal(t, in, got)
	}
}

func TestDomainErrorRoundTripsWithKind(t *testing.T) {
	sk, _ := startEchoSkeleton(t)
	stub := NewStub(echoerType, sk.Addr())

	_, err := stub.Call("Fail", []string{"string"}, []interface{}{"out-of-bounds"})
	require.Error(t, err)
	require.True(t, errors.Is(errors.OutOfBounds, err))
	require.Contains(t, err.Error(), "boom")
}

func TestCallAfterStopFailsWithRemoteError(t *testing.T) {
	target := &echoTarget{}
	sk := NewSkeleton(echoerType, target, "127.0.0.1:0")
	require.NoError(t, sk.Start())
	addr := sk.Addr()
	sk.Stop()

	stub := NewStub(echoerType, addr)
	_, err := stub.Call("Echo", []string{"string"}, []interface{}{"x"})
	require.Error(t, err)
	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
}

func TestStubEqualIsLocal(t *testing.T) {
	a := NewStub(echoerType, "127.0.0.1:1")
	b := NewStub(echoerType, "127.0.0.1:1")
	c := NewStub(echoerType, "127.0.0.1:2")

	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
	require.False(t, a.Equal(nil))
}

func TestUnknownMethodFails(t *testing.T) {
	sk, _ := startEchoSkeleton(t)
	stub := NewStub(echoerType, sk.Addr())

	_, err := stub.Call("NoSuchMethod", nil, nil)
	require.Error(t, err)
}

func TestSkeletonStartTwiceFails(t *testing.T) {
	target := &echoTarget{}
	sk := NewSkeleton(echoerType, target, "127.0.0.1:0")
	require.NoError(t, sk.Start())
	t.Cleanup(sk.Stop)

	err := sk.Start()
	require.True(t, errors.Is(errors.AlreadyStarted, err))
}

func TestSkeletonRestartAfterStopFails(t *testing.T) {
	target := &echoTarget{}
	sk := NewSkeleton(echoerType, target, "127.0.0.1:0")
	require.NoError(t, sk.Start())
	sk.Stop()

	err := sk.Start()
	require.True(t, errors.Is(errors.AlreadyStarted, err))
}

func TestSkeletonStoppedCalledExactlyOnce(t *testing.T) {
	target := &echoTarget{}
	sk := NewSkeleton(echoerType, target, "127.0.0.1:0")

	var calls int
	var mu sync.Mutex
	sk.Stopped = func(cause error) {
		mu.Lock()
		calls++
		mu.Unlock()
	}
	require.NoError(t, sk.Start())
	sk.Stop()
	sk.Stop()
	sk.Stop()

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, calls)
}

func TestNewStubPanicsOnNonInterface(t *testing.T) {
	require.Panics(t, func() {
		NewStub(reflect.TypeOf(echoTarget{}), "127.0.0.1:0")
	})
}

func TestNewSkeletonPanicsIfTargetMissingMethod(t *testing.T) {
	type other interface {
		DoesNotExist() error
	}
	otherType := reflect.TypeOf((*other)(nil)).Elem()
	require.Panics(t, func() {
		NewSkeleton(otherType, &echoTarget{}, "127.0.0.1:0")
	})
}
