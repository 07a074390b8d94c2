// Package integration_test drives brisk's actual "Data flow" (spec.md
// §2) end to end: a naming server and a storage server, each reachable
// only through real rpc.Skeleton/rpc.Stub TCP round trips, not in-process
// fakes. This is the integration the RPC substrate exists to serve, and
// the level at which a bug in what crosses the wire (e.g. a path.Path
// that decodes a forged "../.." component) would actually surface.
package integration_test

import (
	"testing"

	"github.com/brisk-labs/brisk/brisk"
	"github.com/brisk-labs/brisk/namingserver"
	"github.com/brisk-labs/brisk/path"
	"github.com/brisk-labs/brisk/storageserver"
	"github.com/stretchr/testify/require"
)

func startNaming(t *testing.T) *namingserver.Server {
	t.Helper()
	s := namingserver.New()
	require.NoError(t, s.Start("127.0.0.1"))
	t.Cleanup(s.Stop)
	return s
}

func startStorage(t *testing.T, namingRegistrationAddr string) *storageserver.Server {
	t.Helper()
	s, err := storageserver.New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Start("127.0.0.1", namingRegistrationAddr))
	t.Cleanup(s.Stop)
	return s
}

// TestEndToEndOverRealSockets resolves a file through a real Service
// stub, then reads and writes it through a real Storage stub obtained
// from the naming server's GetStorage, exactly as spec.md §2 describes a
// client doing: naming stub -> getStorage -> storage stub -> read/write.
func TestEndToEndOverRealSockets(t *testing.T) {
	naming := startNaming(t)
	startStorage(t, naming.RegistrationAddr())

	service := brisk.NewServiceStub(naming.ServiceAddr())

	ok, err := service.CreateFile(path.MustParse("/f.txt"))
	require.NoError(t, err)
	require.True(t, ok)

	names, err := service.List(path.Root)
	require.NoError(t, err)
	require.Equal(t, []string{"f.txt"}, names)

	ref, err := service.GetStorage(path.MustParse("/f.txt"))
	require.NoError(t, err)

	storageStub := brisk.NewStorageStub(ref.Addr)
	data := []byte("hello over the wire")
	require.NoError(t, storageStub.Write(path.MustParse("/f.txt"), 0, data))

	got, err := storageStub.Read(path.MustParse("/f.txt"), 0, int64(len(data)))
	require.NoError(t, err)
	require.Equal(t, data, got)

	size, err := storageStub.Size(path.MustParse("/f.txt"))
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), size)

	ok, err = service.Delete(path.MustParse("/f.txt"))
	require.NoError(t, err)
	require.True(t, ok)

	_, err = service.GetStorage(path.MustParse("/f.txt"))
	require.Error(t, err)
}

// TestRegistrationDuplicateOverRealSockets drives spec.md §8 Scenario B
// (two storage servers, one overlapping file) through the real
// Registration stub a storage server dials on Start, rather than calling
// Server.Register in-process.
func TestRegistrationDuplicateOverRealSockets(t *testing.T) {
	naming := startNaming(t)

	first, err := storageserver.New(t.TempDir())
	require.NoError(t, err)
	_, err = first.Create(path.MustParse("/shared.txt"))
	require.NoError(t, err)
	require.NoError(t, first.Start("127.0.0.1", naming.RegistrationAddr()))
	t.Cleanup(first.Stop)

	second, err := storageserver.New(t.TempDir())
	require.NoError(t, err)
	_, err = second.Create(path.MustParse("/shared.txt"))
	require.NoError(t, err)
	require.NoError(t, second.Start("127.0.0.1", naming.RegistrationAddr()))
	t.Cleanup(second.Stop)

	service := brisk.NewServiceStub(naming.ServiceAddr())
	ref, err := service.GetStorage(path.MustParse("/shared.txt"))
	require.NoError(t, err)
	require.Equal(t, first.StorageAddr(), ref.Addr)

	_, err = second.Size(path.MustParse("/shared.txt"))
	require.Error(t, err, "second server must have pruned its duplicate local copy")
}
