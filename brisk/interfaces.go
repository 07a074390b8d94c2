// Package brisk defines the four remote interfaces of the naming/storage
// protocol (Service, Registration exposed by the naming server; Storage
// and Command exposed by storage servers), the well-known naming-server
// ports, and the client-side stubs for each interface. It is the shared
// vocabulary namingserver and storageserver dial against.
package brisk

import "github.com/brisk-labs/brisk/path"

// The well-known ports of the naming server, per spec.md §6's NamingStubs
// surface: one for the client-facing Service interface, one for the
// registration-facing Registration interface that storage servers dial.
// Storage servers themselves always bind a system-assigned port.
const (
	ServicePort      = 6000
	RegistrationPort = 6001
)

// Storage is the byte-range read/write interface a storage server exposes
// to clients that have already learned its address from a naming
// server's GetStorage call (spec.md §4.6).
//
// Every method's final result is its error; this is this port's
// rendering of "every method declares RemoteError" (see rpc.Skeleton and
// rpc.Stub).
type Storage interface {
	// Size returns the length in bytes of the regular file at p.
	Size(p path.Path) (int64, error)
	// Read returns exactly length bytes of the regular file at p,
	// starting at offset.
	Read(p path.Path, offset, length int64) ([]byte, error)
	// Write writes data to the regular file at p starting at offset,
	// extending the file if offset+len(data) exceeds its current size.
	Write(p path.Path, offset int64, data []byte) error
}

// Command is the file-materialization interface a storage server exposes
// to the naming server that owns it (spec.md §4.6).
type Command interface {
	// Create creates an empty file at p, including any missing parent
	// directories, and reports whether the file was newly created.
	Create(p path.Path) (bool, error)
	// Delete removes the file or directory at p, recursively if p is a
	// directory, and reports whether anything was removed.
	Delete(p path.Path) (bool, error)
}

// Service is the client-facing interface exposed by the naming server
// (spec.md §4.8).
type Service interface {
	IsDirectory(p path.Path) (bool, error)
	List(p path.Path) ([]string, error)
	CreateFile(p path.Path) (bool, error)
	CreateDirectory(p path.Path) (bool, error)
	Delete(p path.Path) (bool, error)
	// GetStorage returns a reference to the storage server that owns the
	// file at p; the caller reconstructs a callable Storage stub from it
	// with NewStorageStub.
	GetStorage(p path.Path) (StorageStubRef, error)
}

// Registration is the interface a storage server dials to register
// itself with the naming server (spec.md §4.8).
type Registration interface {
	// Register offers a storage server's (storage, command) stub pair
	// and its local file inventory to the naming server, and returns the
	// subset of files that were already owned by a different storage
	// server (duplicates, per spec.md's Registration protocol).
	Register(stubs ServerStubsRef, files []path.Path) ([]path.Path, error)
}
