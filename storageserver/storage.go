// Package storageserver implements a storage server: it hosts a subtree
// of the local filesystem under a root directory and serves
// size/read/write/create/delete commands against it, per spec.md §4.6.
package storageserver

import (
	"fmt"
	"net"
	"os"
	"reflect"
	"sync"

	"github.com/brisk-labs/brisk/brisk"
	"github.com/brisk-labs/brisk/errors"
	"github.com/brisk-labs/brisk/log"
	"github.com/brisk-labs/brisk/path"
	"github.com/brisk-labs/brisk/rpc"
)

var (
	storageType = reflect.TypeOf((*brisk.Storage)(nil)).Elem()
	commandType = reflect.TypeOf((*brisk.Command)(nil)).Elem()
)

// Server is a storage server: a host-filesystem root directory, serving
// the Storage and Command interfaces behind its own single mutex, per
// spec.md §4.6 and §5 ("the storage-server public methods are mutually
// exclusive").
type Server struct {
	root string

	mu sync.Mutex

	storageSkeleton *rpc.Skeleton
	commandSkeleton *rpc.Skeleton

	// storageAddr/commandAddr are the addresses advertised to the naming
	// server: the bound skeleton address with its host rewritten to the
	// hostname passed to Start, which may differ from the bind address
	// (e.g. a server bound on all interfaces but reachable only at a
	// specific advertised name).
	storageAddr string
	commandAddr string
}

var (
	_ brisk.Storage = (*Server)(nil)
	_ brisk.Command = (*Server)(nil)
)

// New returns a storage server rooted at root, which must already exist
// and be a directory.
func New(root string) (*Server, error) {
	const op = "storageserver.New"
	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		return nil, errors.E(op, errors.NotFound, err)
	}
	if err != nil {
		return nil, errors.E(op, errors.IO, err)
	}
	if !info.IsDir() {
		return nil, errors.E(op, errors.Invalid, errors.Str("root is not a directory"))
	}
	return &Server{root: root}, nil
}

// Start binds the Storage and Command skeletons on system-assigned
// ports, then registers with the naming server at namingRegistrationAddr,
// offering every file currently under root. hostname is used to build the
// addresses advertised to the naming server (so a storage server behind
// NAT or a container can advertise a reachable name); it must resolve, or
// Start fails.
func (s *Server) Start(hostname, namingRegistrationAddr string) error {
	const op = "storageserver.Server.Start"
	if _, err := net.LookupHost(hostname); err != nil {
		return errors.E(op, errors.NotFound, fmt.Errorf("unknown host %s: %w", hostname, err))
	}

	s.storageSkeleton = rpc.NewSkeleton(storageType, s, "")
	if err := s.storageSkeleton.Start(); err != nil {
		return errors.E(op, err)
	}
	s.commandSkeleton = rpc.NewSkeleton(commandType, s, "")
	if err := s.commandSkeleton.Start(); err != nil {
		s.storageSkeleton.Stop()
		return errors.E(op, err)
	}

	s.storageAddr = rewriteHost(s.storageSkeleton.Addr(), hostname)
	s.commandAddr = rewriteHost(s.commandSkeleton.Addr(), hostname)

	files, err := path.ListFiles(s.root)
	if err != nil {
		return errors.E(op, err)
	}

	reg := brisk.NewRegistrationStub(namingRegistrationAddr)
	dups, err := reg.Register(brisk.ServerStubsRef{
		Storage: brisk.StorageStubRef{Addr: s.storageAddr},
		Command: brisk.CommandStubRef{Addr: s.commandAddr},
	}, files)
	if err != nil {
		return errors.E(op, err)
	}

	for _, dup := range dups {
		if err := s.deleteAndPrune(dup); err != nil {
			log.Error.Printf("storageserver: pruning duplicate %s: %v", dup, err)
		}
	}
	return nil
}

// StorageAddr returns the address advertised to the naming server for
// this server's Storage skeleton. It is only meaningful after Start has
// returned successfully.
func (s *Server) StorageAddr() string { return s.storageAddr }

// CommandAddr returns the address advertised to the naming server for
// this server's Command skeleton. It is only meaningful after Start has
// returned successfully.
func (s *Server) CommandAddr() string { return s.commandAddr }

// Stop stops both of the server's skeletons.
func (s *Server) Stop() {
	if s.storageSkeleton != nil {
		s.storageSkeleton.Stop()
	}
	if s.commandSkeleton != nil {
		s.commandSkeleton.Stop()
	}
}

// rewriteHost replaces the host part of a "host:port" address with host,
// keeping the port that was actually bound.
func rewriteHost(addr, host string) string {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return net.JoinHostPort(host, port)
}

// Size implements brisk.Storage.
func (s *Server) Size(p path.Path) (int64, error) {
	const op = "storageserver.Server.Size"
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := s.statRegular(op, p)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Read implements brisk.Storage.
func (s *Server) Read(p path.Path, offset, length int64) ([]byte, error) {
	const op = "storageserver.Server.Read"
	s.mu.Lock()
	defer s.mu.Unlock()

	if offset < 0 || length < 0 {
		return nil, errors.E(op, errors.OutOfBounds)
	}
	info, err := s.statRegular(op, p)
	if err != nil {
		return nil, err
	}
	if offset+length > info.Size() {
		return nil, errors.E(op, errors.OutOfBounds)
	}
	f, err := os.Open(p.ToFile(s.root))
	if err != nil {
		return nil, errors.E(op, errors.IO, err)
	}
	defer f.Close()

	buf := make([]byte, length)
	if length > 0 {
		if _, err := f.ReadAt(buf, offset); err != nil {
			return nil, errors.E(op, errors.IO, err)
		}
	}
	return buf, nil
}

// Write implements brisk.Storage.
func (s *Server) Write(p path.Path, offset int64, data []byte) error {
	const op = "storageserver.Server.Write"
	if data == nil {
		return errors.E(op, errors.Invalid, errors.Str("data must not be nil"))
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if offset < 0 {
		return errors.E(op, errors.OutOfBounds)
	}
	if _, err := s.statRegular(op, p); err != nil {
		return err
	}
	f, err := os.OpenFile(p.ToFile(s.root), os.O_WRONLY, 0o644)
	if err != nil {
		return errors.E(op, errors.IO, err)
	}
	defer f.Close()

	if _, err := f.WriteAt(data, offset); err != nil {
		return errors.E(op, errors.IO, err)
	}
	return nil
}

// Create implements brisk.Command.
func (s *Server) Create(p path.Path) (bool, error) {
	const op = "storageserver.Server.Create"
	if p.IsRoot() {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	file := p.ToFile(s.root)
	if err := os.MkdirAll(p.Parent().ToFile(s.root), 0o755); err != nil {
		return false, errors.E(op, errors.IO, err)
	}
	if _, err := os.Stat(file); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, errors.E(op, errors.IO, err)
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, errors.E(op, errors.IO, err)
	}
	f.Close()
	return true, nil
}

// Delete implements brisk.Command.
func (s *Server) Delete(p path.Path) (bool, error) {
	if p.IsRoot() {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteAndPruneLocked(p)
}

// deleteAndPrune acquires the server's lock and deletes p, pruning empty
// ancestor directories. It is used by Start's duplicate-reconciliation
// pass; Delete, which already holds the lock, calls deleteAndPruneLocked.
func (s *Server) deleteAndPrune(p path.Path) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.deleteAndPruneLocked(p)
	return err
}

func (s *Server) deleteAndPruneLocked(p path.Path) (bool, error) {
	const op = "storageserver.Server.Delete"
	file := p.ToFile(s.root)
	if _, err := os.Stat(file); os.IsNotExist(err) {
		return false, nil
	} else if err != nil {
		return false, errors.E(op, errors.IO, err)
	}
	if err := os.RemoveAll(file); err != nil {
		return false, errors.E(op, errors.IO, err)
	}
	s.pruneEmptyAncestors(p.Parent())
	return true, nil
}

// pruneEmptyAncestors removes dir and each of its ancestors, up to but
// not including the storage server's root, as long as each is empty.
func (s *Server) pruneEmptyAncestors(dir path.Path) {
	for !dir.IsRoot() {
		host := dir.ToFile(s.root)
		entries, err := os.ReadDir(host)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := os.Remove(host); err != nil {
			return
		}
		dir = dir.Parent()
	}
}

func (s *Server) statRegular(op string, p path.Path) (os.FileInfo, error) {
	info, err := os.Stat(p.ToFile(s.root))
	if os.IsNotExist(err) {
		return nil, errors.E(op, errors.NotFound, err)
	}
	if err != nil {
		return nil, errors.E(op, errors.IO, err)
	}
	if info.IsDir() {
		return nil, errors.E(op, errors.NotFound, errors.Str("not a regular file"))
	}
	return info, nil
}
