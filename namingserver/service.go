// Package namingserver implements the naming server: the single
// directory-tree authority that storage servers register files with and
// clients resolve paths against, per spec.md §4.7-4.8.
package namingserver

import (
	"math/rand/v2"
	"net"
	"reflect"
	"sort"
	"strconv"
	"sync"

	"github.com/brisk-labs/brisk/brisk"
	"github.com/brisk-labs/brisk/errors"
	"github.com/brisk-labs/brisk/log"
	"github.com/brisk-labs/brisk/path"
	"github.com/brisk-labs/brisk/rpc"
)

var (
	serviceType      = reflect.TypeOf((*brisk.Service)(nil)).Elem()
	registrationType = reflect.TypeOf((*brisk.Registration)(nil)).Elem()
)

// Server is the naming server: one directory tree, one list of
// registered storage servers, both guarded by a single lock. spec.md §5
// permits either a whole-tree lock or a finer-grained scheme; a single
// RWMutex is the simplest choice that satisfies the invariants, and it
// also serializes the registered list, which is small and infrequently
// mutated.
type Server struct {
	mu         sync.RWMutex
	root       *pathNode
	registered []brisk.ServerStubs

	serviceSkeleton      *rpc.Skeleton
	registrationSkeleton *rpc.Skeleton
}

var (
	_ brisk.Service      = (*Server)(nil)
	_ brisk.Registration = (*Server)(nil)
)

// New returns an empty naming server: an empty root directory and no
// registered storage servers.
func New() *Server {
	return &Server{root: newDirNode(path.Root)}
}

// Start binds the Service skeleton on bindHost:brisk.ServicePort and the
// Registration skeleton on bindHost:brisk.RegistrationPort.
func (s *Server) Start(bindHost string) error {
	const op = "namingserver.Server.Start"

	s.serviceSkeleton = rpc.NewSkeleton(serviceType, s, net.JoinHostPort(bindHost, strconv.Itoa(brisk.ServicePort)))
	if err := s.serviceSkeleton.Start(); err != nil {
		return errors.E(op, err)
	}
	s.registrationSkeleton = rpc.NewSkeleton(registrationType, s, net.JoinHostPort(bindHost, strconv.Itoa(brisk.RegistrationPort)))
	if err := s.registrationSkeleton.Start(); err != nil {
		s.serviceSkeleton.Stop()
		return errors.E(op, err)
	}
	return nil
}

// Stop stops both of the server's skeletons.
func (s *Server) Stop() {
	if s.serviceSkeleton != nil {
		s.serviceSkeleton.Stop()
	}
	if s.registrationSkeleton != nil {
		s.registrationSkeleton.Stop()
	}
}

// ServiceAddr returns the bound address of the Service skeleton.
func (s *Server) ServiceAddr() string { return s.serviceSkeleton.Addr() }

// RegistrationAddr returns the bound address of the Registration
// skeleton.
func (s *Server) RegistrationAddr() string { return s.registrationSkeleton.Addr() }

// IsDirectory implements brisk.Service.
func (s *Server) IsDirectory(p path.Path) (bool, error) {
	const op = "namingserver.Server.IsDirectory"
	if p.IsRoot() {
		return true, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, err := s.root.getNodeByPath(p)
	if err != nil {
		return false, errors.E(op, errors.NotFound, err)
	}
	return node.isDir(), nil
}

// List implements brisk.Service: it returns the immediate child names of
// the directory at p (which may be root), failing errors.NotFound if p
// does not exist or is a file.
func (s *Server) List(p path.Path) ([]string, error) {
	const op = "namingserver.Server.List"
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, err := s.root.getNodeByPath(p)
	if err != nil {
		return nil, errors.E(op, errors.NotFound, err)
	}
	if node.isFile() {
		return nil, errors.E(op, errors.NotFound, errors.Str("not a directory"))
	}
	names := make([]string, 0, len(node.children))
	for name := range node.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// CreateFile implements brisk.Service. It picks a registered storage
// server at random to host the new file and asks it to materialize the
// file before the new node is made visible in the tree.
func (s *Server) CreateFile(p path.Path) (bool, error) {
	const op = "namingserver.Server.CreateFile"
	if p.IsRoot() {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	parent, name, err := s.resolveParent(p)
	if err != nil {
		return false, errors.E(op, err)
	}
	if parent.doesChildFileExist(name) || parent.doesChildDirectoryExist(name) {
		return false, nil
	}

	stubs, err := s.pickStorageServer()
	if err != nil {
		return false, errors.E(op, err)
	}
	if _, err := stubs.Command.Create(p); err != nil {
		return false, errors.E(op, err)
	}
	if err := parent.addChild(name, newFileNode(p, stubs)); err != nil {
		return false, nil
	}
	return true, nil
}

// CreateDirectory implements brisk.Service.
func (s *Server) CreateDirectory(p path.Path) (bool, error) {
	const op = "namingserver.Server.CreateDirectory"
	if p.IsRoot() {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	parent, name, err := s.resolveParent(p)
	if err != nil {
		return false, errors.E(op, err)
	}
	if parent.doesChildFileExist(name) || parent.doesChildDirectoryExist(name) {
		return false, nil
	}
	if err := parent.addChild(name, newDirNode(p)); err != nil {
		return false, nil
	}
	return true, nil
}

// Delete implements brisk.Service. Deleting a directory recursively
// deletes every file beneath it, issuing a Command.Delete to each file's
// owning storage server.
func (s *Server) Delete(p path.Path) (bool, error) {
	if p.IsRoot() {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	parent, err := s.root.getNodeByPath(p.Parent())
	if err != nil {
		return false, nil
	}
	name := p.Last()
	child, ok := parent.children[name]
	if !ok {
		return false, nil
	}
	descendants := child.getDescendants()
	if err := parent.deleteChild(name); err != nil {
		return false, nil
	}
	for _, d := range descendants {
		if _, err := d.serverStubs.Command.Delete(d.path); err != nil {
			log.Error.Printf("namingserver: delete command for %s failed: %v", d.path, err)
		}
	}
	return true, nil
}

// GetStorage implements brisk.Service.
func (s *Server) GetStorage(p path.Path) (brisk.StorageStubRef, error) {
	const op = "namingserver.Server.GetStorage"
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, err := s.root.getNodeByPath(p)
	if err != nil || node.isDir() {
		return brisk.StorageStubRef{}, errors.E(op, errors.NotFound)
	}
	return node.serverStubs.Ref().Storage, nil
}

// Register implements brisk.Registration: it admits a new storage
// server's stub pair and attempts to place every file it offers into the
// tree, returning the subset that were already owned by another storage
// server (spec.md §4.8's registration protocol).
func (s *Server) Register(ref brisk.ServerStubsRef, files []path.Path) ([]path.Path, error) {
	const op = "namingserver.Server.Register"
	stubs := brisk.ServerStubsFromRef(ref)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.registered {
		if r.Equal(stubs) {
			return nil, errors.E(op, errors.AlreadyRegistered)
		}
	}
	s.registered = append(s.registered, stubs)

	var duplicates []path.Path
	for _, f := range files {
		if err := s.insertFile(f, stubs); err != nil {
			duplicates = append(duplicates, f)
		}
	}
	return duplicates, nil
}

// resolveParent resolves p's parent directory and returns it along with
// p's final path component. It fails errors.NotFound if the parent does
// not exist or is not a directory.
func (s *Server) resolveParent(p path.Path) (*pathNode, string, error) {
	const op = "namingserver.Server.resolveParent"
	parent, err := s.root.getNodeByPath(p.Parent())
	if err != nil {
		return nil, "", errors.E(op, errors.NotFound, err)
	}
	if parent.isFile() {
		return nil, "", errors.E(op, errors.NotFound, errors.Str("parent is not a directory"))
	}
	return parent, p.Last(), nil
}

// pickStorageServer selects a registered storage server uniformly at
// random, per DESIGN.md. Caller must hold s.mu.
func (s *Server) pickStorageServer() (brisk.ServerStubs, error) {
	const op = "namingserver.Server.pickStorageServer"
	if len(s.registered) == 0 {
		return brisk.ServerStubs{}, errors.E(op, errors.NotFound, errors.Str("no storage servers registered"))
	}
	return s.registered[rand.IntN(len(s.registered))], nil
}

// insertFile walks f's components from the root, creating any missing
// intermediate directories, and places a file node owned by stubs at the
// leaf. It fails errors.Exist if the leaf is already occupied, or if any
// intermediate component is already a file.
func (s *Server) insertFile(f path.Path, stubs brisk.ServerStubs) error {
	const op = "namingserver.Server.insertFile"
	cur := s.root
	current := path.Root
	comps := f.Components()
	for i, c := range comps {
		next, err := path.NewPath(current, c)
		if err != nil {
			return errors.E(op, err)
		}
		current = next

		last := i == len(comps)-1
		child, exists := cur.children[c]
		if last {
			if exists {
				return errors.E(op, errors.Exist)
			}
			return cur.addChild(c, newFileNode(f, stubs))
		}
		if !exists {
			child = newDirNode(current)
			if err := cur.addChild(c, child); err != nil {
				return errors.E(op, err)
			}
		} else if child.isFile() {
			return errors.E(op, errors.Exist)
		}
		cur = child
	}
	return nil
}
