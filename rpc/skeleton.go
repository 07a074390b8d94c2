package rpc

import (
	"net"
	"reflect"
	"sync"

	"github.com/brisk-labs/brisk/errors"
	"github.com/brisk-labs/brisk/log"
	"golang.org/x/sync/errgroup"
)

type lifecycleState int

const (
	created lifecycleState = iota
	running
	stopped
)

// Skeleton is the server-side dispatcher for a remote interface: it binds
// a listening socket, accepts connections, and dispatches each request to
// a target object by (method name, parameter types), per spec.md §4.3.
//
// A Skeleton's lifecycle is strictly monotonic: created -> running ->
// stopped. It cannot be started twice and cannot be restarted once
// stopped.
type Skeleton struct {
	iface  reflect.Type
	target reflect.Value

	mu    sync.Mutex
	state lifecycleState
	addr  string
	ln    net.Listener

	workers   errgroup.Group
	stopOnce  sync.Once

	// ListenError is called on top-level listener errors. Its default
	// (nil) behavior is to shut the skeleton down; returning true from a
	// custom hook keeps the listener running instead.
	ListenError func(error) bool

	// ServiceError is called on top-level worker errors (a panic
	// recovered from inside a dispatched call, or a transport failure
	// while serving one connection). The default (nil) is silent.
	ServiceError func(error)

	// Stopped is called exactly once, after Stop() has closed the
	// listener and all in-flight workers have completed.
	Stopped func(cause error)
}

// NewSkeleton returns a Skeleton dispatching to target, which must
// implement iface. addr may be "" to bind a system-assigned port.
// Construction fails fatally (panics) if iface is not an interface or any
// of its methods does not return error as its last result — see
// validateRemoteInterface.
func NewSkeleton(iface reflect.Type, target interface{}, addr string) *Skeleton {
	validateRemoteInterface(iface)
	tv := reflect.ValueOf(target)
	if !tv.Type().Implements(iface) {
		panic("rpc: target does not implement " + iface.String())
	}
	return &Skeleton{
		iface:  iface,
		target: tv,
		addr:   addr,
		state:  created,
	}
}

// Start binds the listening socket (a system-assigned port if none was
// given to NewSkeleton), spawns the listener goroutine, and returns
// immediately. Calling Start on a running or previously-stopped Skeleton
// fails with errors.AlreadyStarted.
func (s *Skeleton) Start() error {
	const op = "rpc.Skeleton.Start"
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != created {
		return errors.E(op, errors.AlreadyStarted)
	}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.E(op, errors.IO, err)
	}
	s.ln = ln
	s.addr = ln.Addr().String()
	s.state = running
	go s.acceptLoop()
	return nil
}

// Addr returns the bound address. It is only meaningful after Start has
// returned successfully.
func (s *Skeleton) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

func (s *Skeleton) alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == running
}

func (s *Skeleton) acceptLoop() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if !s.alive() {
				return // orderly shutdown: Stop() closed the listener
			}
			shutdown := true
			if s.ListenError != nil {
				shutdown = !s.ListenError(err)
			}
			if shutdown {
				s.Stop()
				return
			}
			continue
		}
		s.workers.Go(func() error {
			s.serveOne(conn)
			return nil
		})
	}
}

// Stop signals the listener to cease accepting, closes the server
// socket, lets in-flight workers run to completion, then invokes Stopped
// exactly once. A stopped Skeleton must not be restarted.
func (s *Skeleton) Stop() {
	s.mu.Lock()
	if s.state == created {
		s.state = stopped
		s.mu.Unlock()
		s.invokeStopped()
		return
	}
	if s.state == stopped {
		s.mu.Unlock()
		return
	}
	s.state = stopped
	ln := s.ln
	s.mu.Unlock()

	if ln != nil {
		ln.Close()
	}
	s.workers.Wait()
	s.invokeStopped()
}

func (s *Skeleton) invokeStopped() {
	s.stopOnce.Do(func() {
		if s.Stopped != nil {
			s.Stopped(nil)
		}
	})
}

func (s *Skeleton) reportServiceError(err error) {
	if s.ServiceError != nil {
		s.ServiceError(err)
	} else {
		log.Debug.Printf("rpc: service error: %v", err)
	}
}
