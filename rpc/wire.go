package rpc

import (
	"encoding/gob"
	"fmt"

	"github.com/brisk-labs/brisk/errors"
	"github.com/brisk-labs/brisk/path"
)

// request is the wire request of spec.md §3: method name, ordered
// parameter-type descriptors, ordered argument values.
type request struct {
	Method     string
	ParamTypes []string
	Args       []interface{}
}

// response is the wire response: a status plus either a payload (on Ok)
// or a structured error.
type response struct {
	Status Status
	Value  interface{}
	Err    *errors.WireError
}

// void is the payload sentinel for a method whose only result is error.
type void struct{}

func init() {
	// Concrete types that may occupy the Args or Value interface{}
	// fields above must be registered so gob can encode/decode them.
	gob.Register(path.Path{})
	gob.Register([]path.Path{})
	gob.Register([]string{})
	gob.Register(void{})
}

// RemoteError reports a transport or protocol failure: the connection
// could not be established, the stream was corrupted, or the peer is not
// reachable. It is always surfaced to the stub's caller, as opposed to a
// domain error produced by the target method itself (which arrives as a
// BadRequest-status response and is unwrapped via errors.FromWire
// instead).
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("rpc: %s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }
