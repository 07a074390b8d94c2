package rpc

import (
	"encoding/gob"
	"fmt"
	"net"
	"reflect"
	"time"

	"github.com/brisk-labs/brisk/errors"
)

var dialTimeout = 10 * time.Second

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// validateRemoteInterface checks that iface is an interface type every
// method of which returns error as its last result. This is this port's
// equivalent of "every method of I must declare RemoteError" (spec.md
// §4.3/§4.4): Go has no checked-exception mechanism to enforce it
// structurally, so the constructors of both Stub and Skeleton check it at
// construction time and panic if it does not hold — construction
// "fails fatally", per spec.md §7's Fatal class of non-recoverable error.
func validateRemoteInterface(iface reflect.Type) {
	if iface == nil || iface.Kind() != reflect.Interface {
		panic(fmt.Sprintf("rpc: %v is not an interface", iface))
	}
	for i := 0; i < iface.NumMethod(); i++ {
		m := iface.Method(i)
		if m.Type.NumOut() == 0 || m.Type.Out(m.Type.NumOut()-1) != errorType {
			panic(fmt.Sprintf("rpc: %v.%s does not declare RemoteError (a trailing error result)", iface, m.Name))
		}
	}
}

// Stub is a client-side handle bound to a fixed remote address and a
// remote interface. Every interface method invocation on a Stub opens a
// new connection, performs one request/response, and closes it (spec.md
// §4.4). Equality, hashing and string conversion of a Stub are always
// local: they never touch the network.
type Stub struct {
	iface reflect.Type
	addr  string
}

// NewStub returns a stub bound to addr for the given remote interface.
// It panics if iface is not an interface or any of its methods does not
// return error as its final result.
func NewStub(iface reflect.Type, addr string) *Stub {
	validateRemoteInterface(iface)
	return &Stub{iface: iface, addr: addr}
}

// Address returns the stub's fixed target address.
func (s *Stub) Address() string { return s.addr }

// Equal reports whether s and other are stubs for the same interface at
// the same address. This is a local method: it never opens a connection.
func (s *Stub) Equal(other *Stub) bool {
	if other == nil {
		return false
	}
	return s.iface == other.iface && s.addr == other.addr
}

// String returns a human-readable description of the stub. This is a
// local method: it never opens a connection.
func (s *Stub) String() string {
	return fmt.Sprintf("%s@%s", s.iface, s.addr)
}

// Call performs one request/response round trip for method, whose
// arguments are args (already matching the remote method's parameter
// types) described by paramTypes, and returns the decoded payload value.
// If the method's server-side invocation failed, the returned error is
// the reconstituted cause (see errors.FromWire); if the round trip itself
// failed, the returned error is a *RemoteError.
func (s *Stub) Call(method string, paramTypes []string, args []interface{}) (interface{}, error) {
	conn, err := net.DialTimeout("tcp", s.addr, dialTimeout)
	if err != nil {
		return nil, &RemoteError{Op: method, Err: err}
	}
	defer conn.Close()

	enc := gob.NewEncoder(conn)
	if err := enc.Encode(&request{Method: method, ParamTypes: paramTypes, Args: args}); err != nil {
		return nil, &RemoteError{Op: method, Err: err}
	}

	var resp response
	dec := gob.NewDecoder(conn)
	if err := dec.Decode(&resp); err != nil {
		return nil, &RemoteError{Op: method, Err: err}
	}

	if resp.Status != Ok {
		return nil, errors.FromWire(resp.Err)
	}
	return resp.Value, nil
}
