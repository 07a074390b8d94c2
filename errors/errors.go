// Package errors defines the error taxonomy used across brisk: the naming
// server, storage servers, and the rpc transport all build errors with E
// and classify them with Kind so callers can type-switch on failure
// category instead of matching strings.
package errors

import (
	"bytes"
	"fmt"
)

// Kind classifies an error so that callers can act on it without string
// matching. The rpc package carries it across the wire (see WireError), so
// a client sees the Kind of a server-side failure.
type Kind uint8

// The kinds of error this package knows how to build.
const (
	Other             Kind = iota // unclassified
	Invalid                       // bad argument: empty component, reserved character, nil where required
	NotFound                      // path, method, or storage server absent
	OutOfBounds                   // negative offset/length, or a read/write past end of file
	IO                            // permission denied or other filesystem failure
	AlreadyStarted                // a skeleton was started twice
	AlreadyRegistered             // a storage server pair registered twice
	Exist                         // a tree node already occupies the requested name
	Internal                      // deserialization failure or other server-side bug
)

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "invalid argument"
	case NotFound:
		return "not found"
	case OutOfBounds:
		return "out of bounds"
	case IO:
		return "I/O error"
	case AlreadyStarted:
		return "already started"
	case AlreadyRegistered:
		return "already registered"
	case Exist:
		return "already exists"
	case Internal:
		return "internal error"
	case Other:
		return ""
	}
	return "unknown error kind"
}

// Error is the error type built by E. Err may be nil, in which case the
// error is a leaf; otherwise it wraps a cause, which may itself be an
// *Error (building a chain) or any other error.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

var _ error = (*Error)(nil)

// E builds an error from its arguments. The type of each argument
// determines its meaning:
//
//	string       the operation being performed, e.g. "storageserver.Read"
//	errors.Kind  the class of error
//	error        the underlying cause
//
// Only one argument of each type should be given; if more than one is,
// the last wins.
func E(args ...interface{}) error {
	if len(args) == 0 {
		return nil
	}
	e := &Error{}
	for _, arg := range args {
		switch a := arg.(type) {
		case string:
			e.Op = a
		case Kind:
			e.Kind = a
		case error:
			e.Err = a
		default:
			panic(fmt.Sprintf("errors.E: bad argument of type %T: %v", arg, arg))
		}
	}
	// Flatten: if this call didn't set a Kind and the cause is an *Error,
	// inherit the cause's kind so a caller that only wraps with an Op
	// still gets a sensible Kind().
	if e.Kind == Other {
		if ce, ok := e.Err.(*Error); ok {
			e.Kind = ce.Kind
		}
	}
	return e
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Error() string {
	b := new(bytes.Buffer)
	if e.Op != "" {
		b.WriteString(e.Op)
	}
	if e.Kind != Other {
		pad(b, ": ")
		b.WriteString(e.Kind.String())
	}
	if e.Err != nil {
		if _, ok := e.Err.(*Error); ok {
			pad(b, ":\n\t")
		} else {
			pad(b, ": ")
		}
		b.WriteString(e.Err.Error())
	}
	if b.Len() == 0 {
		return "no error"
	}
	return b.String()
}

func pad(b *bytes.Buffer, s string) {
	if b.Len() == 0 {
		return
	}
	b.WriteString(s)
}

// Is reports whether err is, or wraps, an *Error of the given Kind.
func Is(kind Kind, err error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			if e.Kind == kind {
				return true
			}
			err = e.Err
			continue
		}
		type unwrapper interface{ Unwrap() error }
		u, ok := err.(unwrapper)
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// KindOf returns the Kind of err if it is, or wraps, an *Error, or Other
// otherwise.
func KindOf(err error) Kind {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind
		}
		type unwrapper interface{ Unwrap() error }
		u, ok := err.(unwrapper)
		if !ok {
			return Other
		}
		err = u.Unwrap()
	}
	return Other
}

// Str is a convenience for building a leaf error from a plain string,
// usable as the error argument to E.
func Str(s string) error {
	return errorString(s)
}

type errorString string

func (e errorString) Error() string { return string(e) }

// WireError is the concrete, gob-friendly representation of an error
// chain crossing the rpc boundary (the Err field of the rpc package's
// wire response). It is reconstituted
// into an *Error chain by FromWire on the receiving side, so the cause and
// Kind of a server-side failure survive the trip to the client, per
// spec.md §4.2 and §7.
type WireError struct {
	Op      string
	Kind    Kind
	Message string // leaf text when Cause is nil
	Cause   *WireError
}

// ToWire flattens err (nil-safe) into a WireError chain for transmission.
func ToWire(err error) *WireError {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return &WireError{Op: e.Op, Kind: e.Kind, Cause: ToWire(e.Err)}
	}
	return &WireError{Message: err.Error()}
}

// FromWire reconstitutes a WireError chain into an error chain built from
// *Error values, with the innermost leaf an errors.Str of its Message.
func FromWire(w *WireError) error {
	if w == nil {
		return nil
	}
	if w.Cause == nil && w.Op == "" && w.Kind == Other {
		return Str(w.Message)
	}
	return &Error{Op: w.Op, Kind: w.Kind, Err: FromWire(w.Cause)}
}
