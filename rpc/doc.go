/*
Package rpc implements brisk's RPC substrate: a stub (client-side handle)
whose method invocations are transparently executed on a remote object
held by a skeleton (server-side dispatcher), over a single TCP connection
per call.

Wire protocol

A single connection carries exactly one request and one response, then
closes. Both sides encode with encoding/gob, which is self-describing and
lets the same stream carry request arguments, response payloads, and
structured errors without a separate schema-compilation step. A request is

	request{Method string, ParamTypes []string, Args []interface{}}

and a response is

	response{Status Status, Value interface{}, Err *errors.WireError}

Status is one of the ResponseStatus codes (Ok, BadRequest, Unauthorized,
NotFound, InternalServerError; Forbidden/Conflict/ServiceUnavailable are
reserved and never emitted). Value carries the return value on Ok; Err
carries a chained, reconstitutable error on any other status.

Dispatch

A Skeleton is built from a Go interface type and a concrete target
implementing it. Every method of that interface must return error as its
final result; this is this port's equivalent of "every method declares
RemoteError" — there being no checked-exception mechanism in Go to
enforce it structurally, the Skeleton constructor checks it by reflection
and panics if it does not hold, matching the source's "construction fails
fatally" behavior.

Each accepted connection resolves the requested method by (name,
parameter type) against the interface (not against the target's full
method set, so a target with extra exported methods cannot be called
remotely), invokes it via reflection, and maps the outcome to a Status:
the method's own returned error becomes BadRequest; a missing method
becomes NotFound; reflection being unable to make the call becomes
Unauthorized; anything else (a bad request stream, a panic recovered
inside the call) becomes InternalServerError.

There is no second registry service layered on top of this protocol and
no generated code: a Stub is a small hand-written type per remote
interface (see the brisk package) that builds a request, calls
(*Stub).Call, and unwraps the response.
*/
package rpc
