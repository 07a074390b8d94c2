package rpc

import (
	"encoding/gob"
	"fmt"
	"net"
	"reflect"

	"github.com/brisk-labs/brisk/errors"
	"github.com/google/uuid"
)

// serveOne implements the per-connection worker of spec.md §4.5: read one
// request, dispatch it, write exactly one response, close the connection
// — on every exit path, including a panic recovered from inside the
// dispatched call.
func (s *Skeleton) serveOne(conn net.Conn) {
	workerID := uuid.New()
	defer conn.Close()
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic in worker %s: %v", workerID, r)
			s.reportServiceError(err)
			_ = gob.NewEncoder(conn).Encode(&response{
				Status: InternalServerError,
				Err:    errors.ToWire(errors.E(errors.Internal, errors.Str(err.Error()))),
			})
		}
	}()

	var req request
	if err := gob.NewDecoder(conn).Decode(&req); err != nil {
		s.reportServiceError(fmt.Errorf("worker %s: decode request: %w", workerID, err))
		s.writeResponse(conn, &response{
			Status: InternalServerError,
			Err:    errors.ToWire(errors.E(errors.Internal, err)),
		})
		return
	}

	method, status, err := s.resolveMethod(req.Method, req.ParamTypes)
	if err != nil {
		s.writeResponse(conn, &response{Status: status, Err: errors.ToWire(err)})
		return
	}

	resp := s.invoke(method, req.Args)
	s.writeResponse(conn, resp)
}

// resolveMethod finds the method named name on the skeleton's interface
// whose parameter types match paramTypes, per spec.md §4.5 step 3. It
// returns errors.NotFound (status NotFound) if no such method exists on
// the interface, and errors.Invalid (status Unauthorized, modeling
// "reflection/access forbids the call") if the method exists on the
// interface but is not exposed by the target's concrete type.
func (s *Skeleton) resolveMethod(name string, paramTypes []string) (reflect.Value, Status, error) {
	const op = "rpc.resolveMethod"
	ifaceMethod, ok := s.iface.MethodByName(name)
	if !ok || !paramTypesMatch(ifaceMethod.Type, paramTypes) {
		return reflect.Value{}, NotFound, errors.E(op, errors.NotFound, errors.Str("no such method: "+name))
	}
	target := s.target.MethodByName(name)
	if !target.IsValid() {
		return reflect.Value{}, Unauthorized, errors.E(op, errors.Invalid, errors.Str("target does not expose method: "+name))
	}
	return target, Ok, nil
}

func paramTypesMatch(methodType reflect.Type, paramTypes []string) bool {
	if methodType.NumIn() != len(paramTypes) {
		return false
	}
	for i := 0; i < methodType.NumIn(); i++ {
		if methodType.In(i).String() != paramTypes[i] {
			return false
		}
	}
	return true
}

// invoke calls method with args via reflection and maps the outcome onto
// a response, per spec.md §4.5 steps 4-8. The method's final return value
// is always assumed to be its error result; any earlier return values
// become the response payload (there is at most one, by convention of
// every remote interface in this package).
func (s *Skeleton) invoke(method reflect.Value, args []interface{}) *response {
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		if a == nil {
			in[i] = reflect.Zero(method.Type().In(i))
			continue
		}
		in[i] = reflect.ValueOf(a)
	}

	out := method.Call(in)
	errVal := out[len(out)-1]
	if !errVal.IsNil() {
		callErr, _ := errVal.Interface().(error)
		return &response{Status: BadRequest, Err: errors.ToWire(callErr)}
	}

	if len(out) == 1 {
		return &response{Status: Ok, Value: void{}}
	}
	return &response{Status: Ok, Value: out[0].Interface()}
}

func (s *Skeleton) writeResponse(conn net.Conn, resp *response) {
	if err := gob.NewEncoder(conn).Encode(resp); err != nil {
		s.reportServiceError(fmt.Errorf("write response: %w", err))
	}
}
