package brisk

import (
	"encoding/gob"
	"reflect"

	"github.com/brisk-labs/brisk/path"
	"github.com/brisk-labs/brisk/rpc"
)

func init() {
	gob.Register(StorageStubRef{})
	gob.Register(ServerStubsRef{})
}

// StorageStubRef is the wire-transmissible address of a storage server's
// Storage stub: the return value of Service.GetStorage. The caller turns
// it into a callable Storage with NewStorageStub.
type StorageStubRef struct {
	Addr string
}

// CommandStubRef is the wire-transmissible address of a storage server's
// Command stub.
type CommandStubRef struct {
	Addr string
}

// ServerStubsRef is the wire-transmissible form of a ServerStubs pair,
// as offered to Registration.Register.
type ServerStubsRef struct {
	Storage StorageStubRef
	Command CommandStubRef
}

var (
	storageType      = reflect.TypeOf((*Storage)(nil)).Elem()
	commandType      = reflect.TypeOf((*Command)(nil)).Elem()
	serviceType      = reflect.TypeOf((*Service)(nil)).Elem()
	registrationType = reflect.TypeOf((*Registration)(nil)).Elem()
)

// addressed is implemented by every stub type in this package so
// ServerStubs.Equal can compare stub identity (address + interface)
// without opening a connection, per spec.md §3's "Equality is pair-wise
// on stub identity (address + interface)".
type addressed interface {
	stubAddress() string
}

// ServerStubs is a live, callable pair (storage stub, command stub)
// referring to the same storage server, per spec.md §3. It is the type
// the naming server holds internally once a storage server has
// registered; see ServerStubsRef for its wire form.
type ServerStubs struct {
	Storage Storage
	Command Command
}

// Ref returns the wire-transmissible address pair for s.
func (s ServerStubs) Ref() ServerStubsRef {
	return ServerStubsRef{
		Storage: StorageStubRef{Addr: s.Storage.(addressed).stubAddress()},
		Command: CommandStubRef{Addr: s.Command.(addressed).stubAddress()},
	}
}

// Equal reports whether s and other refer to the same storage server:
// equal storage-stub address and equal command-stub address.
func (s ServerStubs) Equal(other ServerStubs) bool {
	as, aok := s.Storage.(addressed)
	bs, bok := other.Storage.(addressed)
	ac, acok := s.Command.(addressed)
	bc, bcok := other.Command.(addressed)
	if !aok || !bok || !acok || !bcok {
		return false
	}
	return as.stubAddress() == bs.stubAddress() && ac.stubAddress() == bc.stubAddress()
}

// ServerStubsFromRef reconstructs a live ServerStubs from its wire form.
func ServerStubsFromRef(ref ServerStubsRef) ServerStubs {
	return ServerStubs{
		Storage: NewStorageStub(ref.Storage.Addr),
		Command: NewCommandStub(ref.Command.Addr),
	}
}

// storageStub is the client-side handle for the Storage interface.
type storageStub struct{ s *rpc.Stub }

// NewStorageStub returns a Storage stub bound to addr.
func NewStorageStub(addr string) Storage {
	return &storageStub{s: rpc.NewStub(storageType, addr)}
}

func (c *storageStub) stubAddress() string { return c.s.Address() }
func (c *storageStub) String() string      { return c.s.String() }

func (c *storageStub) Size(p path.Path) (int64, error) {
	v, err := c.s.Call("Size", []string{"path.Path"}, []interface{}{p})
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

func (c *storageStub) Read(p path.Path, offset, length int64) ([]byte, error) {
	v, err := c.s.Call("Read", []string{"path.Path", "int64", "int64"}, []interface{}{p, offset, length})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (c *storageStub) Write(p path.Path, offset int64, data []byte) error {
	_, err := c.s.Call("Write", []string{"path.Path", "int64", "[]uint8"}, []interface{}{p, offset, data})
	return err
}

// commandStub is the client-side handle for the Command interface.
type commandStub struct{ s *rpc.Stub }

// NewCommandStub returns a Command stub bound to addr.
func NewCommandStub(addr string) Command {
	return &commandStub{s: rpc.NewStub(commandType, addr)}
}

func (c *commandStub) stubAddress() string { return c.s.Address() }
func (c *commandStub) String() string      { return c.s.String() }

func (c *commandStub) Create(p path.Path) (bool, error) {
	v, err := c.s.Call("Create", []string{"path.Path"}, []interface{}{p})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (c *commandStub) Delete(p path.Path) (bool, error) {
	v, err := c.s.Call("Delete", []string{"path.Path"}, []interface{}{p})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// serviceStub is the client-side handle for the Service interface.
type serviceStub struct{ s *rpc.Stub }

// NewServiceStub returns a Service stub bound to addr.
func NewServiceStub(addr string) Service {
	return &serviceStub{s: rpc.NewStub(serviceType, addr)}
}

func (c *serviceStub) stubAddress() string { return c.s.Address() }
func (c *serviceStub) String() string      { return c.s.String() }

func (c *serviceStub) IsDirectory(p path.Path) (bool, error) {
	v, err := c.s.Call("IsDirectory", []string{"path.Path"}, []interface{}{p})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (c *serviceStub) List(p path.Path) ([]string, error) {
	v, err := c.s.Call("List", []string{"path.Path"}, []interface{}{p})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

func (c *serviceStub) CreateFile(p path.Path) (bool, error) {
	v, err := c.s.Call("CreateFile", []string{"path.Path"}, []interface{}{p})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (c *serviceStub) CreateDirectory(p path.Path) (bool, error) {
	v, err := c.s.Call("CreateDirectory", []string{"path.Path"}, []interface{}{p})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (c *serviceStub) Delete(p path.Path) (bool, error) {
	v, err := c.s.Call("Delete", []string{"path.Path"}, []interface{}{p})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (c *serviceStub) GetStorage(p path.Path) (StorageStubRef, error) {
	v, err := c.s.Call("GetStorage", []string{"path.Path"}, []interface{}{p})
	if err != nil {
		return StorageStubRef{}, err
	}
	return v.(StorageStubRef), nil
}

// registrationStub is the client-side handle for the Registration
// interface.
type registrationStub struct{ s *rpc.Stub }

// NewRegistrationStub returns a Registration stub bound to addr.
func NewRegistrationStub(addr string) Registration {
	return &registrationStub{s: rpc.NewStub(registrationType, addr)}
}

func (c *registrationStub) stubAddress() string { return c.s.Address() }
func (c *registrationStub) String() string      { return c.s.String() }

func (c *registrationStub) Register(stubs ServerStubsRef, files []path.Path) ([]path.Path, error) {
	v, err := c.s.Call("Register", []string{"brisk.ServerStubsRef", "[]path.Path"}, []interface{}{stubs, files})
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return v.([]path.Path), nil
}
