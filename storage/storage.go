// Package storage defines the remote interfaces a storage server
// exposes to the naming core and to clients, and the client-side
// façades that implement them over the RMI fabric. The concrete local
// read/write/create/delete behavior lives in storage/local: this
// package only carries the contracts the naming core consumes
// (SPEC_FULL.md §2 "storage-server interface surface").
package storage

import (
	"encoding/gob"
	"reflect"

	"github.com/ewanas/DFS/path"
	"github.com/ewanas/DFS/rmi"
)

// Storage is the remote interface a storage server exposes for reading
// and writing file content.
type Storage interface {
	// Read returns up to length bytes of p's content starting at
	// offset.
	Read(p path.Path, offset, length int64) ([]byte, error)
	// Write stores data at offset in p, extending the file if needed.
	Write(p path.Path, offset int64, data []byte) error
	// Size returns p's current content length.
	Size(p path.Path) (int64, error)
}

// Command is the remote interface a storage server exposes for the
// mutating operations the naming core itself triggers: creating a
// file's local copy and deleting it.
type Command interface {
	// Create creates an empty local file at p. It fails if p already
	// exists.
	Create(p path.Path) error
	// Delete removes p's local copy. It fails with NotFound if p does
	// not exist.
	Delete(p path.Path) error
}

var (
	storageType = reflect.TypeOf((*Storage)(nil)).Elem()
	commandType = reflect.TypeOf((*Command)(nil)).Elem()

	readDescriptor   = mustDescriptor(storageType, "Read")
	writeDescriptor  = mustDescriptor(storageType, "Write")
	sizeDescriptor   = mustDescriptor(storageType, "Size")
	createDescriptor = mustDescriptor(commandType, "Create")
	deleteDescriptor = mustDescriptor(commandType, "Delete")
)

func mustDescriptor(iface reflect.Type, name string) rmi.Descriptor {
	m, ok := iface.MethodByName(name)
	if !ok {
		panic("storage: no such method " + name)
	}
	return rmi.BuildDescriptor(m)
}

// Stub is the client-side façade for Storage: a generic rmi.Stub
// hand-wired to the three Storage methods (SPEC_FULL.md §4.4).
type Stub struct {
	*rmi.Stub
}

var _ Storage = Stub{}

// NewStub snapshots skel's address as a Storage façade.
func NewStub(skel *rmi.Skeleton) (Stub, error) {
	s, err := rmi.NewStub(storageType, skel)
	if err != nil {
		return Stub{}, err
	}
	return Stub{s}, nil
}

// NewStubForAddress builds a Storage façade dialing addr directly.
func NewStubForAddress(addr rmi.Address) (Stub, error) {
	s, err := rmi.NewStubForAddress(storageType, addr)
	if err != nil {
		return Stub{}, err
	}
	return Stub{s}, nil
}

// Equal reports whether s and other name the same Storage server.
func (s Stub) Equal(other Stub) bool {
	if s.Stub == nil || other.Stub == nil {
		return s.Stub == other.Stub
	}
	return s.Stub.Equal(other.Stub)
}

func (s Stub) Read(p path.Path, offset, length int64) ([]byte, error) {
	v, err := s.Invoke(readDescriptor, p, offset, length)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return v.([]byte), nil
}

func (s Stub) Write(p path.Path, offset int64, data []byte) error {
	_, err := s.Invoke(writeDescriptor, p, offset, data)
	return err
}

func (s Stub) Size(p path.Path) (int64, error) {
	v, err := s.Invoke(sizeDescriptor, p)
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

// CommandStub is the client-side façade for Command.
type CommandStub struct {
	*rmi.Stub
}

var _ Command = CommandStub{}

// NewCommandStub snapshots skel's address as a Command façade.
func NewCommandStub(skel *rmi.Skeleton) (CommandStub, error) {
	s, err := rmi.NewStub(commandType, skel)
	if err != nil {
		return CommandStub{}, err
	}
	return CommandStub{s}, nil
}

// NewCommandStubForAddress builds a Command façade dialing addr directly.
func NewCommandStubForAddress(addr rmi.Address) (CommandStub, error) {
	s, err := rmi.NewStubForAddress(commandType, addr)
	if err != nil {
		return CommandStub{}, err
	}
	return CommandStub{s}, nil
}

// Equal reports whether s and other name the same command endpoint.
func (s CommandStub) Equal(other CommandStub) bool {
	if s.Stub == nil || other.Stub == nil {
		return s.Stub == other.Stub
	}
	return s.Stub.Equal(other.Stub)
}

func (s CommandStub) Create(p path.Path) error {
	_, err := s.Invoke(createDescriptor, p)
	return err
}

func (s CommandStub) Delete(p path.Path) error {
	_, err := s.Invoke(deleteDescriptor, p)
	return err
}

func init() {
	gob.Register(Stub{})
	gob.Register(CommandStub{})
}
