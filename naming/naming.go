// Package naming implements the authoritative namespace of the
// distributed filesystem: the directory tree, the path-to-storage
// bindings, and the storage-registration protocol that reconciles a
// joining storage server's local files against the global namespace
// (SPEC_FULL.md §4.5).
package naming

import (
	"reflect"

	"github.com/ewanas/DFS/path"
	"github.com/ewanas/DFS/rmi"
	"github.com/ewanas/DFS/storage"
)

// Binding identifies one storage server's two remote handles: the
// Storage stub holding its file content, and the Command stub that
// accepts the naming core's mutating requests for files it hosts.
type Binding struct {
	Storage storage.Stub
	Command storage.CommandStub
}

// key returns a value-equality key for b, since Binding itself embeds
// pointer-valued stubs and, used directly as a Go map key, would compare
// by pointer identity rather than by address and interface.
func (b Binding) key() string {
	return b.Storage.String() + "#" + b.Command.String()
}

// Registration is the remote interface a storage server calls exactly
// once, at startup, to join the namespace.
type Registration interface {
	// Register records storageStub/commandStub as a new binding and
	// reconciles paths — the storage server's local file inventory —
	// against the existing namespace. It returns the subset of paths
	// already claimed by some other binding or known as a directory;
	// the storage server must delete its local copies of those. The
	// root path, if present in paths, is silently ignored. Registering
	// an already-registered binding fails with IllegalState.
	Register(storageStub storage.Stub, commandStub storage.CommandStub, paths []path.Path) ([]path.Path, error)
}

// Service is the remote interface a client calls to read and mutate
// the namespace.
type Service interface {
	// IsDirectory reports whether p is a known directory. NotFound if
	// p is neither a directory nor a file.
	IsDirectory(p path.Path) (bool, error)
	// List returns the immediate children (file and directory last
	// components) of dir. NotFound if dir is not a directory.
	List(dir path.Path) ([]string, error)
	// CreateFile creates p on a randomly chosen registered storage
	// server, returning false if p already exists. NotFound if p's
	// parent is not a directory; IllegalState if no storage server is
	// registered.
	CreateFile(p path.Path) (bool, error)
	// CreateDirectory creates p as a directory, returning false if p
	// already exists. NotFound if p's parent is not a directory.
	CreateDirectory(p path.Path) (bool, error)
	// Delete removes p from the namespace (and, for a file, from its
	// storage server). A non-empty directory cannot be deleted.
	Delete(p path.Path) (bool, error)
	// GetStorage returns the storage stub bound to file p. NotFound if
	// p is not a registered file.
	GetStorage(p path.Path) (storage.Stub, error)
}

var (
	registrationType = reflect.TypeOf((*Registration)(nil)).Elem()
	serviceType      = reflect.TypeOf((*Service)(nil)).Elem()

	registerDescriptor        = mustDescriptor(registrationType, "Register")
	isDirectoryDescriptor     = mustDescriptor(serviceType, "IsDirectory")
	listDescriptor            = mustDescriptor(serviceType, "List")
	createFileDescriptor      = mustDescriptor(serviceType, "CreateFile")
	createDirectoryDescriptor = mustDescriptor(serviceType, "CreateDirectory")
	deleteDescriptor          = mustDescriptor(serviceType, "Delete")
	getStorageDescriptor      = mustDescriptor(serviceType, "GetStorage")
)

func mustDescriptor(iface reflect.Type, name string) rmi.Descriptor {
	m, ok := iface.MethodByName(name)
	if !ok {
		panic("naming: no such method " + name)
	}
	return rmi.BuildDescriptor(m)
}
