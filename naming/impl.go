package naming

import (
	"github.com/ewanas/DFS/path"
	"github.com/ewanas/DFS/storage"
)

// registrationImpl and serviceImpl adapt *Core to the Registration and
// Service interfaces respectively, so that rmi.NewSkeleton can be
// handed a value whose reflect.Type actually implements the remote
// interface it serves, while Core's own methods stay unexported.
type registrationImpl struct{ c *Core }

var _ Registration = registrationImpl{}

func (r registrationImpl) Register(storageStub storage.Stub, commandStub storage.CommandStub, paths []path.Path) ([]path.Path, error) {
	return r.c.register(storageStub, commandStub, paths)
}

type serviceImpl struct{ c *Core }

var _ Service = serviceImpl{}

func (s serviceImpl) IsDirectory(p path.Path) (bool, error)        { return s.c.isDirectory(p) }
func (s serviceImpl) List(dir path.Path) ([]string, error)         { return s.c.list(dir) }
func (s serviceImpl) CreateFile(p path.Path) (bool, error)         { return s.c.createFile(p) }
func (s serviceImpl) CreateDirectory(p path.Path) (bool, error)    { return s.c.createDirectory(p) }
func (s serviceImpl) Delete(p path.Path) (bool, error)             { return s.c.delete(p) }
func (s serviceImpl) GetStorage(p path.Path) (storage.Stub, error) { return s.c.getStorage(p) }
