package naming

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ewanas/DFS/errors"
	"github.com/ewanas/DFS/path"
	"github.com/ewanas/DFS/rmi"
	"github.com/ewanas/DFS/storage"
	"github.com/ewanas/DFS/storage/local"
)

// startCore starts a fresh Core on loopback wildcard addresses and
// registers it for cleanup.
func startCore(t *testing.T) *Core {
	t.Helper()
	c := NewCore()
	err := c.Start(rmi.Address{}, rmi.Address{})
	require.NoError(t, err)
	t.Cleanup(func() { c.Stop(nil) })
	return c
}

// startStorageServer starts a storage.local.Server behind its own
// Storage and Command skeletons and returns ready-to-use stubs.
func startStorageServer(t *testing.T) (storage.Stub, storage.CommandStub) {
	t.Helper()
	root := t.TempDir()
	srv := local.New(root)

	storageIface := reflect.TypeOf((*storage.Storage)(nil)).Elem()
	commandIface := reflect.TypeOf((*storage.Command)(nil)).Elem()

	storageSkel, err := rmi.NewSkeleton(storageIface, srv, rmi.Address{})
	require.NoError(t, err)
	require.NoError(t, storageSkel.Start())
	t.Cleanup(storageSkel.Stop)

	commandSkel, err := rmi.NewSkeleton(commandIface, srv, rmi.Address{})
	require.NoError(t, err)
	require.NoError(t, commandSkel.Start())
	t.Cleanup(commandSkel.Stop)

	ss, err := storage.NewStub(storageSkel)
	require.NoError(t, err)
	cs, err := storage.NewCommandStub(commandSkel)
	require.NoError(t, err)
	return ss, cs
}

func TestRegisterThenCreateFileAndList(t *testing.T) {
	c := startCore(t)
	regStub, err := NewRegistrationStubForAddress(c.RegistrationAddress())
	require.NoError(t, err)
	svcStub, err := NewServiceStubForAddress(c.ServiceAddress())
	require.NoError(t, err)

	ss, cs := startStorageServer(t)
	toDelete, err := regStub.Register(ss, cs, nil)
	require.NoError(t, err)
	require.Empty(t, toDelete)

	docs, err := path.Parse("/docs")
	require.NoError(t, err)
	_, err = svcStub.CreateDirectory(docs)
	require.NoError(t, err)

	p, err := path.Parse("/docs/readme.txt")
	require.NoError(t, err)

	created, err := svcStub.CreateFile(p)
	require.NoError(t, err)
	require.True(t, created)

	isDir, err := svcStub.IsDirectory(p)
	require.NoError(t, err)
	require.False(t, isDir)

	parent, err := p.Parent()
	require.NoError(t, err)
	isDir, err = svcStub.IsDirectory(parent)
	require.NoError(t, err)
	require.True(t, isDir)

	children, err := svcStub.List(parent)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"readme.txt"}, children)

	gotStub, err := svcStub.GetStorage(p)
	require.NoError(t, err)
	require.True(t, gotStub.Equal(ss))
}

func TestCreateFileFailsNotFoundWithoutParent(t *testing.T) {
	c := startCore(t)
	svcStub, err := NewServiceStubForAddress(c.ServiceAddress())
	require.NoError(t, err)

	p, err := path.Parse("/missing/parent/file.txt")
	require.NoError(t, err)
	_, err = svcStub.CreateFile(p)
	require.Error(t, err)
	require.True(t, errors.Is(errors.NotFound, err))
}

func TestCreateFileFailsIllegalStateWithoutStorage(t *testing.T) {
	c := startCore(t)
	svcStub, err := NewServiceStubForAddress(c.ServiceAddress())
	require.NoError(t, err)

	p, err := path.Parse("/file.txt")
	require.NoError(t, err)
	_, err = svcStub.CreateFile(p)
	require.Error(t, err)
	require.True(t, errors.Is(errors.IllegalState, err))
}

func TestRegisterRejectsDuplicateBinding(t *testing.T) {
	c := startCore(t)
	regStub, err := NewRegistrationStubForAddress(c.RegistrationAddress())
	require.NoError(t, err)

	ss, cs := startStorageServer(t)
	_, err = regStub.Register(ss, cs, nil)
	require.NoError(t, err)

	_, err = regStub.Register(ss, cs, nil)
	require.Error(t, err)
	require.True(t, errors.Is(errors.IllegalState, err))
}

func TestRegisterReconcilesExistingPaths(t *testing.T) {
	c := startCore(t)
	regStub, err := NewRegistrationStubForAddress(c.RegistrationAddress())
	require.NoError(t, err)
	svcStub, err := NewServiceStubForAddress(c.ServiceAddress())
	require.NoError(t, err)

	ss, cs := startStorageServer(t)
	_, err = regStub.Register(ss, cs, nil)
	require.NoError(t, err)

	p, err := path.Parse("/shared.txt")
	require.NoError(t, err)
	_, err = svcStub.CreateFile(p)
	require.NoError(t, err)

	ss2, cs2 := startStorageServer(t)
	toDelete, err := regStub.Register(ss2, cs2, []path.Path{p})
	require.NoError(t, err)
	require.Len(t, toDelete, 1)
	require.True(t, toDelete[0].Equal(p))
}

func TestDeleteFileAndEmptyDirectory(t *testing.T) {
	c := startCore(t)
	regStub, err := NewRegistrationStubForAddress(c.RegistrationAddress())
	require.NoError(t, err)
	svcStub, err := NewServiceStubForAddress(c.ServiceAddress())
	require.NoError(t, err)

	ss, cs := startStorageServer(t)
	_, err = regStub.Register(ss, cs, nil)
	require.NoError(t, err)

	top, err := path.Parse("/a")
	require.NoError(t, err)
	_, err = svcStub.CreateDirectory(top)
	require.NoError(t, err)

	dir, err := path.Parse("/a/b")
	require.NoError(t, err)
	_, err = svcStub.CreateDirectory(dir)
	require.NoError(t, err)

	p, err := path.Parse("/a/b/file.txt")
	require.NoError(t, err)
	_, err = svcStub.CreateFile(p)
	require.NoError(t, err)

	_, err = svcStub.Delete(dir)
	require.Error(t, err)
	require.True(t, errors.Is(errors.InvalidArgument, err))

	ok, err := svcStub.Delete(p)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svcStub.Delete(dir)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svcStub.IsDirectory(dir)
	require.Error(t, err)
	require.True(t, errors.Is(errors.NotFound, err))
}

func TestDeleteRootFails(t *testing.T) {
	c := startCore(t)
	svcStub, err := NewServiceStubForAddress(c.ServiceAddress())
	require.NoError(t, err)

	_, err = svcStub.Delete(path.Root())
	require.Error(t, err)
	require.True(t, errors.Is(errors.InvalidArgument, err))
}
