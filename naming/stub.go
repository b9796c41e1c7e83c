package naming

import (
	"github.com/ewanas/DFS/path"
	"github.com/ewanas/DFS/rmi"
	"github.com/ewanas/DFS/storage"
)

// RegistrationStub is the client-side façade for Registration, dialed
// once by a storage server at startup.
type RegistrationStub struct {
	*rmi.Stub
}

var _ Registration = RegistrationStub{}

// NewRegistrationStubForAddress builds a RegistrationStub dialing the
// naming service's well-known registration address.
func NewRegistrationStubForAddress(addr rmi.Address) (RegistrationStub, error) {
	s, err := rmi.NewStubForAddress(registrationType, addr)
	if err != nil {
		return RegistrationStub{}, err
	}
	return RegistrationStub{s}, nil
}

func (r RegistrationStub) Register(storageStub storage.Stub, commandStub storage.CommandStub, paths []path.Path) ([]path.Path, error) {
	v, err := r.Invoke(registerDescriptor, storageStub, commandStub, paths)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return v.([]path.Path), nil
}

// ServiceStub is the client-side façade for Service, used by every
// filesystem client.
type ServiceStub struct {
	*rmi.Stub
}

var _ Service = ServiceStub{}

// NewServiceStubForAddress builds a ServiceStub dialing the naming
// service's well-known service address.
func NewServiceStubForAddress(addr rmi.Address) (ServiceStub, error) {
	s, err := rmi.NewStubForAddress(serviceType, addr)
	if err != nil {
		return ServiceStub{}, err
	}
	return ServiceStub{s}, nil
}

func (s ServiceStub) IsDirectory(p path.Path) (bool, error) {
	v, err := s.Invoke(isDirectoryDescriptor, p)
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (s ServiceStub) List(dir path.Path) ([]string, error) {
	v, err := s.Invoke(listDescriptor, dir)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return v.([]string), nil
}

func (s ServiceStub) CreateFile(p path.Path) (bool, error) {
	v, err := s.Invoke(createFileDescriptor, p)
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (s ServiceStub) CreateDirectory(p path.Path) (bool, error) {
	v, err := s.Invoke(createDirectoryDescriptor, p)
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (s ServiceStub) Delete(p path.Path) (bool, error) {
	v, err := s.Invoke(deleteDescriptor, p)
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (s ServiceStub) GetStorage(p path.Path) (storage.Stub, error) {
	v, err := s.Invoke(getStorageDescriptor, p)
	if err != nil {
		return storage.Stub{}, err
	}
	return v.(storage.Stub), nil
}
