package naming

import (
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/ewanas/DFS/errors"
	"github.com/ewanas/DFS/path"
	"github.com/ewanas/DFS/rmi"
	"github.com/ewanas/DFS/storage"
)

type coreState int32

const (
	coreCreated coreState = iota
	coreRunning
	coreStopped
)

// fileEntry records, for one registered file, the binding that serves
// its content.
type fileEntry struct {
	binding Binding
}

// Core is the naming service's single in-memory implementation of
// Registration and Service. A single mutex guards every map, the
// simplest of the concurrency options SPEC_FULL.md §5 allows, and the
// one the teacher's own in-process directory implementation uses
// (dir/inprocess keys its tree by string-typed paths under one lock,
// rather than a lock per directory node).
type Core struct {
	mu sync.Mutex

	directories map[string]path.Path
	files       map[string]fileEntry
	// children maps a directory's key to the set of its immediate
	// children's last-component names, maintained incrementally so
	// List never has to rescan the whole namespace.
	children map[string]map[string]struct{}
	// bindings is the set of distinct storage servers registered so
	// far, keyed by Binding.key, used to pick a random target for
	// CreateFile and to reject a duplicate Register call.
	bindings map[string]Binding

	st int32 // atomic coreState

	regSkeleton *rmi.Skeleton
	svcSkeleton *rmi.Skeleton

	// OnStopped, if set, is invoked once when the core transitions to
	// Stopped, whether via Stop or because a skeleton's listener failed.
	OnStopped func(error)
}

// NewCore returns an empty, unstarted Core with just the root directory.
func NewCore() *Core {
	c := &Core{
		directories: map[string]path.Path{path.Root().String(): path.Root()},
		files:       map[string]fileEntry{},
		children:    map[string]map[string]struct{}{path.Root().String(): {}},
		bindings:    map[string]Binding{},
		st:          int32(coreCreated),
	}
	return c
}

func (c *Core) state() coreState {
	return coreState(atomic.LoadInt32(&c.st))
}

// Start binds a Registration skeleton at regAddr and a Service
// skeleton at svcAddr and begins serving both. It fails with
// IllegalState if called more than once.
func (c *Core) Start(regAddr, svcAddr rmi.Address) error {
	const op = "naming.Core.Start"
	c.mu.Lock()
	defer c.mu.Unlock()

	if coreState(c.st) != coreCreated {
		return errors.E(op, errors.IllegalState, errors.Str("core already started or stopped"))
	}

	regSkel, err := rmi.NewSkeleton(registrationType, registrationImpl{c}, regAddr)
	if err != nil {
		return errors.E(op, err)
	}
	svcSkel, err := rmi.NewSkeleton(serviceType, serviceImpl{c}, svcAddr)
	if err != nil {
		return errors.E(op, err)
	}

	// Stop waits for each skeleton's acceptor to exit, and ListenError
	// runs on that acceptor, so the stop is handed to its own goroutine.
	onFailure := func(err error) {
		go c.Stop(err)
	}
	regSkel.ListenError = func(err error) { onFailure(err) }
	svcSkel.ListenError = func(err error) { onFailure(err) }

	if err := regSkel.Start(); err != nil {
		return errors.E(op, err)
	}
	if err := svcSkel.Start(); err != nil {
		regSkel.Stop()
		return errors.E(op, err)
	}

	c.regSkeleton = regSkel
	c.svcSkeleton = svcSkel
	atomic.StoreInt32(&c.st, int32(coreRunning))
	return nil
}

// RegistrationAddress returns the address the Registration skeleton is
// bound to; valid only once Start has succeeded.
func (c *Core) RegistrationAddress() rmi.Address {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.regSkeleton == nil {
		return rmi.Address{}
	}
	return c.regSkeleton.Address()
}

// ServiceAddress returns the address the Service skeleton is bound to;
// valid only once Start has succeeded.
func (c *Core) ServiceAddress() rmi.Address {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.svcSkeleton == nil {
		return rmi.Address{}
	}
	return c.svcSkeleton.Address()
}

// Stop idempotently stops both skeletons and invokes OnStopped once,
// with cause (nil for a deliberate stop).
func (c *Core) Stop(cause error) {
	c.mu.Lock()
	if coreState(c.st) == coreStopped {
		c.mu.Unlock()
		return
	}
	atomic.StoreInt32(&c.st, int32(coreStopped))
	reg, svc, cb := c.regSkeleton, c.svcSkeleton, c.OnStopped
	c.mu.Unlock()

	if reg != nil {
		reg.Stop()
	}
	if svc != nil {
		svc.Stop()
	}
	if cb != nil {
		cb(cause)
	}
}

// ensureAncestorsLocked walks p's ancestor chain, adding every
// ancestor not already known as a directory (and wiring up the
// children index at each level). Callers must hold c.mu.
func (c *Core) ensureAncestorsLocked(p path.Path) {
	cur := p
	for !cur.IsRoot() {
		parent, err := cur.Parent()
		if err != nil {
			return
		}
		last, err := cur.Last()
		if err != nil {
			return
		}
		pk := parent.String()
		if _, ok := c.directories[pk]; !ok {
			c.directories[pk] = parent
		}
		if c.children[pk] == nil {
			c.children[pk] = map[string]struct{}{}
		}
		c.children[pk][last] = struct{}{}
		cur = parent
	}
}

// register implements Registration.Register. See naming.go for the
// contract.
func (c *Core) register(storageStub storage.Stub, commandStub storage.CommandStub, paths []path.Path) ([]path.Path, error) {
	const op = "naming.Core.Register"
	if storageStub.Stub == nil || commandStub.Stub == nil {
		return nil, errors.E(op, errors.InvalidArgument, errors.Str("nil storage or command stub"))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	b := Binding{Storage: storageStub, Command: commandStub}
	key := b.key()
	if _, exists := c.bindings[key]; exists {
		return nil, errors.E(op, errors.IllegalState, errors.Str("storage server already registered"))
	}
	c.bindings[key] = b

	var toDelete []path.Path
	for _, p := range paths {
		if p.IsRoot() {
			continue
		}
		pk := p.String()
		if _, isDir := c.directories[pk]; isDir {
			toDelete = append(toDelete, p)
			continue
		}
		if _, isFile := c.files[pk]; isFile {
			toDelete = append(toDelete, p)
			continue
		}
		c.files[pk] = fileEntry{binding: b}
		c.ensureAncestorsLocked(p)
	}
	return toDelete, nil
}

func (c *Core) isDirectory(p path.Path) (bool, error) {
	const op = "naming.Core.IsDirectory"
	c.mu.Lock()
	defer c.mu.Unlock()

	pk := p.String()
	if _, ok := c.directories[pk]; ok {
		return true, nil
	}
	if _, ok := c.files[pk]; ok {
		return false, nil
	}
	return false, errors.E(op, errors.NotFound, errors.Errorf("no such path: %s", p))
}

func (c *Core) list(dir path.Path) ([]string, error) {
	const op = "naming.Core.List"
	c.mu.Lock()
	defer c.mu.Unlock()

	dk := dir.String()
	if _, ok := c.directories[dk]; !ok {
		return nil, errors.E(op, errors.NotFound, errors.Errorf("not a directory: %s", dir))
	}
	kids := c.children[dk]
	out := make([]string, 0, len(kids))
	for name := range kids {
		out = append(out, name)
	}
	return out, nil
}

func (c *Core) createFile(p path.Path) (bool, error) {
	const op = "naming.Core.CreateFile"
	parent, err := p.Parent()
	if err != nil {
		return false, errors.E(op, errors.InvalidArgument, errors.Str("cannot create root"))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.directories[parent.String()]; !ok {
		return false, errors.E(op, errors.NotFound, errors.Errorf("parent not a directory: %s", parent))
	}
	pk := p.String()
	if _, isDir := c.directories[pk]; isDir {
		return false, nil
	}
	if _, isFile := c.files[pk]; isFile {
		return false, nil
	}
	if len(c.bindings) == 0 {
		return false, errors.E(op, errors.IllegalState, errors.Str("no storage server registered"))
	}
	bindings := make([]Binding, 0, len(c.bindings))
	for _, b := range c.bindings {
		bindings = append(bindings, b)
	}
	chosen := bindings[rand.Intn(len(bindings))]

	if err := chosen.Command.Create(p); err != nil {
		return false, errors.E(op, err)
	}

	c.files[pk] = fileEntry{binding: chosen}
	c.ensureAncestorsLocked(p)
	return true, nil
}

func (c *Core) createDirectory(p path.Path) (bool, error) {
	const op = "naming.Core.CreateDirectory"
	parent, err := p.Parent()
	if err != nil {
		return false, errors.E(op, errors.InvalidArgument, errors.Str("cannot create root"))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.directories[parent.String()]; !ok {
		return false, errors.E(op, errors.NotFound, errors.Errorf("parent not a directory: %s", parent))
	}
	pk := p.String()
	if _, isDir := c.directories[pk]; isDir {
		return false, nil
	}
	if _, isFile := c.files[pk]; isFile {
		return false, nil
	}
	c.directories[pk] = p
	if c.children[pk] == nil {
		c.children[pk] = map[string]struct{}{}
	}
	c.ensureAncestorsLocked(p)
	return true, nil
}

func (c *Core) delete(p path.Path) (bool, error) {
	const op = "naming.Core.Delete"
	if p.IsRoot() {
		return false, errors.E(op, errors.InvalidArgument, errors.Str("cannot delete root"))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	pk := p.String()
	if _, isDir := c.directories[pk]; isDir {
		if len(c.children[pk]) > 0 {
			return false, errors.E(op, errors.InvalidArgument, errors.Str("directory not empty"))
		}
		parent, _ := p.Parent()
		last, _ := p.Last()
		delete(c.directories, pk)
		delete(c.children, pk)
		if kids := c.children[parent.String()]; kids != nil {
			delete(kids, last)
		}
		return true, nil
	}

	entry, isFile := c.files[pk]
	if !isFile {
		return false, errors.E(op, errors.NotFound, errors.Errorf("no such path: %s", p))
	}

	if err := entry.binding.Command.Delete(p); err != nil {
		return false, errors.E(op, err)
	}

	parent, _ := p.Parent()
	last, _ := p.Last()
	delete(c.files, pk)
	if kids := c.children[parent.String()]; kids != nil {
		delete(kids, last)
	}
	return true, nil
}

func (c *Core) getStorage(p path.Path) (storage.Stub, error) {
	const op = "naming.Core.GetStorage"
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.files[p.String()]
	if !ok {
		return storage.Stub{}, errors.E(op, errors.NotFound, errors.Errorf("no such file: %s", p))
	}
	return entry.binding.Storage, nil
}
