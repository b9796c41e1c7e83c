package rmi

import (
	"encoding/gob"
	"fmt"
	"net"
	"reflect"

	"github.com/ewanas/DFS/errors"
)

// Stub is the client-side, generic half of the RMI fabric: it knows
// the skeleton address it targets and the name of the interface it
// satisfies, and it performs exactly one TCP round trip per Invoke.
// There is no pooling or multiplexing — every call opens a fresh
// connection (SPEC_FULL.md §4.4 "one connection per call").
//
// A Stub is not itself a remote interface's implementation: per-
// interface façade types (see the naming and storage packages) embed a
// Stub and implement the interface by forwarding every method to
// Invoke. This is the Go encoding of the "proxy object" the source
// language's dynamic proxies provide and Go's type system does not
// (SPEC_FULL.md §9 "Proxy object → typed façade").
type Stub struct {
	Addr      Address
	IfaceName string
}

// NewStub snapshots skel's current address and returns a Stub for
// iface. It fails with IllegalState if skel has never been started and
// carries no preassigned address, with InvalidArgument if iface is not
// a remote interface or either argument is nil, and with UnknownHost if
// the address is a wildcard with no discoverable local host address.
func NewStub(iface reflect.Type, skel *Skeleton) (*Stub, error) {
	const op = "rmi.NewStub"
	if skel == nil {
		return nil, errors.E(op, errors.InvalidArgument, errors.Str("skeleton is nil"))
	}
	if err := ValidateRemoteInterface(iface); err != nil {
		return nil, err
	}
	addr := skel.Address()
	if addr.Port == 0 && skel.state() == created {
		return nil, errors.E(op, errors.IllegalState, errors.Str("skeleton has no address: never started"))
	}
	resolved, err := addr.resolved()
	if err != nil {
		return nil, err
	}
	return &Stub{Addr: resolved, IfaceName: iface.String()}, nil
}

// NewStubWithHostname is like NewStub but overrides the hostname,
// inheriting only the skeleton's port.
func NewStubWithHostname(iface reflect.Type, skel *Skeleton, hostname string) (*Stub, error) {
	const op = "rmi.NewStubWithHostname"
	if skel == nil {
		return nil, errors.E(op, errors.InvalidArgument, errors.Str("skeleton is nil"))
	}
	if err := ValidateRemoteInterface(iface); err != nil {
		return nil, err
	}
	addr := skel.Address()
	if addr.Port == 0 && skel.state() == created {
		return nil, errors.E(op, errors.IllegalState, errors.Str("skeleton has no address: never started"))
	}
	return &Stub{Addr: Address{Host: hostname, Port: addr.Port}, IfaceName: iface.String()}, nil
}

// NewStubForAddress builds a Stub that dials addr directly, without
// reference to a local Skeleton value. Clients of the naming service —
// which only ever know its well-known address — bootstrap this way.
func NewStubForAddress(iface reflect.Type, addr Address) (*Stub, error) {
	const op = "rmi.NewStubForAddress"
	if err := ValidateRemoteInterface(iface); err != nil {
		return nil, err
	}
	resolved, err := addr.resolved()
	if err != nil {
		return nil, err
	}
	return &Stub{Addr: resolved, IfaceName: iface.String()}, nil
}

// Equal reports whether s and other target the same address and
// satisfy the same interface. Per SPEC_FULL.md §4.4, equality is
// computed locally and never forwarded over the wire.
func (s *Stub) Equal(other *Stub) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.IfaceName == other.IfaceName && s.Addr == other.Addr
}

// String is a local, human-readable representation, never forwarded.
func (s *Stub) String() string {
	return fmt.Sprintf("%s@%s", s.IfaceName, s.Addr.String())
}

// Hash is a local, map/set-friendly digest of the stub's identity,
// never forwarded.
func (s *Stub) Hash() uint64 {
	h := uint64(14695981039346656037)
	for _, b := range []byte(s.String()) {
		h ^= uint64(b)
		h *= 1099511628211
	}
	return h
}

// Invoke performs one RMI call: dial, marshal (desc, args), send, block
// for the reply, and either return its value or re-raise its captured
// failure. Any dial, write, or read failure surfaces as RMIException —
// the skeleton never raises those spontaneously; they are exclusively
// transport-layer faults observed by the caller.
func (s *Stub) Invoke(desc Descriptor, args ...interface{}) (interface{}, error) {
	const op = "rmi.Stub.Invoke"

	conn, err := net.Dial("tcp", s.Addr.String())
	if err != nil {
		return nil, errors.E(op, errors.RMIException, err)
	}
	defer conn.Close()

	if err := writeStreamHeader(conn); err != nil {
		return nil, errors.E(op, errors.RMIException, err)
	}
	if err := readStreamHeader(conn); err != nil {
		return nil, errors.E(op, errors.RMIException, err)
	}

	enc := gob.NewEncoder(conn)
	if err := enc.Encode(requestFrame{Method: desc, Args: args}); err != nil {
		return nil, errors.E(op, errors.RMIException, err)
	}

	dec := gob.NewDecoder(conn)
	var resp responseFrame
	if err := dec.Decode(&resp); err != nil {
		return nil, errors.E(op, errors.RMIException, err)
	}

	if resp.Failure != nil {
		return nil, resp.Failure.toError()
	}
	return resp.Value, nil
}

func init() {
	gob.Register(&Stub{})
}
