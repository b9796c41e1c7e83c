package rmi

import (
	"fmt"
	"net"

	"github.com/ewanas/DFS/errors"
)

// Address identifies a skeleton's bound TCP endpoint. The zero Address
// (empty Host, zero Port) means "unspecified": ask the OS to assign a
// port when binding, and discover a host address when one is needed for
// a stub.
type Address struct {
	Host string
	Port int
}

// String renders the address in host:port form, suitable for net.Dial.
func (a Address) String() string {
	return net.JoinHostPort(a.Host, fmt.Sprintf("%d", a.Port))
}

// IsWildcard reports whether a has no specific host, meaning a stub
// built from it must resolve a concrete local address before it can be
// dialed by a remote peer.
func (a Address) IsWildcard() bool {
	return a.Host == "" || a.Host == "0.0.0.0" || a.Host == "::"
}

// resolved resolves a's wildcard host to a concrete, dialable
// loopback address. SPEC_FULL.md §4.5 documents the choice of a fixed
// 127.0.0.1 over resolving the machine's external interfaces: it is
// deterministic under tests and matches the single-host deployments
// this repository targets.
func (a Address) resolved() (Address, error) {
	const op = "rmi.Address.resolved"
	if !a.IsWildcard() {
		return a, nil
	}
	if a.Port == 0 {
		return Address{}, errors.E(op, errors.UnknownHost, errors.Str("no port to resolve a wildcard address against"))
	}
	return Address{Host: "127.0.0.1", Port: a.Port}, nil
}
