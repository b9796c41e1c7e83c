package rmi

import (
	"encoding/gob"

	"github.com/ewanas/DFS/errors"
)

// requestFrame is the client-to-server half of the single bidirectional
// frame per connection (SPEC_FULL.md §6): the method descriptor and the
// ordered argument array, whose types and length must match
// Method.ParameterTypes.
type requestFrame struct {
	Method Descriptor
	Args   []interface{}
}

// responseFrame is the server-to-client half: either the method's
// return value or the captured failure it raised. The tagged variant
// (Failure set iff the call raised) is the wire shape SPEC_FULL.md §9
// recommends over an untagged value that requires type-testing.
type responseFrame struct {
	Value   interface{}
	Failure *wireFailure
}

// wireFailure is the flattened, gob-friendly form of an errors.Error:
// a single Kind/Op/Message triple with no nested cause chain, since the
// wire format promises no cross-version compatibility and the naming
// core never needs more than the Kind to act on a remote failure.
type wireFailure struct {
	Kind    errors.Kind
	Op      string
	Message string
}

func newWireFailure(err error) *wireFailure {
	if err == nil {
		return nil
	}
	return &wireFailure{
		Kind:    errors.KindOf(err),
		Op:      opOf(err),
		Message: err.Error(),
	}
}

func opOf(err error) string {
	if e, ok := err.(*errors.Error); ok {
		return e.Op
	}
	return ""
}

// toError reconstructs an error from a decoded wireFailure, preserving
// its Kind so that the stub's caller can branch on it exactly as it
// would on a local call.
func (f *wireFailure) toError() error {
	if f == nil {
		return nil
	}
	if f.Kind == errors.Other && f.Op == "" {
		return errors.Str(f.Message)
	}
	return errors.E(f.Op, f.Kind, errors.Str(f.Message))
}

func init() {
	// Basic concrete types commonly carried inside the interface{}
	// argument/value slots of requestFrame and responseFrame. Per-domain
	// types (Path, stub façades, ...) are registered by their owning
	// packages.
	gob.Register("")
	gob.Register(false)
	gob.Register(int(0))
	gob.Register(int64(0))
	gob.Register([]string(nil))
	gob.Register([]byte(nil))
}
