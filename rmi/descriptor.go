// Package rmi is the remote-method-invocation fabric: a generic
// request/response transport built on TCP and gob object serialization,
// with reflective dispatch at the server (Skeleton) and a thin façade
// pattern at the client (Stub). See SPEC_FULL.md §4.2–§4.4.
package rmi

import (
	"fmt"
	"reflect"

	"github.com/ewanas/DFS/errors"
)

// errorType is the reflect.Type of the built-in error interface. Every
// method of a remote interface must declare it as its last return
// value — the Go encoding of "declares an RMIException-equivalent
// failure" (SPEC_FULL.md §4.2).
var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Descriptor is the serializable, language-neutral identity of a
// remote method: its name, return type name, parameter type names, and
// declared failure type names. Two descriptors are equal iff all four
// fields are equal, in order.
type Descriptor struct {
	Name             string
	ReturnTypeName   string
	ParameterTypes   []string
	FailureTypeNames []string
}

// Equal reports whether d and other identify the same method.
func (d Descriptor) Equal(other Descriptor) bool {
	if d.Name != other.Name || d.ReturnTypeName != other.ReturnTypeName {
		return false
	}
	if len(d.ParameterTypes) != len(other.ParameterTypes) {
		return false
	}
	for i := range d.ParameterTypes {
		if d.ParameterTypes[i] != other.ParameterTypes[i] {
			return false
		}
	}
	if len(d.FailureTypeNames) != len(other.FailureTypeNames) {
		return false
	}
	for i := range d.FailureTypeNames {
		if d.FailureTypeNames[i] != other.FailureTypeNames[i] {
			return false
		}
	}
	return true
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s(%v) %s", d.Name, d.ParameterTypes, d.ReturnTypeName)
}

// BuildDescriptor extracts the descriptor of method m, a reflect.Method
// taken from a remote interface's method set. The method's final return
// value, which must be error, becomes FailureTypeNames; any additional
// return value (there is at most one) becomes ReturnTypeName.
func BuildDescriptor(m reflect.Method) Descriptor {
	mt := m.Type
	d := Descriptor{Name: m.Name}
	for i := 0; i < mt.NumIn(); i++ {
		d.ParameterTypes = append(d.ParameterTypes, mt.In(i).String())
	}
	for i := 0; i < mt.NumOut(); i++ {
		out := mt.Out(i)
		if out == errorType {
			d.FailureTypeNames = append(d.FailureTypeNames, "error")
			continue
		}
		d.ReturnTypeName = out.String()
	}
	return d
}

// Descriptors returns the descriptor of every method declared directly
// on the remote interface iface (iface must be an interface type).
func Descriptors(iface reflect.Type) []Descriptor {
	descs := make([]Descriptor, iface.NumMethod())
	for i := 0; i < iface.NumMethod(); i++ {
		descs[i] = BuildDescriptor(iface.Method(i))
	}
	return descs
}

// FindIn returns the reflect.Method of iface whose descriptor equals d,
// and true; or the zero Method and false if none matches.
func FindIn(iface reflect.Type, d Descriptor) (reflect.Method, bool) {
	for i := 0; i < iface.NumMethod(); i++ {
		m := iface.Method(i)
		if BuildDescriptor(m).Equal(d) {
			return m, true
		}
	}
	return reflect.Method{}, false
}

// ValidateRemoteInterface reports an InvalidArgument error unless iface
// is an interface type every one of whose methods declares error as its
// final return value.
func ValidateRemoteInterface(iface reflect.Type) error {
	const op = "rmi.ValidateRemoteInterface"
	if iface == nil || iface.Kind() != reflect.Interface {
		return errors.E(op, errors.InvalidArgument, errors.Errorf("%v is not an interface type", iface))
	}
	for i := 0; i < iface.NumMethod(); i++ {
		m := iface.Method(i)
		if m.Type.NumOut() == 0 || m.Type.Out(m.Type.NumOut()-1) != errorType {
			return errors.E(op, errors.InvalidArgument,
				errors.Errorf("method %s of %v does not declare error as its final return value", m.Name, iface))
		}
	}
	return nil
}
