package vial

import (
	"fmt"
	"reflect"
)

// The typed API is package-level functions rather than methods because
// Go does not allow methods to introduce their own type parameters.

// TypeFor returns the reflect.Type for T. Unlike reflect.TypeOf on a
// value, it yields the interface type itself for interface T.
func TypeFor[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Provide resolves T through the container's layered strategy and
// returns a fresh result on every call: instances are never cached by
// resolution itself.
func Provide[T any](c *Container) (T, error) {
	var zero T
	inst, err := c.ProvideType(TypeFor[T]())
	if err != nil {
		return zero, err
	}
	typed, ok := inst.(T)
	if !ok {
		return zero, fmt.Errorf("vial: resolved %v is not assignable to %v", reflect.TypeOf(inst), TypeFor[T]())
	}
	return typed, nil
}

// MustProvide resolves T or panics. For startup wiring only.
func MustProvide[T any](c *Container) T {
	inst, err := Provide[T](c)
	if err != nil {
		panic(fmt.Sprintf("vial: failed to provide %v: %v", TypeFor[T](), err))
	}
	return inst
}

// Alias maps requests for I to the implementation type Impl.
// Configuration-time only.
func Alias[I any, Impl any](c *Container) {
	c.AliasType(TypeFor[I](), TypeFor[Impl]())
}

// NeverProvide blacklists T. Configuration-time only.
func NeverProvide[T any](c *Container) {
	c.NeverProvideType(TypeFor[T]())
}

// UseMock registers mock for T on the calling goroutine. It wins over
// aliases, factories and inference until ClearMocks runs on the same
// goroutine; other goroutines never see it.
func UseMock[T any](c *Container, mock T) {
	c.mocks.set(TypeFor[T](), mock)
}

// Override installs mock for T in a new override frame and returns the
// restore function; defer it to guarantee the previous state comes
// back on every exit path.
func Override[T any](c *Container, mock T) (restore func()) {
	return c.Overrides(Bind[T](mock))
}

// Binding pairs a requested type with its override instance.
type Binding struct {
	Type     reflect.Type
	Instance any
}

// Bind creates a Binding keyed by T. Spell out T when overriding an
// interface, so the binding is keyed by the interface type rather than
// the mock's dynamic type.
func Bind[T any](instance T) Binding {
	return Binding{Type: TypeFor[T](), Instance: instance}
}
