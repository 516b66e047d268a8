package vial

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ChainEntry records one hop of a nested resolution: Owner needed
// Want for the field named Field.
type ChainEntry struct {
	Owner reflect.Type
	Field string
	Want  reflect.Type
}

// UnknownDependencyError is returned when no resolution strategy can
// produce the requested type. Type is the deepest unresolvable type;
// Chain, when the failure happened inside nested inference, walks from
// the originally requested type down to that leaf.
type UnknownDependencyError struct {
	Type  reflect.Type
	Chain []ChainEntry
}

func (e *UnknownDependencyError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "container does not know how to provide %v", e.Type)
	if len(e.Chain) > 0 {
		b.WriteString("\nresolution chain:")
		for _, entry := range e.Chain {
			fmt.Fprintf(&b, "\n  %v requires %v (field %q)", entry.Owner, entry.Want, entry.Field)
		}
	}
	return b.String()
}

// UnresolvableInterfaceError is returned when an interface type is
// requested and no override, alias or factory applies. An interface
// cannot be inferred; the caller must say which implementation to use.
type UnresolvableInterfaceError struct {
	Type reflect.Type
}

func (e *UnresolvableInterfaceError) Error() string {
	return fmt.Sprintf("cannot resolve interface %v: register an alias or a factory method for it", e.Type)
}

// RecursiveResolutionError is returned when resolving a type requires
// resolving that same type again before the first resolution finished,
// for example a factory method that calls Provide for its own return
// type. Cycle lists the in-flight types, ending with the re-entered one.
type RecursiveResolutionError struct {
	Type  reflect.Type
	Cycle []reflect.Type
}

func (e *RecursiveResolutionError) Error() string {
	names := make([]string, len(e.Cycle))
	for i, t := range e.Cycle {
		names[i] = t.String()
	}
	return fmt.Sprintf("recursive resolution detected for %v (cycle: %s)", e.Type, strings.Join(names, " -> "))
}

// isUnresolvable reports whether err only means "this type has no
// binding", as opposed to a structural failure such as recursion.
// Optional fields swallow exactly these.
func isUnresolvable(err error) bool {
	var unknown *UnknownDependencyError
	var iface *UnresolvableInterfaceError
	return errors.As(err, &unknown) || errors.As(err, &iface)
}
