package vial

import (
	"fmt"
	"reflect"
)

// Inject wraps fn so that every parameter the container can resolve is
// supplied by the container and the rest are taken from the caller.
// The returned function's signature keeps exactly the unresolved
// parameters, in their original order; callers type-assert it:
//
//	h := c.Inject(handle).(func(http.ResponseWriter, *http.Request))
//
// Which parameters are injectable is fixed when Inject is called, by a
// trial resolution of each parameter type (factories may run during
// this probe). Injected values are then re-resolved on every
// invocation, so mocks and overrides active at call time apply. A
// variadic tail is never injected.
//
// Inject panics if fn is not a function. A parameter that resolved at
// wrap time but fails at call time panics with the resolution error.
func (c *Container) Inject(fn any) any {
	fv := reflect.ValueOf(fn)
	ft := fv.Type()
	if ft.Kind() != reflect.Func {
		panic(fmt.Sprintf("vial: Inject wants a function, got %T", fn))
	}

	numIn := ft.NumIn()
	injectable := make([]bool, numIn)
	var rest []reflect.Type
	for i := 0; i < numIn; i++ {
		if ft.IsVariadic() && i == numIn-1 {
			rest = append(rest, ft.In(i))
			continue
		}
		if _, err := c.resolve(ft.In(i)); err == nil {
			injectable[i] = true
			continue
		}
		rest = append(rest, ft.In(i))
	}

	outs := make([]reflect.Type, ft.NumOut())
	for i := range outs {
		outs[i] = ft.Out(i)
	}

	wrapperType := reflect.FuncOf(rest, outs, ft.IsVariadic())
	wrapper := reflect.MakeFunc(wrapperType, func(in []reflect.Value) []reflect.Value {
		args := make([]reflect.Value, numIn)
		next := 0
		for i := 0; i < numIn; i++ {
			if injectable[i] {
				inst, err := c.resolve(ft.In(i))
				if err != nil {
					panic(fmt.Sprintf("vial: injected parameter %d of %v became unresolvable: %v", i, ft, err))
				}
				if inst == nil {
					args[i] = reflect.Zero(ft.In(i))
				} else {
					args[i] = reflect.ValueOf(inst)
				}
				continue
			}
			args[i] = in[next]
			next++
		}
		if ft.IsVariadic() {
			return fv.CallSlice(args)
		}
		return fv.Call(args)
	})
	return wrapper.Interface()
}
