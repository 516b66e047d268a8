package vial

import "reflect"

var (
	containerType = reflect.TypeOf((*Container)(nil))
	errType       = reflect.TypeOf((*error)(nil)).Elem()
)

// factoryMethod is one indexed provider: a bound method of the factory
// object, keyed in the index by its result type.
type factoryMethod struct {
	fn             reflect.Value
	wantsContainer bool
	returnsError   bool
}

// factoryIndex maps result types to bound factory methods. It is built
// exactly once at container construction and read-only afterwards, so
// concurrent lookups need no locking.
type factoryIndex struct {
	methods map[reflect.Type]factoryMethod
}

// buildFactoryIndex scans the factory object's exported methods. A
// method is indexed when it returns exactly one non-error value, with
// an optional trailing error, and takes either no parameters or a
// single *Container. Anything else is skipped. When two methods return
// the same type the one later in Go's method order wins, matching map
// insertion.
func buildFactoryIndex(factory any) *factoryIndex {
	idx := &factoryIndex{methods: make(map[reflect.Type]factoryMethod)}
	if factory == nil {
		return idx
	}
	v := reflect.ValueOf(factory)
	t := v.Type()
	for i := 0; i < t.NumMethod(); i++ {
		if !t.Method(i).IsExported() {
			continue
		}
		fn := v.Method(i)
		ft := fn.Type()

		var fm factoryMethod
		switch ft.NumIn() {
		case 0:
		case 1:
			if ft.In(0) != containerType {
				continue
			}
			fm.wantsContainer = true
		default:
			continue
		}
		switch ft.NumOut() {
		case 1:
			if ft.Out(0) == errType {
				continue
			}
		case 2:
			if ft.Out(0) == errType || ft.Out(1) != errType {
				continue
			}
			fm.returnsError = true
		default:
			continue
		}

		fm.fn = fn
		idx.methods[ft.Out(0)] = fm
	}
	return idx
}

func (idx *factoryIndex) lookup(t reflect.Type) (factoryMethod, bool) {
	fm, ok := idx.methods[t]
	return fm, ok
}

func (idx *factoryIndex) types() []reflect.Type {
	out := make([]reflect.Type, 0, len(idx.methods))
	for t := range idx.methods {
		out = append(out, t)
	}
	return out
}

// invoke calls the method, passing the container when the method
// declared a *Container parameter so it can resolve sub-dependencies
// and observe active overrides. A non-nil error from the method is
// returned unmodified.
func (fm factoryMethod) invoke(c *Container) (any, error) {
	var out []reflect.Value
	if fm.wantsContainer {
		out = fm.fn.Call([]reflect.Value{reflect.ValueOf(c)})
	} else {
		out = fm.fn.Call(nil)
	}
	if fm.returnsError {
		if err, _ := out[1].Interface().(error); err != nil {
			return nil, err
		}
	}
	return out[0].Interface(), nil
}
