package vial

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// Fields supplies named construction arguments to Singleton and
// LocalSingleton. Two Fields values with the same name/value pairs
// produce the same cache key regardless of how they were written:
// names are canonicalized by sorting.
type Fields map[string]any

// cacheKey identifies one singleton: the concrete type plus a
// canonical signature of its construction arguments.
type cacheKey struct {
	typ reflect.Type
	sig string
}

// instanceCache is the process-wide singleton store. The whole
// check-then-insert runs inside one critical section, so concurrently
// racing callers for the same key collectively construct exactly one
// instance: the first caller builds while the others wait, then all
// observe the same entry. Entries are never evicted.
type instanceCache struct {
	mu      sync.Mutex
	entries map[cacheKey]any
}

func (c *instanceCache) getOrCreate(key cacheKey, build func() any) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	if inst, ok := c.entries[key]; ok {
		return inst
	}
	inst := build()
	c.entries[key] = inst
	return inst
}

// localInstanceCache holds one entry map per goroutine. The outer
// index is a sync.Map keyed by goroutine id; each inner map is only
// ever touched by its owning goroutine, so same-key calls on different
// goroutines never contend and never share an instance.
type localInstanceCache struct {
	stores sync.Map // goroutine id -> map[cacheKey]any
}

func (c *localInstanceCache) getOrCreate(key cacheKey, build func() any) any {
	gid := goroutineID()
	var entries map[cacheKey]any
	if v, ok := c.stores.Load(gid); ok {
		entries = v.(map[cacheKey]any)
	} else {
		entries = make(map[cacheKey]any)
		c.stores.Store(gid, entries)
	}
	if inst, ok := entries[key]; ok {
		return inst
	}
	inst := build()
	entries[key] = inst
	return inst
}

var (
	globalSingletons = &instanceCache{entries: make(map[cacheKey]any)}
	localSingletons  = &localInstanceCache{}
)

// Singleton returns the process-wide instance of T for the given
// construction arguments, building it on first use. T must be a struct
// type when arguments are supplied: positional arguments fill T's
// exported fields in declaration order, and a Fields value assigns
// fields by name. The cache key is order-sensitive for positional
// arguments and order-independent for Fields.
//
// Singleton is container-independent and safe to call from inside
// factory methods.
func Singleton[T any](args ...any) *T {
	key := singletonKey(TypeFor[T](), args)
	return globalSingletons.getOrCreate(key, func() any {
		return buildInstance[T](args)
	}).(*T)
}

// LocalSingleton is Singleton scoped to the calling goroutine: one
// instance per key per goroutine. Different goroutines asking for the
// same key get distinct instances; repeated calls on one goroutine get
// the identical instance. Entries live until the process exits.
func LocalSingleton[T any](args ...any) *T {
	key := singletonKey(TypeFor[T](), args)
	return localSingletons.getOrCreate(key, func() any {
		return buildInstance[T](args)
	}).(*T)
}

// singletonKey canonicalizes the argument list: positional arguments
// in order, then Fields entries sorted by name.
func singletonKey(t reflect.Type, args []any) cacheKey {
	var b strings.Builder
	named := Fields{}
	for _, a := range args {
		if f, ok := a.(Fields); ok {
			for name, val := range f {
				named[name] = val
			}
			continue
		}
		fmt.Fprintf(&b, "%T=%v;", a, a)
	}
	if len(named) > 0 {
		names := make([]string, 0, len(named))
		for name := range named {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteByte('|')
		for _, name := range names {
			fmt.Fprintf(&b, "%s=%v;", name, named[name])
		}
	}
	return cacheKey{typ: t, sig: b.String()}
}

// buildInstance constructs *T from positional and named arguments.
// Misuse (too many arguments, unknown or mistyped field) panics, as
// this is always a programming error at the call site.
func buildInstance[T any](args []any) *T {
	inst := new(T)
	if len(args) == 0 {
		return inst
	}
	v := reflect.ValueOf(inst).Elem()
	if v.Kind() != reflect.Struct {
		panic(fmt.Sprintf("vial: cannot apply construction arguments to non-struct %v", v.Type()))
	}
	t := v.Type()

	var positional []any
	named := Fields{}
	for _, a := range args {
		if f, ok := a.(Fields); ok {
			for name, val := range f {
				named[name] = val
			}
			continue
		}
		positional = append(positional, a)
	}

	fi := 0
	for _, a := range positional {
		for fi < t.NumField() && !t.Field(fi).IsExported() {
			fi++
		}
		if fi >= t.NumField() {
			panic(fmt.Sprintf("vial: too many construction arguments for %v", t))
		}
		setField(v.Field(fi), t.Field(fi).Name, t, a)
		fi++
	}
	for name, val := range named {
		f := v.FieldByName(name)
		if !f.IsValid() || !f.CanSet() {
			panic(fmt.Sprintf("vial: %v has no settable field %q", t, name))
		}
		setField(f, name, t, val)
	}
	return inst
}

func setField(f reflect.Value, name string, owner reflect.Type, val any) {
	if val == nil {
		f.Set(reflect.Zero(f.Type()))
		return
	}
	av := reflect.ValueOf(val)
	if !av.Type().AssignableTo(f.Type()) {
		panic(fmt.Sprintf("vial: %v is not assignable to field %s of %v", av.Type(), name, owner))
	}
	f.Set(av)
}
