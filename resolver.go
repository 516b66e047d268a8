package vial

import (
	"errors"
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// inflightGuard tracks, per goroutine, the stack of types currently
// being resolved, so that re-entrant resolution of an in-flight type
// fails fast with RecursiveResolutionError instead of recursing until
// the stack blows. The stack is unwound on every exit path; after a
// failure the type is resolvable again.
type inflightGuard struct {
	stacks sync.Map // goroutine id -> *typeStack
}

type typeStack struct {
	types []reflect.Type
}

func (g *inflightGuard) enter(t reflect.Type) (release func(), err error) {
	gid := goroutineID()
	var s *typeStack
	if v, ok := g.stacks.Load(gid); ok {
		s = v.(*typeStack)
	} else {
		s = &typeStack{}
		g.stacks.Store(gid, s)
	}
	for _, seen := range s.types {
		if seen == t {
			cycle := append(append([]reflect.Type{}, s.types...), t)
			return nil, &RecursiveResolutionError{Type: t, Cycle: cycle}
		}
	}
	s.types = append(s.types, t)
	return func() {
		s.types = s.types[:len(s.types)-1]
		if len(s.types) == 0 {
			g.stacks.Delete(gid)
		}
	}, nil
}

// resolve is the core engine: the layered strategy in strict,
// short-circuiting order. Blacklist first, then the calling
// goroutine's mocks (which therefore beat aliases and factories at
// every level of recursion), then aliases, factories, and struct
// inference. No step caches the instance it produced; only the factory
// index and the inspection plans are cached.
func (c *Container) resolve(t reflect.Type) (any, error) {
	if c.blacklisted(t) {
		err := &UnknownDependencyError{Type: t}
		c.observe(t, StrategyBlacklist, err)
		return nil, err
	}

	if inst, ok := c.mocks.lookup(t); ok {
		c.log.Debug("resolved from mock", zap.Stringer("type", t))
		c.observe(t, StrategyMock, nil)
		return inst, nil
	}

	// The container provides itself, so injected functions and
	// inferred structs can take a *Container the same way factory
	// methods do.
	if t == containerType {
		c.observe(t, StrategyContainer, nil)
		return c, nil
	}

	release, err := c.inflight.enter(t)
	if err != nil {
		c.observe(t, StrategyNone, err)
		return nil, err
	}
	defer release()

	if impl, ok := c.aliases[t]; ok {
		c.log.Debug("resolving via alias", zap.Stringer("type", t), zap.Stringer("impl", impl))
		c.observe(t, StrategyAlias, nil)
		return c.resolve(impl)
	}

	if fm, ok := c.factories.lookup(t); ok {
		inst, err := fm.invoke(c)
		c.observe(t, StrategyFactory, err)
		if err != nil {
			return nil, err
		}
		c.log.Debug("resolved from factory", zap.Stringer("type", t))
		return inst, nil
	}

	inst, err := c.infer(t)
	c.observe(t, StrategyInference, err)
	if err != nil {
		return nil, err
	}
	c.log.Debug("resolved by inference", zap.Stringer("type", t))
	return inst, nil
}

// infer builds t by filling the fields of its struct plan, resolving
// each participating field recursively. A failed optional field keeps
// its zero value. A failed required field propagates the error with a
// chain entry prepended, so the deepest unresolvable type surfaces at
// the top-level caller.
func (c *Container) infer(t reflect.Type) (any, error) {
	st := t
	ptr := false
	if t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct {
		st = t.Elem()
		ptr = true
	}
	if st.Kind() != reflect.Struct {
		if t.Kind() == reflect.Interface {
			return nil, &UnresolvableInterfaceError{Type: t}
		}
		return nil, &UnknownDependencyError{Type: t}
	}

	v := reflect.New(st).Elem()
	for _, f := range c.inspector.plan(st).fields {
		dep, err := c.resolve(f.typ)
		if err != nil {
			if f.optional && isUnresolvable(err) {
				continue
			}
			var unknown *UnknownDependencyError
			if errors.As(err, &unknown) {
				unknown.Chain = append(
					[]ChainEntry{{Owner: st, Field: f.name, Want: f.typ}},
					unknown.Chain...,
				)
			}
			return nil, err
		}
		if dep != nil {
			v.Field(f.index).Set(reflect.ValueOf(dep))
		}
	}
	if ptr {
		return v.Addr().Interface(), nil
	}
	return v.Interface(), nil
}

func (c *Container) blacklisted(t reflect.Type) bool {
	for _, n := range c.never {
		if t == n {
			return true
		}
		if n.Kind() == reflect.Interface && t.Implements(n) {
			return true
		}
	}
	return false
}
