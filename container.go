package vial

import (
	"reflect"

	"go.uber.org/zap"
)

// Container is the public façade over the resolution engine. It owns
// the alias table, the never-provide blacklist and the factory index,
// all written during configuration and read-only once concurrent
// Provide calls begin (a documented precondition, not enforced by a
// lock). The mock store and the in-flight guard are goroutine-local.
type Container struct {
	aliases   map[reflect.Type]reflect.Type
	never     []reflect.Type
	factories *factoryIndex
	mocks     *mockStore
	inflight  *inflightGuard
	inspector *inspector
	log       *zap.Logger
	observer  func(ResolveEvent)
}

// New creates a container. The factory object given via WithFactory is
// scanned exactly once, here.
func New(opts ...Option) *Container {
	cfg := config{
		logger:        zap.NewNop(),
		inspectionCap: defaultInspectionCacheSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Container{
		aliases:   make(map[reflect.Type]reflect.Type),
		factories: buildFactoryIndex(cfg.factory),
		mocks:     &mockStore{},
		inflight:  &inflightGuard{},
		inspector: newInspector(cfg.inspectionCap),
		log:       cfg.logger,
		observer:  cfg.observer,
	}
}

// ProvideType resolves t and returns the instance. On failure the
// error is one of *UnknownDependencyError, *UnresolvableInterfaceError
// or *RecursiveResolutionError. Prefer the generic Provide for static
// typing.
func (c *Container) ProvideType(t reflect.Type) (any, error) {
	return c.resolve(t)
}

// AliasType maps requests for iface to the implementation type impl.
// The implementation is resolved recursively, so overrides, factories
// and further aliases apply to it. Configuration-time only.
func (c *Container) AliasType(iface, impl reflect.Type) {
	c.aliases[iface] = impl
}

// NeverProvideType blacklists t: the container refuses to produce it
// even when a factory or inference could. Blacklisting an interface
// refuses every type implementing it. Configuration-time only.
func (c *Container) NeverProvideType(t reflect.Type) {
	c.never = append(c.never, t)
}

// ClearMocks drops every mock registered with UseMock on the calling
// goroutine. Active Override frames are untouched; they are removed by
// their own restore functions.
func (c *Container) ClearMocks() {
	c.mocks.clear()
}

// Overrides installs the bindings as a single override frame on the
// calling goroutine and returns the function that removes it again:
//
//	restore := c.Overrides(vial.Bind[Database](mockDB))
//	defer restore()
//
// The frame layers on top of whatever mocks and overrides were already
// active, so fixture-level mocks stay visible inside the block. Both
// the call and the restore must happen on the same goroutine.
func (c *Container) Overrides(bindings ...Binding) (restore func()) {
	frame := make(map[reflect.Type]any, len(bindings))
	for _, b := range bindings {
		frame[b.Type] = b.Instance
	}
	return c.mocks.push(frame)
}

// FactoryTypes lists the types producible from the factory index.
func (c *Container) FactoryTypes() []reflect.Type {
	return c.factories.types()
}

// Aliases returns a copy of the alias table.
func (c *Container) Aliases() map[reflect.Type]reflect.Type {
	out := make(map[reflect.Type]reflect.Type, len(c.aliases))
	for k, v := range c.aliases {
		out[k] = v
	}
	return out
}
