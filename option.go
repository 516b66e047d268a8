package vial

import "go.uber.org/zap"

// Option configures a Container at construction time.
type Option func(*config)

type config struct {
	factory       any
	logger        *zap.Logger
	observer      func(ResolveEvent)
	inspectionCap int
}

// WithFactory supplies the factory object whose exported methods are
// indexed by return type. See buildFactoryIndex for the method shapes
// that qualify.
func WithFactory(factory any) Option {
	return func(c *config) { c.factory = factory }
}

// WithLogger enables structured debug logging of resolution decisions.
// The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver registers a callback invoked for every resolution
// level. Useful for metrics and for asserting strategy order in tests.
func WithObserver(fn func(ResolveEvent)) Option {
	return func(c *config) { c.observer = fn }
}

// WithInspectionCacheSize bounds the introspection LRU. The default
// is 512 entries; values <= 0 keep the default.
func WithInspectionCacheSize(n int) Option {
	return func(c *config) { c.inspectionCap = n }
}
