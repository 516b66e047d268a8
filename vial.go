// Package vial is a reflection-driven dependency-resolution container.
//
// A Container produces an instance of a requested type by consulting,
// in strict priority order: goroutine-local overrides and mocks,
// interface aliases, factory methods indexed by their return type, and
// recursive struct-field inference. Resolution never caches the
// instances it constructs; instance lifetime belongs to the caller,
// via the Singleton and LocalSingleton helpers.
//
// Configure first, then share. Alias, NeverProvide and the factory
// scan happen at construction/configuration time and must complete
// before the container is used from multiple goroutines. Mocks and
// scoped overrides are goroutine-local and exist for tests.
package vial
