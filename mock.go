package vial

import (
	"reflect"
	"sync"
)

// mockStore keeps one frame stack per goroutine. The base frame holds
// entries registered with UseMock, which persist until ClearMocks.
// Override pushes additional frames on top. Lookup scans override
// frames newest-first and falls back to the base frame, so a scoped
// override layers over fixture mocks instead of replacing them, and an
// inner override shadows an outer one for the same type only while its
// frame is live.
//
// Nothing done to one goroutine's store is observable from another:
// the outer index is keyed by goroutine id and every frame belongs to
// exactly one goroutine.
type mockStore struct {
	stores sync.Map // goroutine id -> *mockFrames
}

type mockFrames struct {
	base  map[reflect.Type]any
	stack []map[reflect.Type]any
}

func (s *mockStore) frames() *mockFrames {
	gid := goroutineID()
	if v, ok := s.stores.Load(gid); ok {
		return v.(*mockFrames)
	}
	f := &mockFrames{base: make(map[reflect.Type]any)}
	s.stores.Store(gid, f)
	return f
}

func (s *mockStore) lookup(t reflect.Type) (any, bool) {
	v, ok := s.stores.Load(goroutineID())
	if !ok {
		return nil, false
	}
	f := v.(*mockFrames)
	for i := len(f.stack) - 1; i >= 0; i-- {
		if inst, ok := f.stack[i][t]; ok {
			return inst, true
		}
	}
	inst, ok := f.base[t]
	return inst, ok
}

// set registers a persistent mock in the calling goroutine's base frame.
func (s *mockStore) set(t reflect.Type, inst any) {
	s.frames().base[t] = inst
}

// clear empties the calling goroutine's base frame. Override frames
// belong to their scopes and are only removed by their restore funcs.
func (s *mockStore) clear() {
	gid := goroutineID()
	v, ok := s.stores.Load(gid)
	if !ok {
		return
	}
	f := v.(*mockFrames)
	f.base = make(map[reflect.Type]any)
	if len(f.stack) == 0 {
		s.stores.Delete(gid)
	}
}

// push installs frame on the calling goroutine and returns the restore
// func that removes it again. restore is idempotent, must run on the
// same goroutine, and also drops any frames pushed above this one that
// were not restored themselves, so state is guaranteed to return to
// what it was before the scope on every exit path.
func (s *mockStore) push(frame map[reflect.Type]any) (restore func()) {
	gid := goroutineID()
	f := s.frames()
	f.stack = append(f.stack, frame)
	depth := len(f.stack)
	var once sync.Once
	return func() {
		once.Do(func() {
			if len(f.stack) >= depth {
				f.stack = f.stack[:depth-1]
			}
			if len(f.stack) == 0 && len(f.base) == 0 {
				s.stores.Delete(gid)
			}
		})
	}
}
