package vial

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockStore_LayeredLookup(t *testing.T) {
	s := &mockStore{}
	key := reflect.TypeOf(&testDB{})

	s.set(key, "base")
	restore := s.push(map[reflect.Type]any{key: "frame"})

	got, ok := s.lookup(key)
	require.True(t, ok)
	assert.Equal(t, "frame", got)

	restore()
	got, ok = s.lookup(key)
	require.True(t, ok)
	assert.Equal(t, "base", got)

	s.clear()
	_, ok = s.lookup(key)
	assert.False(t, ok)
}

func TestMockStore_RestoreIsIdempotent(t *testing.T) {
	s := &mockStore{}
	key := reflect.TypeOf(&testDB{})

	first := s.push(map[reflect.Type]any{key: "one"})
	second := s.push(map[reflect.Type]any{key: "two"})

	second()
	second()

	got, ok := s.lookup(key)
	require.True(t, ok)
	assert.Equal(t, "one", got)

	first()
	_, ok = s.lookup(key)
	assert.False(t, ok)
}

func TestMockStore_RestoreDropsLeakedInnerFrames(t *testing.T) {
	s := &mockStore{}
	key := reflect.TypeOf(&testDB{})

	outer := s.push(map[reflect.Type]any{key: "outer"})
	s.push(map[reflect.Type]any{key: "leaked"})

	outer()
	_, ok := s.lookup(key)
	assert.False(t, ok, "outer restore removes frames stacked above it")
}

func TestMockStore_ClearKeepsOverrideFrames(t *testing.T) {
	s := &mockStore{}
	key := reflect.TypeOf(&testDB{})

	s.set(key, "base")
	restore := s.push(map[reflect.Type]any{key: "frame"})
	s.clear()

	got, ok := s.lookup(key)
	require.True(t, ok)
	assert.Equal(t, "frame", got)

	restore()
	_, ok = s.lookup(key)
	assert.False(t, ok)
}

func TestMocks_DoNotLeakBetweenGoroutines(t *testing.T) {
	c := New(WithFactory(&dbFactory{}))

	mocked := make(chan *testDB, 1)
	go func() {
		UseMock[*testDB](c, &testDB{DSN: "mock://"})
		svc := MustProvide[dbService](c)
		mocked <- svc.DB
	}()
	fromMockingGoroutine := <-mocked
	assert.Equal(t, "mock://", fromMockingGoroutine.DSN)

	clean := make(chan *testDB, 1)
	go func() {
		svc := MustProvide[dbService](c)
		clean <- svc.DB
	}()
	fromCleanGoroutine := <-clean
	assert.Equal(t, "sqlite://", fromCleanGoroutine.DSN)
	assert.NotSame(t, fromMockingGoroutine, fromCleanGoroutine)
}

func TestOverride_DoesNotLeakToOtherGoroutines(t *testing.T) {
	c := New(WithFactory(&dbFactory{}))
	mockDB := &testDB{DSN: "mock://"}

	restore := Override[*testDB](c, mockDB)
	defer restore()

	other := make(chan *testDB, 1)
	go func() {
		other <- MustProvide[*testDB](c)
	}()
	fromOtherGoroutine := <-other

	assert.NotSame(t, mockDB, fromOtherGoroutine)
	assert.Equal(t, "sqlite://", fromOtherGoroutine.DSN)
	assert.Same(t, mockDB, MustProvide[*testDB](c))
}
