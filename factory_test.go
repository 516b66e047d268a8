package vial

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type facWidget struct {
	N int `inject:"-"`
}

type facGadget struct {
	W *facWidget
}

type shapedFactory struct{}

func (f *shapedFactory) Widget() *facWidget {
	return &facWidget{N: 1}
}

func (f *shapedFactory) Gadget(c *Container) (*facGadget, error) {
	w, err := Provide[*facWidget](c)
	if err != nil {
		return nil, err
	}
	return &facGadget{W: w}, nil
}

// None of these qualify for the index.
func (f *shapedFactory) TwoParams(a, b int) *facWidget   { return nil }
func (f *shapedFactory) WrongParam(n int) *facWidget     { return nil }
func (f *shapedFactory) ErrOnly() error                  { return nil }
func (f *shapedFactory) NoResults()                      {}
func (f *shapedFactory) ThreeResults() (int, int, error) { return 0, 0, nil }

func TestBuildFactoryIndex_MethodShapes(t *testing.T) {
	idx := buildFactoryIndex(&shapedFactory{})

	require.Len(t, idx.methods, 2)

	fm, ok := idx.lookup(reflect.TypeOf(&facWidget{}))
	require.True(t, ok)
	assert.False(t, fm.wantsContainer)
	assert.False(t, fm.returnsError)

	fm, ok = idx.lookup(reflect.TypeOf(&facGadget{}))
	require.True(t, ok)
	assert.True(t, fm.wantsContainer)
	assert.True(t, fm.returnsError)
}

func TestBuildFactoryIndex_NilFactory(t *testing.T) {
	idx := buildFactoryIndex(nil)
	assert.Empty(t, idx.methods)
}

func TestFactoryIndex_InvokeWithContainer(t *testing.T) {
	c := New(WithFactory(&shapedFactory{}))

	g, err := Provide[*facGadget](c)
	require.NoError(t, err)
	require.NotNil(t, g.W)
	assert.Equal(t, 1, g.W.N)
}

func TestContainerWithoutFactory_InfersAndAliases(t *testing.T) {
	c := New()

	w, err := Provide[*facWidget](c)
	require.NoError(t, err)
	assert.Zero(t, w.N, "inference builds the zero widget when no factory is registered")

	Alias[kvStore, *memStore](c)
	store, err := Provide[kvStore](c)
	require.NoError(t, err)
	assert.IsType(t, &memStore{}, store)
}
