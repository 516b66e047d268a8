package vial

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type planSubject struct {
	Logger   *noteLogger
	Cache    kvStore `inject:"optional"`
	DSN      string  `inject:"-"`
	internal int
}

type planOther struct {
	Logger *noteLogger
}

func TestComputePlan_FieldSelection(t *testing.T) {
	p := computePlan(reflect.TypeOf(planSubject{}))

	require.Len(t, p.fields, 2, "unexported and opted-out fields are excluded")

	assert.Equal(t, "Logger", p.fields[0].name)
	assert.Equal(t, 0, p.fields[0].index)
	assert.False(t, p.fields[0].optional)

	assert.Equal(t, "Cache", p.fields[1].name)
	assert.Equal(t, 1, p.fields[1].index)
	assert.True(t, p.fields[1].optional)
	assert.Equal(t, reflect.TypeOf((*kvStore)(nil)).Elem(), p.fields[1].typ)
}

func TestComputePlan_EmptyStruct(t *testing.T) {
	p := computePlan(reflect.TypeOf(struct{}{}))
	assert.Empty(t, p.fields)
}

func TestInspector_CachesPlans(t *testing.T) {
	in := newInspector(0)
	tt := reflect.TypeOf(planSubject{})

	first := in.plan(tt)
	again := in.plan(tt)

	assert.Same(t, first, again)
}

func TestInspector_EvictionRecomputes(t *testing.T) {
	in := newInspector(1)
	subject := reflect.TypeOf(planSubject{})
	other := reflect.TypeOf(planOther{})

	first := in.plan(subject)
	in.plan(other) // evicts the subject plan
	recomputed := in.plan(subject)

	assert.NotSame(t, first, recomputed)
	assert.Equal(t, first.fields, recomputed.fields)
}

func TestTypeID_DistinguishesTypes(t *testing.T) {
	assert.Equal(t, typeID(reflect.TypeOf(planSubject{})), typeID(reflect.TypeOf(planSubject{})))
	assert.NotEqual(t, typeID(reflect.TypeOf(planSubject{})), typeID(reflect.TypeOf(planOther{})))
	assert.NotEqual(t, typeID(reflect.TypeOf(planSubject{})), typeID(reflect.TypeOf(&planSubject{})))
}
