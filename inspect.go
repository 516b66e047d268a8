package vial

import (
	"fmt"
	"reflect"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultInspectionCacheSize = 512

// fieldPlan describes one struct field that participates in inference.
type fieldPlan struct {
	index    int
	name     string
	typ      reflect.Type
	optional bool
}

// structPlan is the cached introspection record for a struct type:
// the ordered fields the resolver must fill. Immutable once computed.
type structPlan struct {
	typ    reflect.Type
	fields []fieldPlan
}

// inspector computes struct plans and serves repeats from a bounded
// LRU. Eviction is harmless: plans are derived data and cheap to
// recompute. The LRU is internally locked, so concurrent resolvers
// can read and insert freely.
type inspector struct {
	cache *lru.Cache[uintptr, *structPlan]
}

func newInspector(size int) *inspector {
	if size <= 0 {
		size = defaultInspectionCacheSize
	}
	cache, err := lru.New[uintptr, *structPlan](size)
	if err != nil {
		panic(fmt.Sprintf("vial: inspection cache: %v", err))
	}
	return &inspector{cache: cache}
}

// typeID is the identity key for a type's runtime descriptor. Type
// descriptors are immortal and unique, and the LRU needs a strictly
// comparable key, which the reflect.Type interface is not.
func typeID(t reflect.Type) uintptr {
	return reflect.ValueOf(t).Pointer()
}

// plan returns the injection plan for a struct type, computing it at
// most once while the entry stays cached.
func (in *inspector) plan(t reflect.Type) *structPlan {
	key := typeID(t)
	if p, ok := in.cache.Get(key); ok {
		return p
	}
	p := computePlan(t)
	in.cache.Add(key, p)
	return p
}

// computePlan walks the exported fields of t. Unexported fields are
// not settable and never participate. The inject tag refines the rest:
// "-" opts a field out, "optional" lets it keep its zero value when
// its type cannot be resolved.
func computePlan(t reflect.Type) *structPlan {
	p := &structPlan{typ: t}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("inject")
		if tag == "-" {
			continue
		}
		p.fields = append(p.fields, fieldPlan{
			index:    i,
			name:     f.Name,
			typ:      f.Type,
			optional: tag == "optional",
		})
	}
	return p
}
