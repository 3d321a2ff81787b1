package rwarc

import (
	"reflect"

	"github.com/llxisdsh/pb"
)

// TypeContainer is a concurrent registry holding at most one value per Go
// type. It is the by-type flavor of shared application state: consumers
// store and retrieve by the static type alone.
//
// Methods cannot carry their own type parameters, so the typed surface is
// package-level: StoreType, LoadType, DeleteType, HasType.
//
// The zero TypeContainer is ready to use.
type TypeContainer struct {
	_ noCopy
	m pb.MapOf[reflect.Type, any]
}

// StoreType stores value under its type, returning the value it replaced,
// if any.
func StoreType[T any](c *TypeContainer, value T) (prev T, replaced bool) {
	c.m.ProcessEntry(
		reflect.TypeFor[T](),
		func(l *pb.EntryOf[reflect.Type, any]) (*pb.EntryOf[reflect.Type, any], any, bool) {
			if l != nil {
				prev, replaced = l.Value.(T), true
			}
			return &pb.EntryOf[reflect.Type, any]{Value: value}, nil, false
		},
	)
	return
}

// LoadType retrieves the value stored under T.
func LoadType[T any](c *TypeContainer) (T, bool) {
	v, ok := c.m.ProcessEntry(
		reflect.TypeFor[T](),
		func(l *pb.EntryOf[reflect.Type, any]) (*pb.EntryOf[reflect.Type, any], any, bool) {
			if l != nil {
				return l, l.Value, true
			}
			return nil, nil, false
		},
	)
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// DeleteType removes and returns the value stored under T.
func DeleteType[T any](c *TypeContainer) (T, bool) {
	v, ok := c.m.ProcessEntry(
		reflect.TypeFor[T](),
		func(l *pb.EntryOf[reflect.Type, any]) (*pb.EntryOf[reflect.Type, any], any, bool) {
			if l != nil {
				return nil, l.Value, true
			}
			return nil, nil, false
		},
	)
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// HasType reports whether a value is stored under T.
func HasType[T any](c *TypeContainer) bool {
	_, ok := LoadType[T](c)
	return ok
}

// KeyContainer is a concurrent keyed registry guarded by an RwArc over the
// backing map. Point operations take the shortest claim that suffices;
// Deferred exposes the upgradable path for read-mostly commit flows.
type KeyContainer[K comparable, V any] struct {
	state *RwArc[map[K]V]
}

// NewKeyContainer returns an empty container.
func NewKeyContainer[K comparable, V any]() *KeyContainer[K, V] {
	return &KeyContainer[K, V]{state: New(map[K]V{})}
}

// Set stores value under key, returning the value it replaced, if any.
func (c *KeyContainer[K, V]) Set(key K, value V) (prev V, replaced bool) {
	g := c.state.Write()
	m := g.Get()
	prev, replaced = m[key]
	m[key] = value
	g.Unlock()
	return
}

// Get retrieves the value under key.
func (c *KeyContainer[K, V]) Get(key K) (V, bool) {
	g := c.state.Read()
	v, ok := g.Get()[key]
	g.Unlock()
	return v, ok
}

// Remove deletes and returns the value under key.
func (c *KeyContainer[K, V]) Remove(key K) (V, bool) {
	g := c.state.Write()
	m := g.Get()
	v, ok := m[key]
	if ok {
		delete(m, key)
	}
	g.Unlock()
	return v, ok
}

// Has reports whether key is present.
func (c *KeyContainer[K, V]) Has(key K) bool {
	_, ok := c.Get(key)
	return ok
}

// Len returns the number of stored entries.
func (c *KeyContainer[K, V]) Len() int {
	g := c.state.Read()
	n := len(g.Get())
	g.Unlock()
	return n
}

// Snapshot returns a copy of the backing map taken under a shared claim.
func (c *KeyContainer[K, V]) Snapshot() map[K]V {
	g := c.state.Read()
	m := g.Get()
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	g.Unlock()
	return out
}
