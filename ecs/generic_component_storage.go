package ecs

import (
	"iter"
	"reflect"

	"github.com/kamstrup/intmap"
	"github.com/rotisserie/eris"
)

// ComponentId is the dense identifier a ComponentRegistry assigns to each registered type,
// in registration order.
type ComponentId uint32

// ComponentRegistry manages component type registration for an ECS instance.
// Each World has its own ComponentRegistry, allowing multiple
// independent ECS instances to coexist without interference.
type ComponentRegistry struct {
	ids       map[reflect.Type]ComponentId
	types     []reflect.Type
	factories []func() iComponentStore
}

// NewComponentRegistry creates a new component registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		ids: make(map[reflect.Type]ComponentId),
	}
}

// RegisterComponent registers a new component type with the given registry and returns its id.
// This must be called for each component type before it can be stored or queried.
// Registering the same type twice returns the original id.
func RegisterComponent[T any](r *ComponentRegistry) ComponentId {
	t := reflect.TypeFor[T]()
	if id, ok := r.ids[t]; ok {
		return id
	}

	// Components can be structs or primitives (int, string, etc.)
	// But not pointers, maps, channels, or functions (those aren't value types)
	switch t.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface:
		panic("components cannot be pointers, maps, channels, functions or interfaces: " + t.String())
	}

	id := ComponentId(len(r.types))
	r.ids[t] = id
	r.types = append(r.types, t)
	r.factories = append(r.factories, func() iComponentStore {
		return newComponentStore[T]()
	})
	return id
}

// Lookup returns the id registered for a type.
func (r *ComponentRegistry) Lookup(t reflect.Type) (ComponentId, bool) {
	id, ok := r.ids[t]
	return id, ok
}

// Type returns the type registered under id.
func (r *ComponentRegistry) Type(id ComponentId) reflect.Type {
	return r.types[id]
}

// Types returns every registered type in registration order.
func (r *ComponentRegistry) Types() []reflect.Type {
	types := make([]reflect.Type, len(r.types))
	copy(types, r.types)
	return types
}

// Len returns the number of registered types.
func (r *ComponentRegistry) Len() int {
	return len(r.types)
}

func (r *ComponentRegistry) newStore(id ComponentId) iComponentStore {
	return r.factories[id]()
}

// ComponentStore is a sparse set holding every component of type T.
// Values and their owners live in two dense slices kept in lockstep; the index maps an
// entity index to its dense slot. Removal swaps the last element into the hole, so
// iteration order is not insertion order once anything has been removed.
//
// Insert and Remove may reallocate the dense slice: pointers returned by Get or All
// must not be held across either call.
type ComponentStore[T any] struct {
	values   []T
	entities []EntityId
	index    *intmap.Map[uint32, int]
}

func newComponentStore[T any]() *ComponentStore[T] {
	return &ComponentStore[T]{
		values:   make([]T, 0, 64),
		entities: make([]EntityId, 0, 64),
		index:    intmap.New[uint32, int](64),
	}
}

func (s *ComponentStore[T]) slot(id EntityId) (int, bool) {
	slot, ok := s.index.Get(id.Index())
	if !ok || s.entities[slot] != id {
		return 0, false
	}
	return slot, true
}

// Insert attaches value to the entity, overwriting any existing component.
// Returns the previous value and true if one was replaced. An id older than the one holding
// its index is refused with ErrStaleEntity.
func (s *ComponentStore[T]) Insert(id EntityId, value T) (T, bool, error) {
	var zero T

	if slot, ok := s.index.Get(id.Index()); ok {
		owner := s.entities[slot]
		switch {
		case owner == id:
			prev := s.values[slot]
			s.values[slot] = value
			return prev, true, nil
		case id.Generation() < owner.Generation():
			return zero, false, eris.Wrapf(ErrStaleEntity, "insert %s on %s, index owned by %s", s.Type(), id, owner)
		}
		// The slot belongs to an earlier generation of this index; reclaim it.
		s.entities[slot] = id
		s.values[slot] = value
		return zero, false, nil
	}

	s.index.Put(id.Index(), len(s.values))
	s.values = append(s.values, value)
	s.entities = append(s.entities, id)
	return zero, false, nil
}

// Remove detaches the entity's component and returns it.
func (s *ComponentStore[T]) Remove(id EntityId) (T, error) {
	var zero T

	slot, ok := s.slot(id)
	if !ok {
		return zero, eris.Wrapf(ErrNotFound, "entity %s has no %s", id, s.Type())
	}

	removed := s.values[slot]
	last := len(s.values) - 1
	if slot != last {
		s.values[slot] = s.values[last]
		s.entities[slot] = s.entities[last]
		s.index.Put(s.entities[slot].Index(), slot)
	}

	s.values[last] = zero
	s.values = s.values[:last]
	s.entities = s.entities[:last]
	s.index.Del(id.Index())

	return removed, nil
}

// Get returns a pointer to the entity's component.
func (s *ComponentStore[T]) Get(id EntityId) (*T, error) {
	slot, ok := s.slot(id)
	if !ok {
		return nil, eris.Wrapf(ErrNotFound, "entity %s has no %s", id, s.Type())
	}
	return &s.values[slot], nil
}

// Has checks whether the entity owns a component in this store.
func (s *ComponentStore[T]) Has(id EntityId) bool {
	_, ok := s.slot(id)
	return ok
}

// Len returns the number of stored components.
func (s *ComponentStore[T]) Len() int {
	return len(s.values)
}

// Entities returns the dense owner slice. Callers must not modify it.
func (s *ComponentStore[T]) Entities() []EntityId {
	return s.entities
}

// All returns an iterator over every (entity, component) pair in store order.
func (s *ComponentStore[T]) All() iter.Seq2[EntityId, *T] {
	return func(yield func(EntityId, *T) bool) {
		for i := range s.values {
			if !yield(s.entities[i], &s.values[i]) {
				return
			}
		}
	}
}

// Type returns the component type held by the store.
func (s *ComponentStore[T]) Type() reflect.Type {
	return reflect.TypeFor[T]()
}

// GetAny returns a *T boxed in an interface.
func (s *ComponentStore[T]) GetAny(id EntityId) (any, bool) {
	ptr, err := s.Get(id)
	if err != nil {
		return nil, false
	}
	return ptr, true
}

// InsertAny accepts either a T or a *T. Returns false for any other type and for stale ids.
func (s *ComponentStore[T]) InsertAny(id EntityId, value any) bool {
	var concrete T
	if ptr, ok := value.(*T); ok {
		concrete = *ptr
	} else if val, ok := value.(T); ok {
		concrete = val
	} else {
		return false
	}

	_, _, err := s.Insert(id, concrete)
	return err == nil
}

// RemoveAny removes the entity's component, reporting whether one was present.
func (s *ComponentStore[T]) RemoveAny(id EntityId) bool {
	_, err := s.Remove(id)
	return err == nil
}

// Clear drops every component.
func (s *ComponentStore[T]) Clear() {
	clear(s.values)
	s.values = s.values[:0]
	s.entities = s.entities[:0]
	s.index.Clear()
}
