package ecs

import (
	"iter"
	"reflect"

	"github.com/rotisserie/eris"
)

// World owns every component store, the world resources and the entity allocator.
// Between ticks it is exclusively owned by whoever drives the Scheduler; during a tick,
// systems only reach it through their resolved queries and command buffers.
type World struct {
	registry  *ComponentRegistry
	stores    []iComponentStore
	resources map[ComponentId]any
	allocator entityAllocator
}

// NewWorld creates an empty world over the given component registry.
func NewWorld(registry *ComponentRegistry) *World {
	return &World{
		registry:  registry,
		resources: make(map[ComponentId]any),
	}
}

// Registry returns the world's component registry.
func (w *World) Registry() *ComponentRegistry {
	return w.registry
}

// storeFor returns the store for a registered id, creating it on first use.
func (w *World) storeFor(id ComponentId) iComponentStore {
	if int(id) >= len(w.stores) {
		grown := make([]iComponentStore, w.registry.Len())
		copy(grown, w.stores)
		w.stores = grown
	}
	if w.stores[id] == nil {
		w.stores[id] = w.registry.newStore(id)
	}
	return w.stores[id]
}

func (w *World) storeForType(t reflect.Type) (iComponentStore, error) {
	id, ok := w.registry.Lookup(t)
	if !ok {
		return nil, eris.Wrapf(ErrUnregisteredComponent, "%s", t)
	}
	return w.storeFor(id), nil
}

// Spawn allocates a fresh entity with no components, reusing a freed index when one exists.
func (w *World) Spawn() EntityId {
	return w.allocator.allocate()
}

// SpawnWith allocates an entity and attaches the given components. Components may be
// passed as values or pointers. Nothing is spawned if any component type is unregistered.
func (w *World) SpawnWith(components ...any) (EntityId, error) {
	stores := make([]iComponentStore, len(components))
	for i, component := range components {
		store, err := w.storeForType(componentType(component))
		if err != nil {
			return 0, err
		}
		stores[i] = store
	}

	id := w.allocator.allocate()
	for i, component := range components {
		stores[i].InsertAny(id, component)
	}
	return id, nil
}

// Despawn removes every component the entity owns and invalidates its id.
// Despawning a stale or unknown id is a no-op.
func (w *World) Despawn(id EntityId) {
	if !w.allocator.isAlive(id) {
		return
	}
	for _, store := range w.stores {
		if store != nil {
			store.RemoveAny(id)
		}
	}
	w.allocator.release(id)
}

// Alive reports whether the id refers to a live entity.
func (w *World) Alive(id EntityId) bool {
	return w.allocator.isAlive(id)
}

// Len returns the number of live entities.
func (w *World) Len() int {
	return w.allocator.live
}

// Entities returns an iterator over every live entity in index order.
func (w *World) Entities() iter.Seq[EntityId] {
	return w.allocator.each
}

// InsertAny attaches a component whose type is only known at runtime.
func (w *World) InsertAny(id EntityId, component any) error {
	store, err := w.storeForType(componentType(component))
	if err != nil {
		return err
	}
	if !w.allocator.isAlive(id) {
		return eris.Wrapf(ErrStaleEntity, "insert %s on %s", store.Type(), id)
	}
	store.InsertAny(id, component)
	return nil
}

// RemoveType detaches the entity's component of the given type.
func (w *World) RemoveType(id EntityId, t reflect.Type) error {
	store, err := w.storeForType(t)
	if err != nil {
		return err
	}
	if !w.allocator.isAlive(id) {
		return eris.Wrapf(ErrStaleEntity, "remove %s from %s", t, id)
	}
	if !store.RemoveAny(id) {
		return eris.Wrapf(ErrNotFound, "entity %s has no %s", id, t)
	}
	return nil
}

// GetAny returns a pointer to the entity's component of the given type, boxed in an interface.
func (w *World) GetAny(id EntityId, t reflect.Type) (any, error) {
	store, err := w.storeForType(t)
	if err != nil {
		return nil, err
	}
	if !w.allocator.isAlive(id) {
		return nil, eris.Wrapf(ErrStaleEntity, "get %s from %s", t, id)
	}
	component, ok := store.GetAny(id)
	if !ok {
		return nil, eris.Wrapf(ErrNotFound, "entity %s has no %s", id, t)
	}
	return component, nil
}

// ComponentTypes returns the types of every component the entity owns, in registration order.
func (w *World) ComponentTypes(id EntityId) []reflect.Type {
	if !w.allocator.isAlive(id) {
		return nil
	}
	var types []reflect.Type
	for _, store := range w.stores {
		if store != nil && store.Has(id) {
			types = append(types, store.Type())
		}
	}
	return types
}

// StoreOf returns the typed store for T.
func StoreOf[T any](w *World) (*ComponentStore[T], error) {
	store, err := w.storeForType(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	return store.(*ComponentStore[T]), nil
}

// Insert attaches value to a live entity, returning the previous value if one was replaced.
func Insert[T any](w *World, id EntityId, value T) (T, bool, error) {
	var zero T

	store, err := StoreOf[T](w)
	if err != nil {
		return zero, false, err
	}
	if !w.allocator.isAlive(id) {
		return zero, false, eris.Wrapf(ErrStaleEntity, "insert %s on %s", store.Type(), id)
	}

	return store.Insert(id, value)
}

// Get returns a pointer to the entity's T component. The pointer is invalidated by the
// next Insert or Remove of T.
func Get[T any](w *World, id EntityId) (*T, error) {
	store, err := StoreOf[T](w)
	if err != nil {
		return nil, err
	}
	if !w.allocator.isAlive(id) {
		return nil, eris.Wrapf(ErrStaleEntity, "get %s from %s", store.Type(), id)
	}
	return store.Get(id)
}

// Remove detaches and returns the entity's T component.
func Remove[T any](w *World, id EntityId) (T, error) {
	var zero T

	store, err := StoreOf[T](w)
	if err != nil {
		return zero, err
	}
	if !w.allocator.isAlive(id) {
		return zero, eris.Wrapf(ErrStaleEntity, "remove %s from %s", store.Type(), id)
	}
	return store.Remove(id)
}

// Has reports whether a live entity owns a T component. Unregistered types report false.
func Has[T any](w *World, id EntityId) bool {
	store, err := StoreOf[T](w)
	if err != nil {
		return false
	}
	return w.allocator.isAlive(id) && store.Has(id)
}

// componentType returns the type of a component passed as a value or a pointer.
func componentType(component any) reflect.Type {
	t := reflect.TypeOf(component)
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}
