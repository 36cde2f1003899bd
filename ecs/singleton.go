package ecs

import (
	"reflect"

	"github.com/rotisserie/eris"
)

// SetResource stores a single value of type T that is not associated with any entity.
// Use this for global game state, configuration, or other singleton data.
// T must be registered; systems reach it through ReadsResource/WritesResource accesses
// so the scheduler can order them like any other component access.
func SetResource[T any](w *World, value T) error {
	id, ok := w.registry.Lookup(reflect.TypeFor[T]())
	if !ok {
		return eris.Wrapf(ErrUnregisteredComponent, "resource %s", reflect.TypeFor[T]())
	}

	if ptr, exists := w.resources[id].(*T); exists {
		*ptr = value
		return nil
	}

	stored := new(T)
	*stored = value
	w.resources[id] = stored
	return nil
}

// ResourceOf returns a pointer to the world resource T.
func ResourceOf[T any](w *World) (*T, error) {
	id, ok := w.registry.Lookup(reflect.TypeFor[T]())
	if !ok {
		return nil, eris.Wrapf(ErrUnregisteredComponent, "resource %s", reflect.TypeFor[T]())
	}

	ptr, exists := w.resources[id].(*T)
	if !exists {
		return nil, eris.Wrapf(ErrNotFound, "resource %s", reflect.TypeFor[T]())
	}
	return ptr, nil
}

// RemoveResource drops the world resource T. Removing an absent resource is a no-op.
func RemoveResource[T any](w *World) {
	if id, ok := w.registry.Lookup(reflect.TypeFor[T]()); ok {
		delete(w.resources, id)
	}
}

func (w *World) resource(id ComponentId) any {
	return w.resources[id]
}
