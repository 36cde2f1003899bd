package ecs

import "reflect"

// iComponentStore is an interface for a type-erased component store.
// Typed access goes through *ComponentStore[T], recovered by a type assertion at the call site.
type iComponentStore interface {
	Type() reflect.Type
	Len() int
	Has(id EntityId) bool
	Entities() []EntityId
	GetAny(id EntityId) (any, bool)
	InsertAny(id EntityId, value any) bool
	RemoveAny(id EntityId) bool
	Clear()
}
