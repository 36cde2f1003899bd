package ecs

import (
	"iter"
	"reflect"
)

// Query is a QueryDescriptor resolved against a World.
// The Scheduler resolves one Query per system when it builds a schedule; hosts can resolve
// their own with NewQuery to inspect the world between ticks.
type Query struct {
	world      *World
	descriptor QueryDescriptor
	access     accessSet
	columns    map[reflect.Type]queryColumn
	resources  map[reflect.Type]queryColumn
	required   []iComponentStore
	excluded   []iComponentStore
}

type queryColumn struct {
	id    ComponentId
	store iComponentStore
	mode  AccessMode
}

// NewQuery validates the descriptor and binds it to the world's stores.
// Returns a configuration error for unregistered types or conflicting modes.
func NewQuery(world *World, descriptor QueryDescriptor) (*Query, error) {
	access, err := descriptor.resolve(world.registry)
	if err != nil {
		return nil, err
	}

	q := &Query{
		world:      world,
		descriptor: descriptor,
		access:     access,
		columns:    make(map[reflect.Type]queryColumn, len(access.entries)),
		resources:  make(map[reflect.Type]queryColumn),
	}

	for _, entry := range access.entries {
		col := queryColumn{id: entry.id, mode: entry.mode}
		if entry.mode.resource() {
			q.resources[entry.typ] = col
			continue
		}
		col.store = world.storeFor(entry.id)
		q.columns[entry.typ] = col

		switch {
		case entry.mode.required():
			q.required = append(q.required, col.store)
		case entry.mode == ModeExclude:
			q.excluded = append(q.excluded, col.store)
		}
	}

	return q, nil
}

// Descriptor returns the descriptor the query was resolved from.
func (q *Query) Descriptor() QueryDescriptor {
	return q.descriptor
}

// Row is one entity matched by a query. Component access goes through Read and Write.
type Row struct {
	Entity EntityId
	query  *Query
}

// Iter returns an iterator over every entity that has all required components and none
// of the excluded ones. The smallest required store drives the scan.
// The world must not be structurally modified while iterating.
func (q *Query) Iter() iter.Seq[Row] {
	return func(yield func(Row) bool) {
		if len(q.required) == 0 {
			for id := range q.world.Entities() {
				if !q.clearOfExcluded(id) {
					continue
				}
				if !yield(Row{Entity: id, query: q}) {
					return
				}
			}
			return
		}

		driver := q.required[0]
		for _, store := range q.required[1:] {
			if store.Len() < driver.Len() {
				driver = store
			}
		}

		for _, id := range driver.Entities() {
			if !q.matches(id, driver) {
				continue
			}
			if !yield(Row{Entity: id, query: q}) {
				return
			}
		}
	}
}

// Entities collects the ids of every matching entity.
func (q *Query) Entities() []EntityId {
	var ids []EntityId
	for row := range q.Iter() {
		ids = append(ids, row.Entity)
	}
	return ids
}

// Count returns the number of matching entities.
func (q *Query) Count() int {
	count := 0
	for range q.Iter() {
		count++
	}
	return count
}

// Matches reports whether a live entity satisfies the query.
func (q *Query) Matches(id EntityId) bool {
	if !q.world.Alive(id) {
		return false
	}
	return q.matches(id, nil)
}

func (q *Query) matches(id EntityId, skip iComponentStore) bool {
	for _, store := range q.required {
		if store != skip && !store.Has(id) {
			return false
		}
	}
	return q.clearOfExcluded(id)
}

// clearOfExcluded reports whether the entity has none of the excluded components.
func (q *Query) clearOfExcluded(id EntityId) bool {
	for _, store := range q.excluded {
		if store.Has(id) {
			return false
		}
	}
	return true
}

func (q *Query) column(t reflect.Type, accessor string) queryColumn {
	col, ok := q.columns[t]
	if !ok {
		col, ok = q.resources[t]
	}
	if !ok {
		panic("ecs." + accessor + ": " + t.String() + " is not declared by query " + q.descriptor.String())
	}
	return col
}

func (q *Query) resourceColumn(t reflect.Type, accessor string) queryColumn {
	col, ok := q.resources[t]
	if !ok {
		col, ok = q.columns[t]
	}
	if !ok {
		panic("ecs." + accessor + ": " + t.String() + " is not declared by query " + q.descriptor.String())
	}
	return col
}

// Read returns a copy of the row's T component. The boolean is false when an optional
// component is absent. Panics if the query does not declare read or write access to T.
func Read[T any](row Row) (T, bool) {
	var zero T

	col := row.query.column(reflect.TypeFor[T](), "Read")
	if !col.mode.reads() || col.mode.resource() {
		panic("ecs.Read: " + reflect.TypeFor[T]().String() + " is declared as " + col.mode.String())
	}

	ptr, err := col.store.(*ComponentStore[T]).Get(row.Entity)
	if err != nil {
		return zero, false
	}
	return *ptr, true
}

// Write returns a pointer to the row's T component. The boolean is false when an optional
// component is absent. Panics unless the query declares write or optional-write access to T.
// The pointer is valid until the end of the tick.
func Write[T any](row Row) (*T, bool) {
	col := row.query.column(reflect.TypeFor[T](), "Write")
	if col.mode != ModeWrite && col.mode != ModeOptionalWrite {
		panic("ecs.Write: " + reflect.TypeFor[T]().String() + " is declared as " + col.mode.String())
	}

	ptr, err := col.store.(*ComponentStore[T]).Get(row.Entity)
	if err != nil {
		return nil, false
	}
	return ptr, true
}

// ReadResource returns a copy of the world resource T.
// Panics unless the query declares resource access to T.
func ReadResource[T any](q *Query) (T, bool) {
	var zero T

	col := q.resourceColumn(reflect.TypeFor[T](), "ReadResource")
	if !col.mode.resource() {
		panic("ecs.ReadResource: " + reflect.TypeFor[T]().String() + " is declared as " + col.mode.String())
	}

	ptr, ok := q.world.resource(col.id).(*T)
	if !ok {
		return zero, false
	}
	return *ptr, true
}

// WriteResource returns a pointer to the world resource T, or nil if it was never set.
// Panics unless the query declares resource-write access to T.
func WriteResource[T any](q *Query) *T {
	col := q.resourceColumn(reflect.TypeFor[T](), "WriteResource")
	if col.mode != ModeResourceWrite {
		panic("ecs.WriteResource: " + reflect.TypeFor[T]().String() + " is declared as " + col.mode.String())
	}

	ptr, _ := q.world.resource(col.id).(*T)
	return ptr
}
