package ecs_test

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/plus3/tickecs/ecs"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test EntityId encoding/decoding
func TestEntityIdEncoding(t *testing.T) {
	generation := uint32(12345)
	index := uint32(67890)

	entityId := ecs.NewEntityId(generation, index)

	assert.Equal(t, generation, entityId.Generation())
	assert.Equal(t, index, entityId.Index())
	assert.Equal(t, "67890v12345", entityId.String())
}

func TestEntityIdEdgeCases(t *testing.T) {
	tests := []struct {
		generation uint32
		index      uint32
	}{
		{0, 0},
		{0xFFFFFFFF, 0xFFFFFFFF},
		{1, 0},
		{0, 1},
		{0x12345678, 0x9ABCDEF0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("generation=%d,index=%d", tt.generation, tt.index), func(t *testing.T) {
			entityId := ecs.NewEntityId(tt.generation, tt.index)
			assert.Equal(t, tt.generation, entityId.Generation())
			assert.Equal(t, tt.index, entityId.Index())
		})
	}
}

func TestRegisterComponent(t *testing.T) {
	registry := ecs.NewComponentRegistry()

	posId := ecs.RegisterComponent[Position](registry)
	velId := ecs.RegisterComponent[Velocity](registry)

	assert.Equal(t, ecs.ComponentId(0), posId)
	assert.Equal(t, ecs.ComponentId(1), velId)
	assert.Equal(t, 2, registry.Len())

	t.Run("registering twice returns the same id", func(t *testing.T) {
		assert.Equal(t, posId, ecs.RegisterComponent[Position](registry))
		assert.Equal(t, 2, registry.Len())
	})

	t.Run("lookup by type", func(t *testing.T) {
		id, ok := registry.Lookup(reflect.TypeFor[Velocity]())
		assert.True(t, ok)
		assert.Equal(t, velId, id)
		assert.Equal(t, reflect.TypeFor[Velocity](), registry.Type(id))

		_, ok = registry.Lookup(reflect.TypeFor[Unregistered]())
		assert.False(t, ok)
	})

	t.Run("types in registration order", func(t *testing.T) {
		assert.Equal(t, []reflect.Type{reflect.TypeFor[Position](), reflect.TypeFor[Velocity]()}, registry.Types())
	})

	t.Run("invalid kinds panic", func(t *testing.T) {
		assert.Panics(t, func() { ecs.RegisterComponent[*Position](registry) })
		assert.Panics(t, func() { ecs.RegisterComponent[map[string]int](registry) })
		assert.Panics(t, func() { ecs.RegisterComponent[chan int](registry) })
		assert.Panics(t, func() { ecs.RegisterComponent[func()](registry) })
	})
}

func TestComponentStore(t *testing.T) {
	world := newTestWorld()
	store, err := ecs.StoreOf[Position](world)
	require.NoError(t, err)

	e1 := world.Spawn()
	e2 := world.Spawn()
	e3 := world.Spawn()

	t.Run("insert then get round-trips", func(t *testing.T) {
		prev, replaced, err := store.Insert(e1, Position{X: 1, Y: 2})
		require.NoError(t, err)
		assert.False(t, replaced)
		assert.Equal(t, Position{}, prev)

		got, err := store.Get(e1)
		require.NoError(t, err)
		assert.Equal(t, Position{X: 1, Y: 2}, *got)
	})

	t.Run("insert overwrites and returns previous", func(t *testing.T) {
		prev, replaced, err := store.Insert(e1, Position{X: 5, Y: 6})
		require.NoError(t, err)
		assert.True(t, replaced)
		assert.Equal(t, Position{X: 1, Y: 2}, prev)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("get through pointer mutates in place", func(t *testing.T) {
		got, err := store.Get(e1)
		require.NoError(t, err)
		got.X = 50

		again, err := store.Get(e1)
		require.NoError(t, err)
		assert.Equal(t, float32(50), again.X)
	})

	t.Run("remove then get signals not found", func(t *testing.T) {
		store.Insert(e2, Position{X: 2})
		store.Insert(e3, Position{X: 3})

		removed, err := store.Remove(e1)
		require.NoError(t, err)
		assert.Equal(t, float32(50), removed.X)

		_, err = store.Get(e1)
		assert.True(t, eris.Is(err, ecs.ErrNotFound))
		assert.False(t, store.Has(e1))

		_, err = store.Remove(e1)
		assert.True(t, eris.Is(err, ecs.ErrNotFound))
	})

	t.Run("swap-remove keeps the moved entity reachable", func(t *testing.T) {
		assert.Equal(t, 2, store.Len())

		got, err := store.Get(e3)
		require.NoError(t, err)
		assert.Equal(t, float32(3), got.X)

		got, err = store.Get(e2)
		require.NoError(t, err)
		assert.Equal(t, float32(2), got.X)

		assert.ElementsMatch(t, []ecs.EntityId{e2, e3}, store.Entities())
	})

	t.Run("all yields every pair", func(t *testing.T) {
		seen := map[ecs.EntityId]float32{}
		for id, pos := range store.All() {
			seen[id] = pos.X
		}
		assert.Equal(t, map[ecs.EntityId]float32{e2: 2, e3: 3}, seen)
	})

	t.Run("all stops early", func(t *testing.T) {
		count := 0
		for range store.All() {
			count++
			break
		}
		assert.Equal(t, 1, count)
	})

	t.Run("any accessors", func(t *testing.T) {
		assert.True(t, store.InsertAny(e1, &Position{X: 9}))
		assert.True(t, store.InsertAny(e1, Position{X: 10}))
		assert.False(t, store.InsertAny(e1, Velocity{}))

		value, ok := store.GetAny(e1)
		require.True(t, ok)
		assert.Equal(t, &Position{X: 10}, value)

		assert.True(t, store.RemoveAny(e1))
		assert.False(t, store.RemoveAny(e1))
	})

	t.Run("clear", func(t *testing.T) {
		store.Clear()
		assert.Equal(t, 0, store.Len())
		assert.False(t, store.Has(e2))
	})
}

func TestComponentStoreRejectsStaleIds(t *testing.T) {
	world := newTestWorld()
	store, err := ecs.StoreOf[Health](world)
	require.NoError(t, err)

	old := world.Spawn()
	stale := ecs.NewEntityId(old.Generation()+1, old.Index())

	store.Insert(old, Health{Current: 10})

	_, err = store.Get(stale)
	assert.True(t, eris.Is(err, ecs.ErrNotFound))
	assert.False(t, store.Has(stale))

	// Inserting under a newer generation reclaims the slot instead of aliasing it.
	_, replaced, err := store.Insert(stale, Health{Current: 20})
	require.NoError(t, err)
	assert.False(t, replaced)
	assert.False(t, store.Has(old))
	assert.Equal(t, 1, store.Len())

	t.Run("older generation cannot take over a live slot", func(t *testing.T) {
		world := newTestWorld()
		store, err := ecs.StoreOf[Health](world)
		require.NoError(t, err)

		old := world.Spawn()
		world.Despawn(old)
		live := world.Spawn()
		require.Equal(t, old.Index(), live.Index())

		_, _, err = store.Insert(live, Health{Current: 99})
		require.NoError(t, err)

		_, replaced, err := store.Insert(old, Health{Current: 1})
		assert.True(t, eris.Is(err, ecs.ErrStaleEntity))
		assert.False(t, replaced)
		assert.False(t, store.InsertAny(old, Health{Current: 1}))

		got, err := store.Get(live)
		require.NoError(t, err)
		assert.Equal(t, 99, got.Current)
		assert.False(t, store.Has(old))
		assert.Equal(t, 1, store.Len())
	})
}

func TestStoreOfUnregistered(t *testing.T) {
	world := newTestWorld()

	_, err := ecs.StoreOf[Unregistered](world)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ecs.ErrUnregisteredComponent))
	assert.True(t, eris.Is(err, ecs.ErrConfiguration))
}
