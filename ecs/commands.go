package ecs

import (
	"reflect"

	"github.com/rotisserie/eris"
)

// Commands provides a buffer for deferred structural changes that are applied after a tick.
// Systems running in the same batch share the World, so they never spawn, despawn, attach or
// detach components directly; they queue the change here instead.
// Each system owns its buffer, so no locking is needed.
type Commands struct {
	spawns   []spawnCommand
	despawns []EntityId
	inserts  []insertCommand
	removes  []removeCommand
	defers   []deferCommand
}

func newCommands() *Commands {
	return &Commands{}
}

type deferCommand struct {
	fn func(w *World)
}

type spawnCommand struct {
	components []any
}

type insertCommand struct {
	entity    EntityId
	component any
}

type removeCommand struct {
	entity   EntityId
	compType reflect.Type
}

// Defer queues a function to run against the world once the buffer is flushed.
func (c *Commands) Defer(fn func(w *World)) {
	c.defers = append(c.defers, deferCommand{fn: fn})
}

// Spawn queues an entity spawn operation with the given components.
func (c *Commands) Spawn(components ...any) {
	c.spawns = append(c.spawns, spawnCommand{components: components})
}

// Despawn queues an entity despawn operation.
func (c *Commands) Despawn(entity EntityId) {
	c.despawns = append(c.despawns, entity)
}

// Insert queues attaching (or overwriting) a component.
func (c *Commands) Insert(entity EntityId, component any) {
	c.inserts = append(c.inserts, insertCommand{
		entity:    entity,
		component: component,
	})
}

// Remove queues detaching a component.
func (c *Commands) Remove(entity EntityId, compType reflect.Type) {
	c.removes = append(c.removes, removeCommand{
		entity:   entity,
		compType: compType,
	})
}

// RemoveComponent queues detaching the entity's T component.
func RemoveComponent[T any](c *Commands, entity EntityId) {
	c.Remove(entity, reflect.TypeFor[T]())
}

// Len returns the number of queued operations.
func (c *Commands) Len() int {
	return len(c.spawns) + len(c.despawns) + len(c.inserts) + len(c.removes) + len(c.defers)
}

// Flush applies all queued commands to the world and resets the buffer.
// Despawns run first, then removes, inserts, spawns and deferred functions.
// Removes and inserts targeting an entity despawned in the same flush are skipped.
// Failures do not stop the flush; they are returned in order. A panicking deferred function
// is reported as an error like any other failure.
func (c *Commands) Flush(w *World) []error {
	var errs []error
	despawned := make(map[EntityId]bool, len(c.despawns))

	for _, entity := range c.despawns {
		w.Despawn(entity)
		despawned[entity] = true
	}

	for _, cmd := range c.removes {
		if despawned[cmd.entity] {
			continue
		}
		if err := w.RemoveType(cmd.entity, cmd.compType); err != nil {
			errs = append(errs, err)
		}
	}

	for _, cmd := range c.inserts {
		if despawned[cmd.entity] {
			continue
		}
		if err := w.InsertAny(cmd.entity, cmd.component); err != nil {
			errs = append(errs, err)
		}
	}

	for _, cmd := range c.spawns {
		if _, err := w.SpawnWith(cmd.components...); err != nil {
			errs = append(errs, eris.Wrap(err, "deferred spawn"))
		}
	}

	for i, df := range c.defers {
		if err := runDeferred(df.fn, w); err != nil {
			errs = append(errs, eris.Wrapf(err, "deferred function %d", i))
		}
	}

	c.reset()
	return errs
}

// runDeferred calls fn, turning a panic into an error so the remaining buffers still flush.
func runDeferred(fn func(w *World), w *World) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = eris.Errorf("panic: %v", r)
		}
	}()
	fn(w)
	return nil
}

// reset drops every queued command without applying it.
func (c *Commands) reset() {
	c.spawns = c.spawns[:0]
	c.despawns = c.despawns[:0]
	c.inserts = c.inserts[:0]
	c.removes = c.removes[:0]
	c.defers = c.defers[:0]
}
