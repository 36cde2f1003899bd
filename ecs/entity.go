package ecs

import "fmt"

// EntityId encodes both the generation (upper 32 bits) and the entity index (lower 32 bits).
// An id is only valid while its generation matches the live generation recorded in the World.
// Generations start at 1, so the zero EntityId never refers to a live entity.
type EntityId uint64

// NewEntityId creates an EntityId from a generation and an entity index
func NewEntityId(generation uint32, index uint32) EntityId {
	return EntityId(uint64(generation)<<32 | uint64(index))
}

// Generation extracts the generation from the entity ID
func (e EntityId) Generation() uint32 {
	return uint32(e >> 32)
}

// Index extracts the entity index from the entity ID
func (e EntityId) Index() uint32 {
	return uint32(e & 0xFFFFFFFF)
}

func (e EntityId) String() string {
	return fmt.Sprintf("%dv%d", e.Index(), e.Generation())
}

// entityAllocator hands out entity indices, recycling freed ones with a bumped generation.
type entityAllocator struct {
	generations []uint32
	alive       []bool
	free        []uint32
	live        int
}

func (a *entityAllocator) allocate() EntityId {
	a.live++

	if len(a.free) > 0 {
		index := a.free[len(a.free)-1]
		a.free = a.free[:len(a.free)-1]
		a.alive[index] = true
		return NewEntityId(a.generations[index], index)
	}

	index := uint32(len(a.generations))
	a.generations = append(a.generations, 1)
	a.alive = append(a.alive, true)
	return NewEntityId(1, index)
}

// release invalidates the id. Returns false if the id was already stale or unknown.
func (a *entityAllocator) release(id EntityId) bool {
	if !a.isAlive(id) {
		return false
	}

	index := id.Index()
	a.alive[index] = false
	a.generations[index]++
	if a.generations[index] == 0 {
		a.generations[index] = 1
	}
	a.free = append(a.free, index)
	a.live--
	return true
}

func (a *entityAllocator) isAlive(id EntityId) bool {
	index := id.Index()
	if int(index) >= len(a.generations) {
		return false
	}
	return a.alive[index] && a.generations[index] == id.Generation()
}

// each yields every live entity in index order.
func (a *entityAllocator) each(yield func(EntityId) bool) {
	for index, alive := range a.alive {
		if !alive {
			continue
		}
		if !yield(NewEntityId(a.generations[index], uint32(index))) {
			return
		}
	}
}
