package ecs_test

import (
	"fmt"

	"github.com/plus3/tickecs/ecs"
)

// ExampleWorld demonstrates the basic API for managing entities and components.
// Each component type lives in its own store; an entity is just a generational id
// whose components are spread across those stores.
func ExampleWorld() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[Health](registry)
	world := ecs.NewWorld(registry)

	player, _ := world.SpawnWith(
		Position{X: 10, Y: 20},
		Velocity{DX: 1, DY: 0},
		Health{Current: 100, Max: 100},
	)

	pos, _ := ecs.Get[Position](world, player)
	fmt.Printf("Player spawned at (%.0f, %.0f)\n", pos.X, pos.Y)

	pos.X = 15
	pos.Y = 25
	pos, _ = ecs.Get[Position](world, player)
	fmt.Printf("Player moved to (%.0f, %.0f)\n", pos.X, pos.Y)

	world.Despawn(player)
	fmt.Println("Player alive:", world.Alive(player))

	// Output:
	// Player spawned at (10, 20)
	// Player moved to (15, 25)
	// Player alive: false
}

// ExampleWorld_addRemoveComponents shows components being attached to and detached from
// a live entity. Unlike archetype storage, the entity id never changes.
func ExampleWorld_addRemoveComponents() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[Health](registry)
	world := ecs.NewWorld(registry)

	entity, _ := world.SpawnWith(Position{X: 0, Y: 0})
	fmt.Printf("Has velocity: %v\n", ecs.Has[Velocity](world, entity))

	ecs.Insert(world, entity, Velocity{DX: 5, DY: 3})
	vel, _ := ecs.Get[Velocity](world, entity)
	fmt.Printf("Has velocity: %v (%.0f, %.0f)\n", ecs.Has[Velocity](world, entity), vel.DX, vel.DY)

	ecs.Insert(world, entity, Health{Current: 50, Max: 50})
	health, _ := ecs.Get[Health](world, entity)
	fmt.Printf("Has health: %v (%d/%d)\n", health != nil, health.Current, health.Max)

	ecs.Remove[Velocity](world, entity)
	fmt.Printf("Has velocity: %v\n", ecs.Has[Velocity](world, entity))

	// Output:
	// Has velocity: false
	// Has velocity: true (5, 3)
	// Has health: true (50/50)
	// Has velocity: false
}

// ExampleWorld_Despawn shows that a recycled index comes back with a new generation, so
// the old id can never reach the new entity's components.
func ExampleWorld_Despawn() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	world := ecs.NewWorld(registry)

	first, _ := world.SpawnWith(Position{X: 1})
	world.Despawn(first)
	second, _ := world.SpawnWith(Position{X: 2})

	fmt.Println(first, second)
	_, err := ecs.Get[Position](world, first)
	fmt.Println("stale lookup fails:", err != nil)

	// Output:
	// 0v1 0v2
	// stale lookup fails: true
}
