package ecs_test

import (
	"fmt"

	"github.com/plus3/tickecs/ecs"
)

func cleanupSystem(frame *ecs.UpdateFrame) error {
	deadCount := 0
	for row := range frame.Iter() {
		health, _ := ecs.Read[Health](row)
		if health.Current <= 0 {
			frame.Commands.Despawn(row.Entity)
			deadCount++
		}
	}
	if deadCount > 0 {
		fmt.Printf("Queued %d dead entities for deletion\n", deadCount)
	}
	return nil
}

// ExampleCommands demonstrates using command buffers to defer entity mutations.
// Systems in the same batch share the world, so spawning or despawning while they run
// would race with their iteration. The Scheduler flushes every buffer at the end of the
// tick, in registration order, once no system is running.
func ExampleCommands() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Health](registry)
	world := ecs.NewWorld(registry)

	world.SpawnWith(Position{X: 0, Y: 0}, Health{Current: 0, Max: 100})
	world.SpawnWith(Position{X: 10, Y: 10}, Health{Current: 50, Max: 100})
	world.SpawnWith(Position{X: 20, Y: 20}, Health{Current: 100, Max: 100})

	scheduler := ecs.NewScheduler(world)
	scheduler.Register("Cleanup", ecs.Describe(ecs.Reads[Health]()), cleanupSystem)

	scheduler.Once(1.0)

	fmt.Printf("Remaining entities: %d\n", world.Len())

	// Output:
	// Queued 1 dead entities for deletion
	// Remaining entities: 2
}

type ShootTimer struct {
	TimeUntilShot float32
}

func shootingSystem(frame *ecs.UpdateFrame) error {
	for row := range frame.Iter() {
		timer, _ := ecs.Write[ShootTimer](row)
		if timer.TimeUntilShot > 0 {
			continue
		}
		pos, _ := ecs.Read[Position](row)
		vel, _ := ecs.Read[Velocity](row)
		frame.Commands.Spawn(
			Position{X: pos.X, Y: pos.Y},
			Velocity{DX: vel.DX * 2, DY: vel.DY * 2},
		)
		fmt.Printf("Spawned projectile at (%.0f, %.0f)\n", pos.X, pos.Y)
		timer.TimeUntilShot = 10
	}
	return nil
}

// ExampleCommands_spawning shows using commands to spawn entities during iteration.
// This is common for systems that need to create projectiles, particles, or other
// entities based on existing entity state.
func ExampleCommands_spawning() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[ShootTimer](registry)
	world := ecs.NewWorld(registry)

	world.SpawnWith(
		Position{X: 10, Y: 10},
		Velocity{DX: 1, DY: 0},
		ShootTimer{TimeUntilShot: 0},
	)
	world.SpawnWith(
		Position{X: 20, Y: 20},
		Velocity{DX: 0, DY: 1},
		ShootTimer{TimeUntilShot: 5},
	)

	scheduler := ecs.NewScheduler(world)
	scheduler.Register("Shooting", ecs.Describe(
		ecs.Reads[Position](),
		ecs.Reads[Velocity](),
		ecs.Writes[ShootTimer](),
	), shootingSystem)

	scheduler.Once(1.0)

	query, _ := ecs.NewQuery(world, ecs.Describe(ecs.Reads[Position](), ecs.Reads[Velocity]()))
	fmt.Printf("Total entities with velocity: %d\n", query.Count())

	// Output:
	// Spawned projectile at (10, 10)
	// Total entities with velocity: 3
}
