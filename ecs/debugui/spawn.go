package debugui

import "github.com/plus3/tickecs/ecs"

// SpawnDebugUI spawns one ImguiItem that draws every diagnostics panel for the given world
// and scheduler.
func SpawnDebugUI(world *ecs.World, scheduler *ecs.Scheduler) (ecs.EntityId, error) {
	browser := NewStoreBrowserComponent(100)
	inspector := NewComponentInspectorComponent()
	schedule := NewScheduleViewerComponent()
	stats := NewSystemStatsComponent(120)
	queries := NewQueryDebuggerComponent()
	timer := NewFrameTimer()

	return world.SpawnWith(ImguiItem{
		Render: func() {
			browser.Render(world)
			inspector.Render(world, browser.GetSelectedEntity())
			schedule.Render(scheduler)
			stats.Render(scheduler, world, timer.GetDeltaTime())
			queries.Render(world)
		},
	})
}

// RegisterDebugUIComponents registers the component and resource types the ImGui system uses.
func RegisterDebugUIComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[ImguiItem](registry)
	ecs.RegisterComponent[ImguiInputState](registry)
}
