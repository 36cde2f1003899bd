// Package debugui provides immediate-mode GUI integration for ECS applications using Dear ImGui.
// It renders the scheduler's batches, per-system timings and the world's stores, and tracks
// ImGui's input capture state as a world resource.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/tickecs/ecs"
)

// ImguiItem is a component that holds a Dear ImGui render function.
// Attach this to entities that should render ImGui widgets each frame.
type ImguiItem struct {
	Render func()
}

// ImguiInputState tracks Dear ImGui's input capture state as a world resource.
// Use this to determine if ImGui is consuming mouse or keyboard input.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// SystemName is the name the ImGui system is registered under.
const SystemName = "debugui.imgui"

// imguiSystem updates the input state and defers every ImguiItem render function.
// Rendering runs during the command flush, after every batch has finished, so panels can
// read the world and the scheduler without racing any system.
func imguiSystem(frame *ecs.UpdateFrame) error {
	if state := ecs.WriteResource[ImguiInputState](frame.Query); state != nil {
		io := imgui.CurrentIO()
		state.WantCaptureMouse = io.WantCaptureMouse()
		state.WantCaptureKeyboard = io.WantCaptureKeyboard()
	}

	for row := range frame.Iter() {
		item, _ := ecs.Read[ImguiItem](row)
		if item.Render == nil {
			continue
		}
		render := item.Render
		frame.Commands.Defer(func(*ecs.World) { render() })
	}
	return nil
}

// Plugin registers the ImGui system in the PostUpdate stage. The host must begin an ImGui
// frame before the tick and end it after.
var Plugin = ecs.PluginFunc(func(s *ecs.Scheduler) {
	s.Register(SystemName, ecs.Describe(
		ecs.Reads[ImguiItem](),
		ecs.WritesResource[ImguiInputState](),
	), imguiSystem, ecs.InStage(ecs.PostUpdate))
})
