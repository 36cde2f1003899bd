package debugui

import (
	"fmt"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/tickecs/ecs"
)

func NewComponentInspectorComponent() ComponentInspectorComponent {
	return ComponentInspectorComponent{}
}

// Render shows every component of the selected entity as a flattened field table.
func (ci *ComponentInspectorComponent) Render(world *ecs.World, selectedEntityId ecs.EntityId) {
	if !imgui.BeginV("Component Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	ci.selectedEntityId = selectedEntityId

	if ci.selectedEntityId == 0 {
		imgui.Text("No entity selected")
		imgui.End()
		return
	}

	if !world.Alive(ci.selectedEntityId) {
		imgui.Text(fmt.Sprintf("Entity %s has been despawned", ci.selectedEntityId))
		imgui.End()
		return
	}

	types := world.ComponentTypes(ci.selectedEntityId)
	imgui.Text(fmt.Sprintf("Entity: %s", ci.selectedEntityId))
	imgui.Text(fmt.Sprintf("Components: %d", len(types)))
	imgui.Separator()

	for _, compType := range types {
		component, err := world.GetAny(ci.selectedEntityId, compType)
		if err != nil {
			continue
		}

		if imgui.TreeNodeStr(compType.String()) {
			ci.renderComponent(compType, reflect.ValueOf(component))
			imgui.TreePop()
		}
	}

	imgui.End()
}

func (ci *ComponentInspectorComponent) renderComponent(compType reflect.Type, ptr reflect.Value) {
	rows := globalReflectionCache.fieldRows("", ptr)
	if len(rows) == 0 {
		// Named primitives and empty tags have no fields to walk.
		imgui.Text(formatField(ptr.Elem()))
		return
	}

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
	if imgui.BeginTableV("Fields##"+compType.String(), 3, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Field")
		imgui.TableSetupColumn("Kind")
		imgui.TableSetupColumn("Value")
		imgui.TableHeadersRow()

		for _, row := range rows {
			imgui.TableNextRow()
			imgui.TableSetColumnIndex(0)
			imgui.Text(row.Path)
			imgui.TableSetColumnIndex(1)
			imgui.Text(row.Kind.String())
			imgui.TableSetColumnIndex(2)
			imgui.Text(row.Value)
		}

		imgui.EndTable()
	}
}
