package debugui

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/tickecs/ecs"
)

type QueryDebuggerCache struct {
	componentTypes []reflect.Type
	registryLen    int
}

// modeChoices are the access modes the debugger can toggle on a component type, in the order
// the radio buttons cycle through them.
var modeChoices = []ecs.AccessMode{0, ecs.ModeRead, ecs.ModeOptionalRead, ecs.ModeExclude}

func NewQueryDebuggerComponent() QueryDebuggerComponent {
	return QueryDebuggerComponent{
		selected: make(map[reflect.Type]ecs.AccessMode),
		cache: &QueryDebuggerCache{
			registryLen: -1,
		},
	}
}

// buildDescriptor turns the selected modes into a read-only descriptor, ordered by type name
// so the rendered descriptor is stable between frames.
func buildDescriptor(selected map[reflect.Type]ecs.AccessMode) ecs.QueryDescriptor {
	accesses := make([]ecs.Access, 0, len(selected))
	for t, mode := range selected {
		if mode == 0 {
			continue
		}
		accesses = append(accesses, ecs.Access{Type: t, Mode: mode})
	}
	sort.Slice(accesses, func(i, j int) bool {
		return accesses[i].Type.String() < accesses[j].Type.String()
	})
	return ecs.Describe(accesses...)
}

func nextMode(mode ecs.AccessMode) ecs.AccessMode {
	for i, m := range modeChoices {
		if m == mode {
			return modeChoices[(i+1)%len(modeChoices)]
		}
	}
	return 0
}

func (qd *QueryDebuggerComponent) Render(world *ecs.World) {
	if !imgui.BeginV("Query Debugger", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	qd.rebuildCacheIfNeeded(world.Registry())

	imgui.Text("Click a component type to cycle its access:")
	imgui.Separator()

	if imgui.Button("Clear All") {
		qd.selected = make(map[reflect.Type]ecs.AccessMode)
	}

	for _, compType := range qd.cache.componentTypes {
		mode := qd.selected[compType]
		label := "-"
		if mode != 0 {
			label = mode.String()
		}
		if imgui.Button(fmt.Sprintf("%s##%s", label, compType)) {
			qd.selected[compType] = nextMode(mode)
		}
		imgui.SameLine()
		imgui.Text(compType.String())
	}

	imgui.Separator()

	descriptor := buildDescriptor(qd.selected)
	imgui.Text(fmt.Sprintf("Descriptor: %s", descriptor))

	query, err := ecs.NewQuery(world, descriptor)
	if err != nil {
		imgui.Text(fmt.Sprintf("Invalid: %v", err))
		imgui.End()
		return
	}

	entities := query.Entities()
	imgui.Text(fmt.Sprintf("Matching Entities: %d", len(entities)))

	if imgui.TreeNodeStr("Matches") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsScrollY
		if imgui.BeginTableV("QueryMatchTable", 2, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Entity")
			imgui.TableSetupColumn("Components")
			imgui.TableHeadersRow()

			for _, id := range entities {
				imgui.TableNextRow()

				imgui.TableSetColumnIndex(0)
				imgui.Text(id.String())

				imgui.TableSetColumnIndex(1)
				imgui.Text(fmt.Sprintf("%v", world.ComponentTypes(id)))
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	imgui.End()
}

func (qd *QueryDebuggerComponent) rebuildCacheIfNeeded(registry *ecs.ComponentRegistry) {
	if qd.cache.registryLen == registry.Len() {
		return
	}

	qd.cache.registryLen = registry.Len()
	qd.cache.componentTypes = append([]reflect.Type(nil), registry.Types()...)
	sort.Slice(qd.cache.componentTypes, func(i, j int) bool {
		return qd.cache.componentTypes[i].String() < qd.cache.componentTypes[j].String()
	})
}
