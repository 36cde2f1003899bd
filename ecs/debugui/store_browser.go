package debugui

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/tickecs/ecs"
)

// EntityInfo is one row of the store browser's entity table.
type EntityInfo struct {
	ID             ecs.EntityId
	ComponentTypes []reflect.Type
	ComponentNames []string
}

// StoreBrowserCache holds the browser's entity snapshot and sort state between frames.
type StoreBrowserCache struct {
	entities      []EntityInfo
	lastEntities  int
	frames        uint64
	sortColumn    int
	sortAscending bool
}

func NewStoreBrowserComponent(maxEntitiesPerPage int) StoreBrowserComponent {
	return StoreBrowserComponent{
		cache: &StoreBrowserCache{
			lastEntities:  -1,
			sortColumn:    0,
			sortAscending: true,
		},
		maxEntitiesPerPage: maxEntitiesPerPage,
	}
}

// collectEntities snapshots every live entity with the component types it owns.
func collectEntities(world *ecs.World) []EntityInfo {
	entities := make([]EntityInfo, 0, world.Len())
	for id := range world.Entities() {
		types := world.ComponentTypes(id)
		names := make([]string, len(types))
		for i, t := range types {
			names[i] = t.String()
		}
		entities = append(entities, EntityInfo{ID: id, ComponentTypes: types, ComponentNames: names})
	}
	return entities
}

func sortEntities(entities []EntityInfo, column int, ascending bool) {
	sort.SliceStable(entities, func(i, j int) bool {
		a, b := entities[i], entities[j]
		if !ascending {
			a, b = b, a
		}

		switch column {
		case 1:
			return strings.Join(a.ComponentNames, ",") < strings.Join(b.ComponentNames, ",")
		case 2:
			return len(a.ComponentTypes) < len(b.ComponentTypes)
		default:
			return a.ID.Index() < b.ID.Index()
		}
	})
}

// filterEntities keeps entities whose id or component names contain text and which own
// filterType, when one is set.
func filterEntities(entities []EntityInfo, text string, filterType reflect.Type) []EntityInfo {
	if text == "" && filterType == nil {
		return entities
	}

	filtered := make([]EntityInfo, 0, len(entities))
	needle := strings.ToLower(text)

	for _, entity := range entities {
		if filterType != nil && !containsType(entity.ComponentTypes, filterType) {
			continue
		}

		if needle != "" {
			components := strings.ToLower(strings.Join(entity.ComponentNames, " "))
			if !strings.Contains(entity.ID.String(), needle) && !strings.Contains(components, needle) {
				continue
			}
		}

		filtered = append(filtered, entity)
	}

	return filtered
}

func containsType(types []reflect.Type, t reflect.Type) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

func (sb *StoreBrowserComponent) Render(world *ecs.World) {
	if !imgui.BeginV("Store Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	sb.rebuildCacheIfNeeded(world)
	sb.renderStores(world)

	imgui.InputTextWithHint("##search", "Search...", &sb.filterText, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		sb.filterText = ""
		sb.filterType = nil
		sb.currentPage = 0
	}
	if sb.filterType != nil {
		imgui.Text(fmt.Sprintf("Owning: %s", sb.filterType))
	}

	filtered := filterEntities(sb.cache.entities, sb.filterText, sb.filterType)

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("EntityTable", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Entity")
		imgui.TableSetupColumn("Components")
		imgui.TableSetupColumn("Count")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			sb.cache.sortColumn = int(spec.ColumnIndex())
			sb.cache.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			sortEntities(sb.cache.entities, sb.cache.sortColumn, sb.cache.sortAscending)
			sortSpecs.SetSpecsDirty(false)
		}

		startIdx := min(sb.currentPage*sb.maxEntitiesPerPage, len(filtered))
		endIdx := min(startIdx+sb.maxEntitiesPerPage, len(filtered))

		for _, entity := range filtered[startIdx:endIdx] {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			isSelected := sb.selectedEntityId == entity.ID
			if imgui.SelectableBoolV(entity.ID.String(), isSelected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				sb.selectedEntityId = entity.ID
			}

			imgui.TableNextColumn()
			imgui.Text(strings.Join(entity.ComponentNames, ", "))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", len(entity.ComponentTypes)))
		}

		imgui.EndTable()
	}

	if len(filtered) > sb.maxEntitiesPerPage {
		totalPages := (len(filtered) + sb.maxEntitiesPerPage - 1) / sb.maxEntitiesPerPage
		imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", sb.currentPage+1, totalPages, len(filtered)))
		imgui.SameLine()
		if imgui.Button("Prev") && sb.currentPage > 0 {
			sb.currentPage--
		}
		imgui.SameLine()
		if imgui.Button("Next") && sb.currentPage < totalPages-1 {
			sb.currentPage++
		}
	} else {
		imgui.Text(fmt.Sprintf("Total: %d entities", len(filtered)))
	}

	imgui.End()
}

// renderStores lists every registered store with its occupancy. Clicking one filters the
// entity table to its owners.
func (sb *StoreBrowserComponent) renderStores(world *ecs.World) {
	if !imgui.TreeNodeStr("Component Stores") {
		return
	}

	stats := world.CollectStats()
	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
	if imgui.BeginTableV("StoreTable", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Id")
		imgui.TableSetupColumn("Type")
		imgui.TableSetupColumn("Count")
		imgui.TableHeadersRow()

		for _, store := range stats.Stores {
			imgui.TableNextRow()
			imgui.TableSetColumnIndex(0)
			if imgui.SelectableBoolV(fmt.Sprintf("%d", store.Id), sb.filterType == store.Type, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				sb.filterType = store.Type
				sb.currentPage = 0
			}
			imgui.TableSetColumnIndex(1)
			imgui.Text(store.Type.String())
			imgui.TableSetColumnIndex(2)
			imgui.Text(fmt.Sprintf("%d", store.Count))
		}

		imgui.EndTable()
	}
	imgui.TreePop()
}

// rebuildCacheIfNeeded refreshes the snapshot when the population changes, and every 60 frames
// otherwise so component churn is still picked up.
func (sb *StoreBrowserComponent) rebuildCacheIfNeeded(world *ecs.World) {
	sb.cache.frames++
	if sb.cache.lastEntities == world.Len() && sb.cache.frames%60 != 0 {
		return
	}

	sb.cache.lastEntities = world.Len()
	sb.cache.entities = collectEntities(world)
	sortEntities(sb.cache.entities, sb.cache.sortColumn, sb.cache.sortAscending)
}

func (sb *StoreBrowserComponent) GetSelectedEntity() ecs.EntityId {
	return sb.selectedEntityId
}
