package debugui

import (
	"fmt"
	"sort"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/tickecs/ecs"
)

// SystemRow is one system's timings as shown in the stats panel.
type SystemRow struct {
	Name       string
	Stage      string
	Batch      int
	Executions int64
	Failures   int64
	Avg        time.Duration
	Max        time.Duration
	Last       time.Duration
}

func NewSystemStatsComponent(historyFrames int) SystemStatsComponent {
	return SystemStatsComponent{
		historyFrames: historyFrames,
		frameHistory:  make([]float32, historyFrames),
		frameIndex:    0,
		sortColumn:    5,
		sortAscending: false,
	}
}

// systemRows builds the table rows sorted by the given column.
func systemRows(stats *ecs.SchedulerStats, column int, ascending bool) []SystemRow {
	rows := make([]SystemRow, len(stats.Systems))
	for i, sys := range stats.Systems {
		rows[i] = SystemRow{
			Name:       sys.Name,
			Stage:      sys.Stage.String(),
			Batch:      sys.Batch,
			Executions: sys.ExecutionCount,
			Failures:   sys.FailureCount,
			Avg:        sys.AvgDuration,
			Max:        sys.MaxDuration,
			Last:       sys.LastDuration,
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !ascending {
			a, b = b, a
		}

		switch column {
		case 0:
			return a.Name < b.Name
		case 1:
			return a.Batch < b.Batch
		case 2:
			return a.Executions < b.Executions
		case 3:
			return a.Failures < b.Failures
		case 4:
			return a.Last < b.Last
		default:
			return a.Avg < b.Avg
		}
	})
	return rows
}

func (ps *SystemStatsComponent) Render(scheduler *ecs.Scheduler, world *ecs.World, deltaTime float32) {
	if !imgui.BeginV("System Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	ps.frameHistory[ps.frameIndex] = deltaTime * 1000.0
	ps.frameIndex = (ps.frameIndex + 1) % ps.historyFrames

	stats := scheduler.GetStats()
	worldStats := world.CollectStats()

	imgui.Text(fmt.Sprintf("Ticks: %d", stats.Ticks))
	imgui.Text(fmt.Sprintf("Systems: %d in %d batches", stats.SystemCount, stats.BatchCount))
	imgui.Text(fmt.Sprintf("Executions: %d (%d failed)", stats.TotalExecutions, stats.TotalFailures))
	imgui.Text(fmt.Sprintf("Entities: %d  Resources: %d", worldStats.EntityCount, worldStats.ResourceCount))

	var avgFrameTime float32
	for _, ft := range ps.frameHistory {
		avgFrameTime += ft
	}
	avgFrameTime /= float32(ps.historyFrames)

	if avgFrameTime > 0 {
		imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avgFrameTime, 1000.0/avgFrameTime))
	}

	imgui.Separator()
	imgui.Text("Frame Time Graph (ms)")
	imgui.PlotLinesFloatPtr("##frametime", &ps.frameHistory[0], int32(len(ps.frameHistory)))

	if imgui.TreeNodeStr("System Details") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable
		if imgui.BeginTableV("SystemStatsTable", 6, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("System")
			imgui.TableSetupColumn("Batch")
			imgui.TableSetupColumn("Runs")
			imgui.TableSetupColumn("Failures")
			imgui.TableSetupColumn("Last")
			imgui.TableSetupColumn("Avg / Max")
			imgui.TableHeadersRow()

			sortSpecs := imgui.TableGetSortSpecs()
			if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
				spec := sortSpecs.Specs()
				ps.sortColumn = int(spec.ColumnIndex())
				ps.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
				sortSpecs.SetSpecsDirty(false)
			}

			for _, row := range systemRows(stats, ps.sortColumn, ps.sortAscending) {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(row.Name)
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d (%s)", row.Batch, row.Stage))
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", row.Executions))
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", row.Failures))
				imgui.TableNextColumn()
				imgui.Text(row.Last.String())
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%s / %s", row.Avg, row.Max))
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	imgui.End()
}

type FrameTimer struct {
	lastFrameTime time.Time
}

func NewFrameTimer() *FrameTimer {
	return &FrameTimer{
		lastFrameTime: time.Now(),
	}
}

func (ft *FrameTimer) GetDeltaTime() float32 {
	now := time.Now()
	delta := float32(now.Sub(ft.lastFrameTime).Seconds())
	ft.lastFrameTime = now
	return delta
}
