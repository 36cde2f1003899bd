package debugui

import (
	"fmt"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/tickecs/ecs"
)

// ScheduleRow is one system as shown in the schedule viewer.
type ScheduleRow struct {
	Batch     int
	Stage     string
	System    string
	Access    string
	BatchSize int
}

func NewScheduleViewerComponent() ScheduleViewerComponent {
	return ScheduleViewerComponent{selectedBatch: -1}
}

// scheduleRows flattens a schedule view into one row per system, in execution order.
func scheduleRows(view ecs.ScheduleView) []ScheduleRow {
	rows := make([]ScheduleRow, 0, len(view.Batches))
	for _, batch := range view.Batches {
		for _, sys := range batch.Systems {
			rows = append(rows, ScheduleRow{
				Batch:     batch.Index,
				Stage:     batch.Stage,
				System:    sys.Name,
				Access:    strings.Join(sys.Access, ", "),
				BatchSize: len(batch.Systems),
			})
		}
	}
	return rows
}

// Render draws the batches of the scheduler's current schedule. Returns the batch the user
// clicked, or -1.
func (sv *ScheduleViewerComponent) Render(scheduler *ecs.Scheduler) int {
	if !imgui.BeginV("Schedule Viewer", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return -1
	}

	schedule := scheduler.Schedule()
	if schedule == nil {
		imgui.Text("Schedule not built")
		imgui.End()
		return -1
	}

	rows := scheduleRows(schedule.View())
	maxBatchSize := 0
	for _, row := range rows {
		maxBatchSize = max(maxBatchSize, row.BatchSize)
	}

	imgui.Text(fmt.Sprintf("Batches: %d  Systems: %d", schedule.Len(), len(rows)))
	imgui.Separator()

	clicked := -1
	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsScrollY
	if imgui.BeginTableV("ScheduleTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Batch")
		imgui.TableSetupColumn("Stage")
		imgui.TableSetupColumn("System")
		imgui.TableSetupColumn("Access")
		imgui.TableHeadersRow()

		for _, row := range rows {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			isSelected := sv.selectedBatch == row.Batch
			if imgui.SelectableBoolV(fmt.Sprintf("%d##%s", row.Batch, row.System), isSelected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				sv.selectedBatch = row.Batch
				clicked = row.Batch
			}

			// Wider bars mean more systems sharing the batch.
			if maxBatchSize > 0 {
				barWidth := float32(row.BatchSize) / float32(maxBatchSize) * 40.0
				imgui.SameLine()
				drawList := imgui.WindowDrawList()
				pos := imgui.CursorScreenPos()
				color := imgui.ColorU32Vec4(imgui.NewVec4(0.2, 0.6, 0.8, 0.6))
				drawList.AddRectFilled(pos, imgui.NewVec2(pos.X+barWidth, pos.Y+10), color)
			}

			imgui.TableNextColumn()
			imgui.Text(row.Stage)

			imgui.TableNextColumn()
			imgui.Text(row.System)

			imgui.TableNextColumn()
			imgui.Text(row.Access)
		}

		imgui.EndTable()
	}

	imgui.End()
	return clicked
}
