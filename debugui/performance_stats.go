package debugui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/earthshot/updater"
)

// PerformanceStats keeps a ring of frame times and shows them next to the
// queue's per-task timings.
type PerformanceStats struct {
	historyFrames int
	frameHistory  []float32
	frameIndex    int
	recorded      int
}

func NewPerformanceStats(historyFrames int) *PerformanceStats {
	historyFrames = max(1, historyFrames)
	return &PerformanceStats{
		historyFrames: historyFrames,
		frameHistory:  make([]float32, historyFrames),
	}
}

// Record stores a frame time given in seconds.
func (ps *PerformanceStats) Record(deltaTime float64) {
	ps.frameHistory[ps.frameIndex] = float32(deltaTime * 1000.0)
	ps.frameIndex = (ps.frameIndex + 1) % ps.historyFrames
	ps.recorded = min(ps.recorded+1, ps.historyFrames)
}

// Average is the mean recorded frame time in milliseconds.
func (ps *PerformanceStats) Average() float32 {
	if ps.recorded == 0 {
		return 0
	}
	var total float32
	for _, ft := range ps.frameHistory {
		total += ft
	}
	return total / float32(ps.recorded)
}

func (ps *PerformanceStats) Render(stats *updater.QueueStats, entities int) {
	if !imgui.BeginV("Performance Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	imgui.Text(fmt.Sprintf("Ticks: %d", stats.Ticks))
	imgui.Text(fmt.Sprintf("Live Tasks: %d", stats.TaskCount))
	imgui.Text(fmt.Sprintf("Collidables: %d", entities))
	imgui.Text(fmt.Sprintf("Task Failures: %d", stats.Failures))

	avg := ps.Average()
	if avg > 0 {
		imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avg, 1000.0/avg))
	}

	imgui.Separator()
	imgui.Text("Frame Time Graph (ms)")
	imgui.PlotLinesFloatPtr("##frametime", &ps.frameHistory[0], int32(len(ps.frameHistory)))

	if imgui.TreeNodeStr("Task Details") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("TaskStatsTable", 6, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Task")
			imgui.TableSetupColumn("Live")
			imgui.TableSetupColumn("Runs")
			imgui.TableSetupColumn("Failures")
			imgui.TableSetupColumn("Avg")
			imgui.TableSetupColumn("Max")
			imgui.TableHeadersRow()

			for _, task := range stats.Tasks {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(task.Name)
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", task.Live))
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", task.ExecutionCount))
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", task.Failures))
				imgui.TableNextColumn()
				imgui.Text(task.AvgDuration.String())
				imgui.TableNextColumn()
				imgui.Text(task.MaxDuration.String())
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	imgui.End()
}
