package debugui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/earthshot/entity"
	"github.com/plus3/earthshot/spawn"
)

// Spawner is what the spawn window drives: the spawn table and a way to
// place one of its rows in a lane.
type Spawner interface {
	Table() []spawn.Entry
	Params(entry spawn.Entry, lane float64) (entity.SpawnParams, error)
}

// SpawnWindow spawns table rows on demand, outside the cadence.
type SpawnWindow struct {
	spawner Spawner
	spawn   func(kind entity.Kind, p entity.SpawnParams) (entity.Entity, error)

	selected int
	lane     float32
	lastErr  error
	lastID   entity.ID
}

func NewSpawnWindow(spawner Spawner, spawnFn func(entity.Kind, entity.SpawnParams) (entity.Entity, error)) *SpawnWindow {
	return &SpawnWindow{spawner: spawner, spawn: spawnFn}
}

// Spawn places the selected row in the current lane.
func (sw *SpawnWindow) Spawn() (entity.Entity, error) {
	table := sw.spawner.Table()
	if sw.selected < 0 || sw.selected >= len(table) {
		return nil, fmt.Errorf("no spawn table row %d", sw.selected)
	}
	entry := table[sw.selected]
	p, err := sw.spawner.Params(entry, float64(sw.lane))
	if err != nil {
		return nil, err
	}
	return sw.spawn(entry.Kind, p)
}

func (sw *SpawnWindow) SetSelected(i int)    { sw.selected = i }
func (sw *SpawnWindow) SetLane(lane float64) { sw.lane = float32(lane) }

func (sw *SpawnWindow) Render() {
	if !imgui.BeginV("Spawn", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	for i, entry := range sw.spawner.Table() {
		label := string(entry.Kind)
		switch {
		case entry.Params.Element != "":
			label = fmt.Sprintf("%s (%s x%d)", label, entry.Params.Element, entry.Params.Amount)
		case entry.Params.Compound != "":
			label = fmt.Sprintf("%s (%s)", label, entry.Params.Compound)
		}
		if imgui.SelectableBoolV(fmt.Sprintf("%s##%d", label, i), sw.selected == i, 0, imgui.NewVec2(0, 0)) {
			sw.selected = i
		}
	}

	imgui.Separator()
	imgui.Text("Lane (rad):")
	imgui.SameLine()
	imgui.SetNextItemWidth(100)
	imgui.InputFloat("##lane", &sw.lane)

	if imgui.Button("Spawn") {
		e, err := sw.Spawn()
		sw.lastErr = err
		if err == nil {
			sw.lastID = e.ID()
		}
	}

	if sw.lastErr != nil {
		imgui.TextColored(imgui.NewVec4(1, 0.4, 0.4, 1), sw.lastErr.Error())
	} else if sw.lastID != 0 {
		imgui.Text(fmt.Sprintf("Spawned entity %d", sw.lastID))
	}

	imgui.End()
}
