package debugui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/earthshot/game"
)

// SessionWindow shows player state and the compound catalogue, with
// buttons to craft and select compounds.
type SessionWindow struct {
	session *game.Session
	lastErr error
}

func NewSessionWindow(s *game.Session) *SessionWindow {
	return &SessionWindow{session: s}
}

func (w *SessionWindow) Render() {
	s := w.session
	imgui.SetNextWindowPosV(imgui.NewVec2(10, 10), imgui.CondOnce, imgui.NewVec2(0, 0))
	imgui.SetNextWindowSizeV(imgui.NewVec2(320, 360), imgui.CondOnce)
	if !imgui.BeginV("Session", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	st := s.Store()
	imgui.Text(fmt.Sprintf("Time: %.2f s", s.Clock().Elapsed()))
	imgui.Text(fmt.Sprintf("Health: %.0f / %.0f", st.Health(), st.MaxHealth()))
	imgui.Text(fmt.Sprintf("Score: %d", st.Score()))
	imgui.Text(fmt.Sprintf("Speed: %.3f", s.Movement().Speed()))
	if s.Over() {
		imgui.TextColored(imgui.NewVec4(1, 0.3, 0.3, 1), "GAME OVER")
	}

	imgui.Separator()
	counters := st.Counters()
	for _, sym := range counters.Symbols() {
		imgui.BulletText(fmt.Sprintf("%s: %d", sym, counters.Get(sym)))
	}
	for _, kind := range st.ActivePowerUps() {
		imgui.BulletText(fmt.Sprintf("%s: %.1f s", kind, st.PowerUp(kind)))
	}

	imgui.Separator()
	armory := s.Armory()
	selected, _ := armory.Selected()
	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
	if imgui.BeginTableV("Compounds", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Formula")
		imgui.TableSetupColumn("Cost")
		imgui.TableSetupColumn("")
		imgui.TableHeadersRow()

		for _, c := range armory.Compounds() {
			imgui.TableNextRow()
			imgui.TableNextColumn()
			if c.Formula == selected.Formula {
				imgui.TextColored(imgui.NewVec4(0, 1, 0, 1), c.Formula)
			} else {
				imgui.Text(c.Formula)
			}
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%v", c.Cost))
			imgui.TableNextColumn()
			switch {
			case !armory.Unlocked(c.Formula):
				if imgui.Button("Craft##" + c.Formula) {
					w.lastErr = armory.Craft(c.Formula)
				}
			case c.Formula != selected.Formula:
				if imgui.Button("Select##" + c.Formula) {
					w.lastErr = armory.Select(c.Formula)
				}
			}
		}
		imgui.EndTable()
	}
	if w.lastErr != nil {
		imgui.TextColored(imgui.NewVec4(1, 0.4, 0.4, 1), w.lastErr.Error())
	}

	imgui.End()
}
