package debugui

import (
	"github.com/plus3/earthshot/clock"
	"github.com/plus3/earthshot/game"
)

// Install schedules a System on the session's queue carrying the session,
// performance, entity and spawn windows. wall, when set, feeds the frame
// time graph.
func Install(s *game.Session, wall *clock.Wall) *System {
	stats := NewPerformanceStats(120)
	browser := NewEntityBrowser(100)
	inspector := NewInspector()
	spawner := NewSpawnWindow(s.Spawner(), s.Spawn)
	session := NewSessionWindow(s)

	sys := NewSystem(
		Item{Render: session.Render},
		Item{Render: func() {
			if wall != nil {
				stats.Record(wall.Lap())
			}
			stats.Render(s.Queue().Stats(), s.Registry().Len())
		}},
		Item{Render: func() {
			browser.Refresh(s.Registry().Candidates())
			browser.Render()
		}},
		Item{Render: func() {
			e, ok := s.Registry().Get(browser.Selected())
			inspector.Render(e, ok)
		}},
		Item{Render: spawner.Render},
	)
	s.Queue().Schedule(sys)
	return sys
}
