// Package debugui draws Dear ImGui windows over a running session. Windows
// are plain render functions queued by a System task, so they run inside the
// tick that the host brackets with the backend's BeginFrame and EndFrame.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/earthshot/updater"
)

// Item holds a Dear ImGui render function.
type Item struct {
	Render func()
}

// InputState tracks whether Dear ImGui is consuming mouse or keyboard input.
// Hosts check it before forwarding input to the game.
type InputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// System defers every item's render function to the end of the tick.
type System struct {
	Items []Item
	Input InputState

	// Hidden skips rendering without unscheduling the task.
	Hidden bool
}

func NewSystem(items ...Item) *System {
	return &System{Items: items}
}

func (s *System) Add(items ...Item) { s.Items = append(s.Items, items...) }

func (s *System) Name() string { return "debugui" }

// Update refreshes the input state and queues the render functions.
func (s *System) Update(frame *updater.Frame) (updater.Lifecycle, error) {
	io := imgui.CurrentIO()
	s.Input.WantCaptureMouse = io.WantCaptureMouse()
	s.Input.WantCaptureKeyboard = io.WantCaptureKeyboard()

	if s.Hidden {
		return updater.Lifecycle{}, nil
	}
	for _, item := range s.Items {
		frame.Commands.Defer(item.Render)
	}
	return updater.Lifecycle{}, nil
}
