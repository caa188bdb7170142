// Package ebiten provides the Dear ImGui backend for hosts running on the
// Ebiten game engine.
package ebiten

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
)

// ImguiBackend wraps the Ebiten-specific Dear ImGui backend.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend
}

// New creates the backend and its window. imgui.ini persistence is off.
func New(title string, width, height int) *ImguiBackend {
	b := ebitenbackend.NewEbitenBackend()
	b.CreateWindow(title, width, height)
	imgui.CurrentIO().SetIniFilename("")
	return &ImguiBackend{EbitenBackend: b}
}

// Frame runs update between BeginFrame and EndFrame, so that windows
// queued during the tick land in this ImGui frame.
func (b *ImguiBackend) Frame(update func() error) error {
	b.BeginFrame()
	defer b.EndFrame()
	return update()
}
