package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/plus3/earthshot/debugui"
	"github.com/plus3/earthshot/input"
)

// keyboard polls Ebiten for WASD movement, arrow-key look, space to fire,
// E to swing, Q to cycle and the number keys to craft.
type keyboard struct {
	// ui, when set, swallows keys while an ImGui widget has focus.
	ui       *debugui.System
	formulas []string
}

var craftKeys = []ebiten.Key{ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5}

func (k *keyboard) Poll() input.State {
	if k.ui != nil && k.ui.Input.WantCaptureKeyboard {
		return input.State{}
	}

	st := input.State{
		Forward: ebiten.IsKeyPressed(ebiten.KeyW),
		Back:    ebiten.IsKeyPressed(ebiten.KeyS),
		Left:    ebiten.IsKeyPressed(ebiten.KeyA),
		Right:   ebiten.IsKeyPressed(ebiten.KeyD),
		Fire:    ebiten.IsKeyPressed(ebiten.KeySpace),
		Swing:   inpututil.IsKeyJustPressed(ebiten.KeyE),
		Cycle:   inpututil.IsKeyJustPressed(ebiten.KeyQ),
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		st.LookX--
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		st.LookX++
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		st.LookY++
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		st.LookY--
	}

	for i, key := range craftKeys {
		if i < len(k.formulas) && inpututil.IsKeyJustPressed(key) {
			st.Craft = k.formulas[i]
			break
		}
	}
	return st
}

var _ input.Provider = (*keyboard)(nil)
