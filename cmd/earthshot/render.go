package main

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/plus3/earthshot/entity"
	"github.com/plus3/earthshot/game"
)

// focal is the projection's focal length in screen heights.
const focal = 1.2

var kindColors = map[entity.Kind]color.RGBA{
	entity.KindEnemy:      {255, 120, 120, 255},
	entity.KindMine:       {169, 169, 169, 255},
	entity.KindCloud:      {179, 229, 252, 255},
	entity.KindLab:        {217, 186, 255, 255},
	entity.KindProjectile: {255, 255, 186, 255},
	entity.KindAxe:        {255, 223, 186, 255},
}

// view is a pinhole camera looking down its local -Z.
type view struct {
	position mgl64.Vec3
	inverse  mgl64.Quat
	width    float64
	height   float64
}

func newView(position mgl64.Vec3, rotation mgl64.Quat, width, height int) view {
	return view{
		position: position,
		inverse:  rotation.Inverse(),
		width:    float64(width),
		height:   float64(height),
	}
}

// project maps a world point and radius to screen space. ok is false for
// points behind the camera.
func (v view) project(p mgl64.Vec3, radius float64) (x, y, r float32, depth float64, ok bool) {
	local := v.inverse.Rotate(p.Sub(v.position))
	depth = -local.Z()
	if depth <= 1e-3 {
		return 0, 0, 0, 0, false
	}
	f := focal * v.height / depth
	x = float32(v.width/2 + local.X()*f)
	y = float32(v.height/2 - local.Y()*f)
	r = float32(math.Max(1, radius*f))
	return x, y, r, depth, true
}

type sprite struct {
	e     entity.Entity
	x, y  float32
	r     float32
	depth float64
}

// sprites projects every registered entity, farthest first.
func sprites(s *game.Session, v view) []sprite {
	var out []sprite
	for _, e := range s.Registry().Candidates() {
		box, ok := e.Bounds()
		if !ok {
			continue
		}
		radius := box.Max.Sub(box.Min).Len() / 2
		x, y, r, depth, ok := v.project(e.Position(), radius)
		if !ok {
			continue
		}
		out = append(out, sprite{e: e, x: x, y: y, r: r, depth: depth})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].depth > out[j].depth })
	return out
}

// pick returns the nearest clickable lab under the cursor.
func pick(list []sprite, mx, my float32) (*entity.Lab, bool) {
	for i := len(list) - 1; i >= 0; i-- {
		sp := list[i]
		lab, ok := sp.e.(*entity.Lab)
		if !ok {
			continue
		}
		dx, dy := mx-sp.x, my-sp.y
		if dx*dx+dy*dy <= sp.r*sp.r {
			return lab, true
		}
	}
	return nil, false
}

func drawScene(screen *ebiten.Image, s *game.Session, list []sprite) {
	screen.Fill(color.RGBA{20, 24, 40, 255})

	for _, sp := range list {
		c := kindColors[sp.e.Kind()]
		vector.DrawFilledCircle(screen, sp.x, sp.y, sp.r, c, false)

		if enemy, ok := sp.e.(*entity.Enemy); ok {
			const barHeight = 4
			barWidth := sp.r * 2
			healthPct := float32(enemy.HealthBar.Fraction())
			vector.DrawFilledRect(screen, sp.x-barWidth/2, sp.y-sp.r-barHeight-5, barWidth, barHeight, color.RGBA{100, 100, 100, 255}, false)
			vector.DrawFilledRect(screen, sp.x-barWidth/2, sp.y-sp.r-barHeight-5, barWidth*healthPct, barHeight, color.RGBA{100, 200, 100, 255}, false)
		}
	}

	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	vector.StrokeLine(screen, float32(w)/2-6, float32(h)/2, float32(w)/2+6, float32(h)/2, 1, color.White, false)
	vector.StrokeLine(screen, float32(w)/2, float32(h)/2-6, float32(w)/2, float32(h)/2+6, 1, color.White, false)

	ebitenutil.DebugPrint(screen, hud(s))
}

func hud(s *game.Session) string {
	st := s.Store()
	line := fmt.Sprintf("HP %.0f/%.0f  score %d  t %.1fs\n", st.Health(), st.MaxHealth(), st.Score(), s.Clock().Elapsed())
	if c, ok := s.Armory().Selected(); ok {
		line += fmt.Sprintf("compound %s (%s)  cooldown %.2f\n", c.Formula, c.Name, s.Armory().Cooldown())
	}
	counters := st.Counters()
	for _, sym := range counters.Symbols() {
		line += fmt.Sprintf("%s:%d ", sym, counters.Get(sym))
	}
	for _, kind := range st.ActivePowerUps() {
		line += fmt.Sprintf("\n%s %.1fs", kind, st.PowerUp(kind))
	}
	if s.Over() {
		line += "\nGAME OVER"
	}
	return line
}
