// Command earthshot runs a session in an Ebiten window.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/plus3/earthshot/clock"
	"github.com/plus3/earthshot/config"
	"github.com/plus3/earthshot/debugui"
	debugui_ebiten "github.com/plus3/earthshot/debugui/ebiten"
	"github.com/plus3/earthshot/game"
	"github.com/plus3/earthshot/log"
	"github.com/plus3/earthshot/updater"
)

const (
	ScreenWidth  = 1280
	ScreenHeight = 720
	TickRate     = 60
)

type Game struct {
	session *game.Session
	logger  *log.Logger

	// backend and ui are nil unless the debug overlay is on.
	backend *debugui_ebiten.ImguiBackend
	ui      *debugui.System

	wall    *clock.Wall
	stepper *clock.Stepper

	width, height int
}

func (g *Game) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if g.ui != nil && inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.ui.Hidden = !g.ui.Hidden
	}

	if g.session.Over() {
		return nil
	}
	g.click()

	// debug windows are queued by a task, so the overlay needs exactly one
	// tick per ImGui frame
	if g.backend != nil {
		return g.backend.Frame(func() error {
			return g.step(g.wall.Lap())
		})
	}
	for range g.stepper.Steps(g.wall.Lap()) {
		if err := g.step(g.stepper.Step); err != nil {
			return err
		}
	}
	return nil
}

// step advances the session once. Failed tasks are already logged and
// dropped by the queue, so they do not stop the game.
func (g *Game) step(dt float64) error {
	err := g.session.Update(dt)
	if err != nil && len(updater.StepErrors(err)) == 0 {
		return err
	}
	return nil
}

func (g *Game) click() {
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	if g.ui != nil && g.ui.Input.WantCaptureMouse {
		return
	}
	mx, my := ebiten.CursorPosition()
	if lab, ok := pick(sprites(g.session, g.view()), float32(mx), float32(my)); ok {
		lab.Click()
	}
}

func (g *Game) view() view {
	cam := g.session.Scene().Camera
	return newView(cam.WorldPosition(), cam.WorldRotation(), g.width, g.height)
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.width, g.height = screen.Bounds().Dx(), screen.Bounds().Dy()
	drawScene(screen, g.session, sprites(g.session, g.view()))

	if g.backend != nil {
		g.backend.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.backend != nil {
		g.backend.Layout(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

func main() {
	configPath := flag.String("config", "", "YAML config file; defaults are used when empty.")
	debug := flag.Bool("debug", false, "Show the ImGui debug windows (F1 toggles).")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			os.Exit(1)
		}
	}

	logger := log.New(log.ParseLevel(cfg.LogLevel))
	defer logger.Sync()

	g := &Game{
		logger:  logger,
		width:   ScreenWidth,
		height:  ScreenHeight,
		stepper: &clock.Stepper{Step: 1.0 / TickRate, MaxFrame: cfg.MaxDelta * 4},
	}
	kb := &keyboard{}
	for _, c := range cfg.Weapon.Compounds {
		kb.formulas = append(kb.formulas, c.Formula)
	}

	if *debug {
		g.backend = debugui_ebiten.New("Earthshot", ScreenWidth, ScreenHeight)
	} else {
		ebiten.SetWindowSize(ScreenWidth, ScreenHeight)
		ebiten.SetWindowTitle("Earthshot")
	}
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(TickRate)

	session, err := game.NewSession(cfg, game.WithLogger(logger), game.WithInput(kb))
	if err != nil {
		logger.Error("invalid config", log.Err(err))
		os.Exit(1)
	}
	g.session = session
	session.Start()
	g.wall = clock.NewWall(nil)
	defer session.Close()

	if g.backend != nil {
		g.ui = debugui.Install(session, clock.NewWall(nil))
		kb.ui = g.ui
	}

	if err := ebiten.RunGame(g); err != nil {
		logger.Error("game stopped", log.Err(err))
	}
}
