package game_test

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/plus3/earthshot/config"
	"github.com/plus3/earthshot/effect"
	"github.com/plus3/earthshot/entity"
	"github.com/plus3/earthshot/event"
	"github.com/plus3/earthshot/game"
	"github.com/plus3/earthshot/input"
	"github.com/plus3/earthshot/log"
	"github.com/plus3/earthshot/scene"
	"github.com/plus3/earthshot/updater"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func quiet() config.Config {
	cfg := config.Default()
	cfg.Spawn.Probability = 0
	return cfg
}

func newSession(t *testing.T, cfg config.Config, opts ...game.Option) *game.Session {
	t.Helper()
	s, err := game.NewSession(cfg, opts...)
	require.NoError(t, err)
	s.Start()
	t.Cleanup(s.Close)
	return s
}

func TestNewSessionRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.World.Radius = 0
	_, err := game.NewSession(cfg)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestStart(t *testing.T) {
	s := newSession(t, quiet())
	s.Start()
	assert.Equal(t, []string{"input", "movement", "sphere", "enemies", "spawner"}, s.Queue().Names())
	assert.Equal(t, 10, s.Store().Counters().Get("H"), "starting elements")
}

func TestUpdateClampsDelta(t *testing.T) {
	s := newSession(t, quiet())
	require.NoError(t, s.Update(1))
	assert.Equal(t, s.Config().MaxDelta, s.Clock().Elapsed())
	assert.Equal(t, s.Clock().Elapsed(), s.Queue().Elapsed())
}

// A mine spawned at six seconds in lane 0 and shot at 6.1s is hit once,
// pays out and leaves the registry.
func TestShootMine(t *testing.T) {
	cfg := config.Default()
	cfg.World.RotationPeriod = 600
	cfg.Spawn.Lanes = []float64{0}
	cfg.Spawn.Probability = 1
	cfg.Spawn.Horizon = 0.2
	cfg.Spawn.Table = []config.SpawnEntry{{Kind: "mine", Weight: 1, Element: "Fe", Amount: 2}}
	s := newSession(t, cfg)

	events := &event.Recorder{}
	events.Record(s.Events(), event.Spawned, event.Collected, event.Despawned)

	const dt = 0.05
	for i := 0; s.Registry().Len() == 0; i++ {
		require.Less(t, i, 200, "nothing spawned")
		require.NoError(t, s.Update(dt))
	}
	assert.GreaterOrEqual(t, s.Clock().Elapsed(), 6.0)
	assert.LessOrEqual(t, s.Clock().Elapsed(), 6.15)

	for s.Clock().Elapsed() < 6.1-1e-9 {
		require.NoError(t, s.Update(dt))
	}
	mine, ok := s.Registry().Candidates()[0].(*entity.Mine)
	require.True(t, ok)
	require.Equal(t, entity.Ready, mine.Phase())

	firedAt := s.Clock().Elapsed()
	_, err := s.Armory().FireAt(mine.Position())
	require.NoError(t, err)
	assert.Equal(t, 8, s.Store().Counters().Get("H"))

	for i := 0; i < 10 && mine.Hits() == 0; i++ {
		require.NoError(t, s.Update(dt))
	}
	require.Equal(t, 1, mine.Hits())
	assert.LessOrEqual(t, s.Clock().Elapsed()-firedAt, 0.5+1e-9)
	assert.Equal(t, 2, s.Store().Counters().Get("Fe"))

	require.NoError(t, s.Update(dt))
	assert.False(t, s.Registry().Has(mine.ID()))
	assert.Equal(t, 1, mine.Hits())
	assert.Equal(t, entity.Disposed, mine.Phase())

	collected := events.Of(event.Collected)
	require.Len(t, collected, 1)
	assert.Equal(t, "Fe", collected[0].Name)
	assert.Equal(t, 2, collected[0].Amount)
	assert.Len(t, events.Of(event.Spawned), 1)
	assert.Len(t, events.Of(event.Despawned), 1)
}

func TestEnemyContact(t *testing.T) {
	s := newSession(t, quiet())
	events := &event.Recorder{}
	events.Record(s.Events(), event.PlayerDamaged)

	touch := func() entity.Entity {
		e, err := s.Spawn(entity.KindEnemy, entity.SpawnParams{
			Position: mgl64.Vec3{0, 51, -1.5},
			HalfSize: 1,
			Health:   30,
			Damage:   10,
		})
		require.NoError(t, err)
		require.NoError(t, s.Update(0.05))
		require.NoError(t, s.Update(0.05))
		return e
	}

	enemy := touch()
	assert.Equal(t, 90.0, s.Store().Health())
	assert.False(t, s.Registry().Has(enemy.ID()), "contact despawns the enemy")

	s.Store().SetPowerUp(effect.Invincible, 10)
	enemy = touch()
	assert.Equal(t, 90.0, s.Store().Health(), "invincible")
	assert.False(t, s.Registry().Has(enemy.ID()))

	damaged := events.Of(event.PlayerDamaged)
	require.Len(t, damaged, 2)
	assert.Equal(t, 10, damaged[0].Amount)
	assert.Equal(t, 0, damaged[1].Amount)
	assert.False(t, s.Over())
}

func TestEnemyWalksToPlayer(t *testing.T) {
	s := newSession(t, quiet())
	e, err := s.Spawn(entity.KindEnemy, entity.SpawnParams{
		Space:    entity.SpaceSphere,
		Position: mgl64.Vec3{0, 51, -20},
		HalfSize: 1,
		Health:   30,
		Speed:    0.1,
	})
	require.NoError(t, err)
	require.NoError(t, s.Update(0.05))

	start := e.Position().Sub(s.Scene().Player.WorldPosition()).Len()
	for i := 0; i < 10; i++ {
		require.NoError(t, s.Update(0.05))
	}
	assert.Less(t, e.Position().Sub(s.Scene().Player.WorldPosition()).Len(), start)

	enemy := e.(*entity.Enemy)
	s.Effects().Apply(effect.Stun, enemy, 5)
	local := s.Scene().Sphere.WorldToLocal(e.Position())
	require.NoError(t, s.Update(0.05))

	// a stunned enemy only turns with the sphere
	want := s.Scene().Sphere.LocalToWorld(local)
	assert.InDelta(t, 0, want.Sub(e.Position()).Len(), 1e-9)
	assert.True(t, enemy.Stunned())
}

func TestInputDrivesWeapons(t *testing.T) {
	script := input.NewScripted(input.State{Fire: true}, input.State{Craft: "FeS"}, input.State{Swing: true})
	script.Repeat(input.State{Forward: true}, 30)
	s := newSession(t, quiet(), game.WithInput(script))
	s.Store().Counters().Add("Fe", 3, 0)
	s.Store().Counters().Add("S", 2, 0)

	events := &event.Recorder{}
	events.Record(s.Events(), event.Fired, event.Crafted)

	for i := 0; i < 33; i++ {
		require.NoError(t, s.Update(0.05))
	}

	assert.Equal(t, 1, s.Armory().Fired())
	assert.Equal(t, 8, s.Store().Counters().Get("H"))
	assert.True(t, s.Armory().Unlocked("FeS"))
	assert.Equal(t, 1, s.Axe().Swings())
	assert.Len(t, events.Of(event.Fired), 1)
	assert.Len(t, events.Of(event.Crafted), 1)
	assert.Less(t, s.Scene().Camera.WorldPosition().Z(), -1.0, "walked forward")
}

func TestLabClickCrafts(t *testing.T) {
	s := newSession(t, quiet())
	s.Store().Counters().Add("Fe", 3, 0)
	s.Store().Counters().Add("S", 2, 0)

	e, err := s.Spawn(entity.KindLab, entity.SpawnParams{
		Space:    entity.SpaceSphere,
		Position: mgl64.Vec3{0, 51, -10},
		HalfSize: 1,
		Compound: "FeS",
	})
	require.NoError(t, err)
	require.NoError(t, s.Update(0.05))

	lab := e.(*entity.Lab)
	require.True(t, lab.Handle.(*scene.Node).Click())
	assert.True(t, s.Armory().Unlocked("FeS"))
	assert.Equal(t, 0, s.Store().Counters().Get("Fe"))
}

func TestPowerUp(t *testing.T) {
	s := newSession(t, quiet())
	s.PowerUp(effect.RapidFire)
	assert.Equal(t, 10.0, s.Store().PowerUp(effect.RapidFire))

	for i := 0; i < 220; i++ {
		require.NoError(t, s.Update(0.05))
	}
	assert.Zero(t, s.Store().PowerUp(effect.RapidFire))
	assert.Zero(t, s.Effects().Live(effect.RapidFire))
}

func TestTaskFailure(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	s := newSession(t, quiet(), game.WithLogger(log.FromZap(zap.New(core))))
	events := &event.Recorder{}
	events.Record(s.Events(), event.TaskFailed)

	s.Queue().Schedule(updater.NewFunc("broken", func(*updater.Frame) (updater.Lifecycle, error) {
		return updater.Lifecycle{}, errors.New("boom")
	}))

	err := s.Update(0.05)
	require.Error(t, err)
	failures := updater.StepErrors(err)
	require.Len(t, failures, 1)
	assert.Equal(t, "broken", failures[0].Task)

	failed := events.Of(event.TaskFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, "broken", failed[0].Name)
	assert.Equal(t, 1, logs.FilterMessage("task failed").Len())

	require.NoError(t, s.Update(0.05))
	assert.Equal(t, []string{"input", "movement", "sphere", "enemies", "spawner"}, s.Queue().Names())
}

func TestClose(t *testing.T) {
	s, err := game.NewSession(quiet())
	require.NoError(t, err)
	s.Start()
	mine, err := s.Spawn(entity.KindMine, entity.SpawnParams{HalfSize: 1, Element: "Fe", Amount: 1})
	require.NoError(t, err)
	shot, err := s.Armory().Fire()
	require.NoError(t, err)
	swing, err := s.Axe().Swing()
	require.NoError(t, err)
	require.NoError(t, s.Update(0.05))
	require.Equal(t, 1, s.Registry().Len())
	require.Equal(t, entity.Ready, mine.Phase())
	require.NotZero(t, s.Scene().Count())

	s.Close()
	assert.Equal(t, 0, s.Queue().Len())
	assert.Equal(t, 0, s.Registry().Len())
	assert.Equal(t, entity.Disposed, mine.Phase())
	assert.Equal(t, entity.Disposed, shot.Phase())
	assert.Equal(t, entity.Disposed, swing.State.Axe.Phase())
	assert.False(t, s.Axe().Swinging())
	assert.Equal(t, 0, s.Scene().Count(), "nothing is left attached to the scene")
}
