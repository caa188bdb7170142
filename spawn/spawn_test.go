package spawn_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/plus3/earthshot/collision"
	"github.com/plus3/earthshot/entity"
	"github.com/plus3/earthshot/event"
	"github.com/plus3/earthshot/geom"
	"github.com/plus3/earthshot/log"
	"github.com/plus3/earthshot/scene"
	"github.com/plus3/earthshot/spawn"
	"github.com/plus3/earthshot/updater"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type world struct{}

func (world) Now() float64         { return 0 }
func (world) Collect(string, int)  {}
func (world) AddScore(int)         {}
func (world) PowerUp(string)       {}
func (world) Dispatch(event.Event) {}

type fixture struct {
	queue    *updater.Queue
	scene    *scene.Scene
	registry *collision.Registry[entity.ID, entity.Entity]
	events   *event.Recorder
	spawner  *spawn.Spawner
}

func mineTable() []spawn.Entry {
	return []spawn.Entry{{
		Kind:   entity.KindMine,
		Weight: 1,
		Params: entity.SpawnParams{HalfSize: 1, Element: "Fe", Amount: 2},
	}}
}

func newFixture(cfg spawn.Config, logger *log.Logger) *fixture {
	d := event.NewDispatcher()
	f := &fixture{
		queue:    updater.NewQueue(nil),
		scene:    scene.New(cfg.Radius, 2, 1),
		registry: collision.NewRegistry[entity.ID, entity.Entity](),
		events:   &event.Recorder{},
	}
	f.events.Record(d, event.Spawned, event.Despawned)
	f.spawner = spawn.New(cfg, spawn.Deps{
		Factory:  scene.NewFactory(f.scene, world{}, 0),
		Registry: f.registry,
		Sphere:   f.scene.Sphere,
		Rand:     rand.New(rand.NewPCG(1, 2)),
		Dispatch: d.Dispatch,
		Logger:   logger,
	})
	f.queue.Schedule(f.spawner)
	return f
}

func baseConfig() spawn.Config {
	return spawn.Config{
		Interval:       6,
		Probability:    1,
		Lanes:          []float64{0},
		Horizon:        0.2,
		Altitude:       1,
		Radius:         50,
		RotationPeriod: 600,
		Table:          mineTable(),
	}
}

func TestCadence(t *testing.T) {
	for _, k := range []int{1, 3, 6} {
		cfg := baseConfig()
		cfg.Interval = k
		cfg.Probability = 0
		f := newFixture(cfg, nil)

		dt := float64(k) / 10
		var at []float64
		last := 0
		// 3.5 buckets: boundaries at K, 2K and 3K.
		for i := 0; i < 35; i++ {
			require.NoError(t, f.queue.Tick(dt))
			if f.spawner.Evaluations() != last {
				last = f.spawner.Evaluations()
				at = append(at, f.queue.Elapsed())
			}
		}

		require.Len(t, at, 3, "interval %d", k)
		for i, when := range at {
			boundary := float64((i + 1) * k)
			assert.GreaterOrEqual(t, when, boundary-1e-9)
			assert.Less(t, when, boundary+1)
		}
	}
}

func TestBurstSpawnsIntoSphereFrame(t *testing.T) {
	f := newFixture(baseConfig(), nil)
	f.scene.Sphere.RotateAround(geom.Right, 0.3)

	for f.queue.Elapsed() < 6 {
		require.NoError(t, f.queue.Tick(0.1))
	}
	// load task runs on the tick after the burst
	require.NoError(t, f.queue.Tick(0.1))

	require.Equal(t, 1, f.spawner.Spawned())
	require.Equal(t, 1, f.registry.Len())
	mine := f.registry.Candidates()[0]
	assert.Equal(t, entity.KindMine, mine.Kind())
	assert.Equal(t, entity.Ready, mine.Phase())

	want := geom.SurfacePoint(51, 0.2, 0)
	assert.True(t, want.ApproxEqualThreshold(mine.Position(), 1e-9), "spawned at %v", mine.Position())

	f.scene.Sphere.RotateAround(geom.Right, 0.1)
	assert.False(t, want.ApproxEqualThreshold(mine.Position(), 1e-3), "turns with the sphere")
	assert.InDelta(t, 51, mine.Position().Len(), 1e-9)

	spawned := f.events.Of(event.Spawned)
	require.Len(t, spawned, 1)
	assert.Equal(t, uint64(mine.ID()), spawned[0].Entity)
}

func TestExpiry(t *testing.T) {
	t.Run("after one rotation", func(t *testing.T) {
		cfg := baseConfig()
		cfg.RotationPeriod = 2
		cfg.Interval = 100
		f := newFixture(cfg, nil)

		e, asset, err := scene.NewFactory(f.scene, world{}, 0).New(entity.KindMine, entity.SpawnParams{HalfSize: 1})
		require.NoError(t, err)
		h, _, err := asset.Poll()
		require.NoError(t, err)
		e.Attach(h)
		f.registry.Add(e)
		f.queue.Schedule(spawn.Expire(e, 2, f.registry, nil))

		for i := 0; i < 15; i++ {
			require.NoError(t, f.queue.Tick(0.125))
		}
		assert.Equal(t, entity.Ready, e.Phase())
		require.NoError(t, f.queue.Tick(0.125))

		assert.Equal(t, entity.Disposed, e.Phase())
		assert.Equal(t, 0, f.registry.Len())
		assert.Equal(t, 0, f.scene.Count())
	})

	t.Run("as soon as marked for deletion", func(t *testing.T) {
		f := newFixture(baseConfig(), nil)
		for f.queue.Elapsed() < 6.1 {
			require.NoError(t, f.queue.Tick(0.1))
		}
		require.Equal(t, 1, f.registry.Len())
		mine := f.registry.Candidates()[0]

		mine.MarkForDeletion()
		require.NoError(t, f.queue.Tick(0.1))

		assert.Equal(t, 0, f.registry.Len())
		assert.Equal(t, entity.Disposed, mine.Phase())
		despawned := f.events.Of(event.Despawned)
		require.Len(t, despawned, 1)
		assert.Equal(t, uint64(mine.ID()), despawned[0].Entity)
	})
}

func TestDegeneratePlacement(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	cfg := baseConfig()
	cfg.Lanes = []float64{math.NaN(), 0}
	f := newFixture(cfg, log.FromZap(zap.New(core)))

	_, err := f.spawner.Placement(math.NaN())
	assert.ErrorIs(t, err, spawn.ErrDegeneratePlacement)

	for f.queue.Elapsed() < 6.2 {
		require.NoError(t, f.queue.Tick(0.1))
	}

	assert.Equal(t, 1, f.spawner.Skipped())
	assert.Equal(t, 1, f.spawner.Spawned(), "other lanes still spawn")
	assert.Equal(t, 1, logs.FilterMessage("spawn skipped").Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
}

func TestWeightedChoice(t *testing.T) {
	cfg := baseConfig()
	cfg.Interval = 1
	cfg.Lanes = []float64{-0.2, 0, 0.2}
	cfg.RotationPeriod = 0.5
	cfg.Table = []spawn.Entry{
		{Kind: entity.KindMine, Weight: 3, Params: entity.SpawnParams{HalfSize: 1}},
		{Kind: entity.KindCloud, Weight: 1, Params: entity.SpawnParams{HalfSize: 1, Charges: 1}},
		{Kind: entity.KindLab, Weight: 0, Params: entity.SpawnParams{HalfSize: 1}},
	}
	f := newFixture(cfg, nil)

	counts := map[entity.Kind]int{}
	for i := 0; i < 4000; i++ {
		require.NoError(t, f.queue.Tick(0.25))
	}
	for _, e := range f.events.Of(event.Spawned) {
		counts[entity.Kind(e.Kind)]++
	}

	total := counts[entity.KindMine] + counts[entity.KindCloud]
	require.Greater(t, total, 1000)
	assert.Zero(t, counts[entity.KindLab], "zero weight never spawns")
	assert.InDelta(t, 0.75, float64(counts[entity.KindMine])/float64(total), 0.05)
}

func TestPlacementGeometry(t *testing.T) {
	f := newFixture(baseConfig(), nil)
	p, err := f.spawner.Placement(0)
	require.NoError(t, err)
	assert.InDelta(t, 51, p.Len(), 1e-9)
	assert.Less(t, p.Z(), 0.0, "ahead of the player")
	assert.InDelta(t, 0, p.X(), 1e-9)

	side, err := f.spawner.Placement(0.25)
	require.NoError(t, err)
	assert.Greater(t, side.X(), 0.0)
}

func TestSpawnOnDemand(t *testing.T) {
	cfg := baseConfig()
	cfg.Interval = 100
	f := newFixture(cfg, nil)

	e, err := f.spawner.Spawn(f.queue, 0, entity.KindLab, entity.SpawnParams{Compound: "FeS", HalfSize: 1})
	require.NoError(t, err)
	assert.Equal(t, entity.Loading, e.Phase())
	assert.Equal(t, 0, f.registry.Len())

	require.NoError(t, f.queue.Tick(0.1))
	assert.Equal(t, entity.Ready, e.Phase())
	assert.True(t, f.registry.Has(e.ID()))
	assert.Len(t, f.events.Of(event.Spawned), 1)

	_, err = f.spawner.Spawn(f.queue, 0, "dragon", entity.SpawnParams{})
	assert.ErrorIs(t, err, entity.ErrUnknownKind)
	assert.Equal(t, 1, f.spawner.Spawned())

	require.Len(t, f.spawner.Table(), 1)
	p, err := f.spawner.Params(f.spawner.Table()[0], 0)
	require.NoError(t, err)
	assert.Equal(t, entity.SpaceSphere, p.Space)
	assert.Equal(t, "Fe", p.Element)
	assert.InDelta(t, 51, p.Position.Len(), 1e-9)
}
