package ballistics_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/plus3/earthshot/ballistics"
	"github.com/plus3/earthshot/collision"
	"github.com/plus3/earthshot/effect"
	"github.com/plus3/earthshot/entity"
	"github.com/plus3/earthshot/event"
	"github.com/plus3/earthshot/scene"
	"github.com/plus3/earthshot/store"
	"github.com/plus3/earthshot/updater"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type world struct {
	collected map[string]int
}

func (w *world) Now() float64              { return 0 }
func (w *world) Collect(sym string, n int) { w.collected[sym] += n }
func (w *world) AddScore(int)              {}
func (w *world) PowerUp(string)            {}
func (w *world) Dispatch(event.Event)      {}

type fixture struct {
	queue    *updater.Queue
	root     *scene.Node
	registry *collision.Registry[entity.ID, entity.Entity]
	store    *store.Memory
	world    *world
	ball     *ballistics.Ballistics
	nextID   entity.ID
}

func newFixture(cfg ballistics.Config) *fixture {
	f := &fixture{
		queue:    updater.NewQueue(nil),
		root:     scene.NewNode("root"),
		registry: collision.NewRegistry[entity.ID, entity.Entity](),
		store:    store.NewMemory(100),
		world:    &world{collected: map[string]int{}},
	}
	f.ball = ballistics.New(cfg, ballistics.Deps{
		Targets:  f.registry.Candidates,
		Effects:  effect.NewEngine(f.queue, effect.ModeStack, nil),
		PowerUps: f.store,
	})
	return f
}

func (f *fixture) place(e entity.Entity, pos mgl64.Vec3, half float64) *scene.Node {
	node := scene.NewMesh(string(e.Kind()), half)
	node.SetLocalPosition(pos)
	f.root.Add(node)
	e.Attach(node)
	return node
}

func (f *fixture) projectile(origin mgl64.Vec3) (*entity.Projectile, *scene.Node) {
	f.nextID++
	p := entity.NewProjectile(f.nextID, "H2O", 10)
	return p, f.place(p, origin, 0.2)
}

func (f *fixture) run(t *testing.T, task *updater.Task[ballistics.Flight], dt float64, maxTicks int) {
	t.Helper()
	for i := 0; i < maxTicks && !task.State.Finished; i++ {
		require.NoError(t, f.queue.Tick(dt))
	}
	require.True(t, task.State.Finished, "projectile still flying")
}

var base = ballistics.Config{
	Speed:        40,
	Acceleration: 0.5,
	MaxFlight:    2,
	Radius:       10,
	StunDuration: 3,
	BurnPulses:   3,
	BurnDamage:   5,
}

func TestFlightCap(t *testing.T) {
	f := newFixture(base)
	p, node := f.projectile(mgl64.Vec3{0, 12, 0})

	task := f.ball.Launch(p, mgl64.Vec3{0, 12, 0}, mgl64.Vec3{0, 0, -1}, f.queue.Elapsed(), "")
	f.queue.Schedule(task)
	f.run(t, task, 0.1, 100)

	assert.LessOrEqual(t, task.State.TotalTime, 2.0)
	assert.Greater(t, task.State.TotalTime, 1.8)
	assert.Equal(t, []updater.Disposable{p}, task.State.ToDelete)
	assert.Equal(t, entity.Disposed, p.Phase())
	assert.Equal(t, 1, node.Disposes())
	assert.Equal(t, 0, f.queue.Len())
}

func TestClosedFormPath(t *testing.T) {
	cfg := base
	cfg.Gravity = 4
	f := newFixture(cfg)
	origin := mgl64.Vec3{0, 12, 0}
	p, _ := f.projectile(origin)

	task := f.ball.Launch(p, origin, mgl64.Vec3{0, 0, -2}, 0, "")
	f.queue.Schedule(task)
	require.NoError(t, f.queue.Tick(0.25))
	require.NoError(t, f.queue.Tick(0.25))

	// t=0.5: forward 40*(0.5+0.5*0.25/2)=22.5, fall 4*0.25/2=0.5
	want := mgl64.Vec3{0, 11.5, -22.5}
	assert.True(t, want.ApproxEqualThreshold(p.Position(), 1e-9), "got %v", p.Position())
	assert.Equal(t, want, f.ball.Position(origin, mgl64.Vec3{0, 0, -1}, mgl64.Vec3{0, 1, 0}, 0.5))
}

func TestLandsBelowSurface(t *testing.T) {
	f := newFixture(base)
	p, _ := f.projectile(mgl64.Vec3{0, 12, 0})

	task := f.ball.Launch(p, mgl64.Vec3{0, 12, 0}, mgl64.Vec3{0, -1, 0}, 0, "")
	f.queue.Schedule(task)
	f.run(t, task, 0.1, 5)

	assert.InDelta(t, 0.1, task.State.TotalTime, 1e-9)
	assert.Empty(t, task.State.Hits)
}

func TestHitsMine(t *testing.T) {
	f := newFixture(base)
	mine := entity.NewMine(100, f.world, "Fe", 2)
	f.place(mine, mgl64.Vec3{0, 12, -10}, 1)
	f.registry.Add(mine)

	p, _ := f.projectile(mgl64.Vec3{0, 12, 0})
	task := f.ball.Launch(p, mgl64.Vec3{0, 12, 0}, mgl64.Vec3{0, 0, -1}, 0, "")
	f.queue.Schedule(task)

	// 0.1s frames move the projectile ~4 units; at t=0.3 it is already past
	// the mine and only the swept box sees it.
	f.run(t, task, 0.1, 10)

	assert.InDelta(t, 0.3, task.State.TotalTime, 1e-9)
	assert.Equal(t, []entity.ID{100}, task.State.Hits)
	assert.Equal(t, 1, mine.Hits())
	assert.Equal(t, 2, f.world.collected["Fe"])
	assert.True(t, mine.ShouldDelete())
	assert.Equal(t, entity.Disposed, p.Phase())
}

func TestSkipsDeletedAndLoadingTargets(t *testing.T) {
	f := newFixture(base)

	gone := entity.NewMine(100, f.world, "Fe", 2)
	f.place(gone, mgl64.Vec3{0, 12, -5}, 1)
	gone.MarkForDeletion()
	f.registry.Add(gone)

	loading := entity.NewMine(101, f.world, "S", 1)
	f.registry.Add(loading)

	p, _ := f.projectile(mgl64.Vec3{0, 12, 0})
	task := f.ball.Launch(p, mgl64.Vec3{0, 12, 0}, mgl64.Vec3{0, 0, -1}, 0, "")
	f.queue.Schedule(task)
	f.run(t, task, 0.05, 100)

	assert.Empty(t, task.State.Hits)
	assert.Equal(t, 0, gone.Hits())
	assert.Empty(t, f.world.collected)
}

func TestPassesThroughLabs(t *testing.T) {
	f := newFixture(base)

	lab := entity.NewLab(100, "FeS")
	f.place(lab, mgl64.Vec3{0, 12, -5}, 1)
	f.registry.Add(lab)

	mine := entity.NewMine(101, f.world, "S", 1)
	f.place(mine, mgl64.Vec3{0, 12, -10}, 1)
	f.registry.Add(mine)

	p, _ := f.projectile(mgl64.Vec3{0, 12, 0})
	task := f.ball.Launch(p, mgl64.Vec3{0, 12, 0}, mgl64.Vec3{0, 0, -1}, 0, "")
	f.queue.Schedule(task)
	f.run(t, task, 0.05, 100)

	assert.Equal(t, []entity.ID{101}, task.State.Hits, "labs are clicked, not shot")
	assert.Equal(t, 1, f.world.collected["S"])
	assert.Equal(t, entity.Ready, lab.Phase())
}

func TestShotPowerUps(t *testing.T) {
	f := newFixture(base)
	f.store.SetPowerUp(effect.StunShot, 10)
	f.store.SetPowerUp(effect.BurnShot, 10)

	enemy := entity.NewEnemy(100, f.world, 1000, 0, 0, 0)
	f.place(enemy, mgl64.Vec3{0, 12, -3}, 1)
	f.registry.Add(enemy)

	p, _ := f.projectile(mgl64.Vec3{0, 12, 0})
	task := f.ball.Launch(p, mgl64.Vec3{0, 12, 0}, mgl64.Vec3{0, 0, -1}, 0, "")
	f.queue.Schedule(task)
	f.run(t, task, 0.05, 20)

	require.Len(t, task.State.Hits, 1)
	assert.Equal(t, 990.0, enemy.HealthBar.Current)
	assert.True(t, enemy.Stunned())
	assert.Equal(t, 3.0, enemy.Remaining(effect.Burn))

	for i := 0; i < 80; i++ {
		require.NoError(t, f.queue.Tick(0.05))
	}
	assert.Equal(t, 975.0, enemy.HealthBar.Current, "three burn pulses of 5")
	assert.False(t, enemy.Stunned())
}

func TestCompoundEffect(t *testing.T) {
	f := newFixture(base)
	enemy := entity.NewEnemy(100, f.world, 1000, 0, 0, 0)
	f.place(enemy, mgl64.Vec3{0, 12, -3}, 1)
	f.registry.Add(enemy)

	p, _ := f.projectile(mgl64.Vec3{0, 12, 0})
	task := f.ball.Launch(p, mgl64.Vec3{0, 12, 0}, mgl64.Vec3{0, 0, -1}, 0, effect.Stun)
	f.queue.Schedule(task)
	f.run(t, task, 0.05, 20)

	assert.True(t, enemy.Stunned())
	assert.Equal(t, 0.0, enemy.Remaining(effect.Burn))
}
