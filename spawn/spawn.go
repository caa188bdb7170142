// Package spawn populates the sphere. The Spawner runs every frame but only
// fires one burst per cadence bucket; every spawned entity gets a load task
// and an expiry task that removes it after one sphere rotation.
package spawn

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/plus3/earthshot/collision"
	"github.com/plus3/earthshot/entity"
	"github.com/plus3/earthshot/event"
	"github.com/plus3/earthshot/geom"
	"github.com/plus3/earthshot/log"
	"github.com/plus3/earthshot/updater"
)

// ErrDegeneratePlacement is reported when a lane yields no usable position.
var ErrDegeneratePlacement = errors.New("degenerate spawn placement")

// Entry is one row of the spawn table.
type Entry struct {
	Kind   entity.Kind
	Weight int
	Params entity.SpawnParams
}

type Config struct {
	// Interval is the bucket width in whole seconds.
	Interval    int
	Probability float64
	// Lanes are lateral angle offsets in radians, one Bernoulli trial each.
	Lanes []float64
	// Horizon is the angular distance ahead of the player at which entities
	// appear, and Altitude their height above the surface.
	Horizon        float64
	Altitude       float64
	Radius         float64
	RotationPeriod float64
	Table          []Entry
}

// Frame converts world positions into the sphere's local frame.
type Frame interface {
	WorldToLocal(p mgl64.Vec3) mgl64.Vec3
}

type Deps struct {
	Factory  entity.Factory
	Registry *collision.Registry[entity.ID, entity.Entity]
	Sphere   Frame
	Rand     *rand.Rand
	Dispatch func(event.Event)
	Logger   *log.Logger
}

type Spawner struct {
	cfg  Config
	deps Deps

	totalWeight int
	lastBucket  int

	evaluations int
	spawned     int
	skipped     int
}

func New(cfg Config, deps Deps) *Spawner {
	if deps.Logger == nil {
		deps.Logger = log.NewNop()
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewPCG(1, 2))
	}
	if deps.Dispatch == nil {
		deps.Dispatch = func(event.Event) {}
	}
	deps.Logger = deps.Logger.Named("spawn")

	total := 0
	for _, e := range cfg.Table {
		total += max(0, e.Weight)
	}
	return &Spawner{cfg: cfg, deps: deps, totalWeight: total}
}

func (s *Spawner) Name() string { return "spawner" }

// Update fires a burst on the first frame of every Interval-second bucket
// after the first.
func (s *Spawner) Update(frame *updater.Frame) (updater.Lifecycle, error) {
	if s.cfg.Interval <= 0 {
		return updater.Lifecycle{}, nil
	}

	second := int(math.Floor(frame.Elapsed))
	if second%s.cfg.Interval != 0 {
		return updater.Lifecycle{}, nil
	}
	bucket := second / s.cfg.Interval
	if bucket <= 0 || bucket == s.lastBucket {
		return updater.Lifecycle{}, nil
	}
	s.lastBucket = bucket
	s.burst(frame)
	return updater.Lifecycle{}, nil
}

// Evaluations is the number of bursts run so far.
func (s *Spawner) Evaluations() int { return s.evaluations }
func (s *Spawner) Spawned() int     { return s.spawned }
func (s *Spawner) Skipped() int     { return s.skipped }

func (s *Spawner) burst(frame *updater.Frame) {
	s.evaluations++

	for lane, offset := range s.cfg.Lanes {
		if s.deps.Rand.Float64() >= s.cfg.Probability {
			continue
		}
		entry, ok := s.choose()
		if !ok {
			continue
		}

		if err := s.spawn(frame, entry, offset); err != nil {
			s.skipped++
			level := s.deps.Logger.Error
			if errors.Is(err, ErrDegeneratePlacement) {
				level = s.deps.Logger.Warn
			}
			level("spawn skipped",
				log.Int("lane", lane),
				log.String("kind", string(entry.Kind)),
				log.Err(err),
			)
		}
	}
}

// choose picks a table entry with probability proportional to its weight.
func (s *Spawner) choose() (Entry, bool) {
	if s.totalWeight <= 0 {
		return Entry{}, false
	}
	r := s.deps.Rand.IntN(s.totalWeight)
	for _, e := range s.cfg.Table {
		if e.Weight <= 0 {
			continue
		}
		if r < e.Weight {
			return e, true
		}
		r -= e.Weight
	}
	return Entry{}, false
}

// Placement is the world position for a lane, or ErrDegeneratePlacement.
func (s *Spawner) Placement(lane float64) (mgl64.Vec3, error) {
	p := geom.SurfacePoint(s.cfg.Radius+s.cfg.Altitude, s.cfg.Horizon, lane)
	if geom.Degenerate(p) {
		return mgl64.Vec3{}, fmt.Errorf("%w: lane %v", ErrDegeneratePlacement, lane)
	}
	return p, nil
}

// Params places entry in lane, in the sphere's frame.
func (s *Spawner) Params(entry Entry, lane float64) (entity.SpawnParams, error) {
	world, err := s.Placement(lane)
	if err != nil {
		return entity.SpawnParams{}, err
	}

	params := entry.Params
	params.Space = entity.SpaceSphere
	params.Position = world
	if s.deps.Sphere != nil {
		params.Position = s.deps.Sphere.WorldToLocal(world)
	}
	return params, nil
}

// Table is the spawn table in configuration order.
func (s *Spawner) Table() []Entry { return s.cfg.Table }

func (s *Spawner) spawn(frame *updater.Frame, entry Entry, lane float64) error {
	params, err := s.Params(entry, lane)
	if err != nil {
		return err
	}

	e, err := s.Spawn(frame.Commands, frame.Elapsed, entry.Kind, params)
	if err != nil {
		return err
	}
	s.deps.Logger.Debug("spawned",
		log.Uint64("id", uint64(e.ID())),
		log.String("kind", string(entry.Kind)),
		log.Float64("lane", lane),
	)
	return nil
}

// Scheduler queues the tasks of a spawned entity.
type Scheduler interface {
	Schedule(u updater.Updater)
}

// Spawn builds kind from p and queues its load and expiry tasks on sched.
// The entity joins the registry once loaded. now stamps the Spawned event.
func (s *Spawner) Spawn(sched Scheduler, now float64, kind entity.Kind, p entity.SpawnParams) (entity.Entity, error) {
	e, asset, err := s.deps.Factory.New(kind, p)
	if err != nil {
		return nil, err
	}
	s.spawned++

	sched.Schedule(entity.Load(e, asset, func(ready entity.Entity) {
		s.deps.Registry.Add(ready)
		s.deps.Dispatch(event.Event{
			Type:   event.Spawned,
			Time:   now,
			Entity: uint64(ready.ID()),
			Kind:   string(ready.Kind()),
		})
	}))
	sched.Schedule(Expire(e, s.cfg.RotationPeriod, s.deps.Registry, s.deps.Dispatch))
	return e, nil
}

// Lifetime is the state of an expiry task.
type Lifetime struct {
	updater.Lifecycle
	Entity entity.Entity
	Age    float64
	Limit  float64
}

func (l Lifetime) Owned() []updater.Disposable { return []updater.Disposable{l.Entity} }

// Expire returns a task that disposes e after limit seconds, or as soon as
// it is marked for deletion, removing it from registry first.
func Expire(e entity.Entity, limit float64, registry *collision.Registry[entity.ID, entity.Entity], dispatch func(event.Event)) updater.Updater {
	return updater.New("spawn.expire", Lifetime{Entity: e, Limit: limit},
		func(s Lifetime, frame *updater.Frame) (Lifetime, error) {
			s.Age += frame.DeltaTime
			if s.Age < s.Limit && !s.Entity.ShouldDelete() {
				return s, nil
			}

			registry.Remove(s.Entity.ID())
			if dispatch != nil {
				dispatch(event.Event{
					Type:   event.Despawned,
					Time:   frame.Elapsed,
					Entity: uint64(s.Entity.ID()),
					Kind:   string(s.Entity.Kind()),
				})
			}
			s.Finished = true
			s.ToDelete = []updater.Disposable{s.Entity}
			return s, nil
		})
}
