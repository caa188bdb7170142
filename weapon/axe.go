package weapon

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/plus3/earthshot/collision"
	"github.com/plus3/earthshot/entity"
	"github.com/plus3/earthshot/log"
	"github.com/plus3/earthshot/updater"
)

var ErrSwinging = errors.New("axe already swinging")

type AxeConfig struct {
	SwingTime float64
	Damage    float64
	// Reach is how far ahead of the holder the blade sits.
	Reach    float64
	HalfSize float64
}

type AxeDeps struct {
	Factory  entity.Factory
	Queue    Scheduler
	Resolver *collision.Resolver[entity.Entity]
	Targets  func() []entity.Entity
	// Holder reports where the axe is held and the direction it points.
	Holder func() (origin, dir mgl64.Vec3)
	Logger *log.Logger
}

type Axe struct {
	cfg  AxeConfig
	deps AxeDeps

	// current is the blade of the swing in progress. Once it is disposed,
	// by the swing finishing or by its task being dropped, the axe is free.
	current *entity.Axe
	swings  int
}

func NewAxe(cfg AxeConfig, deps AxeDeps) *Axe {
	if deps.Logger == nil {
		deps.Logger = log.NewNop()
	}
	if deps.Resolver == nil {
		deps.Resolver = collision.NewResolver[entity.Entity](deps.Logger)
	}
	deps.Logger = deps.Logger.Named("axe")
	return &Axe{cfg: cfg, deps: deps}
}

func (x *Axe) Swinging() bool {
	return x.current != nil && x.current.Phase() != entity.Disposed
}
func (x *Axe) Swings() int    { return x.swings }

// Swing is the state of a melee task. Hits holds every enemy struck so far,
// each at most once.
type Swing struct {
	updater.Lifecycle
	Axe  *entity.Axe
	Age  float64
	Hits []entity.ID
}

func (s Swing) Owned() []updater.Disposable {
	if s.Axe == nil {
		return nil
	}
	return []updater.Disposable{s.Axe}
}

// Swing starts a swing lasting SwingTime. Only one swing runs at a time.
func (x *Axe) Swing() (*updater.Task[Swing], error) {
	if x.Swinging() {
		return nil, ErrSwinging
	}

	e, asset, err := x.deps.Factory.New(entity.KindAxe, entity.SpawnParams{
		Space:    entity.SpaceWorld,
		Position: x.blade(),
		HalfSize: x.cfg.HalfSize,
		Damage:   x.cfg.Damage,
	})
	if err != nil {
		return nil, fmt.Errorf("swing: %w", err)
	}
	axe, ok := e.(*entity.Axe)
	if !ok {
		return nil, fmt.Errorf("swing: factory built %s", e.Kind())
	}

	x.current = axe
	x.swings++
	task := updater.New("axe", Swing{Axe: axe}, x.step)
	x.deps.Queue.Schedule(entity.Load(axe, asset, nil))
	x.deps.Queue.Schedule(task)
	return task, nil
}

func (x *Axe) blade() mgl64.Vec3 {
	origin, dir := x.deps.Holder()
	if dir.Len() == 0 {
		return origin
	}
	return origin.Add(dir.Normalize().Mul(x.cfg.Reach))
}

func (x *Axe) step(s Swing, frame *updater.Frame) (Swing, error) {
	// A panicking step is dropped by the queue without disposal; release the
	// blade here so the next swing is not refused.
	defer func() {
		if r := recover(); r != nil {
			s.Axe.Dispose()
			panic(r)
		}
	}()
	s.Age += frame.DeltaTime

	if s.Axe.Phase() == entity.Ready {
		s.Axe.Translate(x.blade().Sub(s.Axe.Position()))

		for _, target := range x.deps.Resolver.Check(s.Axe, x.enemies()) {
			if slices.Contains(s.Hits, target.ID()) {
				continue
			}
			s.Hits = append(s.Hits, target.ID())
			target.Collide(entity.Contact{
				Source:     s.Axe.ID(),
				SourceKind: entity.KindAxe,
				Damage:     s.Axe.Damage,
				Time:       frame.Elapsed,
			})
			x.deps.Logger.Debug("axe hit", log.Uint64("target", uint64(target.ID())))
		}
	}

	if s.Age >= x.cfg.SwingTime {
		s.Finished = true
		s.ToDelete = []updater.Disposable{s.Axe}
		x.current = nil
	}
	return s, nil
}

func (x *Axe) enemies() []entity.Entity {
	if x.deps.Targets == nil {
		return nil
	}
	var out []entity.Entity
	for _, t := range x.deps.Targets() {
		if t.Kind() == entity.KindEnemy && !t.ShouldDelete() {
			out = append(out, t)
		}
	}
	return out
}
