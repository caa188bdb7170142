// Package ballistics flies projectiles. Each projectile is a task whose
// position is a closed-form function of its flight time, so the path does
// not depend on the frame rate; only the hit test is sampled per frame.
package ballistics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/plus3/earthshot/collision"
	"github.com/plus3/earthshot/effect"
	"github.com/plus3/earthshot/entity"
	"github.com/plus3/earthshot/geom"
	"github.com/plus3/earthshot/log"
	"github.com/plus3/earthshot/updater"
)

type Config struct {
	Speed        float64
	Acceleration float64
	Gravity      float64
	MaxFlight    float64
	// Radius is the sphere surface; projectiles below it are spent.
	Radius float64

	StunDuration float64
	BurnPulses   int
	BurnDamage   float64
}

// PowerUps reports the remaining time of player power-ups.
type PowerUps interface {
	PowerUp(kind string) float64
}

type Deps struct {
	Resolver *collision.Resolver[entity.Entity]
	// Targets returns the live collidables a projectile can hit.
	Targets  func() []entity.Entity
	Effects  *effect.Engine
	PowerUps PowerUps
	Logger   *log.Logger
}

type Ballistics struct {
	cfg  Config
	deps Deps
}

func New(cfg Config, deps Deps) *Ballistics {
	if deps.Logger == nil {
		deps.Logger = log.NewNop()
	}
	if deps.Resolver == nil {
		deps.Resolver = collision.NewResolver[entity.Entity](deps.Logger)
	}
	deps.Logger = deps.Logger.Named("ballistics")
	return &Ballistics{cfg: cfg, deps: deps}
}

// Flight is the state of one projectile task.
type Flight struct {
	updater.Lifecycle
	Projectile  *entity.Projectile
	InitialTime float64
	TotalTime   float64
	Origin      mgl64.Vec3
	Direction   mgl64.Vec3
	// Up is the outward direction at launch; gravity pulls against it.
	Up mgl64.Vec3
	// Effect is applied to every target hit, on top of shot power-ups.
	Effect string

	Previous    geom.AABB
	HasPrevious bool
	Hits        []entity.ID
}

func (f Flight) Owned() []updater.Disposable {
	if f.Projectile == nil {
		return nil
	}
	return []updater.Disposable{f.Projectile}
}

// Position is the closed-form position after t seconds of flight.
func (b *Ballistics) Position(origin, dir, up mgl64.Vec3, t float64) mgl64.Vec3 {
	forward := b.cfg.Speed * (t + b.cfg.Acceleration*t*t/2)
	fall := b.cfg.Gravity * t * t / 2
	return origin.Add(dir.Mul(forward)).Sub(up.Mul(fall))
}

// Launch returns the task flying p from origin along dir, starting at now.
// dir must not be degenerate.
func (b *Ballistics) Launch(p *entity.Projectile, origin, dir mgl64.Vec3, now float64, effectKind string) *updater.Task[Flight] {
	up := geom.Up
	if !geom.Degenerate(origin) {
		up = origin.Normalize()
	}
	return updater.New("ballistics", Flight{
		Projectile:  p,
		InitialTime: now,
		Origin:      origin,
		Direction:   dir.Normalize(),
		Up:          up,
		Effect:      effectKind,
	}, b.step)
}

func (b *Ballistics) step(s Flight, frame *updater.Frame) (Flight, error) {
	p := s.Projectile
	if p.Phase() == entity.Disposed {
		s.Finished = true
		return s, nil
	}

	s.TotalTime = frame.Elapsed - s.InitialTime
	pos := b.Position(s.Origin, s.Direction, s.Up, s.TotalTime)

	if p.Phase() == entity.Ready {
		p.Translate(pos.Sub(p.Position()))

		if box, ok := p.Bounds(); ok {
			prev := box
			if s.HasPrevious {
				prev = s.Previous
			}
			s.Previous, s.HasPrevious = box, true

			if hits := b.deps.Resolver.CheckSwept(prev, p, b.liveTargets(p)); len(hits) > 0 {
				b.hit(&s, hits, frame)
				s.Finished = true
			}
		}
	}

	if !s.Finished {
		outOfTime := s.TotalTime+frame.DeltaTime > b.cfg.MaxFlight
		landed := pos.Len() < b.cfg.Radius
		if outOfTime || landed {
			s.Finished = true
			b.deps.Logger.Debug("projectile spent",
				log.Uint64("id", uint64(p.ID())),
				log.Float64("flight", s.TotalTime),
				log.Bool("landed", landed),
			)
		}
	}

	if s.Finished {
		s.ToDelete = []updater.Disposable{p}
	}
	return s, nil
}

func (b *Ballistics) liveTargets(p *entity.Projectile) []entity.Entity {
	if b.deps.Targets == nil {
		return nil
	}
	all := b.deps.Targets()
	live := all[:0:0]
	for _, t := range all {
		if t.ShouldDelete() || t.ID() == p.ID() {
			continue
		}
		switch t.Kind() {
		case entity.KindProjectile, entity.KindAxe, entity.KindPlayer, entity.KindLab:
			continue
		}
		live = append(live, t)
	}
	return live
}

func (b *Ballistics) hit(s *Flight, hits []entity.Entity, frame *updater.Frame) {
	p := s.Projectile
	contact := entity.Contact{
		Source:     p.ID(),
		SourceKind: entity.KindProjectile,
		Compound:   p.Compound,
		Damage:     p.Damage,
		Time:       frame.Elapsed,
	}

	for _, target := range hits {
		s.Hits = append(s.Hits, target.ID())
		target.Collide(contact)
		b.deps.Logger.Debug("projectile hit",
			log.Uint64("id", uint64(p.ID())),
			log.Uint64("target", uint64(target.ID())),
			log.String("kind", string(target.Kind())),
		)

		affected, ok := target.(effect.Target)
		if !ok || b.deps.Effects == nil {
			continue
		}
		if s.Effect == effect.Stun || b.active(effect.StunShot) {
			b.deps.Effects.Apply(effect.Stun, affected, b.cfg.StunDuration)
		}
		if s.Effect == effect.Burn || b.active(effect.BurnShot) {
			b.deps.Effects.Burn(affected, b.cfg.BurnPulses, b.cfg.BurnDamage)
		}
	}
}

func (b *Ballistics) active(powerUp string) bool {
	return b.deps.PowerUps != nil && b.deps.PowerUps.PowerUp(powerUp) > 0
}
