// Package weapon turns collected elements into shots. The Armory fires the
// selected compound as a projectile and crafts new compounds; the Axe is the
// melee fallback that costs nothing.
package weapon

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/plus3/earthshot/ballistics"
	"github.com/plus3/earthshot/clock"
	"github.com/plus3/earthshot/effect"
	"github.com/plus3/earthshot/element"
	"github.com/plus3/earthshot/entity"
	"github.com/plus3/earthshot/event"
	"github.com/plus3/earthshot/geom"
	"github.com/plus3/earthshot/log"
	"github.com/plus3/earthshot/updater"
)

var (
	ErrUnknownCompound = errors.New("unknown compound")
	ErrLocked          = errors.New("compound locked")
	ErrCoolingDown     = errors.New("weapon cooling down")
	ErrNoDirection     = errors.New("no firing direction")
)

// Compound is one craftable ammunition type. Cost is paid per shot, Unlock
// once when crafting.
type Compound struct {
	Formula string
	Name    string
	Cost    element.Cost
	Unlock  element.Cost
	Damage  float64
	// Effect is applied to whatever the shot hits, see package effect.
	Effect string
}

type Config struct {
	Cooldown        float64
	RapidFireFactor float64
	// HalfSize is the projectile box.
	HalfSize  float64
	Starting  string
	Compounds []Compound
}

// Scheduler queues the tasks a shot needs.
type Scheduler interface {
	Schedule(u updater.Updater)
}

type Deps struct {
	Factory    entity.Factory
	Counters   *element.Counters
	PowerUps   ballistics.PowerUps
	Ballistics *ballistics.Ballistics
	Queue      Scheduler
	Clock      clock.Source
	// Muzzle reports where shots leave from and the direction they take.
	Muzzle   func() (origin, dir mgl64.Vec3)
	Dispatch func(event.Event)
	Logger   *log.Logger
}

type Armory struct {
	cfg  Config
	deps Deps

	index    map[string]int
	unlocked map[string]bool
	selected int
	ready    float64

	fired int
}

func NewArmory(cfg Config, deps Deps) *Armory {
	if deps.Logger == nil {
		deps.Logger = log.NewNop()
	}
	if deps.Dispatch == nil {
		deps.Dispatch = func(event.Event) {}
	}
	deps.Logger = deps.Logger.Named("armory")

	a := &Armory{
		cfg:      cfg,
		deps:     deps,
		index:    make(map[string]int, len(cfg.Compounds)),
		unlocked: make(map[string]bool),
		selected: -1,
	}
	for i, c := range cfg.Compounds {
		a.index[c.Formula] = i
	}
	if i, ok := a.index[cfg.Starting]; ok {
		a.unlocked[cfg.Starting] = true
		a.selected = i
	}
	return a
}

// Selected is the compound the next shot uses; ok is false when nothing is
// unlocked yet.
func (a *Armory) Selected() (Compound, bool) {
	if a.selected < 0 {
		return Compound{}, false
	}
	return a.cfg.Compounds[a.selected], true
}

func (a *Armory) Unlocked(formula string) bool { return a.unlocked[formula] }

// Compounds is the whole catalogue, locked or not.
func (a *Armory) Compounds() []Compound { return a.cfg.Compounds }

// Unlocks lists the unlocked formulas in catalogue order.
func (a *Armory) Unlocks() []string {
	var out []string
	for _, c := range a.cfg.Compounds {
		if a.unlocked[c.Formula] {
			out = append(out, c.Formula)
		}
	}
	return out
}

// Fired counts successful shots.
func (a *Armory) Fired() int { return a.fired }

// Cooldown is the time left until the next shot is allowed.
func (a *Armory) Cooldown() float64 {
	return max(0, a.ready-a.deps.Clock.Elapsed())
}

// Select makes formula the current compound. It must be unlocked.
func (a *Armory) Select(formula string) error {
	i, ok := a.index[formula]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCompound, formula)
	}
	if !a.unlocked[formula] {
		return fmt.Errorf("%w: %s", ErrLocked, formula)
	}
	a.selected = i
	return nil
}

// Cycle selects the next unlocked compound and returns its formula.
func (a *Armory) Cycle() string {
	n := len(a.cfg.Compounds)
	for step := 1; step <= n; step++ {
		i := (max(a.selected, 0) + step) % n
		if a.unlocked[a.cfg.Compounds[i].Formula] {
			a.selected = i
			return a.cfg.Compounds[i].Formula
		}
	}
	if a.selected < 0 {
		return ""
	}
	return a.cfg.Compounds[a.selected].Formula
}

// Craft unlocks formula by paying its unlock cost. Crafting an unlocked
// compound is a no-op; an unaffordable one leaves the counters untouched and
// returns an error wrapping element.ErrInsufficient.
func (a *Armory) Craft(formula string) error {
	i, ok := a.index[formula]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCompound, formula)
	}
	if a.unlocked[formula] {
		return nil
	}

	now := a.deps.Clock.Elapsed()
	comp := a.cfg.Compounds[i]
	if err := a.deps.Counters.Consume(comp.Unlock, now); err != nil {
		a.deps.Logger.Debug("craft rejected", log.String("compound", formula), log.Err(err))
		return fmt.Errorf("craft %s: %w", formula, err)
	}

	a.unlocked[formula] = true
	if a.selected < 0 {
		a.selected = i
	}
	a.deps.Dispatch(event.Event{Type: event.Crafted, Time: now, Name: formula})
	a.deps.Logger.Info("compound crafted", log.String("compound", formula), log.String("cost", comp.Unlock.String()))
	return nil
}

// BindLab makes clicking the lab craft its compound.
func (a *Armory) BindLab(lab *entity.Lab) {
	lab.OnClick(func() {
		if err := a.Craft(lab.Compound); err != nil {
			a.deps.Logger.Debug("lab click", log.Uint64("lab", uint64(lab.ID())), log.Err(err))
		}
	})
}

// Fire shoots the selected compound along the muzzle direction.
func (a *Armory) Fire() (*entity.Projectile, error) {
	origin, dir := a.deps.Muzzle()
	return a.fire(origin, dir)
}

// FireAt shoots the selected compound from the muzzle toward target.
func (a *Armory) FireAt(target mgl64.Vec3) (*entity.Projectile, error) {
	origin, _ := a.deps.Muzzle()
	return a.fire(origin, target.Sub(origin))
}

func (a *Armory) fire(origin, dir mgl64.Vec3) (*entity.Projectile, error) {
	comp, ok := a.Selected()
	if !ok {
		return nil, fmt.Errorf("fire: %w", ErrLocked)
	}
	now := a.deps.Clock.Elapsed()
	if now < a.ready {
		return nil, fmt.Errorf("fire %s: %w", comp.Formula, ErrCoolingDown)
	}
	if geom.Degenerate(dir) {
		return nil, fmt.Errorf("fire %s: %w", comp.Formula, ErrNoDirection)
	}

	if err := a.deps.Counters.Consume(comp.Cost, now); err != nil {
		a.deps.Logger.Debug("fire rejected", log.String("compound", comp.Formula), log.Err(err))
		return nil, fmt.Errorf("fire %s: %w", comp.Formula, err)
	}

	e, asset, err := a.deps.Factory.New(entity.KindProjectile, entity.SpawnParams{
		Space:    entity.SpaceWorld,
		Position: origin,
		HalfSize: a.cfg.HalfSize,
		Compound: comp.Formula,
		Damage:   comp.Damage,
	})
	if err != nil {
		a.refund(comp.Cost, now)
		return nil, fmt.Errorf("fire %s: %w", comp.Formula, err)
	}
	p, ok := e.(*entity.Projectile)
	if !ok {
		a.refund(comp.Cost, now)
		return nil, fmt.Errorf("fire %s: factory built %s", comp.Formula, e.Kind())
	}

	a.deps.Queue.Schedule(entity.Load(p, asset, nil))
	a.deps.Queue.Schedule(a.deps.Ballistics.Launch(p, origin, dir, now, comp.Effect))

	cooldown := a.cfg.Cooldown
	if a.deps.PowerUps != nil && a.deps.PowerUps.PowerUp(effect.RapidFire) > 0 {
		cooldown *= a.cfg.RapidFireFactor
	}
	a.ready = now + cooldown
	a.fired++

	a.deps.Dispatch(event.Event{
		Type:   event.Fired,
		Time:   now,
		Entity: uint64(p.ID()),
		Kind:   string(entity.KindProjectile),
		Name:   comp.Formula,
	})
	return p, nil
}

func (a *Armory) refund(cost element.Cost, now float64) {
	for sym, n := range cost {
		a.deps.Counters.Add(sym, n, now)
	}
}
