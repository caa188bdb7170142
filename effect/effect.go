// Package effect runs time-bounded status effects (stun, burn pulses and
// player power-ups) as tasks on the update queue.
//
// Every effect kind is a shared per-target counter of remaining seconds. In
// stack mode each application adds its duration to the counter and schedules
// its own decrement task, so overlapping applications drain the counter
// together. In refresh mode the counter is raised to the new duration and a
// single decrement task per target and kind is kept alive.
package effect

import (
	"fmt"

	"github.com/plus3/earthshot/log"
	"github.com/plus3/earthshot/updater"
)

const (
	Stun       = "stun"
	Burn       = "burn"
	StunShot   = "stun_shot"
	BurnShot   = "burn_shot"
	RapidFire  = "rapid_fire"
	Invincible = "invincible"
)

type Mode string

const (
	ModeStack   Mode = "stack"
	ModeRefresh Mode = "refresh"
)

// ParseMode accepts "stack" or "refresh"; empty means stack.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeStack:
		return ModeStack, nil
	case ModeRefresh:
		return ModeRefresh, nil
	default:
		return "", fmt.Errorf("unknown effect mode %q", s)
	}
}

// Target holds effect counters. Shift adds delta to the counter of kind,
// clamps it at zero and returns the new value.
type Target interface {
	Shift(kind string, delta float64) float64
	Remaining(kind string) float64
	Damage(amount float64)
	ShouldDelete() bool
}

// Scheduler is where effect tasks are queued.
type Scheduler interface {
	Schedule(u updater.Updater)
}

type key struct {
	target Target
	kind   string
}

type Engine struct {
	queue  Scheduler
	mode   Mode
	logger *log.Logger

	refreshing map[key]bool
	live       map[string]int
}

func NewEngine(queue Scheduler, mode Mode, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.NewNop()
	}
	if mode == "" {
		mode = ModeStack
	}
	return &Engine{
		queue:      queue,
		mode:       mode,
		logger:     logger.Named("effect"),
		refreshing: make(map[key]bool),
		live:       make(map[string]int),
	}
}

func (e *Engine) Mode() Mode { return e.mode }

// Live is the number of running effect tasks of kind across all targets.
func (e *Engine) Live(kind string) int { return e.live[kind] }

// Decay is the state of a decrement task.
type Decay struct {
	updater.Lifecycle
	Kind   string
	Target Target
}

// Apply adds duration seconds of kind to target.
func (e *Engine) Apply(kind string, target Target, duration float64) {
	if duration <= 0 || target.ShouldDelete() {
		return
	}

	switch e.mode {
	case ModeRefresh:
		if remaining := target.Remaining(kind); duration > remaining {
			target.Shift(kind, duration-remaining)
		}
		k := key{target: target, kind: kind}
		if e.refreshing[k] {
			return
		}
		e.refreshing[k] = true
		e.schedule(kind, target, func() { delete(e.refreshing, k) })
	default:
		target.Shift(kind, duration)
		e.schedule(kind, target, nil)
	}

	e.logger.Debug("effect applied",
		log.String("kind", kind),
		log.Float64("duration", duration),
		log.Float64("remaining", target.Remaining(kind)),
	)
}

func (e *Engine) schedule(kind string, target Target, onDone func()) {
	e.live[kind]++
	finish := func() {
		e.live[kind]--
		if onDone != nil {
			onDone()
		}
	}

	e.queue.Schedule(updater.New("effect."+kind, Decay{Kind: kind, Target: target},
		func(s Decay, frame *updater.Frame) (Decay, error) {
			if s.Target.ShouldDelete() || s.Target.Shift(s.Kind, -frame.DeltaTime) <= 0 {
				s.Finished = true
				finish()
			}
			return s, nil
		}))
}

// Pulses is the state of a burn task: the offsets in seconds since
// application at which damage is still due.
type Pulses struct {
	updater.Lifecycle
	Target Target
	Damage float64
	Age    float64
	Due    []float64
}

// Burn deals damage to target once per second for the given number of
// pulses, starting one second after application.
func (e *Engine) Burn(target Target, pulses int, damage float64) {
	if pulses <= 0 || target.ShouldDelete() {
		return
	}

	due := make([]float64, pulses)
	for i := range due {
		due[i] = float64(i + 1)
	}
	target.Shift(Burn, float64(pulses))
	e.live[Burn]++

	e.queue.Schedule(updater.New("effect."+Burn, Pulses{Target: target, Damage: damage, Due: due},
		func(s Pulses, frame *updater.Frame) (Pulses, error) {
			if s.Target.ShouldDelete() {
				s.Finished = true
				e.live[Burn]--
				return s, nil
			}

			s.Age += frame.DeltaTime
			n := 0
			for n < len(s.Due) && s.Due[n] <= s.Age {
				s.Target.Damage(s.Damage)
				s.Target.Shift(Burn, -1)
				n++
			}
			s.Due = s.Due[n:]

			if len(s.Due) == 0 {
				s.Finished = true
				e.live[Burn]--
			}
			return s, nil
		}))
}
