// Package store holds the player-facing game state shared between tasks and
// whatever presents it: health, score, power-up timers and element counters.
package store

import (
	"maps"
	"slices"

	"github.com/plus3/earthshot/element"
)

// Keys reported in Change notifications.
const (
	KeyHealth  = "health"
	KeyScore   = "score"
	KeyPowerUp = "power_up"
)

// Change describes one mutation. Name is set for power-ups.
type Change struct {
	Key   string
	Name  string
	Value float64
}

// Store is the narrow API the engine reads and writes game state through.
type Store interface {
	Health() float64
	MaxHealth() float64
	SetHealth(v float64)
	Score() int
	AddScore(n int)
	Invincible() bool
	PowerUp(kind string) float64
	SetPowerUp(kind string, remaining float64)
	PowerUps() map[string]float64
	Counters() *element.Counters
	Subscribe(fn func(Change)) (unsubscribe func())
}

// Memory is the in-process Store.
type Memory struct {
	health    float64
	maxHealth float64
	score     int
	powerUps  map[string]float64
	counters  *element.Counters

	subscribers map[int]func(Change)
	nextSub     int
}

var _ Store = (*Memory)(nil)

func NewMemory(maxHealth float64) *Memory {
	return &Memory{
		health:      maxHealth,
		maxHealth:   maxHealth,
		powerUps:    make(map[string]float64),
		counters:    element.NewCounters(),
		subscribers: make(map[int]func(Change)),
	}
}

func (m *Memory) Health() float64    { return m.health }
func (m *Memory) MaxHealth() float64 { return m.maxHealth }

// SetHealth clamps v to [0, MaxHealth].
func (m *Memory) SetHealth(v float64) {
	v = max(0, min(v, m.maxHealth))
	if v == m.health {
		return
	}
	m.health = v
	m.notify(Change{Key: KeyHealth, Value: v})
}

func (m *Memory) Score() int { return m.score }

func (m *Memory) AddScore(n int) {
	if n == 0 {
		return
	}
	m.score += n
	m.notify(Change{Key: KeyScore, Value: float64(m.score)})
}

func (m *Memory) Invincible() bool { return m.PowerUp("invincible") > 0 }

func (m *Memory) PowerUp(kind string) float64 { return m.powerUps[kind] }

// SetPowerUp stores the remaining seconds of kind; values <= 0 clear it.
func (m *Memory) SetPowerUp(kind string, remaining float64) {
	if remaining <= 0 {
		if _, ok := m.powerUps[kind]; !ok {
			return
		}
		delete(m.powerUps, kind)
		remaining = 0
	} else {
		m.powerUps[kind] = remaining
	}
	m.notify(Change{Key: KeyPowerUp, Name: kind, Value: remaining})
}

func (m *Memory) PowerUps() map[string]float64 {
	return maps.Clone(m.powerUps)
}

// ActivePowerUps lists the running power-ups, sorted.
func (m *Memory) ActivePowerUps() []string {
	return slices.Sorted(maps.Keys(m.powerUps))
}

func (m *Memory) Counters() *element.Counters { return m.counters }

// Subscribe registers fn for every change; call the returned func to stop.
func (m *Memory) Subscribe(fn func(Change)) func() {
	id := m.nextSub
	m.nextSub++
	m.subscribers[id] = fn
	return func() { delete(m.subscribers, id) }
}

func (m *Memory) notify(c Change) {
	for _, id := range slices.Sorted(maps.Keys(m.subscribers)) {
		m.subscribers[id](c)
	}
}

// The player is the target of power-up effects. These methods let the effect
// engine drive power-up timers the same way it drives stun on enemies.

// Shift adds delta to the power-up timer of kind, clamped at zero, and returns
// the new value.
func (m *Memory) Shift(kind string, delta float64) float64 {
	v := max(0, m.powerUps[kind]+delta)
	m.SetPowerUp(kind, v)
	return v
}

func (m *Memory) Remaining(kind string) float64 { return m.PowerUp(kind) }

// Damage lowers health unless invincible.
func (m *Memory) Damage(amount float64) {
	if amount <= 0 || m.Invincible() {
		return
	}
	m.SetHealth(m.health - amount)
}

// ShouldDelete is always false: the player outlives every effect.
func (m *Memory) ShouldDelete() bool { return false }
