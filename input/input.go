// Package input describes what the player is doing in a frame. Hosts
// translate devices into a State; the engine only ever polls a Provider.
package input

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/plus3/earthshot/updater"
)

// State is the input of one frame. Held keys and axes are levels; Fire,
// Swing, Cycle and Craft are edges, set only on the frame they happen.
type State struct {
	Forward bool
	Back    bool
	Left    bool
	Right   bool

	// Axis is an analog move direction, X to the right and Y forward. It is
	// used only while no move key is held.
	Axis mgl64.Vec2

	// LookX turns right when positive, LookY pitches up. Both are rates in
	// [-1, 1].
	LookX float64
	LookY float64

	Fire  bool
	Swing bool
	Cycle bool
	// Craft names a compound to unlock, or is empty.
	Craft string
}

// Move is the planar move direction with length at most one. Keys win over
// the analog axis; a non-finite axis reads as no input.
func (s State) Move() mgl64.Vec2 {
	var v mgl64.Vec2
	if s.Right {
		v[0]++
	}
	if s.Left {
		v[0]--
	}
	if s.Forward {
		v[1]++
	}
	if s.Back {
		v[1]--
	}
	if s.Forward || s.Back || s.Left || s.Right {
		if l := v.Len(); l > 0 {
			v = v.Mul(1 / l)
		}
		return v
	}

	a := s.Axis
	if !finite(a[0]) || !finite(a[1]) {
		return mgl64.Vec2{}
	}
	if l := a.Len(); l > 1 {
		a = a.Mul(1 / l)
	}
	return a
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Provider is polled once per tick.
type Provider interface {
	Poll() State
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func() State

func (f ProviderFunc) Poll() State { return f() }

// None never reports any input.
type None struct{}

func (None) Poll() State { return State{} }

// Scripted replays a fixed sequence of states, one per poll, and then
// reports no input.
type Scripted struct {
	states []State
	next   int
}

func NewScripted(states ...State) *Scripted {
	return &Scripted{states: states}
}

// Push appends states to the script.
func (s *Scripted) Push(states ...State) {
	s.states = append(s.states, states...)
}

// Repeat appends n copies of st.
func (s *Scripted) Repeat(st State, n int) {
	for i := 0; i < n; i++ {
		s.states = append(s.states, st)
	}
}

func (s *Scripted) Poll() State {
	if s.next >= len(s.states) {
		return State{}
	}
	st := s.states[s.next]
	s.next++
	return st
}

// Remaining is how many scripted states have not been polled yet.
func (s *Scripted) Remaining() int { return len(s.states) - s.next }

// Latch is the input task. It polls its source once per tick, keeps the
// result for every other reader of that tick and hands it to its handlers.
type Latch struct {
	source   Provider
	current  State
	handlers []func(State, *updater.Frame)
}

var (
	_ Provider        = (*Latch)(nil)
	_ updater.Updater = (*Latch)(nil)
)

func NewLatch(source Provider) *Latch {
	if source == nil {
		source = None{}
	}
	return &Latch{source: source}
}

// Handle registers fn to run with every polled state, in registration order.
func (l *Latch) Handle(fn func(State, *updater.Frame)) {
	l.handlers = append(l.handlers, fn)
}

func (l *Latch) Name() string { return "input" }

func (l *Latch) Update(frame *updater.Frame) (updater.Lifecycle, error) {
	l.current = l.source.Poll()
	for _, fn := range l.handlers {
		fn(l.current, frame)
	}
	return updater.Lifecycle{}, nil
}

// Poll returns the state latched on the current tick.
func (l *Latch) Poll() State { return l.current }
