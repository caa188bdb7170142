// Package clock supplies elapsed and per-frame delta time to the engine.
package clock

import "time"

// Source is what tasks read time from.
type Source interface {
	// Elapsed is the monotonic simulated time in seconds.
	Elapsed() float64
	// Delta is the time since the previous frame in seconds.
	Delta() float64
}

// Clock accumulates simulated time one frame at a time. Deltas larger than
// MaxDelta are clamped so a stalled host does not teleport everything.
type Clock struct {
	elapsed  float64
	delta    float64
	maxDelta float64
	frames   uint64
}

// New creates a clock; maxDelta <= 0 disables clamping.
func New(maxDelta float64) *Clock {
	return &Clock{maxDelta: maxDelta}
}

// Advance moves the clock forward and returns the applied (clamped) delta.
// Negative deltas are treated as zero.
func (c *Clock) Advance(dt float64) float64 {
	if dt < 0 {
		dt = 0
	}
	if c.maxDelta > 0 && dt > c.maxDelta {
		dt = c.maxDelta
	}
	c.delta = dt
	c.elapsed += dt
	c.frames++
	return dt
}

func (c *Clock) Elapsed() float64 { return c.elapsed }
func (c *Clock) Delta() float64   { return c.delta }
func (c *Clock) Frames() uint64   { return c.frames }

// Wall measures real frame times from a time source, for hosts that do not
// hand out their own delta.
type Wall struct {
	now  func() time.Time
	last time.Time
}

// NewWall starts measuring from now. A nil now uses time.Now.
func NewWall(now func() time.Time) *Wall {
	if now == nil {
		now = time.Now
	}
	return &Wall{now: now, last: now()}
}

// Lap returns the seconds since the previous Lap (or construction).
func (w *Wall) Lap() float64 {
	t := w.now()
	dt := t.Sub(w.last).Seconds()
	w.last = t
	return dt
}

// Stepper splits variable frame times into fixed steps with an accumulator,
// capping the frame time to avoid a spiral of death.
type Stepper struct {
	Step        float64
	MaxFrame    float64
	accumulator float64
}

// Steps adds frameTime and returns how many fixed steps are due. A stepper
// without a positive Step never has any.
func (s *Stepper) Steps(frameTime float64) int {
	if s.Step <= 0 {
		return 0
	}
	if s.MaxFrame > 0 && frameTime > s.MaxFrame {
		frameTime = s.MaxFrame
	}
	s.accumulator += frameTime
	n := 0
	for s.accumulator >= s.Step {
		s.accumulator -= s.Step
		n++
	}
	return n
}

// Alpha is the leftover fraction of a step, for render interpolation.
func (s *Stepper) Alpha() float64 {
	if s.Step <= 0 {
		return 0
	}
	return s.accumulator / s.Step
}
