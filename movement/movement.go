// Package movement walks the player over the sphere. The camera pivot sits
// at the sphere centre, so walking is a rotation of the pivot and looking is
// a yaw of the pivot plus a clamped pitch of the camera.
package movement

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/plus3/earthshot/geom"
	"github.com/plus3/earthshot/input"
	"github.com/plus3/earthshot/log"
	"github.com/plus3/earthshot/updater"
)

type Config struct {
	// Acceleration, Drag and MaxSpeed are angular, in radians per second.
	Acceleration float64
	Drag         float64
	MaxSpeed     float64
	TurnSpeed    float64
	LookSpeed    float64
	MaxTilt      float64
}

// Pivot is the node the camera orbits the sphere centre with.
type Pivot interface {
	Turn(axis mgl64.Vec3, angle float64)
	WorldRotation() mgl64.Quat
}

// Camera is pitched in its own frame and looks along its local -Z.
type Camera interface {
	SetLocalRotation(q mgl64.Quat)
	WorldRotation() mgl64.Quat
	WorldPosition() mgl64.Vec3
}

// Controller is the movement task.
type Controller struct {
	cfg    Config
	input  input.Provider
	pivot  Pivot
	camera Camera
	logger *log.Logger

	// Drift is the planar walking velocity, X to the right and Y forward.
	Drift mgl64.Vec2
	Pitch float64

	skipped int
}

var _ updater.Updater = (*Controller)(nil)

func New(cfg Config, in input.Provider, pivot Pivot, camera Camera, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.NewNop()
	}
	if in == nil {
		in = input.None{}
	}
	return &Controller{
		cfg:    cfg,
		input:  in,
		pivot:  pivot,
		camera: camera,
		logger: logger.Named("movement"),
	}
}

func (c *Controller) Name() string { return "movement" }

func (c *Controller) Update(frame *updater.Frame) (updater.Lifecycle, error) {
	dt := frame.DeltaTime
	st := c.input.Poll()

	c.look(st, dt)
	c.accelerate(st.Move(), dt)
	c.walk(dt)
	return updater.Lifecycle{}, nil
}

func (c *Controller) look(st input.State, dt float64) {
	if yaw := clampUnit(st.LookX); yaw != 0 {
		c.pivot.Turn(geom.Up, -yaw*c.cfg.TurnSpeed*dt)
	}
	if pitch := clampUnit(st.LookY); pitch != 0 {
		c.Pitch = max(-c.cfg.MaxTilt, min(c.cfg.MaxTilt, c.Pitch+pitch*c.cfg.LookSpeed*dt))
	}
	if c.camera != nil {
		c.camera.SetLocalRotation(mgl64.QuatRotate(c.Pitch, geom.Right))
	}
}

func (c *Controller) accelerate(dir mgl64.Vec2, dt float64) {
	if dir.Len() > 0 {
		c.Drift = c.Drift.Add(dir.Mul(c.cfg.Acceleration * dt))
	} else {
		// drag is proportional to the drift, so it never overshoots zero
		c.Drift = c.Drift.Mul(max(0, 1-c.cfg.Drag*dt))
	}
	if speed := c.Drift.Len(); speed > c.cfg.MaxSpeed {
		c.Drift = c.Drift.Mul(c.cfg.MaxSpeed / speed)
	}
}

// walk rolls the pivot so the camera travels along the drift. The axis is
// cross(moveDir, up); in this right-handed frame that turn is negative.
func (c *Controller) walk(dt float64) {
	speed := c.Drift.Len()
	if speed == 0 {
		return
	}

	moveDir := mgl64.Vec3{c.Drift.X(), 0, -c.Drift.Y()}
	axis := moveDir.Cross(geom.Up)
	if geom.Degenerate(axis) {
		c.skipped++
		c.logger.Debug("rotation skipped", log.Float64("speed", speed))
		return
	}
	c.pivot.Turn(axis.Normalize(), -speed*dt)
}

// Speed is the current walking speed in radians per second.
func (c *Controller) Speed() float64 { return c.Drift.Len() }

// Skipped counts ticks whose rotation axis was degenerate.
func (c *Controller) Skipped() int { return c.skipped }

// Aim is the world-space direction the camera looks along.
func (c *Controller) Aim() mgl64.Vec3 {
	if c.camera != nil {
		return c.camera.WorldRotation().Rotate(geom.Forward)
	}
	return c.pivot.WorldRotation().Rotate(geom.Forward)
}

// Muzzle is where shots leave from and where they go.
func (c *Controller) Muzzle() (origin, dir mgl64.Vec3) {
	if c.camera == nil {
		return mgl64.Vec3{}, c.Aim()
	}
	return c.camera.WorldPosition(), c.Aim()
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return max(-1, min(1, v))
}
