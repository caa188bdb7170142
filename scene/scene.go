package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/plus3/earthshot/entity"
)

// Scene is the fixed part of the graph: the rotating sphere, the camera pivot
// at the sphere centre, the camera riding above the surface and the player
// body under it.
type Scene struct {
	Root   *Node
	Sphere *Node
	Pivot  *Node
	Camera *Node
	Player *Node

	Radius float64
}

// New builds a scene for a sphere of the given radius with the camera
// cameraHeight above the north pole, looking toward -Z.
func New(radius, cameraHeight, playerHalf float64) *Scene {
	s := &Scene{
		Root:   NewNode("root"),
		Sphere: NewNode("sphere"),
		Pivot:  NewNode("pivot"),
		Camera: NewNode("camera"),
		Player: NewMesh("player", playerHalf),
		Radius: radius,
	}
	s.Root.Add(s.Sphere)
	s.Root.Add(s.Pivot)
	s.Pivot.Add(s.Camera)
	s.Pivot.Add(s.Player)

	s.Camera.SetLocalPosition(mgl64.Vec3{0, radius + cameraHeight, 0})
	s.Player.SetLocalPosition(mgl64.Vec3{0, radius + playerHalf, 0})
	return s
}

// Count is the number of nodes under the sphere and the root, excluding the
// fixed nodes, i.e. how many entity handles are alive.
func (s *Scene) Count() int {
	n := 0
	s.Root.Walk(func(c *Node) bool {
		switch c {
		case s.Root, s.Sphere, s.Pivot, s.Camera, s.Player:
		default:
			n++
		}
		return true
	})
	return n
}

// Delayed is an asset that becomes available after a number of polls,
// standing in for an asynchronous model load.
type Delayed struct {
	Frames int
	build  func() (entity.Handle, error)
	polls  int
	done   bool
}

func NewDelayed(frames int, build func() (entity.Handle, error)) *Delayed {
	return &Delayed{Frames: frames, build: build}
}

// Ready is an asset available on the first poll.
func Ready(build func() (entity.Handle, error)) *Delayed {
	return NewDelayed(0, build)
}

func (d *Delayed) Poll() (entity.Handle, bool, error) {
	if d.done {
		return nil, false, fmt.Errorf("asset already delivered")
	}
	if d.polls < d.Frames {
		d.polls++
		return nil, false, nil
	}
	h, err := d.build()
	if err != nil {
		return nil, false, err
	}
	d.done = true
	return h, true, nil
}

// Factory builds entities whose handles are scene nodes.
type Factory struct {
	scene *Scene
	world entity.World

	// LoadFrames is how many ticks an asset takes to load.
	LoadFrames int

	nextID entity.ID
}

var _ entity.Factory = (*Factory)(nil)

func NewFactory(s *Scene, world entity.World, loadFrames int) *Factory {
	return &Factory{scene: s, world: world, LoadFrames: loadFrames}
}

func (f *Factory) New(kind entity.Kind, p entity.SpawnParams) (entity.Entity, entity.Asset, error) {
	id := f.nextID + 1
	e, err := entity.Build(id, kind, f.world, p)
	if err != nil {
		return nil, nil, err
	}
	f.nextID = id

	parent := f.scene.Root
	if p.Space == entity.SpaceSphere {
		parent = f.scene.Sphere
	}

	node := NewMesh(fmt.Sprintf("%s-%d", kind, id), p.HalfSize)
	node.SetLocalPosition(p.Position)

	asset := NewDelayed(f.LoadFrames, func() (entity.Handle, error) {
		parent.Add(node)
		return node, nil
	})
	return e, asset, nil
}
