// Package scene is a headless scene graph. Nodes carry a local transform
// relative to their parent and optional box geometry, which is enough for
// the engine to position, collide and dispose entities without a renderer.
package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/plus3/earthshot/entity"
	"github.com/plus3/earthshot/geom"
)

type Node struct {
	Name string

	parent   *Node
	children []*Node

	position mgl64.Vec3
	rotation mgl64.Quat

	half     mgl64.Vec3
	geometry bool

	disposed bool
	disposes int
	onClick  func()
}

var (
	_ entity.Handle    = (*Node)(nil)
	_ entity.Clickable = (*Node)(nil)
)

// NewNode creates an empty transform node.
func NewNode(name string) *Node {
	return &Node{Name: name, rotation: mgl64.QuatIdent()}
}

// NewMesh creates a node with cube geometry of the given half size.
func NewMesh(name string, half float64) *Node {
	n := NewNode(name)
	n.half = mgl64.Vec3{half, half, half}
	n.geometry = half > 0
	return n
}

// Add reparents child under n, keeping its local transform.
func (n *Node) Add(child *Node) {
	child.Detach()
	child.parent = n
	n.children = append(n.children, child)
}

// Detach removes n from its parent.
func (n *Node) Detach() {
	if n.parent == nil {
		return
	}
	siblings := n.parent.children
	for i, c := range siblings {
		if c == n {
			n.parent.children = append(siblings[:i:i], siblings[i+1:]...)
			break
		}
	}
	n.parent = nil
}

func (n *Node) Parent() *Node     { return n.parent }
func (n *Node) Children() []*Node { return n.children }

func (n *Node) LocalPosition() mgl64.Vec3     { return n.position }
func (n *Node) SetLocalPosition(p mgl64.Vec3) { n.position = p }
func (n *Node) LocalRotation() mgl64.Quat     { return n.rotation }
func (n *Node) SetLocalRotation(q mgl64.Quat) { n.rotation = q.Normalize() }

// Rotate applies q after the current local rotation, in the parent frame.
func (n *Node) Rotate(q mgl64.Quat) {
	n.rotation = q.Mul(n.rotation).Normalize()
}

// RotateAround turns the node by angle radians around a parent-frame axis.
func (n *Node) RotateAround(axis mgl64.Vec3, angle float64) {
	n.Rotate(mgl64.QuatRotate(angle, axis.Normalize()))
}

// Turn turns the node by angle radians around an axis in its own frame.
func (n *Node) Turn(axis mgl64.Vec3, angle float64) {
	n.rotation = n.rotation.Mul(mgl64.QuatRotate(angle, axis.Normalize())).Normalize()
}

func (n *Node) WorldRotation() mgl64.Quat {
	if n.parent == nil {
		return n.rotation
	}
	return n.parent.WorldRotation().Mul(n.rotation)
}

func (n *Node) WorldPosition() mgl64.Vec3 {
	if n.parent == nil {
		return n.position
	}
	return n.parent.WorldPosition().Add(n.parent.WorldRotation().Rotate(n.position))
}

// WorldToLocal converts a world point into n's local frame.
func (n *Node) WorldToLocal(p mgl64.Vec3) mgl64.Vec3 {
	return n.WorldRotation().Inverse().Rotate(p.Sub(n.WorldPosition()))
}

// LocalToWorld converts a point in n's local frame into world space.
func (n *Node) LocalToWorld(p mgl64.Vec3) mgl64.Vec3 {
	return n.WorldPosition().Add(n.WorldRotation().Rotate(p))
}

// WorldBounds is the axis-aligned box around the rotated geometry.
func (n *Node) WorldBounds() (geom.AABB, bool) {
	if !n.geometry || n.disposed {
		return geom.AABB{}, false
	}

	m := n.WorldRotation().Mat4().Mat3()
	var half mgl64.Vec3
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			half[row] += math.Abs(m.At(row, col)) * n.half[col]
		}
	}
	return geom.Box(n.WorldPosition(), half), true
}

// Translate moves the node by a world-space delta.
func (n *Node) Translate(delta mgl64.Vec3) {
	if n.parent != nil {
		delta = n.parent.WorldRotation().Inverse().Rotate(delta)
	}
	n.position = n.position.Add(delta)
}

// Dispose detaches the node and releases it and its children. Disposes
// counts every call so tests can check for double disposal.
func (n *Node) Dispose() {
	n.disposes++
	if n.disposed {
		return
	}
	n.disposed = true
	n.Detach()
	for _, c := range append([]*Node(nil), n.children...) {
		c.Dispose()
	}
}

func (n *Node) Disposed() bool { return n.disposed }
func (n *Node) Disposes() int  { return n.disposes }

func (n *Node) OnClick(fn func()) { n.onClick = fn }

// Click runs the click handler, if any.
func (n *Node) Click() bool {
	if n.onClick == nil || n.disposed {
		return false
	}
	n.onClick()
	return true
}

// Walk visits n and its descendants depth first; returning false from fn
// skips the children of that node.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// Find returns the first descendant (or n itself) with the given name.
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if found != nil {
			return false
		}
		if c.Name == name {
			found = c
			return false
		}
		return true
	})
	return found
}
