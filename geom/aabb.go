package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// Box builds a box centred on c with the given half extents.
func Box(c, half mgl64.Vec3) AABB {
	return AABB{Min: c.Sub(half), Max: c.Add(half)}
}

// Cube builds a box centred on c with equal half extents.
func Cube(c mgl64.Vec3, half float64) AABB {
	return Box(c, mgl64.Vec3{half, half, half})
}

// Intersects reports whether the boxes overlap. Touching faces count.
func (b AABB) Intersects(o AABB) bool {
	return b.Min[0] <= o.Max[0] && b.Max[0] >= o.Min[0] &&
		b.Min[1] <= o.Max[1] && b.Max[1] >= o.Min[1] &&
		b.Min[2] <= o.Max[2] && b.Max[2] >= o.Min[2]
}

// Union returns the smallest box containing both.
func (b AABB) Union(o AABB) AABB {
	return AABB{
		Min: mgl64.Vec3{math.Min(b.Min[0], o.Min[0]), math.Min(b.Min[1], o.Min[1]), math.Min(b.Min[2], o.Min[2])},
		Max: mgl64.Vec3{math.Max(b.Max[0], o.Max[0]), math.Max(b.Max[1], o.Max[1]), math.Max(b.Max[2], o.Max[2])},
	}
}

// Contains reports whether p lies inside or on the box.
func (b AABB) Contains(p mgl64.Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

func (b AABB) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Valid reports whether Min <= Max on every axis and no bound is NaN.
func (b AABB) Valid() bool {
	for i := 0; i < 3; i++ {
		if math.IsNaN(b.Min[i]) || math.IsNaN(b.Max[i]) || b.Min[i] > b.Max[i] {
			return false
		}
	}
	return true
}
