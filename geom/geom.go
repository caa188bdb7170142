// Package geom provides the small amount of 3D math the engine needs on top
// of mgl64: axis-aligned boxes, spherical placement and rotation helpers.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the length below which a direction is considered degenerate.
const Epsilon = 1e-9

var (
	Up      = mgl64.Vec3{0, 1, 0}
	Forward = mgl64.Vec3{0, 0, -1}
	Right   = mgl64.Vec3{1, 0, 0}
)

// Degenerate reports whether v cannot be normalized: zero length, NaN or Inf.
func Degenerate(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return true
		}
	}
	return v.Len() < Epsilon
}

// Spherical converts spherical coordinates into Cartesian ones. Polar is
// measured from +Y, azimuth around +Y starting at +X toward -Z.
func Spherical(radius, polar, azimuth float64) mgl64.Vec3 {
	sinP, cosP := math.Sincos(polar)
	sinA, cosA := math.Sincos(azimuth)
	return mgl64.Vec3{
		radius * sinP * cosA,
		radius * cosP,
		-radius * sinP * sinA,
	}
}

// SurfacePoint places a point on a sphere of the given radius ahead of the
// north pole: forward is the angular distance along -Z, lateral the angular
// offset toward +X.
func SurfacePoint(radius, forward, lateral float64) mgl64.Vec3 {
	p := Spherical(radius, forward, math.Pi/2)
	return mgl64.QuatRotate(lateral, Forward).Rotate(p)
}

// RotationBetween returns the shortest rotation taking a onto b. Both must be
// non-degenerate.
func RotationBetween(a, b mgl64.Vec3) mgl64.Quat {
	return mgl64.QuatBetweenVectors(a.Normalize(), b.Normalize())
}

// Project removes the component of v along the unit vector n.
func Project(v, n mgl64.Vec3) mgl64.Vec3 {
	return v.Sub(n.Mul(v.Dot(n)))
}
