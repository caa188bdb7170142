package main

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/plus3/earthshot/entity"
	"github.com/stretchr/testify/assert"
)

func TestProject(t *testing.T) {
	v := newView(mgl64.Vec3{0, 0, 0}, mgl64.QuatIdent(), 800, 600)

	x, y, r, depth, ok := v.project(mgl64.Vec3{0, 0, -10}, 1)
	assert.True(t, ok)
	assert.Equal(t, float32(400), x)
	assert.Equal(t, float32(300), y)
	assert.InDelta(t, 72, r, 1e-4)
	assert.Equal(t, 10.0, depth)

	x, y, _, _, ok = v.project(mgl64.Vec3{1, 1, -10}, 1)
	assert.True(t, ok)
	assert.Greater(t, x, float32(400), "right is right")
	assert.Less(t, y, float32(300), "up is up")

	_, _, _, _, ok = v.project(mgl64.Vec3{0, 0, 5}, 1)
	assert.False(t, ok, "behind the camera")

	turned := newView(mgl64.Vec3{}, mgl64.QuatRotate(mgl64.DegToRad(90), mgl64.Vec3{0, 1, 0}), 800, 600)
	x, _, _, _, ok = turned.project(mgl64.Vec3{-10, 0, 0}, 1)
	assert.True(t, ok, "yawing left looks down -X")
	assert.InDelta(t, 400, x, 1e-3)
}

func TestPick(t *testing.T) {
	lab := entity.NewLab(1, "FeS")
	mine := entity.NewMine(2, nil, "Fe", 1)
	list := []sprite{
		{e: lab, x: 100, y: 100, r: 20, depth: 10},
		{e: mine, x: 100, y: 100, r: 20, depth: 5},
	}

	got, ok := pick(list, 110, 105)
	assert.True(t, ok)
	assert.Same(t, lab, got)

	_, ok = pick(list, 200, 200)
	assert.False(t, ok)
}
