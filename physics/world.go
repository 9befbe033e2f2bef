// Package physics is a small kinematic world: static box obstacles,
// layer-filtered ray queries and sphere bodies that report collision enter
// events synchronously from MovePosition.
//
// The world is not safe for concurrent use; it is driven from the tick loop.
package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/lixenwraith/vi-drive/vmath"
)

// CollisionHandler receives collision enter events
type CollisionHandler func(Collision)

// World holds static obstacles and dispatches collision events
type World struct {
	obstacles []Obstacle
	handlers  []CollisionHandler
}

// NewWorld creates a world with a copy of the given obstacles
func NewWorld(obstacles []Obstacle) *World {
	w := &World{obstacles: make([]Obstacle, len(obstacles))}
	copy(w.obstacles, obstacles)
	return w
}

// Obstacles returns a copy of the static colliders
func (w *World) Obstacles() []Obstacle {
	out := make([]Obstacle, len(w.obstacles))
	copy(out, w.obstacles)
	return out
}

// OnCollisionEnter registers a handler, called in registration order
func (w *World) OnCollisionEnter(h CollisionHandler) {
	if h != nil {
		w.handlers = append(w.handlers, h)
	}
}

// Raycast returns the nearest obstacle hit within maxDist on a layer in mask
// A zero direction or non-positive distance never hits
func (w *World) Raycast(origin, dir mgl64.Vec3, maxDist float64, mask LayerMask) (Hit, bool) {
	if maxDist <= 0 {
		return Hit{}, false
	}
	unit, ok := vmath.Normalize(dir)
	if !ok {
		return Hit{}, false
	}

	var best Hit
	found := false
	for i := range w.obstacles {
		o := &w.obstacles[i]
		if !mask.Has(o.Layer) {
			continue
		}
		t, hit := o.intersectRay(origin, unit)
		if !hit || t > maxDist {
			continue
		}
		if !found || t < best.Distance {
			best = Hit{
				Obstacle: o.Name,
				Layer:    o.Layer,
				Point:    origin.Add(unit.Mul(t)),
				Distance: t,
			}
			found = true
		}
	}
	return best, found
}

// Overlaps returns indices of obstacles penetrated by a sphere
func (w *World) Overlaps(center mgl64.Vec3, radius float64) []int {
	var idx []int
	for i := range w.obstacles {
		if w.obstacles[i].OverlapsSphere(center, radius) {
			idx = append(idx, i)
		}
	}
	return idx
}

func (w *World) dispatch(c Collision) {
	for _, h := range w.handlers {
		h(c)
	}
}
