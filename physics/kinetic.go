package physics

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Body is a kinematic sphere moved by MovePosition
// Moves that would penetrate an obstacle are rejected and report a collision
type Body struct {
	world    *World
	position mgl64.Vec3
	rotation mgl64.Quat
	radius   float64

	// Last accepted displacement, zeroed by Teleport
	lastMove mgl64.Vec3

	// Obstacles touched by the last attempted move, for enter-only events
	contacts map[int]struct{}
}

// NewBody places a sphere body in the world
func (w *World) NewBody(position mgl64.Vec3, radius float64) *Body {
	if radius < 0 {
		radius = -radius
	}
	return &Body{
		world:    w,
		position: position,
		rotation: mgl64.QuatIdent(),
		radius:   radius,
		contacts: make(map[int]struct{}),
	}
}

// Position returns the current body position
func (b *Body) Position() mgl64.Vec3 { return b.position }

// Rotation returns the last orientation set by Teleport or SetRotation
func (b *Body) Rotation() mgl64.Quat { return b.rotation }

// Radius returns the collider radius
func (b *Body) Radius() float64 { return b.radius }

// LastMove returns the displacement applied by the last accepted move
func (b *Body) LastMove() mgl64.Vec3 { return b.lastMove }

// SetRotation records the visual orientation, it does not affect collision
func (b *Body) SetRotation(q mgl64.Quat) { b.rotation = q }

// MovePosition requests a move to target and returns the resolved position
// Collision handlers run before MovePosition returns
func (b *Body) MovePosition(target mgl64.Vec3) mgl64.Vec3 {
	overlaps := b.world.Overlaps(target, b.radius)

	touching := make(map[int]struct{}, len(overlaps))
	for _, i := range overlaps {
		touching[i] = struct{}{}
	}
	prev := b.contacts
	b.contacts = touching

	for _, i := range overlaps {
		if _, ok := prev[i]; ok {
			continue
		}
		o := b.world.obstacles[i]
		b.world.dispatch(Collision{
			Other: o.Name,
			Layer: o.Layer,
			Point: o.ClosestPoint(target),
		})
	}

	if len(overlaps) > 0 {
		b.lastMove = mgl64.Vec3{}
		return b.position
	}

	b.lastMove = target.Sub(b.position)
	b.position = target
	return b.position
}

// Teleport places the body without collision checks, zeroing motion and contacts
func (b *Body) Teleport(position mgl64.Vec3, rotation mgl64.Quat) {
	b.position = position
	b.rotation = rotation
	b.lastMove = mgl64.Vec3{}
	b.contacts = make(map[int]struct{})
}
