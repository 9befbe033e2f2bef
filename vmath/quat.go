package vmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// YawRotation returns a rotation of deg degrees about the world up axis
// Positive yaw turns +Z toward +X
func YawRotation(deg float64) mgl64.Quat {
	return mgl64.QuatRotate(mgl64.DegToRad(deg), Up)
}

// LookRotation returns the rotation that maps +Z onto dir with Y kept up
// Returns false for a zero direction; callers skip the rotation update
func LookRotation(dir mgl64.Vec3) (mgl64.Quat, bool) {
	d, ok := Normalize(dir)
	if !ok {
		return mgl64.QuatIdent(), false
	}
	yaw := math.Atan2(d[0], d[2])
	pitch := math.Atan2(-d[1], math.Hypot(d[0], d[2]))
	q := mgl64.QuatRotate(yaw, Up).Mul(mgl64.QuatRotate(pitch, Right))
	return q.Normalize(), true
}

// Slerp interpolates a to b along the shortest arc, t clamped to [0, 1]
func Slerp(a, b mgl64.Quat, t float64) mgl64.Quat {
	t = Clamp01(t)
	if a.Dot(b) < 0 {
		// q and -q are the same rotation; take the short way round
		b = b.Scale(-1)
	}
	switch t {
	case 0:
		return a.Normalize()
	case 1:
		return b.Normalize()
	}
	return mgl64.QuatSlerp(a, b, t).Normalize()
}

// YawDeg extracts the heading of q's +Z axis, degrees in [0, 360)
func YawDeg(q mgl64.Quat) float64 {
	return HeadingDeg(q.Rotate(Forward))
}

// WrapDeg maps an angle into [0, 360)
func WrapDeg(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// DeltaDeg returns the signed shortest difference b - a in (-180, 180]
func DeltaDeg(a, b float64) float64 {
	d := WrapDeg(b - a)
	if d > 180 {
		d -= 360
	}
	return d
}

// SameRotation reports whether two quaternions describe the same rotation within eps
func SameRotation(a, b mgl64.Quat, eps float64) bool {
	return math.Abs(math.Abs(a.Normalize().Dot(b.Normalize()))-1) <= eps
}
