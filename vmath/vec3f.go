package vmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// World axes, Y up. Unrotated objects look down +Z
var (
	Up      = mgl64.Vec3{0, 1, 0}
	Right   = mgl64.Vec3{1, 0, 0}
	Forward = mgl64.Vec3{0, 0, 1}
)

// Epsilon is the distance below which two points are treated as coincident
const Epsilon = 1e-9

// Pose is a position plus orientation
type Pose struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
}

// IdentityPose returns a pose at p with no rotation
func IdentityPose(p mgl64.Vec3) Pose {
	return Pose{Position: p, Orientation: mgl64.QuatIdent()}
}

// Clamp01 clamps t to [0, 1]
func Clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Lerp interpolates a to b by t, t clamped to [0, 1]
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*Clamp01(t)
}

// LerpVec interpolates a to b by t, t clamped to [0, 1]
func LerpVec(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	t = Clamp01(t)
	return a.Add(b.Sub(a).Mul(t))
}

// SlerpVec rotates a toward b by the fraction t of the angle between them
// and lerps the length; t clamped to [0, 1]. A zero vector falls back to LerpVec
func SlerpVec(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	t = Clamp01(t)
	la, lb := a.Len(), b.Len()
	if la < Epsilon || lb < Epsilon {
		return LerpVec(a, b, t)
	}
	ua, ub := a.Mul(1/la), b.Mul(1/lb)
	angle := math.Acos(math.Max(-1, math.Min(1, ua.Dot(ub))))
	length := Lerp(la, lb, t)
	if angle < Epsilon {
		return ua.Mul(length)
	}

	axis := ua.Cross(ub)
	if axis.Len() < Epsilon {
		// Opposite directions: any perpendicular axis is a shortest arc
		axis = ua.Cross(Up)
		if axis.Len() < Epsilon {
			axis = ua.Cross(Right)
		}
	}
	q := mgl64.QuatRotate(angle*t, axis.Normalize())
	return q.Rotate(ua).Mul(length)
}

// Distance returns |b - a|
func Distance(a, b mgl64.Vec3) float64 {
	return b.Sub(a).Len()
}

// Normalize returns the unit vector of v, or false for a zero vector
// mgl64 Normalize divides by length without a guard
func Normalize(v mgl64.Vec3) (mgl64.Vec3, bool) {
	l := v.Len()
	if l < Epsilon {
		return mgl64.Vec3{}, false
	}
	return v.Mul(1 / l), true
}

// MoveTowards steps current toward target by at most maxDelta, never overshooting
func MoveTowards(current, target mgl64.Vec3, maxDelta float64) mgl64.Vec3 {
	delta := target.Sub(current)
	dist := delta.Len()
	if dist <= maxDelta || dist < Epsilon {
		return target
	}
	return current.Add(delta.Mul(maxDelta / dist))
}

// Flat drops the vertical component
func Flat(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v[0], 0, v[2]}
}

// HeadingDeg returns the compass heading of v in the XZ plane, degrees in [0, 360)
// 0 is +Z, 90 is +X
func HeadingDeg(v mgl64.Vec3) float64 {
	return WrapDeg(mgl64.RadToDeg(math.Atan2(v[0], v[2])))
}
