// Package camera provides a smoothed follow camera for the vehicle
package camera

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vi-drive/vmath"
)

// Config tunes the follow behavior
type Config struct {
	// Offset is in the target's local frame
	Offset        mgl64.Vec3
	FollowSpeed   float64 // position lerp rate, 1/s
	RotationSpeed float64 // look-at slerp rate, 1/s
	LookAtTarget  bool
	LookOffset    mgl64.Vec3
}

// DefaultConfig returns the stock chase setup
func DefaultConfig() Config {
	return Config{
		Offset:        mgl64.Vec3{0, 5, -8},
		FollowSpeed:   5,
		RotationSpeed: 2,
		LookAtTarget:  true,
	}
}

// Follow trails a target pose
// Position and rotation ease toward the desired values; Focus eases toward the look point
type Follow struct {
	cfg      Config
	position mgl64.Vec3
	rotation mgl64.Quat
	focus    mgl64.Vec3
	placed   bool
}

// New creates a camera, unplaced until the first Update or Snap
func New(cfg Config) *Follow {
	return &Follow{cfg: cfg, rotation: mgl64.QuatIdent()}
}

// Desired returns where the camera wants to be for target
func (f *Follow) Desired(target vmath.Pose) mgl64.Vec3 {
	return target.Position.Add(target.Orientation.Rotate(f.cfg.Offset))
}

func (f *Follow) lookPoint(target vmath.Pose) mgl64.Vec3 {
	return target.Position.Add(f.cfg.LookOffset)
}

// Snap jumps to the desired pose without easing, used on start and restart
func (f *Follow) Snap(target vmath.Pose) {
	f.position = f.Desired(target)
	f.focus = f.lookPoint(target)
	f.rotation = mgl64.QuatIdent()
	if f.cfg.LookAtTarget {
		if q, ok := vmath.LookRotation(f.focus.Sub(f.position)); ok {
			f.rotation = q
		}
	}
	f.placed = true
}

// Update eases toward target by dt
func (f *Follow) Update(target vmath.Pose, dt time.Duration) {
	if !f.placed {
		f.Snap(target)
		return
	}
	secs := dt.Seconds()

	f.position = vmath.LerpVec(f.position, f.Desired(target), f.cfg.FollowSpeed*secs)
	f.focus = vmath.LerpVec(f.focus, f.lookPoint(target), f.cfg.FollowSpeed*secs)

	if !f.cfg.LookAtTarget {
		return
	}
	// Zero direction keeps the last rotation
	if q, ok := vmath.LookRotation(f.lookPoint(target).Sub(f.position)); ok {
		f.rotation = vmath.Slerp(f.rotation, q, f.cfg.RotationSpeed*secs)
	}
}

// FixedUpdate is the extra physics-rate position pass: a spherical
// interpolation toward the desired position at half the follow rate
func (f *Follow) FixedUpdate(target vmath.Pose, fixedDt time.Duration) {
	if !f.placed {
		f.Snap(target)
		return
	}
	f.position = vmath.SlerpVec(f.position, f.Desired(target), f.cfg.FollowSpeed*fixedDt.Seconds()*0.5)
}

// Position returns the camera position
func (f *Follow) Position() mgl64.Vec3 { return f.position }

// Rotation returns the camera orientation
func (f *Follow) Rotation() mgl64.Quat { return f.rotation }

// Focus returns the eased look point, the center of a top-down view
func (f *Follow) Focus() mgl64.Vec3 { return f.focus }

// Heading returns the camera view direction as a compass heading in degrees
func (f *Follow) Heading() float64 { return vmath.YawDeg(f.rotation) }
