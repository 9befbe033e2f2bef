package render

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vi-drive/physics"
	"github.com/lixenwraith/vi-drive/sim"
	"github.com/lixenwraith/vi-drive/status"
	"github.com/lixenwraith/vi-drive/vehicle"
)

// DefaultScale is cells per world unit horizontally; rows use half, terminal cells being ~2:1
const DefaultScale = 2.0

// Ray is the forward obstacle ray as drawn
type Ray struct {
	Enabled     bool
	Origin      mgl64.Vec3
	Dir         mgl64.Vec3
	Length      float64
	Hit         bool
	HitDistance float64
}

// RenderContext provides frame state for renderers, passed by value
type RenderContext struct {
	Frame     vehicle.Snapshot
	View      status.View
	Waypoints []vehicle.Waypoint
	Obstacles []physics.Obstacle
	Ray       Ray

	// World point shown at the viewport center, from the camera
	Focus mgl64.Vec3
	// Camera view heading, degrees
	CameraHeading float64
	Scale         float64

	Slow           bool
	ManualSteering bool
	Muted          bool

	RealTime time.Time

	// Screen dimensions; the map viewport excludes the status row
	ScreenWidth    int
	ScreenHeight   int
	ViewportWidth  int
	ViewportHeight int
}

// NewRenderContext builds the frame state from a session
func NewRenderContext(s *sim.Session, width, height int) RenderContext {
	frame := s.Controller.Snapshot()
	cfg := s.Controller.Config()

	ray := Ray{
		Enabled: cfg.DetectionDistance > 0,
		Origin:  frame.Position,
		Dir:     frame.Forward(),
		Length:  cfg.DetectionDistance,
	}
	if ray.Enabled {
		if hit, ok := s.World.Raycast(ray.Origin, ray.Dir, ray.Length, cfg.ObstacleMask); ok {
			ray.Hit = true
			ray.HitDistance = hit.Distance
		}
	}

	return RenderContext{
		Frame:          frame,
		View:           s.HUD.View(),
		Waypoints:      s.Controller.Waypoints(),
		Obstacles:      s.World.Obstacles(),
		Ray:            ray,
		Focus:          s.Camera.Focus(),
		CameraHeading:  s.Camera.Heading(),
		Scale:          DefaultScale,
		Slow:           frame.CurrentSpeed == cfg.SlowSpeed && cfg.SlowSpeed != cfg.MoveSpeed,
		ManualSteering: cfg.ManualSteering,
		RealTime:       time.Now(),
		ScreenWidth:    width,
		ScreenHeight:   height,
		ViewportWidth:  width,
		ViewportHeight: max(height-1, 0),
	}
}

// WorldToScreen projects a world point onto the top-down viewport, +Z up and +X right
// Returns (sx, sy, visible) where visible=false if outside viewport bounds
func (rc *RenderContext) WorldToScreen(p mgl64.Vec3) (int, int, bool) {
	scale := rc.Scale
	if scale <= 0 {
		scale = DefaultScale
	}
	fx := float64(rc.ViewportWidth)/2 + (p.X()-rc.Focus.X())*scale
	fy := float64(rc.ViewportHeight)/2 - (p.Z()-rc.Focus.Z())*scale/2
	sx, sy := int(math.Floor(fx)), int(math.Floor(fy))
	visible := sx >= 0 && sx < rc.ViewportWidth && sy >= 0 && sy < rc.ViewportHeight
	return sx, sy, visible
}

// ScreenToWorld inverts WorldToScreen at cell centers, y = 0
func (rc *RenderContext) ScreenToWorld(sx, sy int) mgl64.Vec3 {
	scale := rc.Scale
	if scale <= 0 {
		scale = DefaultScale
	}
	x := rc.Focus.X() + (float64(sx)+0.5-float64(rc.ViewportWidth)/2)/scale
	z := rc.Focus.Z() - (float64(sy)+0.5-float64(rc.ViewportHeight)/2)/(scale/2)
	return mgl64.Vec3{x, 0, z}
}

// StatusRow returns the screen row of the status bar
func (rc *RenderContext) StatusRow() int {
	return rc.ScreenHeight - 1
}

// Rect is a screen rectangle
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the cell x, y lies inside r
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Crash overlay geometry, shared by the overlay renderer and mouse hit tests
const (
	crashPanelW  = 34
	crashPanelH  = 9
	retryButtonW = 14
)

// CrashPanelRect returns the centered crash dialog
func CrashPanelRect(width, height int) Rect {
	w := min(crashPanelW, width)
	h := min(crashPanelH, height)
	return Rect{X: (width - w) / 2, Y: (height - h) / 2, W: w, H: h}
}

// RetryButtonRect returns the retry button inside the crash dialog
func RetryButtonRect(width, height int) Rect {
	p := CrashPanelRect(width, height)
	w := min(retryButtonW, p.W)
	return Rect{X: p.X + (p.W-w)/2, Y: p.Y + p.H - 3, W: w, H: 1}
}
