package vehicle

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lixenwraith/vi-drive/vmath"
)

// Waypoint is a fixed target position; orientation is derived while driving
type Waypoint struct {
	Name     string
	Position mgl64.Vec3
}

// Mode is the controller's top-level state
type Mode uint8

const (
	StateFollowing Mode = iota
	StateCrashed
)

func (m Mode) String() string {
	switch m {
	case StateFollowing:
		return "FOLLOWING"
	case StateCrashed:
		return "CRASHED"
	default:
		return "UNKNOWN"
	}
}

// Phase splits FOLLOWING into driving toward the active waypoint and waiting at it
type Phase uint8

const (
	PhaseDriving Phase = iota
	PhaseWaiting
)

func (p Phase) String() string {
	if p == PhaseWaiting {
		return "waiting"
	}
	return "driving"
}

// Steering records which regime moved the vehicle on the last tick
type Steering uint8

const (
	SteeringAuto Steering = iota
	SteeringManual
)

func (s Steering) String() string {
	if s == SteeringManual {
		return "manual"
	}
	return "auto"
}

// State is the controller's mutable vehicle state, handed out by value
type State struct {
	Position      mgl64.Vec3
	Orientation   mgl64.Quat
	WaypointIndex int
	CurrentSpeed  float64
	ObstacleAhead bool
	Crashed       bool
	LastPosition  mgl64.Vec3

	// Derived each tick from the position and yaw change
	Velocity        mgl64.Vec3
	AngularVelocity float64 // yaw rate, rad/s

	Phase         Phase
	WaitRemaining time.Duration
	Steering      Steering

	// Restart counter, 0 for the first run
	Attempt int
}

// Mode derives the state machine state from the crashed flag
func (s State) Mode() Mode {
	if s.Crashed {
		return StateCrashed
	}
	return StateFollowing
}

// Forward returns the orientation's +Z axis; the obstacle ray and manual steering move along it
func (s State) Forward() mgl64.Vec3 {
	return s.Orientation.Rotate(vmath.Forward)
}

// Nose returns the direction the vehicle model faces, used for heading and drawing
// The model is built facing backward, so its nose is local -Z
func (s State) Nose() mgl64.Vec3 {
	return s.Orientation.Rotate(noseAxis)
}

var noseAxis = mgl64.Vec3{0, 0, -1}

// Snapshot is one published frame of controller state
type Snapshot struct {
	State
	Mode   Mode
	Tick   uint64
	Time   time.Duration
	Target Waypoint

	// Yaw of the orientation's +Z axis and compass heading of the nose, degrees in [0, 360)
	Yaw     float64
	Heading float64

	InstantSpeed float64
}

func newSnapshot(s State, tick uint64, t time.Duration, target Waypoint) Snapshot {
	return Snapshot{
		State:        s,
		Mode:         s.Mode(),
		Tick:         tick,
		Time:         t,
		Target:       target,
		Yaw:          vmath.YawDeg(s.Orientation),
		Heading:      vmath.HeadingDeg(s.Nose()),
		InstantSpeed: s.Velocity.Len(),
	}
}

// ArrivalEvent marks the vehicle reaching the active waypoint, at the start of its wait
type ArrivalEvent struct {
	Index    int
	Waypoint Waypoint
	Tick     uint64
	Time     time.Duration
	Attempt  int
}

// CrashEvent marks the FOLLOWING to CRASHED transition
type CrashEvent struct {
	Other         string
	Point         mgl64.Vec3
	Position      mgl64.Vec3
	WaypointIndex int
	Tick          uint64
	Time          time.Duration
	Attempt       int
}
