// Package vehicle drives a car around a circular waypoint list with optional
// manual steering, a forward obstacle ray, and a crash/restart cycle
package vehicle

import (
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/vi-drive/input"
	"github.com/lixenwraith/vi-drive/physics"
	"github.com/lixenwraith/vi-drive/vmath"
)

// Body moves the vehicle collider; collision handlers may run inside MovePosition
type Body interface {
	MovePosition(target mgl64.Vec3) mgl64.Vec3
	Teleport(position mgl64.Vec3, rotation mgl64.Quat)
}

// Sensor answers the forward obstacle query
type Sensor interface {
	Raycast(origin, dir mgl64.Vec3, maxDist float64, mask physics.LayerMask) (physics.Hit, bool)
}

// Input reports held controls and edge-triggered presses for the current tick
type Input interface {
	Held(input.Action) bool
	Pressed(input.Action) bool
}

// Deps are the collaborators injected at construction
type Deps struct {
	Body   Body
	Sensor Sensor
	Input  Input
}

// Option configures a Controller
type Option func(*Controller)

// WithLogger sets the logger, default is disabled
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.log = l.With().Str("component", "vehicle").Logger() }
}

// WithSink sets the output sink
func WithSink(s Sink) Option {
	return func(c *Controller) {
		if s != nil {
			c.sink = s
		}
	}
}

// WithInitialPose starts the vehicle somewhere other than waypoint 0
func WithInitialPose(p vmath.Pose) Option {
	return func(c *Controller) {
		c.initial = p
		c.hasInitial = true
	}
}

// Controller is the FOLLOWING/CRASHED state machine
// Single-threaded: Tick, OnCollision and Restart must be called from one goroutine
type Controller struct {
	cfg       Config
	waypoints []Waypoint
	body      Body
	sensor    Sensor
	input     Input
	sink      Sink
	log       zerolog.Logger

	initial    vmath.Pose
	hasInitial bool
	initErr    error

	state   State
	tick    uint64
	elapsed time.Duration
}

// New validates the configuration and places the vehicle at its initial pose
// A missing Body is reported through InitErr and leaves motion calls as no-ops
func New(cfg Config, waypoints []Waypoint, deps Deps, opts ...Option) (*Controller, error) {
	if len(waypoints) == 0 {
		return nil, configErr("waypoints", ErrNoWaypoints)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Input == nil {
		return nil, configErr("input", ErrMissingCollaborator)
	}
	if deps.Sensor == nil && cfg.DetectionDistance > 0 {
		return nil, configErr("sensor", ErrMissingCollaborator)
	}

	c := &Controller{
		cfg:       cfg,
		waypoints: append([]Waypoint(nil), waypoints...),
		body:      deps.Body,
		sensor:    deps.Sensor,
		input:     deps.Input,
		sink:      NopSink{},
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.body == nil {
		c.initErr = configErr("body", ErrMissingCollaborator)
		c.log.Error().Err(c.initErr).Msg("no rigid body, motion disabled")
	}

	pose := vmath.IdentityPose(c.waypoints[0].Position)
	if c.hasInitial {
		pose = c.initial
		if pose.Orientation == (mgl64.Quat{}) {
			pose.Orientation = mgl64.QuatIdent()
		}
	}
	c.state = State{
		Position:     pose.Position,
		Orientation:  pose.Orientation.Normalize(),
		LastPosition: pose.Position,
		CurrentSpeed: cfg.MoveSpeed,
	}
	if c.body != nil {
		c.body.Teleport(c.state.Position, c.state.Orientation)
	}

	c.log.Info().
		Int("waypoints", len(c.waypoints)).
		Float64("move_speed", cfg.MoveSpeed).
		Float64("tolerance", cfg.ArrivalTolerance).
		Bool("manual", cfg.ManualSteering).
		Msg("controller ready")

	return c, nil
}

// InitErr returns the non-fatal initialization error, if any
func (c *Controller) InitErr() error { return c.initErr }

// Config returns the controller tuning
func (c *Controller) Config() Config { return c.cfg }

// State returns a copy of the current state
func (c *Controller) State() State { return c.state }

// Mode returns FOLLOWING or CRASHED
func (c *Controller) Mode() Mode { return c.state.Mode() }

// Waypoints returns a copy of the waypoint list
func (c *Controller) Waypoints() []Waypoint {
	return append([]Waypoint(nil), c.waypoints...)
}

// Target returns the active waypoint
func (c *Controller) Target() Waypoint {
	return c.waypoints[c.state.WaypointIndex]
}

// Snapshot returns the current frame without advancing time
func (c *Controller) Snapshot() Snapshot {
	return newSnapshot(c.state, c.tick, c.elapsed, c.Target())
}

// Tick advances the vehicle by dt and publishes a frame
func (c *Controller) Tick(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	c.tick++
	c.elapsed += dt

	if c.state.Crashed {
		// Restart is the only input honored while crashed
		if c.input.Pressed(input.ActionRestart) {
			c.Restart()
		}
		c.sink.Frame(c.Snapshot())
		return
	}

	secs := dt.Seconds()
	startPos := c.state.Position
	startYaw := vmath.YawDeg(c.state.Orientation)
	c.state.LastPosition = startPos

	c.checkObstacle()
	c.selectSpeed()

	switch c.state.Phase {
	case PhaseWaiting:
		c.wait(dt)
	case PhaseDriving:
		c.drive(secs)
	}

	if c.state.Crashed {
		c.sink.Frame(c.Snapshot())
		return
	}

	if secs > 0 {
		c.state.Velocity = c.state.Position.Sub(startPos).Mul(1 / secs)
		c.state.AngularVelocity = mgl64.DegToRad(vmath.DeltaDeg(startYaw, vmath.YawDeg(c.state.Orientation))) / secs
	} else {
		c.state.Velocity = mgl64.Vec3{}
		c.state.AngularVelocity = 0
	}

	c.sink.Frame(c.Snapshot())
}

// checkObstacle casts the ray along the forward axis; observation only
func (c *Controller) checkObstacle() {
	if c.cfg.DetectionDistance <= 0 || c.sensor == nil {
		c.state.ObstacleAhead = false
		return
	}
	hit, ok := c.sensor.Raycast(c.state.Position, c.state.Forward(), c.cfg.DetectionDistance, c.cfg.ObstacleMask)
	if ok && !c.state.ObstacleAhead {
		c.log.Warn().
			Str("obstacle", hit.Obstacle).
			Float64("distance", hit.Distance).
			Msg("obstacle ahead")
	}
	c.state.ObstacleAhead = ok
}

func (c *Controller) selectSpeed() {
	if c.input.Held(input.ActionSlow) {
		c.state.CurrentSpeed = c.cfg.SlowSpeed
	} else {
		c.state.CurrentSpeed = c.cfg.MoveSpeed
	}
}

// wait counts down the pause at a reached waypoint, leftover dt is dropped
func (c *Controller) wait(dt time.Duration) {
	c.state.WaitRemaining -= dt
	if c.state.WaitRemaining > 0 {
		return
	}
	c.state.WaitRemaining = 0
	c.state.WaypointIndex = (c.state.WaypointIndex + 1) % len(c.waypoints)
	c.state.Phase = PhaseDriving
	c.log.Debug().Int("waypoint", c.state.WaypointIndex).Msg("heading to next waypoint")
}

func (c *Controller) drive(secs float64) {
	target := c.Target()
	if vmath.Distance(c.state.Position, target.Position) <= c.cfg.ArrivalTolerance {
		c.arrive(target)
		return
	}

	steer := c.steerInput()
	if c.cfg.ManualSteering && steer != 0 && c.input.Held(input.ActionSlow) {
		c.state.Steering = SteeringManual
		c.state.Orientation = c.state.Orientation.Mul(vmath.YawRotation(steer * c.cfg.SteeringRate * secs)).Normalize()
		next := c.state.Position.Add(c.state.Forward().Mul(c.cfg.SlowSpeed * secs))
		c.moveTo(next)
		return
	}

	c.state.Steering = SteeringAuto
	if look, ok := vmath.LookRotation(target.Position.Sub(c.state.Position)); ok {
		goal := look.Mul(vmath.YawRotation(modelYawOffset))
		c.state.Orientation = vmath.Slerp(c.state.Orientation, goal, c.cfg.RotationSpeed*secs)
	}
	c.moveTo(vmath.MoveTowards(c.state.Position, target.Position, c.state.CurrentSpeed*secs))
}

// steerInput returns -1 for left, +1 for right, 0 for none or both
func (c *Controller) steerInput() float64 {
	var steer float64
	if c.input.Held(input.ActionSteerLeft) {
		steer--
	}
	if c.input.Held(input.ActionSteerRight) {
		steer++
	}
	return steer
}

// moveTo routes the move through the body; a crash raised inside the move discards the result
func (c *Controller) moveTo(target mgl64.Vec3) {
	if c.body == nil {
		return
	}
	resolved := c.body.MovePosition(target)
	if c.state.Crashed {
		return
	}
	c.state.Position = resolved
}

func (c *Controller) arrive(target Waypoint) {
	c.state.Phase = PhaseWaiting
	c.state.WaitRemaining = c.cfg.WaitTime
	c.log.Info().
		Int("waypoint", c.state.WaypointIndex).
		Str("name", target.Name).
		Int("attempt", c.state.Attempt).
		Msg("waypoint reached")
	c.sink.Arrived(ArrivalEvent{
		Index:    c.state.WaypointIndex,
		Waypoint: target,
		Tick:     c.tick,
		Time:     c.elapsed,
		Attempt:  c.state.Attempt,
	})
}

// OnCollision handles a collision-enter event from the physics feed
func (c *Controller) OnCollision(col physics.Collision) {
	if c.state.Crashed {
		return
	}
	if !c.isObstacle(col.Other) {
		c.log.Debug().Str("other", col.Other).Msg("collision ignored")
		return
	}
	if !c.cfg.CrashEnabled {
		c.log.Info().Str("other", col.Other).Msg("hit obstacle")
		return
	}

	c.state.Crashed = true
	c.state.Phase = PhaseDriving
	c.state.WaitRemaining = 0
	c.state.Velocity = mgl64.Vec3{}
	c.state.AngularVelocity = 0

	c.log.Warn().
		Str("other", col.Other).
		Int("waypoint", c.state.WaypointIndex).
		Int("attempt", c.state.Attempt).
		Msg("crashed")
	c.sink.Crashed(CrashEvent{
		Other:         col.Other,
		Point:         col.Point,
		Position:      c.state.Position,
		WaypointIndex: c.state.WaypointIndex,
		Tick:          c.tick,
		Time:          c.elapsed,
		Attempt:       c.state.Attempt,
	})
}

func (c *Controller) isObstacle(name string) bool {
	return strings.Contains(name, c.cfg.ObstacleTag)
}

// Restart resets a crashed vehicle to waypoint 0; ignored while FOLLOWING
func (c *Controller) Restart() bool {
	if !c.state.Crashed {
		return false
	}

	start := c.waypoints[0].Position
	attempt := c.state.Attempt + 1

	// Reset order: pose, index, velocities, crashed; wait cleared with them
	c.state = State{
		Position:        start,
		Orientation:     mgl64.QuatIdent(),
		WaypointIndex:   0,
		Velocity:        mgl64.Vec3{},
		AngularVelocity: 0,
		Crashed:         false,
		LastPosition:    start,
		CurrentSpeed:    c.cfg.MoveSpeed,
		Phase:           PhaseDriving,
		Attempt:         attempt,
	}
	if c.body != nil {
		c.body.Teleport(start, c.state.Orientation)
	}

	c.log.Info().Int("attempt", attempt).Msg("restarted")
	c.sink.Restarted(c.Snapshot())
	return true
}

