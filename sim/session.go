// Package sim wires a scenario into a running vehicle: physics world, body,
// controller, camera and HUD, stepped by a caller-owned clock
package sim

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/vi-drive/camera"
	"github.com/lixenwraith/vi-drive/config"
	"github.com/lixenwraith/vi-drive/physics"
	"github.com/lixenwraith/vi-drive/status"
	"github.com/lixenwraith/vi-drive/vehicle"
	"github.com/lixenwraith/vi-drive/vmath"
)

// Session owns one scenario's runtime objects; not safe for concurrent use
type Session struct {
	Scenario   *config.Scenario
	World      *physics.World
	Body       *physics.Body
	Controller *vehicle.Controller
	Camera     *camera.Follow
	Registry   *status.Registry
	HUD        *status.HUD

	log     zerolog.Logger
	attempt int

	// Camera fixed-rate pass runs once per whole step of the scenario tick
	fixedStep time.Duration
	fixedAcc  time.Duration
}

// SessionOption configures NewSession
type SessionOption func(*sessionOptions)

type sessionOptions struct {
	registry *status.Registry
	sinks    []vehicle.Sink
}

// WithSinks adds sinks that receive controller output after the HUD
func WithSinks(sinks ...vehicle.Sink) SessionOption {
	return func(o *sessionOptions) { o.sinks = append(o.sinks, sinks...) }
}

// WithRegistry shares a metrics registry with other components such as audio
func WithRegistry(reg *status.Registry) SessionOption {
	return func(o *sessionOptions) { o.registry = reg }
}

// NewSession builds the world and controller
func NewSession(sc *config.Scenario, in vehicle.Input, log zerolog.Logger, opts ...SessionOption) (*Session, error) {
	var o sessionOptions
	for _, opt := range opts {
		opt(&o)
	}

	world := physics.NewWorld(sc.ObstacleList())
	waypoints := sc.WaypointList()

	var start mgl64.Vec3
	if len(waypoints) > 0 {
		start = waypoints[0].Position
	}
	body := world.NewBody(start, sc.Vehicle.BodyRadius)

	reg := o.registry
	if reg == nil {
		reg = status.NewRegistry()
	}
	hud := status.NewHUD(reg)
	sink := append(vehicle.MultiSink{hud}, o.sinks...)

	ctrl, err := vehicle.New(sc.VehicleConfig(), waypoints,
		vehicle.Deps{Body: body, Sensor: world, Input: in},
		vehicle.WithLogger(log),
		vehicle.WithSink(sink),
	)
	if err != nil {
		return nil, err
	}
	world.OnCollisionEnter(ctrl.OnCollision)

	s := &Session{
		Scenario:   sc,
		World:      world,
		Body:       body,
		Controller: ctrl,
		Camera:     camera.New(sc.CameraConfig()),
		Registry:   reg,
		HUD:        hud,
		log:        log.With().Str("component", "sim").Logger(),
		fixedStep:  sc.Sim.Step,
	}
	if s.fixedStep <= 0 {
		s.fixedStep = DefaultStep
	}
	s.Camera.Snap(s.Pose())
	// Prime the HUD before the first tick
	hud.Frame(ctrl.Snapshot())

	s.log.Debug().
		Str("scenario", sc.Name).
		Str("preset", sc.Preset).
		Int("obstacles", len(world.Obstacles())).
		Msg("session ready")
	return s, nil
}

// Pose returns the vehicle pose
func (s *Session) Pose() vmath.Pose {
	st := s.Controller.State()
	return vmath.Pose{Position: st.Position, Orientation: st.Orientation}
}

// Step advances the controller and camera by dt
func (s *Session) Step(dt time.Duration) {
	s.Controller.Tick(dt)
	s.sync(dt)
}

// Restart requests a restart outside the tick, as the retry button does
func (s *Session) Restart() bool {
	if !s.Controller.Restart() {
		return false
	}
	s.sync(0)
	return true
}

// sync mirrors controller pose into the body and camera; a new attempt snaps the camera
// Fixed-rate camera passes run before the per-frame one
func (s *Session) sync(dt time.Duration) {
	st := s.Controller.State()
	s.Body.SetRotation(st.Orientation)

	pose := s.Pose()
	if st.Attempt != s.attempt {
		s.attempt = st.Attempt
		s.fixedAcc = 0
		s.Camera.Snap(pose)
		return
	}
	for s.fixedAcc += dt; s.fixedAcc >= s.fixedStep; s.fixedAcc -= s.fixedStep {
		s.Camera.FixedUpdate(pose, s.fixedStep)
	}
	s.Camera.Update(pose, dt)
}
