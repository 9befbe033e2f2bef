package vehicle

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vi-drive/input"
	"github.com/lixenwraith/vi-drive/physics"
	"github.com/lixenwraith/vi-drive/vmath"
)

const eps = 1e-9

type fakeInput struct {
	held    map[input.Action]bool
	pressed map[input.Action]bool
}

func newFakeInput() *fakeInput {
	return &fakeInput{held: map[input.Action]bool{}, pressed: map[input.Action]bool{}}
}

func (f *fakeInput) Held(a input.Action) bool    { return f.held[a] }
func (f *fakeInput) Pressed(a input.Action) bool { return f.pressed[a] }

type fakeBody struct {
	pos       mgl64.Vec3
	rot       mgl64.Quat
	moves     int
	teleports int
	// onMove runs inside MovePosition; returning true blocks the move
	onMove func(target mgl64.Vec3) bool
}

func (b *fakeBody) MovePosition(target mgl64.Vec3) mgl64.Vec3 {
	b.moves++
	if b.onMove != nil && b.onMove(target) {
		return b.pos
	}
	b.pos = target
	return b.pos
}

func (b *fakeBody) Teleport(p mgl64.Vec3, q mgl64.Quat) {
	b.teleports++
	b.pos = p
	b.rot = q
}

type fakeSensor struct {
	hit     bool
	calls   int
	lastDir mgl64.Vec3
	lastMax float64
}

func (s *fakeSensor) Raycast(origin, dir mgl64.Vec3, maxDist float64, mask physics.LayerMask) (physics.Hit, bool) {
	s.calls++
	s.lastDir = dir
	s.lastMax = maxDist
	if !s.hit {
		return physics.Hit{}, false
	}
	return physics.Hit{Obstacle: "Obstacle_A", Distance: maxDist / 2}, true
}

type recordSink struct {
	frames   []Snapshot
	arrivals []ArrivalEvent
	crashes  []CrashEvent
	restarts []Snapshot
}

func (r *recordSink) Frame(s Snapshot)       { r.frames = append(r.frames, s) }
func (r *recordSink) Arrived(e ArrivalEvent) { r.arrivals = append(r.arrivals, e) }
func (r *recordSink) Crashed(e CrashEvent)   { r.crashes = append(r.crashes, e) }
func (r *recordSink) Restarted(s Snapshot)   { r.restarts = append(r.restarts, s) }

var triangle = []Waypoint{
	{Name: "A", Position: mgl64.Vec3{0, 0, 0}},
	{Name: "B", Position: mgl64.Vec3{10, 0, 0}},
	{Name: "C", Position: mgl64.Vec3{10, 0, 10}},
}

type harness struct {
	ctrl   *Controller
	body   *fakeBody
	sensor *fakeSensor
	in     *fakeInput
	sink   *recordSink
}

func newHarness(t *testing.T, cfg Config, wps []Waypoint, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		body:   &fakeBody{},
		sensor: &fakeSensor{},
		in:     newFakeInput(),
		sink:   &recordSink{},
	}
	opts = append([]Option{WithSink(h.sink)}, opts...)
	ctrl, err := New(cfg, wps, Deps{Body: h.body, Sensor: h.sensor, Input: h.in}, opts...)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	h.ctrl = ctrl
	return h
}

func (h *harness) run(n int, dt time.Duration) {
	for i := 0; i < n; i++ {
		h.ctrl.Tick(dt)
	}
}

func TestNewRejectsEmptyWaypoints(t *testing.T) {
	ctrl, err := New(DefaultConfig(), nil, Deps{Body: &fakeBody{}, Sensor: &fakeSensor{}, Input: newFakeInput()})
	if ctrl != nil {
		t.Error("Expected no controller for empty waypoint list")
	}
	if !errors.Is(err, ErrNoWaypoints) {
		t.Fatalf("Expected ErrNoWaypoints, got %v", err)
	}
	var cerr *ConfigError
	if !errors.As(err, &cerr) || cerr.Field != "waypoints" {
		t.Errorf("Expected *ConfigError for waypoints, got %#v", err)
	}
}

func TestNewMissingCollaborators(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		deps    Deps
		wantErr bool
	}{
		{"no input", WaypointConfig(), Deps{Body: &fakeBody{}}, true},
		{"no sensor with detection", AvoidanceConfig(), Deps{Body: &fakeBody{}, Input: newFakeInput()}, true},
		{"no sensor without detection", WaypointConfig(), Deps{Body: &fakeBody{}, Input: newFakeInput()}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, triangle, tt.deps)
			if tt.wantErr && !errors.Is(err, ErrMissingCollaborator) {
				t.Errorf("Expected ErrMissingCollaborator, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := AvoidanceConfig()
	cfg.SlowSpeed = cfg.MoveSpeed

	_, err := New(cfg, triangle, Deps{Body: &fakeBody{}, Sensor: &fakeSensor{}, Input: newFakeInput()})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Expected ErrInvalidConfig, got %v", err)
	}
	var cerr *ConfigError
	if !errors.As(err, &cerr) || cerr.Field != "SlowSpeed" {
		t.Errorf("Expected SlowSpeed field error, got %v", err)
	}
}

func TestPresetsValidate(t *testing.T) {
	for name, cfg := range map[string]Config{"avoidance": AvoidanceConfig(), "waypoint": WaypointConfig()} {
		if err := cfg.Validate(); err != nil {
			t.Errorf("Expected %s preset valid, got %v", name, err)
		}
	}
}

func TestMissingBodyDisablesMotion(t *testing.T) {
	in := newFakeInput()
	start := mgl64.Vec3{10, 0, 0}
	ctrl, err := New(WaypointConfig(), triangle, Deps{Input: in}, WithInitialPose(vmath.IdentityPose(start)))
	if err != nil {
		t.Fatalf("Expected controller despite missing body, got %v", err)
	}
	if !errors.Is(ctrl.InitErr(), ErrMissingCollaborator) {
		t.Errorf("Expected InitErr to report missing body, got %v", ctrl.InitErr())
	}

	ctrl.Tick(100 * time.Millisecond)
	st := ctrl.State()
	if st.Position != start {
		t.Errorf("Expected position unchanged without body, got %v", st.Position)
	}
	if vmath.SameRotation(st.Orientation, mgl64.QuatIdent(), 1e-12) {
		t.Error("Expected orientation to keep updating without body")
	}
}

func TestScenarioVisitsWaypointsInCyclicOrder(t *testing.T) {
	h := newHarness(t, WaypointConfig(), triangle)

	dt := 20 * time.Millisecond
	for i := 0; i < 1500; i++ { // 30s
		h.ctrl.Tick(dt)
		if idx := h.ctrl.State().WaypointIndex; idx < 0 || idx >= len(triangle) {
			t.Fatalf("Index %d out of range at tick %d", idx, i)
		}
	}

	if len(h.sink.arrivals) < 6 {
		t.Fatalf("Expected at least 6 arrivals in 30s, got %d", len(h.sink.arrivals))
	}
	for i, a := range h.sink.arrivals {
		if a.Index != i%len(triangle) {
			t.Fatalf("Arrival %d: expected index %d, got %d", i, i%len(triangle), a.Index)
		}
		if vmath.Distance(a.Waypoint.Position, triangle[a.Index].Position) > eps {
			t.Errorf("Arrival %d: waypoint mismatch", i)
		}
	}
}

func TestIndexStrictlyAdvances(t *testing.T) {
	h := newHarness(t, WaypointConfig(), triangle)

	prev := h.ctrl.State().WaypointIndex
	changes := 0
	for i := 0; i < 500; i++ {
		h.ctrl.Tick(20 * time.Millisecond)
		idx := h.ctrl.State().WaypointIndex
		if idx != prev {
			if idx != (prev+1)%len(triangle) {
				t.Fatalf("Index skipped from %d to %d", prev, idx)
			}
			changes++
			prev = idx
		}
	}
	if changes == 0 {
		t.Error("Expected index to advance within 10s")
	}
}

func TestArrivalTolerance(t *testing.T) {
	cfg := AvoidanceConfig()
	wps := []Waypoint{{Position: mgl64.Vec3{0, 0, 0}}, {Position: mgl64.Vec3{0, 0, 30}}}
	const e = 1e-6

	t.Run("inside", func(t *testing.T) {
		pose := vmath.IdentityPose(mgl64.Vec3{0, 0, cfg.ArrivalTolerance - e})
		h := newHarness(t, cfg, wps, WithInitialPose(pose))

		h.ctrl.Tick(time.Millisecond)
		st := h.ctrl.State()
		if st.Phase != PhaseWaiting || len(h.sink.arrivals) != 1 {
			t.Fatalf("Expected arrival inside tolerance, phase %s arrivals %d", st.Phase, len(h.sink.arrivals))
		}
		if st.Position != pose.Position {
			t.Error("Expected no motion on the arrival tick")
		}

		h.ctrl.Tick(500 * time.Millisecond)
		if h.ctrl.State().WaypointIndex != 0 {
			t.Error("Expected index unchanged mid-wait")
		}
		h.ctrl.Tick(500 * time.Millisecond)
		if got := h.ctrl.State().WaypointIndex; got != 1 {
			t.Errorf("Expected index 1 after wait, got %d", got)
		}
	})

	t.Run("outside", func(t *testing.T) {
		pose := vmath.IdentityPose(mgl64.Vec3{0, 0, cfg.ArrivalTolerance + e})
		h := newHarness(t, cfg, wps, WithInitialPose(pose))

		h.ctrl.Tick(time.Millisecond)
		st := h.ctrl.State()
		if st.Phase != PhaseDriving || len(h.sink.arrivals) != 0 {
			t.Errorf("Expected no arrival outside tolerance, phase %s arrivals %d", st.Phase, len(h.sink.arrivals))
		}
		if st.WaypointIndex != 0 {
			t.Errorf("Expected index 0, got %d", st.WaypointIndex)
		}
	})
}

func TestNoMotionWhileWaiting(t *testing.T) {
	h := newHarness(t, WaypointConfig(), triangle)

	h.ctrl.Tick(10 * time.Millisecond) // arrives at waypoint 0
	before := h.ctrl.State()
	if before.Phase != PhaseWaiting {
		t.Fatalf("Expected waiting, got %s", before.Phase)
	}

	h.in.held[input.ActionSlow] = true
	h.in.held[input.ActionSteerLeft] = true
	h.run(10, 50*time.Millisecond)

	st := h.ctrl.State()
	if st.Position != before.Position || st.Orientation != before.Orientation {
		t.Error("Expected pose frozen during wait")
	}
	if st.WaitRemaining != 500*time.Millisecond {
		t.Errorf("Expected 500ms left, got %v", st.WaitRemaining)
	}
}

func TestManualSteeringYaw(t *testing.T) {
	cfg := AvoidanceConfig()
	cfg.DetectionDistance = 0
	start := mgl64.Vec3{0, 0, 100}
	h := newHarness(t, cfg, triangle, WithInitialPose(vmath.IdentityPose(start)))

	initial := vmath.YawDeg(h.ctrl.State().Orientation)
	h.in.held[input.ActionSlow] = true
	h.in.held[input.ActionSteerLeft] = true

	h.run(50, 20*time.Millisecond) // 1s

	st := h.ctrl.State()
	if st.Steering != SteeringManual {
		t.Fatalf("Expected manual steering, got %s", st.Steering)
	}
	want := vmath.WrapDeg(initial - cfg.SteeringRate)
	got := vmath.YawDeg(st.Orientation)
	if math.Abs(vmath.DeltaDeg(want, got)) > 1e-6 {
		t.Errorf("Expected yaw %.6f, got %.6f", want, got)
	}

	// Arc length at slow speed
	travelled := 0.0
	prev := start
	for _, f := range h.sink.frames {
		travelled += vmath.Distance(prev, f.Position)
		prev = f.Position
	}
	if math.Abs(travelled-cfg.SlowSpeed) > 1e-6 {
		t.Errorf("Expected %.3f units travelled, got %.6f", cfg.SlowSpeed, travelled)
	}
	if math.Abs(st.AngularVelocity-mgl64.DegToRad(-cfg.SteeringRate)) > 1e-6 {
		t.Errorf("Expected yaw rate %.6f rad/s, got %.6f", mgl64.DegToRad(-cfg.SteeringRate), st.AngularVelocity)
	}
}

func TestManualMovesAlongForwardAxis(t *testing.T) {
	cfg := AvoidanceConfig()
	cfg.DetectionDistance = 0
	start := mgl64.Vec3{0, 0, 100}
	h := newHarness(t, cfg, triangle, WithInitialPose(vmath.IdentityPose(start)))
	h.in.held[input.ActionSlow] = true
	h.in.held[input.ActionSteerLeft] = true

	dt := 20 * time.Millisecond
	h.ctrl.Tick(dt)

	st := h.ctrl.State()
	if st.Steering != SteeringManual {
		t.Fatalf("Expected manual steering, got %s", st.Steering)
	}
	delta := st.Position.Sub(start)
	want := st.Forward().Mul(cfg.SlowSpeed * dt.Seconds())
	if delta.Sub(want).Len() > eps {
		t.Errorf("Expected step %v along the forward axis, got %v", want, delta)
	}
	if delta.Z() <= 0 {
		t.Errorf("Expected step toward +Z from identity, got %v", delta)
	}
	if st.Forward().Dot(st.Nose()) > -1+eps {
		t.Errorf("Expected nose opposite forward, got forward %v nose %v", st.Forward(), st.Nose())
	}
}

func TestManualNeedsSlowModifier(t *testing.T) {
	cfg := AvoidanceConfig()
	h := newHarness(t, cfg, triangle, WithInitialPose(vmath.IdentityPose(mgl64.Vec3{0, 0, 50})))

	h.in.held[input.ActionSteerRight] = true
	h.ctrl.Tick(20 * time.Millisecond)

	st := h.ctrl.State()
	if st.Steering != SteeringAuto {
		t.Errorf("Expected auto without slow held, got %s", st.Steering)
	}
	if st.CurrentSpeed != cfg.MoveSpeed {
		t.Errorf("Expected move speed %v, got %v", cfg.MoveSpeed, st.CurrentSpeed)
	}
}

func TestLeftAndRightTogetherFallsBackToAuto(t *testing.T) {
	cfg := AvoidanceConfig()
	start := mgl64.Vec3{0, 0, 50}
	h := newHarness(t, cfg, triangle, WithInitialPose(vmath.IdentityPose(start)))

	h.in.held[input.ActionSlow] = true
	h.in.held[input.ActionSteerLeft] = true
	h.in.held[input.ActionSteerRight] = true

	dt := 100 * time.Millisecond
	h.ctrl.Tick(dt)

	st := h.ctrl.State()
	if st.Steering != SteeringAuto {
		t.Fatalf("Expected auto steering, got %s", st.Steering)
	}
	if st.CurrentSpeed != cfg.SlowSpeed {
		t.Errorf("Expected slow speed %v, got %v", cfg.SlowSpeed, st.CurrentSpeed)
	}
	want := vmath.MoveTowards(start, triangle[0].Position, cfg.SlowSpeed*dt.Seconds())
	if vmath.Distance(st.Position, want) > eps {
		t.Errorf("Expected %v, got %v", want, st.Position)
	}
}

func TestManualDisabledInWaypointPreset(t *testing.T) {
	h := newHarness(t, WaypointConfig(), triangle, WithInitialPose(vmath.IdentityPose(mgl64.Vec3{0, 0, 50})))
	h.in.held[input.ActionSlow] = true
	h.in.held[input.ActionSteerLeft] = true

	h.ctrl.Tick(20 * time.Millisecond)
	if h.ctrl.State().Steering != SteeringAuto {
		t.Error("Expected manual steering ignored when disabled")
	}
}

func TestNoseTurnsTowardWaypoint(t *testing.T) {
	cfg := WaypointConfig()
	cfg.RotationSpeed = 100 // t clamps to 1 within one tick
	h := newHarness(t, cfg, triangle, WithInitialPose(vmath.IdentityPose(mgl64.Vec3{10, 0, 0})))

	// Start at B while A is still the active target
	h.ctrl.Tick(20 * time.Millisecond)

	nose := h.ctrl.State().Nose()
	want := mgl64.Vec3{-1, 0, 0}
	if nose.Sub(want).Len() > 1e-9 {
		t.Errorf("Expected nose %v, got %v", want, nose)
	}
	if snap := h.sink.frames[0]; math.Abs(snap.Heading-270) > 1e-6 {
		t.Errorf("Expected heading 270, got %.6f", snap.Heading)
	}
}

func TestRotationIsGradual(t *testing.T) {
	cfg := WaypointConfig()
	h := newHarness(t, cfg, triangle, WithInitialPose(vmath.IdentityPose(mgl64.Vec3{10, 0, 0})))

	h.ctrl.Tick(20 * time.Millisecond)

	// Slerp factor 0.04 of a 90 degree turn
	yaw := vmath.YawDeg(h.ctrl.State().Orientation)
	if math.Abs(vmath.DeltaDeg(0, yaw)-3.6) > 1e-6 {
		t.Errorf("Expected 3.6 degree step, got %.6f", vmath.DeltaDeg(0, yaw))
	}
}

func TestObstacleAheadIsObservationOnly(t *testing.T) {
	cfg := AvoidanceConfig()
	start := mgl64.Vec3{0, 0, 50}

	clear := newHarness(t, cfg, triangle, WithInitialPose(vmath.IdentityPose(start)))
	blocked := newHarness(t, cfg, triangle, WithInitialPose(vmath.IdentityPose(start)))
	blocked.sensor.hit = true

	clear.ctrl.Tick(50 * time.Millisecond)
	blocked.ctrl.Tick(50 * time.Millisecond)

	if clear.ctrl.State().ObstacleAhead {
		t.Error("Expected no obstacle ahead")
	}
	if !blocked.ctrl.State().ObstacleAhead {
		t.Error("Expected obstacle ahead")
	}
	if clear.ctrl.State().Position != blocked.ctrl.State().Position {
		t.Error("Expected the ray to have no effect on motion")
	}

	// Ray uses the forward axis of the pre-tick orientation, not the nose
	if blocked.sensor.lastDir.Sub(mgl64.Vec3{0, 0, 1}).Len() > eps {
		t.Errorf("Expected ray along +Z, got %v", blocked.sensor.lastDir)
	}
	if blocked.sensor.lastMax != cfg.DetectionDistance {
		t.Errorf("Expected ray length %v, got %v", cfg.DetectionDistance, blocked.sensor.lastMax)
	}
}

func TestCrashFreezesState(t *testing.T) {
	h := newHarness(t, AvoidanceConfig(), triangle, WithInitialPose(vmath.IdentityPose(mgl64.Vec3{0, 0, 50})))
	h.run(5, 20*time.Millisecond)

	h.ctrl.OnCollision(physics.Collision{Other: "Obstacle_Cube"})
	if h.ctrl.Mode() != StateCrashed {
		t.Fatalf("Expected CRASHED, got %s", h.ctrl.Mode())
	}
	frozen := h.ctrl.State()
	moves := h.body.moves

	h.in.held[input.ActionSlow] = true
	h.in.held[input.ActionSteerRight] = true
	h.in.pressed[input.ActionMute] = true
	h.run(100, 20*time.Millisecond)

	st := h.ctrl.State()
	if st.Position != frozen.Position || st.Orientation != frozen.Orientation || st.WaypointIndex != frozen.WaypointIndex {
		t.Error("Expected pose and index frozen while crashed")
	}
	if h.body.moves != moves {
		t.Error("Expected no body moves while crashed")
	}

	h.ctrl.OnCollision(physics.Collision{Other: "Obstacle_Cube"})
	if len(h.sink.crashes) != 1 {
		t.Errorf("Expected one crash event, got %d", len(h.sink.crashes))
	}
}

func TestCollisionDuringTickCrashesImmediately(t *testing.T) {
	h := newHarness(t, AvoidanceConfig(), triangle, WithInitialPose(vmath.IdentityPose(mgl64.Vec3{0, 0, 50})))

	const n = 7
	tick := 0
	h.body.onMove = func(mgl64.Vec3) bool {
		if tick == n {
			h.ctrl.OnCollision(physics.Collision{Other: "Obstacle_Barrier", Point: mgl64.Vec3{0, 0, 40}})
			return true
		}
		return false
	}

	var before State
	for tick = 0; tick <= n; tick++ {
		before = h.ctrl.State()
		h.ctrl.Tick(20 * time.Millisecond)
	}

	st := h.ctrl.State()
	if st.Mode() != StateCrashed {
		t.Fatalf("Expected CRASHED after collision tick, got %s", st.Mode())
	}
	if st.Position != before.Position {
		t.Error("Expected position from the crash tick discarded")
	}
	if st.Velocity != (mgl64.Vec3{}) {
		t.Error("Expected velocity zeroed on crash")
	}

	h.ctrl.Tick(20 * time.Millisecond)
	if h.ctrl.Mode() != StateCrashed {
		t.Error("Expected CRASHED on the following tick")
	}
	if len(h.sink.crashes) != 1 || h.sink.crashes[0].Other != "Obstacle_Barrier" {
		t.Errorf("Expected one crash event for Obstacle_Barrier, got %+v", h.sink.crashes)
	}
}

func TestCollisionFiltering(t *testing.T) {
	h := newHarness(t, AvoidanceConfig(), triangle)
	h.ctrl.OnCollision(physics.Collision{Other: "Ground"})
	if h.ctrl.Mode() != StateFollowing {
		t.Error("Expected non-obstacle collision ignored")
	}

	cfg := WaypointConfig()
	w := newHarness(t, cfg, triangle)
	w.ctrl.OnCollision(physics.Collision{Other: "Obstacle_1"})
	if w.ctrl.Mode() != StateFollowing {
		t.Error("Expected collision ignored with crash disabled")
	}

	cfg = AvoidanceConfig()
	cfg.ObstacleTag = ""
	all := newHarness(t, cfg, triangle)
	all.ctrl.OnCollision(physics.Collision{Other: "Ground"})
	if all.ctrl.Mode() != StateCrashed {
		t.Error("Expected empty tag to match any collider")
	}
}

func TestCrashDuringWait(t *testing.T) {
	h := newHarness(t, AvoidanceConfig(), triangle)
	h.ctrl.Tick(10 * time.Millisecond)
	if h.ctrl.State().Phase != PhaseWaiting {
		t.Fatal("Expected waiting at waypoint 0")
	}

	h.ctrl.OnCollision(physics.Collision{Other: "Obstacle_Moving"})
	st := h.ctrl.State()
	if !st.Crashed || st.WaitRemaining != 0 {
		t.Fatalf("Expected crash to clear the wait, got %+v", st)
	}

	// A stale wait must not advance the index after crash or restart
	h.run(100, 20*time.Millisecond)
	if h.ctrl.State().WaypointIndex != 0 {
		t.Error("Expected index frozen")
	}
	h.ctrl.Restart()
	if h.ctrl.State().Phase != PhaseDriving {
		t.Error("Expected restart to resume driving")
	}
}

func TestRestartResetsState(t *testing.T) {
	h := newHarness(t, AvoidanceConfig(), triangle, WithInitialPose(vmath.Pose{
		Position:    mgl64.Vec3{0, 0, 50},
		Orientation: vmath.YawRotation(45),
	}))
	h.run(20, 20*time.Millisecond)
	h.ctrl.OnCollision(physics.Collision{Other: "Obstacle_Cube"})

	h.in.pressed[input.ActionRestart] = true
	h.ctrl.Tick(20 * time.Millisecond)

	st := h.ctrl.State()
	if st.Crashed {
		t.Fatal("Expected FOLLOWING after restart")
	}
	if st.Position != triangle[0].Position {
		t.Errorf("Expected position %v, got %v", triangle[0].Position, st.Position)
	}
	if st.Orientation != mgl64.QuatIdent() {
		t.Errorf("Expected identity orientation, got %v", st.Orientation)
	}
	if st.WaypointIndex != 0 {
		t.Errorf("Expected index 0, got %d", st.WaypointIndex)
	}
	if st.Velocity != (mgl64.Vec3{}) || st.AngularVelocity != 0 {
		t.Error("Expected velocities zeroed")
	}
	if st.Attempt != 1 {
		t.Errorf("Expected attempt 1, got %d", st.Attempt)
	}
	if h.body.pos != triangle[0].Position || h.body.rot != mgl64.QuatIdent() {
		t.Error("Expected body teleported to start")
	}
	if len(h.sink.restarts) != 1 {
		t.Errorf("Expected one restart event, got %d", len(h.sink.restarts))
	}
}

func TestRestartWhileFollowingIsNoop(t *testing.T) {
	h := newHarness(t, AvoidanceConfig(), triangle, WithInitialPose(vmath.IdentityPose(mgl64.Vec3{0, 0, 50})))
	h.run(10, 20*time.Millisecond)

	before := h.ctrl.State()
	teleports := h.body.teleports
	if h.ctrl.Restart() {
		t.Error("Expected restart rejected while following")
	}
	if h.ctrl.State() != before {
		t.Error("Expected state unchanged")
	}
	if h.body.teleports != teleports || len(h.sink.restarts) != 0 {
		t.Error("Expected no side effects")
	}

	// Pressed restart during a FOLLOWING tick has no special effect either
	h.in.pressed[input.ActionRestart] = true
	h.ctrl.Tick(20 * time.Millisecond)
	if h.ctrl.State().Attempt != 0 {
		t.Error("Expected attempt unchanged")
	}
}

func TestRandomizedIndexInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	h := newHarness(t, AvoidanceConfig(), triangle)

	actions := []input.Action{input.ActionSlow, input.ActionSteerLeft, input.ActionSteerRight}
	for i := 0; i < 5000; i++ {
		for _, a := range actions {
			h.in.held[a] = rng.Intn(3) == 0
		}
		h.in.pressed[input.ActionRestart] = rng.Intn(50) == 0
		if rng.Intn(200) == 0 {
			h.ctrl.OnCollision(physics.Collision{Other: "Obstacle"})
		}

		h.ctrl.Tick(time.Duration(rng.Intn(40)) * time.Millisecond)

		st := h.ctrl.State()
		if st.WaypointIndex < 0 || st.WaypointIndex >= len(triangle) {
			t.Fatalf("Index %d out of range at step %d", st.WaypointIndex, i)
		}
		if math.IsNaN(st.Position.Len()) || math.IsNaN(st.Orientation.Len()) {
			t.Fatalf("NaN pose at step %d", i)
		}
	}
}

func TestZeroDirectionSkipsRotation(t *testing.T) {
	cfg := WaypointConfig()
	cfg.ArrivalTolerance = 0
	start := vmath.Pose{Position: mgl64.Vec3{1e-12, 0, 0}, Orientation: vmath.YawRotation(30)}
	h := newHarness(t, cfg, triangle, WithInitialPose(start))

	h.ctrl.Tick(20 * time.Millisecond)
	st := h.ctrl.State()
	if math.IsNaN(st.Orientation.W) || math.IsNaN(st.Orientation.V.Len()) {
		t.Fatal("Expected no NaN for a degenerate direction")
	}
	if st.Orientation != start.Orientation.Normalize() {
		t.Errorf("Expected rotation skipped, got %v", st.Orientation)
	}
	if st.Position != triangle[0].Position {
		t.Errorf("Expected move to land on the waypoint, got %v", st.Position)
	}
}

func TestSnapshotFields(t *testing.T) {
	h := newHarness(t, WaypointConfig(), triangle, WithInitialPose(vmath.IdentityPose(mgl64.Vec3{0, 0, 5})))
	h.ctrl.Tick(100 * time.Millisecond)

	snap := h.sink.frames[len(h.sink.frames)-1]
	if snap.Tick != 1 || snap.Time != 100*time.Millisecond {
		t.Errorf("Expected tick 1 at 100ms, got %d at %v", snap.Tick, snap.Time)
	}
	if snap.Mode != StateFollowing || snap.Target.Name != "A" {
		t.Errorf("Unexpected mode/target %s/%s", snap.Mode, snap.Target.Name)
	}
	if math.Abs(snap.InstantSpeed-5) > 1e-9 {
		t.Errorf("Expected instant speed 5, got %.9f", snap.InstantSpeed)
	}
	if snap.LastPosition != (mgl64.Vec3{0, 0, 5}) {
		t.Errorf("Expected last position at start, got %v", snap.LastPosition)
	}
}

func TestMultiSinkFanOut(t *testing.T) {
	a, b := &recordSink{}, &recordSink{}
	m := MultiSink{a, nil, b}
	m.Frame(Snapshot{})
	m.Arrived(ArrivalEvent{})
	m.Crashed(CrashEvent{})
	m.Restarted(Snapshot{})
	for i, r := range []*recordSink{a, b} {
		if len(r.frames) != 1 || len(r.arrivals) != 1 || len(r.crashes) != 1 || len(r.restarts) != 1 {
			t.Errorf("Sink %d missed events", i)
		}
	}
}
