package status

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/vi-drive/vehicle"
)

// Metric names published by HUD
const (
	MetricTick         = "vehicle.tick"
	MetricWaypoint     = "vehicle.waypoint"
	MetricAttempt      = "vehicle.attempt"
	MetricArrivals     = "vehicle.arrivals"
	MetricCrashes      = "vehicle.crashes"
	MetricRestarts     = "vehicle.restarts"
	MetricElapsedMs    = "vehicle.elapsed_ms"
	MetricSpeed        = "vehicle.speed"
	MetricInstantSpeed = "vehicle.instant_speed"
	MetricHeading      = "vehicle.heading"
	MetricWait         = "vehicle.wait"
	MetricCrashed      = "vehicle.crashed"
	MetricObstacle     = "vehicle.obstacle_ahead"
	MetricMode         = "vehicle.mode"
	MetricPhase        = "vehicle.phase"
	MetricSteering     = "vehicle.steering"
	MetricTarget       = "vehicle.target"
	MetricLastHit      = "vehicle.last_hit"
)

// HUD mirrors controller output into the registry for the renderer and summaries
type HUD struct {
	tick      *atomic.Int64
	waypoint  *atomic.Int64
	attempt   *atomic.Int64
	arrivals  *atomic.Int64
	crashes   *atomic.Int64
	restarts  *atomic.Int64
	elapsedMs *atomic.Int64

	speed        *AtomicFloat
	instantSpeed *AtomicFloat
	heading      *AtomicFloat
	wait         *AtomicFloat

	crashed  *atomic.Bool
	obstacle *atomic.Bool

	mode     *AtomicString
	phase    *AtomicString
	steering *AtomicString
	target   *AtomicString
	lastHit  *AtomicString
}

// NewHUD registers the vehicle metrics and caches their pointers
func NewHUD(reg *Registry) *HUD {
	return &HUD{
		tick:         reg.Ints.Get(MetricTick),
		waypoint:     reg.Ints.Get(MetricWaypoint),
		attempt:      reg.Ints.Get(MetricAttempt),
		arrivals:     reg.Ints.Get(MetricArrivals),
		crashes:      reg.Ints.Get(MetricCrashes),
		restarts:     reg.Ints.Get(MetricRestarts),
		elapsedMs:    reg.Ints.Get(MetricElapsedMs),
		speed:        reg.Floats.Get(MetricSpeed),
		instantSpeed: reg.Floats.Get(MetricInstantSpeed),
		heading:      reg.Floats.Get(MetricHeading),
		wait:         reg.Floats.Get(MetricWait),
		crashed:      reg.Bools.Get(MetricCrashed),
		obstacle:     reg.Bools.Get(MetricObstacle),
		mode:         reg.Strings.Get(MetricMode),
		phase:        reg.Strings.Get(MetricPhase),
		steering:     reg.Strings.Get(MetricSteering),
		target:       reg.Strings.Get(MetricTarget),
		lastHit:      reg.Strings.Get(MetricLastHit),
	}
}

func (h *HUD) Frame(s vehicle.Snapshot) {
	h.tick.Store(int64(s.Tick))
	h.elapsedMs.Store(s.Time.Milliseconds())
	h.waypoint.Store(int64(s.WaypointIndex))
	h.attempt.Store(int64(s.Attempt))
	h.speed.Set(s.CurrentSpeed)
	h.instantSpeed.Set(s.InstantSpeed)
	h.heading.Set(s.Heading)
	h.wait.Set(s.WaitRemaining.Seconds())
	h.crashed.Store(s.Crashed)
	h.obstacle.Store(s.ObstacleAhead && !s.Crashed)
	h.mode.Store(s.Mode.String())
	h.phase.Store(s.Phase.String())
	h.steering.Store(s.Steering.String())
	h.target.Store(targetLabel(s.Target, s.WaypointIndex))
}

func (h *HUD) Arrived(vehicle.ArrivalEvent) {
	h.arrivals.Add(1)
}

func (h *HUD) Crashed(e vehicle.CrashEvent) {
	h.crashes.Add(1)
	h.crashed.Store(true)
	h.obstacle.Store(false)
	h.mode.Store(vehicle.StateCrashed.String())
	h.lastHit.Store(e.Other)
}

func (h *HUD) Restarted(s vehicle.Snapshot) {
	h.restarts.Add(1)
	h.Frame(s)
}

func targetLabel(w vehicle.Waypoint, idx int) string {
	if w.Name != "" {
		return w.Name
	}
	return "#" + strconv.Itoa(idx)
}

// View is a consistent-enough read of the HUD metrics for one rendered frame
type View struct {
	Tick          int64
	Elapsed       time.Duration
	Waypoint      int
	Target        string
	Attempt       int
	Arrivals      int64
	Crashes       int64
	Restarts      int64
	Speed         float64
	InstantSpeed  float64
	Heading       float64
	Wait          float64
	Crashed       bool
	ObstacleAhead bool
	Mode          string
	Phase         string
	Steering      string
	LastHit       string
}

// View loads every HUD metric
func (h *HUD) View() View {
	return View{
		Tick:          h.tick.Load(),
		Elapsed:       time.Duration(h.elapsedMs.Load()) * time.Millisecond,
		Waypoint:      int(h.waypoint.Load()),
		Target:        h.target.Load(),
		Attempt:       int(h.attempt.Load()),
		Arrivals:      h.arrivals.Load(),
		Crashes:       h.crashes.Load(),
		Restarts:      h.restarts.Load(),
		Speed:         h.speed.Get(),
		InstantSpeed:  h.instantSpeed.Get(),
		Heading:       h.heading.Get(),
		Wait:          h.wait.Get(),
		Crashed:       h.crashed.Load(),
		ObstacleAhead: h.obstacle.Load(),
		Mode:          h.mode.Load(),
		Phase:         h.phase.Load(),
		Steering:      h.steering.Load(),
		LastHit:       h.lastHit.Load(),
	}
}
