package sim

import (
	"context"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/vi-drive/config"
	"github.com/lixenwraith/vi-drive/vehicle"
)

// DefaultStep is the tick used when neither the options nor the scenario set one
const DefaultStep = 20 * time.Millisecond

// Sample is one traced frame of a headless run
type Sample struct {
	Tick          uint64
	Time          time.Duration
	Position      mgl64.Vec3
	Heading       float64
	Mode          vehicle.Mode
	Phase         vehicle.Phase
	WaypointIndex int
	ObstacleAhead bool
}

// Result summarizes a headless run
type Result struct {
	Ticks    uint64
	Elapsed  time.Duration
	Arrivals []vehicle.ArrivalEvent
	Crashes  []vehicle.CrashEvent
	Restarts int
	Final    vehicle.Snapshot
	Trace    []Sample
	Metrics  map[string]string
}

// RunOptions tunes a headless run; zero values fall back to the scenario
type RunOptions struct {
	Step     time.Duration
	Duration time.Duration
	// TraceEvery samples every Nth tick into Result.Trace; 0 disables tracing
	TraceEvery int
	Sinks      []vehicle.Sink
}

// collector gathers discrete events for the result
type collector struct {
	vehicle.NopSink
	res        *Result
	traceEvery uint64
}

func (c *collector) Frame(s vehicle.Snapshot) {
	c.res.Final = s
	if c.traceEvery > 0 && s.Tick%c.traceEvery == 0 {
		c.res.Trace = append(c.res.Trace, Sample{
			Tick:          s.Tick,
			Time:          s.Time,
			Position:      s.Position,
			Heading:       s.Heading,
			Mode:          s.Mode,
			Phase:         s.Phase,
			WaypointIndex: s.WaypointIndex,
			ObstacleAhead: s.ObstacleAhead,
		})
	}
}

func (c *collector) Arrived(e vehicle.ArrivalEvent) { c.res.Arrivals = append(c.res.Arrivals, e) }
func (c *collector) Crashed(e vehicle.CrashEvent)   { c.res.Crashes = append(c.res.Crashes, e) }
func (c *collector) Restarted(vehicle.Snapshot)     { c.res.Restarts++ }

// Run drives the scenario on simulated time with its scripted input
// Cancelling ctx stops between ticks and returns the partial result with ctx.Err()
func Run(ctx context.Context, sc *config.Scenario, log zerolog.Logger, opts RunOptions) (*Result, error) {
	step := opts.Step
	if step <= 0 {
		step = sc.Sim.Step
	}
	if step <= 0 {
		step = DefaultStep
	}
	duration := opts.Duration
	if duration <= 0 {
		duration = sc.Sim.Duration
	}

	script, err := sc.InputScript()
	if err != nil {
		return nil, err
	}

	res := &Result{}
	col := &collector{res: res}
	if opts.TraceEvery > 0 {
		col.traceEvery = uint64(opts.TraceEvery)
	}
	sinks := append([]vehicle.Sink{col}, opts.Sinks...)

	s, err := NewSession(sc, script, log, WithSinks(sinks...))
	if err != nil {
		return nil, err
	}

	log.Info().
		Dur("step", step).
		Dur("duration", duration).
		Msg("simulation started")

	for elapsed := time.Duration(0); elapsed < duration; elapsed += step {
		select {
		case <-ctx.Done():
			res.finish(s)
			return res, ctx.Err()
		default:
		}
		script.Advance(step)
		s.Step(step)
	}

	res.finish(s)
	log.Info().
		Uint64("ticks", res.Ticks).
		Int("arrivals", len(res.Arrivals)).
		Int("crashes", len(res.Crashes)).
		Int("restarts", res.Restarts).
		Msg("simulation finished")
	return res, nil
}

func (r *Result) finish(s *Session) {
	r.Final = s.Controller.Snapshot()
	r.Ticks = r.Final.Tick
	r.Elapsed = r.Final.Time
	r.Metrics = s.Registry.Snapshot()
}
