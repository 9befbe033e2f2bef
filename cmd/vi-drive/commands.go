package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/lixenwraith/vi-drive/record"
	"github.com/lixenwraith/vi-drive/sim"
)

func newTicker(d time.Duration) *time.Ticker {
	if d <= 0 {
		d = sim.DefaultStep
	}
	return time.NewTicker(d)
}

func runSimulate(ctx context.Context, cmd *cli.Command) error {
	sc, _, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	log, logCloser, err := newLogger(sc, cmd.Root().ErrWriter)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	telemetry := newTelemetryService(sc, "simulate", cmd.Bool("record") || sc.Record.Enabled, log)
	hub, err := startServices(telemetry)
	if err != nil {
		return err
	}
	defer stopServices(hub, log)

	opts := sim.RunOptions{
		Step:       cmd.Duration("step"),
		Duration:   cmd.Duration("duration"),
		TraceEvery: int(cmd.Int("trace")),
		Sinks:      telemetry.Sinks(),
	}

	res, runErr := sim.Run(ctx, sc, log, opts)
	if res == nil {
		return runErr
	}

	w := cmd.Root().Writer
	if len(res.Trace) > 0 {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TICK\tTIME\tX\tZ\tHEADING\tMODE\tPHASE\tWP\tAHEAD")
		for _, s := range res.Trace {
			fmt.Fprintf(tw, "%d\t%s\t%.2f\t%.2f\t%.0f\t%s\t%s\t%d\t%v\n",
				s.Tick, formatDur(s.Time), s.Position.X(), s.Position.Z(), s.Heading, s.Mode, s.Phase, s.WaypointIndex, s.ObstacleAhead)
		}
		tw.Flush()
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "scenario %s (%s): %d ticks, %s simulated\n", sc.Name, sc.Preset, res.Ticks, formatDur(res.Elapsed))
	for _, a := range res.Arrivals {
		fmt.Fprintf(w, "  %8s  arrived   #%d %s (attempt %d)\n", formatDur(a.Time), a.Index, a.Waypoint.Name, a.Attempt)
	}
	for _, c := range res.Crashes {
		fmt.Fprintf(w, "  %8s  crashed   into %s at (%.2f, %.2f) heading to #%d (attempt %d)\n",
			formatDur(c.Time), c.Other, c.Position.X(), c.Position.Z(), c.WaypointIndex, c.Attempt)
	}
	fmt.Fprintf(w, "arrivals %d, crashes %d, restarts %d\n", len(res.Arrivals), len(res.Crashes), res.Restarts)
	fmt.Fprintf(w, "final: %s at (%.2f, %.2f), target #%d %s\n",
		res.Final.Mode, res.Final.Position.X(), res.Final.Position.Z(), res.Final.WaypointIndex, res.Final.Target.Name)
	if rec := telemetry.Recorder(); rec != nil {
		fmt.Fprintf(w, "recorded as session %d\n", rec.SessionID())
	}
	return runErr
}

func runScenario(ctx context.Context, cmd *cli.Command) error {
	_, loader, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	return loader.Dump(cmd.Root().Writer)
}

func runSessions(ctx context.Context, cmd *cli.Command) error {
	sc, _, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	if _, err := os.Stat(sc.Record.Path); err != nil {
		return fmt.Errorf("no telemetry at %s: %w", sc.Record.Path, err)
	}
	log, logCloser, err := newLogger(sc, nil)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	store, err := record.Open(sc.Record.Path, log)
	if err != nil {
		return err
	}
	defer store.Close()

	w := tabwriter.NewWriter(cmd.Root().Writer, 0, 4, 2, ' ', 0)
	defer w.Flush()

	if id := uint(cmd.Uint("events")); id != 0 {
		events, err := store.Events(id)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "TICK\tTIME\tKIND\tATTEMPT\tWP\tOTHER\tX\tZ")
		for _, e := range events {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%s\t%.2f\t%.2f\n",
				e.Tick, formatDur(time.Duration(e.SimTimeMs)*time.Millisecond), e.Kind, e.Attempt, e.WaypointIndex, e.Other, e.PosX, e.PosZ)
		}
		return nil
	}

	sessions, err := store.Sessions(int(cmd.Int("limit")))
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "ID\tSTARTED\tMODE\tPRESET\tSCENARIO\tTICKS\tTIME\tARRIVALS\tCRASHES\tRESTARTS")
	for _, s := range sessions {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%s\t%d\t%d\t%d\n",
			s.ID, s.StartedAt.Format(time.DateTime), s.Mode, s.Preset, s.Scenario,
			s.Ticks, formatDur(time.Duration(s.SimTimeMs)*time.Millisecond), s.Arrivals, s.Crashes, s.Restarts)
	}
	return nil
}
