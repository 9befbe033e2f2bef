package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/lixenwraith/vi-drive/config"
	"github.com/lixenwraith/vi-drive/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout, os.Stderr).Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "vi-drive: %v\n", err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "vi-drive",
		Usage:     "Drive a car around a waypoint course in the terminal",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Scenario file (toml, yaml or json)",
				Sources: cli.EnvVars("VIDRIVE_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "preset",
				Aliases: []string{"p"},
				Usage:   "Controller preset: avoidance or waypoint",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "trace, debug, info, warn, error or off; overrides the scenario",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Log file path; overrides the scenario",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "Telemetry database path; overrides the scenario",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "play",
				Usage:  "Drive interactively (default)",
				Flags:  playFlags(),
				Action: runPlay,
			},
			{
				Name:    "simulate",
				Aliases: []string{"sim"},
				Usage:   "Run the scenario headless with its scripted input",
				Flags: []cli.Flag{
					&cli.DurationFlag{Name: "duration", Aliases: []string{"d"}, Usage: "Simulated time; 0 uses the scenario"},
					&cli.DurationFlag{Name: "step", Usage: "Tick interval; 0 uses the scenario"},
					&cli.IntFlag{Name: "trace", Usage: "Print every Nth frame"},
					&cli.BoolFlag{Name: "record", Usage: "Store the session in the telemetry database"},
				},
				Action: runSimulate,
			},
			{
				Name:   "scenario",
				Usage:  "Print the resolved scenario as TOML",
				Action: runScenario,
			},
			{
				Name:  "sessions",
				Usage: "List recorded sessions",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20, Usage: "Most recent sessions to show; 0 for all"},
					&cli.UintFlag{Name: "events", Usage: "Show the events of one session id"},
				},
				Action: runSessions,
			},
		},
		DefaultCommand: "play",
	}
}

// loadScenario resolves the scenario and applies the global flag overrides
func loadScenario(cmd *cli.Command) (*config.Scenario, *config.Loader, error) {
	sc, loader, err := config.Load(cmd.String("config"), cmd.String("preset"))
	if err != nil {
		return nil, nil, err
	}
	if lvl := cmd.String("log-level"); lvl != "" {
		sc.Log.Level = lvl
	}
	if f := cmd.String("log-file"); f != "" {
		sc.Log.File = f
	}
	if db := cmd.String("db"); db != "" {
		sc.Record.Path = db
	}
	return sc, loader, nil
}

// newLogger writes to the scenario log file, and to console when given one
func newLogger(sc *config.Scenario, console io.Writer) (zerolog.Logger, io.Closer, error) {
	return logging.New(logging.Options{
		Level:   sc.Log.Level,
		File:    sc.Log.File,
		JSON:    sc.Log.JSON,
		Console: console,
	})
}

func formatDur(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}
