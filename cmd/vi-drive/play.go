package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/gdamore/tcell/v2"
	"github.com/urfave/cli/v3"

	"github.com/lixenwraith/vi-drive/audio"
	"github.com/lixenwraith/vi-drive/input"
	"github.com/lixenwraith/vi-drive/render"
	"github.com/lixenwraith/vi-drive/render/renderers"
	"github.com/lixenwraith/vi-drive/sim"
	"github.com/lixenwraith/vi-drive/status"
	"github.com/lixenwraith/vi-drive/vehicle"
)

func playFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "mute", Usage: "Start with sound off"},
		&cli.BoolFlag{Name: "no-ray", Usage: "Hide the obstacle ray"},
		&cli.BoolFlag{Name: "record", Usage: "Store the session in the telemetry database"},
	}
}

func runPlay(ctx context.Context, cmd *cli.Command) error {
	sc, _, err := loadScenario(cmd)
	if err != nil {
		return err
	}

	// The terminal belongs to the renderer, logs go to the file only
	log, logCloser, err := newLogger(sc, nil)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	keys, err := sc.KeyTable()
	if err != nil {
		return err
	}
	keyboard := input.NewKeyboard(keys, sc.Sim.HoldWindow)

	reg := status.NewRegistry()
	sound := audio.NewSoundManager(sc.AudioConfig(), reg, log)
	telemetry := newTelemetryService(sc, "play", cmd.Bool("record") || sc.Record.Enabled, log)
	hub, err := startServices(&audioService{sm: sound, muted: cmd.Bool("mute"), log: log}, telemetry)
	if err != nil {
		return err
	}
	defer stopServices(hub, log)

	sinks := append([]vehicle.Sink{sound}, telemetry.Sinks()...)
	session, err := sim.NewSession(sc, keyboard, log, sim.WithRegistry(reg), sim.WithSinks(sinks...))
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	screen.EnableMouse()
	screen.HideCursor()
	// Normal exit terminal cleanup
	defer screen.Fini()

	// Panic recovery: restore the terminal before printing the trace
	defer func() {
		if r := recover(); r != nil {
			screen.Fini()
			fmt.Fprintf(os.Stderr, "\n\x1b[31mVI-DRIVE CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	orchestrator := render.NewRenderOrchestrator(screen)
	renderers.RegisterDefaults(orchestrator, !cmd.Bool("no-ray"))

	eventChan := make(chan tcell.Event, 256)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				screen.Fini()
				fmt.Fprintf(os.Stderr, "\r\n\x1b[31mEVENT POLLER CRASHED: %v\x1b[0m\r\n", r)
				fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
				os.Exit(1)
			}
		}()
		for {
			ev := screen.PollEvent()
			// nil after Fini
			if ev == nil {
				return
			}
			select {
			case eventChan <- ev:
			case <-done:
				return
			}
		}
	}()

	pacer := sim.NewPacer(sc.Sim.Step)
	frameTicker := newTicker(sc.Sim.Step)
	defer frameTicker.Stop()

	log.Info().Str("scenario", sc.Name).Str("preset", sc.Preset).Msg("play started")

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-eventChan:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				actions := keyboard.HandleKey(ev)
				if actions.Has(input.ActionQuit) {
					log.Info().Msg("quit")
					return nil
				}
				if actions.Has(input.ActionMute) {
					on := sound.ToggleMute()
					log.Info().Bool("sound", on).Msg("mute toggled")
				}
			case *tcell.EventMouse:
				if ev.Buttons()&tcell.Button1 == 0 || session.Controller.Mode() != vehicle.StateCrashed {
					continue
				}
				x, y := ev.Position()
				w, h := screen.Size()
				if render.RetryButtonRect(w, h).Contains(x, y) {
					session.Restart()
				}
			case *tcell.EventResize:
				w, h := screen.Size()
				orchestrator.Resize(w, h)
				pacer.Reset()
			}

		case <-frameTicker.C:
			session.Step(pacer.Next())
			keyboard.EndFrame()

			w, h := screen.Size()
			rc := render.NewRenderContext(session, w, h)
			rc.Muted = sound.IsMuted()
			orchestrator.RenderFrame(rc)
		}
	}
}
