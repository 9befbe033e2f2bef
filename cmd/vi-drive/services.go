package main

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/vi-drive/audio"
	"github.com/lixenwraith/vi-drive/config"
	"github.com/lixenwraith/vi-drive/record"
	"github.com/lixenwraith/vi-drive/service"
	"github.com/lixenwraith/vi-drive/vehicle"
)

// telemetryService owns the session database and its recorder; inert when disabled
type telemetryService struct {
	sc      *config.Scenario
	mode    string
	enabled bool
	log     zerolog.Logger

	store *record.Store
	rec   *record.Recorder
}

func newTelemetryService(sc *config.Scenario, mode string, enabled bool, log zerolog.Logger) *telemetryService {
	return &telemetryService{sc: sc, mode: mode, enabled: enabled, log: log}
}

func (t *telemetryService) Name() string           { return "telemetry" }
func (t *telemetryService) Dependencies() []string { return nil }

func (t *telemetryService) Init() error {
	if t.enabled && t.sc.Record.Path == "" {
		return errors.New("recording enabled without a database path")
	}
	return nil
}

func (t *telemetryService) Start() error {
	if !t.enabled {
		return nil
	}
	store, err := record.Open(t.sc.Record.Path, t.log)
	if err != nil {
		return err
	}
	rec, err := record.NewRecorder(store, record.SessionInfo{
		Preset:    t.sc.Preset,
		Scenario:  t.sc.Name,
		Mode:      t.mode,
		Waypoints: len(t.sc.Waypoints),
	}, record.DefaultQueueSize, t.log)
	if err != nil {
		store.Close()
		return err
	}
	t.store, t.rec = store, rec
	return nil
}

func (t *telemetryService) Stop() error {
	var first error
	if t.rec != nil {
		if dropped := t.rec.Dropped(); dropped > 0 {
			t.log.Warn().Int("dropped", dropped).Msg("telemetry events dropped")
		}
		first = t.rec.Close()
		t.rec = nil
	}
	if t.store != nil {
		if err := t.store.Close(); err != nil && first == nil {
			first = err
		}
		t.store = nil
	}
	return first
}

// Recorder returns the running recorder, nil when recording is off
func (t *telemetryService) Recorder() *record.Recorder { return t.rec }

// Sinks returns the recorder as a sink list; a nil recorder must not reach MultiSink as a typed nil
func (t *telemetryService) Sinks() []vehicle.Sink {
	if t.rec == nil {
		return nil
	}
	return []vehicle.Sink{t.rec}
}

// audioService adapts the sound manager; a missing audio device is not fatal
type audioService struct {
	sm    *audio.SoundManager
	muted bool
	log   zerolog.Logger
}

func (a *audioService) Name() string           { return "audio" }
func (a *audioService) Dependencies() []string { return nil }
func (a *audioService) Init() error            { return nil }

func (a *audioService) Start() error {
	if err := a.sm.Initialize(); err != nil {
		a.log.Warn().Err(err).Msg("audio initialization failed, continuing without audio")
	}
	if a.muted && !a.sm.IsMuted() {
		a.sm.ToggleMute()
	}
	return nil
}

func (a *audioService) Stop() error {
	a.sm.Cleanup()
	return nil
}

// startServices registers, initializes and starts svcs
func startServices(svcs ...service.Service) (*service.Hub, error) {
	hub := service.NewHub()
	for _, svc := range svcs {
		if err := hub.Register(svc); err != nil {
			return nil, err
		}
	}
	if err := hub.InitAll(); err != nil {
		return nil, err
	}
	if err := hub.StartAll(); err != nil {
		return nil, err
	}
	return hub, nil
}

func stopServices(hub *service.Hub, log zerolog.Logger) {
	if err := hub.StopAll(); err != nil {
		log.Error().Err(err).Msg("service shutdown failed")
	}
}
