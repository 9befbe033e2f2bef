package audio

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/vi-drive/status"
	"github.com/lixenwraith/vi-drive/vehicle"
)

// Metric names published by SoundManager
const (
	MetricPitch  = "audio.pitch"
	MetricPlayed = "audio.played"
	MetricMuted  = "audio.muted"
)

// SoundManager owns the speaker, the engine hum and one-shot effects
// It implements vehicle.Sink so controller frames drive the engine pitch
type SoundManager struct {
	mu          sync.Mutex
	cfg         *AudioConfig
	log         zerolog.Logger
	mixer       *beep.Mixer
	master      *beep.Ctrl
	engine      *beep.Ctrl
	smoother    *PitchSmoother
	initialized bool

	lastTime time.Duration

	pitch  *status.AtomicFloat
	played *atomic.Int64
	muted  *atomic.Bool
}

// NewSoundManager creates a silent manager; call Initialize to open the speaker
func NewSoundManager(cfg *AudioConfig, reg *status.Registry, log zerolog.Logger) *SoundManager {
	if cfg == nil {
		cfg = DefaultAudioConfig()
	}
	if reg == nil {
		reg = status.NewRegistry()
	}
	mixer := &beep.Mixer{}
	sm := &SoundManager{
		cfg:      cfg,
		log:      log.With().Str("component", "audio").Logger(),
		mixer:    mixer,
		master:   &beep.Ctrl{Streamer: mixer},
		smoother: NewPitchSmoother(cfg.MinPitch, cfg.MaxPitch),
		pitch:    reg.Floats.Get(MetricPitch),
		played:   reg.Ints.Get(MetricPlayed),
		muted:    reg.Bools.Get(MetricMuted),
	}
	sm.pitch.Set(sm.smoother.Pitch())
	return sm
}

// Initialize opens the speaker and starts the engine hum
// A disabled config leaves the manager silent without error
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized || !sm.cfg.Enabled {
		return nil
	}

	rate := beep.SampleRate(sm.cfg.SampleRate)
	if err := speaker.Init(rate, rate.N(sm.cfg.BufferSize)); err != nil {
		return err
	}

	tone := NewEngineTone(rate, sm.cfg.EngineBaseHz, sm.pitch)
	sm.engine = &beep.Ctrl{Streamer: newVolume(tone, sm.cfg.EngineVolume*sm.cfg.MasterVolume)}
	sm.mixer.Add(sm.engine)
	sm.master.Paused = sm.muted.Load()

	speaker.Play(sm.master)
	sm.initialized = true
	sm.log.Debug().Int("sample_rate", sm.cfg.SampleRate).Msg("speaker ready")
	return nil
}

// Cleanup stops all sounds and closes the speaker
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()
	speaker.Close()

	sm.engine = nil
	sm.initialized = false
}

// Play queues a one-shot effect, returns false when nothing was queued
func (sm *SoundManager) Play(st SoundType) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized || sm.muted.Load() {
		return false
	}
	s := GetSoundEffect(st, sm.cfg)
	if s == nil {
		return false
	}

	speaker.Lock()
	sm.mixer.Add(s)
	speaker.Unlock()

	sm.played.Add(1)
	return true
}

// ToggleMute flips mute, returns true if sound is now on
func (sm *SoundManager) ToggleMute() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	muted := !sm.muted.Load()
	sm.muted.Store(muted)
	if sm.initialized {
		speaker.Lock()
		sm.master.Paused = muted
		speaker.Unlock()
	}
	return !muted
}

// IsMuted returns the mute state
func (sm *SoundManager) IsMuted() bool { return sm.muted.Load() }

// IsEnabled returns true if the speaker is open and unmuted
func (sm *SoundManager) IsEnabled() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.initialized && !sm.muted.Load()
}

// Pitch returns the current engine pitch
func (sm *SoundManager) Pitch() float64 { return sm.pitch.Get() }

// Frame updates the engine pitch; pitch holds while crashed
func (sm *SoundManager) Frame(s vehicle.Snapshot) {
	dt := s.Time - sm.lastTime
	sm.lastTime = s.Time
	if s.Crashed || dt <= 0 {
		return
	}
	sm.pitch.Set(sm.smoother.Update(s.InstantSpeed, s.CurrentSpeed, dt))
}

func (sm *SoundManager) Arrived(vehicle.ArrivalEvent) {
	sm.Play(SoundChime)
}

func (sm *SoundManager) Crashed(vehicle.CrashEvent) {
	sm.Play(SoundCrash)
}

func (sm *SoundManager) Restarted(s vehicle.Snapshot) {
	sm.lastTime = s.Time
	sm.smoother.Reset()
	sm.pitch.Set(sm.smoother.Pitch())
	sm.Play(SoundRestart)
}
