package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// Effect timings
const (
	crashDuration = 700 * time.Millisecond
	crashAttack   = 5 * time.Millisecond
	crashRelease  = 400 * time.Millisecond

	chimeDuration = 250 * time.Millisecond
	chimeAttack   = 5 * time.Millisecond
	chimeRelease  = 180 * time.Millisecond

	restartNoteDuration = 90 * time.Millisecond
	restartAttack       = 5 * time.Millisecond
	restartRelease      = 40 * time.Millisecond
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// waveAt samples one wave cycle at phase in [0, 1)
func waveAt(wave WaveType, phase float64) float64 {
	switch wave {
	case WaveSine:
		return math.Sin(2 * math.Pi * phase)
	case WaveSquare:
		if phase < 0.5 {
			return 1.0
		}
		return -1.0
	case WaveSaw:
		return 2.0 * (phase - 0.5)
	case WaveNoise:
		return rand.Float64()*2 - 1
	}
	return 0
}

// oscillator generates a fixed-length raw wave
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
}

// NewOscillator creates a finite oscillator
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		val := waveAt(o.wave, o.phase)
		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies attack/release shaping to a stream
type envelope struct {
	streamer       beep.Streamer
	position       int
	attackSamples  int
	releaseSamples int
	sustainSamples int
	totalSamples   int
}

// NewEnvelope creates an attack/sustain/release envelope
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(duration)
	att := rate.N(attack)
	rel := rate.N(release)
	sus := total - att - rel
	if sus < 0 {
		sus = 0
	}

	return &envelope{
		streamer:       s,
		attackSamples:  att,
		releaseSamples: rel,
		sustainSamples: sus,
		totalSamples:   total,
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)

	for i := 0; i < n; i++ {
		if e.position >= e.totalSamples {
			return i, i > 0
		}

		vol := 1.0
		if e.position < e.attackSamples && e.attackSamples > 0 {
			vol = float64(e.position) / float64(e.attackSamples)
		}
		releaseStart := e.attackSamples + e.sustainSamples
		if e.position >= releaseStart && e.releaseSamples > 0 {
			vol = float64(e.totalSamples-e.position) / float64(e.releaseSamples)
			if vol < 0 {
				vol = 0
			}
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}

	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume wraps s with a linear gain
// math.Log2(0) is -Inf, so zero volume is silenced instead
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

func effectGain(cfg *AudioConfig, st SoundType) float64 {
	return cfg.EffectVolumes[st] * cfg.MasterVolume
}

// CreateCrashSound generates a noise burst over a low rumble
func CreateCrashSound(cfg *AudioConfig) beep.Streamer {
	rate := beep.SampleRate(cfg.SampleRate)

	noise := NewEnvelope(NewOscillator(0, crashDuration, WaveNoise, rate), crashDuration, crashAttack, crashRelease, rate)
	rumble := NewEnvelope(NewOscillator(55, crashDuration, WaveSaw, rate), crashDuration, crashAttack, crashRelease, rate)

	mixed := beep.Mix(
		newVolume(noise, 0.6),
		newVolume(rumble, 0.4),
	)
	return newVolume(mixed, effectGain(cfg, SoundCrash))
}

// CreateChimeSound generates a short two-partial ding for a reached waypoint
func CreateChimeSound(cfg *AudioConfig) beep.Streamer {
	rate := beep.SampleRate(cfg.SampleRate)

	fund := NewEnvelope(NewOscillator(880.0, chimeDuration, WaveSine, rate), chimeDuration, chimeAttack, chimeRelease, rate)
	over := NewEnvelope(NewOscillator(1760.0, chimeDuration, WaveSine, rate), chimeDuration, chimeAttack, chimeRelease/2, rate)

	mixed := beep.Mix(
		newVolume(fund, 0.7),
		newVolume(over, 0.3),
	)
	return newVolume(mixed, effectGain(cfg, SoundChime))
}

// CreateRestartSound generates a rising two-note cue
func CreateRestartSound(cfg *AudioConfig) beep.Streamer {
	rate := beep.SampleRate(cfg.SampleRate)

	n1 := NewEnvelope(NewOscillator(523.25, restartNoteDuration, WaveSquare, rate), restartNoteDuration, restartAttack, restartRelease, rate)
	n2 := NewEnvelope(NewOscillator(783.99, restartNoteDuration, WaveSquare, rate), restartNoteDuration, restartAttack, restartRelease, rate)

	return newVolume(beep.Seq(n1, n2), effectGain(cfg, SoundRestart))
}

// GetSoundEffect returns the streamer for a sound type, nil for unknown types
func GetSoundEffect(st SoundType, cfg *AudioConfig) beep.Streamer {
	switch st {
	case SoundCrash:
		return CreateCrashSound(cfg)
	case SoundChime:
		return CreateChimeSound(cfg)
	case SoundRestart:
		return CreateRestartSound(cfg)
	default:
		return nil
	}
}
