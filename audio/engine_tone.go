package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/vi-drive/status"
	"github.com/lixenwraith/vi-drive/vmath"
)

// pitchResponse is the per-second lerp rate of the engine pitch
const pitchResponse = 2.0

// PitchSmoother maps vehicle speed onto an engine pitch
// The target pitch scales with speed relative to the selected speed tier and
// the output eases toward it
type PitchSmoother struct {
	Min   float64
	Max   float64
	pitch float64
}

// NewPitchSmoother starts at pitch 1.0
func NewPitchSmoother(min, max float64) *PitchSmoother {
	return &PitchSmoother{Min: min, Max: max, pitch: 1.0}
}

// Update feeds one frame and returns the new pitch
func (p *PitchSmoother) Update(instantSpeed, currentSpeed float64, dt time.Duration) float64 {
	var norm float64
	if currentSpeed > 0 {
		norm = vmath.Clamp01(instantSpeed / currentSpeed)
	}
	target := vmath.Lerp(p.Min, p.Max, norm)
	p.pitch = vmath.Lerp(p.pitch, target, dt.Seconds()*pitchResponse)
	return p.pitch
}

// Pitch returns the current pitch
func (p *PitchSmoother) Pitch() float64 { return p.pitch }

// Reset returns to pitch 1.0
func (p *PitchSmoother) Reset() { p.pitch = 1.0 }

// EngineTone is an endless engine hum whose frequency follows a shared pitch
// Streamed on the speaker goroutine; pitch is written from the tick loop
type EngineTone struct {
	rate   beep.SampleRate
	baseHz float64
	pitch  *status.AtomicFloat
	phase  float64
	sub    float64
}

// NewEngineTone creates the tone; pitch must be non-nil
func NewEngineTone(rate beep.SampleRate, baseHz float64, pitch *status.AtomicFloat) *EngineTone {
	return &EngineTone{rate: rate, baseHz: baseHz, pitch: pitch}
}

func (e *EngineTone) Stream(samples [][2]float64) (n int, ok bool) {
	freq := e.baseHz * e.pitch.Get()
	step := freq / float64(e.rate)
	for i := range samples {
		// Saw body with a sine sub-octave for weight
		val := 0.6*waveAt(WaveSaw, e.phase) + 0.4*math.Sin(2*math.Pi*e.sub)

		samples[i][0] = val
		samples[i][1] = val

		e.phase += step
		e.phase -= math.Floor(e.phase)
		e.sub += step / 2
		e.sub -= math.Floor(e.sub)
	}
	return len(samples), true
}

func (e *EngineTone) Err() error { return nil }
