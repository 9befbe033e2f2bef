package audio

import (
	"time"
)

// SoundType represents one-shot sound effects
type SoundType int

const (
	SoundCrash   SoundType = iota // Collision with an obstacle
	SoundChime                    // Waypoint reached
	SoundRestart                  // Vehicle reset after a crash
	soundTypeCount
)

var soundNames = [soundTypeCount]string{
	SoundCrash:   "crash",
	SoundChime:   "chime",
	SoundRestart: "restart",
}

func (s SoundType) String() string {
	if s >= 0 && s < soundTypeCount {
		return soundNames[s]
	}
	return "unknown"
}

// ParseSoundType resolves a config name
func ParseSoundType(name string) (SoundType, bool) {
	for i, n := range soundNames {
		if n == name {
			return SoundType(i), true
		}
	}
	return 0, false
}

// AudioConfig holds audio settings
type AudioConfig struct {
	Enabled       bool
	MasterVolume  float64
	EngineVolume  float64
	EffectVolumes map[SoundType]float64
	SampleRate    int
	BufferSize    time.Duration

	// Engine tone pitch range and the tone frequency at pitch 1.0
	MinPitch     float64
	MaxPitch     float64
	EngineBaseHz float64
}

// DefaultAudioConfig returns the stock settings
func DefaultAudioConfig() *AudioConfig {
	return &AudioConfig{
		Enabled:      true,
		MasterVolume: 0.5,
		EngineVolume: 0.25,
		EffectVolumes: map[SoundType]float64{
			SoundCrash:   1.0,
			SoundChime:   0.4,
			SoundRestart: 0.5,
		},
		SampleRate:   44100,
		BufferSize:   100 * time.Millisecond,
		MinPitch:     0.8,
		MaxPitch:     2.0,
		EngineBaseHz: 70,
	}
}
