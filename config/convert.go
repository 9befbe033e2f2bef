package config

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vi-drive/audio"
	"github.com/lixenwraith/vi-drive/camera"
	"github.com/lixenwraith/vi-drive/input"
	"github.com/lixenwraith/vi-drive/physics"
	"github.com/lixenwraith/vi-drive/vehicle"
)

// VehicleConfig returns the controller tuning
func (s *Scenario) VehicleConfig() vehicle.Config {
	vs := s.Vehicle
	mask := physics.LayerAll
	if len(vs.ObstacleLayers) > 0 {
		mask = physics.MaskOf(vs.ObstacleLayers...)
	}
	return vehicle.Config{
		MoveSpeed:         vs.MoveSpeed,
		SlowSpeed:         vs.SlowSpeed,
		RotationSpeed:     vs.RotationSpeed,
		WaitTime:          vs.WaitTime,
		ArrivalTolerance:  vs.ArrivalTolerance,
		ManualSteering:    vs.ManualSteering,
		SteeringRate:      vs.SteeringRate,
		DetectionDistance: vs.DetectionDistance,
		ObstacleMask:      mask,
		ObstacleTag:       vs.ObstacleTag,
		CrashEnabled:      vs.CrashEnabled,
	}
}

// WaypointList returns the course in order; unnamed points are numbered
func (s *Scenario) WaypointList() []vehicle.Waypoint {
	out := make([]vehicle.Waypoint, 0, len(s.Waypoints))
	for i, wp := range s.Waypoints {
		name := wp.Name
		if name == "" {
			name = fmt.Sprintf("WP%d", i)
		}
		out = append(out, vehicle.Waypoint{Name: name, Position: vec3Or(wp.Position, mgl64.Vec3{})})
	}
	return out
}

// ObstacleList returns the static colliders
func (s *Scenario) ObstacleList() []physics.Obstacle {
	out := make([]physics.Obstacle, 0, len(s.Obstacles))
	for _, o := range s.Obstacles {
		out = append(out, physics.NewBox(o.Name, uint8(o.Layer), vec3Or(o.Center, mgl64.Vec3{}), vec3Or(o.Size, mgl64.Vec3{})))
	}
	return out
}

// CameraConfig returns the follow camera tuning
func (s *Scenario) CameraConfig() camera.Config {
	def := camera.DefaultConfig()
	return camera.Config{
		Offset:        vec3Or(s.Camera.Offset, def.Offset),
		FollowSpeed:   s.Camera.FollowSpeed,
		RotationSpeed: s.Camera.RotationSpeed,
		LookAtTarget:  s.Camera.LookAtTarget,
		LookOffset:    vec3Or(s.Camera.LookOffset, def.LookOffset),
	}
}

// AudioConfig overlays the scenario onto the audio defaults
func (s *Scenario) AudioConfig() *audio.AudioConfig {
	cfg := audio.DefaultAudioConfig()
	cfg.Enabled = s.Audio.Enabled
	cfg.MasterVolume = s.Audio.MasterVolume
	cfg.EngineVolume = s.Audio.EngineVolume
	cfg.MinPitch = s.Audio.MinPitch
	cfg.MaxPitch = s.Audio.MaxPitch
	return cfg
}

// KeyTable returns the default bindings with the scenario's overrides applied
func (s *Scenario) KeyTable() (*input.KeyTable, error) {
	kt := input.DefaultKeyTable()
	if len(s.Keys) == 0 {
		return kt, nil
	}
	if err := kt.ApplyBindings(s.Keys); err != nil {
		return nil, err
	}
	return kt, nil
}

// InputScript returns the scripted input timeline
func (s *Scenario) InputScript() (*input.Script, error) {
	cues := make([]input.Cue, 0, len(s.Script))
	for i, c := range s.Script {
		actions, err := input.ParseActions(c.Actions)
		if err != nil {
			return nil, fmt.Errorf("script[%d]: %w", i, err)
		}
		cues = append(cues, input.Cue{At: c.At, Duration: c.Duration, Actions: actions})
	}
	return input.NewScript(cues)
}
