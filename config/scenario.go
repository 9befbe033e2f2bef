// Package config loads a driving scenario from file, environment and presets
package config

import (
	"time"
)

// Preset names
const (
	PresetAvoidance = "avoidance"
	PresetWaypoint  = "waypoint"
)

// Scenario is the full resolved configuration of a run
type Scenario struct {
	Name      string              `mapstructure:"name"`
	Preset    string              `mapstructure:"preset"`
	Vehicle   VehicleSection      `mapstructure:"vehicle"`
	Waypoints []WaypointSection   `mapstructure:"waypoints"`
	Obstacles []ObstacleSection   `mapstructure:"obstacles"`
	Camera    CameraSection       `mapstructure:"camera"`
	Audio     AudioSection        `mapstructure:"audio"`
	Record    RecordSection       `mapstructure:"record"`
	Log       LogSection          `mapstructure:"log"`
	Sim       SimSection          `mapstructure:"sim"`
	Keys      map[string][]string `mapstructure:"keys"`
	Script    []CueSection        `mapstructure:"script"`
}

type VehicleSection struct {
	MoveSpeed         float64       `mapstructure:"move_speed"`
	SlowSpeed         float64       `mapstructure:"slow_speed"`
	RotationSpeed     float64       `mapstructure:"rotation_speed"`
	WaitTime          time.Duration `mapstructure:"wait_time"`
	ArrivalTolerance  float64       `mapstructure:"arrival_tolerance"`
	ManualSteering    bool          `mapstructure:"manual_steering"`
	SteeringRate      float64       `mapstructure:"steering_rate"`
	DetectionDistance float64       `mapstructure:"detection_distance"`
	// ObstacleLayers empty means every layer
	ObstacleLayers []int   `mapstructure:"obstacle_layers"`
	ObstacleTag    string  `mapstructure:"obstacle_tag"`
	CrashEnabled   bool    `mapstructure:"crash_enabled"`
	BodyRadius     float64 `mapstructure:"body_radius"`
}

type WaypointSection struct {
	Name     string    `mapstructure:"name"`
	Position []float64 `mapstructure:"position"`
}

type ObstacleSection struct {
	Name   string    `mapstructure:"name"`
	Layer  int       `mapstructure:"layer"`
	Center []float64 `mapstructure:"center"`
	Size   []float64 `mapstructure:"size"`
}

type CameraSection struct {
	Offset        []float64 `mapstructure:"offset"`
	FollowSpeed   float64   `mapstructure:"follow_speed"`
	RotationSpeed float64   `mapstructure:"rotation_speed"`
	LookAtTarget  bool      `mapstructure:"look_at_target"`
	LookOffset    []float64 `mapstructure:"look_offset"`
}

type AudioSection struct {
	Enabled      bool    `mapstructure:"enabled"`
	MasterVolume float64 `mapstructure:"master_volume"`
	EngineVolume float64 `mapstructure:"engine_volume"`
	MinPitch     float64 `mapstructure:"min_pitch"`
	MaxPitch     float64 `mapstructure:"max_pitch"`
}

type RecordSection struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LogSection struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
	JSON  bool   `mapstructure:"json"`
}

type SimSection struct {
	Step     time.Duration `mapstructure:"step"`
	Duration time.Duration `mapstructure:"duration"`
	// HoldWindow is how long a terminal key counts as held after its last repeat
	HoldWindow time.Duration `mapstructure:"hold_window"`
}

// CueSection is one scripted input; zero duration is a press
type CueSection struct {
	At       time.Duration `mapstructure:"at"`
	Duration time.Duration `mapstructure:"duration"`
	Actions  []string      `mapstructure:"actions"`
}
