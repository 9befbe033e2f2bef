package vehicle

import (
	"time"

	"github.com/lixenwraith/vi-drive/physics"
)

// DefaultObstacleTag is the name fragment that marks a collider as an obstacle
const DefaultObstacleTag = "Obstacle"

// modelYawOffset turns the look rotation around to match the backward-built model
const modelYawOffset = 180.0

// Config holds the controller tuning
type Config struct {
	MoveSpeed     float64 // units/s
	SlowSpeed     float64 // units/s, also the manual translation speed
	RotationSpeed float64 // auto-steer slerp rate, 1/s

	WaitTime         time.Duration
	ArrivalTolerance float64

	ManualSteering bool
	SteeringRate   float64 // deg/s

	// DetectionDistance <= 0 disables the forward ray
	DetectionDistance float64
	ObstacleMask      physics.LayerMask

	// Collisions whose name contains ObstacleTag crash the vehicle; empty matches all
	ObstacleTag  string
	CrashEnabled bool
}

// AvoidanceConfig is the manual-steering, crash-enabled variant
func AvoidanceConfig() Config {
	return Config{
		MoveSpeed:         12,
		SlowSpeed:         3,
		RotationSpeed:     2,
		WaitTime:          time.Second,
		ArrivalTolerance:  2.0,
		ManualSteering:    true,
		SteeringRate:      80,
		DetectionDistance: 5,
		ObstacleMask:      physics.LayerAll,
		ObstacleTag:       DefaultObstacleTag,
		CrashEnabled:      true,
	}
}

// WaypointConfig is the pure path-following variant
func WaypointConfig() Config {
	return Config{
		MoveSpeed:        5,
		SlowSpeed:        2,
		RotationSpeed:    2,
		WaitTime:         time.Second,
		ArrivalTolerance: 0.1,
		SteeringRate:     80,
		ObstacleMask:     physics.LayerAll,
		ObstacleTag:      DefaultObstacleTag,
	}
}

// DefaultConfig returns AvoidanceConfig
func DefaultConfig() Config {
	return AvoidanceConfig()
}

// Validate checks ranges; the first violation is returned as *ConfigError
func (c Config) Validate() error {
	switch {
	case c.MoveSpeed <= 0:
		return invalid("MoveSpeed", "must be positive, got %v", c.MoveSpeed)
	case c.SlowSpeed <= 0:
		return invalid("SlowSpeed", "must be positive, got %v", c.SlowSpeed)
	case c.SlowSpeed >= c.MoveSpeed:
		return invalid("SlowSpeed", "must be below MoveSpeed %v, got %v", c.MoveSpeed, c.SlowSpeed)
	case c.RotationSpeed < 0:
		return invalid("RotationSpeed", "must not be negative, got %v", c.RotationSpeed)
	case c.WaitTime < 0:
		return invalid("WaitTime", "must not be negative, got %v", c.WaitTime)
	case c.ArrivalTolerance < 0:
		return invalid("ArrivalTolerance", "must not be negative, got %v", c.ArrivalTolerance)
	case c.SteeringRate < 0:
		return invalid("SteeringRate", "must not be negative, got %v", c.SteeringRate)
	}
	return nil
}
