package config

import (
	"github.com/spf13/viper"
)

// Shared course: a 20x20 square driven A, B, C, D
var squareCourse = []map[string]any{
	{"name": "A", "position": []float64{0, 0, 0}},
	{"name": "B", "position": []float64{20, 0, 0}},
	{"name": "C", "position": []float64{20, 0, 20}},
	{"name": "D", "position": []float64{0, 0, 20}},
}

// A crate on the B to C leg, in the autopilot's path
var avoidanceObstacles = []map[string]any{
	{"name": "Obstacle_Crate", "layer": 0, "center": []float64{20, 0, 10}, "size": []float64{2, 2, 2}},
}

// setDefaults registers the preset's values; durations are strings so a dump stays readable
func setDefaults(v *viper.Viper, preset string) {
	v.SetDefault("name", "square")
	v.SetDefault("preset", preset)

	switch preset {
	case PresetWaypoint:
		v.SetDefault("vehicle.move_speed", 5.0)
		v.SetDefault("vehicle.slow_speed", 2.0)
		v.SetDefault("vehicle.rotation_speed", 2.0)
		v.SetDefault("vehicle.wait_time", "1s")
		v.SetDefault("vehicle.arrival_tolerance", 0.1)
		v.SetDefault("vehicle.manual_steering", false)
		v.SetDefault("vehicle.steering_rate", 80.0)
		v.SetDefault("vehicle.detection_distance", 0.0)
		v.SetDefault("vehicle.crash_enabled", false)
		v.SetDefault("obstacles", []map[string]any{})
	default:
		v.SetDefault("vehicle.move_speed", 12.0)
		v.SetDefault("vehicle.slow_speed", 3.0)
		v.SetDefault("vehicle.rotation_speed", 2.0)
		v.SetDefault("vehicle.wait_time", "1s")
		v.SetDefault("vehicle.arrival_tolerance", 2.0)
		v.SetDefault("vehicle.manual_steering", true)
		v.SetDefault("vehicle.steering_rate", 80.0)
		v.SetDefault("vehicle.detection_distance", 5.0)
		v.SetDefault("vehicle.crash_enabled", true)
		v.SetDefault("obstacles", avoidanceObstacles)
	}
	v.SetDefault("vehicle.obstacle_layers", []int{})
	v.SetDefault("vehicle.obstacle_tag", "Obstacle")
	v.SetDefault("vehicle.body_radius", 0.5)
	v.SetDefault("waypoints", squareCourse)

	v.SetDefault("camera.offset", []float64{0, 5, -8})
	v.SetDefault("camera.follow_speed", 5.0)
	v.SetDefault("camera.rotation_speed", 2.0)
	v.SetDefault("camera.look_at_target", true)
	v.SetDefault("camera.look_offset", []float64{0, 0, 0})

	v.SetDefault("audio.enabled", true)
	v.SetDefault("audio.master_volume", 0.5)
	v.SetDefault("audio.engine_volume", 0.25)
	v.SetDefault("audio.min_pitch", 0.8)
	v.SetDefault("audio.max_pitch", 2.0)

	v.SetDefault("record.enabled", false)
	v.SetDefault("record.path", "data/vi-drive.db")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "logs/vi-drive.log")
	v.SetDefault("log.json", false)

	v.SetDefault("sim.step", "20ms")
	v.SetDefault("sim.duration", "30s")
	v.SetDefault("sim.hold_window", "550ms")

	v.SetDefault("keys", map[string][]string{})
	v.SetDefault("script", []map[string]any{})
}
