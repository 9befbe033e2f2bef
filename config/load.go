package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/lixenwraith/vi-drive/input"
)

// EnvPrefix prefixes environment overrides, e.g. VIDRIVE_VEHICLE_MOVE_SPEED
const EnvPrefix = "VIDRIVE"

// Loader holds the resolved viper instance so the scenario can be dumped
type Loader struct {
	v *viper.Viper
}

// Load resolves a scenario: preset defaults, then the file at path (optional), then env
// preset overrides the file's preset key when non-empty
func Load(path, preset string) (*Scenario, *Loader, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, errors.Wrapf(err, "could not read scenario %s", path)
		}
	}

	if preset == "" {
		preset = v.GetString("preset")
	}
	if preset == "" {
		preset = PresetAvoidance
	}
	preset = strings.ToLower(preset)
	if preset != PresetAvoidance && preset != PresetWaypoint {
		return nil, nil, fmt.Errorf("unknown preset %q, want %s or %s", preset, PresetAvoidance, PresetWaypoint)
	}
	setDefaults(v, preset)
	v.Set("preset", preset)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var s Scenario
	if err := v.Unmarshal(&s); err != nil {
		return nil, nil, errors.Wrap(err, "could not decode scenario")
	}
	if err := s.Validate(); err != nil {
		return nil, nil, err
	}
	return &s, &Loader{v: v}, nil
}

// Dump writes the resolved settings as TOML
func (l *Loader) Dump(w io.Writer) error {
	data, err := toml.Marshal(l.v.AllSettings())
	if err != nil {
		return errors.Wrap(err, "could not encode scenario")
	}
	_, err = w.Write(data)
	return err
}

// Validate checks shapes the converters rely on
// An empty waypoint list is left for the controller to reject
func (s *Scenario) Validate() error {
	if s.Sim.Step <= 0 {
		return fmt.Errorf("sim.step must be positive, got %v", s.Sim.Step)
	}
	if s.Sim.Duration < 0 {
		return fmt.Errorf("sim.duration must not be negative, got %v", s.Sim.Duration)
	}
	if s.Vehicle.BodyRadius < 0 {
		return fmt.Errorf("vehicle.body_radius must not be negative, got %v", s.Vehicle.BodyRadius)
	}
	for i, wp := range s.Waypoints {
		if _, err := vec3(wp.Position); err != nil {
			return fmt.Errorf("waypoints[%d] %q position: %w", i, wp.Name, err)
		}
	}
	for i, o := range s.Obstacles {
		if _, err := vec3(o.Center); err != nil {
			return fmt.Errorf("obstacles[%d] %q center: %w", i, o.Name, err)
		}
		if _, err := vec3(o.Size); err != nil {
			return fmt.Errorf("obstacles[%d] %q size: %w", i, o.Name, err)
		}
		if o.Layer < 0 || o.Layer > 31 {
			return fmt.Errorf("obstacles[%d] %q layer %d out of range", i, o.Name, o.Layer)
		}
	}
	for _, l := range s.Vehicle.ObstacleLayers {
		if l < 0 || l > 31 {
			return fmt.Errorf("vehicle.obstacle_layers: layer %d out of range", l)
		}
	}
	for i, c := range s.Script {
		if _, err := input.ParseActions(c.Actions); err != nil {
			return fmt.Errorf("script[%d]: %w", i, err)
		}
		if c.At < 0 || c.Duration < 0 {
			return fmt.Errorf("script[%d]: negative time", i)
		}
	}
	for _, f := range []struct {
		name string
		v    []float64
	}{{"camera.offset", s.Camera.Offset}, {"camera.look_offset", s.Camera.LookOffset}} {
		if len(f.v) == 0 {
			continue
		}
		if _, err := vec3(f.v); err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
	}
	return nil
}

// vec3 accepts [x, y, z] or a ground-plane [x, z]
func vec3(v []float64) (mgl64.Vec3, error) {
	switch len(v) {
	case 3:
		return mgl64.Vec3{v[0], v[1], v[2]}, nil
	case 2:
		return mgl64.Vec3{v[0], 0, v[1]}, nil
	default:
		return mgl64.Vec3{}, fmt.Errorf("want 2 or 3 components, got %d", len(v))
	}
}

// vec3Or returns def for an empty slice
func vec3Or(v []float64, def mgl64.Vec3) mgl64.Vec3 {
	if len(v) == 0 {
		return def
	}
	out, err := vec3(v)
	if err != nil {
		return def
	}
	return out
}
