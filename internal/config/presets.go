package config

import (
	"sort"

	"github.com/san-kum/quadsim/internal/dynamo"
)

var Presets = map[string]func(*Config){
	"hover": func(c *Config) {
		c.Launch.Disturbance = 0
	},
	"tilt": func(c *Config) {
		c.Duration = 20
		c.Launch.EulerDeg = dynamo.Vec3{X: 20, Y: -10}
		c.Launch.Disturbance = 0.2
	},
	"aggressive": func(c *Config) {
		c.Duration = 15
		c.Controller.Kp = 4
		c.Controller.Kd = 1.2
		c.Controller.TargetDeg = dynamo.Vec3{X: 30, Y: -30, Z: 90}
	},
	"noisy": func(c *Config) {
		c.Duration = 30
		c.Sensor.GyroSigma = 0.05
	},
	"drop": func(c *Config) {
		c.Duration = 1.4
		c.Launch.Disturbance = 0
		c.Controller.Disarmed = true
	},
}

var presetDescriptions = map[string]string{
	"hover":      "level launch, no disturbance",
	"tilt":       "recover from 20 deg roll and -10 deg pitch",
	"aggressive": "track a large attitude step with stiff gains",
	"noisy":      "level launch with a noisy, drifting gyro",
	"drop":       "motors stopped, free fall",
}

func DescribePreset(name string) string {
	return presetDescriptions[name]
}

// GetPreset returns a fresh config with the named preset applied to the
// defaults, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
