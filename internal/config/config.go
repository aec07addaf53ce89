package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/quadsim/internal/control"
	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/kinematics"
	"github.com/san-kum/quadsim/internal/physics"
	"github.com/san-kum/quadsim/internal/sim"
)

const (
	DefaultDt       = 0.01
	DefaultDuration = 10.0
	DefaultAltitude = 10.0
)

// Config is the on-disk run description. Angles are degrees here and
// converted to radians by SimConfig.
type Config struct {
	Dt          float64          `yaml:"dt" env:"QUADSIM_DT"`
	Duration    float64          `yaml:"duration" env:"QUADSIM_DURATION"`
	Seed        int64            `yaml:"seed" env:"QUADSIM_SEED"`
	RecordEvery int              `yaml:"record_every" env:"QUADSIM_RECORD_EVERY"`
	Vehicle     physics.Spec     `yaml:"vehicle"`
	Launch      LaunchConfig     `yaml:"launch"`
	Controller  ControllerConfig `yaml:"controller"`
	Sensor      SensorConfig     `yaml:"sensor"`
}

type LaunchConfig struct {
	Position    dynamo.Vec3 `yaml:"position"`
	EulerDeg    dynamo.Vec3 `yaml:"euler_deg"`
	Disturbance float64     `yaml:"disturbance" env:"QUADSIM_DISTURBANCE"`
}

type ControllerConfig struct {
	Kp        float64     `yaml:"kp" env:"QUADSIM_KP"`
	Kd        float64     `yaml:"kd" env:"QUADSIM_KD"`
	TargetDeg dynamo.Vec3 `yaml:"target_deg"`
	Disarmed  bool        `yaml:"disarmed" env:"QUADSIM_DISARMED"`
}

type SensorConfig struct {
	GyroSigma float64 `yaml:"gyro_sigma" env:"QUADSIM_GYRO_SIGMA"`
}

func DefaultConfig() *Config {
	return &Config{
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		Vehicle:  physics.DefaultSpec(),
		Launch: LaunchConfig{
			Position:    dynamo.Vec3{Z: DefaultAltitude},
			Disturbance: physics.DefaultDisturbance,
		},
		Controller: ControllerConfig{
			Kp: control.DefaultProportionalScale,
			Kd: control.DefaultDerivativeScale,
		},
	}
}

// Load reads a YAML file over the defaults, then applies QUADSIM_*
// environment overrides.
func Load(path string) (*Config, error) {
	return LoadInto(path, DefaultConfig())
}

// LoadInto is Load with a caller-chosen base, e.g. a preset.
func LoadInto(path string, cfg *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overwrites fields whose QUADSIM_* variable is set.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate fails fast on values that would otherwise surface as NaN
// mid-run.
func (c *Config) Validate() error {
	if err := c.SimConfig().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.RecordEvery < 0 {
		return fmt.Errorf("config: record_every must be non-negative, got %d", c.RecordEvery)
	}
	return nil
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Dt:          c.Dt,
		Duration:    c.Duration,
		RecordEvery: c.RecordEvery,
		Flight: sim.FlightConfig{
			Spec:              c.Vehicle,
			Position:          c.Launch.Position,
			EulerAngles:       kinematics.Vec3Deg2Rad(c.Launch.EulerDeg),
			Target:            kinematics.Vec3Deg2Rad(c.Controller.TargetDeg),
			Disturbance:       c.Launch.Disturbance,
			GyroSigma:         c.Sensor.GyroSigma,
			ProportionalScale: c.Controller.Kp,
			DerivativeScale:   c.Controller.Kd,
			Seed:              c.Seed,
			Disarmed:          c.Controller.Disarmed,
		},
	}
}
