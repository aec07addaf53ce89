package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/quadsim/internal/control"
	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/physics"
)

// FlightConfig describes one flight: the vehicle, its launch pose and the
// sensor/controller setup. Angles are radians.
type FlightConfig struct {
	Spec              physics.Spec
	Position          dynamo.Vec3
	EulerAngles       dynamo.Vec3
	Target            dynamo.Vec3
	Disturbance       float64
	GyroSigma         float64
	ProportionalScale float64
	DerivativeScale   float64
	Seed              int64
	// Disarmed launches with the motors stopped.
	Disarmed bool
}

func DefaultFlightConfig() FlightConfig {
	return FlightConfig{
		Spec:              physics.DefaultSpec(),
		Position:          dynamo.Vec3{Z: 10},
		Disturbance:       physics.DefaultDisturbance,
		ProportionalScale: control.DefaultProportionalScale,
		DerivativeScale:   control.DefaultDerivativeScale,
	}
}

type Config struct {
	Flight   FlightConfig
	Dt       float64
	Duration float64
	// RecordEvery keeps every Nth snapshot in the result. Values below 2
	// keep all of them.
	RecordEvery int
}

func (c Config) Validate() error {
	if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("%w: got %v", dynamo.ErrInvalidTimestep, c.Dt)
	}
	if !(c.Duration > 0) || math.IsInf(c.Duration, 0) {
		return fmt.Errorf("duration must be positive, got %v", c.Duration)
	}
	if c.Duration < c.Dt {
		return fmt.Errorf("duration %v shorter than dt %v", c.Duration, c.Dt)
	}
	if c.Flight.GyroSigma < 0 || c.Flight.Disturbance < 0 {
		return fmt.Errorf("noise magnitudes must be non-negative")
	}
	return c.Flight.Spec.Validate()
}

// Steps is the number of ticks a run of this config takes.
func (c Config) Steps() int {
	return int(math.Round(c.Duration / c.Dt))
}
