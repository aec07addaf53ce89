// Package sensor models rate gyros and IMUs that observe the true flight
// state with additive noise.
//
// The attitude a [Gyro] reports is dead-reckoned from noisy rate samples and
// drifts away from the true attitude over time. That drift is the point of
// the model.
package sensor

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/quadsim/internal/dynamo"
)

// RateSource exposes the true Euler-angle rates of a vehicle.
type RateSource interface {
	AngularVelocity() dynamo.Vec3
}

// Reading is the sensor's own state, independent of the flight state.
type Reading struct {
	MeasuredEulerAngles     dynamo.Vec3
	MeasuredAngularVelocity dynamo.Vec3
}

type Gyro struct {
	sigma   float64
	source  RateSource
	rng     dynamo.Rand
	reading Reading
}

// NewGyro returns a gyro observing source. sigma scales the noise draw;
// zero gives exact readings.
func NewGyro(sigma float64, source RateSource, rng dynamo.Rand) (*Gyro, error) {
	if !(sigma >= 0) || math.IsInf(sigma, 0) {
		return nil, fmt.Errorf("sensor: sigma must be non-negative, got %v", sigma)
	}
	if source == nil {
		return nil, fmt.Errorf("sensor: nil rate source")
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Gyro{sigma: sigma, source: source, rng: rng}, nil
}

func (g *Gyro) Sigma() float64 { return g.sigma }

func (g *Gyro) pollute(v dynamo.Vec3) dynamo.Vec3 {
	if g.sigma == 0 {
		return v
	}
	return v.Add(dynamo.InsideUnitSphere(g.rng).Scale(g.sigma))
}

// SampleAngularVelocity returns one noisy rate sample. The accumulator is
// left untouched.
func (g *Gyro) SampleAngularVelocity() dynamo.Vec3 {
	return g.pollute(g.source.AngularVelocity())
}

// ReadEulerAngles integrates a fresh rate sample over dt and returns the
// accumulated attitude.
func (g *Gyro) ReadEulerAngles(dt float64) dynamo.Vec3 {
	rate := g.SampleAngularVelocity()
	g.reading.MeasuredAngularVelocity = rate
	g.reading.MeasuredEulerAngles = g.reading.MeasuredEulerAngles.Add(rate.Scale(dt))
	return g.reading.MeasuredEulerAngles
}

// Reading returns the last integrated attitude and rate sample.
func (g *Gyro) Reading() Reading { return g.reading }

// Reset zeroes the accumulator.
func (g *Gyro) Reset() {
	g.reading = Reading{}
}

// Align sets the accumulator to a known attitude, as a level calibration
// does when the vehicle is armed.
func (g *Gyro) Align(euler dynamo.Vec3) {
	g.reading.MeasuredEulerAngles = euler
}
