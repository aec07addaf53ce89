package sensor

import (
	"fmt"

	"github.com/san-kum/quadsim/internal/dynamo"
)

// MotionSource exposes the true rates and body velocity of a vehicle.
type MotionSource interface {
	RateSource
	Velocity() dynamo.Vec3
}

// IMU is a Gyro that also samples body velocity.
type IMU struct {
	*Gyro
	source   MotionSource
	velocity dynamo.Vec3
}

func NewIMU(sigma float64, source MotionSource, rng dynamo.Rand) (*IMU, error) {
	if source == nil {
		return nil, fmt.Errorf("sensor: nil motion source")
	}
	g, err := NewGyro(sigma, source, rng)
	if err != nil {
		return nil, err
	}
	return &IMU{Gyro: g, source: source}, nil
}

// ReadVelocity returns a noisy instantaneous velocity sample. Unlike the
// attitude it is not integrated, so it does not drift.
func (m *IMU) ReadVelocity() dynamo.Vec3 {
	m.velocity = m.pollute(m.source.Velocity())
	return m.velocity
}

func (m *IMU) Reset() {
	m.Gyro.Reset()
	m.velocity = dynamo.Vec3{}
}
