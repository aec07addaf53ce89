package metrics

import (
	"math"

	"github.com/san-kum/quadsim/internal/dynamo"
)

// AttitudeError is the RMS distance between the true attitude and a fixed
// target, in radians.
type AttitudeError struct {
	target  dynamo.Vec3
	sumSq   float64
	samples int
}

func NewAttitudeError(target dynamo.Vec3) *AttitudeError {
	return &AttitudeError{target: target}
}

func (a *AttitudeError) Name() string { return "attitude_error" }

func (a *AttitudeError) Observe(s dynamo.Snapshot) {
	d := s.EulerAngles.Sub(a.target)
	a.sumSq += d.Dot(d)
	a.samples++
}

func (a *AttitudeError) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return math.Sqrt(a.sumSq / float64(a.samples))
}

func (a *AttitudeError) Reset() {
	a.sumSq = 0
	a.samples = 0
}

// SensorDrift is the largest gap seen between the gyro's dead-reckoned
// attitude and the true attitude.
type SensorDrift struct {
	max float64
}

func NewSensorDrift() *SensorDrift { return &SensorDrift{} }

func (d *SensorDrift) Name() string { return "sensor_drift" }

func (d *SensorDrift) Observe(s dynamo.Snapshot) {
	d.max = math.Max(d.max, s.Measured.Sub(s.EulerAngles).Norm())
}

func (d *SensorDrift) Value() float64 { return d.max }
func (d *SensorDrift) Reset()         { d.max = 0 }
