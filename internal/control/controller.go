package control

import (
	"fmt"
	"math"

	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/physics"
)

// Controller is what a tick driver needs from any motor-command source.
type Controller interface {
	Update(dt float64) error
	Reset()
	Arm()
	Disarm()
	Armed() bool
}

// Vehicle is the subset of physics.Quadcopter a controller drives.
type Vehicle interface {
	Spec() physics.Spec
	EulerAngles() dynamo.Vec3
	SetMotorAngularVelocity(speeds [physics.NumRotors]float64)
}

// Sensor is the subset of sensor.Gyro the attitude controller reads.
type Sensor interface {
	ReadEulerAngles(dt float64) dynamo.Vec3
	Reset()
	Align(euler dynamo.Vec3)
}

type State int

const (
	Disarmed State = iota
	Armed
)

func (s State) String() string {
	switch s {
	case Armed:
		return "armed"
	case Disarmed:
		return "disarmed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

func checkDt(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: got %v", dynamo.ErrInvalidTimestep, dt)
	}
	return nil
}
