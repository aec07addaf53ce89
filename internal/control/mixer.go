package control

import (
	"math"

	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/physics"
)

// Command is a demand for total thrust (N) and body torque (N m).
type Command struct {
	Thrust float64
	Torque dynamo.Vec3
}

// Mixer maps thrust/torque demands onto motor speeds for the rotor layout
// documented in package physics.
type Mixer struct {
	k, l, b  float64
	maxSpeed float64
}

func NewMixer(spec physics.Spec) Mixer {
	return Mixer{
		k:        spec.ThrustCoefficient,
		l:        spec.ArmLength,
		b:        spec.DragTorqueCoeff,
		maxSpeed: spec.MaxMotorAngularSpeed,
	}
}

// Clamp limits each component of c independently to the range the rotors
// could produce on their own. The bool reports whether anything was cut.
func (m Mixer) Clamp(c Command) (Command, bool) {
	w2 := m.maxSpeed * m.maxSpeed
	thrustMax := 4 * m.k * w2
	tiltMax := m.l * m.k * w2
	yawMax := 2 * m.b * w2

	var out Command
	var cut [4]bool
	out.Thrust, cut[0] = clamp(c.Thrust, 0, thrustMax)
	out.Torque.X, cut[1] = clamp(c.Torque.X, -tiltMax, tiltMax)
	out.Torque.Y, cut[2] = clamp(c.Torque.Y, -tiltMax, tiltMax)
	out.Torque.Z, cut[3] = clamp(c.Torque.Z, -yawMax, yawMax)
	return out, cut[0] || cut[1] || cut[2] || cut[3]
}

// MotorSpeeds clamps c, inverts the allocation matrix and clamps every
// squared speed to [0, max²]. Combinations no rotor set can satisfy, such as
// yaw demand larger than the thrust margin, saturate instead of going
// negative.
func (m Mixer) MotorSpeeds(c Command) ([physics.NumRotors]float64, bool) {
	c, saturated := m.Clamp(c)

	base := ratio(c.Thrust, 4*m.k)
	roll := ratio(c.Torque.X, 2*m.l*m.k)
	pitch := ratio(c.Torque.Y, 2*m.l*m.k)
	yaw := ratio(c.Torque.Z, 4*m.b)

	var squared [physics.NumRotors]float64
	squared[physics.MotorBack] = base + yaw - roll
	squared[physics.MotorFront] = base + yaw + roll
	squared[physics.MotorRight] = base - yaw + pitch
	squared[physics.MotorLeft] = base - yaw - pitch

	var speeds [physics.NumRotors]float64
	for i, s := range squared {
		s, cut := clamp(s, 0, m.maxSpeed*m.maxSpeed)
		saturated = saturated || cut
		speeds[i] = math.Sqrt(s)
	}
	return speeds, saturated
}

// clamp maps NaN to lo.
func clamp(v, lo, hi float64) (float64, bool) {
	switch {
	case math.IsNaN(v):
		return lo, true
	case v < lo:
		return lo, true
	case v > hi:
		return hi, true
	}
	return v, false
}

// ratio is num/den, with a missing actuator (den == 0) contributing nothing.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
