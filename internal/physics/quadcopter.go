package physics

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/kinematics"
)

const NumRotors = 4

// Rotor indices.
const (
	MotorBack = iota
	MotorRight
	MotorFront
	MotorLeft
)

// FlightState is the true state of the vehicle. Velocity and AngularVelocity
// are body-frame; AngularVelocity holds Euler-angle rates.
type FlightState struct {
	MotorAngularVelocity [NumRotors]float64
	Position             dynamo.Vec3
	EulerAngles          dynamo.Vec3
	Velocity             dynamo.Vec3
	AngularVelocity      dynamo.Vec3
}

func (s FlightState) IsValid() bool {
	for _, w := range s.MotorAngularVelocity {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return false
		}
	}
	return s.Position.IsValid() && s.EulerAngles.IsValid() &&
		s.Velocity.IsValid() && s.AngularVelocity.IsValid()
}

type Option func(*Quadcopter)

// WithDisturbance sets the radius of the random angular-velocity kick
// applied by SetInitialState and ResetState. Zero disables it.
func WithDisturbance(magnitude float64) Option {
	return func(q *Quadcopter) { q.disturbance = magnitude }
}

type Quadcopter struct {
	spec        Spec
	rng         dynamo.Rand
	disturbance float64
	state       FlightState
	initial     FlightState
}

// NewQuadcopter validates spec and returns a vehicle at rest at the origin.
// rng drives the launch disturbance; nil falls back to a fixed seed.
func NewQuadcopter(spec Spec, rng dynamo.Rand, opts ...Option) (*Quadcopter, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	q := &Quadcopter{
		spec:        spec,
		rng:         rng,
		disturbance: DefaultDisturbance,
	}
	for _, opt := range opts {
		opt(q)
	}
	if !(q.disturbance >= 0) || math.IsInf(q.disturbance, 0) {
		return nil, fmt.Errorf("%w: disturbance must be non-negative, got %v", dynamo.ErrInvalidSpec, q.disturbance)
	}
	return q, nil
}

// SetInitialState places the vehicle at rest with the given pose, records
// that pose for ResetState, then applies one random disturbance.
func (q *Quadcopter) SetInitialState(position, eulerAngles dynamo.Vec3) {
	q.initial = FlightState{
		Position:    position,
		EulerAngles: eulerAngles,
	}
	q.state = q.initial
	q.disturb()
}

// ResetState restores the recorded initial pose with a fresh disturbance.
func (q *Quadcopter) ResetState() {
	q.state = q.initial
	q.disturb()
}

func (q *Quadcopter) disturb() {
	if q.disturbance == 0 {
		return
	}
	kick := dynamo.InsideUnitSphere(q.rng).Scale(q.disturbance)
	q.state.AngularVelocity = q.state.AngularVelocity.Add(kick)
}

// Update advances the state by dt. The order of operations is fixed:
// forces are evaluated on the pre-step state, attitude integrates with the
// freshly updated rates, translation with the pre-step acceleration.
func (q *Quadcopter) Update(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: got %v", dynamo.ErrInvalidTimestep, dt)
	}

	acceleration := q.Acceleration()
	torque := q.Torque()

	euler := q.state.EulerAngles
	axis := kinematics.ToAxisVector(euler, q.state.AngularVelocity)
	axis = axis.Add(q.axisAcceleration(axis, torque).Scale(dt))

	q.state.AngularVelocity = kinematics.FromAxisVector(euler, axis)
	q.state.EulerAngles = euler.Add(q.state.AngularVelocity.Scale(dt))

	q.state.Velocity = q.state.Velocity.Add(acceleration.Scale(dt))
	q.state.Position = q.state.Position.Add(q.state.Velocity.Scale(dt))
	return nil
}

// Thrust is the body-frame rotor thrust.
func (q *Quadcopter) Thrust() dynamo.Vec3 {
	sum := 0.0
	for _, w := range q.state.MotorAngularVelocity {
		sum += w * w
	}
	return dynamo.Vec3{Z: q.spec.ThrustCoefficient * sum}
}

// Acceleration combines inertial gravity, body drag and rotated thrust.
func (q *Quadcopter) Acceleration() dynamo.Vec3 {
	gravity := dynamo.Vec3{Z: -q.spec.Gravity}
	drag := q.spec.DragCoefficients.Scale(-1).Mul(q.state.Velocity)
	thrust := kinematics.BodyToInertial(q.state.EulerAngles, q.Thrust()).Scale(1 / q.spec.Mass)
	return gravity.Add(drag).Add(thrust)
}

// Torque is the body torque produced by the current motor speeds.
func (q *Quadcopter) Torque() dynamo.Vec3 {
	var m [NumRotors]float64
	for i, w := range q.state.MotorAngularVelocity {
		m[i] = w * w
	}
	lk := q.spec.ArmLength * q.spec.ThrustCoefficient
	return dynamo.Vec3{
		X: lk * (m[MotorFront] - m[MotorBack]),
		Y: lk * (m[MotorRight] - m[MotorLeft]),
		Z: q.spec.DragTorqueCoeff * (m[0] - m[1] + m[2] - m[3]),
	}
}

// AngularAcceleration is the derivative of the rotation-axis angular
// velocity at the current state.
func (q *Quadcopter) AngularAcceleration() dynamo.Vec3 {
	axis := kinematics.ToAxisVector(q.state.EulerAngles, q.state.AngularVelocity)
	return q.axisAcceleration(axis, q.Torque())
}

// axisAcceleration is Euler's rigid-body equation for a diagonal inertia.
func (q *Quadcopter) axisAcceleration(axis, torque dynamo.Vec3) dynamo.Vec3 {
	inertia := q.spec.MomentOfInertia
	inverse := dynamo.Vec3{X: 1 / inertia.X, Y: 1 / inertia.Y, Z: 1 / inertia.Z}
	gyroscopic := axis.Cross(inertia.Mul(axis))
	return inverse.Mul(torque.Sub(gyroscopic))
}

func (q *Quadcopter) Spec() Spec                { return q.spec }
func (q *Quadcopter) State() FlightState        { return q.state }
func (q *Quadcopter) InitialState() FlightState { return q.initial }

func (q *Quadcopter) Position() dynamo.Vec3        { return q.state.Position }
func (q *Quadcopter) EulerAngles() dynamo.Vec3     { return q.state.EulerAngles }
func (q *Quadcopter) Velocity() dynamo.Vec3        { return q.state.Velocity }
func (q *Quadcopter) AngularVelocity() dynamo.Vec3 { return q.state.AngularVelocity }

func (q *Quadcopter) MotorAngularVelocity() [NumRotors]float64 {
	return q.state.MotorAngularVelocity
}

func (q *Quadcopter) SetPosition(p dynamo.Vec3)        { q.state.Position = p }
func (q *Quadcopter) SetEulerAngles(e dynamo.Vec3)     { q.state.EulerAngles = e }
func (q *Quadcopter) SetVelocity(v dynamo.Vec3)        { q.state.Velocity = v }
func (q *Quadcopter) SetAngularVelocity(w dynamo.Vec3) { q.state.AngularVelocity = w }

// SetMotorAngularVelocity writes motor commands directly, bypassing any
// controller. Negative speeds are treated as stopped.
func (q *Quadcopter) SetMotorAngularVelocity(speeds [NumRotors]float64) {
	for i, w := range speeds {
		q.state.MotorAngularVelocity[i] = math.Max(0, w)
	}
}
