package dynamo

import (
	"fmt"
	"math"
)

// Vec3 is a 3-vector. Frame (body or inertial) is a property of the field
// that holds it, not of the type.
type Vec3 struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	Z float64 `yaml:"z" json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(f float64) Vec3 { return Vec3{v.X * f, v.Y * f, v.Z * f} }

// Mul is the component-wise product.
func (v Vec3) Mul(o Vec3) Vec3 { return Vec3{v.X * o.X, v.Y * o.Y, v.Z * o.Z} }

// Div is the component-wise quotient.
func (v Vec3) Div(o Vec3) Vec3 { return Vec3{v.X / o.X, v.Y / o.Y, v.Z / o.Z} }

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) Norm() float64 { return math.Sqrt(v.Dot(v)) }

func (v Vec3) IsValid() bool {
	return State{v.X, v.Y, v.Z}.IsValid()
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f)", v.X, v.Y, v.Z)
}

// State is a flattened snapshot used for telemetry and persistence.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// StateLabels names the columns of Snapshot.State, in order.
var StateLabels = []string{
	"x", "y", "z",
	"roll", "pitch", "yaw",
	"vx", "vy", "vz",
	"roll_rate", "pitch_rate", "yaw_rate",
	"m0", "m1", "m2", "m3",
	"meas_roll", "meas_pitch", "meas_yaw",
}

// Snapshot is what a driver reads back after each tick.
type Snapshot struct {
	Step            int
	Time            float64
	Position        Vec3
	EulerAngles     Vec3
	Velocity        Vec3
	AngularVelocity Vec3
	Motors          [4]float64
	Measured        Vec3
	Armed           bool
	Saturated       bool
}

func (s Snapshot) State() State {
	return State{
		s.Position.X, s.Position.Y, s.Position.Z,
		s.EulerAngles.X, s.EulerAngles.Y, s.EulerAngles.Z,
		s.Velocity.X, s.Velocity.Y, s.Velocity.Z,
		s.AngularVelocity.X, s.AngularVelocity.Y, s.AngularVelocity.Z,
		s.Motors[0], s.Motors[1], s.Motors[2], s.Motors[3],
		s.Measured.X, s.Measured.Y, s.Measured.Z,
	}
}

type Metric interface {
	Name() string
	Observe(s Snapshot)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s Snapshot)
}

type Result struct {
	Snapshots  []Snapshot
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
	Halted     bool
	Errors     []error
}

// States flattens the recorded snapshots.
func (r *Result) States() []State {
	out := make([]State, len(r.Snapshots))
	for i, s := range r.Snapshots {
		out[i] = s.State()
	}
	return out
}
