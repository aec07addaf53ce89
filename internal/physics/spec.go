package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/quadsim/internal/dynamo"
)

const (
	DefaultArmLength            = 0.29
	DefaultMass                 = 1.0
	DefaultMaxMotorAngularSpeed = 1000.0
	DefaultThrustCoefficient    = 2.39e-5
	DefaultDragTorqueCoeff      = 1.39e-6
	DefaultGravity              = 9.82
	DefaultDisturbance          = 1.0
)

// Spec is the immutable description of a vehicle. Quadcopter keeps its own
// copy, so changing a Spec after construction has no effect on a running
// simulation.
type Spec struct {
	ArmLength            float64     `yaml:"arm_length" json:"arm_length"`
	Mass                 float64     `yaml:"mass" json:"mass"`
	MaxMotorAngularSpeed float64     `yaml:"max_motor_angular_speed" json:"max_motor_angular_speed"`
	ThrustCoefficient    float64     `yaml:"thrust_coefficient" json:"thrust_coefficient"`
	MomentOfInertia      dynamo.Vec3 `yaml:"moment_of_inertia" json:"moment_of_inertia"`
	DragCoefficients     dynamo.Vec3 `yaml:"drag_coefficients" json:"drag_coefficients"`
	DragTorqueCoeff      float64     `yaml:"drag_torque_coefficient" json:"drag_torque_coefficient"`
	Gravity              float64     `yaml:"gravity" json:"gravity"`
}

func DefaultSpec() Spec {
	return Spec{
		ArmLength:            DefaultArmLength,
		Mass:                 DefaultMass,
		MaxMotorAngularSpeed: DefaultMaxMotorAngularSpeed,
		ThrustCoefficient:    DefaultThrustCoefficient,
		MomentOfInertia:      dynamo.Vec3{X: 0.04989, Y: 0.04989, Z: 0.24057},
		DragCoefficients:     dynamo.Vec3{X: 0.164, Y: 0.319, Z: 0},
		DragTorqueCoeff:      DefaultDragTorqueCoeff,
		Gravity:              DefaultGravity,
	}
}

// Validate rejects constants that would only surface later as NaN.
func (s Spec) Validate() error {
	switch {
	case !positive(s.Mass):
		return fmt.Errorf("%w: mass must be positive, got %v", dynamo.ErrInvalidSpec, s.Mass)
	case !positive(s.MomentOfInertia.X) || !positive(s.MomentOfInertia.Y) || !positive(s.MomentOfInertia.Z):
		return fmt.Errorf("%w: moment of inertia must be positive, got %v", dynamo.ErrInvalidSpec, s.MomentOfInertia)
	case !positive(s.ArmLength):
		return fmt.Errorf("%w: arm length must be positive, got %v", dynamo.ErrInvalidSpec, s.ArmLength)
	case !positive(s.MaxMotorAngularSpeed):
		return fmt.Errorf("%w: max motor angular speed must be positive, got %v", dynamo.ErrInvalidSpec, s.MaxMotorAngularSpeed)
	case !(s.ThrustCoefficient >= 0) || math.IsInf(s.ThrustCoefficient, 0):
		return fmt.Errorf("%w: thrust coefficient must be non-negative, got %v", dynamo.ErrInvalidSpec, s.ThrustCoefficient)
	case !(s.DragTorqueCoeff >= 0) || math.IsInf(s.DragTorqueCoeff, 0):
		return fmt.Errorf("%w: drag torque coefficient must be non-negative, got %v", dynamo.ErrInvalidSpec, s.DragTorqueCoeff)
	case !s.DragCoefficients.IsValid():
		return fmt.Errorf("%w: drag coefficients must be finite, got %v", dynamo.ErrInvalidSpec, s.DragCoefficients)
	case !(s.Gravity >= 0) || math.IsInf(s.Gravity, 0):
		return fmt.Errorf("%w: gravity must be non-negative, got %v", dynamo.ErrInvalidSpec, s.Gravity)
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// HoverMotorSpeed is the common motor speed at which thrust balances weight.
func (s Spec) HoverMotorSpeed() float64 {
	if s.ThrustCoefficient == 0 {
		return math.Inf(1)
	}
	return math.Sqrt(s.Mass * s.Gravity / (4 * s.ThrustCoefficient))
}

func (s Spec) GetParams() map[string]float64 {
	return map[string]float64{
		"arm_length":              s.ArmLength,
		"mass":                    s.Mass,
		"max_motor_angular_speed": s.MaxMotorAngularSpeed,
		"thrust_coefficient":      s.ThrustCoefficient,
		"inertia_x":               s.MomentOfInertia.X,
		"inertia_y":               s.MomentOfInertia.Y,
		"inertia_z":               s.MomentOfInertia.Z,
		"drag_x":                  s.DragCoefficients.X,
		"drag_y":                  s.DragCoefficients.Y,
		"drag_z":                  s.DragCoefficients.Z,
		"drag_torque_coefficient": s.DragTorqueCoeff,
		"gravity":                 s.Gravity,
	}
}
