package control

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/physics"
)

const (
	DefaultDerivativeScale   = 0.8
	DefaultProportionalScale = 1.0
)

// PDController holds attitude at a target using the sensor's dead-reckoned
// attitude. The error terms are used directly as torque demands.
type PDController struct {
	DerivativeScale   float64
	ProportionalScale float64

	vehicle   Vehicle
	sensor    Sensor
	spec      physics.Spec
	mixer     Mixer
	errors    ErrorState
	state     State
	saturated bool
}

// NewPDController wires a controller to its vehicle and sensor. The sensor
// is aligned to the vehicle's current attitude and the controller starts
// armed.
func NewPDController(vehicle Vehicle, sensor Sensor) (*PDController, error) {
	if vehicle == nil || sensor == nil {
		return nil, errors.New("control: vehicle and sensor are required")
	}
	spec := vehicle.Spec()
	c := &PDController{
		DerivativeScale:   DefaultDerivativeScale,
		ProportionalScale: DefaultProportionalScale,
		vehicle:           vehicle,
		sensor:            sensor,
		spec:              spec,
		mixer:             NewMixer(spec),
	}
	c.Arm()
	return c, nil
}

func (c *PDController) Target() dynamo.Vec3     { return c.errors.Target }
func (c *PDController) SetTarget(t dynamo.Vec3) { c.errors.Target = t }

// Errors returns a copy of the current error terms.
func (c *PDController) Errors() ErrorState { return c.errors }

func (c *PDController) State() State    { return c.state }
func (c *PDController) Armed() bool     { return c.state == Armed }
func (c *PDController) Saturated() bool { return c.saturated }

// Arm re-enables motor commands. The sensor is re-aligned to the vehicle's
// attitude and the error history dropped so the first tick has no
// derivative kick.
func (c *PDController) Arm() {
	c.sensor.Align(c.vehicle.EulerAngles())
	c.errors.Reset()
	c.state = Armed
}

// Disarm stops the motors and freezes further commands until Arm.
func (c *PDController) Disarm() {
	c.state = Disarmed
	c.saturated = false
	c.vehicle.SetMotorAngularVelocity([physics.NumRotors]float64{})
}

// Reset clears the sensor accumulator and the error terms. The vehicle is
// not touched; resetting it is the driver's call.
func (c *PDController) Reset() {
	c.sensor.Reset()
	c.errors.Reset()
	c.saturated = false
}

// Update reads the sensor, refreshes the error terms and writes new motor
// speeds into the vehicle. A disarmed controller writes zeros.
func (c *PDController) Update(dt float64) error {
	if err := checkDt(dt); err != nil {
		return err
	}
	if c.state != Armed {
		c.vehicle.SetMotorAngularVelocity([physics.NumRotors]float64{})
		return nil
	}

	measured := c.sensor.ReadEulerAngles(dt)
	c.errors.Update(measured, dt)
	c.vehicle.SetMotorAngularVelocity(c.ComputeDesiredMotorSpeeds(measured))
	return nil
}

// ComputeDesiredMotorSpeeds turns the current error terms into motor speeds.
// Thrust is sized to cancel gravity at the measured tilt.
func (c *PDController) ComputeDesiredMotorSpeeds(measured dynamo.Vec3) [physics.NumRotors]float64 {
	tilt := math.Cos(measured.X) * math.Cos(measured.Y)
	cmd := Command{
		Thrust: c.spec.Mass * c.spec.Gravity / tilt,
		Torque: c.errors.Output(c.ProportionalScale, c.DerivativeScale),
	}
	speeds, saturated := c.mixer.MotorSpeeds(cmd)
	c.saturated = saturated
	return speeds
}

func (c *PDController) GetParams() map[string]float64 {
	return map[string]float64{
		"kp":           c.ProportionalScale,
		"kd":           c.DerivativeScale,
		"target_roll":  c.errors.Target.X,
		"target_pitch": c.errors.Target.Y,
		"target_yaw":   c.errors.Target.Z,
	}
}

func (c *PDController) SetParam(name string, value float64) error {
	switch name {
	case "kp":
		c.ProportionalScale = value
	case "kd":
		c.DerivativeScale = value
	case "target_roll":
		c.errors.Target.X = value
	case "target_pitch":
		c.errors.Target.Y = value
	case "target_yaw":
		c.errors.Target.Z = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
