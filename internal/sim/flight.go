package sim

import (
	"fmt"
	"math/rand"

	"github.com/san-kum/quadsim/internal/control"
	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/physics"
	"github.com/san-kum/quadsim/internal/sensor"
)

// Flight owns one vehicle together with its gyro and attitude controller
// and advances them in lockstep. It is not safe for concurrent use.
type Flight struct {
	cfg  FlightConfig
	quad *physics.Quadcopter
	gyro *sensor.Gyro
	ctrl *control.PDController

	step int
	time float64
	halt *dynamo.SimulationError
}

func NewFlight(cfg FlightConfig) (*Flight, error) {
	rng := rand.New(rand.NewSource(cfg.Seed))

	quad, err := physics.NewQuadcopter(cfg.Spec, rng, physics.WithDisturbance(cfg.Disturbance))
	if err != nil {
		return nil, fmt.Errorf("flight: %w", err)
	}
	quad.SetInitialState(cfg.Position, cfg.EulerAngles)

	gyro, err := sensor.NewGyro(cfg.GyroSigma, quad, rng)
	if err != nil {
		return nil, fmt.Errorf("flight: %w", err)
	}
	ctrl, err := control.NewPDController(quad, gyro)
	if err != nil {
		return nil, fmt.Errorf("flight: %w", err)
	}
	ctrl.ProportionalScale = cfg.ProportionalScale
	ctrl.DerivativeScale = cfg.DerivativeScale
	ctrl.SetTarget(cfg.Target)
	if cfg.Disarmed {
		ctrl.Disarm()
	}

	return &Flight{cfg: cfg, quad: quad, gyro: gyro, ctrl: ctrl}, nil
}

// Tick advances dynamics then control by dt. A non-finite state disarms
// the controller and halts the flight; every later tick fails with
// ErrDisarmed until Reset.
func (f *Flight) Tick(dt float64) error {
	if f.halt != nil {
		return fmt.Errorf("%w: %w", dynamo.ErrDisarmed, f.halt)
	}
	if err := f.quad.Update(dt); err != nil {
		return err
	}
	if !f.valid() {
		return f.halted(dt)
	}
	if err := f.ctrl.Update(dt); err != nil {
		return err
	}
	if !f.valid() {
		return f.halted(dt)
	}
	f.step++
	f.time += dt
	return nil
}

func (f *Flight) valid() bool {
	return f.quad.State().IsValid() && f.gyro.Reading().MeasuredEulerAngles.IsValid()
}

func (f *Flight) halted(dt float64) error {
	f.ctrl.Disarm()
	f.halt = &dynamo.SimulationError{
		Step:    f.step + 1,
		Time:    f.time + dt,
		State:   f.Snapshot().State(),
		Wrapped: dynamo.ErrInvalidState,
	}
	return f.halt
}

// Reset puts vehicle, sensor and controller back to launch conditions with
// a fresh disturbance and re-arms.
func (f *Flight) Reset() {
	f.quad.ResetState()
	f.ctrl.Reset()
	f.ctrl.Arm()
	f.step = 0
	f.time = 0
	f.halt = nil
}

// Arm re-enables the controller. A halted flight must be Reset first.
func (f *Flight) Arm() error {
	if f.halt != nil {
		return fmt.Errorf("%w: %w", dynamo.ErrDisarmed, f.halt)
	}
	f.ctrl.Arm()
	return nil
}

func (f *Flight) Disarm()     { f.ctrl.Disarm() }
func (f *Flight) Armed() bool { return f.ctrl.Armed() }

// Halted reports whether the flight stopped on an invalid state.
func (f *Flight) Halted() bool { return f.halt != nil }

// Err returns the error that halted the flight, or nil.
func (f *Flight) Err() error {
	if f.halt == nil {
		return nil
	}
	return f.halt
}

func (f *Flight) SetTarget(t dynamo.Vec3) { f.ctrl.SetTarget(t) }
func (f *Flight) Target() dynamo.Vec3     { return f.ctrl.Target() }

func (f *Flight) Config() FlightConfig              { return f.cfg }
func (f *Flight) Quadcopter() *physics.Quadcopter   { return f.quad }
func (f *Flight) Gyro() *sensor.Gyro                { return f.gyro }
func (f *Flight) Controller() *control.PDController { return f.ctrl }
func (f *Flight) Step() int                         { return f.step }
func (f *Flight) Time() float64                     { return f.time }

func (f *Flight) Snapshot() dynamo.Snapshot {
	st := f.quad.State()
	return dynamo.Snapshot{
		Step:            f.step,
		Time:            f.time,
		Position:        st.Position,
		EulerAngles:     st.EulerAngles,
		Velocity:        st.Velocity,
		AngularVelocity: st.AngularVelocity,
		Motors:          st.MotorAngularVelocity,
		Measured:        f.gyro.Reading().MeasuredEulerAngles,
		Armed:           f.ctrl.Armed(),
		Saturated:       f.ctrl.Saturated(),
	}
}
