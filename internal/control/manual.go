package control

import "github.com/san-kum/quadsim/internal/physics"

// Manual writes a fixed set of motor speeds every tick. Used to drive the
// vehicle without feedback, e.g. to check open-loop hover.
type Manual struct {
	vehicle Vehicle
	speeds  [physics.NumRotors]float64
	armed   bool
}

func NewManual(vehicle Vehicle, speeds [physics.NumRotors]float64) *Manual {
	return &Manual{vehicle: vehicle, speeds: speeds, armed: true}
}

// SetMotorSpeeds updates the speeds written from the next tick on.
func (m *Manual) SetMotorSpeeds(speeds [physics.NumRotors]float64) {
	m.speeds = speeds
}

func (m *Manual) Update(dt float64) error {
	if err := checkDt(dt); err != nil {
		return err
	}
	if !m.armed {
		m.vehicle.SetMotorAngularVelocity([physics.NumRotors]float64{})
		return nil
	}
	m.vehicle.SetMotorAngularVelocity(m.speeds)
	return nil
}

func (m *Manual) Reset()      {}
func (m *Manual) Arm()        { m.armed = true }
func (m *Manual) Armed() bool { return m.armed }

func (m *Manual) Disarm() {
	m.armed = false
	m.vehicle.SetMotorAngularVelocity([physics.NumRotors]float64{})
}
