package control

import "github.com/san-kum/quadsim/internal/dynamo"

// ErrorState tracks the error terms of one group of axes.
//
// Integral is accumulated every tick but Output does not use it.
type ErrorState struct {
	Target       dynamo.Vec3
	Proportional dynamo.Vec3
	Derivative   dynamo.Vec3
	Integral     dynamo.Vec3
	primed       bool
}

// Update recomputes the error terms for a new measurement. The first
// sample after a reset has no previous error, so its derivative is zero.
func (e *ErrorState) Update(measured dynamo.Vec3, dt float64) {
	p := e.Target.Sub(measured)
	if e.primed {
		e.Derivative = p.Sub(e.Proportional).Scale(1 / dt)
	} else {
		e.Derivative = dynamo.Vec3{}
		e.primed = true
	}
	e.Proportional = p
	e.Integral = e.Integral.Add(p.Scale(dt))
}

// Output combines the proportional and derivative terms.
func (e *ErrorState) Output(proportionalScale, derivativeScale float64) dynamo.Vec3 {
	return e.Derivative.Scale(derivativeScale).Add(e.Proportional.Scale(proportionalScale))
}

// Reset clears the error terms. Target is kept.
func (e *ErrorState) Reset() {
	e.Proportional = dynamo.Vec3{}
	e.Derivative = dynamo.Vec3{}
	e.Integral = dynamo.Vec3{}
	e.primed = false
}
