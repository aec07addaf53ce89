package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates NaN or Inf in the flight state, usually from
	// pitch reaching the kinematic singularity.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrInvalidSpec indicates a vehicle specification that cannot be simulated.
	ErrInvalidSpec = errors.New("dynamo: invalid vehicle specification")

	// ErrInvalidTimestep indicates a non-positive or non-finite time step.
	ErrInvalidTimestep = errors.New("dynamo: time step must be positive and finite")

	// ErrDisarmed indicates a tick was requested on a halted flight.
	ErrDisarmed = errors.New("dynamo: flight halted, reset required")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
