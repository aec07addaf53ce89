// Package physics is the rigid-body flight-dynamics engine of a quadrotor.
//
// A [Spec] holds the immutable vehicle constants. A [Quadcopter] owns the
// mutable [FlightState] and advances it with [Quadcopter.Update] using a
// fixed-order semi-implicit Euler step:
//
//	quad, _ := physics.NewQuadcopter(physics.DefaultSpec(), rand.New(rand.NewSource(1)))
//	quad.SetInitialState(dynamo.Vec3{Z: 5}, dynamo.Vec3{X: 0.1})
//	for i := 0; i < 1000; i++ {
//	    if err := quad.Update(0.01); err != nil { ... }
//	}
//
// # Rotor layout
//
// Motors are indexed 0 back, 1 right, 2 front, 3 left. The front/back pair
// produces roll torque, the right/left pair pitch torque, and motors 0 and 2
// spin opposite to 1 and 3 so their drag torques cancel at equal speed.
//
// Update does not check for NaN. Pitch near ±90° makes the Euler-rate
// transform blow up and the driver is expected to halt on invalid state.
package physics
