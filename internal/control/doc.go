// Package control closes the loop from sensor readings to motor commands.
//
//   - [ErrorState]: per-axis proportional/derivative/integral error tracking
//   - [Mixer]: clamps a thrust/torque demand to what the rotors can deliver
//     and inverts the allocation matrix into four motor speeds
//   - [PDController]: attitude controller with an Armed/Disarmed state
//   - [Manual]: fixed motor speeds for test harnesses
//
// # Usage
//
//	ctrl, _ := control.NewPDController(quad, gyro)
//	ctrl.SetTarget(dynamo.Vec3{})
//	// each tick, after quad.Update(dt):
//	ctrl.Update(dt)
//
// Saturation is a normal operating condition and never reported as an
// error; [PDController.Saturated] exposes it for telemetry.
package control
