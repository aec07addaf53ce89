// Package dynamo provides the shared primitives of the quadrotor simulator.
//
//   - [Vec3]: 3-vector arithmetic used by every component
//   - [State], [Snapshot]: flattened telemetry read back by drivers
//   - [Metric], [Observer]: per-tick hooks
//   - [InsideUnitSphere]: isotropic random draws from an injected [Rand]
//
// Angles are radians everywhere in this module; conversion to degrees
// happens only at the presentation boundary (CLI, MCP).
//
// # Thread Safety
//
// Nothing here is safe for concurrent mutation. Parallel runs each own a
// complete set of components, see sim.Ensemble.
package dynamo
