// Package metrics holds per-run scalar metrics computed from flight
// snapshots.
package metrics

import "github.com/san-kum/quadsim/internal/dynamo"

// Standard returns the metric set the CLI reports for every run.
func Standard(target dynamo.Vec3, mass, gravity float64) []dynamo.Metric {
	return []dynamo.Metric{
		NewAttitudeError(target),
		NewStability(DefaultStabilityThreshold),
		NewControlEffort(),
		NewSaturation(),
		NewAltitudeDrift(),
		NewSensorDrift(),
		NewEnergy(mass, gravity),
	}
}

// DefaultStabilityThreshold is 5 degrees.
const DefaultStabilityThreshold = 0.0872664626
