package metrics

import (
	"math"

	"github.com/san-kum/quadsim/internal/dynamo"
)

// Energy is the mean translational mechanical energy (kinetic plus
// potential relative to z = 0), in joules.
type Energy struct {
	name        string
	mass        float64
	gravity     float64
	samples     int
	totalEnergy float64
}

func NewEnergy(mass, gravity float64) *Energy {
	return &Energy{
		name:    "energy",
		mass:    mass,
		gravity: gravity,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(s dynamo.Snapshot) {
	v := s.Velocity
	ke := 0.5 * e.mass * v.Dot(v)
	pe := e.mass * e.gravity * s.Position.Z
	e.totalEnergy += ke + pe
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// AltitudeDrift is the largest vertical excursion from the altitude seen on
// the first observed tick.
type AltitudeDrift struct {
	name     string
	start    float64
	maxDrift float64
	samples  int
}

func NewAltitudeDrift() *AltitudeDrift {
	return &AltitudeDrift{
		name: "altitude_drift",
	}
}

func (a *AltitudeDrift) Name() string { return a.name }

func (a *AltitudeDrift) Observe(s dynamo.Snapshot) {
	if a.samples == 0 {
		a.start = s.Position.Z
	}
	a.samples++
	a.maxDrift = math.Max(a.maxDrift, math.Abs(s.Position.Z-a.start))
}

func (a *AltitudeDrift) Value() float64 {
	return a.maxDrift
}

func (a *AltitudeDrift) Reset() {
	a.start = 0
	a.maxDrift = 0
	a.samples = 0
}
