package metrics

import (
	"github.com/san-kum/quadsim/internal/dynamo"
)

// ControlEffort is the mean motor speed over all rotors and ticks, in rad/s.
type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(s dynamo.Snapshot) {
	for _, w := range s.Motors {
		c.sum += w
	}
	c.samples += len(s.Motors)
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

// Saturation is the fraction of ticks on which the mixer clipped a command.
type Saturation struct {
	clipped int
	samples int
}

func NewSaturation() *Saturation { return &Saturation{} }

func (s *Saturation) Name() string { return "saturation" }

func (s *Saturation) Observe(snap dynamo.Snapshot) {
	s.samples++
	if snap.Saturated {
		s.clipped++
	}
}

func (s *Saturation) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.clipped) / float64(s.samples)
}

func (s *Saturation) Reset() {
	s.clipped = 0
	s.samples = 0
}
