package metrics

import (
	"math"

	"github.com/san-kum/quadsim/internal/dynamo"
)

// Stability is the fraction of ticks on which roll and pitch both stayed
// within threshold radians of level.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(snap dynamo.Snapshot) {
	s.samples++
	e := snap.EulerAngles
	if !(math.Abs(e.X) <= s.threshold && math.Abs(e.Y) <= s.threshold) {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
