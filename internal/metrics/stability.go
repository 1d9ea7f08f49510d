package metrics

import (
	"github.com/san-kum/magfield/internal/dynamo"
	"github.com/san-kum/magfield/internal/magnet"
)

// Stability is the fraction of samples in which every dipole moved slower
// than threshold.
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

func (s *Stability) Observe(dipoles []*magnet.Dipole, bodies []dynamo.Body, t float64) {
	s.samples++
	for _, b := range bodies {
		if b.Velocity.Len() > s.threshold {
			s.violations++
			break
		}
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
