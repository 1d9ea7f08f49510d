package metrics

import (
	"math"

	"github.com/san-kum/magfield/internal/dynamo"
	"github.com/san-kum/magfield/internal/magnet"
)

// MinSeparation is the closest any two dipoles came, in working units.
type MinSeparation struct {
	name string
	min  float64
}

func NewMinSeparation() *MinSeparation {
	return &MinSeparation{name: "min_separation", min: math.Inf(1)}
}

func (m *MinSeparation) Name() string { return m.name }

func (m *MinSeparation) Observe(dipoles []*magnet.Dipole, bodies []dynamo.Body, t float64) {
	m.min = math.Min(m.min, Separation(dipoles))
}

// Value is +Inf until two dipoles have been observed.
func (m *MinSeparation) Value() float64 { return m.min }
func (m *MinSeparation) Reset()         { m.min = math.Inf(1) }

// Separation is the smallest pairwise distance, or +Inf for fewer than two
// dipoles.
func Separation(dipoles []*magnet.Dipole) float64 {
	best := math.Inf(1)
	for i, a := range dipoles {
		pa := a.Position()
		for _, b := range dipoles[i+1:] {
			best = math.Min(best, b.Position().Sub(pa).Len())
		}
	}
	return best
}

// MaxSpeed is the largest linear speed any dipole reached.
type MaxSpeed struct {
	name string
	max  float64
}

func NewMaxSpeed() *MaxSpeed {
	return &MaxSpeed{name: "max_speed"}
}

func (m *MaxSpeed) Name() string { return m.name }

func (m *MaxSpeed) Observe(dipoles []*magnet.Dipole, bodies []dynamo.Body, t float64) {
	for _, b := range bodies {
		m.max = math.Max(m.max, b.Velocity.Len())
	}
}

func (m *MaxSpeed) Value() float64 { return m.max }
func (m *MaxSpeed) Reset()         { m.max = 0 }
