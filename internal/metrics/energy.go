package metrics

import (
	"math"

	"github.com/san-kum/magfield/internal/dynamo"
	"github.com/san-kum/magfield/internal/magnet"
)

// KineticEnergy is the mean over samples of Σ ½mv² + ½Iω².
type KineticEnergy struct {
	name    string
	mass    float64
	inertia float64
	samples int
	total   float64
}

func NewKineticEnergy(mass, inertia float64) *KineticEnergy {
	return &KineticEnergy{
		name:    "kinetic_energy",
		mass:    mass,
		inertia: inertia,
	}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(dipoles []*magnet.Dipole, bodies []dynamo.Body, t float64) {
	e.total += kinetic(bodies, e.mass, e.inertia)
	e.samples++
}

func (e *KineticEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *KineticEnergy) Reset() {
	e.total = 0
	e.samples = 0
}

// EnergyDrift tracks the largest relative change of kinetic plus interaction
// energy from the first sample. The force clamps make this non-zero even for
// small steps.
type EnergyDrift struct {
	name     string
	mass     float64
	inertia  float64
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift(mass, inertia float64) *EnergyDrift {
	return &EnergyDrift{
		name:    "energy_drift",
		mass:    mass,
		inertia: inertia,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(dipoles []*magnet.Dipole, bodies []dynamo.Body, t float64) {
	energy := kinetic(bodies, e.mass, e.inertia) + Interaction(dipoles)

	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++

	if e.initial != 0 {
		drift := math.Abs(energy-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}

// Interaction is the pairwise dipole energy -Σ m_i·B_j(p_i) over i<j.
func Interaction(dipoles []*magnet.Dipole) float64 {
	u := 0.0
	for i, di := range dipoles {
		for _, dj := range dipoles[i+1:] {
			u -= di.MomentVector().Dot(dj.Field(di.Position()))
		}
	}
	return u
}

func kinetic(bodies []dynamo.Body, mass, inertia float64) float64 {
	e := 0.0
	for _, b := range bodies {
		e += 0.5 * mass * b.Velocity.Dot(b.Velocity)
		e += 0.5 * inertia * b.AngularVelocity.Dot(b.AngularVelocity)
	}
	return e
}
