package metrics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/magfield/internal/dynamo"
	"github.com/san-kum/magfield/internal/magnet"
	"github.com/san-kum/magfield/internal/transform"
)

var _ dynamo.Metric = (*KineticEnergy)(nil)
var _ dynamo.Metric = (*EnergyDrift)(nil)
var _ dynamo.Metric = (*Stability)(nil)
var _ dynamo.Metric = (*MinSeparation)(nil)
var _ dynamo.Metric = (*MaxSpeed)(nil)

var up = transform.QuatFromEuler(mgl64.Vec3{90, 0, 0})

func dipolesAt(xs ...float64) []*magnet.Dipole {
	tree := transform.NewTree()
	out := make([]*magnet.Dipole, len(xs))
	for i, x := range xs {
		out[i] = magnet.NewDipole(tree, mgl64.Vec3{x, 0, 0}, up, 1, transform.None)
	}
	return out
}

func TestKineticEnergy(t *testing.T) {
	m := NewKineticEnergy(2.0, 0.5)
	bodies := []dynamo.Body{
		{Velocity: mgl64.Vec3{1, 0, 0}},
		{AngularVelocity: mgl64.Vec3{0, 2, 0}},
	}

	m.Observe(nil, bodies, 0)
	// ½·2·1 + ½·0.5·4
	if math.Abs(m.Value()-2.0) > 1e-12 {
		t.Errorf("expected energy 2, got %f", m.Value())
	}

	m.Observe(nil, make([]dynamo.Body, 2), 0.1)
	if math.Abs(m.Value()-1.0) > 1e-12 {
		t.Errorf("expected mean energy 1, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyDrift(t *testing.T) {
	dipoles := dipolesAt(-0.5, 0.5)
	m := NewEnergyDrift(1, 0.1)

	m.Observe(dipoles, make([]dynamo.Body, 2), 0)
	if m.Value() != 0 {
		t.Errorf("first sample drift = %g", m.Value())
	}

	u := Interaction(dipoles)
	// Two unit masses at speed sqrt(|U|) add kinetic energy |U|.
	speed := math.Sqrt(math.Abs(u))
	bodies := []dynamo.Body{{Velocity: mgl64.Vec3{speed, 0, 0}}, {Velocity: mgl64.Vec3{-speed, 0, 0}}}
	m.Observe(dipoles, bodies, 0.1)
	if math.Abs(m.Value()-1) > 1e-9 {
		t.Errorf("drift = %g, want 1", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero drift after reset")
	}
}

func TestInteractionSign(t *testing.T) {
	// Side by side and parallel: repulsive, positive energy.
	if u := Interaction(dipolesAt(-0.5, 0.5)); u <= 0 {
		t.Errorf("Interaction() = %g, want > 0", u)
	}
	if u := Interaction(dipolesAt(0)); u != 0 {
		t.Errorf("single dipole Interaction() = %g", u)
	}
}

func TestStability(t *testing.T) {
	s := NewStability(1.0)
	if s.Value() != 1 {
		t.Errorf("empty stability = %g", s.Value())
	}

	s.Observe(nil, []dynamo.Body{{Velocity: mgl64.Vec3{0.5, 0, 0}}}, 0)
	s.Observe(nil, []dynamo.Body{{Velocity: mgl64.Vec3{0, 2, 0}}, {Velocity: mgl64.Vec3{0, 3, 0}}}, 0)
	if s.Value() != 0.5 {
		t.Errorf("stability = %g, want 0.5", s.Value())
	}
}

func TestMinSeparation(t *testing.T) {
	tests := []struct {
		name string
		xs   []float64
		want float64
	}{
		{"pair", []float64{-0.5, 0.5}, 1},
		{"triple", []float64{-1, 0.25, 1}, 0.75},
		{"single", []float64{0}, math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMinSeparation()
			m.Observe(dipolesAt(tt.xs...), nil, 0)
			if m.Value() != tt.want {
				t.Errorf("Value() = %g, want %g", m.Value(), tt.want)
			}
			m.Reset()
			if !math.IsInf(m.Value(), 1) {
				t.Error("reset should forget the minimum")
			}
		})
	}
}

func TestMaxSpeed(t *testing.T) {
	m := NewMaxSpeed()
	m.Observe(nil, []dynamo.Body{{Velocity: mgl64.Vec3{3, 4, 0}}}, 0)
	m.Observe(nil, []dynamo.Body{{Velocity: mgl64.Vec3{1, 0, 0}}}, 0)
	if m.Value() != 5 {
		t.Errorf("Value() = %g, want 5", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}
