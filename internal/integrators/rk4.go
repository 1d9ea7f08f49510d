package integrators

import "github.com/go-gl/mathgl/mgl64"

// DirectionField returns the unit direction to follow at p, or false when p
// is outside the domain or the field there is too weak to follow.
type DirectionField func(p mgl64.Vec3) (mgl64.Vec3, bool)

// RK4 advances a point along a direction field with the classical fourth
// order Runge-Kutta scheme.
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

// Step advances p by h. k1 is the direction already known at p. If any
// intermediate stage is rejected by f the step is abandoned and ok is false.
func (r *RK4) Step(f DirectionField, p, k1 mgl64.Vec3, h float64) (mgl64.Vec3, bool) {
	k2, ok := f(p.Add(k1.Mul(h * 0.5)))
	if !ok {
		return p, false
	}
	k3, ok := f(p.Add(k2.Mul(h * 0.5)))
	if !ok {
		return p, false
	}
	k4, ok := f(p.Add(k3.Mul(h)))
	if !ok {
		return p, false
	}

	h6 := h / 6.0
	sum := k1.Add(k2.Mul(2)).Add(k3.Mul(2)).Add(k4)
	return p.Add(sum.Mul(h6)), true
}
