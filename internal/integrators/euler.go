package integrators

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Euler is the explicit first order scheme used for rigid dipole motion.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

// Step returns x + dx*dt.
func (e *Euler) Step(x, dx mgl64.Vec3, dt float64) mgl64.Vec3 {
	return x.Add(dx.Mul(dt))
}

// Rotate applies angular velocity omega for dt to q:
//
//	q' = normalize((1, omega*dt/2) * q)
//
// A degenerate result keeps q.
func (e *Euler) Rotate(q mgl64.Quat, omega mgl64.Vec3, dt float64) mgl64.Quat {
	dq := mgl64.Quat{W: 1, V: omega.Mul(dt * 0.5)}
	next := dq.Mul(q)
	n := next.Len()
	if n == 0 || math.IsNaN(n) {
		return q
	}
	return next.Scale(1 / n)
}
