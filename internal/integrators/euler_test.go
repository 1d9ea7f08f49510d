package integrators

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestEulerStep(t *testing.T) {
	e := NewEuler()
	got := e.Step(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{2, 0, -4}, 0.5)
	if want := (mgl64.Vec3{2, 2, 1}); got != want {
		t.Errorf("Step() = %v, want %v", got, want)
	}
}

func TestEulerRotate(t *testing.T) {
	e := NewEuler()

	tests := []struct {
		name  string
		omega mgl64.Vec3
	}{
		{"zero", mgl64.Vec3{}},
		{"about z", mgl64.Vec3{0, 0, 1}},
		{"fast", mgl64.Vec3{30, -10, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := mgl64.QuatRotate(0.3, mgl64.Vec3{1, 0, 0})
			for i := 0; i < 200; i++ {
				q = e.Rotate(q, tt.omega, 1.0/60)
				if math.Abs(q.Len()-1) > 1e-12 {
					t.Fatalf("step %d: |q| = %.15f", i, q.Len())
				}
			}
		})
	}
}

func TestEulerRotateSmallAngle(t *testing.T) {
	e := NewEuler()
	q := mgl64.QuatIdent()
	dt := 1e-3
	for i := 0; i < 1000; i++ {
		q = e.Rotate(q, mgl64.Vec3{0, 0, 1}, dt)
	}

	// One radian about +Z takes +X to (cos 1, sin 1, 0).
	got := q.Rotate(mgl64.Vec3{1, 0, 0})
	want := mgl64.Vec3{math.Cos(1), math.Sin(1), 0}
	if got.Sub(want).Len() > 1e-3 {
		t.Errorf("rotated +X to %v, want %v", got, want)
	}
}
