package dynamo

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/magfield/internal/magnet"
)

// Params are the global constants shared by every dipole. The clamps bound
// each force and torque component; they are tuning knobs, not physics.
type Params struct {
	Mass            float64
	MomentOfInertia float64
	ForceClamp      float64
	TorqueClamp     float64
	GradientStep    float64
	Speed           float64
	Reverse         bool
}

func DefaultParams() Params {
	return Params{
		Mass:            1.0,
		MomentOfInertia: 0.1,
		ForceClamp:      10.0,
		TorqueClamp:     10.0,
		GradientStep:    1e-3,
		Speed:           1.0,
	}
}

func (p Params) Validate() error {
	switch {
	case p.Mass <= 0:
		return fmt.Errorf("mass %g: %w", p.Mass, ErrParameterBounds)
	case p.MomentOfInertia <= 0:
		return fmt.Errorf("moment of inertia %g: %w", p.MomentOfInertia, ErrParameterBounds)
	case p.ForceClamp < 0:
		return fmt.Errorf("force clamp %g: %w", p.ForceClamp, ErrParameterBounds)
	case p.TorqueClamp < 0:
		return fmt.Errorf("torque clamp %g: %w", p.TorqueClamp, ErrParameterBounds)
	case p.GradientStep <= 0:
		return fmt.Errorf("gradient step %g: %w", p.GradientStep, ErrParameterBounds)
	case p.Speed < 0:
		return fmt.Errorf("speed %g: %w", p.Speed, ErrParameterBounds)
	}
	return nil
}

// SimDt scales a real frame delta by Speed, negated when Reverse is set.
func (p Params) SimDt(realDt float64) float64 {
	dt := realDt * p.Speed
	if p.Reverse {
		dt = -dt
	}
	return dt
}

// Body is the motion state of one dipole.
type Body struct {
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3
}

// Wrench is the clamped force and torque acting on one dipole.
type Wrench struct {
	Force  mgl64.Vec3
	Torque mgl64.Vec3
}

type Metric interface {
	Name() string
	Observe(dipoles []*magnet.Dipole, bodies []Body, t float64)
	Value() float64
	Reset()
}
