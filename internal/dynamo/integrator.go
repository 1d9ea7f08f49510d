package dynamo

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/magfield/internal/integrators"
	"github.com/san-kum/magfield/internal/magnet"
	"github.com/san-kum/magfield/internal/transform"
)

// Integrator advances a population of dipoles with explicit Euler.
type Integrator struct {
	Params Params
	Bounds transform.Box

	dipoles []*magnet.Dipole
	bodies  []Body
	euler   *integrators.Euler

	running       bool
	stepRequested bool
	time          float64
	steps         int
}

func NewIntegrator(dipoles []*magnet.Dipole, bounds transform.Box, params Params) *Integrator {
	in := &Integrator{
		Params: params,
		Bounds: bounds,
		euler:  integrators.NewEuler(),
	}
	in.SetDipoles(dipoles)
	return in
}

// SetDipoles replaces the population. Dipoles that were already present keep
// their velocities; new ones start at rest.
func (in *Integrator) SetDipoles(dipoles []*magnet.Dipole) {
	prev := make(map[*magnet.Dipole]Body, len(in.dipoles))
	for i, d := range in.dipoles {
		prev[d] = in.bodies[i]
	}
	in.dipoles = dipoles
	in.bodies = make([]Body, len(dipoles))
	for i, d := range dipoles {
		in.bodies[i] = prev[d]
	}
}

func (in *Integrator) Dipoles() []*magnet.Dipole { return in.dipoles }

// Bodies returns a copy of the per-dipole motion state.
func (in *Integrator) Bodies() []Body {
	out := make([]Body, len(in.bodies))
	copy(out, in.bodies)
	return out
}

func (in *Integrator) Running() bool  { return in.running }
func (in *Integrator) Time() float64  { return in.time }
func (in *Integrator) Steps() int     { return in.steps }
func (in *Integrator) Speed() float64 { return in.Params.Speed }
func (in *Integrator) Reversed() bool { return in.Params.Reverse }

func (in *Integrator) SetSpeed(speed float64) { in.Params.Speed = math.Max(speed, 0) }
func (in *Integrator) SetReverse(r bool)      { in.Params.Reverse = r }

// Start (re)starts the simulation with every dipole at rest.
func (in *Integrator) Start() {
	in.ResetVelocities()
	in.running = true
}

func (in *Integrator) Stop() {
	in.running = false
	in.stepRequested = false
}

// RequestStep asks for exactly one iteration on the next Update, even while
// stopped.
func (in *Integrator) RequestStep() { in.stepRequested = true }

func (in *Integrator) ResetVelocities() {
	for i := range in.bodies {
		in.bodies[i] = Body{}
	}
}

// Update advances one iteration if the simulation is running or a single
// step was requested, and reports whether anything moved.
func (in *Integrator) Update(realDt float64) bool {
	if !in.running && !in.stepRequested {
		return false
	}
	in.stepRequested = false
	in.Step(realDt)
	return true
}

// Step performs one iteration unconditionally. Velocities integrate over the
// real frame time; poses integrate over the scaled, possibly negated, sim
// time.
func (in *Integrator) Step(realDt float64) {
	wrenches := in.Forces()
	simDt := in.Params.SimDt(realDt)
	tree := in.tree()

	for i, d := range in.dipoles {
		b := &in.bodies[i]
		w := wrenches[i]

		b.Velocity = in.euler.Step(b.Velocity, w.Force.Mul(1/in.Params.Mass), realDt)
		b.AngularVelocity = in.euler.Step(b.AngularVelocity, w.Torque.Mul(1/in.Params.MomentOfInertia), realDt)

		pos := in.euler.Step(d.Position(), b.Velocity, simDt)
		tree.SetWorldPosition(d.Node(), in.Bounds.Clamp(pos))

		rot := in.euler.Rotate(tree.WorldRotation(d.Node()), b.AngularVelocity, simDt)
		tree.SetWorldRotation(d.Node(), rot)
	}

	in.time += simDt
	in.steps++
}

// Forces evaluates the clamped wrench on every dipole from the current state.
func (in *Integrator) Forces() []Wrench {
	out := make([]Wrench, len(in.dipoles))
	for i, d := range in.dipoles {
		m := d.MomentVector()
		b := in.fieldFromOthers(i, d.Position())

		out[i] = Wrench{
			Force:  clampVec(in.gradient(i, m), in.Params.ForceClamp),
			Torque: clampVec(m.Cross(b), in.Params.TorqueClamp),
		}
	}
	return out
}

// gradient is the central difference of m·B_others around dipole i.
func (in *Integrator) gradient(i int, m mgl64.Vec3) mgl64.Vec3 {
	h := in.Params.GradientStep
	p := in.dipoles[i].Position()

	var grad mgl64.Vec3
	for axis := 0; axis < 3; axis++ {
		var e mgl64.Vec3
		e[axis] = h
		plus := m.Dot(in.fieldFromOthers(i, p.Add(e)))
		minus := m.Dot(in.fieldFromOthers(i, p.Sub(e)))
		grad[axis] = (plus - minus) / (2 * h)
	}
	return grad
}

func (in *Integrator) fieldFromOthers(i int, pos mgl64.Vec3) mgl64.Vec3 {
	var b mgl64.Vec3
	for j, d := range in.dipoles {
		if j != i {
			b = b.Add(d.Field(pos))
		}
	}
	return b
}

func (in *Integrator) tree() *transform.Tree {
	if len(in.dipoles) == 0 {
		return nil
	}
	return in.dipoles[0].Tree()
}

// KineticEnergy is Σ ½mv² + ½Iω².
func (in *Integrator) KineticEnergy() float64 {
	e := 0.0
	for _, b := range in.bodies {
		e += 0.5 * in.Params.Mass * b.Velocity.Dot(b.Velocity)
		e += 0.5 * in.Params.MomentOfInertia * b.AngularVelocity.Dot(b.AngularVelocity)
	}
	return e
}

// PotentialEnergy is the pairwise interaction energy -Σ m_i·B_j(p_i), i<j.
func (in *Integrator) PotentialEnergy() float64 {
	u := 0.0
	for i, di := range in.dipoles {
		for j := i + 1; j < len(in.dipoles); j++ {
			u -= di.MomentVector().Dot(in.dipoles[j].Field(di.Position()))
		}
	}
	return u
}

// Validate reports the first dipole whose pose or motion is not finite.
func (in *Integrator) Validate() error {
	for i, d := range in.dipoles {
		b := in.bodies[i]
		q := d.Tree().WorldRotation(d.Node())
		if !finite(d.Position()) || !finite(b.Velocity) || !finite(b.AngularVelocity) || !finite(q.V) || !finite(mgl64.Vec3{q.W}) {
			return &StepError{Step: in.steps, Time: in.time, Dipole: i, Wrapped: ErrInvalidState}
		}
	}
	return nil
}

func clampVec(v mgl64.Vec3, limit float64) mgl64.Vec3 {
	for i := range v {
		v[i] = mgl64.Clamp(v[i], -limit, limit)
	}
	return v
}

func finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
