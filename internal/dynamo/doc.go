// Package dynamo moves magnetic dipoles under their mutual forces and
// torques.
//
// Each step evaluates, for every dipole, the field of all other dipoles at
// its position, the torque m × B and the force ∇(m · B) by central
// differences. Both are clamped per component and integrated with explicit
// Euler. Every force and torque is computed from the pre-step state before
// any dipole moves.
//
//   - [Integrator]: owns per-dipole velocities and the run state
//   - [Params]: mass, inertia, clamps and time control
//   - [Metric]: observer fed after each step by headless runs
//   - [ParallelFor]: fork-join helper used by the field line tracer
//
// # Example
//
//	tree := transform.NewTree()
//	a := magnet.NewDipole(tree, mgl64.Vec3{-0.5, 0, 0}, up, 1, transform.None)
//	b := magnet.NewDipole(tree, mgl64.Vec3{0.5, 0, 0}, up, -1, transform.None)
//	dyn := dynamo.NewIntegrator([]*magnet.Dipole{a, b}, transform.NewBox(4, 4, 4), dynamo.DefaultParams())
//	dyn.Start()
//	dyn.Update(1.0 / 60)
//
// # Thread Safety
//
// Integrator instances are NOT thread-safe. Steps mutate the transform tree,
// so no field line trace may run concurrently with Update or Step.
package dynamo
