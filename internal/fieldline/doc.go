// Package fieldline traces magnetic field lines through the combined field of
// a set of [magnet.Source] values.
//
// Lines are integrated with classical RK4 along the unit field direction,
// starting from every source's trace seeds. A line ends when it leaves the
// bounding box, when the field becomes too weak to define a direction, or
// after Config.MaxSteps accepted steps in each direction.
//
// # Example
//
//	tree := transform.NewTree()
//	d := magnet.NewDipole(tree, mgl64.Vec3{}, transform.QuatFromEuler(mgl64.Vec3{90, 0, 0}), 1, transform.None)
//	tr := fieldline.NewTracer([]magnet.Source{d}, transform.NewBox(4, 4, 4), fieldline.DefaultConfig())
//	lines := tr.Trace()
//
// # Thread Safety
//
// Trace fans seeds out over a bounded set of goroutines and joins them before
// returning. Sources are only read while tracing; callers must not mutate
// them, or the tree they live in, until Trace returns. A Tracer itself is not
// safe for concurrent configuration changes.
package fieldline
