package sim

import (
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/magfield/internal/config"
	"github.com/san-kum/magfield/internal/dynamo"
	"github.com/san-kum/magfield/internal/fieldline"
	"github.com/san-kum/magfield/internal/magnet"
	"github.com/san-kum/magfield/internal/transform"
)

// Scene owns the transform tree, the magnets placed in it, the field line
// tracer and the dipole dynamics. It is the single-threaded host the
// interactive viewer and headless runs drive: any command that moves or
// changes a source marks the cached field lines dirty, and FieldLines
// retraces them on the next call.
type Scene struct {
	tree           *transform.Tree
	pixelsPerMeter float64

	dipoles []*magnet.Dipole
	bars    []*magnet.Bar
	sources []magnet.Source

	tracer *fieldline.Tracer
	dyn    *dynamo.Integrator

	lines []fieldline.Line
	dirty bool
}

func NewScene(bounds transform.Box, trace fieldline.Config, params dynamo.Params) *Scene {
	return &Scene{
		tree:           transform.NewTree(),
		pixelsPerMeter: magnet.DefaultPixelsPerMeter,
		tracer:         fieldline.NewTracer(nil, bounds, trace),
		dyn:            dynamo.NewIntegrator(nil, bounds, params),
		dirty:          true,
	}
}

// BuildScene creates a scene and populates it from cfg.
func BuildScene(cfg *config.Config) *Scene {
	s := NewScene(cfg.Box(), cfg.TraceParams(), cfg.DynamicsParams())
	s.pixelsPerMeter = cfg.Units.PixelsPerMeter

	for _, d := range cfg.Scene.Dipoles {
		dip := s.AddDipole(config.Vec3(d.Position), transform.QuatFromEuler(config.Vec3(d.Rotation)), d.Moment)
		if d.SeedCount > 0 {
			dip.SeedCount = d.SeedCount
		}
		if d.SeedRadius > 0 {
			dip.SeedRadius = d.SeedRadius
		}
	}
	for _, b := range cfg.Scene.Bars {
		s.AddBar(config.Vec3(b.Position), transform.QuatFromEuler(config.Vec3(b.Rotation)), config.Vec3(b.Size), b.Density, b.Moment)
	}
	return s
}

func (s *Scene) Tree() *transform.Tree         { return s.tree }
func (s *Scene) Dipoles() []*magnet.Dipole     { return s.dipoles }
func (s *Scene) Bars() []*magnet.Bar           { return s.bars }
func (s *Scene) Sources() []magnet.Source      { return s.sources }
func (s *Scene) Tracer() *fieldline.Tracer     { return s.tracer }
func (s *Scene) Dynamics() *dynamo.Integrator  { return s.dyn }
func (s *Scene) Bounds() transform.Box         { return s.tracer.Bounds() }
func (s *Scene) TraceConfig() fieldline.Config { return s.tracer.Config() }
func (s *Scene) PixelsPerMeter() float64       { return s.pixelsPerMeter }

// Dirty reports whether the cached field lines are stale.
func (s *Scene) Dirty() bool { return s.dirty }
func (s *Scene) MarkDirty()  { s.dirty = true }

func (s *Scene) AddDipole(pos mgl64.Vec3, rot mgl64.Quat, moment float64) *magnet.Dipole {
	d := magnet.NewDipole(s.tree, pos, rot, moment, transform.None)
	d.PixelsPerMeter = s.pixelsPerMeter
	s.dipoles = append(s.dipoles, d)
	s.rebuild()
	return d
}

func (s *Scene) AddBar(pos mgl64.Vec3, rot mgl64.Quat, size mgl64.Vec3, density, moment float64) *magnet.Bar {
	b := magnet.NewBarWithScale(s.tree, pos, rot, size, density, moment, s.pixelsPerMeter, transform.None)
	s.bars = append(s.bars, b)
	s.rebuild()
	return b
}

// RemoveDipole destroys d and reports whether it belonged to the scene.
func (s *Scene) RemoveDipole(d *magnet.Dipole) bool {
	i := slices.Index(s.dipoles, d)
	if i < 0 {
		return false
	}
	s.dipoles = slices.Delete(s.dipoles, i, i+1)
	d.Destroy()
	s.rebuild()
	return true
}

func (s *Scene) RemoveBar(b *magnet.Bar) bool {
	i := slices.Index(s.bars, b)
	if i < 0 {
		return false
	}
	s.bars = slices.Delete(s.bars, i, i+1)
	b.Destroy()
	s.rebuild()
	return true
}

// rebuild refreshes the source list handed to the tracer and the dipole
// population handed to the dynamics. Bars stay fixed; only free dipoles move.
func (s *Scene) rebuild() {
	s.sources = make([]magnet.Source, 0, len(s.dipoles)+len(s.bars))
	for _, d := range s.dipoles {
		s.sources = append(s.sources, d)
	}
	for _, b := range s.bars {
		s.sources = append(s.sources, b)
	}
	s.tracer.SetSources(s.sources)
	s.dyn.SetDipoles(s.dipoles)
	s.dirty = true
}

func (s *Scene) SetPosition(node transform.Handle, pos mgl64.Vec3) {
	s.tree.SetWorldPosition(node, pos)
	s.dirty = true
}

func (s *Scene) SetRotation(node transform.Handle, rot mgl64.Quat) {
	s.tree.SetWorldRotation(node, rot)
	s.dirty = true
}

func (s *Scene) SetMoment(d *magnet.Dipole, moment float64) {
	d.SetMoment(moment)
	s.dirty = true
}

func (s *Scene) SetBarSize(b *magnet.Bar, size mgl64.Vec3) {
	b.SetSize(size)
	s.dirty = true
}

func (s *Scene) SetBarDensity(b *magnet.Bar, density float64) {
	b.SetDensity(density)
	s.dirty = true
}

func (s *Scene) SetBarMoment(b *magnet.Bar, moment float64) {
	b.SetMomentPerDipole(moment)
	s.dirty = true
}

func (s *Scene) SetBounds(b transform.Box) {
	s.tracer.SetBounds(b)
	s.dyn.Bounds = b
	s.dirty = true
}

func (s *Scene) SetTraceConfig(cfg fieldline.Config) {
	s.tracer.SetConfig(cfg)
	s.dirty = true
}

// ToggleAdaptive flips adaptive stepping and returns the new setting.
func (s *Scene) ToggleAdaptive() bool {
	cfg := s.tracer.Config()
	cfg.Adaptive = !cfg.Adaptive
	s.SetTraceConfig(cfg)
	return cfg.Adaptive
}

func (s *Scene) Start()                 { s.dyn.Start() }
func (s *Scene) Stop()                  { s.dyn.Stop() }
func (s *Scene) StepOnce()              { s.dyn.RequestStep() }
func (s *Scene) Running() bool          { return s.dyn.Running() }
func (s *Scene) SetReverse(r bool)      { s.dyn.SetReverse(r) }
func (s *Scene) SetSpeed(speed float64) { s.dyn.SetSpeed(speed) }

// Update advances the dynamics by one frame if they are running or a single
// step was requested. It reports whether anything moved.
func (s *Scene) Update(realDt float64) bool {
	if !s.dyn.Update(realDt) {
		return false
	}
	s.dirty = true
	return true
}

// FieldLines returns the traced lines, retracing only when the scene changed
// since the last call. The result is shared; do not modify.
func (s *Scene) FieldLines() []fieldline.Line {
	if s.dirty {
		s.lines = s.tracer.Trace()
		s.dirty = false
	}
	return s.lines
}

// TotalField is the field of every source at pos.
func (s *Scene) TotalField(pos mgl64.Vec3) mgl64.Vec3 {
	return magnet.TotalField(s.sources, pos)
}
