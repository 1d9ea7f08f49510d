package fieldline

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/magfield/internal/dynamo"
	"github.com/san-kum/magfield/internal/integrators"
	"github.com/san-kum/magfield/internal/magnet"
	"github.com/san-kum/magfield/internal/transform"
)

// WeakField is the field magnitude below which a line stops.
const WeakField = 1e-6

type Config struct {
	StepSize         float64
	MaxSteps         int
	AdaptiveMinStep  float64
	AdaptiveMaxStep  float64
	AdaptiveFieldRef float64
	Adaptive         bool

	// Workers pins the number of goroutines; 0 uses one per CPU.
	Workers int
}

func DefaultConfig() Config {
	return Config{
		StepSize:         0.01,
		MaxSteps:         1000,
		AdaptiveMinStep:  0.002,
		AdaptiveMaxStep:  0.05,
		AdaptiveFieldRef: 1e6,
	}
}

// Sample is a point on a field line and the field there.
type Sample struct {
	Position mgl64.Vec3
	Field    mgl64.Vec3
}

// Line is an ordered polyline traced from one seed. For a Both seed the
// samples run from the end of the backward half, through the seed, to the
// end of the forward half.
type Line struct {
	Seed    magnet.Seed
	Samples []Sample
}

func (l Line) Len() int { return len(l.Samples) }

// Tracer integrates field lines through the summed field of its sources.
type Tracer struct {
	sources []magnet.Source
	bounds  transform.Box
	cfg     Config
	rk4     *integrators.RK4
}

func NewTracer(sources []magnet.Source, bounds transform.Box, cfg Config) *Tracer {
	return &Tracer{
		sources: sources,
		bounds:  bounds,
		cfg:     cfg,
		rk4:     integrators.NewRK4(),
	}
}

// SetSources replaces the source list. The slice is not copied.
func (t *Tracer) SetSources(sources []magnet.Source) { t.sources = sources }
func (t *Tracer) Sources() []magnet.Source           { return t.sources }

func (t *Tracer) SetBounds(b transform.Box) { t.bounds = b }
func (t *Tracer) Bounds() transform.Box     { return t.bounds }

func (t *Tracer) SetConfig(cfg Config) { t.cfg = cfg }
func (t *Tracer) Config() Config       { return t.cfg }

// Workers is the number of goroutines Trace uses for n seeds.
func (t *Tracer) Workers(n int) int {
	return dynamo.Workers(n, t.cfg.Workers)
}

func (t *Tracer) TotalField(pos mgl64.Vec3) mgl64.Vec3 {
	return magnet.TotalField(t.sources, pos)
}

// Seeds collects the trace seeds of every source in source order.
func (t *Tracer) Seeds() []magnet.Seed {
	var seeds []magnet.Seed
	for _, s := range t.sources {
		seeds = append(seeds, s.TraceSeeds()...)
	}
	return seeds
}

// Trace traces one line per seed of every source.
func (t *Tracer) Trace() []Line {
	return t.TraceSeeds(t.Seeds())
}

// TraceSeeds traces one line per seed. Seeds are split into contiguous
// chunks, one per worker, and the per-chunk results are concatenated in
// chunk order, so the output order matches seeds for any worker count.
func (t *Tracer) TraceSeeds(seeds []magnet.Seed) []Line {
	if len(seeds) == 0 {
		return nil
	}

	workers := t.Workers(len(seeds))
	results := make([][]Line, workers)

	dynamo.ParallelFor(len(seeds), workers, func(chunk, start, end int) {
		local := make([]Line, 0, end-start)
		for _, seed := range seeds[start:end] {
			local = append(local, t.TraceSeed(seed))
		}
		results[chunk] = local
	})

	lines := make([]Line, 0, len(seeds))
	for _, r := range results {
		lines = append(lines, r...)
	}
	return lines
}

// TraceSeed traces a single line from seed. The seed itself is always the
// pivot sample of the line.
func (t *Tracer) TraceSeed(seed magnet.Seed) Line {
	var backward, forward []Sample
	if seed.Direction.HasBackward() {
		backward = t.walk(seed.Position, -1)
	}
	if seed.Direction.HasForward() {
		forward = t.walk(seed.Position, 1)
	}

	samples := make([]Sample, 0, len(backward)+1+len(forward))
	for i := len(backward) - 1; i >= 0; i-- {
		samples = append(samples, backward[i])
	}
	samples = append(samples, Sample{Position: seed.Position, Field: t.TotalField(seed.Position)})
	samples = append(samples, forward...)

	return Line{Seed: seed, Samples: samples}
}

// walk follows the field from start, with sign +1 along it and -1 against
// it, and returns the accepted samples in walking order.
func (t *Tracer) walk(start mgl64.Vec3, sign float64) []Sample {
	dir := func(p mgl64.Vec3) (mgl64.Vec3, bool) {
		if !t.bounds.Contains(p) {
			return mgl64.Vec3{}, false
		}
		b := t.TotalField(p)
		mag := b.Len()
		if mag < WeakField {
			return mgl64.Vec3{}, false
		}
		return b.Mul(sign / mag), true
	}

	var samples []Sample
	pos := start
	field := t.TotalField(pos)
	for steps := 0; steps < t.cfg.MaxSteps && t.bounds.Contains(pos); steps++ {
		mag := field.Len()
		if mag < WeakField {
			break
		}
		k1 := field.Mul(sign / mag)

		next, ok := t.rk4.Step(dir, pos, k1, t.stepSize(mag))
		if !ok || !t.bounds.Contains(next) {
			break
		}
		pos = next
		field = t.TotalField(pos)
		samples = append(samples, Sample{Position: pos, Field: field})
	}
	return samples
}

// stepSize is the fixed step, or in adaptive mode ref/|B|*step clamped to
// [AdaptiveMinStep, AdaptiveMaxStep].
func (t *Tracer) stepSize(fieldMag float64) float64 {
	if !t.cfg.Adaptive {
		return t.cfg.StepSize
	}
	if fieldMag < WeakField {
		return t.cfg.AdaptiveMaxStep
	}
	step := t.cfg.AdaptiveFieldRef / fieldMag * t.cfg.StepSize
	return mgl64.Clamp(step, t.cfg.AdaptiveMinStep, t.cfg.AdaptiveMaxStep)
}
