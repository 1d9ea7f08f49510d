package fieldline

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/magfield/internal/magnet"
	"github.com/san-kum/magfield/internal/transform"
)

var up = transform.QuatFromEuler(mgl64.Vec3{90, 0, 0})

// seedIndex finds the pivot sample of a line traced from seed.
func seedIndex(l Line) int {
	for i, s := range l.Samples {
		if s.Position == l.Seed.Position {
			return i
		}
	}
	return -1
}

// shellConstant is r/sin²θ about the +Y axis, constant along a dipole field line.
func shellConstant(p mgl64.Vec3) float64 {
	r := p.Len()
	sin := p.Normalize().Cross(mgl64.Vec3{0, 1, 0}).Len()
	return r / (sin * sin)
}

var _ = Describe("Tracer", func() {
	var (
		tree *transform.Tree
		cfg  Config
		box  transform.Box
	)

	BeforeEach(func() {
		tree = transform.NewTree()
		cfg = DefaultConfig()
		cfg.Workers = 1
		box = transform.NewBox(4, 4, 4)
	})

	Describe("a single dipole along +Y", func() {
		var (
			tr   *Tracer
			seed magnet.Seed
		)

		BeforeEach(func() {
			d := magnet.NewDipole(tree, mgl64.Vec3{}, up, 1, transform.None)
			tr = NewTracer([]magnet.Source{d}, box, cfg)
			seed = magnet.Seed{Position: mgl64.Vec3{0.5, 0, 0}, Direction: magnet.Both}
		})

		It("traces a closed loop through the dipole", func() {
			line := tr.TraceSeed(seed)
			k := seedIndex(line)
			Expect(k).To(BeNumerically(">", 0))
			Expect(line.Samples[k].Field).To(Equal(tr.TotalField(seed.Position)))

			// Forward runs against the moment at the equator, backward along it.
			Expect(line.Samples[k+1].Position.Y()).To(BeNumerically("<", 0))
			Expect(line.Samples[k-1].Position.Y()).To(BeNumerically(">", 0))

			closest := math.Inf(1)
			for _, s := range line.Samples {
				Expect(box.Contains(s.Position)).To(BeTrue())
				closest = math.Min(closest, s.Position.Len())
			}
			Expect(closest).To(BeNumerically("<", 0.05))

			for _, s := range line.Samples[k+1:] {
				if s.Position.Len() < 0.15 {
					break
				}
				Expect(shellConstant(s.Position)).To(BeNumerically("~", 0.5, 0.01))
			}
		})

		It("keeps each half within MaxSteps", func() {
			line := tr.TraceSeed(seed)
			k := seedIndex(line)
			Expect(k).To(BeNumerically("<=", cfg.MaxSteps))
			Expect(line.Len() - k - 1).To(BeNumerically("<=", cfg.MaxSteps))
		})

		It("takes exactly MaxSteps steps when nothing stops it", func() {
			cfg.MaxSteps = 50
			tr.SetConfig(cfg)

			line := tr.TraceSeed(seed)
			Expect(line.Len()).To(Equal(2*50 + 1))
			Expect(seedIndex(line)).To(Equal(50))
		})

		It("honours one-sided seeds", func() {
			cfg.MaxSteps = 20
			tr.SetConfig(cfg)

			fwd := tr.TraceSeed(magnet.Seed{Position: seed.Position, Direction: magnet.Forward})
			Expect(fwd.Len()).To(Equal(21))
			Expect(fwd.Samples[0].Position).To(Equal(seed.Position))

			back := tr.TraceSeed(magnet.Seed{Position: seed.Position, Direction: magnet.Backward})
			Expect(back.Len()).To(Equal(21))
			Expect(back.Samples[20].Position).To(Equal(seed.Position))
			Expect(back.Samples[19].Position.Y()).To(BeNumerically(">", 0))
		})

		It("steps a fixed distance along the unit direction", func() {
			cfg.MaxSteps = 1
			tr.SetConfig(cfg)

			line := tr.TraceSeed(magnet.Seed{Position: mgl64.Vec3{0, 0.5, 0}, Direction: magnet.Forward})
			Expect(line.Len()).To(Equal(2))
			Expect(line.Samples[1].Position.Y()).To(BeNumerically("~", 0.51, 1e-9))
		})

		It("stops at the box", func() {
			line := tr.TraceSeed(magnet.Seed{Position: mgl64.Vec3{0, 1.95, 0}, Direction: magnet.Forward})
			Expect(line.Len()).To(BeNumerically("<=", 6))
			for _, s := range line.Samples {
				Expect(box.Contains(s.Position)).To(BeTrue())
			}
		})

		It("returns only the seed when it starts outside the box", func() {
			line := tr.TraceSeed(magnet.Seed{Position: mgl64.Vec3{3, 0, 0}, Direction: magnet.Both})
			Expect(line.Len()).To(Equal(1))
		})
	})

	It("stops immediately in a field-free scene", func() {
		tr := NewTracer(nil, box, cfg)
		line := tr.TraceSeed(magnet.Seed{Position: mgl64.Vec3{0.1, 0, 0}, Direction: magnet.Both})
		Expect(line.Len()).To(Equal(1))
		Expect(line.Samples[0].Field).To(Equal(mgl64.Vec3{}))
		Expect(tr.Trace()).To(BeEmpty())
	})

	Describe("parallel tracing", func() {
		var tr *Tracer

		BeforeEach(func() {
			sources := []magnet.Source{
				magnet.NewDipole(tree, mgl64.Vec3{-0.6, -0.6, 0}, up, 1, transform.None),
				magnet.NewDipole(tree, mgl64.Vec3{0.6, -0.6, 0}, up, -1, transform.None),
				magnet.NewDipole(tree, mgl64.Vec3{-0.6, 0.6, 0}, transform.QuatFromEuler(mgl64.Vec3{0, 90, 0}), 1, transform.None),
				magnet.NewBar(tree, mgl64.Vec3{0.6, 0.6, 0}, mgl64.QuatIdent(), mgl64.Vec3{0.4, 0.4, 0.4}, 500, 0.5, transform.None),
			}
			cfg.MaxSteps = 150
			tr = NewTracer(sources, box, cfg)
		})

		It("produces one line per seed for any worker count", func() {
			seeds := tr.Seeds()
			Expect(seeds).To(HaveLen(3*magnet.DefaultSeedCount + magnet.BarSeedCount))

			serial := tr.Trace()
			Expect(serial).To(HaveLen(len(seeds)))

			for _, workers := range []int{2, 3, 7, len(seeds), 4 * len(seeds)} {
				cfg.Workers = workers
				tr.SetConfig(cfg)
				Expect(tr.Trace()).To(Equal(serial), "workers=%d", workers)
			}

			cfg.Workers = 0
			tr.SetConfig(cfg)
			Expect(tr.Trace()).To(ConsistOf(serial))
		})

		It("reports the resolved worker count", func() {
			cfg.Workers = 64
			tr.SetConfig(cfg)
			Expect(tr.Workers(10)).To(Equal(10))
			Expect(tr.Workers(0)).To(Equal(1))
		})
	})

	Describe("adaptive stepping", func() {
		DescribeTable("step size",
			func(adaptive bool, mag, want float64) {
				cfg.Adaptive = adaptive
				tr := NewTracer(nil, box, cfg)
				Expect(tr.stepSize(mag)).To(BeNumerically("~", want, 1e-12))
			},
			Entry("fixed ignores the field", false, 1e9, 0.01),
			Entry("reference field keeps the base step", true, 1e6, 0.01),
			Entry("strong field clamps to the minimum", true, 1e9, 0.002),
			Entry("weak field clamps to the maximum", true, 1e3, 0.05),
			Entry("between the bounds", true, 4e5, 0.025),
			Entry("vanishing field uses the maximum", true, 0.0, 0.05),
		)

		It("still bounds every half", func() {
			cfg.Adaptive = true
			cfg.MaxSteps = 300
			d := magnet.NewDipole(tree, mgl64.Vec3{}, up, 1, transform.None)
			tr := NewTracer([]magnet.Source{d}, box, cfg)

			line := tr.TraceSeed(magnet.Seed{Position: mgl64.Vec3{0.3, 0, 0}, Direction: magnet.Both})
			Expect(line.Len()).To(BeNumerically("<=", 2*300+1))
			for _, s := range line.Samples {
				Expect(box.Contains(s.Position)).To(BeTrue())
			}
		})
	})
})
