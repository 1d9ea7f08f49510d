package fieldline

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/magfield/internal/magnet"
	"github.com/san-kum/magfield/internal/transform"
)

func benchTracer(workers int) *Tracer {
	tree := transform.NewTree()
	sources := []magnet.Source{
		magnet.NewDipole(tree, mgl64.Vec3{-0.5, 0, 0}, up, 1, transform.None),
		magnet.NewDipole(tree, mgl64.Vec3{0.5, 0, 0}, up, -1, transform.None),
		magnet.NewBar(tree, mgl64.Vec3{0, 0.8, 0}, mgl64.QuatIdent(), mgl64.Vec3{0.5, 0.2, 0.2}, 400, 0.2, transform.None),
	}
	cfg := DefaultConfig()
	cfg.MaxSteps = 200
	cfg.Workers = workers
	return NewTracer(sources, transform.NewBox(4, 4, 4), cfg)
}

func BenchmarkTraceSerial(b *testing.B) {
	tr := benchTracer(1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = tr.Trace()
	}
}

func BenchmarkTraceParallel(b *testing.B) {
	tr := benchTracer(0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = tr.Trace()
	}
}
