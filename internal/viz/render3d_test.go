package viz

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/magfield/internal/fieldline"
	"github.com/san-kum/magfield/internal/transform"
)

func near(a, b int) bool { return absInt(a-b) <= 1 }

func TestCameraProjector(t *testing.T) {
	bounds := transform.NewBox(4, 4, 4)
	const sw, sh = 160, 96

	cam := NewCamera()
	project := cam.Projector(bounds, sw, sh)

	x, y, ok := project(mgl64.Vec3{})
	if !ok || x != sw/2 || y != sh/2 {
		t.Errorf("centre projected to (%d,%d,%v)", x, y, ok)
	}

	x, y, ok = project(mgl64.Vec3{2, 0, 0})
	if !ok || !near(x, sw/2+43) || y != sh/2 {
		t.Errorf("+x face projected to (%d,%d,%v)", x, y, ok)
	}

	cam.RotateZ(math.Pi / 2)
	project = cam.Projector(bounds, sw, sh)
	x, y, ok = project(mgl64.Vec3{2, 0, 0})
	if !ok || !near(x, sw/2) || !near(y, sh/2-43) {
		t.Errorf("rotated +x face projected to (%d,%d,%v)", x, y, ok)
	}
}

func TestCameraClipsBehind(t *testing.T) {
	project := NewCamera().Projector(transform.NewBox(4, 4, 4), 160, 96)
	if _, _, ok := project(mgl64.Vec3{0, 0, 8}); ok {
		t.Error("point behind the camera reported visible")
	}
}

func TestCameraZoom(t *testing.T) {
	cam := NewCamera()
	for i := 0; i < 50; i++ {
		cam.ZoomIn()
	}
	if cam.Zoom != 10 {
		t.Errorf("zoom not capped: %g", cam.Zoom)
	}
	cam.Reset()
	if cam.Zoom != 1 || cam.RotZ != 0 {
		t.Errorf("Reset left %+v", cam)
	}
}

func TestBoxEdges(t *testing.T) {
	edges := BoxEdges(transform.NewBox(1, 2, 3))
	if len(edges) != 12 {
		t.Fatalf("got %d edges", len(edges))
	}
	counts := map[float64]int{}
	for _, e := range edges {
		counts[math.Round(e[1].Sub(e[0]).Len()*1e9)/1e9]++
	}
	for _, l := range []float64{1, 2, 3} {
		if counts[l] != 4 {
			t.Errorf("%d edges of length %g, want 4", counts[l], l)
		}
	}
}

func TestDrawLines(t *testing.T) {
	c := NewCanvas(10, 5)
	pl := NewPlane(transform.NewBox(4, 4, 4), c)
	lines := []fieldline.Line{
		{Samples: []fieldline.Sample{{Position: mgl64.Vec3{-2, 2, 0}}, {Position: mgl64.Vec3{2, 2, 0}}}},
		{Samples: []fieldline.Sample{{Position: mgl64.Vec3{-2, -2, 0}}}},
	}

	DrawLines(c, lines, pl.Project)

	for x := 0; x < 20; x++ {
		if !c.IsSet(x, 0) {
			t.Fatalf("top row dot %d missing", x)
		}
	}
	if !c.IsSet(0, 19) {
		t.Error("single-sample line not drawn")
	}
	if c.IsSet(0, 10) {
		t.Error("lines were joined")
	}
}
