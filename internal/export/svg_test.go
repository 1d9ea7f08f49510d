package export

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/magfield/internal/fieldline"
	"github.com/san-kum/magfield/internal/transform"
	"github.com/san-kum/magfield/internal/viz"
)

func TestLinesToSVG(t *testing.T) {
	bounds := transform.NewBox(4, 2, 2)
	lines := []fieldline.Line{
		{Samples: []fieldline.Sample{
			{Position: mgl64.Vec3{-2, 1, 0}},
			{Position: mgl64.Vec3{0, 0, 0}},
			{Position: mgl64.Vec3{2, -1, 0}},
		}},
		{Samples: []fieldline.Sample{{Position: mgl64.Vec3{1, 1, 0}}}},
	}

	svg := LinesToSVG(lines, bounds, 10)

	if !strings.Contains(svg, `width="40" height="20"`) {
		t.Errorf("unexpected dimensions:\n%s", svg)
	}
	if got := strings.Count(svg, "<path"); got != 1 {
		t.Errorf("got %d paths, want 1", got)
	}
	if !strings.Contains(svg, `d="M0.00,0.00 L20.00,10.00 L40.00,20.00"`) {
		t.Errorf("path not projected with Y up:\n%s", svg)
	}
	if !strings.HasSuffix(svg, "</svg>") {
		t.Error("document not closed")
	}
}

func TestTrajectoriesToSVG(t *testing.T) {
	positions := [][]mgl64.Vec3{
		{{-1, 0, 0}, {1, 0, 0}},
		{{-0.5, 0, 0}, {0.5, 0, 0}},
	}

	svg := TrajectoriesToSVG(positions, transform.NewBox(4, 4, 4), 5)

	if got := strings.Count(svg, "<path"); got != 2 {
		t.Errorf("got %d paths, want 2", got)
	}
	if got := strings.Count(svg, "<circle"); got != 2 {
		t.Errorf("got %d end markers, want 2", got)
	}
	if !strings.Contains(svg, palette[1]) {
		t.Error("second dipole not coloured separately")
	}
}

func TestCanvasToSVG(t *testing.T) {
	if CanvasToSVG(nil, 1) != "" {
		t.Error("nil canvas should produce nothing")
	}

	c := viz.NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)

	svg := CanvasToSVG(c, 2)
	if got := strings.Count(svg, "<circle"); got != 2 {
		t.Errorf("got %d dots, want 2", got)
	}
	if !strings.Contains(svg, `cx="7.0" cy="7.0"`) {
		t.Errorf("dot not placed at its sub-pixel:\n%s", svg)
	}
}
