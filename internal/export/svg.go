package export

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/magfield/internal/fieldline"
	"github.com/san-kum/magfield/internal/transform"
	"github.com/san-kum/magfield/internal/viz"
)

var palette = []string{"#00ffff", "#ff00ff", "#ffff00", "#00ff88", "#ff8800"}

// svgPlane maps the XY plane of a box to SVG user units, Y up.
type svgPlane struct {
	bounds        transform.Box
	scale         float64
	width, height float64
}

func newPlane(bounds transform.Box, scale float64) svgPlane {
	if scale <= 0 {
		scale = 1
	}
	size := bounds.Size()
	return svgPlane{bounds: bounds, scale: scale, width: size.X() * scale, height: size.Y() * scale}
}

func (p svgPlane) point(v mgl64.Vec3) (float64, float64) {
	return (v.X() - p.bounds.Min.X()) * p.scale, (p.bounds.Max.Y() - v.Y()) * p.scale
}

func (p svgPlane) header(sb *strings.Builder) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, p.width, p.height, p.width, p.height))
}

func (p svgPlane) path(sb *strings.Builder, pts []mgl64.Vec3, stroke string) {
	if len(pts) < 2 {
		return
	}
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1" d="M`, stroke))
	for i, v := range pts {
		x, y := p.point(v)
		if i > 0 {
			sb.WriteString(" L")
		}
		sb.WriteString(fmt.Sprintf("%.2f,%.2f", x, y))
	}
	sb.WriteString("\"/>\n")
}

// LinesToSVG draws field lines projected onto the XY plane of bounds, one
// path per line. scale is SVG units per world unit.
func LinesToSVG(lines []fieldline.Line, bounds transform.Box, scale float64) string {
	pl := newPlane(bounds, scale)

	var sb strings.Builder
	pl.header(&sb)

	pts := make([]mgl64.Vec3, 0, 256)
	for _, l := range lines {
		pts = pts[:0]
		for _, s := range l.Samples {
			pts = append(pts, s.Position)
		}
		pl.path(&sb, pts, palette[0])
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// TrajectoriesToSVG draws the path of every dipole over a run. positions is
// indexed by sample, then dipole.
func TrajectoriesToSVG(positions [][]mgl64.Vec3, bounds transform.Box, scale float64) string {
	pl := newPlane(bounds, scale)

	var sb strings.Builder
	pl.header(&sb)

	if len(positions) > 0 {
		for d := range positions[0] {
			pts := make([]mgl64.Vec3, 0, len(positions))
			for _, row := range positions {
				if d < len(row) {
					pts = append(pts, row[d])
				}
			}
			stroke := palette[d%len(palette)]
			pl.path(&sb, pts, stroke)
			x, y := pl.point(pts[len(pts)-1])
			sb.WriteString(fmt.Sprintf(`<circle cx="%.2f" cy="%.2f" r="3" fill="%s"/>
`, x, y, stroke))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// CanvasToSVG converts a Braille canvas to SVG format
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	w, h := canvas.Dots()
	width, height := float64(w)*scale, float64(h)*scale

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="%s">
`, width, height, width, height, palette[0]))

	dotRadius := scale * 0.4
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, float64(x)*scale+scale/2, float64(y)*scale+scale/2, dotRadius))
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}
