package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/magfield/internal/fieldline"
	"github.com/san-kum/magfield/internal/transform"
)

// Camera is an orbit camera around the centre of a bounding box. Points are
// scaled so the box half-extent maps to unit length before projection.
type Camera struct {
	RotX, RotY, RotZ float64
	Zoom             float64
	Distance         float64
	Near             float64
}

func NewCamera() *Camera {
	return &Camera{Zoom: 1, Distance: 4, Near: 0.1}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }
func (c *Camera) Reset()            { *c = *NewCamera() }

// Rotation applies X, then Y, then Z.
func (c *Camera) Rotation() mgl64.Mat4 {
	return mgl64.HomogRotate3DZ(c.RotZ).
		Mul4(mgl64.HomogRotate3DY(c.RotY)).
		Mul4(mgl64.HomogRotate3DX(c.RotX))
}

// Projector returns a projection of world points inside bounds onto a
// sw x sh sub-pixel surface.
func (c *Camera) Projector(bounds transform.Box, sw, sh int) func(mgl64.Vec3) (int, int, bool) {
	center := bounds.Min.Add(bounds.Max).Mul(0.5)
	half := bounds.Size().Mul(0.5)
	extent := math.Max(half.X(), math.Max(half.Y(), half.Z()))
	if extent <= 0 {
		extent = 1
	}
	view := c.Rotation().Mul4(mgl64.Scale3D(c.Zoom/extent, c.Zoom/extent, c.Zoom/extent)).
		Mul4(mgl64.Translate3D(-center.X(), -center.Y(), -center.Z()))
	pScale := float64(min(sw, sh)) * 0.45

	return func(p mgl64.Vec3) (int, int, bool) {
		r := mgl64.TransformCoordinate(p, view)
		if r.Z() >= c.Distance-c.Near {
			return 0, 0, false
		}
		persp := c.Distance / (c.Distance - r.Z())
		sx := int(math.Round(r.X()*persp*pScale)) + sw/2
		sy := int(math.Round(-r.Y()*persp*pScale)) + sh/2
		return sx, sy, sx >= 0 && sx < sw && sy >= 0 && sy < sh
	}
}

// BoxEdges returns the 12 edges of b as point pairs.
func BoxEdges(b transform.Box) [][2]mgl64.Vec3 {
	lo, hi := b.Min, b.Max
	v := [8]mgl64.Vec3{
		{lo[0], lo[1], lo[2]}, {hi[0], lo[1], lo[2]}, {hi[0], hi[1], lo[2]}, {lo[0], hi[1], lo[2]},
		{lo[0], lo[1], hi[2]}, {hi[0], lo[1], hi[2]}, {hi[0], hi[1], hi[2]}, {lo[0], hi[1], hi[2]},
	}
	ei := [12][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}, {4, 5}, {5, 6}, {6, 7}, {7, 4}, {0, 4}, {1, 5}, {2, 6}, {3, 7}}
	edges := make([][2]mgl64.Vec3, len(ei))
	for i, e := range ei {
		edges[i] = [2]mgl64.Vec3{v[e[0]], v[e[1]]}
	}
	return edges
}

// DrawLines draws every line's sample positions.
func DrawLines(c *Canvas, lines []fieldline.Line, project func(mgl64.Vec3) (int, int, bool)) {
	pts := make([]mgl64.Vec3, 0, 256)
	for _, l := range lines {
		pts = pts[:0]
		for _, s := range l.Samples {
			pts = append(pts, s.Position)
		}
		c.Polyline(pts, project)
	}
}
