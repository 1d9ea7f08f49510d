package transform

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Box is an axis-aligned bounding volume.
type Box struct {
	Min, Max mgl64.Vec3
}

// NewBox returns a box of the given extents centred on the origin.
func NewBox(width, height, depth float64) Box {
	half := mgl64.Vec3{width / 2, height / 2, depth / 2}
	return Box{Min: half.Mul(-1), Max: half}
}

// Size returns width, height and depth.
func (b Box) Size() mgl64.Vec3 { return b.Max.Sub(b.Min) }

// Contains is inclusive on every face.
func (b Box) Contains(p mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if !(p[i] >= b.Min[i] && p[i] <= b.Max[i]) {
			return false
		}
	}
	return true
}

// Clamp moves p onto the closest point inside the box, per axis.
func (b Box) Clamp(p mgl64.Vec3) mgl64.Vec3 {
	var out mgl64.Vec3
	for i := 0; i < 3; i++ {
		out[i] = math.Min(math.Max(p[i], b.Min[i]), b.Max[i])
	}
	return out
}
