package magnet

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/magfield/internal/transform"
)

const (
	BarSeedCount  = 5
	barSeedSpread = 0.2
)

// Bar is a cuboid magnet made of a regular grid of dipoles parented to its
// node. Changing size or density rebuilds the whole grid.
type Bar struct {
	tree            *transform.Tree
	node            transform.Handle
	size            mgl64.Vec3
	density         float64
	momentPerDipole float64
	pixelsPerMeter  float64
	counts          [3]int
	dipoles         []*Dipole
}

// NewBar creates a bar magnet of the given size (working units) with density
// dipoles per meter along each axis.
func NewBar(tree *transform.Tree, pos mgl64.Vec3, rot mgl64.Quat, size mgl64.Vec3, density, momentPerDipole float64, parent transform.Handle) *Bar {
	return NewBarWithScale(tree, pos, rot, size, density, momentPerDipole, DefaultPixelsPerMeter, parent)
}

func NewBarWithScale(tree *transform.Tree, pos mgl64.Vec3, rot mgl64.Quat, size mgl64.Vec3, density, momentPerDipole, pixelsPerMeter float64, parent transform.Handle) *Bar {
	if pixelsPerMeter <= 0 {
		pixelsPerMeter = DefaultPixelsPerMeter
	}
	b := &Bar{
		tree:            tree,
		node:            tree.New(pos, rot, parent),
		size:            clampSize(size),
		density:         math.Max(density, MinExtent),
		momentPerDipole: momentPerDipole,
		pixelsPerMeter:  pixelsPerMeter,
	}
	b.rebuild()
	return b
}

func (b *Bar) Kind() Kind             { return KindBar }
func (b *Bar) Node() transform.Handle { return b.node }
func (b *Bar) Tree() *transform.Tree  { return b.tree }
func (b *Bar) Size() mgl64.Vec3       { return b.size }
func (b *Bar) Density() float64       { return b.density }
func (b *Bar) MomentPerDipole() float64 {
	return b.momentPerDipole
}
func (b *Bar) PixelsPerMeter() float64 { return b.pixelsPerMeter }
func (b *Bar) Position() mgl64.Vec3    { return b.tree.WorldPosition(b.node) }

// GridCounts returns the number of dipoles along x, y and z.
func (b *Bar) GridCounts() [3]int { return b.counts }

// Dipoles returns the generated grid. The slice is shared; do not modify.
func (b *Bar) Dipoles() []*Dipole { return b.dipoles }

func (b *Bar) SetSize(size mgl64.Vec3) {
	b.size = clampSize(size)
	b.rebuild()
}

func (b *Bar) SetDensity(density float64) {
	b.density = math.Max(density, MinExtent)
	b.rebuild()
}

func (b *Bar) SetMomentPerDipole(moment float64) {
	b.momentPerDipole = moment
	for _, d := range b.dipoles {
		d.SetMoment(moment)
	}
}

// Destroy releases the grid and the bar node.
func (b *Bar) Destroy() {
	b.clear()
	b.tree.Destroy(b.node)
}

func (b *Bar) clear() {
	for _, d := range b.dipoles {
		d.Destroy()
	}
	b.dipoles = nil
}

func (b *Bar) rebuild() {
	b.clear()

	sizeMeters := b.size.Mul(1 / b.pixelsPerMeter)
	var spacing mgl64.Vec3
	for i := 0; i < 3; i++ {
		b.counts[i] = max(1, int(math.Round(sizeMeters[i]*b.density)))
		spacing[i] = sizeMeters[i] / float64(b.counts[i])
	}

	b.dipoles = make([]*Dipole, 0, b.counts[0]*b.counts[1]*b.counts[2])
	for x := 0; x < b.counts[0]; x++ {
		for y := 0; y < b.counts[1]; y++ {
			for z := 0; z < b.counts[2]; z++ {
				idx := mgl64.Vec3{float64(x), float64(y), float64(z)}
				var local mgl64.Vec3
				for i := 0; i < 3; i++ {
					local[i] = ((idx[i]+0.5)*spacing[i] - sizeMeters[i]/2) * b.pixelsPerMeter
				}
				d := NewDipole(b.tree, local, mgl64.QuatIdent(), b.momentPerDipole, b.node)
				d.PixelsPerMeter = b.pixelsPerMeter
				d.SeedCount = 0
				b.dipoles = append(b.dipoles, d)
			}
		}
	}
}

func (b *Bar) Field(pos mgl64.Vec3) mgl64.Vec3 {
	var total mgl64.Vec3
	for _, d := range b.dipoles {
		total = total.Add(d.Field(pos))
	}
	return total
}

// TraceSeeds spreads BarSeedCount points across the bar's width along its
// right axis, centred on the bar.
func (b *Bar) TraceSeeds() []Seed {
	center, right := b.Position(), b.tree.Right(b.node)
	step := b.size.Y() * barSeedSpread / float64(BarSeedCount-1)

	seeds := make([]Seed, BarSeedCount)
	for i := range seeds {
		offset := (float64(i) - float64(BarSeedCount-1)/2) * step
		seeds[i] = Seed{Position: center.Add(right.Mul(offset)), Direction: Both}
	}
	return seeds
}

func clampSize(size mgl64.Vec3) mgl64.Vec3 {
	for i := 0; i < 3; i++ {
		size[i] = math.Max(size[i], MinExtent)
	}
	return size
}
