package magnet

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/magfield/internal/transform"
)

const (
	DefaultSeedCount  = 8
	DefaultSeedRadius = 0.1
)

// Dipole is a point magnetic dipole. Its axis is the forward axis of its
// transform node, so orienting the node orients the moment.
type Dipole struct {
	tree   *transform.Tree
	node   transform.Handle
	moment float64

	PixelsPerMeter float64
	SeedCount      int
	SeedRadius     float64
}

// NewDipole creates a dipole node. pos and rot are local to parent when parent
// is a live node, world otherwise.
func NewDipole(tree *transform.Tree, pos mgl64.Vec3, rot mgl64.Quat, moment float64, parent transform.Handle) *Dipole {
	return &Dipole{
		tree:           tree,
		node:           tree.New(pos, rot, parent),
		moment:         moment,
		PixelsPerMeter: DefaultPixelsPerMeter,
		SeedCount:      DefaultSeedCount,
		SeedRadius:     DefaultSeedRadius,
	}
}

func (d *Dipole) Kind() Kind               { return KindDipole }
func (d *Dipole) Node() transform.Handle   { return d.node }
func (d *Dipole) Tree() *transform.Tree    { return d.tree }
func (d *Dipole) Moment() float64          { return d.moment }
func (d *Dipole) SetMoment(moment float64) { d.moment = moment }

func (d *Dipole) Position() mgl64.Vec3  { return d.tree.WorldPosition(d.node) }
func (d *Dipole) Direction() mgl64.Vec3 { return d.tree.Forward(d.node) }

// MomentVector is moment * direction.
func (d *Dipole) MomentVector() mgl64.Vec3 { return d.Direction().Mul(d.moment) }

// SetDirection rotates the dipole by the shortest arc that aligns its axis
// with dir. A zero dir is ignored.
func (d *Dipole) SetDirection(dir mgl64.Vec3) {
	if dir.Len() < FieldEpsilon {
		return
	}
	delta := mgl64.QuatBetweenVectors(d.Direction(), dir.Normalize())
	d.tree.SetWorldRotation(d.node, delta.Mul(d.tree.WorldRotation(d.node)))
}

// Destroy releases the dipole's transform node.
func (d *Dipole) Destroy() { d.tree.Destroy(d.node) }

func (d *Dipole) Field(pos mgl64.Vec3) mgl64.Vec3 {
	return DipoleField(pos, d.Position(), d.Direction(), d.moment, d.PixelsPerMeter)
}

// TraceSeeds returns a ring of points around the dipole in the plane
// perpendicular to its axis.
func (d *Dipole) TraceSeeds() []Seed {
	n := d.SeedCount
	if n <= 0 {
		return nil
	}
	center, axis := d.Position(), d.Direction()
	u, v := transform.OrthonormalBasis(axis)

	seeds := make([]Seed, n)
	for i := range seeds {
		phi := 2 * math.Pi * float64(i) / float64(n)
		offset := u.Mul(math.Cos(phi)).Add(v.Mul(math.Sin(phi))).Mul(d.SeedRadius)
		seeds[i] = Seed{Position: center.Add(offset), Direction: Both}
	}
	return seeds
}

// DipoleField evaluates the far-field of a point dipole at pos:
//
//	B = (2 m cosθ / r³) r̂ + (m sinθ / r³) θ̂
//
// with r converted to meters by pixelsPerMeter. θ̂ is the polar unit vector,
// pointing away from the dipole axis. Returns zero within FieldEpsilon of the
// dipole.
func DipoleField(pos, center, dir mgl64.Vec3, moment, pixelsPerMeter float64) mgl64.Vec3 {
	r := pos.Sub(center)
	dist := r.Len()
	if dist < FieldEpsilon {
		return mgl64.Vec3{}
	}
	rHat := r.Mul(1 / dist)

	t1, t2 := transform.OrthonormalBasis(rHat)
	cosTheta := rHat.Dot(dir)
	tangential := t1.Mul(dir.Dot(t1)).Add(t2.Mul(dir.Dot(t2)))
	sinTheta := tangential.Len()

	if pixelsPerMeter > 0 {
		dist /= pixelsPerMeter
	}
	r3 := dist * dist * dist

	field := rHat.Mul(2 * moment * cosTheta / r3)
	if sinTheta >= FieldEpsilon {
		bTheta := moment * sinTheta / r3
		thetaHat := tangential.Mul(-1 / sinTheta)
		field = field.Add(thetaHat.Mul(bTheta))
	}
	return field
}
