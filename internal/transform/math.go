package transform

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// QuatFromEuler builds a rotation from angles in degrees, applied about X,
// then Y, then Z.
func QuatFromEuler(degrees mgl64.Vec3) mgl64.Quat {
	qx := mgl64.QuatRotate(mgl64.DegToRad(degrees.X()), localRight)
	qy := mgl64.QuatRotate(mgl64.DegToRad(degrees.Y()), localUp)
	qz := mgl64.QuatRotate(mgl64.DegToRad(degrees.Z()), mgl64.Vec3{0, 0, 1})
	return unitQuat(qz.Mul(qy).Mul(qx))
}

// LeastAlignedAxis returns the world axis with the smallest absolute
// component of v. Crossing v with it never degenerates.
func LeastAlignedAxis(v mgl64.Vec3) mgl64.Vec3 {
	ax, ay, az := math.Abs(v.X()), math.Abs(v.Y()), math.Abs(v.Z())
	switch {
	case ax <= ay && ax <= az:
		return mgl64.Vec3{1, 0, 0}
	case ay <= az:
		return mgl64.Vec3{0, 1, 0}
	default:
		return mgl64.Vec3{0, 0, 1}
	}
}

// OrthonormalBasis returns two unit vectors that complete n (assumed unit) to
// a right-handed frame (u, v, n).
func OrthonormalBasis(n mgl64.Vec3) (u, v mgl64.Vec3) {
	u = LeastAlignedAxis(n).Cross(n).Normalize()
	v = n.Cross(u)
	return u, v
}

func unitQuat(q mgl64.Quat) mgl64.Quat {
	l := q.Len()
	if l < epsilon || math.IsNaN(l) || math.IsInf(l, 0) {
		return mgl64.QuatIdent()
	}
	return mgl64.Quat{W: q.W / l, V: q.V.Mul(1 / l)}
}
