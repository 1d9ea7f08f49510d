package fieldline

import (
	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/magfield/internal/magnet"
	"github.com/san-kum/magfield/internal/transform"
)

func lineOf(points ...mgl64.Vec3) Line {
	l := Line{}
	for _, p := range points {
		l.Samples = append(l.Samples, Sample{Position: p})
	}
	return l
}

var _ = Describe("Flatten", func() {
	It("never joins separate lines", func() {
		lines := []Line{
			lineOf(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{2, 0, 0}),
			lineOf(mgl64.Vec3{0, 1, 0}),
			lineOf(mgl64.Vec3{0, 2, 0}, mgl64.Vec3{0, 3, 0}),
		}

		vertices, indices := Flatten(lines)
		Expect(vertices).To(HaveLen(6 * 3))
		Expect(vertices[3:6]).To(Equal([]float32{1, 0, 0}))
		Expect(indices).To(Equal([]uint32{0, 1, 1, 2, 4, 5}))
	})

	It("handles an empty list", func() {
		vertices, indices := Flatten(nil)
		Expect(vertices).To(BeEmpty())
		Expect(indices).To(BeEmpty())
	})
})

var _ = Describe("DipoleUniforms", func() {
	It("packs pose and moment per dipole", func() {
		tree := transform.NewTree()
		dipoles := []*magnet.Dipole{
			magnet.NewDipole(tree, mgl64.Vec3{1, 2, 3}, mgl64.QuatIdent(), 2, transform.None),
			magnet.NewDipole(tree, mgl64.Vec3{-1, 0, 0}, mgl64.QuatIdent(), -0.5, transform.None),
		}

		u := DipoleUniforms(dipoles)
		Expect(u.Count()).To(Equal(2))
		Expect(u.Positions).To(Equal([]float32{1, 2, 3, -1, 0, 0}))
		Expect(u.Directions[2]).To(BeNumerically("~", -1, 1e-6))
		Expect(u.Moments).To(Equal([]float32{2, -0.5}))
	})
})
