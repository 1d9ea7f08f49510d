package fieldline

import "github.com/san-kum/magfield/internal/magnet"

// Flatten packs lines into a GL_LINES style vertex/index pair. vertices holds
// xyz triples; indices holds one pair per segment between consecutive samples
// of the same line. Lines with fewer than two samples add vertices but no
// segments.
func Flatten(lines []Line) (vertices []float32, indices []uint32) {
	total := 0
	for _, l := range lines {
		total += len(l.Samples)
	}
	vertices = make([]float32, 0, total*3)
	indices = make([]uint32, 0, max(0, 2*(total-len(lines))))

	var base uint32
	for _, l := range lines {
		for i, s := range l.Samples {
			vertices = append(vertices, float32(s.Position.X()), float32(s.Position.Y()), float32(s.Position.Z()))
			if i > 0 {
				idx := base + uint32(i)
				indices = append(indices, idx-1, idx)
			}
		}
		base += uint32(len(l.Samples))
	}
	return vertices, indices
}

// Uniforms mirrors the per-dipole arrays a shader expects.
type Uniforms struct {
	Positions  []float32
	Directions []float32
	Moments    []float32
}

func (u Uniforms) Count() int { return len(u.Moments) }

// DipoleUniforms gathers the world pose and moment of every dipole, in order.
func DipoleUniforms(dipoles []*magnet.Dipole) Uniforms {
	u := Uniforms{
		Positions:  make([]float32, 0, 3*len(dipoles)),
		Directions: make([]float32, 0, 3*len(dipoles)),
		Moments:    make([]float32, 0, len(dipoles)),
	}
	for _, d := range dipoles {
		p, dir := d.Position(), d.Direction()
		u.Positions = append(u.Positions, float32(p.X()), float32(p.Y()), float32(p.Z()))
		u.Directions = append(u.Directions, float32(dir.X()), float32(dir.Y()), float32(dir.Z()))
		u.Moments = append(u.Moments, float32(d.Moment()))
	}
	return u
}
