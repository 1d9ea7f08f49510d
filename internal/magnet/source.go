// Package magnet models static magnetic sources: idealised point dipoles and
// bar magnets built from a grid of dipoles. Every source is posed by a node in
// a [transform.Tree] and exposes its field and the seeds field lines are
// traced from.
package magnet

import (
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultPixelsPerMeter converts working units to meters for the 1/r^3 law.
	DefaultPixelsPerMeter = 100.0

	// FieldEpsilon is the separation below which a dipole contributes no field.
	FieldEpsilon = 1e-6

	// MinExtent is the floor applied to bar sizes and densities.
	MinExtent = 0.001
)

type TraceDirection int

const (
	Forward TraceDirection = iota
	Backward
	Both
)

func (d TraceDirection) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	case Both:
		return "both"
	}
	return "unknown"
}

// HasForward reports whether a trace in this mode walks along the field.
func (d TraceDirection) HasForward() bool { return d == Forward || d == Both }

// HasBackward reports whether a trace in this mode walks against the field.
func (d TraceDirection) HasBackward() bool { return d == Backward || d == Both }

// Seed is a starting point for a field line.
type Seed struct {
	Position  mgl64.Vec3
	Direction TraceDirection
}

type Kind int

const (
	KindDipole Kind = iota
	KindBar
)

func (k Kind) String() string {
	if k == KindBar {
		return "bar"
	}
	return "dipole"
}

// Source is anything that produces a static magnetic field.
type Source interface {
	Kind() Kind
	Field(pos mgl64.Vec3) mgl64.Vec3
	TraceSeeds() []Seed
}

// TotalField sums the field of every source at pos.
func TotalField(sources []Source, pos mgl64.Vec3) mgl64.Vec3 {
	var total mgl64.Vec3
	for _, s := range sources {
		total = total.Add(s.Field(pos))
	}
	return total
}
