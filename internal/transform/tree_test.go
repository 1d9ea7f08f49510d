package transform

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const tol = 1e-9

func vecNear(a, b mgl64.Vec3, eps float64) bool {
	return a.Sub(b).Len() <= eps
}

// quatNear treats q and -q as the same rotation.
func quatNear(a, b mgl64.Quat, eps float64) bool {
	return math.Abs(math.Abs(a.Dot(b))-1) <= eps
}

func TestWorldComposesParent(t *testing.T) {
	tree := NewTree()
	parent := tree.New(mgl64.Vec3{1, 0, 0}, mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1}), None)
	child := tree.New(mgl64.Vec3{1, 0, 0}, mgl64.QuatIdent(), parent)

	if got, want := tree.WorldPosition(child), (mgl64.Vec3{1, 1, 0}); !vecNear(got, want, tol) {
		t.Errorf("WorldPosition() = %v, want %v", got, want)
	}

	want := tree.WorldMatrix(parent).Mul4(tree.LocalMatrix(child))
	if got := tree.WorldMatrix(child); !got.ApproxEqualThreshold(want, tol) {
		t.Errorf("world matrix = %v, want parent*local %v", got, want)
	}
	if tree.Parent(child) != parent || tree.ChildCount(parent) != 1 {
		t.Error("child not linked to parent")
	}
}

func TestSubtreeRecomputedOnMutation(t *testing.T) {
	tree := NewTree()
	root := tree.New(mgl64.Vec3{}, mgl64.QuatIdent(), None)
	mid := tree.New(mgl64.Vec3{0, 1, 0}, mgl64.QuatIdent(), root)
	leaf := tree.New(mgl64.Vec3{0, 1, 0}, mgl64.QuatIdent(), mid)

	tree.SetLocalPosition(root, mgl64.Vec3{5, 0, 0})
	if got, want := tree.WorldPosition(leaf), (mgl64.Vec3{5, 2, 0}); !vecNear(got, want, tol) {
		t.Errorf("leaf after root move = %v, want %v", got, want)
	}

	tree.SetLocalRotation(root, mgl64.QuatRotate(math.Pi, mgl64.Vec3{0, 0, 1}))
	if got, want := tree.WorldPosition(leaf), (mgl64.Vec3{5, -2, 0}); !vecNear(got, want, 1e-9) {
		t.Errorf("leaf after root rotation = %v, want %v", got, want)
	}
}

func TestSetWorldPoseUnderParent(t *testing.T) {
	tree := NewTree()
	parent := tree.New(mgl64.Vec3{2, -1, 3}, QuatFromEuler(mgl64.Vec3{30, 45, 60}), None)
	child := tree.New(mgl64.Vec3{1, 1, 1}, mgl64.QuatIdent(), parent)

	pos := mgl64.Vec3{-4, 0.5, 7}
	rot := QuatFromEuler(mgl64.Vec3{10, -20, 5})
	tree.SetWorldPosition(child, pos)
	tree.SetWorldRotation(child, rot)

	if got := tree.WorldPosition(child); !vecNear(got, pos, 1e-9) {
		t.Errorf("WorldPosition() = %v, want %v", got, pos)
	}
	if got := tree.WorldRotation(child); !quatNear(got, rot, 1e-9) {
		t.Errorf("WorldRotation() = %v, want %v", got, rot)
	}
}

func TestSetParentPreservesWorldPose(t *testing.T) {
	tests := []struct {
		name      string
		parentPos mgl64.Vec3
		parentRot mgl64.Vec3
	}{
		{"identity", mgl64.Vec3{}, mgl64.Vec3{}},
		{"translated", mgl64.Vec3{3, -2, 1}, mgl64.Vec3{}},
		{"rotated", mgl64.Vec3{}, mgl64.Vec3{90, 0, 0}},
		{"general", mgl64.Vec3{-1, 4, 2}, mgl64.Vec3{15, 70, -40}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := NewTree()
			oldParent := tree.New(mgl64.Vec3{1, 1, 1}, QuatFromEuler(mgl64.Vec3{0, 30, 0}), None)
			newParent := tree.New(tt.parentPos, QuatFromEuler(tt.parentRot), None)
			h := tree.New(mgl64.Vec3{0.5, 0, -2}, QuatFromEuler(mgl64.Vec3{5, 10, 15}), oldParent)

			pos, rot := tree.WorldPosition(h), tree.WorldRotation(h)
			if !tree.SetParent(h, newParent) {
				t.Fatal("SetParent() = false")
			}

			if got := tree.WorldPosition(h); !vecNear(got, pos, 1e-9) {
				t.Errorf("world position = %v, want %v", got, pos)
			}
			if got := tree.WorldRotation(h); !quatNear(got, rot, 1e-9) {
				t.Errorf("world rotation = %v, want %v", got, rot)
			}
			if tree.ChildCount(oldParent) != 0 {
				t.Error("old parent still lists child")
			}
			if tree.ChildCount(newParent) != 1 {
				t.Error("new parent does not list child")
			}
		})
	}
}

func TestSetParentRejectsCycle(t *testing.T) {
	tree := NewTree()
	a := tree.New(mgl64.Vec3{}, mgl64.QuatIdent(), None)
	b := tree.New(mgl64.Vec3{1, 0, 0}, mgl64.QuatIdent(), a)
	c := tree.New(mgl64.Vec3{1, 0, 0}, mgl64.QuatIdent(), b)

	if tree.SetParent(a, c) {
		t.Error("SetParent(a, c) should refuse a cycle")
	}
	if tree.SetParent(a, a) {
		t.Error("SetParent(a, a) should refuse self-parenting")
	}
	if tree.Parent(a) != None {
		t.Error("a should still be a root")
	}
	if !tree.SetParent(c, None) || tree.Parent(c) != None {
		t.Error("detaching to None failed")
	}
}

func TestDestroyOrphansChildren(t *testing.T) {
	tree := NewTree()
	parent := tree.New(mgl64.Vec3{1, 2, 3}, QuatFromEuler(mgl64.Vec3{0, 90, 0}), None)
	child := tree.New(mgl64.Vec3{1, 0, 0}, mgl64.QuatIdent(), parent)
	pos, rot := tree.WorldPosition(child), tree.WorldRotation(child)

	tree.Destroy(parent)

	if tree.Valid(parent) {
		t.Error("destroyed handle still valid")
	}
	if tree.Parent(child) != None {
		t.Error("child not orphaned")
	}
	if got := tree.WorldPosition(child); !vecNear(got, pos, 1e-9) {
		t.Errorf("orphan moved: %v, want %v", got, pos)
	}
	if got := tree.WorldRotation(child); !quatNear(got, rot, 1e-9) {
		t.Errorf("orphan rotated: %v, want %v", got, rot)
	}

	reused := tree.New(mgl64.Vec3{}, mgl64.QuatIdent(), None)
	if reused == parent {
		t.Error("reused slot returned the stale handle")
	}
	tree.SetLocalPosition(parent, mgl64.Vec3{9, 9, 9})
	if got := tree.WorldPosition(reused); !vecNear(got, mgl64.Vec3{}, tol) {
		t.Errorf("stale handle mutated live node: %v", got)
	}
	if tree.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tree.Len())
	}
}

func TestLookAt(t *testing.T) {
	tests := []struct {
		name   string
		pos    mgl64.Vec3
		target mgl64.Vec3
		up     mgl64.Vec3
	}{
		{"ahead", mgl64.Vec3{}, mgl64.Vec3{0, 0, -5}, mgl64.Vec3{0, 1, 0}},
		{"diagonal", mgl64.Vec3{1, 1, 1}, mgl64.Vec3{-2, 3, 0.5}, mgl64.Vec3{0, 1, 0}},
		{"parallel to up", mgl64.Vec3{}, mgl64.Vec3{0, 4, 0}, mgl64.Vec3{0, 1, 0}},
		{"antiparallel to up", mgl64.Vec3{}, mgl64.Vec3{0, -4, 0}, mgl64.Vec3{0, 1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := NewTree()
			h := tree.New(tt.pos, mgl64.QuatIdent(), None)
			tree.LookAt(h, tt.target, tt.up)

			want := tt.target.Sub(tt.pos).Normalize()
			if got := tree.Forward(h); !vecNear(got, want, 1e-9) {
				t.Errorf("Forward() = %v, want %v", got, want)
			}
			right, up := tree.Right(h), tree.Up(h)
			if math.Abs(right.Dot(up)) > 1e-9 || math.Abs(right.Dot(want)) > 1e-9 {
				t.Error("basis not orthogonal")
			}
			for _, v := range []mgl64.Vec3{right, up} {
				if math.IsNaN(v.Len()) {
					t.Fatal("NaN in basis")
				}
			}
		})
	}
}

func TestLookAtCoincidentTargetKeepsForward(t *testing.T) {
	tree := NewTree()
	h := tree.New(mgl64.Vec3{1, 2, 3}, QuatFromEuler(mgl64.Vec3{0, 45, 0}), None)
	before := tree.Forward(h)

	tree.LookAt(h, mgl64.Vec3{1, 2, 3}, mgl64.Vec3{0, 1, 0})

	if got := tree.Forward(h); !vecNear(got, before, 1e-9) {
		t.Errorf("Forward() = %v, want unchanged %v", got, before)
	}
}

func TestRotateAround(t *testing.T) {
	tree := NewTree()
	h := tree.New(mgl64.Vec3{1, 0, 0}, mgl64.QuatIdent(), None)

	tree.RotateAround(h, mgl64.Vec3{}, mgl64.Vec3{0, 1, 0}, 90)

	if got, want := tree.WorldPosition(h), (mgl64.Vec3{0, 0, -1}); !vecNear(got, want, 1e-9) {
		t.Errorf("position = %v, want %v", got, want)
	}
	if got, want := tree.Forward(h), (mgl64.Vec3{-1, 0, 0}); !vecNear(got, want, 1e-9) {
		t.Errorf("forward = %v, want %v", got, want)
	}
}

func TestQuatFromEulerPitchUp(t *testing.T) {
	tree := NewTree()
	h := tree.New(mgl64.Vec3{}, QuatFromEuler(mgl64.Vec3{90, 0, 0}), None)

	if got, want := tree.Forward(h), (mgl64.Vec3{0, 1, 0}); !vecNear(got, want, 1e-9) {
		t.Errorf("Forward() = %v, want %v", got, want)
	}
}

func TestTransformPointRoundTrip(t *testing.T) {
	tree := NewTree()
	h := tree.New(mgl64.Vec3{3, 1, -2}, QuatFromEuler(mgl64.Vec3{20, 40, 60}), None)
	p := mgl64.Vec3{0.3, -0.7, 1.1}

	if got := tree.InverseTransformPoint(h, tree.TransformPoint(h, p)); !vecNear(got, p, 1e-9) {
		t.Errorf("round trip = %v, want %v", got, p)
	}
	d := mgl64.Vec3{0, 0, -1}
	if got := tree.TransformDirection(h, d); !vecNear(got, tree.Forward(h), 1e-9) {
		t.Errorf("TransformDirection(-Z) = %v, want forward %v", got, tree.Forward(h))
	}
}

func TestBox(t *testing.T) {
	b := NewBox(4, 2, 6)

	tests := []struct {
		p      mgl64.Vec3
		inside bool
	}{
		{mgl64.Vec3{}, true},
		{mgl64.Vec3{2, 1, 3}, true},
		{mgl64.Vec3{2.01, 0, 0}, false},
		{mgl64.Vec3{0, -1.5, 0}, false},
		{mgl64.Vec3{math.NaN(), 0, 0}, false},
	}
	for _, tt := range tests {
		if got := b.Contains(tt.p); got != tt.inside {
			t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.inside)
		}
	}

	if got, want := b.Clamp(mgl64.Vec3{5, -5, 1}), (mgl64.Vec3{2, -1, 1}); got != want {
		t.Errorf("Clamp() = %v, want %v", got, want)
	}
}
