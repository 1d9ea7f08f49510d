package transform

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// epsilon guards normalisation of near-zero vectors.
	epsilon = 1e-9
	// parallelTolerance decides when a look direction is treated as parallel to up.
	parallelTolerance = 1e-6
)

var (
	localForward = mgl64.Vec3{0, 0, -1}
	localRight   = mgl64.Vec3{1, 0, 0}
	localUp      = mgl64.Vec3{0, 1, 0}
)

// Handle addresses a node in a Tree. The zero value is None.
type Handle struct {
	id  int32
	gen uint32
}

// None is the handle of no node; used as "no parent".
var None Handle

// IsNone reports whether h is the zero handle.
func (h Handle) IsNone() bool { return h.id == 0 }

type node struct {
	alive    bool
	gen      uint32
	localPos mgl64.Vec3
	localRot mgl64.Quat
	parent   Handle
	children []Handle
	world    mgl64.Mat4
	worldRot mgl64.Quat
}

// Tree is an arena of transform nodes.
type Tree struct {
	nodes []node
	free  []int
	live  int
}

func NewTree() *Tree {
	return &Tree{}
}

func (t *Tree) get(h Handle) *node {
	if h.id <= 0 || int(h.id) > len(t.nodes) {
		return nil
	}
	n := &t.nodes[h.id-1]
	if !n.alive || n.gen != h.gen {
		return nil
	}
	return n
}

// New creates a node with the given local pose. When parent is a live node the
// new node is attached to it and pos/rot are relative to the parent frame.
func (t *Tree) New(pos mgl64.Vec3, rot mgl64.Quat, parent Handle) Handle {
	var idx int
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		t.nodes = append(t.nodes, node{})
		idx = len(t.nodes) - 1
	}

	nd := &t.nodes[idx]
	gen := nd.gen + 1
	*nd = node{alive: true, gen: gen, localPos: pos, localRot: unitQuat(rot)}
	h := Handle{id: int32(idx + 1), gen: gen}

	if p := t.get(parent); p != nil {
		nd.parent = parent
		p.children = append(p.children, h)
	}
	t.live++
	t.update(h)
	return h
}

// Destroy removes a node. It is unlinked from its parent and its children are
// orphaned in place: they become roots with their world pose unchanged.
func (t *Tree) Destroy(h Handle) {
	n := t.get(h)
	if n == nil {
		return
	}

	if p := t.get(n.parent); p != nil {
		p.children = removeHandle(p.children, h)
	}

	children := n.children
	n.children = nil
	for _, c := range children {
		cn := t.get(c)
		if cn == nil {
			continue
		}
		pos, rot := cn.world.Col(3).Vec3(), cn.worldRot
		cn.parent = None
		cn.localPos, cn.localRot = pos, rot
		t.update(c)
	}

	n.alive = false
	n.parent = None
	t.free = append(t.free, int(h.id-1))
	t.live--
}

// Valid reports whether h refers to a live node.
func (t *Tree) Valid(h Handle) bool { return t.get(h) != nil }

// Len returns the number of live nodes.
func (t *Tree) Len() int { return t.live }

func (t *Tree) Parent(h Handle) Handle {
	if n := t.get(h); n != nil {
		return n.parent
	}
	return None
}

// Children returns a copy of the child list of h.
func (t *Tree) Children(h Handle) []Handle {
	n := t.get(h)
	if n == nil {
		return nil
	}
	out := make([]Handle, len(n.children))
	copy(out, n.children)
	return out
}

func (t *Tree) ChildCount(h Handle) int {
	if n := t.get(h); n != nil {
		return len(n.children)
	}
	return 0
}

// SetParent reattaches h under parent (None detaches it) while keeping its
// world pose. It refuses to create a cycle and returns false in that case.
func (t *Tree) SetParent(h, parent Handle) bool {
	n := t.get(h)
	if n == nil {
		return false
	}
	if !parent.IsNone() {
		if t.get(parent) == nil || parent == h || t.isDescendant(parent, h) {
			return false
		}
	}

	pos, rot := n.world.Col(3).Vec3(), n.worldRot

	if p := t.get(n.parent); p != nil {
		p.children = removeHandle(p.children, h)
	}
	n.parent = None
	if p := t.get(parent); p != nil {
		n.parent = parent
		p.children = append(p.children, h)
	}

	t.setWorldPose(h, pos, rot)
	return true
}

// isDescendant reports whether h is somewhere below ancestor.
func (t *Tree) isDescendant(h, ancestor Handle) bool {
	for cur := t.Parent(h); !cur.IsNone(); cur = t.Parent(cur) {
		if cur == ancestor {
			return true
		}
	}
	return false
}

func (t *Tree) LocalPosition(h Handle) mgl64.Vec3 {
	if n := t.get(h); n != nil {
		return n.localPos
	}
	return mgl64.Vec3{}
}

func (t *Tree) LocalRotation(h Handle) mgl64.Quat {
	if n := t.get(h); n != nil {
		return n.localRot
	}
	return mgl64.QuatIdent()
}

func (t *Tree) SetLocalPosition(h Handle, pos mgl64.Vec3) {
	if n := t.get(h); n != nil {
		n.localPos = pos
		t.update(h)
	}
}

func (t *Tree) SetLocalRotation(h Handle, rot mgl64.Quat) {
	if n := t.get(h); n != nil {
		n.localRot = unitQuat(rot)
		t.update(h)
	}
}

// SetLocalEuler sets the local rotation from angles in degrees.
func (t *Tree) SetLocalEuler(h Handle, degrees mgl64.Vec3) {
	t.SetLocalRotation(h, QuatFromEuler(degrees))
}

func (t *Tree) WorldPosition(h Handle) mgl64.Vec3 {
	if n := t.get(h); n != nil {
		return n.world.Col(3).Vec3()
	}
	return mgl64.Vec3{}
}

func (t *Tree) WorldRotation(h Handle) mgl64.Quat {
	if n := t.get(h); n != nil {
		return n.worldRot
	}
	return mgl64.QuatIdent()
}

// SetWorldPosition solves for the local position that places h at pos under
// its current parent.
func (t *Tree) SetWorldPosition(h Handle, pos mgl64.Vec3) {
	n := t.get(h)
	if n == nil {
		return
	}
	n.localPos = t.toParentPoint(n.parent, pos)
	t.update(h)
}

// SetWorldRotation solves for the local rotation that gives h the world
// rotation rot under its current parent.
func (t *Tree) SetWorldRotation(h Handle, rot mgl64.Quat) {
	n := t.get(h)
	if n == nil {
		return
	}
	n.localRot = t.toParentRotation(n.parent, unitQuat(rot))
	t.update(h)
}

// SetWorldEuler sets the world rotation from angles in degrees.
func (t *Tree) SetWorldEuler(h Handle, degrees mgl64.Vec3) {
	t.SetWorldRotation(h, QuatFromEuler(degrees))
}

func (t *Tree) setWorldPose(h Handle, pos mgl64.Vec3, rot mgl64.Quat) {
	n := t.get(h)
	if n == nil {
		return
	}
	n.localPos = t.toParentPoint(n.parent, pos)
	n.localRot = t.toParentRotation(n.parent, unitQuat(rot))
	t.update(h)
}

func (t *Tree) toParentPoint(parent Handle, world mgl64.Vec3) mgl64.Vec3 {
	p := t.get(parent)
	if p == nil {
		return world
	}
	return p.worldRot.Inverse().Rotate(world.Sub(p.world.Col(3).Vec3()))
}

func (t *Tree) toParentRotation(parent Handle, world mgl64.Quat) mgl64.Quat {
	p := t.get(parent)
	if p == nil {
		return world
	}
	return unitQuat(p.worldRot.Inverse().Mul(world))
}

// LocalMatrix returns translation * rotation of the local pose.
func (t *Tree) LocalMatrix(h Handle) mgl64.Mat4 {
	n := t.get(h)
	if n == nil {
		return mgl64.Ident4()
	}
	return localMatrix(n)
}

// WorldMatrix returns the cached world matrix.
func (t *Tree) WorldMatrix(h Handle) mgl64.Mat4 {
	if n := t.get(h); n != nil {
		return n.world
	}
	return mgl64.Ident4()
}

func localMatrix(n *node) mgl64.Mat4 {
	p := n.localPos
	return mgl64.Translate3D(p.X(), p.Y(), p.Z()).Mul4(n.localRot.Mat4())
}

// update recomputes the world cache of h and all of its descendants.
func (t *Tree) update(h Handle) {
	n := t.get(h)
	if n == nil {
		return
	}
	local := localMatrix(n)
	if p := t.get(n.parent); p != nil {
		n.world = p.world.Mul4(local)
		n.worldRot = unitQuat(p.worldRot.Mul(n.localRot))
	} else {
		n.world = local
		n.worldRot = n.localRot
	}
	for _, c := range n.children {
		t.update(c)
	}
}

func (t *Tree) Forward(h Handle) mgl64.Vec3 { return t.WorldRotation(h).Rotate(localForward) }
func (t *Tree) Right(h Handle) mgl64.Vec3   { return t.WorldRotation(h).Rotate(localRight) }
func (t *Tree) Up(h Handle) mgl64.Vec3      { return t.WorldRotation(h).Rotate(localUp) }

// LookAt turns h so that its forward axis points at target. When the look
// direction is (anti)parallel to worldUp a fallback up axis is used; when
// target coincides with the node position the current forward is kept.
func (t *Tree) LookAt(h Handle, target, worldUp mgl64.Vec3) {
	if t.get(h) == nil {
		return
	}

	forward := target.Sub(t.WorldPosition(h))
	if forward.Len() < epsilon {
		forward = t.Forward(h)
	}
	forward = forward.Normalize()

	up := worldUp
	if up.Len() < epsilon {
		up = localUp
	}
	up = up.Normalize()
	if math.Abs(forward.Dot(up)) > 1-parallelTolerance {
		up = LeastAlignedAxis(forward)
	}

	right := forward.Cross(up).Normalize()
	up = right.Cross(forward)

	basis := mgl64.Mat3FromCols(right, up, forward.Mul(-1))
	t.SetWorldRotation(h, mgl64.Mat4ToQuat(basis.Mat4()))
}

// RotateAround rotates h about the world-space pivot: the offset from the
// pivot is rotated and the world rotation is left-multiplied by the same
// rotation.
func (t *Tree) RotateAround(h Handle, pivot, axis mgl64.Vec3, angleDegrees float64) {
	if t.get(h) == nil || axis.Len() < epsilon {
		return
	}
	rot := mgl64.QuatRotate(mgl64.DegToRad(angleDegrees), axis.Normalize())
	pos := pivot.Add(rot.Rotate(t.WorldPosition(h).Sub(pivot)))
	t.setWorldPose(h, pos, rot.Mul(t.WorldRotation(h)))
}

// RotateAxis rotates h about one of its own local axes.
func (t *Tree) RotateAxis(h Handle, axis mgl64.Vec3, angleDegrees float64) {
	n := t.get(h)
	if n == nil || axis.Len() < epsilon {
		return
	}
	rot := mgl64.QuatRotate(mgl64.DegToRad(angleDegrees), axis.Normalize())
	n.localRot = unitQuat(n.localRot.Mul(rot))
	t.update(h)
}

// Translate moves h by a world-space offset.
func (t *Tree) Translate(h Handle, offset mgl64.Vec3) {
	t.SetWorldPosition(h, t.WorldPosition(h).Add(offset))
}

// TranslateLocal moves h by an offset expressed in its own frame.
func (t *Tree) TranslateLocal(h Handle, offset mgl64.Vec3) {
	t.Translate(h, t.WorldRotation(h).Rotate(offset))
}

func (t *Tree) TransformPoint(h Handle, p mgl64.Vec3) mgl64.Vec3 {
	return t.WorldMatrix(h).Mul4x1(p.Vec4(1)).Vec3()
}

func (t *Tree) InverseTransformPoint(h Handle, p mgl64.Vec3) mgl64.Vec3 {
	return t.WorldRotation(h).Inverse().Rotate(p.Sub(t.WorldPosition(h)))
}

func (t *Tree) TransformDirection(h Handle, d mgl64.Vec3) mgl64.Vec3 {
	return t.WorldRotation(h).Rotate(d)
}

func (t *Tree) InverseTransformDirection(h Handle, d mgl64.Vec3) mgl64.Vec3 {
	return t.WorldRotation(h).Inverse().Rotate(d)
}

func removeHandle(list []Handle, h Handle) []Handle {
	for i, c := range list {
		if c == h {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
