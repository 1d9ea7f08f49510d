// Package transform provides the hierarchical pose model every magnetic source
// and trace seed is expressed in.
//
// Nodes live in a [Tree] arena and are addressed by generation-checked
// [Handle] values instead of pointers:
//
//   - each node owns a local position and a local unit quaternion
//   - a node has at most one parent and any number of children
//   - the world matrix of a node is parent.world * local, cached per node
//
// Every mutation recomputes the world cache of the node and its entire
// subtree before returning, so reads are pure and may run concurrently as
// long as nothing mutates the tree at the same time.
//
// # Example
//
//	tree := transform.NewTree()
//	bar := tree.New(mgl64.Vec3{1, 0, 0}, mgl64.QuatIdent(), transform.None)
//	tip := tree.New(mgl64.Vec3{0, 0.5, 0}, mgl64.QuatIdent(), bar)
//	tree.RotateAround(bar, mgl64.Vec3{}, mgl64.Vec3{0, 0, 1}, 90)
//	p := tree.WorldPosition(tip)
//
// # Thread Safety
//
// A Tree is NOT safe for concurrent mutation. The host serialises all setters
// with respect to readers.
package transform
