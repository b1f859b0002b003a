package scene

import "github.com/achilleasa/spheretrace/types"

// The maximum number of node indices that the BVH traversal stack can hold.
// BVH builders must never emit trees deeper than MaxBvhDepth-1 levels.
const MaxBvhDepth = 32

// Bvh nodes are comprised of two Vec3 and two multipurpose int32 parameters
// whose value depends on the node type:
//
// - For internal nodes they are both >0 and point to the L/R child nodes.
// The root (index 0) is never referenced as a child.
// - For leafs, LData is <= 0 and stores the negated index of the first
// primitive while RData stores the primitive count.
type BvhNode struct {
	Min   types.Vec3
	LData int32

	Max   types.Vec3
	RData int32
}

// Set bounding box.
func (n *BvhNode) SetBBox(bbox types.AABB) {
	n.Min = bbox.Min
	n.Max = bbox.Max
}

// Get bounding box.
func (n *BvhNode) BBox() types.AABB {
	return types.AABB{Min: n.Min, Max: n.Max}
}

// Set left and right child node indices.
func (n *BvhNode) SetChildNodes(left, right uint32) {
	n.LData = int32(left)
	n.RData = int32(right)
}

// Get left and right child node indices.
func (n *BvhNode) GetChildNodes() (left, right uint32) {
	return uint32(n.LData), uint32(n.RData)
}

// Set primitive index and count.
func (n *BvhNode) SetPrimitives(firstPrimIndex, count uint32) {
	n.LData = -int32(firstPrimIndex)
	n.RData = int32(count)
}

// Get primitive index and count.
func (n *BvhNode) GetPrimitives() (firstPrimIndex, count uint32) {
	return uint32(-n.LData), uint32(n.RData)
}

// Returns true if this is a leaf node.
func (n *BvhNode) IsLeaf() bool {
	return n.LData <= 0
}
