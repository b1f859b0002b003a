package bvh

import (
	"cmp"
	"errors"
	"math/rand"
	"slices"
	"time"

	"github.com/achilleasa/spheretrace/asset/scene"
	"github.com/achilleasa/spheretrace/log"
	"github.com/achilleasa/spheretrace/types"
)

type Axis uint8

const (
	XAxis Axis = iota
	YAxis
	ZAxis
)

var (
	ErrTreeTooDeep = errors.New("bvh: tree depth exceeds the traversal stack capacity")

	// A split strategy that picks the median split axis with the best
	// surface area heuristic (SAH) score.
	SurfaceAreaHeuristic SplitStrategy = surfaceAreaHeuristic{}
)

// A split strategy selects the axis along which a work list is sorted before
// it gets split at its median.
type SplitStrategy interface {
	SelectAxis(workList []scene.Sphere) Axis
}

type stats struct {
	nodes    int
	leafs    int
	maxDepth int
}

type builder struct {
	logger log.Logger

	// The work list; reordered in place while partitioning.
	spheres []scene.Sphere

	// Bvh nodes stored as a contiguous list
	nodes []scene.BvhNode

	// Ranges with at most this many items become leafs.
	maxLeafItems int

	strategy SplitStrategy

	stats stats
}

// Construct a BVH over a list of spheres.
//
// The builder recursively sorts the work list along the axis chosen by the
// split strategy and splits it at the median index. Nodes are emitted in
// depth-first order so the root is always stored at index 0. The spheres
// slice is reordered in place; leaf primitive indices refer to the reordered
// slice.
//
// Ranges with maxLeafItems or fewer items become leafs. Median splits keep
// the tree balanced; if the tree would still exceed the traversal stack
// capacity, Build returns ErrTreeTooDeep.
func Build(spheres []scene.Sphere, maxLeafItems int, strategy SplitStrategy) ([]scene.BvhNode, error) {
	if maxLeafItems < 1 {
		maxLeafItems = 1
	}

	b := &builder{
		logger:       log.New("bvh builder"),
		spheres:      spheres,
		nodes:        make([]scene.BvhNode, 0, 2*len(spheres)),
		maxLeafItems: maxLeafItems,
		strategy:     strategy,
	}

	if len(spheres) == 0 {
		return b.nodes, nil
	}

	start := time.Now()
	b.partition(0, len(spheres), 0)
	b.logger.Debugf(
		"BVH tree build time: %d ms, maxDepth: %d, nodes: %d, leafs: %d",
		time.Since(start).Nanoseconds()/1e6,
		b.stats.maxDepth, b.stats.nodes, b.stats.leafs,
	)

	if b.stats.maxDepth >= scene.MaxBvhDepth {
		return nil, ErrTreeTooDeep
	}
	return b.nodes, nil
}

// Partition the [l, r) range of the work list and return the node index.
func (b *builder) partition(l, r, depth int) uint32 {
	if depth > b.stats.maxDepth {
		b.stats.maxDepth = depth
	}

	nodeIndex := len(b.nodes)
	b.nodes = append(b.nodes, scene.BvhNode{})
	b.stats.nodes++

	if r-l <= b.maxLeafItems {
		bbox := b.spheres[l].BBox()
		for i := l + 1; i < r; i++ {
			bbox = types.SurroundingBox(bbox, b.spheres[i].BBox())
		}
		b.nodes[nodeIndex].SetBBox(bbox)
		b.nodes[nodeIndex].SetPrimitives(uint32(l), uint32(r-l))
		b.stats.leafs++
		return uint32(nodeIndex)
	}

	axis := b.strategy.SelectAxis(b.spheres[l:r])
	sortByMin(b.spheres[l:r], axis)

	mid := (l + r) / 2
	leftNodeIndex := b.partition(l, mid, depth+1)
	rightNodeIndex := b.partition(mid, r, depth+1)

	b.nodes[nodeIndex].SetBBox(types.SurroundingBox(
		b.nodes[leftNodeIndex].BBox(),
		b.nodes[rightNodeIndex].BBox(),
	))
	b.nodes[nodeIndex].SetChildNodes(leftNodeIndex, rightNodeIndex)

	return uint32(nodeIndex)
}

// Sort spheres by the minimum coordinate of their bounding box along axis.
func sortByMin(workList []scene.Sphere, axis Axis) {
	slices.SortStableFunc(workList, func(a, b scene.Sphere) int {
		return cmp.Compare(a.Center[axis]-a.Radius, b.Center[axis]-b.Radius)
	})
}

type randomAxis struct {
	rng *rand.Rand
}

// A split strategy that picks a uniformly random axis. The builder is not
// safe for concurrent use so the rng does not need to be guarded.
func RandomAxis(rng *rand.Rand) SplitStrategy {
	return &randomAxis{rng: rng}
}

func (s *randomAxis) SelectAxis(_ []scene.Sphere) Axis {
	return Axis(s.rng.Intn(3))
}

type splitScore struct {
	axis  Axis
	score float32
}

type surfaceAreaHeuristic struct{}

// Score a median split along each axis and return the axis with the lowest
// score. Axes are evaluated in parallel. The SAH calculates the split score
// using the formula (lower score is better):
//
// left count * left BBOX area + right count * right BBOX area.
func (h surfaceAreaHeuristic) SelectAxis(workList []scene.Sphere) Axis {
	scoreChan := make(chan splitScore, 3)
	for axis := XAxis; axis <= ZAxis; axis++ {
		go func(axis Axis) {
			scoreChan <- splitScore{axis: axis, score: h.scoreMedianSplit(workList, axis)}
		}(axis)
	}

	best := splitScore{axis: XAxis, score: -1}
	for pending := 3; pending > 0; pending-- {
		candidate := <-scoreChan
		if best.score < 0 || candidate.score < best.score ||
			(candidate.score == best.score && candidate.axis < best.axis) {
			best = candidate
		}
	}
	return best.axis
}

func (h surfaceAreaHeuristic) scoreMedianSplit(workList []scene.Sphere, axis Axis) float32 {
	sorted := slices.Clone(workList)
	sortByMin(sorted, axis)
	mid := len(sorted) / 2
	left, right := sorted[:mid], sorted[mid:]
	return float32(len(left))*boundsOf(left).SurfaceArea() + float32(len(right))*boundsOf(right).SurfaceArea()
}

func boundsOf(workList []scene.Sphere) types.AABB {
	bbox := workList[0].BBox()
	for i := 1; i < len(workList); i++ {
		bbox = types.SurroundingBox(bbox, workList[i].BBox())
	}
	return bbox
}
