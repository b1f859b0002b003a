package bvh

import (
	"math/rand"
	"testing"

	"github.com/achilleasa/spheretrace/asset/scene"
	"github.com/achilleasa/spheretrace/types"
)

func makeSpheres(count int, rng *rand.Rand) []scene.Sphere {
	spheres := make([]scene.Sphere, count)
	for i := range spheres {
		spheres[i] = scene.Sphere{
			Center:   types.XYZ(rng.Float32()*100-50, rng.Float32()*100-50, rng.Float32()*100-50),
			Radius:   0.1 + rng.Float32(),
			Material: scene.NewLambertian(types.XYZ(float32(i), 0, 0)),
		}
	}
	return spheres
}

func TestNodeCounts(t *testing.T) {
	type spec struct {
		items        int
		maxLeafItems int
		expNodes     int
		expLeafs     int
	}
	specs := []spec{
		{1, 1, 1, 1},
		{4, 1, 7, 4},
		{4, 2, 3, 2},
		{5, 1, 9, 5},
		{100, 1, 199, 100},
	}

	for index, s := range specs {
		spheres := makeSpheres(s.items, rand.New(rand.NewSource(1)))
		nodes, err := Build(spheres, s.maxLeafItems, RandomAxis(rand.New(rand.NewSource(2))))
		if err != nil {
			t.Fatalf("[spec %d] unexpected error: %v", index, err)
		}

		if len(nodes) != s.expNodes {
			t.Fatalf("[spec %d] expected bvh tree to have %d nodes; got %d", index, s.expNodes, len(nodes))
		}

		leafs := 0
		for _, node := range nodes {
			if node.IsLeaf() {
				leafs++
			}
		}
		if leafs != s.expLeafs {
			t.Fatalf("[spec %d] expected %d leafs; got %d", index, s.expLeafs, leafs)
		}
	}
}

func TestEmptyWorkList(t *testing.T) {
	nodes, err := Build(nil, 1, SurfaceAreaHeuristic)
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 0 {
		t.Fatalf("expected no nodes; got %d", len(nodes))
	}
}

// Every primitive must be referenced by exactly one leaf and every node
// bbox must enclose its subtree.
func TestTreeStructure(t *testing.T) {
	strategies := map[string]SplitStrategy{
		"random": RandomAxis(rand.New(rand.NewSource(7))),
		"sah":    SurfaceAreaHeuristic,
	}

	for name, strategy := range strategies {
		spheres := makeSpheres(257, rand.New(rand.NewSource(3)))
		nodes, err := Build(spheres, 1, strategy)
		if err != nil {
			t.Fatalf("[%s] unexpected error: %v", name, err)
		}

		seen := make([]int, len(spheres))
		var visit func(index uint32, depth int) int
		visit = func(index uint32, depth int) int {
			node := nodes[index]
			bbox := node.BBox()
			if node.IsLeaf() {
				first, count := node.GetPrimitives()
				for i := first; i < first+count; i++ {
					seen[i]++
					sbox := spheres[i].BBox()
					if !bbox.Contains(sbox.Min) || !bbox.Contains(sbox.Max) {
						t.Fatalf("[%s] leaf %d bbox does not enclose sphere %d", name, index, i)
					}
				}
				return depth
			}

			left, right := node.GetChildNodes()
			if left == 0 || right == 0 {
				t.Fatalf("[%s] internal node %d references the root as a child", name, index)
			}
			for _, child := range []uint32{left, right} {
				cbox := nodes[child].BBox()
				if !bbox.Contains(cbox.Min) || !bbox.Contains(cbox.Max) {
					t.Fatalf("[%s] node %d bbox does not enclose child %d", name, index, child)
				}
			}
			return max(visit(left, depth+1), visit(right, depth+1))
		}

		maxDepth := visit(0, 0)
		for i, count := range seen {
			if count != 1 {
				t.Fatalf("[%s] expected sphere %d to be referenced once; got %d", name, i, count)
			}
		}

		// 257 items split at the median need ceil(log2(257)) = 9 levels
		if maxDepth != 9 {
			t.Fatalf("[%s] expected balanced tree depth 9; got %d", name, maxDepth)
		}
	}
}

func TestLeafOrderMatchesReorderedList(t *testing.T) {
	spheres := makeSpheres(16, rand.New(rand.NewSource(5)))
	nodes, err := Build(spheres, 1, RandomAxis(rand.New(rand.NewSource(5))))
	if err != nil {
		t.Fatal(err)
	}

	// Leafs are emitted in depth-first order so their primitive indices
	// must walk the reordered sphere list sequentially.
	var next uint32
	for _, node := range nodes {
		if !node.IsLeaf() {
			continue
		}
		first, _ := node.GetPrimitives()
		if first != next {
			t.Fatalf("expected leaf primitive index %d; got %d", next, first)
		}
		if node.BBox() != spheres[first].BBox() {
			t.Fatalf("expected leaf bbox to match sphere %d bbox", first)
		}
		next++
	}
}

func TestSurfaceAreaHeuristicPicksSpreadAxis(t *testing.T) {
	// Spheres spread along the z axis in shuffled order; median splits along
	// x or y keep the input order and produce overlapping halves.
	order := []float32{3, 6, 0, 5, 1, 7, 2, 4}
	spheres := make([]scene.Sphere, len(order))
	for i, z := range order {
		spheres[i] = scene.Sphere{Center: types.XYZ(0, 0, 2*z), Radius: 0.5}
	}

	if axis := SurfaceAreaHeuristic.SelectAxis(spheres); axis != ZAxis {
		t.Fatalf("expected SAH to select axis %d; got %d", ZAxis, axis)
	}

	nodes, err := Build(spheres, 1, SurfaceAreaHeuristic)
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 2*len(spheres)-1 {
		t.Fatalf("expected bvh tree to have %d nodes; got %d", 2*len(spheres)-1, len(nodes))
	}
}
