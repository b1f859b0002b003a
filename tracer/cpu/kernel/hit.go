package kernel

import (
	"fmt"

	"github.com/achilleasa/spheretrace/asset/scene"
	"github.com/achilleasa/spheretrace/types"
	"github.com/chewxy/math32"
)

// The closest hit found by an intersection query. Normal always opposes the
// incoming ray; FrontFace reports whether the ray hit the outside surface.
type HitRecord struct {
	Position  types.Vec3
	Normal    types.Vec3
	T         float32
	FrontFace bool
	Material  *scene.Material
}

// The read-only geometry shared by all rays of a frame.
type World struct {
	Nodes   []scene.BvhNode
	Spheres []scene.Sphere
}

// Find the closest sphere hit within [tMin, tMax] by walking the BVH with an
// explicit fixed-size stack. Every accepted hit narrows tMax so the remaining
// node tests use the tightened window.
//
// The builder guarantees that trees fit the stack; a deeper tree is a
// programming error and Hit panics.
func (w *World) Hit(ray *types.Ray, tMin, tMax float32, rec *HitRecord) bool {
	if len(w.Nodes) == 0 {
		return false
	}

	var stack [scene.MaxBvhDepth]uint32
	var tmp HitRecord
	var bbox types.AABB
	hitAnything := false

	stack[0] = 0
	sp := 1
	for sp > 0 {
		sp--
		node := &w.Nodes[stack[sp]]
		bbox.Min, bbox.Max = node.Min, node.Max
		if !bbox.Hit(ray, tMin, tMax) {
			continue
		}

		if node.IsLeaf() {
			first, count := node.GetPrimitives()
			for index := first; index < first+count; index++ {
				if hitSphere(&w.Spheres[index], ray, tMin, tMax, &tmp) && tmp.T < tMax {
					hitAnything = true
					tMax = tmp.T
					*rec = tmp
				}
			}
			continue
		}

		if sp+2 > len(stack) {
			panic(fmt.Sprintf("kernel: bvh traversal stack overflow at node %d", stack[sp]))
		}
		left, right := node.GetChildNodes()
		stack[sp] = right
		stack[sp+1] = left
		sp += 2
	}

	return hitAnything
}

// Find the closest sphere hit by testing every sphere. Produces the same
// result as Hit; used as a reference and for scenes without a BVH.
func (w *World) HitLinear(ray *types.Ray, tMin, tMax float32, rec *HitRecord) bool {
	var tmp HitRecord
	hitAnything := false
	for index := range w.Spheres {
		if hitSphere(&w.Spheres[index], ray, tMin, tMax, &tmp) && tmp.T < tMax {
			hitAnything = true
			tMax = tmp.T
			*rec = tmp
		}
	}
	return hitAnything
}

// Intersect a ray with a sphere, preferring the nearest root inside [tMin, tMax].
func hitSphere(s *scene.Sphere, ray *types.Ray, tMin, tMax float32, rec *HitRecord) bool {
	oc := ray.Origin.Sub(s.Center)
	a := ray.Direction.LenSq()
	halfB := oc.Dot(ray.Direction)
	c := oc.LenSq() - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return false
	}
	sqrtd := math32.Sqrt(discriminant)

	root := (-halfB - sqrtd) / a
	if root < tMin || root > tMax {
		root = (-halfB + sqrtd) / a
		if root < tMin || root > tMax {
			return false
		}
	}

	rec.T = root
	rec.Position = ray.At(root)
	outwardNormal := rec.Position.Sub(s.Center).Mul(1.0 / s.Radius)
	rec.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if rec.FrontFace {
		rec.Normal = outwardNormal
	} else {
		rec.Normal = outwardNormal.Neg()
	}
	rec.Material = &s.Material
	return true
}
