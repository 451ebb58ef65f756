package tracer

import (
	"math"

	"github.com/rigel-pt/rigel/asset/scene"
	"github.com/rigel-pt/rigel/types"
)

const (
	// Depth of the fixed traversal stacks. Enough for trees several
	// orders of magnitude larger than the builder ever produces.
	traversalStackSize = 64

	// Intersections closer than this are rejected so continuation rays
	// do not re-hit the surface they originate from.
	intersectEpsilon float32 = 1e-4

	// Determinants smaller than this mark a ray as parallel to the
	// triangle plane.
	detEpsilon float32 = 1e-7
)

// Find the closest ray/triangle intersection by walking the scene's
// two-level BVH. The top-level tree partitions mesh instances; when an
// instance leaf is reached the ray is transformed into object space and the
// walk continues into the mesh tree so triangle tests run against the
// untransformed vertex buffers. Ray parameterization survives the affine
// transform (the direction is not re-normalized) so parametric distances
// from different instances compare directly.
func Traverse(sc *scene.Scene, ray Ray) (HitRecord, bool) {
	var hit HitRecord
	found := false

	if len(sc.BvhNodeList) == 0 {
		return hit, false
	}

	closest := ray.MaxDist
	if closest <= 0 {
		closest = math.MaxFloat32
	}

	var stack [traversalStackSize]uint32
	stackIndex := 1
	stack[0] = 0

	for stackIndex > 0 {
		stackIndex--
		node := &sc.BvhNodeList[stack[stackIndex]]

		if !rayBoxTest(ray.Origin, ray.Dir, node.Min, node.Max, closest) {
			continue
		}

		if !node.IsLeaf() {
			left, right := node.GetChildNodes()
			stack[stackIndex] = left
			stack[stackIndex+1] = right
			stackIndex += 2
			continue
		}

		instanceIndex := node.GetMeshIndex()
		mi := &sc.MeshInstanceList[instanceIndex]

		// Move the ray to object space
		objOrigin := mi.InvTransform.Mul4x1(ray.Origin.Vec4(1)).Vec3()
		objDir := mi.InvTransform.Mul4x1(ray.Dir.Vec4(0)).Vec3()

		if traverseMesh(sc, objOrigin, objDir, mi.BvhRoot, instanceIndex, &closest, &hit) {
			found = true
		}
	}

	return hit, found
}

// Walk a mesh BVH tree with an object-space ray and update the hit record
// whenever a closer intersection is found.
func traverseMesh(sc *scene.Scene, origin, dir types.Vec3, root, instanceIndex uint32, closest *float32, hit *HitRecord) bool {
	var stack [traversalStackSize]uint32
	stackIndex := 1
	stack[0] = root
	found := false

	for stackIndex > 0 {
		stackIndex--
		node := &sc.BvhNodeList[stack[stackIndex]]

		if !rayBoxTest(origin, dir, node.Min, node.Max, *closest) {
			continue
		}

		if !node.IsLeaf() {
			left, right := node.GetChildNodes()
			stack[stackIndex] = left
			stack[stackIndex+1] = right
			stackIndex += 2
			continue
		}

		firstPrim, primCount := node.GetPrimitives()
		for primIndex := firstPrim; primIndex < firstPrim+primCount; primIndex++ {
			i0 := sc.IndexList[primIndex*3]
			i1 := sc.IndexList[primIndex*3+1]
			i2 := sc.IndexList[primIndex*3+2]

			t, beta, gamma, ok := intersectTriangle(
				origin, dir,
				sc.VertexList[i0], sc.VertexList[i1], sc.VertexList[i2],
				*closest,
			)
			if !ok {
				continue
			}

			*closest = t
			hit.InstanceIndex = instanceIndex
			hit.PrimIndex = primIndex
			hit.Barycentric = types.Vec2{beta, gamma}
			hit.Distance = t
			found = true
		}
	}

	return found
}

// Slab test against an AABB. Degenerate direction components yield infinite
// slab distances which the min/max comparisons handle naturally.
func rayBoxTest(origin, dir, boxMin, boxMax types.Vec3, maxDist float32) bool {
	tMin := float32(0)
	tMax := maxDist

	for axis := 0; axis < 3; axis++ {
		invDir := 1.0 / dir[axis]
		t0 := (boxMin[axis] - origin[axis]) * invDir
		t1 := (boxMax[axis] - origin[axis]) * invDir
		if invDir < 0 {
			t0, t1 = t1, t0
		}
		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		if tMax < tMin {
			return false
		}
	}
	return true
}

// Moller-Trumbore ray/triangle intersection without backface culling.
// Returns the parametric distance and the barycentric (beta, gamma) pair of
// the hit point.
func intersectTriangle(origin, dir, v0, v1, v2 types.Vec3, maxDist float32) (t, beta, gamma float32, ok bool) {
	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)

	pVec := dir.Cross(edge2)
	det := edge1.Dot(pVec)
	if det > -detEpsilon && det < detEpsilon {
		return 0, 0, 0, false
	}

	invDet := 1.0 / det
	tVec := origin.Sub(v0)
	beta = tVec.Dot(pVec) * invDet
	if beta < 0 || beta > 1 {
		return 0, 0, 0, false
	}

	qVec := tVec.Cross(edge1)
	gamma = dir.Dot(qVec) * invDet
	if gamma < 0 || beta+gamma > 1 {
		return 0, 0, 0, false
	}

	t = edge2.Dot(qVec) * invDet
	if t < intersectEpsilon || t >= maxDist {
		return 0, 0, 0, false
	}

	return t, beta, gamma, true
}
