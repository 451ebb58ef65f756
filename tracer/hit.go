package tracer

import "github.com/rigel-pt/rigel/types"

// A world-space ray segment.
type Ray struct {
	Origin types.Vec3
	Dir    types.Vec3

	// Maximum parametric hit distance. Values <= 0 disable the limit.
	MaxDist float32
}

// A ray/geometry intersection produced by the traverser.
type HitRecord struct {
	// Index of the intersected mesh instance.
	InstanceIndex uint32

	// Global triangle index into the scene index/material buffers.
	PrimIndex uint32

	// Barycentric coordinates (beta, gamma) of the hit point; the weight
	// of the first vertex is alpha = 1 - beta - gamma.
	Barycentric types.Vec2

	// Parametric distance along the ray.
	Distance float32
}
