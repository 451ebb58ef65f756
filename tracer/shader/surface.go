package shader

import (
	"github.com/rigel-pt/rigel/asset/scene"
	"github.com/rigel-pt/rigel/tracer"
	"github.com/rigel-pt/rigel/types"
)

// Surface collects the world-space shading geometry resolved for a single
// ray/geometry intersection. It lives on the stack for the duration of one
// shading invocation.
type Surface struct {
	// Surface albedo at the hit point: the material tint, modulated by
	// the sampled texture color when the material carries one.
	Tint types.Vec3

	// Unit normals, flipped to the viewer-facing hemisphere before any
	// BSDF math runs. The geometric normal encodes the true facet
	// orientation; the shading normal interpolates the per-vertex
	// normals for smooth shading.
	GeometricNormal types.Vec3
	ShadingNormal   types.Vec3

	// Interpolated texture coordinate.
	UV types.Vec2

	// True when the geometric normal faced the viewer before
	// orientation normalization.
	FrontFace bool
}

// Reconstruct the world-space shading geometry at a hit point from the
// scene attribute buffers and the hit's barycentric weights, then orient it
// toward the viewer.
//
// Normals move to world space through the transpose of the world-to-object
// matrix; the geometric normal is the raw triangle edge cross product and
// is not normalized until after that transform. Degenerate triangles yield
// degenerate normals and are not guarded against here.
func ResolveSurface(sc *scene.Scene, hit *tracer.HitRecord, wo types.Vec3) Surface {
	i0 := sc.IndexList[hit.PrimIndex*3]
	i1 := sc.IndexList[hit.PrimIndex*3+1]
	i2 := sc.IndexList[hit.PrimIndex*3+2]

	beta := hit.Barycentric[0]
	gamma := hit.Barycentric[1]
	alpha := 1.0 - beta - gamma

	mi := &sc.MeshInstanceList[hit.InstanceIndex]
	normalMat := mi.InvTransform.Mat3().Transpose()

	v0 := sc.VertexList[i0]
	edge1 := sc.VertexList[i1].Sub(v0)
	edge2 := sc.VertexList[i2].Sub(v0)
	geomNormal := normalMat.Mul3x1(edge1.Cross(edge2)).Normalize()

	localNormal := sc.NormalList[i0].Mul(alpha).
		Add(sc.NormalList[i1].Mul(beta)).
		Add(sc.NormalList[i2].Mul(gamma))
	shadingNormal := normalMat.Mul3x1(localNormal).Normalize()

	uv := sc.UvList[i0].Mul(alpha).
		Add(sc.UvList[i1].Mul(beta)).
		Add(sc.UvList[i2].Mul(gamma))

	matRecord := &sc.MaterialList[sc.MaterialIndex[hit.PrimIndex]]
	tint := matRecord.Tint
	if matRecord.TintTex != -1 {
		tint = tint.MulVec(sc.SampleTexture(matRecord.TintTex, uv).Vec3())
	}

	surf := Surface{
		Tint:            tint,
		GeometricNormal: geomNormal,
		ShadingNormal:   shadingNormal,
		UV:              uv,
	}
	surf.OrientFacing(wo)
	return surf
}

// Flip both normals to the viewer-facing hemisphere. A hit is front-facing
// iff the outgoing direction does not oppose the geometric normal; edge-on
// hits count as front-facing. The same decision is applied to both normals
// so every later computation can trust that the normals point toward the
// viewer.
func (s *Surface) OrientFacing(wo types.Vec3) {
	s.FrontFace = wo.Dot(s.GeometricNormal) >= 0
	if !s.FrontFace {
		s.GeometricNormal = s.GeometricNormal.Mul(-1)
		s.ShadingNormal = s.ShadingNormal.Mul(-1)
	}
}
