package shader

import (
	"testing"

	"github.com/rigel-pt/rigel/asset/scene"
	"github.com/rigel-pt/rigel/asset/texture"
	"github.com/rigel-pt/rigel/tracer"
	"github.com/rigel-pt/rigel/types"
)

func TestResolveSurfaceAttributes(t *testing.T) {
	sc := mockScene(
		[3]types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		[3]types.Vec3{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
		types.Ident4(),
		flatMaterial(types.Vec3{0.25, 0.5, 0.75}),
	)

	hit := tracer.HitRecord{
		Barycentric: types.Vec2{0.25, 0.5},
		Distance:    1,
	}

	surf := ResolveSurface(sc, &hit, types.Vec3{0, 0, 1})

	if !surf.FrontFace {
		t.Fatalf("expected hit to be front-facing")
	}
	if expNormal := (types.Vec3{0, 0, 1}); !types.ApproxEqual(surf.GeometricNormal, expNormal, 1e-5) {
		t.Fatalf("expected geometric normal to be %v; got %v", expNormal, surf.GeometricNormal)
	}
	// alpha*n0 + beta*n1 + gamma*n2 with (alpha, beta, gamma) = (0.25, 0.25, 0.5)
	if expNormal := (types.Vec3{0.25, 0.5, 0.25}).Normalize(); !types.ApproxEqual(surf.ShadingNormal, expNormal, 1e-5) {
		t.Fatalf("expected shading normal to be %v; got %v", expNormal, surf.ShadingNormal)
	}
	if expUV := (types.Vec2{0.25, 0.5}); surf.UV != expUV {
		t.Fatalf("expected interpolated UV to be %v; got %v", expUV, surf.UV)
	}
	if expTint := (types.Vec3{0.25, 0.5, 0.75}); !types.ApproxEqual(surf.Tint, expTint, 1e-5) {
		t.Fatalf("expected untextured tint to pass through as %v; got %v", expTint, surf.Tint)
	}
}

func TestResolveSurfaceNormalTransform(t *testing.T) {
	// A slanted triangle under a non-uniform instance scale. Normals must
	// move through the transpose of the world-to-object matrix; pushing
	// them through the forward matrix would yield (2, 0, 1) instead.
	sc := mockScene(
		[3]types.Vec3{{0, 0, 0}, {0, 1, 0}, {-1, 0, 1}},
		[3]types.Vec3{{1, 0, 1}, {1, 0, 1}, {1, 0, 1}},
		types.Scale4(types.Vec3{2, 1, 1}),
		flatMaterial(types.Vec3{1, 1, 1}),
	)

	hit := tracer.HitRecord{
		Barycentric: types.Vec2{0.25, 0.25},
		Distance:    1,
	}

	surf := ResolveSurface(sc, &hit, types.Vec3{0, 0, 1})

	expNormal := types.Vec3{0.5, 0, 1}.Normalize()
	if !types.ApproxEqual(surf.GeometricNormal, expNormal, 1e-5) {
		t.Fatalf("expected geometric normal to be %v; got %v", expNormal, surf.GeometricNormal)
	}
	if !types.ApproxEqual(surf.ShadingNormal, expNormal, 1e-5) {
		t.Fatalf("expected shading normal to be %v; got %v", expNormal, surf.ShadingNormal)
	}
}

func TestResolveSurfaceTextureModulation(t *testing.T) {
	mat := flatMaterial(types.Vec3{1, 0.5, 0.2})
	mat.TintTex = 0

	sc := mockScene(
		[3]types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		[3]types.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		types.Ident4(),
		mat,
	)
	sc.TextureData = []byte{64, 128, 255, 255}
	sc.TextureMetadata = []scene.TextureMetadata{
		{Format: texture.Rgba8, Width: 1, Height: 1, DataOffset: 0},
	}

	hit := tracer.HitRecord{
		Barycentric: types.Vec2{0.25, 0.25},
		Distance:    1,
	}

	surf := ResolveSurface(sc, &hit, types.Vec3{0, 0, 1})

	expTint := mat.Tint.MulVec(types.Vec3{64.0 / 255.0, 128.0 / 255.0, 1})
	if !types.ApproxEqual(surf.Tint, expTint, 1e-4) {
		t.Fatalf("expected texture-modulated tint to be %v; got %v", expTint, surf.Tint)
	}
}

func TestResolveSurfaceBackFace(t *testing.T) {
	sc := mockScene(
		[3]types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		[3]types.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		types.Ident4(),
		flatMaterial(types.Vec3{1, 1, 1}),
	)

	hit := tracer.HitRecord{
		Barycentric: types.Vec2{0.25, 0.25},
		Distance:    1,
	}

	surf := ResolveSurface(sc, &hit, types.Vec3{0, 0, -1})

	if surf.FrontFace {
		t.Fatalf("expected hit from below the facet to be back-facing")
	}
	if expNormal := (types.Vec3{0, 0, -1}); !types.ApproxEqual(surf.GeometricNormal, expNormal, 1e-5) {
		t.Fatalf("expected flipped geometric normal to be %v; got %v", expNormal, surf.GeometricNormal)
	}
	if expNormal := (types.Vec3{0, 0, -1}); !types.ApproxEqual(surf.ShadingNormal, expNormal, 1e-5) {
		t.Fatalf("expected flipped shading normal to be %v; got %v", expNormal, surf.ShadingNormal)
	}
}

func TestResolveSurfaceDegenerateTriangle(t *testing.T) {
	sc := mockScene(
		[3]types.Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}},
		[3]types.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		types.Ident4(),
		flatMaterial(types.Vec3{1, 1, 1}),
	)

	hit := tracer.HitRecord{
		Barycentric: types.Vec2{0.25, 0.25},
		Distance:    1,
	}

	surf := ResolveSurface(sc, &hit, types.Vec3{0, 0, 1})

	if expNormal := (types.Vec3{}); surf.GeometricNormal != expNormal {
		t.Fatalf("expected collinear vertices to yield a zero geometric normal; got %v", surf.GeometricNormal)
	}
	if !surf.FrontFace {
		t.Fatalf("expected the zero geometric normal to classify as front-facing")
	}

	// The mirror lobe still resolves against the interpolated shading
	// normal; the side check against the zero geometric normal then
	// absorbs the sample.
	sample := SampleSpecular(&surf, types.Vec3{0, 0, 1})
	if sample.Event != tracer.Absorb {
		t.Fatalf("expected absorb event; got %v", sample.Event)
	}
	if expK2 := (types.Vec3{0, 0, 1}); !types.ApproxEqual(sample.K2, expK2, 1e-5) {
		t.Fatalf("expected sampled direction %v; got %v", expK2, sample.K2)
	}
}

func TestOrientFacing(t *testing.T) {
	specs := []struct {
		wo         types.Vec3
		expFront   bool
		expGeom    types.Vec3
		expShading types.Vec3
	}{
		{types.Vec3{0, 0, 1}, true, types.Vec3{0, 0, 1}, types.Vec3{0.6, 0, 0.8}},
		// Edge-on counts as front-facing.
		{types.Vec3{1, 0, 0}, true, types.Vec3{0, 0, 1}, types.Vec3{0.6, 0, 0.8}},
		{types.Vec3{0, 0, -1}, false, types.Vec3{0, 0, -1}, types.Vec3{-0.6, 0, -0.8}},
	}

	for specIndex, spec := range specs {
		surf := Surface{
			GeometricNormal: types.Vec3{0, 0, 1},
			ShadingNormal:   types.Vec3{0.6, 0, 0.8},
		}
		surf.OrientFacing(spec.wo)

		if surf.FrontFace != spec.expFront {
			t.Fatalf("[spec %d] expected front-face flag to be %t; got %t", specIndex, spec.expFront, surf.FrontFace)
		}
		if !types.ApproxEqual(surf.GeometricNormal, spec.expGeom, 1e-5) {
			t.Fatalf("[spec %d] expected geometric normal %v; got %v", specIndex, spec.expGeom, surf.GeometricNormal)
		}
		if !types.ApproxEqual(surf.ShadingNormal, spec.expShading, 1e-5) {
			t.Fatalf("[spec %d] expected shading normal %v; got %v", specIndex, spec.expShading, surf.ShadingNormal)
		}
	}
}

func TestOrientFacingIdempotence(t *testing.T) {
	surf := Surface{
		GeometricNormal: types.Vec3{0, 0, 1},
		ShadingNormal:   types.Vec3{0, 0, 1},
	}

	wo := types.Vec3{0, 0, -1}
	surf.OrientFacing(wo)
	if surf.FrontFace {
		t.Fatalf("expected initial orientation to classify as back-facing")
	}

	// Re-evaluating on the flipped pair must classify as front-facing and
	// leave the normals alone.
	surf.OrientFacing(wo)
	if !surf.FrontFace {
		t.Fatalf("expected re-evaluation on flipped normals to classify as front-facing")
	}
	if expNormal := (types.Vec3{0, 0, -1}); !types.ApproxEqual(surf.GeometricNormal, expNormal, 1e-5) {
		t.Fatalf("expected geometric normal to remain %v; got %v", expNormal, surf.GeometricNormal)
	}
}

func mockScene(verts, normals [3]types.Vec3, transform types.Mat4, mat scene.MaterialRecord) *scene.Scene {
	return &scene.Scene{
		MeshInstanceList: []scene.MeshInstance{
			{Transform: transform, InvTransform: transform.Inv()},
		},
		MaterialList:  []scene.MaterialRecord{mat},
		IndexList:     []uint32{0, 1, 2},
		VertexList:    verts[:],
		NormalList:    normals[:],
		UvList:        []types.Vec2{{0, 0}, {1, 0}, {0, 1}},
		MaterialIndex: []uint32{0},
	}
}

func flatMaterial(tint types.Vec3) scene.MaterialRecord {
	return scene.MaterialRecord{
		Tint:    tint,
		TintTex: -1,
	}
}
