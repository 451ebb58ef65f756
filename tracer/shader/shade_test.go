package shader

import (
	"math"
	"testing"

	"github.com/rigel-pt/rigel/tracer"
	"github.com/rigel-pt/rigel/types"
)

func TestShadeHitCommit(t *testing.T) {
	sc := mockScene(
		[3]types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		[3]types.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		types.Ident4(),
		flatMaterial(types.Vec3{0.8, 0.6, 0.4}),
	)

	ps := tracer.NewPathState(types.Vec3{0.25, 0.25, 1}, types.Vec3{0, 0, -1})
	hit := tracer.HitRecord{
		Barycentric: types.Vec2{0.25, 0.25},
		Distance:    1,
	}

	ShadeHit(&ps, &hit, sc)

	if expPos := (types.Vec3{0.25, 0.25, 0}); !types.ApproxEqual(ps.Position, expPos, 1e-5) {
		t.Fatalf("expected position to advance to %v; got %v", expPos, ps.Position)
	}
	if ps.Flags&tracer.PathHit == 0 {
		t.Fatalf("expected hit flag to be set")
	}
	if ps.Event != tracer.SpecularReflection {
		t.Fatalf("expected specular reflection event; got %v", ps.Event)
	}
	if expDir := (types.Vec3{0, 0, 1}); !types.ApproxEqual(ps.IncomingDir, expDir, 1e-5) {
		t.Fatalf("expected head-on hit to reflect straight back as %v; got %v", expDir, ps.IncomingDir)
	}
	if expThroughput := (types.Vec3{0.8, 0.6, 0.4}); !types.ApproxEqual(ps.Throughput, expThroughput, 1e-5) {
		t.Fatalf("expected throughput %v; got %v", expThroughput, ps.Throughput)
	}
	if ps.Pdf != 0 {
		t.Fatalf("expected committed pdf to be exactly 0; got %f", ps.Pdf)
	}
	if ps.ScatterWalkCount != 0 {
		t.Fatalf("expected walk counter to stay at 0 outside a medium; got %d", ps.ScatterWalkCount)
	}

	ps.NextSegment()
	if expDir := (types.Vec3{0, 0, 1}); !types.ApproxEqual(ps.Direction, expDir, 1e-5) {
		t.Fatalf("expected next segment direction %v; got %v", expDir, ps.Direction)
	}
	if expDir := (types.Vec3{0, 0, -1}); !types.ApproxEqual(ps.OutgoingDir, expDir, 1e-5) {
		t.Fatalf("expected next segment outgoing direction %v; got %v", expDir, ps.OutgoingDir)
	}
	if ps.Flags&tracer.PathHit != 0 {
		t.Fatalf("expected hit flag to be cleared for the next segment")
	}
}

func TestShadeHitInsideMedium(t *testing.T) {
	sc := mockScene(
		[3]types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		[3]types.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		types.Ident4(),
		flatMaterial(types.Vec3{1, 1, 0.5}),
	)

	ps := tracer.NewPathState(types.Vec3{0.25, 0.25, 2}, types.Vec3{0, 0, -1})
	ps.MediumDepth = 1
	ps.Extinction = types.Vec3{0.5, 1, 2}
	hit := tracer.HitRecord{
		Barycentric: types.Vec2{0.25, 0.25},
		Distance:    2,
	}

	ShadeHit(&ps, &hit, sc)

	// Segment transmittance and the sample weight both fold into the
	// throughput product.
	expThroughput := types.Vec3{
		float32(math.Exp(-1)),
		float32(math.Exp(-2)),
		0.5 * float32(math.Exp(-4)),
	}
	if !types.ApproxEqual(ps.Throughput, expThroughput, 1e-5) {
		t.Fatalf("expected attenuated throughput %v; got %v", expThroughput, ps.Throughput)
	}
	if ps.ScatterWalkCount != 1 {
		t.Fatalf("expected walk counter to advance to 1; got %d", ps.ScatterWalkCount)
	}
	if ps.Event != tracer.SpecularReflection {
		t.Fatalf("expected specular reflection event; got %v", ps.Event)
	}
}

func TestShadeHitGrazingAbsorb(t *testing.T) {
	sc := mockScene(
		[3]types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		[3]types.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		types.Ident4(),
		flatMaterial(types.Vec3{0.8, 0.8, 0.8}),
	)

	// A viewer direction tangent to the facet reflects to its negation
	// and fails the facet consistency check. The absorb event is still
	// committed together with the computed direction and weight.
	ps := tracer.NewPathState(types.Vec3{0.75, 0.25, 0}, types.Vec3{-1, 0, 0})
	hit := tracer.HitRecord{
		Barycentric: types.Vec2{0.25, 0.25},
		Distance:    0.5,
	}

	ShadeHit(&ps, &hit, sc)

	if ps.Event != tracer.Absorb {
		t.Fatalf("expected absorb event; got %v", ps.Event)
	}
	if expPos := (types.Vec3{0.25, 0.25, 0}); !types.ApproxEqual(ps.Position, expPos, 1e-5) {
		t.Fatalf("expected position to advance to %v; got %v", expPos, ps.Position)
	}
	if ps.Flags&tracer.PathHit == 0 {
		t.Fatalf("expected hit flag to be set")
	}
	if expDir := (types.Vec3{-1, 0, 0}); !types.ApproxEqual(ps.IncomingDir, expDir, 1e-5) {
		t.Fatalf("expected committed direction %v; got %v", expDir, ps.IncomingDir)
	}
	if expThroughput := (types.Vec3{0.8, 0.8, 0.8}); !types.ApproxEqual(ps.Throughput, expThroughput, 1e-5) {
		t.Fatalf("expected committed throughput %v; got %v", expThroughput, ps.Throughput)
	}
	if ps.Pdf != 0 {
		t.Fatalf("expected committed pdf to be exactly 0; got %f", ps.Pdf)
	}
}

func TestShadeHitBackFace(t *testing.T) {
	sc := mockScene(
		[3]types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		[3]types.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		types.Ident4(),
		flatMaterial(types.Vec3{1, 1, 1}),
	)

	// Hit the facet from below: the normals flip toward the viewer and
	// the mirror bounce continues on the underside.
	ps := tracer.NewPathState(types.Vec3{0.25, 0.25, -1}, types.Vec3{0, 0, 1})
	hit := tracer.HitRecord{
		Barycentric: types.Vec2{0.25, 0.25},
		Distance:    1,
	}

	ShadeHit(&ps, &hit, sc)

	if ps.Event != tracer.SpecularReflection {
		t.Fatalf("expected specular reflection event; got %v", ps.Event)
	}
	if expDir := (types.Vec3{0, 0, -1}); !types.ApproxEqual(ps.IncomingDir, expDir, 1e-5) {
		t.Fatalf("expected underside reflection %v; got %v", expDir, ps.IncomingDir)
	}
}
