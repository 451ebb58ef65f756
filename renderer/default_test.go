package renderer

import (
	"image"
	"image/color"
	"reflect"
	"testing"

	"github.com/rigel-pt/rigel/asset/scene"
	"github.com/rigel-pt/rigel/log"
	"github.com/rigel-pt/rigel/tracer/cpu"
	"github.com/rigel-pt/rigel/types"
)

func init() {
	log.SetLevel(log.Error)
}

func TestRenderFrame(t *testing.T) {
	r, err := NewDefault(twoQuadScene(), cpu.NewTracer("unit test", 2), Options{
		FrameW:     8,
		FrameH:     8,
		NumBounces: 3,
	})
	if err != nil {
		t.Fatalf("renderer setup failed: %v", err)
	}
	defer r.Close()

	frame, err := r.Render()
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if expBounds := image.Rect(0, 0, 8, 8); frame.Bounds() != expBounds {
		t.Fatalf("expected frame bounds %v; got %v", expBounds, frame.Bounds())
	}

	// The frame plane is fitted over the root bounding volume so the two
	// unit quads at x [0,1] and x [3,4] land on known pixel columns.
	gray := color.RGBA{128, 128, 128, 255}
	black := color.RGBA{0, 0, 0, 255}
	for _, spec := range []struct {
		x, y int
		want color.RGBA
	}{
		{1, 3, gray},
		{1, 4, gray},
		{6, 3, gray},
		{6, 4, gray},
		{0, 0, black},
		{4, 3, black},
		{7, 7, black},
	} {
		if got := frame.RGBAAt(spec.x, spec.y); got != spec.want {
			t.Fatalf("expected pixel (%d, %d) to be %v; got %v", spec.x, spec.y, spec.want, got)
		}
	}

	stats := r.Stats()
	if stats.PathCount != 64 {
		t.Fatalf("expected 64 paths; got %d", stats.PathCount)
	}
	// Bounce 1 scatters 2 paths off the mirror quad and absorbs 2 on the
	// quad with diverging shading normals; bounce 2 expires the survivors.
	if len(stats.Bounces) != 2 {
		t.Fatalf("expected 2 traced bounces; got %d", len(stats.Bounces))
	}
	first := stats.Bounces[0]
	if first.Bounce != 1 || first.Reflected != 2 || first.Absorbed != 2 || first.Missed != 60 || first.Alive != 2 {
		t.Fatalf("expected first bounce tallies (1, 2, 2, 60, 2); got (%d, %d, %d, %d, %d)",
			first.Bounce, first.Reflected, first.Absorbed, first.Missed, first.Alive)
	}
	second := stats.Bounces[1]
	if second.Bounce != 2 || second.Reflected != 0 || second.Absorbed != 0 || second.Missed != 2 || second.Alive != 0 {
		t.Fatalf("expected second bounce tallies (2, 0, 0, 2, 0); got (%d, %d, %d, %d, %d)",
			second.Bounce, second.Reflected, second.Absorbed, second.Missed, second.Alive)
	}
	if stats.RenderTime <= 0 {
		t.Fatalf("expected a non-zero render time; got %v", stats.RenderTime)
	}
}

func TestRenderIsRepeatable(t *testing.T) {
	r, err := NewDefault(twoQuadScene(), cpu.NewTracer("unit test", 4), Options{
		FrameW:     8,
		FrameH:     8,
		NumBounces: 3,
	})
	if err != nil {
		t.Fatalf("renderer setup failed: %v", err)
	}
	defer r.Close()

	firstFrame, err := r.Render()
	if err != nil {
		t.Fatalf("first render failed: %v", err)
	}
	firstStats := r.Stats()

	secondFrame, err := r.Render()
	if err != nil {
		t.Fatalf("second render failed: %v", err)
	}
	secondStats := r.Stats()

	if !reflect.DeepEqual(firstFrame.Pix, secondFrame.Pix) {
		t.Fatal("expected repeated renders to produce identical frames")
	}
	if len(firstStats.Bounces) != len(secondStats.Bounces) {
		t.Fatalf("expected repeated renders to trace the same bounce count; got %d and %d",
			len(firstStats.Bounces), len(secondStats.Bounces))
	}
	for i := range firstStats.Bounces {
		a, b := firstStats.Bounces[i], secondStats.Bounces[i]
		if a.Reflected != b.Reflected || a.Absorbed != b.Absorbed || a.Missed != b.Missed || a.Alive != b.Alive {
			t.Fatalf("[bounce %d] expected identical tallies across renders; got (%d, %d, %d, %d) and (%d, %d, %d, %d)",
				i+1, a.Reflected, a.Absorbed, a.Missed, a.Alive, b.Reflected, b.Absorbed, b.Missed, b.Alive)
		}
	}
}

func TestNewDefaultValidation(t *testing.T) {
	sc := twoQuadScene()

	if _, err := NewDefault(nil, cpu.NewTracer("unit test", 1), Options{FrameW: 8, FrameH: 8}); err != ErrSceneNotDefined {
		t.Fatalf("expected ErrSceneNotDefined; got %v", err)
	}
	if _, err := NewDefault(&scene.Scene{}, cpu.NewTracer("unit test", 1), Options{FrameW: 8, FrameH: 8}); err != ErrNoGeometry {
		t.Fatalf("expected ErrNoGeometry; got %v", err)
	}
	if _, err := NewDefault(sc, nil, Options{FrameW: 8, FrameH: 8}); err != ErrNoTracer {
		t.Fatalf("expected ErrNoTracer; got %v", err)
	}
	if _, err := NewDefault(sc, cpu.NewTracer("unit test", 1), Options{FrameW: 8, FrameH: 0}); err != ErrInvalidFrameDims {
		t.Fatalf("expected ErrInvalidFrameDims; got %v", err)
	}
}

// Builds a scene with a mirror quad at x [0,1] and a quad with diverging
// shading normals at x [3,4], both spanning y [0,1] at z=0.
func twoQuadScene() *scene.Scene {
	sc := &scene.Scene{
		VertexList: []types.Vec3{
			{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
			{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		},
		NormalList: []types.Vec3{
			{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1},
			{1, 0, 0.2}, {1, 0, 0.2}, {1, 0, 0.2}, {1, 0, 0.2},
		},
		UvList: []types.Vec2{
			{0, 0}, {1, 0}, {1, 1}, {0, 1},
			{0, 0}, {1, 0}, {1, 1}, {0, 1},
		},
		IndexList:     []uint32{0, 1, 2, 0, 2, 3, 4, 5, 6, 4, 6, 7},
		MaterialIndex: []uint32{0, 0, 0, 0},
		MaterialList:  []scene.MaterialRecord{{Tint: types.Vec3{0.5, 0.5, 0.5}, TintTex: -1}},
	}

	mirrorTransform := types.Ident4()
	tiltedTransform := types.Translate4(types.Vec3{3, 0, 0})
	sc.MeshInstanceList = []scene.MeshInstance{
		{MeshIndex: 0, BvhRoot: 3, Transform: mirrorTransform, InvTransform: mirrorTransform.Inv()},
		{MeshIndex: 1, BvhRoot: 4, Transform: tiltedTransform, InvTransform: tiltedTransform.Inv()},
	}

	sc.BvhNodeList = []scene.BvhNode{
		makeInnerNode(types.Vec3{0, 0, 0}, types.Vec3{4, 1, 0}, 1, 2),
		makeInstanceLeaf(types.Vec3{0, 0, 0}, types.Vec3{1, 1, 0}, 0),
		makeInstanceLeaf(types.Vec3{3, 0, 0}, types.Vec3{4, 1, 0}, 1),
		makePrimLeaf(types.Vec3{0, 0, 0}, types.Vec3{1, 1, 0}, 0, 2),
		makePrimLeaf(types.Vec3{0, 0, 0}, types.Vec3{1, 1, 0}, 2, 2),
	}

	return sc
}

func makeInnerNode(min, max types.Vec3, left, right uint32) scene.BvhNode {
	var node scene.BvhNode
	node.SetBBox([2]types.Vec3{min, max})
	node.SetChildNodes(left, right)
	return node
}

func makeInstanceLeaf(min, max types.Vec3, instanceIndex uint32) scene.BvhNode {
	var node scene.BvhNode
	node.SetBBox([2]types.Vec3{min, max})
	node.SetMeshIndex(instanceIndex)
	return node
}

func makePrimLeaf(min, max types.Vec3, firstPrim, numPrims uint32) scene.BvhNode {
	var node scene.BvhNode
	node.SetBBox([2]types.Vec3{min, max})
	node.SetPrimitives(firstPrim, numPrims)
	return node
}
