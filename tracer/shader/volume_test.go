package shader

import (
	"math"
	"testing"

	"github.com/rigel-pt/rigel/tracer"
	"github.com/rigel-pt/rigel/types"
)

func TestTransmittanceVacuum(t *testing.T) {
	ps := tracer.NewPathState(types.Vec3{}, types.Vec3{0, 0, -1})
	ps.Extinction = types.Vec3{5, 5, 5}

	ApplyTransmittance(&ps, 10)

	if expThroughput := (types.Vec3{1, 1, 1}); !types.ApproxEqual(ps.Throughput, expThroughput, 1e-5) {
		t.Fatalf("expected vacuum segment to leave throughput at %v; got %v", expThroughput, ps.Throughput)
	}
	if ps.ScatterWalkCount != 0 {
		t.Fatalf("expected vacuum segment to leave walk counter at 0; got %d", ps.ScatterWalkCount)
	}
}

func TestTransmittanceAttenuation(t *testing.T) {
	ps := tracer.NewPathState(types.Vec3{}, types.Vec3{0, 0, -1})
	ps.MediumDepth = 1
	ps.Extinction = types.Vec3{1, 1, 1}

	ApplyTransmittance(&ps, 0.5)

	exp := float32(math.Exp(-0.5))
	if expThroughput := (types.Vec3{exp, exp, exp}); !types.ApproxEqual(ps.Throughput, expThroughput, 1e-5) {
		t.Fatalf("expected throughput %v; got %v", expThroughput, ps.Throughput)
	}
	if ps.ScatterWalkCount != 1 {
		t.Fatalf("expected walk counter to advance to 1; got %d", ps.ScatterWalkCount)
	}
}

func TestTransmittancePerChannel(t *testing.T) {
	ps := tracer.NewPathState(types.Vec3{}, types.Vec3{0, 0, -1})
	ps.MediumDepth = 1
	ps.Extinction = types.Vec3{0.5, 1, 2}
	ps.Throughput = types.Vec3{1, 0.5, 1}

	ApplyTransmittance(&ps, 2)

	expThroughput := types.Vec3{
		float32(math.Exp(-1)),
		0.5 * float32(math.Exp(-2)),
		float32(math.Exp(-4)),
	}
	if !types.ApproxEqual(ps.Throughput, expThroughput, 1e-5) {
		t.Fatalf("expected per-channel throughput %v; got %v", expThroughput, ps.Throughput)
	}

	ApplyTransmittance(&ps, 2)
	if ps.ScatterWalkCount != 2 {
		t.Fatalf("expected walk counter to advance once per segment; got %d", ps.ScatterWalkCount)
	}
}
