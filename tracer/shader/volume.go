package shader

import (
	"math"

	"github.com/rigel-pt/rigel/tracer"
	"github.com/rigel-pt/rigel/types"
)

// Attenuate the path throughput by the Beer-Lambert transmittance over the
// traveled segment and advance the scattering walk counter. Applies only
// while the path is inside a participating medium: the bottom medium stack
// entry is vacuum and never attenuates. Attenuation runs independently per
// color channel.
func ApplyTransmittance(ps *tracer.PathState, distance float32) {
	if ps.MediumDepth == 0 {
		return
	}

	ps.Throughput = types.Vec3{
		ps.Throughput[0] * expf(-ps.Extinction[0]*distance),
		ps.Throughput[1] * expf(-ps.Extinction[1]*distance),
		ps.Throughput[2] * expf(-ps.Extinction[2]*distance),
	}
	ps.ScatterWalkCount++
}

func expf(v float32) float32 {
	return float32(math.Exp(float64(v)))
}
