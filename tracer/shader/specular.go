package shader

import (
	"github.com/rigel-pt/rigel/tracer"
	"github.com/rigel-pt/rigel/types"
)

// Sample carries the output of one BSDF lobe sampling step before it is
// committed into a path state.
type Sample struct {
	// Sampled incoming direction for the next bounce.
	K2 types.Vec3

	// The ratio (BSDF value * cosine) / pdf. Dirac lobes compute this
	// ratio directly since their density has no finite value.
	BsdfOverPdf types.Vec3

	// Sampling density. Dirac lobes write exactly 0.
	Pdf float32

	Event tracer.Event
}

// Sample the perfect mirror lobe for the viewer direction k1. k1 must have
// been resolved against viewer-oriented normals.
//
// The reflected direction mirrors k1 about the shading normal. Interpolated
// shading normals can diverge from the facet plane near silhouettes and
// reflect below the surface; such samples keep their computed direction and
// weight but their event is overridden to absorb, and the integrator treats
// the event tag as authoritative. A viewer direction below the shading
// normal hemisphere absorbs immediately with a zero weight.
func SampleSpecular(surf *Surface, k1 types.Vec3) Sample {
	sample := Sample{Event: tracer.Absorb}

	nk1 := k1.Dot(surf.ShadingNormal)
	if nk1 < 0 {
		return sample
	}

	// For a mirror lobe the implicit cosine and the Dirac density cancel,
	// leaving the tint as the whole throughput multiplier.
	sample.K2 = surf.ShadingNormal.Mul(2 * nk1).Sub(k1)
	sample.BsdfOverPdf = surf.Tint
	sample.Event = tracer.SpecularReflection

	if sample.K2.Dot(surf.GeometricNormal) <= 0 {
		sample.Event = tracer.Absorb
	}

	return sample
}
