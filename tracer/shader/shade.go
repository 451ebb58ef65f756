package shader

import (
	"github.com/rigel-pt/rigel/asset/scene"
	"github.com/rigel-pt/rigel/tracer"
)

// Advance a path across a ray/geometry intersection: resolve the shading
// geometry, apply volume transmittance over the traveled segment, sample
// the surface lobe and commit the result into the path state.
//
// The commit order is an invariant: the position advances along the
// completed segment and the hit flag is raised before the lobe sample reads
// k1, and the volume transmittance multiplies into the throughput before
// the sample weight does. The sample is committed unconditionally; on an
// absorb event the integrator treats the event tag as authoritative and the
// committed direction and weight are inert.
func ShadeHit(ps *tracer.PathState, hit *tracer.HitRecord, sc *scene.Scene) {
	ps.Position = ps.Position.Add(ps.Direction.Mul(hit.Distance))
	ps.Flags |= tracer.PathHit

	surf := ResolveSurface(sc, hit, ps.OutgoingDir)

	ApplyTransmittance(ps, hit.Distance)

	sample := SampleSpecular(&surf, ps.OutgoingDir)

	ps.IncomingDir = sample.K2
	ps.Throughput = ps.Throughput.MulVec(sample.BsdfOverPdf)
	ps.Pdf = sample.Pdf
	ps.Event = sample.Event
}
