package tracer

import "github.com/rigel-pt/rigel/types"

// Shading event classification. The shading core only ever produces Absorb
// or SpecularReflection; the remaining members are written by sibling BSDF
// samplers and the integrator switches on the shared set generically.
type Event int32

const (
	Absorb Event = iota
	SpecularReflection
	SpecularTransmission
	GlossyReflection
	GlossyTransmission
	DiffuseReflection
	DiffuseTransmission
)

func (e Event) String() string {
	switch e {
	case Absorb:
		return "absorb"
	case SpecularReflection:
		return "specular reflection"
	case SpecularTransmission:
		return "specular transmission"
	case GlossyReflection:
		return "glossy reflection"
	case GlossyTransmission:
		return "glossy transmission"
	case DiffuseReflection:
		return "diffuse reflection"
	case DiffuseTransmission:
		return "diffuse transmission"
	}
	return "unknown"
}

type PathFlags uint32

const (
	// PathHit marks that the last traced segment intersected geometry.
	// Set by the shading core.
	PathHit PathFlags = 1 << iota

	// PathDone marks a terminated path. Set by the integrator when a
	// path is absorbed or leaves the scene.
	PathDone
)

// PathState tracks a single ray path across bounces. It is owned exclusively
// by the integrator advancing the path; the shading core mutates it once per
// ray/geometry intersection.
type PathState struct {
	// Current world-space ray origin. Advanced by Direction * distance
	// on each hit.
	Position types.Vec3

	// Direction of the segment that was just traced.
	Direction types.Vec3

	// Unit vector pointing back toward the ray origin (negated segment
	// direction). Read-only input to the shading core.
	OutgoingDir types.Vec3

	// Unit vector for the next bounce. Written by the shading core.
	IncomingDir types.Vec3

	// Running product of BSDF/pdf contributions and medium
	// transmittances along the path.
	Throughput types.Vec3

	// Sampling density of the last shading event. Specular events write
	// exactly 0 as their density is a Dirac delta.
	Pdf float32

	Event Event
	Flags PathFlags

	// Volume bookkeeping. The shading core reads the stack depth and
	// extinction coefficient and increments the walk counter; pushing
	// and popping media is the integrator's business.
	MediumDepth      uint32
	Extinction       types.Vec3
	ScatterWalkCount uint32
}

// Create a path state for a primary ray segment.
func NewPathState(origin, dir types.Vec3) PathState {
	return PathState{
		Position:    origin,
		Direction:   dir,
		OutgoingDir: dir.Mul(-1),
		Throughput:  types.Vec3{1, 1, 1},
	}
}

// Redirect the path along the sampled incoming direction and reset the
// per-segment flags so the next traversal starts clean.
func (ps *PathState) NextSegment() {
	ps.Direction = ps.IncomingDir
	ps.OutgoingDir = ps.IncomingDir.Mul(-1)
	ps.Flags &^= PathHit
}
