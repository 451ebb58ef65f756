package renderer

import "time"

type BounceStats struct {
	// The bounce ordinal, starting at 1 for the primary segment.
	Bounce uint32

	// Path counts per scattering outcome.
	Reflected uint32
	Absorbed  uint32
	Missed    uint32

	// Paths still alive after this bounce.
	Alive uint32

	// Trace time for this bounce.
	TraceTime time.Duration
}

type FrameStats struct {
	// Number of paths in the frame.
	PathCount uint32

	// Individual bounce stats.
	Bounces []BounceStats

	// Total render time for entire frame.
	RenderTime time.Duration
}
