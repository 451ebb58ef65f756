package renderer

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Number of bounces to trace per path.
	NumBounces uint32
}
