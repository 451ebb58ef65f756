package renderer

import "errors"

var (
	ErrNoTracer         = errors.New("renderer: no tracer attached")
	ErrSceneNotDefined  = errors.New("renderer: no scene defined")
	ErrNoGeometry       = errors.New("renderer: scene contains no geometry")
	ErrInvalidFrameDims = errors.New("renderer: frame dimensions must be non-zero")
)
