package renderer

import (
	"image"

	"github.com/rigel-pt/rigel/asset/scene"
	"github.com/rigel-pt/rigel/log"
	"github.com/rigel-pt/rigel/tracer"
)

// Renderer is implemented by all renderers.
type Renderer interface {
	// Render the scene and return the generated frame.
	Render() (*image.RGBA, error)

	// Shutdown the renderer and detach the tracer.
	Close()

	// Get statistics for the last rendered frame.
	Stats() FrameStats
}

// NewDefault creates a renderer that drives the supplied tracer over the
// frame's path buffers until every path has either been absorbed or escaped
// the scene.
func NewDefault(sc *scene.Scene, tr tracer.Tracer, opts Options) (Renderer, error) {
	if sc == nil {
		return nil, ErrSceneNotDefined
	}
	if len(sc.BvhNodeList) == 0 {
		return nil, ErrNoGeometry
	}
	if tr == nil {
		return nil, ErrNoTracer
	}
	if opts.FrameW == 0 || opts.FrameH == 0 {
		return nil, ErrInvalidFrameDims
	}
	if opts.NumBounces == 0 {
		opts.NumBounces = 1
	}

	r := &defaultRenderer{
		logger:    log.New("renderer"),
		options:   opts,
		tracer:    tr,
		sceneData: sc,
		paths:     make([]tracer.PathState, opts.FrameW*opts.FrameH),
		hits:      make([]tracer.HitRecord, opts.FrameW*opts.FrameH),
	}

	err := tr.Setup(r.paths, r.hits)
	if err != nil {
		return nil, err
	}
	tr.Update(tracer.UpdateScene, sc)

	return r, nil
}
