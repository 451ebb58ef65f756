package renderer

import (
	"image"
	"time"

	"github.com/rigel-pt/rigel/asset/scene"
	"github.com/rigel-pt/rigel/log"
	"github.com/rigel-pt/rigel/tracer"
	"github.com/rigel-pt/rigel/types"
)

// Scale factor applied to the scene extents when fitting the frame plane so
// that a small margin surrounds the geometry.
const frameSpanScale = 1.2

type defaultRenderer struct {
	logger log.Logger

	options   Options
	tracer    tracer.Tracer
	sceneData *scene.Scene

	// Path and hit buffers shared with the attached tracer. Both have
	// FrameW * FrameH entries, one per frame pixel.
	paths []tracer.PathState
	hits  []tracer.HitRecord

	stats FrameStats
}

// Render the scene and return the generated frame.
//
// The renderer emits one primary path per pixel and keeps enqueueing batches
// until no path remains alive or the bounce limit is reached. Pixels whose
// paths never intersected the scene are rendered black; all other pixels map
// the accumulated path throughput to 8-bit color.
func (r *defaultRenderer) Render() (*image.RGBA, error) {
	r.generatePrimaryPaths()
	for i := range r.hits {
		r.hits[i] = tracer.HitRecord{}
	}
	r.stats = FrameStats{PathCount: uint32(len(r.paths))}

	start := time.Now()
	doneChan := make(chan uint32, 1)
	errChan := make(chan error, 1)

	for bounce := uint32(0); bounce < r.options.NumBounces; bounce++ {
		r.tracer.Enqueue(tracer.BatchRequest{
			FirstPath: 0,
			PathCount: uint32(len(r.paths)),
			DoneChan:  doneChan,
			ErrChan:   errChan,
		})

		var alive uint32
		select {
		case alive = <-doneChan:
		case err := <-errChan:
			return nil, err
		}

		batchStats := r.tracer.Stats()
		r.stats.Bounces = append(r.stats.Bounces, BounceStats{
			Bounce:    bounce + 1,
			Reflected: batchStats.Reflected,
			Absorbed:  batchStats.Absorbed,
			Missed:    batchStats.Missed,
			Alive:     alive,
			TraceTime: time.Duration(batchStats.BatchTime),
		})
		r.logger.Debugf("bounce %d: %d reflected, %d absorbed, %d missed, %d paths still alive", bounce+1, batchStats.Reflected, batchStats.Absorbed, batchStats.Missed, alive)

		if alive == 0 {
			break
		}
	}
	r.stats.RenderTime = time.Since(start)

	return r.buildFrame(), nil
}

// Shutdown the renderer and detach the tracer.
func (r *defaultRenderer) Close() {
	if r.tracer != nil {
		r.tracer.Close()
		r.tracer = nil
	}
}

// Get statistics for the last rendered frame.
func (r *defaultRenderer) Stats() FrameStats {
	return r.stats
}

// Fill the path buffer with one primary path per frame pixel. Paths enter the
// scene along -z from an orthographic plane fitted over the root bounding
// volume, so the frame covers the whole scene without camera input.
func (r *defaultRenderer) generatePrimaryPaths() {
	root := &r.sceneData.BvhNodeList[0]
	center := root.Min.Add(root.Max).Mul(0.5)
	span := root.Max.Sub(root.Min)

	halfY := span.MaxComponent() * 0.5 * frameSpanScale
	if halfY == 0 {
		halfY = 1.0
	}
	halfX := halfY * float32(r.options.FrameW) / float32(r.options.FrameH)
	originZ := root.Max[2] + span.MaxComponent()*0.5 + 1.0

	stepX := 2.0 * halfX / float32(r.options.FrameW)
	stepY := 2.0 * halfY / float32(r.options.FrameH)
	dir := types.Vec3{0.0, 0.0, -1.0}

	for y := uint32(0); y < r.options.FrameH; y++ {
		for x := uint32(0); x < r.options.FrameW; x++ {
			origin := types.Vec3{
				center[0] - halfX + (float32(x)+0.5)*stepX,
				center[1] + halfY - (float32(y)+0.5)*stepY,
				originZ,
			}
			r.paths[y*r.options.FrameW+x] = tracer.NewPathState(origin, dir)
		}
	}
}

// Convert the traced path buffers into a frame. The hit buffer doubles as the
// coverage mask: a zero hit distance means the primary ray escaped.
func (r *defaultRenderer) buildFrame() *image.RGBA {
	frame := image.NewRGBA(image.Rect(0, 0, int(r.options.FrameW), int(r.options.FrameH)))
	for i := range r.paths {
		x := i % int(r.options.FrameW)
		y := i / int(r.options.FrameW)

		var pixel [3]uint8
		if r.hits[i].Distance > 0 {
			throughput := r.paths[i].Throughput
			pixel[0] = quantize(throughput[0])
			pixel[1] = quantize(throughput[1])
			pixel[2] = quantize(throughput[2])
		}

		offset := frame.PixOffset(x, y)
		frame.Pix[offset] = pixel[0]
		frame.Pix[offset+1] = pixel[1]
		frame.Pix[offset+2] = pixel[2]
		frame.Pix[offset+3] = 255
	}
	return frame
}

func quantize(v float32) uint8 {
	if v <= 0.0 {
		return 0
	}
	if v >= 1.0 {
		return 255
	}
	return uint8(v*255.0 + 0.5)
}
