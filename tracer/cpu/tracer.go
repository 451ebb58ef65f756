package cpu

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/rigel-pt/rigel/asset/scene"
	"github.com/rigel-pt/rigel/log"
	"github.com/rigel-pt/rigel/tracer"
	"github.com/rigel-pt/rigel/tracer/shader"
)

// Per-goroutine shading event tallies for one batch chunk.
type batchTally struct {
	reflected uint32
	absorbed  uint32
	missed    uint32
	alive     uint32
}

type cpuTracer struct {
	logger log.Logger

	sync.Mutex
	wg sync.WaitGroup

	// The tracer id.
	id string

	// Number of goroutines a batch is fanned out to.
	numWorkers int

	// A buffer for queuing updates. Updates are grouped by type and
	// latest updates always overwrite the previous ones. Guarded by its
	// own mutex so the worker never contends with the lifecycle lock.
	updateMu     sync.Mutex
	updateBuffer map[tracer.UpdateType]interface{}

	// A channel for receiving batch requests from the integrator.
	batchReqChan chan tracer.BatchRequest

	// A channel for signaling the worker to exit.
	closeChan chan struct{}

	// Statistics for the last processed batch.
	stats *tracer.Stats

	// The attached scene snapshot. Read-only while batches run.
	sceneData *scene.Scene

	// The path and hit buffers this tracer advances.
	paths []tracer.PathState
	hits  []tracer.HitRecord
}

// Create a new cpu tracer that fans each batch out to numWorkers
// goroutines. Non-positive worker counts select one worker per logical CPU.
func NewTracer(id string, numWorkers int) tracer.Tracer {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	return &cpuTracer{
		logger:       log.New(fmt.Sprintf("cpu tracer (%s)", id)),
		id:           id,
		numWorkers:   numWorkers,
		updateBuffer: make(map[tracer.UpdateType]interface{}, 0),
		batchReqChan: make(chan tracer.BatchRequest, 1),
		stats:        &tracer.Stats{},
	}
}

// Get tracer id.
func (tr *cpuTracer) Id() string {
	return tr.id
}

// Shutdown and cleanup tracer.
func (tr *cpuTracer) Close() {
	tr.Lock()
	defer tr.Unlock()

	tr.cleanup()
}

// Cleanup tracer. This method is meant to be called while holding tr.Lock()
func (tr *cpuTracer) cleanup() {
	// If the worker is running shut it down
	if tr.closeChan != nil {
		tr.closeChan <- struct{}{}

		// wait for worker to ack close and shutdown channel
		<-tr.closeChan
		close(tr.closeChan)
		tr.closeChan = nil
	}

	tr.sceneData = nil
	tr.paths = nil
	tr.hits = nil
}

// Attach the path and hit buffers this tracer advances and start the
// request processor. The buffers are indexed in lockstep: the hit for
// paths[i] lands in hits[i].
func (tr *cpuTracer) Setup(paths []tracer.PathState, hits []tracer.HitRecord) error {
	tr.Lock()
	defer tr.Unlock()

	if tr.closeChan != nil {
		return ErrAlreadyAttached
	}
	if len(paths) != len(hits) {
		return ErrBufferSizeMismatch
	}

	tr.paths = paths
	tr.hits = hits
	tr.startWorker()

	return nil
}

// Enqueue batch request.
func (tr *cpuTracer) Enqueue(batchReq tracer.BatchRequest) {
	select {
	case tr.batchReqChan <- batchReq:
	default:
		// drop the request if worker is not listening
		tr.logger.Error("request processor did not receive batch request")
	}
}

// Append a change to the tracer's update buffer. Pending changes are
// applied before the next batch is processed.
func (tr *cpuTracer) Update(updateType tracer.UpdateType, data interface{}) {
	tr.updateMu.Lock()
	defer tr.updateMu.Unlock()

	tr.updateBuffer[updateType] = data
}

// Retrieve last batch statistics.
func (tr *cpuTracer) Stats() *tracer.Stats {
	return tr.stats
}

// Commit queued changes.
func (tr *cpuTracer) commitUpdates() error {
	tr.updateMu.Lock()
	defer tr.updateMu.Unlock()

	for updateType, data := range tr.updateBuffer {
		switch updateType {
		case tracer.UpdateScene:
			tr.sceneData = data.(*scene.Scene)
		default:
			return fmt.Errorf("unsupported update type %d", updateType)
		}
	}

	tr.updateBuffer = make(map[tracer.UpdateType]interface{}, 0)
	return nil
}

// Spawn a go-routine to process batch requests.
func (tr *cpuTracer) startWorker() {
	tr.closeChan = make(chan struct{}, 0)

	readyChan := make(chan struct{}, 0)
	tr.wg.Add(1)
	go func() {
		defer tr.wg.Done()
		var batchReq tracer.BatchRequest
		var startTime time.Time
		var alive uint32
		var err error
		close(readyChan)
		for {
			select {
			case batchReq = <-tr.batchReqChan:
				startTime = time.Now()

				// Apply any pending changes
				err = tr.commitUpdates()
				if err != nil {
					batchReq.ErrChan <- err
					continue
				}

				// Advance the batch and reply with the alive count
				alive, err = tr.processBatch(&batchReq)
				if err != nil {
					batchReq.ErrChan <- err
					continue
				}

				tr.stats.BatchTime = time.Since(startTime).Nanoseconds()
				batchReq.DoneChan <- alive
			case <-tr.closeChan:
				// Ack close
				tr.closeChan <- struct{}{}
				return
			}
		}
	}()

	// Wait for go-routine to start
	<-readyChan
}

// Advance a contiguous path range by one traverse/shade step, fanning the
// range out across the tracer's workers in equal chunks. Returns the number
// of paths still alive after the step.
func (tr *cpuTracer) processBatch(batchReq *tracer.BatchRequest) (uint32, error) {
	if tr.sceneData == nil {
		return 0, ErrNoSceneData
	}

	end := int(batchReq.FirstPath) + int(batchReq.PathCount)
	if end > len(tr.paths) {
		return 0, fmt.Errorf("cpu tracer: batch range [%d, %d) exceeds the %d attached paths",
			batchReq.FirstPath, end, len(tr.paths))
	}

	tr.stats.PathCount = batchReq.PathCount
	tr.stats.Reflected = 0
	tr.stats.Absorbed = 0
	tr.stats.Missed = 0

	if batchReq.PathCount == 0 {
		return 0, nil
	}

	chunkSize := (int(batchReq.PathCount) + tr.numWorkers - 1) / tr.numWorkers
	tallies := make([]batchTally, tr.numWorkers)

	var wg sync.WaitGroup
	chunkStart := int(batchReq.FirstPath)
	for workerIndex := 0; workerIndex < tr.numWorkers && chunkStart < end; workerIndex++ {
		chunkEnd := chunkStart + chunkSize
		if chunkEnd > end {
			chunkEnd = end
		}

		wg.Add(1)
		go func(tally *batchTally, first, last int) {
			defer wg.Done()
			tr.advancePaths(tally, first, last)
		}(&tallies[workerIndex], chunkStart, chunkEnd)

		chunkStart = chunkEnd
	}
	wg.Wait()

	var alive uint32
	for tallyIndex := range tallies {
		tr.stats.Reflected += tallies[tallyIndex].reflected
		tr.stats.Absorbed += tallies[tallyIndex].absorbed
		tr.stats.Missed += tallies[tallyIndex].missed
		alive += tallies[tallyIndex].alive
	}

	return alive, nil
}

// Advance the paths in [first, last) by one step each: trace the pending
// segment, shade the intersection and either terminate the path or point it
// at the next segment. Chunks never overlap so each path has exactly one
// writer.
func (tr *cpuTracer) advancePaths(tally *batchTally, first, last int) {
	for pathIndex := first; pathIndex < last; pathIndex++ {
		ps := &tr.paths[pathIndex]
		if ps.Flags&tracer.PathDone != 0 {
			continue
		}

		hit, found := tracer.Traverse(tr.sceneData, tracer.Ray{
			Origin: ps.Position,
			Dir:    ps.Direction,
		})
		if !found {
			ps.Flags |= tracer.PathDone
			tally.missed++
			continue
		}

		tr.hits[pathIndex] = hit
		shader.ShadeHit(ps, &tr.hits[pathIndex], tr.sceneData)

		if ps.Event == tracer.Absorb {
			ps.Flags |= tracer.PathDone
			tally.absorbed++
			continue
		}

		ps.NextSegment()
		tally.reflected++
		tally.alive++
	}
}
