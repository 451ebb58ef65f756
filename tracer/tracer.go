package tracer

type UpdateType uint8

const (
	// Replace the scene snapshot shared by the tracer's workers.
	UpdateScene UpdateType = iota
)

// A unit of work that is processed by a tracer: a contiguous range of paths
// to advance by one traverse/shade step.
type BatchRequest struct {
	// Index of the first path and the number of paths to process.
	FirstPath uint32
	PathCount uint32

	// A channel to signal on batch completion with the number of paths
	// that are still alive after the step.
	DoneChan chan<- uint32

	// A channel to signal if an error occurs.
	ErrChan chan<- error
}

// Tracer statistics.
type Stats struct {
	// The number of paths processed in the last batch.
	PathCount uint32

	// Shading event tallies for the last batch.
	Reflected uint32
	Absorbed  uint32
	Missed    uint32

	// The time for processing the last batch (in nanoseconds).
	BatchTime int64
}

type Tracer interface {
	// Get tracer id.
	Id() string

	// Shutdown and cleanup tracer.
	Close()

	// Attach the path and hit buffers the tracer advances.
	Setup(paths []PathState, hits []HitRecord) error

	// Enqueue batch request.
	Enqueue(BatchRequest)

	// Append a change to the tracer's update buffer. Pending changes are
	// applied before the next batch is processed.
	Update(UpdateType, interface{})

	// Retrieve last batch statistics.
	Stats() *Stats
}
