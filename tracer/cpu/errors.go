package cpu

import "errors"

var (
	ErrAlreadyAttached    = errors.New("cpu tracer: tracer already attached to path buffers")
	ErrBufferSizeMismatch = errors.New("cpu tracer: path and hit buffers differ in length")
	ErrNoSceneData        = errors.New("cpu tracer: no scene data attached")
)
