package cpu

import "errors"

var (
	ErrNoSceneData       = errors.New("cpu tracer: no scene data uploaded")
	ErrNotInitialized    = errors.New("cpu tracer: tracer not initialized")
	ErrUnsupportedUpdate = errors.New("cpu tracer: unsupported update type")
	ErrInvalidBuffers    = errors.New("cpu tracer: accumulation or frame buffer size does not match frame dimensions")
	ErrInvalidBlock      = errors.New("cpu tracer: block request exceeds frame dimensions")
)
