package texquad

import "errors"

// Renderer errors.
var (
	// ErrShaderCompile is returned when a shader stage fails to compile.
	ErrShaderCompile = errors.New("texquad: shader compilation failed")

	// ErrTextureLoad is returned when the texture cannot be read or decoded.
	ErrTextureLoad = errors.New("texquad: texture load failed")

	// ErrNotReady is returned by Draw on a destroyed renderer.
	ErrNotReady = errors.New("texquad: renderer not ready")

	// ErrNilDevice is returned when New is called without a device or queue.
	ErrNilDevice = errors.New("texquad: nil device or queue")

	// ErrNoOutputs is returned when the renderer has no render targets.
	ErrNoOutputs = errors.New("texquad: no outputs")
)
