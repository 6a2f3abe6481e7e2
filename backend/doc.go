// Package backend opens GPU devices for the renderer.
//
// Backends are HAL implementations from gogpu/wgpu, kept in a named registry
// and selected at runtime. The "noop" and "software" backends are always
// available; platform backends ("vulkan", "metal", "dx12", "gles") become
// available when the binary links them, typically through:
//
//	import _ "github.com/gogpu/wgpu/hal/allbackends"
//
// # Backend Selection
//
// Use Open with a name, or an empty name for the best available backend:
//
//	dev, err := backend.Open("")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer dev.Close()
//
//	r, err := texquad.New(dev.Device, dev.Queue)
//
// # Available Backends
//
//   - "vulkan", "metal", "dx12", "gles": hardware, when linked
//   - "software": CPU rasterizer, renders real pixels without a GPU
//   - "noop": accepts every call and draws nothing; buffers keep their data
package backend
