// Package texquad renders a textured, spinning quad to a TV and a gamepad
// screen (DRC) through the gogpu HAL.
//
// # Overview
//
// texquad is a small GPU demo. Each frame it reads two analog sticks, moves
// a free-look camera, computes a model-view-projection matrix and draws the
// quad twice: once to the TV cleared to blue and once to the DRC cleared to
// magenta. The pixel stage tints the texture's red channel with the elapsed
// time.
//
// # Quick Start
//
//	import (
//		"github.com/gogpu/texquad"
//		"github.com/gogpu/texquad/backend"
//	)
//
//	dev, err := backend.Open("")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer dev.Close()
//
//	r, err := texquad.New(dev.Device, dev.Queue)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer r.Destroy()
//
//	for range 60 {
//		if err := r.Draw(); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// # Vertex Data
//
// The MVP matrix is not a uniform. It is passed as four vertex attributes,
// one buffer per matrix row, each buffer holding that row once per quad
// vertex. Positions and texture coordinates use their own buffers, so the
// pipeline reads six vertex buffers at locations 0 through 5.
//
// # Camera
//
// The right stick turns the camera by [DefaultLookSpeed] degrees per frame,
// the left stick moves it by [DefaultMoveSpeed] units along its front and
// right axes. Pitch is clamped to ±[MaxPitch] degrees.
//
// # Packages
//
//   - asset: the bundled romfs:/ data store and image decoding
//   - backend: HAL backend selection and device creation
//   - display: TV and DRC render targets, offscreen or windowed
//   - input: gamepad state, scripted and keyboard sources
//   - internal/shader: WGSL to SPIR-V compilation
package texquad
