package texquad

import _ "embed"

// Embedded WGSL shader sources.

//go:embed shaders/quad_vertex.wgsl
var quadVertexShaderSource string

//go:embed shaders/quad_pixel.wgsl
var quadPixelShaderSource string

// VertexShaderSource returns the WGSL source of the vertex stage.
func VertexShaderSource() string { return quadVertexShaderSource }

// PixelShaderSource returns the WGSL source of the pixel stage.
func PixelShaderSource() string { return quadPixelShaderSource }
