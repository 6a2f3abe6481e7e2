package texquad

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"
)

// QuadVertexCount is the number of vertices in the quad.
const QuadVertexCount = 4

// Vertex attribute strides.
const (
	positionStride = 12 // vec3<f32>
	texCoordStride = 8  // vec2<f32>
)

// QuadPositions are the quad corners in triangle strip order:
// bottom-left, bottom-right, top-left, top-right.
var QuadPositions = [QuadVertexCount][3]float32{
	{-1, -1, 0},
	{1, -1, 0},
	{-1, 1, 0},
	{1, 1, 0},
}

// QuadTexCoords map the texture upright onto QuadPositions. V grows
// downward, so the top edge samples v = 0.
var QuadTexCoords = [QuadVertexCount][2]float32{
	{0, 1},
	{1, 1},
	{0, 0},
	{1, 0},
}

func positionBytes() []byte {
	buf := make([]byte, 0, QuadVertexCount*positionStride)
	for _, p := range QuadPositions {
		buf = appendFloats(buf, p[:]...)
	}
	return buf
}

func texCoordBytes() []byte {
	buf := make([]byte, 0, QuadVertexCount*texCoordStride)
	for _, uv := range QuadTexCoords {
		buf = appendFloats(buf, uv[:]...)
	}
	return buf
}

func appendFloats(buf []byte, vs ...float32) []byte {
	for _, v := range vs {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	return buf
}

// quadVertexLayout returns the vertex buffer layout of the quad pipeline.
// Matches VertexInput in quad_vertex.wgsl:
//
//	buffer 0, location 0: position  (vec3<f32>)
//	buffer 1, location 1: tex_coord (vec2<f32>)
//	buffer 2..5, location 2..5: mvp rows 0..3 (vec4<f32>)
func quadVertexLayout() []gputypes.VertexBufferLayout {
	layouts := []gputypes.VertexBufferLayout{
		{
			ArrayStride: positionStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			},
		},
		{
			ArrayStride: texCoordStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 1},
			},
		},
	}
	for i := uint32(0); i < 4; i++ {
		layouts = append(layouts, gputypes.VertexBufferLayout{
			ArrayStride: rowStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 2 + i},
			},
		})
	}
	return layouts
}
