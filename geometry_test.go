package texquad

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/texquad/internal/shader"
)

func TestQuadBytes(t *testing.T) {
	pos := positionBytes()
	if len(pos) != QuadVertexCount*positionStride {
		t.Fatalf("position bytes = %d", len(pos))
	}
	uv := texCoordBytes()
	if len(uv) != QuadVertexCount*texCoordStride {
		t.Fatalf("texcoord bytes = %d", len(uv))
	}

	// Last vertex is the top-right corner sampling (1, 0).
	f := func(b []byte, i int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	if f(pos, 9) != 1 || f(pos, 10) != 1 || f(pos, 11) != 0 {
		t.Errorf("vertex 3 position = (%v, %v, %v)", f(pos, 9), f(pos, 10), f(pos, 11))
	}
	if f(uv, 6) != 1 || f(uv, 7) != 0 {
		t.Errorf("vertex 3 texcoord = (%v, %v)", f(uv, 6), f(uv, 7))
	}
}

func TestQuadVertexLayout(t *testing.T) {
	layouts := quadVertexLayout()
	if len(layouts) != 6 {
		t.Fatalf("buffers = %d, want 6", len(layouts))
	}
	want := []struct {
		stride uint64
		format gputypes.VertexFormat
	}{
		{12, gputypes.VertexFormatFloat32x3},
		{8, gputypes.VertexFormatFloat32x2},
		{16, gputypes.VertexFormatFloat32x4},
		{16, gputypes.VertexFormatFloat32x4},
		{16, gputypes.VertexFormatFloat32x4},
		{16, gputypes.VertexFormatFloat32x4},
	}
	for i, l := range layouts {
		if l.ArrayStride != want[i].stride {
			t.Errorf("buffer %d stride = %d, want %d", i, l.ArrayStride, want[i].stride)
		}
		if len(l.Attributes) != 1 {
			t.Fatalf("buffer %d attributes = %d", i, len(l.Attributes))
		}
		a := l.Attributes[0]
		if a.ShaderLocation != uint32(i) || a.Format != want[i].format || a.Offset != 0 {
			t.Errorf("buffer %d attribute = %+v", i, a)
		}
	}
}

func TestEmbeddedShadersCompile(t *testing.T) {
	if _, err := shader.Compile(shader.Vertex, "quad_vertex", VertexShaderSource()); err != nil {
		t.Errorf("vertex: %v", err)
	}
	if _, err := shader.Compile(shader.Fragment, "quad_pixel", PixelShaderSource()); err != nil {
		t.Errorf("pixel: %v", err)
	}
}
