package texquad

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Projection describes a perspective projection. FovY is in degrees.
type Projection struct {
	FovY   float32
	Aspect float32
	Near   float32
	Far    float32
}

// DefaultProjection is a 45 degree, 16:9 projection.
var DefaultProjection = Projection{FovY: 45, Aspect: 16.0 / 9.0, Near: 0.1, Far: 1000}

// Matrix returns the projection matrix.
func (p Projection) Matrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(p.FovY), p.Aspect, p.Near, p.Far)
}

// DefaultSpin is the model's rotation about Y per frame, in radians.
const DefaultSpin = 0.01

// Model is the quad's placement. Rotation is in radians and advances by
// Spin every frame.
type Model struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Spin     mgl32.Vec3
}

// NewModel returns a model at the origin spinning about Y.
func NewModel() *Model {
	return &Model{Spin: mgl32.Vec3{0, DefaultSpin, 0}}
}

// Advance steps the rotation by one frame.
func (m *Model) Advance() {
	m.Rotation = m.Rotation.Add(m.Spin)
}

// Matrix returns T * Rx * Ry * Rz.
func (m *Model) Matrix() mgl32.Mat4 {
	return mgl32.Translate3D(m.Position.X(), m.Position.Y(), m.Position.Z()).
		Mul4(mgl32.HomogRotate3DX(m.Rotation.X())).
		Mul4(mgl32.HomogRotate3DY(m.Rotation.Y())).
		Mul4(mgl32.HomogRotate3DZ(m.Rotation.Z()))
}

// ComputeMVP returns projection * view * model.
func ComputeMVP(projection, view, model mgl32.Mat4) mgl32.Mat4 {
	return projection.Mul4(view).Mul4(model)
}

// Row buffer layout: one vec4 per quad vertex, all equal.
const (
	rowSlots      = 4
	rowStride     = 16
	rowBufferSize = rowSlots * rowStride
)

// MVPRow returns row i of m as the vertex shader consumes it: the i-th
// vec4 of the matrix storage, i.e. column i of the column-major matrix.
func MVPRow(m mgl32.Mat4, i int) mgl32.Vec4 {
	return m.Col(i)
}

// EncodeRow encodes row i of m for its per-vertex attribute buffer: the
// row repeated once per quad vertex as little-endian float32s.
func EncodeRow(m mgl32.Mat4, i int) []byte {
	row := MVPRow(m, i)
	buf := make([]byte, rowBufferSize)
	for slot := 0; slot < rowSlots; slot++ {
		for x := 0; x < 4; x++ {
			off := slot*rowStride + x*4
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(row[x]))
		}
	}
	return buf
}

// DecodeRow decodes one slot of an encoded row buffer.
func DecodeRow(buf []byte, slot int) mgl32.Vec4 {
	var v mgl32.Vec4
	for x := 0; x < 4; x++ {
		off := slot*rowStride + x*4
		v[x] = math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
	}
	return v
}
