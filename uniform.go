package texquad

import (
	"encoding/binary"
	"math"
	"time"
)

// timeUniformSize is the byte size of the pixel shader's uniform block:
// a vec4<f32> whose x lane holds the elapsed time in seconds.
const timeUniformSize = 16

// ElapsedSeconds converts a duration to the shader's time value: whole
// milliseconds scaled to seconds.
func ElapsedSeconds(d time.Duration) float32 {
	return float32(d.Milliseconds()) * 0.001
}

// EncodeTime encodes seconds into a uniform block using the GPU's byte
// order. The remaining lanes are zero.
func EncodeTime(seconds float32, order binary.ByteOrder) []byte {
	buf := make([]byte, timeUniformSize)
	order.PutUint32(buf, math.Float32bits(seconds))
	return buf
}

// DecodeTime reads the time value back from an encoded uniform block.
func DecodeTime(buf []byte, order binary.ByteOrder) float32 {
	return math.Float32frombits(order.Uint32(buf))
}
