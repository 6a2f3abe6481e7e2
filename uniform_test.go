package texquad

import (
	"encoding/binary"
	"testing"
	"time"
)

func TestElapsedSeconds(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want float32
	}{
		{0, 0},
		{999 * time.Microsecond, 0},
		{time.Second, 1},
		{2*time.Second + 999*time.Microsecond, 2},
	}
	for _, tt := range tests {
		if got := ElapsedSeconds(tt.d); got != tt.want {
			t.Errorf("ElapsedSeconds(%v) = %v, want %v", tt.d, got, tt.want)
		}
	}
}

func TestEncodeTimeByteOrder(t *testing.T) {
	le := EncodeTime(1, binary.LittleEndian)
	be := EncodeTime(1, binary.BigEndian)
	if len(le) != timeUniformSize || len(be) != timeUniformSize {
		t.Fatalf("sizes = %d, %d, want %d", len(le), len(be), timeUniformSize)
	}

	// 1.0f is 0x3F800000.
	if le[3] != 0x3F || le[2] != 0x80 {
		t.Errorf("little-endian bytes = % x", le[:4])
	}
	if be[0] != 0x3F || be[1] != 0x80 {
		t.Errorf("big-endian bytes = % x", be[:4])
	}
	for _, b := range be[4:] {
		if b != 0 {
			t.Fatalf("unused lanes not zero: % x", be)
		}
	}

	if got := DecodeTime(be, binary.BigEndian); got != 1 {
		t.Errorf("DecodeTime(big) = %v, want 1", got)
	}
	if got := DecodeTime(le, binary.LittleEndian); got != 1 {
		t.Errorf("DecodeTime(little) = %v, want 1", got)
	}
}
