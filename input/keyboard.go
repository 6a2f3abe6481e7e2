package input

import (
	"sync"

	"github.com/gogpu/gpucontext"
)

// Keyboard emulates a gamepad with keys: W/A/S/D drive the left stick and
// the arrow keys drive the right stick. Opposite keys cancel out.
//
// Keyboard is safe for concurrent use; key events usually arrive on the
// windowing goroutine while Poll runs on the render goroutine.
type Keyboard struct {
	mu   sync.Mutex
	down map[gpucontext.Key]bool
}

// NewKeyboard returns a Keyboard with no keys held.
func NewKeyboard() *Keyboard {
	return &Keyboard{down: make(map[gpucontext.Key]bool)}
}

// Attach subscribes the keyboard to key events from src.
func (k *Keyboard) Attach(src gpucontext.EventSource) {
	src.OnKeyPress(func(key gpucontext.Key, _ gpucontext.Modifiers) {
		k.Press(key)
	})
	src.OnKeyRelease(func(key gpucontext.Key, _ gpucontext.Modifiers) {
		k.Release(key)
	})
}

// Press marks key as held.
func (k *Keyboard) Press(key gpucontext.Key) {
	k.mu.Lock()
	k.down[key] = true
	k.mu.Unlock()
}

// Release marks key as released.
func (k *Keyboard) Release(key gpucontext.Key) {
	k.mu.Lock()
	delete(k.down, key)
	k.mu.Unlock()
}

// Reset releases every key.
func (k *Keyboard) Reset() {
	k.mu.Lock()
	clear(k.down)
	k.mu.Unlock()
}

// Poll returns the emulated stick positions.
func (k *Keyboard) Poll() State {
	k.mu.Lock()
	defer k.mu.Unlock()
	return State{
		Left: Stick{
			X: k.axis(gpucontext.KeyA, gpucontext.KeyD),
			Y: k.axis(gpucontext.KeyS, gpucontext.KeyW),
		},
		Right: Stick{
			X: k.axis(gpucontext.KeyLeft, gpucontext.KeyRight),
			Y: k.axis(gpucontext.KeyDown, gpucontext.KeyUp),
		},
	}
}

// axis returns -1, 0 or 1 for a pair of opposing keys. Caller holds mu.
func (k *Keyboard) axis(neg, pos gpucontext.Key) float32 {
	var v float32
	if k.down[neg] {
		v--
	}
	if k.down[pos] {
		v++
	}
	return v
}
