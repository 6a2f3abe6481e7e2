package input

import (
	"testing"

	"github.com/gogpu/gpucontext"
)

// keySource records the key callbacks registered by Attach.
type keySource struct {
	gpucontext.NullEventSource
	press, release func(gpucontext.Key, gpucontext.Modifiers)
}

func (s *keySource) OnKeyPress(fn func(gpucontext.Key, gpucontext.Modifiers))   { s.press = fn }
func (s *keySource) OnKeyRelease(fn func(gpucontext.Key, gpucontext.Modifiers)) { s.release = fn }

func TestStickClamp(t *testing.T) {
	tests := []struct {
		in, want Stick
	}{
		{Stick{0.5, -0.5}, Stick{0.5, -0.5}},
		{Stick{2, -3}, Stick{1, -1}},
		{Stick{-1, 1}, Stick{-1, 1}},
	}
	for _, tt := range tests {
		if got := tt.in.Clamp(); got != tt.want {
			t.Errorf("%v.Clamp() = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNeutral(t *testing.T) {
	if got := Neutral.Poll(); got != (State{}) {
		t.Errorf("Neutral.Poll() = %v, want zero state", got)
	}
}

func TestKeyboardAttach(t *testing.T) {
	src := &keySource{}
	kb := NewKeyboard()
	kb.Attach(src)
	if src.press == nil || src.release == nil {
		t.Fatal("Attach did not register key callbacks")
	}

	src.press(gpucontext.KeyW, 0)
	src.press(gpucontext.KeyD, 0)
	src.press(gpucontext.KeyLeft, 0)
	src.press(gpucontext.KeyDown, 0)

	want := State{Left: Stick{X: 1, Y: 1}, Right: Stick{X: -1, Y: -1}}
	if got := kb.Poll(); got != want {
		t.Errorf("Poll() = %v, want %v", got, want)
	}

	src.release(gpucontext.KeyW, 0)
	src.release(gpucontext.KeyLeft, 0)
	want = State{Left: Stick{X: 1}, Right: Stick{Y: -1}}
	if got := kb.Poll(); got != want {
		t.Errorf("after release Poll() = %v, want %v", got, want)
	}
}

func TestKeyboardOpposingKeysCancel(t *testing.T) {
	kb := NewKeyboard()
	kb.Press(gpucontext.KeyA)
	kb.Press(gpucontext.KeyD)
	kb.Press(gpucontext.KeyUp)
	kb.Press(gpucontext.KeyDown)
	if got := kb.Poll(); got != (State{}) {
		t.Errorf("Poll() = %v, want neutral", got)
	}
	kb.Reset()
	kb.Press(gpucontext.KeyRight)
	if got := kb.Poll(); got.Right.X != 1 {
		t.Errorf("Right.X = %v, want 1", got.Right.X)
	}
}

func TestScript(t *testing.T) {
	a := State{Right: Stick{X: 1}}
	b := State{Left: Stick{Y: -1}}
	s := NewScript(a, b)

	if got := s.Poll(); got != a {
		t.Errorf("first = %v, want %v", got, a)
	}
	if s.Remaining() != 1 {
		t.Errorf("Remaining = %d, want 1", s.Remaining())
	}
	if got := s.Poll(); got != b {
		t.Errorf("second = %v, want %v", got, b)
	}
	if got := s.Poll(); got != b {
		t.Errorf("after end = %v, want last state %v", got, b)
	}

	s = NewScript(a, b)
	s.Loop = true
	s.Poll()
	s.Poll()
	if got := s.Poll(); got != a {
		t.Errorf("looped = %v, want %v", got, a)
	}

	if got := NewScript().Poll(); got != (State{}) {
		t.Errorf("empty script = %v, want neutral", got)
	}
}

func TestMerge(t *testing.T) {
	kb := NewKeyboard()
	kb.Press(gpucontext.KeyRight)
	pad := SourceFunc(func() State {
		return State{Right: Stick{X: 0.5, Y: 0.25}, Left: Stick{X: -0.5}}
	})

	got := Merge(kb, pad, nil).Poll()
	want := State{Right: Stick{X: 1, Y: 0.25}, Left: Stick{X: -0.5}}
	if got != want {
		t.Errorf("Merge = %v, want %v", got, want)
	}
}
