// Package input provides gamepad stick snapshots for the renderer's camera.
//
// A Source is polled once per frame. Sticks report values in [-1, 1] with
// positive Y pointing up, matching a console gamepad's stick convention.
package input

import "sync"

// Stick is the position of one analog stick.
type Stick struct {
	X, Y float32
}

// Clamp limits both axes to [-1, 1].
func (s Stick) Clamp() Stick {
	return Stick{X: clamp1(s.X), Y: clamp1(s.Y)}
}

// Add returns the component-wise sum of s and o.
func (s Stick) Add(o Stick) Stick {
	return Stick{X: s.X + o.X, Y: s.Y + o.Y}
}

// State is a gamepad snapshot. Left drives movement, Right drives look.
type State struct {
	Left, Right Stick
}

// Source produces one State per poll.
type Source interface {
	Poll() State
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func() State

// Poll calls f.
func (f SourceFunc) Poll() State { return f() }

// Neutral is a Source whose sticks are always centered.
var Neutral Source = SourceFunc(func() State { return State{} })

// Merge returns a Source that sums the states of all sources and clamps the
// result. Nil sources are skipped.
func Merge(sources ...Source) Source {
	return SourceFunc(func() State {
		var st State
		for _, src := range sources {
			if src == nil {
				continue
			}
			s := src.Poll()
			st.Left = st.Left.Add(s.Left)
			st.Right = st.Right.Add(s.Right)
		}
		st.Left = st.Left.Clamp()
		st.Right = st.Right.Clamp()
		return st
	})
}

// Script replays a fixed sequence of states, one per poll.
// Once exhausted it keeps returning the last state unless Loop is set.
// An empty Script is always neutral.
type Script struct {
	mu     sync.Mutex
	states []State
	next   int

	// Loop restarts the sequence when it is exhausted.
	Loop bool
}

// NewScript returns a Script over states.
func NewScript(states ...State) *Script {
	return &Script{states: states}
}

// Poll returns the next scripted state.
func (s *Script) Poll() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.states) == 0 {
		return State{}
	}
	if s.next >= len(s.states) {
		if !s.Loop {
			return s.states[len(s.states)-1]
		}
		s.next = 0
	}
	st := s.states[s.next]
	s.next++
	return st
}

// Remaining reports how many scripted states have not been polled yet.
func (s *Script) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return max(0, len(s.states)-s.next)
}

func clamp1(v float32) float32 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
