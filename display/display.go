// Package display provides the two render outputs of the console: the TV and
// the gamepad screen (DRC).
//
// A Target is acquired once per frame for a color attachment view and
// presented after the frame's commands are submitted. Offscreen targets keep
// their pixels in a texture that can be read back; Surface targets present
// to a window.
package display

import (
	"errors"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Output names.
const (
	NameTV  = "tv"
	NameDRC = "drc"
)

// Native output resolutions.
const (
	TVWidth   = 1280
	TVHeight  = 720
	DRCWidth  = 854
	DRCHeight = 480
)

// Display errors.
var (
	// ErrNotAcquired is returned by Present without a preceding Acquire.
	ErrNotAcquired = errors.New("display: target not acquired")

	// ErrDestroyed is returned when using a destroyed target.
	ErrDestroyed = errors.New("display: target destroyed")

	// ErrInvalidSize is returned for zero-sized targets.
	ErrInvalidSize = errors.New("display: invalid size")
)

// Target is a render output.
type Target interface {
	// Name identifies the output in logs, e.g. "tv".
	Name() string

	// Size returns the output size in pixels.
	Size() (width, height uint32)

	// Format is the color attachment format. Render pipelines drawing to
	// this target must use it.
	Format() gputypes.TextureFormat

	// Acquire returns the view to render this frame into.
	Acquire() (hal.TextureView, error)

	// Present shows the frame rendered since Acquire.
	Present(queue hal.Queue) error

	// Discard drops an acquired frame without presenting it.
	Discard()

	// Destroy releases the target's GPU resources.
	Destroy()
}

// Outputs holds the TV and DRC targets.
type Outputs struct {
	TV  Target
	DRC Target
}

// NewOffscreenOutputs creates offscreen TV and DRC targets at their native
// resolutions.
func NewOffscreenOutputs(device hal.Device, queue hal.Queue) (Outputs, error) {
	tv, err := NewOffscreen(device, queue, NameTV, TVWidth, TVHeight)
	if err != nil {
		return Outputs{}, err
	}
	drc, err := NewOffscreen(device, queue, NameDRC, DRCWidth, DRCHeight)
	if err != nil {
		tv.Destroy()
		return Outputs{}, err
	}
	return Outputs{TV: tv, DRC: drc}, nil
}

// All returns the targets in draw order, TV first. Nil targets are skipped.
func (o Outputs) All() []Target {
	out := make([]Target, 0, 2)
	for _, t := range []Target{o.TV, o.DRC} {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}

// Destroy releases both targets.
func (o Outputs) Destroy() {
	for _, t := range o.All() {
		t.Destroy()
	}
}
