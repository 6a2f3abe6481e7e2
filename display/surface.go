package display

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Surface is a Target that presents to a window surface.
type Surface struct {
	device  hal.Device
	surface hal.Surface

	name          string
	width, height uint32
	format        gputypes.TextureFormat

	current hal.SurfaceTexture
	view    hal.TextureView
	owned   bool
}

// SurfaceOption configures a Surface.
type SurfaceOption func(*Surface)

// WithFormat sets the surface texture format. Default: BGRA8Unorm.
func WithFormat(f gputypes.TextureFormat) SurfaceOption {
	return func(s *Surface) { s.format = f }
}

// WithOwnership makes Destroy also destroy the hal.Surface.
func WithOwnership() SurfaceOption {
	return func(s *Surface) { s.owned = true }
}

// NewSurface configures surface for device and wraps it as a Target.
func NewSurface(device hal.Device, surface hal.Surface, name string, width, height uint32, opts ...SurfaceOption) (*Surface, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: %s %dx%d", ErrInvalidSize, name, width, height)
	}
	s := &Surface{
		device:  device,
		surface: surface,
		name:    name,
		width:   width,
		height:  height,
		format:  gputypes.TextureFormatBGRA8Unorm,
	}
	for _, opt := range opts {
		opt(s)
	}
	err := surface.Configure(device, &hal.SurfaceConfiguration{
		Width:       width,
		Height:      height,
		Format:      s.format,
		Usage:       gputypes.TextureUsageRenderAttachment,
		PresentMode: gputypes.PresentModeFifo,
		AlphaMode:   gputypes.CompositeAlphaModeOpaque,
	})
	if err != nil {
		return nil, fmt.Errorf("display %s: configure surface: %w", name, err)
	}
	return s, nil
}

// Name returns the output name.
func (s *Surface) Name() string { return s.name }

// Size returns the configured size in pixels.
func (s *Surface) Size() (width, height uint32) { return s.width, s.height }

// Format returns the configured texture format.
func (s *Surface) Format() gputypes.TextureFormat { return s.format }

// Acquire acquires the next swapchain texture and returns a view of it.
func (s *Surface) Acquire() (hal.TextureView, error) {
	if s.surface == nil {
		return nil, fmt.Errorf("%w: %s", ErrDestroyed, s.name)
	}
	acquired, err := s.surface.AcquireTexture(nil)
	if err != nil {
		return nil, fmt.Errorf("display %s: acquire: %w", s.name, err)
	}
	view, err := s.device.CreateTextureView(acquired.Texture, &hal.TextureViewDescriptor{
		Label:         s.name + "_surface_view",
		Format:        s.format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		s.surface.DiscardTexture(acquired.Texture)
		return nil, fmt.Errorf("display %s: create view: %w", s.name, err)
	}
	s.current = acquired.Texture
	s.view = view
	return view, nil
}

// Present presents the acquired texture.
func (s *Surface) Present(queue hal.Queue) error {
	if s.current == nil {
		return fmt.Errorf("%w: %s", ErrNotAcquired, s.name)
	}
	err := queue.Present(s.surface, s.current, nil)
	s.releaseView()
	s.current = nil
	if err != nil {
		return fmt.Errorf("display %s: present: %w", s.name, err)
	}
	return nil
}

// Discard returns the acquired texture without presenting it.
func (s *Surface) Discard() {
	if s.current == nil {
		return
	}
	s.releaseView()
	s.surface.DiscardTexture(s.current)
	s.current = nil
}

// Destroy unconfigures the surface. Safe to call multiple times.
func (s *Surface) Destroy() {
	if s.surface == nil {
		return
	}
	s.Discard()
	s.surface.Unconfigure(s.device)
	if s.owned {
		s.surface.Destroy()
	}
	s.surface = nil
}

func (s *Surface) releaseView() {
	if s.view != nil {
		s.device.DestroyTextureView(s.view)
		s.view = nil
	}
}
