package display

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// copyPitchAlignment is the required BytesPerRow alignment for
// texture-to-buffer copies.
const copyPitchAlignment = 256

// Offscreen is a Target backed by an RGBA8 texture.
type Offscreen struct {
	device hal.Device
	queue  hal.Queue

	name          string
	width, height uint32

	texture  hal.Texture
	view     hal.TextureView
	acquired bool
	frames   uint64
}

// NewOffscreen creates an offscreen target of the given size.
func NewOffscreen(device hal.Device, queue hal.Queue, name string, width, height uint32) (*Offscreen, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: %s %dx%d", ErrInvalidSize, name, width, height)
	}
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         name + "_color",
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("display %s: create texture: %w", name, err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         name + "_color_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("display %s: create texture view: %w", name, err)
	}
	return &Offscreen{
		device:  device,
		queue:   queue,
		name:    name,
		width:   width,
		height:  height,
		texture: tex,
		view:    view,
	}, nil
}

// Name returns the output name.
func (o *Offscreen) Name() string { return o.name }

// Size returns the output size in pixels.
func (o *Offscreen) Size() (width, height uint32) { return o.width, o.height }

// Format returns RGBA8Unorm.
func (o *Offscreen) Format() gputypes.TextureFormat { return gputypes.TextureFormatRGBA8Unorm }

// Texture returns the backing texture.
func (o *Offscreen) Texture() hal.Texture { return o.texture }

// Frames returns the number of presented frames.
func (o *Offscreen) Frames() uint64 { return o.frames }

// Acquire returns the persistent color view.
func (o *Offscreen) Acquire() (hal.TextureView, error) {
	if o.texture == nil {
		return nil, fmt.Errorf("%w: %s", ErrDestroyed, o.name)
	}
	o.acquired = true
	return o.view, nil
}

// Present completes the frame. The pixels stay in the texture.
func (o *Offscreen) Present(hal.Queue) error {
	if !o.acquired {
		return fmt.Errorf("%w: %s", ErrNotAcquired, o.name)
	}
	o.acquired = false
	o.frames++
	return nil
}

// Discard drops the acquired frame.
func (o *Offscreen) Discard() { o.acquired = false }

// Destroy releases the texture. Safe to call multiple times.
func (o *Offscreen) Destroy() {
	if o.view != nil {
		o.device.DestroyTextureView(o.view)
		o.view = nil
	}
	if o.texture != nil {
		o.device.DestroyTexture(o.texture)
		o.texture = nil
	}
	o.acquired = false
}

// Readback copies the current texture contents to a new RGBA image.
// It blocks until the GPU has finished all submitted work.
func (o *Offscreen) Readback() (*image.RGBA, error) {
	if o.texture == nil {
		return nil, fmt.Errorf("%w: %s", ErrDestroyed, o.name)
	}
	w, h := o.width, o.height
	bytesPerRow := w * 4
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)

	staging, err := o.device.CreateBuffer(&hal.BufferDescriptor{
		Label: o.name + "_readback",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("display %s: create staging buffer: %w", o.name, err)
	}
	defer o.device.DestroyBuffer(staging)

	encoder, err := o.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: o.name + "_readback"})
	if err != nil {
		return nil, fmt.Errorf("display %s: create encoder: %w", o.name, err)
	}
	if err := encoder.BeginEncoding(o.name + "_readback"); err != nil {
		return nil, fmt.Errorf("display %s: begin encoding: %w", o.name, err)
	}

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: o.texture,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(o.texture, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: o.texture, MipLevel: 0, Aspect: gputypes.TextureAspectAll},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: o.texture,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("display %s: end encoding: %w", o.name, err)
	}
	defer o.device.FreeCommandBuffer(cmdBuf)

	if _, err := o.queue.Submit([]hal.CommandBuffer{cmdBuf}); err != nil {
		return nil, fmt.Errorf("display %s: submit: %w", o.name, err)
	}
	if err := o.device.WaitIdle(); err != nil {
		return nil, fmt.Errorf("display %s: wait for GPU: %w", o.name, err)
	}

	mapping, err := o.device.MapBuffer(staging, 0, stagingSize)
	if err != nil {
		return nil, fmt.Errorf("display %s: map staging buffer: %w", o.name, err)
	}
	mapped := unsafe.Slice((*byte)(mapping.Ptr), stagingSize)

	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	for row := uint32(0); row < h; row++ {
		src := mapped[uint64(row)*uint64(alignedBytesPerRow):]
		copy(img.Pix[int(row)*img.Stride:], src[:bytesPerRow])
	}
	if err := o.device.UnmapBuffer(staging); err != nil {
		return nil, fmt.Errorf("display %s: unmap staging buffer: %w", o.name, err)
	}
	return img, nil
}
