package texquad

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/texquad/asset"
)

// quadTexture is the sampled texture and its view.
type quadTexture struct {
	texture       hal.Texture
	view          hal.TextureView
	width, height uint32
}

// loadTexture decodes the image at path and uploads it as RGBA8.
// Read and decode failures wrap ErrTextureLoad.
func loadTexture(device hal.Device, queue hal.Queue, store *asset.Store, path string) (*quadTexture, error) {
	img, err := store.Image(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTextureLoad, err)
	}
	w, h := uint32(img.Rect.Dx()), uint32(img.Rect.Dy())
	size := hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1}

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "quad_texture",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture: %w", err)
	}

	err = queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: 0, Aspect: gputypes.TextureAspectAll},
		img.Pix,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: uint32(img.Stride), RowsPerImage: h},
		&size,
	)
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("upload texture: %w", err)
	}

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "quad_texture_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("create texture view: %w", err)
	}

	Logger().Debug("texquad: texture loaded", "path", path, "width", w, "height", h)
	return &quadTexture{texture: tex, view: view, width: w, height: h}, nil
}

// destroy releases the view and texture.
func (t *quadTexture) destroy(device hal.Device) {
	if t.view != nil {
		device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.texture != nil {
		device.DestroyTexture(t.texture)
		t.texture = nil
	}
}
