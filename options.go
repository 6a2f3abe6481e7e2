package texquad

import (
	"encoding/binary"
	"io/fs"
	"log/slog"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/texquad/asset"
	"github.com/gogpu/texquad/display"
	"github.com/gogpu/texquad/input"
)

// DefaultTexturePath is the texture loaded at construction.
const DefaultTexturePath = "romfs:/texture.tga"

// Clear colors of the two outputs.
var (
	TVClearColor  = gputypes.Color{R: 0, G: 0, B: 1, A: 1}
	DRCClearColor = gputypes.Color{R: 1, G: 0, B: 1, A: 1}
)

// Option configures a Renderer during creation.
//
// Example:
//
//	// Offscreen outputs, bundled texture, no input
//	r, err := texquad.New(device, queue)
//
//	// Window outputs driven by a keyboard-emulated pad
//	r, err := texquad.New(device, queue,
//	    texquad.WithOutputs(display.Outputs{TV: tv, DRC: drc}),
//	    texquad.WithInput(keyboard))
type Option func(*options)

// options holds optional configuration for Renderer creation.
type options struct {
	assets      *asset.Store
	assetFS     fs.FS
	maxTexture  int
	texturePath string
	input       input.Source
	outputs     *display.Outputs
	now         func() time.Time
	byteOrder   binary.ByteOrder
	projection  Projection
	tvClear     gputypes.Color
	drcClear    gputypes.Color
	vertexWGSL  string
	pixelWGSL   string
}

// defaultOptions returns the default renderer options.
func defaultOptions() options {
	return options{
		maxTexture:  int(gputypes.DefaultLimits().MaxTextureDimension2D),
		texturePath: DefaultTexturePath,
		input:       input.Neutral,
		now:         time.Now,
		byteOrder:   binary.LittleEndian,
		projection:  DefaultProjection,
		tvClear:     TVClearColor,
		drcClear:    DRCClearColor,
		vertexWGSL:  quadVertexShaderSource,
		pixelWGSL:   quadPixelShaderSource,
	}
}

// WithAssets sets the store the texture is loaded from. The store's own
// size limit applies; WithMaxTextureDimension does not.
// Default: the assets embedded in the binary.
func WithAssets(s *asset.Store) Option {
	return func(o *options) {
		o.assets = s
		o.assetFS = nil
	}
}

// WithAssetFS sets the texture store to a plain file system.
func WithAssetFS(fsys fs.FS) Option {
	return func(o *options) {
		o.assets = nil
		o.assetFS = fsys
	}
}

// WithMaxTextureDimension downscales textures whose longest side exceeds
// n pixels. It applies to the default store and to WithAssetFS.
// Default: the 2D texture limit of gputypes.DefaultLimits.
func WithMaxTextureDimension(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxTexture = n
		}
	}
}

// store returns the asset store the texture is loaded from.
func (o *options) store() *asset.Store {
	switch {
	case o.assets != nil:
		return o.assets
	case o.assetFS != nil:
		return asset.New(o.assetFS, asset.WithMaxDimension(o.maxTexture))
	default:
		return asset.Default(asset.WithMaxDimension(o.maxTexture))
	}
}

// WithTexturePath sets the texture path within the asset store.
func WithTexturePath(path string) Option {
	return func(o *options) {
		o.texturePath = path
	}
}

// WithInput sets the gamepad source polled every frame.
// Default: sticks always centered.
func WithInput(src input.Source) Option {
	return func(o *options) {
		if src != nil {
			o.input = src
		}
	}
}

// WithOutputs sets the TV and DRC targets. The caller keeps ownership.
// Default: offscreen targets at native resolution, owned by the renderer.
func WithOutputs(outs display.Outputs) Option {
	return func(o *options) {
		o.outputs = &outs
	}
}

// WithClock sets the time source for the shader's elapsed time.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithUniformByteOrder sets the byte order of the time uniform.
// Default: little-endian, the byte order of every HAL backend.
func WithUniformByteOrder(order binary.ByteOrder) Option {
	return func(o *options) {
		if order != nil {
			o.byteOrder = order
		}
	}
}

// WithProjection overrides the perspective projection.
func WithProjection(p Projection) Option {
	return func(o *options) {
		o.projection = p
	}
}

// WithClearColors overrides the TV and DRC clear colors.
func WithClearColors(tv, drc gputypes.Color) Option {
	return func(o *options) {
		o.tvClear = tv
		o.drcClear = drc
	}
}

// WithShaderSource replaces the embedded WGSL of either stage.
// Empty strings keep the embedded source.
func WithShaderSource(vertex, pixel string) Option {
	return func(o *options) {
		if vertex != "" {
			o.vertexWGSL = vertex
		}
		if pixel != "" {
			o.pixelWGSL = pixel
		}
	}
}

// WithLogger sets the package logger. Equivalent to calling SetLogger.
func WithLogger(l *slog.Logger) Option {
	return func(*options) {
		SetLogger(l)
	}
}
