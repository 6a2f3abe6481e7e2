// Package asset provides the read-only bundled data store the renderer loads
// its texture from.
//
// Paths may carry the "romfs:/" scheme used by console toolchains for the
// application's packaged file system; the scheme is stripped before lookup.
// Images are decoded by extension and always returned as *image.RGBA with a
// zero origin, ready for a tightly packed RGBA8 texture upload.
package asset

import (
	"embed"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// Scheme is the path prefix of the bundled data store.
const Scheme = "romfs:/"

//go:embed romfs
var romfs embed.FS

// Asset errors.
var (
	// ErrNotFound is returned when a path cannot be opened.
	ErrNotFound = errors.New("asset: not found")

	// ErrDecode is returned when a file is not a decodable image.
	ErrDecode = errors.New("asset: decode failed")
)

// Store is a read-only view of a file system holding application assets.
type Store struct {
	fsys   fs.FS
	maxDim int
}

// Option configures a Store.
type Option func(*Store)

// WithMaxDimension limits decoded images to n pixels on their longest side.
// Larger images are downscaled preserving aspect ratio. Zero disables the limit.
func WithMaxDimension(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxDim = n
		}
	}
}

// New returns a Store over fsys.
func New(fsys fs.FS, opts ...Option) *Store {
	s := &Store{fsys: fsys}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Default returns the Store over the assets embedded in the binary.
func Default(opts ...Option) *Store {
	sub, err := fs.Sub(romfs, "romfs")
	if err != nil {
		// fs.Sub only fails on an invalid directory name.
		panic(err)
	}
	return New(sub, opts...)
}

// Clean converts an asset path to an fs.FS name: the scheme and any leading
// slashes are removed and the result is cleaned.
func Clean(name string) string {
	name = strings.TrimPrefix(name, Scheme)
	name = strings.TrimLeft(name, "/")
	if name == "" {
		return "."
	}
	return path.Clean(name)
}

// Open opens the named asset.
func (s *Store) Open(name string) (fs.File, error) {
	f, err := s.fsys.Open(Clean(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, name, err)
	}
	return f, nil
}

// ReadFile returns the contents of the named asset.
func (s *Store) ReadFile(name string) ([]byte, error) {
	f, err := s.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, name, err)
	}
	return data, nil
}

// ImageConfig returns the dimensions and color model of the named image
// without decoding its pixels.
func (s *Store) ImageConfig(name string) (image.Config, error) {
	f, err := s.Open(name)
	if err != nil {
		return image.Config{}, err
	}
	defer f.Close()

	c, err := codecFor(name)
	if err != nil {
		return image.Config{}, err
	}
	cfg, err := c.config(f)
	if err != nil {
		return image.Config{}, fmt.Errorf("%w: %s: %w", ErrDecode, name, err)
	}
	return cfg, nil
}

// Image opens, decodes and converts the named image to RGBA.
func (s *Store) Image(name string) (*image.RGBA, error) {
	f, err := s.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := Decode(f, name)
	if err != nil {
		return nil, err
	}
	return s.fit(ToRGBA(img)), nil
}

// codec decodes one image format.
type codec struct {
	decode func(io.Reader) (image.Image, error)
	config func(io.Reader) (image.Config, error)
}

// codecs maps lower-case file extensions to decoders. Formats are never
// sniffed: tga registers an empty magic string with the image package,
// which would claim every file.
var codecs = map[string]codec{
	".tga":  {tga.Decode, tga.DecodeConfig},
	".png":  {png.Decode, png.DecodeConfig},
	".jpg":  {jpeg.Decode, jpeg.DecodeConfig},
	".jpeg": {jpeg.Decode, jpeg.DecodeConfig},
	".bmp":  {bmp.Decode, bmp.DecodeConfig},
	".tif":  {tiff.Decode, tiff.DecodeConfig},
	".tiff": {tiff.Decode, tiff.DecodeConfig},
	".webp": {webp.Decode, webp.DecodeConfig},
}

func codecFor(name string) (codec, error) {
	c, ok := codecs[strings.ToLower(path.Ext(name))]
	if !ok {
		return codec{}, fmt.Errorf("%w: %s: unsupported format", ErrDecode, name)
	}
	return c, nil
}

// Decode decodes an image, choosing the decoder from the extension of name.
func Decode(r io.Reader, name string) (image.Image, error) {
	c, err := codecFor(name)
	if err != nil {
		return nil, err
	}
	img, err := c.decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, name, err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: %s: empty image", ErrDecode, name)
	}
	return img, nil
}

// ToRGBA returns img as an *image.RGBA whose bounds start at the origin.
// The input is returned unchanged when it already has that form.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// fit downscales img so its longest side does not exceed the store limit.
func (s *Store) fit(img *image.RGBA) *image.RGBA {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if s.maxDim == 0 || (w <= s.maxDim && h <= s.maxDim) {
		return img
	}
	nw, nh := s.maxDim, s.maxDim
	if w > h {
		nh = max(1, h*s.maxDim/w)
	} else {
		nw = max(1, w*s.maxDim/h)
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
