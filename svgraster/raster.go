// Implements a raster backend to render normalized SVG icons
// at the canonical size, by wrapping oksvg and rasterx.
package svgraster

import (
	"context"
	"fmt"
	"image"
	"io"
	"math"

	"github.com/benoitkugler/icondup/svgnorm"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
)

// Size is the width and height, in pixels, of the rasterized images.
const Size = svgnorm.CanonicalSize

// readIcon parses an SVG stream; tests may replace it.
var readIcon = func(src io.Reader) (*oksvg.SvgIcon, error) {
	return oksvg.ReadIconStream(src, oksvg.IgnoreErrorMode)
}

// DecodeError is returned when the markup of an icon
// can't be turned into an image.
type DecodeError struct {
	Handle string // transient handle of the markup, if any
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Handle == "" {
		return fmt.Sprintf("can't decode svg: %s", e.Err)
	}
	return fmt.Sprintf("can't decode svg (%s): %s", e.Handle, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Rasterizer owns an offscreen surface of Size x Size pixels.
// It is not safe for concurrent use.
type Rasterizer struct {
	img    *image.RGBA
	dasher *rasterx.Dasher // draws on img, shared by every call

	blobs  blobStore
	logger *zap.Logger
}

// Option configures a Rasterizer.
type Option func(*Rasterizer)

// WithLogger sets the logger used to trace decoding.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Rasterizer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New returns a rasterizer with a fresh surface.
func New(opts ...Option) *Rasterizer {
	img := image.NewRGBA(image.Rect(0, 0, Size, Size))
	scanner := rasterx.NewScannerGV(Size, Size, img, img.Bounds())
	r := &Rasterizer{
		img:    img,
		dasher: rasterx.NewDasher(Size, Size, scanner),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Outstanding returns the number of markup handles not yet revoked.
func (r *Rasterizer) Outstanding() int { return r.blobs.len() }

type decoded struct {
	icon *oksvg.SvgIcon
	err  error
}

// decode parses the markup behind `handle` in the background.
// The returned channel is buffered so that an abandoned decoding
// never blocks.
func (r *Rasterizer) decode(handle string) <-chan decoded {
	out := make(chan decoded, 1)
	src, err := r.blobs.open(handle)
	if err != nil {
		out <- decoded{err: err}
		return out
	}
	go func() {
		defer func() {
			if p := recover(); p != nil {
				out <- decoded{err: fmt.Errorf("parser panic: %v", p)}
			}
		}()
		icon, err := readIcon(src)
		out <- decoded{icon: icon, err: err}
	}()
	return out
}

// Rasterize draws `icon` on an opaque white background, fitting its view box
// into the surface, and returns a copy of the pixels.
// It blocks until the markup is decoded or `ctx` is done.
func (r *Rasterizer) Rasterize(ctx context.Context, icon svgnorm.Icon) (*image.RGBA, error) {
	if icon.IsZero() {
		return nil, &DecodeError{Err: svgnorm.ErrInvalidMarkup}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	handle := r.blobs.create([]byte(icon.Markup()))
	defer r.blobs.revoke(handle)

	var res decoded
	select {
	case res = <-r.decode(handle):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.err != nil {
		r.logger.Debug("decoding failed", zap.String("handle", handle), zap.Error(res.err))
		return nil, &DecodeError{Handle: handle, Err: res.err}
	}

	fitViewBox(res.icon)
	draw.Draw(r.img, r.img.Bounds(), image.White, image.Point{}, draw.Src)
	res.icon.Draw(r.dasher, 1)

	out := image.NewRGBA(r.img.Bounds())
	copy(out.Pix, r.img.Pix)
	return out, nil
}

// RasterizeMarkup normalizes `markup` and rasterizes it.
func (r *Rasterizer) RasterizeMarkup(ctx context.Context, markup string) (*image.RGBA, error) {
	icon, err := svgnorm.Normalize(markup)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return r.Rasterize(ctx, icon)
}

// fitViewBox sets the icon transform so that its view box is
// uniformly scaled and centered into the surface.
// A missing or unusable view box (wrong arity, empty or negative extent)
// is ignored: the canonical size is used as user space.
func fitViewBox(icon *oksvg.SvgIcon) {
	vb := icon.ViewBox
	if !(vb.W > 0 && vb.H > 0) {
		vb.X, vb.Y, vb.W, vb.H = 0, 0, Size, Size
	}
	scale := math.Min(Size/vb.W, Size/vb.H)
	tx, ty := (Size-vb.W*scale)/2, (Size-vb.H*scale)/2
	icon.Transform = rasterx.Identity.Translate(tx, ty).Scale(scale, scale).Translate(-vb.X, -vb.Y)
}

// Markup is raw, untrusted SVG text.
type Markup string

// Rasterize normalizes the markup then rasterizes it with `r`.
// Normalization failures are reported as *DecodeError.
func (m Markup) Rasterize(ctx context.Context, r *Rasterizer) (*image.RGBA, error) {
	return r.RasterizeMarkup(ctx, string(m))
}
