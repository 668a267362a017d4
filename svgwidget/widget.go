package svgwidget

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/benoitkugler/icondup/svgnorm"
	"github.com/benoitkugler/icondup/svgraster"
)

// ErrRenderFailure is returned when a widget produces no
// usable vector output once settled.
var ErrRenderFailure = errors.New("widget produced no vector output")

// Render mounts `w` on an offscreen surface of `host`, waits for it to settle
// and returns the markup it published.
// The surface is always released before returning.
func Render(ctx context.Context, host *Host, w Widget) (string, error) {
	var markup string
	err := host.WithSurface(func(s *Surface) error {
		if err := s.Mount(w); err != nil {
			return fmt.Errorf("mounting widget: %w", err)
		}
		if err := s.Settle(ctx); err != nil {
			return err
		}
		markup = s.Container().Vector()
		return nil
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(markup) == "" {
		return "", ErrRenderFailure
	}
	return markup, nil
}

// Icon is a widget rendered offscreen by Host.
type Icon struct {
	Widget Widget
	Host   *Host
}

// Rasterize renders the widget, normalizes its output (which also rescales
// its declared dimensions) and rasterizes it with `r`.
func (ic Icon) Rasterize(ctx context.Context, r *svgraster.Rasterizer) (*image.RGBA, error) {
	if ic.Widget == nil || ic.Host == nil {
		return nil, ErrRenderFailure
	}
	markup, err := Render(ctx, ic.Host, ic.Widget)
	if err != nil {
		return nil, err
	}
	icon, err := svgnorm.Normalize(markup)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenderFailure, err)
	}
	return r.Rasterize(ctx, icon)
}

// Static is a widget displaying fixed SVG markup.
type Static string

// Mount publishes the markup on every paint.
func (st Static) Mount(c *Container) (func(), error) {
	remove := c.OnPaint(func() { c.SetVector(string(st)) })
	return func() {
		remove()
		c.SetVector("")
	}, nil
}
