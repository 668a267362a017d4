// Mounts fyne widgets on an offscreen test canvas
// and exposes the fyne theme icons as comparison candidates.
package fyneicon

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/benoitkugler/icondup/svgnorm"
	"github.com/benoitkugler/icondup/svgwidget"
)

// inkTheme draws the themed icons in black.
type inkTheme struct {
	fyne.Theme
}

func (t inkTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	if name == theme.ColorNameForeground {
		return color.Black
	}
	return t.Theme.Color(name, variant)
}

// NewApp starts a headless fyne application, required before
// mounting widgets or reading themed resources.
func NewApp() fyne.App {
	app := test.NewApp()
	app.Settings().SetTheme(inkTheme{Theme: theme.DefaultTheme()})
	return app
}

// Widget adapts a fyne object so that it may be rendered by svgwidget.
type Widget struct {
	Object fyne.CanvasObject
}

// Mount shows the object in an offscreen window sized like `c`, and publishes
// the SVG source of the first vector image found in its tree on every paint.
func (w Widget) Mount(c *svgwidget.Container) (func(), error) {
	win := test.NewWindow(w.Object)
	width, height := c.Size()
	win.Resize(fyne.NewSize(float32(width), float32(height)))

	remove := c.OnPaint(func() {
		if markup, ok := Extract(w.Object); ok {
			c.SetVector(markup)
		}
	})
	return func() {
		remove()
		win.Close()
	}, nil
}

// Extract walks the object tree and returns the markup of the first
// SVG resource found.
func Extract(obj fyne.CanvasObject) (string, bool) {
	switch o := obj.(type) {
	case nil:
		return "", false
	case *widget.Icon:
		return fromResource(o.Resource)
	case *canvas.Image:
		return fromResource(o.Resource)
	case *fyne.Container:
		for _, child := range o.Objects {
			if markup, ok := Extract(child); ok {
				return markup, true
			}
		}
	case fyne.Widget:
		renderer := o.CreateRenderer()
		defer renderer.Destroy()
		for _, child := range renderer.Objects() {
			if markup, ok := Extract(child); ok {
				return markup, true
			}
		}
	}
	return "", false
}

func fromResource(res fyne.Resource) (string, bool) {
	if res == nil {
		return "", false
	}
	data := res.Content()
	if !svgnorm.HasRoot(data) {
		return "", false
	}
	return string(data), true
}
