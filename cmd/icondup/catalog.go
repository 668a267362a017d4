package main

import (
	"github.com/benoitkugler/icondup/batch"
	"github.com/benoitkugler/icondup/config"
	"github.com/benoitkugler/icondup/fyneicon"
	"github.com/benoitkugler/icondup/library"
	"github.com/benoitkugler/icondup/svgwidget"
	"go.uber.org/zap"
)

// catalog combines the icons read from disk with the fyne theme icons.
type catalog struct {
	lib   *library.Library
	theme []batch.Candidate
}

func (c catalog) Candidates() []batch.Candidate {
	var out []batch.Candidate
	if c.lib != nil {
		out = c.lib.Candidates()
	}
	return append(out, c.theme...)
}

func frameSource(cfg config.WidgetConfig) svgwidget.FrameSource {
	if cfg.FrameInterval > 0 {
		return svgwidget.Ticker{Interval: cfg.FrameInterval}
	}
	return svgwidget.Immediate{}
}

// newCatalog loads the library directories and, if requested, the theme icons.
func newCatalog(cfg *config.Config, themeIcons bool, logger *zap.Logger) (catalog, error) {
	var c catalog
	if len(cfg.Library.Directories) > 0 {
		c.lib = library.New(cfg.Library.Directories,
			library.WithExtensions(cfg.Library.Extensions...),
			library.WithRecursive(cfg.Library.RecursiveOrDefault()),
			library.WithLogger(logger),
		)
		if err := c.lib.Load(); err != nil {
			return catalog{}, err
		}
	}
	if themeIcons {
		fyneicon.NewApp()
		c.theme = fyneicon.Candidates(svgwidget.NewHost(frameSource(cfg.Widget)))
	}
	return c, nil
}
