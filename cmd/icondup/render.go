package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/benoitkugler/icondup/pixdiff"
	"github.com/benoitkugler/icondup/svgraster"
	"github.com/disintegration/imaging"
)

// gap is the space, in pixels, between two icons rendered side by side.
const gap = 8

func runRender() {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	output := fs.String("o", "out.png", "output image (format deduced from the extension)")
	scale := fs.Int("scale", 1, "integer zoom factor applied to the output")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: icondup render [flags] <a.svg> [b.svg]\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[2:])
	if fs.NArg() < 1 || fs.NArg() > 2 {
		fs.Usage()
		os.Exit(1)
	}

	rasterizer := svgraster.New()
	var images []*image.RGBA
	for _, path := range fs.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			fatalf("Failed to read %s: %v", path, err)
		}
		img, err := rasterizer.RasterizeMarkup(context.Background(), string(data))
		if err != nil {
			fatalf("Failed to render %s: %v", path, err)
		}
		images = append(images, img)
	}

	if err := imaging.Save(compose(images, *scale), *output); err != nil {
		fatalf("Failed to save %s: %v", *output, err)
	}
	if len(images) == 2 {
		fmt.Printf("similarity: %.1f%%\n", pixdiff.CompareImages(images[0], images[1]))
	}
	fmt.Printf("image saved in %s\n", *output)
}

// compose lays out the images horizontally on a white background, zoomed by `scale`.
func compose(images []*image.RGBA, scale int) image.Image {
	scale = max(scale, 1)
	side := svgraster.Size * scale
	width := len(images)*side + (len(images)-1)*gap
	out := imaging.New(width, side, color.White)
	for i, img := range images {
		var src image.Image = img
		if scale > 1 {
			src = imaging.Resize(img, side, side, imaging.NearestNeighbor)
		}
		out = imaging.Paste(out, src, image.Pt(i*(side+gap), 0))
	}
	return out
}
