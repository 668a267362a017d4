package svgraster

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/benoitkugler/icondup/svgnorm"
	"github.com/srwiley/oksvg"
)

const (
	blackSquare = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24"><rect width="24" height="24" fill="black"/></svg>`
	emptyIcon   = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24"></svg>`
)

func toPngBytes(m image.Image) ([]byte, error) {
	var b bytes.Buffer
	err := png.Encode(&b, m)
	if err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func renderIcon(t *testing.T, r *Rasterizer, markup string) *image.RGBA {
	t.Helper()
	img, err := r.RasterizeMarkup(context.Background(), markup)
	if err != nil {
		t.Fatalf("can't raster image: %s", err)
	}
	if img.Bounds() != image.Rect(0, 0, Size, Size) {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
	return img
}

func isBlack(img *image.RGBA, x, y int) bool {
	c := img.RGBAAt(x, y)
	return c.R <= 2 && c.G <= 2 && c.B <= 2 && c.A == 255
}

func isWhite(img *image.RGBA, x, y int) bool {
	c := img.RGBAAt(x, y)
	return c.R == 255 && c.G == 255 && c.B == 255 && c.A == 255
}

func TestBlackSquare(t *testing.T) {
	r := New()
	img := renderIcon(t, r, blackSquare)
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			if !isBlack(img, x, y) {
				t.Fatalf("pixel (%d, %d) is not black: %v", x, y, img.RGBAAt(x, y))
			}
		}
	}
	if r.Outstanding() != 0 {
		t.Errorf("expected no outstanding handle, got %d", r.Outstanding())
	}
}

func TestEmptyIsWhite(t *testing.T) {
	r := New()
	// draw something first: the surface must be cleared between calls
	renderIcon(t, r, blackSquare)
	img := renderIcon(t, r, emptyIcon)
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			if !isWhite(img, x, y) {
				t.Fatalf("pixel (%d, %d) is not white: %v", x, y, img.RGBAAt(x, y))
			}
		}
	}
}

func TestCurrentColor(t *testing.T) {
	img := renderIcon(t, New(), `<svg viewBox="0 0 16 16" fill="currentColor"><rect x="4" y="4" width="8" height="8"/></svg>`)
	if !isBlack(img, 64, 64) {
		t.Errorf("expected black center, got %v", img.RGBAAt(64, 64))
	}
	if !isWhite(img, 5, 5) {
		t.Errorf("expected white corner, got %v", img.RGBAAt(5, 5))
	}
}

func TestFitViewBox(t *testing.T) {
	// a 10x20 view box is scaled by 6.4 and centered horizontally
	img := renderIcon(t, New(), `<svg viewBox="0 0 10 20" width="10" height="20"><rect width="10" height="20"/></svg>`)
	for _, test := range []struct {
		x, y  int
		black bool
	}{
		{10, 64, false},
		{30, 64, false},
		{34, 64, true},
		{64, 2, true},
		{64, 125, true},
		{93, 64, true},
		{98, 64, false},
		{120, 64, false},
	} {
		if got := isBlack(img, test.x, test.y); got != test.black {
			t.Errorf("pixel (%d, %d): expected black %v, got %v", test.x, test.y, test.black, img.RGBAAt(test.x, test.y))
		}
	}

	// view box origin is honored
	img = renderIcon(t, New(), `<svg viewBox="100 100 24 24"><rect x="100" y="100" width="12" height="24"/></svg>`)
	if !isBlack(img, 20, 64) || !isWhite(img, 100, 64) {
		t.Error("view box origin not applied")
	}
}

func TestUnusableViewBox(t *testing.T) {
	// like a browser, an unusable view box is ignored
	const shape = `<rect width="64" height="64"/>`
	r := New()
	want := renderIcon(t, r, `<svg>`+shape+`</svg>`)
	if !isBlack(want, 10, 10) || !isWhite(want, 100, 100) {
		t.Fatal("unexpected rendering without view box")
	}
	for _, viewBox := range []string{"0 0 24", "0 0 1", "0 0 -24 24", "a b c d"} {
		got := renderIcon(t, r, `<svg viewBox="`+viewBox+`">`+shape+`</svg>`)
		if !bytes.Equal(got.Pix, want.Pix) {
			t.Errorf("view box %q: rendering differs from the missing view box one", viewBox)
		}
	}
}

func TestDecodePanic(t *testing.T) {
	defer func(f func(io.Reader) (*oksvg.SvgIcon, error)) { readIcon = f }(readIcon)
	readIcon = func(io.Reader) (*oksvg.SvgIcon, error) { panic("boom") }

	r := New()
	_, err := Markup(blackSquare).Rasterize(context.Background(), r)
	var de *DecodeError
	if !errors.As(err, &de) || !strings.Contains(err.Error(), "boom") {
		t.Errorf("expected decode error from panic, got %v", err)
	}
	if r.Outstanding() != 0 {
		t.Error("handle not revoked")
	}
}

func TestDeterministic(t *testing.T) {
	markup := `<svg viewBox="0 0 24 24"><circle cx="12" cy="12" r="9" stroke="red" stroke-width="2" fill="none"/><path d="M4 4L20 20"/></svg>`
	r := New()
	b1, err := toPngBytes(renderIcon(t, r, markup))
	if err != nil {
		t.Fatal(err)
	}
	b2, err := toPngBytes(renderIcon(t, New(), markup))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b1, b2) {
		t.Error("rendering is not deterministic")
	}

	if testing.Verbose() {
		out := filepath.Join(t.TempDir(), "circle.png")
		if err := os.WriteFile(out, b1, 0o644); err != nil {
			t.Fatal(err)
		}
		t.Logf("image saved in %s", out)
	}
}

func TestCopyIsIndependent(t *testing.T) {
	r := New()
	img1 := renderIcon(t, r, blackSquare)
	img1.Pix[0] = 200
	img2 := renderIcon(t, r, blackSquare)
	if img2.Pix[0] == 200 {
		t.Error("returned image shares the surface")
	}
}

func TestDecodeError(t *testing.T) {
	r := New()
	for _, markup := range []string{
		"not an svg",
		"<svg><g></svg>",
	} {
		_, err := Markup(markup).Rasterize(context.Background(), r)
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Errorf("markup %q: expected decode error, got %v", markup, err)
		}
		if r.Outstanding() != 0 {
			t.Errorf("markup %q: handle not revoked", markup)
		}
	}

	_, err := Markup("<html/>").Rasterize(context.Background(), r)
	if !errors.Is(err, svgnorm.ErrInvalidMarkup) {
		t.Errorf("expected wrapped invalid markup, got %v", err)
	}

	_, err = r.Rasterize(context.Background(), svgnorm.Icon{})
	if !errors.As(err, new(*DecodeError)) {
		t.Errorf("expected decode error for zero icon, got %v", err)
	}
}

func TestCanceled(t *testing.T) {
	r := New()
	icon, err := svgnorm.Normalize(blackSquare)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Rasterize(ctx, icon)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if r.Outstanding() != 0 {
		t.Error("handle not revoked")
	}
}

func TestBlobStore(t *testing.T) {
	var bs blobStore
	h1, h2 := bs.create([]byte("a")), bs.create([]byte("b"))
	if h1 == h2 {
		t.Fatal("handles must be unique")
	}
	src, err := bs.open(h1)
	if err != nil {
		t.Fatal(err)
	}
	bs.revoke(h1)
	if _, err := bs.open(h1); err == nil {
		t.Error("expected error on revoked handle")
	}
	// already opened readers stay valid
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(src); err != nil || buf.String() != "a" {
		t.Errorf("unexpected content %q (%v)", buf.String(), err)
	}
	if bs.len() != 1 {
		t.Errorf("expected 1 blob, got %d", bs.len())
	}
}
