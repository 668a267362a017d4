// Scores the similarity of two RGBA pixel buffers
// with a per-pixel L1 distance.
package pixdiff

import "image"

// maxPixelDistance is the largest L1 distance between two RGBA pixels.
const maxPixelDistance = 4 * 255

// Compare returns the similarity of `a` and `b`, as a percentage in [0, 100].
// Both slices hold packed RGBA pixels, 4 bytes per pixel.
//
// Pixels fully transparent in both buffers are ignored; a pixel fully
// transparent in only one buffer counts as the maximum distance.
// Compare returns 0 if the buffers are empty, have different lengths,
// or if every pixel is transparent in both.
func Compare(a, b []uint8) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var (
		totalDiff int64
		counted   int64
	)
	// a trailing partial pixel is ignored
	for i := 0; i+3 < len(a); i += 4 {
		alphaA, alphaB := a[i+3], b[i+3]
		switch {
		case alphaA == 0 && alphaB == 0:
			continue
		case alphaA == 0 || alphaB == 0:
			totalDiff += maxPixelDistance
		default:
			totalDiff += absDiff(a[i], b[i]) + absDiff(a[i+1], b[i+1]) +
				absDiff(a[i+2], b[i+2]) + absDiff(alphaA, alphaB)
		}
		counted++
	}
	if counted == 0 {
		return 0
	}
	similarity := 100 - float64(totalDiff)/float64(counted*maxPixelDistance)*100
	if similarity < 0 {
		return 0
	}
	return similarity
}

// CompareImages is the same as Compare for images.
// Images with different sizes score 0.
func CompareImages(a, b *image.RGBA) float64 {
	if a == nil || b == nil || a.Rect.Size() != b.Rect.Size() {
		return 0
	}
	return Compare(packed(a), packed(b))
}

func absDiff(x, y uint8) int64 {
	if x > y {
		return int64(x - y)
	}
	return int64(y - x)
}

// packed returns the pixels of img without row padding.
func packed(img *image.RGBA) []uint8 {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	rowLen := 4 * w
	if img.Stride == rowLen {
		return img.Pix[:rowLen*h]
	}
	out := make([]uint8, 0, rowLen*h)
	for y := 0; y < h; y++ {
		start := y * img.Stride
		out = append(out, img.Pix[start:start+rowLen]...)
	}
	return out
}
