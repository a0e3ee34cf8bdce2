package imaging

import (
	"errors"
	"image"

	"github.com/disintegration/imaging"
)

// ErrDegenerateCrop is returned when a crop rectangle has no area left
// after clamping to the image bounds.
var ErrDegenerateCrop = errors.New("crop region is empty after clamping")

// Crop extracts r from img, clamping r to the image bounds first.
//
// Region variants may reach past the canvas edge; only the overlapping part
// is returned. The result always has its origin at (0, 0). Grayscale input
// stays grayscale.
func Crop(img image.Image, r image.Rectangle) (image.Image, error) {
	clipped := r.Intersect(img.Bounds())
	if clipped.Empty() {
		return nil, ErrDegenerateCrop
	}

	if g, ok := img.(*image.Gray); ok {
		out := image.NewGray(image.Rect(0, 0, clipped.Dx(), clipped.Dy()))
		for y := 0; y < clipped.Dy(); y++ {
			src := g.PixOffset(clipped.Min.X, clipped.Min.Y+y)
			copy(out.Pix[y*out.Stride:y*out.Stride+clipped.Dx()], g.Pix[src:src+clipped.Dx()])
		}
		return out, nil
	}
	return imaging.Crop(img, clipped), nil
}

// Scale resizes img by factor. Factors of 1 or less than or equal to 0
// return img unchanged.
func Scale(img image.Image, factor float64) image.Image {
	if factor == 1 || factor <= 0 {
		return img
	}
	b := img.Bounds()
	w := max(1, int(float64(b.Dx())*factor))
	h := max(1, int(float64(b.Dy())*factor))
	return imaging.Resize(img, w, h, imaging.Lanczos)
}
