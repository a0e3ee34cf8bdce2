package imaging

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// Grayscale converts img to 8-bit luminance with its origin at (0, 0).
// A *image.Gray already at the origin is returned as is.
//
// bild returns luminance replicated across RGBA channels; the red channel
// is copied out into a single-channel image.
func Grayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Rect.Min == (image.Point{}) {
		return g
	}
	rgba := effect.Grayscale(img)
	b := rgba.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := rgba.Pix[rgba.PixOffset(b.Min.X, b.Min.Y+y):]
		dst := out.Pix[y*out.Stride : y*out.Stride+b.Dx()]
		for x := range dst {
			dst[x] = src[x*4]
		}
	}
	return out
}

// Lightness returns the CIE L* channel of img scaled to 0-255.
//
// Pastel background colors that luminance grayscale maps close to the ink
// gray stay separated in L*.
func Lightness(img image.Image) *image.Gray {
	src := imaging.Clone(img)
	b := src.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			i := src.PixOffset(x, y)
			c := colorful.Color{
				R: float64(src.Pix[i]) / 255,
				G: float64(src.Pix[i+1]) / 255,
				B: float64(src.Pix[i+2]) / 255,
			}
			l, _, _ := c.Lab()
			out.Pix[y*out.Stride+x] = uint8(math.Round(math.Max(0, math.Min(1, l)) * 255))
		}
	}
	return out
}
