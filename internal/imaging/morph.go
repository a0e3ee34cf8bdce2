package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
)

// Dilate grows bright regions of a binary or grayscale image by radius
// pixels, iterations times.
func Dilate(g *image.Gray, radius float64, iterations int) *image.Gray {
	out := g
	for range iterations {
		out = Grayscale(effect.Dilate(out, radius))
	}
	return out
}

// Erode shrinks bright regions by radius pixels, iterations times.
func Erode(g *image.Gray, radius float64, iterations int) *image.Gray {
	out := g
	for range iterations {
		out = Grayscale(effect.Erode(out, radius))
	}
	return out
}

// CloseEdges bridges small gaps in a Canny edge map so the document border
// forms one closed contour: two dilations followed by one erosion.
func CloseEdges(edges *image.Gray) *image.Gray {
	return Erode(Dilate(edges, 2, 2), 2, 1)
}
