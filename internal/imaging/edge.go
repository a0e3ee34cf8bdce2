package imaging

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/blur"
)

// CannySigma is the Gaussian blur applied before gradients are taken.
const CannySigma = 1.4

// Canny performs Canny edge detection and returns a binary edge map where
// edges are 255 and everything else is 0.
//
// Parameters:
//   - img: Source image (color or grayscale).
//   - low: Gradients below this are never edges.
//   - high: Gradients at or above this are always edges. Gradients between
//     low and high are kept only when connected to a strong edge.
//
// Thresholds are on the L1 Sobel magnitude |Gx|+|Gy| of 0-255 intensities,
// so the usual (50, 150) pair behaves as it does in other Canny
// implementations.
//
// # Algorithm
//
//  1. Grayscale conversion and Gaussian blur (sigma CannySigma)
//  2. Sobel gradients, magnitude and direction
//  3. Non-maximum suppression along the gradient direction
//  4. Hysteresis: strong edges seed a flood fill through weak edges
func Canny(img image.Image, low, high float64) *image.Gray {
	gray := Grayscale(img)
	b := gray.Bounds()
	width, height := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, width, height))
	if width < 3 || height < 3 {
		return out
	}

	blurred := Grayscale(blur.Gaussian(gray, CannySigma))
	at := func(x, y int) float64 {
		x = clamp(x, 0, width-1)
		y = clamp(y, 0, height-1)
		return float64(blurred.Pix[y*blurred.Stride+x])
	}

	magnitude := make([]float64, width*height)
	direction := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			gx := -at(x-1, y-1) + at(x+1, y-1) -
				2*at(x-1, y) + 2*at(x+1, y) -
				at(x-1, y+1) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) +
				at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)
			magnitude[y*width+x] = math.Abs(gx) + math.Abs(gy)
			direction[y*width+x] = math.Atan2(gy, gx)
		}
	}

	// Non-maximum suppression. Border pixels are never edges.
	suppressed := make([]float64, width*height)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			i := y*width + x
			mag := magnitude[i]
			if mag < low {
				continue
			}
			dx1, dy1, dx2, dy2 := neighborsAlong(direction[i])
			n1 := magnitude[(y+dy1)*width+x+dx1]
			n2 := magnitude[(y+dy2)*width+x+dx2]
			if mag >= n1 && mag >= n2 {
				suppressed[i] = mag
			}
		}
	}

	// Hysteresis.
	stack := make([]int, 0, 1024)
	for i, v := range suppressed {
		if v >= high && out.Pix[i/width*out.Stride+i%width] == 0 {
			out.Pix[i/width*out.Stride+i%width] = 255
			stack = append(stack, i)
		}
		for len(stack) > 0 {
			j := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			jx, jy := j%width, j/width
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					nx, ny := jx+kx, jy+ky
					if nx < 0 || ny < 0 || nx >= width || ny >= height {
						continue
					}
					k := ny*width + nx
					p := ny*out.Stride + nx
					if out.Pix[p] == 0 && suppressed[k] >= low {
						out.Pix[p] = 255
						stack = append(stack, k)
					}
				}
			}
		}
	}
	return out
}

// neighborsAlong returns the two neighbor offsets to compare against for a
// gradient direction, quantized to 0, 45, 90 and 135 degrees. Angles are
// in image coordinates, y pointing down.
func neighborsAlong(angle float64) (dx1, dy1, dx2, dy2 int) {
	switch {
	case (angle >= -math.Pi/8 && angle < math.Pi/8) || angle >= 7*math.Pi/8 || angle < -7*math.Pi/8:
		return -1, 0, 1, 0
	case (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8):
		return -1, -1, 1, 1
	case (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8):
		return 0, -1, 0, 1
	default:
		return 1, -1, -1, 1
	}
}

// clamp constrains val to the range [lo, hi].
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
