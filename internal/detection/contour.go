package detection

import (
	"image"
)

// MinContourPixels is the smallest connected component FindContours keeps.
const MinContourPixels = 10

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// FindContours finds connected components of non-zero pixels in a binary
// edge map.
//
// Connectivity is 8-connected (includes diagonals). Components with fewer
// than minPixels pixels are discarded as noise. Points are relative to the
// image origin.
func FindContours(edges *image.Gray, minPixels int) [][]Point {
	b := edges.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	on := func(x, y int) bool {
		return edges.Pix[edges.PixOffset(b.Min.X+x, b.Min.Y+y)] != 0
	}
	visited := make([]bool, width*height)

	var contours [][]Point
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if visited[y*width+x] || !on(x, y) {
				continue
			}
			contour := floodFill(on, visited, x, y, width, height)
			if len(contour) >= minPixels {
				contours = append(contours, contour)
			}
		}
	}
	return contours
}

// floodFill collects the component containing (startX, startY).
//
// Uses a stack-based approach (not recursive) to avoid stack overflow
// on large contours. Marks visited pixels as it goes.
func floodFill(on func(x, y int) bool, visited []bool, startX, startY, width, height int) []Point {
	var contour []Point
	stack := []Point{{X: startX, Y: startY}}
	visited[startY*width+startX] = true

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		contour = append(contour, p)

		// 8-connected neighbors
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := p.X+dx, p.Y+dy
				if nx < 0 || nx >= width || ny < 0 || ny >= height {
					continue
				}
				if visited[ny*width+nx] || !on(nx, ny) {
					continue
				}
				visited[ny*width+nx] = true
				stack = append(stack, Point{X: nx, Y: ny})
			}
		}
	}
	return contour
}
