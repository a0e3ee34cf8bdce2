package imaging

import (
	"image"
	"math"
)

// CLAHE parameters used by the enhanced preprocessing variant.
const (
	CLAHEClipLimit = 2.0
	CLAHETiles     = 8
)

// CLAHE applies contrast-limited adaptive histogram equalization.
//
// The image is split into tiles x tiles regions. Each region gets its own
// equalization table with histogram bins clipped at clipLimit times the
// mean bin height and the excess spread evenly over all bins. Each output
// pixel is the bilinear blend of the four nearest tables, which removes
// tile seams.
func CLAHE(g *image.Gray, clipLimit float64, tiles int) *image.Gray {
	b := g.Bounds()
	width, height := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, width, height))
	if width == 0 || height == 0 {
		return out
	}
	tiles = max(1, min(tiles, width, height))

	tileW := (width + tiles - 1) / tiles
	tileH := (height + tiles - 1) / tiles

	luts := make([][256]uint8, tiles*tiles)
	for ty := range tiles {
		for tx := range tiles {
			x0, y0 := tx*tileW, ty*tileH
			x1, y1 := min(x0+tileW, width), min(y0+tileH, height)
			luts[ty*tiles+tx] = tileLUT(g, b.Min, x0, y0, x1, y1, clipLimit)
		}
	}

	for y := range height {
		// Position relative to tile centers.
		fy := (float64(y)+0.5)/float64(tileH) - 0.5
		ty0 := clamp(int(math.Floor(fy)), 0, tiles-1)
		ty1 := clamp(ty0+1, 0, tiles-1)
		wy := clampF(fy-float64(ty0), 0, 1)

		src := g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):]
		dst := out.Pix[y*out.Stride:]
		for x := range width {
			fx := (float64(x)+0.5)/float64(tileW) - 0.5
			tx0 := clamp(int(math.Floor(fx)), 0, tiles-1)
			tx1 := clamp(tx0+1, 0, tiles-1)
			wx := clampF(fx-float64(tx0), 0, 1)

			v := src[x]
			top := (1-wx)*float64(luts[ty0*tiles+tx0][v]) + wx*float64(luts[ty0*tiles+tx1][v])
			bottom := (1-wx)*float64(luts[ty1*tiles+tx0][v]) + wx*float64(luts[ty1*tiles+tx1][v])
			dst[x] = uint8((1-wy)*top + wy*bottom + 0.5)
		}
	}
	return out
}

func tileLUT(g *image.Gray, origin image.Point, x0, y0, x1, y1 int, clipLimit float64) [256]uint8 {
	var lut [256]uint8
	var hist [256]int
	area := (x1 - x0) * (y1 - y0)
	if area <= 0 {
		for i := range lut {
			lut[i] = uint8(i)
		}
		return lut
	}

	for y := y0; y < y1; y++ {
		row := g.Pix[g.PixOffset(origin.X+x0, origin.Y+y):]
		for x := 0; x < x1-x0; x++ {
			hist[row[x]]++
		}
	}

	if clipLimit > 0 {
		limit := max(1, int(clipLimit*float64(area)/256))
		excess := 0
		for i, n := range hist {
			if n > limit {
				excess += n - limit
				hist[i] = limit
			}
		}
		share, rest := excess/256, excess%256
		for i := range hist {
			hist[i] += share
			if i < rest {
				hist[i]++
			}
		}
	}

	cum := 0
	scale := 255 / float64(area)
	for i, n := range hist {
		cum += n
		lut[i] = uint8(min(255, float64(cum)*scale+0.5))
	}
	return lut
}

func clampF(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}
