package imaging

import (
	"errors"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// ErrSingular is returned when four correspondences do not define a
// perspective transform (three or more points are collinear).
var ErrSingular = errors.New("point correspondences are degenerate")

// Point is a sub-pixel image position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Quad is four corners ordered top-left, top-right, bottom-right,
// bottom-left.
type Quad [4]Point

// Homography is a 3x3 projective transform in row-major order with the
// last element fixed to 1.
type Homography [9]float64

// Apply maps p through h.
func (h Homography) Apply(p Point) Point {
	w := h[6]*p.X + h[7]*p.Y + h[8]
	if w == 0 {
		return Point{X: math.Inf(1), Y: math.Inf(1)}
	}
	return Point{
		X: (h[0]*p.X + h[1]*p.Y + h[2]) / w,
		Y: (h[3]*p.X + h[4]*p.Y + h[5]) / w,
	}
}

// SolveHomography returns the transform mapping each from[i] to to[i].
//
// The eight unknowns come from the standard direct linear formulation,
// two equations per correspondence, solved by Gaussian elimination with
// partial pivoting.
func SolveHomography(from, to Quad) (Homography, error) {
	var a [8][9]float64
	for i := range 4 {
		x, y := from[i].X, from[i].Y
		u, v := to[i].X, to[i].Y
		a[2*i] = [9]float64{x, y, 1, 0, 0, 0, -u * x, -u * y, u}
		a[2*i+1] = [9]float64{0, 0, 0, x, y, 1, -v * x, -v * y, v}
	}

	for col := range 8 {
		pivot := col
		for r := col + 1; r < 8; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-10 {
			return Homography{}, ErrSingular
		}
		a[col], a[pivot] = a[pivot], a[col]

		for r := range 8 {
			if r == col {
				continue
			}
			f := a[r][col] / a[col][col]
			for c := col; c < 9; c++ {
				a[r][c] -= f * a[col][c]
			}
		}
	}

	var h Homography
	for i := range 8 {
		h[i] = a[i][8] / a[i][i]
	}
	h[8] = 1
	return h, nil
}

// CanvasQuad returns the corners of a width x height canvas: (0,0),
// (width-1,0), (width-1,height-1), (0,height-1).
func CanvasQuad(width, height int) Quad {
	w, h := float64(width-1), float64(height-1)
	return Quad{{0, 0}, {w, 0}, {w, h}, {0, h}}
}

// WarpPerspective maps the quadrilateral src of img onto a width x height
// canvas so that src's corners land on CanvasQuad(width, height).
//
// Every output pixel is inverse-mapped into img and sampled bilinearly;
// pixels that map outside img are black.
func WarpPerspective(img image.Image, src Quad, width, height int) (*image.NRGBA, error) {
	// Solve canvas -> source directly so no matrix inversion is needed.
	h, err := SolveHomography(CanvasQuad(width, height), src)
	if err != nil {
		return nil, err
	}

	in := imaging.Clone(img)
	sb := in.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			p := h.Apply(Point{X: float64(x), Y: float64(y)})
			sampleBilinear(in, sb, p, out.Pix[out.PixOffset(x, y):out.PixOffset(x, y)+4])
		}
	}
	return out, nil
}

// sampleBilinear writes the bilinear sample of in at p into dst (RGBA).
func sampleBilinear(in *image.NRGBA, b image.Rectangle, p Point, dst []uint8) {
	if math.IsInf(p.X, 0) || p.X < -0.5 || p.Y < -0.5 ||
		p.X > float64(b.Dx())-0.5 || p.Y > float64(b.Dy())-0.5 {
		dst[0], dst[1], dst[2], dst[3] = 0, 0, 0, 255
		return
	}

	x0 := int(math.Floor(p.X))
	y0 := int(math.Floor(p.Y))
	fx, fy := p.X-float64(x0), p.Y-float64(y0)
	x1 := clamp(x0+1, 0, b.Dx()-1)
	y1 := clamp(y0+1, 0, b.Dy()-1)
	x0 = clamp(x0, 0, b.Dx()-1)
	y0 = clamp(y0, 0, b.Dy()-1)

	i00 := in.PixOffset(x0, y0)
	i10 := in.PixOffset(x1, y0)
	i01 := in.PixOffset(x0, y1)
	i11 := in.PixOffset(x1, y1)
	for c := range 4 {
		top := float64(in.Pix[i00+c])*(1-fx) + float64(in.Pix[i10+c])*fx
		bottom := float64(in.Pix[i01+c])*(1-fx) + float64(in.Pix[i11+c])*fx
		dst[c] = uint8(top*(1-fy) + bottom*fy + 0.5)
	}
}
