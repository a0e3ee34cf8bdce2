package detection

import (
	"errors"
	"image"
	"sort"

	"github.com/ironsheep/rudl-extract/internal/imaging"
)

// Document detection parameters.
const (
	// WorkingMaxDimension is the longest side of the copy edges are
	// detected on. Corners are scaled back to the input size.
	WorkingMaxDimension = 800

	CannyLow  = 50.0
	CannyHigh = 150.0

	// MaxCandidates is how many of the largest contours are examined.
	MaxCandidates = 10

	// MinQuadAreaRatio is the fraction of the image a four-cornered
	// contour must cover to be accepted as the document.
	MinQuadAreaRatio = 0.08

	// MinRectAreaRatio is the fraction of the image the largest contour
	// must cover for the minimum-area rectangle fallback.
	MinRectAreaRatio = 0.05

	// ApproxEpsilonRatio scales the contour perimeter into the
	// Douglas-Peucker tolerance.
	ApproxEpsilonRatio = 0.02
)

// Detection methods reported in Document.Method.
const (
	MethodContour     = "contour"
	MethodMinAreaRect = "min_area_rect"
)

// ErrNoDocument is returned when no contour is large enough to be the
// document.
var ErrNoDocument = errors.New("document contour not detected")

// Document is the outline of a card found in a photo.
type Document struct {
	// Corners are ordered top-left, top-right, bottom-right, bottom-left
	// in input image coordinates.
	Corners imaging.Quad `json:"corners"`

	// Method is MethodContour or MethodMinAreaRect.
	Method string `json:"method"`

	// AreaRatio is the contour's hull area over the image area.
	AreaRatio float64 `json:"area_ratio"`
}

type candidate struct {
	hull []imaging.Point
	area float64
}

// FindDocument locates the outline of a card lying on a contrasting
// background.
//
// # Algorithm
//
//  1. Downscale to at most WorkingMaxDimension on the longest side
//  2. Canny edges (CannyLow, CannyHigh), then close gaps with two
//     dilations and one erosion
//  3. Group edge pixels into 8-connected contours and take the convex
//     hull of each; keep the MaxCandidates largest by hull area
//  4. The first contour covering MinQuadAreaRatio of the image whose hull
//     simplifies to exactly four vertices is the document
//  5. Otherwise, if the largest contour covers MinRectAreaRatio, its
//     minimum-area rectangle is used
//
// Returns ErrNoDocument when neither step succeeds.
func FindDocument(img image.Image) (*Document, error) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, ErrNoDocument
	}

	work := imaging.ClampSize(img, WorkingMaxDimension)
	wb := work.Bounds()
	sx := float64(b.Dx()) / float64(wb.Dx())
	sy := float64(b.Dy()) / float64(wb.Dy())
	imageArea := float64(wb.Dx() * wb.Dy())

	edges := imaging.CloseEdges(imaging.Canny(work, CannyLow, CannyHigh))

	var candidates []candidate
	for _, contour := range FindContours(edges, MinContourPixels) {
		hull := ConvexHull(contour)
		candidates = append(candidates, candidate{hull: hull, area: PolygonArea(hull)})
	}
	if len(candidates) == 0 {
		return nil, ErrNoDocument
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].area > candidates[j].area
	})
	if len(candidates) > MaxCandidates {
		candidates = candidates[:MaxCandidates]
	}

	scale := func(q imaging.Quad) imaging.Quad {
		for i := range q {
			q[i] = imaging.Point{X: q[i].X * sx, Y: q[i].Y * sy}
		}
		return q
	}

	for _, c := range candidates {
		if c.area < imageArea*MinQuadAreaRatio {
			continue
		}
		approx := ApproxPolygon(c.hull, ApproxEpsilonRatio*Perimeter(c.hull))
		if len(approx) == 4 {
			return &Document{
				Corners:   scale(OrderCorners(approx)),
				Method:    MethodContour,
				AreaRatio: c.area / imageArea,
			}, nil
		}
	}

	largest := candidates[0]
	if largest.area >= imageArea*MinRectAreaRatio {
		box := MinAreaRect(largest.hull)
		return &Document{
			Corners:   scale(OrderCorners(box[:])),
			Method:    MethodMinAreaRect,
			AreaRatio: largest.area / imageArea,
		}, nil
	}
	return nil, ErrNoDocument
}
