package detection

import (
	"math"
	"sort"

	"github.com/ironsheep/rudl-extract/internal/imaging"
)

// ConvexHull returns the convex hull of points using Andrew's monotone
// chain. The first vertex is the smallest point by (X, Y); collinear points
// are dropped. Fewer than three distinct points are returned as is.
func ConvexHull(points []Point) []imaging.Point {
	pts := make([]Point, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})

	// Dedupe after sorting.
	uniq := pts[:0]
	for i, p := range pts {
		if i == 0 || p != pts[i-1] {
			uniq = append(uniq, p)
		}
	}
	pts = uniq
	if len(pts) < 3 {
		out := make([]imaging.Point, len(pts))
		for i, p := range pts {
			out[i] = toFloat(p)
		}
		return out
	}

	cross := func(o, a, b Point) int {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	hull := make([]Point, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	hull = hull[:len(hull)-1]

	out := make([]imaging.Point, len(hull))
	for i, p := range hull {
		out[i] = toFloat(p)
	}
	return out
}

// PolygonArea returns the unsigned area of a closed polygon (shoelace).
func PolygonArea(poly []imaging.Point) float64 {
	if len(poly) < 3 {
		return 0
	}
	var sum float64
	for i, p := range poly {
		q := poly[(i+1)%len(poly)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(sum) / 2
}

// Perimeter returns the length of a closed polygon.
func Perimeter(poly []imaging.Point) float64 {
	if len(poly) < 2 {
		return 0
	}
	var total float64
	for i, p := range poly {
		total += dist(p, poly[(i+1)%len(poly)])
	}
	return total
}

// ApproxPolygon simplifies a closed polygon with Douglas-Peucker: vertices
// closer than epsilon to the simplified outline are dropped.
//
// The curve is split at its first vertex and the vertex farthest from it,
// and each half is simplified separately so the result stays closed.
func ApproxPolygon(poly []imaging.Point, epsilon float64) []imaging.Point {
	n := len(poly)
	if n < 3 {
		return append([]imaging.Point(nil), poly...)
	}

	far, best := 0, -1.0
	for i := 1; i < n; i++ {
		if d := dist(poly[0], poly[i]); d > best {
			far, best = i, d
		}
	}

	first := douglasPeucker(poly[:far+1], epsilon)
	second := douglasPeucker(append(append([]imaging.Point(nil), poly[far:]...), poly[0]), epsilon)

	// Both halves share their end points.
	out := append([]imaging.Point(nil), first[:len(first)-1]...)
	return append(out, second[:len(second)-1]...)
}

func douglasPeucker(pts []imaging.Point, epsilon float64) []imaging.Point {
	if len(pts) < 3 {
		return append([]imaging.Point(nil), pts...)
	}
	a, b := pts[0], pts[len(pts)-1]
	idx, maxDist := 0, -1.0
	for i := 1; i < len(pts)-1; i++ {
		if d := segmentDistance(pts[i], a, b); d > maxDist {
			idx, maxDist = i, d
		}
	}
	if maxDist <= epsilon {
		return []imaging.Point{a, b}
	}
	left := douglasPeucker(pts[:idx+1], epsilon)
	right := douglasPeucker(pts[idx:], epsilon)
	return append(left[:len(left)-1], right...)
}

// segmentDistance is the distance from p to the segment ab.
func segmentDistance(p, a, b imaging.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lengthSq := dx*dx + dy*dy
	if lengthSq == 0 {
		return dist(p, a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lengthSq
	t = max(0, min(1, t))
	return dist(p, imaging.Point{X: a.X + t*dx, Y: a.Y + t*dy})
}

// MinAreaRect returns the corners of the smallest-area rectangle enclosing
// a convex hull, found with rotating calipers: the optimal rectangle has a
// side collinear with one of the hull edges, so every edge direction is
// tried. Corners are in traversal order; use OrderCorners for TL, TR, BR,
// BL.
func MinAreaRect(hull []imaging.Point) imaging.Quad {
	var best imaging.Quad
	bestArea := math.Inf(1)
	n := len(hull)
	if n == 0 {
		return best
	}
	if n == 1 {
		return imaging.Quad{hull[0], hull[0], hull[0], hull[0]}
	}

	for i := range n {
		p, q := hull[i], hull[(i+1)%n]
		length := dist(p, q)
		if length == 0 {
			continue
		}
		ux, uy := (q.X-p.X)/length, (q.Y-p.Y)/length // edge direction
		vx, vy := -uy, ux                            // normal

		minU, maxU := math.Inf(1), math.Inf(-1)
		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, h := range hull {
			u := (h.X-p.X)*ux + (h.Y-p.Y)*uy
			v := (h.X-p.X)*vx + (h.Y-p.Y)*vy
			minU, maxU = min(minU, u), max(maxU, u)
			minV, maxV = min(minV, v), max(maxV, v)
		}

		if area := (maxU - minU) * (maxV - minV); area < bestArea {
			bestArea = area
			corner := func(u, v float64) imaging.Point {
				return imaging.Point{X: p.X + u*ux + v*vx, Y: p.Y + u*uy + v*vy}
			}
			best = imaging.Quad{
				corner(minU, minV),
				corner(maxU, minV),
				corner(maxU, maxV),
				corner(minU, maxV),
			}
		}
	}
	return best
}

// OrderCorners arranges four points as top-left, top-right, bottom-right,
// bottom-left: the smallest X+Y is top-left, the largest bottom-right; the
// smallest Y-X is top-right and the largest bottom-left.
func OrderCorners(pts []imaging.Point) imaging.Quad {
	var q imaging.Quad
	if len(pts) == 0 {
		return q
	}
	tl, br, tr, bl := pts[0], pts[0], pts[0], pts[0]
	for _, p := range pts[1:] {
		if p.X+p.Y < tl.X+tl.Y {
			tl = p
		}
		if p.X+p.Y > br.X+br.Y {
			br = p
		}
		if p.Y-p.X < tr.Y-tr.X {
			tr = p
		}
		if p.Y-p.X > bl.Y-bl.X {
			bl = p
		}
	}
	return imaging.Quad{tl, tr, br, bl}
}

func toFloat(p Point) imaging.Point {
	return imaging.Point{X: float64(p.X), Y: float64(p.Y)}
}

func dist(a, b imaging.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
