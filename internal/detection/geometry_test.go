package detection

import (
	"math"
	"testing"

	"github.com/ironsheep/rudl-extract/internal/imaging"
)

func TestConvexHull(t *testing.T) {
	points := []Point{
		{0, 0}, {10, 0}, {10, 10}, {0, 10}, // corners
		{5, 5}, {3, 7}, {5, 0}, // interior and collinear
		{10, 10}, // duplicate
	}

	hull := ConvexHull(points)

	if len(hull) != 4 {
		t.Fatalf("got %d hull points %v, want 4", len(hull), hull)
	}
	if hull[0] != (imaging.Point{X: 0, Y: 0}) {
		t.Errorf("first hull point: got %v, want (0,0)", hull[0])
	}
	if area := PolygonArea(hull); area != 100 {
		t.Errorf("hull area: got %v, want 100", area)
	}
}

func TestConvexHull_Degenerate(t *testing.T) {
	tests := []struct {
		name   string
		points []Point
		want   int
	}{
		{"empty", nil, 0},
		{"single", []Point{{3, 4}}, 1},
		{"same point", []Point{{3, 4}, {3, 4}}, 1},
		{"two points", []Point{{0, 0}, {5, 5}}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConvexHull(tt.points); len(got) != tt.want {
				t.Errorf("got %d points, want %d", len(got), tt.want)
			}
		})
	}
}

func TestPolygonAreaAndPerimeter(t *testing.T) {
	tests := []struct {
		name      string
		poly      []imaging.Point
		area      float64
		perimeter float64
	}{
		{"square", []imaging.Point{{0, 0}, {4, 0}, {4, 4}, {0, 4}}, 16, 16},
		{"reversed", []imaging.Point{{0, 4}, {4, 4}, {4, 0}, {0, 0}}, 16, 16},
		{"triangle", []imaging.Point{{0, 0}, {3, 0}, {0, 4}}, 6, 12},
		{"segment", []imaging.Point{{0, 0}, {3, 4}}, 0, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PolygonArea(tt.poly); math.Abs(got-tt.area) > 1e-9 {
				t.Errorf("area: got %v, want %v", got, tt.area)
			}
			if got := Perimeter(tt.poly); math.Abs(got-tt.perimeter) > 1e-9 {
				t.Errorf("perimeter: got %v, want %v", got, tt.perimeter)
			}
		})
	}
}

func TestApproxPolygon(t *testing.T) {
	// A rectangle outline densely sampled with a little jitter.
	var poly []imaging.Point
	for x := 0.0; x < 200; x += 5 {
		poly = append(poly, imaging.Point{X: x, Y: math.Mod(x, 2)})
	}
	for y := 0.0; y < 100; y += 5 {
		poly = append(poly, imaging.Point{X: 200, Y: y})
	}
	for x := 200.0; x > 0; x -= 5 {
		poly = append(poly, imaging.Point{X: x, Y: 100})
	}
	for y := 100.0; y > 0; y -= 5 {
		poly = append(poly, imaging.Point{X: 0, Y: y})
	}

	approx := ApproxPolygon(poly, ApproxEpsilonRatio*Perimeter(poly))
	if len(approx) != 4 {
		t.Fatalf("got %d vertices %v, want 4", len(approx), approx)
	}
	q := OrderCorners(approx)
	want := imaging.Quad{{0, 0}, {200, 0}, {200, 100}, {0, 100}}
	for i := range want {
		if math.Hypot(q[i].X-want[i].X, q[i].Y-want[i].Y) > 2 {
			t.Errorf("corner %d: got %v, want %v", i, q[i], want[i])
		}
	}
}

func TestApproxPolygon_KeepsShape(t *testing.T) {
	hexagon := []imaging.Point{{50, 0}, {100, 25}, {100, 75}, {50, 100}, {0, 75}, {0, 25}}
	if got := ApproxPolygon(hexagon, 1); len(got) != 6 {
		t.Errorf("small epsilon: got %d vertices, want 6", len(got))
	}
	if got := ApproxPolygon(hexagon[:2], 1); len(got) != 2 {
		t.Errorf("two points: got %d, want 2", len(got))
	}
}

func TestMinAreaRect(t *testing.T) {
	// A 100x40 rectangle rotated by 30 degrees around (200, 200).
	angle := math.Pi / 6
	cos, sin := math.Cos(angle), math.Sin(angle)
	var corners []imaging.Point
	for _, c := range [][2]float64{{-50, -20}, {50, -20}, {50, 20}, {-50, 20}} {
		corners = append(corners, imaging.Point{
			X: 200 + c[0]*cos - c[1]*sin,
			Y: 200 + c[0]*sin + c[1]*cos,
		})
	}

	box := MinAreaRect(corners)

	if area := PolygonArea(box[:]); math.Abs(area-4000) > 1 {
		t.Errorf("area: got %.2f, want 4000", area)
	}
	for _, p := range box {
		found := false
		for _, c := range corners {
			if math.Hypot(p.X-c.X, p.Y-c.Y) < 0.01 {
				found = true
			}
		}
		if !found {
			t.Errorf("box corner %v is not a rectangle corner", p)
		}
	}
}

func TestMinAreaRect_Triangle(t *testing.T) {
	// Right triangle: the best rectangle is aligned with the legs.
	tri := []imaging.Point{{0, 0}, {30, 0}, {0, 40}}
	box := MinAreaRect(tri)
	if area := PolygonArea(box[:]); math.Abs(area-1200) > 1e-6 {
		t.Errorf("area: got %.2f, want 1200", area)
	}
}

func TestOrderCorners(t *testing.T) {
	want := imaging.Quad{{10, 12}, {90, 8}, {95, 60}, {5, 55}}
	shuffled := []imaging.Point{want[2], want[0], want[3], want[1]}

	if got := OrderCorners(shuffled); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}
