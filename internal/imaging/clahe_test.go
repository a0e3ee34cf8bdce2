package imaging

import (
	"image"
	"testing"
)

func TestCLAHE_UnclippedStretchesLowContrast(t *testing.T) {
	// Gradient squeezed into 100..139.
	g := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			g.Pix[y*g.Stride+x] = uint8(100 + (x+y)*40/128)
		}
	}

	// Without clipping every tile is fully equalized.
	out := CLAHE(g, 0, 4)
	if out.Bounds() != g.Bounds() {
		t.Fatalf("bounds: got %v, want %v", out.Bounds(), g.Bounds())
	}

	inLo, inHi := grayRange(g)
	outLo, outHi := grayRange(out)
	if outHi-outLo <= inHi-inLo {
		t.Errorf("contrast not increased: in %d..%d, out %d..%d", inLo, inHi, outLo, outHi)
	}
}

func TestCLAHE_Uniform(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 32, 32))
	for i := range g.Pix {
		g.Pix[i] = 90
	}

	out := CLAHE(g, CLAHEClipLimit, CLAHETiles)
	first := out.Pix[0]
	for _, v := range out.Pix {
		if v != first {
			t.Fatalf("uniform input should map to a uniform output, got %d and %d", first, v)
		}
	}
}

func TestCLAHE_Degenerate(t *testing.T) {
	tests := []struct {
		name  string
		w, h  int
		tiles int
	}{
		{"empty", 0, 0, 8},
		{"smaller than tile grid", 3, 5, 8},
		{"zero tiles", 10, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := image.NewGray(image.Rect(0, 0, tt.w, tt.h))
			out := CLAHE(g, CLAHEClipLimit, tt.tiles)
			if out.Bounds().Dx() != tt.w || out.Bounds().Dy() != tt.h {
				t.Errorf("bounds: got %v", out.Bounds())
			}
		})
	}
}

func TestCLAHE_OffsetOrigin(t *testing.T) {
	parent := image.NewGray(image.Rect(0, 0, 40, 40))
	for i := range parent.Pix {
		parent.Pix[i] = uint8(i % 256)
	}
	sub := parent.SubImage(image.Rect(10, 10, 30, 30)).(*image.Gray)

	out := CLAHE(sub, CLAHEClipLimit, 4)
	if out.Bounds() != image.Rect(0, 0, 20, 20) {
		t.Errorf("bounds: got %v, want origin-based 20x20", out.Bounds())
	}
}

func grayRange(g *image.Gray) (lo, hi int) {
	lo, hi = 255, 0
	for _, v := range g.Pix {
		lo = min(lo, int(v))
		hi = max(hi, int(v))
	}
	return lo, hi
}
