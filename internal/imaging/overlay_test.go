package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestOverlay(t *testing.T) {
	img := createInMemoryImage(100, 60, color.White)
	boxes := []Box{
		{Label: "SURNAME", Rect: image.Rect(10, 10, 60, 30)},
		{Rect: image.Rect(70, 40, 200, 80)}, // clipped
		{Label: "GONE", Rect: image.Rect(300, 300, 310, 310)},
	}

	out := Overlay(img, boxes, "#00FF00")

	if out.Bounds() != image.Rect(0, 0, 100, 60) {
		t.Fatalf("bounds: got %v", out.Bounds())
	}
	if c := out.RGBAAt(30, 29); c != (color.RGBA{0, 255, 0, 255}) {
		t.Errorf("bottom edge of first box: got %v, want green", c)
	}
	if c := out.RGBAAt(99, 50); c != (color.RGBA{0, 255, 0, 255}) {
		t.Errorf("clipped right edge: got %v, want green", c)
	}
	if c := out.RGBAAt(40, 22); c != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("box interior away from label: got %v, want white", c)
	}

	// Source stays untouched.
	if r, _, _, _ := img.At(10, 10).RGBA(); r>>8 != 255 {
		t.Error("Overlay must not modify its input")
	}
}

func TestOverlay_InvalidColor(t *testing.T) {
	img := createInMemoryImage(20, 20, color.White)

	out := Overlay(img, []Box{{Rect: image.Rect(2, 2, 18, 18)}}, "not-a-color")

	if c := out.RGBAAt(2, 10); c != DefaultOverlayColor {
		t.Errorf("got %v, want default overlay color", c)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#FF0000", color.RGBA{255, 0, 0, 255}, false},
		{"00ff00", color.RGBA{0, 255, 0, 255}, false},
		{"#0000FF80", color.RGBA{0, 0, 255, 128}, false},
		{"#GG0000", color.RGBA{}, true},
		{"#FFF", color.RGBA{}, true},
	}
	for _, tt := range tests {
		got, err := parseHexColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseHexColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseHexColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPNGBase64(t *testing.T) {
	encoded, err := PNGBase64(createPatternImage(16, 8))
	if err != nil {
		t.Fatalf("PNGBase64 failed: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("invalid base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("invalid png: %v", err)
	}
	if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 8 {
		t.Errorf("dimensions: got %v", img.Bounds())
	}
}
