package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

// createInMemoryImage creates an in-memory test image
func createInMemoryImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createPatternImage creates an image with different colors in each quadrant
func createPatternImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			if x < width/2 && y < height/2 {
				c = color.RGBA{255, 0, 0, 255} // Red top-left
			} else if x >= width/2 && y < height/2 {
				c = color.RGBA{0, 255, 0, 255} // Green top-right
			} else if x < width/2 && y >= height/2 {
				c = color.RGBA{0, 0, 255, 255} // Blue bottom-left
			} else {
				c = color.RGBA{255, 255, 255, 255} // White bottom-right
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	data := encodePNG(t, createPatternImage(120, 80))

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded.Format != "png" {
		t.Errorf("Format: got %s, want png", decoded.Format)
	}
	if decoded.Orientation != 0 {
		t.Errorf("Orientation: got %d, want 0 for PNG without EXIF", decoded.Orientation)
	}
	b := decoded.Image.Bounds()
	if b.Dx() != 120 || b.Dy() != 80 {
		t.Errorf("dimensions: got %dx%d, want 120x80", b.Dx(), b.Dy())
	}
}

func TestDecode_JPEG(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, createInMemoryImage(64, 32, color.Gray{200}), nil); err != nil {
		t.Fatal(err)
	}
	decoded, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded.Format != "jpeg" {
		t.Errorf("Format: got %s, want jpeg", decoded.Format)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"nil", nil, ErrEmptyInput},
		{"empty", []byte{}, ErrEmptyInput},
		{"garbage", []byte("this is not an image"), ErrDecode},
		{"truncated png", encodePNG(t, createPatternImage(10, 10))[:20], ErrDecode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode error: got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestOrient(t *testing.T) {
	// 4x2 image, red top-left quadrant.
	img := createPatternImage(4, 2)

	tests := []struct {
		orientation int
		wantW       int
		wantH       int
		redAt       image.Point
	}{
		{1, 4, 2, image.Pt(0, 0)},
		{2, 4, 2, image.Pt(3, 0)}, // mirrored
		{3, 4, 2, image.Pt(3, 1)}, // upside down
		{6, 2, 4, image.Pt(1, 0)}, // rotated clockwise
		{8, 2, 4, image.Pt(0, 3)}, // rotated counter-clockwise
	}
	for _, tt := range tests {
		out := Orient(img, tt.orientation)
		b := out.Bounds()
		if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
			t.Errorf("orientation %d: got %dx%d, want %dx%d", tt.orientation, b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			continue
		}
		r, g, bl, _ := out.At(tt.redAt.X, tt.redAt.Y).RGBA()
		if r>>8 != 255 || g>>8 != 0 || bl>>8 != 0 {
			t.Errorf("orientation %d: pixel %v is not red", tt.orientation, tt.redAt)
		}
	}
}

func TestOrientationValue(t *testing.T) {
	tests := []struct {
		value     any
		formatted string
		want      int
	}{
		{[]uint16{6}, "", 6},
		{uint16(3), "", 3},
		{nil, "[8]", 8},
		{nil, "x", 0},
	}
	for _, tt := range tests {
		if got := orientationValue(tt.value, tt.formatted); got != tt.want {
			t.Errorf("orientationValue(%v, %q) = %d, want %d", tt.value, tt.formatted, got, tt.want)
		}
	}
}

func TestClampSize(t *testing.T) {
	tests := []struct {
		name         string
		w, h, maxDim int
		wantW, wantH int
	}{
		{"within bounds", 800, 600, 2000, 800, 600},
		{"landscape", 4000, 3000, 2000, 2000, 1500},
		{"portrait", 1000, 3000, 2000, 666, 2000},
		{"disabled", 4000, 3000, 0, 4000, 3000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewGray(image.Rect(0, 0, tt.w, tt.h))
			b := ClampSize(img, tt.maxDim).Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("got %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}
