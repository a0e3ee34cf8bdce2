package ocr

import (
	"context"
	"errors"
	"image"
)

// ErrUnavailable is returned when the recognition engine cannot be
// constructed: the native library is missing, cgo is disabled, or the
// language data cannot be loaded.
var ErrUnavailable = errors.New("text recognition engine unavailable")

// Mode selects how a crop is read.
type Mode int

const (
	// ModeLine reads the crop as a single line of text.
	ModeLine Mode = iota

	// ModeDetect finds text lines inside the crop and reads each one.
	ModeDetect
)

func (m Mode) String() string {
	if m == ModeDetect {
		return "detect"
	}
	return "line"
}

// Request is one recognition call.
type Request struct {
	// Image is the crop to read.
	Image image.Image

	// Mode selects single-line or multi-line detection.
	Mode Mode

	// Field names the region being read. Engines may use it for logging;
	// fakes use it to script responses.
	Field string

	// Charset, when non-empty, restricts recognized characters.
	Charset string
}

// Candidate is one recognized piece of text with a confidence in [0,1].
// It is the only result shape that leaves this package.
type Candidate struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Token is one recognized word and its position in the source image.
type Token struct {
	Text       string          `json:"text"`
	Confidence float64         `json:"confidence"`
	Box        image.Rectangle `json:"box"`
}

// Center returns the midpoint of the token's bounding box.
func (t Token) Center() (x, y float64) {
	return float64(t.Box.Min.X+t.Box.Max.X) / 2, float64(t.Box.Min.Y+t.Box.Max.Y) / 2
}

// Engine is the text-recognition capability the extraction pipeline needs.
type Engine interface {
	// Recognize returns zero or more candidates for the request's crop.
	Recognize(ctx context.Context, req Request) ([]Candidate, error)

	// Tokens returns word-level results with bounding boxes for a full image.
	Tokens(ctx context.Context, img image.Image) ([]Token, error)
}

// Checker is implemented by engines that can report whether they are usable
// before any image is processed.
type Checker interface {
	Check(ctx context.Context) error
}

// Info describes the configured engine.
type Info struct {
	Backend   string   `json:"backend"`
	Version   string   `json:"version"`
	Languages []string `json:"languages"`
	Available bool     `json:"available"`
	Error     string   `json:"error,omitempty"`
}

// Describer is implemented by engines that can describe themselves.
type Describer interface {
	Describe() Info
}
