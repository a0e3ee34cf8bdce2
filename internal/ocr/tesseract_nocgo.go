//go:build !cgo

package ocr

import (
	"context"
	"fmt"
	"image"
)

// TesseractConfig configures the Tesseract adapter.
type TesseractConfig struct {
	Languages      []string
	TessdataPrefix string
	Clients        int
}

// Tesseract is unavailable in builds without cgo.
type Tesseract struct{}

// NewTesseract always fails without cgo.
func NewTesseract(TesseractConfig) (*Tesseract, error) {
	return nil, fmt.Errorf("%w: built without cgo", ErrUnavailable)
}

// Recognize implements Engine.
func (*Tesseract) Recognize(context.Context, Request) ([]Candidate, error) {
	return nil, ErrUnavailable
}

// Tokens implements Engine.
func (*Tesseract) Tokens(context.Context, image.Image) ([]Token, error) {
	return nil, ErrUnavailable
}

// Close is a no-op.
func (*Tesseract) Close() error { return nil }
