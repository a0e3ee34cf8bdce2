package align

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/ironsheep/rudl-extract/internal/detection"
	"github.com/ironsheep/rudl-extract/internal/imaging"
	"github.com/ironsheep/rudl-extract/internal/keypoint"
)

// Alignment methods, reported as the side's alignment tag.
const (
	MethodKeypoints = "keypoints"
	MethodContour   = "contour"
	MethodResize    = "resize"
)

// ErrNotLocated is returned by a strategy that could not find the card.
var ErrNotLocated = errors.New("document not located")

// Strategy locates the four corners of a card.
type Strategy interface {
	// Method is the alignment tag recorded when the strategy succeeds.
	Method() string

	// Locate returns the card corners ordered top-left, top-right,
	// bottom-right, bottom-left, and a short note for the attempt log.
	Locate(ctx context.Context, img image.Image) (imaging.Quad, string, error)
}

// Result is an image rectified onto the canvas.
type Result struct {
	// Image is exactly the aligner's canvas size.
	Image image.Image

	// Method is the tag of the strategy that produced Image.
	Method string

	// Corners are the source corners that were warped; nil after a resize.
	Corners *imaging.Quad

	// Attempts records each strategy tried, in order, with its outcome.
	Attempts []string
}

// Resized reports whether no strategy located the card.
func (r Result) Resized() bool {
	return r.Method == MethodResize
}

// Aligner runs its strategies in order and warps with the first one that
// locates the card. When none does, the image is resized to the canvas.
type Aligner struct {
	width      int
	height     int
	strategies []Strategy
	logger     *slog.Logger
}

// Option configures an Aligner.
type Option func(*Aligner)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Aligner) { a.logger = l }
}

// WithStrategies replaces the strategy chain.
func WithStrategies(s ...Strategy) Option {
	return func(a *Aligner) { a.strategies = s }
}

// WithKeypoints puts a keypoint strategy ahead of the contour strategy.
func WithKeypoints(d keypoint.Detector, minConfidence float64) Option {
	return func(a *Aligner) {
		a.strategies = append([]Strategy{&Keypoints{Detector: d, MinConfidence: minConfidence}}, a.strategies...)
	}
}

// New returns an aligner producing width x height canvases. The default
// chain is contour detection only.
func New(width, height int, opts ...Option) *Aligner {
	a := &Aligner{
		width:      width,
		height:     height,
		strategies: []Strategy{Contour{}},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Align rectifies img onto the canvas. It never fails: the final fallback
// is a plain resize.
func (a *Aligner) Align(ctx context.Context, img image.Image) Result {
	var attempts []string
	for _, s := range a.strategies {
		if ctx.Err() != nil {
			break
		}
		quad, note, err := s.Locate(ctx, img)
		if err != nil {
			attempts = append(attempts, fmt.Sprintf("%s: %v", s.Method(), err))
			if !errors.Is(err, keypoint.ErrDisabled) && !errors.Is(err, ErrNotLocated) {
				a.logger.Warn("alignment strategy failed", "method", s.Method(), "error", err)
			}
			continue
		}

		warped, err := imaging.WarpPerspective(img, quad, a.width, a.height)
		if err != nil {
			attempts = append(attempts, fmt.Sprintf("%s: warp failed: %v", s.Method(), err))
			a.logger.Warn("perspective warp failed", "method", s.Method(), "error", err)
			continue
		}
		attempts = append(attempts, fmt.Sprintf("%s: %s", s.Method(), note))
		a.logger.Debug("card aligned", "method", s.Method(), "note", note)
		return Result{Image: warped, Method: s.Method(), Corners: &quad, Attempts: attempts}
	}

	attempts = append(attempts, MethodResize)
	a.logger.Debug("card not located, resizing", "attempts", len(attempts)-1)
	return Result{
		Image:    imaging.Resize(img, a.width, a.height),
		Method:   MethodResize,
		Attempts: attempts,
	}
}

// Keypoints locates the card with a keypoint detector.
type Keypoints struct {
	Detector      keypoint.Detector
	MinConfidence float64
}

// Method implements Strategy.
func (k *Keypoints) Method() string { return MethodKeypoints }

// Locate implements Strategy.
func (k *Keypoints) Locate(ctx context.Context, img image.Image) (imaging.Quad, string, error) {
	if k.Detector == nil {
		return imaging.Quad{}, "", keypoint.ErrDisabled
	}
	instances, err := k.Detector.Detect(ctx, img)
	if err != nil {
		return imaging.Quad{}, "", err
	}
	points, conf, ok := keypoint.Best(instances, k.MinConfidence)
	if !ok {
		return imaging.Quad{}, "", fmt.Errorf("%w: no instance with confidence >= %.2f", ErrNotLocated, k.MinConfidence)
	}
	return detection.OrderCorners(points), fmt.Sprintf("confidence %.2f", conf), nil
}

// Contour locates the card by its outline, falling back to the
// minimum-area rectangle of the largest contour.
type Contour struct{}

// Method implements Strategy.
func (Contour) Method() string { return MethodContour }

// Locate implements Strategy.
func (Contour) Locate(_ context.Context, img image.Image) (imaging.Quad, string, error) {
	doc, err := detection.FindDocument(img)
	if err != nil {
		if errors.Is(err, detection.ErrNoDocument) {
			return imaging.Quad{}, "", fmt.Errorf("%w: %v", ErrNotLocated, err)
		}
		return imaging.Quad{}, "", err
	}
	return doc.Corners, fmt.Sprintf("%s, area %.2f", doc.Method, doc.AreaRatio), nil
}
