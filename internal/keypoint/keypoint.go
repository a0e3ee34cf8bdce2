package keypoint

import (
	"context"
	"errors"
	"image"
	"sync"

	"github.com/ironsheep/rudl-extract/internal/imaging"
)

// DefaultMinConfidence is the mean per-point confidence an instance needs
// to be used for alignment.
const DefaultMinConfidence = 0.3

// ErrDisabled is returned by detectors that are not configured.
var ErrDisabled = errors.New("keypoint detection disabled")

// Instance is one detected document: its corner points and, when the
// model reports them, per-point confidences.
type Instance struct {
	Points      []imaging.Point `json:"points"`
	Confidences []float64       `json:"confidences,omitempty"`
}

// Confidence is the mean of the per-point confidences, or 1 when the
// model reported none.
func (in Instance) Confidence() float64 {
	if len(in.Confidences) == 0 {
		return 1
	}
	var sum float64
	for _, c := range in.Confidences {
		sum += c
	}
	return sum / float64(len(in.Confidences))
}

// Detector finds document corner keypoints in an image.
type Detector interface {
	Detect(ctx context.Context, img image.Image) ([]Instance, error)
}

// Best returns the first four points of the most confident instance that
// has at least four points and a confidence of at least minConf. Ties keep
// the earlier instance.
func Best(instances []Instance, minConf float64) ([]imaging.Point, float64, bool) {
	best, bestConf := -1, -1.0
	for i, in := range instances {
		if len(in.Points) < 4 {
			continue
		}
		conf := in.Confidence()
		if conf < minConf {
			continue
		}
		if conf > bestConf {
			best, bestConf = i, conf
		}
	}
	if best < 0 {
		return nil, 0, false
	}
	return append([]imaging.Point(nil), instances[best].Points[:4]...), bestConf, true
}

// Disabled is the detector used when no model is configured.
type Disabled struct{}

// Detect always returns ErrDisabled.
func (Disabled) Detect(context.Context, image.Image) ([]Instance, error) {
	return nil, ErrDisabled
}

// Factory constructs a detector.
type Factory func() (Detector, error)

// Lazy defers detector construction to first use and shares the result.
// A failed construction is not cached.
type Lazy struct {
	factory Factory

	mu       sync.Mutex
	detector Detector
}

// NewLazy returns a Lazy that builds its detector with factory.
func NewLazy(factory Factory) *Lazy {
	return &Lazy{factory: factory}
}

// Get returns the shared detector, constructing it if needed.
func (l *Lazy) Get() (Detector, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.detector != nil {
		return l.detector, nil
	}
	d, err := l.factory()
	if err != nil {
		return nil, err
	}
	l.detector = d
	return d, nil
}

// Detect implements Detector.
func (l *Lazy) Detect(ctx context.Context, img image.Image) ([]Instance, error) {
	d, err := l.Get()
	if err != nil {
		return nil, err
	}
	return d.Detect(ctx, img)
}
