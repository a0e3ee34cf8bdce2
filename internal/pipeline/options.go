package pipeline

import (
	"log/slog"

	"github.com/ironsheep/rudl-extract/internal/extract"
	"github.com/ironsheep/rudl-extract/internal/keypoint"
	"github.com/ironsheep/rudl-extract/internal/layout"
	"github.com/ironsheep/rudl-extract/internal/parse"
	"github.com/ironsheep/rudl-extract/internal/report"
	"github.com/ironsheep/rudl-extract/internal/storage"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger shared by every stage.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithKeypoints tries detector before contour detection. Instances whose
// mean confidence is below minConfidence are ignored.
func WithKeypoints(detector keypoint.Detector, minConfidence float64) Option {
	return func(p *Pipeline) {
		p.keypoints = detector
		p.keypointMinConf = minConfidence
	}
}

// WithStore saves uploads in s. Without it uploads are only hashed.
func WithStore(s *storage.Store) Option {
	return func(p *Pipeline) { p.store = s }
}

// WithDebug includes raw region text and alignment metadata in responses.
func WithDebug(on bool) Option {
	return func(p *Pipeline) { p.debug = on }
}

// WithDictionary corrects recognized names against d.
func WithDictionary(d *parse.Dictionary) Option {
	return func(p *Pipeline) { p.dict = d }
}

// WithWorkers reads up to n regions of a side concurrently.
func WithWorkers(n int) Option {
	return func(p *Pipeline) { p.workers = n }
}

// WithPolicy replaces the region scoring policy.
func WithPolicy(policy extract.Policy) Option {
	return func(p *Pipeline) { p.policy = policy }
}

// WithStatusPolicy replaces the status rules.
func WithStatusPolicy(policy report.StatusPolicy) Option {
	return func(p *Pipeline) { p.status = policy }
}

// WithAnchors turns anchor calibration on or off. It is on by default.
func WithAnchors(on bool) Option {
	return func(p *Pipeline) { p.useAnchors = on }
}

// WithMaxDimension sets the longest side uploads are processed at.
func WithMaxDimension(n int) Option {
	return func(p *Pipeline) { p.maxDim = n }
}

// WithTemplates replaces the front templates.
func WithTemplates(front []layout.Template) Option {
	return func(p *Pipeline) { p.templates = front }
}

// WithRequestIDs replaces the request id generator.
func WithRequestIDs(gen func() string) Option {
	return func(p *Pipeline) { p.newID = gen }
}
