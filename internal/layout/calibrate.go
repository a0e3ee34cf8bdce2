package layout

import (
	"context"
	"log/slog"
)

// Calibration methods, in the order they are tried.
const (
	MethodAnchors = "anchors"
	MethodScoring = "scoring"
	MethodDefault = "default"
)

// Selection is the outcome of calibration: the chosen template with its
// regions already offset, and how it was chosen.
type Selection struct {
	// Template is the chosen template with every region shifted.
	Template Template

	// Base is the chosen template before shifting.
	Base Template

	DX, DY float64
	Method string
	Fit    *Fit
}

// TemplateScorer rates how well a template's sample regions read on the
// current image. ok is false when nothing could be scored.
type TemplateScorer func(ctx context.Context, t Template) (score float64, ok bool)

// CalibrationInput is what each calibration strategy sees.
type CalibrationInput struct {
	Templates []Template
	Anchors   Anchors
	Scorer    TemplateScorer
}

// CalibrationStrategy picks a template or reports that it cannot.
type CalibrationStrategy interface {
	Name() string
	Select(ctx context.Context, in CalibrationInput) (Selection, bool)
}

// Calibrator runs calibration strategies in order until one succeeds.
// The last resort is always the default template with zero offset.
type Calibrator struct {
	strategies []CalibrationStrategy
	fallback   string
	logger     *slog.Logger
}

// NewCalibrator returns a Calibrator trying anchors, then brute-force
// scoring, then the default template.
func NewCalibrator(logger *slog.Logger) *Calibrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calibrator{
		strategies: []CalibrationStrategy{AnchorStrategy{}, ScoringStrategy{}},
		fallback:   DefaultFrontTemplate,
		logger:     logger,
	}
}

// Calibrate selects a template for the front side.
func (c *Calibrator) Calibrate(ctx context.Context, in CalibrationInput) Selection {
	for _, s := range c.strategies {
		if sel, ok := s.Select(ctx, in); ok {
			c.logger.Debug("template selected",
				"template", sel.Base.Name,
				"method", sel.Method,
				"dx", sel.DX,
				"dy", sel.DY,
			)
			return sel
		}
	}

	base, ok := FindTemplate(in.Templates, c.fallback)
	if !ok && len(in.Templates) > 0 {
		base = in.Templates[0]
	}
	return Selection{Template: base, Base: base, Method: MethodDefault}
}

// AnchorStrategy picks the template whose expected anchor positions best
// fit the detected anchors, and shifts it by the median offset.
type AnchorStrategy struct{}

// Name implements CalibrationStrategy.
func (AnchorStrategy) Name() string { return MethodAnchors }

// Select implements CalibrationStrategy.
func (AnchorStrategy) Select(_ context.Context, in CalibrationInput) (Selection, bool) {
	if len(in.Anchors) == 0 {
		return Selection{}, false
	}

	var best *Fit
	var bestTemplate Template
	for _, t := range in.Templates {
		fit, ok := FitAnchors(in.Anchors, t.Anchors)
		if !ok {
			continue
		}
		if best == nil || fit.better(*best) {
			f := fit
			best = &f
			bestTemplate = t
		}
	}
	if best == nil {
		return Selection{}, false
	}
	return Selection{
		Template: bestTemplate.Offset(best.DX, best.DY),
		Base:     bestTemplate,
		DX:       best.DX,
		DY:       best.DY,
		Method:   MethodAnchors,
		Fit:      best,
	}, true
}

// ScoringStrategy reads a few sample regions through every template and
// keeps the template with the best average score. It only runs when there
// is more than one template to choose from.
type ScoringStrategy struct{}

// Name implements CalibrationStrategy.
func (ScoringStrategy) Name() string { return MethodScoring }

// Select implements CalibrationStrategy.
func (ScoringStrategy) Select(ctx context.Context, in CalibrationInput) (Selection, bool) {
	if in.Scorer == nil || len(in.Templates) < 2 {
		return Selection{}, false
	}

	found := false
	var best Template
	bestScore := 0.0
	for _, t := range in.Templates {
		score, ok := in.Scorer(ctx, t)
		if !ok {
			continue
		}
		if !found || score > bestScore {
			found, best, bestScore = true, t, score
		}
	}
	if !found {
		return Selection{}, false
	}
	return Selection{Template: best, Base: best, Method: MethodScoring}, true
}
