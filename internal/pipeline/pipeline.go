package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/ironsheep/rudl-extract/internal/align"
	"github.com/ironsheep/rudl-extract/internal/extract"
	"github.com/ironsheep/rudl-extract/internal/imaging"
	"github.com/ironsheep/rudl-extract/internal/keypoint"
	"github.com/ironsheep/rudl-extract/internal/layout"
	"github.com/ironsheep/rudl-extract/internal/ocr"
	"github.com/ironsheep/rudl-extract/internal/parse"
	"github.com/ironsheep/rudl-extract/internal/report"
	"github.com/ironsheep/rudl-extract/internal/storage"
)

// Image roles.
const (
	RoleFront = "front"
	RoleBack  = "back"
)

// Failure reasons and warnings.
const (
	ReasonNoImages       = "No images provided."
	ReasonNoDecodable    = "No images could be decoded."
	ReasonNoText         = "No text extracted from images."
	ReasonCanceled       = "Extraction canceled."
	WarnFrontMissing     = "Front image missing."
	WarnFallbackUsed     = "Front fallback OCR used."
	engineUnavailableFmt = "Text recognition engine unavailable: %v"
)

// Pipeline turns front and back photos of a license into a response. It
// is safe for concurrent use once built.
type Pipeline struct {
	engine ocr.Engine

	logger          *slog.Logger
	keypoints       keypoint.Detector
	keypointMinConf float64
	store           *storage.Store
	debug           bool
	dict            *parse.Dictionary
	workers         int
	policy          extract.Policy
	status          report.StatusPolicy
	useAnchors      bool
	maxDim          int
	templates       []layout.Template
	newID           func() string

	aligner    *align.Aligner
	calibrator *layout.Calibrator
	extractor  *extract.Extractor
	parser     *parse.Parser
	back       layout.Template
}

// New returns a pipeline reading text with engine.
func New(engine ocr.Engine, opts ...Option) *Pipeline {
	p := &Pipeline{
		engine:     engine,
		logger:     slog.Default(),
		workers:    1,
		policy:     extract.DefaultPolicy(),
		status:     report.DefaultStatusPolicy(),
		useAnchors: true,
		maxDim:     imaging.DefaultMaxDimension,
		templates:  layout.FrontTemplates(),
		newID:      NewRequestID,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.store == nil {
		p.store = storage.New("", "", false, storage.WithLogger(p.logger))
	}

	alignOpts := []align.Option{align.WithLogger(p.logger)}
	if p.keypoints != nil {
		alignOpts = append(alignOpts, align.WithKeypoints(p.keypoints, p.keypointMinConf))
	}
	p.aligner = align.New(layout.CanvasWidth, layout.CanvasHeight, alignOpts...)
	p.calibrator = layout.NewCalibrator(p.logger)
	p.extractor = extract.New(engine,
		extract.WithPolicy(p.policy),
		extract.WithWorkers(p.workers),
		extract.WithLogger(p.logger),
	)
	p.parser = parse.New(parse.WithDictionary(p.dict))
	p.back = layout.BackTemplate()
	return p
}

// NewRequestID returns "ocr_" followed by ten hex digits of a random UUID.
func NewRequestID() string {
	return "ocr_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}

// run collects what one request accumulates across both sides.
type run struct {
	id       string
	warnings []string
	images   []report.Image
}

func (r *run) warn(format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

// side is one processed photo.
type side struct {
	readings extract.Readings
	variants []imaging.Variant
	text     string
	meta     *report.SideMeta
}

// Extract runs the whole pipeline. It never fails: problems are reported
// through the response status and warnings.
//
// The back photo may be omitted when the front is present. A front
// missing while the back is present is processed with a warning.
func (p *Pipeline) Extract(ctx context.Context, front, back []byte) report.Response {
	id := p.newID()
	logger := p.logger.With("request_id", id)

	if len(front) == 0 && len(back) == 0 {
		return report.Failure(id, ReasonNoImages, nil, nil)
	}
	if c, ok := p.engine.(ocr.Checker); ok {
		if err := c.Check(ctx); err != nil {
			logger.Error("text recognition engine unavailable", "error", err)
			return report.Failure(id, fmt.Sprintf(engineUnavailableFmt, err), nil, nil)
		}
	}

	r := &run{id: id}
	fs := p.processSide(ctx, logger, r, RoleFront, front, false)
	bs := p.processSide(ctx, logger, r, RoleBack, back, len(front) > 0)
	if ctx.Err() != nil {
		return report.Failure(id, ReasonCanceled, r.warnings, r.images)
	}
	if fs == nil && bs == nil {
		return report.Failure(id, ReasonNoDecodable, r.warnings, r.images)
	}

	var frontContext string
	parsed := report.Fields{}
	if fs != nil {
		frontContext = fs.text
		regions := fs.readings.Map()
		parsed = p.parser.Front(regions, frontContext)

		if frontContext == "" || missingRequired(parsed) {
			text, conf := p.extractor.FullText(ctx, fs.variants)
			if text != "" {
				frontContext = joinLines(frontContext, text)
				parsed = p.parser.Front(regions, frontContext)
				parsed = p.parser.MergeFront(parsed, text, conf, frontContext)
				r.warn(WarnFallbackUsed)
				logger.Debug("front fallback text used", "confidence", conf)
			}
		}
	}

	var backText string
	backRegions := map[string]report.RegionText{}
	if bs != nil {
		backText = bs.text
		backRegions = bs.readings.Map()
	}

	raw := strings.TrimSpace(joinLines(frontContext, backText))
	if raw == "" {
		return report.Failure(id, ReasonNoText, r.warnings, r.images)
	}

	for name, f := range p.parser.Back(backRegions) {
		parsed[name] = f
	}

	debug := report.EmptyDebug()
	if p.debug {
		debug = report.Debug{
			FrontRaw: map[string]report.RegionText{},
			BackRaw:  backRegions,
			RawText:  parse.StripLatinWords(raw),
		}
		if fs != nil {
			debug.FrontRaw = fs.readings.Map()
			debug.FrontMeta = fs.meta
		}
		if bs != nil {
			debug.BackMeta = bs.meta
		}
	}

	resp := report.Assemble(id, parsed, p.status, r.warnings, r.images, debug)
	logger.Info("extraction complete",
		"status", resp.Status,
		"missing", len(resp.MissingFields),
		"warnings", len(resp.Warnings))
	return resp
}

// processSide decodes, stores, aligns and reads one photo. It returns nil
// when the photo is absent or cannot be decoded.
func (p *Pipeline) processSide(ctx context.Context, logger *slog.Logger, r *run, role string, data []byte, allowMissing bool) *side {
	title := strings.ToUpper(role[:1]) + role[1:]
	if len(data) == 0 {
		if !allowMissing {
			r.warn("%s image missing.", title)
		}
		return nil
	}
	if ctx.Err() != nil {
		return nil
	}

	decoded, err := imaging.Decode(data)
	if err != nil {
		logger.Warn("image decode failed", "role", role, "error", err)
		r.warn("%s image could not be decoded.", title)
		return nil
	}
	img := imaging.ClampSize(decoded.Image, p.maxDim)

	ref, err := p.store.Save(ctx, img, r.id, role, data)
	if err != nil {
		logger.Warn("upload storage failed", "role", role, "error", err)
		r.warn("Failed to store %s image: %v", role, err)
	}
	r.images = append(r.images, ref)

	aligned := p.aligner.Align(ctx, img)
	if aligned.Resized() {
		r.warn("%s contour not detected; used resize fallback.", title)
	}
	variants := imaging.Preprocess(aligned.Image)

	s := &side{
		variants: variants,
		meta: &report.SideMeta{
			Alignment:   aligned.Method,
			Attempts:    aligned.Attempts,
			Orientation: decoded.Orientation,
		},
	}

	if role == RoleFront {
		sel, anchors := p.calibrate(ctx, aligned, variants)
		s.readings = p.extractor.Regions(ctx, variants, sel.Template.Regions)
		s.meta.Template = sel.Base.Name
		s.meta.AnchorShift = &report.Shift{DX: round2(sel.DX), DY: round2(sel.DY)}
		s.meta.Anchors = reportAnchors(anchors)
	} else {
		s.readings = p.extractor.Regions(ctx, variants, p.back.Regions)
	}
	s.text = s.readings.Text()

	logger.Debug("side processed",
		"role", role,
		"alignment", aligned.Method,
		"template", s.meta.Template,
		"chars", len([]rune(s.text)))
	return s
}

// calibrate picks the front template. Templates are scored by reading
// sample regions only when no template fits the detected anchors.
func (p *Pipeline) calibrate(ctx context.Context, aligned align.Result, variants []imaging.Variant) (layout.Selection, layout.Anchors) {
	anchors := layout.Anchors{}
	if p.useAnchors {
		anchors = p.extractor.Anchors(ctx, aligned.Image)
	}
	in := layout.CalibrationInput{
		Templates: p.templates,
		Anchors:   anchors,
		Scorer:    p.extractor.TemplateScorer(variants),
	}
	return p.calibrator.Calibrate(ctx, in), anchors
}

func missingRequired(fields report.Fields) bool {
	for _, name := range report.RequiredFields {
		if fields[name].Empty() {
			return true
		}
	}
	return false
}

func joinLines(parts ...string) string {
	var out []string
	for _, s := range parts {
		if s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, "\n")
}

func reportAnchors(anchors layout.Anchors) map[string]report.Anchor {
	if len(anchors) == 0 {
		return nil
	}
	out := make(map[string]report.Anchor, len(anchors))
	for label, a := range anchors {
		out[label] = report.Anchor{X: a.X, Y: a.Y, Confidence: a.Confidence}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
