package extract

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/rudl-extract/internal/imaging"
	"github.com/ironsheep/rudl-extract/internal/layout"
	"github.com/ironsheep/rudl-extract/internal/ocr"
	"github.com/ironsheep/rudl-extract/internal/report"
)

// TemplateSampleRegions are read through each candidate template when
// anchors cannot choose one.
var TemplateSampleRegions = []string{layout.FullNameLine, layout.BirthDate, layout.LicenseNumber}

// Reading is the text read from one region.
type Reading struct {
	Region string
	report.RegionText
}

// Readings are region reads in template order.
type Readings []Reading

// Map indexes the readings by region name.
func (rs Readings) Map() map[string]report.RegionText {
	m := make(map[string]report.RegionText, len(rs))
	for _, r := range rs {
		m[r.Region] = r.RegionText
	}
	return m
}

// Text joins the non-empty readings with newlines.
func (rs Readings) Text() string {
	var parts []string
	for _, r := range rs {
		if t := strings.TrimSpace(r.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}

// Extractor reads template regions from preprocessed canvases.
type Extractor struct {
	engine  ocr.Engine
	policy  Policy
	workers int
	logger  *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithPolicy replaces the default policy.
func WithPolicy(p Policy) Option {
	return func(e *Extractor) { e.policy = p }
}

// WithWorkers sets how many regions are read concurrently. Values below 2
// read sequentially.
func WithWorkers(n int) Option {
	return func(e *Extractor) { e.workers = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

// New returns an Extractor using engine.
func New(engine ocr.Engine, opts ...Option) *Extractor {
	e := &Extractor{
		engine:  engine,
		policy:  DefaultPolicy(),
		workers: 1,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the extractor's policy.
func (e *Extractor) Policy() Policy {
	return e.policy
}

// Regions reads every region. Results are in region order regardless of
// how many workers ran.
func (e *Extractor) Regions(ctx context.Context, variants []imaging.Variant, regions []layout.Region) Readings {
	out := make(Readings, len(regions))
	if e.workers < 2 || len(regions) < 2 {
		for i, r := range regions {
			out[i] = Reading{Region: r.Name, RegionText: e.Region(ctx, variants, r)}
		}
		return out
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, r := range regions {
		g.Go(func() error {
			out[i] = Reading{Region: r.Name, RegionText: e.Region(gctx, variants, r)}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Region reads one region.
//
// The region is first read from the primary variant. If that read is not
// good enough, every region variant is read from every preprocessing
// variant and the best-scoring read is kept; a later read replaces the
// current best only when it scores strictly higher. Recognition errors
// are logged and treated as empty reads.
func (e *Extractor) Region(ctx context.Context, variants []imaging.Variant, r layout.Region) report.RegionText {
	if len(variants) == 0 {
		return report.RegionText{}
	}

	text, conf, _, err := e.read(ctx, variants[0].Image, r)
	if err != nil {
		if !errors.Is(err, imaging.ErrDegenerateCrop) {
			e.logger.Warn("region recognition failed", "region", r.Name, "error", err)
		}
		return report.RegionText{}
	}
	if e.policy.GoodEnough(r.Name, text, conf) {
		return report.RegionText{Text: text, Confidence: conf}
	}

	bestScore := e.policy.Score(r.Name, text, conf)
	bestText, bestConf := text, conf
	for i, rv := range Variants(r) {
		for j, v := range variants {
			if i == 0 && j == 0 {
				// Already read above.
				continue
			}
			if ctx.Err() != nil {
				return report.RegionText{Text: bestText, Confidence: bestConf}
			}
			text, conf, found, err := e.read(ctx, v.Image, rv)
			if err != nil {
				if !errors.Is(err, imaging.ErrDegenerateCrop) {
					e.logger.Warn("region recognition failed", "region", r.Name, "variant", v.Name, "error", err)
				}
				continue
			}
			if !found {
				continue
			}
			if score := e.policy.Score(r.Name, text, conf); score > bestScore {
				bestScore, bestText, bestConf = score, text, conf
			}
		}
	}
	e.logger.Debug("region read with retries", "region", r.Name, "score", bestScore)
	return report.RegionText{Text: bestText, Confidence: bestConf}
}

// read crops r from img and recognizes it. found is false when the engine
// returned no candidates.
func (e *Extractor) read(ctx context.Context, img image.Image, r layout.Region) (text string, conf float64, found bool, err error) {
	crop, err := imaging.Crop(img, r.Rect())
	if err != nil {
		return "", 0, false, err
	}
	mode := ocr.ModeLine
	if e.policy.Detect(r.Name) {
		mode = ocr.ModeDetect
	}
	candidates, err := e.engine.Recognize(ctx, ocr.Request{
		Image:   crop,
		Mode:    mode,
		Field:   r.Name,
		Charset: e.policy.Charsets[r.Name],
	})
	if err != nil {
		return "", 0, false, err
	}
	if len(candidates) == 0 {
		return "", 0, false, nil
	}
	text, conf = e.policy.Pick(r.Name, candidates)
	return text, conf, true, nil
}

// FullText reads every preprocessing variant as a whole in detect mode
// and returns the best read, scored by mean confidence plus a bonus for
// length. The returned confidence is the mean confidence alone.
func (e *Extractor) FullText(ctx context.Context, variants []imaging.Variant) (string, float64) {
	bestText, bestConf, bestScore := "", 0.0, -1.0
	for _, v := range variants {
		if ctx.Err() != nil {
			break
		}
		candidates, err := e.engine.Recognize(ctx, ocr.Request{
			Image: v.Image,
			Mode:  ocr.ModeDetect,
			Field: FullTextField,
		})
		if err != nil {
			e.logger.Warn("full image recognition failed", "variant", v.Name, "error", err)
			continue
		}
		if len(candidates) == 0 {
			continue
		}

		var lines []string
		var sum float64
		for _, c := range candidates {
			if t := strings.TrimSpace(c.Text); t != "" {
				lines = append(lines, t)
			}
			sum += c.Confidence
		}
		text := strings.TrimSpace(strings.Join(lines, "\n"))
		conf := round3(sum / float64(len(candidates)))
		bonus := min(float64(len([]rune(text)))/e.policy.FullTextLengthDivisor, e.policy.FullTextMaxBonus)
		if score := conf + bonus; score > bestScore {
			bestText, bestConf, bestScore = text, conf, score
		}
	}
	return bestText, bestConf
}

// FullTextField is the request field name of whole-image reads.
const FullTextField = "full_image"

// Anchors reads word tokens from the aligned canvas and keeps the printed
// field-number markers. Recognition errors yield no anchors.
func (e *Extractor) Anchors(ctx context.Context, canvas image.Image) layout.Anchors {
	tokens, err := e.engine.Tokens(ctx, canvas)
	if err != nil {
		e.logger.Warn("anchor recognition failed", "error", err)
		return layout.Anchors{}
	}
	return layout.DetectAnchors(tokens)
}

// TemplateScorer rates a template by reading its sample regions from the
// primary variant once each and averaging their scores.
func (e *Extractor) TemplateScorer(variants []imaging.Variant) layout.TemplateScorer {
	return func(ctx context.Context, t layout.Template) (float64, bool) {
		if len(variants) == 0 {
			return 0, false
		}
		var total float64
		count := 0
		for _, name := range TemplateSampleRegions {
			r, ok := t.Region(name)
			if !ok {
				continue
			}
			text, conf, found, err := e.read(ctx, variants[0].Image, r)
			if err != nil || !found {
				continue
			}
			total += e.policy.Score(name, text, conf)
			count++
		}
		if count == 0 {
			return 0, false
		}
		return total / float64(count), true
	}
}
