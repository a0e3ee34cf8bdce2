//go:build cgo

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// TesseractConfig configures the Tesseract adapter.
type TesseractConfig struct {
	// Languages are Tesseract language codes, e.g. ["rus", "eng"].
	Languages []string

	// TessdataPrefix overrides the language data directory. Empty uses the
	// library default (TESSDATA_PREFIX or the system install).
	TessdataPrefix string

	// Clients is the maximum number of native clients kept for concurrent
	// calls. Values below 1 mean 1.
	Clients int
}

// Tesseract adapts gosseract to Engine.
//
// Native clients are not safe for concurrent use, so each call borrows one
// from a small pool; at most Clients calls run at once and the rest wait.
type Tesseract struct {
	cfg  TesseractConfig
	pool chan *gosseract.Client

	mu      sync.Mutex
	created int
}

// NewTesseract builds the adapter and verifies that the configured
// languages load. Any failure is reported as ErrUnavailable.
func NewTesseract(cfg TesseractConfig) (*Tesseract, error) {
	if len(cfg.Languages) == 0 {
		cfg.Languages = []string{"rus", "eng"}
	}
	if cfg.Clients < 1 {
		cfg.Clients = 1
	}
	t := &Tesseract{cfg: cfg, pool: make(chan *gosseract.Client, cfg.Clients)}
	if err := t.Check(context.Background()); err != nil {
		t.Close()
		return nil, err
	}
	return t, nil
}

// Check runs a recognition on a blank image to force language data to load.
func (t *Tesseract) Check(ctx context.Context) error {
	blank := image.NewGray(image.Rect(0, 0, 32, 16))
	for i := range blank.Pix {
		blank.Pix[i] = 255
	}
	if _, err := t.Recognize(ctx, Request{Image: blank, Mode: ModeLine, Field: "check"}); err != nil {
		return err
	}
	return nil
}

// Recognize implements Engine. Line mode returns at most one candidate with
// the mean word confidence; detect mode returns one candidate per text line.
func (t *Tesseract) Recognize(ctx context.Context, req Request) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := encodePNG(req.Image)
	if err != nil {
		return nil, err
	}

	c, err := t.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer t.release(c)

	psm := gosseract.PSM_SINGLE_LINE
	if req.Mode == ModeDetect {
		psm = gosseract.PSM_AUTO
	}
	if err := c.SetPageSegMode(psm); err != nil {
		return nil, fmt.Errorf("set page segmentation mode: %w", err)
	}
	if err := c.SetWhitelist(req.Charset); err != nil {
		return nil, fmt.Errorf("set whitelist: %w", err)
	}
	if err := c.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}

	if req.Mode == ModeDetect {
		boxes, err := c.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		out := make([]Candidate, 0, len(boxes))
		for _, b := range boxes {
			if text := strings.TrimSpace(b.Word); text != "" {
				out = append(out, Candidate{Text: text, Confidence: b.Confidence / 100.0})
			}
		}
		return out, nil
	}

	text, err := c.Text()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return nil, nil
	}
	return []Candidate{{Text: text, Confidence: meanWordConfidence(c)}}, nil
}

// Tokens implements Engine using word-level boxes over the whole image.
func (t *Tesseract) Tokens(ctx context.Context, img image.Image) ([]Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := encodePNG(img)
	if err != nil {
		return nil, err
	}

	c, err := t.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer t.release(c)

	if err := c.SetPageSegMode(gosseract.PSM_SPARSE_TEXT); err != nil {
		return nil, fmt.Errorf("set page segmentation mode: %w", err)
	}
	if err := c.SetWhitelist(""); err != nil {
		return nil, fmt.Errorf("set whitelist: %w", err)
	}
	if err := c.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("word boxes: %w", err)
	}

	b := img.Bounds()
	tokens := make([]Token, 0, len(boxes))
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		tokens = append(tokens, Token{
			Text:       box.Word,
			Confidence: box.Confidence / 100.0,
			Box:        box.Box.Add(b.Min),
		})
	}
	return tokens, nil
}

// Describe implements Describer.
func (t *Tesseract) Describe() Info {
	return Info{
		Backend:   "tesseract",
		Version:   gosseract.Version(),
		Languages: append([]string(nil), t.cfg.Languages...),
		Available: true,
	}
}

// Close releases every pooled client.
func (t *Tesseract) Close() error {
	for {
		select {
		case c := <-t.pool:
			c.Close()
		default:
			return nil
		}
	}
}

// acquire returns an idle client, creates one while under the pool limit,
// or waits for one to be released.
func (t *Tesseract) acquire(ctx context.Context) (*gosseract.Client, error) {
	select {
	case c := <-t.pool:
		return c, nil
	default:
	}

	t.mu.Lock()
	if t.created < t.cfg.Clients {
		t.created++
		t.mu.Unlock()
		c, err := t.newClient()
		if err != nil {
			t.mu.Lock()
			t.created--
			t.mu.Unlock()
			return nil, err
		}
		return c, nil
	}
	t.mu.Unlock()

	select {
	case c := <-t.pool:
		return c, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *Tesseract) release(c *gosseract.Client) {
	t.pool <- c
}

func (t *Tesseract) newClient() (*gosseract.Client, error) {
	c := gosseract.NewClient()
	if t.cfg.TessdataPrefix != "" {
		if err := c.SetTessdataPrefix(t.cfg.TessdataPrefix); err != nil {
			c.Close()
			return nil, fmt.Errorf("%w: tessdata prefix: %v", ErrUnavailable, err)
		}
	}
	if err := c.SetLanguage(t.cfg.Languages...); err != nil {
		c.Close()
		return nil, fmt.Errorf("%w: languages %v: %v", ErrUnavailable, t.cfg.Languages, err)
	}
	return c, nil
}

// meanWordConfidence averages word confidences of the last recognition.
func meanWordConfidence(c *gosseract.Client) float64 {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}
	var sum float64
	n := 0
	for _, b := range boxes {
		if strings.TrimSpace(b.Word) == "" {
			continue
		}
		sum += b.Confidence / 100.0
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func encodePNG(img image.Image) ([]byte, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("empty image")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
