// Package ocrtest provides a scripted recognition engine for tests.
package ocrtest

import (
	"context"
	"image"
	"sync"

	"github.com/ironsheep/rudl-extract/internal/ocr"
)

// Reply is one scripted answer to a Recognize call.
type Reply struct {
	Candidates []ocr.Candidate
	Err        error
}

// Engine answers Recognize calls per field from a script. Successive calls
// for the same field consume successive replies; the last reply repeats.
// Fields without a script get no candidates.
type Engine struct {
	mu       sync.Mutex
	script   map[string][]Reply
	calls    map[string]int
	requests []ocr.Request

	// TokenList is returned by Tokens.
	TokenList []ocr.Token

	// TokensErr, when set, is returned by Tokens.
	TokensErr error

	// CheckErr, when set, is returned by Check.
	CheckErr error
}

// New returns an empty scripted engine.
func New() *Engine {
	return &Engine{script: map[string][]Reply{}, calls: map[string]int{}}
}

// On appends replies for field and returns the engine for chaining.
func (e *Engine) On(field string, replies ...Reply) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.script[field] = append(e.script[field], replies...)
	return e
}

// Text is shorthand for a reply with one candidate.
func Text(text string, conf float64) Reply {
	return Reply{Candidates: []ocr.Candidate{{Text: text, Confidence: conf}}}
}

// Lines is shorthand for a reply with one candidate per line, each with conf.
func Lines(conf float64, lines ...string) Reply {
	r := Reply{}
	for _, l := range lines {
		r.Candidates = append(r.Candidates, ocr.Candidate{Text: l, Confidence: conf})
	}
	return r
}

// Recognize implements ocr.Engine.
func (e *Engine) Recognize(ctx context.Context, req ocr.Request) ([]ocr.Candidate, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.requests = append(e.requests, ocr.Request{Mode: req.Mode, Field: req.Field, Charset: req.Charset})
	n := e.calls[req.Field]
	e.calls[req.Field] = n + 1

	replies := e.script[req.Field]
	if len(replies) == 0 {
		return nil, nil
	}
	if n >= len(replies) {
		n = len(replies) - 1
	}
	r := replies[n]
	return append([]ocr.Candidate(nil), r.Candidates...), r.Err
}

// Tokens implements ocr.Engine.
func (e *Engine) Tokens(context.Context, image.Image) ([]ocr.Token, error) {
	if e.TokensErr != nil {
		return nil, e.TokensErr
	}
	return append([]ocr.Token(nil), e.TokenList...), nil
}

// Check implements ocr.Checker.
func (e *Engine) Check(context.Context) error {
	return e.CheckErr
}

// Calls returns how many times Recognize was called for field.
func (e *Engine) Calls(field string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls[field]
}

// Requests returns every Recognize request seen, without images.
func (e *Engine) Requests() []ocr.Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]ocr.Request(nil), e.requests...)
}
