package layout

import (
	"sort"
	"strings"
	"unicode"

	"github.com/ironsheep/rudl-extract/internal/ocr"
)

// Observation is where an anchor label was actually found.
type Observation struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
}

// Anchors maps anchor labels to observations.
type Anchors map[string]Observation

// NormalizeAnchorLabel maps a recognized token to an anchor label.
//
// Non-alphanumerics are stripped, the rest is upper-cased, and Cyrillic
// А, В and Б become Latin A and B. "1", "2", "3" and "5" must match
// exactly; "4A" and "4B" match as prefixes so "4a)" and "4b." count.
func NormalizeAnchorLabel(text string) (string, bool) {
	var b strings.Builder
	for _, r := range text {
		if unicode.IsDigit(r) || isLatinOrCyrillic(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	s := strings.Map(func(r rune) rune {
		switch r {
		case 'А':
			return 'A'
		case 'В', 'Б':
			return 'B'
		}
		return r
	}, b.String())

	switch {
	case s == AnchorSurname, s == AnchorName, s == AnchorBirth, s == AnchorNumber:
		return s, true
	case strings.HasPrefix(s, AnchorIssued):
		return AnchorIssued, true
	case strings.HasPrefix(s, AnchorExpires):
		return AnchorExpires, true
	}
	return "", false
}

func isLatinOrCyrillic(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= 'А' && r <= 'я')
}

// DetectAnchors keeps, for each anchor label, the highest-confidence token
// that normalizes to it, positioned at the token's box center.
func DetectAnchors(tokens []ocr.Token) Anchors {
	anchors := Anchors{}
	for _, tok := range tokens {
		label, ok := NormalizeAnchorLabel(tok.Text)
		if !ok {
			continue
		}
		if cur, seen := anchors[label]; seen && cur.Confidence >= tok.Confidence {
			continue
		}
		x, y := tok.Center()
		anchors[label] = Observation{X: x, Y: y, Confidence: tok.Confidence}
	}
	return anchors
}

// Fit is the calibration of one template against detected anchors.
type Fit struct {
	DX, DY float64

	// Error is the mean absolute residual of matched anchors after the shift.
	Error float64

	// Matched is the number of anchors present in both sets.
	Matched int
}

// MinMatchedAnchors is the minimum overlap needed to trust a Fit.
const MinMatchedAnchors = 2

// FitAnchors computes the median offset between observed and expected
// anchor positions and the mean residual under that offset. ok is false
// when fewer than MinMatchedAnchors labels are matched.
func FitAnchors(observed Anchors, expected map[string]Point) (Fit, bool) {
	labels := make([]string, 0, len(expected))
	for label := range expected {
		if _, ok := observed[label]; ok {
			labels = append(labels, label)
		}
	}
	if len(labels) < MinMatchedAnchors {
		return Fit{}, false
	}
	sort.Strings(labels)

	dxs := make([]float64, len(labels))
	dys := make([]float64, len(labels))
	for i, label := range labels {
		dxs[i] = observed[label].X - expected[label].X
		dys[i] = observed[label].Y - expected[label].Y
	}
	fit := Fit{DX: median(dxs), DY: median(dys), Matched: len(labels)}

	var sum float64
	for _, label := range labels {
		obs, exp := observed[label], expected[label]
		sum += abs(obs.X-fit.DX-exp.X) + abs(obs.Y-fit.DY-exp.Y)
	}
	fit.Error = sum / float64(len(labels))
	return fit, true
}

// better reports whether a ranks above b: more matched anchors first,
// then lower residual.
func (a Fit) better(b Fit) bool {
	if a.Matched != b.Matched {
		return a.Matched > b.Matched
	}
	return a.Error < b.Error
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	s := append([]float64(nil), values...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
