package extract

import (
	"math"
	"sort"
	"strings"

	"github.com/ironsheep/rudl-extract/internal/layout"
	"github.com/ironsheep/rudl-extract/internal/ocr"
	"github.com/ironsheep/rudl-extract/internal/parse"
)

// EmptyScore is the score of an empty read.
const EmptyScore = -1.0

// Score rates one read of a region: the recognition confidence adjusted
// by how well the text fits what the region should contain.
func (p Policy) Score(region, text string, conf float64) float64 {
	if text == "" {
		return EmptyScore
	}
	score := conf
	switch FamilyOf(region) {
	case FamilyName:
		q := parse.NameQuality(text)
		score += p.NameQualityWeight * q
		if q == 0 {
			score -= p.NoNamePenalty
		}
	case FamilyDate:
		if _, ok := parse.Date(text); ok {
			score += p.DateBonus
		} else {
			score -= p.DatePenalty
		}
	case FamilyLicense:
		if parse.CountDigits(parse.FixDigits(text)) == p.LicenseDigits {
			score += p.LicenseBonus
		} else {
			score -= p.LicensePenalty
		}
		if _, ok := parse.Date(text); ok {
			score -= p.LicenseDatePenalty
		}
	case FamilyIssuer:
		upper := parse.Upper(text)
		if strings.Contains(upper, "ГИБДД") || strings.Contains(upper, "GIBDD") {
			score += p.IssuerBonus
		}
	}
	return score
}

// GoodEnough reports whether a first read can be accepted without trying
// region variants.
func (p Policy) GoodEnough(region, text string, conf float64) bool {
	if conf < p.Threshold(region) {
		return false
	}
	switch FamilyOf(region) {
	case FamilyDate:
		if _, ok := parse.Date(text); !ok {
			return false
		}
	case FamilyLicense:
		if parse.CountDigits(parse.FixDigits(text)) != p.LicenseDigits {
			return false
		}
	case FamilyName:
		if parse.NameQuality(text) < p.MinNameQuality {
			return false
		}
	}
	return true
}

// Pick reduces the candidates of one read to a single text.
//
// Name regions keep the best-scoring non-empty candidate; the full-name
// line instead joins its best three candidates in score order, since a
// detect-mode read returns one candidate per printed line. Every other
// region joins all candidates in order.
func (p Policy) Pick(region string, candidates []ocr.Candidate) (string, float64) {
	if len(candidates) == 0 {
		return "", 0
	}
	if FamilyOf(region) != FamilyName {
		return merge(candidates)
	}

	type scored struct {
		score float64
		ocr.Candidate
	}
	var list []scored
	for _, c := range candidates {
		text := strings.TrimSpace(c.Text)
		if text == "" {
			continue
		}
		list = append(list, scored{
			score:     p.Score(region, text, c.Confidence),
			Candidate: ocr.Candidate{Text: text, Confidence: c.Confidence},
		})
	}
	if len(list) == 0 {
		return merge(candidates)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].score > list[j].score })

	if region == layout.FullNameLine && len(list) >= 2 {
		best := list[:min(3, len(list))]
		texts := make([]string, len(best))
		var sum float64
		for i, s := range best {
			texts[i] = s.Text
			sum += s.Confidence
		}
		return strings.Join(texts, " "), round3(sum / float64(len(best)))
	}
	return list[0].Text, list[0].Confidence
}

// merge joins candidate texts with spaces and averages every candidate's
// confidence, empty ones included.
func merge(candidates []ocr.Candidate) (string, float64) {
	var texts []string
	var sum float64
	for _, c := range candidates {
		if t := strings.TrimSpace(c.Text); t != "" {
			texts = append(texts, t)
		}
		sum += c.Confidence
	}
	return strings.Join(texts, " "), round3(sum / float64(len(candidates)))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
