package parse

import (
	"math"
	"slices"
	"strings"

	"github.com/ironsheep/rudl-extract/internal/report"
)

// Confidence derivation for fields read from whole-image text.
const (
	FallbackBaseConfidence = 0.55
	FallbackMinConfidence  = 0.4
	FallbackMaxConfidence  = 0.85

	FallbackNameFactor    = 0.85
	FallbackDateFactor    = 0.8
	FallbackLicenseFactor = 0.9
	FallbackIssuerFactor  = 0.75

	// fallbackMaxNameLines is how many name-like lines are joined.
	fallbackMaxNameLines = 3
)

// FrontFromText parses front-side fields out of unstructured text produced
// by a whole-image recognition pass. baseConf is that pass's average
// confidence; zero means unknown.
func (p *Parser) FrontFromText(raw string, baseConf float64) report.Fields {
	if strings.TrimSpace(raw) == "" {
		return report.Fields{}
	}
	raw = Compose(raw)
	ls := lines(raw)

	var names []string
	for _, line := range ls {
		if !isNameLine(line) {
			continue
		}
		cleaned := CleanNameLine(line)
		if cleaned != "" && !slices.Contains(names, cleaned) {
			names = append(names, cleaned)
		}
	}
	if len(names) > fallbackMaxNameLines {
		names = names[:fallbackMaxNameLines]
	}
	fullName := p.dict.Correct(strings.Join(names, " "))

	birth := ""
	for _, d := range Dates(raw) {
		if birth == "" || d < birth {
			birth = d
		}
	}

	driving := ""
	if hasTenureMarker(raw) {
		for i, line := range ls {
			if !hasTenureMarker(line) {
				continue
			}
			driving, _ = Date(line)
			if driving == "" && i+1 < len(ls) {
				driving, _ = Date(ls[i+1])
			}
			break
		}
	}

	number, _ := findLicenseNumber(raw)

	issuer := ""
	for _, line := range ls {
		if hasIssuerMarker(line) {
			if issuer = Issuer(line); issuer != "" {
				break
			}
		}
	}

	base := baseConf
	if base <= 0 {
		base = FallbackBaseConfidence
	}
	base = math.Max(FallbackMinConfidence, math.Min(base, FallbackMaxConfidence))
	dateConf := round3(base * FallbackDateFactor)

	return report.Fields{
		report.FieldFullName:        {Value: nullable(fullName), Confidence: round3(base * FallbackNameFactor)},
		report.FieldBirthDate:       {Value: nullable(birth), Confidence: dateConf},
		report.FieldLicenseNumber:   {Value: nullable(number), Confidence: round3(base * FallbackLicenseFactor)},
		report.FieldLicenseIssuedBy: {Value: nullable(issuer), Confidence: round3(base * FallbackIssuerFactor)},
		report.FieldDrivingSince:    {Value: nullable(driving), Confidence: dateConf},
	}
}

// MergeFront fills empty primary fields from whole-image text. A
// driving-since date taken from that text must pass the same checks as
// one read from its region, against the merged birth date.
func (p *Parser) MergeFront(primary report.Fields, raw string, baseConf float64, context string) report.Fields {
	merged := Merge(primary, p.FrontFromText(raw, baseConf))
	if !primary[report.FieldDrivingSince].Empty() {
		return merged
	}
	driving, _ := merged[report.FieldDrivingSince].Value.(string)
	if driving == "" {
		return merged
	}
	birth, _ := merged[report.FieldBirthDate].Value.(string)
	if !p.drivingSinceCorroborated(driving, birth, raw, context) {
		merged[report.FieldDrivingSince] = report.Field{Value: nil, Confidence: 0}
	}
	return merged
}

// Merge fills fields that are empty in primary with non-empty values from
// fallback. Present primary values are never overwritten.
func Merge(primary, fallback report.Fields) report.Fields {
	merged := make(report.Fields, len(primary)+len(fallback))
	for k, v := range primary {
		merged[k] = v
	}
	for k, v := range fallback {
		if v.Empty() {
			continue
		}
		if cur, ok := merged[k]; !ok || cur.Empty() {
			merged[k] = v
		}
	}
	return merged
}
