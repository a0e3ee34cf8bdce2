package parse

import (
	"strings"

	"github.com/ironsheep/rudl-extract/internal/layout"
	"github.com/ironsheep/rudl-extract/internal/report"
)

// TenureMarker must appear in the front-side text for a driving-since
// date to be trusted.
const TenureMarker = "СТАЖ"

// ExpiryMarker is the printed label of the validity end date.
const ExpiryMarker = "4B"

// Parser turns raw region text into typed response fields.
type Parser struct {
	dict          *Dictionary
	requireTenure bool
}

// Option configures a Parser.
type Option func(*Parser)

// WithDictionary enables name correction against d. A nil d is a no-op.
func WithDictionary(d *Dictionary) Option {
	return func(p *Parser) {
		p.dict = d
	}
}

// WithTenureMarker controls whether a driving-since date needs a СТАЖ
// marker in context. It is required by default.
func WithTenureMarker(required bool) Option {
	return func(p *Parser) {
		p.requireTenure = required
	}
}

// New returns a Parser.
func New(opts ...Option) *Parser {
	p := &Parser{requireTenure: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Front parses the front-side regions. context is all front-side text
// seen so far (region text plus any whole-image text) and is used to
// corroborate the driving-since date.
func (p *Parser) Front(regions map[string]report.RegionText, context string) report.Fields {
	fields := report.Fields{}

	name, nameConf := p.fullName(regions)
	fields[report.FieldFullName] = report.Field{Value: nullable(name), Confidence: nameConf}

	birth, _ := LabeledDate(regionText(regions, layout.BirthDate))
	fields[report.FieldBirthDate] = report.Field{
		Value:      nullable(birth),
		Confidence: regions[layout.BirthDate].Confidence,
	}

	number, _ := LabeledLicenseNumber(regionText(regions, layout.LicenseNumber))
	fields[report.FieldLicenseNumber] = report.Field{
		Value:      nullable(number),
		Confidence: regions[layout.LicenseNumber].Confidence,
	}

	issuer := Issuer(regionText(regions, layout.LicenseIssuedBy))
	issuerConf := regions[layout.LicenseIssuedBy].Confidence
	if !hasIssuerMarker(issuer) {
		issuer, issuerConf = "", 0
	}
	fields[report.FieldLicenseIssuedBy] = report.Field{Value: nullable(issuer), Confidence: issuerConf}

	drivingText := regionText(regions, layout.DrivingSince)
	driving, _ := LabeledDate(drivingText)
	drivingConf := regions[layout.DrivingSince].Confidence
	if driving != "" && !p.drivingSinceCorroborated(driving, birth, drivingText, context) {
		driving, drivingConf = "", 0
	}
	fields[report.FieldDrivingSince] = report.Field{Value: nullable(driving), Confidence: drivingConf}

	return fields
}

// fullName reconciles the per-part regions with the single full-name line.
func (p *Parser) fullName(regions map[string]report.RegionText) (string, float64) {
	surname := p.dict.Correct(CleanNameLine(regionText(regions, layout.Surname)))
	given := p.dict.Correct(CleanNameLine(regionText(regions, layout.Name)))
	patronymic := p.dict.Correct(CleanNameLine(regionText(regions, layout.Patronymic)))
	line := p.dict.Correct(CleanNameLine(regionText(regions, layout.FullNameLine)))
	lineConf := regions[layout.FullNameLine].Confidence

	var parts []string
	for _, part := range []string{surname, given, patronymic} {
		if part != "" {
			parts = append(parts, part)
		}
	}

	if len(parts) == 0 {
		if line == "" {
			return "", 0
		}
		return line, lineConf
	}

	joined := strings.Join(parts, " ")
	conf := round3((regions[layout.Surname].Confidence +
		regions[layout.Name].Confidence +
		regions[layout.Patronymic].Confidence) / 3)
	if line == "" {
		return joined, conf
	}

	partsWords, lineWords := wordCount(joined), wordCount(line)
	switch {
	case surname == "" && lineWords >= partsWords:
		return line, lineConf
	case lineWords > partsWords:
		return line, lineConf
	case NameQuality(line) > NameQuality(joined)+0.1:
		return line, lineConf
	}
	return joined, conf
}

// drivingSinceCorroborated applies the tenure-marker and chronology rules.
// A mis-read expiry date can reject a correct value; that is accepted.
func (p *Parser) drivingSinceCorroborated(driving, birth, regionText, context string) bool {
	if p.requireTenure && !hasTenureMarker(regionText+"\n"+context) {
		return false
	}
	if birth != "" && driving <= birth {
		return false
	}
	if expiry, ok := markerDate(context, ExpiryMarker); ok && driving >= expiry {
		return false
	}
	return true
}

// LabeledDate reads a date after removing the printed field number. The
// prefix pattern also matches a leading day ("12.03.1985"), so the raw
// text is tried when the stripped text holds no date.
func LabeledDate(text string) (string, bool) {
	if d, ok := Date(StripLabelPrefix(text)); ok {
		return d, true
	}
	return Date(text)
}

// LabeledLicenseNumber is LabeledDate for license numbers, where the first
// digit group ("77 12 345678") looks like a field number.
func LabeledLicenseNumber(text string) (string, bool) {
	if n, ok := LicenseNumber(StripLabelPrefix(text)); ok {
		return n, true
	}
	return LicenseNumber(text)
}

func hasTenureMarker(text string) bool {
	return strings.Contains(Upper(text), TenureMarker)
}

// markerDate finds the first line whose compacted, upper-cased form
// contains marker and returns the date on that line or the next one.
// Cyrillic А, В and Б are read as Latin A and B.
func markerDate(raw, marker string) (string, bool) {
	ls := lines(raw)
	for i, line := range ls {
		compact := strings.Map(func(r rune) rune {
			switch r {
			case 'А':
				return 'A'
			case 'В', 'Б':
				return 'B'
			case ' ':
				return -1
			}
			return r
		}, Upper(line))
		if !strings.Contains(compact, marker) {
			continue
		}
		if d, ok := Date(line); ok {
			return d, true
		}
		if i+1 < len(ls) {
			if d, ok := Date(ls[i+1]); ok {
				return d, true
			}
		}
	}
	return "", false
}

func regionText(regions map[string]report.RegionText, name string) string {
	return Clean(regions[name].Text)
}

// nullable maps "" to nil so empty strings serialize as null.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
