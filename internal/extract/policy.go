package extract

import (
	"slices"

	"github.com/ironsheep/rudl-extract/internal/layout"
)

// Family groups regions that are scored the same way.
type Family int

const (
	FamilyPlain Family = iota
	FamilyName
	FamilyDate
	FamilyLicense
	FamilyIssuer
)

// FamilyOf returns the scoring family of a region.
func FamilyOf(region string) Family {
	switch region {
	case layout.Surname, layout.Name, layout.Patronymic, layout.FullNameLine:
		return FamilyName
	case layout.BirthDate, layout.DrivingSince:
		return FamilyDate
	case layout.LicenseNumber:
		return FamilyLicense
	case layout.LicenseIssuedBy:
		return FamilyIssuer
	}
	return FamilyPlain
}

// Character sets passed to the engine for numeric regions.
const (
	DigitCharset = "0123456789 "
	DateCharset  = "0123456789.-/ "
)

// Policy holds every tunable number of region extraction. The zero value
// is not useful; start from DefaultPolicy.
type Policy struct {
	// Thresholds is the confidence a first read needs to be accepted
	// without trying variants, per region.
	Thresholds map[string]float64 `yaml:"thresholds"`

	// DefaultThreshold applies to regions missing from Thresholds.
	DefaultThreshold float64 `yaml:"default_threshold"`

	// MinNameQuality is the name quality a first read of a name region
	// needs to be accepted.
	MinNameQuality float64 `yaml:"min_name_quality"`

	NameQualityWeight  float64 `yaml:"name_quality_weight"`
	NoNamePenalty      float64 `yaml:"no_name_penalty"`
	DateBonus          float64 `yaml:"date_bonus"`
	DatePenalty        float64 `yaml:"date_penalty"`
	LicenseBonus       float64 `yaml:"license_bonus"`
	LicensePenalty     float64 `yaml:"license_penalty"`
	LicenseDatePenalty float64 `yaml:"license_date_penalty"`
	IssuerBonus        float64 `yaml:"issuer_bonus"`

	// LicenseDigits is how many digits a license number has.
	LicenseDigits int `yaml:"license_digits"`

	// DetectRegions are read in multi-line detect mode.
	DetectRegions []string `yaml:"detect_regions"`

	// Charsets restricts recognized characters per region.
	Charsets map[string]string `yaml:"charsets"`

	// FullTextLengthDivisor and FullTextMaxBonus reward longer whole-image
	// reads: bonus = min(len/divisor, max).
	FullTextLengthDivisor float64 `yaml:"full_text_length_divisor"`
	FullTextMaxBonus      float64 `yaml:"full_text_max_bonus"`
}

// DefaultPolicy returns the built-in extraction policy.
func DefaultPolicy() Policy {
	return Policy{
		Thresholds: map[string]float64{
			layout.BirthDate:       0.78,
			layout.DrivingSince:    0.78,
			layout.LicenseNumber:   0.80,
			layout.LicenseIssuedBy: 0.70,
			layout.Surname:         0.75,
			layout.Name:            0.75,
			layout.Patronymic:      0.70,
			layout.FullNameLine:    0.70,
		},
		DefaultThreshold:   0.80,
		MinNameQuality:     0.4,
		NameQualityWeight:  0.25,
		NoNamePenalty:      0.2,
		DateBonus:          0.25,
		DatePenalty:        0.15,
		LicenseBonus:       0.30,
		LicensePenalty:     0.15,
		LicenseDatePenalty: 0.30,
		IssuerBonus:        0.20,
		LicenseDigits:      10,
		DetectRegions:      []string{layout.FullNameLine, layout.RawText, layout.SpecialMarks},
		Charsets: map[string]string{
			layout.LicenseNumber: DigitCharset,
			layout.BirthDate:     DateCharset,
		},
		FullTextLengthDivisor: 500,
		FullTextMaxBonus:      0.2,
	}
}

// Threshold returns the acceptance threshold for region.
func (p Policy) Threshold(region string) float64 {
	if t, ok := p.Thresholds[region]; ok {
		return t
	}
	return p.DefaultThreshold
}

// Detect reports whether region is read in detect mode.
func (p Policy) Detect(region string) bool {
	return slices.Contains(p.DetectRegions, region)
}
