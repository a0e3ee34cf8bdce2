package report

import (
	"sort"
	"strings"
)

// DefaultStatusThreshold is the minimum confidence a required field needs
// before the response can be "ok".
const DefaultStatusThreshold = 0.75

// StatusPolicy decides which fields gate the status and how confident they
// must be.
type StatusPolicy struct {
	// Required lists the fields that must be present and confident.
	Required []string

	// Thresholds overrides DefaultThreshold per field.
	Thresholds map[string]float64

	// DefaultThreshold applies to required fields without an override.
	DefaultThreshold float64
}

// DefaultStatusPolicy returns the policy over RequiredFields at
// DefaultStatusThreshold.
func DefaultStatusPolicy() StatusPolicy {
	return StatusPolicy{
		Required:         append([]string(nil), RequiredFields...),
		Thresholds:       map[string]float64{},
		DefaultThreshold: DefaultStatusThreshold,
	}
}

// Threshold returns the confidence threshold for one field.
func (p StatusPolicy) Threshold(name string) float64 {
	if t, ok := p.Thresholds[name]; ok {
		return t
	}
	return p.DefaultThreshold
}

// Evaluation is the outcome of DetermineStatus.
type Evaluation struct {
	Status Status

	// Missing lists required fields with empty values, in policy order.
	Missing []string

	// LowConfidence lists present required fields below their threshold,
	// sorted by name.
	LowConfidence []string
}

// DetermineStatus evaluates the field map under the policy. It never
// returns StatusFailed; failure is decided before any field is read.
func DetermineStatus(fields Fields, policy StatusPolicy) Evaluation {
	eval := Evaluation{Status: StatusOK}
	for _, name := range policy.Required {
		f := fields[name]
		switch {
		case f.Empty():
			eval.Missing = append(eval.Missing, name)
		case f.Confidence < policy.Threshold(name):
			eval.LowConfidence = append(eval.LowConfidence, name)
		}
	}
	sort.Strings(eval.LowConfidence)
	if len(eval.Missing) > 0 || len(eval.LowConfidence) > 0 {
		eval.Status = StatusPartial
	}
	return eval
}

// LowConfidenceWarning formats the warning listing low-confidence fields.
func LowConfidenceWarning(names []string) string {
	return "Low confidence fields: " + strings.Join(names, ", ")
}
