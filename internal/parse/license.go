package parse

import (
	"regexp"
	"strings"
)

var (
	tenDigitsRe     = regexp.MustCompile(`\d{10}`)
	spacedLicenseRe = regexp.MustCompile(`\b\d{2}\s?\d{2}\s?\d{6}\b`)
	longDigitRunRe  = regexp.MustCompile(`\d{10,}`)
)

// LicenseNumber normalizes a license number to "DD DD DDDDDD".
//
// A contiguous 10-digit run is preferred; only when none exists are the
// digits stripped out of the whole text, and then exactly ten are required.
func LicenseNumber(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	fixed := FixDigits(text)
	digits := tenDigitsRe.FindString(fixed)
	if digits == "" {
		digits = onlyDigits(fixed)
	}
	if len(digits) != 10 {
		return "", false
	}
	return digits[:2] + " " + digits[2:4] + " " + digits[4:], true
}

// CountDigits returns the number of ASCII digits in s.
func CountDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// findLicenseNumber looks for a license number in free text: the printed
// "DD DD DDDDDD" grouping first, then any run of ten or more digits.
func findLicenseNumber(raw string) (string, bool) {
	if m := spacedLicenseRe.FindString(raw); m != "" {
		return LicenseNumber(m)
	}
	if m := longDigitRunRe.FindString(raw); m != "" {
		return LicenseNumber(m)
	}
	return "", false
}

func onlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
