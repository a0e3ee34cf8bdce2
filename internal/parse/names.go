package parse

import (
	"math"
	"regexp"
	"strings"
)

// Stopwords are fragments of printed card labels and administrative words
// that never occur in a person's name.
var Stopwords = []string{
	"ВОДИТЕЛ",
	"УДОСТОВ",
	"РЕСП",
	"ОБЛ",
	"КРАЙ",
	"ГИБДД",
	"РОСС",
	"ФЕДЕР",
	"DRIVING",
	"LICENCE",
	"LICENSE",
	"PERMIS",
	"RUS",
}

var (
	bulletRe      = regexp.MustCompile(`[•·]`)
	nonNameCharRe = regexp.MustCompile(`[^A-Za-zА-яЁё\s-]`)
	latinLetterRe = regexp.MustCompile(`[A-Za-z]`)
)

// CleanNameLine turns one recognized line into a Cyrillic name string.
//
// The printed label number and bullets are removed, everything except
// letters, spaces and hyphens is dropped, Latin look-alikes become
// Cyrillic and any Latin letter left over is removed. Lines with no
// Cyrillic letter at all yield "".
func CleanNameLine(text string) string {
	s := StripLabelPrefix(Clean(text))
	s = bulletRe.ReplaceAllString(s, " ")
	s = nonNameCharRe.ReplaceAllString(s, " ")
	if !HasCyrillic(s) {
		return ""
	}
	s = TransliterateLatin(s)
	s = latinLetterRe.ReplaceAllString(s, " ")
	return NormalizeWhitespace(s)
}

// NameQuality scores how much text looks like a Cyrillic personal name.
//
// The result is the share of Cyrillic letters among all letters, rounded
// to three places. A leading label number is ignored; any other digit, or
// a stopword, scores 0.
func NameQuality(text string) float64 {
	text = StripLabelPrefix(text)
	if text == "" || HasDigit(text) || containsStopword(Upper(text)) {
		return 0
	}
	letters, cyrillic := 0, 0
	for _, r := range text {
		switch {
		case IsCyrillic(r):
			letters++
			cyrillic++
		case IsLatin(r):
			letters++
		}
	}
	if letters == 0 {
		return 0
	}
	return round3(float64(cyrillic) / float64(letters))
}

// wordCount returns the number of whitespace-separated words in s.
func wordCount(s string) int {
	return len(strings.Fields(s))
}

func containsStopword(upper string) bool {
	for _, w := range Stopwords {
		if strings.Contains(upper, w) {
			return true
		}
	}
	return false
}

// isNameLine reports whether a free-text line could hold part of a name.
func isNameLine(line string) bool {
	if HasDigit(line) || containsStopword(Upper(line)) {
		return false
	}
	return HasCyrillic(CleanNameLine(line))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
