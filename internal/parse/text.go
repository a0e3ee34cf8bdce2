package parse

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	labelPrefixRe = regexp.MustCompile(`^\s*\d+[a-zA-Z]?[.)]?\s*`)
	digitRe       = regexp.MustCompile(`\d`)
)

// digitConfusion maps letters commonly misread in place of digits.
var digitConfusion = map[rune]rune{
	'O': '0', 'o': '0', 'Q': '0', 'D': '0',
	'I': '1', 'l': '1', 'L': '1',
	'Z': '2',
	'S': '5', 's': '5',
	'B': '8',
	'G': '6', 'g': '6',
	'T': '7',
}

// latinToCyrillic maps Latin letters to their Cyrillic look-alikes.
var latinToCyrillic = map[rune]rune{
	'A': 'А', 'a': 'а',
	'B': 'В', 'b': 'в',
	'E': 'Е', 'e': 'е',
	'K': 'К', 'k': 'к',
	'M': 'М', 'm': 'м',
	'H': 'Н', 'h': 'н',
	'O': 'О', 'o': 'о',
	'P': 'Р', 'p': 'р',
	'C': 'С', 'c': 'с',
	'T': 'Т', 't': 'т',
	'X': 'Х', 'x': 'х',
	'Y': 'У', 'y': 'у',
}

// Clean composes the text to NFC and collapses whitespace. Recognition
// engines frequently emit Й and Ё as a base letter plus combining mark.
func Clean(s string) string {
	return NormalizeWhitespace(norm.NFC.String(s))
}

// Compose returns s in Unicode normal form C, keeping line structure.
func Compose(s string) string {
	return norm.NFC.String(s)
}

// NormalizeWhitespace trims s and collapses internal whitespace runs to one space.
func NormalizeWhitespace(s string) string {
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
}

// Upper upper-cases s with Russian casing rules.
func Upper(s string) string {
	return cases.Upper(language.Russian).String(s)
}

// StripLabelPrefix removes a leading printed field number such as "1.", "4a)" or "5 ".
func StripLabelPrefix(s string) string {
	return strings.TrimSpace(labelPrefixRe.ReplaceAllString(s, ""))
}

// FixDigits replaces letters that are commonly confused with digits.
func FixDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if d, ok := digitConfusion[r]; ok {
			return d
		}
		return r
	}, s)
}

// TransliterateLatin replaces Latin look-alike letters with Cyrillic ones.
// Latin letters without a look-alike are left as they are.
func TransliterateLatin(s string) string {
	return strings.Map(func(r rune) rune {
		if c, ok := latinToCyrillic[r]; ok {
			return c
		}
		return r
	}, s)
}

// IsCyrillic reports whether r is a Russian Cyrillic letter (А-я, Ё, ё).
func IsCyrillic(r rune) bool {
	return (r >= 'А' && r <= 'я') || r == 'Ё' || r == 'ё'
}

// IsLatin reports whether r is an ASCII letter.
func IsLatin(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

// HasCyrillic reports whether s contains at least one Cyrillic letter.
func HasCyrillic(s string) bool {
	return strings.IndexFunc(s, IsCyrillic) >= 0
}

// HasDigit reports whether s contains an ASCII digit.
func HasDigit(s string) bool {
	return digitRe.MatchString(s)
}

// StripLatinWords removes every whitespace-separated token made only of
// Latin letters and punctuation, line by line. Used for diagnostic raw text
// where the bilingual card labels are noise.
func StripLatinWords(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		words := strings.Fields(line)
		kept := words[:0]
		for _, w := range words {
			if isLatinWord(w) {
				continue
			}
			kept = append(kept, w)
		}
		if len(kept) > 0 {
			out = append(out, strings.Join(kept, " "))
		}
	}
	return strings.Join(out, "\n")
}

// isLatinWord reports whether w has at least one Latin letter and no
// digits or non-Latin letters.
func isLatinWord(w string) bool {
	hasLatin := false
	for _, r := range w {
		switch {
		case IsLatin(r):
			hasLatin = true
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return false
		}
	}
	return hasLatin
}

// lines splits raw text into whitespace-normalized non-empty lines.
func lines(raw string) []string {
	parts := strings.Split(raw, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = NormalizeWhitespace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
