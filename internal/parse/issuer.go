package parse

import (
	"regexp"
	"strings"
)

// IssuerMarkers identify the licensing authority in issuer text.
var IssuerMarkers = []string{"ГИБДД", "МРЭО"}

var nonIssuerCharRe = regexp.MustCompile(`[^0-9А-яЁё\s-]`)

// Issuer cleans the issuing-authority line.
//
// Words written purely in Latin letters are dropped (the card repeats the
// authority in transliteration), look-alike Latin letters inside mixed
// words become Cyrillic, and only digits, Cyrillic letters, spaces and
// hyphens are kept. The result is "" when no Cyrillic letter remains.
// Consecutive duplicate tokens are collapsed.
func Issuer(text string) string {
	s := StripLabelPrefix(Clean(text))
	if s == "" {
		return ""
	}

	words := strings.Fields(s)
	kept := words[:0]
	for _, w := range words {
		if !isLatinWord(w) {
			kept = append(kept, w)
		}
	}
	s = TransliterateLatin(strings.Join(kept, " "))
	s = NormalizeWhitespace(nonIssuerCharRe.ReplaceAllString(s, " "))
	if !HasCyrillic(s) {
		return ""
	}

	tokens := strings.Fields(s)
	deduped := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if len(deduped) == 0 || deduped[len(deduped)-1] != tok {
			deduped = append(deduped, tok)
		}
	}
	return strings.Join(deduped, " ")
}

// hasIssuerMarker reports whether text names a licensing authority.
func hasIssuerMarker(text string) bool {
	upper := Upper(text)
	for _, m := range IssuerMarkers {
		if strings.Contains(upper, m) {
			return true
		}
	}
	return false
}
