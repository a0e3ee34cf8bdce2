package parse

import (
	"regexp"
	"strings"
)

// Longer tokens come first so "C1" is not read as "C".
var categoryRe = regexp.MustCompile(`\b(A1|B1|C1|D1|BE|CE|DE|A|B|C|D|M|TM|TB)\b`)

// Categories extracts license categories in order of first appearance,
// upper-cased and de-duplicated. It never returns nil.
func Categories(text string) []string {
	out := []string{}
	if text == "" {
		return out
	}
	seen := make(map[string]bool)
	for _, m := range categoryRe.FindAllString(strings.ToUpper(text), -1) {
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}
