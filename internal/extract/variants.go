package extract

import "github.com/ironsheep/rudl-extract/internal/layout"

// Variants returns the region itself followed by the nudged and enlarged
// copies worth retrying when the first read is poor. Copies with the same
// geometry as an earlier one are dropped.
func Variants(r layout.Region) []layout.Region {
	out := []layout.Region{r, r.Expand(10, 8)}
	switch FamilyOf(r.Name) {
	case FamilyName:
		out = append(out, r.Shift(0, -12), r.Shift(0, 12), r.Expand(18, 10))
	case FamilyDate:
		out = append(out, r.Shift(0, -8), r.Shift(0, 8), r.Expand(14, 8))
	case FamilyLicense:
		out = append(out, r.Shift(0, 10), r.Expand(20, 10))
	case FamilyIssuer:
		out = append(out, r.Expand(20, 12))
	}

	seen := make(map[[4]int]bool, len(out))
	uniq := out[:0]
	for _, v := range out {
		if seen[v.Box()] {
			continue
		}
		seen[v.Box()] = true
		uniq = append(uniq, v)
	}
	return uniq
}
