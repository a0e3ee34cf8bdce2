package parse

import (
	"github.com/ironsheep/rudl-extract/internal/layout"
	"github.com/ironsheep/rudl-extract/internal/report"
)

// Back parses the back-side regions: categories from the categories region,
// falling back to the whole-card text region, and special marks verbatim.
func (p *Parser) Back(regions map[string]report.RegionText) report.Fields {
	cats := Categories(regionText(regions, layout.Categories))
	catConf := regions[layout.Categories].Confidence
	if len(cats) == 0 {
		cats = Categories(regionText(regions, layout.RawText))
		catConf = regions[layout.RawText].Confidence
	}
	if len(cats) == 0 {
		catConf = 0
	}

	marks := regionText(regions, layout.SpecialMarks)

	return report.Fields{
		report.FieldCategories:   {Value: cats, Confidence: catConf},
		report.FieldSpecialMarks: {Value: nullable(marks), Confidence: regions[layout.SpecialMarks].Confidence},
	}
}
