// Package extract reads the text of template regions from an aligned card.
//
// A region is read once from the primary preprocessing variant. When that
// read falls short of the region's Policy (confidence threshold, a valid
// date, ten license digits or a plausible Cyrillic name) the region is
// retried with nudged and enlarged copies across every preprocessing
// variant, and the best-scoring read wins.
//
// The package also reads the whole canvas as a fallback, scores candidate
// templates for calibration and collects anchor tokens.
package extract
