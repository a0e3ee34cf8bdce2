// Package ocr defines the text-recognition capability used by extraction
// and provides a Tesseract-backed implementation.
//
// Callers depend on the Engine interface only. Whatever shape the
// underlying engine produces, results leave this package as Candidate
// (text and confidence) or Token (text, confidence and bounding box), with
// confidences scaled to [0,1] and empty text dropped.
//
// # Prerequisites
//
// The Tesseract adapter needs cgo and the native library plus language data
// for Russian and English:
//   - Ubuntu/Debian: apt-get install libtesseract-dev tesseract-ocr-rus tesseract-ocr-eng
//   - macOS: brew install tesseract tesseract-lang
//
// Without cgo, NewTesseract returns ErrUnavailable and extraction reports a
// failed status instead of processing images.
//
// # Sharing
//
// Engines are heavyweight. Wrap the constructor in a Lazy so the first
// request builds the engine once and later requests reuse it:
//
//	engine := ocr.NewLazy(func() (ocr.Engine, error) {
//	    return ocr.NewTesseract(ocr.TesseractConfig{Languages: []string{"rus", "eng"}})
//	})
//
// The Tesseract adapter keeps a bounded pool of native clients, so it is
// safe for concurrent Recognize calls.
package ocr
