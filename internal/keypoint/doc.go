// Package keypoint provides the optional corner-keypoint detector used as
// the first alignment strategy.
//
// A keypoint model predicts the four corners of a card directly, which
// survives backgrounds where edge detection fails. The model runs in a
// separate inference service reached over HTTP; when no service is
// configured the Disabled detector is used and alignment moves on to
// contour detection.
package keypoint
