// Package align rectifies a photographed card onto the fixed canvas the
// templates are defined on.
//
// Alignment is an ordered chain of strategies: keypoints (when a detector
// is configured), then contour detection with its minimum-area rectangle
// fallback. The first strategy that yields four corners wins and the card
// is perspective-warped onto the canvas. If every strategy fails the image
// is stretched to the canvas size and the result is tagged "resize".
package align
