// Package detection finds the outline of a card in a photo.
//
// It provides the geometry the alignment step needs: connected edge
// contours, convex hulls, polygon area and perimeter, Douglas-Peucker
// simplification, the minimum-area enclosing rectangle and the
// top-left/top-right/bottom-right/bottom-left ordering of four corners.
// FindDocument combines them into the contour search described on the
// function.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Contour pixels are integer Points; derived geometry uses the sub-pixel
// imaging.Point so corners can be fed straight into a perspective warp.
//
// # Limitations
//
// The search works best when the card contrasts with its background and
// all four edges are visible. Cards cut off by the frame, or lying on a
// background of the same color, fall through to the minimum-area
// rectangle or to ErrNoDocument.
package detection
