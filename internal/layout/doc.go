// Package layout holds the canonical card geometry: region templates for
// the front and back of the license, the expected positions of the printed
// field-number anchors, and front-side calibration.
//
// All coordinates are on the CanvasWidth x CanvasHeight canvas produced by
// alignment.
//
// # Calibration
//
// Print layouts drift between card batches. Calibrate chooses a front
// template in three steps:
//
//  1. Anchors: detected labels "1", "2", "3", "4A", "4B", "5" are matched
//     against each template; the median offset is applied and the template
//     with the most matches (then lowest residual) wins. At least two
//     matches are required.
//  2. Scoring: with no usable anchors, sample regions are read through
//     each template and the best average field score wins.
//  3. Default: DefaultFrontTemplate with no offset.
package layout
