// Package pipeline runs one license extraction end to end: decode and
// store the uploads, align each side to the canonical canvas, pick and
// calibrate the front template, read every region, parse the fields and
// assemble the response.
//
// Extract never returns an error. Every problem becomes a warning, and
// unrecoverable ones (no images, nothing decodable, no text at all) turn
// into a failed response that still lists the images stored so far.
//
// A Pipeline is safe for concurrent use; all per-request state lives on
// the stack of Extract.
package pipeline
