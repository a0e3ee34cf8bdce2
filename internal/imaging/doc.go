// Package imaging provides the pixel-level operations of the extraction
// pipeline: decoding uploads, cropping regions, edge and morphology filters,
// perspective warps and the preprocessing variants text recognition runs on.
//
// All operations work with standard Go image.Image types and use a
// coordinate system where (0,0) is at the top-left corner, X increases
// rightward, and Y increases downward. Functions that return new images
// return them with their origin at (0,0).
//
// # Libraries
//
// Resampling, cropping, orientation transforms and encoding use
// github.com/disintegration/imaging. Blur, median, unsharp mask, morphology,
// thresholding and contrast adjustment use github.com/anthonynsimon/bild.
// EXIF orientation is read with github.com/dsoprea/go-exif/v3 and the
// lightness channel is computed with github.com/lucasb-eyer/go-colorful.
//
// # Thread Safety
//
// Every function is stateless and may be called concurrently. Inputs are
// never modified.
//
// # Error Handling
//
// Functions return errors only for inputs they cannot process:
//   - ErrEmptyInput and ErrDecode from Decode
//   - ErrDegenerateCrop when a crop does not overlap the image
//   - ErrSingular when four corners do not define a perspective transform
package imaging
