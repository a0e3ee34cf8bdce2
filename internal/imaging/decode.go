package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	exif "github.com/dsoprea/go-exif/v3"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// DefaultMaxDimension is the longest side an upload is processed at.
const DefaultMaxDimension = 2000

var (
	// ErrEmptyInput is returned by Decode for zero-length input.
	ErrEmptyInput = errors.New("empty image data")

	// ErrDecode is returned by Decode when no registered format accepts the data.
	ErrDecode = errors.New("image could not be decoded")
)

// Decoded is an upload decoded into pixels with its EXIF orientation applied.
type Decoded struct {
	// Image is upright: the EXIF orientation has already been applied.
	Image image.Image

	// Format is the name reported by the decoder: "jpeg", "png", "gif",
	// "webp", "bmp" or "tiff".
	Format string

	// Orientation is the EXIF Orientation tag (1-8) found in the data, or 0
	// when there was none.
	Orientation int
}

// Decode decodes an uploaded image and rotates it upright.
//
// Parameters:
//   - data: Raw file bytes. Supported formats are JPEG, PNG, GIF, WebP,
//     BMP and TIFF.
//
// Returns:
//   - *Decoded: The upright image and what was learned while decoding.
//   - error: ErrEmptyInput for empty data; an error wrapping ErrDecode when
//     the bytes are not a supported image.
//
// # Orientation
//
// Phone cameras store pixels in sensor order and record the intended
// rotation in the EXIF Orientation tag. Decode reads the tag and applies
// the matching transform; missing or unreadable EXIF data is not an error.
func Decode(data []byte) (*Decoded, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	orientation := Orientation(data)
	return &Decoded{
		Image:       Orient(img, orientation),
		Format:      format,
		Orientation: orientation,
	}, nil
}

// Orientation returns the EXIF Orientation tag of an encoded image, or 0
// when the data carries no EXIF block or no valid tag.
func Orientation(data []byte) int {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return 0
	}
	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return 0
	}
	for _, entry := range entries {
		if entry.TagName != "Orientation" {
			continue
		}
		if o := orientationValue(entry.Value, entry.Formatted); o >= 1 && o <= 8 {
			return o
		}
	}
	return 0
}

func orientationValue(value any, formatted string) int {
	switch v := value.(type) {
	case []uint16:
		if len(v) > 0 {
			return int(v[0])
		}
	case uint16:
		return int(v)
	}
	n, err := strconv.Atoi(strings.Trim(formatted, "[] "))
	if err != nil {
		return 0
	}
	return n
}

// Orient applies an EXIF orientation transform. Values outside 2-8 return
// img unchanged.
func Orient(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	}
	return img
}

// ClampSize downsizes img so that its longest side is at most maxDim,
// keeping the aspect ratio. Images already within bounds are returned as is.
func ClampSize(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	longest := max(b.Dx(), b.Dy())
	if maxDim <= 0 || longest <= maxDim {
		return img
	}
	scale := float64(longest) / float64(maxDim)
	w := int(float64(b.Dx()) / scale)
	h := int(float64(b.Dy()) / scale)
	return imaging.Resize(img, max(w, 1), max(h, 1), imaging.Linear)
}

// Resize stretches img to exactly width x height, ignoring aspect ratio.
func Resize(img image.Image, width, height int) image.Image {
	return imaging.Resize(img, width, height, imaging.Linear)
}
