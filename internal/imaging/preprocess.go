package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
)

// Preprocessing variant names, in the order Preprocess returns them.
const (
	VariantEnhanced  = "enhanced"
	VariantLightness = "lightness"
	VariantSharpened = "sharpened"
	VariantOtsu      = "otsu"
	VariantAdaptive  = "adaptive"
	VariantStretched = "stretched"
)

// Preprocessing parameters.
const (
	DenoiseRadius  = 1.0
	SharpenRadius  = 2.0
	SharpenAmount  = 1.0
	AdaptiveRadius = 15.0
	AdaptiveOffset = 10

	// Relative changes in [-1, 1] as bild's adjust package expects.
	StretchContrast   = 0.4
	StretchBrightness = -0.05
)

// Variant is one preprocessed rendition of the aligned canvas.
type Variant struct {
	Name  string
	Image *image.Gray
}

// Preprocess returns the grayscale renditions of an aligned card that text
// recognition is attempted on. The first variant is the primary one: it is
// used for the first pass over every region; the others are only tried
// when the first pass is not good enough.
//
//  1. enhanced: median denoise, then CLAHE
//  2. lightness: CIE L* channel, no filtering
//  3. sharpened: unsharp mask over luminance
//  4. otsu: global binarization at the Otsu level
//  5. adaptive: binarization against the local mean
//  6. stretched: linear contrast and brightness boost
func Preprocess(img image.Image) []Variant {
	gray := Grayscale(img)

	denoised := Grayscale(effect.Median(gray, DenoiseRadius))
	enhanced := CLAHE(denoised, CLAHEClipLimit, CLAHETiles)

	return []Variant{
		{Name: VariantEnhanced, Image: enhanced},
		{Name: VariantLightness, Image: Lightness(img)},
		{Name: VariantSharpened, Image: Grayscale(effect.UnsharpMask(gray, SharpenRadius, SharpenAmount))},
		{Name: VariantOtsu, Image: segment.Threshold(denoised, OtsuLevel(denoised))},
		{Name: VariantAdaptive, Image: AdaptiveThreshold(denoised, AdaptiveRadius, AdaptiveOffset)},
		{Name: VariantStretched, Image: Grayscale(adjust.Brightness(adjust.Contrast(gray, StretchContrast), StretchBrightness))},
	}
}

// OtsuLevel returns the smallest intensity of the bright class found by
// Otsu's method, i.e. the split that maximizes between-class variance of
// the histogram of g. It is suitable as the level for segment.Threshold.
func OtsuLevel(g *image.Gray) uint8 {
	var hist [256]int
	b := g.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := g.Pix[g.PixOffset(b.Min.X, y):g.PixOffset(b.Max.X, y)]
		for _, v := range row {
			hist[v]++
		}
	}
	total := b.Dx() * b.Dy()
	if total == 0 {
		return 128
	}

	var sum float64
	for i, n := range hist {
		sum += float64(i * n)
	}

	var sumB float64
	weightB := 0
	best, level := -1.0, 0
	for t := range 256 {
		weightB += hist[t]
		if weightB == 0 {
			continue
		}
		weightF := total - weightB
		if weightF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		meanB := sumB / float64(weightB)
		meanF := (sum - sumB) / float64(weightF)
		between := float64(weightB) * float64(weightF) * (meanB - meanF) * (meanB - meanF)
		if between > best {
			best, level = between, t
		}
	}
	return uint8(min(255, level+1))
}

// AdaptiveThreshold sets a pixel white when it is brighter than the mean of
// its neighborhood minus offset, black otherwise. The neighborhood mean is
// a box blur of the given radius.
func AdaptiveThreshold(g *image.Gray, radius float64, offset int) *image.Gray {
	mean := Grayscale(blur.Box(g, radius))
	b := g.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):]
		m := mean.Pix[y*mean.Stride:]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < b.Dx(); x++ {
			if int(src[x]) > int(m[x])-offset {
				dst[x] = 255
			}
		}
	}
	return out
}
