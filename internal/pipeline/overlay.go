package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/ironsheep/rudl-extract/internal/imaging"
)

// OverlayColor outlines regions drawn by Overlay.
const OverlayColor = "#FF0000"

// ErrNoImage is returned by Overlay for empty input.
var ErrNoImage = errors.New("no image data")

// Overlay aligns one photo the way Extract does and outlines the regions
// that would be read on it. For the front side the template is calibrated
// first, so the boxes include the anchor shift.
func (p *Pipeline) Overlay(ctx context.Context, role string, data []byte) (*image.RGBA, error) {
	if role != RoleFront && role != RoleBack {
		return nil, fmt.Errorf("unknown image role %q", role)
	}
	if len(data) == 0 {
		return nil, ErrNoImage
	}
	decoded, err := imaging.Decode(data)
	if err != nil {
		return nil, err
	}

	aligned := p.aligner.Align(ctx, imaging.ClampSize(decoded.Image, p.maxDim))
	regions := p.back.Regions
	if role == RoleFront {
		sel, _ := p.calibrate(ctx, aligned, imaging.Preprocess(aligned.Image))
		regions = sel.Template.Regions
	}

	boxes := make([]imaging.Box, 0, len(regions))
	for _, r := range regions {
		boxes = append(boxes, imaging.Box{Label: strings.ToUpper(r.Name), Rect: r.Rect()})
	}
	return imaging.Overlay(aligned.Image, boxes, OverlayColor), nil
}
