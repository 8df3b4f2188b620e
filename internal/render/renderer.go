// Package render implements the overlay-rendering strategies. Each renderer
// consumes the "after" image plus a comparison's difference map and produces
// an encoded annotated image.
package render

import (
	"fmt"
	"image"

	"go-image-differ/internal/codec"
	apperrors "go-image-differ/internal/errors"
	"go-image-differ/pkg/models"
)

// Renderer turns a difference map into a visual overlay on top of the base
// ("after") image. Implementations are stateless after construction and safe
// for concurrent use across requests.
type Renderer interface {
	Render(base []byte, result *models.ComparisonResult) ([]byte, error)
	Name() string
}

// decodeBase decodes the base image and checks it against the difference map
// shape. Blending and region drawing are undefined for mismatched shapes.
func decodeBase(base []byte, result *models.ComparisonResult) (*image.NRGBA, error) {
	if result == nil || result.Map == nil {
		return nil, apperrors.NewRenderError("comparison result has no difference map", nil)
	}
	if result.Map.Width() == 0 || result.Map.Height() == 0 {
		return nil, apperrors.NewRenderError("difference map is empty", nil)
	}

	img, err := codec.Decode(base, codec.ModeColor)
	if err != nil {
		return nil, apperrors.NewRenderError("failed to decode base image", err)
	}
	rgba := img.(*image.NRGBA)

	if rgba.Bounds().Dx() != result.Map.Width() || rgba.Bounds().Dy() != result.Map.Height() {
		return nil, apperrors.NewRenderError(
			fmt.Sprintf("difference map shape %dx%d does not match base image %dx%d",
				result.Map.Width(), result.Map.Height(),
				rgba.Bounds().Dx(), rgba.Bounds().Dy()),
			nil,
		)
	}
	return rgba, nil
}

// encodeOverlay encodes a rendered overlay as PNG, mapping codec failures to
// render errors.
func encodeOverlay(img image.Image) ([]byte, error) {
	data, err := codec.Encode(img, codec.FormatPNG)
	if err != nil {
		return nil, apperrors.NewRenderError("failed to encode rendered overlay", err)
	}
	return data, nil
}

// blend returns a*(1-opacity) + b*opacity per channel, rounded.
func blend(a, b uint8, opacity float64) uint8 {
	return uint8(float64(a)*(1-opacity) + float64(b)*opacity + 0.5)
}
