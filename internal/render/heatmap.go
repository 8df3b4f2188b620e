package render

import (
	"fmt"
	"image"

	"github.com/lucasb-eyer/go-colorful"

	apperrors "go-image-differ/internal/errors"
	"go-image-differ/pkg/models"
)

// paletteStop anchors a color at a position in [0, 1] along a gradient.
type paletteStop struct {
	color colorful.Color
	pos   float64
}

// Perceptual palettes, approximating the classic "hot" and "jet" colormaps.
// "hot" maps zero difference to black, so untouched areas stay dark.
var palettes = map[string][]paletteStop{
	"hot": {
		{colorful.Color{R: 0, G: 0, B: 0}, 0.0},
		{colorful.Color{R: 1, G: 0, B: 0}, 0.4},
		{colorful.Color{R: 1, G: 1, B: 0}, 0.8},
		{colorful.Color{R: 1, G: 1, B: 1}, 1.0},
	},
	"jet": {
		{colorful.Color{R: 0, G: 0, B: 0.5}, 0.0},
		{colorful.Color{R: 0, G: 0, B: 1}, 0.125},
		{colorful.Color{R: 0, G: 1, B: 1}, 0.375},
		{colorful.Color{R: 1, G: 1, B: 0}, 0.625},
		{colorful.Color{R: 1, G: 0, B: 0}, 0.875},
		{colorful.Color{R: 0.5, G: 0, B: 0}, 1.0},
	},
}

// PaletteNames lists the available heatmap palettes.
func PaletteNames() []string {
	return []string{"hot", "jet"}
}

// HeatmapRenderer shows differences as a color heatmap blended over the base
// image. Best for showing the intensity and spatial spread of changes.
type HeatmapRenderer struct {
	opacity float64
	lut     [256]colorful.Color
}

// NewHeatmapRenderer creates a heatmap renderer using the named palette and
// the given overlay opacity (0 transparent, 1 opaque).
func NewHeatmapRenderer(palette string, opacity float64) (*HeatmapRenderer, error) {
	stops, ok := palettes[palette]
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown heatmap palette: %q", palette), nil)
	}
	if opacity < 0 || opacity > 1 {
		return nil, apperrors.NewValidationError(fmt.Sprintf("heatmap opacity must be in [0,1], got %g", opacity), nil)
	}

	h := &HeatmapRenderer{opacity: opacity}
	for i := 0; i < 256; i++ {
		h.lut[i] = gradientAt(stops, float64(i)/255)
	}
	return h, nil
}

// Name returns the strategy name.
func (h *HeatmapRenderer) Name() string {
	return "heatmap"
}

// Render normalizes the difference map to the full 0-255 range, maps each
// intensity through the palette, and alpha-blends the palette image over the
// base image.
func (h *HeatmapRenderer) Render(base []byte, result *models.ComparisonResult) ([]byte, error) {
	rgba, err := decodeBase(base, result)
	if err != nil {
		return nil, err
	}

	diff := result.Map.Gray()
	width, height := result.Map.Width(), result.Map.Height()

	// Min-max normalize. A constant map normalizes to all zeros.
	minV, maxV := diff.Pix[0], diff.Pix[0]
	for y := 0; y < height; y++ {
		row := diff.Pix[y*diff.Stride : y*diff.Stride+width]
		for _, v := range row {
			if v < minV {
				minV = v
			}
			if v > maxV {
				maxV = v
			}
		}
	}

	out := image.NewNRGBA(image.Rect(0, 0, width, height))
	span := int(maxV) - int(minV)

	for y := 0; y < height; y++ {
		srcRow := rgba.Pix[y*rgba.Stride:]
		diffRow := diff.Pix[y*diff.Stride:]
		dstRow := out.Pix[y*out.Stride:]
		for x := 0; x < width; x++ {
			normalized := 0
			if span > 0 {
				normalized = (int(diffRow[x]) - int(minV)) * 255 / span
			}
			heat := h.lut[normalized]
			hr, hg, hb := heat.RGB255()

			dstRow[x*4] = blend(srcRow[x*4], hr, h.opacity)
			dstRow[x*4+1] = blend(srcRow[x*4+1], hg, h.opacity)
			dstRow[x*4+2] = blend(srcRow[x*4+2], hb, h.opacity)
			dstRow[x*4+3] = 255
		}
	}

	return encodeOverlay(out)
}

// gradientAt interpolates the palette in RGB space at position t.
func gradientAt(stops []paletteStop, t float64) colorful.Color {
	for i := 0; i < len(stops)-1; i++ {
		s1, s2 := stops[i], stops[i+1]
		if t >= s1.pos && t <= s2.pos {
			frac := (t - s1.pos) / (s2.pos - s1.pos)
			return s1.color.BlendRgb(s2.color, frac)
		}
	}
	return stops[len(stops)-1].color
}
