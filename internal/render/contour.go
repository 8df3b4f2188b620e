package render

import (
	"image"

	"github.com/sirupsen/logrus"

	apperrors "go-image-differ/internal/errors"
	"go-image-differ/internal/logger"
	"go-image-differ/pkg/models"
)

// ContourRenderer highlights differences with filled connected regions and
// bounding boxes drawn over the base image.
type ContourRenderer struct {
	minRegionArea  int
	highlightColor [3]uint8
	boxThickness   int
	fillOpacity    float64
}

// ContourOptions configures the contour renderer.
type ContourOptions struct {
	// MinRegionArea filters noise: only regions whose pixel count is strictly
	// greater than this survive. Must be non-negative.
	MinRegionArea int
	// HighlightColor is the RGB color used for fills and boxes.
	HighlightColor [3]uint8
	// BoxThickness is the bounding-box border width in pixels. Must be positive.
	BoxThickness int
	// FillOpacity is the opacity of filled regions (0 transparent, 1 opaque).
	FillOpacity float64
}

// DefaultContourOptions returns the standard contour configuration: green
// highlights, 2px boxes, 30% fill, regions above 40 pixels.
func DefaultContourOptions() ContourOptions {
	return ContourOptions{
		MinRegionArea:  40,
		HighlightColor: [3]uint8{0, 255, 0},
		BoxThickness:   2,
		FillOpacity:    0.3,
	}
}

// NewContourRenderer creates a contour renderer with the given options.
func NewContourRenderer(opts ContourOptions) (*ContourRenderer, error) {
	if opts.MinRegionArea < 0 {
		return nil, apperrors.NewValidationError("min region area must be non-negative", nil)
	}
	if opts.BoxThickness <= 0 {
		return nil, apperrors.NewValidationError("box thickness must be positive", nil)
	}
	if opts.FillOpacity < 0 || opts.FillOpacity > 1 {
		return nil, apperrors.NewValidationError("fill opacity must be in [0,1]", nil)
	}
	return &ContourRenderer{
		minRegionArea:  opts.MinRegionArea,
		highlightColor: opts.HighlightColor,
		boxThickness:   opts.BoxThickness,
		fillOpacity:    opts.FillOpacity,
	}, nil
}

// Name returns the strategy name.
func (c *ContourRenderer) Name() string {
	return "contour"
}

// region is a connected cluster of non-zero cells in the difference map.
type region struct {
	pixels []image.Point
	bounds image.Rectangle
}

// Render traces connected non-zero regions in the difference map, discards
// small ones, fills the survivors at the configured opacity, and draws their
// axis-aligned bounding boxes on top. When no region survives the filter the
// base image is returned unmodified.
func (c *ContourRenderer) Render(base []byte, result *models.ComparisonResult) ([]byte, error) {
	rgba, err := decodeBase(base, result)
	if err != nil {
		return nil, err
	}

	regions := c.findRegions(result.Map.Gray())

	significant := regions[:0]
	for _, r := range regions {
		if len(r.pixels) > c.minRegionArea {
			significant = append(significant, r)
		}
	}

	logger.WithFields(logrus.Fields{
		"regions":     len(regions),
		"significant": len(significant),
		"min_area":    c.minRegionArea,
	}).Debug("Traced difference regions")

	if len(significant) == 0 {
		logger.Info("No significant differences found")
		return encodeOverlay(rgba)
	}

	// Fill region interiors on a copy, then blend the copy over the base.
	filled := image.NewNRGBA(rgba.Bounds())
	copy(filled.Pix, rgba.Pix)
	for _, r := range significant {
		for _, p := range r.pixels {
			offset := p.Y*filled.Stride + p.X*4
			filled.Pix[offset] = c.highlightColor[0]
			filled.Pix[offset+1] = c.highlightColor[1]
			filled.Pix[offset+2] = c.highlightColor[2]
		}
	}
	out := image.NewNRGBA(rgba.Bounds())
	for i := range out.Pix {
		out.Pix[i] = blend(rgba.Pix[i], filled.Pix[i], c.fillOpacity)
	}

	// Bounding boxes are drawn opaque on top of the blended result.
	for _, r := range significant {
		c.drawBox(out, r.bounds)
	}

	return encodeOverlay(out)
}

// findRegions labels 8-connected components of non-zero cells.
func (c *ContourRenderer) findRegions(diff *image.Gray) []region {
	width := diff.Bounds().Dx()
	height := diff.Bounds().Dy()

	visited := make([]bool, width*height)
	var regions []region
	var stack []image.Point

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := y*width + x
			if visited[idx] || diff.Pix[y*diff.Stride+x] == 0 {
				continue
			}

			r := region{bounds: image.Rect(x, y, x+1, y+1)}
			visited[idx] = true
			stack = append(stack[:0], image.Pt(x, y))

			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				r.pixels = append(r.pixels, p)
				r.bounds = r.bounds.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))

				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						nx, ny := p.X+dx, p.Y+dy
						if nx < 0 || ny < 0 || nx >= width || ny >= height {
							continue
						}
						nIdx := ny*width + nx
						if !visited[nIdx] && diff.Pix[ny*diff.Stride+nx] != 0 {
							visited[nIdx] = true
							stack = append(stack, image.Pt(nx, ny))
						}
					}
				}
			}

			regions = append(regions, r)
		}
	}
	return regions
}

// drawBox draws a rectangle border of the configured thickness, growing
// outward from the region bounds and clamped to the image.
func (c *ContourRenderer) drawBox(img *image.NRGBA, box image.Rectangle) {
	for t := 0; t < c.boxThickness; t++ {
		ring := image.Rect(box.Min.X-t, box.Min.Y-t, box.Max.X+t, box.Max.Y+t).
			Intersect(img.Bounds())
		if ring.Empty() {
			continue
		}
		for x := ring.Min.X; x < ring.Max.X; x++ {
			c.setPixel(img, x, ring.Min.Y)
			c.setPixel(img, x, ring.Max.Y-1)
		}
		for y := ring.Min.Y; y < ring.Max.Y; y++ {
			c.setPixel(img, ring.Min.X, y)
			c.setPixel(img, ring.Max.X-1, y)
		}
	}
}

func (c *ContourRenderer) setPixel(img *image.NRGBA, x, y int) {
	offset := y*img.Stride + x*4
	img.Pix[offset] = c.highlightColor[0]
	img.Pix[offset+1] = c.highlightColor[1]
	img.Pix[offset+2] = c.highlightColor[2]
}
