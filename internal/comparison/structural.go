package comparison

import (
	"image"
	"math"

	"gonum.org/v1/gonum/stat"

	"go-image-differ/internal/codec"
	apperrors "go-image-differ/internal/errors"
	"go-image-differ/pkg/models"
)

// SSIM parameters: 7x7 uniform window, the standard stabilizing constants
// for 8-bit dynamic range.
const (
	ssimWindowSize = 7
	ssimK1         = 0.01
	ssimK2         = 0.03
	ssimDynamic    = 255.0
)

// StructuralComparer scores two images with the structural similarity index
// (SSIM), a windowed comparison of local mean, variance and covariance that
// is less sensitive to uniform noise and lighting shifts than raw pixel
// differencing.
//
// The sensitivity parameter is accepted for interface symmetry with the
// pixel comparer; the thresholded mask derived from it does not affect the
// returned score or map.
type StructuralComparer struct {
	sensitivity int
}

// NewStructuralComparer creates a structural comparer.
func NewStructuralComparer(sensitivity int) *StructuralComparer {
	return &StructuralComparer{sensitivity: sensitivity}
}

// Name returns the strategy name.
func (s *StructuralComparer) Name() string {
	return "structural"
}

// Compare decodes both images to grayscale, computes the SSIM index and a
// full-resolution per-pixel similarity map, and returns:
//
//	score = (1 - global_similarity) * 100
//	map   = (1 - similarity) * 255 per cell, clamped to [0, 255]
//
// Score is 0 for identical images and can reach 200 in the theoretical worst
// case (similarity -1); this asymmetry with the pixel strategy's [0, 100]
// range is preserved deliberately.
func (s *StructuralComparer) Compare(before, after []byte) (*models.ComparisonResult, error) {
	img1, err := codec.Decode(before, codec.ModeGrayscale)
	if err != nil {
		return nil, err
	}
	img2, err := codec.Decode(after, codec.ModeGrayscale)
	if err != nil {
		return nil, err
	}

	gray1 := img1.(*image.Gray)
	gray2 := img2.(*image.Gray)

	if err := validateShapes(gray1.Bounds(), gray2.Bounds()); err != nil {
		return nil, err
	}

	mssim, simMap, err := ssim(gray1, gray2)
	if err != nil {
		return nil, err
	}

	score := (1 - mssim) * 100

	width, height := gray1.Bounds().Dx(), gray1.Bounds().Dy()
	diffGray := image.NewGray(image.Rect(0, 0, width, height))
	for i, sim := range simMap {
		// Invert: similarity 1 (identical) -> 0, -1 (different) -> 255.
		v := (1 - sim) * 255
		if v < 0 {
			v = 0
		} else if v > 255 {
			v = 255
		}
		diffGray.Pix[i] = uint8(v + 0.5)
	}

	// The binary mask below is computed from sensitivity but intentionally
	// unused: sensitivity must have no effect on structural score or map.
	// See DESIGN.md before wiring it in.
	_ = s.thresholdMask(diffGray)

	return &models.ComparisonResult{
		Score: score,
		Map:   models.NewDiffMap(diffGray),
	}, nil
}

// thresholdMask binarizes the processed difference map at the
// sensitivity-derived threshold.
func (s *StructuralComparer) thresholdMask(diff *image.Gray) *image.Gray {
	threshold := 255 * (100 - s.sensitivity) / 100
	mask := image.NewGray(diff.Bounds())
	for i, v := range diff.Pix {
		if int(v) > threshold {
			mask.Pix[i] = 255
		}
	}
	return mask
}

// ssim computes the mean structural similarity index and a full-resolution
// per-pixel similarity map over sliding local windows.
//
// Local statistics use a uniform window clamped at the image borders and
// sample (n-1) normalization. The global index is the mean over the interior
// region where the full window fits, so border effects do not skew the score.
func ssim(img1, img2 *image.Gray) (float64, []float64, error) {
	width := img1.Bounds().Dx()
	height := img1.Bounds().Dy()

	if width < ssimWindowSize || height < ssimWindowSize {
		return 0, nil, apperrors.NewComputationError(
			"images are smaller than the 7x7 structural comparison window", nil)
	}

	// Summed-area tables over x, y, x^2, y^2 and x*y give O(1) window sums.
	sumX := newIntegral(img1, nil)
	sumY := newIntegral(img2, nil)
	sumXX := newIntegral(img1, img1)
	sumYY := newIntegral(img2, img2)
	sumXY := newIntegral(img1, img2)

	c1 := (ssimK1 * ssimDynamic) * (ssimK1 * ssimDynamic)
	c2 := (ssimK2 * ssimDynamic) * (ssimK2 * ssimDynamic)

	pad := ssimWindowSize / 2
	simMap := make([]float64, width*height)
	interior := make([]float64, 0, (width-2*pad)*(height-2*pad))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			x0, x1 := x-pad, x+pad+1
			y0, y1 := y-pad, y+pad+1
			if x0 < 0 {
				x0 = 0
			}
			if y0 < 0 {
				y0 = 0
			}
			if x1 > width {
				x1 = width
			}
			if y1 > height {
				y1 = height
			}
			n := float64((x1 - x0) * (y1 - y0))

			sx := sumX.sum(x0, y0, x1, y1)
			sy := sumY.sum(x0, y0, x1, y1)
			sxx := sumXX.sum(x0, y0, x1, y1)
			syy := sumYY.sum(x0, y0, x1, y1)
			sxy := sumXY.sum(x0, y0, x1, y1)

			meanX := sx / n
			meanY := sy / n

			// Sample variance and covariance.
			norm := n - 1
			varX := (sxx - sx*sx/n) / norm
			varY := (syy - sy*sy/n) / norm
			cov := (sxy - sx*sy/n) / norm

			sim := ((2*meanX*meanY + c1) * (2*cov + c2)) /
				((meanX*meanX + meanY*meanY + c1) * (varX + varY + c2))

			if math.IsNaN(sim) || math.IsInf(sim, 0) {
				return 0, nil, apperrors.NewComputationError(
					"structural similarity produced a non-finite value", nil)
			}

			simMap[y*width+x] = sim
			if x >= pad && x < width-pad && y >= pad && y < height-pad {
				interior = append(interior, sim)
			}
		}
	}

	if len(interior) == 0 {
		return 0, nil, apperrors.NewComputationError(
			"no valid windows for structural comparison", nil)
	}

	return stat.Mean(interior, nil), simMap, nil
}

// integral is a summed-area table of the elementwise product of two images
// (or of a single image when b is nil).
type integral struct {
	width int
	data  []float64
}

func newIntegral(a, b *image.Gray) *integral {
	width := a.Bounds().Dx()
	height := a.Bounds().Dy()

	it := &integral{
		width: width + 1,
		data:  make([]float64, (width+1)*(height+1)),
	}
	for y := 0; y < height; y++ {
		rowA := a.Pix[y*a.Stride:]
		var rowB []uint8
		if b != nil {
			rowB = b.Pix[y*b.Stride:]
		}
		for x := 0; x < width; x++ {
			v := float64(rowA[x])
			if rowB != nil {
				v *= float64(rowB[x])
			}
			it.data[(y+1)*it.width+(x+1)] = v +
				it.data[y*it.width+(x+1)] +
				it.data[(y+1)*it.width+x] -
				it.data[y*it.width+x]
		}
	}
	return it
}

// sum returns the sum over the half-open rectangle [x0,x1) x [y0,y1).
func (it *integral) sum(x0, y0, x1, y1 int) float64 {
	return it.data[y1*it.width+x1] -
		it.data[y0*it.width+x1] -
		it.data[y1*it.width+x0] +
		it.data[y0*it.width+x0]
}
