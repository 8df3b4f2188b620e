package comparison

import (
	"image"
	"runtime"
	"sync"

	"go-image-differ/internal/codec"
	apperrors "go-image-differ/internal/errors"
	"go-image-differ/pkg/models"
)

// PixelComparer scores two images by the fraction of pixels whose raw
// magnitude of change exceeds a sensitivity-derived threshold.
//
// Fast and exact, but sensitive to compression artifacts and minor noise.
type PixelComparer struct {
	sensitivity int
	threshold   int
}

// NewPixelComparer creates a pixel comparer. Sensitivity 100 is strictest
// (threshold 0, single-value changes count); sensitivity 0 is most lenient
// (threshold 255, nothing counts).
func NewPixelComparer(sensitivity int) *PixelComparer {
	return &PixelComparer{
		sensitivity: sensitivity,
		threshold:   255 * (100 - sensitivity) / 100,
	}
}

// Name returns the strategy name.
func (p *PixelComparer) Name() string {
	return "pixel"
}

// Compare decodes both images, computes the per-pixel absolute difference
// reduced to a luminance-weighted grayscale map, and scores the percentage
// of cells whose magnitude is strictly above the threshold. The returned map
// is the pre-threshold grayscale magnitude, not the binary mask.
func (p *PixelComparer) Compare(before, after []byte) (*models.ComparisonResult, error) {
	img1, err := codec.Decode(before, codec.ModeColor)
	if err != nil {
		return nil, err
	}
	img2, err := codec.Decode(after, codec.ModeColor)
	if err != nil {
		return nil, err
	}

	rgba1 := img1.(*image.NRGBA)
	rgba2 := img2.(*image.NRGBA)

	if err := validateShapes(rgba1.Bounds(), rgba2.Bounds()); err != nil {
		return nil, err
	}

	width, height := rgba1.Bounds().Dx(), rgba1.Bounds().Dy()
	totalPixels := width * height
	if totalPixels == 0 {
		return nil, apperrors.NewComputationError("difference computation on empty image", nil)
	}

	grayDiff := image.NewGray(image.Rect(0, 0, width, height))

	// Process the image in horizontal strips, one goroutine per strip.
	numWorkers := runtime.NumCPU()
	if height < numWorkers {
		numWorkers = height
	}
	rowsPerWorker := (height + numWorkers - 1) / numWorkers

	changedCounts := make(chan int, numWorkers)
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		startY := i * rowsPerWorker
		endY := startY + rowsPerWorker
		if endY > height {
			endY = height
		}
		wg.Add(1)
		go func(startY, endY int) {
			defer wg.Done()

			changed := 0
			for y := startY; y < endY; y++ {
				row1 := rgba1.Pix[y*rgba1.Stride:]
				row2 := rgba2.Pix[y*rgba2.Stride:]
				dst := grayDiff.Pix[y*grayDiff.Stride:]
				for x := 0; x < width; x++ {
					dr := absDiff(row1[x*4], row2[x*4])
					dg := absDiff(row1[x*4+1], row2[x*4+1])
					db := absDiff(row1[x*4+2], row2[x*4+2])

					// Luminance-weighted reduction of the channel diffs.
					magnitude := uint8(0.299*float64(dr) + 0.587*float64(dg) + 0.114*float64(db) + 0.5)
					dst[x] = magnitude

					if int(magnitude) > p.threshold {
						changed++
					}
				}
			}
			changedCounts <- changed
		}(startY, endY)
	}

	go func() {
		wg.Wait()
		close(changedCounts)
	}()

	changedPixels := 0
	for c := range changedCounts {
		changedPixels += c
	}

	score := float64(changedPixels) / float64(totalPixels) * 100

	return &models.ComparisonResult{
		Score: score,
		Map:   models.NewDiffMap(grayDiff),
	}, nil
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
