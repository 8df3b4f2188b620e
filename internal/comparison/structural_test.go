package comparison

import (
	"image"
	"image/color"
	"math"
	"testing"

	apperrors "go-image-differ/internal/errors"
)

func TestStructuralComparer_IdenticalImages(t *testing.T) {
	img := encodePNG(t, solidImage(16, 16, color.RGBA{128, 128, 128, 255}))

	comparer := NewStructuralComparer(80)
	result, err := comparer.Compare(img, img)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Identical images have similarity 1 everywhere, so score 0 and an
	// all-zero map.
	if result.Score != 0 {
		t.Errorf("expected score 0 for identical images, got %f", result.Score)
	}
	for i, v := range result.Map.Gray().Pix {
		if v != 0 {
			t.Fatalf("expected all-zero map, cell %d is %d", i, v)
		}
	}
}

func TestStructuralComparer_DifferentImages(t *testing.T) {
	before := solidImage(32, 32, color.RGBA{0, 0, 0, 255})
	after := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			if x < 16 {
				after.Set(x, y, color.RGBA{0, 0, 0, 255})
			} else {
				after.Set(x, y, color.RGBA{255, 255, 255, 255})
			}
		}
	}

	result, err := NewStructuralComparer(80).Compare(encodePNG(t, before), encodePNG(t, after))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Score <= 0 {
		t.Errorf("expected positive score for different images, got %f", result.Score)
	}
	// Theoretical ceiling is 200 (similarity -1).
	if result.Score > 200 {
		t.Errorf("score %f exceeds theoretical maximum 200", result.Score)
	}

	// The changed half must register in the map.
	var changed int
	for _, v := range result.Map.Gray().Pix {
		if v > 0 {
			changed++
		}
	}
	if changed == 0 {
		t.Error("expected non-zero cells in difference map")
	}
}

func TestStructuralComparer_SensitivityHasNoEffect(t *testing.T) {
	before := encodePNG(t, solidImage(16, 16, color.RGBA{50, 50, 50, 255}))
	after := encodePNG(t, solidImage(16, 16, color.RGBA{200, 200, 200, 255}))

	var baseline float64 = math.NaN()
	var baselineMap []uint8
	for _, sensitivity := range []int{0, 50, 100} {
		result, err := NewStructuralComparer(sensitivity).Compare(before, after)
		if err != nil {
			t.Fatalf("sensitivity %d: unexpected error: %v", sensitivity, err)
		}
		if math.IsNaN(baseline) {
			baseline = result.Score
			baselineMap = result.Map.Gray().Pix
			continue
		}
		if result.Score != baseline {
			t.Errorf("sensitivity %d changed score: %f vs %f", sensitivity, result.Score, baseline)
		}
		for i, v := range result.Map.Gray().Pix {
			if v != baselineMap[i] {
				t.Fatalf("sensitivity %d changed map at cell %d", sensitivity, i)
			}
		}
	}
}

func TestStructuralComparer_ShapeMismatch(t *testing.T) {
	small := encodePNG(t, solidImage(10, 10, color.RGBA{0, 0, 0, 255}))
	large := encodePNG(t, solidImage(20, 20, color.RGBA{0, 0, 0, 255}))

	_, err := NewStructuralComparer(80).Compare(small, large)
	if err == nil {
		t.Fatal("expected error for mismatched shapes, got nil")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeShapeMismatch) {
		t.Errorf("expected shape mismatch error, got %v", err)
	}
}

func TestStructuralComparer_TooSmallForWindow(t *testing.T) {
	tiny := encodePNG(t, solidImage(4, 4, color.RGBA{0, 0, 0, 255}))

	_, err := NewStructuralComparer(80).Compare(tiny, tiny)
	if err == nil {
		t.Fatal("expected error for image smaller than the comparison window")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeComputation) {
		t.Errorf("expected computation error, got %v", err)
	}
}

func TestSSIM_UniformShiftIsPartialSimilarity(t *testing.T) {
	// A uniform brightness shift should be penalized far less than the raw
	// pixel distance suggests; that robustness is the point of SSIM.
	before := encodePNG(t, solidImage(16, 16, color.RGBA{100, 100, 100, 255}))
	after := encodePNG(t, solidImage(16, 16, color.RGBA{120, 120, 120, 255}))

	result, err := NewStructuralComparer(80).Compare(before, after)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Score <= 0 || result.Score >= 100 {
		t.Errorf("expected a moderate score for a uniform shift, got %f", result.Score)
	}
}
