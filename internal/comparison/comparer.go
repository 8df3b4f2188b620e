// Package comparison implements the difference-computation strategies. Each
// comparer consumes two equal-shaped images and produces a score plus a
// grayscale difference map.
package comparison

import (
	"fmt"
	"image"

	apperrors "go-image-differ/internal/errors"
	"go-image-differ/pkg/models"
)

// Comparer computes a difference score and map between two encoded images.
// Implementations are stateless after construction and safe for concurrent
// use across requests.
type Comparer interface {
	Compare(before, after []byte) (*models.ComparisonResult, error)
	Name() string
}

// validateShapes fails with a shape mismatch error naming both shapes when
// the two images do not share identical dimensions.
func validateShapes(b1, b2 image.Rectangle) error {
	if b1.Dx() != b2.Dx() || b1.Dy() != b2.Dy() {
		return apperrors.NewShapeMismatchError(
			fmt.Sprintf("image shapes must match: %dx%d vs %dx%d",
				b1.Dx(), b1.Dy(), b2.Dx(), b2.Dy()),
			nil,
		)
	}
	return nil
}
