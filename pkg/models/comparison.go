package models

import "image"

// DiffMap is a single-channel map of per-pixel difference magnitudes between
// two images. Cell values range from 0 (unchanged) to 255 (maximally changed).
type DiffMap struct {
	gray *image.Gray
}

// NewDiffMap wraps a grayscale image as a difference map.
func NewDiffMap(gray *image.Gray) *DiffMap {
	return &DiffMap{gray: gray}
}

// Gray returns the underlying grayscale image.
func (m *DiffMap) Gray() *image.Gray {
	return m.gray
}

// Width returns the map width in pixels.
func (m *DiffMap) Width() int {
	return m.gray.Bounds().Dx()
}

// Height returns the map height in pixels.
func (m *DiffMap) Height() int {
	return m.gray.Bounds().Dy()
}

// At returns the magnitude at (x, y).
func (m *DiffMap) At(x, y int) uint8 {
	return m.gray.GrayAt(x, y).Y
}

// ComparisonResult carries the outcome of a single image comparison.
//
// A comparer creates the result with Score and Map populated; a renderer then
// sets Overlay exactly once. Score and Map are never modified after creation.
//
// Score semantics differ per strategy: the pixel comparer produces values in
// [0, 100] (percentage of changed pixels), while the structural comparer
// produces (1 - SSIM) * 100, which can theoretically reach 200 when the
// similarity index is -1. The asymmetry is intentional and not normalized.
type ComparisonResult struct {
	Score   float64  `json:"score"`
	Map     *DiffMap `json:"-"`
	Overlay []byte   `json:"-"`
}
