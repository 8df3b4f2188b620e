// Package strategy maps caller-chosen kind names to concrete comparison and
// rendering strategy instances. The variant sets are closed and small, so
// selection is a pure mapping with no dynamic registration.
package strategy

import (
	"fmt"

	"go-image-differ/internal/comparison"
	apperrors "go-image-differ/internal/errors"
	"go-image-differ/internal/render"
)

// ComparisonKind identifies a difference-computation strategy.
type ComparisonKind string

const (
	ComparisonPixel      ComparisonKind = "pixel"
	ComparisonStructural ComparisonKind = "structural"
)

// ComparisonKinds lists the valid comparison kind names for discovery.
func ComparisonKinds() []string {
	return []string{string(ComparisonPixel), string(ComparisonStructural)}
}

// OverlayKind identifies an overlay-rendering strategy.
type OverlayKind string

const (
	OverlayHeatmap OverlayKind = "heatmap"
	OverlayContour OverlayKind = "contour"
)

// OverlayKinds lists the valid overlay kind names for discovery.
func OverlayKinds() []string {
	return []string{string(OverlayHeatmap), string(OverlayContour)}
}

// RendererConfig carries the construction parameters for the rendering
// strategies, typically sourced from service configuration.
type RendererConfig struct {
	HeatmapPalette string
	HeatmapOpacity float64
	Contour        render.ContourOptions
}

// DefaultRendererConfig returns the standard renderer configuration.
func DefaultRendererConfig() RendererConfig {
	return RendererConfig{
		HeatmapPalette: "hot",
		HeatmapOpacity: 0.5,
		Contour:        render.DefaultContourOptions(),
	}
}

// SelectComparer constructs the comparer for the given kind. Sensitivity is
// captured at construction time; the returned comparer is stateless
// afterwards. Unknown kinds fail, never fall back to a default.
func SelectComparer(kind string, sensitivity int) (comparison.Comparer, error) {
	switch ComparisonKind(kind) {
	case ComparisonPixel:
		return comparison.NewPixelComparer(sensitivity), nil
	case ComparisonStructural:
		return comparison.NewStructuralComparer(sensitivity), nil
	default:
		return nil, apperrors.NewUnknownStrategyError(
			fmt.Sprintf("invalid comparison kind: %q", kind), nil)
	}
}

// SelectRenderer constructs the renderer for the given kind. Unknown kinds
// fail, never fall back to a default.
func SelectRenderer(kind string, cfg RendererConfig) (render.Renderer, error) {
	switch OverlayKind(kind) {
	case OverlayHeatmap:
		return render.NewHeatmapRenderer(cfg.HeatmapPalette, cfg.HeatmapOpacity)
	case OverlayContour:
		return render.NewContourRenderer(cfg.Contour)
	default:
		return nil, apperrors.NewUnknownStrategyError(
			fmt.Sprintf("invalid overlay kind: %q", kind), nil)
	}
}
