// Package service orchestrates a comparison request end to end: strategy
// selection, difference computation, overlay rendering and persistence.
package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	apperrors "go-image-differ/internal/errors"
	"go-image-differ/internal/logger"
	"go-image-differ/internal/store"
	"go-image-differ/internal/strategy"
	"go-image-differ/pkg/models"
)

// CompareRequest carries one comparison invocation: the two encoded images,
// the chosen strategies and the sensitivity knob.
type CompareRequest struct {
	Before      []byte
	After       []byte
	Comparison  string
	Overlay     string
	Sensitivity int
}

// ComparisonService exposes the comparison pipeline and result retrieval.
type ComparisonService interface {
	// Compare runs the full pipeline and returns the stored result id.
	Compare(ctx context.Context, req CompareRequest) (string, error)
	// GetResult returns a stored result by id.
	GetResult(ctx context.Context, id string) (*models.ComparisonResult, error)
	// ListResults returns the ids of all stored results.
	ListResults(ctx context.Context) ([]string, error)
	// ComparisonKinds and OverlayKinds list the valid strategy names.
	ComparisonKinds() []string
	OverlayKinds() []string
}

type comparisonService struct {
	results     store.ResultStore
	archiver    store.OverlayArchiver
	rendererCfg strategy.RendererConfig
}

// NewComparisonService creates the service. archiver may be nil when overlay
// archiving is not configured.
func NewComparisonService(
	results store.ResultStore,
	archiver store.OverlayArchiver,
	rendererCfg strategy.RendererConfig,
) ComparisonService {
	return &comparisonService{
		results:     results,
		archiver:    archiver,
		rendererCfg: rendererCfg,
	}
}

// Compare validates the request, builds both strategies, computes the
// difference, renders the overlay and persists the finished record. Partial
// results are never persisted: storage happens only after both computation
// and rendering succeed.
func (s *comparisonService) Compare(ctx context.Context, req CompareRequest) (string, error) {
	if req.Sensitivity < 0 || req.Sensitivity > 100 {
		return "", apperrors.NewValidationError(
			fmt.Sprintf("sensitivity must be between 0 and 100, got %d", req.Sensitivity), nil)
	}
	if len(req.Before) == 0 || len(req.After) == 0 {
		return "", apperrors.NewValidationError("uploaded images cannot be empty", nil)
	}

	comparer, err := strategy.SelectComparer(req.Comparison, req.Sensitivity)
	if err != nil {
		return "", err
	}
	renderer, err := strategy.SelectRenderer(req.Overlay, s.rendererCfg)
	if err != nil {
		return "", err
	}

	result, err := comparer.Compare(req.Before, req.After)
	if err != nil {
		return "", err
	}

	logger.WithFields(logrus.Fields{
		"comparison":  comparer.Name(),
		"overlay":     renderer.Name(),
		"sensitivity": req.Sensitivity,
		"score":       result.Score,
	}).Debug("Comparison computed")

	overlay, err := renderer.Render(req.After, result)
	if err != nil {
		return "", err
	}
	result.Overlay = overlay

	id, err := s.results.Create(ctx, result)
	if err != nil {
		return "", apperrors.NewInternalError("failed to save comparison result", err)
	}

	// Archiving is best effort; a failed upload never fails the request.
	if s.archiver != nil {
		if err := s.archiver.ArchiveOverlay(ctx, id, overlay); err != nil {
			logger.WithError(err).WithField("id", id).Warn("Failed to archive overlay")
		}
	}

	logger.WithFields(logrus.Fields{
		"id":    id,
		"score": result.Score,
	}).Info("Comparison stored")

	return id, nil
}

// GetResult returns a stored result by id.
func (s *comparisonService) GetResult(ctx context.Context, id string) (*models.ComparisonResult, error) {
	return s.results.Read(ctx, id)
}

// ListResults returns the ids of all stored results.
func (s *comparisonService) ListResults(ctx context.Context) ([]string, error) {
	return s.results.ReadAll(ctx)
}

// ComparisonKinds lists the valid comparison kind names.
func (s *comparisonService) ComparisonKinds() []string {
	return strategy.ComparisonKinds()
}

// OverlayKinds lists the valid overlay kind names.
func (s *comparisonService) OverlayKinds() []string {
	return strategy.OverlayKinds()
}
