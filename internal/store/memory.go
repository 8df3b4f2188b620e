// Package store persists finished comparison results. The engine never
// touches a store mid-computation; it only hands over completed records.
package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	apperrors "go-image-differ/internal/errors"
	"go-image-differ/pkg/models"
)

// ResultStore is a key-value store of comparison results keyed by a
// generated identifier. Implementations must serialize concurrent writes.
type ResultStore interface {
	// Create stores a result and returns its generated identifier.
	Create(ctx context.Context, result *models.ComparisonResult) (string, error)
	// Read returns the result for the given identifier, or a not-found error.
	Read(ctx context.Context, id string) (*models.ComparisonResult, error)
	// ReadAll returns the identifiers of all stored results.
	ReadAll(ctx context.Context) ([]string, error)
}

// MemoryStore is a mutex-guarded in-memory ResultStore. Stored results have
// no durability guarantees and do not survive process restarts.
type MemoryStore struct {
	mu      sync.RWMutex
	results map[string]*models.ComparisonResult
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		results: make(map[string]*models.ComparisonResult),
	}
}

// Create stores a result under a fresh uuid and returns the id.
func (s *MemoryStore) Create(ctx context.Context, result *models.ComparisonResult) (string, error) {
	if result == nil {
		return "", apperrors.NewInternalError("cannot store nil comparison result", nil)
	}

	id := uuid.NewString()

	s.mu.Lock()
	s.results[id] = result
	s.mu.Unlock()

	return id, nil
}

// Read returns the result for id, failing with a not-found error if absent.
func (s *MemoryStore) Read(ctx context.Context, id string) (*models.ComparisonResult, error) {
	s.mu.RLock()
	result, ok := s.results[id]
	s.mu.RUnlock()

	if !ok {
		return nil, apperrors.NewNotFoundError("no result found for ID "+id, nil)
	}
	return result, nil
}

// ReadAll returns all stored result identifiers.
func (s *MemoryStore) ReadAll(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.results))
	for id := range s.results {
		ids = append(ids, id)
	}
	return ids, nil
}
