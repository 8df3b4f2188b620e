package store

import (
	"context"
	"sync"
	"testing"

	apperrors "go-image-differ/internal/errors"
	"go-image-differ/pkg/models"
)

func TestMemoryStore_CreateAndRead(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	result := &models.ComparisonResult{Score: 42.5, Overlay: []byte("png-bytes")}

	id, err := s.Create(ctx, result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty id")
	}

	got, err := s.Read(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Score != 42.5 {
		t.Errorf("expected score 42.5, got %f", got.Score)
	}
	if string(got.Overlay) != "png-bytes" {
		t.Errorf("overlay bytes changed in storage")
	}
}

func TestMemoryStore_ReadMissing(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Read(context.Background(), "does-not-exist")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestMemoryStore_CreateNil(t *testing.T) {
	s := NewMemoryStore()

	if _, err := s.Create(context.Background(), nil); err == nil {
		t.Error("expected error for nil result")
	}
}

func TestMemoryStore_ReadAll(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	ids, err := s.ReadAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected empty store, got %d ids", len(ids))
	}

	created := make(map[string]bool)
	for i := 0; i < 5; i++ {
		id, err := s.Create(ctx, &models.ComparisonResult{Score: float64(i)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		created[id] = true
	}

	ids, err = s.ReadAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 5 {
		t.Fatalf("expected 5 ids, got %d", len(ids))
	}
	for _, id := range ids {
		if !created[id] {
			t.Errorf("unexpected id %q in listing", id)
		}
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := s.Create(ctx, &models.ComparisonResult{Score: float64(i)})
			if err != nil {
				t.Errorf("create failed: %v", err)
				return
			}
			if _, err := s.Read(ctx, id); err != nil {
				t.Errorf("read failed: %v", err)
			}
			if _, err := s.ReadAll(ctx); err != nil {
				t.Errorf("read all failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	ids, err := s.ReadAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 50 {
		t.Errorf("expected 50 stored results, got %d", len(ids))
	}

	// Ids must be unique.
	seen := make(map[string]bool)
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
