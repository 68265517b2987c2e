package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"pantrypilot/recipe"
	"pantrypilot/storage"
)

type document struct {
	Recipes []recipe.Recipe `json:"recipes"`
}

// BlobStore serves queries from memory and writes the whole catalog back to
// its blob on every accepted Save. Saves are serialized so the last document
// written always holds every accepted recipe.
type BlobStore struct {
	*MemoryStore
	mu   sync.Mutex
	blob storage.Blob
}

// NewBlobStore loads the catalog document. A missing document starts empty.
func NewBlobStore(ctx context.Context, blob storage.Blob) (*BlobStore, error) {
	b, err := blob.Load(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		slog.Info("CATALOG: No recipe document yet, starting empty")
		return &BlobStore{MemoryStore: NewMemoryStore(), blob: blob}, nil
	case err != nil:
		return nil, fmt.Errorf("read recipes: %w", err)
	}

	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse recipes: %w", err)
	}

	slog.Info("CATALOG: Recipe document loaded", "recipes", len(doc.Recipes))
	return &BlobStore{MemoryStore: NewMemoryStoreWith(doc.Recipes), blob: blob}, nil
}

// Save inserts r and writes the catalog. A failed write removes r again, so
// the catalog never serves a recipe its document does not hold.
func (s *BlobStore) Save(ctx context.Context, r recipe.Recipe) (recipe.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.MemoryStore.Save(ctx, r)
	if err != nil {
		return saved, err
	}
	if err := s.flush(ctx); err != nil {
		s.MemoryStore.remove(saved.ID)
		return recipe.Recipe{}, err
	}
	return saved, nil
}

// flush must be called with s.mu held.
func (s *BlobStore) flush(ctx context.Context) error {
	all, err := s.MemoryStore.List(ctx)
	if err != nil {
		return fmt.Errorf("list recipes: %w", err)
	}
	b, err := json.MarshalIndent(document{Recipes: all}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode recipes: %w", err)
	}
	if err := s.blob.Save(ctx, b); err != nil {
		return fmt.Errorf("write recipes: %w", err)
	}
	return nil
}
