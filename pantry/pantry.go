// Package pantry stores the user's default pantry, used when a match request
// arrives without ingredients.
package pantry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"pantrypilot/recipe"
	"pantrypilot/storage"
)

// Store returns and replaces the stored pantry.
type Store interface {
	Items(ctx context.Context) ([]recipe.PantryItem, error)
	Replace(ctx context.Context, items []recipe.PantryItem) error
}

// Ingredient is the persisted form of a pantry item.
type Ingredient struct {
	Name string  `json:"name"`
	Qty  float64 `json:"qty"`
	Unit string  `json:"unit"`
}

type Pantry struct {
	Ingredients []Ingredient `json:"ingredients"`
}

// BlobStore keeps the pantry as one JSON document. It is safe for concurrent use.
type BlobStore struct {
	mu   sync.Mutex
	blob storage.Blob
}

func NewBlobStore(blob storage.Blob) *BlobStore {
	return &BlobStore{blob: blob}
}

// Items returns the stored pantry. A missing document is an empty pantry.
func (s *BlobStore) Items(ctx context.Context) ([]recipe.PantryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.blob.Load(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return []recipe.PantryItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read pantry: %w", err)
	}

	var p Pantry
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("parse pantry: %w", err)
	}

	items := make([]recipe.PantryItem, 0, len(p.Ingredients))
	for _, ing := range p.Ingredients {
		items = append(items, recipe.PantryItem{Name: ing.Name, Quantity: ing.Qty, Unit: ing.Unit})
	}
	return items, nil
}

func (s *BlobStore) Replace(ctx context.Context, items []recipe.PantryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := Pantry{Ingredients: make([]Ingredient, 0, len(items))}
	for _, it := range items {
		p.Ingredients = append(p.Ingredients, Ingredient{Name: it.Name, Qty: it.Quantity, Unit: it.Unit})
	}

	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode pantry: %w", err)
	}
	if err := s.blob.Save(ctx, b); err != nil {
		return fmt.Errorf("write pantry: %w", err)
	}
	return nil
}
