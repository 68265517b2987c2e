// Package generator defines the recipe generation contract and the helpers
// shared by the LLM-backed implementations.
package generator

import (
	"context"
	"errors"

	"pantrypilot/recipe"
)

// ErrUnavailable is returned when the provider is short-circuited.
var ErrUnavailable = errors.New("recipe generator unavailable")

// Request describes the recipes a caller wants generated.
type Request struct {
	Pantry         []recipe.PantryItem
	MinPrepTime    int
	MaxPrepTime    int
	ExcludedTitles []string
	Count          int
}

// Generator produces candidate recipes. Results may be fewer than requested,
// duplicated, or invalid; callers deduplicate and validate.
type Generator interface {
	Generate(ctx context.Context, req Request) ([]recipe.Recipe, error)
}

// Func adapts a function to the Generator interface.
type Func func(ctx context.Context, req Request) ([]recipe.Recipe, error)

func (f Func) Generate(ctx context.Context, req Request) ([]recipe.Recipe, error) {
	return f(ctx, req)
}
