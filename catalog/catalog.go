// Package catalog persists stored and accepted generated recipes.
package catalog

import (
	"context"
	"errors"

	"pantrypilot/matching"
	"pantrypilot/recipe"
)

var (
	ErrNotFound       = errors.New("recipe not found")
	ErrDuplicateTitle = errors.New("recipe title already exists")
)

// Store is the recipe catalog. Titles are unique case-insensitively.
type Store interface {
	matching.Source

	// Save assigns an ID when missing and persists r. When a recipe with the
	// same normalized title exists, Save returns that recipe and ErrDuplicateTitle.
	Save(ctx context.Context, r recipe.Recipe) (recipe.Recipe, error)
	FindByTitle(ctx context.Context, title string) (recipe.Recipe, error)
	Get(ctx context.Context, id string) (recipe.Recipe, error)
	List(ctx context.Context) ([]recipe.Recipe, error)
}

// inWindow reports whether r passes the coarse pre-filter: prep time in
// [minPrep, maxPrep] and at least one ingredient named in names.
func inWindow(r recipe.Recipe, minPrep, maxPrep int, names map[string]struct{}) bool {
	if r.PrepTimeMinutes < minPrep || r.PrepTimeMinutes > maxPrep {
		return false
	}
	for _, ing := range r.Ingredients {
		if _, ok := names[recipe.NormalizeName(ing.Name)]; ok {
			return true
		}
	}
	return false
}

func nameSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[recipe.NormalizeName(n)] = struct{}{}
	}
	return set
}
