package matching

import (
	"context"
	"fmt"
	"log/slog"

	"pantrypilot/recipe"
)

// Source is a coarse recipe pre-filter: it returns recipes whose prep time falls
// in [min, max] and that share at least one ingredient name with names.
type Source interface {
	QueryByPrepTimeAndIngredientNames(ctx context.Context, minPrep, maxPrep int, names []string) ([]recipe.Recipe, error)
}

// Engine finds stored recipes that can be cooked from a pantry.
type Engine struct {
	source Source
}

func NewEngine(source Source) *Engine {
	return &Engine{source: source}
}

// FindMatches returns the satisfiable recipes in the order the source produced them.
func (e *Engine) FindMatches(ctx context.Context, pantry []recipe.PantryItem, minPrep, maxPrep int) ([]recipe.Recipe, error) {
	names := recipe.PantryNames(pantry)
	if len(names) == 0 {
		return []recipe.Recipe{}, nil
	}

	candidates, err := e.source.QueryByPrepTimeAndIngredientNames(ctx, minPrep, maxPrep, names)
	if err != nil {
		return nil, fmt.Errorf("query candidate recipes: %w", err)
	}

	matches := make([]recipe.Recipe, 0, len(candidates))
	for _, r := range candidates {
		if Satisfiable(r, pantry) {
			r.Origin = recipe.OriginStored
			matches = append(matches, r)
		}
	}

	slog.Debug("MATCHING: Candidates filtered",
		"candidates", len(candidates),
		"matches", len(matches),
		"min_prep", minPrep,
		"max_prep", maxPrep)

	return matches, nil
}
