package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"pantrypilot/pantry"
	"pantrypilot/recipe"
)

type matchInput struct {
	Ingredients []recipe.PantryItem `json:"ingredients" validate:"dive"`
	MinPrepTime int                 `json:"minPrepTime" validate:"gte=0"`
	MaxPrepTime int                 `json:"maxPrepTime" validate:"gtefield=MinPrepTime"`
	BatchSize   int                 `json:"batchSize" validate:"gte=0"`
}

// RecipeMatch starts a pagination session. Without ingredients it matches
// against the stored pantry.
type RecipeMatch struct {
	paginator    Paginator
	pantry       pantry.Store
	defaultBatch int
}

func NewRecipeMatch(p Paginator, store pantry.Store, defaultBatch int) *RecipeMatch {
	return &RecipeMatch{paginator: p, pantry: store, defaultBatch: defaultBatch}
}

func (t *RecipeMatch) Name() string  { return "recipe_match" }
func (t *RecipeMatch) Title() string { return "Match Recipes" }
func (t *RecipeMatch) Description() string {
	return "Finds recipes cookable from the given ingredients within a prep-time window and returns the first batch with a session token."
}

func (t *RecipeMatch) InputSchema() *jsonschema.Schema {
	minZero := 0.0
	minOne := 1.0
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"ingredients": {Type: "array", Items: ingredientSchema()},
			"minPrepTime": {Type: "integer", Minimum: &minZero},
			"maxPrepTime": {Type: "integer", Minimum: &minZero},
			"batchSize":   {Type: "integer", Minimum: &minOne},
		},
		Required: []string{"minPrepTime", "maxPrepTime"},
	}
}

func (t *RecipeMatch) OutputSchema() *jsonschema.Schema { return resultSchema() }

func (t *RecipeMatch) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	var in matchInput
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}

	items := in.Ingredients
	if len(items) == 0 && t.pantry != nil {
		stored, err := t.pantry.Items(ctx)
		if err != nil {
			return nil, fmt.Errorf("load stored pantry: %w", err)
		}
		items = stored
	}

	res, err := t.paginator.StartSession(ctx, items, in.MinPrepTime, in.MaxPrepTime, batchOr(in.BatchSize, t.defaultBatch))
	if err != nil {
		return nil, err
	}
	return encodeOutput(res)
}

func batchOr(n, fallback int) int {
	if n > 0 {
		return n
	}
	return fallback
}
