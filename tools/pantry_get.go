package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"pantrypilot/pantry"
	"pantrypilot/recipe"
)

type PantryGet struct{ store pantry.Store }

func NewPantryGet(store pantry.Store) *PantryGet { return &PantryGet{store: store} }

func (t *PantryGet) Name() string  { return "pantry_get" }
func (t *PantryGet) Title() string { return "Get Stored Pantry" }
func (t *PantryGet) Description() string {
	return "Returns the stored pantry used when a match request carries no ingredients."
}

func (t *PantryGet) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object"}
}

func (t *PantryGet) OutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"pantry": {
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"ingredients": {Type: "array", Items: ingredientSchema()},
				},
				Required: []string{"ingredients"},
			},
		},
		Required: []string{"pantry"},
	}
}

func (t *PantryGet) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	items, err := t.store.Items(ctx)
	if err != nil {
		return nil, err
	}

	out := struct {
		Pantry struct {
			Ingredients []recipe.PantryItem `json:"ingredients"`
		} `json:"pantry"`
	}{}
	out.Pantry.Ingredients = make([]recipe.PantryItem, 0, len(items))
	out.Pantry.Ingredients = append(out.Pantry.Ingredients, items...)

	return encodeOutput(out)
}
