package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

type endInput struct {
	Token string `json:"token" validate:"required"`
}

type RecipeEnd struct{ paginator Paginator }

func NewRecipeEnd(p Paginator) *RecipeEnd { return &RecipeEnd{paginator: p} }

func (t *RecipeEnd) Name() string        { return "recipe_end" }
func (t *RecipeEnd) Title() string       { return "End Recipe Session" }
func (t *RecipeEnd) Description() string { return "Discards a pagination session." }

func (t *RecipeEnd) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:       "object",
		Properties: map[string]*jsonschema.Schema{"token": {Type: "string"}},
		Required:   []string{"token"},
	}
}

func (t *RecipeEnd) OutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:       "object",
		Properties: map[string]*jsonschema.Schema{"ended": {Type: "boolean"}},
		Required:   []string{"ended"},
	}
}

func (t *RecipeEnd) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	var in endInput
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}
	return map[string]any{"ended": t.paginator.EndSession(ctx, in.Token)}, nil
}
