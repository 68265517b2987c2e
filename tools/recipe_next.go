package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

type nextInput struct {
	Token     string `json:"token" validate:"required"`
	BatchSize int    `json:"batchSize" validate:"gte=0"`
}

type RecipeNext struct {
	paginator    Paginator
	defaultBatch int
}

func NewRecipeNext(p Paginator, defaultBatch int) *RecipeNext {
	return &RecipeNext{paginator: p, defaultBatch: defaultBatch}
}

func (t *RecipeNext) Name() string  { return "recipe_next" }
func (t *RecipeNext) Title() string { return "Next Recipe Batch" }
func (t *RecipeNext) Description() string {
	return "Returns the next batch of recipes for a session token, generating more when the stored matches run out."
}

func (t *RecipeNext) InputSchema() *jsonschema.Schema {
	minOne := 1.0
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"token":     {Type: "string"},
			"batchSize": {Type: "integer", Minimum: &minOne},
		},
		Required: []string{"token"},
	}
}

func (t *RecipeNext) OutputSchema() *jsonschema.Schema { return resultSchema() }

func (t *RecipeNext) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	var in nextInput
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}
	res, err := t.paginator.NextBatch(ctx, in.Token, batchOr(in.BatchSize, t.defaultBatch))
	if err != nil {
		return nil, err
	}
	return encodeOutput(res)
}
