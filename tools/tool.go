// Package tools exposes pantry and pagination operations as JSON-schema
// described tools, callable over HTTP or from the Lambda entrypoint.
package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"pantrypilot/coordinator"
	"pantrypilot/recipe"
)

type Tool interface {
	Name() string
	Title() string
	Description() string
	InputSchema() *jsonschema.Schema
	OutputSchema() *jsonschema.Schema
	Run(ctx context.Context, input map[string]any) (output map[string]any, err error)
}

type Call struct {
	Name      string         `json:"name"`
	Input     map[string]any `json:"input"`
	ToolUseID string         `json:"tool_use_id,omitempty"`
}

// Paginator is the slice of the coordinator the recipe tools drive.
type Paginator interface {
	StartSession(ctx context.Context, pantry []recipe.PantryItem, minPrep, maxPrep, batchSize int) (coordinator.Result, error)
	NextBatch(ctx context.Context, token string, batchSize int) (coordinator.Result, error)
	EndSession(ctx context.Context, token string) bool
}
