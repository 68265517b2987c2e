package tools

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

// ErrInvalidInput wraps every input decoding or validation failure.
var ErrInvalidInput = errors.New("invalid tool input")

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeInput maps the loosely typed tool input onto dst and validates it.
func decodeInput(input map[string]any, dst any) error {
	if input == nil {
		input = map[string]any{}
	}
	b, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// encodeOutput marshals v to a map to keep outputs uniform.
func encodeOutput(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode tool output: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("encode tool output: %w", err)
	}
	return m, nil
}

func ingredientSchema() *jsonschema.Schema {
	minQty := 0.0
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"ingredientName": {Type: "string"},
			"quantity":       {Type: "number", Minimum: &minQty},
			"unit":           {Type: "string"},
		},
		Required: []string{"ingredientName", "quantity"},
	}
}

func resultSchema() *jsonschema.Schema {
	minZero := 0.0
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"token": {Type: "string"},
			"recipes": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"id":           {Type: "string"},
						"title":        {Type: "string"},
						"instructions": {Type: "string"},
						"prepTime":     {Type: "integer", Minimum: &minZero},
						"origin":       {Type: "string"},
						"ingredients":  {Type: "array", Items: ingredientSchema()},
					},
					Required: []string{"title", "ingredients"},
				},
			},
			"state":                {Type: "string"},
			"message":              {Type: "string"},
			"generatedServedCount": {Type: "integer", Minimum: &minZero},
			"remainingQuota":       {Type: "integer", Minimum: &minZero},
		},
		Required: []string{"recipes", "state"},
	}
}
