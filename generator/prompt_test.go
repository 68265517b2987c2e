package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pantrypilot/recipe"
)

func TestBuildPrompt(t *testing.T) {
	tests := []struct {
		name        string
		req         Request
		contains    []string
		notContains []string
	}{
		{
			name: "lists pantry and exclusions",
			req: Request{
				Pantry: []recipe.PantryItem{
					{Name: "flour", Quantity: 500, Unit: "g"},
					{Name: "eggs", Quantity: 2},
					{Name: "  "},
				},
				MinPrepTime:    10,
				MaxPrepTime:    30,
				ExcludedTitles: []string{"pancakes", "crepes"},
				Count:          2,
			},
			contains: []string{
				"Generate 2 recipes",
				"500 g flour, 2 eggs.",
				"between 10 and 30 minutes",
				"Do not use titles: pancakes, crepes.",
				"Return ONLY a valid JSON array",
			},
		},
		{
			name: "no exclusions and no prep window",
			req: Request{
				Pantry: []recipe.PantryItem{{Name: "rice", Quantity: 1.5, Unit: "kg"}},
				Count:  1,
			},
			contains:    []string{"Generate 1 recipes", "1.5 kg rice"},
			notContains: []string{"Do not use titles", "Preparation time"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildPrompt(tt.req)
			for _, s := range tt.contains {
				assert.Contains(t, got, s)
			}
			for _, s := range tt.notContains {
				assert.NotContains(t, got, s)
			}
		})
	}
}
