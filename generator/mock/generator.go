// Package mock provides a deterministic recipe generator for local runs and
// tests. It renders the same JSON a model would return and feeds it through the
// shared parser, so the parsing path is exercised without a network call.
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"pantrypilot/generator"
	"pantrypilot/recipe"
)

var styles = []string{"Skillet", "Bake", "Stir-Fry", "Soup", "Salad", "Frittata", "Curry", "Bowl"}

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate builds up to req.Count recipes around the pantry items, skipping
// excluded titles. Every recipe only uses pantry items at half their quantity
// so it is always satisfiable by the requesting pantry.
func (g *Generator) Generate(ctx context.Context, req generator.Request) ([]recipe.Recipe, error) {
	slog.Info("GENERATOR: Mock invoked", "count", req.Count, "excluded", len(req.ExcludedTitles))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items := make([]recipe.PantryItem, 0, len(req.Pantry))
	for _, it := range req.Pantry {
		if recipe.NormalizeName(it.Name) != "" {
			items = append(items, it)
		}
	}
	if len(items) == 0 || req.Count <= 0 {
		return []recipe.Recipe{}, nil
	}

	excluded := make(map[string]struct{}, len(req.ExcludedTitles))
	for _, t := range req.ExcludedTitles {
		excluded[recipe.NormalizeTitle(t)] = struct{}{}
	}

	prep := req.MinPrepTime
	if prep <= 0 {
		prep = 15
	}

	type wireIngredient struct {
		IngredientName string  `json:"ingredientName"`
		Quantity       float64 `json:"quantity"`
		Unit           string  `json:"unit"`
	}
	type wireRecipe struct {
		Title        string           `json:"title"`
		Instructions string           `json:"instructions"`
		PrepTime     int              `json:"prepTime"`
		Ingredients  []wireIngredient `json:"ingredients"`
	}

	out := make([]wireRecipe, 0, req.Count)
	for i := 0; len(out) < req.Count && i < len(items)*len(styles); i++ {
		lead := items[i%len(items)]
		title := fmt.Sprintf("%s %s", titleCase(recipe.NormalizeName(lead.Name)), styles[(i/len(items))%len(styles)])
		if _, skip := excluded[recipe.NormalizeTitle(title)]; skip {
			continue
		}
		excluded[recipe.NormalizeTitle(title)] = struct{}{}

		ings := []wireIngredient{{IngredientName: lead.Name, Quantity: lead.Quantity / 2, Unit: lead.Unit}}
		if len(items) > 1 {
			side := items[(i+1)%len(items)]
			ings = append(ings, wireIngredient{IngredientName: side.Name, Quantity: side.Quantity / 2, Unit: side.Unit})
		}

		out = append(out, wireRecipe{
			Title:        title,
			Instructions: fmt.Sprintf("Prepare the %s and cook until done.", recipe.NormalizeName(lead.Name)),
			PrepTime:     prep,
			Ingredients:  ings,
		})
	}

	b, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal mock recipes: %w", err)
	}

	slog.Info("GENERATOR: Mock returning recipes", "count", len(out))
	return generator.ParseRecipes(string(b))
}

func titleCase(s string) string {
	b := []byte(s)
	upper := true
	for i, c := range b {
		if upper && c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
		upper = c == ' '
	}
	return string(b)
}
