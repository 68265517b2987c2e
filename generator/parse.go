package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"pantrypilot/recipe"
)

// ErrNoRecipes is returned when model output holds no JSON array.
var ErrNoRecipes = errors.New("no recipe array in model output")

type wireIngredient struct {
	IngredientName string `json:"ingredientName"`
	Name           string `json:"name"`
	Quantity       any    `json:"quantity"`
	Unit           string `json:"unit"`
}

type wireRecipe struct {
	Title        string           `json:"title"`
	Instructions any              `json:"instructions"`
	PrepTime     any              `json:"prepTime"`
	Ingredients  []wireIngredient `json:"ingredients"`
}

// ParseRecipes extracts generated recipes from raw model output. It takes the
// outermost JSON array, strips // and /* */ comments outside strings, and drops
// ingredients whose quantity is not numeric.
func ParseRecipes(text string) ([]recipe.Recipe, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end == -1 || start >= end {
		return nil, ErrNoRecipes
	}

	var wire []wireRecipe
	if err := json.Unmarshal([]byte(stripComments(text[start:end+1])), &wire); err != nil {
		return nil, fmt.Errorf("parse generated recipes: %w", err)
	}

	out := make([]recipe.Recipe, 0, len(wire))
	for _, w := range wire {
		r := recipe.Recipe{
			Title:           strings.TrimSpace(w.Title),
			Instructions:    instructionsText(w.Instructions),
			PrepTimeMinutes: prepMinutes(w.PrepTime),
			Origin:          recipe.OriginGenerated,
		}
		for _, wi := range w.Ingredients {
			name := wi.IngredientName
			if name == "" {
				name = wi.Name
			}
			qty, ok := quantity(wi.Quantity)
			if !ok {
				slog.Warn("GENERATOR: Skipping ingredient with invalid quantity", "recipe", r.Title, "ingredient", name)
				continue
			}
			r.Ingredients = append(r.Ingredients, recipe.IngredientRequirement{
				Name:     strings.TrimSpace(name),
				Quantity: qty,
				Unit:     strings.TrimSpace(wi.Unit),
			})
		}
		out = append(out, r)
	}

	return out, nil
}

func quantity(v any) (float64, bool) {
	switch q := v.(type) {
	case float64:
		return q, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(q), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// prepMinutes accepts 20, "20" and "20 minutes".
func prepMinutes(v any) int {
	switch p := v.(type) {
	case float64:
		return int(p)
	case string:
		s := strings.TrimSpace(p)
		i := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		n, _ := strconv.Atoi(s[:i])
		return n
	default:
		return 0
	}
}

func instructionsText(v any) string {
	switch in := v.(type) {
	case string:
		return strings.TrimSpace(in)
	case []any:
		steps := make([]string, 0, len(in))
		for _, s := range in {
			if str, ok := s.(string); ok && strings.TrimSpace(str) != "" {
				steps = append(steps, strings.TrimSpace(str))
			}
		}
		return strings.Join(steps, "\n")
	default:
		return ""
	}
}

// stripComments removes // line comments and /* */ block comments that sit
// outside JSON strings.
func stripComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			b.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		if c == '"' {
			inString = true
			b.WriteByte(c)
			continue
		}

		if c == '/' && i+1 < len(s) {
			switch s[i+1] {
			case '/':
				for i < len(s) && s[i] != '\n' {
					i++
				}
				if i < len(s) {
					b.WriteByte('\n')
				}
				continue
			case '*':
				endIdx := strings.Index(s[i+2:], "*/")
				if endIdx == -1 {
					return b.String()
				}
				i += 2 + endIdx + 1
				continue
			}
		}

		b.WriteByte(c)
	}

	return b.String()
}
