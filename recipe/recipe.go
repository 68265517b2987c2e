// Package recipe holds the domain types shared by matching, generation and
// session pagination.
package recipe

import "strings"

// Origin records where a recipe came from.
type Origin string

const (
	OriginStored    Origin = "stored"
	OriginGenerated Origin = "generated"
)

// PantryItem is one ingredient the user currently has.
type PantryItem struct {
	Name     string  `json:"ingredientName" validate:"required"`
	Quantity float64 `json:"quantity" validate:"gte=0"`
	Unit     string  `json:"unit"`
}

// IngredientRequirement is one line of a recipe's ingredient list.
type IngredientRequirement struct {
	Name     string  `json:"ingredientName" validate:"required"`
	Quantity float64 `json:"quantity" validate:"gte=0"`
	Unit     string  `json:"unit"`
}

type Recipe struct {
	ID              string                  `json:"id"`
	Title           string                  `json:"title" validate:"required"`
	Instructions    string                  `json:"instructions"`
	PrepTimeMinutes int                     `json:"prepTime" validate:"gte=0"`
	Ingredients     []IngredientRequirement `json:"ingredients" validate:"required,min=1,dive"`
	Origin          Origin                  `json:"origin"`
}

// Key is the canonical identity of the recipe.
func (r Recipe) Key() string { return NormalizeTitle(r.Title) }

// IsGenerated reports whether the recipe came from a generator.
func (r Recipe) IsGenerated() bool { return r.Origin == OriginGenerated }

// Clone returns a deep copy so callers never share ingredient slices.
func (r Recipe) Clone() Recipe {
	out := r
	if r.Ingredients != nil {
		out.Ingredients = make([]IngredientRequirement, len(r.Ingredients))
		copy(out.Ingredients, r.Ingredients)
	}
	return out
}

// CloneAll deep copies a slice of recipes.
func CloneAll(rs []Recipe) []Recipe {
	if rs == nil {
		return nil
	}
	out := make([]Recipe, len(rs))
	for i, r := range rs {
		out[i] = r.Clone()
	}
	return out
}

// ClonePantry copies a pantry snapshot.
func ClonePantry(items []PantryItem) []PantryItem {
	out := make([]PantryItem, len(items))
	copy(out, items)
	return out
}

// NormalizeTitle is the canonical form used for title identity everywhere.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// NormalizeName canonicalizes ingredient names.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// PantryNames returns the distinct normalized, non-empty pantry ingredient names in pantry order.
func PantryNames(items []PantryItem) []string {
	seen := make(map[string]struct{}, len(items))
	names := make([]string, 0, len(items))
	for _, it := range items {
		n := NormalizeName(it.Name)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		names = append(names, n)
	}
	return names
}
