package matching

import (
	"strings"

	"pantrypilot/recipe"
)

// FindPantryItem locates the pantry item that stands in for a required
// ingredient name. Lookup order is exact name, the name without a trailing
// "es", the name without a trailing "s", then substring containment in either
// direction. The first hit in pantry order wins.
func FindPantryItem(name string, pantry []recipe.PantryItem) (recipe.PantryItem, bool) {
	want := recipe.NormalizeName(name)
	if want == "" {
		return recipe.PantryItem{}, false
	}

	if it, ok := exact(want, pantry); ok {
		return it, true
	}
	if stem, ok := strings.CutSuffix(want, "es"); ok && stem != "" {
		if it, ok := exact(stem, pantry); ok {
			return it, true
		}
	}
	if stem, ok := strings.CutSuffix(want, "s"); ok && stem != "" {
		if it, ok := exact(stem, pantry); ok {
			return it, true
		}
	}

	for _, it := range pantry {
		have := recipe.NormalizeName(it.Name)
		if have == "" {
			continue
		}
		if strings.Contains(have, want) || strings.Contains(want, have) {
			return it, true
		}
	}

	return recipe.PantryItem{}, false
}

func exact(name string, pantry []recipe.PantryItem) (recipe.PantryItem, bool) {
	for _, it := range pantry {
		if recipe.NormalizeName(it.Name) == name {
			return it, true
		}
	}
	return recipe.PantryItem{}, false
}

// CanSatisfy reports whether the pantry holds enough of one required ingredient.
func CanSatisfy(req recipe.IngredientRequirement, pantry []recipe.PantryItem) bool {
	it, ok := FindPantryItem(req.Name, pantry)
	if !ok {
		return false
	}
	return Convert(it.Quantity, it.Unit, req.Unit) >= req.Quantity
}

// Satisfiable reports whether every ingredient of r is covered by the pantry.
// Each requirement is checked against the full pantry; stock is never consumed.
func Satisfiable(r recipe.Recipe, pantry []recipe.PantryItem) bool {
	if len(r.Ingredients) == 0 {
		return false
	}
	for _, req := range r.Ingredients {
		if !CanSatisfy(req, pantry) {
			return false
		}
	}
	return true
}
