package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pantrypilot/recipe"
)

func TestFindPantryItem(t *testing.T) {
	pantry := []recipe.PantryItem{
		{Name: "Tomato", Quantity: 4, Unit: ""},
		{Name: "potato", Quantity: 2, Unit: ""},
		{Name: "egg", Quantity: 6, Unit: ""},
		{Name: "whole milk", Quantity: 1, Unit: "l"},
		{Name: "", Quantity: 100, Unit: "g"},
	}

	tests := []struct {
		name     string
		want     string
		found    bool
		expected string
	}{
		{name: "exact", want: "egg", found: true, expected: "egg"},
		{name: "case insensitive exact", want: " TOMATO ", found: true, expected: "Tomato"},
		{name: "es plural", want: "potatoes", found: true, expected: "potato"},
		{name: "s plural", want: "eggs", found: true, expected: "egg"},
		{name: "requirement inside pantry name", want: "milk", found: true, expected: "whole milk"},
		{name: "pantry name inside requirement", want: "free range egg yolk", found: true, expected: "egg"},
		{name: "no match", want: "saffron", found: false},
		{name: "empty requirement", want: "  ", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it, ok := FindPantryItem(tt.want, pantry)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.expected, it.Name)
			}
		})
	}
}

func TestFindPantryItem_ExactBeatsSubstring(t *testing.T) {
	pantry := []recipe.PantryItem{
		{Name: "brown sugar", Quantity: 1},
		{Name: "sugar", Quantity: 2},
	}

	it, ok := FindPantryItem("sugar", pantry)
	assert.True(t, ok)
	assert.Equal(t, 2.0, it.Quantity)
}

func TestCanSatisfy(t *testing.T) {
	pantry := []recipe.PantryItem{
		{Name: "flour", Quantity: 500, Unit: "g"},
		{Name: "milk", Quantity: 1, Unit: "l"},
		{Name: "oil", Quantity: 2, Unit: "tbsp"},
	}

	tests := []struct {
		name string
		req  recipe.IngredientRequirement
		want bool
	}{
		{"enough flour", recipe.IngredientRequirement{Name: "flour", Quantity: 300, Unit: "g"}, true},
		{"exactly enough flour", recipe.IngredientRequirement{Name: "flour", Quantity: 0.5, Unit: "kg"}, true},
		{"not enough flour", recipe.IngredientRequirement{Name: "flour", Quantity: 600, Unit: "g"}, false},
		{"milk in ml", recipe.IngredientRequirement{Name: "milk", Quantity: 200, Unit: "ml"}, true},
		{"oil in ml", recipe.IngredientRequirement{Name: "oil", Quantity: 30, Unit: "ml"}, true},
		{"oil over", recipe.IngredientRequirement{Name: "oil", Quantity: 31, Unit: "ml"}, false},
		{"cross family compares raw quantities", recipe.IngredientRequirement{Name: "milk", Quantity: 1, Unit: "g"}, true},
		{"missing ingredient", recipe.IngredientRequirement{Name: "butter", Quantity: 1, Unit: "g"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanSatisfy(tt.req, pantry))
		})
	}
}

func TestSatisfiable(t *testing.T) {
	pantry := []recipe.PantryItem{
		{Name: "flour", Quantity: 500, Unit: "g"},
		{Name: "milk", Quantity: 1, Unit: "l"},
	}

	t.Run("flour and milk pancakes", func(t *testing.T) {
		r := recipe.Recipe{Title: "Pancakes", Ingredients: []recipe.IngredientRequirement{
			{Name: "flour", Quantity: 300, Unit: "g"},
			{Name: "milk", Quantity: 200, Unit: "ml"},
		}}
		assert.True(t, Satisfiable(r, pantry))
	})

	t.Run("requirements reuse the full pantry quantity", func(t *testing.T) {
		r := recipe.Recipe{Title: "Double flour", Ingredients: []recipe.IngredientRequirement{
			{Name: "flour", Quantity: 400, Unit: "g"},
			{Name: "flour", Quantity: 400, Unit: "g"},
		}}
		assert.True(t, Satisfiable(r, pantry))
	})

	t.Run("one missing ingredient", func(t *testing.T) {
		r := recipe.Recipe{Title: "Crepes", Ingredients: []recipe.IngredientRequirement{
			{Name: "flour", Quantity: 100, Unit: "g"},
			{Name: "eggs", Quantity: 2},
		}}
		assert.False(t, Satisfiable(r, pantry))
	})

	t.Run("no ingredients", func(t *testing.T) {
		assert.False(t, Satisfiable(recipe.Recipe{Title: "Air"}, pantry))
	})
}

func BenchmarkSatisfiable(b *testing.B) {
	pantry := []recipe.PantryItem{
		{Name: "flour", Quantity: 500, Unit: "g"},
		{Name: "milk", Quantity: 1, Unit: "l"},
		{Name: "eggs", Quantity: 6},
		{Name: "butter", Quantity: 250, Unit: "g"},
		{Name: "sugar", Quantity: 1, Unit: "kg"},
	}
	r := recipe.Recipe{Title: "Cake", Ingredients: []recipe.IngredientRequirement{
		{Name: "flour", Quantity: 300, Unit: "g"},
		{Name: "milk", Quantity: 200, Unit: "ml"},
		{Name: "egg", Quantity: 2},
		{Name: "unsalted butter", Quantity: 100, Unit: "g"},
		{Name: "sugars", Quantity: 150, Unit: "g"},
	}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Satisfiable(r, pantry)
	}
}
