package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pantrypilot/recipe"
)

func TestParseRecipes(t *testing.T) {
	t.Run("plain array", func(t *testing.T) {
		got, err := ParseRecipes(`[{"title":" Tomato Soup ","instructions":"Simmer.","prepTime":25,
			"ingredients":[{"ingredientName":"tomato","quantity":4,"unit":""}]}]`)
		require.NoError(t, err)
		require.Len(t, got, 1)

		assert.Equal(t, "Tomato Soup", got[0].Title)
		assert.Equal(t, "Simmer.", got[0].Instructions)
		assert.Equal(t, 25, got[0].PrepTimeMinutes)
		assert.Equal(t, recipe.OriginGenerated, got[0].Origin)
		assert.Equal(t, []recipe.IngredientRequirement{{Name: "tomato", Quantity: 4}}, got[0].Ingredients)
	})

	t.Run("prose and comments around the array", func(t *testing.T) {
		text := "Sure! Here you go:\n```json\n[\n" +
			"  // first recipe\n" +
			`  {"title": "Egg Fried Rice", "prepTime": "15 minutes", /* quick */` + "\n" +
			`   "instructions": ["Fry rice.", "Add egg."],` + "\n" +
			`   "ingredients": [{"name": "rice", "quantity": "200", "unit": "g"}, {"ingredientName": "url", "quantity": 1, "unit": "http://x"}]}` + "\n" +
			"]\n```\nEnjoy."

		got, err := ParseRecipes(text)
		require.NoError(t, err)
		require.Len(t, got, 1)

		assert.Equal(t, "Egg Fried Rice", got[0].Title)
		assert.Equal(t, 15, got[0].PrepTimeMinutes)
		assert.Equal(t, "Fry rice.\nAdd egg.", got[0].Instructions)
		require.Len(t, got[0].Ingredients, 2)
		assert.Equal(t, "rice", got[0].Ingredients[0].Name)
		assert.Equal(t, 200.0, got[0].Ingredients[0].Quantity)
		assert.Equal(t, "http://x", got[0].Ingredients[1].Unit)
	})

	t.Run("drops ingredients with invalid quantities", func(t *testing.T) {
		got, err := ParseRecipes(`[{"title":"Salad","ingredients":[
			{"ingredientName":"lettuce","quantity":"a handful","unit":""},
			{"ingredientName":"oil","quantity":1,"unit":"tbsp"},
			{"ingredientName":"salt","quantity":null,"unit":"g"}]}]`)
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Len(t, got[0].Ingredients, 1)
		assert.Equal(t, "oil", got[0].Ingredients[0].Name)
	})

	t.Run("no array", func(t *testing.T) {
		_, err := ParseRecipes(`{"title":"Not a list"}`)
		assert.ErrorIs(t, err, ErrNoRecipes)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := ParseRecipes(`[{"title": }]`)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNoRecipes)
	})

	t.Run("empty array", func(t *testing.T) {
		got, err := ParseRecipes(`[]`)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestStripComments(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"line comment", "[1, // one\n2]", "[1, \n2]"},
		{"block comment", "[1, /* two */ 3]", "[1,  3]"},
		{"slashes inside strings", `["a//b", "c/*d*/"]`, `["a//b", "c/*d*/"]`},
		{"escaped quote", `["a\"//b"]`, `["a\"//b"]`},
		{"unterminated block", "[1 /* oops", "[1 "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripComments(tt.in))
		})
	}
}
