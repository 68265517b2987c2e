package catalog

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pantrypilot/recipe"
)

func seed() []recipe.Recipe {
	return []recipe.Recipe{
		{
			ID:              "r1",
			Title:           "Pancakes",
			PrepTimeMinutes: 15,
			Ingredients: []recipe.IngredientRequirement{
				{Name: "flour", Quantity: 200, Unit: "g"},
				{Name: "milk", Quantity: 300, Unit: "ml"},
			},
		},
		{
			ID:              "r2",
			Title:           "Omelette",
			PrepTimeMinutes: 10,
			Ingredients:     []recipe.IngredientRequirement{{Name: "Eggs", Quantity: 3}},
		},
		{
			ID:              "r3",
			Title:           "Bread",
			PrepTimeMinutes: 90,
			Ingredients:     []recipe.IngredientRequirement{{Name: "flour", Quantity: 500, Unit: "g"}},
		},
	}
}

func TestMemoryStore_Query(t *testing.T) {
	s := NewMemoryStoreWith(seed())

	tests := []struct {
		name     string
		min, max int
		names    []string
		want     []string
	}{
		{name: "prep window and shared name", min: 0, max: 30, names: []string{"flour"}, want: []string{"r1"}},
		{name: "case insensitive names", min: 0, max: 30, names: []string{" EGGS "}, want: []string{"r2"}},
		{name: "inclusive bounds", min: 10, max: 90, names: []string{"flour", "eggs"}, want: []string{"r1", "r2", "r3"}},
		{name: "no shared names", min: 0, max: 120, names: []string{"rice"}, want: []string{}},
		{name: "empty names", min: 0, max: 120, names: nil, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.QueryByPrepTimeAndIngredientNames(context.Background(), tt.min, tt.max, tt.names)
			require.NoError(t, err)
			ids := make([]string, 0, len(got))
			for _, r := range got {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestMemoryStore_Save(t *testing.T) {
	s := NewMemoryStoreWith(seed())
	ctx := context.Background()

	saved, err := s.Save(ctx, recipe.Recipe{
		Title:           "Flour Skillet",
		PrepTimeMinutes: 20,
		Ingredients:     []recipe.IngredientRequirement{{Name: "flour", Quantity: 100, Unit: "g"}},
		Origin:          recipe.OriginGenerated,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, recipe.OriginGenerated, saved.Origin)

	got, err := s.FindByTitle(ctx, "  flour skillet")
	require.NoError(t, err)
	assert.Equal(t, saved, got)

	dup, err := s.Save(ctx, recipe.Recipe{Title: "PANCAKES", PrepTimeMinutes: 1})
	require.ErrorIs(t, err, ErrDuplicateTitle)
	assert.Equal(t, "r1", dup.ID)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestMemoryStore_Lookups(t *testing.T) {
	s := NewMemoryStoreWith(seed())
	ctx := context.Background()

	got, err := s.Get(ctx, "r2")
	require.NoError(t, err)
	assert.Equal(t, "Omelette", got.Title)
	assert.Equal(t, recipe.OriginStored, got.Origin)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.FindByTitle(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := NewMemoryStoreWith(seed())
	ctx := context.Background()

	got, err := s.Get(ctx, "r1")
	require.NoError(t, err)
	got.Ingredients[0].Quantity = 1

	again, err := s.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 200.0, again.Ingredients[0].Quantity)
}

func TestMemoryStore_ConcurrentSave(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Save(ctx, recipe.Recipe{Title: fmt.Sprintf("Dish %d", i%10)})
		}()
	}
	wg.Wait()

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 10)
}
