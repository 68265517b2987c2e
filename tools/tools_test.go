package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pantrypilot/coordinator"
	"pantrypilot/pantry"
	"pantrypilot/recipe"
	"pantrypilot/session"
	"pantrypilot/storage"
)

type startCall struct {
	pantry    []recipe.PantryItem
	min, max  int
	batchSize int
}

type fakePaginator struct {
	starts []startCall
	nexts  []string
	ended  []string
	err    error
}

func (f *fakePaginator) StartSession(ctx context.Context, p []recipe.PantryItem, minPrep, maxPrep, batchSize int) (coordinator.Result, error) {
	f.starts = append(f.starts, startCall{pantry: p, min: minPrep, max: maxPrep, batchSize: batchSize})
	if f.err != nil {
		return coordinator.Result{}, f.err
	}
	return coordinator.Result{
		Token:   "tok",
		Recipes: []recipe.Recipe{{ID: "r1", Title: "Pancakes", PrepTimeMinutes: 15, Origin: recipe.OriginStored}},
		State:   session.StateServing,
	}, nil
}

func (f *fakePaginator) NextBatch(ctx context.Context, token string, batchSize int) (coordinator.Result, error) {
	f.nexts = append(f.nexts, token)
	return coordinator.Result{Token: token, Recipes: []recipe.Recipe{}, State: session.StateExhausted, Message: coordinator.MessageNoMore}, nil
}

func (f *fakePaginator) EndSession(ctx context.Context, token string) bool {
	f.ended = append(f.ended, token)
	return token == "tok"
}

func storedPantry(t *testing.T) pantry.Store {
	t.Helper()
	s := pantry.NewBlobStore(storage.NewMemoryBlob(nil))
	require.NoError(t, s.Replace(context.Background(), []recipe.PantryItem{{Name: "rice", Quantity: 1, Unit: "kg"}}))
	return s
}

func TestRegistry_Tools(t *testing.T) {
	r := NewRegistry(storedPantry(t), &fakePaginator{}, 3)

	names := []string{}
	for _, tool := range r.GetTools() {
		names = append(names, tool.Name())
		assert.NotEmpty(t, tool.Title())
		assert.NotEmpty(t, tool.Description())
		assert.Equal(t, "object", tool.InputSchema().Type)
		assert.Equal(t, "object", tool.OutputSchema().Type)
	}
	assert.Equal(t, []string{"pantry_get", "recipe_end", "recipe_match", "recipe_next"}, names)

	_, err := r.GetTool("recipe_get")
	assert.Error(t, err)
}

func TestPantryGet_Run(t *testing.T) {
	r := NewRegistry(storedPantry(t), &fakePaginator{}, 3)

	out, err := r.Invoke(context.Background(), Call{Name: "pantry_get"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"pantry": map[string]any{
			"ingredients": []any{
				map[string]any{"ingredientName": "rice", "quantity": 1.0, "unit": "kg"},
			},
		},
	}, out)
}

func TestRecipeMatch_Run(t *testing.T) {
	tests := []struct {
		name        string
		input       map[string]any
		wantPantry  []recipe.PantryItem
		wantBatch   int
		expectError bool
	}{
		{
			name: "request pantry",
			input: map[string]any{
				"ingredients": []any{map[string]any{"ingredientName": "flour", "quantity": 500.0, "unit": "g"}},
				"minPrepTime": 10.0,
				"maxPrepTime": 20.0,
				"batchSize":   2.0,
			},
			wantPantry: []recipe.PantryItem{{Name: "flour", Quantity: 500, Unit: "g"}},
			wantBatch:  2,
		},
		{
			name:       "falls back to stored pantry and default batch",
			input:      map[string]any{"minPrepTime": 0.0, "maxPrepTime": 30.0},
			wantPantry: []recipe.PantryItem{{Name: "rice", Quantity: 1, Unit: "kg"}},
			wantBatch:  3,
		},
		{
			name:        "inverted window",
			input:       map[string]any{"minPrepTime": 30.0, "maxPrepTime": 10.0},
			expectError: true,
		},
		{
			name: "ingredient without name",
			input: map[string]any{
				"ingredients": []any{map[string]any{"quantity": 1.0}},
				"maxPrepTime": 10.0,
			},
			expectError: true,
		},
		{
			name:        "wrong type",
			input:       map[string]any{"minPrepTime": "soon"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakePaginator{}
			r := NewRegistry(storedPantry(t), p, 3)

			out, err := r.Invoke(context.Background(), Call{Name: "recipe_match", Input: tt.input})
			if tt.expectError {
				assert.ErrorIs(t, err, ErrInvalidInput)
				assert.Empty(t, p.starts)
				return
			}
			require.NoError(t, err)
			require.Len(t, p.starts, 1)
			assert.Equal(t, tt.wantPantry, p.starts[0].pantry)
			assert.Equal(t, tt.wantBatch, p.starts[0].batchSize)
			assert.Equal(t, "tok", out["token"])
			assert.Equal(t, "SERVING", out["state"])
			assert.Len(t, out["recipes"], 1)
		})
	}
}

func TestRecipeMatch_PaginatorError(t *testing.T) {
	p := &fakePaginator{err: coordinator.ErrInvalidBatchSize}
	r := NewRegistry(storedPantry(t), p, 3)

	_, err := r.Invoke(context.Background(), Call{Name: "recipe_match", Input: map[string]any{"maxPrepTime": 5.0}})
	assert.ErrorIs(t, err, coordinator.ErrInvalidBatchSize)
}

func TestRecipeNextAndEnd_Run(t *testing.T) {
	p := &fakePaginator{}
	r := NewRegistry(storedPantry(t), p, 3)
	ctx := context.Background()

	out, err := r.Invoke(ctx, Call{Name: "recipe_next", Input: map[string]any{"token": "tok"}})
	require.NoError(t, err)
	assert.Equal(t, "EXHAUSTED", out["state"])
	assert.Equal(t, coordinator.MessageNoMore, out["message"])
	assert.Equal(t, []string{"tok"}, p.nexts)

	_, err = r.Invoke(ctx, Call{Name: "recipe_next", Input: map[string]any{}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	out, err = r.Invoke(ctx, Call{Name: "recipe_end", Input: map[string]any{"token": "tok"}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ended": true}, out)

	out, err = r.Invoke(ctx, Call{Name: "recipe_end", Input: map[string]any{"token": "gone"}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ended": false}, out)
}
