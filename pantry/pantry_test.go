package pantry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pantrypilot/recipe"
	"pantrypilot/storage"
)

func TestBlobStore_Items(t *testing.T) {
	tests := []struct {
		name        string
		blob        storage.Blob
		want        []recipe.PantryItem
		expectError bool
	}{
		{
			name: "stored pantry",
			blob: storage.NewMemoryBlob([]byte(`{"ingredients":[{"name":"flour","qty":500,"unit":"g"},{"name":"milk","qty":1,"unit":"l"}]}`)),
			want: []recipe.PantryItem{{Name: "flour", Quantity: 500, Unit: "g"}, {Name: "milk", Quantity: 1, Unit: "l"}},
		},
		{
			name: "missing document is empty",
			blob: storage.NewMemoryBlob(nil),
			want: []recipe.PantryItem{},
		},
		{
			name:        "invalid json",
			blob:        storage.NewMemoryBlob([]byte(`{"ingredients":`)),
			expectError: true,
		},
		{
			name:        "storage failure",
			blob:        storage.NewMemoryBlobWithError(assert.AnError),
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewBlobStore(tt.blob).Items(context.Background())
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBlobStore_Replace(t *testing.T) {
	blob := storage.NewMemoryBlob(nil)
	s := NewBlobStore(blob)
	items := []recipe.PantryItem{{Name: "rice", Quantity: 1, Unit: "kg"}}

	require.NoError(t, s.Replace(context.Background(), items))

	got, err := s.Items(context.Background())
	require.NoError(t, err)
	assert.Equal(t, items, got)

	err = NewBlobStore(storage.NewMemoryBlobWithError(assert.AnError)).Replace(context.Background(), items)
	assert.ErrorIs(t, err, assert.AnError)
}
