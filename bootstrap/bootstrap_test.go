package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pantrypilot"
	"pantrypilot/recipe"
)

func noAWS() (aws.Config, error) {
	panic("AWS config must not be loaded")
}

func testConfig(t *testing.T) pantrypilot.Config {
	t.Helper()
	cfg, err := pantrypilot.LoadConfig()
	require.NoError(t, err)
	return cfg
}

func TestNew_MemoryAndMock(t *testing.T) {
	cfg := testConfig(t)
	app, err := New(context.Background(), Options{Config: cfg})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, app.Close()) })

	assert.Equal(t, GeneratorMock, app.Generator.Backend)
	assert.Equal(t, "closed", app.Generator.State())
	assert.Len(t, app.Tools.GetTools(), 4)

	ctx := context.Background()
	pantryItems := []recipe.PantryItem{{Name: "rice", Quantity: 500, Unit: "g"}, {Name: "eggs", Quantity: 6}}
	res, err := app.Coordinator.StartSession(ctx, pantryItems, 0, 30, cfg.Match.BatchSize)
	require.NoError(t, err)
	assert.Len(t, res.Recipes, cfg.Match.BatchSize)

	all, err := app.Stores.Catalog.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, cfg.Match.BatchSize, "generated recipes land in the catalog")
}

func TestNewStores_File(t *testing.T) {
	dir := t.TempDir()
	recipes := filepath.Join(dir, "recipes.json")
	require.NoError(t, os.WriteFile(recipes, []byte(`{"recipes":[{"id":"r1","title":"Pancakes","prepTime":15,"ingredients":[{"ingredientName":"flour","quantity":200,"unit":"g"}]}]}`), 0o644))

	stores, err := NewStores(context.Background(), pantrypilot.StorageConfig{
		Backend:              StorageFile,
		ArtifactsPantryPath:  filepath.Join(dir, "pantry.json"),
		ArtifactsRecipesPath: recipes,
	}, noAWS)
	require.NoError(t, err)
	defer stores.Close()

	got, err := stores.Catalog.FindByTitle(context.Background(), "pancakes")
	require.NoError(t, err)
	assert.Equal(t, "r1", got.ID)

	items, err := stores.Pantry.Items(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestNewStores_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  pantrypilot.StorageConfig
	}{
		{name: "unknown backend", cfg: pantrypilot.StorageConfig{Backend: "floppy"}},
		{name: "s3 without bucket", cfg: pantrypilot.StorageConfig{Backend: StorageS3}},
		{name: "postgres without url", cfg: pantrypilot.StorageConfig{Backend: StoragePostgres}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStores(context.Background(), tt.cfg, noAWS)
			assert.Error(t, err)
		})
	}
}

func TestNewGenerator(t *testing.T) {
	cfg := testConfig(t)

	cfg.Generator.Backend = GeneratorOllama
	gen, err := NewGenerator(context.Background(), cfg, nil, noAWS)
	require.NoError(t, err)
	assert.Equal(t, GeneratorOllama, gen.Backend)

	cfg.Generator.Backend = "gpt-in-a-box"
	_, err = NewGenerator(context.Background(), cfg, nil, noAWS)
	assert.Error(t, err)

	cfg.Generator.Backend = GeneratorOllama
	cfg.Generator.BaseOllamaEndpoint = " "
	_, err = NewGenerator(context.Background(), cfg, nil, noAWS)
	assert.Error(t, err)
}
