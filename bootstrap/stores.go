package bootstrap

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"

	"pantrypilot"
	"pantrypilot/catalog"
	"pantrypilot/catalog/postgres"
	"pantrypilot/pantry"
	"pantrypilot/storage"
)

const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StorageS3       = "s3"
	StoragePostgres = "postgres"
)

type Stores struct {
	Catalog catalog.Store
	Pantry  pantry.Store
	Close   func() error
}

// NewStores builds the recipe catalog and the stored pantry for backend.
// The postgres backend keeps the pantry document in a file.
func NewStores(ctx context.Context, cfg pantrypilot.StorageConfig, awsCfg func() (aws.Config, error)) (Stores, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case StorageMemory, "":
		return Stores{
			Catalog: catalog.NewMemoryStore(),
			Pantry:  pantry.NewBlobStore(storage.NewMemoryBlob(nil)),
			Close:   noop,
		}, nil

	case StorageFile:
		cat, err := catalog.NewBlobStore(ctx, storage.NewFileBlob(cfg.ArtifactsRecipesPath))
		if err != nil {
			return Stores{}, err
		}
		return Stores{
			Catalog: cat,
			Pantry:  pantry.NewBlobStore(storage.NewFileBlob(cfg.ArtifactsPantryPath)),
			Close:   noop,
		}, nil

	case StorageS3:
		if cfg.S3Bucket == "" || cfg.PantryS3Key == "" || cfg.RecipesS3Key == "" {
			return Stores{}, fmt.Errorf("missing S3 config: ARTIFACTS_S3_BUCKET, ARTIFACTS_PANTRY_S3_KEY, ARTIFACTS_RECIPES_S3_KEY must be set")
		}
		c, err := awsCfg()
		if err != nil {
			return Stores{}, err
		}
		client := s3.NewFromConfig(c)
		cat, err := catalog.NewBlobStore(ctx, storage.NewS3Blob(client, cfg.S3Bucket, cfg.RecipesS3Key))
		if err != nil {
			return Stores{}, err
		}
		return Stores{
			Catalog: cat,
			Pantry:  pantry.NewBlobStore(storage.NewS3Blob(client, cfg.S3Bucket, cfg.PantryS3Key)),
			Close:   noop,
		}, nil

	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return Stores{}, fmt.Errorf("missing DATABASE_URL for postgres storage")
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return Stores{}, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return Stores{}, fmt.Errorf("ping postgres: %w", err)
		}
		store := postgres.NewStore(pool)
		if err := store.Migrate(ctx); err != nil {
			pool.Close()
			return Stores{}, err
		}
		return Stores{
			Catalog: store,
			Pantry:  pantry.NewBlobStore(storage.NewFileBlob(cfg.ArtifactsPantryPath)),
			Close: func() error {
				pool.Close()
				return nil
			},
		}, nil
	}
	return Stores{}, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}
