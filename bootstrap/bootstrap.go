// Package bootstrap assembles the stores, generator and coordinator from
// configuration. Each entrypoint under cmd/ builds one App.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"pantrypilot"
	"pantrypilot/coordinator"
	"pantrypilot/imagery"
	"pantrypilot/matching"
	"pantrypilot/session"
	"pantrypilot/tools"
)

type Options struct {
	Config pantrypilot.Config

	// AWS is loaded on demand when a backend needs it.
	AWS        *aws.Config
	HTTPClient pantrypilot.HTTPClient

	Logger  pantrypilot.GenerationLogger
	Alerter pantrypilot.SlackClient
	Tracer  trace.Tracer
	Meter   metric.Meter
}

// App is a fully wired process.
type App struct {
	Config      pantrypilot.Config
	Coordinator *coordinator.Coordinator
	Sessions    *session.Cache
	Stores      Stores
	Generator   Generator
	Images      *imagery.Client
	Tools       *tools.Registry

	closers []func() error
}

func New(ctx context.Context, opts Options) (*App, error) {
	cfg := opts.Config
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	awsCfg := func() (aws.Config, error) {
		if opts.AWS != nil {
			return *opts.AWS, nil
		}
		c, err := config.LoadDefaultConfig(ctx, config.WithRetryMaxAttempts(5))
		if err != nil {
			return aws.Config{}, fmt.Errorf("load AWS config: %w", err)
		}
		opts.AWS = &c
		return c, nil
	}

	app := &App{Config: cfg}

	stores, err := NewStores(ctx, cfg.Storage, awsCfg)
	if err != nil {
		return nil, err
	}
	app.Stores = stores
	app.closers = append(app.closers, stores.Close)

	gen, err := NewGenerator(ctx, cfg, opts.HTTPClient, awsCfg)
	if err != nil {
		return nil, errors.Join(err, app.Close())
	}
	app.Generator = gen

	app.Sessions = session.NewCache(session.Options{
		TTL:           cfg.Match.SessionTTL,
		SweepInterval: cfg.Match.SweepInterval,
		MaxGenerated:  cfg.Match.MaxGeneratedPerSession,
	})

	app.Coordinator, err = coordinator.New(coordinator.Options{
		Engine:         matching.NewEngine(stores.Catalog),
		Generator:      gen.Resilient,
		Sessions:       app.Sessions,
		Catalog:        stores.Catalog,
		Validator:      matching.NewValidator(cfg.Match.IngredientRatio),
		Retries:        cfg.Match.GeneratorRetries,
		AttemptTimeout: cfg.Match.GeneratorTimeout,
		Logger:         opts.Logger,
		Alerter:        opts.Alerter,
		AlertChannel:   cfg.Server.SlackChannel,
		Tracer:         opts.Tracer,
		Meter:          opts.Meter,
	})
	if err != nil {
		return nil, errors.Join(err, app.Close())
	}

	app.Images = imagery.NewClient(imagery.Options{
		BaseURL:       cfg.Image.UnsplashBaseURL,
		AccessKey:     cfg.Image.UnsplashAccessKey,
		RatePerSecond: cfg.Image.RatePerSecond,
		HTTPClient:    opts.HTTPClient,
	})
	app.Tools = tools.NewRegistry(stores.Pantry, app.Coordinator, cfg.Match.BatchSize)

	slog.Info("SETUP: Application wired",
		"storage", cfg.Storage.Backend,
		"generator", gen.Backend,
		"batch_size", cfg.Match.BatchSize,
		"max_generated", cfg.Match.MaxGeneratedPerSession,
		"ingredient_ratio", cfg.Match.IngredientRatio)
	return app, nil
}

// Close releases store connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
