package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/trace"

	"pantrypilot"
	"pantrypilot/bootstrap"
	"pantrypilot/httpapi"
	"pantrypilot/slack"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := pantrypilot.LoadConfig()
	if err != nil {
		log.Fatalf("SETUP: Failed to decode: %s", err)
	}

	opts := bootstrap.Options{
		Config:  cfg,
		Logger:  pantrypilot.NewStdoutGenerationLogger(),
		Alerter: pantrypilot.NoOpSlackClient{},
	}
	if cfg.Server.SlackWebhookURL != "" {
		opts.Alerter = slack.NewClient(cfg.Server.SlackWebhookURL, &http.Client{Timeout: 5 * time.Second})
	}

	var httpTracer trace.Tracer
	if cfg.Server.OtelEnabled {
		tracerProvider, meterProvider, otelShutdown, err := pantrypilot.InitOtel(ctx)
		if err != nil {
			slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := otelShutdown(context.Background()); err != nil {
				slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
			}
		}()
		opts.Tracer = tracerProvider.Tracer(pantrypilot.TracerNameCoordinator)
		opts.Meter = meterProvider.Meter(pantrypilot.TracerNameCoordinator)
		httpTracer = tracerProvider.Tracer(pantrypilot.TracerNameHTTP)
	}

	app, err := bootstrap.New(ctx, opts)
	if err != nil {
		slog.Error("SETUP: Failed to wire application", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			slog.Error("SHUTDOWN: Failed to close stores", "error", err)
		}
	}()

	go app.Sessions.Run(ctx)

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: httpapi.NewRouter(httpapi.NewServer(httpapi.Deps{
			Paginator:    app.Coordinator,
			Catalog:      app.Stores.Catalog,
			Pantry:       app.Stores.Pantry,
			Images:       app.Images,
			Tools:        app.Tools,
			DefaultBatch: cfg.Match.BatchSize,
			Tracer:       httpTracer,
		})),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP: Listening", "addr", cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("SHUTDOWN: Signal received, draining")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP: Server failed", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("SHUTDOWN: Graceful shutdown failed", "error", err)
	}
	slog.Info("SHUTDOWN: Complete", "sessions_open", app.Sessions.Len())
}
