package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"pantrypilot"
	"pantrypilot/bootstrap"
	"pantrypilot/coordinator"
	"pantrypilot/slack"
)

// Usage: local [minPrep] [maxPrep] [batchSize] [pages]
//
// Matches the stored pantry against the file catalog, pages through the
// results and writes every generator attempt to ./logs.
func main() {
	ctx := context.Background()

	cfg, err := pantrypilot.LoadConfig()
	if err != nil {
		log.Fatalf("SETUP: Failed to decode: %s", err)
	}
	if cfg.Storage.Backend == bootstrap.StorageMemory {
		cfg.Storage.Backend = bootstrap.StorageFile
	}

	minPrep := intArgOr(1, 0)
	maxPrep := intArgOr(2, 60)
	batchSize := intArgOr(3, cfg.Match.BatchSize)
	pages := intArgOr(4, 3)

	logger, cleanup, err := newGenerationLogger(cfg.Generator.Backend + "-" + cfg.Model.ModelID)
	if err != nil {
		slog.Error("SETUP: Failed to create generation logger", "error", err)
		return
	}
	defer func() {
		if err := cleanup(); err != nil {
			slog.Error("SETUP: Failed to flush generation log", "error", err)
		}
	}()

	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := new(bytes.Buffer)
		body.ReadFrom(r.Body) // nolint: errcheck
		slog.Info("Received request",
			"method", r.Method,
			"path", r.URL.Path,
			"body", body.String(),
		)
		w.WriteHeader(http.StatusOK)
	}))
	defer testServer.Close()
	slackClient := slack.NewClient(testServer.URL, http.DefaultClient)

	app, err := bootstrap.New(ctx, bootstrap.Options{Config: cfg, Logger: logger, Alerter: slackClient})
	if err != nil {
		slog.Error("SETUP: Failed to wire application", "error", err)
		return
	}
	defer app.Close() // nolint: errcheck

	items, err := app.Stores.Pantry.Items(ctx)
	if err != nil {
		slog.Error("SETUP: Failed to load pantry", "error", err)
		return
	}
	slog.Info("SETUP: Pantry loaded", "ingredients_count", len(items), "path", cfg.Storage.ArtifactsPantryPath)

	res, err := app.Coordinator.StartSession(ctx, items, minPrep, maxPrep, batchSize)
	if err != nil {
		slog.Error("FAILURE: Error starting session", "error", err)
		return
	}
	results := []coordinator.Result{res}
	for page := 1; page < pages && len(res.Recipes) > 0; page++ {
		res, err = app.Coordinator.NextBatch(ctx, res.Token, batchSize)
		if err != nil {
			slog.Error("FAILURE: Error fetching batch", "page", page+1, "error", err)
			return
		}
		results = append(results, res)
	}
	app.Coordinator.EndSession(ctx, res.Token)

	pantrypilot.Dump(results)

	if err := slackClient.PostMessage(ctx, cfg.Server.SlackChannel, summary(results)); err != nil {
		slog.Error("Failed to post result to Slack", "error", err)
	}
}

func summary(results []coordinator.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Served %d pages", len(results))
	for i, res := range results {
		titles := make([]string, 0, len(res.Recipes))
		for _, r := range res.Recipes {
			titles = append(titles, fmt.Sprintf("%s (%s)", r.Title, r.Origin))
		}
		if len(titles) == 0 {
			titles = append(titles, res.Message)
		}
		fmt.Fprintf(&b, "\npage %d: %s", i+1, strings.Join(titles, ", "))
	}
	return b.String()
}

func intArgOr(i int, def int) int {
	if len(os.Args) > i {
		if n, err := strconv.Atoi(os.Args[i]); err == nil {
			return n
		}
	}
	return def
}

func newGenerationLogger(model string) (pantrypilot.GenerationLogger, func() error, error) {
	logFilePath := pantrypilot.NewGenerationLogFilePath(model)
	if err := os.MkdirAll(filepath.Dir(logFilePath), 0o755); err != nil {
		return nil, func() error { return err }, fmt.Errorf("failed to create log dir: %w", err)
	}
	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, func() error { return err }, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := pantrypilot.NewFileGenerationLogger(logFile)
	cleanup := func() error {
		return errors.Join(logger.Flush(), logFile.Close())
	}
	return logger, cleanup, nil
}
