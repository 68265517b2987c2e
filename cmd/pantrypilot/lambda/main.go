package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"

	"pantrypilot"
	"pantrypilot/bootstrap"
	"pantrypilot/slack"
	"pantrypilot/tools"
)

// Params is one tool invocation, e.g. {"tool":"recipe_match","input":{...}}.
type Params struct {
	Tool      string         `json:"tool"`
	Input     map[string]any `json:"input"`
	ToolUseID string         `json:"tool_use_id,omitempty"`
}

type Results struct {
	Output map[string]any `json:"output"`
}

func main() {
	ctx := context.Background()

	cfg, err := pantrypilot.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRetryMaxAttempts(5))
	if err != nil {
		log.Fatalf("Failed to load AWS config: %s", err)
	}

	opts := bootstrap.Options{
		Config:  cfg,
		AWS:     &awsCfg,
		Logger:  pantrypilot.NewStdoutGenerationLogger(),
		Alerter: pantrypilot.NoOpSlackClient{},
	}
	if cfg.Server.SlackWebhookURL != "" {
		opts.Alerter = slack.NewClient(cfg.Server.SlackWebhookURL, &http.Client{Timeout: 5 * time.Second})
	}

	// Sessions live in the execution environment and survive warm invocations.
	app, err := bootstrap.New(ctx, opts)
	if err != nil {
		log.Fatalf("SETUP: Failed to wire application: %s", err)
	}
	slog.Info("SETUP: Lambda ready", "storage", cfg.Storage.Backend, "generator", app.Generator.Backend)

	fn := func(ctx context.Context, params Params) (Results, error) {
		if params.Tool == "" {
			return Results{}, fmt.Errorf("missing tool name")
		}
		app.Sessions.Sweep()

		out, err := app.Tools.Invoke(ctx, tools.Call{Name: params.Tool, Input: params.Input, ToolUseID: params.ToolUseID})
		if err != nil {
			slog.Error("RESULT: Error handling tool call", "tool", params.Tool, "error", err)
			return Results{}, err
		}
		return Results{Output: out}, nil
	}

	lambda.Start(fn)
}
