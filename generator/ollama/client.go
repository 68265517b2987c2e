// Package ollama generates recipes with a local Ollama chat endpoint.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"pantrypilot"
	"pantrypilot/generator"
	"pantrypilot/recipe"
)

const defaultModelID = "llama3.1"

type options struct {
	Temperature   float64 `json:"temperature,omitempty"`
	TopP          float64 `json:"top_p,omitempty"`
	RepeatPenalty float64 `json:"repeat_penalty,omitempty"`
	NumCtx        int     `json:"num_ctx,omitempty"`
}

type Client struct {
	endpoint   string
	model      string
	httpClient pantrypilot.HTTPClient
	options    options
}

type ClientOpts struct {
	BaseEndpoint string
	ModelID      string
	HTTPClient   pantrypilot.HTTPClient
}

func NewClient(opts ClientOpts) (*Client, error) {
	if strings.TrimSpace(opts.BaseEndpoint) == "" {
		return nil, fmt.Errorf("missing ollama endpoint")
	}
	if opts.ModelID == "" {
		opts.ModelID = defaultModelID
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Client{
		model:      opts.ModelID,
		httpClient: opts.HTTPClient,
		endpoint:   strings.TrimRight(opts.BaseEndpoint, "/") + "/api/chat",
		options: options{
			Temperature:   0.2,
			TopP:          0.9,
			RepeatPenalty: 1.05,
			NumCtx:        8192,
		},
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
	Stream   bool      `json:"stream"`
	Options  options   `json:"options,omitempty"`
}

type wireResponse struct {
	Message message `json:"message"`
}

// Generate asks the model for recipes and parses the array out of its reply.
func (c *Client) Generate(ctx context.Context, req generator.Request) ([]recipe.Recipe, error) {
	slog.Info("GENERATOR: Ollama invoked", "model", c.model, "count", req.Count)

	reqBytes, err := json.Marshal(wireRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: generator.SystemPrompt},
			{Role: "user", Content: generator.BuildPrompt(req)},
		},
		Stream:  false,
		Options: c.options,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(reqBytes))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ollama chat: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama chat: %s: %s", resp.Status, string(body))
	}

	var wr wireResponse
	if err := json.Unmarshal(body, &wr); err != nil {
		slog.Warn("GENERATOR: Ollama decode failed, parsing raw body", "err", err)
		return generator.ParseRecipes(string(body))
	}

	return generator.ParseRecipes(wr.Message.Content)
}
