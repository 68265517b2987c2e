package pantrypilot

import (
	"context"
	"net/http"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type SlackClient interface {
	PostMessage(ctx context.Context, channel string, message string) error
}

// NoOpSlackClient drops every message. It stands in when no webhook is configured.
type NoOpSlackClient struct{}

func (NoOpSlackClient) PostMessage(ctx context.Context, channel string, message string) error {
	return nil
}
