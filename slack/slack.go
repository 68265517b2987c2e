// Package slack posts operational alerts to a Slack incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Message is the webhook payload.
type Message struct {
	Channel     string       `json:"channel,omitempty"`
	Text        string       `json:"text"`
	Username    string       `json:"username,omitempty"`
	IconEmoji   string       `json:"icon_emoji,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

type Attachment struct {
	Color  string  `json:"color,omitempty"`
	Title  string  `json:"title,omitempty"`
	Text   string  `json:"text,omitempty"`
	Fields []Field `json:"fields,omitempty"`
}

type Field struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short,omitempty"`
}

type Client struct {
	webhookURL string
	username   string
	httpClient doer
}

func NewClient(webhookURL string, httpClient doer) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		webhookURL: webhookURL,
		username:   "pantrypilot",
		httpClient: httpClient,
	}
}

// PostMessage sends text as a warning-coloured attachment. Lines of the form
// "key: value" after the first line become attachment fields.
func (c *Client) PostMessage(ctx context.Context, channel string, message string) error {
	return c.Send(ctx, Format(channel, message))
}

func (c *Client) Send(ctx context.Context, msg Message) error {
	if msg.Username == "" {
		msg.Username = c.username
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		if detail := strings.TrimSpace(string(body)); detail != "" {
			return fmt.Errorf("failed to post message: %s: %s", resp.Status, detail)
		}
		return fmt.Errorf("failed to post message: %s", resp.Status)
	}
	return nil
}

// Format builds the alert message for text.
func Format(channel, text string) Message {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	msg := Message{
		Channel:   channel,
		Text:      lines[0],
		IconEmoji: ":fork_and_knife:",
	}

	var fields []Field
	for _, line := range lines[1:] {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		fields = append(fields, Field{Title: strings.TrimSpace(key), Value: strings.TrimSpace(value), Short: true})
	}
	if len(fields) > 0 {
		msg.Attachments = []Attachment{{Color: "warning", Fields: fields}}
	}
	return msg
}
