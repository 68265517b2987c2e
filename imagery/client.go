// Package imagery looks up ingredient photos from an Unsplash-compatible
// search API.
package imagery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"pantrypilot"
	"pantrypilot/recipe"
)

// Fallback is returned whenever no image can be found.
const Fallback = "Image not available"

const defaultBaseURL = "https://api.unsplash.com"

type Options struct {
	BaseURL       string
	AccessKey     string
	RatePerSecond float64
	HTTPClient    pantrypilot.HTTPClient
}

// Client resolves ingredient names to image URLs and caches every answer,
// fallbacks included, per normalized name.
type Client struct {
	baseURL    string
	accessKey  string
	httpClient pantrypilot.HTTPClient
	limiter    *rate.Limiter

	mu    sync.RWMutex
	cache map[string]string
}

func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		accessKey:  opts.AccessKey,
		httpClient: opts.HTTPClient,
		limiter:    rate.NewLimiter(limit, 1),
		cache:      make(map[string]string),
	}
}

type searchResponse struct {
	Results []struct {
		URLs struct {
			Small string `json:"small"`
		} `json:"urls"`
	} `json:"results"`
}

// ImageURL returns a photo URL for the ingredient or Fallback.
func (c *Client) ImageURL(ctx context.Context, name string) string {
	key := recipe.NormalizeName(name)
	if key == "" {
		return Fallback
	}

	c.mu.RLock()
	cached, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return cached
	}

	if c.accessKey == "" {
		return Fallback
	}

	found, err := c.search(ctx, key)
	if err != nil {
		slog.Warn("IMAGERY: Lookup failed", "ingredient", key, "error", err)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Fallback
		}
		found = Fallback
	}

	c.mu.Lock()
	c.cache[key] = found
	c.mu.Unlock()
	return found
}

func (c *Client) search(ctx context.Context, key string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("query", key+" food ingredient")
	q.Set("per_page", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search/photos?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image search: %s", resp.Status)
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode image search: %w", err)
	}
	if len(out.Results) == 0 || out.Results[0].URLs.Small == "" {
		return Fallback, nil
	}
	return out.Results[0].URLs.Small, nil
}
