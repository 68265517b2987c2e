package imagery

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ImageURL(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{
			name: "first result",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"results":[{"urls":{"small":"https://img.example/flour.jpg"}},{"urls":{"small":"https://img.example/other.jpg"}}]}`)
			},
			want: "https://img.example/flour.jpg",
		},
		{
			name: "no results",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"results":[]}`)
			},
			want: Fallback,
		},
		{
			name: "error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "rate limited", http.StatusForbidden)
			},
			want: Fallback,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"results":`)
			},
			want: Fallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClient(Options{BaseURL: srv.URL, AccessKey: "key", HTTPClient: srv.Client()})
			assert.Equal(t, tt.want, c.ImageURL(context.Background(), "Flour"))
		})
	}
}

func TestClient_RequestShape(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		fmt.Fprint(w, `{"results":[]}`)
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL + "/", AccessKey: "secret", HTTPClient: srv.Client()})
	c.ImageURL(context.Background(), "  Brown Rice ")

	require.NotNil(t, got)
	assert.Equal(t, "/search/photos", got.URL.Path)
	assert.Equal(t, "brown rice food ingredient", got.URL.Query().Get("query"))
	assert.Equal(t, "1", got.URL.Query().Get("per_page"))
	assert.Equal(t, "Client-ID secret", got.Header.Get("Authorization"))
}

func TestClient_CachesPerNormalizedName(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `{"results":[{"urls":{"small":"https://img.example/milk.jpg"}}]}`)
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, AccessKey: "key", HTTPClient: srv.Client()})
	for _, name := range []string{"milk", "Milk", " MILK "} {
		assert.Equal(t, "https://img.example/milk.jpg", c.ImageURL(context.Background(), name))
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestClient_WithoutKeyOrName(t *testing.T) {
	c := NewClient(Options{})
	assert.Equal(t, Fallback, c.ImageURL(context.Background(), "eggs"))
	assert.Equal(t, Fallback, c.ImageURL(context.Background(), "   "))
}
