package firecrawl

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/scrape", r.URL.Path)
		assert.Equal(t, "Bearer fc-test", r.Header.Get("Authorization"))

		var req scrapeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://acme.example", req.URL)
		assert.Equal(t, []string{"markdown"}, req.Formats)

		_, _ = w.Write([]byte(`{"success":true,"data":{"markdown":"# Acme\nAI pair programmer","metadata":{"title":"Acme"}}}`))
	}))
	defer srv.Close()

	p, err := NewClient("fc-test", srv.URL+"/").Fetch(context.Background(), "https://acme.example")
	require.NoError(t, err)
	assert.Equal(t, "Acme", p.Title)
	assert.Equal(t, "# Acme\nAI pair programmer", p.Content)
}

func TestClient_FetchUnsuccessful(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"error":"blocked by robots"}`))
	}))
	defer srv.Close()

	_, err := NewClient("fc-test", srv.URL).Fetch(context.Background(), "https://acme.example")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked by robots")
}

func TestClient_FetchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer srv.Close()

	_, err := NewClient("fc-test", srv.URL).Fetch(context.Background(), "https://acme.example")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 402")
}
