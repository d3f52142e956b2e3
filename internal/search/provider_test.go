package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBraveProvider_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-Subscription-Token"))
		assert.Equal(t, "baggage fees site:westjet.com", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("count"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"web":{"results":[{"url":"https://westjet.com/baggage"},{"url":"https://westjet.com/fees"}]}}`))
	}))
	defer server.Close()

	provider := NewBraveProvider("test-key", 5*time.Second)
	provider.endpoint = server.URL

	result := provider.Search(context.Background(), "baggage fees", "westjet.com", 5)

	require.Equal(t, StatusOK, result.Status)
	assert.Equal(t, []string{"https://westjet.com/baggage", "https://westjet.com/fees"}, result.URLs)
}

func TestBraveProvider_ServerErrorIsFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	provider := NewBraveProvider("test-key", 5*time.Second)
	provider.endpoint = server.URL

	result := provider.Search(context.Background(), "q", "d.com", 5)

	assert.Equal(t, StatusFailed, result.Status)
	assert.Error(t, result.Err)
}

func TestBraveProvider_MalformedPayloadIsFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	provider := NewBraveProvider("test-key", 5*time.Second)
	provider.endpoint = server.URL

	result := provider.Search(context.Background(), "q", "d.com", 5)

	assert.Equal(t, StatusFailed, result.Status)
}

func TestBraveProvider_NoResultsIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"web":{"results":[]}}`))
	}))
	defer server.Close()

	provider := NewBraveProvider("test-key", 5*time.Second)
	provider.endpoint = server.URL

	result := provider.Search(context.Background(), "q", "d.com", 5)

	assert.Equal(t, StatusEmpty, result.Status)
}

func TestBraveProvider_Available(t *testing.T) {
	assert.True(t, NewBraveProvider("key", time.Second).Available())
	assert.False(t, NewBraveProvider("", time.Second).Available())
}

func TestSerpAPIProvider_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "serp-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "check in site:westjet.com", r.URL.Query().Get("q"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"organic_results":[{"link":"https://westjet.com/check-in"}]}`))
	}))
	defer server.Close()

	provider := NewSerpAPIProvider("serp-key", 5*time.Second)
	provider.endpoint = server.URL

	result := provider.Search(context.Background(), "check in", "westjet.com", 5)

	require.Equal(t, StatusOK, result.Status)
	assert.Equal(t, []string{"https://westjet.com/check-in"}, result.URLs)
}

func TestSerpAPIProvider_Available(t *testing.T) {
	assert.True(t, NewSerpAPIProvider("key", time.Second).Available())
	assert.False(t, NewSerpAPIProvider("", time.Second).Available())
}

func TestDuckDuckGoProvider_AlwaysAvailable(t *testing.T) {
	assert.True(t, NewDuckDuckGoProvider(time.Second).Available())
}

func TestExtractResultURLs(t *testing.T) {
	html := `
		<a rel="nofollow" class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fwestjet.com%2Fbaggage&amp;rut=abc">Baggage</a>
		<a rel="nofollow" class="result__a" href="https://westjet.com/fees">Fees</a>
		<a class="other" href="https://ignored.com/">Ignored</a>
	`

	urls := extractResultURLs(html, 10)

	assert.Equal(t, []string{"https://westjet.com/baggage", "https://westjet.com/fees"}, urls)
}

func TestExtractResultURLs_RespectsMax(t *testing.T) {
	html := `
		<a class="result__a" href="https://a.com/1">1</a>
		<a class="result__a" href="https://a.com/2">2</a>
		<a class="result__a" href="https://a.com/3">3</a>
	`

	urls := extractResultURLs(html, 2)

	assert.Len(t, urls, 2)
}
