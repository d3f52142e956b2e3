package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const serpAPIEndpoint = "https://serpapi.com/search"

// SerpAPIProvider queries SerpAPI. Secondary paid provider.
type SerpAPIProvider struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewSerpAPIProvider creates a SerpAPIProvider with the given key and timeout.
func NewSerpAPIProvider(apiKey string, timeout time.Duration) *SerpAPIProvider {
	return &SerpAPIProvider{
		apiKey:   apiKey,
		endpoint: serpAPIEndpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (p *SerpAPIProvider) Name() string { return "serpapi" }

func (p *SerpAPIProvider) Available() bool { return p.apiKey != "" }

type serpAPIResponse struct {
	OrganicResults []struct {
		Link string `json:"link"`
	} `json:"organic_results"`
}

func (p *SerpAPIProvider) Search(ctx context.Context, query, domain string, maxResults int) Result {
	params := url.Values{}
	params.Set("q", SiteQuery(query, domain))
	params.Set("api_key", p.apiKey)
	params.Set("num", strconv.Itoa(maxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return Failed(fmt.Errorf("failed to build request: %w", err))
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return Failed(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Failed(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var payload serpAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Failed(fmt.Errorf("failed to decode response: %w", err))
	}

	urls := make([]string, 0, len(payload.OrganicResults))
	for _, r := range payload.OrganicResults {
		if r.Link != "" {
			urls = append(urls, r.Link)
		}
	}

	return OK(urls)
}
