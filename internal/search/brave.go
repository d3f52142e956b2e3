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

const braveEndpoint = "https://api.search.brave.com/res/v1/web/search"

// BraveProvider queries the Brave Search API. Primary paid provider.
type BraveProvider struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewBraveProvider creates a BraveProvider with the given key and timeout.
func NewBraveProvider(apiKey string, timeout time.Duration) *BraveProvider {
	return &BraveProvider{
		apiKey:   apiKey,
		endpoint: braveEndpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (p *BraveProvider) Name() string { return "brave" }

func (p *BraveProvider) Available() bool { return p.apiKey != "" }

type braveResponse struct {
	Web struct {
		Results []struct {
			URL string `json:"url"`
		} `json:"results"`
	} `json:"web"`
}

func (p *BraveProvider) Search(ctx context.Context, query, domain string, maxResults int) Result {
	params := url.Values{}
	params.Set("q", SiteQuery(query, domain))
	params.Set("count", strconv.Itoa(maxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return Failed(fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return Failed(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Failed(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var payload braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Failed(fmt.Errorf("failed to decode response: %w", err))
	}

	urls := make([]string, 0, len(payload.Web.Results))
	for _, r := range payload.Web.Results {
		if r.URL != "" {
			urls = append(urls, r.URL)
		}
	}

	return OK(urls)
}
