package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"
)

const duckDuckGoEndpoint = "https://html.duckduckgo.com/html/"

// resultLinkPattern matches result anchors on the DuckDuckGo HTML endpoint.
// The href points at a redirect URL carrying the target in the uddg parameter.
var resultLinkPattern = regexp.MustCompile(`<a[^>]+class="result__a"[^>]+href="([^"]+)"`)

// DuckDuckGoProvider scrapes the free DuckDuckGo HTML endpoint. Tertiary
// fallback, no API key required.
type DuckDuckGoProvider struct {
	endpoint string
	client   *http.Client
}

// NewDuckDuckGoProvider creates a DuckDuckGoProvider with the given timeout.
func NewDuckDuckGoProvider(timeout time.Duration) *DuckDuckGoProvider {
	return &DuckDuckGoProvider{
		endpoint: duckDuckGoEndpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (p *DuckDuckGoProvider) Name() string { return "duckduckgo" }

func (p *DuckDuckGoProvider) Available() bool { return true }

func (p *DuckDuckGoProvider) Search(ctx context.Context, query, domain string, maxResults int) Result {
	params := url.Values{}
	params.Set("q", SiteQuery(query, domain))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return Failed(fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("User-Agent", "askweb/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return Failed(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Failed(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Failed(fmt.Errorf("failed to read response: %w", err))
	}

	urls := extractResultURLs(string(body), maxResults)
	return OK(urls)
}

func extractResultURLs(html string, maxResults int) []string {
	matches := resultLinkPattern.FindAllStringSubmatch(html, -1)

	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		href := resolveRedirect(m[1])
		if href != "" {
			urls = append(urls, href)
		}
		if maxResults > 0 && len(urls) >= maxResults {
			break
		}
	}
	return urls
}

// resolveRedirect unwraps DuckDuckGo's redirect href into the target URL.
func resolveRedirect(href string) string {
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	if parsed.Scheme == "http" || parsed.Scheme == "https" {
		return href
	}
	return ""
}
