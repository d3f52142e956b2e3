// Package scrape retrieves web pages and normalizes them into text documents.
package scrape

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/k3a/html2text"
	"github.com/panjf2000/ants/v2"

	"github.com/cloo-solutions/askweb/internal/domain"
)

// maxBodyBytes caps how much of a page body is read per URL.
const maxBodyBytes = 2 << 20

// FetcherConfig controls fetch concurrency and per-request behavior.
type FetcherConfig struct {
	MaxConcurrent int
	Timeout       time.Duration
}

// DefaultFetcherConfig provides sane defaults for fetching.
func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		MaxConcurrent: 3,
		Timeout:       15 * time.Second,
	}
}

// Fetcher retrieves URLs under a bounded concurrency ceiling and converts
// each page from HTML to plain text.
type Fetcher struct {
	client        *http.Client
	maxConcurrent int
}

// NewFetcher creates a Fetcher with the given configuration.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultFetcherConfig().MaxConcurrent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultFetcherConfig().Timeout
	}
	return &Fetcher{
		client:        &http.Client{Timeout: cfg.Timeout},
		maxConcurrent: cfg.MaxConcurrent,
	}
}

// FetchAll retrieves and converts the given URLs into text documents. URLs
// that fail to fetch are simply absent from the result; order is not
// guaranteed to match the input.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) []domain.Document {
	if len(urls) == 0 {
		return nil
	}

	pool, err := ants.NewPool(f.maxConcurrent)
	if err != nil {
		log.Printf("scrape: worker pool init failed: %v", err)
		return nil
	}
	defer pool.Release()

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		docs []domain.Document
	)

	for _, u := range urls {
		u := u
		wg.Add(1)
		task := func() {
			defer wg.Done()
			doc, err := f.fetchOne(ctx, u)
			if err != nil {
				log.Printf("scrape: %s: %v", u, err)
				return
			}
			mu.Lock()
			docs = append(docs, doc)
			mu.Unlock()
		}
		if err := pool.Submit(task); err != nil {
			wg.Done()
			log.Printf("scrape: submit %s failed: %v", u, err)
		}
	}
	wg.Wait()

	log.Printf("scrape: fetched %d of %d URLs", len(docs), len(urls))
	return docs
}

func (f *Fetcher) fetchOne(ctx context.Context, url string) (domain.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.Document{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", "askweb/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return domain.Document{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Document{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return domain.Document{}, fmt.Errorf("failed to read body: %w", err)
	}

	text := strings.TrimSpace(html2text.HTML2Text(string(body)))
	return domain.NewDocument(text, url), nil
}
