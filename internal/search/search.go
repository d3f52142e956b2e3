// Package search resolves a query plus domain restriction into candidate URLs,
// trying providers in priority order until one returns results.
package search

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Status classifies the outcome of one provider attempt.
type Status int

const (
	// StatusOK means the provider returned at least one URL.
	StatusOK Status = iota
	// StatusEmpty means the provider answered but had no results.
	StatusEmpty
	// StatusFailed means the attempt errored (network, bad payload).
	StatusFailed
)

// Result is the outcome of a single provider attempt. The chain inspects the
// Status variant to decide whether to fall through to the next provider.
type Result struct {
	Status Status
	URLs   []string
	Err    error
}

// OK builds a Result from a URL list, downgrading to Empty when the list is empty.
func OK(urls []string) Result {
	if len(urls) == 0 {
		return Empty()
	}
	return Result{Status: StatusOK, URLs: urls}
}

// Empty builds an empty Result.
func Empty() Result {
	return Result{Status: StatusEmpty}
}

// Failed builds a failed Result carrying the cause.
func Failed(err error) Result {
	return Result{Status: StatusFailed, Err: err}
}

// Provider is a single search backend.
type Provider interface {
	// Name identifies the provider in logs.
	Name() string
	// Available reports whether the provider has the credentials it needs.
	// Unavailable providers are skipped, not attempted and failed.
	Available() bool
	// Search resolves the query into candidate URLs. Implementations never
	// return an error to the caller; failures are carried in the Result.
	Search(ctx context.Context, query, domain string, maxResults int) Result
}

// Chain tries providers in fixed priority order and stops at the first
// non-empty result.
type Chain struct {
	providers []Provider
}

// NewChain creates a Chain over the given providers, in priority order.
func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

// Search runs the provider chain. It returns an empty slice, never an error,
// when every provider is exhausted without results. A non-empty result, even
// of size one, stops the chain.
func (c *Chain) Search(ctx context.Context, query, domain string, maxResults int) []string {
	for _, p := range c.providers {
		if !p.Available() {
			continue
		}

		result := p.Search(ctx, query, domain, maxResults)
		switch result.Status {
		case StatusOK:
			log.Printf("search: %s returned %d URLs", p.Name(), len(result.URLs))
			return truncateURLs(result.URLs, maxResults)
		case StatusEmpty:
			log.Printf("search: %s returned no results, trying next provider", p.Name())
		case StatusFailed:
			log.Printf("search: %s failed: %v", p.Name(), result.Err)
		}
	}

	return nil
}

// SiteQuery combines the raw query with a domain restriction.
func SiteQuery(query, domain string) string {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return query
	}
	return fmt.Sprintf("%s site:%s", query, domain)
}

// truncateURLs enforces the maxResults cap locally; providers may return more
// than requested.
func truncateURLs(urls []string, maxResults int) []string {
	if maxResults > 0 && len(urls) > maxResults {
		return urls[:maxResults]
	}
	return urls
}
