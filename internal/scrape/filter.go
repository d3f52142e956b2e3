package scrape

import (
	"log"
	"strings"

	"github.com/cloo-solutions/askweb/internal/domain"
)

// DefaultMinContentLength is the minimum trimmed content length for a
// document to be considered valid.
const DefaultMinContentLength = 100

// errorIndicators are phrases that mark a page as a disguised error page.
// This is a plain substring heuristic: it can false-positive on legitimate
// pages that merely discuss these phrases, which is accepted behavior.
var errorIndicators = []string{
	"404 not found",
	"page not found",
	"access denied",
	"forbidden",
}

// Filter rejects documents that are too short or look like error pages.
type Filter struct {
	minContentLength int
}

// NewFilter creates a Filter with the given minimum content length.
func NewFilter(minContentLength int) *Filter {
	if minContentLength <= 0 {
		minContentLength = DefaultMinContentLength
	}
	return &Filter{minContentLength: minContentLength}
}

// Filter returns the subset of documents that pass the validity rules.
// A missing source is never a rejection reason.
func (f *Filter) Filter(docs []domain.Document) []domain.Document {
	valid := make([]domain.Document, 0, len(docs))

	for _, doc := range docs {
		content := strings.TrimSpace(doc.Content)
		if len(content) < f.minContentLength {
			log.Printf("scrape: skipping %s: content too short (%d chars)", sourceLabel(doc), len(content))
			continue
		}

		if looksLikeErrorPage(content) {
			log.Printf("scrape: skipping %s: appears to be an error page", sourceLabel(doc))
			continue
		}

		valid = append(valid, doc)
	}

	return valid
}

func looksLikeErrorPage(content string) bool {
	lower := strings.ToLower(content)
	for _, indicator := range errorIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

func sourceLabel(doc domain.Document) string {
	if doc.Source == "" {
		return "unknown"
	}
	return doc.Source
}
