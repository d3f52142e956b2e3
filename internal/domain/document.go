package domain

import "strings"

// UnknownSource labels content whose origin URL could not be determined.
const UnknownSource = "Unknown source"

// Document represents one fetched page, normalized to plain text.
// Documents live for the duration of a single query and are never persisted.
type Document struct {
	Content string
	Source  string
}

// NewDocument creates a new Document instance
func NewDocument(content, source string) Document {
	return Document{Content: content, Source: source}
}

// Chunk is a bounded-length slice of a document's content. It carries the
// parent document's source unchanged.
type Chunk struct {
	Content string
	Source  string
}

// SourceOrUnknown returns the chunk's source URL, or UnknownSource when the
// parent document carried no source.
func (c Chunk) SourceOrUnknown() string {
	if strings.TrimSpace(c.Source) == "" {
		return UnknownSource
	}
	return c.Source
}

// RankedChunk pairs a chunk with its cosine similarity to the query.
// Score is in [-1, 1]; 0 doubles as the sentinel for "unscored".
type RankedChunk struct {
	Chunk Chunk
	Score float64
}
