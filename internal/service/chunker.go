package service

import (
	"log"
	"strings"

	"github.com/cloo-solutions/askweb/internal/domain"
)

// separators are the split boundaries in coarse-to-fine order: paragraph
// break, line break, sentence end, word boundary. A hard character cut is the
// final fallback.
var separators = []string{"\n\n", "\n", ". ", " "}

// Chunker splits documents into bounded, overlapping text segments.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker creates a Chunker for the given size and overlap.
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 5
	}
	return &Chunker{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// ChunkDocuments splits each document into chunks that inherit the parent's
// source unchanged. A document whose content cannot be split is kept whole
// rather than dropped, degrading to larger context instead of losing it.
func (c *Chunker) ChunkDocuments(docs []domain.Document) []domain.Chunk {
	chunks := make([]domain.Chunk, 0, len(docs))

	for _, doc := range docs {
		pieces := c.splitText(doc.Content)
		if len(pieces) == 0 {
			if strings.TrimSpace(doc.Content) != "" {
				chunks = append(chunks, domain.Chunk{Content: doc.Content, Source: doc.Source})
			}
			continue
		}
		for _, piece := range pieces {
			chunks = append(chunks, domain.Chunk{Content: piece, Source: doc.Source})
		}
	}

	log.Printf("chunker: split %d documents into %d chunks", len(docs), len(chunks))
	return chunks
}

func (c *Chunker) splitText(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return c.applyOverlap(c.split(text, separators))
}

// split recursively divides text on the coarsest boundary that still appears,
// falling back through finer separators whenever a segment exceeds chunkSize.
func (c *Chunker) split(text string, seps []string) []string {
	if len(text) <= c.chunkSize {
		return []string{text}
	}
	if len(seps) == 0 {
		return c.hardCut(text)
	}

	parts := strings.SplitAfter(text, seps[0])
	if len(parts) == 1 {
		return c.split(text, seps[1:])
	}

	var segments []string
	var buf strings.Builder
	flush := func() {
		if s := strings.TrimSpace(buf.String()); s != "" {
			segments = append(segments, s)
		}
		buf.Reset()
	}

	for _, part := range parts {
		if len(part) > c.chunkSize {
			flush()
			segments = append(segments, c.split(part, seps[1:])...)
			continue
		}
		if buf.Len()+len(part) > c.chunkSize {
			flush()
		}
		buf.WriteString(part)
	}
	flush()

	return segments
}

func (c *Chunker) hardCut(text string) []string {
	runes := []rune(text)
	var segments []string
	for len(runes) > c.chunkSize {
		segments = append(segments, string(runes[:c.chunkSize]))
		runes = runes[c.chunkSize:]
	}
	if len(runes) > 0 {
		segments = append(segments, string(runes))
	}
	return segments
}

// applyOverlap prefixes every segment after the first with the tail of its
// predecessor, so information spanning a split point is kept on both sides.
// Segment length stays within chunkSize+chunkOverlap.
func (c *Chunker) applyOverlap(segments []string) []string {
	if c.chunkOverlap <= 0 || len(segments) < 2 {
		return segments
	}

	out := make([]string, len(segments))
	out[0] = segments[0]
	for i := 1; i < len(segments); i++ {
		prev := []rune(segments[i-1])
		tail := prev
		if len(prev) > c.chunkOverlap {
			tail = prev[len(prev)-c.chunkOverlap:]
		}
		out[i] = string(tail) + segments[i]
	}
	return out
}
