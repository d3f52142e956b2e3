package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/askweb/internal/domain"
)

func TestChunker_ShortDocumentStaysWhole(t *testing.T) {
	chunker := NewChunker(1000, 200)

	chunks := chunker.ChunkDocuments([]domain.Document{
		{Content: "A short paragraph.", Source: "https://example.com/a"},
	})

	require.Len(t, chunks, 1)
	assert.Equal(t, "A short paragraph.", chunks[0].Content)
	assert.Equal(t, "https://example.com/a", chunks[0].Source)
}

func TestChunker_SplitsOnParagraphs(t *testing.T) {
	chunker := NewChunker(50, 0)

	para1 := strings.TrimSpace(strings.Repeat("alpha ", 7))
	para2 := strings.TrimSpace(strings.Repeat("bravo ", 7))
	text := para1 + "\n\n" + para2

	chunks := chunker.ChunkDocuments([]domain.Document{
		{Content: text, Source: "https://example.com/p"},
	})

	require.Len(t, chunks, 2)
	assert.Contains(t, chunks[0].Content, "alpha")
	assert.Contains(t, chunks[1].Content, "bravo")
	for _, c := range chunks {
		assert.Equal(t, "https://example.com/p", c.Source, "chunks must inherit the document source")
	}
}

func TestChunker_RespectsSizeBound(t *testing.T) {
	const size, overlap = 100, 20
	chunker := NewChunker(size, overlap)

	var sb strings.Builder
	for i := 0; i < 40; i++ {
		sb.WriteString("A sentence about airline baggage policies. ")
	}

	chunks := chunker.ChunkDocuments([]domain.Document{
		{Content: sb.String(), Source: "https://example.com/long"},
	})

	require.Greater(t, len(chunks), 1)
	for i, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c.Content)), size+overlap,
			"chunk %d exceeds size+overlap", i)
	}
}

func TestChunker_OverlapSharesBoundaryText(t *testing.T) {
	chunker := NewChunker(50, 15)

	text := strings.Repeat("one two three four five. ", 8)
	chunks := chunker.ChunkDocuments([]domain.Document{{Content: text, Source: "s"}})

	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		prev := []rune(strings.TrimRight(chunks[i-1].Content, " "))
		tailStart := len(prev) - 5
		if tailStart < 0 {
			tailStart = 0
		}
		assert.Contains(t, chunks[i].Content, string(prev[tailStart:]),
			"chunk %d should begin with the tail of its predecessor", i)
	}
}

func TestChunker_HardCutsUnbrokenText(t *testing.T) {
	chunker := NewChunker(30, 0)

	text := strings.Repeat("x", 100)
	chunks := chunker.ChunkDocuments([]domain.Document{{Content: text, Source: "s"}})

	require.Len(t, chunks, 4)
	total := 0
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Content), 30)
		total += len(c.Content)
	}
	assert.Equal(t, 100, total)
}

func TestChunker_EmptyAndWhitespaceDocumentsDropped(t *testing.T) {
	chunker := NewChunker(1000, 200)

	chunks := chunker.ChunkDocuments([]domain.Document{
		{Content: "", Source: "a"},
		{Content: "   \n\t ", Source: "b"},
		{Content: "real content", Source: "c"},
	})

	require.Len(t, chunks, 1)
	assert.Equal(t, "c", chunks[0].Source)
}

func TestChunker_NoDocuments(t *testing.T) {
	chunker := NewChunker(1000, 200)
	assert.Empty(t, chunker.ChunkDocuments(nil))
}
