package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/askweb/internal/domain"
)

type stubEmbedder struct {
	queryVec  []float32
	queryErr  error
	chunkVecs map[string][]float32
	batchErr  error
	batchN    int
	singleN   int
}

func (s *stubEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	s.singleN++
	if vec, ok := s.chunkVecs[text]; ok {
		return vec, nil
	}
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.queryVec, nil
}

func (s *stubEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	s.batchN++
	if s.batchErr != nil {
		return nil, s.batchErr
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = s.chunkVecs[text]
	}
	return out, nil
}

func makeChunks(n int) []domain.Chunk {
	chunks := make([]domain.Chunk, n)
	for i := range chunks {
		chunks[i] = domain.Chunk{
			Content: fmt.Sprintf("chunk %d", i),
			Source:  fmt.Sprintf("https://example.com/%d", i),
		}
	}
	return chunks
}

func TestRanker_EmptyInput(t *testing.T) {
	ranker := NewRanker(nil)
	chunks, scores := ranker.Rank(context.Background(), nil, "q", 5)
	assert.Nil(t, chunks)
	assert.Nil(t, scores)
}

func TestRanker_FewerChunksThanLimit(t *testing.T) {
	embedder := &stubEmbedder{}
	ranker := NewRanker(embedder)

	in := makeChunks(3)
	chunks, scores := ranker.Rank(context.Background(), in, "q", 5)

	assert.Equal(t, in, chunks)
	assert.Equal(t, []float64{0, 0, 0}, scores)
	assert.Zero(t, embedder.batchN, "no embeddings should be requested when all chunks fit")
	assert.Zero(t, embedder.singleN)
}

func TestRanker_NoEmbedderDegradesToPositional(t *testing.T) {
	ranker := NewRanker(nil)

	in := makeChunks(10)
	chunks, scores := ranker.Rank(context.Background(), in, "q", 4)

	require.Len(t, chunks, 4)
	assert.Equal(t, in[:4], chunks)
	assert.Equal(t, []float64{0, 0, 0, 0}, scores)
}

func TestRanker_OrdersBySimilarity(t *testing.T) {
	embedder := &stubEmbedder{
		queryVec: []float32{1, 0},
		chunkVecs: map[string][]float32{
			"chunk 0": {0, 1},       // orthogonal
			"chunk 1": {1, 0},       // identical direction
			"chunk 2": {1, 1},       // partial match
			"chunk 3": {-1, 0},      // opposite
		},
	}
	ranker := NewRanker(embedder)

	chunks, scores := ranker.Rank(context.Background(), makeChunks(4), "q", 2)

	require.Len(t, chunks, 2)
	assert.Equal(t, "chunk 1", chunks[0].Content)
	assert.Equal(t, "chunk 2", chunks[1].Content)
	assert.InDelta(t, 1.0, scores[0], 1e-9)
	assert.InDelta(t, 0.7071, scores[1], 1e-4)
}

func TestRanker_CandidateCap(t *testing.T) {
	vecs := make(map[string][]float32, 30)
	for i := 0; i < 30; i++ {
		vecs[fmt.Sprintf("chunk %d", i)] = []float32{1, 0}
	}
	embedder := &stubEmbedder{queryVec: []float32{1, 0}, chunkVecs: vecs}

	var captured []string
	capture := &capturingEmbedder{inner: embedder, texts: &captured}

	chunks, _ := NewRanker(capture).Rank(context.Background(), makeChunks(30), "q", 5)

	require.Len(t, chunks, 5)
	assert.Len(t, captured, 15, "at most maxChunks*3 candidates are embedded")
}

type capturingEmbedder struct {
	inner *stubEmbedder
	texts *[]string
}

func (c *capturingEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return c.inner.GenerateEmbedding(ctx, text)
}

func (c *capturingEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	*c.texts = append(*c.texts, texts...)
	return c.inner.GenerateEmbeddings(ctx, texts)
}

func TestRanker_QueryEmbeddingFailureDegrades(t *testing.T) {
	embedder := &stubEmbedder{queryErr: errors.New("quota exceeded")}
	ranker := NewRanker(embedder)

	in := makeChunks(8)
	chunks, scores := ranker.Rank(context.Background(), in, "q", 3)

	require.Len(t, chunks, 3)
	assert.Equal(t, in[:3], chunks)
	assert.Equal(t, []float64{0, 0, 0}, scores)
}

func TestRanker_BatchFailureFallsBackPerChunk(t *testing.T) {
	embedder := &stubEmbedder{
		queryVec: []float32{1, 0},
		batchErr: errors.New("batch too large"),
		chunkVecs: map[string][]float32{
			"chunk 0": {0, 1},
			"chunk 1": {1, 0},
			"chunk 2": {1, 1},
			"chunk 3": {0.5, 0.1},
		},
	}
	ranker := NewRanker(embedder)

	chunks, scores := ranker.Rank(context.Background(), makeChunks(4), "q", 2)

	require.Len(t, chunks, 2)
	assert.Equal(t, "chunk 1", chunks[0].Content)
	assert.Greater(t, scores[0], scores[1])
	assert.Greater(t, embedder.singleN, 1, "per-chunk fallback should have been used")
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"length mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0},
		{"nil", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, cosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}
