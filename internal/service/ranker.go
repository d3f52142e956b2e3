package service

import (
	"context"
	"log"
	"math"
	"sort"

	"github.com/cloo-solutions/askweb/internal/domain"
)

// EmbeddingClient produces vector embeddings for query and chunk text.
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// candidateMultiplier bounds embedding cost: at most maxChunks*3 candidates
// are ever embedded, regardless of how many chunks a query produced.
const candidateMultiplier = 3

// Ranker orders chunks by semantic similarity to the query. With no
// embedding client it degrades to positional order.
type Ranker struct {
	embeddings EmbeddingClient
}

// NewRanker creates a Ranker. A nil client disables similarity ranking.
func NewRanker(embeddings EmbeddingClient) *Ranker {
	return &Ranker{embeddings: embeddings}
}

// Rank returns up to maxChunks chunks ordered by cosine similarity to the
// query, along with their scores. Any embedding failure degrades to the first
// maxChunks chunks in document order with zero scores; Rank never fails.
func (r *Ranker) Rank(ctx context.Context, chunks []domain.Chunk, query string, maxChunks int) ([]domain.Chunk, []float64) {
	if len(chunks) == 0 {
		return nil, nil
	}
	if len(chunks) <= maxChunks {
		return chunks, make([]float64, len(chunks))
	}
	if r.embeddings == nil {
		return chunks[:maxChunks], make([]float64, maxChunks)
	}

	candidates := chunks
	if limit := maxChunks * candidateMultiplier; len(candidates) > limit {
		candidates = candidates[:limit]
	}

	queryVec, err := r.embeddings.GenerateEmbedding(ctx, query)
	if err != nil {
		log.Printf("ranker: query embedding failed, falling back to positional order: %v", err)
		return chunks[:maxChunks], make([]float64, maxChunks)
	}

	vectors := r.embedCandidates(ctx, candidates)

	ranked := make([]domain.RankedChunk, len(candidates))
	for i, chunk := range candidates {
		ranked[i] = domain.RankedChunk{
			Chunk: chunk,
			Score: cosineSimilarity(queryVec, vectors[i]),
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	top := ranked[:maxChunks]
	out := make([]domain.Chunk, maxChunks)
	scores := make([]float64, maxChunks)
	for i, rc := range top {
		out[i] = rc.Chunk
		scores[i] = rc.Score
	}
	return out, scores
}

// embedCandidates embeds all candidates in one batch call, falling back to
// per-chunk requests if the batch fails. A chunk that cannot be embedded gets
// a nil vector and scores zero.
func (r *Ranker) embedCandidates(ctx context.Context, candidates []domain.Chunk) [][]float32 {
	texts := make([]string, len(candidates))
	for i, chunk := range candidates {
		texts[i] = chunk.Content
	}

	vectors, err := r.embeddings.GenerateEmbeddings(ctx, texts)
	if err == nil && len(vectors) == len(candidates) {
		return vectors
	}
	log.Printf("ranker: batch embedding failed, retrying per chunk: %v", err)

	vectors = make([][]float32, len(candidates))
	for i, text := range texts {
		vec, err := r.embeddings.GenerateEmbedding(ctx, text)
		if err != nil {
			log.Printf("ranker: embedding chunk %d failed: %v", i, err)
			continue
		}
		vectors[i] = vec
	}
	return vectors
}

// cosineSimilarity returns the cosine of the angle between two vectors.
// Mismatched lengths or a zero-magnitude vector yield 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
