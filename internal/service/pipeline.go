package service

import (
	"context"
	"log"
	"math"
	"strings"
	"time"

	"github.com/cloo-solutions/askweb/internal/domain"
	"github.com/cloo-solutions/askweb/internal/telemetry"
)

// Fixed answers for the two degradation points where the pipeline stops
// early without calling the model.
const (
	NoResultsAnswer = "No relevant search results found for your query."
	NoContentAnswer = "Unable to retrieve content from search results."
)

const previewLength = 200

// Searcher finds result URLs for a query scoped to a domain.
type Searcher interface {
	Search(ctx context.Context, query, targetDomain string, maxResults int) []string
}

// ContentFetcher retrieves page content for a set of URLs.
type ContentFetcher interface {
	FetchAll(ctx context.Context, urls []string) []domain.Document
}

// ContentFilter drops documents unlikely to carry useful content.
type ContentFilter interface {
	Filter(docs []domain.Document) []domain.Document
}

// QueryInput carries a fully validated query with all settings resolved.
type QueryInput struct {
	Query        string
	SystemPrompt string
	TargetDomain string
	ModelID      string
	MaxResults   int
	MaxChunks    int
	ChunkSize    int
	ChunkOverlap int
	Debug        bool
}

// SourceDetail describes one ranked chunk in the response, for debugging
// relevance.
type SourceDetail struct {
	Rank            int     `json:"rank"`
	SimilarityScore float64 `json:"similarity_score"`
	URL             string  `json:"url"`
	ContentPreview  string  `json:"content_preview"`
}

// QueryMetadata summarizes how a query was processed.
type QueryMetadata struct {
	ChunksProcessed int    `json:"chunks_processed"`
	URLsScraped     int    `json:"urls_scraped"`
	TotalTimeMs     int64  `json:"total_time_ms"`
	TargetDomain    string `json:"target_domain"`
	ModelID         string `json:"model_id"`
	ChunkSize       int    `json:"chunk_size"`
	ChunkOverlap    int    `json:"chunk_overlap"`
}

// QueryOutput is the pipeline result returned to the API layer.
type QueryOutput struct {
	Answer        string         `json:"answer"`
	Sources       []string       `json:"sources"`
	SourceDetails []SourceDetail `json:"source_details"`
	Metadata      QueryMetadata  `json:"metadata"`
}

// Pipeline runs the full query flow: search, fetch, filter, chunk, rank,
// assemble context, and generate an answer.
type Pipeline struct {
	searcher Searcher
	fetcher  ContentFetcher
	filter   ContentFilter
	ranker   *Ranker
	registry *Registry
}

// NewPipeline wires the pipeline stages together.
func NewPipeline(searcher Searcher, fetcher ContentFetcher, filter ContentFilter, ranker *Ranker, registry *Registry) *Pipeline {
	return &Pipeline{
		searcher: searcher,
		fetcher:  fetcher,
		filter:   filter,
		ranker:   ranker,
		registry: registry,
	}
}

// ProcessQuery executes the query flow end to end. It returns an error only
// when answer generation fails; missing search results or unusable content
// degrade to fixed answers instead.
func (p *Pipeline) ProcessQuery(ctx context.Context, in QueryInput) (*QueryOutput, error) {
	start := time.Now()

	ctx, span := telemetry.StartSpan(ctx, "pipeline.process_query", telemetry.SpanAttributes{
		Operation:    "process_query",
		TargetDomain: in.TargetDomain,
		Model:        in.ModelID,
	})
	defer span.End()

	log.Printf("pipeline: processing query (domain=%s model=%s max_results=%d max_chunks=%d)",
		in.TargetDomain, in.ModelID, in.MaxResults, in.MaxChunks)

	urls := p.searcher.Search(ctx, in.Query, in.TargetDomain, in.MaxResults)
	if len(urls) == 0 {
		log.Printf("pipeline: no search results for query")
		return &QueryOutput{
			Answer:   NoResultsAnswer,
			Sources:  []string{},
			Metadata: p.metadata(in, 0, 0, start),
		}, nil
	}

	docs := p.filter.Filter(p.fetcher.FetchAll(ctx, urls))
	if len(docs) == 0 {
		log.Printf("pipeline: no usable content from %d urls", len(urls))
		return &QueryOutput{
			Answer:   NoContentAnswer,
			Sources:  urls,
			Metadata: p.metadata(in, 0, 0, start),
		}, nil
	}

	chunker := p.registry.GetChunker(in.ChunkSize, in.ChunkOverlap)
	chunks := chunker.ChunkDocuments(docs)

	topChunks, scores := p.ranker.Rank(ctx, chunks, in.Query, in.MaxChunks)
	if in.Debug {
		for i, chunk := range topChunks {
			log.Printf("pipeline: rank %d score=%.4f source=%s", i+1, scores[i], chunk.SourceOrUnknown())
		}
	}

	contextText := FormatChunksForContext(topChunks)
	if in.Debug {
		log.Printf("pipeline: assembled context of %d chars from %d chunks", len(contextText), len(topChunks))
	}

	generator := p.registry.GetGenerator(in.ModelID)
	answer, err := generator.Generate(ctx, in.Query, contextText, in.SystemPrompt)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	out := &QueryOutput{
		Answer:        answer,
		Sources:       dedupeSources(topChunks),
		SourceDetails: buildSourceDetails(topChunks, scores),
		Metadata:      p.metadata(in, len(topChunks), len(docs), start),
	}
	log.Printf("pipeline: query complete (chunks=%d urls=%d time=%dms)",
		out.Metadata.ChunksProcessed, out.Metadata.URLsScraped, out.Metadata.TotalTimeMs)
	return out, nil
}

func (p *Pipeline) metadata(in QueryInput, chunksProcessed, urlsScraped int, start time.Time) QueryMetadata {
	return QueryMetadata{
		ChunksProcessed: chunksProcessed,
		URLsScraped:     urlsScraped,
		TotalTimeMs:     time.Since(start).Milliseconds(),
		TargetDomain:    in.TargetDomain,
		ModelID:         in.ModelID,
		ChunkSize:       in.ChunkSize,
		ChunkOverlap:    in.ChunkOverlap,
	}
}

// dedupeSources collects the distinct non-empty sources of the ranked chunks
// in first-seen order.
func dedupeSources(chunks []domain.Chunk) []string {
	seen := make(map[string]struct{}, len(chunks))
	sources := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		src := strings.TrimSpace(chunk.Source)
		if src == "" {
			continue
		}
		if _, ok := seen[src]; ok {
			continue
		}
		seen[src] = struct{}{}
		sources = append(sources, src)
	}
	return sources
}

func buildSourceDetails(chunks []domain.Chunk, scores []float64) []SourceDetail {
	details := make([]SourceDetail, len(chunks))
	for i, chunk := range chunks {
		score := 0.0
		if i < len(scores) {
			score = scores[i]
		}
		details[i] = SourceDetail{
			Rank:            i + 1,
			SimilarityScore: roundScore(score),
			URL:             chunk.SourceOrUnknown(),
			ContentPreview:  preview(chunk.Content),
		}
	}
	return details
}

func roundScore(score float64) float64 {
	return math.Round(score*10000) / 10000
}

func preview(content string) string {
	runes := []rune(strings.TrimSpace(content))
	if len(runes) <= previewLength {
		return string(runes)
	}
	return string(runes[:previewLength]) + "..."
}
