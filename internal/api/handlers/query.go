package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/cloo-solutions/askweb/internal/api"
	"github.com/cloo-solutions/askweb/internal/service"
)

// QueryService runs a validated query through the question-answering pipeline.
type QueryService interface {
	ProcessQuery(ctx context.Context, in service.QueryInput) (*service.QueryOutput, error)
}

// QueryDefaults carries the environment-derived defaults applied when a
// request omits an optional setting.
type QueryDefaults struct {
	TargetDomain string
	ModelID      string
	ChunkSize    int
	ChunkOverlap int
}

type QueryHandler struct {
	svc      QueryService
	defaults QueryDefaults
}

func NewQueryHandler(svc QueryService, defaults QueryDefaults) *QueryHandler {
	return &QueryHandler{svc: svc, defaults: defaults}
}

// QueryRequest is the POST /query body. Optional numeric fields are pointers
// so an absent field and an explicit zero can be told apart.
type QueryRequest struct {
	Query        string `json:"query"`
	SystemPrompt string `json:"system_prompt,omitempty"`
	TargetDomain string `json:"target_domain,omitempty"`
	ModelID      string `json:"model_id,omitempty"`
	MaxResults   *int   `json:"max_results,omitempty"`
	MaxChunks    *int   `json:"max_chunks,omitempty"`
	ChunkSize    *int   `json:"chunk_size,omitempty"`
	ChunkOverlap *int   `json:"chunk_overlap,omitempty"`
	LogLevel     string `json:"log_level,omitempty"`
}

const (
	defaultMaxResults = 5
	defaultMaxChunks  = 10

	minMaxResults = 1
	maxMaxResults = 20
	minMaxChunks  = 1
	maxMaxChunks  = 50
	minChunkSize  = 100
	maxChunkSize  = 10000
	minOverlap    = 0
	maxOverlap    = 1000
)

var validLogLevels = map[string]bool{
	"DEBUG":    true,
	"INFO":     true,
	"WARNING":  true,
	"ERROR":    true,
	"CRITICAL": true,
}

// Handle answers a question using web search over the configured domain.
func (h *QueryHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in, err := h.buildInput(req)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.svc.ProcessQuery(r.Context(), in)
	if err != nil {
		log.Printf("query: processing failed: %v", err)
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, out)
}

// buildInput validates the request and resolves defaults. All validation
// happens up front so a bad request never reaches search or the model.
func (h *QueryHandler) buildInput(req QueryRequest) (service.QueryInput, error) {
	var in service.QueryInput

	if strings.TrimSpace(req.Query) == "" {
		return in, fmt.Errorf("query must be a non-empty string")
	}

	maxResults, err := resolveRange(req.MaxResults, defaultMaxResults, minMaxResults, maxMaxResults, "max_results")
	if err != nil {
		return in, err
	}
	maxChunks, err := resolveRange(req.MaxChunks, defaultMaxChunks, minMaxChunks, maxMaxChunks, "max_chunks")
	if err != nil {
		return in, err
	}
	chunkSize, err := resolveRange(req.ChunkSize, h.defaults.ChunkSize, minChunkSize, maxChunkSize, "chunk_size")
	if err != nil {
		return in, err
	}
	chunkOverlap, err := resolveRange(req.ChunkOverlap, h.defaults.ChunkOverlap, minOverlap, maxOverlap, "chunk_overlap")
	if err != nil {
		return in, err
	}
	if chunkOverlap >= chunkSize {
		return in, fmt.Errorf("chunk_overlap must be less than chunk_size")
	}

	debug := false
	if req.LogLevel != "" {
		level := strings.ToUpper(req.LogLevel)
		if !validLogLevels[level] {
			return in, fmt.Errorf("log_level must be one of DEBUG, INFO, WARNING, ERROR, CRITICAL")
		}
		debug = level == "DEBUG"
	}

	if req.SystemPrompt != "" {
		if err := service.ValidateTemplate(req.SystemPrompt); err != nil {
			return in, err
		}
	}

	targetDomain := req.TargetDomain
	if targetDomain == "" {
		targetDomain = h.defaults.TargetDomain
	}
	modelID := req.ModelID
	if modelID == "" {
		modelID = h.defaults.ModelID
	}

	return service.QueryInput{
		Query:        req.Query,
		SystemPrompt: req.SystemPrompt,
		TargetDomain: targetDomain,
		ModelID:      modelID,
		MaxResults:   maxResults,
		MaxChunks:    maxChunks,
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		Debug:        debug,
	}, nil
}

func resolveRange(value *int, fallback, min, max int, field string) (int, error) {
	v := fallback
	if value != nil {
		v = *value
	}
	if v < min || v > max {
		return 0, fmt.Errorf("%s must be between %d and %d", field, min, max)
	}
	return v, nil
}
