package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/askweb/internal/domain"
	"github.com/cloo-solutions/askweb/internal/service"
)

type MockQueryService struct {
	mock.Mock
}

func (m *MockQueryService) ProcessQuery(ctx context.Context, in service.QueryInput) (*service.QueryOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.QueryOutput), args.Error(1)
}

func testDefaults() QueryDefaults {
	return QueryDefaults{
		TargetDomain: "example.com",
		ModelID:      "gpt-4o-mini",
		ChunkSize:    1000,
		ChunkOverlap: 200,
	}
}

func postQuery(t *testing.T, h *QueryHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestQueryHandler_DefaultsApplied(t *testing.T) {
	svc := new(MockQueryService)
	svc.On("ProcessQuery", mock.Anything, service.QueryInput{
		Query:        "baggage fees?",
		TargetDomain: "example.com",
		ModelID:      "gpt-4o-mini",
		MaxResults:   5,
		MaxChunks:    10,
		ChunkSize:    1000,
		ChunkOverlap: 200,
	}).Return(&service.QueryOutput{Answer: "ok"}, nil)

	h := NewQueryHandler(svc, testDefaults())
	rec := postQuery(t, h, `{"query": "baggage fees?"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestQueryHandler_Overrides(t *testing.T) {
	svc := new(MockQueryService)
	svc.On("ProcessQuery", mock.Anything, mock.MatchedBy(func(in service.QueryInput) bool {
		return in.TargetDomain == "docs.example.org" &&
			in.ModelID == "gpt-4o" &&
			in.MaxResults == 3 &&
			in.MaxChunks == 20 &&
			in.ChunkSize == 500 &&
			in.ChunkOverlap == 50 &&
			in.Debug
	})).Return(&service.QueryOutput{Answer: "ok"}, nil)

	h := NewQueryHandler(svc, testDefaults())
	rec := postQuery(t, h, `{
		"query": "q",
		"target_domain": "docs.example.org",
		"model_id": "gpt-4o",
		"max_results": 3,
		"max_chunks": 20,
		"chunk_size": 500,
		"chunk_overlap": 50,
		"log_level": "DEBUG"
	}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestQueryHandler_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"missing query", `{}`, "query must be a non-empty string"},
		{"blank query", `{"query": "   "}`, "query must be a non-empty string"},
		{"malformed json", `{"query": `, "invalid request body"},
		{"max_results too low", `{"query": "q", "max_results": 0}`, "max_results must be between 1 and 20"},
		{"max_results too high", `{"query": "q", "max_results": 21}`, "max_results must be between 1 and 20"},
		{"max_chunks too high", `{"query": "q", "max_chunks": 51}`, "max_chunks must be between 1 and 50"},
		{"chunk_size too small", `{"query": "q", "chunk_size": 99}`, "chunk_size must be between 100 and 10000"},
		{"chunk_size too large", `{"query": "q", "chunk_size": 10001}`, "chunk_size must be between 100 and 10000"},
		{"chunk_overlap negative", `{"query": "q", "chunk_overlap": -1}`, "chunk_overlap must be between 0 and 1000"},
		{"chunk_overlap too large", `{"query": "q", "chunk_overlap": 1001}`, "chunk_overlap must be between 0 and 1000"},
		{"overlap not below size", `{"query": "q", "chunk_size": 200, "chunk_overlap": 200}`, "chunk_overlap must be less than chunk_size"},
		{"bad log level", `{"query": "q", "log_level": "TRACE"}`, "log_level must be one of"},
		{"prompt missing query placeholder", `{"query": "q", "system_prompt": "only {context}"}`, "{query}"},
		{"prompt missing context placeholder", `{"query": "q", "system_prompt": "only {query}"}`, "{context}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockQueryService)
			h := NewQueryHandler(svc, testDefaults())

			rec := postQuery(t, h, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body struct {
				Error string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Contains(t, body.Error, tt.wantMsg)
			svc.AssertNotCalled(t, "ProcessQuery", mock.Anything, mock.Anything)
		})
	}
}

func TestQueryHandler_LowercaseLogLevelAccepted(t *testing.T) {
	svc := new(MockQueryService)
	svc.On("ProcessQuery", mock.Anything, mock.MatchedBy(func(in service.QueryInput) bool {
		return !in.Debug
	})).Return(&service.QueryOutput{Answer: "ok"}, nil)

	h := NewQueryHandler(svc, testDefaults())
	rec := postQuery(t, h, `{"query": "q", "log_level": "warning"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestQueryHandler_PipelineFailure(t *testing.T) {
	svc := new(MockQueryService)
	svc.On("ProcessQuery", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: model overloaded", domain.ErrGenerationFailed))

	h := NewQueryHandler(svc, testDefaults())
	rec := postQuery(t, h, `{"query": "q"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "failed to process query", body.Error)
	assert.NotContains(t, body.Error, "overloaded")
}

func TestQueryHandler_SuccessEnvelope(t *testing.T) {
	svc := new(MockQueryService)
	svc.On("ProcessQuery", mock.Anything, mock.Anything).Return(&service.QueryOutput{
		Answer:  "Checked bags cost $30.",
		Sources: []string{"https://example.com/bags"},
		SourceDetails: []service.SourceDetail{
			{Rank: 1, SimilarityScore: 0.9132, URL: "https://example.com/bags", ContentPreview: "Checked bags..."},
		},
		Metadata: service.QueryMetadata{ChunksProcessed: 1, URLsScraped: 1, ModelID: "gpt-4o-mini"},
	}, nil)

	h := NewQueryHandler(svc, testDefaults())
	rec := postQuery(t, h, `{"query": "baggage fees?"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data service.QueryOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Checked bags cost $30.", body.Data.Answer)
	require.Len(t, body.Data.SourceDetails, 1)
	assert.Equal(t, 0.9132, body.Data.SourceDetails[0].SimilarityScore)
	assert.Equal(t, 1, body.Data.Metadata.URLsScraped)
}
