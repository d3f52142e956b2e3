package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloo-solutions/askweb/internal/domain"
)

const (
	queryPlaceholder   = "{query}"
	contextPlaceholder = "{context}"
)

// DefaultPromptTemplate is used when the caller does not supply a system
// prompt. It instructs the model to answer from the provided context only.
const DefaultPromptTemplate = `You are a helpful assistant answering questions using the provided web content.

Answer the question directly and concisely based only on the context below. Do not begin with phrases like "Based on the context" or "According to the sources". Do not cite source numbers in your answer. If the context does not contain enough information to answer, say so plainly.

Context:
{context}

Question: {query}

Answer:`

// CompletionClient generates a completion for a fully rendered prompt.
type CompletionClient interface {
	GenerateCompletion(ctx context.Context, model, prompt string) (string, error)
}

// AnswerGenerator renders a prompt template and asks the model for an answer.
type AnswerGenerator struct {
	llm      CompletionClient
	modelID  string
	template string
}

// NewAnswerGenerator creates a generator for the given model using the
// default prompt template.
func NewAnswerGenerator(llm CompletionClient, modelID string) *AnswerGenerator {
	return &AnswerGenerator{llm: llm, modelID: modelID, template: DefaultPromptTemplate}
}

// ValidateTemplate checks that a prompt template carries both required
// placeholders. Validation happens before any model call so a bad template
// costs nothing.
func ValidateTemplate(template string) error {
	if !strings.Contains(template, queryPlaceholder) {
		return domain.ErrTemplateMissingQuery
	}
	if !strings.Contains(template, contextPlaceholder) {
		return domain.ErrTemplateMissingContext
	}
	return nil
}

// Generate answers the query from the assembled context. A non-empty custom
// template overrides the default and is validated first.
func (g *AnswerGenerator) Generate(ctx context.Context, query, contextText, customTemplate string) (string, error) {
	template := g.template
	if customTemplate != "" {
		if err := ValidateTemplate(customTemplate); err != nil {
			return "", err
		}
		template = customTemplate
	}

	prompt := strings.ReplaceAll(template, queryPlaceholder, query)
	prompt = strings.ReplaceAll(prompt, contextPlaceholder, contextText)

	answer, err := g.llm.GenerateCompletion(ctx, g.modelID, prompt)
	if err != nil {
		log.Printf("answer: completion failed for model %s: %v", g.modelID, err)
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}
	return answer, nil
}
