package service

import (
	"fmt"
	"log"
	"sync"
)

// Registry caches chunkers and answer generators across requests, keyed by
// their configuration. Instances are created lazily and reused, so repeated
// queries with the same settings share state instead of rebuilding it.
type Registry struct {
	mu         sync.Mutex
	llm        CompletionClient
	chunkers   map[string]*Chunker
	generators map[string]*AnswerGenerator
}

// NewRegistry creates an empty registry backed by the given completion client.
func NewRegistry(llm CompletionClient) *Registry {
	return &Registry{
		llm:        llm,
		chunkers:   make(map[string]*Chunker),
		generators: make(map[string]*AnswerGenerator),
	}
}

// GetChunker returns the chunker for the given size and overlap, creating it
// on first use.
func (r *Registry) GetChunker(chunkSize, chunkOverlap int) *Chunker {
	key := fmt.Sprintf("%d_%d", chunkSize, chunkOverlap)

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.chunkers[key]; ok {
		return c
	}
	log.Printf("registry: creating chunker size=%d overlap=%d", chunkSize, chunkOverlap)
	c := NewChunker(chunkSize, chunkOverlap)
	r.chunkers[key] = c
	return c
}

// GetGenerator returns the answer generator for the given model, creating it
// on first use.
func (r *Registry) GetGenerator(modelID string) *AnswerGenerator {
	r.mu.Lock()
	defer r.mu.Unlock()

	if g, ok := r.generators[modelID]; ok {
		return g
	}
	log.Printf("registry: creating answer generator model=%s", modelID)
	g := NewAnswerGenerator(r.llm, modelID)
	r.generators[modelID] = g
	return g
}
