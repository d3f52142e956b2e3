package service

import (
	"fmt"
	"strings"

	"github.com/cloo-solutions/askweb/internal/domain"
)

const contextSeparator = "\n\n---\n\n"

// FormatChunksForContext renders ranked chunks as numbered, source-attributed
// blocks for the model prompt. Chunks without a source are labeled
// "Unknown source". An empty slice yields an empty string.
func FormatChunksForContext(chunks []domain.Chunk) string {
	if len(chunks) == 0 {
		return ""
	}

	blocks := make([]string, len(chunks))
	for i, chunk := range chunks {
		blocks[i] = fmt.Sprintf("[Source %d: %s]\n%s",
			i+1, chunk.SourceOrUnknown(), strings.TrimSpace(chunk.Content))
	}
	return strings.Join(blocks, contextSeparator)
}
