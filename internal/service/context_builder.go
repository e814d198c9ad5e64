package service

import (
	"fmt"
	"strings"

	"github.com/cloo-solutions/partsdesk/internal/domain"
)

const (
	// NoContextSentinel tells the model that retrieval found nothing
	NoContextSentinel = "No relevant information found in the database."

	contextBlockDelimiter = "\n\n---\n\n"
	defaultChunkCategory  = "general"
)

// BuildContext renders retrieved chunks, in retrieval order, as labelled
// blocks for the system prompt.
func BuildContext(result *domain.RetrievalResult) string {
	if result.Empty() {
		return NoContextSentinel
	}

	blocks := make([]string, 0, len(result.Hits))
	for i, hit := range result.Hits {
		category := string(hit.Metadata.Category)
		if category == "" {
			category = defaultChunkCategory
		}
		header := fmt.Sprintf("[Source %d - %s]", i+1, category)
		if hit.Metadata.SourceURL != "" {
			header += fmt.Sprintf(" (%s)", hit.Metadata.SourceURL)
		}
		blocks = append(blocks, header+"\n"+hit.Document)
	}
	return strings.Join(blocks, contextBlockDelimiter)
}
