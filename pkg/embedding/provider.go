package embedding

import "context"

// Task types understood by Gemini. Other providers ignore them.
const (
	TaskTypeSemanticSimilarity = "SEMANTIC_SIMILARITY"
	TaskTypeRetrievalDocument  = "RETRIEVAL_DOCUMENT"
)

// DefaultDimensions matches the vector(768) columns of the index tables.
const DefaultDimensions = 768

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error)
}
