package contract

import (
	"context"

	"jobmatch-be/internal/entity"

	"github.com/google/uuid"
)

// ScoredDocument is a nearest-neighbour hit. Score is cosine similarity.
type ScoredDocument struct {
	DocumentId uuid.UUID
	Score      float64
}

// VectorIndex stores one vector document per job and per candidate.
type VectorIndex interface {
	UpsertJob(ctx context.Context, doc *entity.JobVectorDocument) error
	UpsertCandidate(ctx context.Context, doc *entity.CandidateVectorDocument) error
	// Delete is a no-op for documents that are not in the index.
	Delete(ctx context.Context, documentId uuid.UUID, documentType entity.DocumentType) error
	// GetEmbedding returns nil, nil when the document is not in the index.
	GetEmbedding(ctx context.Context, documentId uuid.UUID, documentType entity.DocumentType) ([]float32, error)
	SearchJobsForCandidate(ctx context.Context, vector []float32, topK int) ([]ScoredDocument, error)
	SearchCandidatesForJob(ctx context.Context, vector []float32, topK int) ([]ScoredDocument, error)
}
