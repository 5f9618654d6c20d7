package memory

import (
	"context"
	"sort"
	"sync"

	"jobmatch-be/internal/entity"
	"jobmatch-be/internal/repository/contract"

	"github.com/google/uuid"
)

// VectorIndex is a brute-force cosine index for development and tests.
type VectorIndex struct {
	mu         sync.RWMutex
	jobs       map[uuid.UUID]entity.JobVectorDocument
	candidates map[uuid.UUID]entity.CandidateVectorDocument
}

func NewVectorIndex() *VectorIndex {
	return &VectorIndex{
		jobs:       make(map[uuid.UUID]entity.JobVectorDocument),
		candidates: make(map[uuid.UUID]entity.CandidateVectorDocument),
	}
}

func (v *VectorIndex) UpsertJob(ctx context.Context, doc *entity.JobVectorDocument) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	stored := *doc
	stored.Embedding = append([]float32(nil), doc.Embedding...)
	stored.Skills = append([]string(nil), doc.Skills...)
	v.jobs[doc.JobId] = stored
	return nil
}

func (v *VectorIndex) UpsertCandidate(ctx context.Context, doc *entity.CandidateVectorDocument) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	stored := *doc
	stored.Embedding = append([]float32(nil), doc.Embedding...)
	stored.Skills = append([]string(nil), doc.Skills...)
	v.candidates[doc.CandidateId] = stored
	return nil
}

func (v *VectorIndex) Delete(ctx context.Context, documentId uuid.UUID, documentType entity.DocumentType) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch documentType {
	case entity.DocumentTypeJob:
		delete(v.jobs, documentId)
	case entity.DocumentTypeCandidateProfile:
		delete(v.candidates, documentId)
	default:
		return entity.ErrUnknownDocumentType
	}
	return nil
}

func (v *VectorIndex) GetEmbedding(ctx context.Context, documentId uuid.UUID, documentType entity.DocumentType) ([]float32, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	switch documentType {
	case entity.DocumentTypeJob:
		if doc, ok := v.jobs[documentId]; ok {
			return append([]float32(nil), doc.Embedding...), nil
		}
	case entity.DocumentTypeCandidateProfile:
		if doc, ok := v.candidates[documentId]; ok {
			return append([]float32(nil), doc.Embedding...), nil
		}
	default:
		return nil, entity.ErrUnknownDocumentType
	}
	return nil, nil
}

func (v *VectorIndex) SearchJobsForCandidate(ctx context.Context, vector []float32, topK int) ([]contract.ScoredDocument, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	hits := make([]contract.ScoredDocument, 0, len(v.jobs))
	for id, doc := range v.jobs {
		hits = append(hits, contract.ScoredDocument{DocumentId: id, Score: cosineSimilarity(vector, doc.Embedding)})
	}
	return topHits(hits, topK), nil
}

func (v *VectorIndex) SearchCandidatesForJob(ctx context.Context, vector []float32, topK int) ([]contract.ScoredDocument, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	hits := make([]contract.ScoredDocument, 0, len(v.candidates))
	for id, doc := range v.candidates {
		hits = append(hits, contract.ScoredDocument{DocumentId: id, Score: cosineSimilarity(vector, doc.Embedding)})
	}
	return topHits(hits, topK), nil
}

// Job returns the stored projection, for inspection in tests and tooling.
func (v *VectorIndex) Job(id uuid.UUID) (entity.JobVectorDocument, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	doc, ok := v.jobs[id]
	return doc, ok
}

func (v *VectorIndex) Candidate(id uuid.UUID) (entity.CandidateVectorDocument, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	doc, ok := v.candidates[id]
	return doc, ok
}

func topHits(hits []contract.ScoredDocument, topK int) []contract.ScoredDocument {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].DocumentId.String() < hits[j].DocumentId.String()
	})
	if topK >= 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}
