package implementation

import (
	"context"
	"errors"
	"fmt"

	"jobmatch-be/internal/entity"
	"jobmatch-be/internal/mapper"
	"jobmatch-be/internal/model"
	"jobmatch-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VectorIndexRepositoryImpl keeps job and candidate vectors in two pgvector
// tables and ranks them by cosine distance (<=>).
type VectorIndexRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.VectorDocumentMapper
}

func NewVectorIndexRepository(db *gorm.DB) contract.VectorIndex {
	return &VectorIndexRepositoryImpl{
		db:     db,
		mapper: mapper.NewVectorDocumentMapper(),
	}
}

func (r *VectorIndexRepositoryImpl) UpsertJob(ctx context.Context, doc *entity.JobVectorDocument) error {
	m, err := r.mapper.JobToModel(doc)
	if err != nil {
		return fmt.Errorf("map job vector %s: %w", doc.JobId, err)
	}
	// Whole-row replace: the projection is never patched.
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "job_id"}},
			UpdateAll: true,
		}).
		Create(m).Error
}

func (r *VectorIndexRepositoryImpl) UpsertCandidate(ctx context.Context, doc *entity.CandidateVectorDocument) error {
	m, err := r.mapper.CandidateToModel(doc)
	if err != nil {
		return fmt.Errorf("map candidate vector %s: %w", doc.CandidateId, err)
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "candidate_id"}},
			UpdateAll: true,
		}).
		Create(m).Error
}

func (r *VectorIndexRepositoryImpl) Delete(ctx context.Context, documentId uuid.UUID, documentType entity.DocumentType) error {
	switch documentType {
	case entity.DocumentTypeJob:
		return r.db.WithContext(ctx).Where("job_id = ?", documentId).Delete(&model.JobVector{}).Error
	case entity.DocumentTypeCandidateProfile:
		return r.db.WithContext(ctx).Where("candidate_id = ?", documentId).Delete(&model.CandidateVector{}).Error
	}
	return entity.ErrUnknownDocumentType
}

func (r *VectorIndexRepositoryImpl) GetEmbedding(ctx context.Context, documentId uuid.UUID, documentType entity.DocumentType) ([]float32, error) {
	var (
		vector pgvector.Vector
		err    error
	)
	switch documentType {
	case entity.DocumentTypeJob:
		var m model.JobVector
		err = r.db.WithContext(ctx).Select("job_id", "embedding").Where("job_id = ?", documentId).First(&m).Error
		vector = m.Embedding
	case entity.DocumentTypeCandidateProfile:
		var m model.CandidateVector
		err = r.db.WithContext(ctx).Select("candidate_id", "embedding").Where("candidate_id = ?", documentId).First(&m).Error
		vector = m.Embedding
	default:
		return nil, entity.ErrUnknownDocumentType
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return vector.Slice(), nil
}

func (r *VectorIndexRepositoryImpl) SearchJobsForCandidate(ctx context.Context, vector []float32, topK int) ([]contract.ScoredDocument, error) {
	return r.search(ctx, "job_vectors", "job_id", vector, topK)
}

func (r *VectorIndexRepositoryImpl) SearchCandidatesForJob(ctx context.Context, vector []float32, topK int) ([]contract.ScoredDocument, error) {
	return r.search(ctx, "candidate_vectors", "candidate_id", vector, topK)
}

func (r *VectorIndexRepositoryImpl) search(ctx context.Context, table, idColumn string, vector []float32, topK int) ([]contract.ScoredDocument, error) {
	if topK <= 0 {
		return []contract.ScoredDocument{}, nil
	}

	// Cosine distance in pgvector is 1 - cosine_similarity.
	type result struct {
		DocumentId uuid.UUID
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(vector)

	err := r.db.WithContext(ctx).
		Table(table).
		Select(fmt.Sprintf("%s AS document_id, 1 - (embedding <=> ?) AS similarity", idColumn), queryVector).
		Order(gorm.Expr("embedding <=> ?", queryVector)).
		Limit(topK).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	hits := make([]contract.ScoredDocument, len(results))
	for i, res := range results {
		hits[i] = contract.ScoredDocument{DocumentId: res.DocumentId, Score: res.Similarity}
	}
	return hits, nil
}
