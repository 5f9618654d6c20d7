package implementation

import (
	"context"
	"errors"
	"time"

	"jobmatch-be/internal/entity"
	"jobmatch-be/internal/mapper"
	"jobmatch-be/internal/model"
	"jobmatch-be/internal/repository/contract"
	"jobmatch-be/internal/repository/scope"
	"jobmatch-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const staleLeaseMessage = "processing lease expired before the attempt completed"

type EmbeddingRecordRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.EmbeddingRecordMapper
}

func NewEmbeddingRecordRepository(db *gorm.DB) contract.EmbeddingRecordRepository {
	return &EmbeddingRecordRepositoryImpl{
		db:     db,
		mapper: mapper.NewEmbeddingRecordMapper(),
	}
}

func (r *EmbeddingRecordRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *EmbeddingRecordRepositoryImpl) GetByDocument(ctx context.Context, documentId uuid.UUID, documentType entity.DocumentType) (*entity.EmbeddingRecord, error) {
	var m model.EmbeddingRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specification.ByDocument{DocumentID: documentId, DocumentType: documentType})
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *EmbeddingRecordRepositoryImpl) GetPending(ctx context.Context, batchSize int) ([]*entity.EmbeddingRecord, error) {
	if batchSize <= 0 {
		return []*entity.EmbeddingRecord{}, nil
	}
	var models []*model.EmbeddingRecord
	query := r.applySpecifications(r.db.WithContext(ctx),
		specification.EligibleForIndexing{MaxRetries: entity.MaxIndexingRetries},
		specification.Pagination{Limit: batchSize},
	)
	if err := query.Scopes(scope.OldestUpdatedFirst).Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *EmbeddingRecordRepositoryImpl) ClaimPending(ctx context.Context, owner string, batchSize int, leaseUntil time.Time) ([]*entity.EmbeddingRecord, error) {
	if batchSize <= 0 {
		return []*entity.EmbeddingRecord{}, nil
	}

	var claimed []*model.EmbeddingRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var models []*model.EmbeddingRecord
		// SKIP LOCKED lets concurrent workers claim disjoint batches.
		query := r.applySpecifications(tx,
			specification.EligibleForIndexing{MaxRetries: entity.MaxIndexingRetries},
			specification.Pagination{Limit: batchSize},
		)
		err := query.
			Scopes(scope.OldestUpdatedFirst).
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Find(&models).Error
		if err != nil {
			return err
		}
		if len(models) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, len(models))
		for i, m := range models {
			ids[i] = m.Id
		}

		now := time.Now()
		err = r.applySpecifications(tx.Model(&model.EmbeddingRecord{}), specification.ByIDs{IDs: ids}).
			Updates(map[string]interface{}{
				"status":           string(entity.IndexingStatusProcessing),
				"claimed_by":       owner,
				"claim_expires_at": leaseUntil,
				"updated_at":       now,
			}).Error
		if err != nil {
			return err
		}

		for _, m := range models {
			m.Status = string(entity.IndexingStatusProcessing)
			m.ClaimedBy = owner
			lease := leaseUntil
			m.ClaimExpiresAt = &lease
			m.UpdatedAt = now
		}
		claimed = models
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(claimed), nil
}

func (r *EmbeddingRecordRepositoryImpl) ReleaseStale(ctx context.Context, now time.Time) (int64, error) {
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.EmbeddingRecord{}), specification.LeaseExpired{Now: now})
	result := query.Updates(map[string]interface{}{
		"status":           string(entity.IndexingStatusFailed),
		"retry_count":      gorm.Expr("retry_count + 1"),
		"error_message":    staleLeaseMessage,
		"claimed_by":       "",
		"claim_expires_at": nil,
		"updated_at":       now,
	})
	return result.RowsAffected, result.Error
}

func (r *EmbeddingRecordRepositoryImpl) Add(ctx context.Context, record *entity.EmbeddingRecord) error {
	m := r.mapper.ToModel(record)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*record = *r.mapper.ToEntity(m)
	return nil
}

func (r *EmbeddingRecordRepositoryImpl) AddIfAbsent(ctx context.Context, record *entity.EmbeddingRecord) (bool, error) {
	m := r.mapper.ToModel(record)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "document_id"}, {Name: "document_type"}},
			DoNothing: true,
		}).
		Create(m)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	*record = *r.mapper.ToEntity(m)
	return true, nil
}

func (r *EmbeddingRecordRepositoryImpl) Update(ctx context.Context, record *entity.EmbeddingRecord) error {
	m := r.mapper.ToModel(record)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*record = *r.mapper.ToEntity(m)
	return nil
}

func (r *EmbeddingRecordRepositoryImpl) CompleteClaim(ctx context.Context, record *entity.EmbeddingRecord, owner string) (bool, error) {
	now := time.Now()
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.EmbeddingRecord{}),
		specification.ByIDs{IDs: []uuid.UUID{record.Id}},
		specification.HeldBy{Owner: owner},
	)
	result := query.Updates(map[string]interface{}{
		"status":           string(record.Status),
		"retry_count":      record.RetryCount,
		"last_indexed_at":  record.LastIndexedAt,
		"error_message":    record.ErrorMessage,
		"claimed_by":       record.ClaimedBy,
		"claim_expires_at": record.ClaimExpiresAt,
		"updated_at":       now,
	})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	record.UpdatedAt = now
	return true, nil
}

func (r *EmbeddingRecordRepositoryImpl) Exists(ctx context.Context, documentId uuid.UUID, documentType entity.DocumentType) (bool, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.EmbeddingRecord{}),
		specification.ByDocument{DocumentID: documentId, DocumentType: documentType})
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *EmbeddingRecordRepositoryImpl) CountByStatus(ctx context.Context) (map[entity.IndexingStatus]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&model.EmbeddingRecord{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[entity.IndexingStatus]int64, len(rows))
	for _, row := range rows {
		counts[entity.IndexingStatus(row.Status)] = row.Count
	}
	return counts, nil
}

func (r *EmbeddingRecordRepositoryImpl) ResetExhausted(ctx context.Context, documentType *entity.DocumentType) (int64, error) {
	specs := []specification.Specification{
		specification.RetryExhausted{MaxRetries: entity.MaxIndexingRetries},
		specification.ByStatus{Status: entity.IndexingStatusFailed},
	}
	if documentType != nil {
		specs = append(specs, specification.ByDocumentType{DocumentType: *documentType})
	}

	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.EmbeddingRecord{}), specs...)
	result := query.Updates(map[string]interface{}{
		"status":           string(entity.IndexingStatusPending),
		"retry_count":      0,
		"claimed_by":       "",
		"claim_expires_at": nil,
		"updated_at":       time.Now(),
	})
	return result.RowsAffected, result.Error
}
