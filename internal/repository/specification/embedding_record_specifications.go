package specification

import (
	"time"

	"jobmatch-be/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByDocument struct {
	DocumentID   uuid.UUID
	DocumentType entity.DocumentType
}

func (s ByDocument) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ? AND document_type = ?", s.DocumentID, string(s.DocumentType))
}

type ByDocumentType struct {
	DocumentType entity.DocumentType
}

func (s ByDocumentType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_type = ?", string(s.DocumentType))
}

type ByStatus struct {
	Status entity.IndexingStatus
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", string(s.Status))
}

// EligibleForIndexing matches pending records and failed records that still
// have retry budget.
type EligibleForIndexing struct {
	MaxRetries int
}

func (s EligibleForIndexing) Apply(db *gorm.DB) *gorm.DB {
	return db.
		Where("status IN ?", []string{string(entity.IndexingStatusPending), string(entity.IndexingStatusFailed)}).
		Where("retry_count < ?", s.MaxRetries)
}

type RetryExhausted struct {
	MaxRetries int
}

func (s RetryExhausted) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("retry_count >= ?", s.MaxRetries)
}

// HeldBy matches records still processing under owner's claim.
type HeldBy struct {
	Owner string
}

func (s HeldBy) Apply(db *gorm.DB) *gorm.DB {
	return db.
		Where("status = ?", string(entity.IndexingStatusProcessing)).
		Where("claimed_by = ?", s.Owner)
}

// LeaseExpired matches records stuck in processing after their claim lapsed.
type LeaseExpired struct {
	Now time.Time
}

func (s LeaseExpired) Apply(db *gorm.DB) *gorm.DB {
	return db.
		Where("status = ?", string(entity.IndexingStatusProcessing)).
		Where("claim_expires_at IS NOT NULL AND claim_expires_at < ?", s.Now)
}
