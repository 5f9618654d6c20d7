package contract

import (
	"context"
	"time"

	"jobmatch-be/internal/entity"

	"github.com/google/uuid"
)

// EmbeddingRecordRepository persists per-document indexing state. Records are
// never deleted.
type EmbeddingRecordRepository interface {
	// GetByDocument returns nil, nil when no record exists.
	GetByDocument(ctx context.Context, documentId uuid.UUID, documentType entity.DocumentType) (*entity.EmbeddingRecord, error)
	// GetPending returns eligible records, oldest-updated first, capped at batchSize.
	GetPending(ctx context.Context, batchSize int) ([]*entity.EmbeddingRecord, error)
	// ClaimPending is GetPending plus an atomic move to processing under a lease
	// owned by owner. Concurrent claimers never receive the same record.
	ClaimPending(ctx context.Context, owner string, batchSize int, leaseUntil time.Time) ([]*entity.EmbeddingRecord, error)
	// ReleaseStale fails records whose processing lease expired before now.
	ReleaseStale(ctx context.Context, now time.Time) (int64, error)
	Add(ctx context.Context, record *entity.EmbeddingRecord) error
	// AddIfAbsent inserts record unless one already exists for its document,
	// reporting whether it was inserted. It never fails on a duplicate.
	AddIfAbsent(ctx context.Context, record *entity.EmbeddingRecord) (bool, error)
	Update(ctx context.Context, record *entity.EmbeddingRecord) error
	// CompleteClaim persists the outcome of an attempt only while the stored
	// record is still processing under owner's claim. It reports false when
	// the claim was released in the meantime (re-requested or reaped).
	CompleteClaim(ctx context.Context, record *entity.EmbeddingRecord, owner string) (bool, error)
	Exists(ctx context.Context, documentId uuid.UUID, documentType entity.DocumentType) (bool, error)
	CountByStatus(ctx context.Context) (map[entity.IndexingStatus]int64, error)
	// ResetExhausted re-pends records that used up their retry budget. A nil
	// documentType resets both types.
	ResetExhausted(ctx context.Context, documentType *entity.DocumentType) (int64, error)
}
