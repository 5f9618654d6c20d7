package entity

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxIndexingRetries caps automatic retries. A record whose RetryCount reached
// the cap is only picked up again after an explicit indexing request.
const MaxIndexingRetries = 3

var ErrUnknownDocumentType = errors.New("unknown document type")

type DocumentType string

const (
	DocumentTypeJob              DocumentType = "job"
	DocumentTypeCandidateProfile DocumentType = "candidate_profile"
)

func (t DocumentType) IsValid() bool {
	return t == DocumentTypeJob || t == DocumentTypeCandidateProfile
}

func (t DocumentType) String() string {
	return string(t)
}

// ParseDocumentType accepts the persisted form plus a few aliases used by the
// surrounding services ("candidate", "profile").
func ParseDocumentType(raw string) (DocumentType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "job", "jobs":
		return DocumentTypeJob, nil
	case "candidate_profile", "candidate", "profile", "candidates":
		return DocumentTypeCandidateProfile, nil
	}
	return "", ErrUnknownDocumentType
}

type IndexingStatus string

const (
	IndexingStatusPending    IndexingStatus = "pending"
	IndexingStatusProcessing IndexingStatus = "processing"
	IndexingStatusIndexed    IndexingStatus = "indexed"
	IndexingStatusFailed     IndexingStatus = "failed"
)

func (s IndexingStatus) IsValid() bool {
	switch s {
	case IndexingStatusPending, IndexingStatusProcessing, IndexingStatusIndexed, IndexingStatusFailed:
		return true
	}
	return false
}

// EmbeddingRecord tracks the indexing state of one (DocumentId, DocumentType) pair.
type EmbeddingRecord struct {
	Id             uuid.UUID
	DocumentId     uuid.UUID
	DocumentType   DocumentType
	Status         IndexingStatus
	RetryCount     int
	LastIndexedAt  *time.Time
	ErrorMessage   string
	ClaimedBy      string
	ClaimExpiresAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func NewEmbeddingRecord(documentId uuid.UUID, documentType DocumentType, now time.Time) *EmbeddingRecord {
	return &EmbeddingRecord{
		Id:           uuid.New(),
		DocumentId:   documentId,
		DocumentType: documentType,
		Status:       IndexingStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// MarkPending re-enters the record into the queue. History is kept, except
// that an exhausted retry budget is restored so the record becomes eligible again.
func (r *EmbeddingRecord) MarkPending(now time.Time) {
	r.Status = IndexingStatusPending
	if r.RetryCount >= MaxIndexingRetries {
		r.RetryCount = 0
	}
	r.releaseClaim()
	r.UpdatedAt = now
}

func (r *EmbeddingRecord) MarkProcessing(owner string, leaseUntil time.Time, now time.Time) {
	r.Status = IndexingStatusProcessing
	r.ClaimedBy = owner
	r.ClaimExpiresAt = &leaseUntil
	r.UpdatedAt = now
}

func (r *EmbeddingRecord) MarkIndexed(now time.Time) {
	r.Status = IndexingStatusIndexed
	r.LastIndexedAt = &now
	r.ErrorMessage = ""
	r.RetryCount = 0
	r.releaseClaim()
	r.UpdatedAt = now
}

func (r *EmbeddingRecord) MarkFailed(message string, now time.Time) {
	r.Status = IndexingStatusFailed
	r.RetryCount++
	r.ErrorMessage = message
	r.releaseClaim()
	r.UpdatedAt = now
}

// MarkExhausted records a failure that retrying cannot fix, such as a source
// document that no longer exists.
func (r *EmbeddingRecord) MarkExhausted(message string, now time.Time) {
	r.MarkFailed(message, now)
	if r.RetryCount < MaxIndexingRetries {
		r.RetryCount = MaxIndexingRetries
	}
}

func (r *EmbeddingRecord) IsRetryable() bool {
	return r.RetryCount < MaxIndexingRetries
}

// IsEligible reports whether the record belongs in the next pending batch.
func (r *EmbeddingRecord) IsEligible() bool {
	if !r.IsRetryable() {
		return false
	}
	return r.Status == IndexingStatusPending || r.Status == IndexingStatusFailed
}

func (r *EmbeddingRecord) IsLeaseExpired(now time.Time) bool {
	return r.Status == IndexingStatusProcessing && r.ClaimExpiresAt != nil && r.ClaimExpiresAt.Before(now)
}

func (r *EmbeddingRecord) IsClaimedByOther(owner string, now time.Time) bool {
	if r.Status != IndexingStatusProcessing || r.ClaimedBy == "" || r.ClaimedBy == owner {
		return false
	}
	return r.ClaimExpiresAt != nil && r.ClaimExpiresAt.After(now)
}

func (r *EmbeddingRecord) releaseClaim() {
	r.ClaimedBy = ""
	r.ClaimExpiresAt = nil
}
