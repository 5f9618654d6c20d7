package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestEmbeddingRecord_Lifecycle(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewEmbeddingRecord(uuid.New(), DocumentTypeJob, now)

	assert.Equal(t, IndexingStatusPending, r.Status)
	assert.True(t, r.IsEligible())

	r.MarkProcessing("worker-1", now.Add(time.Minute), now)
	assert.Equal(t, IndexingStatusProcessing, r.Status)
	assert.False(t, r.IsEligible())
	assert.True(t, r.IsClaimedByOther("worker-2", now))
	assert.False(t, r.IsClaimedByOther("worker-1", now))

	r.MarkFailed("embedding service down", now)
	assert.Equal(t, 1, r.RetryCount)
	assert.Equal(t, "embedding service down", r.ErrorMessage)
	assert.Empty(t, r.ClaimedBy)
	assert.True(t, r.IsEligible())

	r.MarkIndexed(now)
	assert.Equal(t, IndexingStatusIndexed, r.Status)
	assert.Zero(t, r.RetryCount)
	assert.Empty(t, r.ErrorMessage)
	assert.Equal(t, now, *r.LastIndexedAt)
	assert.False(t, r.IsEligible())
}

func TestEmbeddingRecord_RetryCap(t *testing.T) {
	now := time.Now()
	r := NewEmbeddingRecord(uuid.New(), DocumentTypeCandidateProfile, now)

	for i := 0; i < MaxIndexingRetries; i++ {
		assert.True(t, r.IsEligible(), "attempt %d", i)
		r.MarkFailed("boom", now)
	}

	assert.Equal(t, MaxIndexingRetries, r.RetryCount)
	assert.False(t, r.IsRetryable())
	assert.False(t, r.IsEligible())

	r.MarkPending(now)
	assert.Equal(t, IndexingStatusPending, r.Status)
	assert.Zero(t, r.RetryCount)
	assert.True(t, r.IsEligible())
}

func TestEmbeddingRecord_MarkPendingKeepsHistory(t *testing.T) {
	now := time.Now()
	r := NewEmbeddingRecord(uuid.New(), DocumentTypeJob, now)
	r.MarkIndexed(now)
	r.MarkFailed("transient", now)

	r.MarkPending(now.Add(time.Second))

	assert.Equal(t, 1, r.RetryCount)
	assert.Equal(t, "transient", r.ErrorMessage)
	assert.NotNil(t, r.LastIndexedAt)
}

func TestEmbeddingRecord_MarkExhausted(t *testing.T) {
	now := time.Now()
	r := NewEmbeddingRecord(uuid.New(), DocumentTypeJob, now)

	r.MarkExhausted("source document not found", now)

	assert.Equal(t, IndexingStatusFailed, r.Status)
	assert.Equal(t, MaxIndexingRetries, r.RetryCount)
	assert.False(t, r.IsEligible())
}

func TestEmbeddingRecord_LeaseExpiry(t *testing.T) {
	now := time.Now()
	r := NewEmbeddingRecord(uuid.New(), DocumentTypeJob, now)
	r.MarkProcessing("w", now.Add(time.Minute), now)

	assert.False(t, r.IsLeaseExpired(now))
	assert.True(t, r.IsLeaseExpired(now.Add(2*time.Minute)))
	assert.False(t, r.IsClaimedByOther("other", now.Add(2*time.Minute)))
}

func TestParseDocumentType(t *testing.T) {
	tests := []struct {
		raw     string
		want    DocumentType
		wantErr bool
	}{
		{"job", DocumentTypeJob, false},
		{"Jobs", DocumentTypeJob, false},
		{"candidate", DocumentTypeCandidateProfile, false},
		{"candidate_profile", DocumentTypeCandidateProfile, false},
		{" profile ", DocumentTypeCandidateProfile, false},
		{"employer", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseDocumentType(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownDocumentType)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJob_IsActive(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, (&Job{Status: JobStatusActive}).IsActive(now))
	assert.True(t, (&Job{Status: JobStatusActive, ExpiresAt: &future}).IsActive(now))
	assert.False(t, (&Job{Status: JobStatusActive, ExpiresAt: &past}).IsActive(now))
	assert.False(t, (&Job{Status: JobStatusClosed}).IsActive(now))
	assert.False(t, (&Job{Status: JobStatusDraft}).IsActive(now))
}
