package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"jobmatch-be/internal/entity"

	"github.com/google/uuid"
)

const staleLeaseMessage = "processing lease expired before the attempt completed"

type documentKey struct {
	id  uuid.UUID
	typ entity.DocumentType
}

type storedRecord struct {
	record *entity.EmbeddingRecord
	seq    uint64
}

// EmbeddingRecordStore is an in-process EmbeddingRecordRepository. A single
// mutex serialises access, so ClaimPending is atomic within one process.
type EmbeddingRecordStore struct {
	mu      sync.Mutex
	records map[documentKey]*storedRecord
	seq     uint64
	now     func() time.Time
}

func NewEmbeddingRecordStore() *EmbeddingRecordStore {
	return &EmbeddingRecordStore{
		records: make(map[documentKey]*storedRecord),
		now:     time.Now,
	}
}

// SetClock replaces the time source used for UpdatedAt stamps.
func (s *EmbeddingRecordStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *EmbeddingRecordStore) GetByDocument(ctx context.Context, documentId uuid.UUID, documentType entity.DocumentType) (*entity.EmbeddingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.records[documentKey{documentId, documentType}]
	if !ok {
		return nil, nil
	}
	return cloneRecord(stored.record), nil
}

func (s *EmbeddingRecordStore) GetPending(ctx context.Context, batchSize int) ([]*entity.EmbeddingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	eligible := s.eligibleLocked(batchSize)
	out := make([]*entity.EmbeddingRecord, len(eligible))
	for i, stored := range eligible {
		out[i] = cloneRecord(stored.record)
	}
	return out, nil
}

func (s *EmbeddingRecordStore) ClaimPending(ctx context.Context, owner string, batchSize int, leaseUntil time.Time) ([]*entity.EmbeddingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	eligible := s.eligibleLocked(batchSize)
	now := s.now()
	out := make([]*entity.EmbeddingRecord, len(eligible))
	for i, stored := range eligible {
		stored.record.MarkProcessing(owner, leaseUntil, now)
		s.touchLocked(stored, now)
		out[i] = cloneRecord(stored.record)
	}
	return out, nil
}

func (s *EmbeddingRecordStore) ReleaseStale(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var released int64
	for _, stored := range s.records {
		if stored.record.IsLeaseExpired(now) {
			stored.record.MarkFailed(staleLeaseMessage, now)
			s.touchLocked(stored, now)
			released++
		}
	}
	return released, nil
}

func (s *EmbeddingRecordStore) Add(ctx context.Context, record *entity.EmbeddingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := documentKey{record.DocumentId, record.DocumentType}
	if _, exists := s.records[key]; exists {
		return fmt.Errorf("embedding record for %s %s already exists", record.DocumentType, record.DocumentId)
	}
	s.addLocked(key, record)
	return nil
}

func (s *EmbeddingRecordStore) AddIfAbsent(ctx context.Context, record *entity.EmbeddingRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := documentKey{record.DocumentId, record.DocumentType}
	if _, exists := s.records[key]; exists {
		return false, nil
	}
	s.addLocked(key, record)
	return true, nil
}

func (s *EmbeddingRecordStore) addLocked(key documentKey, record *entity.EmbeddingRecord) {
	if record.Id == uuid.Nil {
		record.Id = uuid.New()
	}
	now := s.now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	stored := &storedRecord{record: cloneRecord(record)}
	s.touchLocked(stored, now)
	s.records[key] = stored
	*record = *cloneRecord(stored.record)
}

func (s *EmbeddingRecordStore) Update(ctx context.Context, record *entity.EmbeddingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := documentKey{record.DocumentId, record.DocumentType}
	if _, exists := s.records[key]; !exists {
		return fmt.Errorf("embedding record for %s %s not found", record.DocumentType, record.DocumentId)
	}
	stored := &storedRecord{record: cloneRecord(record)}
	s.touchLocked(stored, s.now())
	s.records[key] = stored
	*record = *cloneRecord(stored.record)
	return nil
}

func (s *EmbeddingRecordStore) CompleteClaim(ctx context.Context, record *entity.EmbeddingRecord, owner string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := documentKey{record.DocumentId, record.DocumentType}
	current, exists := s.records[key]
	if !exists {
		return false, fmt.Errorf("embedding record for %s %s not found", record.DocumentType, record.DocumentId)
	}
	if current.record.Status != entity.IndexingStatusProcessing || current.record.ClaimedBy != owner {
		return false, nil
	}
	stored := &storedRecord{record: cloneRecord(record)}
	s.touchLocked(stored, s.now())
	s.records[key] = stored
	*record = *cloneRecord(stored.record)
	return true, nil
}

func (s *EmbeddingRecordStore) Exists(ctx context.Context, documentId uuid.UUID, documentType entity.DocumentType) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.records[documentKey{documentId, documentType}]
	return ok, nil
}

func (s *EmbeddingRecordStore) CountByStatus(ctx context.Context) (map[entity.IndexingStatus]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[entity.IndexingStatus]int64)
	for _, stored := range s.records {
		counts[stored.record.Status]++
	}
	return counts, nil
}

func (s *EmbeddingRecordStore) ResetExhausted(ctx context.Context, documentType *entity.DocumentType) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var reset int64
	now := s.now()
	for key, stored := range s.records {
		if documentType != nil && key.typ != *documentType {
			continue
		}
		if stored.record.Status != entity.IndexingStatusFailed || stored.record.IsRetryable() {
			continue
		}
		stored.record.MarkPending(now)
		s.touchLocked(stored, now)
		reset++
	}
	return reset, nil
}

func (s *EmbeddingRecordStore) eligibleLocked(batchSize int) []*storedRecord {
	if batchSize <= 0 {
		return nil
	}
	eligible := make([]*storedRecord, 0)
	for _, stored := range s.records {
		if stored.record.IsEligible() {
			eligible = append(eligible, stored)
		}
	}
	sort.Slice(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if !a.record.UpdatedAt.Equal(b.record.UpdatedAt) {
			return a.record.UpdatedAt.Before(b.record.UpdatedAt)
		}
		return a.seq < b.seq
	})
	if len(eligible) > batchSize {
		eligible = eligible[:batchSize]
	}
	return eligible
}

func (s *EmbeddingRecordStore) touchLocked(stored *storedRecord, now time.Time) {
	s.seq++
	stored.seq = s.seq
	stored.record.UpdatedAt = now
}

func cloneRecord(r *entity.EmbeddingRecord) *entity.EmbeddingRecord {
	clone := *r
	if r.LastIndexedAt != nil {
		t := *r.LastIndexedAt
		clone.LastIndexedAt = &t
	}
	if r.ClaimExpiresAt != nil {
		t := *r.ClaimExpiresAt
		clone.ClaimExpiresAt = &t
	}
	return &clone
}
