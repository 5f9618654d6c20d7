package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"jobmatch-be/internal/dto"
	"jobmatch-be/internal/entity"
	"jobmatch-be/internal/pkg/logger"
	"jobmatch-be/internal/repository/unitofwork"
	"jobmatch-be/pkg/source"

	"github.com/google/uuid"
)

type IIndexingService interface {
	// RequestIndexing queues the document, creating its record on first use.
	// Calling it repeatedly before the worker runs has the effect of one call.
	RequestIndexing(ctx context.Context, documentId uuid.UUID, documentType entity.DocumentType) (*dto.IndexingStatusResponse, error)
	RequestJobIndexing(ctx context.Context, caller entity.Principal, jobId uuid.UUID) (*dto.IndexingStatusResponse, error)
	RequestProfileIndexing(ctx context.Context, caller entity.Principal) (*dto.IndexingStatusResponse, error)
	GetStatus(ctx context.Context, caller entity.Principal, documentType entity.DocumentType, documentId uuid.UUID) (*dto.IndexingStatusResponse, error)
	GetStats(ctx context.Context, caller entity.Principal) (*dto.IndexingStatsResponse, error)
	ResetExhausted(ctx context.Context, documentType *entity.DocumentType) (*dto.ResetExhaustedResponse, error)
}

type indexingService struct {
	uowFactory unitofwork.RepositoryFactory
	jobSource  source.JobSource
	publisher  IPublisherService
	logger     logger.ILogger
	clock      func() time.Time
}

// NewIndexingService wires the request side of the pipeline. publisher may be
// nil, in which case the worker only picks records up on its regular tick.
func NewIndexingService(
	uowFactory unitofwork.RepositoryFactory,
	jobSource source.JobSource,
	publisher IPublisherService,
	log logger.ILogger,
) IIndexingService {
	return &indexingService{
		uowFactory: uowFactory,
		jobSource:  jobSource,
		publisher:  publisher,
		logger:     log,
		clock:      time.Now,
	}
}

func (s *indexingService) RequestIndexing(ctx context.Context, documentId uuid.UUID, documentType entity.DocumentType) (*dto.IndexingStatusResponse, error) {
	if !documentType.IsValid() {
		return nil, ErrInvalidDocumentType
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	repo := uow.EmbeddingRecordRepository()
	record, err := repo.GetByDocument(ctx, documentId, documentType)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	created := false
	if record == nil {
		record = entity.NewEmbeddingRecord(documentId, documentType, now)
		created, err = repo.AddIfAbsent(ctx, record)
		if err != nil {
			return nil, fmt.Errorf("failed to create embedding record: %w", err)
		}
		if !created {
			// A concurrent first request inserted it after our lookup.
			record, err = repo.GetByDocument(ctx, documentId, documentType)
			if err != nil {
				return nil, err
			}
			if record == nil {
				return nil, fmt.Errorf("embedding record for %s %s vanished after insert conflict", documentType, documentId)
			}
		}
	}
	if !created {
		record.MarkPending(now)
		if err := repo.Update(ctx, record); err != nil {
			return nil, fmt.Errorf("failed to reset embedding record: %w", err)
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("INDEXING", "Indexing requested", map[string]interface{}{
		"document_id":   documentId.String(),
		"document_type": documentType.String(),
		"retry_count":   record.RetryCount,
	})
	s.nudge(ctx, documentId, documentType)

	return toStatusResponse(record), nil
}

func (s *indexingService) RequestJobIndexing(ctx context.Context, caller entity.Principal, jobId uuid.UUID) (*dto.IndexingStatusResponse, error) {
	// Trusted callers may queue jobs the source no longer serves so that the
	// worker removes them from the index.
	if !caller.IsTrusted() {
		if _, err := authorizeJob(ctx, s.jobSource, caller, jobId); err != nil {
			return nil, err
		}
	}
	return s.RequestIndexing(ctx, jobId, entity.DocumentTypeJob)
}

func (s *indexingService) RequestProfileIndexing(ctx context.Context, caller entity.Principal) (*dto.IndexingStatusResponse, error) {
	if caller.Role != entity.RoleCandidate {
		return nil, ErrAccessDenied
	}
	return s.RequestIndexing(ctx, caller.UserId, entity.DocumentTypeCandidateProfile)
}

func (s *indexingService) GetStatus(ctx context.Context, caller entity.Principal, documentType entity.DocumentType, documentId uuid.UUID) (*dto.IndexingStatusResponse, error) {
	switch documentType {
	case entity.DocumentTypeJob:
		if !caller.IsTrusted() {
			if _, err := authorizeJob(ctx, s.jobSource, caller, documentId); err != nil {
				return nil, err
			}
		}
	case entity.DocumentTypeCandidateProfile:
		if err := authorizeProfile(caller, documentId); err != nil {
			return nil, err
		}
	default:
		return nil, ErrInvalidDocumentType
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	record, err := uow.EmbeddingRecordRepository().GetByDocument(ctx, documentId, documentType)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("embedding record for %s %s: %w", documentType, documentId, ErrNotFound)
	}
	return toStatusResponse(record), nil
}

func (s *indexingService) GetStats(ctx context.Context, caller entity.Principal) (*dto.IndexingStatsResponse, error) {
	if !caller.IsAdmin() {
		return nil, ErrAccessDenied
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	counts, err := uow.EmbeddingRecordRepository().CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	res := &dto.IndexingStatsResponse{
		Pending:    counts[entity.IndexingStatusPending],
		Processing: counts[entity.IndexingStatusProcessing],
		Indexed:    counts[entity.IndexingStatusIndexed],
		Failed:     counts[entity.IndexingStatusFailed],
	}
	res.Total = res.Pending + res.Processing + res.Indexed + res.Failed
	return res, nil
}

func (s *indexingService) ResetExhausted(ctx context.Context, documentType *entity.DocumentType) (*dto.ResetExhaustedResponse, error) {
	if documentType != nil && !documentType.IsValid() {
		return nil, ErrInvalidDocumentType
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	reset, err := uow.EmbeddingRecordRepository().ResetExhausted(ctx, documentType)
	if err != nil {
		return nil, err
	}

	s.logger.Info("INDEXING", "Exhausted records re-queued", map[string]interface{}{"count": reset})
	if reset > 0 {
		s.nudge(ctx, uuid.Nil, "")
	}
	return &dto.ResetExhaustedResponse{Reset: reset}, nil
}

func (s *indexingService) nudge(ctx context.Context, documentId uuid.UUID, documentType entity.DocumentType) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(dto.IndexingRequestedMessage{
		DocumentId:   documentId,
		DocumentType: documentType.String(),
	})
	if err != nil {
		return
	}
	if err := s.publisher.Publish(ctx, payload); err != nil {
		s.logger.Warn("INDEXING", "Failed to publish indexing nudge", map[string]interface{}{"error": err.Error()})
	}
}

func toStatusResponse(record *entity.EmbeddingRecord) *dto.IndexingStatusResponse {
	return &dto.IndexingStatusResponse{
		RecordId:      record.Id,
		DocumentId:    record.DocumentId,
		DocumentType:  record.DocumentType.String(),
		Status:        string(record.Status),
		RetryCount:    record.RetryCount,
		LastIndexedAt: record.LastIndexedAt,
		ErrorMessage:  record.ErrorMessage,
		UpdatedAt:     record.UpdatedAt,
	}
}
