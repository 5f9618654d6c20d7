package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jobmatch-be/internal/entity"
	"jobmatch-be/internal/pkg/logger"
	"jobmatch-be/internal/repository/contract"
	"jobmatch-be/internal/repository/unitofwork"
	"jobmatch-be/pkg/canonical"
	"jobmatch-be/pkg/embedding"
	"jobmatch-be/pkg/source"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	ActionUpserted = "upserted"
	ActionRemoved  = "removed"
)

type IDocumentProcessor interface {
	// Process runs one indexing attempt and persists its outcome on the
	// record. The returned error reports a failed attempt; the record has
	// already been marked Failed when it is non-nil.
	Process(ctx context.Context, documentId uuid.UUID, documentType entity.DocumentType) error
}

type ProcessorConfig struct {
	InstanceId string
	LeaseTTL   time.Duration
	// Dimensions rejects embeddings of the wrong length. Zero disables the check.
	Dimensions int
}

type documentProcessor struct {
	uowFactory unitofwork.RepositoryFactory
	jobs       source.JobSource
	profiles   source.ProfileSource
	embedder   embedding.EmbeddingProvider
	outcomes   IIndexingEventPublisher
	logger     logger.ILogger
	tracer     trace.Tracer
	cfg        ProcessorConfig
	clock      func() time.Time
}

func NewDocumentProcessor(
	uowFactory unitofwork.RepositoryFactory,
	jobs source.JobSource,
	profiles source.ProfileSource,
	embedder embedding.EmbeddingProvider,
	outcomes IIndexingEventPublisher,
	log logger.ILogger,
	cfg ProcessorConfig,
) IDocumentProcessor {
	if outcomes == nil {
		outcomes = NewNoopIndexingEventPublisher()
	}
	if cfg.LeaseTTL <= 0 {
		cfg.LeaseTTL = 5 * time.Minute
	}
	return &documentProcessor{
		uowFactory: uowFactory,
		jobs:       jobs,
		profiles:   profiles,
		embedder:   embedder,
		outcomes:   outcomes,
		logger:     log,
		tracer:     otel.Tracer("jobmatch-be/indexing"),
		cfg:        cfg,
		clock:      time.Now,
	}
}

func (p *documentProcessor) Process(ctx context.Context, documentId uuid.UUID, documentType entity.DocumentType) error {
	ctx, span := p.tracer.Start(ctx, "DocumentProcessor.Process", trace.WithAttributes(
		attribute.String("document.id", documentId.String()),
		attribute.String("document.type", documentType.String()),
	))
	defer span.End()

	uow := p.uowFactory.NewUnitOfWork(ctx)
	records := uow.EmbeddingRecordRepository()

	record, err := records.GetByDocument(ctx, documentId, documentType)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "record lookup failed")
		return fmt.Errorf("failed to load embedding record: %w", err)
	}
	if record == nil {
		p.logger.Warn("PROCESSOR", "No embedding record, skipping", map[string]interface{}{
			"document_id":   documentId.String(),
			"document_type": documentType.String(),
		})
		return nil
	}

	now := p.clock()
	if record.IsClaimedByOther(p.cfg.InstanceId, now) {
		p.logger.Debug("PROCESSOR", "Record leased by another worker, skipping", map[string]interface{}{
			"document_id": documentId.String(),
			"claimed_by":  record.ClaimedBy,
		})
		return nil
	}

	record.MarkProcessing(p.cfg.InstanceId, now.Add(p.cfg.LeaseTTL), now)
	if err := records.Update(ctx, record); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "mark processing failed")
		return fmt.Errorf("failed to mark record processing: %w", err)
	}

	action, procErr := p.index(ctx, uow.VectorIndex(), record)

	now = p.clock()
	switch {
	case procErr == nil:
		record.MarkIndexed(now)
	case errors.Is(procErr, source.ErrNotFound):
		// Nothing to retry against; drop whatever the index still holds.
		if err := uow.VectorIndex().Delete(ctx, documentId, documentType); err != nil {
			p.logger.Warn("PROCESSOR", "Failed to drop vector of missing document", map[string]interface{}{
				"document_id": documentId.String(),
				"error":       err.Error(),
			})
		}
		record.MarkExhausted(procErr.Error(), now)
	default:
		record.MarkFailed(procErr.Error(), now)
	}

	applied, err := records.CompleteClaim(ctx, record, p.cfg.InstanceId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist outcome failed")
		return fmt.Errorf("failed to persist indexing outcome: %w", err)
	}
	if !applied {
		// Re-requested or reaped mid-attempt; the record is queued again.
		span.SetAttributes(attribute.Bool("indexing.superseded", true))
		p.logger.Info("PROCESSOR", "Claim released during attempt, outcome discarded", map[string]interface{}{
			"document_id":   documentId.String(),
			"document_type": documentType.String(),
		})
		return nil
	}

	details := map[string]interface{}{
		"document_id":   documentId.String(),
		"document_type": documentType.String(),
		"status":        string(record.Status),
		"retry_count":   record.RetryCount,
	}

	if procErr != nil {
		span.RecordError(procErr)
		span.SetStatus(codes.Error, procErr.Error())
		details["error"] = procErr.Error()
		p.logger.Error("PROCESSOR", "Indexing attempt failed", details)
		p.outcomes.PublishFailed(ctx, record)
		return fmt.Errorf("indexing %s %s: %w", documentType, documentId, procErr)
	}

	span.SetAttributes(attribute.String("indexing.action", action))
	details["action"] = action
	p.logger.Info("PROCESSOR", "Document indexed", details)
	p.outcomes.PublishIndexed(ctx, record, action)
	return nil
}

func (p *documentProcessor) index(ctx context.Context, vectors contract.VectorIndex, record *entity.EmbeddingRecord) (string, error) {
	switch record.DocumentType {
	case entity.DocumentTypeJob:
		return p.indexJob(ctx, vectors, record)
	case entity.DocumentTypeCandidateProfile:
		return p.indexCandidate(ctx, vectors, record)
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDocumentType, record.DocumentType)
}

func (p *documentProcessor) indexJob(ctx context.Context, vectors contract.VectorIndex, record *entity.EmbeddingRecord) (string, error) {
	job, err := p.jobs.GetJob(ctx, record.DocumentId)
	if err != nil {
		return "", fmt.Errorf("fetch job: %w", err)
	}

	if !job.IsActive(p.clock()) {
		if err := vectors.Delete(ctx, job.Id, entity.DocumentTypeJob); err != nil {
			return "", fmt.Errorf("remove inactive job from index: %w", err)
		}
		return ActionRemoved, nil
	}

	text := canonical.JobText(job)
	vector, err := p.embed(ctx, text)
	if err != nil {
		return "", err
	}

	doc := &entity.JobVectorDocument{
		JobId:           job.Id,
		EmployerId:      job.EmployerId,
		EmployerName:    job.EmployerName,
		Title:           job.Title,
		Location:        job.Location,
		EmploymentType:  job.EmploymentType,
		ExperienceLevel: job.ExperienceLevel,
		IsRemote:        job.IsRemote,
		SalaryMin:       job.SalaryMin,
		SalaryMax:       job.SalaryMax,
		SalaryCurrency:  job.SalaryCurrency,
		Skills:          job.SkillNames(),
		CanonicalText:   text,
		Embedding:       vector,
		SourceUpdatedAt: job.UpdatedAt,
		IndexedAt:       p.clock(),
	}
	if err := vectors.UpsertJob(ctx, doc); err != nil {
		return "", fmt.Errorf("upsert job vector: %w", err)
	}
	return ActionUpserted, nil
}

func (p *documentProcessor) indexCandidate(ctx context.Context, vectors contract.VectorIndex, record *entity.EmbeddingRecord) (string, error) {
	profile, err := p.profiles.GetCandidate(ctx, record.DocumentId)
	if err != nil {
		return "", fmt.Errorf("fetch candidate profile: %w", err)
	}

	text := canonical.CandidateText(profile)
	vector, err := p.embed(ctx, text)
	if err != nil {
		return "", err
	}

	doc := &entity.CandidateVectorDocument{
		CandidateId:       profile.Id,
		FullName:          profile.FullName,
		Headline:          profile.Headline,
		Location:          profile.Location,
		YearsOfExperience: profile.YearsOfExperience,
		OpenToRemote:      profile.OpenToRemote,
		DesiredSalary:     profile.DesiredSalary,
		SalaryCurrency:    profile.SalaryCurrency,
		Skills:            profile.SkillNames(),
		CanonicalText:     text,
		Embedding:         vector,
		SourceUpdatedAt:   profile.UpdatedAt,
		IndexedAt:         p.clock(),
	}
	if err := vectors.UpsertCandidate(ctx, doc); err != nil {
		return "", fmt.Errorf("upsert candidate vector: %w", err)
	}
	return ActionUpserted, nil
}

func (p *documentProcessor) embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, errors.New("document has no indexable content")
	}
	res, err := p.embedder.Generate(ctx, text, embedding.TaskTypeRetrievalDocument)
	if err != nil {
		return nil, fmt.Errorf("generate embedding: %w", err)
	}
	values := res.Embedding.Values
	if p.cfg.Dimensions > 0 && len(values) != p.cfg.Dimensions {
		return nil, fmt.Errorf("embedding has %d dimensions, expected %d", len(values), p.cfg.Dimensions)
	}
	return values, nil
}
