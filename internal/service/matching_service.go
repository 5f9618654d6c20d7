package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"jobmatch-be/internal/dto"
	"jobmatch-be/internal/entity"
	"jobmatch-be/internal/pkg/logger"
	"jobmatch-be/internal/repository/contract"
	"jobmatch-be/internal/repository/unitofwork"
	"jobmatch-be/pkg/ranking"
	"jobmatch-be/pkg/source"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultMatchTopK         = 100
	defaultEnrichConcurrency = 10
)

type IMatchingService interface {
	GetJobMatchesForCandidate(ctx context.Context, caller entity.Principal, page, pageSize int) (*dto.JobMatchesResponse, error)
	GetCandidateMatchesForJob(ctx context.Context, caller entity.Principal, jobId uuid.UUID, page, pageSize int) (*dto.CandidateMatchesResponse, error)
}

type MatchingConfig struct {
	TopK              int
	EnrichConcurrency int
}

type matchingService struct {
	uowFactory unitofwork.RepositoryFactory
	jobs       source.JobSource
	profiles   source.ProfileSource
	logger     logger.ILogger
	cfg        MatchingConfig
	clock      func() time.Time
}

func NewMatchingService(
	uowFactory unitofwork.RepositoryFactory,
	jobs source.JobSource,
	profiles source.ProfileSource,
	log logger.ILogger,
	cfg MatchingConfig,
) IMatchingService {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultMatchTopK
	}
	if cfg.EnrichConcurrency <= 0 {
		cfg.EnrichConcurrency = defaultEnrichConcurrency
	}
	return &matchingService{
		uowFactory: uowFactory,
		jobs:       jobs,
		profiles:   profiles,
		logger:     log,
		cfg:        cfg,
		clock:      time.Now,
	}
}

func (s *matchingService) GetJobMatchesForCandidate(ctx context.Context, caller entity.Principal, page, pageSize int) (*dto.JobMatchesResponse, error) {
	if caller.Role != entity.RoleCandidate {
		return nil, ErrAccessDenied
	}
	page, pageSize = ranking.NormalizePage(page, pageSize)
	candidateId := caller.UserId

	uow := s.uowFactory.NewUnitOfWork(ctx)
	vector, err := s.readyEmbedding(ctx, uow, candidateId, entity.DocumentTypeCandidateProfile)
	if err != nil {
		return nil, err
	}
	if vector == nil {
		return notReady[dto.JobMatch](page, pageSize), nil
	}

	profile, err := s.profiles.GetCandidate(ctx, candidateId)
	if err != nil {
		if errors.Is(err, source.ErrNotFound) {
			return notReady[dto.JobMatch](page, pageSize), nil
		}
		return nil, fmt.Errorf("failed to load candidate profile: %w", err)
	}
	subjectSkills := profile.SkillNames()

	scored, err := uow.VectorIndex().SearchJobsForCandidate(ctx, vector, s.cfg.TopK)
	if err != nil {
		return nil, fmt.Errorf("job search failed: %w", err)
	}

	now := s.clock()
	hits := enrich(ctx, s, scored, func(ctx context.Context, hit contract.ScoredDocument) (*ranking.Hit[dto.JobMatch], error) {
		job, err := s.jobs.GetJob(ctx, hit.DocumentId)
		if err != nil {
			return nil, err
		}
		if !job.IsActive(now) {
			return nil, nil
		}
		skills := job.SkillNames()
		score := ranking.ClampScore(hit.Score)
		return &ranking.Hit[dto.JobMatch]{
			Id:              job.Id,
			Score:           score,
			SourceUpdatedAt: job.UpdatedAt,
			Document: dto.JobMatch{
				JobId:           job.Id,
				Title:           job.Title,
				EmployerId:      job.EmployerId,
				EmployerName:    job.EmployerName,
				Location:        job.Location,
				EmploymentType:  job.EmploymentType,
				ExperienceLevel: job.ExperienceLevel,
				IsRemote:        job.IsRemote,
				Salary: dto.SalaryRange{
					Min:      job.SalaryMin,
					Max:      job.SalaryMax,
					Currency: job.SalaryCurrency,
				},
				Skills:          skills,
				MatchingSkills:  ranking.SkillOverlap(subjectSkills, skills),
				Score:           score,
				MatchPercentage: ranking.ToPercentage(score),
				UpdatedAt:       job.UpdatedAt,
			},
		}, nil
	})

	return buildPage(hits, page, pageSize), nil
}

func (s *matchingService) GetCandidateMatchesForJob(ctx context.Context, caller entity.Principal, jobId uuid.UUID, page, pageSize int) (*dto.CandidateMatchesResponse, error) {
	job, err := authorizeJob(ctx, s.jobs, caller, jobId)
	if err != nil {
		return nil, err
	}
	page, pageSize = ranking.NormalizePage(page, pageSize)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	vector, err := s.readyEmbedding(ctx, uow, jobId, entity.DocumentTypeJob)
	if err != nil {
		return nil, err
	}
	if vector == nil {
		return notReady[dto.CandidateMatch](page, pageSize), nil
	}
	subjectSkills := job.SkillNames()

	scored, err := uow.VectorIndex().SearchCandidatesForJob(ctx, vector, s.cfg.TopK)
	if err != nil {
		return nil, fmt.Errorf("candidate search failed: %w", err)
	}

	hits := enrich(ctx, s, scored, func(ctx context.Context, hit contract.ScoredDocument) (*ranking.Hit[dto.CandidateMatch], error) {
		profile, err := s.profiles.GetCandidate(ctx, hit.DocumentId)
		if err != nil {
			return nil, err
		}
		skills := profile.SkillNames()
		score := ranking.ClampScore(hit.Score)
		return &ranking.Hit[dto.CandidateMatch]{
			Id:              profile.Id,
			Score:           score,
			SourceUpdatedAt: profile.UpdatedAt,
			Document: dto.CandidateMatch{
				CandidateId:       profile.Id,
				FullName:          profile.FullName,
				Headline:          profile.Headline,
				Location:          profile.Location,
				YearsOfExperience: profile.YearsOfExperience,
				OpenToRemote:      profile.OpenToRemote,
				DesiredSalary:     profile.DesiredSalary,
				SalaryCurrency:    profile.SalaryCurrency,
				Skills:            skills,
				MatchingSkills:    ranking.SkillOverlap(subjectSkills, skills),
				Score:             score,
				MatchPercentage:   ranking.ToPercentage(score),
				UpdatedAt:         profile.UpdatedAt,
			},
		}, nil
	})

	return buildPage(hits, page, pageSize), nil
}

// readyEmbedding returns the subject's vector, or nil when the subject is not
// indexed yet.
func (s *matchingService) readyEmbedding(ctx context.Context, uow unitofwork.UnitOfWork, documentId uuid.UUID, documentType entity.DocumentType) ([]float32, error) {
	record, err := uow.EmbeddingRecordRepository().GetByDocument(ctx, documentId, documentType)
	if err != nil {
		return nil, fmt.Errorf("failed to load embedding record: %w", err)
	}
	if record == nil || record.Status != entity.IndexingStatusIndexed {
		return nil, nil
	}

	vector, err := uow.VectorIndex().GetEmbedding(ctx, documentId, documentType)
	if err != nil {
		return nil, fmt.Errorf("failed to load subject embedding: %w", err)
	}
	if len(vector) == 0 {
		return nil, nil
	}
	return vector, nil
}

// enrich resolves each hit against its source concurrently. Hits the fetch
// function drops (nil) or fails on are left out.
func enrich[T any](
	ctx context.Context,
	s *matchingService,
	scored []contract.ScoredDocument,
	fetch func(ctx context.Context, hit contract.ScoredDocument) (*ranking.Hit[T], error),
) []ranking.Hit[T] {
	var mu sync.Mutex
	hits := make([]ranking.Hit[T], 0, len(scored))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.EnrichConcurrency)
	for _, sd := range scored {
		g.Go(func() error {
			hit, err := fetch(gctx, sd)
			if err != nil {
				if !errors.Is(err, source.ErrNotFound) {
					s.logger.Warn("MATCHING", "Dropping hit, enrichment failed", map[string]interface{}{
						"document_id": sd.DocumentId.String(),
						"error":       err.Error(),
					})
				}
				return nil
			}
			if hit == nil {
				return nil
			}
			mu.Lock()
			hits = append(hits, *hit)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return hits
}

func buildPage[T any](hits []ranking.Hit[T], page, pageSize int) *dto.MatchPage[T] {
	ranking.Sort(hits)
	window := ranking.Paginate(hits, page, pageSize)

	items := make([]T, len(window))
	for i, h := range window {
		items[i] = h.Document
	}

	totalPages := 0
	if len(hits) > 0 {
		totalPages = (len(hits) + pageSize - 1) / pageSize
	}
	return &dto.MatchPage[T]{
		IsReady:    true,
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: len(hits),
		TotalPages: totalPages,
	}
}

func notReady[T any](page, pageSize int) *dto.MatchPage[T] {
	return &dto.MatchPage[T]{
		IsReady:  false,
		Items:    []T{},
		Page:     page,
		PageSize: pageSize,
	}
}
