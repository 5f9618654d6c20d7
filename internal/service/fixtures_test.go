package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"jobmatch-be/internal/entity"
	"jobmatch-be/internal/pkg/logger"
	"jobmatch-be/internal/repository/memory"
	"jobmatch-be/pkg/embedding"
	"jobmatch-be/pkg/source"

	"github.com/google/uuid"
)

const testInstance = "worker-test"

type pipeline struct {
	repos     *memory.RepositoryFactory
	jobs      *source.MemoryJobSource
	profiles  *source.MemoryProfileSource
	nudges    *recordingPublisher
	outcomes  *recordingOutcomes
	indexing  IIndexingService
	processor IDocumentProcessor
	worker    *IndexingWorker
	matching  IMatchingService
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()
	log := logger.NewNopLogger()
	p := &pipeline{
		repos:    memory.NewRepositoryFactory(),
		jobs:     source.NewMemoryJobSource(),
		profiles: source.NewMemoryProfileSource(),
		nudges:   &recordingPublisher{},
		outcomes: &recordingOutcomes{},
	}
	p.indexing = NewIndexingService(p.repos, p.jobs, p.nudges, log)
	p.processor = NewDocumentProcessor(p.repos, p.jobs, p.profiles, embedding.NewHashProvider(embedding.DefaultDimensions), p.outcomes, log, ProcessorConfig{
		InstanceId: testInstance,
		LeaseTTL:   time.Minute,
		Dimensions: embedding.DefaultDimensions,
	})
	p.worker = NewIndexingWorker(WorkerConfig{
		InstanceId:     testInstance,
		PollInterval:   time.Second,
		BatchSize:      10,
		MaxConcurrency: 4,
		LeaseTTL:       time.Minute,
	}, p.repos, p.processor, nil, log)
	p.matching = NewMatchingService(p.repos, p.jobs, p.profiles, log, MatchingConfig{})
	return p
}

func (p *pipeline) record(t *testing.T, id uuid.UUID, typ entity.DocumentType) *entity.EmbeddingRecord {
	t.Helper()
	rec, err := p.repos.Records.GetByDocument(context.Background(), id, typ)
	if err != nil {
		t.Fatalf("load record: %v", err)
	}
	return rec
}

// seedIndexedJob seeds an indexed record together with its vector document.
func (p *pipeline) seedIndexedJob(t *testing.T, job *entity.Job, vector []float32) {
	t.Helper()
	ctx := context.Background()
	p.jobs.Put(job)
	rec := entity.NewEmbeddingRecord(job.Id, entity.DocumentTypeJob, time.Now())
	rec.MarkIndexed(time.Now())
	if err := p.repos.Records.Add(ctx, rec); err != nil {
		t.Fatalf("add record: %v", err)
	}
	if err := p.repos.Vectors.UpsertJob(ctx, &entity.JobVectorDocument{
		JobId:           job.Id,
		EmployerId:      job.EmployerId,
		Title:           job.Title,
		Skills:          job.SkillNames(),
		Embedding:       vector,
		SourceUpdatedAt: job.UpdatedAt,
	}); err != nil {
		t.Fatalf("upsert job vector: %v", err)
	}
}

func (p *pipeline) seedIndexedCandidate(t *testing.T, profile *entity.CandidateProfile, vector []float32) {
	t.Helper()
	ctx := context.Background()
	p.profiles.Put(profile)
	rec := entity.NewEmbeddingRecord(profile.Id, entity.DocumentTypeCandidateProfile, time.Now())
	rec.MarkIndexed(time.Now())
	if err := p.repos.Records.Add(ctx, rec); err != nil {
		t.Fatalf("add record: %v", err)
	}
	if err := p.repos.Vectors.UpsertCandidate(ctx, &entity.CandidateVectorDocument{
		CandidateId:     profile.Id,
		FullName:        profile.FullName,
		Skills:          profile.SkillNames(),
		Embedding:       vector,
		SourceUpdatedAt: profile.UpdatedAt,
	}); err != nil {
		t.Fatalf("upsert candidate vector: %v", err)
	}
}

func activeJob(employerId uuid.UUID, title string, skills ...string) *entity.Job {
	job := &entity.Job{
		Id:          uuid.New(),
		EmployerId:  employerId,
		Title:       title,
		Description: "Build and operate " + title + " services",
		Status:      entity.JobStatusActive,
		UpdatedAt:   time.Now().Add(-time.Hour),
	}
	for _, s := range skills {
		job.Skills = append(job.Skills, entity.JobSkill{Name: s, IsRequired: true})
	}
	return job
}

func candidate(name string, skills ...string) *entity.CandidateProfile {
	profile := &entity.CandidateProfile{
		Id:        uuid.New(),
		FullName:  name,
		Headline:  "Engineer",
		Summary:   "Backend engineer working with " + name,
		UpdatedAt: time.Now().Add(-time.Hour),
	}
	for _, s := range skills {
		profile.Skills = append(profile.Skills, entity.CandidateSkill{Name: s, YearsOfExperience: 2})
	}
	return profile
}

func candidatePrincipal(id uuid.UUID) entity.Principal {
	return entity.Principal{UserId: id, Role: entity.RoleCandidate}
}

func employerPrincipal(id uuid.UUID) entity.Principal {
	return entity.Principal{UserId: id, Role: entity.RoleEmployer}
}

type recordingPublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *recordingPublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.payloads)
}

type outcome struct {
	documentId uuid.UUID
	action     string
	failed     bool
}

type recordingOutcomes struct {
	mu     sync.Mutex
	events []outcome
}

func (o *recordingOutcomes) PublishIndexed(ctx context.Context, record *entity.EmbeddingRecord, action string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, outcome{documentId: record.DocumentId, action: action})
}

func (o *recordingOutcomes) PublishFailed(ctx context.Context, record *entity.EmbeddingRecord) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, outcome{documentId: record.DocumentId, failed: true})
}

func (o *recordingOutcomes) all() []outcome {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]outcome(nil), o.events...)
}
