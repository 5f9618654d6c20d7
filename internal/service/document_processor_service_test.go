package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"jobmatch-be/internal/entity"
	"jobmatch-be/internal/pkg/logger"
	"jobmatch-be/pkg/embedding"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentProcessor_IndexesActiveJob(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()
	job := activeJob(uuid.New(), "Backend Engineer", "Go", "PostgreSQL")
	p.jobs.Put(job)

	_, err := p.indexing.RequestIndexing(ctx, job.Id, entity.DocumentTypeJob)
	require.NoError(t, err)

	require.NoError(t, p.processor.Process(ctx, job.Id, entity.DocumentTypeJob))

	rec := p.record(t, job.Id, entity.DocumentTypeJob)
	assert.Equal(t, entity.IndexingStatusIndexed, rec.Status)
	assert.NotNil(t, rec.LastIndexedAt)
	assert.Empty(t, rec.ClaimedBy)

	doc, ok := p.repos.Vectors.Job(job.Id)
	require.True(t, ok)
	assert.Len(t, doc.Embedding, 768)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, doc.Skills)
	assert.Contains(t, doc.CanonicalText, "Backend Engineer")
	assert.Equal(t, job.UpdatedAt, doc.SourceUpdatedAt)

	assert.Equal(t, []outcome{{documentId: job.Id, action: ActionUpserted}}, p.outcomes.all())
}

func TestDocumentProcessor_RemovesInactiveJob(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()
	job := activeJob(uuid.New(), "Data Engineer", "Python")
	p.seedIndexedJob(t, job, []float32{1, 0})

	closed := *job
	closed.Status = entity.JobStatusClosed
	p.jobs.Put(&closed)
	_, err := p.indexing.RequestIndexing(ctx, job.Id, entity.DocumentTypeJob)
	require.NoError(t, err)

	require.NoError(t, p.processor.Process(ctx, job.Id, entity.DocumentTypeJob))

	_, ok := p.repos.Vectors.Job(job.Id)
	assert.False(t, ok)
	assert.Equal(t, entity.IndexingStatusIndexed, p.record(t, job.Id, entity.DocumentTypeJob).Status)
	assert.Equal(t, ActionRemoved, p.outcomes.all()[0].action)
}

func TestDocumentProcessor_ExpiredJobIsRemoved(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()
	job := activeJob(uuid.New(), "SRE", "Kubernetes")
	expired := time.Now().Add(-time.Minute)
	job.ExpiresAt = &expired
	p.jobs.Put(job)

	_, err := p.indexing.RequestIndexing(ctx, job.Id, entity.DocumentTypeJob)
	require.NoError(t, err)
	require.NoError(t, p.processor.Process(ctx, job.Id, entity.DocumentTypeJob))

	_, ok := p.repos.Vectors.Job(job.Id)
	assert.False(t, ok)
}

func TestDocumentProcessor_MissingCandidateIsExhausted(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()
	id := uuid.New()

	_, err := p.indexing.RequestIndexing(ctx, id, entity.DocumentTypeCandidateProfile)
	require.NoError(t, err)

	err = p.processor.Process(ctx, id, entity.DocumentTypeCandidateProfile)
	require.Error(t, err)

	rec := p.record(t, id, entity.DocumentTypeCandidateProfile)
	assert.Equal(t, entity.IndexingStatusFailed, rec.Status)
	assert.False(t, rec.IsRetryable())
	assert.NotEmpty(t, rec.ErrorMessage)
	assert.True(t, p.outcomes.all()[0].failed)
}

func TestDocumentProcessor_SourceErrorCountsRetry(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()
	profile := candidate("Ada", "Go")
	p.profiles.Put(profile)
	p.profiles.Err = errors.New("profile service unavailable")

	_, err := p.indexing.RequestIndexing(ctx, profile.Id, entity.DocumentTypeCandidateProfile)
	require.NoError(t, err)

	err = p.processor.Process(ctx, profile.Id, entity.DocumentTypeCandidateProfile)
	require.Error(t, err)

	rec := p.record(t, profile.Id, entity.DocumentTypeCandidateProfile)
	assert.Equal(t, entity.IndexingStatusFailed, rec.Status)
	assert.Equal(t, 1, rec.RetryCount)
	assert.Contains(t, rec.ErrorMessage, "profile service unavailable")
	assert.True(t, rec.IsEligible())

	_, ok := p.repos.Vectors.Candidate(profile.Id)
	assert.False(t, ok)
}

func TestDocumentProcessor_SkipsRecordLeasedByAnotherWorker(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()
	job := activeJob(uuid.New(), "Frontend Engineer", "TypeScript")
	p.jobs.Put(job)

	_, err := p.indexing.RequestIndexing(ctx, job.Id, entity.DocumentTypeJob)
	require.NoError(t, err)
	_, err = p.repos.Records.ClaimPending(ctx, "someone-else", 1, time.Now().Add(time.Hour))
	require.NoError(t, err)

	require.NoError(t, p.processor.Process(ctx, job.Id, entity.DocumentTypeJob))

	rec := p.record(t, job.Id, entity.DocumentTypeJob)
	assert.Equal(t, entity.IndexingStatusProcessing, rec.Status)
	assert.Equal(t, "someone-else", rec.ClaimedBy)
	assert.Empty(t, p.outcomes.all())
}

func TestDocumentProcessor_UnknownRecordIsIgnored(t *testing.T) {
	p := newPipeline(t)

	err := p.processor.Process(context.Background(), uuid.New(), entity.DocumentTypeJob)

	assert.NoError(t, err)
	assert.Empty(t, p.outcomes.all())
}

// rerequestingEmbedder simulates a source update landing while the first
// attempt is still embedding.
type rerequestingEmbedder struct {
	next   embedding.EmbeddingProvider
	during func()
	once   sync.Once
}

func (e *rerequestingEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	e.once.Do(e.during)
	return e.next.Generate(ctx, text, taskType)
}

func TestDocumentProcessor_ReRequestDuringAttemptIsNotLost(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()
	job := activeJob(uuid.New(), "Go developer", "Go")
	p.jobs.Put(job)

	_, err := p.indexing.RequestIndexing(ctx, job.Id, entity.DocumentTypeJob)
	require.NoError(t, err)

	embedder := &rerequestingEmbedder{
		next: embedding.NewHashProvider(embedding.DefaultDimensions),
		during: func() {
			updated := *job
			updated.Title = "Rust developer"
			p.jobs.Put(&updated)
			_, err := p.indexing.RequestIndexing(ctx, job.Id, entity.DocumentTypeJob)
			require.NoError(t, err)
		},
	}
	processor := NewDocumentProcessor(p.repos, p.jobs, p.profiles, embedder, p.outcomes, logger.NewNopLogger(), ProcessorConfig{
		InstanceId: testInstance,
		LeaseTTL:   time.Minute,
	})

	claimed, err := p.repos.Records.ClaimPending(ctx, testInstance, 10, time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, claimed, 1)

	require.NoError(t, processor.Process(ctx, job.Id, entity.DocumentTypeJob))

	rec := p.record(t, job.Id, entity.DocumentTypeJob)
	assert.Equal(t, entity.IndexingStatusPending, rec.Status)
	assert.Empty(t, rec.ClaimedBy)
	assert.Empty(t, p.outcomes.all())

	res := p.worker.RunOnce(ctx)
	assert.Equal(t, 1, res.Claimed)
	assert.Equal(t, 1, res.Succeeded)

	rec = p.record(t, job.Id, entity.DocumentTypeJob)
	assert.Equal(t, entity.IndexingStatusIndexed, rec.Status)
	doc, ok := p.repos.Vectors.Job(job.Id)
	require.True(t, ok)
	assert.Equal(t, "Rust developer", doc.Title)
}

func TestDocumentProcessor_ReapedClaimKeepsReaperOutcome(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()
	job := activeJob(uuid.New(), "SRE", "Linux")
	p.jobs.Put(job)

	_, err := p.indexing.RequestIndexing(ctx, job.Id, entity.DocumentTypeJob)
	require.NoError(t, err)

	embedder := &rerequestingEmbedder{
		next: embedding.NewHashProvider(embedding.DefaultDimensions),
		during: func() {
			released, err := p.repos.Records.ReleaseStale(ctx, time.Now().Add(time.Hour))
			require.NoError(t, err)
			require.Equal(t, int64(1), released)
		},
	}
	processor := NewDocumentProcessor(p.repos, p.jobs, p.profiles, embedder, p.outcomes, logger.NewNopLogger(), ProcessorConfig{
		InstanceId: testInstance,
		LeaseTTL:   time.Minute,
	})

	require.NoError(t, processor.Process(ctx, job.Id, entity.DocumentTypeJob))

	rec := p.record(t, job.Id, entity.DocumentTypeJob)
	assert.Equal(t, entity.IndexingStatusFailed, rec.Status)
	assert.Equal(t, 1, rec.RetryCount)
}
