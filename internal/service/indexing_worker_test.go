package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"jobmatch-be/internal/entity"
	"jobmatch-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type panickyProcessor struct {
	next    IDocumentProcessor
	panicOn uuid.UUID
}

func (p *panickyProcessor) Process(ctx context.Context, documentId uuid.UUID, documentType entity.DocumentType) error {
	if documentId == p.panicOn {
		panic("embedding client blew up")
	}
	return p.next.Process(ctx, documentId, documentType)
}

type followerLease struct{}

func (followerLease) Acquire(ctx context.Context, owner string, ttl time.Duration) (bool, error) {
	return false, nil
}

func (followerLease) Release(ctx context.Context, owner string) error { return nil }

func TestIndexingWorker_RunOnceProcessesBatch(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()

	var ids []uuid.UUID
	for _, title := range []string{"Go Developer", "Rust Developer", "Java Developer"} {
		job := activeJob(uuid.New(), title, "Linux")
		p.jobs.Put(job)
		ids = append(ids, job.Id)
		_, err := p.indexing.RequestIndexing(ctx, job.Id, entity.DocumentTypeJob)
		require.NoError(t, err)
	}

	res := p.worker.RunOnce(ctx)

	assert.Equal(t, 3, res.Claimed)
	assert.Equal(t, 3, res.Succeeded)
	assert.Zero(t, res.Failed)
	for _, id := range ids {
		assert.Equal(t, entity.IndexingStatusIndexed, p.record(t, id, entity.DocumentTypeJob).Status)
	}

	assert.Zero(t, p.worker.RunOnce(ctx).Claimed)
}

func TestIndexingWorker_RetryCapExcludesUntilRequested(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()
	job := activeJob(uuid.New(), "Platform Engineer", "Terraform")
	p.jobs.Put(job)
	p.jobs.Err = errors.New("job service unavailable")

	_, err := p.indexing.RequestIndexing(ctx, job.Id, entity.DocumentTypeJob)
	require.NoError(t, err)

	for i := 1; i <= entity.MaxIndexingRetries; i++ {
		res := p.worker.RunOnce(ctx)
		require.Equal(t, 1, res.Claimed, "tick %d", i)
		require.Equal(t, 1, res.Failed, "tick %d", i)
		assert.Equal(t, i, p.record(t, job.Id, entity.DocumentTypeJob).RetryCount)
	}

	assert.Zero(t, p.worker.RunOnce(ctx).Claimed)

	p.jobs.Err = nil
	_, err = p.indexing.RequestIndexing(ctx, job.Id, entity.DocumentTypeJob)
	require.NoError(t, err)

	res := p.worker.RunOnce(ctx)
	assert.Equal(t, 1, res.Succeeded)
	rec := p.record(t, job.Id, entity.DocumentTypeJob)
	assert.Equal(t, entity.IndexingStatusIndexed, rec.Status)
	assert.Zero(t, rec.RetryCount)
}

func TestIndexingWorker_PanicIsIsolated(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()

	good := activeJob(uuid.New(), "QA Engineer", "Selenium")
	bad := activeJob(uuid.New(), "ML Engineer", "PyTorch")
	p.jobs.Put(good)
	p.jobs.Put(bad)
	for _, id := range []uuid.UUID{good.Id, bad.Id} {
		_, err := p.indexing.RequestIndexing(ctx, id, entity.DocumentTypeJob)
		require.NoError(t, err)
	}

	worker := NewIndexingWorker(p.worker.cfg, p.repos, &panickyProcessor{next: p.processor, panicOn: bad.Id}, nil, logger.NewNopLogger())
	res := worker.RunOnce(ctx)

	assert.Equal(t, 2, res.Claimed)
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, entity.IndexingStatusIndexed, p.record(t, good.Id, entity.DocumentTypeJob).Status)
	// The lease reaper picks the panicked record up once its claim expires.
	assert.Equal(t, entity.IndexingStatusProcessing, p.record(t, bad.Id, entity.DocumentTypeJob).Status)
}

func TestIndexingWorker_ReleasesExpiredLeases(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()
	job := activeJob(uuid.New(), "DBA", "PostgreSQL")
	p.jobs.Put(job)

	_, err := p.indexing.RequestIndexing(ctx, job.Id, entity.DocumentTypeJob)
	require.NoError(t, err)
	_, err = p.repos.Records.ClaimPending(ctx, "crashed-worker", 1, time.Now().Add(-time.Second))
	require.NoError(t, err)

	res := p.worker.RunOnce(ctx)

	assert.Equal(t, int64(1), res.Released)
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, entity.IndexingStatusIndexed, p.record(t, job.Id, entity.DocumentTypeJob).Status)
}

func TestIndexingWorker_FollowerSkipsTick(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()
	_, err := p.indexing.RequestIndexing(ctx, uuid.New(), entity.DocumentTypeJob)
	require.NoError(t, err)

	worker := NewIndexingWorker(p.worker.cfg, p.repos, p.processor, followerLease{}, logger.NewNopLogger())
	res := worker.RunOnce(ctx)

	assert.True(t, res.Skipped)
	assert.Zero(t, res.Claimed)
}

func TestIndexingWorker_Drain(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()
	p.worker.cfg.BatchSize = 2

	for i := 0; i < 5; i++ {
		profile := candidate("Candidate", "Go")
		p.profiles.Put(profile)
		_, err := p.indexing.RequestIndexing(ctx, profile.Id, entity.DocumentTypeCandidateProfile)
		require.NoError(t, err)
	}

	res := p.worker.Drain(ctx, 0)

	assert.Equal(t, 5, res.Claimed)
	assert.Equal(t, 5, res.Succeeded)
}

func TestIndexingWorker_StartAndStop(t *testing.T) {
	p := newPipeline(t)
	p.worker.cfg.PollInterval = 10 * time.Millisecond
	job := activeJob(uuid.New(), "Support Engineer", "SQL")
	p.jobs.Put(job)

	_, err := p.indexing.RequestIndexing(context.Background(), job.Id, entity.DocumentTypeJob)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- p.worker.Start(context.Background()) }()

	require.Eventually(t, func() bool {
		return p.record(t, job.Id, entity.DocumentTypeJob).Status == entity.IndexingStatusIndexed
	}, 2*time.Second, 10*time.Millisecond)

	p.worker.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
