package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"jobmatch-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPJobSource_GetJob(t *testing.T) {
	id := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/internal/jobs/"+id.String(), r.URL.Path)
		assert.Equal(t, "Bearer svc-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"ok","data":{
			"id":"` + id.String() + `","title":"Go Developer","status":"active",
			"skills":[{"name":"Go","version":"1.24","is_required":true}]}}`))
	}))
	defer server.Close()

	src := NewHTTPJobSource(server.URL, "svc-token", time.Second)
	job, err := src.GetJob(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, id, job.Id)
	assert.Equal(t, "Go Developer", job.Title)
	assert.Equal(t, entity.JobStatusActive, job.Status)
	assert.Equal(t, []string{"Go"}, job.SkillNames())
}

func TestHTTPProfileSource_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	src := NewHTTPProfileSource(server.URL, "", time.Second)
	_, err := src.GetCandidate(context.Background(), uuid.New())

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHTTPProfileSource_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	src := NewHTTPProfileSource(server.URL, "", time.Second)
	_, err := src.GetCandidate(context.Background(), uuid.New())

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

type countingJobSource struct {
	calls atomic.Int32
	inner JobSource
}

func (c *countingJobSource) GetJob(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	c.calls.Add(1)
	return c.inner.GetJob(ctx, id)
}

func TestCachedJobSource_CachesOnlyHits(t *testing.T) {
	mem := NewMemoryJobSource()
	job := &entity.Job{Id: uuid.New(), Title: "cached"}
	mem.Put(job)
	counting := &countingJobSource{inner: mem}
	cached := NewCachedJobSource(counting, time.Minute)

	for i := 0; i < 3; i++ {
		got, err := cached.GetJob(context.Background(), job.Id)
		require.NoError(t, err)
		assert.Equal(t, "cached", got.Title)
	}
	assert.Equal(t, int32(1), counting.calls.Load())

	missing := uuid.New()
	for i := 0; i < 2; i++ {
		_, err := cached.GetJob(context.Background(), missing)
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, int32(3), counting.calls.Load())

	cached.Invalidate(job.Id)
	_, _ = cached.GetJob(context.Background(), job.Id)
	assert.Equal(t, int32(4), counting.calls.Load())
}

func TestMemoryProfileSource(t *testing.T) {
	mem := NewMemoryProfileSource()
	profile := &entity.CandidateProfile{Id: uuid.New(), FullName: "Ana"}
	mem.Put(profile)

	got, err := mem.GetCandidate(context.Background(), profile.Id)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.FullName)

	mem.Remove(profile.Id)
	_, err = mem.GetCandidate(context.Background(), profile.Id)
	assert.ErrorIs(t, err, ErrNotFound)
}
