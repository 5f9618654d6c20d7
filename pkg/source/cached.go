package source

import (
	"context"
	"time"

	"jobmatch-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// CachedJobSource is a read-through cache for match enrichment, where one
// request fans out to up to top-K lookups. Only found documents are cached.
// The indexing pipeline reads the uncached source.
type CachedJobSource struct {
	next  JobSource
	cache *cache.Cache
}

func NewCachedJobSource(next JobSource, ttl time.Duration) *CachedJobSource {
	return &CachedJobSource{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (s *CachedJobSource) GetJob(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	if x, found := s.cache.Get(id.String()); found {
		return x.(*entity.Job), nil
	}
	job, err := s.next.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(id.String(), job, cache.DefaultExpiration)
	return job, nil
}

func (s *CachedJobSource) Invalidate(id uuid.UUID) {
	s.cache.Delete(id.String())
}

type CachedProfileSource struct {
	next  ProfileSource
	cache *cache.Cache
}

func NewCachedProfileSource(next ProfileSource, ttl time.Duration) *CachedProfileSource {
	return &CachedProfileSource{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (s *CachedProfileSource) GetCandidate(ctx context.Context, id uuid.UUID) (*entity.CandidateProfile, error) {
	if x, found := s.cache.Get(id.String()); found {
		return x.(*entity.CandidateProfile), nil
	}
	profile, err := s.next.GetCandidate(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(id.String(), profile, cache.DefaultExpiration)
	return profile, nil
}

func (s *CachedProfileSource) Invalidate(id uuid.UUID) {
	s.cache.Delete(id.String())
}
