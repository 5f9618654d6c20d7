package source

import (
	"context"
	"sync"

	"jobmatch-be/internal/entity"

	"github.com/google/uuid"
)

// MemoryJobSource and MemoryProfileSource back tests and local runs. An
// optional error hook lets callers simulate an unavailable service.
type MemoryJobSource struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]*entity.Job
	Err  error
}

func NewMemoryJobSource() *MemoryJobSource {
	return &MemoryJobSource{jobs: make(map[uuid.UUID]*entity.Job)}
}

func (s *MemoryJobSource) Put(job *entity.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.Id] = job
}

func (s *MemoryJobSource) Remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
}

func (s *MemoryJobSource) GetJob(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *job
	return &clone, nil
}

type MemoryProfileSource struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]*entity.CandidateProfile
	Err      error
}

func NewMemoryProfileSource() *MemoryProfileSource {
	return &MemoryProfileSource{profiles: make(map[uuid.UUID]*entity.CandidateProfile)}
}

func (s *MemoryProfileSource) Put(profile *entity.CandidateProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.Id] = profile
}

func (s *MemoryProfileSource) Remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.profiles, id)
}

func (s *MemoryProfileSource) GetCandidate(ctx context.Context, id uuid.UUID) (*entity.CandidateProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	profile, ok := s.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *profile
	return &clone, nil
}
