package service

import (
	"context"
	"errors"
	"fmt"

	"jobmatch-be/internal/entity"
	"jobmatch-be/pkg/source"

	"github.com/google/uuid"
)

// authorizeJob loads the job and checks that caller may act on it: its
// employer, an admin, or an internal service. Candidates are rejected before
// the job is fetched.
func authorizeJob(ctx context.Context, jobs source.JobSource, caller entity.Principal, jobId uuid.UUID) (*entity.Job, error) {
	if caller.Role == entity.RoleCandidate {
		return nil, ErrAccessDenied
	}
	if !caller.IsTrusted() && caller.Role != entity.RoleEmployer {
		return nil, ErrAccessDenied
	}

	job, err := jobs.GetJob(ctx, jobId)
	if err != nil {
		if errors.Is(err, source.ErrNotFound) {
			return nil, fmt.Errorf("job %s: %w", jobId, ErrNotFound)
		}
		return nil, err
	}

	if !caller.IsTrusted() && job.EmployerId != caller.UserId {
		return nil, ErrAccessDenied
	}
	return job, nil
}

// authorizeProfile allows the candidate who owns the profile plus trusted callers.
func authorizeProfile(caller entity.Principal, candidateId uuid.UUID) error {
	if caller.IsTrusted() {
		return nil
	}
	if caller.Role == entity.RoleCandidate && caller.UserId == candidateId {
		return nil
	}
	return ErrAccessDenied
}
