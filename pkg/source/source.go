// Package source fetches the canonical job and candidate documents owned by
// the job and profile services.
package source

import (
	"context"
	"errors"

	"jobmatch-be/internal/entity"

	"github.com/google/uuid"
)

// ErrNotFound means the owning service answered that the document does not
// exist. Transport failures are returned as other errors.
var ErrNotFound = errors.New("source document not found")

type JobSource interface {
	GetJob(ctx context.Context, id uuid.UUID) (*entity.Job, error)
}

type ProfileSource interface {
	GetCandidate(ctx context.Context, id uuid.UUID) (*entity.CandidateProfile, error)
}
