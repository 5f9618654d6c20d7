package unitofwork

import (
	"context"

	"jobmatch-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	EmbeddingRecordRepository() contract.EmbeddingRecordRepository
	VectorIndex() contract.VectorIndex
}
