package memory

import (
	"context"

	"jobmatch-be/internal/repository/contract"
	"jobmatch-be/internal/repository/unitofwork"
)

// RepositoryFactory hands out units of work over one shared in-memory store
// and index. Transactions are no-ops; each store method is atomic on its own.
type RepositoryFactory struct {
	Records *EmbeddingRecordStore
	Vectors *VectorIndex
}

func NewRepositoryFactory() *RepositoryFactory {
	return &RepositoryFactory{
		Records: NewEmbeddingRecordStore(),
		Vectors: NewVectorIndex(),
	}
}

func (f *RepositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &unitOfWork{factory: f}
}

type unitOfWork struct {
	factory *RepositoryFactory
}

func (u *unitOfWork) Begin(ctx context.Context) error { return nil }
func (u *unitOfWork) Commit() error                   { return nil }
func (u *unitOfWork) Rollback() error                 { return nil }

func (u *unitOfWork) EmbeddingRecordRepository() contract.EmbeddingRecordRepository {
	return u.factory.Records
}

func (u *unitOfWork) VectorIndex() contract.VectorIndex {
	return u.factory.Vectors
}
