package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"jobmatch-be/internal/entity"
	"jobmatch-be/internal/model"
	"jobmatch-be/internal/repository/unitofwork"
	"jobmatch-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, false)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, model.Models(), model.VectorIndexSQL))
	return db
}

func vector(seed float32) []float32 {
	v := make([]float32, 768)
	v[0] = 1
	v[1] = seed
	return v
}

func TestGormEmbeddingRecordRepository(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)
	repo := uow.EmbeddingRecordRepository()

	docId := uuid.New()
	t.Cleanup(func() {
		db.Where("document_id = ?", docId).Delete(&model.EmbeddingRecord{})
	})

	rec := entity.NewEmbeddingRecord(docId, entity.DocumentTypeJob, time.Now())
	require.NoError(t, repo.Add(ctx, rec))
	assert.Error(t, repo.Add(ctx, entity.NewEmbeddingRecord(docId, entity.DocumentTypeJob, time.Now())))

	exists, err := repo.Exists(ctx, docId, entity.DocumentTypeJob)
	require.NoError(t, err)
	assert.True(t, exists)

	t.Run("claim marks processing", func(t *testing.T) {
		claimed, err := repo.ClaimPending(ctx, "integration", 1000, time.Now().Add(-time.Second))
		require.NoError(t, err)

		var found bool
		for _, c := range claimed {
			if c.DocumentId == docId {
				found = true
				assert.Equal(t, entity.IndexingStatusProcessing, c.Status)
				assert.Equal(t, "integration", c.ClaimedBy)
			}
		}
		assert.True(t, found)
	})

	t.Run("expired lease is released", func(t *testing.T) {
		released, err := repo.ReleaseStale(ctx, time.Now())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, released, int64(1))

		got, err := repo.GetByDocument(ctx, docId, entity.DocumentTypeJob)
		require.NoError(t, err)
		assert.Equal(t, entity.IndexingStatusFailed, got.Status)
		assert.Equal(t, 1, got.RetryCount)
	})

	t.Run("exhausted record is reset", func(t *testing.T) {
		got, err := repo.GetByDocument(ctx, docId, entity.DocumentTypeJob)
		require.NoError(t, err)
		got.MarkExhausted("gone", time.Now())
		require.NoError(t, repo.Update(ctx, got))

		pending, err := repo.GetPending(ctx, 1000)
		require.NoError(t, err)
		for _, p := range pending {
			assert.NotEqual(t, docId, p.DocumentId)
		}

		jobType := entity.DocumentTypeJob
		reset, err := repo.ResetExhausted(ctx, &jobType)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, reset, int64(1))
	})

	t.Run("insert conflict is tolerated", func(t *testing.T) {
		created, err := repo.AddIfAbsent(ctx, entity.NewEmbeddingRecord(docId, entity.DocumentTypeJob, time.Now()))
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("outcome needs the held claim", func(t *testing.T) {
		claimed, err := repo.ClaimPending(ctx, "integration", 1000, time.Now().Add(time.Minute))
		require.NoError(t, err)

		var mine *entity.EmbeddingRecord
		for _, c := range claimed {
			if c.DocumentId == docId {
				mine = c
			}
		}
		require.NotNil(t, mine)
		mine.MarkIndexed(time.Now())

		applied, err := repo.CompleteClaim(ctx, mine, "someone-else")
		require.NoError(t, err)
		assert.False(t, applied)

		applied, err = repo.CompleteClaim(ctx, mine, "integration")
		require.NoError(t, err)
		assert.True(t, applied)

		got, err := repo.GetByDocument(ctx, docId, entity.DocumentTypeJob)
		require.NoError(t, err)
		assert.Equal(t, entity.IndexingStatusIndexed, got.Status)
		assert.Empty(t, got.ClaimedBy)
		assert.Nil(t, got.ClaimExpiresAt)
	})
}

func TestPgvectorIndex(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	index := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx).VectorIndex()

	near := uuid.New()
	far := uuid.New()
	t.Cleanup(func() {
		_ = index.Delete(ctx, near, entity.DocumentTypeJob)
		_ = index.Delete(ctx, far, entity.DocumentTypeJob)
	})

	require.NoError(t, index.UpsertJob(ctx, &entity.JobVectorDocument{JobId: near, Title: "near", Skills: []string{"Go"}, Embedding: vector(0), IndexedAt: time.Now()}))
	require.NoError(t, index.UpsertJob(ctx, &entity.JobVectorDocument{JobId: far, Title: "far", Embedding: vector(50), IndexedAt: time.Now()}))

	hits, err := index.SearchJobsForCandidate(ctx, vector(0), 100)
	require.NoError(t, err)

	rank := map[uuid.UUID]int{}
	for i, h := range hits {
		rank[h.DocumentId] = i
	}
	require.Contains(t, rank, near)
	require.Contains(t, rank, far)
	assert.Less(t, rank[near], rank[far])
	assert.InDelta(t, 1.0, hits[rank[near]].Score, 1e-4)

	stored, err := index.GetEmbedding(ctx, near, entity.DocumentTypeJob)
	require.NoError(t, err)
	assert.Len(t, stored, 768)

	require.NoError(t, index.Delete(ctx, near, entity.DocumentTypeJob))
	stored, err = index.GetEmbedding(ctx, near, entity.DocumentTypeJob)
	require.NoError(t, err)
	assert.Nil(t, stored)
}
