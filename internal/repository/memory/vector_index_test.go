package memory

import (
	"context"
	"testing"

	"jobmatch-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
	assert.Zero(t, cosineSimilarity([]float32{1}, []float32{1, 1}))
}

func TestVectorIndex_SearchAndDelete(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndex()

	near := uuid.New()
	far := uuid.New()
	require.NoError(t, idx.UpsertJob(ctx, &entity.JobVectorDocument{JobId: near, Title: "near", Embedding: []float32{1, 0.1}}))
	require.NoError(t, idx.UpsertJob(ctx, &entity.JobVectorDocument{JobId: far, Title: "far", Embedding: []float32{0, 1}}))

	hits, err := idx.SearchJobsForCandidate(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, near, hits[0].DocumentId)
	assert.Greater(t, hits[0].Score, hits[1].Score)

	hits, err = idx.SearchJobsForCandidate(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	require.NoError(t, idx.Delete(ctx, near, entity.DocumentTypeJob))
	require.NoError(t, idx.Delete(ctx, near, entity.DocumentTypeJob))
	_, ok := idx.Job(near)
	assert.False(t, ok)

	vec, err := idx.GetEmbedding(ctx, near, entity.DocumentTypeJob)
	require.NoError(t, err)
	assert.Nil(t, vec)
}

func TestVectorIndex_UpsertReplacesWholeDocument(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndex()
	id := uuid.New()

	require.NoError(t, idx.UpsertCandidate(ctx, &entity.CandidateVectorDocument{
		CandidateId: id, Headline: "old", Skills: []string{"go"}, Embedding: []float32{1, 0},
	}))
	require.NoError(t, idx.UpsertCandidate(ctx, &entity.CandidateVectorDocument{
		CandidateId: id, Headline: "new", Embedding: []float32{0, 1},
	}))

	doc, ok := idx.Candidate(id)
	require.True(t, ok)
	assert.Equal(t, "new", doc.Headline)
	assert.Empty(t, doc.Skills)

	vec, err := idx.GetEmbedding(ctx, id, entity.DocumentTypeCandidateProfile)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1}, vec)
}
