package mapper

import (
	"jobmatch-be/internal/entity"
	"jobmatch-be/internal/model"
)

type EmbeddingRecordMapper struct{}

func NewEmbeddingRecordMapper() *EmbeddingRecordMapper {
	return &EmbeddingRecordMapper{}
}

func (m *EmbeddingRecordMapper) ToEntity(r *model.EmbeddingRecord) *entity.EmbeddingRecord {
	if r == nil {
		return nil
	}
	return &entity.EmbeddingRecord{
		Id:             r.Id,
		DocumentId:     r.DocumentId,
		DocumentType:   entity.DocumentType(r.DocumentType),
		Status:         entity.IndexingStatus(r.Status),
		RetryCount:     r.RetryCount,
		LastIndexedAt:  r.LastIndexedAt,
		ErrorMessage:   r.ErrorMessage,
		ClaimedBy:      r.ClaimedBy,
		ClaimExpiresAt: r.ClaimExpiresAt,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func (m *EmbeddingRecordMapper) ToModel(r *entity.EmbeddingRecord) *model.EmbeddingRecord {
	if r == nil {
		return nil
	}
	return &model.EmbeddingRecord{
		Id:             r.Id,
		DocumentId:     r.DocumentId,
		DocumentType:   string(r.DocumentType),
		Status:         string(r.Status),
		RetryCount:     r.RetryCount,
		LastIndexedAt:  r.LastIndexedAt,
		ErrorMessage:   r.ErrorMessage,
		ClaimedBy:      r.ClaimedBy,
		ClaimExpiresAt: r.ClaimExpiresAt,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func (m *EmbeddingRecordMapper) ToEntities(records []*model.EmbeddingRecord) []*entity.EmbeddingRecord {
	entities := make([]*entity.EmbeddingRecord, len(records))
	for i, r := range records {
		entities[i] = m.ToEntity(r)
	}
	return entities
}
