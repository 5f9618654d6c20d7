package model

import (
	"time"

	"github.com/google/uuid"
)

type EmbeddingRecord struct {
	Id             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_embedding_records_document,priority:1"`
	DocumentType   string     `gorm:"type:varchar(32);not null;uniqueIndex:idx_embedding_records_document,priority:2"`
	Status         string     `gorm:"type:varchar(16);not null;default:'pending';index:idx_embedding_records_queue,priority:1"`
	RetryCount     int        `gorm:"not null;default:0"`
	LastIndexedAt  *time.Time
	ErrorMessage   string     `gorm:"type:text"`
	ClaimedBy      string     `gorm:"type:varchar(128)"`
	ClaimExpiresAt *time.Time `gorm:"index"`
	CreatedAt      time.Time  `gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime;index:idx_embedding_records_queue,priority:2"`
}

func (EmbeddingRecord) TableName() string {
	return "embedding_records"
}
