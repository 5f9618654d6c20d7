package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// Embedding columns are vector(768): text-embedding-004, nomic-embed-text and
// jina-embeddings-v2-base-en all produce 768 dimensions; OpenAI is requested at 768.
type JobVector struct {
	JobId           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	EmployerId      uuid.UUID       `gorm:"type:uuid;not null;index"`
	EmployerName    string          `gorm:"type:varchar(255)"`
	Title           string          `gorm:"type:varchar(255);not null"`
	Location        string          `gorm:"type:varchar(255)"`
	EmploymentType  string          `gorm:"type:varchar(64)"`
	ExperienceLevel string          `gorm:"type:varchar(64)"`
	IsRemote        bool            `gorm:"not null;default:false"`
	SalaryMin       *float64        `gorm:"type:numeric(12,2)"`
	SalaryMax       *float64        `gorm:"type:numeric(12,2)"`
	SalaryCurrency  string          `gorm:"type:varchar(8)"`
	Skills          datatypes.JSON  `gorm:"type:jsonb"`
	CanonicalText   string          `gorm:"type:text"`
	Embedding       pgvector.Vector `gorm:"type:vector(768);not null"`
	SourceUpdatedAt time.Time
	IndexedAt       time.Time `gorm:"not null"`
}

func (JobVector) TableName() string {
	return "job_vectors"
}

type CandidateVector struct {
	CandidateId       uuid.UUID       `gorm:"type:uuid;primaryKey"`
	FullName          string          `gorm:"type:varchar(255)"`
	Headline          string          `gorm:"type:varchar(255)"`
	Location          string          `gorm:"type:varchar(255)"`
	YearsOfExperience int             `gorm:"not null;default:0"`
	OpenToRemote      bool            `gorm:"not null;default:false"`
	DesiredSalary     *float64        `gorm:"type:numeric(12,2)"`
	SalaryCurrency    string          `gorm:"type:varchar(8)"`
	Skills            datatypes.JSON  `gorm:"type:jsonb"`
	CanonicalText     string          `gorm:"type:text"`
	Embedding         pgvector.Vector `gorm:"type:vector(768);not null"`
	SourceUpdatedAt   time.Time
	IndexedAt         time.Time `gorm:"not null"`
}

func (CandidateVector) TableName() string {
	return "candidate_vectors"
}
