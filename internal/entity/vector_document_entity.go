package entity

import (
	"time"

	"github.com/google/uuid"
)

// JobVectorDocument is the search projection of a Job. It is rebuilt in full on
// every index run.
type JobVectorDocument struct {
	JobId           uuid.UUID
	EmployerId      uuid.UUID
	EmployerName    string
	Title           string
	Location        string
	EmploymentType  string
	ExperienceLevel string
	IsRemote        bool
	SalaryMin       *float64
	SalaryMax       *float64
	SalaryCurrency  string
	Skills          []string
	CanonicalText   string
	Embedding       []float32
	SourceUpdatedAt time.Time
	IndexedAt       time.Time
}

type CandidateVectorDocument struct {
	CandidateId       uuid.UUID
	FullName          string
	Headline          string
	Location          string
	YearsOfExperience int
	OpenToRemote      bool
	DesiredSalary     *float64
	SalaryCurrency    string
	Skills            []string
	CanonicalText     string
	Embedding         []float32
	SourceUpdatedAt   time.Time
	IndexedAt         time.Time
}
