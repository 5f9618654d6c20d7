package entity

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusDraft  JobStatus = "draft"
	JobStatusActive JobStatus = "active"
	JobStatusClosed JobStatus = "closed"
)

type JobSkill struct {
	Name       string
	Version    string
	IsRequired bool
}

// Job is the job-posting aggregate as served by the job service.
type Job struct {
	Id              uuid.UUID
	EmployerId      uuid.UUID
	EmployerName    string
	Title           string
	Description     string
	Requirements    string
	Location        string
	EmploymentType  string
	ExperienceLevel string
	IsRemote        bool
	SalaryMin       *float64
	SalaryMax       *float64
	SalaryCurrency  string
	Skills          []JobSkill
	Status          JobStatus
	ExpiresAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsActive is false for closed or draft postings and for postings past their expiry.
func (j *Job) IsActive(now time.Time) bool {
	if j.Status != JobStatusActive {
		return false
	}
	return j.ExpiresAt == nil || j.ExpiresAt.After(now)
}

func (j *Job) SkillNames() []string {
	names := make([]string, 0, len(j.Skills))
	for _, s := range j.Skills {
		names = append(names, s.Name)
	}
	return names
}
