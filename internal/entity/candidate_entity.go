package entity

import (
	"time"

	"github.com/google/uuid"
)

type CandidateSkill struct {
	Name              string
	Version           string
	YearsOfExperience int
}

type WorkExperience struct {
	Title       string
	Company     string
	Description string
	StartedAt   *time.Time
	EndedAt     *time.Time
}

// CandidateProfile is keyed by the candidate's user id: a candidate owns exactly
// one profile in the profile service.
type CandidateProfile struct {
	Id                uuid.UUID
	FullName          string
	Headline          string
	Summary           string
	Location          string
	YearsOfExperience int
	DesiredSalary     *float64
	SalaryCurrency    string
	OpenToRemote      bool
	Skills            []CandidateSkill
	Experience        []WorkExperience
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (c *CandidateProfile) SkillNames() []string {
	names := make([]string, 0, len(c.Skills))
	for _, s := range c.Skills {
		names = append(names, s.Name)
	}
	return names
}
