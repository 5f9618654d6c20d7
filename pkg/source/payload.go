package source

import (
	"time"

	"jobmatch-be/internal/entity"

	"github.com/google/uuid"
)

// Wire formats of the job and profile services' internal read endpoints.

type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *T     `json:"data"`
}

type jobSkillPayload struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	IsRequired bool   `json:"is_required"`
}

type jobPayload struct {
	Id              uuid.UUID         `json:"id"`
	EmployerId      uuid.UUID         `json:"employer_id"`
	EmployerName    string            `json:"employer_name"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	Requirements    string            `json:"requirements"`
	Location        string            `json:"location"`
	EmploymentType  string            `json:"employment_type"`
	ExperienceLevel string            `json:"experience_level"`
	IsRemote        bool              `json:"is_remote"`
	SalaryMin       *float64          `json:"salary_min"`
	SalaryMax       *float64          `json:"salary_max"`
	SalaryCurrency  string            `json:"salary_currency"`
	Skills          []jobSkillPayload `json:"skills"`
	Status          string            `json:"status"`
	ExpiresAt       *time.Time        `json:"expires_at"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func (p *jobPayload) toEntity() *entity.Job {
	skills := make([]entity.JobSkill, len(p.Skills))
	for i, s := range p.Skills {
		skills[i] = entity.JobSkill{Name: s.Name, Version: s.Version, IsRequired: s.IsRequired}
	}
	return &entity.Job{
		Id:              p.Id,
		EmployerId:      p.EmployerId,
		EmployerName:    p.EmployerName,
		Title:           p.Title,
		Description:     p.Description,
		Requirements:    p.Requirements,
		Location:        p.Location,
		EmploymentType:  p.EmploymentType,
		ExperienceLevel: p.ExperienceLevel,
		IsRemote:        p.IsRemote,
		SalaryMin:       p.SalaryMin,
		SalaryMax:       p.SalaryMax,
		SalaryCurrency:  p.SalaryCurrency,
		Skills:          skills,
		Status:          entity.JobStatus(p.Status),
		ExpiresAt:       p.ExpiresAt,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

type candidateSkillPayload struct {
	Name              string `json:"name"`
	Version           string `json:"version"`
	YearsOfExperience int    `json:"years_of_experience"`
}

type experiencePayload struct {
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Description string     `json:"description"`
	StartedAt   *time.Time `json:"started_at"`
	EndedAt     *time.Time `json:"ended_at"`
}

type candidatePayload struct {
	Id                uuid.UUID               `json:"id"`
	FullName          string                  `json:"full_name"`
	Headline          string                  `json:"headline"`
	Summary           string                  `json:"summary"`
	Location          string                  `json:"location"`
	YearsOfExperience int                     `json:"years_of_experience"`
	DesiredSalary     *float64                `json:"desired_salary"`
	SalaryCurrency    string                  `json:"salary_currency"`
	OpenToRemote      bool                    `json:"open_to_remote"`
	Skills            []candidateSkillPayload `json:"skills"`
	Experience        []experiencePayload     `json:"experience"`
	CreatedAt         time.Time               `json:"created_at"`
	UpdatedAt         time.Time               `json:"updated_at"`
}

func (p *candidatePayload) toEntity() *entity.CandidateProfile {
	skills := make([]entity.CandidateSkill, len(p.Skills))
	for i, s := range p.Skills {
		skills[i] = entity.CandidateSkill{Name: s.Name, Version: s.Version, YearsOfExperience: s.YearsOfExperience}
	}
	experience := make([]entity.WorkExperience, len(p.Experience))
	for i, e := range p.Experience {
		experience[i] = entity.WorkExperience{
			Title:       e.Title,
			Company:     e.Company,
			Description: e.Description,
			StartedAt:   e.StartedAt,
			EndedAt:     e.EndedAt,
		}
	}
	return &entity.CandidateProfile{
		Id:                p.Id,
		FullName:          p.FullName,
		Headline:          p.Headline,
		Summary:           p.Summary,
		Location:          p.Location,
		YearsOfExperience: p.YearsOfExperience,
		DesiredSalary:     p.DesiredSalary,
		SalaryCurrency:    p.SalaryCurrency,
		OpenToRemote:      p.OpenToRemote,
		Skills:            skills,
		Experience:        experience,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
