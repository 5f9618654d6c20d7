package dto

import (
	"time"

	"github.com/google/uuid"
)

type MatchQuery struct {
	Page     int `query:"page" validate:"omitempty,min=1,max=10000"`
	PageSize int `query:"pageSize" validate:"omitempty,min=1,max=100"`
}

type SalaryRange struct {
	Min      *float64 `json:"min"`
	Max      *float64 `json:"max"`
	Currency string   `json:"currency,omitempty"`
}

type JobMatch struct {
	JobId           uuid.UUID   `json:"job_id"`
	Title           string      `json:"title"`
	EmployerId      uuid.UUID   `json:"employer_id"`
	EmployerName    string      `json:"employer_name"`
	Location        string      `json:"location"`
	EmploymentType  string      `json:"employment_type"`
	ExperienceLevel string      `json:"experience_level"`
	IsRemote        bool        `json:"is_remote"`
	Salary          SalaryRange `json:"salary"`
	Skills          []string    `json:"skills"`
	MatchingSkills  []string    `json:"matching_skills"`
	Score           float64     `json:"score"`
	MatchPercentage int         `json:"match_percentage"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

type CandidateMatch struct {
	CandidateId       uuid.UUID `json:"candidate_id"`
	FullName          string    `json:"full_name"`
	Headline          string    `json:"headline"`
	Location          string    `json:"location"`
	YearsOfExperience int       `json:"years_of_experience"`
	OpenToRemote      bool      `json:"open_to_remote"`
	DesiredSalary     *float64  `json:"desired_salary"`
	SalaryCurrency    string    `json:"salary_currency,omitempty"`
	Skills            []string  `json:"skills"`
	MatchingSkills    []string  `json:"matching_skills"`
	Score             float64   `json:"score"`
	MatchPercentage   int       `json:"match_percentage"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// MatchPage carries one page of ranked matches. IsReady is false while the
// subject document has not been indexed yet, in which case Items is empty.
type MatchPage[T any] struct {
	IsReady    bool `json:"is_ready"`
	Items      []T  `json:"items"`
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	TotalItems int  `json:"total_items"`
	TotalPages int  `json:"total_pages"`
}

type JobMatchesResponse = MatchPage[JobMatch]

type CandidateMatchesResponse = MatchPage[CandidateMatch]
