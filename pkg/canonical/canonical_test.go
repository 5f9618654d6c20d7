package canonical

import (
	"testing"

	"jobmatch-be/internal/entity"

	"github.com/stretchr/testify/assert"
)

func TestJobText_SortsSkillsAndSkipsEmptyFields(t *testing.T) {
	min := 4000.0
	job := &entity.Job{
		Title:        "Backend Engineer",
		EmployerName: "Acme",
		Location:     "",
		SalaryMin:    &min,
		Skills: []entity.JobSkill{
			{Name: "postgres", IsRequired: true},
			{Name: "Go", Version: "1.24", IsRequired: true},
			{Name: "kafka"},
		},
	}

	text := JobText(job)

	assert.Equal(t, "Title: Backend Engineer\n"+
		"Company: Acme\n"+
		"Salary: from 4000\n"+
		"Required skills: Go 1.24, postgres\n"+
		"Nice to have: kafka", text)
	assert.NotContains(t, text, "Location")
}

func TestJobText_IsDeterministicAcrossSkillOrder(t *testing.T) {
	a := &entity.Job{Title: "x", Skills: []entity.JobSkill{{Name: "b"}, {Name: "A"}, {Name: "c"}}}
	b := &entity.Job{Title: "x", Skills: []entity.JobSkill{{Name: "c"}, {Name: "b"}, {Name: "A"}}}

	assert.Equal(t, JobText(a), JobText(b))
}

func TestCandidateText(t *testing.T) {
	profile := &entity.CandidateProfile{
		FullName:          "Jane Doe",
		Headline:          "Platform engineer",
		YearsOfExperience: 6,
		OpenToRemote:      true,
		Skills: []entity.CandidateSkill{
			{Name: "Rust"},
			{Name: "go", YearsOfExperience: 5},
			{Name: "GO"},
		},
		Experience: []entity.WorkExperience{
			{Title: "SRE", Company: "Initech"},
		},
	}

	text := CandidateText(profile)

	assert.Equal(t, "Headline: Platform engineer\n"+
		"Open to remote: yes\n"+
		"Years of experience: 6\n"+
		"Skills: GO, go (5y), Rust\n"+
		"Experience: SRE at Initech", text)
	assert.NotContains(t, text, "Jane Doe")
}

func TestCandidateText_EmptyProfile(t *testing.T) {
	assert.Equal(t, "", CandidateText(&entity.CandidateProfile{}))
}
