package mapper

import (
	"encoding/json"

	"jobmatch-be/internal/entity"
	"jobmatch-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type VectorDocumentMapper struct{}

func NewVectorDocumentMapper() *VectorDocumentMapper {
	return &VectorDocumentMapper{}
}

func (m *VectorDocumentMapper) JobToModel(d *entity.JobVectorDocument) (*model.JobVector, error) {
	skills, err := encodeSkills(d.Skills)
	if err != nil {
		return nil, err
	}
	return &model.JobVector{
		JobId:           d.JobId,
		EmployerId:      d.EmployerId,
		EmployerName:    d.EmployerName,
		Title:           d.Title,
		Location:        d.Location,
		EmploymentType:  d.EmploymentType,
		ExperienceLevel: d.ExperienceLevel,
		IsRemote:        d.IsRemote,
		SalaryMin:       d.SalaryMin,
		SalaryMax:       d.SalaryMax,
		SalaryCurrency:  d.SalaryCurrency,
		Skills:          skills,
		CanonicalText:   d.CanonicalText,
		Embedding:       pgvector.NewVector(d.Embedding),
		SourceUpdatedAt: d.SourceUpdatedAt,
		IndexedAt:       d.IndexedAt,
	}, nil
}

func (m *VectorDocumentMapper) CandidateToModel(d *entity.CandidateVectorDocument) (*model.CandidateVector, error) {
	skills, err := encodeSkills(d.Skills)
	if err != nil {
		return nil, err
	}
	return &model.CandidateVector{
		CandidateId:       d.CandidateId,
		FullName:          d.FullName,
		Headline:          d.Headline,
		Location:          d.Location,
		YearsOfExperience: d.YearsOfExperience,
		OpenToRemote:      d.OpenToRemote,
		DesiredSalary:     d.DesiredSalary,
		SalaryCurrency:    d.SalaryCurrency,
		Skills:            skills,
		CanonicalText:     d.CanonicalText,
		Embedding:         pgvector.NewVector(d.Embedding),
		SourceUpdatedAt:   d.SourceUpdatedAt,
		IndexedAt:         d.IndexedAt,
	}, nil
}

func encodeSkills(skills []string) (datatypes.JSON, error) {
	if skills == nil {
		skills = []string{}
	}
	raw, err := json.Marshal(skills)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
