// Package canonical renders jobs and candidate profiles into the plain text
// that is embedded. The output is deterministic for equal input so that
// re-indexing an unchanged document yields the same vector.
package canonical

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"jobmatch-be/internal/entity"
)

type builder struct {
	sb strings.Builder
}

func (b *builder) field(label, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	if b.sb.Len() > 0 {
		b.sb.WriteString("\n")
	}
	b.sb.WriteString(label)
	b.sb.WriteString(": ")
	b.sb.WriteString(value)
}

func (b *builder) String() string {
	return b.sb.String()
}

// sortedSkills orders skill labels case-insensitively, dropping blanks and
// case-insensitive duplicates.
func sortedSkills(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		key := strings.ToLower(l)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, l)
	}
	sort.SliceStable(out, func(i, j int) bool {
		li, lj := strings.ToLower(out[i]), strings.ToLower(out[j])
		if li != lj {
			return li < lj
		}
		return out[i] < out[j]
	})
	return out
}

func skillLabel(name, version string) string {
	name = strings.TrimSpace(name)
	version = strings.TrimSpace(version)
	if version == "" {
		return name
	}
	return name + " " + version
}

func salaryRange(min, max *float64, currency string) string {
	format := func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	var out string
	switch {
	case min != nil && max != nil:
		out = format(*min) + " - " + format(*max)
	case min != nil:
		out = "from " + format(*min)
	case max != nil:
		out = "up to " + format(*max)
	default:
		return ""
	}
	if currency != "" {
		out += " " + currency
	}
	return out
}

func JobText(job *entity.Job) string {
	var b builder
	b.field("Title", job.Title)
	b.field("Company", job.EmployerName)
	b.field("Location", job.Location)
	if job.IsRemote {
		b.field("Remote", "yes")
	}
	b.field("Employment type", job.EmploymentType)
	b.field("Experience level", job.ExperienceLevel)
	b.field("Salary", salaryRange(job.SalaryMin, job.SalaryMax, job.SalaryCurrency))

	var required, optional []string
	for _, s := range job.Skills {
		if s.IsRequired {
			required = append(required, skillLabel(s.Name, s.Version))
		} else {
			optional = append(optional, skillLabel(s.Name, s.Version))
		}
	}
	b.field("Required skills", strings.Join(sortedSkills(required), ", "))
	b.field("Nice to have", strings.Join(sortedSkills(optional), ", "))
	b.field("Description", job.Description)
	b.field("Requirements", job.Requirements)
	return b.String()
}

func CandidateText(profile *entity.CandidateProfile) string {
	var b builder
	b.field("Headline", profile.Headline)
	b.field("Location", profile.Location)
	if profile.OpenToRemote {
		b.field("Open to remote", "yes")
	}
	if profile.YearsOfExperience > 0 {
		b.field("Years of experience", strconv.Itoa(profile.YearsOfExperience))
	}

	labels := make([]string, 0, len(profile.Skills))
	for _, s := range profile.Skills {
		label := skillLabel(s.Name, s.Version)
		if s.YearsOfExperience > 0 && label != "" {
			label = fmt.Sprintf("%s (%dy)", label, s.YearsOfExperience)
		}
		labels = append(labels, label)
	}
	b.field("Skills", strings.Join(sortedSkills(labels), ", "))
	b.field("Summary", profile.Summary)

	for _, e := range profile.Experience {
		role := strings.TrimSpace(e.Title)
		if company := strings.TrimSpace(e.Company); company != "" {
			if role != "" {
				role += " at " + company
			} else {
				role = company
			}
		}
		if desc := strings.TrimSpace(e.Description); desc != "" {
			if role != "" {
				role += ". " + desc
			} else {
				role = desc
			}
		}
		b.field("Experience", role)
	}
	return b.String()
}
