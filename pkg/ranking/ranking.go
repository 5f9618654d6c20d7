// Package ranking holds the pure scoring helpers used by match retrieval.
package ranking

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Hit is an enriched nearest-neighbour result ready to be ranked.
type Hit[T any] struct {
	Id              uuid.UUID
	Score           float64
	SourceUpdatedAt time.Time
	Document        T
}

// ClampScore maps a similarity into [0,1]. Cosine similarity can be negative
// and float error can push it slightly above one.
func ClampScore(score float64) float64 {
	if math.IsNaN(score) || score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func ToPercentage(score float64) int {
	return int(math.Round(ClampScore(score) * 100))
}

// SkillOverlap returns the skills of subject that also appear in other,
// compared case-insensitively. Order and casing follow subject.
func SkillOverlap(subject, other []string) []string {
	index := make(map[string]struct{}, len(other))
	for _, s := range other {
		index[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	seen := make(map[string]struct{})
	overlap := make([]string, 0)
	for _, s := range subject {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" {
			continue
		}
		if _, ok := index[key]; !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		overlap = append(overlap, s)
	}
	return overlap
}

// Sort orders hits by score descending. Equal scores put the most recently
// updated source document first, then the lowest id.
func Sort[T any](hits []Hit[T]) {
	sort.SliceStable(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.SourceUpdatedAt.Equal(b.SourceUpdatedAt) {
			return a.SourceUpdatedAt.After(b.SourceUpdatedAt)
		}
		return a.Id.String() < b.Id.String()
	})
}

// NormalizePage applies defaults to non-positive values and caps pageSize.
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// Paginate returns the 1-indexed page of items. Pages past the end are empty.
func Paginate[T any](items []T, page, pageSize int) []T {
	page, pageSize = NormalizePage(page, pageSize)
	pages := (len(items) + pageSize - 1) / pageSize
	if page-1 >= pages {
		return []T{}
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
