package events

import (
	"strings"
	"time"
)

// Event defines the contract for all bus events.
type Event interface {
	// EventType returns the unique code for this event (e.g. "JOB_PUBLISHED").
	EventType() string

	Payload() map[string]interface{}

	Timestamp() time.Time
}

const SubjectPrefix = "events."

// Published by the job and profile services.
const (
	JobPublished            = "JOB_PUBLISHED"
	JobUpdated              = "JOB_UPDATED"
	JobClosed               = "JOB_CLOSED"
	CandidateProfileUpdated = "CANDIDATE_PROFILE_UPDATED"
)

// Published by the indexing pipeline.
const (
	DocumentIndexed        = "DOCUMENT_INDEXED"
	DocumentIndexingFailed = "DOCUMENT_INDEXING_FAILED"
)

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Subject maps an event type to its bus subject.
func Subject(eventType string) string {
	return SubjectPrefix + eventType
}

// TypeFromSubject is the inverse of Subject.
func TypeFromSubject(subject string) string {
	return strings.TrimPrefix(subject, SubjectPrefix)
}

// String reads a string field from the payload, returning "" when absent.
func String(e Event, key string) string {
	if e.Payload() == nil {
		return ""
	}
	v, _ := e.Payload()[key].(string)
	return v
}
