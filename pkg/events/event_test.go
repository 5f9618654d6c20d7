package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubjectRoundTrip(t *testing.T) {
	assert.Equal(t, "events.JOB_UPDATED", Subject(JobUpdated))
	assert.Equal(t, JobUpdated, TypeFromSubject("events.JOB_UPDATED"))
	assert.Equal(t, "CUSTOM", TypeFromSubject("CUSTOM"))
}

func TestString(t *testing.T) {
	e := BaseEvent{Type: JobClosed, Data: map[string]interface{}{"job_id": "abc", "n": 1}}

	assert.Equal(t, "abc", String(e, "job_id"))
	assert.Equal(t, "", String(e, "n"))
	assert.Equal(t, "", String(BaseEvent{}, "job_id"))
}
