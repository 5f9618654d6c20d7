package dto

import (
	"time"

	"github.com/google/uuid"
)

type IndexingStatusResponse struct {
	RecordId      uuid.UUID  `json:"record_id"`
	DocumentId    uuid.UUID  `json:"document_id"`
	DocumentType  string     `json:"document_type"`
	Status        string     `json:"status"`
	RetryCount    int        `json:"retry_count"`
	LastIndexedAt *time.Time `json:"last_indexed_at"`
	ErrorMessage  string     `json:"error_message,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type IndexingStatsResponse struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Indexed    int64 `json:"indexed"`
	Failed     int64 `json:"failed"`
	Total      int64 `json:"total"`
}

type ResetExhaustedResponse struct {
	Reset int64 `json:"reset"`
}

// IndexingRequestedMessage is the in-process nudge sent after a document is
// queued so the worker can tick early.
type IndexingRequestedMessage struct {
	DocumentId   uuid.UUID `json:"document_id"`
	DocumentType string    `json:"document_type"`
}
