package service

import (
	"context"
	"time"

	"jobmatch-be/internal/entity"
	"jobmatch-be/internal/pkg/logger"
	"jobmatch-be/pkg/source"

	"github.com/google/uuid"
)

const MessageTypeIndexingStatus = "indexing_status"

// StatusDelivery is satisfied by the websocket hub.
type StatusDelivery interface {
	Send(userId uuid.UUID, messageType string, data interface{})
}

// statusNotifier pushes each outcome to the user who owns the document: the
// candidate for a profile, the employer for a job.
type statusNotifier struct {
	delivery StatusDelivery
	jobs     source.JobSource
	logger   logger.ILogger
}

func NewStatusNotifier(delivery StatusDelivery, jobs source.JobSource, log logger.ILogger) IIndexingEventPublisher {
	return &statusNotifier{delivery: delivery, jobs: jobs, logger: log}
}

func (n *statusNotifier) PublishIndexed(ctx context.Context, record *entity.EmbeddingRecord, action string) {
	n.notify(ctx, record)
}

func (n *statusNotifier) PublishFailed(ctx context.Context, record *entity.EmbeddingRecord) {
	n.notify(ctx, record)
}

func (n *statusNotifier) notify(ctx context.Context, record *entity.EmbeddingRecord) {
	owner, ok := n.owner(ctx, record)
	if !ok {
		return
	}
	n.delivery.Send(owner, MessageTypeIndexingStatus, toStatusResponse(record))
}

func (n *statusNotifier) owner(ctx context.Context, record *entity.EmbeddingRecord) (uuid.UUID, bool) {
	switch record.DocumentType {
	case entity.DocumentTypeCandidateProfile:
		return record.DocumentId, true
	case entity.DocumentTypeJob:
		ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		job, err := n.jobs.GetJob(ctx, record.DocumentId)
		if err != nil {
			n.logger.Debug("NOTIFIER", "Job owner unknown, status not pushed", map[string]interface{}{
				"document_id": record.DocumentId.String(),
				"error":       err.Error(),
			})
			return uuid.Nil, false
		}
		return job.EmployerId, true
	}
	return uuid.Nil, false
}

