package service

import (
	"context"
	"time"

	"jobmatch-be/internal/entity"
	"jobmatch-be/internal/pkg/logger"
	"jobmatch-be/internal/pkg/mailer"
)

// exhaustionAlerter mails operators when a record runs out of retries. Other
// outcomes are ignored.
type exhaustionAlerter struct {
	mail   mailer.IEmailService
	logger logger.ILogger
}

func NewExhaustionAlerter(mail mailer.IEmailService, log logger.ILogger) IIndexingEventPublisher {
	return &exhaustionAlerter{mail: mail, logger: log}
}

func (a *exhaustionAlerter) PublishIndexed(ctx context.Context, record *entity.EmbeddingRecord, action string) {
}

func (a *exhaustionAlerter) PublishFailed(ctx context.Context, record *entity.EmbeddingRecord) {
	if record.IsRetryable() {
		return
	}
	alert := mailer.ExhaustedAlert{
		DocumentId:   record.DocumentId.String(),
		DocumentType: record.DocumentType.String(),
		RetryCount:   record.RetryCount,
		Error:        record.ErrorMessage,
		OccurredAt:   time.Now(),
	}
	// Sent asynchronously; delivery failures are only logged.
	go func() {
		if err := a.mail.SendExhaustedAlert(alert); err != nil {
			a.logger.Warn("ALERT", "Failed to send exhaustion alert", map[string]interface{}{
				"document_id": alert.DocumentId,
				"error":       err.Error(),
			})
		}
	}()
}
