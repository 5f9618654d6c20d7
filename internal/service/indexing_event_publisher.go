package service

import (
	"context"
	"time"

	"jobmatch-be/internal/entity"
	"jobmatch-be/internal/pkg/logger"
	"jobmatch-be/pkg/events"
)

// EventPublisher is satisfied by the NATS publisher.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// IIndexingEventPublisher announces the outcome of each processing attempt.
type IIndexingEventPublisher interface {
	PublishIndexed(ctx context.Context, record *entity.EmbeddingRecord, action string)
	PublishFailed(ctx context.Context, record *entity.EmbeddingRecord)
}

type indexingEventPublisher struct {
	bus    EventPublisher
	logger logger.ILogger
}

func NewIndexingEventPublisher(bus EventPublisher, log logger.ILogger) IIndexingEventPublisher {
	return &indexingEventPublisher{bus: bus, logger: log}
}

func (p *indexingEventPublisher) PublishIndexed(ctx context.Context, record *entity.EmbeddingRecord, action string) {
	p.publish(ctx, events.DocumentIndexed, map[string]interface{}{
		"document_id":   record.DocumentId.String(),
		"document_type": record.DocumentType.String(),
		"action":        action,
	})
}

func (p *indexingEventPublisher) PublishFailed(ctx context.Context, record *entity.EmbeddingRecord) {
	p.publish(ctx, events.DocumentIndexingFailed, map[string]interface{}{
		"document_id":   record.DocumentId.String(),
		"document_type": record.DocumentType.String(),
		"retry_count":   record.RetryCount,
		"exhausted":     !record.IsRetryable(),
		"error":         record.ErrorMessage,
	})
}

func (p *indexingEventPublisher) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	event := events.BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
	if err := p.bus.Publish(ctx, event); err != nil {
		p.logger.Warn("INDEXING", "Failed to publish outcome event", map[string]interface{}{
			"event": eventType,
			"error": err.Error(),
		})
	}
}

type noopIndexingEventPublisher struct{}

func NewNoopIndexingEventPublisher() IIndexingEventPublisher {
	return noopIndexingEventPublisher{}
}

func (noopIndexingEventPublisher) PublishIndexed(ctx context.Context, record *entity.EmbeddingRecord, action string) {
}

func (noopIndexingEventPublisher) PublishFailed(ctx context.Context, record *entity.EmbeddingRecord) {}
