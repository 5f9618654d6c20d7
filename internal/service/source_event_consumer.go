package service

import (
	"context"
	"fmt"

	"jobmatch-be/internal/entity"
	"jobmatch-be/internal/pkg/logger"
	"jobmatch-be/pkg/events"
	pktNats "jobmatch-be/pkg/nats"

	"github.com/google/uuid"
)

// EventSubscriber is satisfied by the NATS subscriber.
type EventSubscriber interface {
	Subscribe(ctx context.Context, subject, durableName string, handler pktNats.EventHandler) error
}

// CacheInvalidator drops a cached source document.
type CacheInvalidator interface {
	Invalidate(id uuid.UUID)
}

type ISourceEventConsumer interface {
	Consume(ctx context.Context) error
	Handle(ctx context.Context, event events.Event) error
}

// sourceEventConsumer turns job and profile change events into indexing
// requests, so the owning services need not call the HTTP endpoints.
type sourceEventConsumer struct {
	subscriber EventSubscriber
	indexing   IIndexingService
	jobCache   CacheInvalidator
	profCache  CacheInvalidator
	logger     logger.ILogger
}

// NewSourceEventConsumer wires the consumer. jobCache and profileCache may be
// nil; when set, the changed document is evicted before it is queued so
// matches stop showing a closed job right away.
func NewSourceEventConsumer(
	subscriber EventSubscriber,
	indexing IIndexingService,
	jobCache CacheInvalidator,
	profileCache CacheInvalidator,
	log logger.ILogger,
) ISourceEventConsumer {
	return &sourceEventConsumer{
		subscriber: subscriber,
		indexing:   indexing,
		jobCache:   jobCache,
		profCache:  profileCache,
		logger:     log,
	}
}

var sourceEventTypes = []string{
	events.JobPublished,
	events.JobUpdated,
	events.JobClosed,
	events.CandidateProfileUpdated,
}

func (c *sourceEventConsumer) Consume(ctx context.Context) error {
	for _, eventType := range sourceEventTypes {
		durable := "matching-" + eventType
		if err := c.subscriber.Subscribe(ctx, events.Subject(eventType), durable, c.Handle); err != nil {
			return err
		}
	}
	return nil
}

// Handle requests indexing for the document the event refers to. Malformed
// events are logged and acknowledged; only store failures are redelivered.
func (c *sourceEventConsumer) Handle(ctx context.Context, event events.Event) error {
	var (
		documentType entity.DocumentType
		keys         []string
		cache        CacheInvalidator
	)
	switch event.EventType() {
	case events.JobPublished, events.JobUpdated, events.JobClosed:
		documentType = entity.DocumentTypeJob
		keys = []string{"job_id", "id"}
		cache = c.jobCache
	case events.CandidateProfileUpdated:
		documentType = entity.DocumentTypeCandidateProfile
		keys = []string{"candidate_id", "user_id", "id"}
		cache = c.profCache
	default:
		c.logger.Debug("CONSUMER", "Ignoring event", map[string]interface{}{"type": event.EventType()})
		return nil
	}

	documentId, err := firstUUID(event, keys...)
	if err != nil {
		c.logger.Warn("CONSUMER", "Event without usable document id", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
		return nil
	}

	if cache != nil {
		cache.Invalidate(documentId)
	}

	if _, err := c.indexing.RequestIndexing(ctx, documentId, documentType); err != nil {
		return fmt.Errorf("request indexing for %s %s: %w", documentType, documentId, err)
	}
	return nil
}

func firstUUID(event events.Event, keys ...string) (uuid.UUID, error) {
	for _, key := range keys {
		raw := events.String(event, key)
		if raw == "" {
			continue
		}
		return uuid.Parse(raw)
	}
	return uuid.Nil, fmt.Errorf("none of %v present", keys)
}
