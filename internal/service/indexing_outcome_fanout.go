package service

import (
	"context"

	"jobmatch-be/internal/entity"
)

type fanoutIndexingEventPublisher []IIndexingEventPublisher

// NewFanoutIndexingEventPublisher forwards each outcome to every non-nil sink
// in order.
func NewFanoutIndexingEventPublisher(sinks ...IIndexingEventPublisher) IIndexingEventPublisher {
	out := make(fanoutIndexingEventPublisher, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (f fanoutIndexingEventPublisher) PublishIndexed(ctx context.Context, record *entity.EmbeddingRecord, action string) {
	for _, s := range f {
		s.PublishIndexed(ctx, record, action)
	}
}

func (f fanoutIndexingEventPublisher) PublishFailed(ctx context.Context, record *entity.EmbeddingRecord) {
	for _, s := range f {
		s.PublishFailed(ctx, record)
	}
}
