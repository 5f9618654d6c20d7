package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"jobmatch-be/internal/dto"
	"jobmatch-be/internal/entity"
	"jobmatch-be/internal/pkg/logger"
	"jobmatch-be/internal/pkg/mailer"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentStatus struct {
	userId uuid.UUID
	kind   string
	data   interface{}
}

type fakeDelivery struct {
	mu   sync.Mutex
	sent []sentStatus
}

func (d *fakeDelivery) Send(userId uuid.UUID, messageType string, data interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, sentStatus{userId, messageType, data})
}

type fakeMailer struct {
	alerts chan mailer.ExhaustedAlert
}

func (m *fakeMailer) SendExhaustedAlert(alert mailer.ExhaustedAlert) error {
	m.alerts <- alert
	return nil
}

func TestStatusNotifier_RoutesToOwner(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()
	delivery := &fakeDelivery{}
	notifier := NewStatusNotifier(delivery, p.jobs, logger.NewNopLogger())

	employer := uuid.New()
	job := activeJob(employer, "Analyst", "Excel")
	p.jobs.Put(job)

	profileRec := entity.NewEmbeddingRecord(uuid.New(), entity.DocumentTypeCandidateProfile, time.Now())
	profileRec.MarkIndexed(time.Now())
	notifier.PublishIndexed(ctx, profileRec, ActionUpserted)

	jobRec := entity.NewEmbeddingRecord(job.Id, entity.DocumentTypeJob, time.Now())
	jobRec.MarkFailed("embedding timeout", time.Now())
	notifier.PublishFailed(ctx, jobRec)

	unknownJob := entity.NewEmbeddingRecord(uuid.New(), entity.DocumentTypeJob, time.Now())
	notifier.PublishIndexed(ctx, unknownJob, ActionRemoved)

	require.Len(t, delivery.sent, 2)
	assert.Equal(t, profileRec.DocumentId, delivery.sent[0].userId)
	assert.Equal(t, MessageTypeIndexingStatus, delivery.sent[0].kind)
	assert.Equal(t, employer, delivery.sent[1].userId)

	status := delivery.sent[1].data.(*dto.IndexingStatusResponse)
	assert.Equal(t, "failed", status.Status)
	assert.Equal(t, "embedding timeout", status.ErrorMessage)
}

func TestExhaustionAlerter_OnlyAlertsWhenExhausted(t *testing.T) {
	mail := &fakeMailer{alerts: make(chan mailer.ExhaustedAlert, 2)}
	alerter := NewExhaustionAlerter(mail, logger.NewNopLogger())
	ctx := context.Background()

	rec := entity.NewEmbeddingRecord(uuid.New(), entity.DocumentTypeJob, time.Now())
	rec.MarkFailed("transient", time.Now())
	alerter.PublishFailed(ctx, rec)
	alerter.PublishIndexed(ctx, rec, ActionUpserted)

	rec.MarkExhausted("source document not found", time.Now())
	alerter.PublishFailed(ctx, rec)

	select {
	case alert := <-mail.alerts:
		assert.Equal(t, rec.DocumentId.String(), alert.DocumentId)
		assert.Equal(t, entity.MaxIndexingRetries, alert.RetryCount)
		assert.Equal(t, "source document not found", alert.Error)
	case <-time.After(time.Second):
		t.Fatal("no alert sent")
	}
	assert.Empty(t, mail.alerts)
}

func TestFanoutIndexingEventPublisher(t *testing.T) {
	a, b := &recordingOutcomes{}, &recordingOutcomes{}
	fan := NewFanoutIndexingEventPublisher(a, nil, b)
	rec := entity.NewEmbeddingRecord(uuid.New(), entity.DocumentTypeJob, time.Now())

	fan.PublishIndexed(context.Background(), rec, ActionUpserted)
	fan.PublishFailed(context.Background(), rec)

	assert.Len(t, a.all(), 2)
	assert.Len(t, b.all(), 2)
}
