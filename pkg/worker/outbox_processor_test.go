package worker

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzansicare/booking-api/internal/model"
	"github.com/mzansicare/booking-api/pkg/logger"
	"github.com/mzansicare/booking-api/pkg/metrics"
)

type stubOutboxRepo struct {
	pending  []*model.OutboxEvent
	statuses map[uuid.UUID]string
	retryAts map[uuid.UUID]*time.Time
}

func newStubOutboxRepo(pending ...*model.OutboxEvent) *stubOutboxRepo {
	return &stubOutboxRepo{
		pending:  pending,
		statuses: make(map[uuid.UUID]string),
		retryAts: make(map[uuid.UUID]*time.Time),
	}
}

func (r *stubOutboxRepo) Create(_ context.Context, e *model.OutboxEvent) error {
	r.pending = append(r.pending, e)
	return nil
}

func (r *stubOutboxRepo) GetPendingEvents(_ context.Context, limit int) ([]*model.OutboxEvent, error) {
	if len(r.pending) > limit {
		return r.pending[:limit], nil
	}
	return r.pending, nil
}

func (r *stubOutboxRepo) GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	return r.GetPendingEvents(ctx, limit)
}

func (r *stubOutboxRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.OutboxStatus, _ *string) error {
	r.statuses[id] = string(status)
	return nil
}

func (r *stubOutboxRepo) BeginTx(_ context.Context) (*sql.Tx, error) {
	return nil, nil
}

func (r *stubOutboxRepo) UpdateStatusTx(_ context.Context, _ *sql.Tx, id uuid.UUID, status string, _ *string, retryAt *time.Time) error {
	r.statuses[id] = status
	r.retryAts[id] = retryAt
	return nil
}

func (r *stubOutboxRepo) DeleteProcessedBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type stubBroker struct {
	published map[string][]interface{}
	failures  int
	err       error
}

func newStubBroker() *stubBroker {
	return &stubBroker{published: make(map[string][]interface{})}
}

func (b *stubBroker) Publish(_ context.Context, channel string, message interface{}) error {
	if b.failures > 0 {
		b.failures--
		return b.err
	}
	if b.err != nil {
		return b.err
	}
	b.published[channel] = append(b.published[channel], message)
	return nil
}

func (b *stubBroker) Subscribe(_ context.Context, _ string) (<-chan []byte, error) {
	return nil, nil
}

func (b *stubBroker) Close() error { return nil }

func outboxEvent(eventType string) *model.OutboxEvent {
	payload, _ := json.Marshal(map[string]string{"id": uuid.NewString()})
	return &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   payload,
		Status:    string(model.OutboxStatusPending),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func testConfig() OutboxProcessorConfig {
	return OutboxProcessorConfig{
		BatchSize:           10,
		PollInterval:        time.Second,
		RetryAttempts:       2,
		RetryDelay:          time.Millisecond,
		MaxDeliveryAttempts: 3,
		RetryBackoff:        time.Minute,
	}
}

func testLogger() *logger.Logger {
	return &logger.Logger{ZL: zerolog.Nop()}
}

func TestNewOutboxProcessorRejectsZeroConfig(t *testing.T) {
	repo := newStubOutboxRepo()
	broker := newStubBroker()

	assert.Panics(t, func() {
		NewOutboxProcessor(repo, broker, OutboxProcessorConfig{}, testLogger(), metrics.New("test"))
	})

	bad := testConfig()
	bad.BatchSize = 0
	assert.Panics(t, func() {
		NewOutboxProcessor(repo, broker, bad, testLogger(), metrics.New("test"))
	})

	bad = testConfig()
	bad.MaxDeliveryAttempts = 0
	assert.Panics(t, func() {
		NewOutboxProcessor(repo, broker, bad, testLogger(), metrics.New("test"))
	})
}

func TestDrainPublishesAndMarksProcessed(t *testing.T) {
	created := outboxEvent("appointment.created")
	cancelled := outboxEvent("appointment.cancelled")
	repo := newStubOutboxRepo(created, cancelled)
	broker := newStubBroker()

	p := NewOutboxProcessor(repo, broker, testConfig(), testLogger(), metrics.New("test"))
	require.NoError(t, p.drain(context.Background()))

	// Channel name follows the event type, payload is passed unwrapped.
	require.Len(t, broker.published["appointment.created"], 1)
	assert.Equal(t, created.Payload, broker.published["appointment.created"][0])
	require.Len(t, broker.published["appointment.cancelled"], 1)

	assert.Equal(t, string(model.OutboxStatusProcessed), repo.statuses[created.ID])
	assert.Equal(t, string(model.OutboxStatusProcessed), repo.statuses[cancelled.ID])
}

func TestDrainRetriesTransientFailuresInline(t *testing.T) {
	event := outboxEvent("appointment.created")
	repo := newStubOutboxRepo(event)
	broker := newStubBroker()
	broker.failures = 1
	broker.err = errors.New("connection reset")

	p := NewOutboxProcessor(repo, broker, testConfig(), testLogger(), metrics.New("test"))
	require.NoError(t, p.drain(context.Background()))

	require.Len(t, broker.published["appointment.created"], 1)
	assert.Equal(t, string(model.OutboxStatusProcessed), repo.statuses[event.ID])
}

func TestDrainReschedulesUndeliverableEvent(t *testing.T) {
	event := outboxEvent("appointment.created")
	repo := newStubOutboxRepo(event)
	broker := newStubBroker()
	broker.err = errors.New("broker down")

	p := NewOutboxProcessor(repo, broker, testConfig(), testLogger(), metrics.New("test"))
	require.NoError(t, p.drain(context.Background()))

	assert.Empty(t, broker.published)
	assert.Equal(t, string(model.OutboxStatusRetry), repo.statuses[event.ID])
	require.NotNil(t, repo.retryAts[event.ID])
	assert.True(t, repo.retryAts[event.ID].After(time.Now()))
}

func TestDrainMarksExhaustedEventFailed(t *testing.T) {
	event := outboxEvent("appointment.created")
	event.Status = string(model.OutboxStatusRetry)
	event.RetryCount = 2
	repo := newStubOutboxRepo(event)
	broker := newStubBroker()
	broker.err = errors.New("broker down")

	p := NewOutboxProcessor(repo, broker, testConfig(), testLogger(), metrics.New("test"))
	require.NoError(t, p.drain(context.Background()))

	assert.Empty(t, broker.published)
	assert.Equal(t, string(model.OutboxStatusFailed), repo.statuses[event.ID])
	assert.Nil(t, repo.retryAts[event.ID])
}
