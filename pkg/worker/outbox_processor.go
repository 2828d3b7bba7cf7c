package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mzansicare/booking-api/internal/model"
	"github.com/mzansicare/booking-api/internal/repository"
	"github.com/mzansicare/booking-api/pkg/logger"
	"github.com/mzansicare/booking-api/pkg/messaging"
	"github.com/mzansicare/booking-api/pkg/metrics"
)

type OutboxProcessorConfig struct {
	BatchSize    int
	PollInterval time.Duration

	// RetryAttempts and RetryDelay govern immediate publish attempts
	// within one poll.
	RetryAttempts int
	RetryDelay    time.Duration

	// MaxDeliveryAttempts bounds how many polls may try an event before
	// it is marked failed; RetryBackoff is the pause before a failed
	// attempt becomes eligible again.
	MaxDeliveryAttempts int
	RetryBackoff        time.Duration
}

// OutboxProcessor drains staged booking events and publishes them to the
// broker. Rows are claimed with SKIP LOCKED so several workers can run side
// by side; an event that cannot be delivered is rescheduled via retry_at
// until its delivery attempts run out.
type OutboxProcessor struct {
	repo    repository.OutboxRepository
	broker  messaging.Broker
	config  OutboxProcessorConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewOutboxProcessor(
	repo repository.OutboxRepository,
	broker messaging.Broker,
	config OutboxProcessorConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *OutboxProcessor {
	if config.BatchSize <= 0 {
		panic("BatchSize must be greater than 0")
	}
	if config.PollInterval <= 0 {
		panic("PollInterval must be greater than 0")
	}
	if config.RetryAttempts <= 0 {
		panic("RetryAttempts must be greater than 0")
	}
	if config.RetryDelay <= 0 {
		panic("RetryDelay must be greater than 0")
	}
	if config.MaxDeliveryAttempts <= 0 {
		panic("MaxDeliveryAttempts must be greater than 0")
	}
	if config.RetryBackoff <= 0 {
		panic("RetryBackoff must be greater than 0")
	}

	return &OutboxProcessor{
		repo:    repo,
		broker:  broker,
		config:  config,
		logger:  logger,
		metrics: metrics,
	}
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("Starting outbox processor")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Shutting down outbox processor")
			return
		case <-ticker.C:
			if err := p.drain(ctx); err != nil {
				p.logger.Error(err, "Failed to drain outbox")
			}
		}
	}
}

// drain claims one batch of due events and pushes each to the broker.
func (p *OutboxProcessor) drain(ctx context.Context) error {
	timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	events, err := p.repo.GetPendingEventsWithLock(ctx, p.config.BatchSize)
	if err != nil {
		p.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "error").Inc()
		return fmt.Errorf("failed to get pending events: %w", err)
	}
	p.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "success").Inc()

	for _, event := range events {
		if err := p.deliver(ctx, event); err != nil {
			p.logger.Error(err, "Failed to deliver event",
				"event_id", event.ID.String(),
				"event_type", event.EventType,
				"attempt", event.RetryCount+1)
		}
	}
	return nil
}

func (p *OutboxProcessor) deliver(ctx context.Context, event *model.OutboxEvent) error {
	err := retry(p.config.RetryAttempts, p.config.RetryDelay, func() error {
		return p.broker.Publish(ctx, event.EventType, event.Payload)
	})
	if err == nil {
		p.metrics.OutboxEventsProcessed.Inc()
		if markErr := p.repo.UpdateStatusTx(ctx, nil, event.ID, string(model.OutboxStatusProcessed), nil, nil); markErr != nil {
			p.logger.Error(markErr, "Failed to mark event processed", "event_id", event.ID.String())
			return markErr
		}
		return nil
	}

	p.metrics.OutboxEventsFailed.Inc()
	errStr := err.Error()

	if event.RetryCount+1 >= p.config.MaxDeliveryAttempts {
		if markErr := p.repo.UpdateStatusTx(ctx, nil, event.ID, string(model.OutboxStatusFailed), &errStr, nil); markErr != nil {
			p.logger.Error(markErr, "Failed to mark event failed", "event_id", event.ID.String())
		}
		return err
	}

	retryAt := time.Now().Add(p.config.RetryBackoff)
	if markErr := p.repo.UpdateStatusTx(ctx, nil, event.ID, string(model.OutboxStatusRetry), &errStr, &retryAt); markErr != nil {
		p.logger.Error(markErr, "Failed to reschedule event", "event_id", event.ID.String())
	}
	return err
}

func retry(attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(delay)
		}
	}
	return err
}
