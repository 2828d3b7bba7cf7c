package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mzansicare/booking-api/internal/model"
	"github.com/mzansicare/booking-api/internal/repository"
)

// Booking lifecycle event types published through the outbox.
const (
	TypeAppointmentCreated     = "appointment.created"
	TypeAppointmentUpdated     = "appointment.updated"
	TypeAppointmentConfirmed   = "appointment.confirmed"
	TypeAppointmentCancelled   = "appointment.cancelled"
	TypeAppointmentCompleted   = "appointment.completed"
	TypeAppointmentNoShow      = "appointment.no_show"
	TypeAppointmentRescheduled = "appointment.rescheduled"
)

type Service struct {
	outboxRepo repository.OutboxRepository
}

func NewService(outboxRepo repository.OutboxRepository) *Service {
	return &Service{outboxRepo: outboxRepo}
}

// Emit stores the event in the outbox table; the worker drains it to the
// message broker. The write is intentionally decoupled from delivery.
func (s *Service) Emit(ctx context.Context, eventType string, payload interface{}) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	event := &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   payloadJSON,
		Status:    string(model.OutboxStatusPending),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.outboxRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}

// CleanupProcessedEvents removes delivered events older than the cutoff.
func (s *Service) CleanupProcessedEvents(ctx context.Context, olderThan time.Duration) (int64, error) {
	count, err := s.outboxRepo.DeleteProcessedBefore(ctx, time.Now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup events: %w", err)
	}
	return count, nil
}
