package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mzansicare/booking-api/internal/email"
	"github.com/mzansicare/booking-api/internal/model"
	"github.com/mzansicare/booking-api/internal/repository"
	"github.com/mzansicare/booking-api/internal/service/event"
	"github.com/mzansicare/booking-api/pkg/logger"
)

const (
	channelEmail = "email"

	maxSendAttempts = 3
)

// Service turns booking lifecycle events into patient notifications. It is
// driven by the worker's broker subscription, not by the API process.
type Service struct {
	repo        repository.NotificationRepository
	patientRepo repository.PatientRepository
	emailSvc    email.Service
	logger      *logger.Logger
}

func NewService(repo repository.NotificationRepository, patientRepo repository.PatientRepository, emailSvc email.Service, logger *logger.Logger) *Service {
	return &Service{
		repo:        repo,
		patientRepo: patientRepo,
		emailSvc:    emailSvc,
		logger:      logger,
	}
}

// HandleEvent processes one published booking event. Unknown event types are
// skipped; the notification row records the delivery outcome.
func (s *Service) HandleEvent(ctx context.Context, eventType string, payload []byte) error {
	var apt model.Appointment
	if err := json.Unmarshal(payload, &apt); err != nil {
		return fmt.Errorf("failed to decode appointment payload: %w", err)
	}

	subject, ok := subjectFor(eventType)
	if !ok {
		return nil
	}

	patient, err := s.patientRepo.Get(ctx, apt.PatientID)
	if err != nil {
		return fmt.Errorf("failed to load patient for notification: %w", err)
	}

	date := apt.AppointmentDate.Format("2006-01-02")
	now := time.Now()
	notification := &model.Notification{
		ID:            uuid.New(),
		UserID:        patient.UserID,
		AppointmentID: apt.ID,
		Channel:       channelEmail,
		Subject:       subject,
		Content:       fmt.Sprintf("Appointment on %s at %s: %s", date, apt.StartTime, subject),
		Recipient:     patient.Email,
		Status:        model.NotificationStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}

	return s.deliver(ctx, notification, eventType, patient.Name, date, apt.StartTime)
}

func (s *Service) deliver(ctx context.Context, notification *model.Notification, eventType, patientName, date, startTime string) error {
	var err error
	for attempt := 1; attempt <= maxSendAttempts; attempt++ {
		switch eventType {
		case event.TypeAppointmentConfirmed:
			err = s.emailSvc.SendAppointmentConfirmation(ctx, notification.Recipient, patientName, date, startTime)
		case event.TypeAppointmentCancelled:
			err = s.emailSvc.SendAppointmentCancellation(ctx, notification.Recipient, patientName, date, startTime)
		default:
			err = s.emailSvc.SendCustom(ctx, notification.Recipient, notification.Subject, notification.Content)
		}
		if err == nil {
			break
		}
		notification.RetryCount = attempt
	}

	now := time.Now()
	notification.UpdatedAt = now
	if err != nil {
		msg := err.Error()
		notification.Status = model.NotificationStatusFailed
		notification.LastError = &msg
		if updateErr := s.repo.Update(ctx, notification); updateErr != nil {
			s.logger.Error(updateErr, "Failed to update notification status")
		}
		return fmt.Errorf("failed to deliver notification: %w", err)
	}

	notification.Status = model.NotificationStatusSent
	notification.SentAt = &now
	if updateErr := s.repo.Update(ctx, notification); updateErr != nil {
		s.logger.Error(updateErr, "Failed to update notification status")
	}
	return nil
}

func subjectFor(eventType string) (string, bool) {
	switch eventType {
	case event.TypeAppointmentCreated:
		return "Appointment requested", true
	case event.TypeAppointmentConfirmed:
		return "Appointment confirmed", true
	case event.TypeAppointmentCancelled:
		return "Appointment cancelled", true
	case event.TypeAppointmentRescheduled:
		return "Appointment rescheduled", true
	default:
		return "", false
	}
}
