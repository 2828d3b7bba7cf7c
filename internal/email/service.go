package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/mzansicare/booking-api/internal/config"
)

type Service interface {
	SendAppointmentConfirmation(ctx context.Context, to, patientName, date, startTime string) error
	SendAppointmentCancellation(ctx context.Context, to, patientName, date, startTime string) error
	SendAppointmentReminder(ctx context.Context, to, patientName, date, startTime string) error
	SendCustom(ctx context.Context, to, subject, content string) error
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg config.SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendAppointmentConfirmation(ctx context.Context, to, patientName, date, startTime string) error {
	subject := "Your appointment is confirmed"
	body := fmt.Sprintf("Dear %s,\n\nYour appointment on %s at %s has been confirmed.\n\nMzansiCare", patientName, date, startTime)
	return s.send(to, subject, body)
}

func (s *smtpService) SendAppointmentCancellation(ctx context.Context, to, patientName, date, startTime string) error {
	subject := "Your appointment was cancelled"
	body := fmt.Sprintf("Dear %s,\n\nYour appointment on %s at %s has been cancelled.\n\nMzansiCare", patientName, date, startTime)
	return s.send(to, subject, body)
}

func (s *smtpService) SendAppointmentReminder(ctx context.Context, to, patientName, date, startTime string) error {
	subject := "Appointment reminder"
	body := fmt.Sprintf("Dear %s,\n\nThis is a reminder of your appointment on %s at %s.\n\nMzansiCare", patientName, date, startTime)
	return s.send(to, subject, body)
}

func (s *smtpService) SendCustom(ctx context.Context, to, subject, content string) error {
	return s.send(to, subject, content)
}

func (s *smtpService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// Noop returns an email service that discards everything. Used in tests and
// when SMTP is not configured.
func Noop() Service {
	return noopService{}
}

type noopService struct{}

func (noopService) SendAppointmentConfirmation(context.Context, string, string, string, string) error {
	return nil
}

func (noopService) SendAppointmentCancellation(context.Context, string, string, string, string) error {
	return nil
}

func (noopService) SendAppointmentReminder(context.Context, string, string, string, string) error {
	return nil
}

func (noopService) SendCustom(context.Context, string, string, string) error {
	return nil
}
