package postgres

import (
	"context"
	"fmt"

	"github.com/mzansicare/booking-api/internal/model"
	"github.com/mzansicare/booking-api/internal/repository"
)

type notificationRepository struct {
	BaseRepository
}

func NewNotificationRepository(base BaseRepository) repository.NotificationRepository {
	return &notificationRepository{base}
}

func (r *notificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	query := `
		INSERT INTO notifications (
			id, user_id, appointment_id, channel, subject, content,
			recipient, status, retry_count, last_error, sent_at,
			created_at, updated_at
		) VALUES (
			:id, :user_id, :appointment_id, :channel, :subject, :content,
			:recipient, :status, :retry_count, :last_error, :sent_at,
			:created_at, :updated_at
		)
	`
	_, err := r.db.NamedExecContext(ctx, query, notification)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) Update(ctx context.Context, notification *model.Notification) error {
	query := `
		UPDATE notifications
		SET status = :status,
			retry_count = :retry_count,
			last_error = :last_error,
			sent_at = :sent_at,
			updated_at = :updated_at
		WHERE id = :id
	`
	result, err := r.db.NamedExecContext(ctx, query, notification)
	if err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}
