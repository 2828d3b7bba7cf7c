package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/mzansicare/booking-api/internal/model"
	"github.com/mzansicare/booking-api/internal/repository"
)

type auditRepository struct {
	BaseRepository
}

func NewAuditRepository(base BaseRepository) repository.AuditRepository {
	return &auditRepository{base}
}

func (r *auditRepository) Create(ctx context.Context, log *model.AuditLog) error {
	query := `
		INSERT INTO audit_logs (
			id, actor_id, district, action, entity_type, entity_id,
			changes, metadata, ip_address, created_at
		) VALUES (
			:id, :actor_id, :district, :action, :entity_type, :entity_id,
			:changes, :metadata, :ip_address, :created_at
		)
	`
	_, err := r.db.NamedExecContext(ctx, query, log)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

func (r *auditRepository) List(ctx context.Context, filters map[string]interface{}) ([]*model.AuditLog, error) {
	query := `
		SELECT id, actor_id, district, action, entity_type, entity_id,
			   changes, metadata, ip_address, created_at
		FROM audit_logs
		WHERE 1=1
	`
	args := []interface{}{}
	argNum := 1

	for _, field := range []string{"actor_id", "district", "action", "entity_type", "entity_id"} {
		if value, ok := filters[field]; ok {
			query += fmt.Sprintf(" AND %s = $%d", field, argNum)
			args = append(args, value)
			argNum++
		}
	}

	query += " ORDER BY created_at DESC LIMIT 500"

	var logs []*model.AuditLog
	err := r.db.SelectContext(ctx, &logs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, nil
}

func (r *auditRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM audit_logs WHERE created_at < $1`
	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete audit logs: %w", err)
	}
	return result.RowsAffected()
}
