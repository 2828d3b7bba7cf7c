package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mzansicare/booking-api/internal/model"
	"github.com/mzansicare/booking-api/internal/repository"
)

type clinicianRepository struct {
	BaseRepository
}

func NewClinicianRepository(base BaseRepository) repository.ClinicianRepository {
	return &clinicianRepository{base}
}

func (r *clinicianRepository) Create(ctx context.Context, clinician *model.Clinician) error {
	query := `
		INSERT INTO clinicians (
			id, clinic_id, name, email, specialty, status, created_at, updated_at
		) VALUES (
			:id, :clinic_id, :name, :email, :specialty, :status, :created_at, :updated_at
		)
	`
	_, err := r.db.NamedExecContext(ctx, query, clinician)
	if err != nil {
		return fmt.Errorf("failed to create clinician: %w", err)
	}
	return nil
}

func (r *clinicianRepository) Get(ctx context.Context, id uuid.UUID) (*model.Clinician, error) {
	query := `
		SELECT id, clinic_id, name, email, specialty, status, created_at, updated_at
		FROM clinicians
		WHERE id = $1
	`
	var clinician model.Clinician
	err := r.db.GetContext(ctx, &clinician, query, id)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get clinician: %w", err)
	}
	return &clinician, nil
}

func (r *clinicianRepository) Update(ctx context.Context, clinician *model.Clinician) error {
	query := `
		UPDATE clinicians
		SET clinic_id = :clinic_id,
			name = :name,
			email = :email,
			specialty = :specialty,
			status = :status,
			updated_at = :updated_at
		WHERE id = :id
	`
	result, err := r.db.NamedExecContext(ctx, query, clinician)
	if err != nil {
		return fmt.Errorf("failed to update clinician: %w", err)
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

func (r *clinicianRepository) List(ctx context.Context, filters *model.ClinicianFilters) ([]*model.Clinician, error) {
	query := `
		SELECT id, clinic_id, name, email, specialty, status, created_at, updated_at
		FROM clinicians
		WHERE 1=1
	`
	args := []interface{}{}
	argNum := 1

	if filters != nil {
		if filters.ClinicID != uuid.Nil {
			query += fmt.Sprintf(" AND clinic_id = $%d", argNum)
			args = append(args, filters.ClinicID)
			argNum++
		}
		if filters.Specialty != "" {
			query += fmt.Sprintf(" AND specialty = $%d", argNum)
			args = append(args, filters.Specialty)
			argNum++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argNum)
			args = append(args, filters.Status)
			argNum++
		}
	}

	query += " ORDER BY name ASC"

	var clinicians []*model.Clinician
	err := r.db.SelectContext(ctx, &clinicians, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list clinicians: %w", err)
	}
	return clinicians, nil
}
