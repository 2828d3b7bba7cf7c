package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mzansicare/booking-api/internal/model"
	"github.com/mzansicare/booking-api/internal/repository"
)

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(base BaseRepository) repository.PatientRepository {
	return &patientRepository{base}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			id, user_id, name, email, phone, district, sub_location,
			date_of_birth, status, created_at, updated_at
		) VALUES (
			:id, :user_id, :name, :email, :phone, :district, :sub_location,
			:date_of_birth, :status, :created_at, :updated_at
		)
	`
	_, err := r.db.NamedExecContext(ctx, query, patient)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `
		SELECT id, user_id, name, email, phone, district, sub_location,
			   date_of_birth, status, created_at, updated_at
		FROM patients
		WHERE id = $1 AND status != 'deleted'
	`
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, id)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients
		SET name = :name,
			email = :email,
			phone = :phone,
			district = :district,
			sub_location = :sub_location,
			date_of_birth = :date_of_birth,
			status = :status,
			updated_at = :updated_at
		WHERE id = :id
	`
	result, err := r.db.NamedExecContext(ctx, query, patient)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
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

func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE patients SET status = 'deleted', updated_at = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *patientRepository) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	query := `
		SELECT id, user_id, name, email, phone, district, sub_location,
			   date_of_birth, status, created_at, updated_at
		FROM patients
		WHERE status != 'deleted'
	`
	args := []interface{}{}
	argNum := 1

	if filters != nil {
		if filters.District != "" {
			query += fmt.Sprintf(" AND district = $%d", argNum)
			args = append(args, filters.District)
			argNum++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argNum)
			args = append(args, filters.Status)
			argNum++
		}
		if filters.SearchTerm != "" {
			query += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d)", argNum, argNum)
			args = append(args, "%"+filters.SearchTerm+"%")
			argNum++
		}
	}

	query += " ORDER BY name ASC"

	var patients []*model.Patient
	err := r.db.SelectContext(ctx, &patients, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}
