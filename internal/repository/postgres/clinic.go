package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mzansicare/booking-api/internal/model"
	"github.com/mzansicare/booking-api/internal/repository"
)

type clinicRepository struct {
	BaseRepository
}

func NewClinicRepository(base BaseRepository) repository.ClinicRepository {
	return &clinicRepository{base}
}

func (r *clinicRepository) Create(ctx context.Context, clinic *model.Clinic) error {
	query := `
		INSERT INTO clinics (
			id, name, facility_type, district, sub_location, phone,
			status, created_at, updated_at
		) VALUES (
			:id, :name, :facility_type, :district, :sub_location, :phone,
			:status, :created_at, :updated_at
		)
	`
	_, err := r.db.NamedExecContext(ctx, query, clinic)
	if err != nil {
		return fmt.Errorf("failed to create clinic: %w", err)
	}
	return nil
}

func (r *clinicRepository) Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	query := `
		SELECT id, name, facility_type, district, sub_location, phone,
			   status, created_at, updated_at
		FROM clinics
		WHERE id = $1
	`
	var clinic model.Clinic
	err := r.db.GetContext(ctx, &clinic, query, id)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get clinic: %w", err)
	}
	return &clinic, nil
}

func (r *clinicRepository) Update(ctx context.Context, clinic *model.Clinic) error {
	query := `
		UPDATE clinics
		SET name = :name,
			facility_type = :facility_type,
			district = :district,
			sub_location = :sub_location,
			phone = :phone,
			status = :status,
			updated_at = :updated_at
		WHERE id = :id
	`
	result, err := r.db.NamedExecContext(ctx, query, clinic)
	if err != nil {
		return fmt.Errorf("failed to update clinic: %w", err)
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

func (r *clinicRepository) List(ctx context.Context, filters *model.ClinicFilters) ([]*model.Clinic, error) {
	query := `
		SELECT id, name, facility_type, district, sub_location, phone,
			   status, created_at, updated_at
		FROM clinics
		WHERE 1=1
	`
	args := []interface{}{}
	argNum := 1

	if filters != nil {
		if filters.District != "" {
			query += fmt.Sprintf(" AND district = $%d", argNum)
			args = append(args, filters.District)
			argNum++
		}
		if filters.FacilityType != "" {
			query += fmt.Sprintf(" AND facility_type = $%d", argNum)
			args = append(args, filters.FacilityType)
			argNum++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argNum)
			args = append(args, filters.Status)
			argNum++
		}
		if filters.SearchTerm != "" {
			query += fmt.Sprintf(" AND name ILIKE $%d", argNum)
			args = append(args, "%"+filters.SearchTerm+"%")
			argNum++
		}
	}

	query += " ORDER BY name ASC"

	var clinics []*model.Clinic
	err := r.db.SelectContext(ctx, &clinics, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list clinics: %w", err)
	}
	return clinics, nil
}
