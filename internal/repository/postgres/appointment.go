package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mzansicare/booking-api/internal/model"
	"github.com/mzansicare/booking-api/internal/repository"
)

const pqUniqueViolation = "23505"

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(base BaseRepository) repository.AppointmentRepository {
	return &appointmentRepository{base}
}

const appointmentColumns = `
	id, patient_id, clinician_id, clinic_id, district, sub_location,
	appointment_date, start_time, duration_minutes,
	reason, category, urgency, symptoms, facility_type,
	status, status_history, created_at, updated_at
`

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, clinician_id, clinic_id, district, sub_location,
			appointment_date, start_time, duration_minutes,
			reason, category, urgency, symptoms, facility_type,
			status, status_history, created_at, updated_at
		) VALUES (
			:id, :patient_id, :clinician_id, :clinic_id, :district, :sub_location,
			:appointment_date, :start_time, :duration_minutes,
			:reason, :category, :urgency, :symptoms, :facility_type,
			:status, :status_history, :created_at, :updated_at
		)
	`
	_, err := r.db.NamedExecContext(ctx, query, appointment)
	if err != nil {
		// The partial unique index over active bookings for a clinician
		// slot is the last line of defense against concurrent writes.
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
			return repository.ErrDuplicateBooking
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET clinician_id = :clinician_id,
			clinic_id = :clinic_id,
			district = :district,
			sub_location = :sub_location,
			appointment_date = :appointment_date,
			start_time = :start_time,
			duration_minutes = :duration_minutes,
			reason = :reason,
			category = :category,
			urgency = :urgency,
			symptoms = :symptoms,
			facility_type = :facility_type,
			status = :status,
			status_history = :status_history,
			updated_at = :updated_at
		WHERE id = :id
	`
	result, err := r.db.NamedExecContext(ctx, query, appointment)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
			return repository.ErrDuplicateBooking
		}
		return fmt.Errorf("failed to update appointment: %w", err)
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

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE 1=1`
	args := []interface{}{}
	argNum := 1

	if filters != nil {
		if filters.ClinicID != uuid.Nil {
			query += fmt.Sprintf(" AND clinic_id = $%d", argNum)
			args = append(args, filters.ClinicID)
			argNum++
		}
		if filters.ClinicianID != uuid.Nil {
			query += fmt.Sprintf(" AND clinician_id = $%d", argNum)
			args = append(args, filters.ClinicianID)
			argNum++
		}
		if filters.PatientID != uuid.Nil {
			query += fmt.Sprintf(" AND patient_id = $%d", argNum)
			args = append(args, filters.PatientID)
			argNum++
		}
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
		if !filters.DateFrom.IsZero() {
			query += fmt.Sprintf(" AND appointment_date >= $%d", argNum)
			args = append(args, filters.DateFrom)
			argNum++
		}
		if !filters.DateTo.IsZero() {
			query += fmt.Sprintf(" AND appointment_date <= $%d", argNum)
			args = append(args, filters.DateTo)
			argNum++
		}
	}

	query += " ORDER BY appointment_date ASC, start_time ASC"

	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListActiveForClinician(ctx context.Context, clinicianID uuid.UUID, date time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE clinician_id = $1
		AND appointment_date = $2
		AND status IN ('pending', 'confirmed')
		ORDER BY start_time ASC
	`
	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, clinicianID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list clinician bookings: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) FindPatientBooking(ctx context.Context, patientID uuid.UUID, date time.Time, startTime string) (*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE patient_id = $1
		AND appointment_date = $2
		AND start_time = $3
		AND status IN ('pending', 'confirmed')
	`
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, patientID, date, startTime)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find patient booking: %w", err)
	}
	return &appointment, nil
}
