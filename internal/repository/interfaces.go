package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mzansicare/booking-api/internal/model"
)

// Sentinel errors shared by all repository implementations.
var (
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateBooking surfaces the (clinician, date, start time)
	// uniqueness constraint so the scheduling service can reject the
	// losing side of a race as a provider conflict.
	ErrDuplicateBooking = errors.New("duplicate booking for clinician slot")
)

// All repository interfaces in one file
type (
	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		// ListActiveForClinician returns pending and confirmed bookings
		// for the clinician on the given calendar date.
		ListActiveForClinician(ctx context.Context, clinicianID uuid.UUID, date time.Time) ([]*model.Appointment, error)
		// FindPatientBooking returns the patient's active booking at the
		// exact date and start time, or ErrNotFound.
		FindPatientBooking(ctx context.Context, patientID uuid.UUID, date time.Time, startTime string) (*model.Appointment, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
	}

	ClinicianRepository interface {
		Create(ctx context.Context, clinician *model.Clinician) error
		Get(ctx context.Context, id uuid.UUID) (*model.Clinician, error)
		Update(ctx context.Context, clinician *model.Clinician) error
		List(ctx context.Context, filters *model.ClinicianFilters) ([]*model.Clinician, error)
	}

	ClinicRepository interface {
		Create(ctx context.Context, clinic *model.Clinic) error
		Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error)
		Update(ctx context.Context, clinic *model.Clinic) error
		List(ctx context.Context, filters *model.ClinicFilters) ([]*model.Clinic, error)
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		GetRoles(ctx context.Context, userID uuid.UUID) (model.RoleList, error)
		AssignRole(ctx context.Context, userID uuid.UUID, role model.Role) error
		RemoveRole(ctx context.Context, userID uuid.UUID, role model.Role) error
	}

	AuditRepository interface {
		Create(ctx context.Context, log *model.AuditLog) error
		List(ctx context.Context, filters map[string]interface{}) ([]*model.AuditLog, error)
		DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
	}

	NotificationRepository interface {
		Create(ctx context.Context, notification *model.Notification) error
		Update(ctx context.Context, notification *model.Notification) error
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error
		BeginTx(ctx context.Context) (*sql.Tx, error)
		UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, status string, errorMessage *string, retryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
