package appointment

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzansicare/booking-api/internal/model"
	"github.com/mzansicare/booking-api/internal/repository"
	"github.com/mzansicare/booking-api/internal/service/audit"
	"github.com/mzansicare/booking-api/internal/service/event"
	apperrors "github.com/mzansicare/booking-api/pkg/errors"
	"github.com/mzansicare/booking-api/pkg/locker"
	"github.com/mzansicare/booking-api/pkg/metrics"
)

// In-memory fakes for the repositories the scheduling service touches.

type fakeAppointmentRepo struct {
	items     map[uuid.UUID]*model.Appointment
	createErr error
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{items: make(map[uuid.UUID]*model.Appointment)}
}

func (r *fakeAppointmentRepo) Create(_ context.Context, apt *model.Appointment) error {
	if r.createErr != nil {
		return r.createErr
	}
	clone := *apt
	r.items[apt.ID] = &clone
	return nil
}

func (r *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *apt
	return &clone, nil
}

func (r *fakeAppointmentRepo) Update(_ context.Context, apt *model.Appointment) error {
	if _, ok := r.items[apt.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *apt
	r.items[apt.ID] = &clone
	return nil
}

func (r *fakeAppointmentRepo) List(_ context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	out := make([]*model.Appointment, 0)
	for _, apt := range r.items {
		if filters != nil {
			if filters.District != "" && apt.District != filters.District {
				continue
			}
			if filters.ClinicianID != uuid.Nil && apt.ClinicianID != filters.ClinicianID {
				continue
			}
			if filters.PatientID != uuid.Nil && apt.PatientID != filters.PatientID {
				continue
			}
			if filters.Status != "" && apt.Status != filters.Status {
				continue
			}
		}
		clone := *apt
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakeAppointmentRepo) ListActiveForClinician(_ context.Context, clinicianID uuid.UUID, date time.Time) ([]*model.Appointment, error) {
	out := make([]*model.Appointment, 0)
	for _, apt := range r.items {
		if apt.ClinicianID != clinicianID || !apt.Status.Active() {
			continue
		}
		if !sameDay(apt.AppointmentDate, date) {
			continue
		}
		clone := *apt
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakeAppointmentRepo) FindPatientBooking(_ context.Context, patientID uuid.UUID, date time.Time, startTime string) (*model.Appointment, error) {
	for _, apt := range r.items {
		if apt.PatientID == patientID && sameDay(apt.AppointmentDate, date) && apt.StartTime == startTime && apt.Status.Active() {
			clone := *apt
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakePatientRepo struct {
	items map[uuid.UUID]*model.Patient
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{items: make(map[uuid.UUID]*model.Patient)}
}

func (r *fakePatientRepo) Create(_ context.Context, p *model.Patient) error {
	clone := *p
	r.items[p.ID] = &clone
	return nil
}

func (r *fakePatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *fakePatientRepo) Update(_ context.Context, p *model.Patient) error {
	if _, ok := r.items[p.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *p
	r.items[p.ID] = &clone
	return nil
}

func (r *fakePatientRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.items, id)
	return nil
}

func (r *fakePatientRepo) List(_ context.Context, _ *model.PatientFilters) ([]*model.Patient, error) {
	out := make([]*model.Patient, 0, len(r.items))
	for _, p := range r.items {
		clone := *p
		out = append(out, &clone)
	}
	return out, nil
}

type fakeAuditRepo struct {
	logs []*model.AuditLog
}

func (r *fakeAuditRepo) Create(_ context.Context, log *model.AuditLog) error {
	r.logs = append(r.logs, log)
	return nil
}

func (r *fakeAuditRepo) List(_ context.Context, _ map[string]interface{}) ([]*model.AuditLog, error) {
	return r.logs, nil
}

func (r *fakeAuditRepo) DeleteBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type fakeOutboxRepo struct {
	events []*model.OutboxEvent
}

func (r *fakeOutboxRepo) Create(_ context.Context, e *model.OutboxEvent) error {
	r.events = append(r.events, e)
	return nil
}

func (r *fakeOutboxRepo) GetPendingEvents(_ context.Context, _ int) ([]*model.OutboxEvent, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) GetPendingEventsWithLock(_ context.Context, _ int) ([]*model.OutboxEvent, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) UpdateStatus(_ context.Context, _ uuid.UUID, _ model.OutboxStatus, _ *string) error {
	return nil
}

func (r *fakeOutboxRepo) BeginTx(_ context.Context) (*sql.Tx, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) UpdateStatusTx(_ context.Context, _ *sql.Tx, _ uuid.UUID, _ string, _ *string, _ *time.Time) error {
	return nil
}

func (r *fakeOutboxRepo) DeleteProcessedBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func (r *fakeOutboxRepo) eventTypes() []string {
	types := make([]string, 0, len(r.events))
	for _, e := range r.events {
		types = append(types, e.EventType)
	}
	return types
}

type testEnv struct {
	svc      *Service
	repo     *fakeAppointmentRepo
	patients *fakePatientRepo
	audits   *fakeAuditRepo
	outbox   *fakeOutboxRepo
	now      time.Time

	patientID   uuid.UUID
	clinicianID uuid.UUID
	clinicID    uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		repo:        newFakeAppointmentRepo(),
		patients:    newFakePatientRepo(),
		audits:      &fakeAuditRepo{},
		outbox:      &fakeOutboxRepo{},
		now:         time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
		patientID:   uuid.New(),
		clinicianID: uuid.New(),
		clinicID:    uuid.New(),
	}

	env.svc = NewService(
		env.repo,
		env.patients,
		audit.NewService(env.audits),
		event.NewService(env.outbox),
		locker.Noop(),
		metrics.New("test"),
	)
	env.svc.now = func() time.Time { return env.now }

	patient := &model.Patient{
		Name:     "Thandi Dlamini",
		Email:    "thandi@example.org",
		District: model.DistrictTshwane,
		Status:   model.PatientStatusActive,
	}
	patient.ID = env.patientID
	require.NoError(t, env.patients.Create(context.Background(), patient))

	return env
}

func (e *testEnv) patientActor() Actor {
	return Actor{ID: uuid.New(), Roles: model.RoleList{model.RolePatient}, District: model.DistrictTshwane}
}

func (e *testEnv) adminActor() Actor {
	return Actor{ID: uuid.New(), Roles: model.RoleList{model.RoleAdmin}, District: model.DistrictJohannesburg}
}

func (e *testEnv) validRequest() *model.CreateAppointmentRequest {
	return &model.CreateAppointmentRequest{
		PatientID:       e.patientID,
		ClinicianID:     e.clinicianID,
		ClinicID:        e.clinicID,
		District:        "tshwane",
		Date:            "2026-03-10",
		StartTime:       "09:00",
		DurationMinutes: 30,
		Reason:          "follow-up visit",
		Category:        "general-practice",
		Urgency:         "routine",
		FacilityType:    "public-clinic",
	}
}

// seedAppointment stores an appointment directly, bypassing booking checks.
func (e *testEnv) seedAppointment(t *testing.T, mutate func(*model.Appointment)) *model.Appointment {
	t.Helper()

	apt := &model.Appointment{
		PatientID:       e.patientID,
		ClinicianID:     e.clinicianID,
		ClinicID:        e.clinicID,
		District:        model.DistrictTshwane,
		AppointmentDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		StartTime:       "09:00",
		DurationMinutes: 30,
		Reason:          "follow-up visit",
		Category:        model.SpecialtyGeneralPractice,
		Urgency:         model.UrgencyRoutine,
		FacilityType:    model.FacilityPublicClinic,
		Status:          model.AppointmentStatusConfirmed,
	}
	apt.ID = uuid.New()
	apt.CreatedAt = e.now
	apt.UpdatedAt = e.now
	apt.StatusHistory = model.StatusHistory{
		{Status: model.AppointmentStatusPending, ActorID: uuid.New(), Timestamp: e.now},
		{Status: model.AppointmentStatusConfirmed, ActorID: uuid.New(), Timestamp: e.now},
	}
	if mutate != nil {
		mutate(apt)
	}
	require.NoError(t, e.repo.Create(context.Background(), apt))
	return apt
}

func TestBookAppointment(t *testing.T) {
	env := newTestEnv(t)
	actor := env.patientActor()

	apt, err := env.svc.BookAppointment(context.Background(), env.validRequest(), actor)
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusPending, apt.Status)
	require.Len(t, apt.StatusHistory, 1)
	assert.Equal(t, actor.ID, apt.StatusHistory[0].ActorID)
	assert.True(t, apt.CanBeCancelled)
	assert.True(t, apt.CanBeRescheduled)
	assert.False(t, apt.IsPast)
	assert.Greater(t, apt.PriorityScore, 0)

	stored, err := env.repo.Get(context.Background(), apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusPending, stored.Status)

	assert.Equal(t, []string{event.TypeAppointmentCreated}, env.outbox.eventTypes())
	require.Len(t, env.audits.logs, 1)
	assert.Equal(t, model.AuditActionCreate, env.audits.logs[0].Action)
	assert.Equal(t, apt.ID, env.audits.logs[0].EntityID)
}

func TestBookAppointmentValidation(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*model.CreateAppointmentRequest)
		wantCode apperrors.ErrorCode
	}{
		{
			name:     "unknown district",
			mutate:   func(r *model.CreateAppointmentRequest) { r.District = "atlantis" },
			wantCode: apperrors.ErrBadRequest,
		},
		{
			name:     "malformed date",
			mutate:   func(r *model.CreateAppointmentRequest) { r.Date = "10-03-2026" },
			wantCode: apperrors.ErrInvalidDate,
		},
		{
			name:     "date in the past",
			mutate:   func(r *model.CreateAppointmentRequest) { r.Date = "2026-02-01" },
			wantCode: apperrors.ErrInvalidDate,
		},
		{
			name:     "more than 90 days ahead",
			mutate:   func(r *model.CreateAppointmentRequest) { r.Date = "2026-07-01" },
			wantCode: apperrors.ErrInvalidDate,
		},
		{
			name:     "off the slot grid",
			mutate:   func(r *model.CreateAppointmentRequest) { r.StartTime = "09:15" },
			wantCode: apperrors.ErrInvalidTime,
		},
		{
			name:     "duration too long",
			mutate:   func(r *model.CreateAppointmentRequest) { r.DurationMinutes = 300 },
			wantCode: apperrors.ErrInvalidDuration,
		},
		{
			name:     "unknown facility type",
			mutate:   func(r *model.CreateAppointmentRequest) { r.FacilityType = "field-tent" },
			wantCode: apperrors.ErrBadRequest,
		},
		{
			name:     "unknown category",
			mutate:   func(r *model.CreateAppointmentRequest) { r.Category = "homeopathy" },
			wantCode: apperrors.ErrBadRequest,
		},
		{
			name:     "emergency at a clinic",
			mutate:   func(r *model.CreateAppointmentRequest) { r.Urgency = "emergency" },
			wantCode: apperrors.ErrIncompatibleFacility,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			req := env.validRequest()
			tt.mutate(req)

			_, err := env.svc.BookAppointment(context.Background(), req, env.patientActor())
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperrors.CodeOf(err))
			assert.Empty(t, env.outbox.events)
		})
	}
}

func TestBookAppointmentDistrictAccess(t *testing.T) {
	env := newTestEnv(t)

	outsider := Actor{ID: uuid.New(), Roles: model.RoleList{model.RolePatient}, District: model.DistrictJohannesburg}
	_, err := env.svc.BookAppointment(context.Background(), env.validRequest(), outsider)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrDistrictAccessDenied, apperrors.CodeOf(err))
	assert.Empty(t, env.outbox.events)

	// An elevated actor books across districts on the patient's behalf.
	_, err = env.svc.BookAppointment(context.Background(), env.validRequest(), env.adminActor())
	require.NoError(t, err)
}

func TestBookAppointmentPatientDistrictMismatch(t *testing.T) {
	env := newTestEnv(t)

	// Patient registered elsewhere than the requested district.
	patient, err := env.patients.Get(context.Background(), env.patientID)
	require.NoError(t, err)
	patient.District = model.DistrictVhembe
	require.NoError(t, env.patients.Update(context.Background(), patient))

	_, err = env.svc.BookAppointment(context.Background(), env.validRequest(), env.patientActor())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrDistrictAccessDenied, apperrors.CodeOf(err))
}

func TestBookAppointmentUnknownPatient(t *testing.T) {
	env := newTestEnv(t)
	req := env.validRequest()
	req.PatientID = uuid.New()

	_, err := env.svc.BookAppointment(context.Background(), req, env.patientActor())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))
}

func TestBookAppointmentProviderConflict(t *testing.T) {
	env := newTestEnv(t)
	env.seedAppointment(t, nil)

	otherPatient := &model.Patient{District: model.DistrictTshwane, Status: model.PatientStatusActive}
	otherPatient.ID = uuid.New()
	require.NoError(t, env.patients.Create(context.Background(), otherPatient))

	req := env.validRequest()
	req.PatientID = otherPatient.ID
	_, err := env.svc.BookAppointment(context.Background(), req, env.patientActor())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrProviderUnavailable, apperrors.CodeOf(err))

	// A back-to-back slot is fine.
	req.StartTime = "09:30"
	_, err = env.svc.BookAppointment(context.Background(), req, env.patientActor())
	require.NoError(t, err)
}

func TestBookAppointmentPatientDoubleBooking(t *testing.T) {
	env := newTestEnv(t)
	env.seedAppointment(t, func(apt *model.Appointment) {
		apt.ClinicianID = uuid.New()
	})

	_, err := env.svc.BookAppointment(context.Background(), env.validRequest(), env.patientActor())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrPatientDoubleBooking, apperrors.CodeOf(err))
}

func TestBookAppointmentLosesInsertRace(t *testing.T) {
	env := newTestEnv(t)
	env.repo.createErr = repository.ErrDuplicateBooking

	// The unique index rejects the losing writer; the caller sees the
	// same provider conflict as if the check had caught it.
	_, err := env.svc.BookAppointment(context.Background(), env.validRequest(), env.patientActor())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrProviderUnavailable, apperrors.CodeOf(err))
	assert.Empty(t, env.outbox.events)
}

func TestCancelAppointment(t *testing.T) {
	env := newTestEnv(t)
	seeded := env.seedAppointment(t, nil)

	apt, err := env.svc.CancelAppointment(context.Background(), seeded.ID, "cannot make it", env.patientActor())
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, apt.Status)

	last := apt.StatusHistory.Last()
	require.NotNil(t, last)
	assert.Equal(t, model.AppointmentStatusCancelled, last.Status)
	assert.Equal(t, "cannot make it", last.Reason)

	assert.Equal(t, []string{event.TypeAppointmentCancelled}, env.outbox.eventTypes())
}

func TestCancelAppointmentWindowClosed(t *testing.T) {
	env := newTestEnv(t)
	// Two hours away at a facility that wants four hours of notice.
	seeded := env.seedAppointment(t, func(apt *model.Appointment) {
		apt.AppointmentDate = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
		apt.StartTime = "10:00"
	})

	_, err := env.svc.CancelAppointment(context.Background(), seeded.ID, "too late", env.patientActor())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCancellationNotAllowed, apperrors.CodeOf(err))

	// A refused cancellation changes nothing.
	stored, err := env.repo.Get(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusConfirmed, stored.Status)
	assert.Len(t, stored.StatusHistory, 2)
	assert.Empty(t, env.outbox.events)
}

func TestConfirmAndComplete(t *testing.T) {
	env := newTestEnv(t)
	seeded := env.seedAppointment(t, func(apt *model.Appointment) {
		apt.Status = model.AppointmentStatusPending
		apt.StatusHistory = apt.StatusHistory[:1]
	})
	actor := env.adminActor()

	apt, err := env.svc.ConfirmAppointment(context.Background(), seeded.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusConfirmed, apt.Status)

	apt, err = env.svc.CompleteAppointment(context.Background(), seeded.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, apt.Status)

	assert.Equal(t, []string{event.TypeAppointmentConfirmed, event.TypeAppointmentCompleted}, env.outbox.eventTypes())
}

func TestMarkNoShowRequiresConfirmed(t *testing.T) {
	env := newTestEnv(t)
	seeded := env.seedAppointment(t, func(apt *model.Appointment) {
		apt.Status = model.AppointmentStatusPending
		apt.StatusHistory = apt.StatusHistory[:1]
	})

	_, err := env.svc.MarkNoShow(context.Background(), seeded.ID, env.adminActor())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrInvalidTransition, apperrors.CodeOf(err))

	_, err = env.svc.ConfirmAppointment(context.Background(), seeded.ID, env.adminActor())
	require.NoError(t, err)

	apt, err := env.svc.MarkNoShow(context.Background(), seeded.ID, env.adminActor())
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusNoShow, apt.Status)
}

func TestRescheduleAppointment(t *testing.T) {
	env := newTestEnv(t)
	seeded := env.seedAppointment(t, nil)

	replacement, err := env.svc.RescheduleAppointment(context.Background(), seeded.ID, &model.RescheduleAppointmentRequest{
		Date:      "2026-03-12",
		StartTime: "10:00",
		Reason:    "clinic closure",
	}, env.patientActor())
	require.NoError(t, err)

	// The replacement starts its own lifecycle in pending.
	assert.NotEqual(t, seeded.ID, replacement.ID)
	assert.Equal(t, model.AppointmentStatusPending, replacement.Status)
	assert.Equal(t, seeded.PatientID, replacement.PatientID)
	assert.Equal(t, seeded.ClinicianID, replacement.ClinicianID)
	assert.Equal(t, "10:00", replacement.StartTime)
	assert.Equal(t, seeded.DurationMinutes, replacement.DurationMinutes)
	require.Len(t, replacement.StatusHistory, 1)

	// The source retires and never resurrects.
	source, err := env.repo.Get(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusRescheduled, source.Status)
	assert.Equal(t, "clinic closure", source.StatusHistory.Last().Reason)
	assert.False(t, CanReschedule(source, env.now))

	assert.Equal(t, []string{event.TypeAppointmentCreated, event.TypeAppointmentRescheduled}, env.outbox.eventTypes())
}

func TestRescheduleRefusedInsideNoticeWindow(t *testing.T) {
	env := newTestEnv(t)
	seeded := env.seedAppointment(t, func(apt *model.Appointment) {
		apt.AppointmentDate = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
		apt.StartTime = "10:00"
	})

	_, err := env.svc.RescheduleAppointment(context.Background(), seeded.ID, &model.RescheduleAppointmentRequest{
		Date:      "2026-03-12",
		StartTime: "10:00",
	}, env.patientActor())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCancellationNotAllowed, apperrors.CodeOf(err))

	stored, err := env.repo.Get(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusConfirmed, stored.Status)
}

func TestGetAvailableSlots(t *testing.T) {
	env := newTestEnv(t)
	env.seedAppointment(t, nil)

	slots, err := env.svc.GetAvailableSlots(context.Background(), env.clinicianID, "2026-03-10", 30)
	require.NoError(t, err)
	assert.NotContains(t, slots, "09:00")
	assert.Len(t, slots, 13)

	_, err = env.svc.GetAvailableSlots(context.Background(), env.clinicianID, "next tuesday", 30)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrInvalidDate, apperrors.CodeOf(err))
}

func TestListAppointmentsScopesToActorDistrict(t *testing.T) {
	env := newTestEnv(t)
	env.seedAppointment(t, nil)
	env.seedAppointment(t, func(apt *model.Appointment) {
		apt.District = model.DistrictVhembe
		apt.StartTime = "10:00"
	})

	// A non-elevated actor with no explicit filter sees only their district.
	list, err := env.svc.ListAppointments(context.Background(), &model.AppointmentFilters{}, env.patientActor())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.DistrictTshwane, list[0].District)

	// Asking for another district outright is refused.
	_, err = env.svc.ListAppointments(context.Background(), &model.AppointmentFilters{District: model.DistrictVhembe}, env.patientActor())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrDistrictAccessDenied, apperrors.CodeOf(err))

	// An admin sees everything.
	list, err = env.svc.ListAppointments(context.Background(), &model.AppointmentFilters{}, env.adminActor())
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestGetAppointmentDistrictDenied(t *testing.T) {
	env := newTestEnv(t)
	seeded := env.seedAppointment(t, func(apt *model.Appointment) {
		apt.District = model.DistrictVhembe
	})

	_, err := env.svc.GetAppointment(context.Background(), seeded.ID, env.patientActor())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrDistrictAccessDenied, apperrors.CodeOf(err))

	apt, err := env.svc.GetAppointment(context.Background(), seeded.ID, env.adminActor())
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, apt.ID)
}

func TestUpdateAppointmentRevalidates(t *testing.T) {
	env := newTestEnv(t)
	seeded := env.seedAppointment(t, nil)
	actor := env.patientActor()

	newTime := "14:00"
	apt, err := env.svc.UpdateAppointment(context.Background(), seeded.ID, &model.UpdateAppointmentRequest{
		StartTime: &newTime,
	}, actor)
	require.NoError(t, err)
	assert.Equal(t, "14:00", apt.StartTime)

	offGrid := "14:10"
	_, err = env.svc.UpdateAppointment(context.Background(), seeded.ID, &model.UpdateAppointmentRequest{
		StartTime: &offGrid,
	}, actor)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrInvalidTime, apperrors.CodeOf(err))

	// Changing urgency to emergency at a clinic trips the routing rule.
	emergency := "emergency"
	_, err = env.svc.UpdateAppointment(context.Background(), seeded.ID, &model.UpdateAppointmentRequest{
		Urgency: &emergency,
	}, actor)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrIncompatibleFacility, apperrors.CodeOf(err))
}

func TestUpdateAppointmentMoveIntoConflict(t *testing.T) {
	env := newTestEnv(t)
	seeded := env.seedAppointment(t, nil)
	env.seedAppointment(t, func(apt *model.Appointment) {
		apt.PatientID = uuid.New()
		apt.StartTime = "10:00"
	})

	moved := "10:00"
	_, err := env.svc.UpdateAppointment(context.Background(), seeded.ID, &model.UpdateAppointmentRequest{
		StartTime: &moved,
	}, env.patientActor())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrProviderUnavailable, apperrors.CodeOf(err))
}

func TestUpdateAppointmentTerminalRefused(t *testing.T) {
	env := newTestEnv(t)
	seeded := env.seedAppointment(t, func(apt *model.Appointment) {
		apt.Status = model.AppointmentStatusCancelled
		apt.StatusHistory.Append(model.StatusChange{Status: model.AppointmentStatusCancelled, Timestamp: env.now})
	})

	moved := "10:00"
	_, err := env.svc.UpdateAppointment(context.Background(), seeded.ID, &model.UpdateAppointmentRequest{
		StartTime: &moved,
	}, env.patientActor())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrInvalidTransition, apperrors.CodeOf(err))
}
