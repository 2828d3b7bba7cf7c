package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mzansicare/booking-api/internal/model"
	"github.com/mzansicare/booking-api/internal/repository"
	"github.com/mzansicare/booking-api/internal/service/audit"
	"github.com/mzansicare/booking-api/internal/service/event"
	apperrors "github.com/mzansicare/booking-api/pkg/errors"
	"github.com/mzansicare/booking-api/pkg/locker"
	"github.com/mzansicare/booking-api/pkg/metrics"
)

type Service struct {
	repo        repository.AppointmentRepository
	patientRepo repository.PatientRepository
	auditor     *audit.Service
	events      *event.Service
	locks       locker.Locker
	metrics     *metrics.Metrics
	now         func() time.Time
}

func NewService(
	repo repository.AppointmentRepository,
	patientRepo repository.PatientRepository,
	auditor *audit.Service,
	events *event.Service,
	locks locker.Locker,
	metrics *metrics.Metrics,
) *Service {
	return &Service{
		repo:        repo,
		patientRepo: patientRepo,
		auditor:     auditor,
		events:      events,
		locks:       locks,
		metrics:     metrics,
		now:         time.Now,
	}
}

// BookAppointment validates a booking request against district access, date
// and time rules, facility compatibility and existing demand, then commits
// it as a pending appointment. Every check short-circuits before any write.
func (s *Service) BookAppointment(ctx context.Context, req *model.CreateAppointmentRequest, actor Actor) (*model.Appointment, error) {
	now := s.now()

	district := model.District(req.District)
	if !district.Valid() {
		return nil, apperrors.BadRequest("unknown district", nil)
	}
	if !actor.CanAccessDistrict(district) {
		s.metrics.BookingsTotal.WithLabelValues("district_denied").Inc()
		return nil, apperrors.DistrictAccessDenied(req.District)
	}

	patient, err := s.patientRepo.Get(ctx, req.PatientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, apperrors.PersistenceFailure(err)
	}
	if !actor.Roles.Elevated() && patient.District != district {
		s.metrics.BookingsTotal.WithLabelValues("district_denied").Inc()
		return nil, apperrors.DistrictAccessDenied(req.District)
	}

	date, err := ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	start, err := CombineDateTime(date, req.StartTime)
	if err != nil {
		return nil, err
	}
	if !start.After(now) {
		return nil, apperrors.InvalidDate("appointment must be in the future")
	}
	if start.Sub(now) > MaxAdvanceBooking {
		return nil, apperrors.InvalidDate("appointment cannot be more than 90 days ahead")
	}
	if !OnSlotBoundary(req.StartTime) {
		return nil, apperrors.InvalidTime("appointments start on the hour or half hour")
	}

	duration, err := validateDuration(req.DurationMinutes)
	if err != nil {
		return nil, err
	}

	urgency := model.UrgencyLevel(req.Urgency)
	facilityType := model.FacilityType(req.FacilityType)
	if !facilityType.Valid() {
		return nil, apperrors.BadRequest("unknown facility type", nil)
	}
	category := model.Specialty(req.Category)
	if !category.Valid() {
		return nil, apperrors.BadRequest("unknown category", nil)
	}
	if err := checkFacilityCompatibility(urgency, facilityType); err != nil {
		s.metrics.BookingsTotal.WithLabelValues("incompatible_facility").Inc()
		return nil, err
	}

	apt := &model.Appointment{
		PatientID:       req.PatientID,
		ClinicianID:     req.ClinicianID,
		ClinicID:        req.ClinicID,
		District:        district,
		SubLocation:     req.SubLocation,
		AppointmentDate: date,
		StartTime:       req.StartTime,
		DurationMinutes: duration,
		Reason:          req.Reason,
		Category:        category,
		Urgency:         urgency,
		Symptoms:        req.Symptoms,
		FacilityType:    facilityType,
		Status:          model.AppointmentStatusPending,
		StatusHistory:   InitialHistory(actor.ID, now),
	}
	apt.Base = model.NewBase(now)

	// The double-booking check, conflict check and insert run under a
	// clinician-day lock; the partial unique index on the appointments
	// table backstops the same invariant.
	lockKey := fmt.Sprintf("booking:%s:%s", req.ClinicianID, req.Date)
	err = s.locks.WithLock(ctx, lockKey, func(ctx context.Context) error {
		existing, findErr := s.repo.FindPatientBooking(ctx, req.PatientID, date, req.StartTime)
		if findErr != nil && !errors.Is(findErr, repository.ErrNotFound) {
			return apperrors.PersistenceFailure(findErr)
		}
		if existing != nil && existing.Status.Active() {
			return apperrors.PatientDoubleBooking("patient already has a booking at this time")
		}

		conflict, conflictErr := s.findConflict(ctx, req.ClinicianID, date, req.StartTime, duration, nil)
		if conflictErr != nil {
			return apperrors.PersistenceFailure(conflictErr)
		}
		if conflict != nil {
			s.metrics.ConflictsDetected.Inc()
			return apperrors.ProviderUnavailable("the clinician already has a booking in this slot")
		}

		// Re-check the emergency gate right before commit in case the
		// facility type was changed between validation and save.
		if compatErr := checkFacilityCompatibility(apt.Urgency, apt.FacilityType); compatErr != nil {
			return compatErr
		}

		if createErr := s.repo.Create(ctx, apt); createErr != nil {
			if errors.Is(createErr, repository.ErrDuplicateBooking) {
				s.metrics.ConflictsDetected.Inc()
				return apperrors.ProviderUnavailable("the clinician already has a booking in this slot")
			}
			return apperrors.PersistenceFailure(createErr)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, locker.ErrLockNotAcquired) {
			s.metrics.BookingsTotal.WithLabelValues("contended").Inc()
			return nil, apperrors.ProviderUnavailable("the clinician's calendar is busy, try again")
		}
		s.metrics.BookingsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	s.metrics.BookingsTotal.WithLabelValues("created").Inc()

	if auditErr := s.auditor.Log(ctx, actor.ID, apt.District, model.AuditActionCreate, model.AuditEntityAppointment, apt.ID, &audit.LogOptions{Changes: apt}); auditErr != nil {
		return nil, fmt.Errorf("failed to audit booking: %w", auditErr)
	}
	if emitErr := s.events.Emit(ctx, event.TypeAppointmentCreated, apt); emitErr != nil {
		return nil, fmt.Errorf("failed to emit booking event: %w", emitErr)
	}

	s.decorate(apt, now)
	return apt, nil
}

// UpdateAppointment merges the present fields of req onto the stored
// appointment and revalidates every booking rule that the change touches.
func (s *Service) UpdateAppointment(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest, actor Actor) (*model.Appointment, error) {
	now := s.now()

	apt, err := s.getOwned(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	currentStart, err := CombineDateTime(apt.AppointmentDate, apt.StartTime)
	if err != nil {
		return nil, apperrors.PersistenceFailure(err)
	}
	isPast := !now.Before(currentStart)

	timeChanged := req.Date != nil || req.StartTime != nil || req.DurationMinutes != nil
	if isPast && (timeChanged || req.Status != nil) {
		return nil, apperrors.InvalidDate("past appointments cannot be modified")
	}
	if apt.Status.Terminal() && (timeChanged || req.Status != nil) {
		return nil, apperrors.InvalidTransition(string(apt.Status), statusOrSame(req.Status, apt.Status))
	}

	if req.Date != nil {
		date, parseErr := ParseDate(*req.Date)
		if parseErr != nil {
			return nil, parseErr
		}
		apt.AppointmentDate = date
	}
	if req.StartTime != nil {
		apt.StartTime = *req.StartTime
	}
	if req.DurationMinutes != nil {
		duration, durErr := validateDuration(*req.DurationMinutes)
		if durErr != nil {
			return nil, durErr
		}
		apt.DurationMinutes = duration
	}
	if req.Reason != nil {
		apt.Reason = *req.Reason
	}
	if req.Category != nil {
		category := model.Specialty(*req.Category)
		if !category.Valid() {
			return nil, apperrors.BadRequest("unknown category", nil)
		}
		apt.Category = category
	}
	if req.Urgency != nil {
		apt.Urgency = model.UrgencyLevel(*req.Urgency)
	}
	if req.SubLocation != nil {
		apt.SubLocation = *req.SubLocation
	}
	if req.Symptoms != nil {
		apt.Symptoms = req.Symptoms
	}

	if timeChanged {
		start, combineErr := CombineDateTime(apt.AppointmentDate, apt.StartTime)
		if combineErr != nil {
			return nil, combineErr
		}
		if !start.After(now) {
			return nil, apperrors.InvalidDate("appointment must be in the future")
		}
		if start.Sub(now) > MaxAdvanceBooking {
			return nil, apperrors.InvalidDate("appointment cannot be more than 90 days ahead")
		}
		if !OnSlotBoundary(apt.StartTime) {
			return nil, apperrors.InvalidTime("appointments start on the hour or half hour")
		}
	}

	if err := checkFacilityCompatibility(apt.Urgency, apt.FacilityType); err != nil {
		return nil, err
	}

	if req.Status != nil {
		reason := ""
		if req.StatusReason != nil {
			reason = *req.StatusReason
		}
		if *req.Status == model.AppointmentStatusCancelled && !CanCancel(apt, now) {
			return nil, apperrors.CancellationNotAllowed("the cancellation window for this facility has closed")
		}
		if transErr := Transition(apt, *req.Status, actor.ID, reason, now); transErr != nil {
			return nil, transErr
		}
	}

	lockKey := fmt.Sprintf("booking:%s:%s", apt.ClinicianID, apt.AppointmentDate.Format(dateLayout))
	err = s.locks.WithLock(ctx, lockKey, func(ctx context.Context) error {
		if timeChanged {
			conflict, conflictErr := s.findConflict(ctx, apt.ClinicianID, apt.AppointmentDate, apt.StartTime, apt.DurationMinutes, &apt.ID)
			if conflictErr != nil {
				return apperrors.PersistenceFailure(conflictErr)
			}
			if conflict != nil {
				s.metrics.ConflictsDetected.Inc()
				return apperrors.ProviderUnavailable("the clinician already has a booking in this slot")
			}
		}

		apt.UpdatedAt = now
		if updateErr := s.repo.Update(ctx, apt); updateErr != nil {
			if errors.Is(updateErr, repository.ErrDuplicateBooking) {
				s.metrics.ConflictsDetected.Inc()
				return apperrors.ProviderUnavailable("the clinician already has a booking in this slot")
			}
			if errors.Is(updateErr, repository.ErrNotFound) {
				return apperrors.NotFound("appointment", updateErr)
			}
			return apperrors.PersistenceFailure(updateErr)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, locker.ErrLockNotAcquired) {
			return nil, apperrors.ProviderUnavailable("the clinician's calendar is busy, try again")
		}
		return nil, err
	}

	if auditErr := s.auditor.Log(ctx, actor.ID, apt.District, model.AuditActionUpdate, model.AuditEntityAppointment, apt.ID, &audit.LogOptions{Changes: req}); auditErr != nil {
		return nil, fmt.Errorf("failed to audit update: %w", auditErr)
	}
	if emitErr := s.events.Emit(ctx, event.TypeAppointmentUpdated, apt); emitErr != nil {
		return nil, fmt.Errorf("failed to emit update event: %w", emitErr)
	}

	s.decorate(apt, now)
	return apt, nil
}

// CancelAppointment transitions the appointment to cancelled when the
// facility's notice window still allows it. A rejected cancellation changes
// nothing: no status write, no history entry.
func (s *Service) CancelAppointment(ctx context.Context, id uuid.UUID, reason string, actor Actor) (*model.Appointment, error) {
	now := s.now()

	apt, err := s.getOwned(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	if !CanCancel(apt, now) {
		s.metrics.Cancellations.WithLabelValues("refused").Inc()
		return nil, apperrors.CancellationNotAllowed("the cancellation window for this facility has closed")
	}

	if err := s.transitionAndSave(ctx, apt, model.AppointmentStatusCancelled, actor, reason, now); err != nil {
		s.metrics.Cancellations.WithLabelValues("failed").Inc()
		return nil, err
	}
	s.metrics.Cancellations.WithLabelValues("cancelled").Inc()

	if auditErr := s.auditor.Log(ctx, actor.ID, apt.District, model.AuditActionCancel, model.AuditEntityAppointment, apt.ID, &audit.LogOptions{
		Metadata: map[string]interface{}{"reason": reason},
	}); auditErr != nil {
		return nil, fmt.Errorf("failed to audit cancellation: %w", auditErr)
	}
	if emitErr := s.events.Emit(ctx, event.TypeAppointmentCancelled, apt); emitErr != nil {
		return nil, fmt.Errorf("failed to emit cancellation event: %w", emitErr)
	}

	s.decorate(apt, now)
	return apt, nil
}

// ConfirmAppointment is the provider-side acceptance of a pending booking.
func (s *Service) ConfirmAppointment(ctx context.Context, id uuid.UUID, actor Actor) (*model.Appointment, error) {
	return s.simpleTransition(ctx, id, model.AppointmentStatusConfirmed, model.AuditActionConfirm, event.TypeAppointmentConfirmed, actor)
}

// CompleteAppointment closes out a visit that took place.
func (s *Service) CompleteAppointment(ctx context.Context, id uuid.UUID, actor Actor) (*model.Appointment, error) {
	return s.simpleTransition(ctx, id, model.AppointmentStatusCompleted, model.AuditActionComplete, event.TypeAppointmentCompleted, actor)
}

// MarkNoShow records that the patient did not arrive.
func (s *Service) MarkNoShow(ctx context.Context, id uuid.UUID, actor Actor) (*model.Appointment, error) {
	return s.simpleTransition(ctx, id, model.AppointmentStatusNoShow, model.AuditActionNoShow, event.TypeAppointmentNoShow, actor)
}

// RescheduleAppointment books a replacement slot and retires the source
// record. The source transitions to rescheduled and never resurrects; the
// replacement starts its own lifecycle in pending.
func (s *Service) RescheduleAppointment(ctx context.Context, id uuid.UUID, req *model.RescheduleAppointmentRequest, actor Actor) (*model.Appointment, error) {
	now := s.now()

	apt, err := s.getOwned(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if !CanReschedule(apt, now) {
		return nil, apperrors.CancellationNotAllowed("this appointment can no longer be rescheduled")
	}

	duration := apt.DurationMinutes
	if req.DurationMinutes != 0 {
		duration = req.DurationMinutes
	}
	replacement, err := s.BookAppointment(ctx, &model.CreateAppointmentRequest{
		PatientID:       apt.PatientID,
		ClinicianID:     apt.ClinicianID,
		ClinicID:        apt.ClinicID,
		District:        string(apt.District),
		SubLocation:     apt.SubLocation,
		Date:            req.Date,
		StartTime:       req.StartTime,
		DurationMinutes: duration,
		Reason:          apt.Reason,
		Category:        string(apt.Category),
		Urgency:         string(apt.Urgency),
		Symptoms:        apt.Symptoms,
		FacilityType:    string(apt.FacilityType),
	}, actor)
	if err != nil {
		return nil, err
	}

	reason := req.Reason
	if reason == "" {
		reason = fmt.Sprintf("rescheduled to %s %s", req.Date, req.StartTime)
	}
	if err := s.transitionAndSave(ctx, apt, model.AppointmentStatusRescheduled, actor, reason, now); err != nil {
		return nil, err
	}

	if auditErr := s.auditor.Log(ctx, actor.ID, apt.District, model.AuditActionReschedule, model.AuditEntityAppointment, apt.ID, &audit.LogOptions{
		Metadata: map[string]interface{}{"replacement_id": replacement.ID, "reason": reason},
	}); auditErr != nil {
		return nil, fmt.Errorf("failed to audit reschedule: %w", auditErr)
	}
	if emitErr := s.events.Emit(ctx, event.TypeAppointmentRescheduled, apt); emitErr != nil {
		return nil, fmt.Errorf("failed to emit reschedule event: %w", emitErr)
	}

	return replacement, nil
}

// GetAvailableSlots lists the clinician's free grid slots on the date.
func (s *Service) GetAvailableSlots(ctx context.Context, clinicianID uuid.UUID, dateStr string, durationMinutes int) ([]string, error) {
	s.metrics.SlotQueries.Inc()

	date, err := ParseDate(dateStr)
	if err != nil {
		return nil, err
	}
	duration, err := validateDuration(durationMinutes)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.ListActiveForClinician(ctx, clinicianID, date)
	if err != nil {
		return nil, apperrors.PersistenceFailure(err)
	}
	return availableSlots(existing, date, duration, s.now()), nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID, actor Actor) (*model.Appointment, error) {
	apt, err := s.getOwned(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	s.decorate(apt, s.now())
	return apt, nil
}

func (s *Service) ListAppointments(ctx context.Context, filters *model.AppointmentFilters, actor Actor) ([]*model.Appointment, error) {
	if !actor.Roles.Elevated() && filters.District == "" {
		filters.District = actor.District
	}
	if filters.District != "" && !actor.CanAccessDistrict(filters.District) {
		return nil, apperrors.DistrictAccessDenied(string(filters.District))
	}

	appointments, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, apperrors.PersistenceFailure(err)
	}
	now := s.now()
	for _, apt := range appointments {
		s.decorate(apt, now)
	}
	return appointments, nil
}

// Score exposes the priority calculation to the HTTP layer.
func (s *Service) Score(apt *model.Appointment) int {
	return PriorityScore(apt, s.now())
}

func (s *Service) simpleTransition(ctx context.Context, id uuid.UUID, to model.AppointmentStatus, auditAction, eventType string, actor Actor) (*model.Appointment, error) {
	now := s.now()

	apt, err := s.getOwned(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if err := s.transitionAndSave(ctx, apt, to, actor, "", now); err != nil {
		return nil, err
	}

	if auditErr := s.auditor.Log(ctx, actor.ID, apt.District, auditAction, model.AuditEntityAppointment, apt.ID, nil); auditErr != nil {
		return nil, fmt.Errorf("failed to audit transition: %w", auditErr)
	}
	if emitErr := s.events.Emit(ctx, eventType, apt); emitErr != nil {
		return nil, fmt.Errorf("failed to emit transition event: %w", emitErr)
	}

	s.decorate(apt, now)
	return apt, nil
}

// transitionAndSave applies a lifecycle transition and persists the status
// and history together in one write.
func (s *Service) transitionAndSave(ctx context.Context, apt *model.Appointment, to model.AppointmentStatus, actor Actor, reason string, now time.Time) error {
	if err := Transition(apt, to, actor.ID, reason, now); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, apt); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("appointment", err)
		}
		return apperrors.PersistenceFailure(err)
	}
	return nil
}

// getOwned fetches the appointment and enforces district access.
func (s *Service) getOwned(ctx context.Context, id uuid.UUID, actor Actor) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, apperrors.PersistenceFailure(err)
	}
	if !actor.CanAccessDistrict(apt.District) {
		return nil, apperrors.DistrictAccessDenied(string(apt.District))
	}
	return apt, nil
}

// decorate fills in the derived read-only fields.
func (s *Service) decorate(apt *model.Appointment, now time.Time) {
	apt.PriorityScore = PriorityScore(apt, now)
	apt.CanBeCancelled = CanCancel(apt, now)
	apt.CanBeRescheduled = CanReschedule(apt, now)

	start, err := CombineDateTime(apt.AppointmentDate, apt.StartTime)
	if err != nil {
		return
	}
	apt.IsPast = !now.Before(start)
	apt.IsToday = sameDay(apt.AppointmentDate, now)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func statusOrSame(requested *model.AppointmentStatus, current model.AppointmentStatus) string {
	if requested != nil {
		return string(*requested)
	}
	return string(current)
}
