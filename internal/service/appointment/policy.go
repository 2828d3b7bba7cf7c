package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/mzansicare/booking-api/internal/model"
	apperrors "github.com/mzansicare/booking-api/pkg/errors"
)

// Actor identifies who is performing a scheduling operation. Elevated roles
// (admin, health-worker) bypass district restrictions.
type Actor struct {
	ID       uuid.UUID
	Roles    model.RoleList
	District model.District
}

// CanAccessDistrict reports whether the actor may book into the district.
func (a Actor) CanAccessDistrict(district model.District) bool {
	if a.Roles.Elevated() {
		return true
	}
	return a.District == district
}

// CanCancel reports whether the appointment may still be cancelled: the
// appointment must be in the future, not already terminal, and far enough out
// to satisfy the facility type's notice window.
func CanCancel(apt *model.Appointment, now time.Time) bool {
	if apt.Status == model.AppointmentStatusCancelled || apt.Status == model.AppointmentStatusCompleted {
		return false
	}
	start, err := CombineDateTime(apt.AppointmentDate, apt.StartTime)
	if err != nil {
		return false
	}
	if !now.Before(start) {
		return false
	}
	hoursUntil := start.Sub(now)
	if hoursUntil <= 0 {
		return false
	}
	return hoursUntil > apt.FacilityType.CancelNotice()
}

// CanReschedule mirrors CanCancel but also rules out already-rescheduled
// records; a rescheduled appointment never resurrects.
func CanReschedule(apt *model.Appointment, now time.Time) bool {
	return CanCancel(apt, now) && apt.Status != model.AppointmentStatusRescheduled
}

// checkFacilityCompatibility enforces the emergency routing rule: emergency
// bookings must go to a hospital-capable facility. Checked at request
// validation and again immediately before commit.
func checkFacilityCompatibility(urgency model.UrgencyLevel, facilityType model.FacilityType) error {
	if urgency == model.UrgencyEmergency && !facilityType.HospitalCapable() {
		return apperrors.IncompatibleFacility("emergency appointments require a hospital facility")
	}
	return nil
}
