package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/mzansicare/booking-api/internal/model"
	apperrors "github.com/mzansicare/booking-api/pkg/errors"
)

// transitions is the full status graph. Statuses absent from the map are
// terminal.
var transitions = map[model.AppointmentStatus][]model.AppointmentStatus{
	model.AppointmentStatusPending: {
		model.AppointmentStatusConfirmed,
		model.AppointmentStatusCancelled,
		model.AppointmentStatusRescheduled,
	},
	model.AppointmentStatusConfirmed: {
		model.AppointmentStatusCancelled,
		model.AppointmentStatusCompleted,
		model.AppointmentStatusNoShow,
		model.AppointmentStatusRescheduled,
	},
}

// CanTransition reports whether the status graph admits from -> to.
func CanTransition(from, to model.AppointmentStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition moves the appointment to a new status and appends the matching
// history entry. The two changes always happen together; callers persist the
// appointment afterwards as a single write.
func Transition(apt *model.Appointment, to model.AppointmentStatus, actorID uuid.UUID, reason string, now time.Time) error {
	if !CanTransition(apt.Status, to) {
		return apperrors.InvalidTransition(string(apt.Status), string(to))
	}
	apt.StatusHistory.Append(model.StatusChange{
		Status:    to,
		ActorID:   actorID,
		Reason:    reason,
		Timestamp: now,
	})
	apt.Status = to
	apt.UpdatedAt = now
	return nil
}

// InitialHistory seeds a freshly created appointment's log so that the
// last-entry-matches-status invariant holds from the first write.
func InitialHistory(actorID uuid.UUID, now time.Time) model.StatusHistory {
	return model.StatusHistory{{
		Status:    model.AppointmentStatusPending,
		ActorID:   actorID,
		Reason:    "appointment created",
		Timestamp: now,
	}}
}
