package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mzansicare/booking-api/internal/model"
)

// findConflict returns the first active booking for the clinician on the
// given date whose interval overlaps the candidate one, or nil when the slot
// is free. Overlap uses half-open semantics so adjacent bookings coexist.
// Conflict scoping is by exact calendar date; cross-midnight blocks are out
// of scope.
func (s *Service) findConflict(ctx context.Context, clinicianID uuid.UUID, date time.Time, startTime string, durationMinutes int, excludeID *uuid.UUID) (*model.Appointment, error) {
	existing, err := s.repo.ListActiveForClinician(ctx, clinicianID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list active bookings: %w", err)
	}

	candidateStart, err := CombineDateTime(date, startTime)
	if err != nil {
		return nil, err
	}
	candidateEnd := AddMinutes(candidateStart, durationMinutes)

	for _, apt := range existing {
		if excludeID != nil && apt.ID == *excludeID {
			continue
		}
		if !apt.Status.Active() {
			continue
		}
		start, combineErr := CombineDateTime(apt.AppointmentDate, apt.StartTime)
		if combineErr != nil {
			continue
		}
		end := AddMinutes(start, apt.DurationMinutes)
		if Overlaps(candidateStart, candidateEnd, start, end) {
			return apt, nil
		}
	}
	return nil, nil
}
