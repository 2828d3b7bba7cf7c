package appointment

import (
	"time"

	"github.com/mzansicare/booking-api/internal/model"
)

// SlotGrid is the fixed daily grid of appointment start times every facility
// offers: a morning block and an afternoon block at 30-minute spacing.
var SlotGrid = []string{
	"08:00", "08:30", "09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
	"14:00", "14:30", "15:00", "15:30", "16:00", "16:30",
}

// availableSlots filters the grid against the clinician's existing active
// bookings for the day and against the clock: a slot survives only if its
// interval is free and its start is still in the future. Order is the grid's
// chronological order. The function has no side effects.
func availableSlots(existing []*model.Appointment, date time.Time, durationMinutes int, now time.Time) []string {
	type interval struct {
		start time.Time
		end   time.Time
	}

	booked := make([]interval, 0, len(existing))
	for _, apt := range existing {
		if !apt.Status.Active() {
			continue
		}
		start, err := CombineDateTime(apt.AppointmentDate, apt.StartTime)
		if err != nil {
			continue
		}
		booked = append(booked, interval{start: start, end: AddMinutes(start, apt.DurationMinutes)})
	}

	slots := make([]string, 0, len(SlotGrid))
	for _, slot := range SlotGrid {
		start, err := CombineDateTime(date, slot)
		if err != nil {
			continue
		}
		if !start.After(now) {
			continue
		}
		end := AddMinutes(start, durationMinutes)

		free := true
		for _, b := range booked {
			if Overlaps(start, end, b.start, b.end) {
				free = false
				break
			}
		}
		if free {
			slots = append(slots, slot)
		}
	}
	return slots
}
