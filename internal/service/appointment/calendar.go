package appointment

import (
	"regexp"
	"time"

	apperrors "github.com/mzansicare/booking-api/pkg/errors"
)

// Booking time rules
const (
	MinDurationMinutes     = 15
	MaxDurationMinutes     = 240
	DefaultDurationMinutes = 30
	MaxAdvanceBooking      = 90 * 24 * time.Hour
)

const dateLayout = "2006-01-02"

var timeOfDayPattern = regexp.MustCompile(`^([01]?\d|2[0-3]):[0-5]\d$`)

// ParseDate parses a calendar date in YYYY-MM-DD form.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, apperrors.InvalidDate("date must be in YYYY-MM-DD format")
	}
	return d, nil
}

// ParseTimeOfDay validates a 24-hour HH:MM string and returns its components.
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	if !timeOfDayPattern.MatchString(s) {
		return 0, 0, apperrors.InvalidTime("time must be in HH:MM 24-hour format")
	}
	t, parseErr := time.Parse("15:04", normalizeTimeOfDay(s))
	if parseErr != nil {
		return 0, 0, apperrors.InvalidTime("time must be in HH:MM 24-hour format")
	}
	return t.Hour(), t.Minute(), nil
}

// normalizeTimeOfDay pads single-digit hours so "8:30" parses as "08:30".
func normalizeTimeOfDay(s string) string {
	if len(s) == 4 {
		return "0" + s
	}
	return s
}

// OnSlotBoundary reports whether the time lands on the half-hour grid.
// This is a booking-creation rule only; stored times are already aligned.
func OnSlotBoundary(s string) bool {
	_, minute, err := ParseTimeOfDay(s)
	if err != nil {
		return false
	}
	return minute == 0 || minute == 30
}

// CombineDateTime merges a calendar date with an HH:MM time of day into a
// single instant in the date's location.
func CombineDateTime(date time.Time, timeOfDay string) (time.Time, error) {
	hour, minute, err := ParseTimeOfDay(timeOfDay)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location()), nil
}

// AddMinutes shifts an instant forward by n minutes.
func AddMinutes(t time.Time, n int) time.Time {
	return t.Add(time.Duration(n) * time.Minute)
}

// Overlaps reports whether two half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Back-to-back bookings do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// validateDuration checks the bounds and substitutes the default for zero.
func validateDuration(minutes int) (int, error) {
	if minutes == 0 {
		return DefaultDurationMinutes, nil
	}
	if minutes < MinDurationMinutes || minutes > MaxDurationMinutes {
		return 0, apperrors.InvalidDuration("duration must be between 15 and 240 minutes")
	}
	return minutes, nil
}
