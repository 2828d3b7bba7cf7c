package appointment

import (
	"math"
	"time"

	"github.com/mzansicare/booking-api/internal/model"
)

// Priority score weights
const (
	priorityEmergency = 100
	priorityUrgent    = 50
	priorityRoutine   = 10

	publicEmergencyBonus = 30
	ruralBonus           = 15

	recencyBonusCeiling = 50
	recencyDecayPerDay  = 2
)

// PriorityScore ranks a booking by urgency and context. It is a pure function
// of the appointment and the current time; the result is recomputed on demand
// and never persisted.
func PriorityScore(apt *model.Appointment, now time.Time) int {
	score := 0.0

	switch apt.Urgency {
	case model.UrgencyEmergency:
		score += priorityEmergency
	case model.UrgencyUrgent:
		score += priorityUrgent
	default:
		score += priorityRoutine
	}

	if apt.Urgency == model.UrgencyEmergency && apt.FacilityType.PublicSector() {
		score += publicEmergencyBonus
	}

	score += recencyBonus(apt.AppointmentDate, now)

	if apt.District.IsRural() {
		score += ruralBonus
	}

	return int(math.Round(score))
}

// recencyBonus favors sooner appointments and fully decays 25 days out.
func recencyBonus(date time.Time, now time.Time) float64 {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, now.Location())
	daysUntil := day.Sub(today).Hours() / 24
	return math.Max(0, recencyBonusCeiling-recencyDecayPerDay*daysUntil)
}
