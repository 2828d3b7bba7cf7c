package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mzansicare/booking-api/internal/model"
)

func TestPriorityScore(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	makeApt := func(urgency model.UrgencyLevel, facility model.FacilityType, district model.District, daysOut int) *model.Appointment {
		return &model.Appointment{
			AppointmentDate: time.Date(2026, 3, 2+daysOut, 0, 0, 0, 0, time.UTC),
			Urgency:         urgency,
			FacilityType:    facility,
			District:        district,
		}
	}

	tests := []struct {
		name string
		apt  *model.Appointment
		want int
	}{
		{
			name: "routine urban far out gets base only",
			apt:  makeApt(model.UrgencyRoutine, model.FacilityPrivatePractice, model.DistrictJohannesburg, 30),
			want: 10,
		},
		{
			name: "routine today adds full recency",
			apt:  makeApt(model.UrgencyRoutine, model.FacilityPrivatePractice, model.DistrictJohannesburg, 0),
			want: 60,
		},
		{
			name: "urgent ten days out",
			apt:  makeApt(model.UrgencyUrgent, model.FacilityPublicClinic, model.DistrictTshwane, 10),
			want: 80,
		},
		{
			name: "recency decays to zero at 25 days",
			apt:  makeApt(model.UrgencyUrgent, model.FacilityPublicClinic, model.DistrictTshwane, 25),
			want: 50,
		},
		{
			name: "emergency at public hospital today in rural district",
			apt:  makeApt(model.UrgencyEmergency, model.FacilityPublicHospital, model.DistrictVhembe, 0),
			want: 195,
		},
		{
			name: "emergency at private hospital gets no public bonus",
			apt:  makeApt(model.UrgencyEmergency, model.FacilityPrivateHospital, model.DistrictJohannesburg, 0),
			want: 150,
		},
		{
			name: "rural bonus applies regardless of urgency",
			apt:  makeApt(model.UrgencyRoutine, model.FacilityPublicClinic, model.DistrictNamakwa, 30),
			want: 25,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PriorityScore(tt.apt, now))
		})
	}
}

func TestPriorityScoreOrdersByUrgency(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	date := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	base := model.Appointment{
		AppointmentDate: date,
		FacilityType:    model.FacilityPublicHospital,
		District:        model.DistrictTshwane,
	}

	routine, urgent, emergency := base, base, base
	routine.Urgency = model.UrgencyRoutine
	urgent.Urgency = model.UrgencyUrgent
	emergency.Urgency = model.UrgencyEmergency

	assert.Greater(t, PriorityScore(&emergency, now), PriorityScore(&urgent, now))
	assert.Greater(t, PriorityScore(&urgent, now), PriorityScore(&routine, now))
}

func TestRecencyBonusIgnoresTimeOfDay(t *testing.T) {
	morning := time.Date(2026, 3, 2, 1, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 3, 2, 23, 0, 0, 0, time.UTC)
	date := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	// The decay works on whole calendar days, not elapsed hours.
	assert.Equal(t, recencyBonus(date, morning), recencyBonus(date, evening))
	assert.Equal(t, 44.0, recencyBonus(date, morning))
}
