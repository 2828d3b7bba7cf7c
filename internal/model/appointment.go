package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending     AppointmentStatus = "pending"
	AppointmentStatusConfirmed   AppointmentStatus = "confirmed"
	AppointmentStatusCancelled   AppointmentStatus = "cancelled"
	AppointmentStatusCompleted   AppointmentStatus = "completed"
	AppointmentStatusNoShow      AppointmentStatus = "no-show"
	AppointmentStatusRescheduled AppointmentStatus = "rescheduled"
)

// ActiveAppointmentStatuses are the statuses that count toward conflict
// detection and slot occupancy.
var ActiveAppointmentStatuses = []AppointmentStatus{
	AppointmentStatusPending,
	AppointmentStatusConfirmed,
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusCancelled,
		AppointmentStatusCompleted, AppointmentStatusNoShow, AppointmentStatusRescheduled:
		return true
	}
	return false
}

// Active reports whether the appointment still occupies its slot.
func (s AppointmentStatus) Active() bool {
	return s == AppointmentStatusPending || s == AppointmentStatusConfirmed
}

// Terminal reports whether the status admits no further transitions.
func (s AppointmentStatus) Terminal() bool {
	switch s {
	case AppointmentStatusCancelled, AppointmentStatusCompleted,
		AppointmentStatusNoShow, AppointmentStatusRescheduled:
		return true
	}
	return false
}

type UrgencyLevel string

const (
	UrgencyRoutine   UrgencyLevel = "routine"
	UrgencyUrgent    UrgencyLevel = "urgent"
	UrgencyEmergency UrgencyLevel = "emergency"
)

func (u UrgencyLevel) Valid() bool {
	switch u {
	case UrgencyRoutine, UrgencyUrgent, UrgencyEmergency:
		return true
	}
	return false
}

type Specialty string

const (
	SpecialtyGeneralPractice Specialty = "general-practice"
	SpecialtyPediatrics      Specialty = "pediatrics"
	SpecialtyObstetrics      Specialty = "obstetrics"
	SpecialtyCardiology      Specialty = "cardiology"
	SpecialtyDermatology     Specialty = "dermatology"
	SpecialtyOrthopedics     Specialty = "orthopedics"
	SpecialtyPsychiatry      Specialty = "psychiatry"
	SpecialtyDentistry       Specialty = "dentistry"
	SpecialtyOptometry       Specialty = "optometry"
	SpecialtyPhysiotherapy   Specialty = "physiotherapy"
)

var specialties = map[Specialty]bool{
	SpecialtyGeneralPractice: true,
	SpecialtyPediatrics:      true,
	SpecialtyObstetrics:      true,
	SpecialtyCardiology:      true,
	SpecialtyDermatology:     true,
	SpecialtyOrthopedics:     true,
	SpecialtyPsychiatry:      true,
	SpecialtyDentistry:       true,
	SpecialtyOptometry:       true,
	SpecialtyPhysiotherapy:   true,
}

func (s Specialty) Valid() bool {
	return specialties[s]
}

// StatusChange is a single entry in an appointment's status history.
type StatusChange struct {
	Status    AppointmentStatus `json:"status"`
	ActorID   uuid.UUID         `json:"actor_id"`
	Reason    string            `json:"reason,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// StatusHistory is the append-only log of status transitions. The last
// entry's status always equals the appointment's current status.
type StatusHistory []StatusChange

// Append records a transition. Entries are never modified or removed.
func (h *StatusHistory) Append(change StatusChange) {
	*h = append(*h, change)
}

// Last returns the most recent entry, or nil when the history is empty.
func (h StatusHistory) Last() *StatusChange {
	if len(h) == 0 {
		return nil
	}
	return &h[len(h)-1]
}

func (h StatusHistory) Value() (driver.Value, error) {
	if h == nil {
		return "[]", nil
	}
	return json.Marshal(h)
}

func (h *StatusHistory) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*h = nil
		return nil
	case []byte:
		return json.Unmarshal(v, h)
	case string:
		return json.Unmarshal([]byte(v), h)
	}
	return fmt.Errorf("unsupported status history type %T", src)
}

// SymptomEntry is an optional structured symptom attached at booking time.
type SymptomEntry struct {
	Name     string `json:"name"`
	Severity string `json:"severity,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

type SymptomList []SymptomEntry

func (s SymptomList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal(s)
}

func (s *SymptomList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	}
	return fmt.Errorf("unsupported symptom list type %T", src)
}

type Appointment struct {
	Base
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	ClinicianID uuid.UUID `db:"clinician_id" json:"clinician_id"`
	ClinicID    uuid.UUID `db:"clinic_id" json:"clinic_id"`

	District    District `db:"district" json:"district"`
	SubLocation string   `db:"sub_location" json:"sub_location,omitempty"`

	AppointmentDate time.Time `db:"appointment_date" json:"appointment_date"`
	StartTime       string    `db:"start_time" json:"start_time"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`

	Reason       string       `db:"reason" json:"reason"`
	Category     Specialty    `db:"category" json:"category"`
	Urgency      UrgencyLevel `db:"urgency" json:"urgency"`
	Symptoms     SymptomList  `db:"symptoms" json:"symptoms,omitempty"`
	FacilityType FacilityType `db:"facility_type" json:"facility_type"`

	Status        AppointmentStatus `db:"status" json:"status"`
	StatusHistory StatusHistory     `db:"status_history" json:"status_history"`

	// Derived fields, recomputed on read, never persisted.
	PriorityScore    int  `db:"-" json:"priority_score"`
	CanBeCancelled   bool `db:"-" json:"can_be_cancelled"`
	CanBeRescheduled bool `db:"-" json:"can_be_rescheduled"`
	IsToday          bool `db:"-" json:"is_today"`
	IsPast           bool `db:"-" json:"is_past"`
}

type CreateAppointmentRequest struct {
	PatientID   uuid.UUID `json:"patient_id" binding:"required"`
	ClinicianID uuid.UUID `json:"clinician_id" binding:"required"`
	ClinicID    uuid.UUID `json:"clinic_id" binding:"required"`

	District    string `json:"district" binding:"required,district"`
	SubLocation string `json:"sub_location" binding:"max=200"`

	Date            string `json:"date" binding:"required"`
	StartTime       string `json:"start_time" binding:"required"`
	DurationMinutes int    `json:"duration_minutes" binding:"omitempty,min=15,max=240"`

	Reason       string         `json:"reason" binding:"required,max=500"`
	Category     string         `json:"category" binding:"required,specialty"`
	Urgency      string         `json:"urgency" binding:"required,oneof=routine urgent emergency"`
	Symptoms     []SymptomEntry `json:"symptoms" binding:"max=20"`
	FacilityType string         `json:"facility_type" binding:"required,facility"`
}

// UpdateAppointmentRequest uses pointer fields so an absent field is
// distinguishable from an explicit zero. Present fields are merged onto the
// stored appointment and the result revalidated in full.
type UpdateAppointmentRequest struct {
	Date            *string            `json:"date"`
	StartTime       *string            `json:"start_time"`
	DurationMinutes *int               `json:"duration_minutes" binding:"omitempty,min=15,max=240"`
	Reason          *string            `json:"reason" binding:"omitempty,max=500"`
	Category        *string            `json:"category" binding:"omitempty,specialty"`
	Urgency         *string            `json:"urgency" binding:"omitempty,oneof=routine urgent emergency"`
	SubLocation     *string            `json:"sub_location" binding:"omitempty,max=200"`
	Symptoms        []SymptomEntry     `json:"symptoms" binding:"omitempty,max=20"`
	Status          *AppointmentStatus `json:"status"`
	StatusReason    *string            `json:"status_reason" binding:"omitempty,max=500"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type RescheduleAppointmentRequest struct {
	Date            string `json:"date" binding:"required"`
	StartTime       string `json:"start_time" binding:"required"`
	DurationMinutes int    `json:"duration_minutes" binding:"omitempty,min=15,max=240"`
	Reason          string `json:"reason" binding:"max=500"`
}

type AppointmentFilters struct {
	ClinicID    uuid.UUID
	ClinicianID uuid.UUID
	PatientID   uuid.UUID
	District    District
	Status      AppointmentStatus
	DateFrom    time.Time
	DateTo      time.Time
}
