package model

import (
	"time"
)

// FacilityType categorizes a care site. The type gates two booking rules:
// how much notice a cancellation needs, and whether the site may accept
// emergency bookings.
type FacilityType string

const (
	FacilityPublicClinic     FacilityType = "public-clinic"
	FacilityPublicHospital   FacilityType = "public-hospital"
	FacilityUnjaniClinic     FacilityType = "unjani-clinic"
	FacilityPrivatePractice  FacilityType = "private-practice"
	FacilityPrivateHospital  FacilityType = "private-hospital"
	FacilitySpecialistCenter FacilityType = "specialist-center"
)

type facilityProfile struct {
	hospitalCapable bool
	publicSector    bool
	cancelNotice    time.Duration
}

var facilityProfiles = map[FacilityType]facilityProfile{
	FacilityPublicClinic:     {hospitalCapable: false, publicSector: true, cancelNotice: 4 * time.Hour},
	FacilityPublicHospital:   {hospitalCapable: true, publicSector: true, cancelNotice: 4 * time.Hour},
	FacilityUnjaniClinic:     {hospitalCapable: false, publicSector: false, cancelNotice: 6 * time.Hour},
	FacilityPrivatePractice:  {hospitalCapable: false, publicSector: false, cancelNotice: 24 * time.Hour},
	FacilityPrivateHospital:  {hospitalCapable: true, publicSector: false, cancelNotice: 24 * time.Hour},
	FacilitySpecialistCenter: {hospitalCapable: false, publicSector: false, cancelNotice: 24 * time.Hour},
}

// defaultCancelNotice applies when the facility type is unknown.
const defaultCancelNotice = 12 * time.Hour

func (t FacilityType) Valid() bool {
	_, ok := facilityProfiles[t]
	return ok
}

// HospitalCapable reports whether the facility can take emergency bookings.
func (t FacilityType) HospitalCapable() bool {
	return facilityProfiles[t].hospitalCapable
}

// PublicSector reports whether the facility is state funded.
func (t FacilityType) PublicSector() bool {
	return facilityProfiles[t].publicSector
}

// CancelNotice returns the minimum notice required to cancel or reschedule
// an appointment at this kind of facility.
func (t FacilityType) CancelNotice() time.Duration {
	if p, ok := facilityProfiles[t]; ok {
		return p.cancelNotice
	}
	return defaultCancelNotice
}

type ClinicStatus string

const (
	ClinicStatusActive   ClinicStatus = "active"
	ClinicStatusInactive ClinicStatus = "inactive"
)

type Clinic struct {
	Base
	Name         string       `db:"name" json:"name"`
	FacilityType FacilityType `db:"facility_type" json:"facility_type"`
	District     District     `db:"district" json:"district"`
	SubLocation  string       `db:"sub_location" json:"sub_location,omitempty"`
	Phone        string       `db:"phone" json:"phone,omitempty"`
	Status       ClinicStatus `db:"status" json:"status"`
}

type CreateClinicRequest struct {
	Name         string `json:"name" binding:"required,max=200"`
	FacilityType string `json:"facility_type" binding:"required,facility"`
	District     string `json:"district" binding:"required,district"`
	SubLocation  string `json:"sub_location" binding:"max=200"`
	Phone        string `json:"phone"`
}

type UpdateClinicRequest struct {
	Name        *string `json:"name"`
	SubLocation *string `json:"sub_location"`
	Phone       *string `json:"phone"`
	Status      *string `json:"status"`
}

type ClinicFilters struct {
	District     District
	FacilityType FacilityType
	Status       ClinicStatus
	SearchTerm   string
}
