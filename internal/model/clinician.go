package model

import (
	"github.com/google/uuid"
)

type ClinicianStatus string

const (
	ClinicianStatusActive   ClinicianStatus = "active"
	ClinicianStatusInactive ClinicianStatus = "inactive"
)

type Clinician struct {
	Base
	ClinicID  uuid.UUID       `db:"clinic_id" json:"clinic_id"`
	Name      string          `db:"name" json:"name"`
	Email     string          `db:"email" json:"email"`
	Specialty Specialty       `db:"specialty" json:"specialty"`
	Status    ClinicianStatus `db:"status" json:"status"`
}

type CreateClinicianRequest struct {
	ClinicID  uuid.UUID `json:"clinic_id" binding:"required"`
	Name      string    `json:"name" binding:"required,max=200"`
	Email     string    `json:"email" binding:"required,email"`
	Specialty string    `json:"specialty" binding:"required,specialty"`
}

type UpdateClinicianRequest struct {
	Name      *string `json:"name"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Specialty *string `json:"specialty" binding:"omitempty,specialty"`
	Status    *string `json:"status"`
}

type ClinicianFilters struct {
	ClinicID  uuid.UUID
	Specialty Specialty
	Status    ClinicianStatus
}
