package model

import (
	"time"

	"github.com/google/uuid"
)

type PatientStatus string

const (
	PatientStatusActive   PatientStatus = "active"
	PatientStatusInactive PatientStatus = "inactive"
	PatientStatusDeleted  PatientStatus = "deleted"
)

type Patient struct {
	Base
	UserID      uuid.UUID     `db:"user_id" json:"user_id"`
	Name        string        `db:"name" json:"name"`
	Email       string        `db:"email" json:"email"`
	Phone       string        `db:"phone" json:"phone,omitempty"`
	District    District      `db:"district" json:"district"`
	SubLocation string        `db:"sub_location" json:"sub_location,omitempty"`
	DateOfBirth *time.Time    `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Status      PatientStatus `db:"status" json:"status"`
}

type CreatePatientRequest struct {
	UserID      uuid.UUID `json:"user_id"`
	Name        string `json:"name" binding:"required,max=200"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone"`
	District    string `json:"district" binding:"required,district"`
	SubLocation string `json:"sub_location" binding:"max=200"`
	DateOfBirth string `json:"date_of_birth"`
}

type UpdatePatientRequest struct {
	Name        *string `json:"name"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Phone       *string `json:"phone"`
	District    *string `json:"district" binding:"omitempty,district"`
	SubLocation *string `json:"sub_location"`
	Status      *string `json:"status" binding:"omitempty,oneof=active inactive"`
}

type PatientFilters struct {
	District   District
	Status     PatientStatus
	SearchTerm string
}
