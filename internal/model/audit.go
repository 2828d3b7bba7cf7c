package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	ActorID    uuid.UUID       `json:"actor_id" db:"actor_id"`
	District   District        `json:"district" db:"district"`
	Action     string          `json:"action" db:"action"`
	EntityType string          `json:"entity_type" db:"entity_type"`
	EntityID   uuid.UUID       `json:"entity_id" db:"entity_id"`
	Changes    json.RawMessage `json:"changes" db:"changes"`
	Metadata   json.RawMessage `json:"metadata" db:"metadata"`
	IPAddress  string          `json:"ip_address" db:"ip_address"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

const (
	AuditActionCreate     = "create"
	AuditActionUpdate     = "update"
	AuditActionCancel     = "cancel"
	AuditActionConfirm    = "confirm"
	AuditActionComplete   = "complete"
	AuditActionNoShow     = "no-show"
	AuditActionReschedule = "reschedule"
	AuditActionLogin      = "login"

	AuditEntityAppointment = "appointment"
	AuditEntityPatient     = "patient"
	AuditEntityClinician   = "clinician"
	AuditEntityClinic      = "clinic"
	AuditEntityUser        = "user"
)
