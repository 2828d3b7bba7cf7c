package model

import (
	"time"

	"github.com/google/uuid"
)

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
	UserStatusLocked   UserStatus = "locked"
)

// Role determines what a user may do. Admins and health workers are exempt
// from the district-matching rule when booking on behalf of patients.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleHealthWorker Role = "health-worker"
	RoleClinician    Role = "clinician"
	RolePatient      Role = "patient"
)

// Elevated reports whether the role bypasses district access restrictions.
func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RoleHealthWorker
}

type RoleList []Role

func (rs RoleList) Contains(role Role) bool {
	for _, r := range rs {
		if r == role {
			return true
		}
	}
	return false
}

// Elevated reports whether any held role is elevated.
func (rs RoleList) Elevated() bool {
	for _, r := range rs {
		if r.Elevated() {
			return true
		}
	}
	return false
}

type User struct {
	Base
	Email        string     `json:"email" db:"email"`
	Name         string     `json:"name" db:"name"`
	Password     string     `json:"password,omitempty" db:"-"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Phone        *string    `json:"phone" db:"phone"`
	District     District   `json:"district" db:"district"`
	Status       UserStatus `json:"status" db:"status"`
	LastLoginAt  *time.Time `json:"last_login_at" db:"last_login_at"`
}

type CreateUserRequest struct {
	Email    string   `json:"email" binding:"required,email"`
	Name     string   `json:"name" binding:"required,max=200"`
	Password string   `json:"password" binding:"required,min=8"`
	District string   `json:"district" binding:"required,district"`
	Roles    []string `json:"roles" binding:"required,min=1"`
}

type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Phone    *string `json:"phone"`
	District *string `json:"district"`
	Status   *string `json:"status" binding:"omitempty,oneof=active inactive locked"`
}

type UserFilters struct {
	District   District
	Role       Role
	Status     UserStatus
	SearchTerm string
}

type UserRole struct {
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Role      Role      `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
