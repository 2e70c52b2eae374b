package model

import (
	"time"

	"github.com/google/uuid"
)

type StaffRole string

const (
	StaffRoleAdmin     StaffRole = "admin"
	StaffRoleProvider  StaffRole = "provider"
	StaffRoleAssistant StaffRole = "assistant"
	StaffRoleFrontDesk StaffRole = "front_desk"
	StaffRoleLabTech   StaffRole = "lab_tech"
)

type StaffStatus string

const (
	StaffStatusActive     StaffStatus = "active"
	StaffStatusOnLeave    StaffStatus = "on_leave"
	StaffStatusTerminated StaffStatus = "terminated"
)

type Staff struct {
	Base
	ClinicID     uuid.UUID   `db:"clinic_id" json:"clinic_id"`
	FirstName    string      `db:"first_name" json:"first_name"`
	LastName     string      `db:"last_name" json:"last_name"`
	Email        string      `db:"email" json:"email"`
	Role         StaffRole   `db:"role" json:"role"`
	Status       StaffStatus `db:"status" json:"status"`
	PasswordHash string      `db:"password_hash" json:"-"`
	HiredAt      *time.Time  `db:"hired_at" json:"hired_at,omitempty"`
	TerminatedAt *time.Time  `db:"terminated_at" json:"terminated_at,omitempty"`
}

type CreateStaffRequest struct {
	FirstName string    `json:"first_name" validate:"required,max=100"`
	LastName  string    `json:"last_name" validate:"required,max=100"`
	Email     string    `json:"email" validate:"required,email"`
	Role      StaffRole `json:"role" validate:"required,oneof=admin provider assistant front_desk lab_tech"`
	Password  string    `json:"password" validate:"required,min=8"`
}

type UpdateStaffRequest struct {
	FirstName *string      `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string      `json:"last_name" validate:"omitempty,max=100"`
	Role      *StaffRole   `json:"role" validate:"omitempty,oneof=admin provider assistant front_desk lab_tech"`
	Status    *StaffStatus `json:"status" validate:"omitempty,oneof=active on_leave"`
}

type TerminateStaffRequest struct {
	Reason        string     `json:"reason" validate:"required,max=1000"`
	EffectiveDate *time.Time `json:"effective_date"`
}
