package model

import (
	"time"

	"github.com/google/uuid"
)

type Patient struct {
	Base
	ClinicID    uuid.UUID  `db:"clinic_id" json:"clinic_id"`
	FirstName   string     `db:"first_name" json:"first_name"`
	LastName    string     `db:"last_name" json:"last_name"`
	Email       string     `db:"email" json:"email,omitempty"`
	Phone       string     `db:"phone" json:"phone,omitempty"`
	DateOfBirth *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Notes       string     `db:"notes" json:"notes,omitempty"`
}

type CreatePatientRequest struct {
	FirstName   string     `json:"first_name" validate:"required,max=100"`
	LastName    string     `json:"last_name" validate:"required,max=100"`
	Email       string     `json:"email" validate:"omitempty,email"`
	Phone       string     `json:"phone" validate:"max=30"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Notes       string     `json:"notes" validate:"max=2000"`
}

type UpdatePatientRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone" validate:"omitempty,max=30"`
	Notes     *string `json:"notes" validate:"omitempty,max=2000"`
}

type PatientFilters struct {
	ClinicID uuid.UUID
	Search   string
	Page     int
	PageSize int
}
