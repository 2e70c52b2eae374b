package model

import (
	"time"

	"github.com/google/uuid"
)

type SterilizationCycle struct {
	Base
	ClinicID          uuid.UUID `db:"clinic_id" json:"clinic_id"`
	CycleNumber       int       `db:"cycle_number" json:"cycle_number"`
	CycleType         string    `db:"cycle_type" json:"cycle_type"`
	Program           string    `db:"program" json:"program,omitempty"`
	Technician        string    `db:"technician" json:"technician,omitempty"`
	EquipmentType     string    `db:"equipment_type" json:"equipment_type,omitempty"`
	SterilizerSerial  string    `db:"sterilizer_serial" json:"sterilizer_serial,omitempty"`
	EquipmentID       string    `db:"equipment_id" json:"equipment_id,omitempty"`
	SterilizationDate time.Time `db:"sterilization_date" json:"sterilization_date"`
	ExpirationDate    time.Time `db:"expiration_date" json:"expiration_date"`
	Passed            bool      `db:"passed" json:"passed"`
}

type CreateSterilizationCycleRequest struct {
	CycleNumber       int       `json:"cycle_number" validate:"required,min=1"`
	CycleType         string    `json:"cycle_type" validate:"required,max=50"`
	Program           string    `json:"program" validate:"max=50"`
	Technician        string    `json:"technician" validate:"max=100"`
	EquipmentType     string    `json:"equipment_type" validate:"max=100"`
	SterilizerSerial  string    `json:"sterilizer_serial" validate:"max=100"`
	EquipmentID       string    `json:"equipment_id" validate:"max=100"`
	SterilizationDate time.Time `json:"sterilization_date" validate:"required"`
	ExpirationDate    time.Time `json:"expiration_date" validate:"required,gtfield=SterilizationDate"`
	Passed            bool      `json:"passed"`
}
