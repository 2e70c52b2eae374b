package model

import (
	"time"

	"github.com/google/uuid"
)

type ChairStatus string

const (
	ChairStatusAvailable    ChairStatus = "available"
	ChairStatusOccupied     ChairStatus = "occupied"
	ChairStatusOutOfService ChairStatus = "out_of_service"
)

type TreatmentChair struct {
	Base
	ClinicID uuid.UUID   `db:"clinic_id" json:"clinic_id"`
	Name     string      `db:"name" json:"name"`
	Room     string      `db:"room" json:"room,omitempty"`
	Status   ChairStatus `db:"status" json:"status"`
}

// ResourceOccupancy records one occupancy interval of a chair.
type ResourceOccupancy struct {
	Base
	ClinicID      uuid.UUID  `db:"clinic_id" json:"clinic_id"`
	ChairID       uuid.UUID  `db:"chair_id" json:"chair_id"`
	AppointmentID *uuid.UUID `db:"appointment_id" json:"appointment_id,omitempty"`
	OccupiedAt    time.Time  `db:"occupied_at" json:"occupied_at"`
	ReleasedAt    *time.Time `db:"released_at" json:"released_at,omitempty"`
}

type CreateChairRequest struct {
	Name string `json:"name" validate:"required,max=100"`
	Room string `json:"room" validate:"max=100"`
}

type UpdateChairRequest struct {
	Name   *string      `json:"name" validate:"omitempty,max=100"`
	Room   *string      `json:"room" validate:"omitempty,max=100"`
	Status *ChairStatus `json:"status" validate:"omitempty,oneof=available occupied out_of_service"`
}
