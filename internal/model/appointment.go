package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled  AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed  AppointmentStatus = "confirmed"
	AppointmentStatusArrived    AppointmentStatus = "arrived"
	AppointmentStatusInProgress AppointmentStatus = "in_progress"
	AppointmentStatusCompleted  AppointmentStatus = "completed"
	AppointmentStatusCancelled  AppointmentStatus = "cancelled"
	AppointmentStatusNoShow     AppointmentStatus = "no_show"
)

// appointmentTransitions is the allowed adjacency set. Status only moves
// forward; cancelled and no_show are terminal branches reachable from any
// pre-completion status.
var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusScheduled:  {AppointmentStatusConfirmed, AppointmentStatusArrived, AppointmentStatusCancelled, AppointmentStatusNoShow},
	AppointmentStatusConfirmed:  {AppointmentStatusArrived, AppointmentStatusCancelled, AppointmentStatusNoShow},
	AppointmentStatusArrived:    {AppointmentStatusInProgress, AppointmentStatusCancelled, AppointmentStatusNoShow},
	AppointmentStatusInProgress: {AppointmentStatusCompleted, AppointmentStatusCancelled},
	AppointmentStatusCompleted:  {},
	AppointmentStatusCancelled:  {},
	AppointmentStatusNoShow:     {},
}

// CanTransition reports whether an appointment may move from its current
// status to next.
func (s AppointmentStatus) CanTransition(next AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s AppointmentStatus) Terminal() bool {
	return len(appointmentTransitions[s]) == 0
}

type Appointment struct {
	Base
	ClinicID          uuid.UUID         `db:"clinic_id" json:"clinic_id"`
	PatientID         uuid.UUID         `db:"patient_id" json:"patient_id"`
	ProviderID        uuid.UUID         `db:"provider_id" json:"provider_id"`
	AppointmentTypeID uuid.UUID         `db:"appointment_type_id" json:"appointment_type_id"`
	ChairID           *uuid.UUID        `db:"chair_id" json:"chair_id,omitempty"`
	StartTime         time.Time         `db:"start_time" json:"start_time"`
	EndTime           time.Time         `db:"end_time" json:"end_time"`
	Status            AppointmentStatus `db:"status" json:"status"`
	Notes             string            `db:"notes" json:"notes,omitempty"`
	CancelReason      *string           `db:"cancel_reason" json:"cancel_reason,omitempty"`
}

type CreateAppointmentRequest struct {
	PatientID         uuid.UUID  `json:"patient_id" validate:"required"`
	ProviderID        uuid.UUID  `json:"provider_id" validate:"required"`
	AppointmentTypeID uuid.UUID  `json:"appointment_type_id" validate:"required"`
	ChairID           *uuid.UUID `json:"chair_id"`
	StartTime         time.Time  `json:"start_time" validate:"required"`
	EndTime           time.Time  `json:"end_time" validate:"required,gtfield=StartTime"`
	Notes             string     `json:"notes" validate:"max=1000"`
}

type UpdateAppointmentRequest struct {
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	ChairID   *uuid.UUID `json:"chair_id"`
	Notes     *string    `json:"notes" validate:"omitempty,max=1000"`
}

type TransitionAppointmentRequest struct {
	Status       AppointmentStatus `json:"status" validate:"required"`
	CancelReason *string           `json:"cancel_reason" validate:"omitempty,max=500"`
}

type AppointmentFilters struct {
	ClinicID   uuid.UUID
	ProviderID uuid.UUID
	PatientID  uuid.UUID
	Status     AppointmentStatus
	StartDate  time.Time
	EndDate    time.Time
}
