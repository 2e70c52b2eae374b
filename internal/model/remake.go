package model

import (
	"time"

	"github.com/google/uuid"
)

type RemakeStatus string

const (
	RemakeStatusRequested    RemakeStatus = "requested"
	RemakeStatusAcknowledged RemakeStatus = "acknowledged"
	RemakeStatusInProgress   RemakeStatus = "in_progress"
	RemakeStatusShipped      RemakeStatus = "shipped"
	RemakeStatusReceived     RemakeStatus = "received"
	RemakeStatusInspected    RemakeStatus = "inspected"
	RemakeStatusCompleted    RemakeStatus = "completed"
	RemakeStatusCancelled    RemakeStatus = "cancelled"
)

var remakeTransitions = map[RemakeStatus][]RemakeStatus{
	RemakeStatusRequested:    {RemakeStatusAcknowledged, RemakeStatusCancelled},
	RemakeStatusAcknowledged: {RemakeStatusInProgress, RemakeStatusCancelled},
	RemakeStatusInProgress:   {RemakeStatusShipped, RemakeStatusCancelled},
	RemakeStatusShipped:      {RemakeStatusReceived, RemakeStatusCancelled},
	RemakeStatusReceived:     {RemakeStatusInspected, RemakeStatusCancelled},
	RemakeStatusInspected:    {RemakeStatusCompleted, RemakeStatusCancelled},
	RemakeStatusCompleted:    {},
	RemakeStatusCancelled:    {},
}

func (s RemakeStatus) CanTransition(next RemakeStatus) bool {
	for _, allowed := range remakeTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s RemakeStatus) Terminal() bool {
	return len(remakeTransitions[s]) == 0
}

// RecoveryStatus tracks cost-recovery from the vendor for an approved remake.
type RecoveryStatus string

const (
	RecoveryStatusPending    RecoveryStatus = "pending"
	RecoveryStatusInProgress RecoveryStatus = "in_progress"
	RecoveryStatusRecovered  RecoveryStatus = "recovered"
	RecoveryStatusLost       RecoveryStatus = "lost"
)

// RemakeRequest is a replacement fabrication request for a lab order whose
// output failed inspection or fit. The approval gate is independent of the
// status progression.
type RemakeRequest struct {
	Base
	ClinicID         uuid.UUID      `db:"clinic_id" json:"clinic_id"`
	LabOrderID       uuid.UUID      `db:"lab_order_id" json:"lab_order_id"`
	Reason           string         `db:"reason" json:"reason"`
	Status           RemakeStatus   `db:"status" json:"status"`
	RequiresApproval bool           `db:"requires_approval" json:"requires_approval"`
	ApprovedAt       *time.Time     `db:"approved_at" json:"approved_at,omitempty"`
	ApprovedBy       *uuid.UUID     `db:"approved_by" json:"approved_by,omitempty"`
	RecoveryStatus   RecoveryStatus `db:"recovery_status" json:"recovery_status"`
	Notes            string         `db:"notes" json:"notes,omitempty"`
}

type CreateRemakeRequest struct {
	LabOrderID       uuid.UUID `json:"lab_order_id" validate:"required"`
	Reason           string    `json:"reason" validate:"required,max=1000"`
	RequiresApproval bool      `json:"requires_approval"`
	Notes            string    `json:"notes" validate:"max=2000"`
}

type TransitionRemakeRequest struct {
	Status RemakeStatus `json:"status" validate:"required"`
	Notes  string       `json:"notes" validate:"max=2000"`
}

type ReviewRemakeRequest struct {
	Approve bool   `json:"approve"`
	Notes   string `json:"notes" validate:"max=2000"`
}

type RecordRecoveryRequest struct {
	Outcome RecoveryStatus `json:"outcome" validate:"required,oneof=in_progress recovered lost"`
	Notes   string         `json:"notes" validate:"max=2000"`
}
