package model

import (
	"time"

	"github.com/google/uuid"
)

type LabOrderStatus string

const (
	LabOrderStatusDraft         LabOrderStatus = "draft"
	LabOrderStatusSubmitted     LabOrderStatus = "submitted"
	LabOrderStatusAcknowledged  LabOrderStatus = "acknowledged"
	LabOrderStatusInProgress    LabOrderStatus = "in_progress"
	LabOrderStatusCompleted     LabOrderStatus = "completed"
	LabOrderStatusShipped       LabOrderStatus = "shipped"
	LabOrderStatusDelivered     LabOrderStatus = "delivered"
	LabOrderStatusReceived      LabOrderStatus = "received"
	LabOrderStatusPatientPickup LabOrderStatus = "patient_pickup"
	LabOrderStatusPickedUp      LabOrderStatus = "picked_up"
	LabOrderStatusCancelled     LabOrderStatus = "cancelled"
)

// labOrderTransitions: the ordered fabrication pipeline. Cancellation is
// allowed until the order ships; once in transit it has to run to a
// delivery outcome.
var labOrderTransitions = map[LabOrderStatus][]LabOrderStatus{
	LabOrderStatusDraft:         {LabOrderStatusSubmitted, LabOrderStatusCancelled},
	LabOrderStatusSubmitted:     {LabOrderStatusAcknowledged, LabOrderStatusCancelled},
	LabOrderStatusAcknowledged:  {LabOrderStatusInProgress, LabOrderStatusCancelled},
	LabOrderStatusInProgress:    {LabOrderStatusCompleted, LabOrderStatusCancelled},
	LabOrderStatusCompleted:     {LabOrderStatusShipped, LabOrderStatusCancelled},
	LabOrderStatusShipped:       {LabOrderStatusDelivered, LabOrderStatusReceived, LabOrderStatusPatientPickup},
	LabOrderStatusDelivered:     {},
	LabOrderStatusReceived:      {},
	LabOrderStatusPatientPickup: {LabOrderStatusPickedUp},
	LabOrderStatusPickedUp:      {},
	LabOrderStatusCancelled:     {},
}

func (s LabOrderStatus) CanTransition(next LabOrderStatus) bool {
	for _, allowed := range labOrderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s LabOrderStatus) Terminal() bool {
	return len(labOrderTransitions[s]) == 0
}

type LabOrder struct {
	Base
	ClinicID      uuid.UUID      `db:"clinic_id" json:"clinic_id"`
	PatientID     uuid.UUID      `db:"patient_id" json:"patient_id"`
	VendorID      *uuid.UUID     `db:"vendor_id" json:"vendor_id,omitempty"`
	ApplianceType string         `db:"appliance_type" json:"appliance_type"`
	Status        LabOrderStatus `db:"status" json:"status"`
	DueDate       *time.Time     `db:"due_date" json:"due_date,omitempty"`
	SubmittedAt   *time.Time     `db:"submitted_at" json:"submitted_at,omitempty"`
	Notes         string         `db:"notes" json:"notes,omitempty"`
}

// LabOrderStatusLog is an immutable audit row for each status transition.
// Current state remains the mutable status column on the order.
type LabOrderStatusLog struct {
	ID         uuid.UUID      `db:"id" json:"id"`
	LabOrderID uuid.UUID      `db:"lab_order_id" json:"lab_order_id"`
	FromStatus LabOrderStatus `db:"from_status" json:"from_status"`
	ToStatus   LabOrderStatus `db:"to_status" json:"to_status"`
	Notes      string         `db:"notes" json:"notes,omitempty"`
	Source     string         `db:"source" json:"source,omitempty"`
	ChangedBy  uuid.UUID      `db:"changed_by" json:"changed_by"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}

type CreateLabOrderRequest struct {
	PatientID     uuid.UUID  `json:"patient_id" validate:"required"`
	VendorID      *uuid.UUID `json:"vendor_id"`
	ApplianceType string     `json:"appliance_type" validate:"required,max=100"`
	DueDate       *time.Time `json:"due_date"`
	Notes         string     `json:"notes" validate:"max=2000"`
}

type TransitionLabOrderRequest struct {
	Status LabOrderStatus `json:"status" validate:"required"`
	Notes  string         `json:"notes" validate:"max=2000"`
	Source string         `json:"source" validate:"max=50"`
}

type BatchStatusRequest struct {
	OrderIDs []uuid.UUID    `json:"order_ids" validate:"required,min=1"`
	Status   LabOrderStatus `json:"status" validate:"required"`
	Notes    string         `json:"notes" validate:"max=2000"`
}

type BatchOrderIDsRequest struct {
	OrderIDs []uuid.UUID `json:"order_ids" validate:"required,min=1"`
	Notes    string      `json:"notes" validate:"max=2000"`
}

// BatchResult reports per-item outcomes of a batch operation. Batch writes
// are independent per row; there is no all-or-nothing guarantee.
type BatchResult struct {
	Succeeded []uuid.UUID       `json:"succeeded"`
	Failed    []BatchItemError  `json:"failed"`
	Skipped   []BatchItemReason `json:"skipped"`
}

type BatchItemError struct {
	OrderID uuid.UUID `json:"order_id"`
	Error   string    `json:"error"`
}

type BatchItemReason struct {
	OrderID uuid.UUID `json:"order_id"`
	Reason  string    `json:"reason"`
}

type LabOrderFilters struct {
	ClinicID  uuid.UUID
	PatientID uuid.UUID
	VendorID  uuid.UUID
	Status    LabOrderStatus
	StartDate time.Time
	EndDate   time.Time
}
