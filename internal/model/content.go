package model

import (
	"time"

	"github.com/google/uuid"
)

type ContentTriggerStatus string

const (
	ContentTriggerStatusPending ContentTriggerStatus = "pending"
	ContentTriggerStatusSent    ContentTriggerStatus = "sent"
	ContentTriggerStatusFailed  ContentTriggerStatus = "failed"
	ContentTriggerStatusSkipped ContentTriggerStatus = "skipped"
)

// ContentTrigger schedules a piece of patient education or reminder content
// for delivery. The worker processes due triggers clinic by clinic.
type ContentTrigger struct {
	Base
	ClinicID   uuid.UUID            `db:"clinic_id" json:"clinic_id"`
	PatientID  uuid.UUID            `db:"patient_id" json:"patient_id"`
	TemplateID string               `db:"template_id" json:"template_id"`
	Subject    string               `db:"subject" json:"subject"`
	Body       string               `db:"body" json:"body"`
	DueAt      time.Time            `db:"due_at" json:"due_at"`
	Status     ContentTriggerStatus `db:"status" json:"status"`
	SentAt     *time.Time           `db:"sent_at" json:"sent_at,omitempty"`
	LastError  *string              `db:"last_error" json:"last_error,omitempty"`
}
