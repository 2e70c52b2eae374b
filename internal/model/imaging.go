package model

import (
	"time"

	"github.com/google/uuid"
)

type ImagingDocument struct {
	Base
	ClinicID     uuid.UUID  `db:"clinic_id" json:"clinic_id"`
	PatientID    uuid.UUID  `db:"patient_id" json:"patient_id"`
	Kind         string     `db:"kind" json:"kind"` // panoramic, cephalometric, intraoral, scan
	StoragePath  string     `db:"storage_path" json:"storage_path"`
	ContentType  string     `db:"content_type" json:"content_type"`
	Version      int        `db:"version" json:"version"`
	SupersededAt *time.Time `db:"superseded_at" json:"superseded_at,omitempty"`
	SupersededBy *uuid.UUID `db:"superseded_by" json:"superseded_by,omitempty"`
	TakenAt      time.Time  `db:"taken_at" json:"taken_at"`
	Notes        string     `db:"notes" json:"notes,omitempty"`
}

type CreateImagingDocumentRequest struct {
	PatientID   uuid.UUID `json:"patient_id" validate:"required"`
	Kind        string    `json:"kind" validate:"required,oneof=panoramic cephalometric intraoral scan photo"`
	StoragePath string    `json:"storage_path" validate:"required,max=500"`
	ContentType string    `json:"content_type" validate:"required,max=100"`
	TakenAt     time.Time `json:"taken_at" validate:"required"`
	Notes       string    `json:"notes" validate:"max=2000"`
}

// ReplaceImagingDocumentRequest replaces a document with a new version; the
// supersede + insert happen in one transaction.
type ReplaceImagingDocumentRequest struct {
	StoragePath string `json:"storage_path" validate:"required,max=500"`
	ContentType string `json:"content_type" validate:"required,max=100"`
	Notes       string `json:"notes" validate:"max=2000"`
}
