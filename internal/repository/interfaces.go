package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/orcadental/practice-api/internal/model"
)

type ClinicRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error)
	List(ctx context.Context) ([]*model.Clinic, error)
	GetSettings(ctx context.Context, clinicID uuid.UUID) (*model.ClinicSettings, error)
}

type PatientRepository interface {
	Create(ctx context.Context, p *model.Patient) error
	Get(ctx context.Context, clinicID, id uuid.UUID) (*model.Patient, error)
	List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, int, error)
	Update(ctx context.Context, p *model.Patient) error
	SoftDelete(ctx context.Context, clinicID, id uuid.UUID) error
	CountUpcomingAppointments(ctx context.Context, clinicID, patientID uuid.UUID, after time.Time) (int, error)
	ListIDsForClinic(ctx context.Context, clinicID uuid.UUID) ([]uuid.UUID, error)
}

type AppointmentRepository interface {
	Create(ctx context.Context, apt *model.Appointment) error
	Get(ctx context.Context, clinicID, id uuid.UUID) (*model.Appointment, error)
	List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
	Update(ctx context.Context, apt *model.Appointment) error
	SoftDelete(ctx context.Context, clinicID, id uuid.UUID) error
	CheckConflict(ctx context.Context, providerID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error)
	ListInRange(ctx context.Context, clinicID uuid.UUID, start, end time.Time) ([]*model.Appointment, error)
}

type FlowRepository interface {
	Create(ctx context.Context, fs *model.PatientFlowState) error
	GetByAppointment(ctx context.Context, clinicID, appointmentID uuid.UUID) (*model.PatientFlowState, error)
	Update(ctx context.Context, fs *model.PatientFlowState) error
	ListInRange(ctx context.Context, filters *model.FlowFilters) ([]*model.PatientFlowState, error)
}

type ChairRepository interface {
	Create(ctx context.Context, chair *model.TreatmentChair) error
	Get(ctx context.Context, clinicID, id uuid.UUID) (*model.TreatmentChair, error)
	List(ctx context.Context, clinicID uuid.UUID) ([]*model.TreatmentChair, error)
	Update(ctx context.Context, chair *model.TreatmentChair) error
	SoftDelete(ctx context.Context, clinicID, id uuid.UUID) error
	OpenOccupancy(ctx context.Context, occ *model.ResourceOccupancy) error
	CloseOccupancy(ctx context.Context, clinicID, chairID uuid.UUID, releasedAt time.Time) error
}

type LabOrderRepository interface {
	Create(ctx context.Context, order *model.LabOrder) error
	Get(ctx context.Context, clinicID, id uuid.UUID) (*model.LabOrder, error)
	GetMany(ctx context.Context, clinicID uuid.UUID, ids []uuid.UUID) ([]*model.LabOrder, error)
	List(ctx context.Context, filters *model.LabOrderFilters) ([]*model.LabOrder, error)
	Update(ctx context.Context, order *model.LabOrder) error
	AppendStatusLog(ctx context.Context, entry *model.LabOrderStatusLog) error
	ListStatusLog(ctx context.Context, clinicID, orderID uuid.UUID) ([]*model.LabOrderStatusLog, error)
}

type RemakeRepository interface {
	Create(ctx context.Context, r *model.RemakeRequest) error
	Get(ctx context.Context, clinicID, id uuid.UUID) (*model.RemakeRequest, error)
	ListByOrder(ctx context.Context, clinicID, orderID uuid.UUID) ([]*model.RemakeRequest, error)
	Update(ctx context.Context, r *model.RemakeRequest) error
}

type StaffRepository interface {
	Create(ctx context.Context, s *model.Staff) error
	Get(ctx context.Context, clinicID, id uuid.UUID) (*model.Staff, error)
	GetByEmail(ctx context.Context, email string) (*model.Staff, error)
	List(ctx context.Context, clinicID uuid.UUID) ([]*model.Staff, error)
	Update(ctx context.Context, s *model.Staff) error
	Terminate(ctx context.Context, clinicID, id uuid.UUID, reason string, effective time.Time) error
}

type ImagingRepository interface {
	Create(ctx context.Context, doc *model.ImagingDocument) error
	Get(ctx context.Context, clinicID, id uuid.UUID) (*model.ImagingDocument, error)
	ListByPatient(ctx context.Context, clinicID, patientID uuid.UUID) ([]*model.ImagingDocument, error)
	Replace(ctx context.Context, old *model.ImagingDocument, replacement *model.ImagingDocument) error
	SoftDelete(ctx context.Context, clinicID, id uuid.UUID) error
}

type SterilizationRepository interface {
	Create(ctx context.Context, cycle *model.SterilizationCycle) error
	Get(ctx context.Context, clinicID, id uuid.UUID) (*model.SterilizationCycle, error)
	GetByNumber(ctx context.Context, clinicID uuid.UUID, cycleNumber int) (*model.SterilizationCycle, error)
	List(ctx context.Context, clinicID uuid.UUID, limit int) ([]*model.SterilizationCycle, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *model.OutboxEvent) error
	GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error
}

type ContentRepository interface {
	ListDueForClinic(ctx context.Context, clinicID uuid.UUID, now time.Time) ([]*model.ContentTrigger, error)
	MarkOutcome(ctx context.Context, id uuid.UUID, status model.ContentTriggerStatus, sentAt *time.Time, errMsg *string) error
}

// Tx abstracts the handful of multi-statement writes that need atomicity.
type Tx interface {
	WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}
