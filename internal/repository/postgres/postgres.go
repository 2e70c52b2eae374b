package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/orcadental/practice-api/internal/repository"
)

type clinicRepository struct {
	db *sqlx.DB
}

type patientRepository struct {
	db *sqlx.DB
}

type appointmentRepository struct {
	db *sqlx.DB
}

type flowRepository struct {
	db *sqlx.DB
}

type chairRepository struct {
	db *sqlx.DB
}

type labOrderRepository struct {
	db *sqlx.DB
}

type remakeRepository struct {
	db *sqlx.DB
}

type staffRepository struct {
	db *sqlx.DB
}

type imagingRepository struct {
	db *sqlx.DB
}

type sterilizationRepository struct {
	db *sqlx.DB
}

type outboxRepository struct {
	db *sqlx.DB
}

type contentRepository struct {
	db *sqlx.DB
}

func NewClinicRepository(db *sqlx.DB) repository.ClinicRepository {
	return &clinicRepository{db: db}
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func NewFlowRepository(db *sqlx.DB) repository.FlowRepository {
	return &flowRepository{db: db}
}

func NewChairRepository(db *sqlx.DB) repository.ChairRepository {
	return &chairRepository{db: db}
}

func NewLabOrderRepository(db *sqlx.DB) repository.LabOrderRepository {
	return &labOrderRepository{db: db}
}

func NewRemakeRepository(db *sqlx.DB) repository.RemakeRepository {
	return &remakeRepository{db: db}
}

func NewStaffRepository(db *sqlx.DB) repository.StaffRepository {
	return &staffRepository{db: db}
}

func NewImagingRepository(db *sqlx.DB) repository.ImagingRepository {
	return &imagingRepository{db: db}
}

func NewSterilizationRepository(db *sqlx.DB) repository.SterilizationRepository {
	return &sterilizationRepository{db: db}
}

func NewOutboxRepository(db *sqlx.DB) repository.OutboxRepository {
	return &outboxRepository{db: db}
}

func NewContentRepository(db *sqlx.DB) repository.ContentRepository {
	return &contentRepository{db: db}
}
