package patient

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/orcadental/practice-api/internal/model"
	"github.com/orcadental/practice-api/internal/repository"
	apperrors "github.com/orcadental/practice-api/pkg/errors"
)

type Service struct {
	repo repository.PatientRepository
	now  func() time.Time
}

func NewService(repo repository.PatientRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) CreatePatient(ctx context.Context, clinicID uuid.UUID, req *model.CreatePatientRequest) (*model.Patient, error) {
	now := s.now()
	p := &model.Patient{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ClinicID:    clinicID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		DateOfBirth: req.DateOfBirth,
		Notes:       req.Notes,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) GetPatient(ctx context.Context, clinicID, id uuid.UUID) (*model.Patient, error) {
	p, err := s.repo.Get(ctx, clinicID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("patient", err)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) ListPatients(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, int, error) {
	if filters.PageSize <= 0 {
		filters.PageSize = 50
	}
	if filters.Page <= 0 {
		filters.Page = 1
	}
	return s.repo.List(ctx, filters)
}

func (s *Service) UpdatePatient(ctx context.Context, clinicID, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	p, err := s.GetPatient(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		p.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		p.LastName = *req.LastName
	}
	if req.Email != nil {
		p.Email = *req.Email
	}
	if req.Phone != nil {
		p.Phone = *req.Phone
	}
	if req.Notes != nil {
		p.Notes = *req.Notes
	}
	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeletePatient soft-deletes a record, refusing while upcoming booked
// appointments still reference it.
func (s *Service) DeletePatient(ctx context.Context, clinicID, id uuid.UUID) error {
	if _, err := s.GetPatient(ctx, clinicID, id); err != nil {
		return err
	}

	upcoming, err := s.repo.CountUpcomingAppointments(ctx, clinicID, id, s.now())
	if err != nil {
		return err
	}
	if upcoming > 0 {
		return apperrors.UpcomingAppointments(upcoming)
	}

	if err := s.repo.SoftDelete(ctx, clinicID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("patient", err)
		}
		return err
	}
	return nil
}
