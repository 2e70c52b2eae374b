package staff

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/orcadental/practice-api/internal/model"
	"github.com/orcadental/practice-api/internal/repository"
	apperrors "github.com/orcadental/practice-api/pkg/errors"
	"github.com/orcadental/practice-api/pkg/security"
)

type Service struct {
	repo repository.StaffRepository
	now  func() time.Time
}

func NewService(repo repository.StaffRepository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

func (s *Service) CreateStaff(ctx context.Context, clinicID uuid.UUID, req *model.CreateStaffRequest) (*model.Staff, error) {
	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.Validation(err.Error(), nil)
	}

	now := s.now()
	member := &model.Staff{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ClinicID:     clinicID,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Role:         req.Role,
		Status:       model.StaffStatusActive,
		PasswordHash: hash,
		HiredAt:      &now,
	}
	if err := s.repo.Create(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *Service) GetStaff(ctx context.Context, clinicID, id uuid.UUID) (*model.Staff, error) {
	member, err := s.repo.Get(ctx, clinicID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("staff member", err)
	}
	if err != nil {
		return nil, err
	}
	return member, nil
}

func (s *Service) ListStaff(ctx context.Context, clinicID uuid.UUID) ([]*model.Staff, error) {
	return s.repo.List(ctx, clinicID)
}

func (s *Service) UpdateStaff(ctx context.Context, clinicID, id uuid.UUID, req *model.UpdateStaffRequest) (*model.Staff, error) {
	member, err := s.GetStaff(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}

	if member.Status == model.StaffStatusTerminated {
		return nil, apperrors.Conflict("cannot modify a terminated staff member")
	}

	if req.FirstName != nil {
		member.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		member.LastName = *req.LastName
	}
	if req.Role != nil {
		member.Role = *req.Role
	}
	if req.Status != nil {
		member.Status = *req.Status
	}
	member.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// Terminate runs the termination workflow: the repository deactivates the
// member, ends their assignments and writes the audit row in one transaction.
func (s *Service) Terminate(ctx context.Context, clinicID, id uuid.UUID, req *model.TerminateStaffRequest) (*model.Staff, error) {
	member, err := s.GetStaff(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}

	if member.Status == model.StaffStatusTerminated {
		return nil, apperrors.Conflict("staff member is already terminated")
	}

	effective := s.now()
	if req.EffectiveDate != nil {
		effective = *req.EffectiveDate
	}

	if err := s.repo.Terminate(ctx, clinicID, id, req.Reason, effective); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("staff member", err)
		}
		return nil, err
	}

	member.Status = model.StaffStatusTerminated
	member.TerminatedAt = &effective
	return member, nil
}
