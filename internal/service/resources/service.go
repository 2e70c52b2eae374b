package resources

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/orcadental/practice-api/internal/model"
	"github.com/orcadental/practice-api/internal/repository"
	apperrors "github.com/orcadental/practice-api/pkg/errors"
	"github.com/orcadental/practice-api/pkg/qr"
)

// Service manages treatment chairs and sterilization cycles, including the
// QR labels printed for sterilized instrument pouches.
type Service struct {
	chairRepo repository.ChairRepository
	sterRepo  repository.SterilizationRepository
	now       func() time.Time
}

func NewService(chairRepo repository.ChairRepository, sterRepo repository.SterilizationRepository) *Service {
	return &Service{
		chairRepo: chairRepo,
		sterRepo:  sterRepo,
		now:       time.Now,
	}
}

func (s *Service) CreateChair(ctx context.Context, clinicID uuid.UUID, req *model.CreateChairRequest) (*model.TreatmentChair, error) {
	now := s.now()
	chair := &model.TreatmentChair{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ClinicID: clinicID,
		Name:     req.Name,
		Room:     req.Room,
		Status:   model.ChairStatusAvailable,
	}
	if err := s.chairRepo.Create(ctx, chair); err != nil {
		return nil, err
	}
	return chair, nil
}

func (s *Service) GetChair(ctx context.Context, clinicID, id uuid.UUID) (*model.TreatmentChair, error) {
	chair, err := s.chairRepo.Get(ctx, clinicID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("chair", err)
	}
	if err != nil {
		return nil, err
	}
	return chair, nil
}

func (s *Service) ListChairs(ctx context.Context, clinicID uuid.UUID) ([]*model.TreatmentChair, error) {
	return s.chairRepo.List(ctx, clinicID)
}

// UpdateChair handles renames and manual status overrides. Taking an occupied
// chair out of service is rejected; flow completion has to release it first.
func (s *Service) UpdateChair(ctx context.Context, clinicID, id uuid.UUID, req *model.UpdateChairRequest) (*model.TreatmentChair, error) {
	chair, err := s.GetChair(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		chair.Name = *req.Name
	}
	if req.Room != nil {
		chair.Room = *req.Room
	}
	if req.Status != nil {
		if chair.Status == model.ChairStatusOccupied && *req.Status == model.ChairStatusOutOfService {
			return nil, apperrors.Conflict("chair is occupied")
		}
		chair.Status = *req.Status
	}
	chair.UpdatedAt = s.now()

	if err := s.chairRepo.Update(ctx, chair); err != nil {
		return nil, err
	}
	return chair, nil
}

func (s *Service) DeleteChair(ctx context.Context, clinicID, id uuid.UUID) error {
	chair, err := s.GetChair(ctx, clinicID, id)
	if err != nil {
		return err
	}
	if chair.Status == model.ChairStatusOccupied {
		return apperrors.Conflict("chair is occupied")
	}
	return s.chairRepo.SoftDelete(ctx, clinicID, id)
}

func (s *Service) CreateCycle(ctx context.Context, clinicID uuid.UUID, req *model.CreateSterilizationCycleRequest) (*model.SterilizationCycle, error) {
	if existing, err := s.sterRepo.GetByNumber(ctx, clinicID, req.CycleNumber); err == nil && existing != nil {
		return nil, apperrors.Conflict("cycle number already recorded")
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	now := s.now()
	cycle := &model.SterilizationCycle{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ClinicID:          clinicID,
		CycleNumber:       req.CycleNumber,
		CycleType:         req.CycleType,
		Program:           req.Program,
		Technician:        req.Technician,
		EquipmentType:     req.EquipmentType,
		SterilizerSerial:  req.SterilizerSerial,
		EquipmentID:       req.EquipmentID,
		SterilizationDate: req.SterilizationDate,
		ExpirationDate:    req.ExpirationDate,
		Passed:            req.Passed,
	}
	if err := s.sterRepo.Create(ctx, cycle); err != nil {
		return nil, err
	}
	return cycle, nil
}

func (s *Service) GetCycle(ctx context.Context, clinicID, id uuid.UUID) (*model.SterilizationCycle, error) {
	cycle, err := s.sterRepo.Get(ctx, clinicID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("sterilization cycle", err)
	}
	if err != nil {
		return nil, err
	}
	return cycle, nil
}

func (s *Service) ListCycles(ctx context.Context, clinicID uuid.UUID, limit int) ([]*model.SterilizationCycle, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.sterRepo.List(ctx, clinicID, limit)
}

// CycleLabel renders the QR payload for a recorded cycle. Failed cycles never
// get a label.
func (s *Service) CycleLabel(ctx context.Context, clinicID, id uuid.UUID) (string, error) {
	cycle, err := s.GetCycle(ctx, clinicID, id)
	if err != nil {
		return "", err
	}
	if !cycle.Passed {
		return "", apperrors.Conflict("cannot label a failed cycle")
	}

	return qr.Generate(qr.CycleLabel{
		CycleID:           cycle.ID,
		CycleNumber:       cycle.CycleNumber,
		CycleType:         cycle.CycleType,
		SterilizationDate: cycle.SterilizationDate,
		ExpirationDate:    cycle.ExpirationDate,
		Technician:        cycle.Technician,
		Program:           cycle.Program,
		EquipmentType:     cycle.EquipmentType,
		SterilizerSerial:  cycle.SterilizerSerial,
		EquipmentID:       cycle.EquipmentID,
	})
}

// ScanResult is what a label scan resolves to. Expired tells the front desk
// to re-sterilize; the cycle pointer is nil for legacy labels that no longer
// match a stored cycle.
type ScanResult struct {
	Label   *qr.CycleLabel            `json:"label"`
	Cycle   *model.SterilizationCycle `json:"cycle,omitempty"`
	Expired bool                      `json:"expired"`
}

// ScanLabel decodes a scanned label and resolves it against stored cycles.
func (s *Service) ScanLabel(ctx context.Context, clinicID uuid.UUID, content string) (*ScanResult, error) {
	label, err := qr.Parse(content)
	if err != nil {
		return nil, apperrors.Validation(err.Error(), nil)
	}

	result := &ScanResult{
		Label:   label,
		Expired: label.ExpirationDate.Before(s.now()),
	}

	if label.Legacy {
		cycle, err := s.sterRepo.GetByNumber(ctx, clinicID, label.CycleNumber)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		result.Cycle = cycle
		return result, nil
	}

	cycle, err := s.sterRepo.Get(ctx, clinicID, label.CycleID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("sterilization cycle", err)
	}
	if err != nil {
		return nil, err
	}
	result.Cycle = cycle
	return result, nil
}
