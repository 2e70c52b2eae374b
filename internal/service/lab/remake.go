package lab

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/orcadental/practice-api/internal/model"
	apperrors "github.com/orcadental/practice-api/pkg/errors"
)

// Remake requests carry their own status progression plus an approval gate
// that is independent of it; the gate drives cost recovery, not fabrication.

func (s *Service) CreateRemake(ctx context.Context, clinicID uuid.UUID, req *model.CreateRemakeRequest) (*model.RemakeRequest, error) {
	if _, err := s.GetOrder(ctx, clinicID, req.LabOrderID); err != nil {
		return nil, err
	}

	now := s.now()
	remake := &model.RemakeRequest{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ClinicID:         clinicID,
		LabOrderID:       req.LabOrderID,
		Reason:           req.Reason,
		Status:           model.RemakeStatusRequested,
		RequiresApproval: req.RequiresApproval,
		RecoveryStatus:   model.RecoveryStatusPending,
		Notes:            req.Notes,
	}
	if err := s.remakeRepo.Create(ctx, remake); err != nil {
		return nil, err
	}
	return remake, nil
}

func (s *Service) GetRemake(ctx context.Context, clinicID, id uuid.UUID) (*model.RemakeRequest, error) {
	remake, err := s.remakeRepo.Get(ctx, clinicID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("remake request", err)
	}
	if err != nil {
		return nil, err
	}
	return remake, nil
}

func (s *Service) ListRemakesForOrder(ctx context.Context, clinicID, orderID uuid.UUID) ([]*model.RemakeRequest, error) {
	if _, err := s.GetOrder(ctx, clinicID, orderID); err != nil {
		return nil, err
	}
	return s.remakeRepo.ListByOrder(ctx, clinicID, orderID)
}

// TransitionRemake advances the fabrication status. A remake that still
// requires approval cannot move past requested.
func (s *Service) TransitionRemake(ctx context.Context, clinicID, id uuid.UUID, req *model.TransitionRemakeRequest) (*model.RemakeRequest, error) {
	remake, err := s.GetRemake(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}

	if !remake.Status.CanTransition(req.Status) {
		return nil, apperrors.InvalidTransition(string(remake.Status), string(req.Status))
	}

	if remake.RequiresApproval && remake.ApprovedAt == nil && req.Status != model.RemakeStatusCancelled {
		return nil, apperrors.Conflict("remake request is awaiting approval")
	}

	remake.Status = req.Status
	if req.Notes != "" {
		remake.Notes = req.Notes
	}
	remake.UpdatedAt = s.now()

	if err := s.remakeRepo.Update(ctx, remake); err != nil {
		return nil, err
	}

	if err := s.events.Emit(ctx, "remake.transition", map[string]interface{}{
		"remake_id": remake.ID,
		"clinic_id": clinicID,
		"status":    req.Status,
	}); err != nil {
		log.Warn().Err(err).Msg("failed to emit remake event")
	}

	return remake, nil
}

// ReviewRemake resolves the approval gate. Approval stamps approved_at and
// opens cost recovery; denial cancels the remake and writes off recovery.
func (s *Service) ReviewRemake(ctx context.Context, clinicID, id uuid.UUID, req *model.ReviewRemakeRequest, reviewer uuid.UUID) (*model.RemakeRequest, error) {
	remake, err := s.GetRemake(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}

	if !remake.RequiresApproval {
		return nil, apperrors.Conflict("remake request does not require approval")
	}
	if remake.Status.Terminal() {
		return nil, apperrors.Conflict("remake request is closed")
	}
	if remake.ApprovedAt != nil || remake.RecoveryStatus != model.RecoveryStatusPending {
		return nil, apperrors.Conflict("remake request has already been reviewed")
	}

	now := s.now()
	if req.Approve {
		remake.ApprovedAt = &now
		remake.ApprovedBy = &reviewer
		remake.RecoveryStatus = model.RecoveryStatusInProgress
	} else {
		remake.Status = model.RemakeStatusCancelled
		remake.RecoveryStatus = model.RecoveryStatusLost
	}
	if req.Notes != "" {
		remake.Notes = req.Notes
	}
	remake.UpdatedAt = now

	if err := s.remakeRepo.Update(ctx, remake); err != nil {
		return nil, err
	}
	return remake, nil
}

// RecordRecovery logs the outcome of a cost-recovery attempt.
func (s *Service) RecordRecovery(ctx context.Context, clinicID, id uuid.UUID, req *model.RecordRecoveryRequest) (*model.RemakeRequest, error) {
	remake, err := s.GetRemake(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}

	if remake.RecoveryStatus == model.RecoveryStatusRecovered || remake.RecoveryStatus == model.RecoveryStatusLost {
		return nil, apperrors.Conflict("recovery already resolved")
	}

	remake.RecoveryStatus = req.Outcome
	if req.Notes != "" {
		remake.Notes = req.Notes
	}
	remake.UpdatedAt = s.now()

	if err := s.remakeRepo.Update(ctx, remake); err != nil {
		return nil, err
	}
	return remake, nil
}
