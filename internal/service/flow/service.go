package flow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/orcadental/practice-api/internal/model"
	"github.com/orcadental/practice-api/internal/repository"
	"github.com/orcadental/practice-api/internal/service/event"
	apperrors "github.com/orcadental/practice-api/pkg/errors"
	"github.com/orcadental/practice-api/pkg/metrics"
)

// Service owns the patient flow state machine. Every stage change goes
// through the adjacency table in model; handlers never hardcode
// preconditions.
type Service struct {
	repo            repository.FlowRepository
	appointmentRepo repository.AppointmentRepository
	chairRepo       repository.ChairRepository
	events          *event.Service
	metrics         *metrics.Metrics
	now             func() time.Time
}

func NewService(
	repo repository.FlowRepository,
	appointmentRepo repository.AppointmentRepository,
	chairRepo repository.ChairRepository,
	events *event.Service,
	m *metrics.Metrics,
) *Service {
	return &Service{
		repo:            repo,
		appointmentRepo: appointmentRepo,
		chairRepo:       chairRepo,
		events:          events,
		metrics:         m,
		now:             time.Now,
	}
}

// appointmentStatusFor maps flow stages to the appointment status they imply.
// Not every stage moves the appointment.
var appointmentStatusFor = map[model.FlowStage]model.AppointmentStatus{
	model.FlowStageCheckedIn: model.AppointmentStatusArrived,
	model.FlowStageInChair:   model.AppointmentStatusInProgress,
	model.FlowStageCompleted: model.AppointmentStatusCompleted,
	model.FlowStageNoShow:    model.AppointmentStatusNoShow,
	model.FlowStageCancelled: model.AppointmentStatusCancelled,
}

// EnsureState creates the scheduled flow state for a new appointment.
func (s *Service) EnsureState(ctx context.Context, apt *model.Appointment) (*model.PatientFlowState, error) {
	existing, err := s.repo.GetByAppointment(ctx, apt.ClinicID, apt.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to look up flow state: %w", err)
	}

	now := s.now()
	fs := &model.PatientFlowState{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ClinicID:      apt.ClinicID,
		AppointmentID: apt.ID,
		PatientID:     apt.PatientID,
		Stage:         model.FlowStageScheduled,
	}
	if err := s.repo.Create(ctx, fs); err != nil {
		return nil, err
	}
	return fs, nil
}

// Get returns the flow state for an appointment in the caller's clinic.
func (s *Service) Get(ctx context.Context, clinicID, appointmentID uuid.UUID) (*model.PatientFlowState, error) {
	fs, err := s.repo.GetByAppointment(ctx, clinicID, appointmentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("flow state", err)
	}
	if err != nil {
		return nil, err
	}
	return fs, nil
}

// Transition moves the flow state to the requested stage, stamping the
// matching timestamp and keeping the appointment status and chair occupancy
// in step.
func (s *Service) Transition(ctx context.Context, clinicID, appointmentID uuid.UUID, req *model.TransitionFlowRequest, actor uuid.UUID) (*model.PatientFlowState, error) {
	fs, err := s.repo.GetByAppointment(ctx, clinicID, appointmentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("flow state", err)
	}
	if err != nil {
		return nil, err
	}

	if !fs.Stage.CanTransition(req.Stage) {
		if s.metrics != nil {
			s.metrics.TransitionsDenied.WithLabelValues(string(fs.Stage), string(req.Stage)).Inc()
		}
		return nil, apperrors.InvalidTransition(string(fs.Stage), string(req.Stage))
	}

	apt, err := s.appointmentRepo.Get(ctx, clinicID, appointmentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("appointment", err)
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	from := fs.Stage
	fs.Stage = req.Stage
	fs.UpdatedAt = now
	if req.Priority != nil {
		fs.Priority = *req.Priority
	}

	s.stamp(fs, req.Stage, now)

	if err := s.applyChairChange(ctx, apt, fs, req, now); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, fs); err != nil {
		return nil, err
	}

	if next, ok := appointmentStatusFor[req.Stage]; ok && apt.Status.CanTransition(next) {
		apt.Status = next
		apt.UpdatedAt = now
		if err := s.appointmentRepo.Update(ctx, apt); err != nil {
			return nil, fmt.Errorf("failed to sync appointment status: %w", err)
		}
	}

	if s.metrics != nil {
		s.metrics.FlowTransitions.WithLabelValues(string(from), string(req.Stage)).Inc()
		if req.Stage == model.FlowStageInChair {
			s.metrics.FlowWaitMinutes.Observe(float64(fs.WaitMinutes(now)))
		}
	}

	if err := s.events.Emit(ctx, "patient_flow.transition", map[string]interface{}{
		"clinic_id":      clinicID,
		"appointment_id": appointmentID,
		"from":           from,
		"to":             req.Stage,
		"actor":          actor,
		"at":             now,
	}); err != nil {
		log.Warn().Err(err).Msg("failed to emit flow transition event")
	}

	return fs, nil
}

// stamp sets the timestamp matching the stage being entered. Entering
// WAITING or CALLED (re)starts the wait clock; leaving the waiting area
// clears it.
func (s *Service) stamp(fs *model.PatientFlowState, stage model.FlowStage, now time.Time) {
	switch stage {
	case model.FlowStageCheckedIn:
		fs.CheckedInAt = &now
	case model.FlowStageWaiting, model.FlowStageCalled:
		fs.CurrentWaitStartedAt = &now
	case model.FlowStageInChair:
		fs.SeatedAt = &now
		fs.CurrentWaitStartedAt = nil
	case model.FlowStageCompleted:
		fs.CompletedAt = &now
	case model.FlowStageCheckedOut:
		fs.CheckedOutAt = &now
	case model.FlowStageDeparted:
		fs.DepartedAt = &now
	}
}

func (s *Service) applyChairChange(ctx context.Context, apt *model.Appointment, fs *model.PatientFlowState, req *model.TransitionFlowRequest, now time.Time) error {
	switch req.Stage {
	case model.FlowStageInChair:
		chairID := apt.ChairID
		if req.ChairID != nil {
			chairID = req.ChairID
		}
		if chairID == nil {
			return apperrors.Validation("a chair is required to seat a patient", nil)
		}

		chair, err := s.chairRepo.Get(ctx, apt.ClinicID, *chairID)
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("chair", err)
		}
		if err != nil {
			return err
		}
		if chair.Status != model.ChairStatusAvailable {
			return apperrors.Conflict(fmt.Sprintf("chair %s is %s", chair.Name, chair.Status))
		}

		chair.Status = model.ChairStatusOccupied
		chair.UpdatedAt = now
		if err := s.chairRepo.Update(ctx, chair); err != nil {
			return err
		}
		apt.ChairID = chairID

		occ := &model.ResourceOccupancy{
			Base: model.Base{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			ClinicID:      apt.ClinicID,
			ChairID:       *chairID,
			AppointmentID: &apt.ID,
			OccupiedAt:    now,
		}
		if err := s.chairRepo.OpenOccupancy(ctx, occ); err != nil {
			return err
		}
		if s.metrics != nil {
			s.metrics.ChairsOccupied.Inc()
		}

	case model.FlowStageCompleted, model.FlowStageCancelled:
		if apt.ChairID == nil || fs.SeatedAt == nil {
			return nil
		}
		chair, err := s.chairRepo.Get(ctx, apt.ClinicID, *apt.ChairID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return err
		}
		if chair.Status == model.ChairStatusOccupied {
			chair.Status = model.ChairStatusAvailable
			chair.UpdatedAt = now
			if err := s.chairRepo.Update(ctx, chair); err != nil {
				return err
			}
			if err := s.chairRepo.CloseOccupancy(ctx, apt.ClinicID, chair.ID, now); err != nil {
				return err
			}
			if s.metrics != nil {
				s.metrics.ChairsOccupied.Dec()
			}
		}
	}
	return nil
}

// ListActive returns today's non-terminal flow states for the waiting-room
// board, highest priority first.
func (s *Service) ListActive(ctx context.Context, clinicID uuid.UUID) ([]*model.PatientFlowState, error) {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.repo.ListInRange(ctx, &model.FlowFilters{
		ClinicID: clinicID,
		Stages: []model.FlowStage{
			model.FlowStageCheckedIn,
			model.FlowStageWaiting,
			model.FlowStageCalled,
			model.FlowStageInChair,
		},
		StartDate: dayStart,
		EndDate:   dayStart.AddDate(0, 0, 1),
	})
}
