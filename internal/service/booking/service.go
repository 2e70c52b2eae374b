package booking

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
	"github.com/orcadental/practice-api/internal/service/flow"
	apperrors "github.com/orcadental/practice-api/pkg/errors"
)

const (
	MinAppointmentDuration = 5 * time.Minute
	MaxAppointmentDuration = 4 * time.Hour
	MaxAdvanceBooking      = 365 * 24 * time.Hour
)

type Service struct {
	repo    repository.AppointmentRepository
	flowSvc *flow.Service
	events  *event.Service
	now     func() time.Time
}

func NewService(repo repository.AppointmentRepository, flowSvc *flow.Service, events *event.Service) *Service {
	return &Service{
		repo:    repo,
		flowSvc: flowSvc,
		events:  events,
		now:     time.Now,
	}
}

func (s *Service) CreateAppointment(ctx context.Context, clinicID uuid.UUID, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if err := s.validateTimes(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	// Only new bookings are held to this; edits to an appointment already
	// underway still go through.
	if req.StartTime.Before(s.now()) {
		return nil, apperrors.Validation("appointment cannot start in the past", nil)
	}

	hasConflict, err := s.repo.CheckConflict(ctx, req.ProviderID, req.StartTime, req.EndTime, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check conflicts: %w", err)
	}
	if hasConflict {
		return nil, apperrors.Conflict("appointment conflicts with an existing booking for this provider")
	}

	now := s.now()
	apt := &model.Appointment{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ClinicID:          clinicID,
		PatientID:         req.PatientID,
		ProviderID:        req.ProviderID,
		AppointmentTypeID: req.AppointmentTypeID,
		ChairID:           req.ChairID,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		Status:            model.AppointmentStatusScheduled,
		Notes:             req.Notes,
	}

	if err := s.repo.Create(ctx, apt); err != nil {
		return nil, err
	}

	if _, err := s.flowSvc.EnsureState(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to create flow state: %w", err)
	}

	if err := s.events.Emit(ctx, "appointment.created", apt); err != nil {
		log.Warn().Err(err).Msg("failed to emit appointment event")
	}

	return apt, nil
}

func (s *Service) GetAppointment(ctx context.Context, clinicID, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, clinicID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("appointment", err)
	}
	if err != nil {
		return nil, err
	}
	return apt, nil
}

func (s *Service) ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) UpdateAppointment(ctx context.Context, clinicID, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	apt, err := s.GetAppointment(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}

	if apt.Status.Terminal() {
		return nil, apperrors.Conflict(fmt.Sprintf("cannot modify a %s appointment", apt.Status))
	}

	if req.StartTime != nil {
		apt.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		apt.EndTime = *req.EndTime
	}
	if req.ChairID != nil {
		apt.ChairID = req.ChairID
	}
	if req.Notes != nil {
		apt.Notes = *req.Notes
	}

	if err := s.validateTimes(apt.StartTime, apt.EndTime); err != nil {
		return nil, err
	}

	if req.StartTime != nil || req.EndTime != nil {
		hasConflict, err := s.repo.CheckConflict(ctx, apt.ProviderID, apt.StartTime, apt.EndTime, &apt.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check conflicts: %w", err)
		}
		if hasConflict {
			return nil, apperrors.Conflict("appointment conflicts with an existing booking for this provider")
		}
	}

	apt.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, apt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, err
	}

	if err := s.events.Emit(ctx, "appointment.updated", apt); err != nil {
		log.Warn().Err(err).Msg("failed to emit appointment event")
	}

	return apt, nil
}

// Transition advances the appointment status along the allowed adjacency set.
func (s *Service) Transition(ctx context.Context, clinicID, id uuid.UUID, req *model.TransitionAppointmentRequest) (*model.Appointment, error) {
	apt, err := s.GetAppointment(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}

	if !apt.Status.CanTransition(req.Status) {
		return nil, apperrors.InvalidTransition(string(apt.Status), string(req.Status))
	}

	from := apt.Status
	apt.Status = req.Status
	if req.Status == model.AppointmentStatusCancelled {
		apt.CancelReason = req.CancelReason
	}
	apt.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, apt); err != nil {
		return nil, err
	}

	if err := s.events.Emit(ctx, "appointment.transition", map[string]interface{}{
		"appointment_id": apt.ID,
		"clinic_id":      clinicID,
		"from":           from,
		"to":             req.Status,
	}); err != nil {
		log.Warn().Err(err).Msg("failed to emit appointment event")
	}

	return apt, nil
}

func (s *Service) DeleteAppointment(ctx context.Context, clinicID, id uuid.UUID) error {
	apt, err := s.GetAppointment(ctx, clinicID, id)
	if err != nil {
		return err
	}

	// Only terminal appointments may be removed from the book.
	if !apt.Status.Terminal() {
		return apperrors.Conflict("only completed, cancelled or no-show appointments can be deleted")
	}

	if err := s.repo.SoftDelete(ctx, clinicID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("appointment", err)
		}
		return err
	}
	return nil
}

func (s *Service) validateTimes(start, end time.Time) error {
	duration := end.Sub(start)
	if duration < MinAppointmentDuration || duration > MaxAppointmentDuration {
		return apperrors.Validation(
			fmt.Sprintf("appointment duration must be between %v and %v", MinAppointmentDuration, MaxAppointmentDuration), nil)
	}
	if start.Sub(s.now()) > MaxAdvanceBooking {
		return apperrors.Validation(fmt.Sprintf("appointments cannot be booked more than %v in advance", MaxAdvanceBooking), nil)
	}
	return nil
}
