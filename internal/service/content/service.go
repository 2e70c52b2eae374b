package content

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/orcadental/practice-api/internal/model"
	"github.com/orcadental/practice-api/internal/repository"
	"github.com/orcadental/practice-api/internal/service/notification"
	"github.com/orcadental/practice-api/pkg/metrics"
)

// Service runs the content delivery pass. Clinics and triggers are processed
// sequentially; one clinic's failures never block another's, and a single
// trigger failure is recorded and skipped over.
type Service struct {
	clinicRepo  repository.ClinicRepository
	patientRepo repository.PatientRepository
	contentRepo repository.ContentRepository
	sender      notification.Sender
	metrics     *metrics.Metrics
	logger      zerolog.Logger
	now         func() time.Time
}

func NewService(
	clinicRepo repository.ClinicRepository,
	patientRepo repository.PatientRepository,
	contentRepo repository.ContentRepository,
	sender notification.Sender,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Service {
	return &Service{
		clinicRepo:  clinicRepo,
		patientRepo: patientRepo,
		contentRepo: contentRepo,
		sender:      sender,
		metrics:     m,
		logger:      logger,
		now:         time.Now,
	}
}

// Run executes one full delivery pass over all clinics.
func (s *Service) Run(ctx context.Context) error {
	clinics, err := s.clinicRepo.List(ctx)
	if err != nil {
		return err
	}

	for _, clinic := range clinics {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.runClinic(ctx, clinic.ID); err != nil {
			s.logger.Error().Err(err).Str("clinic_id", clinic.ID.String()).Msg("content pass failed for clinic")
		}
	}
	return nil
}

func (s *Service) runClinic(ctx context.Context, clinicID uuid.UUID) error {
	settings, err := s.clinicRepo.GetSettings(ctx, clinicID)
	if err != nil {
		return err
	}
	if !settings.ContentDelivery {
		return nil
	}

	triggers, err := s.contentRepo.ListDueForClinic(ctx, clinicID, s.now())
	if err != nil {
		return err
	}

	for _, trigger := range triggers {
		s.deliver(ctx, trigger)
	}
	return nil
}

func (s *Service) deliver(ctx context.Context, trigger *model.ContentTrigger) {
	patient, err := s.patientRepo.Get(ctx, trigger.ClinicID, trigger.PatientID)
	if err != nil {
		s.markFailed(ctx, trigger, "patient lookup failed: "+err.Error())
		return
	}
	if patient.Email == "" {
		s.markOutcome(ctx, trigger, model.ContentTriggerStatusSkipped, nil, strPtr("no email on file"))
		return
	}

	if err := s.sender.Send(patient.Email, trigger.Subject, trigger.Body); err != nil {
		s.markFailed(ctx, trigger, err.Error())
		return
	}

	sentAt := s.now()
	s.markOutcome(ctx, trigger, model.ContentTriggerStatusSent, &sentAt, nil)
}

func (s *Service) markFailed(ctx context.Context, trigger *model.ContentTrigger, reason string) {
	s.logger.Warn().Str("trigger_id", trigger.ID.String()).Str("reason", reason).Msg("content delivery failed")
	s.markOutcome(ctx, trigger, model.ContentTriggerStatusFailed, nil, &reason)
}

func (s *Service) markOutcome(ctx context.Context, trigger *model.ContentTrigger, status model.ContentTriggerStatus, sentAt *time.Time, errMsg *string) {
	if err := s.contentRepo.MarkOutcome(ctx, trigger.ID, status, sentAt, errMsg); err != nil {
		s.logger.Error().Err(err).Str("trigger_id", trigger.ID.String()).Msg("failed to record delivery outcome")
		return
	}
	if s.metrics != nil {
		s.metrics.ContentDeliveries.WithLabelValues(string(status)).Inc()
	}
}

func strPtr(s string) *string { return &s }
