package imaging

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
	repo        repository.ImagingRepository
	patientRepo repository.PatientRepository
	now         func() time.Time
}

func NewService(repo repository.ImagingRepository, patientRepo repository.PatientRepository) *Service {
	return &Service{repo: repo, patientRepo: patientRepo, now: time.Now}
}

func (s *Service) CreateDocument(ctx context.Context, clinicID uuid.UUID, req *model.CreateImagingDocumentRequest) (*model.ImagingDocument, error) {
	if _, err := s.patientRepo.Get(ctx, clinicID, req.PatientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, err
	}

	now := s.now()
	doc := &model.ImagingDocument{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ClinicID:    clinicID,
		PatientID:   req.PatientID,
		Kind:        req.Kind,
		StoragePath: req.StoragePath,
		ContentType: req.ContentType,
		Version:     1,
		TakenAt:     req.TakenAt,
		Notes:       req.Notes,
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Service) GetDocument(ctx context.Context, clinicID, id uuid.UUID) (*model.ImagingDocument, error) {
	doc, err := s.repo.Get(ctx, clinicID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("imaging document", err)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Service) ListByPatient(ctx context.Context, clinicID, patientID uuid.UUID) ([]*model.ImagingDocument, error) {
	return s.repo.ListByPatient(ctx, clinicID, patientID)
}

// ReplaceDocument supersedes the current version and inserts the next one
// atomically. Replacing an already superseded version is rejected so two
// concurrent replacements cannot fork the version chain.
func (s *Service) ReplaceDocument(ctx context.Context, clinicID, id uuid.UUID, req *model.ReplaceImagingDocumentRequest) (*model.ImagingDocument, error) {
	old, err := s.GetDocument(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}
	if old.SupersededAt != nil {
		return nil, apperrors.Conflict("document version has already been superseded")
	}

	now := s.now()
	replacement := &model.ImagingDocument{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ClinicID:    clinicID,
		PatientID:   old.PatientID,
		Kind:        old.Kind,
		StoragePath: req.StoragePath,
		ContentType: req.ContentType,
		Version:     old.Version + 1,
		TakenAt:     now,
		Notes:       req.Notes,
	}

	old.SupersededAt = &now
	old.SupersededBy = &replacement.ID

	if err := s.repo.Replace(ctx, old, replacement); err != nil {
		return nil, err
	}
	return replacement, nil
}

func (s *Service) DeleteDocument(ctx context.Context, clinicID, id uuid.UUID) error {
	if _, err := s.GetDocument(ctx, clinicID, id); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, clinicID, id)
}
