package imaging

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orcadental/practice-api/internal/model"
	apperrors "github.com/orcadental/practice-api/pkg/errors"
)

var clinicID = uuid.New()

type fakeImagingRepo struct {
	docs map[uuid.UUID]*model.ImagingDocument
}

func newFakeImagingRepo() *fakeImagingRepo {
	return &fakeImagingRepo{docs: make(map[uuid.UUID]*model.ImagingDocument)}
}

func (r *fakeImagingRepo) Create(ctx context.Context, doc *model.ImagingDocument) error {
	r.docs[doc.ID] = doc
	return nil
}

func (r *fakeImagingRepo) Get(ctx context.Context, clinic, id uuid.UUID) (*model.ImagingDocument, error) {
	doc, ok := r.docs[id]
	if !ok || doc.ClinicID != clinic {
		return nil, sql.ErrNoRows
	}
	return doc, nil
}

func (r *fakeImagingRepo) ListByPatient(ctx context.Context, clinic, patientID uuid.UUID) ([]*model.ImagingDocument, error) {
	var out []*model.ImagingDocument
	for _, d := range r.docs {
		if d.ClinicID == clinic && d.PatientID == patientID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeImagingRepo) Replace(ctx context.Context, old, replacement *model.ImagingDocument) error {
	r.docs[old.ID] = old
	r.docs[replacement.ID] = replacement
	return nil
}

func (r *fakeImagingRepo) SoftDelete(ctx context.Context, clinic, id uuid.UUID) error {
	delete(r.docs, id)
	return nil
}

type fakePatientRepo struct {
	patients map[uuid.UUID]*model.Patient
}

func (r *fakePatientRepo) Create(ctx context.Context, p *model.Patient) error {
	r.patients[p.ID] = p
	return nil
}

func (r *fakePatientRepo) Get(ctx context.Context, clinic, id uuid.UUID) (*model.Patient, error) {
	p, ok := r.patients[id]
	if !ok || p.ClinicID != clinic {
		return nil, sql.ErrNoRows
	}
	return p, nil
}

func (r *fakePatientRepo) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, int, error) {
	return nil, 0, nil
}

func (r *fakePatientRepo) Update(ctx context.Context, p *model.Patient) error { return nil }

func (r *fakePatientRepo) SoftDelete(ctx context.Context, clinic, id uuid.UUID) error { return nil }

func (r *fakePatientRepo) CountUpcomingAppointments(ctx context.Context, clinic, patientID uuid.UUID, after time.Time) (int, error) {
	return 0, nil
}

func (r *fakePatientRepo) ListIDsForClinic(ctx context.Context, clinic uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}

func newTestService() (*Service, uuid.UUID) {
	patientRepo := &fakePatientRepo{patients: make(map[uuid.UUID]*model.Patient)}
	patient := &model.Patient{Base: model.Base{ID: uuid.New()}, ClinicID: clinicID}
	patientRepo.patients[patient.ID] = patient

	svc := NewService(newFakeImagingRepo(), patientRepo)
	svc.now = func() time.Time { return time.Date(2026, 4, 2, 14, 0, 0, 0, time.UTC) }
	return svc, patient.ID
}

func createRequest(patientID uuid.UUID) *model.CreateImagingDocumentRequest {
	return &model.CreateImagingDocumentRequest{
		PatientID:   patientID,
		Kind:        "panoramic",
		StoragePath: "imaging/2026/04/pan-001.dcm",
		ContentType: "application/dicom",
		TakenAt:     time.Date(2026, 4, 1, 11, 0, 0, 0, time.UTC),
	}
}

func TestCreateDocumentRequiresPatient(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateDocument(context.Background(), clinicID, createRequest(uuid.New()))

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

func TestCreateDocumentStartsAtVersionOne(t *testing.T) {
	svc, patientID := newTestService()

	doc, err := svc.CreateDocument(context.Background(), clinicID, createRequest(patientID))
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Version)
	assert.Nil(t, doc.SupersededAt)
}

func TestReplaceDocument(t *testing.T) {
	svc, patientID := newTestService()

	doc, err := svc.CreateDocument(context.Background(), clinicID, createRequest(patientID))
	require.NoError(t, err)

	replacement, err := svc.ReplaceDocument(context.Background(), clinicID, doc.ID, &model.ReplaceImagingDocumentRequest{
		StoragePath: "imaging/2026/04/pan-001-v2.dcm",
		ContentType: "application/dicom",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, replacement.Version)
	assert.Equal(t, patientID, replacement.PatientID)
	assert.Equal(t, doc.Kind, replacement.Kind)

	require.NotNil(t, doc.SupersededAt)
	require.NotNil(t, doc.SupersededBy)
	assert.Equal(t, replacement.ID, *doc.SupersededBy)
}

func TestReplaceSupersededVersionRejected(t *testing.T) {
	svc, patientID := newTestService()

	doc, err := svc.CreateDocument(context.Background(), clinicID, createRequest(patientID))
	require.NoError(t, err)

	_, err = svc.ReplaceDocument(context.Background(), clinicID, doc.ID, &model.ReplaceImagingDocumentRequest{
		StoragePath: "v2.dcm",
		ContentType: "application/dicom",
	})
	require.NoError(t, err)

	// The old version is now superseded; replacing it again would fork the chain.
	_, err = svc.ReplaceDocument(context.Background(), clinicID, doc.ID, &model.ReplaceImagingDocumentRequest{
		StoragePath: "v2-again.dcm",
		ContentType: "application/dicom",
	})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
}
