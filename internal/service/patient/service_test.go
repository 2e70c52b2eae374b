package patient

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

type fakePatientRepo struct {
	patients map[uuid.UUID]*model.Patient
	upcoming int
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{patients: make(map[uuid.UUID]*model.Patient)}
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
	var out []*model.Patient
	for _, p := range r.patients {
		if p.ClinicID == filters.ClinicID {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

func (r *fakePatientRepo) Update(ctx context.Context, p *model.Patient) error {
	r.patients[p.ID] = p
	return nil
}

func (r *fakePatientRepo) SoftDelete(ctx context.Context, clinic, id uuid.UUID) error {
	delete(r.patients, id)
	return nil
}

func (r *fakePatientRepo) CountUpcomingAppointments(ctx context.Context, clinic, patientID uuid.UUID, after time.Time) (int, error) {
	return r.upcoming, nil
}

func (r *fakePatientRepo) ListIDsForClinic(ctx context.Context, clinic uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}

func newTestService() (*Service, *fakePatientRepo) {
	repo := newFakePatientRepo()
	svc := NewService(repo)
	svc.now = func() time.Time { return time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC) }
	return svc, repo
}

func TestDeletePatientBlockedByUpcomingAppointments(t *testing.T) {
	svc, repo := newTestService()

	p, err := svc.CreatePatient(context.Background(), clinicID, &model.CreatePatientRequest{
		FirstName: "Iris",
		LastName:  "Okafor",
	})
	require.NoError(t, err)

	repo.upcoming = 2
	err = svc.DeletePatient(context.Background(), clinicID, p.ID)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeUpcomingAppointments, appErr.Code)

	// Still there.
	_, err = svc.GetPatient(context.Background(), clinicID, p.ID)
	assert.NoError(t, err)

	repo.upcoming = 0
	require.NoError(t, svc.DeletePatient(context.Background(), clinicID, p.ID))

	_, err = svc.GetPatient(context.Background(), clinicID, p.ID)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

func TestListPatientsDefaultsPaging(t *testing.T) {
	svc, _ := newTestService()

	filters := &model.PatientFilters{ClinicID: clinicID}
	_, _, err := svc.ListPatients(context.Background(), filters)
	require.NoError(t, err)

	assert.Equal(t, 1, filters.Page)
	assert.Equal(t, 50, filters.PageSize)
}

func TestGetPatientScopedToClinic(t *testing.T) {
	svc, _ := newTestService()

	p, err := svc.CreatePatient(context.Background(), clinicID, &model.CreatePatientRequest{
		FirstName: "Sam",
		LastName:  "Liu",
	})
	require.NoError(t, err)

	_, err = svc.GetPatient(context.Background(), uuid.New(), p.ID)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}
