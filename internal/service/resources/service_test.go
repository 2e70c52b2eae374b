package resources

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orcadental/practice-api/internal/model"
	apperrors "github.com/orcadental/practice-api/pkg/errors"
	"github.com/orcadental/practice-api/pkg/qr"
)

var clinicID = uuid.New()

type fakeChairRepo struct {
	chairs map[uuid.UUID]*model.TreatmentChair
}

func newFakeChairRepo() *fakeChairRepo {
	return &fakeChairRepo{chairs: make(map[uuid.UUID]*model.TreatmentChair)}
}

func (r *fakeChairRepo) Create(ctx context.Context, chair *model.TreatmentChair) error {
	r.chairs[chair.ID] = chair
	return nil
}

func (r *fakeChairRepo) Get(ctx context.Context, clinic, id uuid.UUID) (*model.TreatmentChair, error) {
	chair, ok := r.chairs[id]
	if !ok || chair.ClinicID != clinic {
		return nil, sql.ErrNoRows
	}
	return chair, nil
}

func (r *fakeChairRepo) List(ctx context.Context, clinic uuid.UUID) ([]*model.TreatmentChair, error) {
	var out []*model.TreatmentChair
	for _, c := range r.chairs {
		if c.ClinicID == clinic {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeChairRepo) Update(ctx context.Context, chair *model.TreatmentChair) error {
	r.chairs[chair.ID] = chair
	return nil
}

func (r *fakeChairRepo) SoftDelete(ctx context.Context, clinic, id uuid.UUID) error {
	delete(r.chairs, id)
	return nil
}

func (r *fakeChairRepo) OpenOccupancy(ctx context.Context, occ *model.ResourceOccupancy) error {
	return nil
}

func (r *fakeChairRepo) CloseOccupancy(ctx context.Context, clinic, chairID uuid.UUID, releasedAt time.Time) error {
	return nil
}

type fakeSterRepo struct {
	cycles map[uuid.UUID]*model.SterilizationCycle
}

func newFakeSterRepo() *fakeSterRepo {
	return &fakeSterRepo{cycles: make(map[uuid.UUID]*model.SterilizationCycle)}
}

func (r *fakeSterRepo) Create(ctx context.Context, cycle *model.SterilizationCycle) error {
	r.cycles[cycle.ID] = cycle
	return nil
}

func (r *fakeSterRepo) Get(ctx context.Context, clinic, id uuid.UUID) (*model.SterilizationCycle, error) {
	cycle, ok := r.cycles[id]
	if !ok || cycle.ClinicID != clinic {
		return nil, sql.ErrNoRows
	}
	return cycle, nil
}

func (r *fakeSterRepo) GetByNumber(ctx context.Context, clinic uuid.UUID, cycleNumber int) (*model.SterilizationCycle, error) {
	for _, c := range r.cycles {
		if c.ClinicID == clinic && c.CycleNumber == cycleNumber {
			return c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeSterRepo) List(ctx context.Context, clinic uuid.UUID, limit int) ([]*model.SterilizationCycle, error) {
	var out []*model.SterilizationCycle
	for _, c := range r.cycles {
		if c.ClinicID == clinic {
			out = append(out, c)
		}
	}
	return out, nil
}

func newTestService() (*Service, *fakeChairRepo, *fakeSterRepo) {
	chairRepo := newFakeChairRepo()
	sterRepo := newFakeSterRepo()
	svc := NewService(chairRepo, sterRepo)
	svc.now = func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC) }
	return svc, chairRepo, sterRepo
}

func cycleRequest(number int, passed bool) *model.CreateSterilizationCycleRequest {
	return &model.CreateSterilizationCycleRequest{
		CycleNumber:       number,
		CycleType:         "steam",
		Technician:        "R. Alvarez",
		SterilizationDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		ExpirationDate:    time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		Passed:            passed,
	}
}

func TestOccupiedChairGuards(t *testing.T) {
	svc, _, _ := newTestService()

	chair, err := svc.CreateChair(context.Background(), clinicID, &model.CreateChairRequest{Name: "Chair 1", Room: "A"})
	require.NoError(t, err)
	chair.Status = model.ChairStatusOccupied

	oos := model.ChairStatusOutOfService
	_, err = svc.UpdateChair(context.Background(), clinicID, chair.ID, &model.UpdateChairRequest{Status: &oos})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)

	err = svc.DeleteChair(context.Background(), clinicID, chair.ID)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)

	chair.Status = model.ChairStatusAvailable
	require.NoError(t, svc.DeleteChair(context.Background(), clinicID, chair.ID))
}

func TestCreateCycleRejectsDuplicateNumber(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CreateCycle(context.Background(), clinicID, cycleRequest(42, true))
	require.NoError(t, err)

	_, err = svc.CreateCycle(context.Background(), clinicID, cycleRequest(42, true))
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)

	// Another clinic can reuse the number.
	_, err = svc.CreateCycle(context.Background(), uuid.New(), cycleRequest(42, true))
	assert.NoError(t, err)
}

func TestCycleLabelRoundTrip(t *testing.T) {
	svc, _, _ := newTestService()

	cycle, err := svc.CreateCycle(context.Background(), clinicID, cycleRequest(7, true))
	require.NoError(t, err)

	content, err := svc.CycleLabel(context.Background(), clinicID, cycle.ID)
	require.NoError(t, err)

	result, err := svc.ScanLabel(context.Background(), clinicID, content)
	require.NoError(t, err)
	require.NotNil(t, result.Cycle)
	assert.Equal(t, cycle.ID, result.Cycle.ID)
	assert.Equal(t, 7, result.Label.CycleNumber)
	assert.False(t, result.Expired)
}

func TestCycleLabelFailedCycle(t *testing.T) {
	svc, _, _ := newTestService()

	cycle, err := svc.CreateCycle(context.Background(), clinicID, cycleRequest(9, false))
	require.NoError(t, err)

	_, err = svc.CycleLabel(context.Background(), clinicID, cycle.ID)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
}

func TestScanExpiredLabel(t *testing.T) {
	svc, _, sterRepo := newTestService()

	cycle, err := svc.CreateCycle(context.Background(), clinicID, cycleRequest(11, true))
	require.NoError(t, err)
	cycle.ExpirationDate = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	sterRepo.cycles[cycle.ID] = cycle

	content, err := svc.CycleLabel(context.Background(), clinicID, cycle.ID)
	require.NoError(t, err)

	result, err := svc.ScanLabel(context.Background(), clinicID, content)
	require.NoError(t, err)
	assert.True(t, result.Expired)
}

func TestScanLegacyLabel(t *testing.T) {
	svc, _, _ := newTestService()

	cycle, err := svc.CreateCycle(context.Background(), clinicID, cycleRequest(15, true))
	require.NoError(t, err)

	legacy := fmt.Sprintf("ORCA-STERIL-15-%s-20260301", cycle.ID.String()[:8])
	result, err := svc.ScanLabel(context.Background(), clinicID, legacy)
	require.NoError(t, err)

	assert.True(t, result.Label.Legacy)
	require.NotNil(t, result.Cycle)
	assert.Equal(t, cycle.ID, result.Cycle.ID)
	// Derived expiry: sterilization date plus the assumed shelf life.
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, qr.LegacyExpiryDays), result.Label.ExpirationDate)
}

func TestScanLegacyLabelUnknownCycle(t *testing.T) {
	svc, _, _ := newTestService()

	result, err := svc.ScanLabel(context.Background(), clinicID, "ORCA-STERIL-99-deadbeef-20250101")
	require.NoError(t, err)
	assert.Nil(t, result.Cycle)
	assert.True(t, result.Expired)
}

func TestScanGarbageRejected(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.ScanLabel(context.Background(), clinicID, "not-a-label")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeValidation, appErr.Code)
}
