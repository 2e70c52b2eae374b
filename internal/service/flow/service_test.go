package flow

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orcadental/practice-api/internal/model"
	"github.com/orcadental/practice-api/internal/service/event"
	apperrors "github.com/orcadental/practice-api/pkg/errors"
)

type fakeFlowRepo struct {
	states map[uuid.UUID]*model.PatientFlowState // keyed by appointment ID
}

func newFakeFlowRepo() *fakeFlowRepo {
	return &fakeFlowRepo{states: make(map[uuid.UUID]*model.PatientFlowState)}
}

func (r *fakeFlowRepo) Create(ctx context.Context, fs *model.PatientFlowState) error {
	r.states[fs.AppointmentID] = fs
	return nil
}

func (r *fakeFlowRepo) GetByAppointment(ctx context.Context, clinicID, appointmentID uuid.UUID) (*model.PatientFlowState, error) {
	fs, ok := r.states[appointmentID]
	if !ok || fs.ClinicID != clinicID {
		return nil, sql.ErrNoRows
	}
	return fs, nil
}

func (r *fakeFlowRepo) Update(ctx context.Context, fs *model.PatientFlowState) error {
	r.states[fs.AppointmentID] = fs
	return nil
}

func (r *fakeFlowRepo) ListInRange(ctx context.Context, filters *model.FlowFilters) ([]*model.PatientFlowState, error) {
	var out []*model.PatientFlowState
	for _, fs := range r.states {
		if fs.ClinicID == filters.ClinicID {
			out = append(out, fs)
		}
	}
	return out, nil
}

type fakeAppointmentRepo struct {
	appointments map[uuid.UUID]*model.Appointment
}

func newFakeAppointmentRepo(appointments ...*model.Appointment) *fakeAppointmentRepo {
	r := &fakeAppointmentRepo{appointments: make(map[uuid.UUID]*model.Appointment)}
	for _, apt := range appointments {
		r.appointments[apt.ID] = apt
	}
	return r
}

func (r *fakeAppointmentRepo) Create(ctx context.Context, apt *model.Appointment) error {
	r.appointments[apt.ID] = apt
	return nil
}

func (r *fakeAppointmentRepo) Get(ctx context.Context, clinicID, id uuid.UUID) (*model.Appointment, error) {
	apt, ok := r.appointments[id]
	if !ok || apt.ClinicID != clinicID {
		return nil, sql.ErrNoRows
	}
	return apt, nil
}

func (r *fakeAppointmentRepo) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return nil, nil
}

func (r *fakeAppointmentRepo) Update(ctx context.Context, apt *model.Appointment) error {
	r.appointments[apt.ID] = apt
	return nil
}

func (r *fakeAppointmentRepo) SoftDelete(ctx context.Context, clinicID, id uuid.UUID) error {
	return nil
}

func (r *fakeAppointmentRepo) CheckConflict(ctx context.Context, providerID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error) {
	return false, nil
}

func (r *fakeAppointmentRepo) ListInRange(ctx context.Context, clinicID uuid.UUID, start, end time.Time) ([]*model.Appointment, error) {
	return nil, nil
}

type fakeChairRepo struct {
	chairs    map[uuid.UUID]*model.TreatmentChair
	occupancy []*model.ResourceOccupancy
	closed    int
}

func newFakeChairRepo(chairs ...*model.TreatmentChair) *fakeChairRepo {
	r := &fakeChairRepo{chairs: make(map[uuid.UUID]*model.TreatmentChair)}
	for _, c := range chairs {
		r.chairs[c.ID] = c
	}
	return r
}

func (r *fakeChairRepo) Create(ctx context.Context, chair *model.TreatmentChair) error {
	r.chairs[chair.ID] = chair
	return nil
}

func (r *fakeChairRepo) Get(ctx context.Context, clinicID, id uuid.UUID) (*model.TreatmentChair, error) {
	chair, ok := r.chairs[id]
	if !ok || chair.ClinicID != clinicID {
		return nil, sql.ErrNoRows
	}
	return chair, nil
}

func (r *fakeChairRepo) List(ctx context.Context, clinicID uuid.UUID) ([]*model.TreatmentChair, error) {
	return nil, nil
}

func (r *fakeChairRepo) Update(ctx context.Context, chair *model.TreatmentChair) error {
	r.chairs[chair.ID] = chair
	return nil
}

func (r *fakeChairRepo) SoftDelete(ctx context.Context, clinicID, id uuid.UUID) error {
	return nil
}

func (r *fakeChairRepo) OpenOccupancy(ctx context.Context, occ *model.ResourceOccupancy) error {
	r.occupancy = append(r.occupancy, occ)
	return nil
}

func (r *fakeChairRepo) CloseOccupancy(ctx context.Context, clinicID, chairID uuid.UUID, releasedAt time.Time) error {
	r.closed++
	return nil
}

type fakeOutboxRepo struct{}

func (r *fakeOutboxRepo) Create(ctx context.Context, e *model.OutboxEvent) error { return nil }
func (r *fakeOutboxRepo) GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	return nil, nil
}
func (r *fakeOutboxRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error {
	return nil
}

type fixture struct {
	svc     *Service
	flow    *fakeFlowRepo
	apts    *fakeAppointmentRepo
	chairs  *fakeChairRepo
	clinic  uuid.UUID
	apt     *model.Appointment
	nowTime time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clinic := uuid.New()
	apt := &model.Appointment{
		Base:      model.Base{ID: uuid.New()},
		ClinicID:  clinic,
		PatientID: uuid.New(),
		StartTime: time.Date(2026, 6, 10, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 6, 10, 9, 30, 0, 0, time.UTC),
		Status:    model.AppointmentStatusScheduled,
	}

	f := &fixture{
		flow:    newFakeFlowRepo(),
		apts:    newFakeAppointmentRepo(apt),
		chairs:  newFakeChairRepo(),
		clinic:  clinic,
		apt:     apt,
		nowTime: time.Date(2026, 6, 10, 8, 45, 0, 0, time.UTC),
	}
	f.svc = NewService(f.flow, f.apts, f.chairs, event.NewService(&fakeOutboxRepo{}), nil)
	f.svc.now = func() time.Time { return f.nowTime }

	_, err := f.svc.EnsureState(context.Background(), apt)
	require.NoError(t, err)
	return f
}

func (f *fixture) transition(t *testing.T, stage model.FlowStage, chairID *uuid.UUID) (*model.PatientFlowState, error) {
	t.Helper()
	return f.svc.Transition(context.Background(), f.clinic, f.apt.ID, &model.TransitionFlowRequest{
		Stage:   stage,
		ChairID: chairID,
	}, uuid.New())
}

func TestEnsureStateIsIdempotent(t *testing.T) {
	f := newFixture(t)

	first := f.flow.states[f.apt.ID]
	again, err := f.svc.EnsureState(context.Background(), f.apt)
	require.NoError(t, err)
	assert.Same(t, first, again)
}

func TestTransitionStampsTimestamps(t *testing.T) {
	f := newFixture(t)

	fs, err := f.transition(t, model.FlowStageCheckedIn, nil)
	require.NoError(t, err)
	require.NotNil(t, fs.CheckedInAt)
	assert.True(t, fs.CheckedInAt.Equal(f.nowTime))

	f.nowTime = f.nowTime.Add(5 * time.Minute)
	fs, err = f.transition(t, model.FlowStageWaiting, nil)
	require.NoError(t, err)
	require.NotNil(t, fs.CurrentWaitStartedAt)
	assert.True(t, fs.CurrentWaitStartedAt.Equal(f.nowTime))
}

func TestTransitionRejectsIllegalMove(t *testing.T) {
	f := newFixture(t)

	_, err := f.transition(t, model.FlowStageCompleted, nil)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeInvalidTransition, appErr.Code)
}

func TestTransitionSyncsAppointmentStatus(t *testing.T) {
	f := newFixture(t)

	_, err := f.transition(t, model.FlowStageCheckedIn, nil)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusArrived, f.apt.Status)
}

func TestSeatingRequiresChair(t *testing.T) {
	f := newFixture(t)

	_, err := f.transition(t, model.FlowStageCheckedIn, nil)
	require.NoError(t, err)
	_, err = f.transition(t, model.FlowStageWaiting, nil)
	require.NoError(t, err)

	_, err = f.transition(t, model.FlowStageInChair, nil)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeValidation, appErr.Code)
}

func TestSeatingOccupiesChairAndClearsWait(t *testing.T) {
	f := newFixture(t)
	chair := &model.TreatmentChair{
		Base:     model.Base{ID: uuid.New()},
		ClinicID: f.clinic,
		Name:     "Chair 1",
		Status:   model.ChairStatusAvailable,
	}
	f.chairs.chairs[chair.ID] = chair

	_, err := f.transition(t, model.FlowStageCheckedIn, nil)
	require.NoError(t, err)
	_, err = f.transition(t, model.FlowStageWaiting, nil)
	require.NoError(t, err)

	f.nowTime = f.nowTime.Add(12 * time.Minute)
	fs, err := f.transition(t, model.FlowStageInChair, &chair.ID)
	require.NoError(t, err)

	assert.Equal(t, model.ChairStatusOccupied, chair.Status)
	require.Len(t, f.chairs.occupancy, 1)
	assert.Equal(t, chair.ID, f.chairs.occupancy[0].ChairID)
	require.NotNil(t, fs.SeatedAt)
	assert.Nil(t, fs.CurrentWaitStartedAt, "seating ends the wait")
	assert.Equal(t, model.AppointmentStatusInProgress, f.apt.Status)
}

func TestSeatingRejectsBusyChair(t *testing.T) {
	f := newFixture(t)
	chair := &model.TreatmentChair{
		Base:     model.Base{ID: uuid.New()},
		ClinicID: f.clinic,
		Name:     "Chair 2",
		Status:   model.ChairStatusOccupied,
	}
	f.chairs.chairs[chair.ID] = chair

	_, err := f.transition(t, model.FlowStageCheckedIn, nil)
	require.NoError(t, err)
	_, err = f.transition(t, model.FlowStageWaiting, nil)
	require.NoError(t, err)

	_, err = f.transition(t, model.FlowStageInChair, &chair.ID)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
}

func TestCompletionReleasesChair(t *testing.T) {
	f := newFixture(t)
	chair := &model.TreatmentChair{
		Base:     model.Base{ID: uuid.New()},
		ClinicID: f.clinic,
		Name:     "Chair 3",
		Status:   model.ChairStatusAvailable,
	}
	f.chairs.chairs[chair.ID] = chair

	_, err := f.transition(t, model.FlowStageCheckedIn, nil)
	require.NoError(t, err)
	_, err = f.transition(t, model.FlowStageWaiting, nil)
	require.NoError(t, err)
	_, err = f.transition(t, model.FlowStageInChair, &chair.ID)
	require.NoError(t, err)

	fs, err := f.transition(t, model.FlowStageCompleted, nil)
	require.NoError(t, err)

	assert.Equal(t, model.ChairStatusAvailable, chair.Status)
	assert.Equal(t, 1, f.chairs.closed)
	require.NotNil(t, fs.CompletedAt)
	assert.Equal(t, model.AppointmentStatusCompleted, f.apt.Status)
}

func TestTransitionScopedToClinic(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Transition(context.Background(), uuid.New(), f.apt.ID, &model.TransitionFlowRequest{
		Stage: model.FlowStageCheckedIn,
	}, uuid.New())

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}
