package lab

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orcadental/practice-api/internal/model"
	"github.com/orcadental/practice-api/internal/service/event"
	apperrors "github.com/orcadental/practice-api/pkg/errors"
)

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*model.LabOrder
	log    []*model.LabOrderStatusLog
}

func newFakeOrderRepo(orders ...*model.LabOrder) *fakeOrderRepo {
	r := &fakeOrderRepo{orders: make(map[uuid.UUID]*model.LabOrder)}
	for _, o := range orders {
		r.orders[o.ID] = o
	}
	return r
}

func (r *fakeOrderRepo) Create(ctx context.Context, order *model.LabOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = order
	return nil
}

func (r *fakeOrderRepo) Get(ctx context.Context, clinicID, id uuid.UUID) (*model.LabOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok || order.ClinicID != clinicID {
		return nil, sql.ErrNoRows
	}
	return order, nil
}

func (r *fakeOrderRepo) GetMany(ctx context.Context, clinicID uuid.UUID, ids []uuid.UUID) ([]*model.LabOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.LabOrder
	for _, id := range ids {
		if order, ok := r.orders[id]; ok && order.ClinicID == clinicID {
			out = append(out, order)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) List(ctx context.Context, filters *model.LabOrderFilters) ([]*model.LabOrder, error) {
	return nil, nil
}

func (r *fakeOrderRepo) Update(ctx context.Context, order *model.LabOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = order
	return nil
}

func (r *fakeOrderRepo) AppendStatusLog(ctx context.Context, entry *model.LabOrderStatusLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = append(r.log, entry)
	return nil
}

func (r *fakeOrderRepo) ListStatusLog(ctx context.Context, clinicID, orderID uuid.UUID) ([]*model.LabOrderStatusLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.LabOrderStatusLog
	for _, entry := range r.log {
		if entry.LabOrderID == orderID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type fakeRemakeRepo struct {
	mu      sync.Mutex
	remakes map[uuid.UUID]*model.RemakeRequest
}

func newFakeRemakeRepo() *fakeRemakeRepo {
	return &fakeRemakeRepo{remakes: make(map[uuid.UUID]*model.RemakeRequest)}
}

func (r *fakeRemakeRepo) Create(ctx context.Context, remake *model.RemakeRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remakes[remake.ID] = remake
	return nil
}

func (r *fakeRemakeRepo) Get(ctx context.Context, clinicID, id uuid.UUID) (*model.RemakeRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	remake, ok := r.remakes[id]
	if !ok || remake.ClinicID != clinicID {
		return nil, sql.ErrNoRows
	}
	return remake, nil
}

func (r *fakeRemakeRepo) ListByOrder(ctx context.Context, clinicID, orderID uuid.UUID) ([]*model.RemakeRequest, error) {
	return nil, nil
}

func (r *fakeRemakeRepo) Update(ctx context.Context, remake *model.RemakeRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remakes[remake.ID] = remake
	return nil
}

type fakeOutboxRepo struct {
	mu     sync.Mutex
	events []*model.OutboxEvent
}

func (r *fakeOutboxRepo) Create(ctx context.Context, e *model.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *fakeOutboxRepo) GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error {
	return nil
}

var clinicID = uuid.New()

func order(status model.LabOrderStatus, vendor bool) *model.LabOrder {
	o := &model.LabOrder{
		Base:      model.Base{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		ClinicID:  clinicID,
		PatientID: uuid.New(),
		Status:    status,
	}
	if vendor {
		v := uuid.New()
		o.VendorID = &v
	}
	return o
}

func newTestService(repo *fakeOrderRepo) *Service {
	return NewService(repo, newFakeRemakeRepo(), event.NewService(&fakeOutboxRepo{}), nil)
}

func TestTransitionOrderAppendsLog(t *testing.T) {
	o := order(model.LabOrderStatusDraft, true)
	repo := newFakeOrderRepo(o)
	svc := newTestService(repo)

	actor := uuid.New()
	updated, err := svc.TransitionOrder(context.Background(), clinicID, o.ID, &model.TransitionLabOrderRequest{
		Status: model.LabOrderStatusSubmitted,
	}, actor)
	require.NoError(t, err)

	assert.Equal(t, model.LabOrderStatusSubmitted, updated.Status)
	assert.NotNil(t, updated.SubmittedAt)

	require.Len(t, repo.log, 1)
	assert.Equal(t, model.LabOrderStatusDraft, repo.log[0].FromStatus)
	assert.Equal(t, model.LabOrderStatusSubmitted, repo.log[0].ToStatus)
	assert.Equal(t, actor, repo.log[0].ChangedBy)
}

func TestTransitionOrderRejectsInvalidMove(t *testing.T) {
	o := order(model.LabOrderStatusDraft, true)
	svc := newTestService(newFakeOrderRepo(o))

	_, err := svc.TransitionOrder(context.Background(), clinicID, o.ID, &model.TransitionLabOrderRequest{
		Status: model.LabOrderStatusShipped,
	}, uuid.New())

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeInvalidTransition, appErr.Code)
}

func TestSubmitRequiresVendor(t *testing.T) {
	o := order(model.LabOrderStatusDraft, false)
	svc := newTestService(newFakeOrderRepo(o))

	_, err := svc.TransitionOrder(context.Background(), clinicID, o.ID, &model.TransitionLabOrderRequest{
		Status: model.LabOrderStatusSubmitted,
	}, uuid.New())

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeValidation, appErr.Code)
}

func TestBatchUpdateStatusFailsClosedOnMissingIDs(t *testing.T) {
	o1 := order(model.LabOrderStatusDraft, true)
	o2 := order(model.LabOrderStatusDraft, true)
	svc := newTestService(newFakeOrderRepo(o1, o2))

	missing := uuid.New()
	_, err := svc.BatchUpdateStatus(context.Background(), clinicID, &model.BatchStatusRequest{
		OrderIDs: []uuid.UUID{o1.ID, o2.ID, missing},
		Status:   model.LabOrderStatusSubmitted,
	}, uuid.New())

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeOrdersNotFound, appErr.Code)

	// Nothing was applied.
	assert.Equal(t, model.LabOrderStatusDraft, o1.Status)
	assert.Equal(t, model.LabOrderStatusDraft, o2.Status)
}

func TestBatchUpdateStatusIndependentRows(t *testing.T) {
	good := order(model.LabOrderStatusDraft, true)
	bad := order(model.LabOrderStatusShipped, true) // cannot move to submitted
	repo := newFakeOrderRepo(good, bad)
	svc := newTestService(repo)

	result, err := svc.BatchUpdateStatus(context.Background(), clinicID, &model.BatchStatusRequest{
		OrderIDs: []uuid.UUID{good.ID, bad.ID},
		Status:   model.LabOrderStatusSubmitted,
	}, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{good.ID}, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, bad.ID, result.Failed[0].OrderID)
	assert.Empty(t, result.Skipped)

	// No rollback of the row that succeeded.
	assert.Equal(t, model.LabOrderStatusSubmitted, good.Status)
	assert.Equal(t, model.LabOrderStatusShipped, bad.Status)
}

func TestBatchSubmitSkipsAndReports(t *testing.T) {
	draft := order(model.LabOrderStatusDraft, true)
	noVendor := order(model.LabOrderStatusDraft, false)
	shipped := order(model.LabOrderStatusShipped, true)
	svc := newTestService(newFakeOrderRepo(draft, noVendor, shipped))

	missing := uuid.New()
	result, err := svc.BatchSubmit(context.Background(), clinicID, &model.BatchOrderIDsRequest{
		OrderIDs: []uuid.UUID{draft.ID, noVendor.ID, shipped.ID, missing},
	}, uuid.New())
	require.NoError(t, err, "skip-and-report never fails the request")

	assert.Equal(t, []uuid.UUID{draft.ID}, result.Succeeded)
	assert.Empty(t, result.Failed)
	assert.Len(t, result.Skipped, 3)

	reasons := make(map[uuid.UUID]string)
	for _, s := range result.Skipped {
		reasons[s.OrderID] = s.Reason
	}
	assert.Contains(t, reasons[noVendor.ID], "no vendor")
	assert.Contains(t, reasons[shipped.ID], "not in draft")
	assert.Equal(t, "not found", reasons[missing])
}

func TestBatchCancelSkipsTerminalOrders(t *testing.T) {
	open := order(model.LabOrderStatusInProgress, true)
	done := order(model.LabOrderStatusDelivered, true)
	svc := newTestService(newFakeOrderRepo(open, done))

	result, err := svc.BatchCancel(context.Background(), clinicID, &model.BatchOrderIDsRequest{
		OrderIDs: []uuid.UUID{open.ID, done.ID},
	}, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{open.ID}, result.Succeeded)
	require.Len(t, result.Skipped, 1)
	assert.Contains(t, result.Skipped[0].Reason, "already delivered")
	assert.Equal(t, model.LabOrderStatusCancelled, open.Status)
	assert.Equal(t, model.LabOrderStatusDelivered, done.Status)
}

func TestBatchCancelSkipsShippedOrders(t *testing.T) {
	open := order(model.LabOrderStatusSubmitted, true)
	inTransit := order(model.LabOrderStatusShipped, true)
	svc := newTestService(newFakeOrderRepo(open, inTransit))

	result, err := svc.BatchCancel(context.Background(), clinicID, &model.BatchOrderIDsRequest{
		OrderIDs: []uuid.UUID{open.ID, inTransit.ID},
	}, uuid.New())
	require.NoError(t, err)

	// An order already in transit is reported as skipped, not failed.
	assert.Equal(t, []uuid.UUID{open.ID}, result.Succeeded)
	assert.Empty(t, result.Failed)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, inTransit.ID, result.Skipped[0].OrderID)
	assert.Contains(t, result.Skipped[0].Reason, "no longer cancellable")
	assert.Equal(t, model.LabOrderStatusShipped, inTransit.Status)
}

func TestBatchUpdateStatusScopedToClinic(t *testing.T) {
	foreign := order(model.LabOrderStatusDraft, true)
	foreign.ClinicID = uuid.New()
	svc := newTestService(newFakeOrderRepo(foreign))

	_, err := svc.BatchUpdateStatus(context.Background(), clinicID, &model.BatchStatusRequest{
		OrderIDs: []uuid.UUID{foreign.ID},
		Status:   model.LabOrderStatusSubmitted,
	}, uuid.New())

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeOrdersNotFound, appErr.Code, "another clinic's order reads as missing")
}
