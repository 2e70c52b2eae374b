package lab

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orcadental/practice-api/internal/model"
	"github.com/orcadental/practice-api/internal/service/event"
	apperrors "github.com/orcadental/practice-api/pkg/errors"
)

func newRemakeTestService(orderRepo *fakeOrderRepo, remakeRepo *fakeRemakeRepo) *Service {
	return NewService(orderRepo, remakeRepo, event.NewService(&fakeOutboxRepo{}), nil)
}

func TestCreateRemakeRequiresOrder(t *testing.T) {
	svc := newRemakeTestService(newFakeOrderRepo(), newFakeRemakeRepo())

	_, err := svc.CreateRemake(context.Background(), clinicID, &model.CreateRemakeRequest{
		LabOrderID: uuid.New(),
		Reason:     "poor fit",
	})

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

func TestCreateRemakeDefaults(t *testing.T) {
	o := order(model.LabOrderStatusReceived, true)
	svc := newRemakeTestService(newFakeOrderRepo(o), newFakeRemakeRepo())

	remake, err := svc.CreateRemake(context.Background(), clinicID, &model.CreateRemakeRequest{
		LabOrderID:       o.ID,
		Reason:           "cracked on delivery",
		RequiresApproval: true,
	})
	require.NoError(t, err)

	assert.Equal(t, model.RemakeStatusRequested, remake.Status)
	assert.Equal(t, model.RecoveryStatusPending, remake.RecoveryStatus)
	assert.Nil(t, remake.ApprovedAt)
}

func TestApprovalGateBlocksProgress(t *testing.T) {
	o := order(model.LabOrderStatusReceived, true)
	remakeRepo := newFakeRemakeRepo()
	svc := newRemakeTestService(newFakeOrderRepo(o), remakeRepo)

	remake, err := svc.CreateRemake(context.Background(), clinicID, &model.CreateRemakeRequest{
		LabOrderID:       o.ID,
		Reason:           "shade mismatch",
		RequiresApproval: true,
	})
	require.NoError(t, err)

	_, err = svc.TransitionRemake(context.Background(), clinicID, remake.ID, &model.TransitionRemakeRequest{
		Status: model.RemakeStatusAcknowledged,
	})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)

	// Cancellation is the one move allowed while the gate is closed.
	_, err = svc.TransitionRemake(context.Background(), clinicID, remake.ID, &model.TransitionRemakeRequest{
		Status: model.RemakeStatusCancelled,
	})
	assert.NoError(t, err)
}

func TestReviewRemakeApprove(t *testing.T) {
	o := order(model.LabOrderStatusReceived, true)
	svc := newRemakeTestService(newFakeOrderRepo(o), newFakeRemakeRepo())

	remake, err := svc.CreateRemake(context.Background(), clinicID, &model.CreateRemakeRequest{
		LabOrderID:       o.ID,
		Reason:           "fractured clasp",
		RequiresApproval: true,
	})
	require.NoError(t, err)

	reviewer := uuid.New()
	reviewed, err := svc.ReviewRemake(context.Background(), clinicID, remake.ID, &model.ReviewRemakeRequest{Approve: true}, reviewer)
	require.NoError(t, err)

	assert.NotNil(t, reviewed.ApprovedAt)
	assert.Equal(t, &reviewer, reviewed.ApprovedBy)
	assert.Equal(t, model.RecoveryStatusInProgress, reviewed.RecoveryStatus)

	// The gate is open now.
	_, err = svc.TransitionRemake(context.Background(), clinicID, remake.ID, &model.TransitionRemakeRequest{
		Status: model.RemakeStatusAcknowledged,
	})
	assert.NoError(t, err)

	// A second review is rejected.
	_, err = svc.ReviewRemake(context.Background(), clinicID, remake.ID, &model.ReviewRemakeRequest{Approve: false}, reviewer)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
}

func TestReviewRemakeDeny(t *testing.T) {
	o := order(model.LabOrderStatusReceived, true)
	svc := newRemakeTestService(newFakeOrderRepo(o), newFakeRemakeRepo())

	remake, err := svc.CreateRemake(context.Background(), clinicID, &model.CreateRemakeRequest{
		LabOrderID:       o.ID,
		Reason:           "not needed",
		RequiresApproval: true,
	})
	require.NoError(t, err)

	denied, err := svc.ReviewRemake(context.Background(), clinicID, remake.ID, &model.ReviewRemakeRequest{Approve: false}, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, model.RemakeStatusCancelled, denied.Status)
	assert.Equal(t, model.RecoveryStatusLost, denied.RecoveryStatus)

	// Denial resolves the gate for good; a later approval must not reopen
	// recovery on a cancelled remake.
	_, err = svc.ReviewRemake(context.Background(), clinicID, remake.ID, &model.ReviewRemakeRequest{Approve: true}, uuid.New())
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)

	assert.Equal(t, model.RemakeStatusCancelled, denied.Status)
	assert.Equal(t, model.RecoveryStatusLost, denied.RecoveryStatus)
	assert.Nil(t, denied.ApprovedAt)
}

func TestReviewCancelledRemakeRejected(t *testing.T) {
	o := order(model.LabOrderStatusReceived, true)
	svc := newRemakeTestService(newFakeOrderRepo(o), newFakeRemakeRepo())

	remake, err := svc.CreateRemake(context.Background(), clinicID, &model.CreateRemakeRequest{
		LabOrderID:       o.ID,
		Reason:           "ordered in error",
		RequiresApproval: true,
	})
	require.NoError(t, err)

	_, err = svc.TransitionRemake(context.Background(), clinicID, remake.ID, &model.TransitionRemakeRequest{
		Status: model.RemakeStatusCancelled,
	})
	require.NoError(t, err)

	_, err = svc.ReviewRemake(context.Background(), clinicID, remake.ID, &model.ReviewRemakeRequest{Approve: true}, uuid.New())
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
}

func TestRecordRecovery(t *testing.T) {
	o := order(model.LabOrderStatusReceived, true)
	svc := newRemakeTestService(newFakeOrderRepo(o), newFakeRemakeRepo())

	remake, err := svc.CreateRemake(context.Background(), clinicID, &model.CreateRemakeRequest{
		LabOrderID: o.ID,
		Reason:     "warped tray",
	})
	require.NoError(t, err)

	updated, err := svc.RecordRecovery(context.Background(), clinicID, remake.ID, &model.RecordRecoveryRequest{
		Outcome: model.RecoveryStatusRecovered,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RecoveryStatusRecovered, updated.RecoveryStatus)

	// Resolved recovery cannot be reopened.
	_, err = svc.RecordRecovery(context.Background(), clinicID, remake.ID, &model.RecordRecoveryRequest{
		Outcome: model.RecoveryStatusInProgress,
	})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
}
