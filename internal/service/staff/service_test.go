package staff

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
	"github.com/orcadental/practice-api/pkg/security"
)

var clinicID = uuid.New()

type fakeStaffRepo struct {
	members map[uuid.UUID]*model.Staff
}

func newFakeStaffRepo() *fakeStaffRepo {
	return &fakeStaffRepo{members: make(map[uuid.UUID]*model.Staff)}
}

func (r *fakeStaffRepo) Create(ctx context.Context, m *model.Staff) error {
	r.members[m.ID] = m
	return nil
}

func (r *fakeStaffRepo) Get(ctx context.Context, clinic, id uuid.UUID) (*model.Staff, error) {
	m, ok := r.members[id]
	if !ok || m.ClinicID != clinic {
		return nil, sql.ErrNoRows
	}
	return m, nil
}

func (r *fakeStaffRepo) GetByEmail(ctx context.Context, email string) (*model.Staff, error) {
	for _, m := range r.members {
		if m.Email == email {
			return m, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeStaffRepo) List(ctx context.Context, clinic uuid.UUID) ([]*model.Staff, error) {
	var out []*model.Staff
	for _, m := range r.members {
		if m.ClinicID == clinic {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeStaffRepo) Update(ctx context.Context, m *model.Staff) error {
	r.members[m.ID] = m
	return nil
}

func (r *fakeStaffRepo) Terminate(ctx context.Context, clinic, id uuid.UUID, reason string, effective time.Time) error {
	m, ok := r.members[id]
	if !ok || m.ClinicID != clinic {
		return sql.ErrNoRows
	}
	m.Status = model.StaffStatusTerminated
	m.TerminatedAt = &effective
	return nil
}

func newTestService() (*Service, *fakeStaffRepo) {
	repo := newFakeStaffRepo()
	svc := NewService(repo)
	svc.now = func() time.Time { return time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC) }
	return svc, repo
}

func createRequest() *model.CreateStaffRequest {
	return &model.CreateStaffRequest{
		FirstName: "Dana",
		LastName:  "Reyes",
		Email:     "dana@example.com",
		Role:      model.StaffRoleProvider,
		Password:  "correct-horse",
	}
}

func TestCreateStaffHashesPassword(t *testing.T) {
	svc, _ := newTestService()

	member, err := svc.CreateStaff(context.Background(), clinicID, createRequest())
	require.NoError(t, err)

	assert.Equal(t, model.StaffStatusActive, member.Status)
	require.NotNil(t, member.HiredAt)
	assert.NotEqual(t, "correct-horse", member.PasswordHash)
	assert.True(t, security.CheckPassword("correct-horse", member.PasswordHash))
	assert.False(t, security.CheckPassword("wrong-horse", member.PasswordHash))
}

func TestUpdateRejectsTerminated(t *testing.T) {
	svc, _ := newTestService()

	member, err := svc.CreateStaff(context.Background(), clinicID, createRequest())
	require.NoError(t, err)
	member.Status = model.StaffStatusTerminated

	role := model.StaffRoleAdmin
	_, err = svc.UpdateStaff(context.Background(), clinicID, member.ID, &model.UpdateStaffRequest{Role: &role})

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
}

func TestTerminate(t *testing.T) {
	svc, _ := newTestService()

	member, err := svc.CreateStaff(context.Background(), clinicID, createRequest())
	require.NoError(t, err)

	effective := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	terminated, err := svc.Terminate(context.Background(), clinicID, member.ID, &model.TerminateStaffRequest{
		Reason:        "relocation",
		EffectiveDate: &effective,
	})
	require.NoError(t, err)

	assert.Equal(t, model.StaffStatusTerminated, terminated.Status)
	require.NotNil(t, terminated.TerminatedAt)
	assert.Equal(t, effective, *terminated.TerminatedAt)

	// Terminating twice is rejected.
	_, err = svc.Terminate(context.Background(), clinicID, member.ID, &model.TerminateStaffRequest{Reason: "again"})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
}

func TestTerminateDefaultsEffectiveDate(t *testing.T) {
	svc, _ := newTestService()

	member, err := svc.CreateStaff(context.Background(), clinicID, createRequest())
	require.NoError(t, err)

	terminated, err := svc.Terminate(context.Background(), clinicID, member.ID, &model.TerminateStaffRequest{Reason: "no date given"})
	require.NoError(t, err)
	require.NotNil(t, terminated.TerminatedAt)
	assert.Equal(t, time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC), *terminated.TerminatedAt)
}
