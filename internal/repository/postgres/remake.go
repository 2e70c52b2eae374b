package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/orcadental/practice-api/internal/model"
	"github.com/orcadental/practice-api/internal/repository"
)

const remakeColumns = `
	id, clinic_id, lab_order_id, reason, status, requires_approval,
	approved_at, approved_by, recovery_status, notes,
	created_at, updated_at, deleted_at
`

func (r *remakeRepository) Create(ctx context.Context, remake *model.RemakeRequest) error {
	query := `
		INSERT INTO remake_requests (
			id, clinic_id, lab_order_id, reason, status, requires_approval,
			recovery_status, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		remake.ID,
		remake.ClinicID,
		remake.LabOrderID,
		remake.Reason,
		remake.Status,
		remake.RequiresApproval,
		remake.RecoveryStatus,
		remake.Notes,
		remake.CreatedAt,
		remake.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create remake request: %w", err)
	}
	return nil
}

func (r *remakeRepository) Get(ctx context.Context, clinicID, id uuid.UUID) (*model.RemakeRequest, error) {
	query := `
		SELECT ` + remakeColumns + `
		FROM remake_requests
		WHERE id = $1 AND clinic_id = $2 AND ` + repository.SoftDeleteClause

	var remake model.RemakeRequest
	if err := r.db.GetContext(ctx, &remake, query, id, clinicID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get remake request: %w", err)
	}
	return &remake, nil
}

func (r *remakeRepository) ListByOrder(ctx context.Context, clinicID, orderID uuid.UUID) ([]*model.RemakeRequest, error) {
	query := `
		SELECT ` + remakeColumns + `
		FROM remake_requests
		WHERE lab_order_id = $1 AND clinic_id = $2 AND ` + repository.SoftDeleteClause + `
		ORDER BY created_at DESC
	`
	var remakes []*model.RemakeRequest
	if err := r.db.SelectContext(ctx, &remakes, query, orderID, clinicID); err != nil {
		return nil, fmt.Errorf("failed to list remake requests: %w", err)
	}
	return remakes, nil
}

func (r *remakeRepository) Update(ctx context.Context, remake *model.RemakeRequest) error {
	query := `
		UPDATE remake_requests
		SET status = $1, requires_approval = $2, approved_at = $3, approved_by = $4,
			recovery_status = $5, notes = $6, updated_at = $7
		WHERE id = $8 AND clinic_id = $9 AND ` + repository.SoftDeleteClause

	result, err := r.db.ExecContext(ctx, query,
		remake.Status,
		remake.RequiresApproval,
		remake.ApprovedAt,
		remake.ApprovedBy,
		remake.RecoveryStatus,
		remake.Notes,
		remake.UpdatedAt,
		remake.ID,
		remake.ClinicID,
	)
	if err != nil {
		return fmt.Errorf("failed to update remake request: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
