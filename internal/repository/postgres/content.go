package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/orcadental/practice-api/internal/model"
	"github.com/orcadental/practice-api/internal/repository"
)

func (r *contentRepository) ListDueForClinic(ctx context.Context, clinicID uuid.UUID, now time.Time) ([]*model.ContentTrigger, error) {
	query := `
		SELECT id, clinic_id, patient_id, template_id, subject, body, due_at,
			   status, sent_at, last_error, created_at, updated_at, deleted_at
		FROM content_triggers
		WHERE clinic_id = $1 AND status = $2 AND due_at <= $3
		AND ` + repository.SoftDeleteClause + `
		ORDER BY due_at ASC
	`
	var triggers []*model.ContentTrigger
	if err := r.db.SelectContext(ctx, &triggers, query, clinicID, model.ContentTriggerStatusPending, now); err != nil {
		return nil, fmt.Errorf("failed to list due triggers: %w", err)
	}
	return triggers, nil
}

func (r *contentRepository) MarkOutcome(ctx context.Context, id uuid.UUID, status model.ContentTriggerStatus, sentAt *time.Time, errMsg *string) error {
	query := `
		UPDATE content_triggers
		SET status = $1, sent_at = $2, last_error = $3, updated_at = $4
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query, status, sentAt, errMsg, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark trigger outcome: %w", err)
	}
	return nil
}
