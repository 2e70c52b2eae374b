package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/orcadental/practice-api/internal/model"

	"github.com/google/uuid"
)

const flowColumns = `
	id, clinic_id, appointment_id, patient_id, stage, priority,
	checked_in_at, seated_at, completed_at, checked_out_at, departed_at,
	current_wait_started_at, created_at, updated_at, deleted_at
`

func (r *flowRepository) Create(ctx context.Context, fs *model.PatientFlowState) error {
	query := `
		INSERT INTO patient_flow_states (
			id, clinic_id, appointment_id, patient_id, stage, priority,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		fs.ID,
		fs.ClinicID,
		fs.AppointmentID,
		fs.PatientID,
		fs.Stage,
		fs.Priority,
		fs.CreatedAt,
		fs.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create flow state: %w", err)
	}
	return nil
}

func (r *flowRepository) GetByAppointment(ctx context.Context, clinicID, appointmentID uuid.UUID) (*model.PatientFlowState, error) {
	query := `
		SELECT ` + flowColumns + `
		FROM patient_flow_states
		WHERE appointment_id = $1 AND clinic_id = $2
	`
	var fs model.PatientFlowState
	err := r.db.GetContext(ctx, &fs, query, appointmentID, clinicID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get flow state: %w", err)
	}
	return &fs, nil
}

func (r *flowRepository) Update(ctx context.Context, fs *model.PatientFlowState) error {
	query := `
		UPDATE patient_flow_states
		SET stage = $1, priority = $2, checked_in_at = $3, seated_at = $4,
			completed_at = $5, checked_out_at = $6, departed_at = $7,
			current_wait_started_at = $8, updated_at = $9
		WHERE id = $10 AND clinic_id = $11
	`
	result, err := r.db.ExecContext(ctx, query,
		fs.Stage,
		fs.Priority,
		fs.CheckedInAt,
		fs.SeatedAt,
		fs.CompletedAt,
		fs.CheckedOutAt,
		fs.DepartedAt,
		fs.CurrentWaitStartedAt,
		fs.UpdatedAt,
		fs.ID,
		fs.ClinicID,
	)
	if err != nil {
		return fmt.Errorf("failed to update flow state: %w", err)
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

func (r *flowRepository) ListInRange(ctx context.Context, filters *model.FlowFilters) ([]*model.PatientFlowState, error) {
	query := `
		SELECT ` + flowColumns + `
		FROM patient_flow_states
		WHERE clinic_id = $1
		AND created_at >= $2 AND created_at < $3
	`
	args := []interface{}{filters.ClinicID, filters.StartDate, filters.EndDate}

	if len(filters.Stages) > 0 {
		placeholders := make([]string, len(filters.Stages))
		for i, stage := range filters.Stages {
			placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
			args = append(args, stage)
		}
		query += " AND stage IN (" + strings.Join(placeholders, ", ") + ")"
	}

	query += " ORDER BY priority DESC, created_at ASC"

	var states []*model.PatientFlowState
	err := r.db.SelectContext(ctx, &states, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list flow states: %w", err)
	}
	return states, nil
}
