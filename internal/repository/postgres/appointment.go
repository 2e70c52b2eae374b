package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/orcadental/practice-api/internal/model"
	"github.com/orcadental/practice-api/internal/repository"
)

const appointmentColumns = `
	id, clinic_id, patient_id, provider_id, appointment_type_id, chair_id,
	start_time, end_time, status, notes, cancel_reason,
	created_at, updated_at, deleted_at
`

func (r *appointmentRepository) Create(ctx context.Context, apt *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, clinic_id, patient_id, provider_id, appointment_type_id, chair_id,
			start_time, end_time, status, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		apt.ID,
		apt.ClinicID,
		apt.PatientID,
		apt.ProviderID,
		apt.AppointmentTypeID,
		apt.ChairID,
		apt.StartTime,
		apt.EndTime,
		apt.Status,
		apt.Notes,
		apt.CreatedAt,
		apt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, clinicID, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE id = $1 AND clinic_id = $2 AND ` + repository.SoftDeleteClause

	var apt model.Appointment
	err := r.db.GetContext(ctx, &apt, query, id, clinicID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &apt, nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE clinic_id = $1 AND ` + repository.SoftDeleteClause
	args := []interface{}{filters.ClinicID}
	argCount := 2

	if filters.ProviderID != uuid.Nil {
		query += fmt.Sprintf(" AND provider_id = $%d", argCount)
		args = append(args, filters.ProviderID)
		argCount++
	}

	if filters.PatientID != uuid.Nil {
		query += fmt.Sprintf(" AND patient_id = $%d", argCount)
		args = append(args, filters.PatientID)
		argCount++
	}

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}

	if !filters.StartDate.IsZero() {
		query += fmt.Sprintf(" AND start_time >= $%d", argCount)
		args = append(args, filters.StartDate)
		argCount++
	}

	if !filters.EndDate.IsZero() {
		query += fmt.Sprintf(" AND start_time < $%d", argCount)
		args = append(args, filters.EndDate)
		argCount++
	}

	query += " ORDER BY start_time ASC"

	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) Update(ctx context.Context, apt *model.Appointment) error {
	query := `
		UPDATE appointments
		SET start_time = $1, end_time = $2, chair_id = $3, status = $4,
			notes = $5, cancel_reason = $6, updated_at = $7
		WHERE id = $8 AND clinic_id = $9 AND ` + repository.SoftDeleteClause

	result, err := r.db.ExecContext(ctx, query,
		apt.StartTime,
		apt.EndTime,
		apt.ChairID,
		apt.Status,
		apt.Notes,
		apt.CancelReason,
		apt.UpdatedAt,
		apt.ID,
		apt.ClinicID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
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

func (r *appointmentRepository) SoftDelete(ctx context.Context, clinicID, id uuid.UUID) error {
	query := `
		UPDATE appointments
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND clinic_id = $3 AND ` + repository.SoftDeleteClause

	result, err := r.db.ExecContext(ctx, query, time.Now(), id, clinicID)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
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

func (r *appointmentRepository) CheckConflict(ctx context.Context, providerID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE provider_id = $1
			AND ` + repository.SoftDeleteClause + `
			AND status NOT IN ('cancelled', 'completed', 'no_show')
			AND start_time < $3 AND end_time > $2
	`
	args := []interface{}{providerID, start, end}

	if excludeID != nil {
		query += " AND id != $4"
		args = append(args, *excludeID)
	}

	query += ")"

	var hasConflict bool
	err := r.db.GetContext(ctx, &hasConflict, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to check conflicts: %w", err)
	}
	return hasConflict, nil
}

func (r *appointmentRepository) ListInRange(ctx context.Context, clinicID uuid.UUID, start, end time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE clinic_id = $1
		AND start_time >= $2 AND start_time < $3
		AND ` + repository.SoftDeleteClause + `
		ORDER BY start_time ASC
	`
	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, clinicID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments in range: %w", err)
	}
	return appointments, nil
}
