package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/orcadental/practice-api/internal/model"
	"github.com/orcadental/practice-api/internal/repository"
)

const patientColumns = `
	id, clinic_id, first_name, last_name, email, phone, date_of_birth, notes,
	created_at, updated_at, deleted_at
`

func (r *patientRepository) Create(ctx context.Context, p *model.Patient) error {
	query := `
		INSERT INTO patients (
			id, clinic_id, first_name, last_name, email, phone, date_of_birth,
			notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.ClinicID,
		p.FirstName,
		p.LastName,
		p.Email,
		p.Phone,
		p.DateOfBirth,
		p.Notes,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, clinicID, id uuid.UUID) (*model.Patient, error) {
	query := `
		SELECT ` + patientColumns + `
		FROM patients
		WHERE id = $1 AND clinic_id = $2 AND ` + repository.SoftDeleteClause

	var p model.Patient
	if err := r.db.GetContext(ctx, &p, query, id, clinicID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &p, nil
}

func (r *patientRepository) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, int, error) {
	where := " WHERE clinic_id = $1 AND " + repository.SoftDeleteClause
	args := []interface{}{filters.ClinicID}

	if filters.Search != "" {
		where += " AND (first_name ILIKE $2 OR last_name ILIKE $2 OR phone ILIKE $2)"
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM patients"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count patients: %w", err)
	}

	query := "SELECT " + patientColumns + " FROM patients" + where + " ORDER BY last_name ASC, first_name ASC"
	if filters.PageSize > 0 {
		offset := 0
		if filters.Page > 1 {
			offset = (filters.Page - 1) * filters.PageSize
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filters.PageSize, offset)
	}

	var patients []*model.Patient
	if err := r.db.SelectContext(ctx, &patients, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, total, nil
}

func (r *patientRepository) Update(ctx context.Context, p *model.Patient) error {
	query := `
		UPDATE patients
		SET first_name = $1, last_name = $2, email = $3, phone = $4,
			notes = $5, updated_at = $6
		WHERE id = $7 AND clinic_id = $8 AND ` + repository.SoftDeleteClause

	result, err := r.db.ExecContext(ctx, query,
		p.FirstName,
		p.LastName,
		p.Email,
		p.Phone,
		p.Notes,
		p.UpdatedAt,
		p.ID,
		p.ClinicID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
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

func (r *patientRepository) SoftDelete(ctx context.Context, clinicID, id uuid.UUID) error {
	query := `
		UPDATE patients
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND clinic_id = $3 AND ` + repository.SoftDeleteClause

	result, err := r.db.ExecContext(ctx, query, time.Now(), id, clinicID)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
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

func (r *patientRepository) CountUpcomingAppointments(ctx context.Context, clinicID, patientID uuid.UUID, after time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM appointments
		WHERE patient_id = $1 AND clinic_id = $2
		AND start_time > $3
		AND status IN ('scheduled', 'confirmed')
		AND ` + repository.SoftDeleteClause

	var count int
	if err := r.db.GetContext(ctx, &count, query, patientID, clinicID, after); err != nil {
		return 0, fmt.Errorf("failed to count upcoming appointments: %w", err)
	}
	return count, nil
}

func (r *patientRepository) ListIDsForClinic(ctx context.Context, clinicID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT id FROM patients
		WHERE clinic_id = $1 AND ` + repository.SoftDeleteClause + `
		ORDER BY created_at ASC
	`
	var ids []uuid.UUID
	if err := r.db.SelectContext(ctx, &ids, query, clinicID); err != nil {
		return nil, fmt.Errorf("failed to list patient IDs: %w", err)
	}
	return ids, nil
}
