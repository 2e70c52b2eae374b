package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/orcadental/practice-api/internal/model"
	"github.com/orcadental/practice-api/internal/repository"
)

const staffColumns = `
	id, clinic_id, first_name, last_name, email, role, status, password_hash,
	hired_at, terminated_at, created_at, updated_at, deleted_at
`

func (r *staffRepository) Create(ctx context.Context, s *model.Staff) error {
	query := `
		INSERT INTO staff (
			id, clinic_id, first_name, last_name, email, role, status,
			password_hash, hired_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.ClinicID,
		s.FirstName,
		s.LastName,
		s.Email,
		s.Role,
		s.Status,
		s.PasswordHash,
		s.HiredAt,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create staff: %w", err)
	}
	return nil
}

func (r *staffRepository) Get(ctx context.Context, clinicID, id uuid.UUID) (*model.Staff, error) {
	query := `
		SELECT ` + staffColumns + `
		FROM staff
		WHERE id = $1 AND clinic_id = $2 AND ` + repository.SoftDeleteClause

	var s model.Staff
	if err := r.db.GetContext(ctx, &s, query, id, clinicID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get staff: %w", err)
	}
	return &s, nil
}

func (r *staffRepository) GetByEmail(ctx context.Context, email string) (*model.Staff, error) {
	query := `
		SELECT ` + staffColumns + `
		FROM staff
		WHERE email = $1 AND ` + repository.SoftDeleteClause

	var s model.Staff
	if err := r.db.GetContext(ctx, &s, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get staff by email: %w", err)
	}
	return &s, nil
}

func (r *staffRepository) List(ctx context.Context, clinicID uuid.UUID) ([]*model.Staff, error) {
	query := `
		SELECT ` + staffColumns + `
		FROM staff
		WHERE clinic_id = $1 AND ` + repository.SoftDeleteClause + `
		ORDER BY last_name ASC, first_name ASC
	`
	var staff []*model.Staff
	if err := r.db.SelectContext(ctx, &staff, query, clinicID); err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	return staff, nil
}

func (r *staffRepository) Update(ctx context.Context, s *model.Staff) error {
	query := `
		UPDATE staff
		SET first_name = $1, last_name = $2, role = $3, status = $4, updated_at = $5
		WHERE id = $6 AND clinic_id = $7 AND ` + repository.SoftDeleteClause

	result, err := r.db.ExecContext(ctx, query,
		s.FirstName,
		s.LastName,
		s.Role,
		s.Status,
		s.UpdatedAt,
		s.ID,
		s.ClinicID,
	)
	if err != nil {
		return fmt.Errorf("failed to update staff: %w", err)
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

// Terminate runs the termination workflow atomically: flip the staff record,
// end open chair assignments, write the audit row.
func (r *staffRepository) Terminate(ctx context.Context, clinicID, id uuid.UUID, reason string, effective time.Time) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE staff
			SET status = $1, terminated_at = $2, updated_at = $3
			WHERE id = $4 AND clinic_id = $5 AND `+repository.SoftDeleteClause,
			model.StaffStatusTerminated, effective, time.Now(), id, clinicID,
		)
		if err != nil {
			return fmt.Errorf("failed to terminate staff: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return sql.ErrNoRows
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE appointments
			SET status = $1, cancel_reason = $2, updated_at = $3
			WHERE provider_id = $4 AND clinic_id = $5
			AND status IN ('scheduled', 'confirmed')
			AND start_time >= $6 AND `+repository.SoftDeleteClause,
			model.AppointmentStatusCancelled, "provider terminated", time.Now(),
			id, clinicID, effective,
		); err != nil {
			return fmt.Errorf("failed to cancel future appointments: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO staff_termination_log (id, clinic_id, staff_id, reason, effective_at, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.New(), clinicID, id, reason, effective, time.Now(),
		); err != nil {
			return fmt.Errorf("failed to write termination log: %w", err)
		}

		return nil
	})
}
