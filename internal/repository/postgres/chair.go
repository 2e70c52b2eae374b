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

func (r *chairRepository) Create(ctx context.Context, chair *model.TreatmentChair) error {
	query := `
		INSERT INTO treatment_chairs (
			id, clinic_id, name, room, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		chair.ID,
		chair.ClinicID,
		chair.Name,
		chair.Room,
		chair.Status,
		chair.CreatedAt,
		chair.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create chair: %w", err)
	}
	return nil
}

func (r *chairRepository) Get(ctx context.Context, clinicID, id uuid.UUID) (*model.TreatmentChair, error) {
	query := `
		SELECT id, clinic_id, name, room, status, created_at, updated_at, deleted_at
		FROM treatment_chairs
		WHERE id = $1 AND clinic_id = $2 AND ` + repository.SoftDeleteClause

	var chair model.TreatmentChair
	if err := r.db.GetContext(ctx, &chair, query, id, clinicID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get chair: %w", err)
	}
	return &chair, nil
}

func (r *chairRepository) List(ctx context.Context, clinicID uuid.UUID) ([]*model.TreatmentChair, error) {
	query := `
		SELECT id, clinic_id, name, room, status, created_at, updated_at, deleted_at
		FROM treatment_chairs
		WHERE clinic_id = $1 AND ` + repository.SoftDeleteClause + `
		ORDER BY name ASC
	`
	var chairs []*model.TreatmentChair
	if err := r.db.SelectContext(ctx, &chairs, query, clinicID); err != nil {
		return nil, fmt.Errorf("failed to list chairs: %w", err)
	}
	return chairs, nil
}

func (r *chairRepository) Update(ctx context.Context, chair *model.TreatmentChair) error {
	query := `
		UPDATE treatment_chairs
		SET name = $1, room = $2, status = $3, updated_at = $4
		WHERE id = $5 AND clinic_id = $6 AND ` + repository.SoftDeleteClause

	result, err := r.db.ExecContext(ctx, query,
		chair.Name,
		chair.Room,
		chair.Status,
		chair.UpdatedAt,
		chair.ID,
		chair.ClinicID,
	)
	if err != nil {
		return fmt.Errorf("failed to update chair: %w", err)
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

func (r *chairRepository) SoftDelete(ctx context.Context, clinicID, id uuid.UUID) error {
	query := `
		UPDATE treatment_chairs
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND clinic_id = $3 AND ` + repository.SoftDeleteClause

	result, err := r.db.ExecContext(ctx, query, time.Now(), id, clinicID)
	if err != nil {
		return fmt.Errorf("failed to delete chair: %w", err)
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

func (r *chairRepository) OpenOccupancy(ctx context.Context, occ *model.ResourceOccupancy) error {
	query := `
		INSERT INTO resource_occupancies (
			id, clinic_id, chair_id, appointment_id, occupied_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		occ.ID,
		occ.ClinicID,
		occ.ChairID,
		occ.AppointmentID,
		occ.OccupiedAt,
		occ.CreatedAt,
		occ.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to open occupancy: %w", err)
	}
	return nil
}

func (r *chairRepository) CloseOccupancy(ctx context.Context, clinicID, chairID uuid.UUID, releasedAt time.Time) error {
	query := `
		UPDATE resource_occupancies
		SET released_at = $1, updated_at = $1
		WHERE clinic_id = $2 AND chair_id = $3 AND released_at IS NULL
	`
	_, err := r.db.ExecContext(ctx, query, releasedAt, clinicID, chairID)
	if err != nil {
		return fmt.Errorf("failed to close occupancy: %w", err)
	}
	return nil
}
