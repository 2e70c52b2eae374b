package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/orcadental/practice-api/internal/model"
	"github.com/orcadental/practice-api/internal/repository"
)

const sterilizationColumns = `
	id, clinic_id, cycle_number, cycle_type, program, technician,
	equipment_type, sterilizer_serial, equipment_id,
	sterilization_date, expiration_date, passed,
	created_at, updated_at, deleted_at
`

func (r *sterilizationRepository) Create(ctx context.Context, cycle *model.SterilizationCycle) error {
	query := `
		INSERT INTO sterilization_cycles (
			id, clinic_id, cycle_number, cycle_type, program, technician,
			equipment_type, sterilizer_serial, equipment_id,
			sterilization_date, expiration_date, passed, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.db.ExecContext(ctx, query,
		cycle.ID,
		cycle.ClinicID,
		cycle.CycleNumber,
		cycle.CycleType,
		cycle.Program,
		cycle.Technician,
		cycle.EquipmentType,
		cycle.SterilizerSerial,
		cycle.EquipmentID,
		cycle.SterilizationDate,
		cycle.ExpirationDate,
		cycle.Passed,
		cycle.CreatedAt,
		cycle.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create sterilization cycle: %w", err)
	}
	return nil
}

func (r *sterilizationRepository) Get(ctx context.Context, clinicID, id uuid.UUID) (*model.SterilizationCycle, error) {
	query := `
		SELECT ` + sterilizationColumns + `
		FROM sterilization_cycles
		WHERE id = $1 AND clinic_id = $2 AND ` + repository.SoftDeleteClause

	var cycle model.SterilizationCycle
	if err := r.db.GetContext(ctx, &cycle, query, id, clinicID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get sterilization cycle: %w", err)
	}
	return &cycle, nil
}

func (r *sterilizationRepository) GetByNumber(ctx context.Context, clinicID uuid.UUID, cycleNumber int) (*model.SterilizationCycle, error) {
	query := `
		SELECT ` + sterilizationColumns + `
		FROM sterilization_cycles
		WHERE cycle_number = $1 AND clinic_id = $2 AND ` + repository.SoftDeleteClause

	var cycle model.SterilizationCycle
	if err := r.db.GetContext(ctx, &cycle, query, cycleNumber, clinicID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get sterilization cycle: %w", err)
	}
	return &cycle, nil
}

func (r *sterilizationRepository) List(ctx context.Context, clinicID uuid.UUID, limit int) ([]*model.SterilizationCycle, error) {
	query := `
		SELECT ` + sterilizationColumns + `
		FROM sterilization_cycles
		WHERE clinic_id = $1 AND ` + repository.SoftDeleteClause + `
		ORDER BY sterilization_date DESC
	`
	args := []interface{}{clinicID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	var cycles []*model.SterilizationCycle
	if err := r.db.SelectContext(ctx, &cycles, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list sterilization cycles: %w", err)
	}
	return cycles, nil
}
