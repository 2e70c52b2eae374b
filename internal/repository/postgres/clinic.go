package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/orcadental/practice-api/internal/model"
	"github.com/orcadental/practice-api/internal/repository"
)

func (r *clinicRepository) Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	query := `
		SELECT id, name, location, timezone, status, created_at, updated_at, deleted_at
		FROM clinics
		WHERE id = $1 AND ` + repository.SoftDeleteClause

	var clinic model.Clinic
	if err := r.db.GetContext(ctx, &clinic, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get clinic: %w", err)
	}
	return &clinic, nil
}

func (r *clinicRepository) List(ctx context.Context) ([]*model.Clinic, error) {
	query := `
		SELECT id, name, location, timezone, status, created_at, updated_at, deleted_at
		FROM clinics
		WHERE status = 'active' AND ` + repository.SoftDeleteClause + `
		ORDER BY name ASC
	`
	var clinics []*model.Clinic
	if err := r.db.SelectContext(ctx, &clinics, query); err != nil {
		return nil, fmt.Errorf("failed to list clinics: %w", err)
	}
	return clinics, nil
}

func (r *clinicRepository) GetSettings(ctx context.Context, clinicID uuid.UUID) (*model.ClinicSettings, error) {
	query := `
		SELECT clinic_id, on_time_grace_min, content_delivery, reminder_template
		FROM clinic_settings
		WHERE clinic_id = $1
	`
	var settings model.ClinicSettings
	err := r.db.GetContext(ctx, &settings, query, clinicID)
	if err == sql.ErrNoRows {
		// Defaults when the clinic never customized anything.
		return &model.ClinicSettings{
			ClinicID:       clinicID.String(),
			OnTimeGraceMin: 15,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get clinic settings: %w", err)
	}
	return &settings, nil
}
