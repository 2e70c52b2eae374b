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

const imagingColumns = `
	id, clinic_id, patient_id, kind, storage_path, content_type, version,
	superseded_at, superseded_by, taken_at, notes,
	created_at, updated_at, deleted_at
`

func (r *imagingRepository) Create(ctx context.Context, doc *model.ImagingDocument) error {
	query := `
		INSERT INTO imaging_documents (
			id, clinic_id, patient_id, kind, storage_path, content_type,
			version, taken_at, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		doc.ID,
		doc.ClinicID,
		doc.PatientID,
		doc.Kind,
		doc.StoragePath,
		doc.ContentType,
		doc.Version,
		doc.TakenAt,
		doc.Notes,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create imaging document: %w", err)
	}
	return nil
}

func (r *imagingRepository) Get(ctx context.Context, clinicID, id uuid.UUID) (*model.ImagingDocument, error) {
	query := `
		SELECT ` + imagingColumns + `
		FROM imaging_documents
		WHERE id = $1 AND clinic_id = $2 AND ` + repository.SoftDeleteClause

	var doc model.ImagingDocument
	if err := r.db.GetContext(ctx, &doc, query, id, clinicID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get imaging document: %w", err)
	}
	return &doc, nil
}

func (r *imagingRepository) ListByPatient(ctx context.Context, clinicID, patientID uuid.UUID) ([]*model.ImagingDocument, error) {
	query := `
		SELECT ` + imagingColumns + `
		FROM imaging_documents
		WHERE patient_id = $1 AND clinic_id = $2
		AND superseded_at IS NULL
		AND ` + repository.SoftDeleteClause + `
		ORDER BY taken_at DESC
	`
	var docs []*model.ImagingDocument
	if err := r.db.SelectContext(ctx, &docs, query, patientID, clinicID); err != nil {
		return nil, fmt.Errorf("failed to list imaging documents: %w", err)
	}
	return docs, nil
}

// Replace supersedes the old version and inserts the new one atomically.
func (r *imagingRepository) Replace(ctx context.Context, old *model.ImagingDocument, replacement *model.ImagingDocument) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE imaging_documents
			SET superseded_at = $1, superseded_by = $2, updated_at = $1
			WHERE id = $3 AND clinic_id = $4 AND superseded_at IS NULL
			AND `+repository.SoftDeleteClause,
			time.Now(), replacement.ID, old.ID, old.ClinicID,
		)
		if err != nil {
			return fmt.Errorf("failed to supersede document: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return sql.ErrNoRows
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO imaging_documents (
				id, clinic_id, patient_id, kind, storage_path, content_type,
				version, taken_at, notes, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			replacement.ID,
			replacement.ClinicID,
			replacement.PatientID,
			replacement.Kind,
			replacement.StoragePath,
			replacement.ContentType,
			replacement.Version,
			replacement.TakenAt,
			replacement.Notes,
			replacement.CreatedAt,
			replacement.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert replacement: %w", err)
		}
		return nil
	})
}

func (r *imagingRepository) SoftDelete(ctx context.Context, clinicID, id uuid.UUID) error {
	query := `
		UPDATE imaging_documents
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND clinic_id = $3 AND ` + repository.SoftDeleteClause

	result, err := r.db.ExecContext(ctx, query, time.Now(), id, clinicID)
	if err != nil {
		return fmt.Errorf("failed to delete imaging document: %w", err)
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
