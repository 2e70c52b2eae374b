package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/orcadental/practice-api/internal/model"
	"github.com/orcadental/practice-api/internal/repository"
)

const labOrderColumns = `
	id, clinic_id, patient_id, vendor_id, appliance_type, status,
	due_date, submitted_at, notes, created_at, updated_at, deleted_at
`

func (r *labOrderRepository) Create(ctx context.Context, order *model.LabOrder) error {
	query := `
		INSERT INTO lab_orders (
			id, clinic_id, patient_id, vendor_id, appliance_type, status,
			due_date, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		order.ID,
		order.ClinicID,
		order.PatientID,
		order.VendorID,
		order.ApplianceType,
		order.Status,
		order.DueDate,
		order.Notes,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create lab order: %w", err)
	}
	return nil
}

func (r *labOrderRepository) Get(ctx context.Context, clinicID, id uuid.UUID) (*model.LabOrder, error) {
	query := `
		SELECT ` + labOrderColumns + `
		FROM lab_orders
		WHERE id = $1 AND clinic_id = $2 AND ` + repository.SoftDeleteClause

	var order model.LabOrder
	if err := r.db.GetContext(ctx, &order, query, id, clinicID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get lab order: %w", err)
	}
	return &order, nil
}

func (r *labOrderRepository) GetMany(ctx context.Context, clinicID uuid.UUID, ids []uuid.UUID) ([]*model.LabOrder, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT `+labOrderColumns+`
		FROM lab_orders
		WHERE clinic_id = ? AND id IN (?) AND `+repository.SoftDeleteClause,
		clinicID, ids,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var orders []*model.LabOrder
	if err := r.db.SelectContext(ctx, &orders, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get lab orders: %w", err)
	}
	return orders, nil
}

func (r *labOrderRepository) List(ctx context.Context, filters *model.LabOrderFilters) ([]*model.LabOrder, error) {
	query := `
		SELECT ` + labOrderColumns + `
		FROM lab_orders
		WHERE clinic_id = $1 AND ` + repository.SoftDeleteClause
	args := []interface{}{filters.ClinicID}
	argCount := 2

	if filters.PatientID != uuid.Nil {
		query += fmt.Sprintf(" AND patient_id = $%d", argCount)
		args = append(args, filters.PatientID)
		argCount++
	}

	if filters.VendorID != uuid.Nil {
		query += fmt.Sprintf(" AND vendor_id = $%d", argCount)
		args = append(args, filters.VendorID)
		argCount++
	}

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}

	if !filters.StartDate.IsZero() {
		query += fmt.Sprintf(" AND created_at >= $%d", argCount)
		args = append(args, filters.StartDate)
		argCount++
	}

	if !filters.EndDate.IsZero() {
		query += fmt.Sprintf(" AND created_at < $%d", argCount)
		args = append(args, filters.EndDate)
		argCount++
	}

	query += " ORDER BY created_at DESC"

	var orders []*model.LabOrder
	if err := r.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list lab orders: %w", err)
	}
	return orders, nil
}

func (r *labOrderRepository) Update(ctx context.Context, order *model.LabOrder) error {
	query := `
		UPDATE lab_orders
		SET vendor_id = $1, appliance_type = $2, status = $3, due_date = $4,
			submitted_at = $5, notes = $6, updated_at = $7
		WHERE id = $8 AND clinic_id = $9 AND ` + repository.SoftDeleteClause

	result, err := r.db.ExecContext(ctx, query,
		order.VendorID,
		order.ApplianceType,
		order.Status,
		order.DueDate,
		order.SubmittedAt,
		order.Notes,
		order.UpdatedAt,
		order.ID,
		order.ClinicID,
	)
	if err != nil {
		return fmt.Errorf("failed to update lab order: %w", err)
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

func (r *labOrderRepository) AppendStatusLog(ctx context.Context, entry *model.LabOrderStatusLog) error {
	query := `
		INSERT INTO lab_order_status_log (
			id, lab_order_id, from_status, to_status, notes, source, changed_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.LabOrderID,
		entry.FromStatus,
		entry.ToStatus,
		entry.Notes,
		entry.Source,
		entry.ChangedBy,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append status log: %w", err)
	}
	return nil
}

func (r *labOrderRepository) ListStatusLog(ctx context.Context, clinicID, orderID uuid.UUID) ([]*model.LabOrderStatusLog, error) {
	// Scope through the parent order so the log stays tenant-bounded.
	query := `
		SELECT l.id, l.lab_order_id, l.from_status, l.to_status, l.notes,
			   l.source, l.changed_by, l.created_at
		FROM lab_order_status_log l
		JOIN lab_orders o ON o.id = l.lab_order_id
		WHERE l.lab_order_id = $1 AND o.clinic_id = $2
		ORDER BY l.created_at ASC
	`
	var entries []*model.LabOrderStatusLog
	if err := r.db.SelectContext(ctx, &entries, query, orderID, clinicID); err != nil {
		return nil, fmt.Errorf("failed to list status log: %w", err)
	}
	return entries, nil
}
