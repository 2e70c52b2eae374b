package lab

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/orcadental/practice-api/internal/model"
	"github.com/orcadental/practice-api/internal/repository"
	"github.com/orcadental/practice-api/internal/service/event"
	apperrors "github.com/orcadental/practice-api/pkg/errors"
	"github.com/orcadental/practice-api/pkg/metrics"
)

// Service owns the lab order workflow and its remake sub-workflow. Every
// status change appends an immutable log row; the mutable status column
// remains the source of current state.
type Service struct {
	orderRepo  repository.LabOrderRepository
	remakeRepo repository.RemakeRepository
	events     *event.Service
	metrics    *metrics.Metrics
	now        func() time.Time
}

func NewService(
	orderRepo repository.LabOrderRepository,
	remakeRepo repository.RemakeRepository,
	events *event.Service,
	m *metrics.Metrics,
) *Service {
	return &Service{
		orderRepo:  orderRepo,
		remakeRepo: remakeRepo,
		events:     events,
		metrics:    m,
		now:        time.Now,
	}
}

func (s *Service) CreateOrder(ctx context.Context, clinicID uuid.UUID, req *model.CreateLabOrderRequest) (*model.LabOrder, error) {
	now := s.now()
	order := &model.LabOrder{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ClinicID:      clinicID,
		PatientID:     req.PatientID,
		VendorID:      req.VendorID,
		ApplianceType: req.ApplianceType,
		Status:        model.LabOrderStatusDraft,
		DueDate:       req.DueDate,
		Notes:         req.Notes,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, clinicID, id uuid.UUID) (*model.LabOrder, error) {
	order, err := s.orderRepo.Get(ctx, clinicID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("lab order", err)
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) ListOrders(ctx context.Context, filters *model.LabOrderFilters) ([]*model.LabOrder, error) {
	return s.orderRepo.List(ctx, filters)
}

func (s *Service) ListStatusLog(ctx context.Context, clinicID, orderID uuid.UUID) ([]*model.LabOrderStatusLog, error) {
	if _, err := s.GetOrder(ctx, clinicID, orderID); err != nil {
		return nil, err
	}
	return s.orderRepo.ListStatusLog(ctx, clinicID, orderID)
}

// TransitionOrder advances one order and appends the audit row.
func (s *Service) TransitionOrder(ctx context.Context, clinicID, id uuid.UUID, req *model.TransitionLabOrderRequest, actor uuid.UUID) (*model.LabOrder, error) {
	order, err := s.GetOrder(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyTransition(ctx, order, req.Status, req.Notes, req.Source, actor); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) applyTransition(ctx context.Context, order *model.LabOrder, next model.LabOrderStatus, notes, source string, actor uuid.UUID) error {
	if !order.Status.CanTransition(next) {
		return apperrors.InvalidTransition(string(order.Status), string(next))
	}

	if next == model.LabOrderStatusSubmitted {
		if order.VendorID == nil {
			return apperrors.Validation("a vendor is required before submitting", nil)
		}
		at := s.now()
		order.SubmittedAt = &at
	}

	from := order.Status
	order.Status = next
	order.UpdatedAt = s.now()
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return err
	}

	entry := &model.LabOrderStatusLog{
		ID:         uuid.New(),
		LabOrderID: order.ID,
		FromStatus: from,
		ToStatus:   next,
		Notes:      notes,
		Source:     source,
		ChangedBy:  actor,
		CreatedAt:  s.now(),
	}
	if err := s.orderRepo.AppendStatusLog(ctx, entry); err != nil {
		return fmt.Errorf("failed to append status log: %w", err)
	}

	if s.metrics != nil {
		s.metrics.LabTransitions.WithLabelValues(string(from), string(next)).Inc()
	}

	if err := s.events.Emit(ctx, "lab_order.transition", map[string]interface{}{
		"order_id":  order.ID,
		"clinic_id": order.ClinicID,
		"from":      from,
		"to":        next,
	}); err != nil {
		log.Warn().Err(err).Msg("failed to emit lab order event")
	}

	return nil
}

// BatchUpdateStatus fails closed: if any requested ID is missing from the
// clinic's scope the whole request is rejected and nothing is applied. The
// per-row writes that then follow are still independent; rows may fail on
// their own transition rules while others succeed.
func (s *Service) BatchUpdateStatus(ctx context.Context, clinicID uuid.UUID, req *model.BatchStatusRequest, actor uuid.UUID) (*model.BatchResult, error) {
	orders, err := s.orderRepo.GetMany(ctx, clinicID, req.OrderIDs)
	if err != nil {
		return nil, err
	}

	if missing := missingIDs(req.OrderIDs, orders); len(missing) > 0 {
		return nil, apperrors.OrdersNotFound(missing)
	}

	return s.runBatch(ctx, "update_status", orders, func(order *model.LabOrder) (skip string, err error) {
		return "", s.applyTransition(ctx, order, req.Status, req.Notes, "batch", actor)
	}), nil
}

// BatchSubmit skips-and-reports: unknown IDs, non-draft orders and orders
// without a vendor are reported as skipped rather than failing the request.
func (s *Service) BatchSubmit(ctx context.Context, clinicID uuid.UUID, req *model.BatchOrderIDsRequest, actor uuid.UUID) (*model.BatchResult, error) {
	orders, err := s.orderRepo.GetMany(ctx, clinicID, req.OrderIDs)
	if err != nil {
		return nil, err
	}

	result := s.runBatch(ctx, "submit", orders, func(order *model.LabOrder) (string, error) {
		if order.Status != model.LabOrderStatusDraft {
			return fmt.Sprintf("not in draft status (%s)", order.Status), nil
		}
		if order.VendorID == nil {
			return "no vendor assigned", nil
		}
		return "", s.applyTransition(ctx, order, model.LabOrderStatusSubmitted, req.Notes, "batch", actor)
	})
	markMissingSkipped(result, req.OrderIDs, orders)
	return result, nil
}

// BatchCancel skips-and-reports like BatchSubmit.
func (s *Service) BatchCancel(ctx context.Context, clinicID uuid.UUID, req *model.BatchOrderIDsRequest, actor uuid.UUID) (*model.BatchResult, error) {
	orders, err := s.orderRepo.GetMany(ctx, clinicID, req.OrderIDs)
	if err != nil {
		return nil, err
	}

	result := s.runBatch(ctx, "cancel", orders, func(order *model.LabOrder) (string, error) {
		if order.Status.Terminal() {
			return fmt.Sprintf("already %s", order.Status), nil
		}
		if !order.Status.CanTransition(model.LabOrderStatusCancelled) {
			return fmt.Sprintf("no longer cancellable (%s)", order.Status), nil
		}
		return "", s.applyTransition(ctx, order, model.LabOrderStatusCancelled, req.Notes, "batch", actor)
	})
	markMissingSkipped(result, req.OrderIDs, orders)
	return result, nil
}

// runBatch applies fn to every order concurrently. Rows are independent;
// there is no rollback of earlier rows when a later one fails.
func (s *Service) runBatch(ctx context.Context, operation string, orders []*model.LabOrder, fn func(*model.LabOrder) (string, error)) *model.BatchResult {
	result := &model.BatchResult{
		Succeeded: []uuid.UUID{},
		Failed:    []model.BatchItemError{},
		Skipped:   []model.BatchItemReason{},
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, order := range orders {
		wg.Add(1)
		go func(order *model.LabOrder) {
			defer wg.Done()
			skip, err := fn(order)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case skip != "":
				result.Skipped = append(result.Skipped, model.BatchItemReason{OrderID: order.ID, Reason: skip})
				s.countBatch(operation, "skipped")
			case err != nil:
				result.Failed = append(result.Failed, model.BatchItemError{OrderID: order.ID, Error: err.Error()})
				s.countBatch(operation, "failed")
			default:
				result.Succeeded = append(result.Succeeded, order.ID)
				s.countBatch(operation, "succeeded")
			}
		}(order)
	}
	wg.Wait()

	return result
}

func (s *Service) countBatch(operation, outcome string) {
	if s.metrics != nil {
		s.metrics.LabBatchItems.WithLabelValues(operation, outcome).Inc()
	}
}

func missingIDs(requested []uuid.UUID, found []*model.LabOrder) []string {
	have := make(map[uuid.UUID]bool, len(found))
	for _, order := range found {
		have[order.ID] = true
	}
	var missing []string
	for _, id := range requested {
		if !have[id] {
			missing = append(missing, id.String())
		}
	}
	return missing
}

func markMissingSkipped(result *model.BatchResult, requested []uuid.UUID, found []*model.LabOrder) {
	have := make(map[uuid.UUID]bool, len(found))
	for _, order := range found {
		have[order.ID] = true
	}
	for _, id := range requested {
		if !have[id] {
			result.Skipped = append(result.Skipped, model.BatchItemReason{OrderID: id, Reason: "not found"})
		}
	}
}
