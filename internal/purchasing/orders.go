package purchasing

import (
	"context"
	"fmt"
	"time"

	salesshared "github.com/aswathirqubicle/Aquanav-dev-sub003/internal/sales/shared"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/shared"
)

func (s *Service) GetOrder(ctx context.Context, id int64) (*PurchaseOrder, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid purchase order ID", shared.ErrValidation)
	}
	return s.repo.GetOrder(ctx, id)
}

func (s *Service) ListOrders(ctx context.Context, filters ListFilters) ([]PurchaseOrder, int, error) {
	filters.Normalize()
	return s.repo.ListOrders(ctx, filters)
}

// CreateOrder raises a PO, optionally from an approved purchase request. A
// sourced request moves to ordered in the same transaction.
func (s *Service) CreateOrder(ctx context.Context, actor shared.Actor, req CreateOrderRequest) (*PurchaseOrder, error) {
	if err := actor.Require(shared.PermPurchasingEdit); err != nil {
		return nil, err
	}

	if req.RequestID != nil {
		pr, err := s.repo.GetRequest(ctx, *req.RequestID)
		if err != nil {
			return nil, err
		}
		if pr.Status != RequestStatusApproved {
			return nil, fmt.Errorf("%w: purchase request %s is %s, only approved requests can be ordered",
				shared.ErrInvalidState, pr.Number, pr.Status)
		}
	}

	totals, err := salesshared.ComputeDocumentTotals(lineInputs(req.Lines), req.Discount)
	if err != nil {
		return nil, err
	}

	po := PurchaseOrder{
		SupplierID:  req.SupplierID,
		RequestID:   req.RequestID,
		ProjectID:   req.ProjectID,
		Status:      OrderStatusDraft,
		Currency:    req.Currency,
		Subtotal:    totals.Subtotal,
		TaxAmount:   totals.TaxAmount,
		Discount:    totals.Discount,
		TotalAmount: totals.TotalAmount,
		OrderDate:   req.OrderDate,
		CreatedBy:   actor.UserID,
		Lines:       buildLines(req.Lines),
	}

	id, err := s.repo.CreateOrder(ctx, po)
	if err != nil {
		return nil, fmt.Errorf("create purchase order: %w", err)
	}
	s.logger.Info("purchase order created", "order_id", id, "supplier_id", req.SupplierID, "user_id", actor.UserID)
	return s.repo.GetOrder(ctx, id)
}

func (s *Service) ApproveOrder(ctx context.Context, actor shared.Actor, id int64) (*PurchaseOrder, error) {
	if err := actor.Require(shared.PermPurchasingApprove); err != nil {
		return nil, err
	}
	po, err := s.orderTransition(ctx, id, []OrderStatus{OrderStatusDraft}, OrderStatusApproved, func(po *PurchaseOrder) {
		po.ApprovedBy = &actor.UserID
	})
	if err != nil {
		return nil, err
	}
	s.recordApproval(ctx, "purchasing.order", po.ID, actor.UserID, shared.ApprovalApprove)
	return po, nil
}

func (s *Service) MarkOrderReceived(ctx context.Context, actor shared.Actor, id int64) (*PurchaseOrder, error) {
	if err := actor.Require(shared.PermPurchasingEdit); err != nil {
		return nil, err
	}
	now := time.Now()
	return s.orderTransition(ctx, id, []OrderStatus{OrderStatusApproved}, OrderStatusReceived, func(po *PurchaseOrder) {
		po.ReceivedAt = &now
	})
}

func (s *Service) CloseOrder(ctx context.Context, actor shared.Actor, id int64) (*PurchaseOrder, error) {
	if err := actor.Require(shared.PermPurchasingEdit); err != nil {
		return nil, err
	}
	return s.orderTransition(ctx, id, []OrderStatus{OrderStatusReceived}, OrderStatusClosed, nil)
}

func (s *Service) CancelOrder(ctx context.Context, actor shared.Actor, id int64) (*PurchaseOrder, error) {
	if err := actor.Require(shared.PermPurchasingEdit); err != nil {
		return nil, err
	}
	return s.orderTransition(ctx, id, []OrderStatus{OrderStatusDraft, OrderStatusApproved}, OrderStatusCancelled, nil)
}

func (s *Service) orderTransition(ctx context.Context, id int64, from []OrderStatus, to OrderStatus, mutate func(*PurchaseOrder)) (*PurchaseOrder, error) {
	po, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	allowed := false
	for _, f := range from {
		if po.Status == f {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: purchase order %s is %s, cannot move to %s",
			shared.ErrInvalidState, po.Number, po.Status, to)
	}

	updated := *po
	updated.Status = to
	if mutate != nil {
		mutate(&updated)
	}
	if err := s.repo.UpdateOrderStatus(ctx, updated); err != nil {
		return nil, fmt.Errorf("transition purchase order %d: %w", id, err)
	}
	return s.repo.GetOrder(ctx, id)
}
