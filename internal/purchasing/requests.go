package purchasing

import (
	"context"
	"fmt"

	salesshared "github.com/aswathirqubicle/Aquanav-dev-sub003/internal/sales/shared"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/shared"
)

func (s *Service) GetRequest(ctx context.Context, id int64) (*PurchaseRequest, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid purchase request ID", shared.ErrValidation)
	}
	return s.repo.GetRequest(ctx, id)
}

func (s *Service) ListRequests(ctx context.Context, filters ListFilters) ([]PurchaseRequest, int, error) {
	filters.Normalize()
	return s.repo.ListRequests(ctx, filters)
}

func (s *Service) CreateRequest(ctx context.Context, actor shared.Actor, req CreateRequestRequest) (*PurchaseRequest, error) {
	if err := actor.Require(shared.PermPurchasingEdit); err != nil {
		return nil, err
	}

	totals, err := salesshared.ComputeDocumentTotals(lineInputs(req.Lines), req.Discount)
	if err != nil {
		return nil, err
	}

	pr := PurchaseRequest{
		SupplierID:  req.SupplierID,
		ProjectID:   req.ProjectID,
		Status:      RequestStatusDraft,
		Currency:    req.Currency,
		Subtotal:    totals.Subtotal,
		TaxAmount:   totals.TaxAmount,
		Discount:    totals.Discount,
		TotalAmount: totals.TotalAmount,
		Purpose:     req.Purpose,
		RequestedBy: actor.UserID,
		Lines:       buildLines(req.Lines),
	}

	id, err := s.repo.CreateRequest(ctx, pr)
	if err != nil {
		return nil, fmt.Errorf("create purchase request: %w", err)
	}
	s.logger.Info("purchase request created", "request_id", id, "user_id", actor.UserID)
	return s.repo.GetRequest(ctx, id)
}

func (s *Service) SubmitRequest(ctx context.Context, actor shared.Actor, id int64) (*PurchaseRequest, error) {
	if err := actor.Require(shared.PermPurchasingEdit); err != nil {
		return nil, err
	}
	return s.requestTransition(ctx, id, RequestStatusDraft, RequestStatusSubmitted, nil)
}

func (s *Service) ApproveRequest(ctx context.Context, actor shared.Actor, id int64) (*PurchaseRequest, error) {
	if err := actor.Require(shared.PermPurchasingApprove); err != nil {
		return nil, err
	}
	pr, err := s.requestTransition(ctx, id, RequestStatusSubmitted, RequestStatusApproved, func(pr *PurchaseRequest) {
		pr.ApprovedBy = &actor.UserID
	})
	if err != nil {
		return nil, err
	}
	s.recordApproval(ctx, "purchasing.request", pr.ID, actor.UserID, shared.ApprovalApprove)
	return pr, nil
}

func (s *Service) RejectRequest(ctx context.Context, actor shared.Actor, id int64) (*PurchaseRequest, error) {
	if err := actor.Require(shared.PermPurchasingApprove); err != nil {
		return nil, err
	}
	pr, err := s.requestTransition(ctx, id, RequestStatusSubmitted, RequestStatusRejected, nil)
	if err != nil {
		return nil, err
	}
	s.recordApproval(ctx, "purchasing.request", pr.ID, actor.UserID, shared.ApprovalReject)
	return pr, nil
}

func (s *Service) requestTransition(ctx context.Context, id int64, from, to RequestStatus, mutate func(*PurchaseRequest)) (*PurchaseRequest, error) {
	pr, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if pr.Status != from {
		return nil, fmt.Errorf("%w: purchase request %s is %s, cannot move to %s",
			shared.ErrInvalidState, pr.Number, pr.Status, to)
	}

	updated := *pr
	updated.Status = to
	if mutate != nil {
		mutate(&updated)
	}
	if err := s.repo.UpdateRequestStatus(ctx, updated); err != nil {
		return nil, fmt.Errorf("transition purchase request %d: %w", id, err)
	}
	return s.repo.GetRequest(ctx, id)
}
