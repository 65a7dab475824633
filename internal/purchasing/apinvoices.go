package purchasing

import (
	"context"
	"fmt"
	"time"

	salesshared "github.com/aswathirqubicle/Aquanav-dev-sub003/internal/sales/shared"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/shared"
)

func (s *Service) GetAPInvoice(ctx context.Context, id int64) (*PurchaseInvoice, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid purchase invoice ID", shared.ErrValidation)
	}
	return s.repo.GetAPInvoice(ctx, id)
}

func (s *Service) ListAPInvoices(ctx context.Context, filters ListFilters) ([]PurchaseInvoice, int, error) {
	filters.Normalize()
	return s.repo.ListAPInvoices(ctx, filters)
}

func (s *Service) CreateAPInvoice(ctx context.Context, actor shared.Actor, req CreateAPInvoiceRequest) (*PurchaseInvoice, error) {
	if err := actor.Require(shared.PermPurchasingEdit); err != nil {
		return nil, err
	}
	if req.DueDate.Before(req.InvoiceDate) {
		return nil, fmt.Errorf("%w: due_date must not precede invoice_date", shared.ErrValidation)
	}
	if req.OrderID != nil {
		po, err := s.repo.GetOrder(ctx, *req.OrderID)
		if err != nil {
			return nil, err
		}
		if po.Status != OrderStatusReceived && po.Status != OrderStatusClosed {
			return nil, fmt.Errorf("%w: purchase order %s is %s, invoices need a received order",
				shared.ErrInvalidState, po.Number, po.Status)
		}
	}

	totals, err := salesshared.ComputeDocumentTotals(lineInputs(req.Lines), req.Discount)
	if err != nil {
		return nil, err
	}

	inv := PurchaseInvoice{
		SupplierID:  req.SupplierID,
		OrderID:     req.OrderID,
		SupplierRef: req.SupplierRef,
		Status:      APInvoiceStatusDraft,
		Currency:    req.Currency,
		Subtotal:    totals.Subtotal,
		TaxAmount:   totals.TaxAmount,
		Discount:    totals.Discount,
		TotalAmount: totals.TotalAmount,
		InvoiceDate: req.InvoiceDate,
		DueDate:     req.DueDate,
		CreatedBy:   actor.UserID,
		Lines:       buildLines(req.Lines),
	}

	id, err := s.repo.CreateAPInvoice(ctx, inv)
	if err != nil {
		return nil, fmt.Errorf("create purchase invoice: %w", err)
	}
	s.logger.Info("purchase invoice created", "invoice_id", id, "supplier_id", req.SupplierID)
	return s.repo.GetAPInvoice(ctx, id)
}

// PostAPInvoice opens the payable and notifies the ledger hook.
func (s *Service) PostAPInvoice(ctx context.Context, actor shared.Actor, id int64) (*PurchaseInvoice, error) {
	if err := actor.Require(shared.PermFinancePost); err != nil {
		return nil, err
	}
	current, err := s.repo.GetAPInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != APInvoiceStatusDraft {
		return nil, fmt.Errorf("%w: purchase invoice %s is %s, only drafts can be posted",
			shared.ErrInvalidState, current.Number, current.Status)
	}

	posted, err := s.repo.PostAPInvoice(ctx, id, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("post purchase invoice %d: %w", id, err)
	}

	ev := APInvoicePostedEvent{
		InvoiceID:   posted.ID,
		Number:      posted.Number,
		SupplierID:  posted.SupplierID,
		OrderID:     posted.OrderID,
		Currency:    posted.Currency,
		TotalAmount: posted.TotalAmount,
		PostedAt:    time.Now(),
	}
	if err := s.hook.APInvoicePosted(ctx, ev); err != nil {
		s.logger.Error("purchase invoice posted hook failed", "invoice_id", id, "error", err)
	}
	s.logger.Info("purchase invoice posted", "invoice_id", id, "number", posted.Number, "user_id", actor.UserID)
	return posted, nil
}

// RecordSupplierPayment mirrors the receivable side: append-only rows, paid
// balance recomputed transactionally, overpayment rejected.
func (s *Service) RecordSupplierPayment(ctx context.Context, actor shared.Actor, invoiceID int64, req RecordSupplierPaymentRequest) (*PurchaseInvoice, error) {
	if err := actor.Require(shared.PermFinancePayments); err != nil {
		return nil, err
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: payment amount must be positive", shared.ErrValidation)
	}

	payment := SupplierPayment{
		InvoiceID:   invoiceID,
		Amount:      req.Amount,
		PaymentDate: req.PaymentDate,
		Method:      req.Method,
		Reference:   req.Reference,
		RecordedBy:  actor.UserID,
	}
	inv, paymentID, err := s.repo.RecordSupplierPayment(ctx, payment)
	if err != nil {
		return nil, err
	}

	ev := APPaymentRecordedEvent{
		PaymentID: paymentID,
		InvoiceID: invoiceID,
		Number:    inv.Number,
		Amount:    req.Amount,
		PaidAt:    req.PaymentDate,
	}
	if err := s.hook.APPaymentRecorded(ctx, ev); err != nil {
		s.logger.Error("supplier payment hook failed", "invoice_id", invoiceID, "error", err)
	}
	s.logger.Info("supplier payment recorded", "invoice_id", invoiceID, "amount", req.Amount, "status", inv.Status)
	return inv, nil
}

func (s *Service) ListSupplierPayments(ctx context.Context, invoiceID int64) ([]SupplierPayment, error) {
	if _, err := s.repo.GetAPInvoice(ctx, invoiceID); err != nil {
		return nil, err
	}
	return s.repo.ListSupplierPayments(ctx, invoiceID)
}

// settleAP applies a payment to the payable, returning the resulting status.
func settleAP(inv *PurchaseInvoice, amount float64) (APInvoiceStatus, error) {
	if inv.Status != APInvoiceStatusPosted {
		return "", fmt.Errorf("%w: purchase invoice is %s, payments need a posted invoice",
			shared.ErrInvalidState, inv.Status)
	}
	outstanding := inv.Outstanding()
	if amount > outstanding+1e-6 {
		return "", fmt.Errorf("%w: payment %.2f exceeds outstanding %.2f",
			shared.ErrConflict, amount, outstanding)
	}

	inv.PaidAmount += amount
	if inv.Outstanding() <= 1e-6 {
		inv.PaidAmount = inv.TotalAmount
		return APInvoiceStatusPaid, nil
	}
	return APInvoiceStatusPosted, nil
}
