package invoices

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/sales/quotations"
	salesshared "github.com/aswathirqubicle/Aquanav-dev-sub003/internal/sales/shared"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/shared"
)

// paymentEpsilon absorbs float drift when deciding whether a balance is
// settled or a payment exceeds it.
const paymentEpsilon = 1e-6

// ApprovalSink records approval history entries. Satisfied by
// shared.ApprovalRecorder.
type ApprovalSink interface {
	Record(ctx context.Context, log shared.ApprovalLog) error
}

// IdempotencyGuard claims request keys so retried payments are recorded
// once. Satisfied by shared.IdempotencyStore.
type IdempotencyGuard interface {
	Reserve(ctx context.Context, module, key string) error
	Release(ctx context.Context, key string) error
}

type Service struct {
	repo      Repository
	hook      ApprovalHook
	approvals ApprovalSink
	idem      IdempotencyGuard
	logger    *slog.Logger
}

func NewService(repo Repository, hook ApprovalHook, logger *slog.Logger) *Service {
	if hook == nil {
		hook = NopApprovalHook{}
	}
	return &Service{repo: repo, hook: hook, logger: logger}
}

// WithApprovalLog attaches an approval history sink.
func (s *Service) WithApprovalLog(sink ApprovalSink) *Service {
	s.approvals = sink
	return s
}

// WithIdempotency attaches an idempotency guard for payment recording.
func (s *Service) WithIdempotency(guard IdempotencyGuard) *Service {
	s.idem = guard
	return s
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]InvoiceWithCustomer, int, error) {
	filters.Normalize()
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (*Invoice, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid invoice ID", shared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, actor shared.Actor, req CreateInvoiceRequest) (*Invoice, error) {
	if err := actor.Require(shared.PermSalesEdit); err != nil {
		return nil, err
	}
	if req.DueDate.Before(req.InvoiceDate) {
		return nil, fmt.Errorf("%w: due_date must not precede invoice_date", shared.ErrValidation)
	}

	totals, err := salesshared.ComputeDocumentTotals(lineInputs(req.Lines), req.Discount)
	if err != nil {
		return nil, err
	}

	inv := Invoice{
		CustomerID:  req.CustomerID,
		ProjectID:   req.ProjectID,
		InvoiceDate: req.InvoiceDate,
		DueDate:     req.DueDate,
		Status:      InvoiceStatusDraft,
		IsProforma:  req.IsProforma,
		Currency:    req.Currency,
		Subtotal:    totals.Subtotal,
		TaxAmount:   totals.TaxAmount,
		Discount:    totals.Discount,
		TotalAmount: totals.TotalAmount,
		Notes:       req.Notes,
		CreatedBy:   actor.UserID,
		Lines:       buildLines(req.Lines),
	}

	id, err := s.repo.Create(ctx, inv)
	if err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}
	s.logger.Info("invoice created", "invoice_id", id, "customer_id", req.CustomerID, "user_id", actor.UserID)
	return s.repo.Get(ctx, id)
}

// CreateFromQuotation builds a draft invoice from a converted quotation.
// Invoice dates start at conversion day with the customer's terms applied
// later by the caller if needed; here due date defaults to +30 days.
func (s *Service) CreateFromQuotation(ctx context.Context, actor shared.Actor, src quotations.ConvertedQuotation) (int64, error) {
	if err := actor.Require(shared.PermSalesEdit); err != nil {
		return 0, err
	}

	lines := make([]LineRequest, 0, len(src.Lines))
	for _, l := range src.Lines {
		lines = append(lines, LineRequest{
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TaxRate:     l.TaxRate,
		})
	}

	totals, err := salesshared.ComputeDocumentTotals(lineInputs(lines), src.Discount)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	inv := Invoice{
		CustomerID:  src.CustomerID,
		ProjectID:   src.ProjectID,
		QuotationID: &src.QuotationID,
		InvoiceDate: now,
		DueDate:     now.AddDate(0, 0, 30),
		Status:      InvoiceStatusDraft,
		Currency:    src.Currency,
		Subtotal:    totals.Subtotal,
		TaxAmount:   totals.TaxAmount,
		Discount:    totals.Discount,
		TotalAmount: totals.TotalAmount,
		Notes:       src.Notes,
		CreatedBy:   actor.UserID,
		Lines:       buildLines(lines),
	}

	id, err := s.repo.Create(ctx, inv)
	if err != nil {
		return 0, fmt.Errorf("create invoice from quotation %d: %w", src.QuotationID, err)
	}
	s.logger.Info("invoice created from quotation", "invoice_id", id, "quotation_id", src.QuotationID)
	return id, nil
}

func (s *Service) Update(ctx context.Context, actor shared.Actor, id int64, req UpdateInvoiceRequest) (*Invoice, error) {
	if err := actor.Require(shared.PermSalesEdit); err != nil {
		return nil, err
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != InvoiceStatusDraft {
		return nil, fmt.Errorf("%w: invoice is %s, only drafts can be edited", shared.ErrInvalidState, current.Status)
	}
	if req.DueDate.Before(req.InvoiceDate) {
		return nil, fmt.Errorf("%w: due_date must not precede invoice_date", shared.ErrValidation)
	}

	totals, err := salesshared.ComputeDocumentTotals(lineInputs(req.Lines), req.Discount)
	if err != nil {
		return nil, err
	}

	inv := *current
	inv.CustomerID = req.CustomerID
	inv.ProjectID = req.ProjectID
	inv.InvoiceDate = req.InvoiceDate
	inv.DueDate = req.DueDate
	inv.Currency = req.Currency
	inv.Subtotal = totals.Subtotal
	inv.TaxAmount = totals.TaxAmount
	inv.Discount = totals.Discount
	inv.TotalAmount = totals.TotalAmount
	inv.Notes = req.Notes
	inv.Lines = buildLines(req.Lines)

	if err := s.repo.Replace(ctx, inv); err != nil {
		return nil, fmt.Errorf("update invoice: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Approve assigns the invoice number, opens the receivable and notifies the
// ledger hook. Only drafts can be approved; proformas stay unapproved.
func (s *Service) Approve(ctx context.Context, actor shared.Actor, id int64) (*Invoice, error) {
	if err := actor.Require(shared.PermSalesApprove); err != nil {
		return nil, err
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != InvoiceStatusDraft {
		return nil, fmt.Errorf("%w: invoice is %s, only drafts can be approved", shared.ErrInvalidState, current.Status)
	}
	if current.IsProforma {
		return nil, fmt.Errorf("%w: proforma invoices cannot be approved", shared.ErrInvalidState)
	}

	approved, err := s.repo.Approve(ctx, id, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("approve invoice %d: %w", id, err)
	}

	ev := InvoiceApprovedEvent{
		InvoiceID:   approved.ID,
		Number:      *approved.Number,
		CustomerID:  approved.CustomerID,
		Currency:    approved.Currency,
		Subtotal:    approved.Subtotal,
		TaxAmount:   approved.TaxAmount,
		TotalAmount: approved.TotalAmount,
		ApprovedBy:  actor.UserID,
		ApprovedAt:  time.Now(),
	}
	if err := s.hook.InvoiceApproved(ctx, ev); err != nil {
		s.logger.Error("invoice approved hook failed", "invoice_id", id, slog.Any("error", err))
	}
	if s.approvals != nil {
		if err := s.approvals.Record(ctx, shared.ApprovalLog{
			Module: "sales.invoice", RefID: approved.ID, ActorID: actor.UserID, Action: shared.ApprovalApprove,
		}); err != nil {
			s.logger.Warn("record approval history failed", "invoice_id", id, slog.Any("error", err))
		}
	}
	s.logger.Info("invoice approved", "invoice_id", id, "number", ev.Number, "user_id", actor.UserID)
	return approved, nil
}

// RecordPayment appends a payment and recomputes the paid balance inside a
// serializable transaction so two concurrent payments can never both settle
// against the same snapshot. Overpayment is rejected, never clamped.
func (s *Service) RecordPayment(ctx context.Context, actor shared.Actor, invoiceID int64, req RecordPaymentRequest) (*Invoice, error) {
	if err := actor.Require(shared.PermFinancePayments); err != nil {
		return nil, err
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: payment amount must be positive", shared.ErrValidation)
	}
	if s.idem != nil && req.IdempotencyKey != "" {
		if err := s.idem.Reserve(ctx, "sales.payment", req.IdempotencyKey); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				return nil, fmt.Errorf("%w: payment already recorded for this idempotency key", shared.ErrConflict)
			}
			return nil, err
		}
	}

	inv, paymentID, err := s.repo.RecordPayment(ctx, Payment{
		InvoiceID:   invoiceID,
		Amount:      req.Amount,
		PaymentDate: req.PaymentDate,
		Method:      req.Method,
		Reference:   req.Reference,
		RecordedBy:  actor.UserID,
	})
	if err != nil {
		if s.idem != nil && req.IdempotencyKey != "" {
			if relErr := s.idem.Release(ctx, req.IdempotencyKey); relErr != nil {
				s.logger.Warn("release idempotency key failed", "key", req.IdempotencyKey, slog.Any("error", relErr))
			}
		}
		return nil, err
	}
	s.emitPayment(ctx, inv, paymentID, req.Amount, req.Method, req.PaymentDate)
	s.logger.Info("payment recorded", "invoice_id", invoiceID, "amount", req.Amount,
		"status", inv.Status, "user_id", actor.UserID)
	return inv, nil
}

// ApplyCredit settles part of the balance from an applied credit note. It
// rides the same append-only payment path so the recompute and overpayment
// rules hold for credits too.
func (s *Service) ApplyCredit(ctx context.Context, actor shared.Actor, invoiceID int64, amount float64, reference string) (*Invoice, error) {
	if err := actor.Require(shared.PermFinancePayments); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: credit amount must be positive", shared.ErrValidation)
	}

	now := time.Now()
	inv, paymentID, err := s.repo.RecordPayment(ctx, Payment{
		InvoiceID:   invoiceID,
		Amount:      amount,
		PaymentDate: now,
		Method:      "credit_note",
		Reference:   &reference,
		RecordedBy:  actor.UserID,
	})
	if err != nil {
		return nil, err
	}
	s.emitPayment(ctx, inv, paymentID, amount, "credit_note", now)
	s.logger.Info("credit applied", "invoice_id", invoiceID, "amount", amount, "reference", reference)
	return inv, nil
}

func (s *Service) emitPayment(ctx context.Context, inv *Invoice, paymentID int64, amount float64, method string, paidAt time.Time) {
	number := ""
	if inv.Number != nil {
		number = *inv.Number
	}
	ev := PaymentRecordedEvent{
		PaymentID: paymentID,
		InvoiceID: inv.ID,
		Number:    number,
		Amount:    amount,
		Method:    method,
		PaidAt:    paidAt,
	}
	if err := s.hook.PaymentRecorded(ctx, ev); err != nil {
		s.logger.Error("payment recorded hook failed", "invoice_id", inv.ID, slog.Any("error", err))
	}
}

func (s *Service) ListPayments(ctx context.Context, invoiceID int64) ([]Payment, error) {
	if _, err := s.repo.Get(ctx, invoiceID); err != nil {
		return nil, err
	}
	return s.repo.ListPayments(ctx, invoiceID)
}

func (s *Service) Archive(ctx context.Context, actor shared.Actor, id int64) error {
	if err := actor.Require(shared.PermSalesEdit); err != nil {
		return err
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.SetArchived(ctx, id, true)
}

func (s *Service) Unarchive(ctx context.Context, actor shared.Actor, id int64) error {
	if err := actor.Require(shared.PermSalesEdit); err != nil {
		return err
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.SetArchived(ctx, id, false)
}

// settle applies a payment amount to the invoice, returning the status the
// invoice must move to. Pure; both repository implementations run it inside
// their write path so the decision always sees the recomputed balance.
func settle(inv *Invoice, amount float64) (InvoiceStatus, error) {
	if !inv.Status.Payable() {
		return "", fmt.Errorf("%w: invoice is %s, payments need an open invoice",
			shared.ErrInvalidState, inv.Status)
	}
	outstanding := inv.Outstanding()
	if amount > outstanding+paymentEpsilon {
		return "", fmt.Errorf("%w: payment %.2f exceeds outstanding %.2f",
			shared.ErrConflict, amount, outstanding)
	}

	inv.PaidAmount += amount
	if inv.Outstanding() <= paymentEpsilon {
		inv.PaidAmount = inv.TotalAmount
		return InvoiceStatusPaid, nil
	}
	return InvoiceStatusPartiallyPaid, nil
}
