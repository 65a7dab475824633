package quotations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	salesshared "github.com/aswathirqubicle/Aquanav-dev-sub003/internal/sales/shared"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/shared"
)

// InvoiceCreator turns an approved quotation into a draft invoice. Implemented
// by the invoices service; declared here so the conversion flows one way.
type InvoiceCreator interface {
	CreateFromQuotation(ctx context.Context, actor shared.Actor, src ConvertedQuotation) (int64, error)
}

// ConvertedQuotation is the snapshot handed to the invoice side on conversion.
type ConvertedQuotation struct {
	QuotationID int64
	CustomerID  int64
	ProjectID   *int64
	Currency    string
	Discount    float64
	Notes       *string
	Lines       []salesshared.LineInput
}

// transitions enumerates every legal lifecycle move. Anything absent here is
// an invalid-state error; the archive flag is orthogonal and not part of it.
var transitions = map[QuotationStatus][]QuotationStatus{
	QuotationStatusDraft:     {QuotationStatusSent, QuotationStatusApproved, QuotationStatusRejected},
	QuotationStatusSent:      {QuotationStatusRejected},
	QuotationStatusApproved:  {QuotationStatusConverted},
	QuotationStatusRejected:  {},
	QuotationStatusConverted: {},
}

func canTransition(from, to QuotationStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ApprovalSink records approval history entries. Satisfied by
// shared.ApprovalRecorder.
type ApprovalSink interface {
	Record(ctx context.Context, log shared.ApprovalLog) error
}

type Service struct {
	repo      Repository
	invoices  InvoiceCreator
	approvals ApprovalSink
	logger    *slog.Logger
}

func NewService(repo Repository, invoices InvoiceCreator, logger *slog.Logger) *Service {
	return &Service{repo: repo, invoices: invoices, logger: logger}
}

// WithApprovalLog attaches an approval history sink.
func (s *Service) WithApprovalLog(sink ApprovalSink) *Service {
	s.approvals = sink
	return s
}

func (s *Service) recordApproval(ctx context.Context, id int64, actorID int64, action shared.ApprovalAction, note string) {
	if s.approvals == nil {
		return
	}
	if err := s.approvals.Record(ctx, shared.ApprovalLog{
		Module: "sales.quotation", RefID: id, ActorID: actorID, Action: action, Note: note,
	}); err != nil {
		s.logger.Warn("record approval history failed", "quotation_id", id, slog.Any("error", err))
	}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]QuotationWithCustomer, int, error) {
	filters.Normalize()
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (*Quotation, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid quotation ID", shared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, actor shared.Actor, req CreateQuotationRequest) (*Quotation, error) {
	if err := actor.Require(shared.PermSalesEdit); err != nil {
		return nil, err
	}
	if req.ValidUntil.Before(req.QuoteDate) {
		return nil, fmt.Errorf("%w: valid_until must not precede quote_date", shared.ErrValidation)
	}

	totals, err := salesshared.ComputeDocumentTotals(lineInputs(req.Lines), req.Discount)
	if err != nil {
		return nil, err
	}

	q := Quotation{
		CustomerID:  req.CustomerID,
		ProjectID:   req.ProjectID,
		QuoteDate:   req.QuoteDate,
		ValidUntil:  req.ValidUntil,
		Status:      QuotationStatusDraft,
		Currency:    req.Currency,
		Subtotal:    totals.Subtotal,
		TaxAmount:   totals.TaxAmount,
		Discount:    totals.Discount,
		TotalAmount: totals.TotalAmount,
		Notes:       req.Notes,
		CreatedBy:   actor.UserID,
		Lines:       buildLines(req.Lines),
	}

	id, err := s.repo.Create(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("create quotation: %w", err)
	}
	s.logger.Info("quotation created", "quotation_id", id, "customer_id", req.CustomerID, "user_id", actor.UserID)
	return s.repo.Get(ctx, id)
}

// Update replaces the header and full line set. Allowed for drafts only;
// totals are recomputed from the submitted lines.
func (s *Service) Update(ctx context.Context, actor shared.Actor, id int64, req UpdateQuotationRequest) (*Quotation, error) {
	if err := actor.Require(shared.PermSalesEdit); err != nil {
		return nil, err
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != QuotationStatusDraft {
		return nil, fmt.Errorf("%w: quotation %s is %s, only drafts can be edited",
			shared.ErrInvalidState, current.Number, current.Status)
	}
	if req.ValidUntil.Before(req.QuoteDate) {
		return nil, fmt.Errorf("%w: valid_until must not precede quote_date", shared.ErrValidation)
	}

	totals, err := salesshared.ComputeDocumentTotals(lineInputs(req.Lines), req.Discount)
	if err != nil {
		return nil, err
	}

	q := *current
	q.CustomerID = req.CustomerID
	q.ProjectID = req.ProjectID
	q.QuoteDate = req.QuoteDate
	q.ValidUntil = req.ValidUntil
	q.Currency = req.Currency
	q.Subtotal = totals.Subtotal
	q.TaxAmount = totals.TaxAmount
	q.Discount = totals.Discount
	q.TotalAmount = totals.TotalAmount
	q.Notes = req.Notes
	q.Lines = buildLines(req.Lines)

	if err := s.repo.Replace(ctx, q); err != nil {
		return nil, fmt.Errorf("update quotation: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Send(ctx context.Context, actor shared.Actor, id int64) (*Quotation, error) {
	if err := actor.Require(shared.PermSalesEdit); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, QuotationStatusSent, nil)
}

// Approve moves a draft to approved. Only drafts qualify; a sent quotation
// must be recreated if it needs approval after the fact.
func (s *Service) Approve(ctx context.Context, actor shared.Actor, id int64) (*Quotation, error) {
	if err := actor.Require(shared.PermSalesApprove); err != nil {
		return nil, err
	}
	now := time.Now()
	q, err := s.transition(ctx, id, QuotationStatusApproved, func(q *Quotation) {
		q.ApprovedBy = &actor.UserID
		q.ApprovedAt = &now
	})
	if err != nil {
		return nil, err
	}
	s.recordApproval(ctx, q.ID, actor.UserID, shared.ApprovalApprove, "")
	return q, nil
}

func (s *Service) Reject(ctx context.Context, actor shared.Actor, id int64, reason string) (*Quotation, error) {
	if err := actor.Require(shared.PermSalesApprove); err != nil {
		return nil, err
	}
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", shared.ErrValidation)
	}
	now := time.Now()
	q, err := s.transition(ctx, id, QuotationStatusRejected, func(q *Quotation) {
		q.RejectedBy = &actor.UserID
		q.RejectedAt = &now
		q.RejectionReason = &reason
	})
	if err != nil {
		return nil, err
	}
	s.recordApproval(ctx, q.ID, actor.UserID, shared.ApprovalReject, reason)
	return q, nil
}

// ConvertToInvoice creates a draft invoice from an approved quotation and
// marks the quotation converted. The quotation's lines are copied, never
// mutated; editing happens on the invoice from here on.
func (s *Service) ConvertToInvoice(ctx context.Context, actor shared.Actor, id int64) (*Quotation, int64, error) {
	if err := actor.Require(shared.PermSalesEdit); err != nil {
		return nil, 0, err
	}
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	if !canTransition(q.Status, QuotationStatusConverted) {
		return nil, 0, fmt.Errorf("%w: quotation %s is %s, only approved quotations can be converted",
			shared.ErrInvalidState, q.Number, q.Status)
	}

	inputs := make([]salesshared.LineInput, 0, len(q.Lines))
	for _, line := range q.Lines {
		inputs = append(inputs, salesshared.LineInput{
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			TaxRate:     line.TaxRate,
		})
	}

	invoiceID, err := s.invoices.CreateFromQuotation(ctx, actor, ConvertedQuotation{
		QuotationID: q.ID,
		CustomerID:  q.CustomerID,
		ProjectID:   q.ProjectID,
		Currency:    q.Currency,
		Discount:    q.Discount,
		Notes:       q.Notes,
		Lines:       inputs,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("convert quotation %s: %w", q.Number, err)
	}

	updated, err := s.transition(ctx, id, QuotationStatusConverted, func(q *Quotation) {
		q.ConvertedID = &invoiceID
	})
	if err != nil {
		return nil, 0, err
	}
	s.logger.Info("quotation converted", "quotation_id", id, "invoice_id", invoiceID, "user_id", actor.UserID)
	return updated, invoiceID, nil
}

// Archive hides the quotation from default listings without touching its
// lifecycle status. Already archived is a no-op success.
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

func (s *Service) transition(ctx context.Context, id int64, to QuotationStatus, mutate func(*Quotation)) (*Quotation, error) {
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canTransition(q.Status, to) {
		return nil, fmt.Errorf("%w: quotation %s cannot move from %s to %s",
			shared.ErrInvalidState, q.Number, q.Status, to)
	}

	updated := *q
	updated.Status = to
	if mutate != nil {
		mutate(&updated)
	}
	if err := s.repo.UpdateStatus(ctx, updated); err != nil {
		return nil, fmt.Errorf("transition quotation %d to %s: %w", id, to, err)
	}
	return s.repo.Get(ctx, id)
}

func buildLines(reqs []LineRequest) []QuotationLine {
	lines := make([]QuotationLine, 0, len(reqs))
	for i, l := range reqs {
		lt := salesshared.CalculateLineTotals(l.Quantity, l.UnitPrice, l.TaxRate)
		lines = append(lines, QuotationLine{
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TaxRate:     l.TaxRate,
			TaxAmount:   lt.TaxAmount,
			LineTotal:   lt.LineTotal,
			LineOrder:   i + 1,
		})
	}
	return lines
}
