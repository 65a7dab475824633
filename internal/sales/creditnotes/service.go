package creditnotes

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	salesshared "github.com/aswathirqubicle/Aquanav-dev-sub003/internal/sales/shared"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/shared"
)

// InvoiceSnapshot is what the credit note side needs to know about the
// invoice it credits.
type InvoiceSnapshot struct {
	InvoiceID   int64
	CustomerID  int64
	Currency    string
	Outstanding float64
	Open        bool
}

// InvoiceBridge decouples credit notes from the invoice service. Issuing
// reads the outstanding balance; applying settles against it.
type InvoiceBridge interface {
	Snapshot(ctx context.Context, invoiceID int64) (InvoiceSnapshot, error)
	ApplyCredit(ctx context.Context, actor shared.Actor, invoiceID int64, amount float64, reference string) error
}

type Service struct {
	repo     Repository
	invoices InvoiceBridge
	logger   *slog.Logger
}

func NewService(repo Repository, invoices InvoiceBridge, logger *slog.Logger) *Service {
	return &Service{repo: repo, invoices: invoices, logger: logger}
}

func (s *Service) Get(ctx context.Context, id int64) (*CreditNote, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid credit note ID", shared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) ListForInvoice(ctx context.Context, invoiceID int64) ([]CreditNote, error) {
	return s.repo.ListForInvoice(ctx, invoiceID)
}

func (s *Service) Create(ctx context.Context, actor shared.Actor, req CreateCreditNoteRequest) (*CreditNote, error) {
	if err := actor.Require(shared.PermSalesEdit); err != nil {
		return nil, err
	}

	snap, err := s.invoices.Snapshot(ctx, req.InvoiceID)
	if err != nil {
		return nil, err
	}

	totals, err := salesshared.ComputeDocumentTotals(lineInputs(req.Lines), req.Discount)
	if err != nil {
		return nil, err
	}

	cn := CreditNote{
		InvoiceID:   req.InvoiceID,
		CustomerID:  snap.CustomerID,
		Status:      CreditNoteStatusDraft,
		Currency:    snap.Currency,
		Subtotal:    totals.Subtotal,
		TaxAmount:   totals.TaxAmount,
		Discount:    totals.Discount,
		TotalAmount: totals.TotalAmount,
		Reason:      req.Reason,
		CreatedBy:   actor.UserID,
		Lines:       buildLines(req.Lines),
	}

	id, err := s.repo.Create(ctx, cn)
	if err != nil {
		return nil, fmt.Errorf("create credit note: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Issue assigns the CN- number and locks the amount in. The total is capped
// by the invoice's outstanding balance at issue time.
func (s *Service) Issue(ctx context.Context, actor shared.Actor, id int64) (*CreditNote, error) {
	if err := actor.Require(shared.PermSalesApprove); err != nil {
		return nil, err
	}
	cn, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if cn.Status != CreditNoteStatusDraft {
		return nil, fmt.Errorf("%w: credit note is %s, only drafts can be issued", shared.ErrInvalidState, cn.Status)
	}

	snap, err := s.invoices.Snapshot(ctx, cn.InvoiceID)
	if err != nil {
		return nil, err
	}
	if !snap.Open {
		return nil, fmt.Errorf("%w: invoice is not open for crediting", shared.ErrInvalidState)
	}
	if cn.TotalAmount > snap.Outstanding {
		return nil, fmt.Errorf("%w: credit %.2f exceeds invoice outstanding %.2f",
			shared.ErrConflict, cn.TotalAmount, snap.Outstanding)
	}

	issued, err := s.repo.Issue(ctx, id, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("issue credit note %d: %w", id, err)
	}
	s.logger.Info("credit note issued", "credit_note_id", id, "number", *issued.Number, "user_id", actor.UserID)
	return issued, nil
}

// Apply settles the issued amount against the invoice. The invoice side
// re-validates the balance inside its own transaction, so a stale snapshot
// here can only make the apply fail, never overdraw.
func (s *Service) Apply(ctx context.Context, actor shared.Actor, id int64) (*CreditNote, error) {
	if err := actor.Require(shared.PermFinancePayments); err != nil {
		return nil, err
	}
	cn, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if cn.Status != CreditNoteStatusIssued {
		return nil, fmt.Errorf("%w: credit note is %s, only issued notes can be applied", shared.ErrInvalidState, cn.Status)
	}

	if err := s.invoices.ApplyCredit(ctx, actor, cn.InvoiceID, cn.TotalAmount, *cn.Number); err != nil {
		return nil, fmt.Errorf("apply credit note %s: %w", *cn.Number, err)
	}

	now := time.Now()
	applied, err := s.repo.SetStatus(ctx, id, CreditNoteStatusApplied, &now)
	if err != nil {
		return nil, fmt.Errorf("mark credit note applied: %w", err)
	}
	s.logger.Info("credit note applied", "credit_note_id", id, "invoice_id", cn.InvoiceID, "amount", cn.TotalAmount)
	return applied, nil
}

func (s *Service) Cancel(ctx context.Context, actor shared.Actor, id int64) (*CreditNote, error) {
	if err := actor.Require(shared.PermSalesEdit); err != nil {
		return nil, err
	}
	cn, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if cn.Status != CreditNoteStatusDraft {
		return nil, fmt.Errorf("%w: credit note is %s, only drafts can be cancelled", shared.ErrInvalidState, cn.Status)
	}
	return s.repo.SetStatus(ctx, id, CreditNoteStatusCancelled, nil)
}
