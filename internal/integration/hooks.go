// Package integration bridges operational events into the general ledger.
// Every posting carries a source ID derived deterministically from the event
// so a replayed event lands on the ledger's source uniqueness check and is
// treated as already done.
package integration

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/ledger"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/purchasing"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/sales/invoices"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/shared"
)

// Ledger exposes the journal posting operation hooks need.
type Ledger interface {
	PostJournal(ctx context.Context, actor shared.Actor, input ledger.PostingInput) (*ledger.JournalEntry, error)
}

// AccountMappingRepository resolves module event keys to ledger accounts.
type AccountMappingRepository interface {
	GetMapping(ctx context.Context, module, key string) (*ledger.AccountMapping, error)
}

// Hooks wires sales and purchasing events into the ledger.
type Hooks struct {
	ledger      Ledger
	mappingRepo AccountMappingRepository
}

func NewHooks(ledger Ledger, mappingRepo AccountMappingRepository) *Hooks {
	return &Hooks{ledger: ledger, mappingRepo: mappingRepo}
}

// systemActor is the identity automated postings run under. Hook callers are
// operational users who may not hold finance.post themselves.
func systemActor() shared.Actor {
	return shared.NewActor(0, []string{shared.PermFinancePost})
}

func (h *Hooks) resolveAccount(ctx context.Context, module, key string) (int64, error) {
	mapping, err := h.mappingRepo.GetMapping(ctx, module, key)
	if err != nil {
		return 0, err
	}
	return mapping.AccountID, nil
}

func (h *Hooks) post(ctx context.Context, input ledger.PostingInput) error {
	if input.SourceID == uuid.Nil {
		return errors.New("integration: source id required")
	}
	_, err := h.ledger.PostJournal(ctx, systemActor(), input)
	if errors.Is(err, ledger.ErrSourceAlreadyLinked) {
		return nil
	}
	return err
}

// InvoiceApproved opens the receivable: debit AR for the invoice total,
// credit revenue net of tax and credit VAT payable for the tax portion.
func (h *Hooks) InvoiceApproved(ctx context.Context, ev invoices.InvoiceApprovedEvent) error {
	if h == nil || h.ledger == nil || h.mappingRepo == nil {
		return nil
	}
	if ev.ApprovedAt.IsZero() {
		return errors.New("integration: invoice approval date required")
	}
	total := shared.Round2(ev.TotalAmount)
	if total <= 0 {
		return nil
	}

	receivable, err := h.resolveAccount(ctx, "AR", "ar.invoice.receivable")
	if err != nil {
		return err
	}
	revenue, err := h.resolveAccount(ctx, "AR", "ar.invoice.revenue")
	if err != nil {
		return err
	}

	tax := shared.Round2(ev.TaxAmount)
	lines := []ledger.PostingLine{
		{AccountID: receivable, Debit: total},
		{AccountID: revenue, Credit: shared.Round2(total - tax)},
	}
	if tax > 0 {
		vat, err := h.resolveAccount(ctx, "AR", "ar.invoice.vat")
		if err != nil {
			return err
		}
		lines = append(lines, ledger.PostingLine{AccountID: vat, Credit: tax})
	}

	return h.post(ctx, ledger.PostingInput{
		EntryDate:    ev.ApprovedAt,
		Memo:         fmt.Sprintf("Invoice %s", ev.Number),
		SourceModule: "SALES.INVOICE",
		SourceID:     uuid.NewSHA1(uuid.Nil, []byte(fmt.Sprintf("INV:%d", ev.InvoiceID))),
		Lines:        lines,
	})
}

// PaymentRecorded clears part of the receivable. Cash methods debit the bank
// account; credit note applications debit the credit note clearing account.
func (h *Hooks) PaymentRecorded(ctx context.Context, ev invoices.PaymentRecordedEvent) error {
	if h == nil || h.ledger == nil || h.mappingRepo == nil {
		return nil
	}
	if ev.PaidAt.IsZero() {
		return errors.New("integration: payment date required")
	}
	amount := shared.Round2(ev.Amount)
	if amount <= 0 {
		return nil
	}

	debitKey := "ar.payment.cash"
	if ev.Method == "credit_note" {
		debitKey = "ar.payment.credit"
	}
	debitAccount, err := h.resolveAccount(ctx, "AR", debitKey)
	if err != nil {
		return err
	}
	receivable, err := h.resolveAccount(ctx, "AR", "ar.payment.receivable")
	if err != nil {
		return err
	}

	return h.post(ctx, ledger.PostingInput{
		EntryDate:    ev.PaidAt,
		Memo:         fmt.Sprintf("Payment on invoice %s", ev.Number),
		SourceModule: "SALES.PAYMENT",
		SourceID:     uuid.NewSHA1(uuid.Nil, []byte(fmt.Sprintf("INVPAY:%d", ev.PaymentID))),
		Lines: []ledger.PostingLine{
			{AccountID: debitAccount, Debit: amount},
			{AccountID: receivable, Credit: amount},
		},
	})
}

// APInvoicePosted opens the payable: debit expense, credit accounts payable.
func (h *Hooks) APInvoicePosted(ctx context.Context, ev purchasing.APInvoicePostedEvent) error {
	if h == nil || h.ledger == nil || h.mappingRepo == nil {
		return nil
	}
	if ev.PostedAt.IsZero() {
		return errors.New("integration: AP invoice post date required")
	}
	amount := shared.Round2(ev.TotalAmount)
	if amount <= 0 {
		return nil
	}

	expense, err := h.resolveAccount(ctx, "AP", "ap.invoice.expense")
	if err != nil {
		return err
	}
	payable, err := h.resolveAccount(ctx, "AP", "ap.invoice.ap")
	if err != nil {
		return err
	}

	return h.post(ctx, ledger.PostingInput{
		EntryDate:    ev.PostedAt,
		Memo:         fmt.Sprintf("AP invoice %s", ev.Number),
		SourceModule: "PURCHASING.AP_INVOICE",
		SourceID:     uuid.NewSHA1(uuid.Nil, []byte(fmt.Sprintf("APINV:%d", ev.InvoiceID))),
		Lines: []ledger.PostingLine{
			{AccountID: expense, Debit: amount},
			{AccountID: payable, Credit: amount},
		},
	})
}

// APPaymentRecorded settles part of the payable: debit AP, credit cash.
func (h *Hooks) APPaymentRecorded(ctx context.Context, ev purchasing.APPaymentRecordedEvent) error {
	if h == nil || h.ledger == nil || h.mappingRepo == nil {
		return nil
	}
	if ev.PaidAt.IsZero() {
		return errors.New("integration: AP payment date required")
	}
	amount := shared.Round2(ev.Amount)
	if amount <= 0 {
		return nil
	}

	payable, err := h.resolveAccount(ctx, "AP", "ap.payment.ap")
	if err != nil {
		return err
	}
	cash, err := h.resolveAccount(ctx, "AP", "ap.payment.cash")
	if err != nil {
		return err
	}

	return h.post(ctx, ledger.PostingInput{
		EntryDate:    ev.PaidAt,
		Memo:         fmt.Sprintf("AP payment on %s", ev.Number),
		SourceModule: "PURCHASING.AP_PAYMENT",
		SourceID:     uuid.NewSHA1(uuid.Nil, []byte(fmt.Sprintf("APPAY:%d", ev.PaymentID))),
		Lines: []ledger.PostingLine{
			{AccountID: payable, Debit: amount},
			{AccountID: cash, Credit: amount},
		},
	})
}

var _ invoices.ApprovalHook = (*Hooks)(nil)
var _ purchasing.IntegrationHandler = (*Hooks)(nil)
