package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/ledger"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/purchasing"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/sales/invoices"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/shared"
)

type fakeLedger struct {
	posted []ledger.PostingInput
	seen   map[uuid.UUID]bool
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{seen: make(map[uuid.UUID]bool)}
}

func (f *fakeLedger) PostJournal(_ context.Context, actor shared.Actor, input ledger.PostingInput) (*ledger.JournalEntry, error) {
	if err := actor.Require(shared.PermFinancePost); err != nil {
		return nil, err
	}
	if f.seen[input.SourceID] {
		return nil, ledger.ErrSourceAlreadyLinked
	}
	f.seen[input.SourceID] = true
	f.posted = append(f.posted, input)
	return &ledger.JournalEntry{ID: int64(len(f.posted))}, nil
}

type fakeMappings struct {
	accounts map[string]int64
}

func (f *fakeMappings) GetMapping(_ context.Context, module, key string) (*ledger.AccountMapping, error) {
	id, ok := f.accounts[key]
	if !ok {
		return nil, fmt.Errorf("%w: no account mapping for %s/%s", shared.ErrNotFound, module, key)
	}
	return &ledger.AccountMapping{Module: module, Key: key, AccountID: id}, nil
}

func newTestHooks() (*Hooks, *fakeLedger) {
	led := newFakeLedger()
	mappings := &fakeMappings{accounts: map[string]int64{
		"ar.invoice.receivable": 1,
		"ar.invoice.revenue":    2,
		"ar.invoice.vat":        3,
		"ar.payment.cash":       4,
		"ar.payment.credit":     5,
		"ar.payment.receivable": 1,
		"ap.invoice.expense":    6,
		"ap.invoice.ap":         7,
		"ap.payment.ap":         7,
		"ap.payment.cash":       4,
	}}
	return NewHooks(led, mappings), led
}

func balanced(input ledger.PostingInput) bool {
	var debits, credits float64
	for _, l := range input.Lines {
		debits += l.Debit
		credits += l.Credit
	}
	return debits == credits
}

func TestInvoiceApprovedPostsReceivable(t *testing.T) {
	hooks, led := newTestHooks()

	err := hooks.InvoiceApproved(context.Background(), invoices.InvoiceApprovedEvent{
		InvoiceID:   12,
		Number:      "INV-000012",
		Subtotal:    200,
		TaxAmount:   10,
		TotalAmount: 210,
		ApprovedAt:  time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.Len(t, led.posted, 1)
	entry := led.posted[0]
	assert.Equal(t, "SALES.INVOICE", entry.SourceModule)
	require.Len(t, entry.Lines, 3)
	assert.Equal(t, int64(1), entry.Lines[0].AccountID)
	assert.Equal(t, 210.0, entry.Lines[0].Debit)
	assert.Equal(t, 200.0, entry.Lines[1].Credit)
	assert.Equal(t, 10.0, entry.Lines[2].Credit)
	assert.True(t, balanced(entry))
}

func TestInvoiceApprovedNoTaxSkipsVATLine(t *testing.T) {
	hooks, led := newTestHooks()

	err := hooks.InvoiceApproved(context.Background(), invoices.InvoiceApprovedEvent{
		InvoiceID:   13,
		Number:      "INV-000013",
		Subtotal:    500,
		TotalAmount: 500,
		ApprovedAt:  time.Now(),
	})
	require.NoError(t, err)
	require.Len(t, led.posted, 1)
	assert.Len(t, led.posted[0].Lines, 2)
	assert.True(t, balanced(led.posted[0]))
}

func TestInvoiceApprovedReplayIsNoop(t *testing.T) {
	hooks, led := newTestHooks()
	ev := invoices.InvoiceApprovedEvent{
		InvoiceID: 12, Number: "INV-000012", TotalAmount: 210, TaxAmount: 10, ApprovedAt: time.Now(),
	}

	require.NoError(t, hooks.InvoiceApproved(context.Background(), ev))
	require.NoError(t, hooks.InvoiceApproved(context.Background(), ev))
	assert.Len(t, led.posted, 1)
}

func TestPaymentRecordedCashVsCredit(t *testing.T) {
	hooks, led := newTestHooks()
	ctx := context.Background()

	require.NoError(t, hooks.PaymentRecorded(ctx, invoices.PaymentRecordedEvent{
		PaymentID: 1, InvoiceID: 12, Number: "INV-000012", Amount: 100,
		Method: "bank_transfer", PaidAt: time.Now(),
	}))
	require.NoError(t, hooks.PaymentRecorded(ctx, invoices.PaymentRecordedEvent{
		PaymentID: 2, InvoiceID: 12, Number: "INV-000012", Amount: 50,
		Method: "credit_note", PaidAt: time.Now(),
	}))

	require.Len(t, led.posted, 2)
	assert.Equal(t, int64(4), led.posted[0].Lines[0].AccountID)
	assert.Equal(t, int64(5), led.posted[1].Lines[0].AccountID)
	assert.True(t, balanced(led.posted[0]))
	assert.True(t, balanced(led.posted[1]))
}

func TestAPInvoicePosted(t *testing.T) {
	hooks, led := newTestHooks()

	err := hooks.APInvoicePosted(context.Background(), purchasing.APInvoicePostedEvent{
		InvoiceID: 3, Number: "AP-000003", TotalAmount: 3570, PostedAt: time.Now(),
	})
	require.NoError(t, err)

	require.Len(t, led.posted, 1)
	entry := led.posted[0]
	assert.Equal(t, "PURCHASING.AP_INVOICE", entry.SourceModule)
	assert.Equal(t, 3570.0, entry.Lines[0].Debit)
	assert.Equal(t, 3570.0, entry.Lines[1].Credit)
}

func TestAPPaymentRecorded(t *testing.T) {
	hooks, led := newTestHooks()

	err := hooks.APPaymentRecorded(context.Background(), purchasing.APPaymentRecordedEvent{
		PaymentID: 9, InvoiceID: 3, Number: "AP-000003", Amount: 1570, PaidAt: time.Now(),
	})
	require.NoError(t, err)

	require.Len(t, led.posted, 1)
	assert.Equal(t, int64(7), led.posted[0].Lines[0].AccountID)
	assert.Equal(t, 1570.0, led.posted[0].Lines[0].Debit)
	assert.Equal(t, int64(4), led.posted[0].Lines[1].AccountID)
}

func TestZeroAmountEventsAreIgnored(t *testing.T) {
	hooks, led := newTestHooks()
	ctx := context.Background()

	require.NoError(t, hooks.InvoiceApproved(ctx, invoices.InvoiceApprovedEvent{
		InvoiceID: 1, ApprovedAt: time.Now(),
	}))
	require.NoError(t, hooks.APPaymentRecorded(ctx, purchasing.APPaymentRecordedEvent{
		PaymentID: 1, PaidAt: time.Now(),
	}))
	assert.Empty(t, led.posted)
}

func TestMissingEventDateRejected(t *testing.T) {
	hooks, _ := newTestHooks()

	err := hooks.InvoiceApproved(context.Background(), invoices.InvoiceApprovedEvent{
		InvoiceID: 1, TotalAmount: 100,
	})
	assert.Error(t, err)
}
