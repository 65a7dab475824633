package invoices

import (
	"context"
	"time"
)

// InvoiceApprovedEvent is emitted once an invoice leaves draft. The ledger
// integration hook consumes it to post the receivable journal.
type InvoiceApprovedEvent struct {
	InvoiceID   int64
	Number      string
	CustomerID  int64
	Currency    string
	Subtotal    float64
	TaxAmount   float64
	TotalAmount float64
	ApprovedBy  int64
	ApprovedAt  time.Time
}

// PaymentRecordedEvent fires for each customer payment row, credit note
// applications included (Method "credit_note").
type PaymentRecordedEvent struct {
	PaymentID int64
	InvoiceID int64
	Number    string
	Amount    float64
	Method    string
	PaidAt    time.Time
}

// ApprovalHook receives invoice lifecycle events. Failures are logged, never
// allowed to roll the operation back; ledger posting reconciles asynchronously.
type ApprovalHook interface {
	InvoiceApproved(ctx context.Context, ev InvoiceApprovedEvent) error
	PaymentRecorded(ctx context.Context, ev PaymentRecordedEvent) error
}

// NopApprovalHook satisfies ApprovalHook when no ledger is wired, as in tests.
type NopApprovalHook struct{}

func (NopApprovalHook) InvoiceApproved(context.Context, InvoiceApprovedEvent) error { return nil }
func (NopApprovalHook) PaymentRecorded(context.Context, PaymentRecordedEvent) error { return nil }
