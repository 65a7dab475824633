package purchasing

import (
	"context"
	"time"
)

// APInvoicePostedEvent fires when a supplier invoice is posted, opening the
// payable. Consumed by the ledger integration hook.
type APInvoicePostedEvent struct {
	InvoiceID   int64
	Number      string
	SupplierID  int64
	OrderID     *int64
	Currency    string
	TotalAmount float64
	PostedAt    time.Time
}

// APPaymentRecordedEvent fires for each supplier payment.
type APPaymentRecordedEvent struct {
	PaymentID int64
	InvoiceID int64
	Number    string
	Amount    float64
	PaidAt    time.Time
}

// IntegrationHandler receives purchasing events. Implementations must be
// idempotent; a replay of the same event must not double-post.
type IntegrationHandler interface {
	APInvoicePosted(ctx context.Context, ev APInvoicePostedEvent) error
	APPaymentRecorded(ctx context.Context, ev APPaymentRecordedEvent) error
}

type NopIntegrationHandler struct{}

func (NopIntegrationHandler) APInvoicePosted(context.Context, APInvoicePostedEvent) error { return nil }
func (NopIntegrationHandler) APPaymentRecorded(context.Context, APPaymentRecordedEvent) error {
	return nil
}
