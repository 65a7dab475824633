package creditnotes

import (
	"context"

	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/sales/invoices"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/shared"
)

// invoiceBridge adapts the invoice service to the InvoiceBridge interface.
type invoiceBridge struct {
	svc *invoices.Service
}

func NewInvoiceBridge(svc *invoices.Service) InvoiceBridge {
	return invoiceBridge{svc: svc}
}

func (b invoiceBridge) Snapshot(ctx context.Context, invoiceID int64) (InvoiceSnapshot, error) {
	inv, err := b.svc.Get(ctx, invoiceID)
	if err != nil {
		return InvoiceSnapshot{}, err
	}
	return InvoiceSnapshot{
		InvoiceID:   inv.ID,
		CustomerID:  inv.CustomerID,
		Currency:    inv.Currency,
		Outstanding: inv.Outstanding(),
		Open:        inv.Status.Payable(),
	}, nil
}

func (b invoiceBridge) ApplyCredit(ctx context.Context, actor shared.Actor, invoiceID int64, amount float64, reference string) error {
	_, err := b.svc.ApplyCredit(ctx, actor, invoiceID, amount, reference)
	return err
}
