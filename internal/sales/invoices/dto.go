package invoices

import (
	"time"

	salesshared "github.com/aswathirqubicle/Aquanav-dev-sub003/internal/sales/shared"
)

type LineRequest struct {
	Description string  `json:"description" validate:"required,max=500"`
	Quantity    float64 `json:"quantity" validate:"required,gt=0"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
	TaxRate     float64 `json:"tax_rate" validate:"gte=0,lte=100"`
}

type CreateInvoiceRequest struct {
	CustomerID  int64         `json:"customer_id" validate:"required,gt=0"`
	ProjectID   *int64        `json:"project_id" validate:"omitempty,gt=0"`
	InvoiceDate time.Time     `json:"invoice_date" validate:"required"`
	DueDate     time.Time     `json:"due_date" validate:"required"`
	Currency    string        `json:"currency" validate:"required,len=3,uppercase"`
	IsProforma  bool          `json:"is_proforma"`
	Discount    float64       `json:"discount" validate:"gte=0"`
	Notes       *string       `json:"notes" validate:"omitempty,max=2000"`
	Lines       []LineRequest `json:"lines" validate:"required,min=1,dive"`
}

type UpdateInvoiceRequest struct {
	CustomerID  int64         `json:"customer_id" validate:"required,gt=0"`
	ProjectID   *int64        `json:"project_id" validate:"omitempty,gt=0"`
	InvoiceDate time.Time     `json:"invoice_date" validate:"required"`
	DueDate     time.Time     `json:"due_date" validate:"required"`
	Currency    string        `json:"currency" validate:"required,len=3,uppercase"`
	Discount    float64       `json:"discount" validate:"gte=0"`
	Notes       *string       `json:"notes" validate:"omitempty,max=2000"`
	Lines       []LineRequest `json:"lines" validate:"required,min=1,dive"`
}

type RecordPaymentRequest struct {
	Amount      float64   `json:"amount" validate:"required,gt=0"`
	PaymentDate time.Time `json:"payment_date" validate:"required"`
	Method      string    `json:"method" validate:"required,oneof=bank_transfer cheque cash card"`
	Reference   *string   `json:"reference" validate:"omitempty,max=200"`
	// IdempotencyKey lets clients retry a payment POST without double
	// recording it.
	IdempotencyKey string `json:"idempotency_key" validate:"omitempty,max=100"`
}

func lineInputs(reqs []LineRequest) []salesshared.LineInput {
	inputs := make([]salesshared.LineInput, 0, len(reqs))
	for _, l := range reqs {
		inputs = append(inputs, salesshared.LineInput{
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TaxRate:     l.TaxRate,
		})
	}
	return inputs
}

func buildLines(reqs []LineRequest) []InvoiceLine {
	lines := make([]InvoiceLine, 0, len(reqs))
	for i, l := range reqs {
		lt := salesshared.CalculateLineTotals(l.Quantity, l.UnitPrice, l.TaxRate)
		lines = append(lines, InvoiceLine{
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
