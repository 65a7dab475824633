package purchasing

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

type CreateRequestRequest struct {
	SupplierID *int64        `json:"supplier_id" validate:"omitempty,gt=0"`
	ProjectID  *int64        `json:"project_id" validate:"omitempty,gt=0"`
	Currency   string        `json:"currency" validate:"required,len=3,uppercase"`
	Discount   float64       `json:"discount" validate:"gte=0"`
	Purpose    string        `json:"purpose" validate:"required,max=1000"`
	Lines      []LineRequest `json:"lines" validate:"required,min=1,dive"`
}

type CreateOrderRequest struct {
	SupplierID int64         `json:"supplier_id" validate:"required,gt=0"`
	RequestID  *int64        `json:"request_id" validate:"omitempty,gt=0"`
	ProjectID  *int64        `json:"project_id" validate:"omitempty,gt=0"`
	Currency   string        `json:"currency" validate:"required,len=3,uppercase"`
	Discount   float64       `json:"discount" validate:"gte=0"`
	OrderDate  time.Time     `json:"order_date" validate:"required"`
	Lines      []LineRequest `json:"lines" validate:"required,min=1,dive"`
}

type CreateAPInvoiceRequest struct {
	SupplierID  int64         `json:"supplier_id" validate:"required,gt=0"`
	OrderID     *int64        `json:"order_id" validate:"omitempty,gt=0"`
	SupplierRef *string       `json:"supplier_ref" validate:"omitempty,max=100"`
	Currency    string        `json:"currency" validate:"required,len=3,uppercase"`
	Discount    float64       `json:"discount" validate:"gte=0"`
	InvoiceDate time.Time     `json:"invoice_date" validate:"required"`
	DueDate     time.Time     `json:"due_date" validate:"required"`
	Lines       []LineRequest `json:"lines" validate:"required,min=1,dive"`
}

type RecordSupplierPaymentRequest struct {
	Amount      float64   `json:"amount" validate:"required,gt=0"`
	PaymentDate time.Time `json:"payment_date" validate:"required"`
	Method      string    `json:"method" validate:"required,oneof=bank_transfer cheque cash card"`
	Reference   *string   `json:"reference" validate:"omitempty,max=200"`
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

func buildLines(reqs []LineRequest) []DocumentLine {
	lines := make([]DocumentLine, 0, len(reqs))
	for i, l := range reqs {
		lt := salesshared.CalculateLineTotals(l.Quantity, l.UnitPrice, l.TaxRate)
		lines = append(lines, DocumentLine{
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
