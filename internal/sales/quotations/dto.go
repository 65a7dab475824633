package quotations

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

func (l LineRequest) toInput() salesshared.LineInput {
	return salesshared.LineInput{
		Description: l.Description,
		Quantity:    l.Quantity,
		UnitPrice:   l.UnitPrice,
		TaxRate:     l.TaxRate,
	}
}

type CreateQuotationRequest struct {
	CustomerID int64         `json:"customer_id" validate:"required,gt=0"`
	ProjectID  *int64        `json:"project_id" validate:"omitempty,gt=0"`
	QuoteDate  time.Time     `json:"quote_date" validate:"required"`
	ValidUntil time.Time     `json:"valid_until" validate:"required"`
	Currency   string        `json:"currency" validate:"required,len=3,uppercase"`
	Discount   float64       `json:"discount" validate:"gte=0"`
	Notes      *string       `json:"notes" validate:"omitempty,max=2000"`
	Lines      []LineRequest `json:"lines" validate:"required,min=1,dive"`
}

type UpdateQuotationRequest struct {
	CustomerID int64         `json:"customer_id" validate:"required,gt=0"`
	ProjectID  *int64        `json:"project_id" validate:"omitempty,gt=0"`
	QuoteDate  time.Time     `json:"quote_date" validate:"required"`
	ValidUntil time.Time     `json:"valid_until" validate:"required"`
	Currency   string        `json:"currency" validate:"required,len=3,uppercase"`
	Discount   float64       `json:"discount" validate:"gte=0"`
	Notes      *string       `json:"notes" validate:"omitempty,max=2000"`
	Lines      []LineRequest `json:"lines" validate:"required,min=1,dive"`
}

type RejectQuotationRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

func lineInputs(reqs []LineRequest) []salesshared.LineInput {
	inputs := make([]salesshared.LineInput, 0, len(reqs))
	for _, l := range reqs {
		inputs = append(inputs, l.toInput())
	}
	return inputs
}
