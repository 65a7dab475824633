package creditnotes

import salesshared "github.com/aswathirqubicle/Aquanav-dev-sub003/internal/sales/shared"

type LineRequest struct {
	Description string  `json:"description" validate:"required,max=500"`
	Quantity    float64 `json:"quantity" validate:"required,gt=0"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
	TaxRate     float64 `json:"tax_rate" validate:"gte=0,lte=100"`
}

type CreateCreditNoteRequest struct {
	InvoiceID int64         `json:"invoice_id" validate:"required,gt=0"`
	Discount  float64       `json:"discount" validate:"gte=0"`
	Reason    string        `json:"reason" validate:"required,max=1000"`
	Lines     []LineRequest `json:"lines" validate:"required,min=1,dive"`
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

func buildLines(reqs []LineRequest) []CreditNoteLine {
	lines := make([]CreditNoteLine, 0, len(reqs))
	for i, l := range reqs {
		lt := salesshared.CalculateLineTotals(l.Quantity, l.UnitPrice, l.TaxRate)
		lines = append(lines, CreditNoteLine{
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
